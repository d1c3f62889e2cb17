package memory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/metactx/pkg/compression"
	"github.com/ajitpratap0/metactx/pkg/json"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
)

const snapshotVersion = 1

type snapshot struct {
	Version       int               `json:"version"`
	Elements      []json.RawMessage `json:"elements"`
	Relationships []json.RawMessage `json:"relationships"`
}

// SaveSnapshot writes every element and relationship to path, compressed
// with the named codec ("" picks by file extension). The file is replaced
// atomically.
func (b *Backend) SaveSnapshot(path, codec string) error {
	c, err := snapshotCodec(path, codec)
	if err != nil {
		return err
	}

	b.mu.RLock()
	snap := snapshot{Version: snapshotVersion}
	for _, body := range b.elements {
		snap.Elements = append(snap.Elements, json.RawMessage(body))
	}
	for _, r := range b.relationships {
		snap.Relationships = append(snap.Relationships, json.RawMessage(r.body))
	}
	b.mu.RUnlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".metactx-snapshot-*")
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to create snapshot file")
	}
	fail := func(err error, msg string) error {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, msg)
	}

	w, err := c.NewWriter(tmp)
	if err != nil {
		return fail(err, "failed to start snapshot compression")
	}
	if err := json.MarshalToWriter(w, snap); err != nil {
		_ = w.Close()
		return fail(err, "failed to write snapshot")
	}
	if err := w.Close(); err != nil {
		return fail(err, "failed to flush snapshot")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to write snapshot")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to replace snapshot")
	}
	return nil
}

// LoadSnapshot replaces the backend contents with the snapshot at path. A
// missing file leaves the backend empty and is not an error.
func (b *Backend) LoadSnapshot(path, codec string) error {
	c, err := snapshotCodec(path, codec)
	if err != nil {
		return err
	}

	f, err := os.Open(path) //nolint:gosec // G304: path comes from operator configuration
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to open snapshot")
	}
	defer f.Close()

	r, err := c.NewReader(f)
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to decompress snapshot")
	}
	defer r.Close()

	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to decode snapshot")
	}
	if snap.Version != snapshotVersion {
		return omerrors.Newf(omerrors.ErrorTypeInternal, "unsupported snapshot version %d", snap.Version)
	}

	fresh := New()
	for _, raw := range snap.Elements {
		var head struct {
			Header struct {
				GUID string `json:"guid"`
				Type struct {
					TypeName string `json:"typeName"`
				} `json:"type"`
			} `json:"header"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to decode snapshot element")
		}
		fresh.elements[head.Header.GUID] = append([]byte(nil), raw...)
		fresh.elementTypes[head.Header.GUID] = head.Header.Type.TypeName
	}
	for _, raw := range snap.Relationships {
		var head struct {
			GUID     string `json:"guid"`
			End1GUID string `json:"end1GUID"`
			End2GUID string `json:"end2GUID"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to decode snapshot relationship")
		}
		stored := storedRelationship{end1: head.End1GUID, end2: head.End2GUID, body: append([]byte(nil), raw...)}
		fresh.relationships[head.GUID] = stored
		fresh.index(head.GUID, stored)
	}

	b.mu.Lock()
	b.elements = fresh.elements
	b.elementTypes = fresh.elementTypes
	b.relationships = fresh.relationships
	b.byElement = fresh.byElement
	b.mu.Unlock()
	return nil
}

func snapshotCodec(path, codec string) (compression.Codec, error) {
	alg := compression.ForPath(path)
	if codec != "" {
		var err error
		alg, err = compression.ParseAlgorithm(codec)
		if err != nil {
			return nil, omerrors.Wrap(err, omerrors.ErrorTypeConfig, fmt.Sprintf("bad snapshot codec %q", codec))
		}
	}
	c, err := compression.NewCodec(alg, compression.Default)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConfig, "bad snapshot codec")
	}
	return c, nil
}
