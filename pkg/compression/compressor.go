// Package compression provides the stream codecs used for repository
// snapshots.
//
//   - LZ4: fastest, modest ratio
//   - S2: fast, Snappy compatible framing
//   - Zstd: best ratio; the default for snapshots
//
// A codec wraps an io.Writer or io.Reader, so a snapshot is encoded straight
// into the compressed file:
//
//	codec, err := compression.NewCodec(compression.ForPath("metadata.snap.lz4"), compression.Default)
//	w, err := codec.NewWriter(file)
//	err = json.MarshalToWriter(w, snapshot)
//	err = w.Close()
package compression

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm names a codec.
type Algorithm string

const (
	None Algorithm = "none"
	LZ4  Algorithm = "lz4"
	Zstd Algorithm = "zstd"
	S2   Algorithm = "s2"
)

// Level trades speed for ratio.
type Level int

const (
	Fastest Level = 1
	Default Level = 5
	Better  Level = 7
	Best    Level = 9
)

// MaxDecodedSize bounds how much a reader returned by a codec will yield.
const MaxDecodedSize = 1 << 30

// Codec builds compressing writers and decompressing readers. Codecs are
// safe for concurrent use; the writers and readers they return are not.
type Codec interface {
	Algorithm() Algorithm
	// NewWriter compresses into w. Close flushes the stream but does not
	// close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader decompresses r, failing once MaxDecodedSize is exceeded.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// ParseAlgorithm converts a configuration value; "" means None.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case None, LZ4, Zstd, S2:
		return a, nil
	case "":
		return None, nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm: %s", name)
	}
}

// ForPath picks the algorithm from a file extension; unknown extensions use
// Zstd.
func ForPath(path string) Algorithm {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lz4":
		return LZ4
	case ".s2", ".sz":
		return S2
	case ".json":
		return None
	default:
		return Zstd
	}
}

// NewCodec returns the codec for alg at the given level.
func NewCodec(alg Algorithm, level Level) (Codec, error) {
	switch alg {
	case None:
		return noneCodec{}, nil
	case LZ4:
		return lz4Codec{level: lz4Level(level)}, nil
	case Zstd:
		return zstdCodec{level: zstd.EncoderLevelFromZstd(int(level))}, nil
	case S2:
		return s2Codec{better: level >= Better}, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

// Compress runs data through a writer of c.
func Compress(c Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress runs data through a reader of c.
func Decompress(c Codec, data []byte) ([]byte, error) {
	r, err := c.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// limited fails instead of silently truncating at MaxDecodedSize.
type limited struct {
	r       io.Reader
	closer  func() error
	remains int64
}

func newLimited(r io.Reader, closer func() error) *limited {
	return &limited{r: r, closer: closer, remains: MaxDecodedSize}
}

func (l *limited) Read(p []byte) (int, error) {
	if l.remains <= 0 {
		return 0, fmt.Errorf("decoded data exceeds %d bytes", int64(MaxDecodedSize))
	}
	if int64(len(p)) > l.remains {
		p = p[:l.remains]
	}
	n, err := l.r.Read(p)
	l.remains -= int64(n)
	return n, err
}

func (l *limited) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type noneCodec struct{}

func (noneCodec) Algorithm() Algorithm { return None }

func (noneCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (noneCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return newLimited(r, nil), nil
}

type lz4Codec struct {
	level lz4.CompressionLevel
}

func (lz4Codec) Algorithm() Algorithm { return LZ4 }

func (c lz4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(c.level)); err != nil {
		return nil, err
	}
	return zw, nil
}

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return newLimited(lz4.NewReader(r), nil), nil
}

func lz4Level(level Level) lz4.CompressionLevel {
	switch {
	case level <= Fastest:
		return lz4.Fast
	case level >= Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

type zstdCodec struct {
	level zstd.EncoderLevel
}

func (zstdCodec) Algorithm() Algorithm { return Zstd }

func (c zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	if err != nil {
		return nil, err
	}
	return newLimited(dec, func() error { dec.Close(); return nil }), nil
}

type s2Codec struct {
	better bool
}

func (s2Codec) Algorithm() Algorithm { return S2 }

func (c s2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	if c.better {
		return s2.NewWriter(w, s2.WriterBetterCompression()), nil
	}
	return s2.NewWriter(w), nil
}

func (s2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return newLimited(s2.NewReader(r), nil), nil
}
