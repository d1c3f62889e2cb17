// Package repository implements metadata.Client over a storage.Backend.
//
// The repository owns every rule about metadata elements: type checking
// against the compiled type table, unique qualified names, anchors,
// templates, delete methods, visibility of elements to queries, search
// matching, sequencing and paging. Backends only store and list.
//
// Write operations serialize on a single mutex so that uniqueness and
// cardinality checks hold within one process. Reads run concurrently.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/storage"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxPageSize is used when Config.MaxPageSize is not set.
const DefaultMaxPageSize = 1000

// Config holds repository settings.
type Config struct {
	// MaxPageSize caps PageSize; a PageSize of 0 means this value
	MaxPageSize int
	// AllowedUsers restricts callers when not empty
	AllowedUsers []string
}

// Option customises a Repository.
type Option func(*Repository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithMetrics records writes in the collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Repository) { r.metrics = c }
}

// WithGUIDs replaces the GUID generator.
func WithGUIDs(next func() string) Option {
	return func(r *Repository) { r.newGUID = next }
}

// Repository is the local metadata.Client.
type Repository struct {
	backend storage.Backend
	types   *typedefs.Registry
	logger  *zap.Logger
	metrics *metrics.Collector

	maxPageSize  int
	allowedUsers map[string]bool

	now     func() time.Time
	newGUID func() string

	mu sync.Mutex
}

var _ metadata.Client = (*Repository)(nil)

// New creates a repository over backend.
func New(backend storage.Backend, cfg Config, logger *zap.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Repository{
		backend:     backend,
		types:       typedefs.Default(),
		logger:      logger.With(zap.String("component", "repository")),
		maxPageSize: cfg.MaxPageSize,
		now:         time.Now,
		newGUID:     uuid.NewString,
	}
	if r.maxPageSize <= 0 {
		r.maxPageSize = DefaultMaxPageSize
	}
	if len(cfg.AllowedUsers) > 0 {
		r.allowedUsers = make(map[string]bool, len(cfg.AllowedUsers))
		for _, u := range cfg.AllowedUsers {
			r.allowedUsers[u] = true
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxPageSize returns the largest page a query may request.
func (r *Repository) MaxPageSize() int {
	return r.maxPageSize
}

// Close closes the backend.
func (r *Repository) Close(ctx context.Context) error {
	return r.backend.Close(ctx)
}

func (r *Repository) authorize(userID string) error {
	if userID == "" {
		return omerrors.UserNotAuthorized(userID, "no user identifier supplied")
	}
	if r.allowedUsers != nil && !r.allowedUsers[userID] {
		return omerrors.UserNotAuthorized(userID, "user "+userID+" is not authorized to access this repository")
	}
	return nil
}

// write runs fn under the write lock and records the outcome.
func (r *Repository) write(operation string, fn func() error) error {
	r.mu.Lock()
	err := fn()
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.RecordRepositoryWrite(operation, err)
	}
	if err != nil {
		r.logger.Debug("Write failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}

// storeError maps a backend failure into one of the propagated kinds.
func storeError(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case omerrors.IsNotFound(err):
		return omerrors.Wrap(err, omerrors.ErrorTypeInvalidParameter, message)
	case omerrors.IsInvalidParameter(err), omerrors.IsUserNotAuthorized(err), omerrors.IsPropertyServer(err):
		return err
	default:
		return omerrors.PropertyServer(err, message)
	}
}

func (r *Repository) loadElement(ctx context.Context, guid, param string) (*metadata.Element, error) {
	if guid == "" {
		return nil, omerrors.InvalidParameter(param, "no element GUID supplied")
	}
	e, err := r.backend.GetElement(ctx, guid)
	if err != nil {
		return nil, storeError(err, "element "+guid+" could not be retrieved")
	}
	return e, nil
}

// loadLiveElement loads an element that has not been soft deleted.
func (r *Repository) loadLiveElement(ctx context.Context, guid, param string) (*metadata.Element, error) {
	e, err := r.loadElement(ctx, guid, param)
	if err != nil {
		return nil, err
	}
	if e.Header.Status == metadata.StatusDeleted {
		return nil, omerrors.InvalidParameter(param, "element "+guid+" is deleted")
	}
	return e, nil
}

func (r *Repository) loadRelationship(ctx context.Context, guid string) (*metadata.Relationship, error) {
	if guid == "" {
		return nil, omerrors.InvalidParameter("relationshipGUID", "no relationship GUID supplied")
	}
	rel, err := r.backend.GetRelationship(ctx, guid)
	if err != nil {
		return nil, storeError(err, "relationship "+guid+" could not be retrieved")
	}
	return rel, nil
}

func (r *Repository) putElement(ctx context.Context, e *metadata.Element) error {
	return storeError(r.backend.PutElement(ctx, e), "element "+e.Header.GUID+" could not be stored")
}

func (r *Repository) putRelationship(ctx context.Context, rel *metadata.Relationship) error {
	return storeError(r.backend.PutRelationship(ctx, rel), "relationship "+rel.GUID+" could not be stored")
}

// touch records an update by userID.
func (r *Repository) touch(v *metadata.ElementVersions, userID string) {
	v.UpdatedBy = userID
	v.UpdateTime = r.now().UTC()
	v.Version++
}

func origin(src metadata.MetadataSourceOptions) metadata.ElementOrigin {
	return metadata.ElementOrigin{
		ExternalSourceGUID: src.ExternalSourceGUID,
		ExternalSourceName: src.ExternalSourceName,
	}
}
