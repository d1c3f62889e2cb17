// Package postgres provides a PostgreSQL storage backend on pgx. Element
// and relationship bodies are stored as JSONB next to the columns the
// repository filters on.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schema creates the backend tables.
const Schema = `
CREATE TABLE IF NOT EXISTS metactx_elements (
	guid      TEXT PRIMARY KEY,
	type_name TEXT NOT NULL,
	body      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS metactx_elements_type_idx ON metactx_elements (type_name);
CREATE TABLE IF NOT EXISTS metactx_relationships (
	guid      TEXT PRIMARY KEY,
	type_name TEXT NOT NULL,
	end1_guid TEXT NOT NULL,
	end2_guid TEXT NOT NULL,
	body      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS metactx_relationships_end1_idx ON metactx_relationships (end1_guid);
CREATE INDEX IF NOT EXISTS metactx_relationships_end2_idx ON metactx_relationships (end2_guid);
`

const (
	upsertElementSQL = `INSERT INTO metactx_elements (guid, type_name, body) VALUES ($1, $2, $3)
ON CONFLICT (guid) DO UPDATE SET type_name = EXCLUDED.type_name, body = EXCLUDED.body`
	selectElementSQL = `SELECT body FROM metactx_elements WHERE guid = $1`
	deleteElementSQL = `DELETE FROM metactx_elements WHERE guid = $1`
	listElementsSQL  = `SELECT body FROM metactx_elements
WHERE cardinality($1::text[]) = 0 OR type_name = ANY($1::text[]) ORDER BY guid`

	upsertRelationshipSQL = `INSERT INTO metactx_relationships (guid, type_name, end1_guid, end2_guid, body)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (guid) DO UPDATE SET type_name = EXCLUDED.type_name, end1_guid = EXCLUDED.end1_guid,
	end2_guid = EXCLUDED.end2_guid, body = EXCLUDED.body`
	selectRelationshipSQL = `SELECT body FROM metactx_relationships WHERE guid = $1`
	deleteRelationshipSQL = `DELETE FROM metactx_relationships WHERE guid = $1`
	listRelationshipsSQL  = `SELECT body FROM metactx_relationships
WHERE $1 = '' OR end1_guid = $1 OR end2_guid = $1 ORDER BY guid`
)

// Config configures the connection pool.
type Config struct {
	DSN               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// querier is the subset of *pgxpool.Pool the backend uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Backend is a PostgreSQL storage.Backend.
type Backend struct {
	db     querier
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ storage.Backend = (*Backend)(nil)

// PoolConfig parses the DSN and applies pool limits with defaults.
func PoolConfig(cfg Config) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConfig, "failed to parse connection string")
	}

	poolConfig.MaxConns = cfg.MaxConns
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MinConns = cfg.MinConns
	if poolConfig.MinConns <= 0 {
		poolConfig.MinConns = 1
	}
	if poolConfig.MinConns > poolConfig.MaxConns {
		poolConfig.MinConns = poolConfig.MaxConns / 2
	}
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if poolConfig.MaxConnLifetime <= 0 {
		poolConfig.MaxConnLifetime = time.Hour
	}
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	if poolConfig.MaxConnIdleTime <= 0 {
		poolConfig.MaxConnIdleTime = 30 * time.Minute
	}
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	if poolConfig.HealthCheckPeriod <= 0 {
		poolConfig.HealthCheckPeriod = 30 * time.Second
	}
	return poolConfig, nil
}

// Open connects, verifies the connection and creates the schema.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to validate connection")
	}

	b := &Backend{db: pool, pool: pool, logger: logger.With(zap.String("component", "postgres_backend"))}
	if err := b.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	b.logger.Info("Connected to PostgreSQL",
		zap.Int32("max_connections", poolConfig.MaxConns),
		zap.Int32("min_connections", poolConfig.MinConns))
	return b, nil
}

// EnsureSchema creates the tables and indexes if they are missing.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, Schema); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to create schema")
	}
	return nil
}

// PutElement upserts an element.
func (b *Backend) PutElement(ctx context.Context, element *metadata.Element) error {
	body, err := storage.EncodeElement(element)
	if err != nil {
		return err
	}
	if _, err := b.db.Exec(ctx, upsertElementSQL, element.Header.GUID, element.Header.Type.TypeName, body); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to store element")
	}
	return nil
}

// GetElement reads one element.
func (b *Backend) GetElement(ctx context.Context, guid string) (*metadata.Element, error) {
	var body []byte
	if err := b.db.QueryRow(ctx, selectElementSQL, guid).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrElementNotFound(guid)
		}
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read element")
	}
	return storage.DecodeElement(body)
}

// DeleteElement removes an element.
func (b *Backend) DeleteElement(ctx context.Context, guid string) error {
	if _, err := b.db.Exec(ctx, deleteElementSQL, guid); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to delete element")
	}
	return nil
}

// ListElements reads elements of the given types.
func (b *Backend) ListElements(ctx context.Context, typeNames []string) ([]*metadata.Element, error) {
	if typeNames == nil {
		typeNames = []string{}
	}
	rows, err := b.db.Query(ctx, listElementsSQL, typeNames)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to list elements")
	}
	bodies, err := collectBodies(rows)
	if err != nil {
		return nil, err
	}

	out := make([]*metadata.Element, 0, len(bodies))
	for _, body := range bodies {
		e, err := storage.DecodeElement(body)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// PutRelationship upserts a relationship.
func (b *Backend) PutRelationship(ctx context.Context, r *metadata.Relationship) error {
	body, err := storage.EncodeRelationship(r)
	if err != nil {
		return err
	}
	if _, err := b.db.Exec(ctx, upsertRelationshipSQL, r.GUID, r.TypeName, r.End1GUID, r.End2GUID, body); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to store relationship")
	}
	return nil
}

// GetRelationship reads one relationship.
func (b *Backend) GetRelationship(ctx context.Context, guid string) (*metadata.Relationship, error) {
	var body []byte
	if err := b.db.QueryRow(ctx, selectRelationshipSQL, guid).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrRelationshipNotFound(guid)
		}
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read relationship")
	}
	return storage.DecodeRelationship(body)
}

// DeleteRelationship removes a relationship.
func (b *Backend) DeleteRelationship(ctx context.Context, guid string) error {
	if _, err := b.db.Exec(ctx, deleteRelationshipSQL, guid); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to delete relationship")
	}
	return nil
}

// ListRelationships reads relationships touching elementGUID.
func (b *Backend) ListRelationships(ctx context.Context, elementGUID string) ([]*metadata.Relationship, error) {
	rows, err := b.db.Query(ctx, listRelationshipsSQL, elementGUID)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to list relationships")
	}
	bodies, err := collectBodies(rows)
	if err != nil {
		return nil, err
	}

	out := make([]*metadata.Relationship, 0, len(bodies))
	for _, body := range bodies {
		r, err := storage.DecodeRelationship(body)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Close closes the pool.
func (b *Backend) Close(context.Context) error {
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}

func collectBodies(rows pgx.Rows) ([][]byte, error) {
	bodies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]byte, error) {
		var body []byte
		err := row.Scan(&body)
		return body, err
	})
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read rows")
	}
	return bodies, nil
}
