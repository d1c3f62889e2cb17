// Package mongodb provides a MongoDB storage backend. Each document keeps
// the encoded element or relationship next to the fields used for lookups.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	elementsCollection      = "elements"
	relationshipsCollection = "relationships"
)

// Config configures the client.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type elementDocument struct {
	GUID     string `bson:"_id"`
	TypeName string `bson:"typeName"`
	Body     string `bson:"body"`
}

type relationshipDocument struct {
	GUID     string `bson:"_id"`
	TypeName string `bson:"typeName"`
	End1     string `bson:"end1"`
	End2     string `bson:"end2"`
	Body     string `bson:"body"`
}

// Backend is a MongoDB storage.Backend.
type Backend struct {
	client        *mongo.Client
	elements      *mongo.Collection
	relationships *mongo.Collection
	logger        *zap.Logger
}

var _ storage.Backend = (*Backend)(nil)

// Open connects to MongoDB, pings the server and ensures indexes.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Database == "" {
		cfg.Database = "metactx"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	clientOpts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to connect to MongoDB")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to ping MongoDB")
	}

	db := client.Database(cfg.Database)
	b := &Backend{
		client:        client,
		elements:      db.Collection(elementsCollection),
		relationships: db.Collection(relationshipsCollection),
		logger:        logger.With(zap.String("component", "mongodb_backend")),
	}
	if err := b.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	b.logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return b, nil
}

func (b *Backend) ensureIndexes(ctx context.Context) error {
	if _, err := b.elements.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "typeName", Value: 1}}}); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to create element index")
	}
	_, err := b.relationships.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "end1", Value: 1}}},
		{Keys: bson.D{{Key: "end2", Value: 1}}},
	})
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to create relationship indexes")
	}
	return nil
}

// ElementFilter selects elements of the given types; empty selects all.
func ElementFilter(typeNames []string) bson.M {
	if len(typeNames) == 0 {
		return bson.M{}
	}
	return bson.M{"typeName": bson.M{"$in": typeNames}}
}

// RelationshipFilter selects relationships touching elementGUID; empty
// selects all.
func RelationshipFilter(elementGUID string) bson.M {
	if elementGUID == "" {
		return bson.M{}
	}
	return bson.M{"$or": bson.A{
		bson.M{"end1": elementGUID},
		bson.M{"end2": elementGUID},
	}}
}

func byGUID(guid string) bson.M {
	return bson.M{"_id": guid}
}

func sortedFind() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

// PutElement upserts an element.
func (b *Backend) PutElement(ctx context.Context, element *metadata.Element) error {
	body, err := storage.EncodeElement(element)
	if err != nil {
		return err
	}
	doc := elementDocument{GUID: element.Header.GUID, TypeName: element.Header.Type.TypeName, Body: string(body)}
	_, err = b.elements.ReplaceOne(ctx, byGUID(doc.GUID), doc, options.Replace().SetUpsert(true))
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to store element")
	}
	return nil
}

// GetElement reads one element.
func (b *Backend) GetElement(ctx context.Context, guid string) (*metadata.Element, error) {
	var doc elementDocument
	if err := b.elements.FindOne(ctx, byGUID(guid)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrElementNotFound(guid)
		}
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read element")
	}
	return storage.DecodeElement([]byte(doc.Body))
}

// DeleteElement removes an element.
func (b *Backend) DeleteElement(ctx context.Context, guid string) error {
	if _, err := b.elements.DeleteOne(ctx, byGUID(guid)); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to delete element")
	}
	return nil
}

// ListElements reads elements of the given types ordered by GUID.
func (b *Backend) ListElements(ctx context.Context, typeNames []string) ([]*metadata.Element, error) {
	cursor, err := b.elements.Find(ctx, ElementFilter(typeNames), sortedFind())
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to list elements")
	}
	var docs []elementDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read elements")
	}

	out := make([]*metadata.Element, 0, len(docs))
	for _, doc := range docs {
		e, err := storage.DecodeElement([]byte(doc.Body))
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
	doc := relationshipDocument{GUID: r.GUID, TypeName: r.TypeName, End1: r.End1GUID, End2: r.End2GUID, Body: string(body)}
	_, err = b.relationships.ReplaceOne(ctx, byGUID(doc.GUID), doc, options.Replace().SetUpsert(true))
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to store relationship")
	}
	return nil
}

// GetRelationship reads one relationship.
func (b *Backend) GetRelationship(ctx context.Context, guid string) (*metadata.Relationship, error) {
	var doc relationshipDocument
	if err := b.relationships.FindOne(ctx, byGUID(guid)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrRelationshipNotFound(guid)
		}
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read relationship")
	}
	return storage.DecodeRelationship([]byte(doc.Body))
}

// DeleteRelationship removes a relationship.
func (b *Backend) DeleteRelationship(ctx context.Context, guid string) error {
	if _, err := b.relationships.DeleteOne(ctx, byGUID(guid)); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to delete relationship")
	}
	return nil
}

// ListRelationships reads relationships touching elementGUID ordered by GUID.
func (b *Backend) ListRelationships(ctx context.Context, elementGUID string) ([]*metadata.Relationship, error) {
	cursor, err := b.relationships.Find(ctx, RelationshipFilter(elementGUID), sortedFind())
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to list relationships")
	}
	var docs []relationshipDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to read relationships")
	}

	out := make([]*metadata.Relationship, 0, len(docs))
	for _, doc := range docs {
		r, err := storage.DecodeRelationship([]byte(doc.Body))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Close disconnects the client.
func (b *Backend) Close(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Disconnect(ctx); err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeConnection, "failed to disconnect from MongoDB")
	}
	return nil
}
