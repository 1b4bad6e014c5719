// Package mongo reads the corpus from a MongoDB collection.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
)

// Repo implements detection.DocumentSource over a MongoDB database.
type Repo struct {
	client   *mongo.Client
	database string
	fields   domdoc.FieldMapping
}

// Connect creates a client for uri. The driver dials lazily; use Ping to
// check reachability.
func Connect(ctx context.Context, uri, database string, fields domdoc.FieldMapping) (*Repo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &Repo{client: client, database: database, fields: fields.WithDefaults()}, nil
}

// Fetch returns every document of the filter.Source collection sorted by _id.
func (r *Repo) Fetch(ctx context.Context, filter domdoc.Filter) ([]domdoc.Document, error) {
	coll := r.client.Database(r.database).Collection(filter.Source)

	opts := options.Find().
		SetProjection(projection(r.fields, filter.TextField)).
		SetSort(bson.D{{Key: r.fields.ID, Value: 1}})

	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", filter.Source, err)
	}
	defer cur.Close(ctx)

	var docs []domdoc.Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, docFromBSON(raw, r.fields, filter.TextField))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	return docs, nil
}

// Ping checks the primary is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *Repo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func projection(f domdoc.FieldMapping, tf domdoc.TextField) bson.M {
	return bson.M{
		f.ID:             1,
		f.ExternalID:     1,
		f.Origin:         1,
		f.TextColumn(tf): 1,
	}
}

func docFromBSON(m bson.M, f domdoc.FieldMapping, tf domdoc.TextField) domdoc.Document {
	return domdoc.New(
		bsonString(m[f.ID]),
		bsonString(m[f.ExternalID]),
		bsonString(m[f.Origin]),
		domdoc.TextFromAny(m[f.TextColumn(tf)]),
	)
}

func bsonString(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return domdoc.StringOf(v)
}
