package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/actuallystonmai/alt-choice/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		// embedded objects decode as maps so they render as JSON objects
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	cursor, err := c.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}

	docs := []domain.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s documents: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c *mongoCollection) FindByID(ctx context.Context, id string) (domain.Document, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	var doc domain.Document
	err = c.coll.FindOne(ctx, bson.M{domain.IDField: oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s id=%s: %w", c.coll.Name(), id, err)
	}
	return doc, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc domain.Document) (*domain.InsertResult, error) {
	record := bson.M(doc.WithoutID())
	record[domain.IDField] = domain.NewID()

	res, err := c.coll.InsertOne(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

func (c *mongoCollection) SetByID(ctx context.Context, id string, fields domain.Document, upsert bool) (*domain.UpdateResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	res, err := c.coll.UpdateOne(ctx,
		bson.M{domain.IDField: oid},
		bson.M{"$set": bson.M(fields.WithoutID())},
		options.Update().SetUpsert(upsert),
	)
	if err != nil {
		return nil, fmt.Errorf("update %s id=%s: %w", c.coll.Name(), id, err)
	}
	return updateResult(res), nil
}

func (c *mongoCollection) IncrementByID(ctx context.Context, id, field string, delta int) (*domain.UpdateResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	res, err := c.coll.UpdateOne(ctx,
		bson.M{domain.IDField: oid},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		return nil, fmt.Errorf("increment %s.%s id=%s: %w", c.coll.Name(), field, id, err)
	}
	return updateResult(res), nil
}

func (c *mongoCollection) DeleteByID(ctx context.Context, id string) (*domain.DeleteResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	res, err := c.coll.DeleteOne(ctx, bson.M{domain.IDField: oid})
	if err != nil {
		return nil, fmt.Errorf("delete %s id=%s: %w", c.coll.Name(), id, err)
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func updateResult(res *mongo.UpdateResult) *domain.UpdateResult {
	return &domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}
}
