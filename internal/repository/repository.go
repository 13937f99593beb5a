package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/alt-choice/internal/config"
	"github.com/actuallystonmai/alt-choice/internal/domain"
)

// Collection is a handle on one named set of documents. Every method is a
// single store operation; ids are hex ObjectIDs and a malformed id yields
// domain.ErrInvalidID.
type Collection interface {
	Find(ctx context.Context, filter domain.Filter) ([]domain.Document, error)
	// FindByID returns nil, nil when no document has the id.
	FindByID(ctx context.Context, id string) (domain.Document, error)
	InsertOne(ctx context.Context, doc domain.Document) (*domain.InsertResult, error)
	// SetByID merges fields into the document, creating it when upsert is set.
	SetByID(ctx context.Context, id string, fields domain.Document, upsert bool) (*domain.UpdateResult, error)
	IncrementByID(ctx context.Context, id, field string, delta int) (*domain.UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (*domain.DeleteResult, error)
}

type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.DBName)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
