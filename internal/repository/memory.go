package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/actuallystonmai/alt-choice/internal/domain"
)

// MemoryStore is a process-local backend used for development and tests.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }

type memCollection struct {
	mu   sync.RWMutex
	docs []domain.Document // insertion order
}

func (c *memCollection) Find(_ context.Context, filter domain.Filter) ([]domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []domain.Document{}
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

func (c *memCollection) FindByID(_ context.Context, id string) (domain.Document, error) {
	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return clone(c.docs[i]), nil
	}
	return nil, nil
}

func (c *memCollection) InsertOne(_ context.Context, doc domain.Document) (*domain.InsertResult, error) {
	id := domain.NewID()
	record := doc.WithoutID()
	record[domain.IDField] = id

	c.mu.Lock()
	c.docs = append(c.docs, record)
	c.mu.Unlock()

	return &domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *memCollection) SetByID(_ context.Context, id string, fields domain.Document, upsert bool) (*domain.UpdateResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		if !upsert {
			return &domain.UpdateResult{Acknowledged: true}, nil
		}
		record := domain.Document{}
		record.Apply(fields.WithoutID())
		record[domain.IDField] = oid
		c.docs = append(c.docs, record)
		return &domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: oid}, nil
	}

	res := &domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if c.docs[i].Apply(fields.WithoutID()) {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *memCollection) IncrementByID(_ context.Context, id, field string, delta int) (*domain.UpdateResult, error) {
	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return &domain.UpdateResult{Acknowledged: true}, nil
	}

	next, err := addNumber(c.docs[i][field], delta)
	if err != nil {
		return nil, fmt.Errorf("increment %s id=%s: %w", field, id, err)
	}
	c.docs[i][field] = next
	return &domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (c *memCollection) DeleteByID(_ context.Context, id string) (*domain.DeleteResult, error) {
	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return &domain.DeleteResult{Acknowledged: true}, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// indexOf must be called with c.mu held.
func (c *memCollection) indexOf(id string) int {
	for i, doc := range c.docs {
		if oid, ok := doc[domain.IDField].(interface{ Hex() string }); ok && oid.Hex() == id {
			return i
		}
	}
	return -1
}

func matches(doc domain.Document, filter domain.Filter) bool {
	for key, want := range filter {
		got, ok := doc.Lookup(strings.Split(key, "."))
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func clone(doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// addNumber mirrors $inc: a missing field starts from zero.
func addNumber(v any, delta int) (any, error) {
	switch n := v.(type) {
	case nil:
		return delta, nil
	case int:
		return n + delta, nil
	case int32:
		return n + int32(delta), nil
	case int64:
		return n + int64(delta), nil
	case float64:
		return n + float64(delta), nil
	default:
		return nil, fmt.Errorf("cannot apply $inc to a value of type %T", v)
	}
}
