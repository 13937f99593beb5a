package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/actuallystonmai/alt-choice/internal/domain"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps every collection in one JSONB table, see migrations/.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string, poolSize int) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if poolSize > 0 {
		poolConfig.MaxConns = int32(poolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Collection(name string) Collection {
	return &pgCollection{pool: s.pool, name: name}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// Migrate executes a schema script.
func (s *PostgresStore) Migrate(ctx context.Context, sql string) error {
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

type pgCollection struct {
	pool *pgxpool.Pool
	name string
}

func (c *pgCollection) Find(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	match, err := json.Marshal(containment(filter))
	if err != nil {
		return nil, fmt.Errorf("encode %s filter: %w", c.name, err)
	}

	rows, err := c.pool.Query(ctx,
		`SELECT doc FROM documents
		WHERE collection = $1 AND doc @> $2::jsonb
		ORDER BY created_at, id`,
		c.name, string(match),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.name, err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", c.name, err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over %s documents: %w", c.name, err)
	}
	return docs, nil
}

func (c *pgCollection) FindByID(ctx context.Context, id string) (domain.Document, error) {
	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	var doc domain.Document
	err := c.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND id = $2`,
		c.name, id,
	).Scan(&doc)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s id=%s: %w", c.name, id, err)
	}
	return doc, nil
}

func (c *pgCollection) InsertOne(ctx context.Context, doc domain.Document) (*domain.InsertResult, error) {
	id := domain.NewID().Hex()
	record := doc.WithoutID()
	record[domain.IDField] = id

	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", c.name, err)
	}

	if _, err := c.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3::jsonb)`,
		c.name, id, string(body),
	); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", c.name, err)
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// SetByID locks the row, applies fields in Go so dotted keys address
// embedded objects, and writes the result back in one transaction. With
// upsert, a missing row is first created holding only its id.
func (c *pgCollection) SetByID(ctx context.Context, id string, fields domain.Document, upsert bool) (*domain.UpdateResult, error) {
	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update %s id=%s: %w", c.name, id, err)
	}
	defer tx.Rollback(ctx)

	inserted := false
	if upsert {
		tag, err := tx.Exec(ctx,
			`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, jsonb_build_object('_id', $2::text))
			ON CONFLICT (collection, id) DO NOTHING`,
			c.name, id,
		)
		if err != nil {
			return nil, fmt.Errorf("upsert %s id=%s: %w", c.name, id, err)
		}
		inserted = tag.RowsAffected() == 1
	}

	var doc domain.Document
	err = tx.QueryRow(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
		c.name, id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock %s id=%s: %w", c.name, id, err)
	}

	modified := doc.Apply(fields.WithoutID())
	if modified {
		body, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode %s document: %w", c.name, err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE documents SET doc = $3::jsonb WHERE collection = $1 AND id = $2`,
			c.name, id, string(body),
		); err != nil {
			return nil, fmt.Errorf("update %s id=%s: %w", c.name, id, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update %s id=%s: %w", c.name, id, err)
	}

	if inserted {
		return &domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
	}
	res := &domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if modified {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *pgCollection) IncrementByID(ctx context.Context, id, field string, delta int) (*domain.UpdateResult, error) {
	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	tag, err := c.pool.Exec(ctx,
		`UPDATE documents
		SET doc = jsonb_set(doc, ARRAY[$3::text], to_jsonb(COALESCE((doc->>$3::text)::numeric, 0) + $4::int))
		WHERE collection = $1 AND id = $2`,
		c.name, id, field, delta,
	)
	if err != nil {
		return nil, fmt.Errorf("increment %s.%s id=%s: %w", c.name, field, id, err)
	}
	n := tag.RowsAffected()
	return &domain.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (c *pgCollection) DeleteByID(ctx context.Context, id string) (*domain.DeleteResult, error) {
	if _, err := domain.ParseID(id); err != nil {
		return nil, err
	}

	tag, err := c.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		c.name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("delete %s id=%s: %w", c.name, id, err)
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

// containment turns dotted-path equality into a nested JSON object usable
// with the @> operator.
func containment(filter domain.Filter) map[string]any {
	out := map[string]any{}
	for key, value := range filter {
		parts := strings.Split(key, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = value
	}
	return out
}
