//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/actuallystonmai/alt-choice/internal/domain"
	"github.com/actuallystonmai/alt-choice/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "admin",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "altchoice",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgresql://admin:password@%s:%s/altchoice?sslmode=disable", host, port.Port())
	store, err := NewPostgresStore(ctx, url, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	require.NoError(t, store.Migrate(ctx, migrations.Up))
	return store
}

func TestPostgresStore_Integration(t *testing.T) {
	store := startPostgres(t)
	ctx := context.Background()
	queries := store.Collection(domain.QueryCollection)

	res, err := queries.InsertOne(ctx, domain.Document{
		domain.IDField:        "client-id",
		"productName":         "Photoshop",
		"recommendationCount": 0,
		"queryUser":           map[string]any{"email": "a@example.com", "name": "Ann"},
	})
	require.NoError(t, err)
	id, ok := res.InsertedID.(string)
	require.True(t, ok, "expected hex id, got %T", res.InsertedID)
	_, err = domain.ParseID(id)
	require.NoError(t, err)

	_, err = queries.InsertOne(ctx, domain.Document{"queryUser": map[string]any{"email": "b@example.com"}})
	require.NoError(t, err)

	t.Run("find", func(t *testing.T) {
		doc, err := queries.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Photoshop", doc["productName"])
		assert.Equal(t, id, doc[domain.IDField])

		all, err := queries.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		mine, err := queries.Find(ctx, domain.Filter{"queryUser.email": "a@example.com"})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "Photoshop", mine[0]["productName"])

		other, err := store.Collection(domain.RecommendationCollection).Find(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("increment then decrement below zero", func(t *testing.T) {
		for _, delta := range []int{1, -1, -1} {
			upd, err := queries.IncrementByID(ctx, id, "recommendationCount", delta)
			require.NoError(t, err)
			assert.EqualValues(t, 1, upd.MatchedCount)
		}
		doc, _ := queries.FindByID(ctx, id)
		assert.EqualValues(t, -1, doc["recommendationCount"])

		upd, err := queries.IncrementByID(ctx, id, "missingCounter", 1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, upd.ModifiedCount)
		doc, _ = queries.FindByID(ctx, id)
		assert.EqualValues(t, 1, doc["missingCounter"])
	})

	t.Run("set", func(t *testing.T) {
		upd, err := queries.SetByID(ctx, id, domain.Document{"queryUser.email": "c@example.com", domain.IDField: "ignored"}, true)
		require.NoError(t, err)
		assert.EqualValues(t, 1, upd.MatchedCount)
		assert.EqualValues(t, 1, upd.ModifiedCount)
		assert.EqualValues(t, 0, upd.UpsertedCount)

		doc, _ := queries.FindByID(ctx, id)
		assert.Equal(t, id, doc[domain.IDField])
		assert.Equal(t, map[string]any{"email": "c@example.com", "name": "Ann"}, doc["queryUser"])

		upd, err = queries.SetByID(ctx, id, domain.Document{"productName": "Photoshop"}, true)
		require.NoError(t, err)
		assert.EqualValues(t, 0, upd.ModifiedCount)

		newID := domain.NewID().Hex()
		upd, err = queries.SetByID(ctx, newID, domain.Document{"productName": "Krita"}, true)
		require.NoError(t, err)
		assert.EqualValues(t, 1, upd.UpsertedCount)
		assert.Equal(t, newID, upd.UpsertedID)
		doc, _ = queries.FindByID(ctx, newID)
		assert.Equal(t, "Krita", doc["productName"])
		assert.Equal(t, newID, doc[domain.IDField])

		upd, err = queries.SetByID(ctx, domain.NewID().Hex(), domain.Document{"x": 1}, false)
		require.NoError(t, err)
		assert.EqualValues(t, 0, upd.MatchedCount)
		assert.EqualValues(t, 0, upd.UpsertedCount)
	})

	t.Run("delete", func(t *testing.T) {
		del, err := queries.DeleteByID(ctx, domain.NewID().Hex())
		require.NoError(t, err)
		assert.EqualValues(t, 0, del.DeletedCount)

		del, err = queries.DeleteByID(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, del.DeletedCount)

		missing, err := queries.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := queries.DeleteByID(ctx, "xyz")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("migrate down", func(t *testing.T) {
		require.NoError(t, store.Migrate(ctx, migrations.Down))
		_, err := queries.Find(ctx, nil)
		assert.Error(t, err)
	})
}
