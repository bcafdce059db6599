package persistence

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/contactkeeper/contact-service/internal/persistence/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		body, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}

	first, err := fs.ReadFile(migrations.FS, names[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(first), "users_email_unique"))
}

func TestRunMigrations_NilPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestPingWithoutConnections(t *testing.T) {
	ctx := context.Background()

	var pg *Postgres
	assert.Error(t, pg.Ping(ctx))
	assert.Nil(t, pg.PoolHandle())

	var rd *Redis
	assert.Error(t, rd.Ping(ctx))
	assert.Nil(t, rd.ClientHandle())

	var mg *Mongo
	assert.Error(t, mg.Ping(ctx))
}
