package main

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()
	assert.NotNil(t, root.RunE)

	for _, path := range [][]string{{"serve"}, {"migrate", "up"}, {"migrate", "down"}, {"migrate", "status"}} {
		cmd, rest, err := root.Find(path)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, path[len(path)-1], cmd.Name())
		assert.NotNil(t, cmd.RunE)
	}
}

func TestMigrateRejectsArguments(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"migrate", "up", "extra"})
	assert.Error(t, root.Execute())
}

func TestReleaseResources_ClosesDatabaseAndRedis(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mock.ExpectClose()
	releaseResources(db, client, zap.NewNop())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.ErrorIs(t, client.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestReleaseResources_WithoutRedis(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	mock.ExpectClose()
	releaseResources(db, nil, zap.NewNop())
	assert.NoError(t, mock.ExpectationsWereMet())
}
