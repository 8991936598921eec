package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "gaze:v1:abc"

func TestPGCache_Set(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cache := NewPGCache(mock)
	value := []byte(`{"direction":"center"}`)

	mock.ExpectExec("INSERT INTO cache_entries").
		WithArgs(testKey, value, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = cache.Set(context.Background(), testKey, value, 5*time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGCache_Set_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO cache_entries").
		WillReturnError(errors.New("read-only transaction"))

	err = NewPGCache(mock).Set(context.Background(), testKey, []byte("x"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write cache entry")
}

func TestPGCache_Get(t *testing.T) {
	t.Run("successful get", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cache := NewPGCache(mock)
		value := []byte(`{"direction":"left"}`)

		rows := pgxmock.NewRows([]string{"value", "expires_at"}).
			AddRow(value, time.Now().Add(5*time.Minute))

		mock.ExpectQuery("SELECT value, expires_at FROM cache_entries").
			WithArgs(testKey).
			WillReturnRows(rows)

		result, err := cache.Get(context.Background(), testKey)
		assert.NoError(t, err)
		assert.Equal(t, value, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT value, expires_at FROM cache_entries").
			WithArgs("missing:key").
			WillReturnError(pgx.ErrNoRows)

		result, err := NewPGCache(mock).Get(context.Background(), "missing:key")
		assert.ErrorIs(t, err, ErrCacheMiss)
		assert.Nil(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired entry is deleted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"value", "expires_at"}).
			AddRow([]byte("stale"), time.Now().Add(-5*time.Minute))

		mock.ExpectQuery("SELECT value, expires_at FROM cache_entries").
			WithArgs(testKey).
			WillReturnRows(rows)
		mock.ExpectExec("DELETE FROM cache_entries WHERE key").
			WithArgs(testKey).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		result, err := NewPGCache(mock).Get(context.Background(), testKey)
		assert.ErrorIs(t, err, ErrCacheExpired)
		assert.Nil(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPGCache_CleanupExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM cache_entries WHERE expires_at").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := NewPGCache(mock).CleanupExpired(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
