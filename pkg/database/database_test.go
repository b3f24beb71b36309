package database

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Bootstrap(t *testing.T) {
	db, err := New(context.Background(),
		WithBootstrap(
			`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`,
			`INSERT INTO kv (k, v) VALUES ('a', '1')`,
		))
	require.NoError(t, err)
	defer db.Close()

	var v string
	require.NoError(t, db.QueryRow(`SELECT v FROM kv WHERE k = 'a'`).Scan(&v))
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestNew_BootstrapFailure(t *testing.T) {
	_, err := New(context.Background(), WithBootstrap(`CREATE TABLEX nope`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap database")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(context.Background(), WithDriver(""))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = New(context.Background(), WithDataSource(""))
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), WithDriver("nosuchdriver"), WithRetry(2, time.Millisecond))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
