package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-planner/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForDB(t *testing.T) {
	t.Run("succeeds after retries", func(t *testing.T) {
		p := &flakyPinger{failures: 2}
		assert.True(t, waitForDB(context.Background(), p, discard, 5, time.Millisecond))
		assert.Equal(t, 3, p.calls)
	})

	t.Run("gives up", func(t *testing.T) {
		p := &flakyPinger{failures: 10}
		assert.False(t, waitForDB(context.Background(), p, discard, 3, time.Millisecond))
		assert.Equal(t, 3, p.calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := &flakyPinger{failures: 10}
		assert.False(t, waitForDB(ctx, p, discard, 5, time.Hour))
		assert.Equal(t, 1, p.calls)
	})
}

func TestNewDatabaseConfig(t *testing.T) {
	var cfg config.Config
	cfg.Repositories.Postgres.Host = "localhost"
	cfg.Repositories.Postgres.Port = "5432"
	cfg.Repositories.Postgres.Username = "planner"
	cfg.Repositories.Postgres.Password = "secret"
	cfg.Repositories.Postgres.DB = "places"

	dbCfg, err := NewDatabaseConfig(&cfg, discard)
	require.NoError(t, err)

	u, err := url.Parse(dbCfg.ConnectionURL)
	require.NoError(t, err)
	assert.Equal(t, "postgresql", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/places", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	cfg.Repositories.Postgres.SSLMODE = "require"
	dbCfg, err = NewDatabaseConfig(&cfg, discard)
	require.NoError(t, err)
	u, err = url.Parse(dbCfg.ConnectionURL)
	require.NoError(t, err)
	assert.Equal(t, "require", u.Query().Get("sslmode"))

	_, err = NewDatabaseConfig(&config.Config{}, discard)
	assert.ErrorIs(t, err, ErrMissingPostgresConfig)
}
