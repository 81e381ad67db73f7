package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tienda/internal/assets"
	"github.com/Skotchmaster/tienda/internal/db"
	"github.com/Skotchmaster/tienda/internal/events/eventstest"
	"github.com/Skotchmaster/tienda/internal/repo"
	"github.com/Skotchmaster/tienda/internal/session"
)

type testEnv struct {
	Repo    *repo.GormRepo
	Auth    *AuthService
	Catalog *CatalogService
	Events  *eventstest.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	rec := &eventstest.Recorder{}
	mgr := session.NewManager(session.NewGormStore(gdb), []byte("test-secret"), 30*time.Minute, 24*time.Hour, false)

	return &testEnv{
		Repo:    r,
		Events:  rec,
		Auth:    &AuthService{Repo: r, Sessions: mgr, Events: rec},
		Catalog: &CatalogService{Repo: r, Assets: assets.New(t.TempDir()), Events: rec},
	}
}
