package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/storectx/pkg/persist"
)

func TestOpen_InstallsHandles(t *testing.T) {
	dir := t.TempDir()
	prevLocal, prevSession := persist.Local(), persist.Session()

	cfg := Default()
	cfg.Local.Backend = BackendSQLite
	cfg.Local.SQLitePath = filepath.Join(dir, "store.db")
	cfg.Session.Backend = BackendFile
	cfg.Session.FileDir = filepath.Join(dir, "session")
	cfg.Session.Watch = true
	require.NoError(t, cfg.Validate())

	h, err := Open(cfg, nil)
	require.NoError(t, err)

	assert.IsType(t, &persist.SQLStorage{}, h.Local)
	assert.IsType(t, &persist.FileStorage{}, h.Session)
	assert.Equal(t, persist.LocalName, persist.NameOf(persist.Local()))
	assert.Equal(t, persist.SessionName, persist.NameOf(h.Session))
	assert.Contains(t, h.Watched, persist.SessionName)
	assert.NotContains(t, h.Watched, persist.LocalName)

	changed, err := persist.Set(persist.Local(), "k", []any{1.0})
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, h.Close())
	assert.Equal(t, "", persist.NameOf(h.Local))
	assert.Equal(t, persist.LocalName, persist.NameOf(prevLocal))
	assert.Equal(t, persist.SessionName, persist.NameOf(prevSession))

	_, _, err = h.Local.GetItem("k")
	assert.ErrorIs(t, err, persist.ErrClosed)
}

func TestOpen_Tracing(t *testing.T) {
	cfg := Default()
	cfg.Tracing.Enabled = true

	h, err := Open(cfg, nil)
	require.NoError(t, err)
	defer h.Close()

	traced, ok := h.Local.(*persist.TracedStorage)
	require.True(t, ok, "local handle should be traced")
	assert.IsType(t, &persist.MemoryStorage{}, traced.Unwrap())
	assert.Equal(t, persist.LocalName, persist.NameOf(persist.Local()))
}

func TestOpen_BackendError(t *testing.T) {
	prev := persist.Local()

	cfg := Default()
	cfg.Local.Backend = BackendSQLite
	cfg.Local.SQLitePath = filepath.Join(t.TempDir(), "missing", "dir", "store.db")

	_, err := Open(cfg, nil)
	require.Error(t, err)
	assert.Equal(t, prev, persist.Local(), "a failed Open must not install handles")
}
