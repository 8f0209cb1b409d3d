package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"heapdb/pkg/config"
	"heapdb/pkg/dberror"
	"heapdb/pkg/registry"
)

func newTestContext(t *testing.T) *registry.DatabaseContext {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	dbCtx, err := registry.NewDatabaseContext(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func TestRunDemo(t *testing.T) {
	dbCtx := newTestContext(t)

	report, err := runDemo(context.Background(), dbCtx, 100)
	require.NoError(t, err)

	assert.Equal(t, int32(100), report.Inserted)
	assert.Equal(t, int32(50), report.Threshold)
	assert.Equal(t, 50, report.Matched)
	assert.Equal(t, 100, report.TotalTuples)
	assert.Equal(t, map[string]int32{
		"engineering": 25,
		"sales":       25,
		"support":     25,
		"finance":     25,
	}, report.Departments)
	assert.InDelta(t, 0.5, report.Selectivity, 0.05)
	assert.InDelta(t, 50, report.Cardinality, 5)
	assert.Greater(t, report.ScanCost, 0.0)

	var out bytes.Buffer
	report.Print(&out)
	assert.Contains(t, out.String(), "inserted 100 rows into employees")
	assert.Contains(t, out.String(), "matched 50 rows")
}

func TestRunDemo_RejectsEmptyWorkload(t *testing.T) {
	_, err := runDemo(context.Background(), newTestContext(t), 0)
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}

func TestMux(t *testing.T) {
	mux := newMux(newTestContext(t))

	tests := []struct {
		path     string
		contains string
	}{
		{"/health", "OK"},
		{"/metrics", "heapdb_buffer_pool_hits_total"},
		{"/metrics", "heapdb_buffer_pool_resident_pages"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestServeMetrics_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := serveMetrics(ctx, "127.0.0.1:0", newTestContext(t), zap.NewNop())
	assert.NoError(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults with data override", func(t *testing.T) {
		cfg, err := loadConfig(options{DataDir: "/tmp/heapdb-test"})
		require.NoError(t, err)
		assert.Equal(t, "/tmp/heapdb-test", cfg.DataDir)
		assert.Equal(t, 50, cfg.BufferPool.MaxPages)
	})

	t.Run("file then override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "heapdb.yaml")
		require.NoError(t, os.WriteFile(path, []byte("data_dir: from-file\nbuffer_pool:\n  max_pages: 8\n"), 0o600))

		cfg, err := loadConfig(options{ConfigPath: path})
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.DataDir)
		assert.Equal(t, 8, cfg.BufferPool.MaxPages)

		cfg, err = loadConfig(options{ConfigPath: path, DataDir: "flag"})
		require.NoError(t, err)
		assert.Equal(t, "flag", cfg.DataDir)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
		assert.Error(t, err)
	})
}
