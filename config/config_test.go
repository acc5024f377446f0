package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "./media", cfg.Storage.Root)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, 1, cfg.Aggregate.DefaultTimeframe)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing root",
			mutate:  func(c *Config) { c.Storage.Root = "" },
			wantErr: true,
			errMsg:  "storage.root is required",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "s3" },
			wantErr: true,
			errMsg:  "storage.backend must satisfy oneof=json sqlite csv redis",
		},
		{
			name:    "zero timeframe",
			mutate:  func(c *Config) { c.Aggregate.DefaultTimeframe = 0 },
			wantErr: true,
			errMsg:  "aggregate.default_timeframe must satisfy gte=1",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "log.level",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Server.MaxUploadBytes = 0 },
			wantErr: true,
			errMsg:  "server.max_upload_bytes",
		},
		{
			name: "sqlite without db path",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendSQLite
				c.Storage.DBPath = ""
			},
			wantErr: true,
			errMsg:  "storage.db_path required for sqlite backend",
		},
		{
			name: "csv without path",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendCSV
				c.Storage.CSVPath = ""
			},
			wantErr: true,
			errMsg:  "storage.csv_path required for csv backend",
		},
		{
			name: "redis without addr",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendRedis
				c.Storage.Redis.Addr = ""
			},
			wantErr: true,
			errMsg:  "storage.redis.addr required for redis backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tfcandle.yaml")

	cfg := Default()
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.Redis.TTL = 90 * time.Second
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveAndLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tfcandle.json")

	cfg := Default()
	cfg.Server.Addr = "127.0.0.1:9000"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", loaded.Server.Addr)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  root: /srv/uploads\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/uploads", cfg.Storage.Root)
	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  root: /from/file\nserver:\n  addr: \":7000\"\n"), 0644))

	t.Setenv("TFCANDLE_STORAGE_ROOT", "/from/env")
	t.Setenv("TFCANDLE_STORAGE_REDIS_TTL", "2m")
	t.Setenv("TFCANDLE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Storage.Root)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Storage.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("TFCANDLE_STORAGE_BACKEND", "nosuch")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}
