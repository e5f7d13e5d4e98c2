package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(cfg))

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, defaultPerfTableName, cfg.PerfTableName)
	assert.Equal(t, defaultUsageIndexPrefix, cfg.UsageIndexPrefix)
	assert.Equal(t, defaultErrorIndexPrefix, cfg.ErrorIndexPrefix)
	assert.True(t, cfg.AutoCreateSQLTable)
	assert.True(t, cfg.AutoRegisterTemplate)
}

func TestLoadConfig_NoFiles(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FilePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", `
APIBOOSTER_LOG_LEVEL=debug
APIBOOSTER_FILE_LOGGING=true
APIBOOSTER_LOG_FILE_MAX_BACKUPS=9
APIBOOSTER_ELASTICSEARCH_URI=http://es.internal:9200
APIBOOSTER_LOGGING_DB_DIALECT=postgres
APIBOOSTER_LOGGING_DB="host=db user=log dbname=perf"
UNRELATED=ignored
`)
	writeEnvFile(t, dir, ".local.env", `
APIBOOSTER_LOG_LEVEL=trace
APIBOOSTER_PERF_TABLE=ApiPerf
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.Level, ".local.env overrides .env")
	assert.True(t, cfg.FileLogging)
	assert.Equal(t, 9, cfg.LogFileMaxBackups)
	assert.Equal(t, "http://es.internal:9200", cfg.ElasticsearchURI)
	assert.Equal(t, "postgres", cfg.LoggingDB.Dialect)
	assert.Equal(t, "host=db user=log dbname=perf", cfg.LoggingDB.DSN)
	assert.Equal(t, "ApiPerf", cfg.PerfTableName)
	require.NoError(t, validateConfig(cfg))
}

func TestLoadConfig_ProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", "APIBOOSTER_SINK_QUEUE_SIZE=10\n")
	t.Setenv("APIBOOSTER_SINK_QUEUE_SIZE", "64")
	t.Setenv("APIBOOSTER_APP_NAME", "shop-api")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.SinkQueueSize)
	assert.Equal(t, "shop-api", cfg.AppName)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"number": "APIBOOSTER_SINK_QUEUE_SIZE=lots\n",
		"bool":   "APIBOOSTER_FILE_LOGGING=perhaps\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeEnvFile(t, dir, ".env", content)

			_, err := LoadConfig(dir)
			require.Error(t, err)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.Level = "loud" }, true},
		{"bad sink level", func(c *Config) { c.SinkLevel = "disabled" }, true},
		{"empty sink level", func(c *Config) { c.SinkLevel = "" }, false},
		{"negative queue", func(c *Config) { c.SinkQueueSize = -1 }, true},
		{"bad dialect", func(c *Config) { c.LoggingDB.Dialect = "oracle" }, true},
		{"mysql dialect", func(c *Config) { c.LoggingDB.Dialect = "mysql" }, false},
		{"bad es uri", func(c *Config) { c.ElasticsearchURI = "not a url" }, true},
		{"absolute log dir", func(c *Config) { c.RelLogFileDir = "/var/log" }, true},
		{"escaping log dir", func(c *Config) { c.RelLogFileDir = "../logs" }, true},
		{"nested log dir", func(c *Config) { c.RelLogFileDir = "var/logs" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	require.Error(t, validateConfig(nil))
}
