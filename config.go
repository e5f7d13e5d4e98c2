package logging

import (
	stderrs "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Station-Manager/errors"
	"github.com/joho/godotenv"
)

// Config holds every setting of the logging pipeline. Sinks are optional: the
// perf table is enabled by LoggingDB.DSN and the usage/error indexes by
// ElasticsearchURI.
type Config struct {
	Level          string `validate:"required,oneof=trace debug info warn error fatal panic disabled"`
	SkipFrameCount int    `validate:"gte=0"`
	WithTimestamp  bool

	ConsoleLogging    bool
	ConsoleNoColor    bool
	ConsoleTimeFormat string

	FileLogging       bool
	RelLogFileDir     string `validate:"required,relpath"`
	LogFileMaxBackups int    `validate:"gte=0"`
	LogFileMaxAgeDays int    `validate:"gte=0"`
	LogFileMaxSizeMB  int    `validate:"gte=0"`
	LogFileCompress   bool

	ShutdownTimeoutMS      int `validate:"gte=0"`
	ShutdownTimeoutWarning bool

	// AppName and AppVersion default to the executable name and the module
	// version from the build info.
	AppName    string
	AppVersion string

	// SinkLevel is the minimum level forwarded to the downstream sinks.
	SinkLevel          string `validate:"omitempty,oneof=trace debug info warn error fatal panic"`
	SinkQueueSize      int    `validate:"gte=0"`
	SinkWriteTimeoutMS int    `validate:"gte=0"`

	LoggingDB          DBConfig
	PerfTableName      string
	AutoCreateSQLTable bool

	ElasticsearchURI      string `validate:"omitempty,url"`
	ElasticsearchUsername string
	ElasticsearchPassword string
	UsageIndexPrefix      string
	ErrorIndexPrefix      string
	AutoRegisterTemplate  bool
}

// DBConfig selects the relational store for the perf log. An empty Dialect
// means sqlserver.
type DBConfig struct {
	Dialect string `validate:"omitempty,oneof=sqlserver postgres mysql"`
	DSN     string
}

// DefaultConfig returns a console-only configuration at info level.
func DefaultConfig() *Config {
	return &Config{
		Level:                  "info",
		WithTimestamp:          true,
		ConsoleLogging:         true,
		RelLogFileDir:          "logs",
		LogFileMaxBackups:      3,
		LogFileMaxAgeDays:      7,
		LogFileMaxSizeMB:       10,
		ShutdownTimeoutMS:      defaultShutdownTimeoutMS,
		ShutdownTimeoutWarning: true,
		SinkLevel:              "info",
		SinkQueueSize:          defaultSinkQueueSize,
		SinkWriteTimeoutMS:     defaultSinkWriteTimeout,
		PerfTableName:          defaultPerfTableName,
		AutoCreateSQLTable:     true,
		UsageIndexPrefix:       defaultUsageIndexPrefix,
		ErrorIndexPrefix:       defaultErrorIndexPrefix,
		AutoRegisterTemplate:   true,
	}
}

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "APIBOOSTER_"

const (
	envFileName         = ".env"
	envOverrideFileName = ".local.env"
)

// LoadConfig builds a Config from DefaultConfig, the .env and .local.env
// files in folder and the process environment, in increasing precedence.
// Missing files are ignored.
func LoadConfig(folder string) (*Config, error) {
	const op errors.Op = "logging.LoadConfig"

	values := make(map[string]string)
	for _, name := range []string{envFileName, envOverrideFileName} {
		content, err := godotenv.Read(filepath.Join(folder, name))
		if err != nil {
			if stderrs.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.New(op).Err(err).Msg(errMsgEnvFile)
		}
		for k, v := range content {
			values[k] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			values[k] = v
		}
	}

	cfg := DefaultConfig()
	if err := cfg.apply(values); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgEnvValue)
	}

	return cfg, nil
}

func (c *Config) apply(values map[string]string) error {
	str := func(key string, dst *string) {
		if v, ok := values[EnvPrefix+key]; ok {
			*dst = v
		}
	}
	var err error
	num := func(key string, dst *int) {
		if v, ok := values[EnvPrefix+key]; ok && err == nil {
			var n int
			if n, err = strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := values[EnvPrefix+key]; ok && err == nil {
			var b bool
			if b, err = strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}

	str("LOG_LEVEL", &c.Level)
	num("SKIP_FRAME_COUNT", &c.SkipFrameCount)
	flag("WITH_TIMESTAMP", &c.WithTimestamp)
	flag("CONSOLE_LOGGING", &c.ConsoleLogging)
	flag("CONSOLE_NO_COLOR", &c.ConsoleNoColor)
	str("CONSOLE_TIME_FORMAT", &c.ConsoleTimeFormat)
	flag("FILE_LOGGING", &c.FileLogging)
	str("LOG_FILE_DIR", &c.RelLogFileDir)
	num("LOG_FILE_MAX_BACKUPS", &c.LogFileMaxBackups)
	num("LOG_FILE_MAX_AGE_DAYS", &c.LogFileMaxAgeDays)
	num("LOG_FILE_MAX_SIZE_MB", &c.LogFileMaxSizeMB)
	flag("LOG_FILE_COMPRESS", &c.LogFileCompress)
	num("SHUTDOWN_TIMEOUT_MS", &c.ShutdownTimeoutMS)
	flag("SHUTDOWN_TIMEOUT_WARNING", &c.ShutdownTimeoutWarning)
	str("APP_NAME", &c.AppName)
	str("APP_VERSION", &c.AppVersion)
	str("SINK_LEVEL", &c.SinkLevel)
	num("SINK_QUEUE_SIZE", &c.SinkQueueSize)
	num("SINK_WRITE_TIMEOUT_MS", &c.SinkWriteTimeoutMS)
	str("LOGGING_DB_DIALECT", &c.LoggingDB.Dialect)
	str("LOGGING_DB", &c.LoggingDB.DSN)
	str("PERF_TABLE", &c.PerfTableName)
	flag("AUTO_CREATE_SQL_TABLE", &c.AutoCreateSQLTable)
	str("ELASTICSEARCH_URI", &c.ElasticsearchURI)
	str("ELASTICSEARCH_USERNAME", &c.ElasticsearchUsername)
	str("ELASTICSEARCH_PASSWORD", &c.ElasticsearchPassword)
	str("USAGE_INDEX_PREFIX", &c.UsageIndexPrefix)
	str("ERROR_INDEX_PREFIX", &c.ErrorIndexPrefix)
	flag("AUTO_REGISTER_TEMPLATE", &c.AutoRegisterTemplate)

	return err
}
