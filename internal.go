package logging

import (
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/Station-Manager/utils"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func (s *Service) initializeRollingFileLogger(exeName string) *lumberjack.Logger {
	if exeName == emptyString {
		exeName = "app"
	}

	path := filepath.Join(s.WorkingDir, s.Config.RelLogFileDir, exeName+".log")

	return &lumberjack.Logger{
		Filename:   path,
		MaxBackups: s.Config.LogFileMaxBackups,
		MaxAge:     s.Config.LogFileMaxAgeDays,
		MaxSize:    s.Config.LogFileMaxSizeMB,
		Compress:   s.Config.LogFileCompress,
	}
}

func (s *Service) initializeWriters(logfile string) []io.Writer {
	var writers []io.Writer

	if s.Config.FileLogging {
		s.fileWriter = s.initializeRollingFileLogger(logfile)
		writers = append(writers, s.fileWriter)
	}
	if s.Config.ConsoleLogging {
		out := s.ConsoleOut
		if out == nil {
			out = os.Stderr
		}
		cw := zerolog.ConsoleWriter{Out: out, NoColor: s.Config.ConsoleNoColor}
		if s.Config.ConsoleTimeFormat != emptyString {
			cw.TimeFormat = s.Config.ConsoleTimeFormat
		}
		writers = append(writers, cw)
	}

	return writers
}

// appIdentity resolves the Assembly and Version enrichment values.
func appIdentity(cfg *Config) (name, version string) {
	name, version = cfg.AppName, cfg.AppVersion

	if name == emptyString {
		if exe, err := utils.ExecName(true); err == nil {
			name = exe
		}
	}
	if version == emptyString {
		if info, ok := debug.ReadBuildInfo(); ok {
			version = info.Main.Version
		}
	}

	return name, version
}
