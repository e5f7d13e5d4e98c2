package logging

import (
	"context"
	"time"

	"github.com/Station-Manager/errors"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PerfLogEntry is one row of the perf log table. Column names match the
// table layout shared with the reporting queries.
type PerfLogEntry struct {
	ID                  int64     `gorm:"column:Id;primaryKey;autoIncrement"`
	TimeStamp           time.Time `gorm:"column:TimeStamp;not null"`
	PerfItem            string    `gorm:"column:PerfItem;size:100;not null;index"`
	ElapsedMilliseconds int       `gorm:"column:ElapsedMilliseconds;not null"`
	ActionName          string    `gorm:"column:ActionName;size:256;not null"`
	MachineName         string    `gorm:"column:MachineName;size:256;not null"`
	LogEvent            string    `gorm:"column:LogEvent"`
}

// perfColumns are stored in their own columns and left out of LogEvent,
// together with the standard zerolog fields.
var perfColumns = map[string]struct{}{
	FieldPerfItem:            {},
	FieldElapsedMilliseconds: {},
	FieldActionName:          {},
	FieldMachineName:         {},
}

// SQLSinkOptions configures a SQLSink.
type SQLSinkOptions struct {
	TableName       string
	AutoCreateTable bool
	// CloseDB closes the underlying pool when the sink is closed.
	CloseDB bool
}

// SQLSink stores perf events as rows of the perf log table.
type SQLSink struct {
	db      *gorm.DB
	table   string
	closeDB bool
}

// OpenLoggingDB opens the perf log database described by cfg.
func OpenLoggingDB(cfg DBConfig) (*gorm.DB, error) {
	const op errors.Op = "logging.OpenLoggingDB"

	var dialector gorm.Dialector
	switch cfg.Dialect {
	case emptyString, "sqlserver":
		dialector = sqlserver.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, errors.New(op).Msg(errMsgUnknownDialect)
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgDBOpen)
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	}
}

// NewSQLSink creates a sink writing into opts.TableName, creating the table
// first when opts.AutoCreateTable is set.
func NewSQLSink(db *gorm.DB, opts SQLSinkOptions) (*SQLSink, error) {
	const op errors.Op = "logging.NewSQLSink"
	if db == nil {
		return nil, errors.New(op).Msg(errMsgSinkInit)
	}

	table := opts.TableName
	if table == emptyString {
		table = defaultPerfTableName
	}

	if opts.AutoCreateTable {
		if err := db.Table(table).AutoMigrate(&PerfLogEntry{}); err != nil {
			return nil, errors.New(op).Err(err).Msg(errMsgAutoCreateTable)
		}
	}

	return &SQLSink{db: db, table: table, closeDB: opts.CloseDB}, nil
}

// Write inserts one perf row for evt.
func (s *SQLSink) Write(ctx context.Context, evt Event) error {
	entry, err := perfEntryFromEvent(evt)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Table(s.table).Create(entry).Error
}

// Close releases the connection pool when the sink owns it.
func (s *SQLSink) Close() error {
	if !s.closeDB {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func perfEntryFromEvent(evt Event) (*PerfLogEntry, error) {
	ts := evt.Time()
	if ts.IsZero() {
		ts = time.Now()
	}

	rest := make(map[string]any, len(evt))
	for k, v := range evt {
		if _, ok := perfColumns[k]; ok {
			continue
		}
		switch k {
		case zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName:
			continue
		}
		rest[k] = v
	}

	raw, err := json.Marshal(rest)
	if err != nil {
		return nil, err
	}

	return &PerfLogEntry{
		TimeStamp:           ts.UTC(),
		PerfItem:            evt.Str(FieldPerfItem),
		ElapsedMilliseconds: evt.Int(FieldElapsedMilliseconds),
		ActionName:          evt.Str(FieldActionName),
		MachineName:         evt.Str(FieldMachineName),
		LogEvent:            string(raw),
	}, nil
}
