package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Options describes how to reach the primary store and optional read replica.
type Options struct {
	Type       string // postgres, supa or sqlite
	DSN        string
	SQLitePath string
	ReplicaDSN string
	Logger     zerolog.Logger
}

// gormWriter routes gorm's log output through zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

// Open connects to the configured store. Unique and foreign key violations are
// translated into gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		gormWriter{log: opts.Logger.With().Str("component", "gorm").Logger()},
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:    false,
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Type, err)
	}

	if opts.Type == "sqlite" {
		// sqlite allows a single writer; serialise access through one connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if opts.ReplicaDSN != "" && opts.Type != "sqlite" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  opts.ReplicaDSN,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}
	return db, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Type {
	case "postgres", "supa":
		if opts.DSN == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for DB_TYPE %s", opts.Type)
		}
		return postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true,
		}), nil
	case "sqlite":
		return sqlite.Open(SQLiteDSN(opts.SQLitePath)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", opts.Type)
	}
}

// SQLiteDSN returns a DSN for path with foreign keys enforced, creating the
// parent directory when needed.
func SQLiteDSN(path string) string {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}
