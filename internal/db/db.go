package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/punch/internal/models"
)

// Supported drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var (
	// ErrNotFound indicates the row is missing or owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrOpenTrackerExists indicates the owner already has an open tracker.
	ErrOpenTrackerExists = errors.New("open tracker exists")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate entry")
)

// openTrackerIndex backs the one-open-tracker-per-owner rule on engines
// with partial indexes.
const openTrackerIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_time_trackers_one_open
	ON time_trackers(owner_id) WHERE end_at IS NULL AND deleted_at IS NULL`

// MySQL has no partial indexes. open_owner holds owner_id only while the
// row is open, and unique indexes admit any number of NULLs.
const (
	openOwnerColumn = "open_owner"
	mysqlOpenOwner  = `ALTER TABLE time_trackers
	ADD COLUMN open_owner BIGINT UNSIGNED GENERATED ALWAYS AS
		(CASE WHEN end_at IS NULL AND deleted_at IS NULL THEN owner_id END) STORED,
	ADD UNIQUE INDEX idx_time_trackers_one_open (open_owner)`
)

// MySQL server error numbers
const (
	mysqlDuplicateEntry = 1062
	mysqlLockTimeout    = 1205
	mysqlDeadlock       = 1213
)

// Options configures Open
type Options struct {
	Driver string // sqlite (default) or mysql
	DSN    string // file path for sqlite, DSN for mysql
	Logger *slog.Logger
	Debug  bool // log SQL statements
}

// Store wraps the gorm connection used by the tracker and task queries
type Store struct {
	db     *gorm.DB
	driver string
	logger *slog.Logger
}

// Open sets up the database connection and runs migrations
func Open(opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}

	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent // Quiet by default
	if opts.Debug {
		logMode = logger.Info
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows one writer at a time
		sqlDB.SetMaxOpenConns(1)
	}

	s := &Store{db: conn, driver: opts.Driver, logger: opts.Logger}
	if err := s.migrate(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	opts.Logger.Debug("database ready", "driver", opts.Driver)
	return s, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case DriverSQLite:
		path := opts.DSN
		if path == "" {
			var err error
			if path, err = DefaultDatabasePath(); err != nil {
				return nil, fmt.Errorf("failed to get database path: %w", err)
			}
		}
		if path == ":memory:" {
			return sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return sqlite.Open(path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), nil
	case DriverMySQL:
		if opts.DSN == "" {
			return nil, fmt.Errorf("mysql driver requires a dsn")
		}
		return mysql.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// DefaultDatabasePath returns the path to the SQLite database file
func DefaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".punch", "punch.db"), nil
}

// migrate creates/updates the database schema
func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&models.Task{},
		&models.TimeTracker{},
		&models.TrackerItem{},
	)
	if err != nil {
		return err
	}
	switch s.driver {
	case DriverSQLite:
		return s.db.Exec(openTrackerIndex).Error
	case DriverMySQL:
		if s.db.Migrator().HasColumn(&models.TimeTracker{}, openOwnerColumn) {
			return nil
		}
		return s.db.Exec(mysqlOpenOwner).Error
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection is usable
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// isLockConflict reports a MySQL deadlock or lock wait timeout. The statement
// was rolled back and can be retried.
func isLockConflict(err error) bool {
	var myErr *mysqldrv.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockTimeout
}
