package live

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nickyhof/SchemaSpec/core"
)

const (
	DriverSQLite = "sqlite"
	DriverDuckDB = "duckdb"
)

var ErrUnsupportedDriver = errors.New("unsupported live driver")

// Source is an open live connection together with the introspector that
// fits its driver.
type Source struct {
	db        *sql.DB
	driver    string
	mainName  string
	namespace string
	logger    *zap.Logger
}

// Open connects to a live database. driver is "sqlite" or "duckdb".
func Open(driver, dsn string, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch driver {
	case DriverSQLite, DriverDuckDB:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	// ATTACH is per connection.
	db.SetMaxOpenConns(1)

	return &Source{db: db, driver: driver, logger: logger}, nil
}

// OpenDuckDB opens a DuckDB database; an empty dsn is in-memory.
func OpenDuckDB(dsn string, logger *zap.Logger) (*Source, error) {
	return Open(DriverDuckDB, dsn, logger)
}

func (s *Source) DB() *sql.DB {
	return s.db
}

func (s *Source) Driver() string {
	return s.driver
}

// SetMainName reports the main SQLite database under name.
func (s *Source) SetMainName(name string) {
	s.mainName = name
}

// SetNamespace keeps only databases named "<namespace>_...".
func (s *Source) SetNamespace(namespace string) {
	s.namespace = namespace
}

// Attach makes the database file at path visible under name.
func (s *Source) Attach(ctx context.Context, name, path string) error {
	var err error
	switch s.driver {
	case DriverSQLite:
		_, err = s.db.ExecContext(ctx, "ATTACH DATABASE ? AS "+quoteIdentifier(name), path)
	default:
		_, err = s.db.ExecContext(ctx, fmt.Sprintf("ATTACH '%s' AS %s", escapeLiteral(path), quoteIdentifier(name)))
	}
	if err != nil {
		return fmt.Errorf("failed to attach %s as %s: %w", path, name, err)
	}
	s.logger.Debug("attached live database", zap.String("name", name), zap.String("path", path))
	return nil
}

func (s *Source) Introspector() Introspector {
	var inner Introspector
	switch s.driver {
	case DriverSQLite:
		inner = SQLite{DB: s.db, MainName: s.mainName}
	default:
		inner = InformationSchema{DB: s.db, Dialect: DialectDuckDB}
	}
	if s.namespace != "" {
		inner = WithNamespace(inner, s.namespace)
	}
	return inner
}

func (s *Source) Introspect(ctx context.Context) (*core.ServerSchema, error) {
	server, err := s.Introspector().Introspect(ctx)
	if err != nil {
		return nil, err
	}

	databases, tables, columns := server.Counts()
	s.logger.Debug("introspected live schema",
		zap.String("driver", s.driver),
		zap.Int("databases", databases),
		zap.Int("tables", tables),
		zap.Int("columns", columns))
	return server, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}

func escapeLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

