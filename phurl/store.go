package phurl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nickyhof/SchemaSpec/spec"
)

// PHIDType is the object type segment of URL PHIDs.
const PHIDType = "PHRL"

var ErrInvalidURL = errors.New("invalid URL")

// SQLiteStore keeps URLs in a phurl_url table whose column types come from
// the Lisk type mapper.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLiteStore opens dsn with the sqlite driver and creates the URL
// table if it does not exist yet.
func OpenSQLiteStore(ctx context.Context, dsn string, options spec.Options, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	store := NewSQLiteStore(db, logger)
	if err := store.CreateSchema(ctx, options); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewSQLiteStore(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger, now: time.Now}
}

func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// TableDDL renders the CREATE TABLE statement for phurl_url.
func TableDDL(options spec.Options) string {
	definitions := make([]string, 0, len(urlColumns))
	for _, column := range urlColumns {
		details := spec.DetailsForDataType(column.DataType, options.UTF8Charset, options.UTF8Collation)
		definition := column.Name + " " + details.SQLiteType()
		if column.Name == "id" {
			definition += " PRIMARY KEY"
		}
		if column.Name == "phid" {
			definition += " UNIQUE"
		}
		definitions = append(definitions, definition)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", TableName, strings.Join(definitions, ", "))
}

func (s *SQLiteStore) CreateSchema(ctx context.Context, options spec.Options) error {
	ddl := TableDDL(options)
	s.logger.Debug("Creating URL table", zap.String("ddl", ddl))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create %s: %w", TableName, err)
	}
	return nil
}

func newPHID() string {
	return "PHID-" + PHIDType + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// CreateURL stores url, assigning its ID, PHID and timestamps.
func (s *SQLiteStore) CreateURL(ctx context.Context, url *URL) error {
	if url.LongURL == "" {
		return fmt.Errorf("%w: long URL is required", ErrInvalidURL)
	}
	if url.AuthorPHID == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidURL)
	}

	if url.PHID == "" {
		url.PHID = newPHID()
	}
	now := s.now().Unix()
	if url.DateCreated == 0 {
		url.DateCreated = now
	}
	url.DateModified = now

	err := s.db.QueryRowContext(ctx,
		"INSERT INTO "+TableName+
			" (id, phid, name, longURL, alias, authorPHID, description, dateCreated, dateModified)"+
			" VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM "+TableName+"), ?, ?, ?, ?, ?, ?, ?, ?)"+
			" RETURNING id",
		url.PHID, url.Name, url.LongURL, url.Alias, url.AuthorPHID, url.Description,
		url.DateCreated, url.DateModified,
	).Scan(&url.ID)
	if err != nil {
		return fmt.Errorf("failed to insert URL: %w", err)
	}

	s.logger.Debug("Created URL", zap.Int64("id", url.ID), zap.String("phid", url.PHID))
	return nil
}

func (s *SQLiteStore) FindURLs(ctx context.Context, query *URLQuery) ([]*URL, error) {
	var (
		where []string
		args  []any
	)
	if ids := query.IDs(); ids != nil {
		where = append(where, "id IN ("+placeholders(len(ids))+")")
		for _, id := range ids {
			args = append(args, id)
		}
	}
	if phids := query.PHIDs(); phids != nil {
		where = append(where, "phid IN ("+placeholders(len(phids))+")")
		for _, phid := range phids {
			args = append(args, phid)
		}
	}
	if authors := query.AuthorPHIDs(); authors != nil {
		where = append(where, "authorPHID IN ("+placeholders(len(authors))+")")
		for _, author := range authors {
			args = append(args, author)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT id, phid, name, longURL, alias, authorPHID, description, dateCreated, dateModified FROM ")
	b.WriteString(TableName)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if query.Order() == OrderOldest {
		b.WriteString(" ORDER BY id ASC")
	} else {
		b.WriteString(" ORDER BY id DESC")
	}
	if query.Limit() > 0 {
		fmt.Fprintf(&b, " LIMIT %d", query.Limit())
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query URLs: %w", err)
	}
	defer rows.Close()

	var urls []*URL
	for rows.Next() {
		url := &URL{}
		if err := rows.Scan(&url.ID, &url.PHID, &url.Name, &url.LongURL, &url.Alias,
			&url.AuthorPHID, &url.Description, &url.DateCreated, &url.DateModified); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// placeholders returns n comma separated bind markers. An empty list
// renders as NULL so that "IN (NULL)" matches nothing.
func placeholders(n int) string {
	if n == 0 {
		return "NULL"
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
