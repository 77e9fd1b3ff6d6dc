package live

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nickyhof/SchemaSpec/core"
)

// SQLite introspects a SQLite connection. Every entry of PRAGMA
// database_list except temp becomes a database; main is reported as
// MainName when set.
//
// SQLite keeps declared column types verbatim and has no per-column
// charset, so only names and types are filled in.
type SQLite struct {
	DB       *sql.DB
	MainName string
}

func (s SQLite) Introspect(ctx context.Context) (*core.ServerSchema, error) {
	schemas, err := s.databases(ctx)
	if err != nil {
		return nil, err
	}

	server := core.NewServerSchema()
	for _, schema := range schemas {
		name := schema
		if schema == "main" && s.MainName != "" {
			name = s.MainName
		}

		database := core.NewDatabaseSchema(name)
		tables, err := s.tables(ctx, schema)
		if err != nil {
			return nil, err
		}
		for _, tableName := range tables {
			table, err := s.table(ctx, schema, tableName)
			if err != nil {
				return nil, err
			}
			database.AddTable(table)
		}
		server.AddDatabase(database)
	}

	return server, nil
}

func (s SQLite) databases(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var seq int
		var name string
		var file sql.NullString
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, fmt.Errorf("failed to scan database: %w", err)
		}
		if name == "temp" {
			continue
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s SQLite) tables(ctx context.Context, schema string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT name FROM %s.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%%' ORDER BY name",
		quoteIdentifier(schema))

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", schema, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s SQLite) table(ctx context.Context, schema, name string) (*core.TableSchema, error) {
	query := fmt.Sprintf("PRAGMA %s.table_info(%s)", quoteIdentifier(schema), quoteIdentifier(name))

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s.%s: %w", schema, name, err)
	}
	defer rows.Close()

	table := core.NewTableSchema(name)
	for rows.Next() {
		var (
			cid       int
			column    string
			typ       string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &column, &typ, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		table.AddColumn(&core.ColumnSchema{Name: column, ColumnType: typ})
	}
	return table, rows.Err()
}
