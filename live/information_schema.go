package live

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nickyhof/SchemaSpec/core"
)

type Dialect int

const (
	// DialectDuckDB maps catalogs to databases and reads data_type.
	DialectDuckDB Dialect = iota
	// DialectMySQL maps schemata to databases and reads column_type along
	// with charset and collation.
	DialectMySQL
)

func (dialect Dialect) String() string {
	switch dialect {
	case DialectDuckDB:
		return "duckdb"
	case DialectMySQL:
		return "mysql"
	default:
		return fmt.Sprintf("Dialect(%d)", int(dialect))
	}
}

type dialectQueries struct {
	databases string // name, charset, collation
	tables    string // database, table, collation
	columns   string // database, table, column, type, charset, collation
}

var queries = map[Dialect]dialectQueries{
	DialectDuckDB: {
		databases: `SELECT DISTINCT table_catalog, NULL, NULL FROM information_schema.tables
			WHERE table_schema = 'main' AND table_catalog NOT IN ('system', 'temp')`,
		tables: `SELECT table_catalog, table_name, NULL FROM information_schema.tables
			WHERE table_schema = 'main' AND table_type = 'BASE TABLE' AND table_catalog NOT IN ('system', 'temp')`,
		columns: `SELECT table_catalog, table_name, column_name, data_type, NULL, NULL FROM information_schema.columns
			WHERE table_schema = 'main' AND table_catalog NOT IN ('system', 'temp')
			ORDER BY table_catalog, table_name, ordinal_position`,
	},
	DialectMySQL: {
		databases: `SELECT schema_name, default_character_set_name, default_collation_name FROM information_schema.schemata
			WHERE schema_name NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')`,
		tables: `SELECT table_schema, table_name, table_collation FROM information_schema.tables
			WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')`,
		columns: `SELECT table_schema, table_name, column_name, column_type, character_set_name, collation_name FROM information_schema.columns
			WHERE table_schema NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
			ORDER BY table_schema, table_name, ordinal_position`,
	},
}

// InformationSchema introspects any connection that exposes the standard
// information_schema views.
type InformationSchema struct {
	DB      *sql.DB
	Dialect Dialect
}

func (is InformationSchema) Introspect(ctx context.Context) (*core.ServerSchema, error) {
	q, ok := queries[is.Dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %s", is.Dialect)
	}

	server := core.NewServerSchema()

	err := is.each(ctx, q.databases, func(values []sql.NullString) {
		database := core.NewDatabaseSchema(values[0].String)
		database.CharacterSet = values[1].String
		database.Collation = values[2].String
		server.AddDatabase(database)
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to read databases: %w", err)
	}

	err = is.each(ctx, q.tables, func(values []sql.NullString) {
		database := server.Database(values[0].String)
		if database == nil {
			return
		}
		table := core.NewTableSchema(values[1].String)
		table.Collation = values[2].String
		database.AddTable(table)
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}

	err = is.each(ctx, q.columns, func(values []sql.NullString) {
		table := server.Database(values[0].String).Table(values[1].String)
		if table == nil {
			return
		}
		table.AddColumn(&core.ColumnSchema{
			Name:         values[2].String,
			ColumnType:   values[3].String,
			CharacterSet: values[4].String,
			Collation:    values[5].String,
		})
	}, 6)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	return server, nil
}

// each scans width nullable strings per row and hands them to fn.
func (is InformationSchema) each(ctx context.Context, query string, fn func([]sql.NullString), width int) error {
	rows, err := is.DB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	values := make([]sql.NullString, width)
	dest := make([]any, width)
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		for i := range values {
			values[i] = sql.NullString{}
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		fn(values)
	}
	return rows.Err()
}
