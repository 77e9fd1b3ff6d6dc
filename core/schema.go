package core

import "sort"

type ColumnSchema struct {
	Name         string   `json:"name"`
	DataType     DataType `json:"dataType,omitempty"`
	ColumnType   string   `json:"columnType"`
	CharacterSet string   `json:"characterSet,omitempty"`
	Collation    string   `json:"collation,omitempty"`
}

type TableSchema struct {
	Name      string          `json:"name"`
	Collation string          `json:"collation,omitempty"`
	Columns   []*ColumnSchema `json:"columns"`
}

type DatabaseSchema struct {
	Name         string                  `json:"name"`
	CharacterSet string                  `json:"characterSet,omitempty"`
	Collation    string                  `json:"collation,omitempty"`
	Tables       map[string]*TableSchema `json:"tables,omitempty"`
}

// ServerSchema is the root of a schema description: every database on one
// server, keyed by its namespaced name.
type ServerSchema struct {
	Databases map[string]*DatabaseSchema `json:"databases"`
}

func NewServerSchema() *ServerSchema {
	return &ServerSchema{Databases: make(map[string]*DatabaseSchema)}
}

func NewDatabaseSchema(name string) *DatabaseSchema {
	return &DatabaseSchema{Name: name, Tables: make(map[string]*TableSchema)}
}

func NewTableSchema(name string) *TableSchema {
	return &TableSchema{Name: name, Columns: make([]*ColumnSchema, 0)}
}

func (server *ServerSchema) AddDatabase(database *DatabaseSchema) {
	if server.Databases == nil {
		server.Databases = make(map[string]*DatabaseSchema)
	}
	server.Databases[database.Name] = database
}

// Database returns the named database, or nil.
func (server *ServerSchema) Database(name string) *DatabaseSchema {
	if server == nil {
		return nil
	}
	return server.Databases[name]
}

func (server *ServerSchema) DatabaseNames() []string {
	names := make([]string, 0, len(server.Databases))
	for name := range server.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Counts returns the number of databases, tables and columns in the graph.
func (server *ServerSchema) Counts() (databases, tables, columns int) {
	for _, database := range server.Databases {
		databases++
		for _, table := range database.Tables {
			tables++
			columns += len(table.Columns)
		}
	}
	return
}

func (database *DatabaseSchema) AddTable(table *TableSchema) {
	if database.Tables == nil {
		database.Tables = make(map[string]*TableSchema)
	}
	database.Tables[table.Name] = table
}

// Table returns the named table, or nil.
func (database *DatabaseSchema) Table(name string) *TableSchema {
	if database == nil {
		return nil
	}
	return database.Tables[name]
}

func (database *DatabaseSchema) TableNames() []string {
	names := make([]string, 0, len(database.Tables))
	for name := range database.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Header returns a copy of the database without its tables.
func (database *DatabaseSchema) Header() DatabaseSchema {
	return DatabaseSchema{
		Name:         database.Name,
		CharacterSet: database.CharacterSet,
		Collation:    database.Collation,
	}
}

func (table *TableSchema) AddColumn(column *ColumnSchema) {
	table.Columns = append(table.Columns, column)
}

// Column returns the named column, or nil.
func (table *TableSchema) Column(name string) *ColumnSchema {
	if table == nil {
		return nil
	}
	for _, column := range table.Columns {
		if column.Name == name {
			return column
		}
	}
	return nil
}

func (table *TableSchema) ColumnNames() []string {
	names := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		names[i] = column.Name
	}
	return names
}
