package spec

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nickyhof/SchemaSpec/core"
)

const (
	DefaultNamespace     = "phabricator"
	DefaultUTF8Charset   = "utf8mb4"
	DefaultUTF8Collation = "utf8mb4_bin"
)

var ErrNoLoader = errors.New("no storage object loader configured")

// Options configures a schema build pass.
type Options struct {
	Namespace     string
	UTF8Charset   string
	UTF8Collation string
}

func DefaultOptions() Options {
	return Options{
		Namespace:     DefaultNamespace,
		UTF8Charset:   DefaultUTF8Charset,
		UTF8Collation: DefaultUTF8Collation,
	}
}

// Builder contributes databases and tables to a Spec.
type Builder interface {
	BuildSchemata(spec *Spec) error
}

// LiskBuilder builds the schemata of every storage object registered
// under Base.
type LiskBuilder struct {
	Base string
}

func (builder LiskBuilder) BuildSchemata(spec *Spec) error {
	return spec.BuildLiskSchemata(builder.Base)
}

// Spec holds the state of one schema build pass.
type Spec struct {
	options Options
	server  *core.ServerSchema
	loader  Loader
	logger  *zap.Logger
}

func New(options Options, server *core.ServerSchema, loader Loader, logger *zap.Logger) *Spec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spec{
		options: options,
		server:  server,
		loader:  loader,
		logger:  logger,
	}
}

// Build runs every builder against a fresh server schema.
func Build(options Options, loader Loader, logger *zap.Logger, builders ...Builder) (*core.ServerSchema, error) {
	server := core.NewServerSchema()
	spec := New(options, server, loader, logger)

	for _, builder := range builders {
		if err := builder.BuildSchemata(spec); err != nil {
			return nil, err
		}
	}

	databases, tables, columns := server.Counts()
	spec.logger.Debug("schema built",
		zap.Int("databases", databases),
		zap.Int("tables", tables),
		zap.Int("columns", columns))

	return server, nil
}

func (spec *Spec) Server() *core.ServerSchema {
	return spec.server
}

func (spec *Spec) UTF8Charset() string {
	return spec.options.UTF8Charset
}

func (spec *Spec) UTF8Collation() string {
	return spec.options.UTF8Collation
}

func (spec *Spec) Namespace() string {
	return spec.options.Namespace
}

// BuildLiskSchemata adds a table for every storage object under base.
func (spec *Spec) BuildLiskSchemata(base string) error {
	if spec.loader == nil {
		return ErrNoLoader
	}

	objects, err := spec.loader.LoadObjects(base)
	if err != nil {
		return fmt.Errorf("failed to load objects for %s: %w", base, err)
	}

	for _, object := range objects {
		database := spec.Database(object.ApplicationName())
		table := spec.NewTable(object.TableName())

		for _, declared := range object.SchemaColumns() {
			details := spec.DetailsForDataType(declared.DataType)
			if details.ColumnType == core.Unknown {
				spec.logger.Warn("unknown column data type",
					zap.String("table", object.TableName()),
					zap.String("column", declared.Name),
					zap.String("type", string(declared.DataType)))
			}

			column := spec.NewColumn(declared.Name)
			column.DataType = declared.DataType
			column.ColumnType = details.ColumnType
			column.CharacterSet = details.CharacterSet
			column.Collation = details.Collation

			table.AddColumn(column)
		}

		database.AddTable(table)
	}

	return nil
}

func (spec *Spec) DetailsForDataType(dataType core.DataType) ColumnDetails {
	return DetailsForDataType(dataType, spec.options.UTF8Charset, spec.options.UTF8Collation)
}

// Database returns the namespaced database for an application, adding it
// to the server on first use.
func (spec *Spec) Database(name string) *core.DatabaseSchema {
	database := spec.server.Database(spec.NamespacedDatabase(name))
	if database == nil {
		database = spec.NewDatabase(name)
		spec.server.AddDatabase(database)
	}
	return database
}

func (spec *Spec) NewDatabase(name string) *core.DatabaseSchema {
	database := core.NewDatabaseSchema(spec.NamespacedDatabase(name))
	database.CharacterSet = spec.options.UTF8Charset
	database.Collation = spec.options.UTF8Collation
	return database
}

func (spec *Spec) NamespacedDatabase(name string) string {
	return spec.options.Namespace + "_" + name
}

func (spec *Spec) NewTable(name string) *core.TableSchema {
	table := core.NewTableSchema(name)
	table.Collation = spec.options.UTF8Collation
	return table
}

func (spec *Spec) NewColumn(name string) *core.ColumnSchema {
	return &core.ColumnSchema{Name: name}
}
