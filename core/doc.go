// Package core provides core types used throughout SchemaSpec.
//
// The package defines the schema object graph (ServerSchema, DatabaseSchema,
// TableSchema, ColumnSchema), the logical column type tags used by storage
// objects, and Identity.
//
// # Identity
//
// Identity identifies the author of schema snapshots (Git commit author):
//
//	identity := core.Identity{
//	    Name:  "John Doe",
//	    Email: "john@example.com",
//	}
//
// # Data Types
//
// Logical column types declared by storage objects:
//   - DataTypeID: auto-increment row identifier
//   - DataTypeEpoch: Unix timestamp
//   - DataTypePHID: permanent object identifier handle
//   - DataTypeBlob: binary payload
//   - DataTypeText: UTF-8 text
//
// # Schema Graph
//
//	server := core.NewServerSchema()
//	database := core.NewDatabaseSchema("phabricator_phurl")
//	table := core.NewTableSchema("phurl_url")
//	table.AddColumn(&core.ColumnSchema{Name: "id", DataType: core.DataTypeID})
//	database.AddTable(table)
//	server.AddDatabase(database)
package core
