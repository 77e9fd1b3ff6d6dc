// Package spec derives the expected relational schema from storage object
// metadata.
//
// Every storage object declares an application name, a table name and a
// list of columns tagged with a logical data type. The builder maps each
// logical type to a physical column type plus character set and collation,
// and assembles the result into a core.ServerSchema whose databases are
// prefixed with the storage namespace.
//
// # Type Mapping
//
//	details := spec.DetailsForDataType(core.DataTypeText, "utf8mb4", "utf8mb4_bin")
//	// details.ColumnType == "longtext"
//
// Unrecognized types map to core.Unknown for every field. That is not an
// error; the compare package reports it.
//
// # Building
//
//	registry := spec.NewRegistry()
//	registry.Register("PhabricatorPhurlDAO", phurlObject)
//
//	server, err := spec.Build(spec.DefaultOptions(), registry, logger,
//	    spec.LiskBuilder{Base: "PhabricatorPhurlDAO"})
//
// A fresh ServerSchema is created for every Build call.
package spec
