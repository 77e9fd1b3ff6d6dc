// Package live reads the schema of a running database so it can be
// compared against the expected one.
//
// SQLite (through modernc.org/sqlite) reports each attached database as a
// schema database; DuckDB and MySQL-compatible servers are read through
// information_schema.
//
//	source, err := live.Open("sqlite", "file:live.db", logger)
//	source.Attach(ctx, "phabricator_phurl", "phurl.db")
//	server, err := source.Introspect(ctx)
package live
