// Package db executes schema statements.
//
// The Engine parses a statement, runs it against the snapshot store, the
// schema builders and the live database, and returns a Result.
//
// # Engine Usage
//
//	engine := db.NewEngine(persistence, identity, db.Options{Loader: registry})
//	result, err := engine.Execute("BUILD SCHEMA")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// # Result Types
//
// There are two result types:
//   - QueryResult: returned by SHOW, DESCRIBE, COMPARE, DIFF and remote statements
//   - CommitResult: returned by BUILD
//
// Schema dumps are read from and written to local paths, file:// and
// s3:// URLs; http(s):// URLs are read-only.
package db
