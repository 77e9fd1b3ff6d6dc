// Package compare reports the differences between an expected schema, as
// derived by package spec, and an actual schema read from a live database
// or an older snapshot.
//
// Columns whose expected type is the core.Unknown sentinel are reported as
// UnknownType issues. Character sets and collations are only compared when
// the actual side reports them, so engines without those notions (SQLite,
// DuckDB) still compare cleanly on column types.
package compare
