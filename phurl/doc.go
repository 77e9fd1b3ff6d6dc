// Package phurl implements the shortened-URL application's search engine
// and its URL storage.
//
// The search engine turns saved queries into URLQuery values and renders
// results as plain view structs; SQLiteStore creates its phurl_url table
// from the same column map the schema builder reads through URLObject, so
// the stored table always matches the expected schema.
package phurl
