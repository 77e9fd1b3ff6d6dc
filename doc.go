// Package SchemaSpec builds the expected relational schema of an
// application from its storage object metadata, keeps every build as a
// Git-backed snapshot, and compares it against a live database.
//
// # Quick Start
//
// Build and snapshot the schema of a set of registered objects:
//
//	registry := spec.NewRegistry()
//	phurl.Register(registry)
//
//	persistence, _ := ps.NewMemoryPersistence()
//	instance := SchemaSpec.Open(&persistence, db.Options{Loader: registry})
//	engine := instance.Engine(core.Identity{Name: "App", Email: "app@example.com"})
//
//	engine.Execute("BUILD SCHEMA")
//	result, _ := engine.Execute("DESCRIBE phabricator_phurl.phurl_url")
//	result.Display()
//
// # Statements
//
//   - BUILD [SCHEMA]
//   - SHOW DATABASES, SHOW TABLES IN <db>, SHOW HISTORY [LIMIT n]
//   - SHOW TAGS, SHOW REMOTES
//   - DESCRIBE <db>.<table>
//   - COMPARE [SCHEMA] [WITH '<dump url>']
//   - DIFF '<from>' ['<to>']
//   - TAG <name> [AT '<transaction>']
//   - EXPORT TO '<url>'
//   - ADD REMOTE, DROP REMOTE, PUSH, PULL, FETCH
package SchemaSpec
