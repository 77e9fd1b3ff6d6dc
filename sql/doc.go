// Package sql lexes and parses the schema statement language.
//
//	parser := sql.NewParser("SHOW TABLES IN phabricator_phurl")
//	statement, err := parser.Parse()
//
// # Supported Statements
//
//	BUILD [SCHEMA]
//	SHOW DATABASES | SHOW TABLES IN db | SHOW HISTORY [LIMIT n] | SHOW TAGS | SHOW REMOTES
//	DESCRIBE db.table
//	COMPARE [SCHEMA] [WITH 'url']
//	DIFF 'from' ['to']
//	TAG name [AT 'transaction']
//	EXPORT TO 'url'
//	ADD REMOTE name 'url' | DROP REMOTE name
//	PUSH [TO remote] [BRANCH name] [WITH ...]
//	PULL [FROM remote] [BRANCH name] [WITH ...]
//	FETCH [FROM remote] [WITH ...]
//
// Keywords are case-insensitive and a trailing semicolon is allowed.
package sql
