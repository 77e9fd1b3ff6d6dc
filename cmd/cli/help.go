package main

import "github.com/charmbracelet/glamour"

const helpMarkdown = `
## Special Commands

| Command | Description |
|---|---|
| .help, .h | Show this help message |
| .quit, .exit | Exit the shell |
| .databases | List databases of the latest snapshot |
| .tables [db] | List tables in a database |
| .use <db> | Set the current database context |
| .describe <table> | Describe a table in the current database |
| .import <file> | Execute statements from a file |
| .history | Show command history |
| .clear | Clear the screen |
| .version | Show version info |

## Statements

- ` + "`BUILD [SCHEMA];`" + ` build the expected schema and snapshot it
- ` + "`SHOW DATABASES;`" + `, ` + "`SHOW TABLES IN <db>;`" + `
- ` + "`SHOW HISTORY [LIMIT n];`" + `, ` + "`SHOW TAGS;`" + `, ` + "`SHOW REMOTES;`" + `
- ` + "`DESCRIBE <db>.<table>;`" + `
- ` + "`COMPARE [SCHEMA] [WITH '<url>'];`" + ` check the live database or a dump
- ` + "`DIFF '<from>' ['<to>'];`" + ` compare two snapshots
- ` + "`TAG <name> [AT '<transaction>'];`" + `
- ` + "`EXPORT TO '<file | https:// | s3://>';`" + `
- ` + "`ADD REMOTE <name> '<url>';`" + `, ` + "`DROP REMOTE <name>;`" + `
- ` + "`PUSH [TO <remote>] [BRANCH <b>] [WITH ...];`" + `
- ` + "`PULL [FROM <remote>] [BRANCH <b>] [WITH ...];`" + `, ` + "`FETCH [FROM <remote>];`" + `
`

// renderHelp renders the help text for the terminal, falling back to the
// raw markdown when no renderer can be built.
func renderHelp() string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
