package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nickyhof/SchemaSpec/db"
)

const maxHistory = 1000

// CLI holds the interactive shell state
type CLI struct {
	engine      *db.Engine
	out         io.Writer
	history     []string
	historyFile string
	database    string // current database context
}

func NewCLI(engine *db.Engine, out io.Writer) *CLI {
	return &CLI{
		engine:  engine,
		out:     out,
		history: make([]string, 0),
	}
}

func (cli *CLI) printBanner() {
	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, bannerStyle.Render(fmt.Sprintf("SchemaSpec v%s\nSchema builder and checker", Version)))
	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, "Type .help for commands, .quit to exit")
	fmt.Fprintln(cli.out)
}

// run reads statements from in until EOF or .quit.
func (cli *CLI) run(ctx context.Context, in io.Reader) {
	reader := bufio.NewReader(in)
	var multiLineBuffer strings.Builder

	for {
		fmt.Fprint(cli.out, cli.getPrompt(multiLineBuffer.Len() > 0))

		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(cli.out, "\n%s\n", successStyle.Render("Goodbye!"))
			cli.saveHistory()
			return
		}

		input = strings.TrimRight(input, "\r\n")
		if strings.TrimSpace(input) == "" {
			continue
		}

		if multiLineBuffer.Len() == 0 && strings.HasPrefix(input, ".") {
			if quit := cli.handleCommand(ctx, input); quit {
				cli.saveHistory()
				return
			}
			continue
		}

		// Accumulate until the statement ends with a semicolon
		multiLineBuffer.WriteString(input)
		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString(" ")
			continue
		}

		statement := strings.TrimSuffix(trimmed, ";")
		multiLineBuffer.Reset()
		if strings.TrimSpace(statement) == "" {
			continue
		}

		cli.addToHistory(statement + ";")
		cli.execute(ctx, statement)
	}
}

func (cli *CLI) execute(ctx context.Context, statement string) {
	result, err := cli.engine.ExecuteContext(ctx, statement)
	if err != nil {
		fmt.Fprint(cli.out, errorLine("Error: %v", err))
		return
	}
	result.Render(cli.out)
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return promptStyle.Render("      ...>") + " "
	}

	dbPart := ""
	if cli.database != "" {
		dbPart = fmt.Sprintf(" (%s)", cli.database)
	}
	return promptStyle.Render("schemaspec"+dbPart+">") + " "
}

// handleCommand runs a dot command and reports whether the shell should exit.
func (cli *CLI) handleCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit", ".q":
		fmt.Fprintln(cli.out, successStyle.Render("Goodbye!"))
		return true

	case ".help", ".h", ".?":
		fmt.Fprint(cli.out, renderHelp())

	case ".databases", ".dbs":
		cli.execute(ctx, "SHOW DATABASES")

	case ".tables":
		switch {
		case len(parts) > 1:
			cli.execute(ctx, "SHOW TABLES IN "+parts[1])
		case cli.database != "":
			cli.execute(ctx, "SHOW TABLES IN "+cli.database)
		default:
			fmt.Fprint(cli.out, errorLine("Usage: .tables <database>"))
		}

	case ".use":
		if len(parts) > 1 {
			cli.database = parts[1]
			fmt.Fprint(cli.out, successLine("Using database: %s", cli.database))
		} else {
			fmt.Fprint(cli.out, errorLine("Usage: .use <database>"))
		}

	case ".describe":
		switch {
		case len(parts) < 2:
			fmt.Fprint(cli.out, errorLine("Usage: .describe <table>"))
		case strings.Contains(parts[1], "."):
			cli.execute(ctx, "DESCRIBE "+parts[1])
		case cli.database != "":
			cli.execute(ctx, "DESCRIBE "+cli.database+"."+parts[1])
		default:
			fmt.Fprint(cli.out, errorLine("No database selected (use .use <database>)"))
		}

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".history":
		cli.printHistory()

	case ".version":
		fmt.Fprintf(cli.out, "SchemaSpec version %s\n", Version)

	case ".import":
		if len(parts) > 1 {
			if err := cli.importFile(ctx, parts[1]); err != nil {
				fmt.Fprint(cli.out, errorLine("Error: %v", err))
			}
		} else {
			fmt.Fprint(cli.out, errorLine("Usage: .import <file>"))
		}

	default:
		fmt.Fprint(cli.out, errorLine("Unknown command: %s (type .help for commands)", parts[0]))
	}

	return false
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > maxHistory {
		cli.history = cli.history[len(cli.history)-maxHistory:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := max(len(cli.history)-20, 0)
	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".schemaspec_history")
}

func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	start := max(len(cli.history)-maxHistory, 0)
	for i := start; i < len(cli.history); i++ {
		_, _ = file.WriteString(cli.history[i] + "\n")
	}
}

// importFile reads and executes statements from a file
func (cli *CLI) importFile(ctx context.Context, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	successCount := 0
	errorCount := 0

	for i, stmt := range splitStatements(string(data)) {
		result, err := cli.engine.ExecuteContext(ctx, stmt)
		if err != nil {
			fmt.Fprint(cli.out, errorLine("[%d] %s", i+1, truncate(stmt, 50)))
			fmt.Fprintf(cli.out, "      Error: %v\n", err)
			errorCount++
			continue
		}

		successCount++
		switch r := result.(type) {
		case db.CommitResult:
			detail := fmt.Sprintf("snapshot %s", r.Transaction.ShortId())
			if r.Unchanged {
				detail = "unchanged"
			}
			fmt.Fprint(cli.out, successLine("[%d] %s (%s)", i+1, truncate(stmt, 50), detail))
		case db.QueryResult:
			fmt.Fprint(cli.out, successLine("[%d] %s (%d rows)", i+1, truncate(stmt, 50), r.RecordsRead))
		default:
			fmt.Fprint(cli.out, successLine("[%d] %s", i+1, truncate(stmt, 50)))
		}
	}

	fmt.Fprintln(cli.out)
	fmt.Fprint(cli.out, successLine("Import complete: %d succeeded, %d failed", successCount, errorCount))
	return nil
}

// splitStatements splits file content into statements on semicolons outside
// string literals, dropping "--" comments.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if ch == '\'' {
			inString = !inString
		}

		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}

		if !inString && ch == ';' {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
