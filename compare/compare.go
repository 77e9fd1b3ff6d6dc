package compare

import (
	"sort"
	"strings"

	"github.com/nickyhof/SchemaSpec/core"
)

// Options controls which surplus objects are reported.
type Options struct {
	// Namespace limits surplus-database issues to databases named
	// "<Namespace>_...". Empty reports every unexpected database.
	Namespace string

	// IgnoreSurplus suppresses surplus-* issues entirely.
	IgnoreSurplus bool
}

// Report is the sorted list of issues found by Compare.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Compare checks the actual schema against the expected one.
func Compare(expected, actual *core.ServerSchema, opts Options) Report {
	if expected == nil {
		expected = core.NewServerSchema()
	}
	if actual == nil {
		actual = core.NewServerSchema()
	}

	c := &comparator{opts: opts}

	for _, name := range expected.DatabaseNames() {
		c.compareDatabase(expected.Databases[name], actual.Database(name))
	}

	if !opts.IgnoreSurplus {
		prefix := ""
		if opts.Namespace != "" {
			prefix = opts.Namespace + "_"
		}
		for _, name := range actual.DatabaseNames() {
			if expected.Database(name) == nil && strings.HasPrefix(name, prefix) {
				c.add(Issue{Kind: SurplusDatabase, Database: name})
			}
		}
	}

	sortIssues(c.issues)
	return Report{Issues: c.issues}
}

type comparator struct {
	opts   Options
	issues []Issue
}

func (c *comparator) add(issue Issue) {
	issue.Severity = severityOf(issue.Kind)
	c.issues = append(c.issues, issue)
}

func (c *comparator) compareDatabase(expected, actual *core.DatabaseSchema) {
	if actual == nil {
		c.add(Issue{Kind: MissingDatabase, Database: expected.Name})
		return
	}

	if reported(actual.CharacterSet) && !sameName(expected.CharacterSet, actual.CharacterSet) {
		c.add(Issue{Kind: DatabaseCharset, Database: expected.Name, Expected: expected.CharacterSet, Actual: actual.CharacterSet})
	}
	if reported(actual.Collation) && !sameName(expected.Collation, actual.Collation) {
		c.add(Issue{Kind: DatabaseCollation, Database: expected.Name, Expected: expected.Collation, Actual: actual.Collation})
	}

	for _, name := range expected.TableNames() {
		c.compareTable(expected.Name, expected.Tables[name], actual.Table(name))
	}

	if !c.opts.IgnoreSurplus {
		for _, name := range actual.TableNames() {
			if expected.Table(name) == nil {
				c.add(Issue{Kind: SurplusTable, Database: expected.Name, Table: name})
			}
		}
	}
}

func (c *comparator) compareTable(database string, expected, actual *core.TableSchema) {
	if actual == nil {
		c.add(Issue{Kind: MissingTable, Database: database, Table: expected.Name})
		return
	}

	if reported(actual.Collation) && !sameName(expected.Collation, actual.Collation) {
		c.add(Issue{Kind: TableCollation, Database: database, Table: expected.Name, Expected: expected.Collation, Actual: actual.Collation})
	}

	for _, column := range expected.Columns {
		c.compareColumn(database, expected.Name, column, actual.Column(column.Name))
	}

	if !c.opts.IgnoreSurplus {
		for _, column := range actual.Columns {
			if expected.Column(column.Name) == nil {
				c.add(Issue{Kind: SurplusColumn, Database: database, Table: expected.Name, Column: column.Name, Actual: column.ColumnType})
			}
		}
	}
}

func (c *comparator) compareColumn(database, table string, expected, actual *core.ColumnSchema) {
	base := Issue{Database: database, Table: table, Column: expected.Name}

	// The type mapper marks undefined logical types with the sentinel.
	if expected.ColumnType == core.Unknown {
		issue := base
		issue.Kind = UnknownType
		issue.Expected = string(expected.DataType)
		if actual != nil {
			issue.Actual = actual.ColumnType
		}
		c.add(issue)
		return
	}

	if actual == nil {
		issue := base
		issue.Kind = MissingColumn
		issue.Expected = expected.ColumnType
		c.add(issue)
		return
	}

	if normalizeType(expected.ColumnType) != normalizeType(actual.ColumnType) {
		issue := base
		issue.Kind = ColumnType
		issue.Expected = expected.ColumnType
		issue.Actual = actual.ColumnType
		c.add(issue)
	}

	if reported(actual.CharacterSet) && !sameName(expected.CharacterSet, actual.CharacterSet) {
		issue := base
		issue.Kind = ColumnCharset
		issue.Expected = expected.CharacterSet
		issue.Actual = actual.CharacterSet
		c.add(issue)
	}

	if reported(actual.Collation) && !sameName(expected.Collation, actual.Collation) {
		issue := base
		issue.Kind = ColumnCollation
		issue.Expected = expected.Collation
		issue.Actual = actual.Collation
		c.add(issue)
	}
}

// reported is false when the live side has no notion of the attribute.
func reported(value string) bool {
	return value != ""
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// normalizeType lowercases a column type and moves a length suffix next to
// the base type, so "int unsigned(10)" and "INT(10) UNSIGNED" compare equal.
func normalizeType(columnType string) string {
	t := strings.ToLower(strings.Join(strings.Fields(columnType), " "))

	size := ""
	if open := strings.Index(t, "("); open >= 0 {
		if end := strings.Index(t[open:], ")"); end >= 0 {
			size = strings.ReplaceAll(t[open:open+end+1], " ", "")
			t = t[:open] + " " + t[open+end+1:]
		}
	}

	words := strings.Fields(t)
	if len(words) == 0 {
		return size
	}
	words[0] += size
	return strings.Join(words, " ")
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Database != b.Database {
			return a.Database < b.Database
		}
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Kind < b.Kind
	})
}

func (report Report) HasErrors() bool {
	return report.Count(SeverityError) > 0
}

func (report Report) Count(severity Severity) int {
	count := 0
	for _, issue := range report.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

func (report Report) Filter(kind Kind) []Issue {
	var issues []Issue
	for _, issue := range report.Issues {
		if issue.Kind == kind {
			issues = append(issues, issue)
		}
	}
	return issues
}

func (report Report) Empty() bool {
	return len(report.Issues) == 0
}
