package compare

import "fmt"

type Kind string

const (
	MissingDatabase   Kind = "missing-database"
	SurplusDatabase   Kind = "surplus-database"
	DatabaseCharset   Kind = "database-charset"
	DatabaseCollation Kind = "database-collation"
	MissingTable      Kind = "missing-table"
	SurplusTable      Kind = "surplus-table"
	TableCollation    Kind = "table-collation"
	MissingColumn     Kind = "missing-column"
	SurplusColumn     Kind = "surplus-column"
	UnknownType       Kind = "unknown-type"
	ColumnType        Kind = "column-type"
	ColumnCharset     Kind = "charset"
	ColumnCollation   Kind = "collation"
)

type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (severity Severity) String() string {
	switch severity {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(severity))
	}
}

func (severity Severity) MarshalText() ([]byte, error) {
	return []byte(severity.String()), nil
}

// severityOf is fixed per kind.
func severityOf(kind Kind) Severity {
	switch kind {
	case SurplusDatabase, SurplusTable, SurplusColumn,
		DatabaseCharset, DatabaseCollation, TableCollation:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Issue is one difference between the expected and the actual schema.
type Issue struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Database string   `json:"database"`
	Table    string   `json:"table,omitempty"`
	Column   string   `json:"column,omitempty"`
	Expected string   `json:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty"`
}

// Target names the object the issue is about, e.g. "db.table.column".
func (issue Issue) Target() string {
	target := issue.Database
	if issue.Table != "" {
		target += "." + issue.Table
	}
	if issue.Column != "" {
		target += "." + issue.Column
	}
	return target
}

func (issue Issue) String() string {
	if issue.Expected == "" && issue.Actual == "" {
		return fmt.Sprintf("%s %s: %s", issue.Severity, issue.Kind, issue.Target())
	}
	return fmt.Sprintf("%s %s: %s (expected %q, actual %q)", issue.Severity, issue.Kind, issue.Target(), issue.Expected, issue.Actual)
}
