package db

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nickyhof/SchemaSpec/ps"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
)

type Result interface {
	Type() ResultType
	Render(w io.Writer)
	Display()
}

type QueryResult struct {
	Transaction      ps.Transaction
	Columns          []string
	Data             [][]string
	RecordsRead      int
	ExecutionTimeSec float64
	ExecutionOps     int
}

// CommitResult reports a BUILD. Unchanged is set when the schema matched
// the previous snapshot and nothing was committed.
type CommitResult struct {
	Transaction      ps.Transaction
	Unchanged        bool
	DatabasesWritten int
	TablesWritten    int
	ColumnsWritten   int
	ExecutionTimeSec float64
	ExecutionOps     int
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result CommitResult) Type() ResultType {
	return CommitResultType
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}

	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

func throughput(ops int, secs float64) string {
	if secs <= 0 || ops <= 0 {
		return ""
	}

	rate := float64(ops) / secs
	switch {
	case rate >= 1000000:
		return fmt.Sprintf(", %.1fM ops/s", rate/1000000)
	case rate >= 1000:
		return fmt.Sprintf(", %.1fK ops/s", rate/1000)
	default:
		return fmt.Sprintf(", %.0f ops/s", rate)
	}
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CommitResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result QueryResult) Render(w io.Writer) {
	if len(result.Data) > 0 {
		data := NewTable(w)
		data.Header(result.Columns)
		data.Bulk(result.Data)
		data.Render()
	}

	fmt.Fprintf(w, "%d rows (%s%s)\n", result.RecordsRead, result.ExecutionTime(),
		throughput(result.ExecutionOps, result.ExecutionTimeSec))
}

func (result QueryResult) Display() {
	result.Render(os.Stdout)
}

func (result CommitResult) Render(w io.Writer) {
	if result.Unchanged {
		fmt.Fprintf(w, "Schema unchanged at %s (%s)\n", result.Transaction.ShortId(), result.ExecutionTime())
		return
	}

	var parts []string
	if result.DatabasesWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d database(s)", result.DatabasesWritten))
	}
	if result.TablesWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d table(s)", result.TablesWritten))
	}
	if result.ColumnsWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d column(s)", result.ColumnsWritten))
	}

	stats := result.ExecutionTime() + throughput(result.ExecutionOps, result.ExecutionTimeSec)
	if len(parts) == 0 {
		fmt.Fprintf(w, "Empty snapshot %s (%s)\n", result.Transaction.ShortId(), stats)
		return
	}
	fmt.Fprintf(w, "Snapshot %s: %s written (%s)\n", result.Transaction.ShortId(), strings.Join(parts, ", "), stats)
}

func (result CommitResult) Display() {
	result.Render(os.Stdout)
}
