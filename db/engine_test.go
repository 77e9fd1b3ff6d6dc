package db

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/live"
	"github.com/nickyhof/SchemaSpec/ps"
	"github.com/nickyhof/SchemaSpec/spec"
)

func testRegistry() *spec.Registry {
	registry := spec.NewRegistry()
	registry.Register("PhabricatorPhurlDAO", spec.Object{
		Application: "phurl",
		Table:       "phurl_url",
		Columns: []core.SchemaColumn{
			{Name: "id", DataType: core.DataTypeID},
			{Name: "phid", DataType: core.DataTypePHID},
			{Name: "longURL", DataType: core.DataTypeText},
			{Name: "dateCreated", DataType: core.DataTypeEpoch},
		},
	})
	registry.Register("PhabricatorProjectDAO", spec.Object{
		Application: "project",
		Table:       "project_column",
		Columns: []core.SchemaColumn{
			{Name: "id", DataType: core.DataTypeID},
			{Name: "properties", DataType: core.DataTypeBlob},
		},
	})
	return registry
}

func setupTestEngine(t *testing.T) *Engine {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	identity := core.Identity{Name: "test", Email: "test@test.com"}
	return NewEngine(&persistence, identity, Options{Loader: testRegistry()})
}

func mustExecute(t *testing.T, engine *Engine, query string) Result {
	t.Helper()
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("Failed to execute %q: %v", query, err)
	}
	return result
}

func TestEngineBuild(t *testing.T) {
	engine := setupTestEngine(t)

	cr := mustExecute(t, engine, "BUILD SCHEMA").(CommitResult)
	if cr.Unchanged {
		t.Error("Expected first build to commit")
	}
	if cr.DatabasesWritten != 2 || cr.TablesWritten != 2 || cr.ColumnsWritten != 6 {
		t.Errorf("Unexpected counts: %d databases, %d tables, %d columns",
			cr.DatabasesWritten, cr.TablesWritten, cr.ColumnsWritten)
	}

	again := mustExecute(t, engine, "BUILD").(CommitResult)
	if !again.Unchanged {
		t.Error("Expected identical build to be unchanged")
	}
	if again.Transaction.Id != cr.Transaction.Id {
		t.Errorf("Expected transaction %s, got %s", cr.Transaction.Id, again.Transaction.Id)
	}
}

func TestEngineBuildWithoutBuilders(t *testing.T) {
	persistence, _ := ps.NewMemoryPersistence()
	engine := NewEngine(&persistence, core.Identity{}, Options{})

	if _, err := engine.Execute("BUILD"); !errors.Is(err, ErrNoBuilders) {
		t.Errorf("Expected ErrNoBuilders, got %v", err)
	}
}

func TestEngineShowAndDescribe(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "BUILD")

	qr := mustExecute(t, engine, "SHOW DATABASES").(QueryResult)
	if qr.RecordsRead != 2 || qr.Data[0][0] != "phabricator_phurl" {
		t.Errorf("Unexpected databases: %v", qr.Data)
	}

	qr = mustExecute(t, engine, "SHOW TABLES IN phabricator_project").(QueryResult)
	if qr.RecordsRead != 1 || qr.Data[0][0] != "project_column" {
		t.Errorf("Unexpected tables: %v", qr.Data)
	}

	qr = mustExecute(t, engine, "DESCRIBE phabricator_phurl.phurl_url").(QueryResult)
	if qr.RecordsRead != 4 {
		t.Fatalf("Expected 4 columns, got %d", qr.RecordsRead)
	}
	expected := []string{"longURL", "text", "longtext", "utf8mb4", "utf8mb4_bin"}
	for i, value := range expected {
		if qr.Data[2][i] != value {
			t.Errorf("Expected %q at column %d, got %q", value, i, qr.Data[2][i])
		}
	}

	if _, err := engine.Execute("DESCRIBE phabricator_phurl.missing"); err == nil {
		t.Error("Expected error describing a missing table")
	}
}

func TestEngineHistoryTagAndDiff(t *testing.T) {
	engine := setupTestEngine(t)
	first := mustExecute(t, engine, "BUILD").(CommitResult)

	mustExecute(t, engine, "TAG v1")

	engine.options.Loader.(*spec.Registry).Register("PhabricatorPhurlDAO", spec.Object{
		Application: "phurl",
		Table:       "phurl_alias",
		Columns:     []core.SchemaColumn{{Name: "id", DataType: core.DataTypeID}},
	})
	mustExecute(t, engine, "BUILD")

	qr := mustExecute(t, engine, "SHOW HISTORY").(QueryResult)
	if qr.RecordsRead != 2 {
		t.Errorf("Expected 2 history entries, got %d", qr.RecordsRead)
	}
	qr = mustExecute(t, engine, "SHOW HISTORY LIMIT 1").(QueryResult)
	if qr.RecordsRead != 1 {
		t.Errorf("Expected 1 history entry, got %d", qr.RecordsRead)
	}

	qr = mustExecute(t, engine, "SHOW TAGS").(QueryResult)
	if qr.RecordsRead != 1 || qr.Data[0][0] != "v1" || qr.Data[0][1] != first.Transaction.ShortId() {
		t.Errorf("Unexpected tags: %v", qr.Data)
	}

	qr = mustExecute(t, engine, "DIFF 'v1'").(QueryResult)
	if qr.RecordsRead != 1 {
		t.Fatalf("Expected 1 difference, got %v", qr.Data)
	}
	if qr.Data[0][1] != "missing-table" || qr.Data[0][2] != "phabricator_phurl.phurl_alias" {
		t.Errorf("Unexpected difference: %v", qr.Data[0])
	}

	qr = mustExecute(t, engine, "DIFF 'v1' 'v1'").(QueryResult)
	if qr.RecordsRead != 0 {
		t.Errorf("Expected no differences, got %v", qr.Data)
	}

	mustExecute(t, engine, "TAG first-build AT '"+first.Transaction.Id+"'")
	qr = mustExecute(t, engine, "SHOW TAGS").(QueryResult)
	if qr.RecordsRead != 2 {
		t.Errorf("Expected 2 tags, got %v", qr.Data)
	}
}

// createLiveTables creates every table of server in SQLite using the
// SQLite spelling of its column types.
func createLiveTables(t *testing.T, source *live.Source, server *core.ServerSchema, skipColumn string) {
	t.Helper()
	ctx := context.Background()

	for _, dbName := range server.DatabaseNames() {
		if err := source.Attach(ctx, dbName, ":memory:"); err != nil {
			t.Fatalf("Failed to attach: %v", err)
		}
		database := server.Databases[dbName]
		for _, tableName := range database.TableNames() {
			var columns []string
			for _, column := range database.Tables[tableName].Columns {
				if column.Name == skipColumn {
					continue
				}
				details := spec.ColumnDetails{ColumnType: column.ColumnType}
				columns = append(columns, column.Name+" "+details.SQLiteType())
			}
			ddl := "CREATE TABLE " + dbName + "." + tableName + " (" + strings.Join(columns, ", ") + ")"
			if _, err := source.DB().ExecContext(ctx, ddl); err != nil {
				t.Fatalf("Failed to create %s: %v", ddl, err)
			}
		}
	}
}

func TestEngineCompareLive(t *testing.T) {
	engine := setupTestEngine(t)

	if _, err := engine.Execute("COMPARE"); !errors.Is(err, ErrNoLiveDatabase) {
		t.Errorf("Expected ErrNoLiveDatabase, got %v", err)
	}

	expected, err := engine.BuildSchema()
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}

	source, err := live.Open(live.DriverSQLite, ":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to open live database: %v", err)
	}
	defer source.Close()
	createLiveTables(t, source, expected, "")
	engine.SetLive(source)

	qr := mustExecute(t, engine, "COMPARE SCHEMA").(QueryResult)
	if qr.RecordsRead != 0 {
		t.Errorf("Expected a clean comparison, got %v", qr.Data)
	}
}

func TestEngineCompareLiveMissingColumn(t *testing.T) {
	engine := setupTestEngine(t)
	expected, _ := engine.BuildSchema()

	source, err := live.Open(live.DriverSQLite, ":memory:", nil)
	if err != nil {
		t.Fatalf("Failed to open live database: %v", err)
	}
	defer source.Close()
	createLiveTables(t, source, expected, "dateCreated")
	engine.SetLive(source)

	report, err := engine.Compare(context.Background(), "")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(report.Issues) != 1 || report.Issues[0].Column != "dateCreated" || string(report.Issues[0].Kind) != "missing-column" {
		t.Errorf("Expected one missing-column issue, got %v", report.Issues)
	}
}

func TestEngineExportAndCompareDump(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "BUILD")

	path := filepath.Join(t.TempDir(), "schema.json")
	qr := mustExecute(t, engine, "EXPORT TO '"+path+"'").(QueryResult)
	if !strings.Contains(qr.Data[0][0], "2 database(s)") {
		t.Errorf("Unexpected export status: %v", qr.Data)
	}

	qr = mustExecute(t, engine, "COMPARE WITH 'file://"+path+"'").(QueryResult)
	if qr.RecordsRead != 0 {
		t.Errorf("Expected exported snapshot to match, got %v", qr.Data)
	}

	if _, err := engine.Execute("EXPORT TO 'https://example.com/schema.json'"); err == nil {
		t.Error("Expected export over HTTPS to fail")
	}
}

func TestEngineRemotes(t *testing.T) {
	engine := setupTestEngine(t)

	mustExecute(t, engine, "ADD REMOTE origin 'https://github.com/org/schemas.git'")

	qr := mustExecute(t, engine, "SHOW REMOTES").(QueryResult)
	if qr.RecordsRead != 1 || qr.Data[0][1] != "https://github.com/org/schemas.git" {
		t.Errorf("Unexpected remotes: %v", qr.Data)
	}

	mustExecute(t, engine, "DROP REMOTE origin")
	qr = mustExecute(t, engine, "SHOW REMOTES").(QueryResult)
	if qr.RecordsRead != 0 {
		t.Errorf("Expected no remotes, got %v", qr.Data)
	}
}

func TestEngineParseError(t *testing.T) {
	engine := setupTestEngine(t)
	if _, err := engine.Execute("SELECT * FROM users"); err == nil {
		t.Error("Expected parse error")
	}
}

func TestResultRender(t *testing.T) {
	var buf bytes.Buffer
	QueryResult{
		Columns:     []string{"name"},
		Data:        [][]string{{"phabricator_phurl"}},
		RecordsRead: 1,
	}.Render(&buf)

	expected := "+-------------------+\n" +
		"| name              |\n" +
		"+-------------------+\n" +
		"| phabricator_phurl |\n" +
		"+-------------------+\n" +
		"1 rows (<1ms)\n"
	if buf.String() != expected {
		t.Errorf("Unexpected render:\n%s", buf.String())
	}

	buf.Reset()
	CommitResult{Transaction: ps.Transaction{Id: "0123456789abcdef"}, Unchanged: true}.Render(&buf)
	if buf.String() != "Schema unchanged at 01234567 (<1ms)\n" {
		t.Errorf("Unexpected render: %q", buf.String())
	}
}
