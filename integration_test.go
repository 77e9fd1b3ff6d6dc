package SchemaSpec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nickyhof/SchemaSpec/config"
	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/db"
	"github.com/nickyhof/SchemaSpec/live"
	"github.com/nickyhof/SchemaSpec/phurl"
	"github.com/nickyhof/SchemaSpec/ps"
	"github.com/nickyhof/SchemaSpec/spec"
)

// TestFunc is the signature for test functions that work with any persistence
type TestFunc func(t *testing.T, engine *db.Engine)

func testOptions() db.Options {
	registry := spec.NewRegistry()
	phurl.Register(registry)
	registry.Register("PhabricatorProjectDAO", spec.Object{
		Application: "project",
		Table:       "project_column",
		Columns: []core.SchemaColumn{
			{Name: "id", DataType: core.DataTypeID},
			{Name: "phid", DataType: core.DataTypePHID},
			{Name: "projectPHID", DataType: core.DataTypePHID},
			{Name: "properties", DataType: core.DataTypeText},
		},
	})
	return db.Options{Loader: registry}
}

// runWithBothPersistence runs a test function with both memory and file persistence
func runWithBothPersistence(t *testing.T, testFunc TestFunc) {
	identity := core.Identity{Name: "test", Email: "test@test.com"}

	t.Run("Memory", func(t *testing.T) {
		persistence, err := ps.NewMemoryPersistence()
		if err != nil {
			t.Fatalf("Failed to initialize memory persistence: %v", err)
		}
		testFunc(t, Open(&persistence, testOptions()).Engine(identity))
	})

	t.Run("File", func(t *testing.T) {
		persistence, err := ps.NewFilePersistence(t.TempDir(), nil)
		if err != nil {
			t.Fatalf("Failed to initialize file persistence: %v", err)
		}
		testFunc(t, Open(&persistence, testOptions()).Engine(identity))
	})
}

func TestIntegrationWorkflow(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, engine *db.Engine) {
		result, err := engine.Execute("BUILD SCHEMA")
		if err != nil {
			t.Fatalf("Failed to build: %v", err)
		}
		cr := result.(db.CommitResult)
		if cr.DatabasesWritten != 2 || cr.TablesWritten != 2 || cr.ColumnsWritten != 13 {
			t.Errorf("Unexpected counts: %d databases, %d tables, %d columns",
				cr.DatabasesWritten, cr.TablesWritten, cr.ColumnsWritten)
		}

		result, err = engine.Execute("SHOW DATABASES")
		if err != nil {
			t.Fatalf("Failed to show databases: %v", err)
		}
		qr := result.(db.QueryResult)
		if qr.RecordsRead != 2 || qr.Data[0][0] != "phabricator_phurl" || qr.Data[1][0] != "phabricator_project" {
			t.Errorf("Unexpected databases: %v", qr.Data)
		}

		result, err = engine.Execute("DESCRIBE phabricator_phurl.phurl_url")
		if err != nil {
			t.Fatalf("Failed to describe: %v", err)
		}
		qr = result.(db.QueryResult)
		if qr.RecordsRead != 9 {
			t.Fatalf("Expected 9 columns, got %d", qr.RecordsRead)
		}
		if qr.Data[0][0] != "id" || qr.Data[0][2] != "int(10) unsigned" {
			t.Errorf("Unexpected id column: %v", qr.Data[0])
		}
		if qr.Data[1][0] != "phid" || qr.Data[1][3] != "binary" {
			t.Errorf("Unexpected phid column: %v", qr.Data[1])
		}

		result, err = engine.Execute("BUILD")
		if err != nil {
			t.Fatalf("Failed to rebuild: %v", err)
		}
		if !result.(db.CommitResult).Unchanged {
			t.Error("Expected an identical rebuild to be unchanged")
		}

		history, err := engine.History(0)
		if err != nil {
			t.Fatalf("Failed to read history: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("Expected 1 snapshot, got %d", len(history))
		}
		if history[0].Author != "test <test@test.com>" {
			t.Errorf("Unexpected author %q", history[0].Author)
		}
	})
}

// TestIntegrationPhurlStoreMatchesSchema creates the URL table through the
// phurl store and checks it against the built schema.
func TestIntegrationPhurlStoreMatchesSchema(t *testing.T) {
	ctx := context.Background()

	store, err := phurl.OpenSQLiteStore(ctx, ":memory:", spec.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.CreateURL(ctx, &phurl.URL{LongURL: "https://example.com", AuthorPHID: "PHID-USER-1"}); err != nil {
		t.Fatalf("Failed to create URL: %v", err)
	}

	registry := spec.NewRegistry()
	phurl.Register(registry)

	persistence, _ := ps.NewMemoryPersistence()
	engine := Open(&persistence, db.Options{
		Loader: registry,
		Live:   live.SQLite{DB: store.DB(), MainName: "phabricator_phurl"},
	}).Engine(core.Identity{Name: "test", Email: "test@test.com"})

	result, err := engine.Execute("COMPARE")
	if err != nil {
		t.Fatalf("Failed to compare: %v", err)
	}
	if qr := result.(db.QueryResult); qr.RecordsRead != 0 {
		t.Errorf("Expected a clean comparison, got %v", qr.Data)
	}
}

func TestOpenConfig(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	manifest := filepath.Join(dir, "schema.yaml")
	data := `
objects:
  - base: PhabricatorPhurlDAO
    application: phurl
    table: phurl_url
    columns:
      - {name: id, type: id}
      - {name: phid, type: phid}
`
	if err := os.WriteFile(manifest, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Manifest = manifest
	cfg.Persistence.BaseDir = filepath.Join(dir, "snapshots")
	cfg.Live.Driver = live.DriverSQLite
	cfg.Live.DSN = ":memory:"
	cfg.Live.Attach = map[string]string{"phabricator_phurl": ":memory:"}

	instance, err := OpenConfig(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	defer instance.Close()

	engine := instance.Engine(Identity(cfg))
	if _, err := engine.Execute("BUILD"); err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if got := engine.LatestTransaction().Author; got != "SchemaSpec <schemaspec@localhost>" {
		t.Errorf("Unexpected author %q", got)
	}

	// The attached database is empty, so the table is reported missing.
	result, err := engine.Execute("COMPARE")
	if err != nil {
		t.Fatalf("Failed to compare: %v", err)
	}
	qr := result.(db.QueryResult)
	if qr.RecordsRead != 1 || qr.Data[0][1] != "missing-table" {
		t.Errorf("Unexpected comparison: %v", qr.Data)
	}
}

func TestOpenConfigWithoutManifest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Manifest = filepath.Join(t.TempDir(), "missing.yaml")

	instance, err := OpenConfig(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	defer instance.Close()

	if _, err := instance.Engine(Identity(cfg)).Execute("BUILD"); err == nil {
		t.Error("Expected BUILD to fail without a manifest")
	}
}
