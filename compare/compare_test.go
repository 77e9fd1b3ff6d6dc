package compare

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/nickyhof/SchemaSpec/core"
)

func expectedSchema() *core.ServerSchema {
	server := core.NewServerSchema()
	database := core.NewDatabaseSchema("phabricator_phurl")
	database.CharacterSet = "utf8mb4"
	database.Collation = "utf8mb4_bin"

	table := core.NewTableSchema("phurl_url")
	table.Collation = "utf8mb4_bin"
	table.AddColumn(&core.ColumnSchema{Name: "id", DataType: core.DataTypeID, ColumnType: "int(10) unsigned"})
	table.AddColumn(&core.ColumnSchema{Name: "phid", DataType: core.DataTypePHID, ColumnType: "varchar(64)", CharacterSet: "binary", Collation: "binary"})
	table.AddColumn(&core.ColumnSchema{Name: "name", DataType: core.DataTypeText, ColumnType: "longtext", CharacterSet: "utf8mb4", Collation: "utf8mb4_bin"})
	database.AddTable(table)
	server.AddDatabase(database)
	return server
}

// liveSchema mirrors expectedSchema the way an engine without charset
// reporting would return it.
func liveSchema() *core.ServerSchema {
	server := core.NewServerSchema()
	database := core.NewDatabaseSchema("phabricator_phurl")
	table := core.NewTableSchema("phurl_url")
	table.AddColumn(&core.ColumnSchema{Name: "id", ColumnType: "INT(10) UNSIGNED"})
	table.AddColumn(&core.ColumnSchema{Name: "phid", ColumnType: "varchar(64)"})
	table.AddColumn(&core.ColumnSchema{Name: "name", ColumnType: "longtext"})
	database.AddTable(table)
	server.AddDatabase(database)
	return server
}

func TestCompareIdentical(t *testing.T) {
	report := Compare(expectedSchema(), expectedSchema(), Options{Namespace: "phabricator"})
	assert.True(t, report.Empty(), report.Issues)
	assert.False(t, report.HasErrors())
}

func TestCompareIgnoresUnreportedAttributes(t *testing.T) {
	report := Compare(expectedSchema(), liveSchema(), Options{Namespace: "phabricator"})
	assert.True(t, report.Empty(), report.Issues)
}

func TestCompareMissingObjects(t *testing.T) {
	expected := expectedSchema()
	project := core.NewDatabaseSchema("phabricator_project")
	project.AddTable(core.NewTableSchema("project"))
	expected.AddDatabase(project)
	expected.Database("phabricator_phurl").AddTable(core.NewTableSchema("phurl_alias"))

	actual := liveSchema()
	url := actual.Database("phabricator_phurl").Table("phurl_url")
	url.Columns = url.Columns[:2]

	report := Compare(expected, actual, Options{Namespace: "phabricator"})

	want := []Issue{
		{Kind: MissingTable, Severity: SeverityError, Database: "phabricator_phurl", Table: "phurl_alias"},
		{Kind: MissingColumn, Severity: SeverityError, Database: "phabricator_phurl", Table: "phurl_url", Column: "name", Expected: "longtext"},
		{Kind: MissingDatabase, Severity: SeverityError, Database: "phabricator_project"},
	}
	if diff := cmp.Diff(want, report.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, report.Count(SeverityError))
}

func TestCompareSurplusObjects(t *testing.T) {
	actual := expectedSchema()
	actual.Database("phabricator_phurl").AddTable(core.NewTableSchema("phurl_legacy"))
	actual.Database("phabricator_phurl").Table("phurl_url").AddColumn(&core.ColumnSchema{Name: "mailKey", ColumnType: "binary(20)"})
	actual.AddDatabase(core.NewDatabaseSchema("phabricator_oldapp"))
	actual.AddDatabase(core.NewDatabaseSchema("mysql"))

	report := Compare(expectedSchema(), actual, Options{Namespace: "phabricator"})

	want := []Issue{
		{Kind: SurplusDatabase, Severity: SeverityWarning, Database: "phabricator_oldapp"},
		{Kind: SurplusTable, Severity: SeverityWarning, Database: "phabricator_phurl", Table: "phurl_legacy"},
		{Kind: SurplusColumn, Severity: SeverityWarning, Database: "phabricator_phurl", Table: "phurl_url", Column: "mailKey", Actual: "binary(20)"},
	}
	if diff := cmp.Diff(want, report.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, report.HasErrors())
	assert.Equal(t, 3, report.Count(SeverityWarning))

	quiet := Compare(expectedSchema(), actual, Options{Namespace: "phabricator", IgnoreSurplus: true})
	assert.True(t, quiet.Empty())
}

func TestCompareSurplusDatabasesWithoutNamespace(t *testing.T) {
	actual := expectedSchema()
	actual.AddDatabase(core.NewDatabaseSchema("mysql"))

	report := Compare(expectedSchema(), actual, Options{})
	assert.Len(t, report.Filter(SurplusDatabase), 1)
}

func TestCompareMismatches(t *testing.T) {
	actual := expectedSchema()
	database := actual.Database("phabricator_phurl")
	database.CharacterSet = "latin1"
	table := database.Table("phurl_url")
	table.Collation = "latin1_swedish_ci"
	table.Column("id").ColumnType = "bigint(20) unsigned"
	table.Column("name").CharacterSet = "utf8"
	table.Column("name").Collation = "utf8_general_ci"

	report := Compare(expectedSchema(), actual, Options{Namespace: "phabricator"})

	want := []Issue{
		{Kind: DatabaseCharset, Severity: SeverityWarning, Database: "phabricator_phurl", Expected: "utf8mb4", Actual: "latin1"},
		{Kind: TableCollation, Severity: SeverityWarning, Database: "phabricator_phurl", Table: "phurl_url", Expected: "utf8mb4_bin", Actual: "latin1_swedish_ci"},
		{Kind: ColumnType, Severity: SeverityError, Database: "phabricator_phurl", Table: "phurl_url", Column: "id", Expected: "int(10) unsigned", Actual: "bigint(20) unsigned"},
		{Kind: ColumnCharset, Severity: SeverityError, Database: "phabricator_phurl", Table: "phurl_url", Column: "name", Expected: "utf8mb4", Actual: "utf8"},
		{Kind: ColumnCollation, Severity: SeverityError, Database: "phabricator_phurl", Table: "phurl_url", Column: "name", Expected: "utf8mb4_bin", Actual: "utf8_general_ci"},
	}
	if diff := cmp.Diff(want, report.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareDetectsUnknownSentinel(t *testing.T) {
	expected := expectedSchema()
	expected.Database("phabricator_phurl").Table("phurl_url").AddColumn(&core.ColumnSchema{
		Name:         "isDisabled",
		DataType:     "bool",
		ColumnType:   core.Unknown,
		CharacterSet: core.Unknown,
		Collation:    core.Unknown,
	})

	actual := liveSchema()
	actual.Database("phabricator_phurl").Table("phurl_url").AddColumn(&core.ColumnSchema{Name: "isDisabled", ColumnType: "tinyint(1)"})

	report := Compare(expected, actual, Options{Namespace: "phabricator"})

	unknown := report.Filter(UnknownType)
	assert.Equal(t, []Issue{{
		Kind:     UnknownType,
		Severity: SeverityError,
		Database: "phabricator_phurl",
		Table:    "phurl_url",
		Column:   "isDisabled",
		Expected: "bool",
		Actual:   "tinyint(1)",
	}}, unknown)
	assert.Len(t, report.Issues, 1, "sentinel columns are not also reported as type mismatches")
}

func TestCompareNilSchemas(t *testing.T) {
	report := Compare(expectedSchema(), nil, Options{})
	assert.Equal(t, []Issue{{Kind: MissingDatabase, Severity: SeverityError, Database: "phabricator_phurl"}}, report.Issues)

	assert.True(t, Compare(nil, nil, Options{}).Empty())
}

func TestIssueString(t *testing.T) {
	issue := Issue{Kind: ColumnType, Severity: SeverityError, Database: "d", Table: "t", Column: "c", Expected: "a", Actual: "b"}
	assert.Equal(t, "d.t.c", issue.Target())
	assert.Equal(t, `error column-type: d.t.c (expected "a", actual "b")`, issue.String())

	missing := Issue{Kind: MissingDatabase, Severity: SeverityError, Database: "d"}
	assert.Equal(t, "error missing-database: d", missing.String())

	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "severity(9)", Severity(9).String())
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "int(10) unsigned", normalizeType("INT(10)   UNSIGNED"))
	assert.Equal(t, "int(10) unsigned", normalizeType("int unsigned(10)"))
	assert.Equal(t, "varchar(64)", normalizeType("varchar( 64 )"))
	assert.Equal(t, "decimal(10,2)", normalizeType("DECIMAL(10, 2)"))
	assert.Equal(t, "longtext", normalizeType("longtext"))
	assert.Equal(t, "", normalizeType("  "))
}
