package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestServer() *ServerSchema {
	server := NewServerSchema()

	phurl := NewDatabaseSchema("phabricator_phurl")
	url := NewTableSchema("phurl_url")
	url.AddColumn(&ColumnSchema{Name: "id", DataType: DataTypeID, ColumnType: ColumnTypeUnsignedInt})
	url.AddColumn(&ColumnSchema{Name: "phid", DataType: DataTypePHID, ColumnType: ColumnTypePHID})
	phurl.AddTable(url)
	server.AddDatabase(phurl)

	project := NewDatabaseSchema("phabricator_project")
	project.AddTable(NewTableSchema("project_column"))
	project.AddTable(NewTableSchema("project"))
	server.AddDatabase(project)

	return server
}

func TestServerSchemaLookups(t *testing.T) {
	server := buildTestServer()

	assert.Equal(t, []string{"phabricator_phurl", "phabricator_project"}, server.DatabaseNames())
	assert.Nil(t, server.Database("phabricator_missing"))

	project := server.Database("phabricator_project")
	require.NotNil(t, project)
	assert.Equal(t, []string{"project", "project_column"}, project.TableNames())
	assert.Nil(t, project.Table("nope"))

	url := server.Database("phabricator_phurl").Table("phurl_url")
	require.NotNil(t, url)
	assert.Equal(t, []string{"id", "phid"}, url.ColumnNames())
	assert.Equal(t, ColumnTypePHID, url.Column("phid").ColumnType)
	assert.Nil(t, url.Column("alias"))
}

func TestServerSchemaCounts(t *testing.T) {
	databases, tables, columns := buildTestServer().Counts()
	assert.Equal(t, 2, databases)
	assert.Equal(t, 3, tables)
	assert.Equal(t, 2, columns)
}

func TestNilLookups(t *testing.T) {
	var server *ServerSchema
	var database *DatabaseSchema
	var table *TableSchema

	assert.Nil(t, server.Database("x"))
	assert.Nil(t, database.Table("x"))
	assert.Nil(t, table.Column("x"))
}

func TestDatabaseHeaderDropsTables(t *testing.T) {
	database := NewDatabaseSchema("phabricator_phurl")
	database.CharacterSet = "utf8mb4"
	database.Collation = "utf8mb4_bin"
	database.AddTable(NewTableSchema("phurl_url"))

	header := database.Header()
	assert.Nil(t, header.Tables)

	data, err := json.Marshal(header)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"phabricator_phurl","characterSet":"utf8mb4","collation":"utf8mb4_bin"}`, string(data))
}

func TestColumnsFromMapSortsByName(t *testing.T) {
	columns := ColumnsFromMap(map[string]DataType{
		"phid":        DataTypePHID,
		"dateCreated": DataTypeEpoch,
		"body":        DataTypeText,
	})

	assert.Equal(t, []SchemaColumn{
		{Name: "body", DataType: DataTypeText},
		{Name: "dateCreated", DataType: DataTypeEpoch},
		{Name: "phid", DataType: DataTypePHID},
	}, columns)
}

func TestDataTypeIsKnown(t *testing.T) {
	for _, dataType := range DataTypes {
		assert.True(t, dataType.IsKnown(), dataType)
	}
	assert.False(t, DataType("bool").IsKnown())
	assert.False(t, DataType("").IsKnown())
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "Alice <alice@example.com>", Identity{Name: "Alice", Email: "alice@example.com"}.String())
}
