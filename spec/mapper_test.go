package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nickyhof/SchemaSpec/core"
)

func TestDetailsForDataType(t *testing.T) {
	tests := []struct {
		name     string
		dataType core.DataType
		expected ColumnDetails
	}{
		{"id", core.DataTypeID, ColumnDetails{ColumnType: "int(10) unsigned"}},
		{"epoch", core.DataTypeEpoch, ColumnDetails{ColumnType: "int(10) unsigned"}},
		{"phid", core.DataTypePHID, ColumnDetails{ColumnType: "varchar(64)", CharacterSet: "binary", Collation: "binary"}},
		{"blob", core.DataTypeBlob, ColumnDetails{ColumnType: "longblob", CharacterSet: "binary", Collation: "binary"}},
		{"text", core.DataTypeText, ColumnDetails{ColumnType: "longtext", CharacterSet: "utf8mb4", Collation: "utf8mb4_bin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetailsForDataType(tt.dataType, "utf8mb4", "utf8mb4_bin"))
		})
	}
}

func TestDetailsForUnknownDataType(t *testing.T) {
	sentinel := ColumnDetails{ColumnType: "<unknown>", CharacterSet: "<unknown>", Collation: "<unknown>"}

	for _, dataType := range []core.DataType{"", "bool", "uint32", "TEXT", "text "} {
		assert.Equal(t, sentinel, DetailsForDataType(dataType, "utf8mb4", "utf8mb4_bin"), "data type %q", dataType)
	}
}

func TestDetailsForDataTypeIsPure(t *testing.T) {
	for _, dataType := range append(core.DataTypes, "mystery") {
		first := DetailsForDataType(dataType, "utf8", "utf8_general_ci")
		second := DetailsForDataType(dataType, "utf8", "utf8_general_ci")
		assert.Equal(t, first, second)
	}

	// Only text follows the configured pair.
	assert.Equal(t, "latin1", DetailsForDataType(core.DataTypeText, "latin1", "latin1_swedish_ci").CharacterSet)
	assert.Equal(t, "binary", DetailsForDataType(core.DataTypePHID, "latin1", "latin1_swedish_ci").CharacterSet)
}

func TestColumnDetailsDefinition(t *testing.T) {
	assert.Equal(t, "int(10) unsigned", DetailsForDataType(core.DataTypeID, "utf8mb4", "utf8mb4_bin").Definition())
	assert.Equal(t, "longtext CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		DetailsForDataType(core.DataTypeText, "utf8mb4", "utf8mb4_bin").Definition())
	assert.Equal(t, "<unknown>", DetailsForDataType("nope", "utf8mb4", "utf8mb4_bin").Definition())
}

func TestColumnDetailsSQLiteType(t *testing.T) {
	assert.Equal(t, "int unsigned(10)", DetailsForDataType(core.DataTypeID, "utf8mb4", "utf8mb4_bin").SQLiteType())
	assert.Equal(t, "varchar(64)", DetailsForDataType(core.DataTypePHID, "utf8mb4", "utf8mb4_bin").SQLiteType())
	assert.Equal(t, "longtext", DetailsForDataType(core.DataTypeText, "utf8mb4", "utf8mb4_bin").SQLiteType())
	assert.Empty(t, DetailsForDataType("nope", "utf8mb4", "utf8mb4_bin").SQLiteType())
}
