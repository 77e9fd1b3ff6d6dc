package core

import "sort"

// DataType is a logical column type tag, independent of the physical type.
type DataType string

const (
	DataTypeID    DataType = "id"
	DataTypeEpoch DataType = "epoch"
	DataTypePHID  DataType = "phid"
	DataTypeBlob  DataType = "blob"
	DataTypeText  DataType = "text"
)

// Unknown is the sentinel reported for every detail of an unrecognized
// data type. It is a value, not an error: the comparator flags it later.
const Unknown = "<unknown>"

// Physical column types and charsets produced by the type mapper.
const (
	ColumnTypeUnsignedInt = "int(10) unsigned"
	ColumnTypePHID        = "varchar(64)"
	ColumnTypeLongBlob    = "longblob"
	ColumnTypeLongText    = "longtext"

	CharsetBinary   = "binary"
	CollationBinary = "binary"
)

// DataTypes lists every defined logical type.
var DataTypes = []DataType{
	DataTypeID,
	DataTypeEpoch,
	DataTypePHID,
	DataTypeBlob,
	DataTypeText,
}

func (dataType DataType) IsKnown() bool {
	for _, known := range DataTypes {
		if dataType == known {
			return true
		}
	}
	return false
}

// SchemaColumn is a column declaration as yielded by a storage object.
type SchemaColumn struct {
	Name     string   `json:"name" yaml:"name"`
	DataType DataType `json:"type" yaml:"type"`
}

// ColumnsFromMap converts a name to type map into columns ordered by name.
func ColumnsFromMap(columns map[string]DataType) []SchemaColumn {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]SchemaColumn, 0, len(names))
	for _, name := range names {
		result = append(result, SchemaColumn{Name: name, DataType: columns[name]})
	}
	return result
}
