package spec

import (
	"strings"

	"github.com/nickyhof/SchemaSpec/core"
)

// ColumnDetails is the physical rendition of a logical column type.
type ColumnDetails struct {
	ColumnType   string
	CharacterSet string
	Collation    string
}

// DetailsForDataType maps a logical data type to its physical column type,
// character set and collation. Text columns take the configured UTF-8
// charset and collation; numeric columns carry neither.
func DetailsForDataType(dataType core.DataType, utf8Charset, utf8Collation string) ColumnDetails {
	switch dataType {
	case core.DataTypeID, core.DataTypeEpoch:
		return ColumnDetails{ColumnType: core.ColumnTypeUnsignedInt}
	case core.DataTypePHID:
		return ColumnDetails{
			ColumnType:   core.ColumnTypePHID,
			CharacterSet: core.CharsetBinary,
			Collation:    core.CollationBinary,
		}
	case core.DataTypeBlob:
		return ColumnDetails{
			ColumnType:   core.ColumnTypeLongBlob,
			CharacterSet: core.CharsetBinary,
			Collation:    core.CollationBinary,
		}
	case core.DataTypeText:
		return ColumnDetails{
			ColumnType:   core.ColumnTypeLongText,
			CharacterSet: utf8Charset,
			Collation:    utf8Collation,
		}
	default:
		return ColumnDetails{
			ColumnType:   core.Unknown,
			CharacterSet: core.Unknown,
			Collation:    core.Unknown,
		}
	}
}

// Definition renders the details as a column definition suitable for DDL,
// e.g. "longtext CHARACTER SET utf8mb4 COLLATE utf8mb4_bin".
func (details ColumnDetails) Definition() string {
	definition := details.ColumnType
	if details.CharacterSet != "" && details.CharacterSet != core.Unknown {
		definition += " CHARACTER SET " + details.CharacterSet
	}
	if details.Collation != "" && details.Collation != core.Unknown {
		definition += " COLLATE " + details.Collation
	}
	return definition
}

// SQLiteType spells the column type the way SQLite accepts it, with any
// length suffix last: "int(10) unsigned" becomes "int unsigned(10)".
// Unknown types have no SQLite spelling and render empty.
func (details ColumnDetails) SQLiteType() string {
	columnType := details.ColumnType
	if columnType == core.Unknown {
		return ""
	}

	open := strings.Index(columnType, "(")
	if open < 0 {
		return columnType
	}
	end := strings.Index(columnType[open:], ")")
	if end < 0 {
		return columnType
	}

	size := columnType[open : open+end+1]
	rest := strings.TrimSpace(columnType[:open] + " " + columnType[open+end+1:])
	return strings.Join(strings.Fields(rest), " ") + size
}
