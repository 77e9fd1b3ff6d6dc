package phurl

import (
	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/spec"
)

const (
	// Base is the storage base class every Phurl object descends from.
	Base = "PhabricatorPhurlDAO"

	ApplicationName = "phurl"
	TableName       = "phurl_url"
)

type URL struct {
	ID           int64
	PHID         string
	Name         string
	LongURL      string
	Alias        string
	AuthorPHID   string
	Description  string
	DateCreated  int64
	DateModified int64
}

// urlColumns is the declared column map of phurl_url, in table order.
var urlColumns = []core.SchemaColumn{
	{Name: "id", DataType: core.DataTypeID},
	{Name: "phid", DataType: core.DataTypePHID},
	{Name: "name", DataType: core.DataTypeText},
	{Name: "longURL", DataType: core.DataTypeText},
	{Name: "alias", DataType: core.DataTypeText},
	{Name: "authorPHID", DataType: core.DataTypePHID},
	{Name: "description", DataType: core.DataTypeText},
	{Name: "dateCreated", DataType: core.DataTypeEpoch},
	{Name: "dateModified", DataType: core.DataTypeEpoch},
}

// URLObject is the storage object for shortened URLs.
type URLObject struct{}

func (URLObject) ApplicationName() string {
	return ApplicationName
}

func (URLObject) TableName() string {
	return TableName
}

func (URLObject) SchemaColumns() []core.SchemaColumn {
	return append([]core.SchemaColumn(nil), urlColumns...)
}

// Register adds the Phurl storage objects to registry.
func Register(registry *spec.Registry) {
	registry.Register(Base, URLObject{})
}
