package spec

import "github.com/nickyhof/SchemaSpec/core"

// StorageObject describes one stored object class: the application that
// owns it, its table, and its declared columns.
type StorageObject interface {
	ApplicationName() string
	TableName() string
	SchemaColumns() []core.SchemaColumn
}

// Loader yields the storage objects that descend from a base class.
type Loader interface {
	LoadObjects(base string) ([]StorageObject, error)
}

// Object is a plain StorageObject.
type Object struct {
	Application string
	Table       string
	Columns     []core.SchemaColumn
}

func (object Object) ApplicationName() string {
	return object.Application
}

func (object Object) TableName() string {
	return object.Table
}

func (object Object) SchemaColumns() []core.SchemaColumn {
	return object.Columns
}

// Registry is an in-memory Loader. Objects are returned in registration
// order.
type Registry struct {
	bases   []string
	objects map[string][]StorageObject
}

func NewRegistry() *Registry {
	return &Registry{objects: make(map[string][]StorageObject)}
}

func (registry *Registry) Register(base string, objects ...StorageObject) {
	if _, ok := registry.objects[base]; !ok {
		registry.bases = append(registry.bases, base)
	}
	registry.objects[base] = append(registry.objects[base], objects...)
}

func (registry *Registry) LoadObjects(base string) ([]StorageObject, error) {
	return registry.objects[base], nil
}

// Bases returns the registered base names in registration order.
func (registry *Registry) Bases() []string {
	return append([]string(nil), registry.bases...)
}

// Builders returns one LiskBuilder per registered base.
func (registry *Registry) Builders() []Builder {
	builders := make([]Builder, 0, len(registry.bases))
	for _, base := range registry.bases {
		builders = append(builders, LiskBuilder{Base: base})
	}
	return builders
}
