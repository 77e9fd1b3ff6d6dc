package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nickyhof/SchemaSpec/core"
)

// Manifest is the YAML form of a set of storage objects:
//
//	objects:
//	  - base: PhabricatorPhurlDAO
//	    application: phurl
//	    table: phurl_url
//	    columns:
//	      - {name: id, type: id}
//	      - {name: phid, type: phid}
type Manifest struct {
	Objects []ManifestObject `yaml:"objects"`
}

type ManifestObject struct {
	Base        string              `yaml:"base"`
	Application string              `yaml:"application"`
	Table       string              `yaml:"table"`
	Columns     []core.SchemaColumn `yaml:"columns"`
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate checks structure only. Column types are not checked here:
// unknown types are carried through as sentinels.
func (manifest *Manifest) Validate() error {
	tables := make(map[string]bool)

	for i, object := range manifest.Objects {
		if object.Base == "" {
			return fmt.Errorf("manifest object %d: base is required", i)
		}
		if object.Application == "" {
			return fmt.Errorf("manifest object %d: application is required", i)
		}
		if object.Table == "" {
			return fmt.Errorf("manifest object %d: table is required", i)
		}

		key := object.Application + "." + object.Table
		if tables[key] {
			return fmt.Errorf("manifest object %d: duplicate table %s", i, key)
		}
		tables[key] = true

		columns := make(map[string]bool, len(object.Columns))
		for _, column := range object.Columns {
			if column.Name == "" {
				return fmt.Errorf("manifest object %d (%s): column without name", i, key)
			}
			if columns[column.Name] {
				return fmt.Errorf("manifest object %d (%s): duplicate column %s", i, key, column.Name)
			}
			columns[column.Name] = true
		}
	}

	return nil
}

// Registry returns a loader over the manifest objects.
func (manifest *Manifest) Registry() *Registry {
	registry := NewRegistry()
	for _, object := range manifest.Objects {
		registry.Register(object.Base, Object{
			Application: object.Application,
			Table:       object.Table,
			Columns:     object.Columns,
		})
	}
	return registry
}

// BuildManifest runs a full build pass over a manifest file.
func BuildManifest(path string, options Options) (*core.ServerSchema, error) {
	manifest, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	registry := manifest.Registry()
	return Build(options, registry, nil, registry.Builders()...)
}
