package profile

import (
	"context"
	"fmt"
)

// Panel is one kind of entry on a profile menu.
type Panel interface {
	PanelKey() string
	PanelTypeName() string
	DisplayName(config *PanelConfiguration) string
	EditFields(config *PanelConfiguration) []EditField
	NavigationMenuItems(ctx context.Context, config *PanelConfiguration) ([]NavigationItem, error)
}

type Project struct {
	ID   int64
	PHID string
	Name string
}

// PanelConfiguration binds a panel to the object whose profile shows it.
type PanelConfiguration struct {
	PanelKey   string
	Project    *Project
	Properties map[string]string
}

func NewPanelConfiguration(panelKey string, project *Project) *PanelConfiguration {
	return &PanelConfiguration{
		PanelKey:   panelKey,
		Project:    project,
		Properties: make(map[string]string),
	}
}

func (config *PanelConfiguration) PanelProperty(key string) string {
	return config.Properties[key]
}

func (config *PanelConfiguration) SetPanelProperty(key, value string) {
	if config.Properties == nil {
		config.Properties = make(map[string]string)
	}
	config.Properties[key] = value
}

type EditField struct {
	Key         string
	Label       string
	Placeholder string
	Value       string
}

type NavigationItem struct {
	Name string
	Href string
	Icon string
}

// Panels indexes panels by key.
func Panels(panels ...Panel) (map[string]Panel, error) {
	index := make(map[string]Panel, len(panels))
	for _, panel := range panels {
		key := panel.PanelKey()
		if _, ok := index[key]; ok {
			return nil, fmt.Errorf("duplicate panel key %q", key)
		}
		index[key] = panel
	}
	return index, nil
}
