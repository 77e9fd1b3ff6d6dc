package profile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	WorkboardPanelKey = "project.workboard"

	// ManiphestApplication must be installed for workboards to exist.
	ManiphestApplication = "PhabricatorManiphestApplication"

	PropertyName = "name"

	IconColumns      = "fa-columns"
	IconEmptyColumns = "fa-columns grey"
)

// ApplicationChecker reports whether an application class is installed
// for a viewer.
type ApplicationChecker interface {
	IsInstalledForViewer(ctx context.Context, class, viewerPHID string) (bool, error)
}

// ColumnQuerier reports whether a project has any workboard columns
// visible to a viewer.
type ColumnQuerier interface {
	HasColumns(ctx context.Context, projectPHID, viewerPHID string) (bool, error)
}

// InstalledApplications is an ApplicationChecker over a fixed class set
// that applies to every viewer.
type InstalledApplications map[string]bool

func (apps InstalledApplications) IsInstalledForViewer(ctx context.Context, class, viewerPHID string) (bool, error) {
	return apps[class], nil
}

type WorkboardPanel struct {
	ViewerPHID   string
	Applications ApplicationChecker
	Columns      ColumnQuerier
	Logger       *zap.Logger
}

func (*WorkboardPanel) PanelKey() string {
	return WorkboardPanelKey
}

func (*WorkboardPanel) PanelTypeName() string {
	return "Project Workboard"
}

func (*WorkboardPanel) DefaultName() string {
	return "Workboard"
}

func (panel *WorkboardPanel) DisplayName(config *PanelConfiguration) string {
	if name := config.PanelProperty(PropertyName); name != "" {
		return name
	}
	return panel.DefaultName()
}

func (panel *WorkboardPanel) EditFields(config *PanelConfiguration) []EditField {
	return []EditField{{
		Key:         PropertyName,
		Label:       "Name",
		Placeholder: panel.DefaultName(),
		Value:       config.PanelProperty(PropertyName),
	}}
}

func (panel *WorkboardPanel) NavigationMenuItems(ctx context.Context, config *PanelConfiguration) ([]NavigationItem, error) {
	installed, err := panel.Applications.IsInstalledForViewer(ctx, ManiphestApplication, panel.ViewerPHID)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", ManiphestApplication, err)
	}
	if !installed {
		panel.logger().Debug("Workboard hidden, Maniphest not installed",
			zap.String("viewer", panel.ViewerPHID))
		return nil, nil
	}

	project := config.Project
	if project == nil {
		return nil, fmt.Errorf("panel %s has no project", WorkboardPanelKey)
	}

	hasColumns, err := panel.Columns.HasColumns(ctx, project.PHID, panel.ViewerPHID)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", project.PHID, err)
	}

	icon := IconEmptyColumns
	if hasColumns {
		icon = IconColumns
	}

	return []NavigationItem{{
		Name: panel.DisplayName(config),
		Href: fmt.Sprintf("/project/board/%d/", project.ID),
		Icon: icon,
	}}, nil
}

func (panel *WorkboardPanel) logger() *zap.Logger {
	if panel.Logger == nil {
		return zap.NewNop()
	}
	return panel.Logger
}
