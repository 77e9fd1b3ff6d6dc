package profile

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type fixedColumns struct {
	has bool
	err error
}

func (c fixedColumns) HasColumns(ctx context.Context, projectPHID, viewerPHID string) (bool, error) {
	return c.has, c.err
}

func testConfig() *PanelConfiguration {
	return NewPanelConfiguration(WorkboardPanelKey, &Project{ID: 42, PHID: "PHID-PROJ-1", Name: "Backend"})
}

func TestWorkboardPanelNames(t *testing.T) {
	panel := &WorkboardPanel{}
	config := testConfig()

	assert.Equal(t, "project.workboard", panel.PanelKey())
	assert.Equal(t, "Project Workboard", panel.PanelTypeName())
	assert.Equal(t, "Workboard", panel.DisplayName(config))

	config.SetPanelProperty(PropertyName, "Sprint Board")
	assert.Equal(t, "Sprint Board", panel.DisplayName(config))
}

func TestWorkboardPanelEditFields(t *testing.T) {
	panel := &WorkboardPanel{}
	config := testConfig()

	assert.Equal(t, []EditField{{Key: "name", Label: "Name", Placeholder: "Workboard"}}, panel.EditFields(config))

	config.SetPanelProperty(PropertyName, "Board")
	assert.Equal(t, "Board", panel.EditFields(config)[0].Value)
}

func TestWorkboardPanelNavigation(t *testing.T) {
	ctx := context.Background()
	installed := InstalledApplications{ManiphestApplication: true}

	tests := []struct {
		name     string
		apps     ApplicationChecker
		columns  ColumnQuerier
		expected []NavigationItem
	}{
		{
			name:     "maniphest not installed",
			apps:     InstalledApplications{},
			columns:  fixedColumns{has: true},
			expected: nil,
		},
		{
			name:    "project with columns",
			apps:    installed,
			columns: fixedColumns{has: true},
			expected: []NavigationItem{
				{Name: "Workboard", Href: "/project/board/42/", Icon: "fa-columns"},
			},
		},
		{
			name:    "project without columns",
			apps:    installed,
			columns: fixedColumns{},
			expected: []NavigationItem{
				{Name: "Workboard", Href: "/project/board/42/", Icon: "fa-columns grey"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := &WorkboardPanel{ViewerPHID: "PHID-USER-1", Applications: tt.apps, Columns: tt.columns}
			items, err := panel.NavigationMenuItems(ctx, testConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, items)
		})
	}
}

func TestWorkboardPanelNavigationErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	panel := &WorkboardPanel{
		Applications: InstalledApplications{ManiphestApplication: true},
		Columns:      fixedColumns{err: boom},
	}
	_, err := panel.NavigationMenuItems(ctx, testConfig())
	assert.ErrorIs(t, err, boom)

	_, err = panel.NavigationMenuItems(ctx, NewPanelConfiguration(WorkboardPanelKey, nil))
	assert.Error(t, err)
}

func TestSQLColumns(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, "CREATE TABLE project_column (id INTEGER PRIMARY KEY, projectPHID TEXT)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO project_column (projectPHID) VALUES ('PHID-PROJ-1')")
	require.NoError(t, err)

	columns := SQLColumns{DB: db}

	has, err := columns.HasColumns(ctx, "PHID-PROJ-1", "")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = columns.HasColumns(ctx, "PHID-PROJ-2", "")
	require.NoError(t, err)
	assert.False(t, has)

	panel := &WorkboardPanel{Applications: InstalledApplications{ManiphestApplication: true}, Columns: columns}
	items, err := panel.NavigationMenuItems(ctx, testConfig())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, IconColumns, items[0].Icon)
}

func TestPanels(t *testing.T) {
	index, err := Panels(&WorkboardPanel{})
	require.NoError(t, err)
	assert.Contains(t, index, WorkboardPanelKey)

	_, err = Panels(&WorkboardPanel{}, &WorkboardPanel{})
	assert.Error(t, err)
}
