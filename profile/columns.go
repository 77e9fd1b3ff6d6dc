package profile

import (
	"context"
	"database/sql"
	"fmt"
)

// ColumnTable is the table SQLColumns reads workboard columns from.
const ColumnTable = "project_column"

// SQLColumns answers column queries from a project_column table with a
// projectPHID column. Visibility is not modelled: every column is visible
// to every viewer.
type SQLColumns struct {
	DB *sql.DB
}

func (columns SQLColumns) HasColumns(ctx context.Context, projectPHID, viewerPHID string) (bool, error) {
	var exists bool
	err := columns.DB.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+ColumnTable+" WHERE projectPHID = ?)", projectPHID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", ColumnTable, err)
	}
	return exists, nil
}
