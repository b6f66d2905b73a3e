package store

import (
	"context"
	"fmt"

	"github.com/abgdnv/grocerytracker/internal/store/db"
)

// Column describes one column of a table in the public schema.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// Table groups columns by table name, in ordinal order.
type Table struct {
	Name    string
	Columns []Column
}

// DescribeSchema lists the tables of the public schema with their columns.
func DescribeSchema(ctx context.Context, dbtx db.DBTX) ([]Table, error) {
	rows, err := db.New(dbtx).ListColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	var tables []Table
	for _, row := range rows {
		if len(tables) == 0 || tables[len(tables)-1].Name != row.TableName {
			tables = append(tables, Table{Name: row.TableName})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, Column{Name: row.ColumnName, DataType: row.DataType, Nullable: row.Nullable})
	}
	return tables, nil
}
