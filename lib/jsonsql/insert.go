package jsonsql

import (
	"fmt"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
)

func buildInsertDoc(stmt *ast.InsertStatement, opts Options) (map[string]any, error) {
	if stmt.Select != nil {
		return nil, errConstruct("INSERT ... SELECT is not supported")
	}
	if len(stmt.Columns) == 0 {
		return nil, errConstruct("INSERT requires an explicit column list")
	}
	if len(stmt.Rows) == 0 {
		return nil, errConstruct("INSERT requires at least one VALUES row")
	}

	c := newConverter(opts)
	c.targetScope(stmt.Table)

	columns := make([]any, 0, len(stmt.Columns))
	for _, col := range stmt.Columns {
		name, err := c.columnRef(col.Parts)
		if err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}

	values := make([]any, 0, len(stmt.Rows))
	for i, row := range stmt.Rows {
		if len(row) != len(stmt.Columns) {
			return nil, errArgument("VALUES",
				fmt.Sprintf("row %d has %d value(s) for %d column(s)", i+1, len(row), len(stmt.Columns)))
		}
		converted := make([]any, 0, len(row))
		for _, expr := range row {
			v, err := c.convert(expr)
			if err != nil {
				return nil, inClause("VALUES", err)
			}
			converted = append(converted, v)
		}
		values = append(values, converted)
	}

	doc := map[string]any{
		"into":    c.scope[0].vendor,
		"columns": columns,
		"values":  values,
	}
	if err := c.addReturning(doc, stmt.Returning); err != nil {
		return nil, err
	}
	return doc, nil
}

// targetScope installs the single-table scope of a DML statement so column
// references in VALUES, SET and RETURNING resolve to bare names.
func (c *converter) targetScope(table *ast.TableName) {
	c.scope = []tableRef{c.tableNameRef(table)}
}

func (c *converter) addReturning(doc map[string]any, cols []*ast.Identifier) error {
	if len(cols) == 0 {
		return nil
	}
	names := make([]any, 0, len(cols))
	for _, col := range cols {
		name, err := c.columnRef(col.Parts)
		if err != nil {
			return inClause("RETURNING", err)
		}
		names = append(names, name)
	}
	doc["returning"] = names
	return nil
}
