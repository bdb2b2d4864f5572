package jsonsql

import (
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
)

func buildUpdateDoc(stmt *ast.UpdateStatement, opts Options) (map[string]any, error) {
	c := newConverter(opts)
	c.targetScope(stmt.Table)

	set := map[string]any{}
	for _, assign := range stmt.Assignments {
		name, err := c.columnRef(assign.Column.Parts)
		if err != nil {
			return nil, inClause("SET", err)
		}
		if _, dup := set[name]; dup {
			return nil, inClause("SET", errArgument("SET", "column "+name+" assigned twice"))
		}
		value, err := c.convert(assign.Value)
		if err != nil {
			return nil, inClause("SET", err)
		}
		set[name] = value
	}

	doc := map[string]any{
		"table": c.scope[0].vendor,
		"set":   set,
	}
	if stmt.Where != nil {
		where, err := c.convert(stmt.Where)
		if err != nil {
			return nil, inClause("WHERE", err)
		}
		doc["where"] = where
	}
	if err := c.addReturning(doc, stmt.Returning); err != nil {
		return nil, err
	}
	return doc, nil
}
