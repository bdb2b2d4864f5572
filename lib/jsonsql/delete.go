package jsonsql

import (
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
)

func buildDeleteDoc(stmt *ast.DeleteStatement, opts Options) (map[string]any, error) {
	c := newConverter(opts)
	c.targetScope(stmt.Table)

	doc := map[string]any{
		"from": c.scope[0].vendor,
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
