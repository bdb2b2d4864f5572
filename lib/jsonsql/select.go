package jsonsql

import (
	"strconv"
	"strings"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/render"
)

func buildSelectDoc(stmt *ast.SelectStatement, opts Options, topLevel bool, depth int) (map[string]any, error) {
	c := newConverter(opts)
	c.depth = depth

	if stmt.From == nil {
		return nil, inClause("FROM", errConstruct("FROM clause is required"))
	}
	from, err := c.resolveFrom(stmt.From)
	if err != nil {
		return nil, inClause("FROM", err)
	}

	data, err := c.selectList(stmt.Columns)
	if err != nil {
		return nil, inClause("SELECT", err)
	}

	doc := map[string]any{
		"data": data,
		"from": from,
	}
	if stmt.Distinct {
		doc["distinct"] = true
	}

	if stmt.Where != nil {
		where, err := c.convert(stmt.Where)
		if err != nil {
			return nil, inClause("WHERE", err)
		}
		doc["where"] = where
	}

	if len(stmt.GroupBy) > 0 {
		group, err := c.groupBy(stmt.GroupBy)
		if err != nil {
			return nil, inClause("GROUP BY", err)
		}
		doc["group_by"] = group
	}

	if stmt.Having != nil {
		if len(stmt.GroupBy) == 0 {
			return nil, inClause("HAVING", errConstruct("HAVING requires GROUP BY"))
		}
		having, err := c.convert(stmt.Having)
		if err != nil {
			return nil, inClause("HAVING", err)
		}
		doc["having"] = having
	}

	if len(stmt.OrderBy) > 0 {
		order, err := c.orderBy(stmt.OrderBy)
		if err != nil {
			return nil, inClause("ORDER BY", err)
		}
		doc["order_by"] = order
	}

	if stmt.Limit != nil {
		if stmt.Limit.Count != nil {
			n, err := intLiteral(stmt.Limit.Count, "LIMIT")
			if err != nil {
				return nil, inClause("LIMIT", err)
			}
			doc["limit"] = n
		}
		if stmt.Limit.Offset != nil {
			n, err := intLiteral(stmt.Limit.Offset, "OFFSET")
			if err != nil {
				return nil, inClause("OFFSET", err)
			}
			doc["offset"] = n
		}
	}

	if topLevel {
		c.autoOrderBy(stmt, doc)
	}
	return doc, nil
}

func (c *converter) selectList(items []ast.SelectItem) ([]any, error) {
	if len(items) == 0 {
		return nil, errConstruct("empty SELECT list")
	}
	data := make([]any, 0, len(items))
	for _, item := range items {
		var value any
		var err error
		if star, ok := item.Expr.(*ast.StarExpr); ok {
			value, err = c.starItem(star)
		} else {
			value, err = c.convert(item.Expr)
		}
		if err != nil {
			return nil, err
		}
		if item.Alias != "" {
			value = map[string]any{"as": []any{value, item.Alias}}
		}
		data = append(data, value)
	}
	return data, nil
}

func (c *converter) starItem(star *ast.StarExpr) (any, error) {
	if star.Table == nil || len(c.scope) <= 1 {
		return "*", nil
	}
	qualifier, err := c.columnRef(append(append([]string{}, star.Table.Parts...), "*"))
	if err != nil {
		return nil, err
	}
	return qualifier, nil
}

func (c *converter) groupBy(exprs []ast.Expr) (any, error) {
	terms := make([]any, 0, len(exprs))
	for _, e := range exprs {
		v, err := c.convert(e)
		if err != nil {
			return nil, err
		}
		terms = append(terms, v)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return terms, nil
}

func (c *converter) orderBy(items []ast.OrderItem) (any, error) {
	terms := make([]any, 0, len(items))
	for _, item := range items {
		v, err := c.convert(item.Expr)
		if err != nil {
			return nil, err
		}
		if item.Direction == ast.Descending {
			v = map[string]any{"desc": v}
		}
		terms = append(terms, v)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return terms, nil
}

// autoOrderBy injects the engine's stable pagination order. It fires only
// for plain single-table selects that expose the id column and carry no
// explicit ordering, grouping or aggregation.
func (c *converter) autoOrderBy(stmt *ast.SelectStatement, doc map[string]any) {
	if !c.opts.AutoOrderByID {
		return
	}
	if len(stmt.OrderBy) > 0 || len(stmt.GroupBy) > 0 {
		return
	}
	if _, ok := stmt.From.(*ast.TableName); !ok {
		return
	}
	if hasAggregate(stmt.Columns) || !selectsID(stmt.Columns) {
		return
	}
	doc["order_by"] = "id"
}

type aggregateScanner struct {
	found bool
}

func (s *aggregateScanner) Visit(n ast.Node) ast.Visitor {
	if n == nil || s.found {
		return nil
	}
	if fn, ok := n.(*ast.FuncCall); ok && isAggregateCall(fn) {
		s.found = true
		return nil
	}
	return s
}

func hasAggregate(items []ast.SelectItem) bool {
	s := &aggregateScanner{}
	for _, item := range items {
		ast.Walk(s, item.Expr)
		if s.found {
			return true
		}
	}
	return false
}

func selectsID(items []ast.SelectItem) bool {
	for _, item := range items {
		switch e := item.Expr.(type) {
		case *ast.StarExpr:
			return true
		case *ast.Identifier:
			if len(e.Parts) > 0 && strings.EqualFold(e.Parts[len(e.Parts)-1], "id") {
				return true
			}
		}
	}
	return false
}

func intLiteral(e ast.Expr, clause string) (int64, error) {
	num, ok := e.(*ast.NumericLiteral)
	if !ok {
		return 0, errConstruct("%s requires an integer literal, got %s", clause, render.Snippet(e))
	}
	n, err := strconv.ParseInt(num.Value, 10, 64)
	if err != nil {
		return 0, errConstruct("%s requires an integer literal, got %q", clause, num.Value)
	}
	return n, nil
}
