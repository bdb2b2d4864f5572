package render

import (
	"fmt"
	"strings"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
)

// Render produces a canonical SQL string for the supplied AST node.
func Render(node ast.Node) (string, error) {
	r := &renderer{}
	if node == nil {
		return "", fmt.Errorf("render: nil node")
	}
	node.Accept(r)
	if len(r.errs) > 0 {
		return "", r.errs[0]
	}
	return strings.TrimSpace(r.builder.String()), nil
}

// Snippet renders a node for use inside error messages, falling back to the
// node's Go type when rendering fails.
func Snippet(node ast.Node) string {
	s, err := Render(node)
	if err != nil {
		return fmt.Sprintf("%T", node)
	}
	return s
}

type renderer struct {
	builder strings.Builder
	errs    []error
}

func (r *renderer) Visit(node ast.Node) ast.Visitor {
	if node == nil {
		return r
	}
	switch n := node.(type) {
	case *ast.SelectStatement:
		r.renderSelect(n)
	case *ast.InsertStatement:
		r.renderInsert(n)
	case *ast.UpdateStatement:
		r.renderUpdate(n)
	case *ast.DeleteStatement:
		r.renderDelete(n)
	case ast.Expr:
		r.renderExpr(n)
	default:
		r.errs = append(r.errs, fmt.Errorf("render: unsupported node %T", n))
	}
	return nil // prevent default traversal; we recurse manually
}

func (r *renderer) write(parts ...string) {
	for _, p := range parts {
		r.builder.WriteString(p)
	}
}

func (r *renderer) renderSelect(stmt *ast.SelectStatement) {
	r.write("SELECT ")
	if stmt.Distinct {
		r.write("DISTINCT ")
	}
	for i, item := range stmt.Columns {
		if i > 0 {
			r.write(", ")
		}
		r.renderExpr(item.Expr)
		if item.Alias != "" {
			r.write(" AS ", item.Alias)
		}
	}
	if stmt.From != nil {
		r.write(" FROM ")
		r.renderTable(stmt.From)
	}
	if stmt.Where != nil {
		r.write(" WHERE ")
		r.renderExpr(stmt.Where)
	}
	if len(stmt.GroupBy) > 0 {
		r.write(" GROUP BY ")
		for i, expr := range stmt.GroupBy {
			if i > 0 {
				r.write(", ")
			}
			r.renderExpr(expr)
		}
	}
	if stmt.Having != nil {
		r.write(" HAVING ")
		r.renderExpr(stmt.Having)
	}
	if len(stmt.OrderBy) > 0 {
		r.write(" ORDER BY ")
		for i, item := range stmt.OrderBy {
			if i > 0 {
				r.write(", ")
			}
			r.renderExpr(item.Expr)
			if item.Direction == ast.Descending {
				r.write(" DESC")
			}
		}
	}
	if stmt.Limit != nil {
		if stmt.Limit.Count != nil {
			r.write(" LIMIT ")
			r.renderExpr(stmt.Limit.Count)
		}
		if stmt.Limit.Offset != nil {
			r.write(" OFFSET ")
			r.renderExpr(stmt.Limit.Offset)
		}
	}
}

func (r *renderer) renderInsert(stmt *ast.InsertStatement) {
	r.write("INSERT INTO ")
	if stmt.Table != nil {
		r.renderTable(stmt.Table)
	}
	if len(stmt.Columns) > 0 {
		r.write(" (")
		for i, col := range stmt.Columns {
			if i > 0 {
				r.write(", ")
			}
			r.renderExpr(col)
		}
		r.write(")")
	}
	if len(stmt.Rows) > 0 {
		r.write(" VALUES ")
		for i, row := range stmt.Rows {
			if i > 0 {
				r.write(", ")
			}
			r.write("(")
			for j, expr := range row {
				if j > 0 {
					r.write(", ")
				}
				r.renderExpr(expr)
			}
			r.write(")")
		}
	}
	if stmt.Select != nil {
		r.write(" ")
		r.renderSelect(stmt.Select)
	}
	r.renderReturning(stmt.Returning)
}

func (r *renderer) renderUpdate(stmt *ast.UpdateStatement) {
	r.write("UPDATE ")
	if stmt.Table != nil {
		r.renderTable(stmt.Table)
	}
	r.write(" SET ")
	for i, assignment := range stmt.Assignments {
		if i > 0 {
			r.write(", ")
		}
		r.renderExpr(assignment.Column)
		r.write(" = ")
		r.renderExpr(assignment.Value)
	}
	if stmt.Where != nil {
		r.write(" WHERE ")
		r.renderExpr(stmt.Where)
	}
	r.renderReturning(stmt.Returning)
}

func (r *renderer) renderDelete(stmt *ast.DeleteStatement) {
	r.write("DELETE FROM ")
	if stmt.Table != nil {
		r.renderTable(stmt.Table)
	}
	if stmt.Where != nil {
		r.write(" WHERE ")
		r.renderExpr(stmt.Where)
	}
	r.renderReturning(stmt.Returning)
}

func (r *renderer) renderReturning(cols []*ast.Identifier) {
	if len(cols) == 0 {
		return
	}
	r.write(" RETURNING ")
	for i, col := range cols {
		if i > 0 {
			r.write(", ")
		}
		r.renderExpr(col)
	}
}

func (r *renderer) renderTable(table ast.TableExpr) {
	switch t := table.(type) {
	case *ast.TableName:
		r.renderExpr(t.Name)
		if t.Alias != "" {
			r.write(" AS ", t.Alias)
		}
	case *ast.SubqueryTable:
		r.write("(")
		r.renderSelect(t.Select)
		r.write(")")
		if t.Alias != "" {
			r.write(" AS ", t.Alias)
		}
	case *ast.JoinExpr:
		r.renderTable(t.Left)
		switch t.Type {
		case ast.JoinCross:
			r.write(" CROSS JOIN ")
		case ast.JoinLeft:
			r.write(" LEFT JOIN ")
		case ast.JoinRight:
			r.write(" RIGHT JOIN ")
		case ast.JoinFull:
			r.write(" FULL JOIN ")
		default:
			r.write(" JOIN ")
		}
		r.renderTable(t.Right)
		if t.Condition.On != nil {
			r.write(" ON ")
			r.renderExpr(t.Condition.On)
		}
	default:
		r.errs = append(r.errs, fmt.Errorf("render: unsupported table expression %T", t))
	}
}

func (r *renderer) renderExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Identifier:
		r.write(strings.Join(e.Parts, "."))
	case *ast.StarExpr:
		if e.Table != nil {
			r.renderExpr(e.Table)
			r.write(".")
		}
		r.write("*")
	case *ast.NumericLiteral:
		r.write(e.Value)
	case *ast.StringLiteral:
		r.write("'", strings.ReplaceAll(e.Value, "'", "''"), "'")
	case *ast.BooleanLiteral:
		if e.Value {
			r.write("TRUE")
		} else {
			r.write("FALSE")
		}
	case *ast.NullLiteral:
		r.write("NULL")
	case *ast.BinaryExpr:
		r.write("(")
		r.renderExpr(e.Left)
		r.write(" ", e.Operator, " ")
		r.renderExpr(e.Right)
		r.write(")")
	case *ast.UnaryExpr:
		if e.Operator == "-" {
			r.write("-")
		} else {
			r.write(e.Operator, " ")
		}
		r.renderExpr(e.Expr)
	case *ast.FuncCall:
		r.write(strings.ToUpper(strings.Join(e.Name.Parts, ".")), "(")
		if e.Distinct {
			r.write("DISTINCT ")
		}
		for i, arg := range e.Args {
			if i > 0 {
				r.write(", ")
			}
			r.renderExpr(arg)
		}
		r.write(")")
	case *ast.CaseExpr:
		r.write("CASE")
		if e.Operand != nil {
			r.write(" ")
			r.renderExpr(e.Operand)
		}
		for _, when := range e.When {
			r.write(" WHEN ")
			r.renderExpr(when.Condition)
			r.write(" THEN ")
			r.renderExpr(when.Result)
		}
		if e.Else != nil {
			r.write(" ELSE ")
			r.renderExpr(e.Else)
		}
		r.write(" END")
	case *ast.BetweenExpr:
		r.renderExpr(e.Expr)
		if e.Not {
			r.write(" NOT")
		}
		r.write(" BETWEEN ")
		r.renderExpr(e.Lower)
		r.write(" AND ")
		r.renderExpr(e.Upper)
	case *ast.InExpr:
		r.renderExpr(e.Expr)
		if e.Not {
			r.write(" NOT")
		}
		r.write(" IN (")
		if e.Subquery != nil {
			r.renderSelect(e.Subquery)
		} else {
			for i, item := range e.List {
				if i > 0 {
					r.write(", ")
				}
				r.renderExpr(item)
			}
		}
		r.write(")")
	case *ast.LikeExpr:
		r.renderExpr(e.Expr)
		if e.Not {
			r.write(" NOT")
		}
		if e.Insensitive {
			r.write(" ILIKE ")
		} else {
			r.write(" LIKE ")
		}
		r.renderExpr(e.Pattern)
	case *ast.IsNullExpr:
		r.renderExpr(e.Expr)
		if e.Not {
			r.write(" IS NOT NULL")
		} else {
			r.write(" IS NULL")
		}
	case *ast.ExistsExpr:
		if e.Not {
			r.write("NOT ")
		}
		r.write("EXISTS (")
		r.renderSelect(e.Subquery)
		r.write(")")
	case *ast.SubqueryExpr:
		r.write("(")
		r.renderSelect(e.Select)
		r.write(")")
	case nil:
		r.errs = append(r.errs, fmt.Errorf("render: nil expression"))
	default:
		r.errs = append(r.errs, fmt.Errorf("render: unsupported expression %T", e))
	}
}
