package jsonsql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/render"
)

// maxExprDepth bounds expression recursion. The lexer and parser already
// bound nesting, this guard covers documents assembled programmatically.
const maxExprDepth = 200

type converter struct {
	opts  Options
	scope []tableRef
	depth int
}

func newConverter(opts Options) *converter {
	return &converter{opts: opts}
}

// convert turns a SQL expression into its JSONSQL value. Operators become
// single-key objects, identifiers become column reference strings and
// literals pass through as JSON scalars.
func (c *converter) convert(expr ast.Expr) (any, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxExprDepth {
		return nil, errTooDeep()
	}

	switch e := expr.(type) {
	case *ast.Identifier:
		return c.convertIdentifier(e)
	case *ast.NumericLiteral:
		return numericValue(e.Value)
	case *ast.StringLiteral:
		return normalizeDateLiteral(e.Value), nil
	case *ast.BooleanLiteral:
		return e.Value, nil
	case *ast.NullLiteral:
		return nil, nil
	case *ast.UnaryExpr:
		return c.convertUnary(e)
	case *ast.BinaryExpr:
		key, ok := operatorKey(e.Operator)
		if !ok {
			return nil, errOperator(e.Operator)
		}
		left, err := c.convert(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.convert(e.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{key: []any{left, right}}, nil
	case *ast.LikeExpr:
		return c.convertLike(e)
	case *ast.InExpr:
		return c.convertIn(e)
	case *ast.IsNullExpr:
		key := "is"
		if e.Not {
			key = "isnot"
		}
		target, err := c.convert(e.Expr)
		if err != nil {
			return nil, err
		}
		return map[string]any{key: []any{target, nil}}, nil
	case *ast.FuncCall:
		return c.convertCall(e)
	case *ast.SubqueryExpr:
		return c.subSelect(e.Select)
	case *ast.StarExpr:
		return nil, errConstruct("* is only valid in the SELECT list or inside COUNT")
	case *ast.CaseExpr:
		return nil, errConstruct("CASE expressions are not supported")
	case *ast.BetweenExpr:
		return nil, errConstruct("BETWEEN is not supported, rewrite as two comparisons")
	case *ast.ExistsExpr:
		return nil, errConstruct("EXISTS is not supported")
	default:
		return nil, errConstruct("unsupported expression %s", render.Snippet(expr))
	}
}

func (c *converter) convertIdentifier(id *ast.Identifier) (any, error) {
	if len(id.Parts) == 1 && strings.EqualFold(id.Parts[0], "CURRENT_TIMESTAMP") {
		return map[string]any{"function": "now", "args": []any{}}, nil
	}
	return c.columnRef(id.Parts)
}

func (c *converter) convertUnary(e *ast.UnaryExpr) (any, error) {
	switch e.Operator {
	case "-":
		if num, ok := e.Expr.(*ast.NumericLiteral); ok {
			return numericValue("-" + num.Value)
		}
		inner, err := c.convert(e.Expr)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sub": []any{int64(0), inner}}, nil
	case "NOT":
		inner, err := c.convert(e.Expr)
		if err != nil {
			return nil, err
		}
		return map[string]any{"not": inner}, nil
	default:
		return nil, errOperator(e.Operator)
	}
}

func (c *converter) convertLike(e *ast.LikeExpr) (any, error) {
	key := "like"
	if e.Insensitive {
		if c.opts.Dialect != DialectPostgres {
			return nil, errOperator("ILIKE")
		}
		key = "ilike"
	}
	target, err := c.convert(e.Expr)
	if err != nil {
		return nil, err
	}
	pattern, err := c.convert(e.Pattern)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{key: []any{target, pattern}}
	if e.Not {
		return map[string]any{"not": doc}, nil
	}
	return doc, nil
}

func (c *converter) convertIn(e *ast.InExpr) (any, error) {
	key := "in"
	if e.Not {
		key = "notin"
	}
	target, err := c.convert(e.Expr)
	if err != nil {
		return nil, err
	}
	if e.Subquery != nil {
		sub, err := c.subSelect(e.Subquery)
		if err != nil {
			return nil, err
		}
		return map[string]any{key: []any{target, sub}}, nil
	}
	values := make([]any, 0, len(e.List))
	for _, item := range e.List {
		v, err := c.convert(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return map[string]any{key: []any{target, values}}, nil
}

// subSelect builds a nested select document with its own table scope while
// counting against the depth limit of the enclosing conversion.
func (c *converter) subSelect(stmt *ast.SelectStatement) (any, error) {
	return buildSelectDoc(stmt, c.opts, false, c.depth)
}

func numericValue(text string) (any, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errConstruct("invalid numeric literal %q", text)
	}
	return f, nil
}

var dateOnlyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// normalizeDateLiteral pads bare date strings to the engine's canonical
// "YYYY-MM-DD HH:MM:SS" timestamp form. Anything that is not a plain date,
// including strings dateparse rejects, passes through untouched.
func normalizeDateLiteral(s string) string {
	if !dateOnlyRe.MatchString(s) {
		return s
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02") + " 00:00:00"
}
