package jsonsql

import (
	"fmt"
	"strings"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
)

type argShape int

const (
	// shapeList renders args as a JSON list of converted arguments.
	shapeList argShape = iota
	// shapeSingle renders the sole argument bare, without a wrapping list.
	shapeSingle
	// shapeCount implements the COUNT special cases.
	shapeCount
)

type functionRule struct {
	key       string // engine function name
	shape     argShape
	aggregate bool
	minArgs   int
	maxArgs   int // -1 for unbounded
}

// functionTable is the complete set of SQL functions the transpiler accepts.
// Keys are the upper-cased SQL spellings.
var functionTable = map[string]functionRule{
	"COUNT": {key: "count", shape: shapeCount, aggregate: true, minArgs: 0, maxArgs: 1},
	"SUM":   {key: "sum", shape: shapeSingle, aggregate: true, minArgs: 1, maxArgs: 1},
	"AVG":   {key: "avg", shape: shapeSingle, aggregate: true, minArgs: 1, maxArgs: 1},
	"MIN":   {key: "min", shape: shapeSingle, aggregate: true, minArgs: 1, maxArgs: 1},
	"MAX":   {key: "max", shape: shapeSingle, aggregate: true, minArgs: 1, maxArgs: 1},

	"UPPER":          {key: "upper", shape: shapeList, minArgs: 1, maxArgs: 1},
	"LOWER":          {key: "lower", shape: shapeList, minArgs: 1, maxArgs: 1},
	"LENGTH":         {key: "length", shape: shapeList, minArgs: 1, maxArgs: 1},
	"TRIM":           {key: "trim", shape: shapeList, minArgs: 1, maxArgs: 1},
	"LTRIM":          {key: "ltrim", shape: shapeList, minArgs: 1, maxArgs: 1},
	"RTRIM":          {key: "rtrim", shape: shapeList, minArgs: 1, maxArgs: 1},
	"SUBSTR":         {key: "substr", shape: shapeList, minArgs: 2, maxArgs: 3},
	"SUBSTRING":      {key: "substr", shape: shapeList, minArgs: 2, maxArgs: 3},
	"CONCAT":         {key: "concat", shape: shapeList, minArgs: 1, maxArgs: -1},
	"REPLACE":        {key: "replace", shape: shapeList, minArgs: 3, maxArgs: 3},
	"REGEXP_REPLACE": {key: "regexp_replace", shape: shapeList, minArgs: 3, maxArgs: 3},
	"COALESCE":       {key: "coalesce", shape: shapeList, minArgs: 1, maxArgs: -1},
	"ABS":            {key: "abs", shape: shapeList, minArgs: 1, maxArgs: 1},
	"ROUND":          {key: "round", shape: shapeList, minArgs: 1, maxArgs: 2},
	"NOW":            {key: "now", shape: shapeList, minArgs: 0, maxArgs: 0},
	"DATE":           {key: "date", shape: shapeList, minArgs: 1, maxArgs: 1},

	// CURRENT_TIMESTAMP arrives as a bare identifier, see convertIdentifier.
	"CURRENT_TIMESTAMP": {key: "now", shape: shapeList, minArgs: 0, maxArgs: 0},
}

func isAggregateCall(fn *ast.FuncCall) bool {
	rule, ok := functionTable[funcName(fn)]
	return ok && rule.aggregate
}

func funcName(fn *ast.FuncCall) string {
	if len(fn.Name.Parts) == 0 {
		return ""
	}
	return strings.ToUpper(fn.Name.Parts[len(fn.Name.Parts)-1])
}

func (c *converter) convertCall(fn *ast.FuncCall) (any, error) {
	name := funcName(fn)
	if fn.Over != nil {
		return nil, errConstruct("window function %s() is not supported", name)
	}
	rule, ok := functionTable[name]
	if !ok {
		return nil, errFunction(name)
	}
	if len(fn.Args) < rule.minArgs {
		return nil, errArgument(name, fmt.Sprintf("expects at least %d argument(s), got %d", rule.minArgs, len(fn.Args)))
	}
	if rule.maxArgs >= 0 && len(fn.Args) > rule.maxArgs {
		return nil, errArgument(name, fmt.Sprintf("expects at most %d argument(s), got %d", rule.maxArgs, len(fn.Args)))
	}

	var args any
	switch rule.shape {
	case shapeCount:
		shaped, err := c.countArgs(fn)
		if err != nil {
			return nil, err
		}
		args = shaped
	case shapeSingle:
		inner, err := c.convert(fn.Args[0])
		if err != nil {
			return nil, err
		}
		if fn.Distinct {
			inner = map[string]any{"function": "distinct", "args": inner}
		}
		args = inner
	default:
		if fn.Distinct {
			return nil, errArgument(name, "DISTINCT is not supported")
		}
		list := make([]any, 0, len(fn.Args))
		for _, arg := range fn.Args {
			v, err := c.convert(arg)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		args = list
	}
	return map[string]any{"function": rule.key, "args": args}, nil
}

// countArgs implements the three COUNT argument shapes: COUNT(*) keeps the
// star inside a list, COUNT(col) passes the column bare, and
// COUNT(DISTINCT col) nests a distinct call as the bare argument.
func (c *converter) countArgs(fn *ast.FuncCall) (any, error) {
	if len(fn.Args) == 0 {
		if fn.Distinct {
			return nil, errArgument("COUNT", "DISTINCT requires an argument")
		}
		return []any{"*"}, nil
	}
	if star, ok := fn.Args[0].(*ast.StarExpr); ok {
		if fn.Distinct {
			return nil, errArgument("COUNT", "DISTINCT * is not supported")
		}
		if star.Table != nil {
			return nil, errArgument("COUNT", "qualified * is not supported")
		}
		return []any{"*"}, nil
	}
	inner, err := c.convert(fn.Args[0])
	if err != nil {
		return nil, err
	}
	if fn.Distinct {
		return map[string]any{"function": "distinct", "args": inner}, nil
	}
	return inner, nil
}
