package jsonsql

import (
	"strings"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
)

// tableRef is one table visible to column resolution. Qualified columns
// match against both the alias and the table name, and render with the
// qualifier exactly as the query wrote it.
type tableRef struct {
	alias   string // lowercased alias, or table name when no alias
	table   string // lowercased table name, empty for subqueries
	display string // qualifier emitted for qualified columns
	vendor  string // vendor-side table name, empty for subqueries
}

func (r tableRef) matches(qualifier string) bool {
	return qualifier == r.alias || (r.table != "" && qualifier == r.table)
}

// resolveFrom converts the FROM clause and installs the table scope used by
// every other clause of the statement. A plain table collapses to its name,
// joins flatten into an ordered list of entries.
func (c *converter) resolveFrom(from ast.TableExpr) (any, error) {
	switch t := from.(type) {
	case *ast.TableName:
		ref := c.tableNameRef(t)
		c.scope = append(c.scope, ref)
		return ref.vendor, nil
	case *ast.SubqueryTable:
		if t.Alias == "" {
			return nil, errConstruct("subquery in FROM requires an alias")
		}
		doc, err := c.subSelect(t.Select)
		if err != nil {
			return nil, err
		}
		c.scope = append(c.scope, tableRef{alias: strings.ToLower(t.Alias), display: t.Alias})
		return doc, nil
	case *ast.JoinExpr:
		return c.resolveJoin(t)
	default:
		return nil, errConstruct("unsupported FROM clause")
	}
}

// resolveJoin flattens a left-nested join chain into an ordered entry list.
// The first entry names the base table, each following entry carries the
// join type and its ON condition converted against the scope built so far.
func (c *converter) resolveJoin(join *ast.JoinExpr) (any, error) {
	var chain []*ast.JoinExpr
	var base ast.TableExpr = join
	for {
		j, ok := base.(*ast.JoinExpr)
		if !ok {
			break
		}
		chain = append([]*ast.JoinExpr{j}, chain...)
		base = j.Left
	}

	entries := make([]any, 0, len(chain)+1)
	first, err := c.joinEntry(base, nil)
	if err != nil {
		return nil, err
	}
	entries = append(entries, first)

	for _, j := range chain {
		entry, err := c.joinEntry(j.Right, j)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *converter) joinEntry(side ast.TableExpr, join *ast.JoinExpr) (map[string]any, error) {
	entry := map[string]any{}
	var ref tableRef
	switch t := side.(type) {
	case *ast.TableName:
		ref = c.tableNameRef(t)
		entry["table"] = ref.vendor
		if t.Alias != "" {
			entry["as"] = t.Alias
		}
	case *ast.SubqueryTable:
		if t.Alias == "" {
			return nil, errConstruct("subquery in FROM requires an alias")
		}
		doc, err := c.subSelect(t.Select)
		if err != nil {
			return nil, err
		}
		ref = tableRef{alias: strings.ToLower(t.Alias), display: t.Alias}
		entry["table"] = doc
		entry["as"] = t.Alias
	default:
		return nil, errConstruct("parenthesized JOIN groups are not supported")
	}

	for _, seen := range c.scope {
		if seen.alias == ref.alias {
			return nil, errAmbiguous("duplicate table alias %q", ref.display)
		}
	}
	c.scope = append(c.scope, ref)

	if join == nil {
		return entry, nil
	}
	entry["join"] = strings.ToLower(string(join.Type))
	if join.Type == ast.JoinCross {
		if join.Condition.On != nil {
			return nil, errConstruct("CROSS JOIN cannot have an ON condition")
		}
		return entry, nil
	}
	if join.Condition.On == nil {
		return nil, errConstruct("%s JOIN requires an ON condition", join.Type)
	}
	on, err := c.convert(join.Condition.On)
	if err != nil {
		return nil, err
	}
	entry["on"] = on
	return entry, nil
}

func (c *converter) tableNameRef(t *ast.TableName) tableRef {
	name := strings.Join(t.Name.Parts, ".")
	vendor := name
	if c.opts.Schema != nil {
		if mapped, ok := c.opts.Schema.ResolveTable(strings.ToLower(name)); ok {
			vendor = mapped
		}
	}
	ref := tableRef{
		table:   strings.ToLower(name),
		vendor:  vendor,
		alias:   strings.ToLower(name),
		display: name,
	}
	if t.Alias != "" {
		ref.alias = strings.ToLower(t.Alias)
		ref.display = t.Alias
	}
	return ref
}

// columnRef renders a column reference against the current scope. In a
// single-table scope qualifiers are dropped, in a multi-table scope
// unqualified columns must resolve to exactly one table.
func (c *converter) columnRef(parts []string) (string, error) {
	switch len(parts) {
	case 0:
		return "", errConstruct("empty column reference")
	case 1:
		return c.bareColumn(parts[0])
	case 2:
		qualifier := strings.ToLower(parts[0])
		column := parts[1]
		if len(c.scope) <= 1 {
			if len(c.scope) == 1 && !c.scope[0].matches(qualifier) {
				return "", errAmbiguous("unknown table alias %q", parts[0])
			}
			return column, nil
		}
		for _, ref := range c.scope {
			if ref.matches(qualifier) {
				return ref.display + "." + column, nil
			}
		}
		return "", errAmbiguous("unknown table alias %q", parts[0])
	default:
		return "", errConstruct("column reference %q has too many parts", strings.Join(parts, "."))
	}
}

func (c *converter) bareColumn(column string) (string, error) {
	if len(c.scope) <= 1 {
		return column, nil
	}
	if c.opts.Schema == nil {
		return "", errAmbiguous("column %q must be qualified in a multi-table query", column)
	}
	var owner *tableRef
	for i := range c.scope {
		ref := &c.scope[i]
		if ref.vendor == "" {
			continue
		}
		cols, ok := c.opts.Schema.TableColumns(ref.vendor)
		if !ok {
			continue
		}
		for _, name := range cols {
			if strings.EqualFold(name, column) {
				if owner != nil {
					return "", errAmbiguous("column %q exists in tables %q and %q", column, owner.display, ref.display)
				}
				owner = ref
				break
			}
		}
	}
	if owner == nil {
		return "", errAmbiguous("column %q must be qualified in a multi-table query", column)
	}
	return owner.display + "." + column, nil
}
