package jsonsql

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
)

func mustDoc(t *testing.T, sql string, opts Options) string {
	t.Helper()
	info, err := TranspileSQL(sql, opts)
	require.NoError(t, err, "sql: %s", sql)
	b, err := json.Marshal(info.Doc)
	require.NoError(t, err)
	return string(b)
}

func transpileKind(t *testing.T, sql string, opts Options) ErrorKind {
	t.Helper()
	_, err := TranspileSQL(sql, opts)
	require.Error(t, err, "sql: %s", sql)
	var te *TranspileError
	require.ErrorAs(t, err, &te, "sql: %s", sql)
	return te.Kind
}

func TestConvertOperators(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "comparison",
			sql:  "SELECT name FROM terminal WHERE disabled = false",
			want: `{"data":["name"],"from":"terminal","where":{"eq":["disabled",false]}}`,
		},
		{
			name: "not equal",
			sql:  "SELECT name FROM terminal WHERE status <> 'active'",
			want: `{"data":["name"],"from":"terminal","where":{"ne":["status","active"]}}`,
		},
		{
			name: "logical and arithmetic",
			sql:  "SELECT name FROM package WHERE price + 10 > 100 AND paid = true",
			want: `{"data":["name"],"from":"package","where":{"and":[{"gt":[{"add":["price",10]},100]},{"eq":["paid",true]}]}}`,
		},
		{
			name: "modulo",
			sql:  "SELECT id FROM terminal WHERE id % 2 = 0 ORDER BY name",
			want: `{"data":["id"],"from":"terminal","order_by":"name","where":{"eq":[{"mod":["id",2]},0]}}`,
		},
		{
			name: "is null",
			sql:  "SELECT name FROM customer WHERE deleted_at IS NULL",
			want: `{"data":["name"],"from":"customer","where":{"is":["deleted_at",null]}}`,
		},
		{
			name: "is not null",
			sql:  "SELECT name FROM customer WHERE deleted_at IS NOT NULL",
			want: `{"data":["name"],"from":"customer","where":{"isnot":["deleted_at",null]}}`,
		},
		{
			name: "like",
			sql:  "SELECT name FROM customer WHERE name LIKE 'A%'",
			want: `{"data":["name"],"from":"customer","where":{"like":["name","A%"]}}`,
		},
		{
			name: "not like wraps",
			sql:  "SELECT name FROM customer WHERE name NOT LIKE 'A%'",
			want: `{"data":["name"],"from":"customer","where":{"not":{"like":["name","A%"]}}}`,
		},
		{
			name: "in list",
			sql:  "SELECT name FROM tv_channel WHERE id IN (1, 2, 3)",
			want: `{"data":["name"],"from":"tv_channel","where":{"in":["id",[1,2,3]]}}`,
		},
		{
			name: "not in list",
			sql:  "SELECT name FROM tv_channel WHERE id NOT IN (1, 2)",
			want: `{"data":["name"],"from":"tv_channel","where":{"notin":["id",[1,2]]}}`,
		},
		{
			name: "unary not",
			sql:  "SELECT name FROM terminal WHERE NOT disabled",
			want: `{"data":["name"],"from":"terminal","where":{"not":"disabled"}}`,
		},
		{
			name: "negative literal folds",
			sql:  "SELECT name FROM account WHERE balance < -10",
			want: `{"data":["name"],"from":"account","where":{"lt":["balance",-10]}}`,
		},
		{
			name: "float literal",
			sql:  "SELECT name FROM package WHERE price >= 9.99",
			want: `{"data":["name"],"from":"package","where":{"gte":["price",9.99]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustDoc(t, tt.sql, Options{Dialect: DialectGeneric}))
		})
	}
}

func TestConvertILIKEDialectGate(t *testing.T) {
	sql := "SELECT name FROM customer WHERE name ILIKE 'a%'"

	want := `{"data":["name"],"from":"customer","where":{"ilike":["name","a%"]}}`
	require.Equal(t, want, mustDoc(t, sql, Options{Dialect: DialectPostgres}))

	require.Equal(t, ErrUnsupportedOperator, transpileKind(t, sql, Options{Dialect: DialectGeneric}))
	require.Equal(t, ErrUnsupportedOperator, transpileKind(t, sql, Options{Dialect: DialectMySQL}))
}

func TestConvertFunctions(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "count star",
			sql:  "SELECT COUNT(*) FROM terminal",
			want: `{"data":[{"args":["*"],"function":"count"}],"from":"terminal"}`,
		},
		{
			name: "count column is bare",
			sql:  "SELECT COUNT(channel_id) FROM terminal_playlog",
			want: `{"data":[{"args":"channel_id","function":"count"}],"from":"terminal_playlog"}`,
		},
		{
			name: "count distinct nests",
			sql:  "SELECT COUNT(DISTINCT channel_id) FROM terminal_playlog",
			want: `{"data":[{"args":{"args":"channel_id","function":"distinct"},"function":"count"}],"from":"terminal_playlog"}`,
		},
		{
			name: "sum bare argument",
			sql:  "SELECT SUM(amount) FROM payment",
			want: `{"data":[{"args":"amount","function":"sum"}],"from":"payment"}`,
		},
		{
			name: "sum distinct nests",
			sql:  "SELECT SUM(DISTINCT amount) FROM payment",
			want: `{"data":[{"args":{"args":"amount","function":"distinct"},"function":"sum"}],"from":"payment"}`,
		},
		{
			name: "string function uses list",
			sql:  "SELECT UPPER(name) FROM customer ORDER BY id",
			want: `{"data":[{"args":["name"],"function":"upper"}],"from":"customer","order_by":"id"}`,
		},
		{
			name: "regexp replace",
			sql:  "SELECT REGEXP_REPLACE(phone, '[^0-9]', '') FROM customer ORDER BY id",
			want: `{"data":[{"args":["phone","[^0-9]",""],"function":"regexp_replace"}],"from":"customer","order_by":"id"}`,
		},
		{
			name: "nested call",
			sql:  "SELECT MAX(LENGTH(name)) FROM customer",
			want: `{"data":[{"args":{"args":["name"],"function":"length"},"function":"max"}],"from":"customer"}`,
		},
		{
			name: "now",
			sql:  "SELECT name FROM session WHERE expires_at > NOW()",
			want: `{"data":["name"],"from":"session","where":{"gt":["expires_at",{"args":[],"function":"now"}]}}`,
		},
		{
			name: "current timestamp keyword",
			sql:  "SELECT name FROM session WHERE expires_at > CURRENT_TIMESTAMP",
			want: `{"data":["name"],"from":"session","where":{"gt":["expires_at",{"args":[],"function":"now"}]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustDoc(t, tt.sql, Options{Dialect: DialectGeneric}))
		})
	}
}

func TestConvertFunctionErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		kind ErrorKind
	}{
		{"unknown function", "SELECT FOO(name) FROM t", ErrUnsupportedFunction},
		{"count distinct star", "SELECT COUNT(DISTINCT *) FROM t", ErrInvalidArgument},
		{"count two args", "SELECT COUNT(a, b) FROM t", ErrInvalidArgument},
		{"sum no args", "SELECT SUM() FROM t", ErrInvalidArgument},
		{"upper distinct", "SELECT UPPER(DISTINCT name) FROM t", ErrInvalidArgument},
		{"replace arity", "SELECT REPLACE(name, 'a') FROM t", ErrInvalidArgument},
		{"window function", "SELECT SUM(amount) OVER (PARTITION BY customer_id) FROM payment", ErrUnsupportedConstruct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, transpileKind(t, tt.sql, Options{Dialect: DialectGeneric}))
		})
	}
}

func TestConvertUnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"case", "SELECT CASE WHEN paid THEN 1 ELSE 0 END FROM package"},
		{"between", "SELECT name FROM payment WHERE amount BETWEEN 1 AND 10"},
		{"exists", "SELECT name FROM customer WHERE EXISTS (SELECT id FROM payment)"},
		{"bare star in where", "SELECT name FROM t WHERE * = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, ErrUnsupportedConstruct, transpileKind(t, tt.sql, Options{Dialect: DialectGeneric}))
		})
	}
}

func TestConvertDateLiterals(t *testing.T) {
	got := mustDoc(t, "SELECT id FROM terminal_playlog WHERE start > '2020-02-17' ORDER BY start", Options{Dialect: DialectGeneric})
	require.Equal(t, `{"data":["id"],"from":"terminal_playlog","order_by":"start","where":{"gt":["start","2020-02-17 00:00:00"]}}`, got)

	// Full timestamps and non-date strings pass through as written.
	got = mustDoc(t, "SELECT id FROM terminal_playlog WHERE start > '2020-02-17 10:30:00' ORDER BY start", Options{Dialect: DialectGeneric})
	require.Equal(t, `{"data":["id"],"from":"terminal_playlog","order_by":"start","where":{"gt":["start","2020-02-17 10:30:00"]}}`, got)

	got = mustDoc(t, "SELECT id FROM customer WHERE name = '2020-99-99' ORDER BY id", Options{Dialect: DialectGeneric})
	require.Equal(t, `{"data":["id"],"from":"customer","order_by":"id","where":{"eq":["name","2020-99-99"]}}`, got)
}

func TestConvertDepthLimit(t *testing.T) {
	var expr ast.Expr = &ast.NumericLiteral{Value: "1"}
	for i := 0; i < maxExprDepth+10; i++ {
		expr = &ast.BinaryExpr{Left: expr, Operator: "+", Right: &ast.NumericLiteral{Value: "1"}}
	}
	stmt := &ast.SelectStatement{
		Columns: []ast.SelectItem{{Expr: &ast.Identifier{Parts: []string{"id"}}}},
		From:    &ast.TableName{Name: &ast.Identifier{Parts: []string{"t"}}},
		Where:   expr,
	}

	_, err := Transpile(stmt, Options{Dialect: DialectGeneric})
	var te *TranspileError
	require.ErrorAs(t, err, &te)
	require.Equal(t, ErrExpressionTooDeep, te.Kind)
	require.Equal(t, StatementSelect, te.Statement)
	require.Equal(t, "WHERE", te.Clause)
}
