package jsonsql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectAutoOrderBy(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "plain select gets id order",
			sql:  "SELECT id, name FROM terminal",
			want: `{"data":["id","name"],"from":"terminal","order_by":"id"}`,
		},
		{
			name: "star counts as selecting id",
			sql:  "SELECT * FROM terminal",
			want: `{"data":["*"],"from":"terminal","order_by":"id"}`,
		},
		{
			name: "explicit order wins",
			sql:  "SELECT id FROM terminal ORDER BY name",
			want: `{"data":["id"],"from":"terminal","order_by":"name"}`,
		},
		{
			name: "aggregate disables policy",
			sql:  "SELECT COUNT(*) FROM terminal",
			want: `{"data":[{"args":["*"],"function":"count"}],"from":"terminal"}`,
		},
		{
			name: "group by disables policy",
			sql:  "SELECT disabled FROM terminal GROUP BY disabled",
			want: `{"data":["disabled"],"from":"terminal","group_by":"disabled"}`,
		},
		{
			name: "no id in select list",
			sql:  "SELECT name FROM terminal",
			want: `{"data":["name"],"from":"terminal"}`,
		},
		{
			name: "join disables policy",
			sql:  "SELECT t.id FROM terminal t JOIN account a ON a.id = t.account_id",
			want: `{"data":["t.id"],"from":[{"as":"t","table":"terminal"},{"as":"a","join":"inner","on":{"eq":["a.id","t.account_id"]},"table":"account"}]}`,
		},
		{
			name: "in-list select item scans cleanly",
			sql:  "SELECT id IN (1, 2) FROM terminal",
			want: `{"data":[{"in":["id",[1,2]]}],"from":"terminal"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustDoc(t, tt.sql, opts))
		})
	}
}

func TestSelectJoinFlattening(t *testing.T) {
	sql := "SELECT c.name FROM terminal_playlog t JOIN tv_channel c ON c.id = t.channel_id WHERE t.start > '2020-02-17'"
	want := `{"data":["c.name"],"from":[{"as":"t","table":"terminal_playlog"},{"as":"c","join":"inner","on":{"eq":["c.id","t.channel_id"]},"table":"tv_channel"}],"where":{"gt":["t.start","2020-02-17 00:00:00"]}}`
	require.Equal(t, want, mustDoc(t, sql, DefaultOptions()))
}

func TestSelectJoinVariants(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "left join",
			sql:  "SELECT t.id FROM terminal t LEFT JOIN account a ON a.id = t.account_id",
			want: `{"data":["t.id"],"from":[{"as":"t","table":"terminal"},{"as":"a","join":"left","on":{"eq":["a.id","t.account_id"]},"table":"account"}]}`,
		},
		{
			name: "cross join has no on",
			sql:  "SELECT a.id FROM account a CROSS JOIN package p",
			want: `{"data":["a.id"],"from":[{"as":"a","table":"account"},{"as":"p","join":"cross","table":"package"}]}`,
		},
		{
			name: "three tables keep order",
			sql:  "SELECT a.id FROM account a JOIN terminal t ON t.account_id = a.id JOIN terminal_playlog p ON p.terminal_id = t.id",
			want: `{"data":["a.id"],"from":[{"as":"a","table":"account"},{"as":"t","join":"inner","on":{"eq":["t.account_id","a.id"]},"table":"terminal"},{"as":"p","join":"inner","on":{"eq":["p.terminal_id","t.id"]},"table":"terminal_playlog"}]}`,
		},
		{
			name: "qualifier matches table name without alias",
			sql:  "SELECT terminal.id FROM terminal JOIN account ON account.id = terminal.account_id",
			want: `{"data":["terminal.id"],"from":[{"table":"terminal"},{"join":"inner","on":{"eq":["account.id","terminal.account_id"]},"table":"account"}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustDoc(t, tt.sql, DefaultOptions()))
		})
	}
}

func TestSelectJoinErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		kind ErrorKind
	}{
		{"join without on", "SELECT a.id FROM account a JOIN terminal t", ErrUnsupportedConstruct},
		{"duplicate alias", "SELECT t.id FROM terminal t JOIN account t ON t.id = t.id", ErrAmbiguousColumn},
		{"unknown alias", "SELECT x.id FROM terminal t JOIN account a ON a.id = t.account_id", ErrAmbiguousColumn},
		{"unqualified without schema", "SELECT name FROM terminal t JOIN account a ON a.id = t.account_id", ErrAmbiguousColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, transpileKind(t, tt.sql, DefaultOptions()))
		})
	}
}

type staticSchema struct {
	tables  map[string]string
	columns map[string][]string
}

func (s *staticSchema) ResolveTable(name string) (string, bool) {
	vendor, ok := s.tables[name]
	return vendor, ok
}

func (s *staticSchema) TableColumns(table string) ([]string, bool) {
	cols, ok := s.columns[table]
	return cols, ok
}

func TestSelectSchemaResolution(t *testing.T) {
	schema := &staticSchema{
		tables: map[string]string{
			"channels": "tv_channel",
		},
		columns: map[string][]string{
			"terminal": {"id", "account_id", "name"},
			"account":  {"id", "balance"},
		},
	}
	opts := Options{Dialect: DialectPostgres, Schema: schema}

	// Table name mapping applies to FROM.
	got := mustDoc(t, "SELECT name FROM channels ORDER BY id", opts)
	require.Equal(t, `{"data":["name"],"from":"tv_channel","order_by":"id"}`, got)

	// Unqualified columns resolve through the schema in join scope.
	got = mustDoc(t, "SELECT name FROM terminal t JOIN account a ON a.id = t.account_id ORDER BY name", opts)
	require.Equal(t, `{"data":["t.name"],"from":[{"as":"t","table":"terminal"},{"as":"a","join":"inner","on":{"eq":["a.id","t.account_id"]},"table":"account"}],"order_by":"t.name"}`, got)

	// Columns present in both tables stay ambiguous.
	kind := transpileKind(t, "SELECT id FROM terminal t JOIN account a ON a.id = t.account_id", opts)
	require.Equal(t, ErrAmbiguousColumn, kind)
}

func TestSelectClauses(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "distinct",
			sql:  "SELECT DISTINCT name FROM tv_channel",
			want: `{"data":["name"],"distinct":true,"from":"tv_channel"}`,
		},
		{
			name: "limit offset",
			sql:  "SELECT id FROM terminal LIMIT 10 OFFSET 20",
			want: `{"data":["id"],"from":"terminal","limit":10,"offset":20,"order_by":"id"}`,
		},
		{
			name: "group by with having",
			sql:  "SELECT account_id, COUNT(*) FROM terminal GROUP BY account_id HAVING COUNT(*) > 1",
			want: `{"data":["account_id",{"args":["*"],"function":"count"}],"from":"terminal","group_by":"account_id","having":{"gt":[{"args":["*"],"function":"count"},1]}}`,
		},
		{
			name: "multiple group terms",
			sql:  "SELECT account_id, disabled FROM terminal GROUP BY account_id, disabled",
			want: `{"data":["account_id","disabled"],"from":"terminal","group_by":["account_id","disabled"]}`,
		},
		{
			name: "order by desc",
			sql:  "SELECT id FROM payment ORDER BY created_at DESC",
			want: `{"data":["id"],"from":"payment","order_by":{"desc":"created_at"}}`,
		},
		{
			name: "multiple order terms",
			sql:  "SELECT id FROM payment ORDER BY created_at DESC, id",
			want: `{"data":["id"],"from":"payment","order_by":[{"desc":"created_at"},"id"]}`,
		},
		{
			name: "select alias",
			sql:  "SELECT name AS channel_name FROM tv_channel ORDER BY name",
			want: `{"data":[{"as":["name","channel_name"]}],"from":"tv_channel","order_by":"name"}`,
		},
		{
			name: "qualified star",
			sql:  "SELECT t.* FROM terminal t JOIN account a ON a.id = t.account_id",
			want: `{"data":["t.*"],"from":[{"as":"t","table":"terminal"},{"as":"a","join":"inner","on":{"eq":["a.id","t.account_id"]},"table":"account"}]}`,
		},
		{
			name: "subquery in from",
			sql:  "SELECT name FROM (SELECT name FROM tv_channel) c",
			want: `{"data":["name"],"from":{"data":["name"],"from":"tv_channel"}}`,
		},
		{
			name: "in subquery",
			sql:  "SELECT name FROM tv_channel WHERE id IN (SELECT channel_id FROM terminal_playlog)",
			want: `{"data":["name"],"from":"tv_channel","where":{"in":["id",{"data":["channel_id"],"from":"terminal_playlog"}]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustDoc(t, tt.sql, opts))
		})
	}
}

func TestSelectClauseErrors(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name   string
		sql    string
		kind   ErrorKind
		clause string
	}{
		{"having without group", "SELECT id FROM t HAVING COUNT(*) > 1", ErrUnsupportedConstruct, "HAVING"},
		{"limit expression", "SELECT id FROM t LIMIT 1 + 1", ErrUnsupportedConstruct, "LIMIT"},
		{"case in where", "SELECT id FROM t WHERE CASE WHEN a THEN 1 ELSE 0 END = 1", ErrUnsupportedConstruct, "WHERE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TranspileSQL(tt.sql, opts)
			var te *TranspileError
			require.ErrorAs(t, err, &te)
			require.Equal(t, tt.kind, te.Kind)
			require.Equal(t, tt.clause, te.Clause)
			require.Equal(t, StatementSelect, te.Statement)
		})
	}
}
