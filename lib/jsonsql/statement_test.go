package jsonsql

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/parser"
)

func TestTranspileInsert(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "values with returning",
			sql:  "INSERT INTO package (name, paid) VALUES ('Premium', true) RETURNING id",
			want: `{"columns":["name","paid"],"into":"package","returning":["id"],"values":[["Premium",true]]}`,
		},
		{
			name: "multiple rows",
			sql:  "INSERT INTO tv_channel (name, number) VALUES ('News', 1), ('Sport', 2)",
			want: `{"columns":["name","number"],"into":"tv_channel","values":[["News",1],["Sport",2]]}`,
		},
		{
			name: "expression value",
			sql:  "INSERT INTO session (token, expires_at) VALUES ('abc', NOW())",
			want: `{"columns":["token","expires_at"],"into":"session","values":[["abc",{"args":[],"function":"now"}]]}`,
		},
		{
			name: "returning star",
			sql:  "INSERT INTO package (name) VALUES ('Basic') RETURNING *",
			want: `{"columns":["name"],"into":"package","returning":["*"],"values":[["Basic"]]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := TranspileSQL(tt.sql, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, StatementInsert, info.Type)
			b, err := json.Marshal(info.Doc)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(b))
		})
	}
}

func TestTranspileInsertErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		kind ErrorKind
	}{
		{"no column list", "INSERT INTO package VALUES ('Premium')", ErrUnsupportedConstruct},
		{"row width mismatch", "INSERT INTO package (name, paid) VALUES ('Premium')", ErrInvalidArgument},
		{"insert select", "INSERT INTO archive (id) SELECT id FROM package", ErrUnsupportedConstruct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TranspileSQL(tt.sql, DefaultOptions())
			var te *TranspileError
			require.ErrorAs(t, err, &te)
			require.Equal(t, tt.kind, te.Kind)
			require.Equal(t, StatementInsert, te.Statement)
		})
	}
}

func TestTranspileUpdate(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "set with where",
			sql:  "UPDATE terminal SET disabled = true WHERE id = 5",
			want: `{"set":{"disabled":true},"table":"terminal","where":{"eq":["id",5]}}`,
		},
		{
			name: "qualified set column drops qualifier",
			sql:  "UPDATE terminal SET terminal.disabled = true",
			want: `{"set":{"disabled":true},"table":"terminal"}`,
		},
		{
			name: "expression value with returning",
			sql:  "UPDATE account SET balance = balance - 10 WHERE id = 1 RETURNING balance",
			want: `{"returning":["balance"],"set":{"balance":{"sub":["balance",10]}},"table":"account","where":{"eq":["id",1]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := TranspileSQL(tt.sql, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, StatementUpdate, info.Type)
			b, err := json.Marshal(info.Doc)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(b))
		})
	}
}

func TestTranspileUpdateDuplicateColumn(t *testing.T) {
	_, err := TranspileSQL("UPDATE terminal SET disabled = true, disabled = false", DefaultOptions())
	var te *TranspileError
	require.ErrorAs(t, err, &te)
	require.Equal(t, ErrInvalidArgument, te.Kind)
	require.Equal(t, "SET", te.Clause)
	require.Equal(t, StatementUpdate, te.Statement)
}

func TestTranspileDelete(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "with where",
			sql:  "DELETE FROM terminal_playlog WHERE start < '2020-01-01'",
			want: `{"from":"terminal_playlog","where":{"lt":["start","2020-01-01 00:00:00"]}}`,
		},
		{
			name: "whole table",
			sql:  "DELETE FROM session",
			want: `{"from":"session"}`,
		},
		{
			name: "with returning",
			sql:  "DELETE FROM session WHERE expires_at < NOW() RETURNING id",
			want: `{"from":"session","returning":["id"],"where":{"lt":["expires_at",{"args":[],"function":"now"}]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := TranspileSQL(tt.sql, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, StatementDelete, info.Type)
			b, err := json.Marshal(info.Doc)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(b))
		})
	}
}

func TestTranspileDeterminism(t *testing.T) {
	sql := "SELECT c.name, COUNT(*) FROM terminal_playlog t JOIN tv_channel c ON c.id = t.channel_id GROUP BY c.name ORDER BY c.name LIMIT 10"

	stmt, err := parser.Parse(sql)
	require.NoError(t, err)

	first, err := Transpile(stmt, DefaultOptions())
	require.NoError(t, err)
	second, err := Transpile(stmt, DefaultOptions())
	require.NoError(t, err)

	b1, err := json.Marshal(first.Doc)
	require.NoError(t, err)
	b2, err := json.Marshal(second.Doc)
	require.NoError(t, err)
	require.Equal(t, string(b1), string(b2))
}

func TestTranspileStatementTypes(t *testing.T) {
	tests := []struct {
		sql  string
		want StatementType
	}{
		{"SELECT id FROM t", StatementSelect},
		{"INSERT INTO t (a) VALUES (1)", StatementInsert},
		{"UPDATE t SET a = 1", StatementUpdate},
		{"DELETE FROM t", StatementDelete},
	}
	for _, tt := range tests {
		info, err := TranspileSQL(tt.sql, DefaultOptions())
		require.NoError(t, err, "sql: %s", tt.sql)
		require.Equal(t, tt.want, info.Type)
	}
}

func TestTranspileErrorMessage(t *testing.T) {
	_, err := TranspileSQL("SELECT FOO(name) FROM customer", DefaultOptions())
	require.Error(t, err)
	require.Equal(t, `transpile: select: SELECT: unsupported function "FOO"`, err.Error())
}
