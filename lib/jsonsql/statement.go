// Package jsonsql converts parsed SQL statements into JSONSQL documents,
// the JSON query dialect of the billing engine's JSON-RPC API.
package jsonsql

import (
	"errors"

	"github.com/telebill-community/sql-to-jsonsql/lib/sql/ast"
	"github.com/telebill-community/sql-to-jsonsql/lib/sql/parser"
)

// Dialect selects which SQL surface the transpiler admits. The document
// shapes are identical across dialects, only operator acceptance differs.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectGeneric  Dialect = "generic"
)

// SchemaResolver supplies the table and column knowledge used to map SQL
// table names to vendor tables and to resolve unqualified columns in
// multi-table queries. A nil resolver disables both.
type SchemaResolver interface {
	ResolveTable(name string) (string, bool)
	TableColumns(table string) ([]string, bool)
}

// Options configure one transpile call. The zero value disables the
// auto-order policy and admits the generic dialect, use DefaultOptions for
// the engine's conventional behavior.
type Options struct {
	Dialect       Dialect
	AutoOrderByID bool
	Schema        SchemaResolver
}

func DefaultOptions() Options {
	return Options{Dialect: DialectPostgres, AutoOrderByID: true}
}

// StatementType doubles as the JSON-RPC method name for the document.
type StatementType string

const (
	StatementSelect StatementType = "select"
	StatementInsert StatementType = "insert"
	StatementUpdate StatementType = "update"
	StatementDelete StatementType = "delete"
)

// StatementInfo pairs a JSONSQL document with the method it belongs to.
type StatementInfo struct {
	Type StatementType
	Doc  map[string]any
}

// Transpile converts a parsed statement into its JSONSQL document. It is
// stateless and safe for concurrent use.
func Transpile(stmt ast.Statement, opts Options) (StatementInfo, error) {
	if opts.Dialect == "" {
		opts.Dialect = DialectGeneric
	}

	var (
		typ StatementType
		doc map[string]any
		err error
	)
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		typ = StatementSelect
		doc, err = buildSelectDoc(s, opts, true, 0)
	case *ast.InsertStatement:
		typ = StatementInsert
		doc, err = buildInsertDoc(s, opts)
	case *ast.UpdateStatement:
		typ = StatementUpdate
		doc, err = buildUpdateDoc(s, opts)
	case *ast.DeleteStatement:
		typ = StatementDelete
		doc, err = buildDeleteDoc(s, opts)
	default:
		typ = ""
		err = errConstruct("unsupported statement type")
	}
	if err != nil {
		var te *TranspileError
		if errors.As(err, &te) && te.Statement == "" {
			te.Statement = typ
		}
		return StatementInfo{}, err
	}
	return StatementInfo{Type: typ, Doc: doc}, nil
}

// TranspileSQL parses sql with the bundled frontend and transpiles the
// resulting statement.
func TranspileSQL(sql string, opts Options) (StatementInfo, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return StatementInfo{}, err
	}
	return Transpile(stmt, opts)
}
