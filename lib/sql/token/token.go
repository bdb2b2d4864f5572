package token

// Type identifies the lexical class of a token.
type Type string

// Position points to a location in the source SQL (1-based indices).
type Position struct {
	Line   int
	Column int
}

// Token holds the type, literal representation, and source location.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// Token types supported by the SQL parser.
const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	IDENT  Type = "IDENT"
	NUMBER Type = "NUMBER"
	STRING Type = "STRING"

	COMMA     Type = ","
	SEMICOLON Type = ";"
	LPAREN    Type = "("
	RPAREN    Type = ")"
	DOT       Type = "."
	STAR      Type = "*"
	PLUS      Type = "+"
	MINUS     Type = "-"
	SLASH     Type = "/"
	PERCENT   Type = "%"
	EQ        Type = "="
	NEQ       Type = "NEQ"
	LT        Type = "<"
	LTE       Type = "<="
	GT        Type = ">"
	GTE       Type = ">="

	// Prepared-statement placeholder, recognized so the parser can
	// reject it with a useful message.
	PLACEHOLDER Type = "?"

	// Keywords
	SELECT    Type = "SELECT"
	INSERT    Type = "INSERT"
	UPDATE    Type = "UPDATE"
	DELETE    Type = "DELETE"
	INTO      Type = "INTO"
	VALUES    Type = "VALUES"
	SET       Type = "SET"
	RETURNING Type = "RETURNING"
	FROM      Type = "FROM"
	WHERE     Type = "WHERE"
	GROUP     Type = "GROUP"
	BY        Type = "BY"
	HAVING    Type = "HAVING"
	ORDER     Type = "ORDER"
	LIMIT     Type = "LIMIT"
	OFFSET    Type = "OFFSET"
	AS        Type = "AS"
	DISTINCT  Type = "DISTINCT"
	OVER      Type = "OVER"
	PARTITION Type = "PARTITION"
	CASE      Type = "CASE"
	WHEN      Type = "WHEN"
	THEN      Type = "THEN"
	ELSE      Type = "ELSE"
	END       Type = "END"

	JOIN  Type = "JOIN"
	INNER Type = "INNER"
	LEFT  Type = "LEFT"
	RIGHT Type = "RIGHT"
	FULL  Type = "FULL"
	OUTER Type = "OUTER"
	CROSS Type = "CROSS"
	ON    Type = "ON"

	AND     Type = "AND"
	OR      Type = "OR"
	NOT     Type = "NOT"
	NULL    Type = "NULL"
	TRUE    Type = "TRUE"
	FALSE   Type = "FALSE"
	IN      Type = "IN"
	EXISTS  Type = "EXISTS"
	BETWEEN Type = "BETWEEN"
	LIKE    Type = "LIKE"
	ILIKE   Type = "ILIKE"
	IS      Type = "IS"
	DESC    Type = "DESC"
	ASC     Type = "ASC"
)

var keywords = map[string]Type{
	"SELECT":    SELECT,
	"INSERT":    INSERT,
	"UPDATE":    UPDATE,
	"DELETE":    DELETE,
	"INTO":      INTO,
	"VALUES":    VALUES,
	"SET":       SET,
	"RETURNING": RETURNING,
	"FROM":      FROM,
	"WHERE":     WHERE,
	"GROUP":     GROUP,
	"BY":        BY,
	"HAVING":    HAVING,
	"ORDER":     ORDER,
	"LIMIT":     LIMIT,
	"OFFSET":    OFFSET,
	"AS":        AS,
	"DISTINCT":  DISTINCT,
	"OVER":      OVER,
	"PARTITION": PARTITION,
	"CASE":      CASE,
	"WHEN":      WHEN,
	"THEN":      THEN,
	"ELSE":      ELSE,
	"END":       END,
	"JOIN":      JOIN,
	"INNER":     INNER,
	"LEFT":      LEFT,
	"RIGHT":     RIGHT,
	"FULL":      FULL,
	"OUTER":     OUTER,
	"CROSS":     CROSS,
	"ON":        ON,
	"AND":       AND,
	"OR":        OR,
	"NOT":       NOT,
	"NULL":      NULL,
	"TRUE":      TRUE,
	"FALSE":     FALSE,
	"IN":        IN,
	"EXISTS":    EXISTS,
	"BETWEEN":   BETWEEN,
	"LIKE":      LIKE,
	"ILIKE":     ILIKE,
	"IS":        IS,
	"DESC":      DESC,
	"ASC":       ASC,
}

// Lookup returns the keyword token if the identifier matches a reserved word.
func Lookup(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
