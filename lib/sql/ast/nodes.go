package ast

// Node represents any AST element that can accept a Visitor.
type Node interface {
	Accept(Visitor)
}

// Statement is the root type for SQL statements.
type Statement interface {
	Node
	statementNode()
}

// Expr models SQL expressions.
type Expr interface {
	Node
	exprNode()
}

// TableExpr represents selectable table expressions.
type TableExpr interface {
	Node
	tableNode()
}

// SelectItem describes an item in the SELECT list.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// OrderItem represents ORDER BY terms.
type OrderItem struct {
	Expr      Expr
	Direction OrderDirection
}

// OrderDirection enumerates ORDER BY directions.
type OrderDirection string

const (
	Ascending  OrderDirection = "ASC"
	Descending OrderDirection = "DESC"
)

// LimitClause captures LIMIT/OFFSET values.
type LimitClause struct {
	Count  Expr // can be nil for OFFSET only
	Offset Expr
}

// SelectStatement captures a SELECT query.
type SelectStatement struct {
	Distinct bool
	Columns  []SelectItem
	From     TableExpr
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderItem
	Limit    *LimitClause
}

func (*SelectStatement) statementNode() {}

// InsertStatement models INSERT ... VALUES queries. Select is set for the
// INSERT ... SELECT form so the transpiler can report it as unsupported.
type InsertStatement struct {
	Table     *TableName
	Columns   []*Identifier
	Rows      [][]Expr
	Select    *SelectStatement
	Returning []*Identifier
}

func (*InsertStatement) statementNode() {}

// UpdateStatement models UPDATE queries.
type UpdateStatement struct {
	Table       *TableName
	Assignments []Assignment
	Where       Expr
	Returning   []*Identifier
}

func (*UpdateStatement) statementNode() {}

// DeleteStatement models DELETE queries.
type DeleteStatement struct {
	Table     *TableName
	Where     Expr
	Returning []*Identifier
}

func (*DeleteStatement) statementNode() {}

// Assignment represents column=expr pairs in UPDATE SET.
type Assignment struct {
	Column *Identifier
	Value  Expr
}

// Identifier models possibly qualified identifiers.
type Identifier struct {
	Parts []string
}

func (Identifier) exprNode()  {}
func (Identifier) tableNode() {}

// TableName represents a table reference with optional alias.
type TableName struct {
	Name  *Identifier
	Alias string
}

func (*TableName) tableNode() {}

// SubqueryTable wraps a subquery used as table expression.
type SubqueryTable struct {
	Select *SelectStatement
	Alias  string
}

func (*SubqueryTable) tableNode() {}

// JoinType enumerates supported ANSI join types.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
)

// JoinExpr represents a JOIN expression.
type JoinExpr struct {
	Left      TableExpr
	Right     TableExpr
	Type      JoinType
	Condition JoinCondition
}

func (*JoinExpr) tableNode() {}

// JoinCondition captures ON clauses.
type JoinCondition struct {
	On Expr
}

// StarExpr denotes the wildcard selector.
type StarExpr struct {
	Table *Identifier
}

func (*StarExpr) exprNode() {}

// Literal kinds.
type (
	NumericLiteral struct{ Value string }
	StringLiteral  struct{ Value string }
	BooleanLiteral struct{ Value bool }
	NullLiteral    struct{}
)

func (*NumericLiteral) exprNode() {}
func (*StringLiteral) exprNode()  {}
func (*BooleanLiteral) exprNode() {}
func (*NullLiteral) exprNode()    {}

// BinaryExpr models binary operations like a+b or a AND b.
type BinaryExpr struct {
	Left     Expr
	Operator string
	Right    Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr models prefix operators.
type UnaryExpr struct {
	Operator string
	Expr     Expr
}

func (*UnaryExpr) exprNode() {}

// FuncCall models function invocations.
type FuncCall struct {
	Name     Identifier
	Distinct bool
	Args     []Expr
	Over     *WindowSpecification
}

func (*FuncCall) exprNode() {}

// WindowSpecification describes OVER(...) clauses on function calls.
type WindowSpecification struct {
	PartitionBy []Expr
	OrderBy     []OrderItem
}

// CaseExpr represents simple CASE constructs.
type CaseExpr struct {
	Operand Expr
	When    []WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause holds CASE branches.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// BetweenExpr models BETWEEN operations.
type BetweenExpr struct {
	Expr  Expr
	Lower Expr
	Upper Expr
	Not   bool
}

func (*BetweenExpr) exprNode() {}

// InExpr models IN and NOT IN.
type InExpr struct {
	Expr     Expr
	Not      bool
	Subquery *SelectStatement
	List     []Expr
}

func (*InExpr) exprNode() {}

// LikeExpr models LIKE and ILIKE expressions.
type LikeExpr struct {
	Expr        Expr
	Not         bool
	Insensitive bool
	Pattern     Expr
}

func (*LikeExpr) exprNode() {}

// IsNullExpr models IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// ExistsExpr models EXISTS (subquery).
type ExistsExpr struct {
	Not      bool
	Subquery *SelectStatement
}

func (*ExistsExpr) exprNode() {}

// SubqueryExpr allows scalar subqueries.
type SubqueryExpr struct {
	Select *SelectStatement
}

func (*SubqueryExpr) exprNode() {}
