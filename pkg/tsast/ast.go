// Package tsast is the small slice of TypeScript syntax the proof compiler
// emits. Nodes are plain structs; Print renders them deterministically and
// records where each node landed in the output.
package tsast

// Origin points back at the proof-script location a node was generated from.
type Origin struct {
	Line   int
	Column int
}

// Node is any printable TypeScript node.
type Node interface {
	tsNode()
}

// Type is a TypeScript type expression.
type Type interface {
	Node
	typeNode()
}

// Expr is a TypeScript value expression. Any expression can be a concise
// arrow body.
type Expr interface {
	Node
	Body
	exprNode()
}

// Stmt is a TypeScript statement.
type Stmt interface {
	Node
	stmtNode()
}

// Body is either an Expr (concise arrow body) or a *Block.
type Body interface {
	Node
	bodyNode()
}

// Types

// TypeRef is a reference to a named type, optionally applied to arguments.
type TypeRef struct {
	Name string
	Args []Type
}

// Param is a single named, annotated parameter.
type Param struct {
	Name string
	Type Type
}

// FuncType is a (possibly generic) function type: <T>(x: A) => B.
type FuncType struct {
	TypeParams []string
	Params     []Param
	Ret        Type
}

// TupleType is [A, B, ...].
type TupleType struct {
	Elems []Type
}

// UnionType is A | B | ...
type UnionType struct {
	Members []Type
}

// PropSig is a property signature in an object type.
type PropSig struct {
	Name string
	Type Type
}

// ObjectType is { a: A; b: B; }.
type ObjectType struct {
	Props []PropSig
}

// StringLitType is a string literal type such as "true_".
type StringLitType struct {
	Value string
}

// BoolLitType is the literal type true or false.
type BoolLitType struct {
	Value bool
}

// KeywordType is one of the keyword types: never, any, unknown.
type KeywordType struct {
	Keyword string
}

// Expressions

// Ident is an identifier reference.
type Ident struct {
	Name   string
	Origin *Origin
}

// Call is fn<TypeArgs>(Args).
type Call struct {
	Fn       Expr
	TypeArgs []Type
	Args     []Expr
	Origin   *Origin
}

// Arrow is a (possibly generic) arrow function.
type Arrow struct {
	TypeParams []string
	Params     []Param
	Ret        Type
	Body       Body
	Origin     *Origin
}

// StringLit is a string literal expression.
type StringLit struct {
	Value string
}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
}

// ArrayLit is [a, b, ...].
type ArrayLit struct {
	Elems []Expr
}

// Prop is a property assignment in an object literal. A Shorthand prop
// prints as its name alone.
type Prop struct {
	Name      string
	Value     Expr
	Shorthand bool
}

// ObjectLit is { a: x, b }.
type ObjectLit struct {
	Props []Prop
}

// ElementAccess is x[i].
type ElementAccess struct {
	Expr  Expr
	Index int
}

// PropAccess is x.name.
type PropAccess struct {
	Expr Expr
	Name string
}

// Conditional is c ? a : b.
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
}

// As is x as T.
type As struct {
	Expr Expr
	Type Type
}

// Paren is (x).
type Paren struct {
	Expr Expr
}

// Statements

// TypeAlias is type Name<Params> = Type;
type TypeAlias struct {
	Name       string
	TypeParams []string
	Type       Type
}

// Const is const Name: Type = Value; or, when Declare is set,
// declare const Name: Type;
//
// Axiom marks library declarations whose value is trusted: checkers may use
// Signature instead of inspecting Value.
type Const struct {
	Name      string
	Type      Type
	Value     Expr
	Declare   bool
	Axiom     bool
	Signature Type
	Origin    *Origin
}

// ExprStmt is an expression evaluated for its type only.
type ExprStmt struct {
	Expr   Expr
	Origin *Origin
}

// Return is return Expr;
type Return struct {
	Expr Expr
}

// Block is a braced statement list used as an arrow body.
type Block struct {
	Stmts []Stmt
}

// File is a whole emitted program.
type File struct {
	Stmts []Stmt
}

func (*TypeRef) tsNode()       {}
func (*FuncType) tsNode()      {}
func (*TupleType) tsNode()     {}
func (*UnionType) tsNode()     {}
func (*ObjectType) tsNode()    {}
func (*StringLitType) tsNode() {}
func (*BoolLitType) tsNode()   {}
func (*KeywordType) tsNode()   {}

func (*TypeRef) typeNode()       {}
func (*FuncType) typeNode()      {}
func (*TupleType) typeNode()     {}
func (*UnionType) typeNode()     {}
func (*ObjectType) typeNode()    {}
func (*StringLitType) typeNode() {}
func (*BoolLitType) typeNode()   {}
func (*KeywordType) typeNode()   {}

func (*Ident) tsNode()         {}
func (*Call) tsNode()          {}
func (*Arrow) tsNode()         {}
func (*StringLit) tsNode()     {}
func (*BoolLit) tsNode()       {}
func (*ArrayLit) tsNode()      {}
func (*ObjectLit) tsNode()     {}
func (*ElementAccess) tsNode() {}
func (*PropAccess) tsNode()    {}
func (*Conditional) tsNode()   {}
func (*As) tsNode()            {}
func (*Paren) tsNode()         {}

func (*Ident) exprNode()         {}
func (*Call) exprNode()          {}
func (*Arrow) exprNode()         {}
func (*StringLit) exprNode()     {}
func (*BoolLit) exprNode()       {}
func (*ArrayLit) exprNode()      {}
func (*ObjectLit) exprNode()     {}
func (*ElementAccess) exprNode() {}
func (*PropAccess) exprNode()    {}
func (*Conditional) exprNode()   {}
func (*As) exprNode()            {}
func (*Paren) exprNode()         {}

func (*Ident) bodyNode()         {}
func (*Call) bodyNode()          {}
func (*Arrow) bodyNode()         {}
func (*StringLit) bodyNode()     {}
func (*BoolLit) bodyNode()       {}
func (*ArrayLit) bodyNode()      {}
func (*ObjectLit) bodyNode()     {}
func (*ElementAccess) bodyNode() {}
func (*PropAccess) bodyNode()    {}
func (*Conditional) bodyNode()   {}
func (*As) bodyNode()            {}
func (*Paren) bodyNode()         {}
func (*Block) bodyNode()         {}

func (*TypeAlias) tsNode() {}
func (*Const) tsNode()     {}
func (*ExprStmt) tsNode()  {}
func (*Return) tsNode()    {}
func (*Block) tsNode()     {}
func (*File) tsNode()      {}

func (*TypeAlias) stmtNode() {}
func (*Const) stmtNode()     {}
func (*ExprStmt) stmtNode()  {}
func (*Return) stmtNode()    {}

// Ref is shorthand for a TypeRef.
func Ref(name string, args ...Type) *TypeRef {
	return &TypeRef{Name: name, Args: args}
}

// Id is shorthand for an Ident with no origin.
func Id(name string) *Ident {
	return &Ident{Name: name}
}

// Apply builds fn(arg).
func Apply(fn Expr, arg Expr) *Call {
	return &Call{Fn: fn, Args: []Expr{arg}}
}
