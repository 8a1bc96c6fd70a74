// Package sqlb provides SQL expression and relation building blocks for
// join validation. It models the pieces the validation engine needs directly
// (column references, boolean criteria, join trees, derived relations) rather
// than generic SQL syntax, and renders them with a recursive tree walk.
package sqlb

import (
	"fmt"
	"strings"
)

// Expr is the interface that all SQL expression types implement.
type Expr interface {
	SQL() string
}

// Col represents a table column reference (e.g., orders.id).
type Col struct {
	Table  string
	Column string
}

// C is shorthand for a column reference.
func C(table, column string) Col {
	return Col{Table: table, Column: column}
}

// SQL renders the column reference.
func (c Col) SQL() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// Lit represents a literal string value (auto-quoted with single quotes).
type Lit string

// SQL renders the literal with single quotes, doubling any internal quotes.
func (l Lit) SQL() string {
	return "'" + strings.ReplaceAll(string(l), "'", "''") + "'"
}

// Int represents an integer literal.
type Int int

// SQL renders the integer.
func (i Int) SQL() string {
	return fmt.Sprintf("%d", i)
}

// Raw is an escape hatch for arbitrary SQL expressions.
type Raw string

// SQL renders the raw SQL as-is.
func (r Raw) SQL() string {
	return string(r)
}

// BinOp represents a binary comparison between two expressions.
type BinOp struct {
	Op    string
	Left  Expr
	Right Expr
}

// SQL renders the comparison.
func (b BinOp) SQL() string {
	return b.Left.SQL() + " " + b.Op + " " + b.Right.SQL()
}

// Comparison constructors.

// Eq builds left = right.
func Eq(left, right Expr) BinOp { return BinOp{Op: "=", Left: left, Right: right} }

// Ne builds left <> right.
func Ne(left, right Expr) BinOp { return BinOp{Op: "<>", Left: left, Right: right} }

// Lt builds left < right.
func Lt(left, right Expr) BinOp { return BinOp{Op: "<", Left: left, Right: right} }

// Le builds left <= right.
func Le(left, right Expr) BinOp { return BinOp{Op: "<=", Left: left, Right: right} }

// Gt builds left > right.
func Gt(left, right Expr) BinOp { return BinOp{Op: ">", Left: left, Right: right} }

// Ge builds left >= right.
func Ge(left, right Expr) BinOp { return BinOp{Op: ">=", Left: left, Right: right} }

// logical is an n-ary AND/OR over sub-expressions.
type logical struct {
	op    string
	parts []Expr
}

// SQL renders the conjunction/disjunction with each part parenthesized.
func (l logical) SQL() string {
	if len(l.parts) == 1 {
		return l.parts[0].SQL()
	}
	rendered := make([]string, len(l.parts))
	for i, p := range l.parts {
		rendered[i] = "(" + p.SQL() + ")"
	}
	return strings.Join(rendered, " "+l.op+" ")
}

// And combines expressions with AND.
func And(parts ...Expr) Expr {
	return logical{op: "AND", parts: parts}
}

// Or combines expressions with OR.
func Or(parts ...Expr) Expr {
	return logical{op: "OR", parts: parts}
}

// notExpr negates an expression.
type notExpr struct {
	inner Expr
}

// SQL renders the negation.
func (n notExpr) SQL() string {
	return "NOT (" + n.inner.SQL() + ")"
}

// Not negates an expression.
func Not(inner Expr) Expr {
	return notExpr{inner: inner}
}

// Paren wraps an expression in parentheses.
type Paren struct {
	Expr Expr
}

// SQL renders the parenthesized expression.
func (p Paren) SQL() string {
	return "(" + p.Expr.SQL() + ")"
}

// Alias wraps an expression with an alias (expr AS alias).
type Alias struct {
	Expr Expr
	Name string
}

// SQL renders the aliased expression.
func (a Alias) SQL() string {
	return a.Expr.SQL() + " AS " + a.Name
}
