package sqlb

import (
	"fmt"
	"strings"
)

// Star selects all columns.
var Star = Raw("*")

// CountAll is the COUNT(*) aggregate.
var CountAll = Raw("COUNT(*)")

// SelectStmt represents a SELECT query over a single relation (which may be
// an arbitrarily deep join tree).
type SelectStmt struct {
	Distinct bool
	Columns  []Expr // empty means *
	From     Relation
	Where    Expr
	Limit    int // 0 means no limit
}

// SQL renders the statement on one line.
func (s SelectStmt) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(s.columnsSQL())
	if s.From != nil {
		b.WriteString(" FROM ")
		b.WriteString(s.From.FromSQL())
	}
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(s.Where.SQL())
	}
	if s.Limit > 0 {
		b.WriteString(fmt.Sprintf(" LIMIT %d", s.Limit))
	}
	return b.String()
}

func (s SelectStmt) columnsSQL() string {
	if len(s.Columns) == 0 {
		return Star.SQL()
	}
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.SQL()
	}
	return strings.Join(cols, ", ")
}

// Scalar wraps the statement as a parenthesized scalar subquery expression,
// usable inside comparisons.
func (s SelectStmt) Scalar() Expr {
	return Raw("(" + s.SQL() + ")")
}

// Exists wraps the statement in EXISTS (...).
func Exists(s SelectStmt) Expr {
	return Raw("EXISTS (" + s.SQL() + ")")
}

// NotExists wraps the statement in NOT EXISTS (...).
func NotExists(s SelectStmt) Expr {
	return Raw("NOT EXISTS (" + s.SQL() + ")")
}
