package joinguard

import (
	"fmt"

	"github.com/joinguard/joinguard/sqlb"
)

// Step is one join in a chain: a new right relation joined to everything
// built so far, with the validation flags requested for it. Steps are
// immutable once added.
type Step struct {
	Right sqlb.Relation
	Type  sqlb.JoinType
	On    sqlb.Expr
	Flags Flag
}

// Query is an ordered join chain plus the projection of the main query.
// Build it with From, Join, Select, Where, and Limit; pass it to Execute.
// A Query carries no connection and may be compiled any number of times.
type Query struct {
	base    sqlb.Relation
	steps   []Step
	columns []sqlb.Expr
	where   sqlb.Expr
	limit   int
	err     error
}

// From starts a query chain at a base relation.
func From(rel sqlb.Relation) *Query {
	return &Query{base: rel}
}

// Join appends a join step. Flags must stay within the four atomic validation
// flags and their unions; anything else surfaces as ErrInvalidFlag from
// Execute. A zero flag set means the step is joined but never validated.
func (q *Query) Join(rel sqlb.Relation, typ sqlb.JoinType, on sqlb.Expr, flags Flag) *Query {
	if q.err == nil && !flags.valid() {
		q.err = fmt.Errorf("%w: 0x%02x on join with %s", ErrInvalidFlag, uint8(flags), rel.Ref())
	}
	q.steps = append(q.steps, Step{Right: rel, Type: typ, On: on, Flags: flags})
	return q
}

// Select sets the main query's projection. Without it the query selects *.
func (q *Query) Select(cols ...sqlb.Expr) *Query {
	q.columns = cols
	return q
}

// Where sets the main query's filter. The filter applies only to the final
// query; validation statements never see it. Callers that need validation to
// respect a filter must pre-filter into a subquery relation before joining.
func (q *Query) Where(cond sqlb.Expr) *Query {
	q.where = cond
	return q
}

// Limit bounds the main query's row count.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Steps returns a copy of the join steps in declared order.
func (q *Query) Steps() []Step {
	out := make([]Step, len(q.steps))
	copy(out, q.steps)
	return out
}

// Err returns the first construction error, if any.
func (q *Query) Err() error {
	if q == nil {
		return ErrNoQuery
	}
	if q.err != nil {
		return q.err
	}
	if q.base == nil {
		return ErrNoQuery
	}
	return nil
}

// leftRelation returns the accumulated relation seen by step i (0-based):
// the base relation joined with steps 0..i-1, as a join tree that preserves
// the aliases the criteria were written against.
func (q *Query) leftRelation(i int) sqlb.Relation {
	rel := q.base
	for _, s := range q.steps[:i] {
		rel = sqlb.Join{Left: rel, Right: s.Right, Type: s.Type, On: s.On}
	}
	return rel
}

// stmt builds the main query statement.
func (q *Query) stmt() sqlb.SelectStmt {
	return sqlb.SelectStmt{
		Columns: q.columns,
		From:    q.leftRelation(len(q.steps)),
		Where:   q.where,
		Limit:   q.limit,
	}
}

// SQL renders the main query.
func (q *Query) SQL() (string, error) {
	if err := q.Err(); err != nil {
		return "", err
	}
	return q.stmt().SQL(), nil
}
