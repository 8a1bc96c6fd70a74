package sqlb

import "fmt"

// JoinType represents the type of SQL JOIN.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
)

// String returns the SQL keyword for this join type.
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case FullJoin:
		return "FULL JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	default:
		return "JOIN"
	}
}

// Relation is a named source of rows: a base table, an aliased subquery, or
// the join of two relations. Relations are immutable once built; rendering is
// a recursive walk over the tree.
type Relation interface {
	// FromSQL renders the relation as a FROM-clause source, preserving the
	// aliases that criteria were written against.
	FromSQL() string
	// Ref returns a short name for the relation, used in diagnostics.
	Ref() string
}

// Table is a base table, optionally aliased.
type Table struct {
	Name  string
	Alias string
}

// T builds a table reference.
func T(name string) Table {
	return Table{Name: name}
}

// As returns a copy of the table with the given alias.
func (t Table) As(alias string) Table {
	t.Alias = alias
	return t
}

// FromSQL renders the table reference.
func (t Table) FromSQL() string {
	if t.Alias != "" {
		return t.Name + " AS " + t.Alias
	}
	return t.Name
}

// Ref returns the alias if set, else the table name.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Subquery is a derived relation: a SELECT used as a table, bound to an alias.
// Criteria against a subquery reference its alias, so the alias is required.
type Subquery struct {
	Stmt  SelectStmt
	Alias string
}

// FromSQL renders the derived relation.
func (s Subquery) FromSQL() string {
	return "(" + s.Stmt.SQL() + ") AS " + s.Alias
}

// Ref returns the subquery alias.
func (s Subquery) Ref() string {
	return s.Alias
}

// Join is the relation produced by joining two relations. Nesting Joins on
// the left builds up the accumulated relation of a multi-join chain.
type Join struct {
	Left  Relation
	Right Relation
	Type  JoinType
	On    Expr
}

// FromSQL renders the join tree left to right.
func (j Join) FromSQL() string {
	s := j.Left.FromSQL() + " " + j.Type.String() + " " + j.Right.FromSQL()
	if j.On != nil && j.Type != CrossJoin {
		s += " ON " + j.On.SQL()
	}
	return s
}

// Ref names the join by its member relations.
func (j Join) Ref() string {
	return fmt.Sprintf("%s+%s", j.Left.Ref(), j.Right.Ref())
}
