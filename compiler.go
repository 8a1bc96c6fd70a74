package joinguard

import (
	"fmt"

	"github.com/joinguard/joinguard/sqlb"
)

// sampleLimit bounds the offending rows carried back in ErrorSample.
const sampleLimit = 10

// statement is the compiled check for one atomic flag of one join step: a
// violation-count query, a bounded sample query over the same driving
// relation, and the diagnostics to report if the count is non-zero.
// Statements are compiled per Execute call and never cached.
type statement struct {
	stepPos   int // 1-based position in the chain
	flag      Flag
	loc       string
	driving   string // diagnostic name of the driving relation
	counted   string // diagnostic name of the counted relation
	totality  bool
	countSQL  string
	sampleSQL string
}

// message renders the one-line failure description for n violations.
func (s statement) message(n int) string {
	if s.totality {
		return fmt.Sprintf("%s violated: %d row(s) of %s have no match in %s",
			flagNames[s.flag], n, s.driving, s.counted)
	}
	return fmt.Sprintf("%s violated: %d row(s) of %s match more than one row of %s",
		flagNames[s.flag], n, s.driving, s.counted)
}

// Check describes one compiled validation statement: the check for one
// atomic flag of one join step.
type Check struct {
	// Step is the 1-based chain position of the join being checked.
	Step int
	// Flag is the atomic flag the statement checks.
	Flag Flag
	// Loc names the step and flag the way Results.ErrorLoc would.
	Loc string
	// CountSQL counts violating driving-relation rows.
	CountSQL string
	// SampleSQL returns up to 10 violating rows.
	SampleSQL string
}

// Checks compiles the validation statements the query would run, in execution
// order, without touching a database. Useful for inspection and tooling.
func Checks(q *Query) ([]Check, error) {
	stmts, err := compileChain(q)
	if err != nil {
		return nil, err
	}
	checks := make([]Check, len(stmts))
	for i, st := range stmts {
		checks[i] = Check{
			Step:      st.stepPos,
			Flag:      st.flag,
			Loc:       st.loc,
			CountSQL:  st.countSQL,
			SampleSQL: st.sampleSQL,
		}
	}
	return checks, nil
}

// compileChain walks the join chain left to right and compiles one statement
// per atomic flag of every flagged step, in the fixed atomic order. Steps
// with an empty flag set produce nothing. The interleaving is load-bearing:
// step i's statements all precede step i+1's, and within a step the atomic
// order fixes which violation is reported first.
func compileChain(q *Query) ([]statement, error) {
	if err := q.Err(); err != nil {
		return nil, err
	}
	var stmts []statement
	for i, step := range q.steps {
		if step.Flags == 0 {
			continue
		}
		left := q.leftRelation(i)
		for _, atom := range step.Flags.Atoms() {
			stmts = append(stmts, compileStatement(i+1, left, step, atom))
		}
	}
	return stmts, nil
}

// compileStatement builds the check for one atomic flag of one step.
//
// The step's criterion is reused verbatim inside a correlated subquery, so
// composite and non-equality criteria are respected. Which side drives and
// which side is counted depends on the flag:
//
//	ONE_TO_MANY  drives right, counts left,  violation: count > 1
//	MANY_TO_ONE  drives left,  counts right, violation: count > 1
//	LEFT_TOTAL   drives left,  counts right, violation: no match
//	RIGHT_TOTAL  drives right, counts left,  violation: no match
//
// "Left" is the accumulated relation of all prior steps, rendered as a join
// tree with the original aliases, so chained validation sees exactly the rows
// present after those steps.
func compileStatement(pos int, left sqlb.Relation, step Step, atom Flag) statement {
	var driving, counted sqlb.Relation
	switch atom {
	case OneToMany, RightTotal:
		driving, counted = step.Right, left
	default: // ManyToOne, LeftTotal
		driving, counted = left, step.Right
	}

	var violation sqlb.Expr
	totality := atom == LeftTotal || atom == RightTotal
	if totality {
		violation = sqlb.NotExists(sqlb.SelectStmt{
			Columns: []sqlb.Expr{sqlb.Raw("1")},
			From:    counted,
			Where:   step.On,
		})
	} else {
		matches := sqlb.SelectStmt{
			Columns: []sqlb.Expr{sqlb.CountAll},
			From:    counted,
			Where:   step.On,
		}
		violation = sqlb.Gt(matches.Scalar(), sqlb.Int(1))
	}

	countStmt := sqlb.SelectStmt{
		Columns: []sqlb.Expr{sqlb.CountAll},
		From:    driving,
		Where:   violation,
	}
	sampleStmt := sqlb.SelectStmt{
		From:  driving,
		Where: violation,
		Limit: sampleLimit,
	}

	return statement{
		stepPos:   pos,
		flag:      atom,
		loc:       fmt.Sprintf("join %d: %s %s %s", pos, left.Ref(), flagNames[atom], step.Right.Ref()),
		driving:   driving.Ref(),
		counted:   counted.Ref(),
		totality:  totality,
		countSQL:  countStmt.SQL(),
		sampleSQL: sampleStmt.SQL(),
	}
}
