// Package joinguard validates relational join assumptions against a live
// database connection before the real query executes.
//
// Joins silently produce wrong row counts when their cardinality assumptions
// are off: a lookup table with a duplicated key fans out every matched row, a
// missing dimension row drops data from an inner join. joinguard lets a query
// declare the assumption per join (ONE_TO_MANY, MANY_TO_ONE, LEFT_TOTAL,
// RIGHT_TOTAL, or unions like ONE_TO_ONE) and checks each one with generated
// correlated-subquery statements before running the query itself.
//
// # Basic Usage
//
//	x := sqlb.T("orders")
//	y := sqlb.T("customers")
//	q := joinguard.From(x).
//		Join(y, sqlb.InnerJoin,
//			sqlb.Eq(sqlb.C("orders", "customer_id"), sqlb.C("customers", "id")),
//			joinguard.ManyToOne|joinguard.LeftTotal).
//		Select(sqlb.C("orders", "id"), sqlb.C("customers", "name"))
//
//	res, err := joinguard.Execute(ctx, joinguard.NewDB(db), q)
//	switch res.Status {
//	case joinguard.OK:
//		// res.Value holds the rows
//	case joinguard.ValidationError:
//		// res.ErrorLoc, res.ErrorMsg, res.ErrorSize, res.ErrorSample
//	case joinguard.SQLError:
//		// res.ErrorMsg carries the driver message
//	}
//
// # Multi-join chains
//
// Chains validate left to right. The left relation of step i is the join of
// all prior steps, so validation sees exactly the rows present after those
// steps. The first violated constraint ends the call; later steps and the
// main query are never issued.
//
// # Skipping validation
//
// Production paths that have already been validated can bypass the checks:
//
//	res, err := joinguard.Execute(ctx, cur, q, joinguard.SkipValidation())
//
// which issues exactly one statement and reports NOT_VALIDATED.
//
// The engine holds no state between calls and uses its cursor strictly
// sequentially; it only emits ANSI-portable SQL (correlated subqueries,
// COUNT, NOT EXISTS, LIMIT).
package joinguard

import (
	"context"
	"database/sql"
	"errors"
)

// Sentinel errors returned by Execute for malformed input. Runtime outcomes
// (constraint violations, driver failures) are reported through Results,
// never as errors.
var (
	// ErrInvalidFlag is returned when a join was built with flag bits outside
	// the four atomic validation flags.
	ErrInvalidFlag = errors.New("joinguard: invalid validation flag")

	// ErrNoQuery is returned when the query has no base relation.
	ErrNoQuery = errors.New("joinguard: query has no base relation")

	// ErrNoCursor is returned when Execute is called with a nil cursor.
	ErrNoCursor = errors.New("joinguard: nil cursor")
)

// IsInvalidFlagErr returns true if err is or wraps ErrInvalidFlag.
func IsInvalidFlagErr(err error) bool {
	return errors.Is(err, ErrInvalidFlag)
}

// Row is one result row keyed by column name.
type Row map[string]any

// Cursor executes one SQL statement and returns its rows. It is the engine's
// only view of the database; drivers, cancellation, and timeouts live behind
// it. A Cursor is used by at most one Execute call at a time.
type Cursor interface {
	Query(ctx context.Context, query string) ([]Row, error)
}

// Querier is the subset of database/sql the DB cursor needs.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn, so validation can run
// inside a transaction and see uncommitted rows.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// NewDB adapts a database/sql handle to the Cursor interface.
func NewDB(q Querier) Cursor {
	return dbCursor{q: q}
}

type dbCursor struct {
	q Querier
}

// Query runs the statement and scans every row generically by column name.
func (c dbCursor) Query(ctx context.Context, query string) ([]Row, error) {
	rows, err := c.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				// Text-mode drivers hand back []byte; store strings so rows
				// compare cleanly.
				row[col] = string(b)
			} else {
				row[col] = vals[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
