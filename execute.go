package joinguard

import (
	"context"
	"fmt"
	"log"
)

// Option configures one Execute call.
type Option func(*execConfig)

type execConfig struct {
	skipValidation bool
	logger         *log.Logger
}

// SkipValidation bypasses every validation statement. The main query is the
// only statement issued and the result status is NOT_VALIDATED. Intended for
// production paths whose assumptions were validated during development.
func SkipValidation() Option {
	return func(c *execConfig) {
		c.skipValidation = true
	}
}

// WithLogger logs every issued statement to l. Off by default.
func WithLogger(l *log.Logger) Option {
	return func(c *execConfig) {
		c.logger = l
	}
}

func (c *execConfig) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf("[joinguard] "+format, args...)
	}
}

// Execute validates the query's join chain and, if every check passes, runs
// the query itself. Statements are issued strictly in order on the supplied
// cursor, never concurrently, and the first violation or driver failure is
// terminal for the call.
//
// The returned error is non-nil only for malformed input (ErrInvalidFlag,
// ErrNoQuery, ErrNoCursor); every runtime outcome, including driver failures,
// is captured in Results so callers have one uniform branch point. Nothing is
// retried and nothing is shared between calls.
func Execute(ctx context.Context, cursor Cursor, query *Query, opts ...Option) (Results, error) {
	var cfg execConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if cursor == nil {
		return Results{}, ErrNoCursor
	}
	mainSQL, err := query.SQL()
	if err != nil {
		return Results{}, err
	}

	if cfg.skipValidation {
		cfg.logf("skip validation, executing: %s", mainSQL)
		rows, err := cursor.Query(ctx, mainSQL)
		if err != nil {
			return sqlErrorResults("", err), nil
		}
		return notValidatedResults(rows), nil
	}

	stmts, err := compileChain(query)
	if err != nil {
		return Results{}, err
	}

	for _, st := range stmts {
		cfg.logf("%s count: %s", st.loc, st.countSQL)
		rows, err := cursor.Query(ctx, st.countSQL)
		if err != nil {
			return sqlErrorResults(st.loc, err), nil
		}
		n, err := scalarCount(rows)
		if err != nil {
			return sqlErrorResults(st.loc, err), nil
		}
		if n == 0 {
			continue
		}

		cfg.logf("%s sample: %s", st.loc, st.sampleSQL)
		sample, err := cursor.Query(ctx, st.sampleSQL)
		if err != nil {
			return sqlErrorResults(st.loc, err), nil
		}
		return validationErrorResults(st.loc, st.message(n), n, sample), nil
	}

	cfg.logf("validation passed, executing: %s", mainSQL)
	rows, err := cursor.Query(ctx, mainSQL)
	if err != nil {
		return sqlErrorResults("", err), nil
	}
	return okResults(rows), nil
}

// scalarCount extracts the single integer a COUNT(*) statement returns.
// Drivers disagree on the column name and the Go type, so it takes the one
// value of the one row and converts.
func scalarCount(rows []Row) (int, error) {
	if len(rows) != 1 {
		return 0, fmt.Errorf("joinguard: count query returned %d rows", len(rows))
	}
	if len(rows[0]) != 1 {
		return 0, fmt.Errorf("joinguard: count query returned %d columns", len(rows[0]))
	}
	for _, v := range rows[0] {
		switch n := v.(type) {
		case int64:
			return int(n), nil
		case int32:
			return int(n), nil
		case int:
			return n, nil
		case uint64:
			return int(n), nil
		case float64:
			return int(n), nil
		case string:
			var parsed int
			if _, err := fmt.Sscanf(n, "%d", &parsed); err != nil {
				return 0, fmt.Errorf("joinguard: count value %q: %w", n, err)
			}
			return parsed, nil
		default:
			return 0, fmt.Errorf("joinguard: unexpected count type %T", v)
		}
	}
	return 0, fmt.Errorf("joinguard: empty count row")
}
