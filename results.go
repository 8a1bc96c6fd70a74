package joinguard

// Status discriminates the outcome of a validated execution.
type Status int

const (
	// OK means every requested validation passed and the main query ran.
	OK Status = iota
	// ValidationError means a cardinality or totality constraint was violated;
	// the main query was not executed.
	ValidationError
	// SQLError means the database failed during a validation statement or the
	// main query. The driver message is carried in ErrorMsg.
	SQLError
	// NotValidated means validation was skipped and the main query ran.
	NotValidated
)

// String returns the canonical status name.
func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case ValidationError:
		return "VALIDATION_ERROR"
	case SQLError:
		return "SQL_ERROR"
	case NotValidated:
		return "NOT_VALIDATED"
	default:
		return "UNKNOWN"
	}
}

// Results is the uniform outcome of Execute. Exactly one payload shape is
// populated per status: Value for OK and NotValidated; the Error* fields for
// ValidationError; ErrorMsg (and ErrorLoc when a validation statement failed)
// for SQLError. A Results value is built fresh per call and never mutated
// after return.
type Results struct {
	Status Status

	// Value holds the main query's rows for OK and NotValidated.
	Value []Row

	// ErrorLoc names the join step and atomic flag that failed.
	ErrorLoc string
	// ErrorMsg is a one-line description of the failure.
	ErrorMsg string
	// ErrorSize is the total violation count (may exceed len(ErrorSample)).
	ErrorSize int
	// ErrorSample holds up to 10 offending driving-relation rows.
	ErrorSample []Row
}

func okResults(rows []Row) Results {
	return Results{Status: OK, Value: rows}
}

func notValidatedResults(rows []Row) Results {
	return Results{Status: NotValidated, Value: rows}
}

func sqlErrorResults(loc string, err error) Results {
	return Results{Status: SQLError, ErrorLoc: loc, ErrorMsg: err.Error()}
}

func validationErrorResults(loc, msg string, size int, sample []Row) Results {
	return Results{
		Status:      ValidationError,
		ErrorLoc:    loc,
		ErrorMsg:    msg,
		ErrorSize:   size,
		ErrorSample: sample,
	}
}
