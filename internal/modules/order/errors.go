// README: Typed failure kinds of the surprise-order workflow.
package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindTemporal         Kind = "temporal"
	KindNoTrips          Kind = "no_trips"
	KindNoDrivers        Kind = "no_drivers"
	KindTravelerNotFound Kind = "traveler_not_found"
	KindPersistence      Kind = "persistence"
	KindUnexpected       Kind = "unexpected"
)

// Error carries the step that failed so the HTTP layer can pick a status code.
type Error struct {
	Kind          Kind
	Message       string
	MissingFields []string
	SQLCode       string
	SQLMessage    string
	Err           error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.MissingFields) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.MissingFields, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNoDrivers) works on
// errors that carry extra detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation, Message: "missing or invalid fields"}
	ErrPastDate         = &Error{Kind: KindTemporal, Message: "trip date must be in the future"}
	ErrNoMatchingTrips  = &Error{Kind: KindNoTrips, Message: "no matching trips"}
	ErrNoDrivers        = &Error{Kind: KindNoDrivers, Message: "no available drivers"}
	ErrTravelerNotFound = &Error{Kind: KindTravelerNotFound, Message: "traveler not found"}
	ErrPersistence      = &Error{Kind: KindPersistence, Message: "failed to save order"}
	ErrUnexpected       = &Error{Kind: KindUnexpected, Message: "internal error"}
)

// Lifecycle errors for reads and status updates.
var (
	ErrNotFound     = errors.New("order not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("order state conflict")
	ErrForbidden    = errors.New("not allowed to access this order")
	ErrBadRequest   = errors.New("bad request")
)

func validationError(fields []string) *Error {
	return &Error{Kind: KindValidation, Message: ErrValidation.Message, MissingFields: fields}
}

func persistenceError(step string, err error) *Error {
	e := &Error{Kind: KindPersistence, Message: ErrPersistence.Message, Err: fmt.Errorf("%s: %w", step, err)}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.SQLCode = pgErr.Code
		e.SQLMessage = pgErr.Message
	}
	return e
}

func unexpectedError(step string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: ErrUnexpected.Message, Err: fmt.Errorf("%s: %w", step, err)}
}

// classify turns anything the transaction returned into a typed *Error. Storage errors
// raised outside the workflow steps (begin, commit) count as persistence failures.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return persistenceError("transaction", err)
	}
	return unexpectedError("transaction", err)
}
