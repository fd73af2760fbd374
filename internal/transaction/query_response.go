package transaction

import (
	"errors"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// QueryOutcome tells which of the three QueryResponse shapes a result has.
type QueryOutcome int

const (
	QueryNotFound QueryOutcome = iota
	QueryInvalidState
	QueryFound
)

func (o QueryOutcome) String() string {
	switch o {
	case QueryNotFound:
		return "not_found"
	case QueryInvalidState:
		return "invalid_state"
	case QueryFound:
		return "found"
	default:
		return "unknown"
	}
}

// QueryResponse is the result of a read-shaped entry point.
// Value is only meaningful for QueryFound, Message only for QueryInvalidState.
type QueryResponse[T any] struct {
	Outcome QueryOutcome
	Value   T
	Message string
}

func NotFound[T any]() QueryResponse[T] {
	return QueryResponse[T]{Outcome: QueryNotFound}
}

func InvalidState[T any](msg string) QueryResponse[T] {
	return QueryResponse[T]{Outcome: QueryInvalidState, Message: msg}
}

func Found[T any](v T) QueryResponse[T] {
	return QueryResponse[T]{Outcome: QueryFound, Value: v}
}

// queryError collapses err: only not_found errors become NotFound, everything else is InvalidState.
func queryError[T any](err error) QueryResponse[T] {
	if domain.HasCode(err, domain.CodeNotFound) {
		return NotFound[T]()
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return InvalidState[T](derr.Message())
	}
	return InvalidState[T](err.Error())
}
