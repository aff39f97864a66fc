package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error pairs a sentinel kind with the message shown to the client.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args []any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) error   { return newError(ErrValidation, format, args) }
func NotFound(format string, args ...any) error  { return newError(ErrNotFound, format, args) }
func Conflict(format string, args ...any) error  { return newError(ErrConflict, format, args) }
func Forbidden(format string, args ...any) error { return newError(ErrForbidden, format, args) }
func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args)
}

// StockError rejects an order because of one specific product.
type StockError struct {
	ProductID string
	Name      string
	Missing   bool
	Requested int
	Available int
}

func (e *StockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Product %s not found", e.ProductID)
	}
	return fmt.Sprintf("Insufficient stock for %s", e.Name)
}
