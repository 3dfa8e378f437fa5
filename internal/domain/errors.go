package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindForbidden          ErrorKind = "forbidden"
	KindInvalidTransition  ErrorKind = "invalid_transition"
	KindInsufficientSeats  ErrorKind = "insufficient_seats"
	KindRouteUnavailable   ErrorKind = "route_unavailable"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
)

// Error carries a taxonomy kind and a caller-facing message.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so sentinels
// survive wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

var (
	ErrRideNotFound         = &Error{Kind: KindNotFound, Msg: "ride not found"}
	ErrBookingNotFound      = &Error{Kind: KindNotFound, Msg: "booking request not found"}
	ErrNotificationNotFound = &Error{Kind: KindNotFound, Msg: "notification not found"}
	ErrCarNotFound          = &Error{Kind: KindNotFound, Msg: "car not found"}
	ErrInsufficientSeats    = &Error{Kind: KindInsufficientSeats, Msg: "not enough available seats"}
	ErrRouteUnavailable     = &Error{Kind: KindRouteUnavailable, Msg: "no route between origin and destination"}
	ErrForbidden            = &Error{Kind: KindForbidden, Msg: "caller is not allowed to perform this action"}
	ErrInvalidTransition    = &Error{Kind: KindInvalidTransition, Msg: "transition not allowed from current status"}
)

func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func InvalidTransition(from, to BookingStatus) *Error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf("cannot move request from %s to %s", from, to)}
}

func StorageUnavailable(err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Msg: "storage unavailable", Err: err}
}

// KindOf returns the taxonomy kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool         { return err != nil && KindOf(err) == KindValidation }
func IsNotFound(err error) bool           { return err != nil && KindOf(err) == KindNotFound }
func IsForbidden(err error) bool          { return err != nil && KindOf(err) == KindForbidden }
func IsInsufficientSeats(err error) bool  { return err != nil && KindOf(err) == KindInsufficientSeats }
func IsStorageUnavailable(err error) bool { return err != nil && KindOf(err) == KindStorageUnavailable }
