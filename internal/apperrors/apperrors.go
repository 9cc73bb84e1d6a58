// Package apperrors defines the closed set of domain errors the API can
// return. Handlers map them to HTTP statuses; anything outside this set is
// reported as a generic server error with no internal detail.
package apperrors

import (
	"errors"
	"net/http"
)

type Domain string

const (
	DomainAuth   Domain = "AuthError"
	DomainUser   Domain = "UserError"
	DomainPlan   Domain = "PlanError"
	DomainChat   Domain = "ChatError"
	DomainServer Domain = "ServerError"
)

type Kind string

const (
	KindUnauthenticated  Kind = "unauthenticated"
	KindInvalid          Kind = "invalid"
	KindDuplicate        Kind = "duplicate"
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindInternal         Kind = "internal"
)

type Error struct {
	Domain  Domain
	Kind    Kind
	Message string
	// Fields lists the offending input fields on validation failures.
	Fields []string
}

func (e *Error) Error() string {
	return string(e.Domain) + ": " + e.Message
}

// Status maps the error to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalid, KindDuplicate:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Auth(kind Kind, msg string) *Error { return &Error{Domain: DomainAuth, Kind: kind, Message: msg} }
func User(kind Kind, msg string) *Error { return &Error{Domain: DomainUser, Kind: kind, Message: msg} }
func Plan(kind Kind, msg string) *Error { return &Error{Domain: DomainPlan, Kind: kind, Message: msg} }
func Chat(kind Kind, msg string) *Error { return &Error{Domain: DomainChat, Kind: kind, Message: msg} }

func Server(msg string) *Error {
	return &Error{Domain: DomainServer, Kind: KindInternal, Message: msg}
}

// As unwraps err into a domain error, or nil if it is not one.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	e := As(err)
	return e != nil && e.Kind == kind
}
