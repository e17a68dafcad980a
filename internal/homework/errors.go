package homework

import (
	"errors"
	"strconv"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindStatusCode
	KindMalformedBody
	KindShape
	KindMissingCursor
	KindMissingField
	KindUnknownStatus
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport_unreachable"
	case KindStatusCode:
		return "unexpected_status_code"
	case KindMalformedBody:
		return "malformed_body"
	case KindShape:
		return "shape"
	case KindMissingCursor:
		return "missing_cursor"
	case KindMissingField:
		return "missing_field"
	case KindUnknownStatus:
		return "unknown_status"
	default:
		return "unknown"
	}
}

// Error is returned by every stage of the homework pipeline.
// Msg is shown to the operator, so it is written in Russian.
type Error struct {
	Kind Kind
	Msg  string

	Code   int    // HTTP status, KindStatusCode only
	Field  string // missing key, KindMissingField only
	Status string // offending code, KindUnknownStatus only

	Err error
}

// Sentinels for errors.Is: they match any *Error of the same Kind.
var (
	ErrTransport     = &Error{Kind: KindTransport}
	ErrStatusCode    = &Error{Kind: KindStatusCode}
	ErrMalformedBody = &Error{Kind: KindMalformedBody}
	ErrShape         = &Error{Kind: KindShape}
	ErrMissingCursor = &Error{Kind: KindMissingCursor}
	ErrMissingField  = &Error{Kind: KindMissingField}
	ErrUnknownStatus = &Error{Kind: KindUnknownStatus}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindUnknown
}

func shapeError(msg string) error {
	return &Error{Kind: KindShape, Msg: msg}
}

func missingFieldError(field string) error {
	return &Error{Kind: KindMissingField, Field: field, Msg: "отсутствует ключ " + strconv.Quote(field) + " в ответе API"}
}
