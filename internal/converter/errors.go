package converter

import (
	"errors"
	"fmt"
)

type ErrorKind int32

const (
	_ ErrorKind = iota
	ErrorKindNotADirectory
	ErrorKindUnsupportedFormat
	ErrorKindCorruptImage
	ErrorKindEncodeError
	ErrorKindIOError
	ErrorKindInvalidConfig
	ErrorKindLimitExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNotADirectory:
		return "NOT_A_DIRECTORY"
	case ErrorKindUnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case ErrorKindCorruptImage:
		return "CORRUPT_IMAGE"
	case ErrorKindEncodeError:
		return "ENCODE_ERROR"
	case ErrorKindIOError:
		return "IO_ERROR"
	case ErrorKindInvalidConfig:
		return "INVALID_CONFIG"
	case ErrorKindLimitExceeded:
		return "LIMIT_EXCEEDED"
	default:
		return fmt.Sprintf("UNKNOWN KIND %d", k)
	}
}

// Error is a conversion error tagged with the kind of failure, so callers can
// handle the taxonomy exhaustively instead of probing message strings.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newErrorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain. Errors produced outside
// the converter map to ErrorKindIOError.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ErrorKindIOError
}
