package canonical

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle is reported when a map, slice or pointer contains itself.
	ErrCycle = errors.New("cyclic reference")
	// ErrUnsupportedType is reported for Go values that have no JSON counterpart.
	ErrUnsupportedType = errors.New("unsupported value type")
	// ErrNumberOutOfRange is reported for NaN, infinities and integers beyond ±(2^53-1).
	ErrNumberOutOfRange = errors.New("number out of range")
	// ErrTooDeep is reported when nesting exceeds MaxDepth.
	ErrTooDeep = errors.New("nesting too deep")
	// ErrInvalidString is reported for strings and keys that are not valid UTF-8.
	ErrInvalidString = errors.New("invalid UTF-8 string")
)

// EncodingError reports a value that cannot be given a canonical form.
// Path is a JSON pointer to the offending value ("" is the object itself).
type EncodingError struct {
	Path   string
	Err    error
	Detail string
}

func (e *EncodingError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	if e.Detail == "" {
		return fmt.Sprintf("cannot canonicalize value at %s: %v", path, e.Err)
	}
	return fmt.Sprintf("cannot canonicalize value at %s: %v: %s", path, e.Err, e.Detail)
}

func (e *EncodingError) Unwrap() error { return e.Err }
