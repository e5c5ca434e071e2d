package record

import (
	"errors"
	"fmt"
)

// Grammar errors.
var (
	ErrMissingSeparator = errors.New("missing header/value separator")
	ErrUnknownCode      = errors.New("unknown code")
	ErrInvalidNature    = errors.New("invalid nature")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidSize      = errors.New("invalid size")
)

// Value errors.
var (
	ErrSizeMismatch = errors.New("value size mismatch")
	ErrInvalidValue = errors.New("invalid value")
)

// SizeMismatchError reports a record whose declared size differs from the
// character count of its value.
type SizeMismatchError struct {
	Declared int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("value size mismatch (header=%d, actual=%d)", e.Declared, e.Actual)
}

func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}

// LineError locates a record failure inside a member file.
type LineError struct {
	Member string
	Line   int
	Raw    string
	Err    error
}

func (e *LineError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("line %d %q: %v", e.Line, e.Raw, e.Err)
	}
	return fmt.Sprintf("%s:%d %q: %v", e.Member, e.Line, e.Raw, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
