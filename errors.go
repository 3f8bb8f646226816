// Copyright (c) 2024 Neomantra Corp

package flatbin

import "fmt"

// Shared error taxonomy for the reader, builder, and both codec layers.
var (
	ErrUnexpectedLength = fmt.Errorf("flatbin: serialized data is of unexpected length")
	ErrNumberTooLarge   = fmt.Errorf("flatbin: number does not fit target type")
	ErrUnexpectedEOF    = fmt.Errorf("flatbin: unexpected end of input")
	ErrBadVarint        = fmt.Errorf("flatbin: varint exceeds 10 bytes")
	ErrInvalidUTF8      = fmt.Errorf("flatbin: string is not valid UTF-8")
	ErrNotAByte         = fmt.Errorf("flatbin: byte array element out of range")
	ErrUnknownField     = fmt.Errorf("flatbin: unknown field")
	ErrDuplicateField   = fmt.Errorf("flatbin: duplicate field")
	ErrCorruptDocument  = fmt.Errorf("flatbin: corrupt document")
)

// UnexpectedTypeError reports a JSON kind that didn't match the expected Ty.
type UnexpectedTypeError struct {
	Expected string
	Got      string
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("flatbin: expected %s, got %s", e.Expected, e.Got)
}

func unexpectedTypeError(expected string, got string) error {
	return &UnexpectedTypeError{Expected: expected, Got: got}
}

// MissingFieldError reports a struct field absent from the input.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("flatbin: missing field: %s", e.Name)
}

func missingFieldError(name string) error {
	return &MissingFieldError{Name: name}
}

// corrupt collapses any reader error encountered while serializing a
// flatbin document back to JSON into the single CorruptDocument error: once
// a document is being re-serialized, the exact underlying reader failure is
// not actionable to the caller beyond "this document is corrupt".
func corrupt(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCorruptDocument, err)
}
