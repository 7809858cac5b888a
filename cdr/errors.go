package cdr

import (
	"fmt"
)

/*
Errors that can be returned by the cdr package. Offsets are absolute
positions in the supplied buffer, including the encapsulation header. Paths
name the field being decoded, e.g. "poses[3].position.x".
*/

////////////////////////////////////////////////////////////////////////////////

// UnsupportedEncapsulationError is returned when the encapsulation header
// names a representation the decoder does not implement.
type UnsupportedEncapsulationError struct {
	Kind byte
}

// Error returns a string representation of the error.
func (e UnsupportedEncapsulationError) Error() string {
	return fmt.Sprintf("unsupported encapsulation kind %s", encapsulationName(e.Kind))
}

// Is returns true if the target error is an UnsupportedEncapsulationError.
func (e UnsupportedEncapsulationError) Is(target error) bool {
	_, ok := target.(UnsupportedEncapsulationError)
	return ok
}

// UnexpectedEndOfBufferError is returned when a read would run past the end
// of the buffer.
type UnexpectedEndOfBufferError struct {
	Offset int
	Path   string
}

// Error returns a string representation of the error.
func (e UnexpectedEndOfBufferError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unexpected end of buffer at offset %d", e.Offset)
	}
	return fmt.Sprintf("unexpected end of buffer at offset %d decoding %s", e.Offset, e.Path)
}

// Is returns true if the target error is an UnexpectedEndOfBufferError.
func (e UnexpectedEndOfBufferError) Is(target error) bool {
	_, ok := target.(UnexpectedEndOfBufferError)
	return ok
}

// TruncatedStringError is returned when a string's length prefix exceeds the
// bytes remaining in the buffer.
type TruncatedStringError struct {
	Offset    int
	Path      string
	Length    int
	Remaining int
}

// Error returns a string representation of the error.
func (e TruncatedStringError) Error() string {
	return fmt.Sprintf(
		"truncated string at offset %d decoding %s: length %d but %d bytes remain",
		e.Offset, e.Path, e.Length, e.Remaining,
	)
}

// Is returns true if the target error is a TruncatedStringError.
func (e TruncatedStringError) Is(target error) bool {
	_, ok := target.(TruncatedStringError)
	return ok
}

// BoundExceededError is returned when a bounded sequence's length prefix
// exceeds its declared bound.
type BoundExceededError struct {
	Bound  int
	Actual int
	Offset int
	Path   string
}

// Error returns a string representation of the error.
func (e BoundExceededError) Error() string {
	return fmt.Sprintf(
		"sequence length %d exceeds bound %d at offset %d decoding %s",
		e.Actual, e.Bound, e.Offset, e.Path,
	)
}

// Is returns true if the target error is a BoundExceededError.
func (e BoundExceededError) Is(target error) bool {
	_, ok := target.(BoundExceededError)
	return ok
}

// SequenceLengthError is returned when a sequence length prefix exceeds the
// limit configured with WithMaxSequenceLength.
type SequenceLengthError struct {
	Max    int
	Actual int
	Offset int
	Path   string
}

// Error returns a string representation of the error.
func (e SequenceLengthError) Error() string {
	return fmt.Sprintf(
		"sequence length %d exceeds limit %d at offset %d decoding %s",
		e.Actual, e.Max, e.Offset, e.Path,
	)
}

// Is returns true if the target error is a SequenceLengthError.
func (e SequenceLengthError) Is(target error) bool {
	_, ok := target.(SequenceLengthError)
	return ok
}

// TrailingBytesError is returned in strict mode when unread bytes remain
// after the root message.
type TrailingBytesError struct {
	Offset int
	Count  int
}

// Error returns a string representation of the error.
func (e TrailingBytesError) Error() string {
	return fmt.Sprintf("%d trailing bytes at offset %d", e.Count, e.Offset)
}

// Is returns true if the target error is a TrailingBytesError.
func (e TrailingBytesError) Is(target error) bool {
	_, ok := target.(TrailingBytesError)
	return ok
}
