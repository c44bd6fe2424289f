// Package syncerr defines the failure taxonomy shared by the alignment engine.
//
// Components return these typed errors; the aligner converts them into a
// RetryNotice at its boundary so callers see one "try again" message while the
// cause stays reachable through errors.As and errors.Is.
package syncerr

import (
	"errors"
	"fmt"
)

// ErrOutsideRecording is returned when a wall-clock instant falls after the
// last sample of a capture, or the capture has no samples at all.
var ErrOutsideRecording = errors.New("instant outside recording window")

// ErrLocked is returned when inputs are edited or re-applied while an
// alignment is locked.
var ErrLocked = errors.New("alignment is locked; modify it first")

// FileFormatError reports a capture or video file that is unreadable or uses
// an unsupported layout.
type FileFormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *FileFormatError) Unwrap() error { return e.Err }

// FileFormat builds a FileFormatError.
func FileFormat(path, reason string, err error) error {
	return &FileFormatError{Path: path, Reason: reason, Err: err}
}

// OutOfRangeError reports an index outside [0, Limit).
type OutOfRangeError struct {
	What  string
	Index int
	Limit int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.What, e.Index, e.Limit)
}

// OutOfRange builds an OutOfRangeError.
func OutOfRange(what string, index, limit int) error {
	return &OutOfRangeError{What: what, Index: index, Limit: limit}
}

// ParseError reports malformed user text.
type ParseError struct {
	Field string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse builds a ParseError.
func Parse(field, input string, err error) error {
	return &ParseError{Field: field, Input: input, Err: err}
}

// AlignmentUnresolvedError reports a request for aligned data before an
// alignment has been applied.
type AlignmentUnresolvedError struct {
	What string
}

func (e *AlignmentUnresolvedError) Error() string {
	return fmt.Sprintf("%s requested before alignment was applied", e.What)
}

// RetryNotice is the generic message surfaced to the user after a failed
// action. Nothing was committed; the user re-triggers the action.
type RetryNotice struct {
	Action string
	Err    error
}

func (n *RetryNotice) Error() string {
	return fmt.Sprintf("could not %s, please check the input and try again", n.Action)
}

func (n *RetryNotice) Unwrap() error { return n.Err }

// TryAgain wraps err in a RetryNotice. A nil err stays nil.
func TryAgain(action string, err error) error {
	if err == nil {
		return nil
	}
	return &RetryNotice{Action: action, Err: err}
}
