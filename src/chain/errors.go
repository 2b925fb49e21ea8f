package chain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("chain: block not found")
	ErrMalformedSnapshot = errors.New("chain: malformed snapshot")

	errNilPayload = errors.New("payload is nil")
)

// SerializationError reports a payload that could not be rendered to its
// canonical bytes. Append leaves the ledger unchanged when it returns one.
type SerializationError struct {
	Kind string // payload kind, "<nil>" for a missing payload
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("chain: serialize %s payload: %v", e.Kind, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// ViolationKind names the invariant a block failed.
type ViolationKind string

const (
	// ViolationContent: the stored fingerprint does not match the recomputed digest.
	ViolationContent ViolationKind = "content"
	// ViolationLink: the predecessor link does not match the previous block's fingerprint.
	ViolationLink ViolationKind = "link"
	// ViolationIndex: the sequence index does not match the block's position.
	ViolationIndex ViolationKind = "index"
)

// IntegrityViolation describes the first broken invariant found by
// validation. It is carried in a ValidationResult; no ledger operation
// returns it as a failure.
type IntegrityViolation struct {
	Index    uint64
	Kind     ViolationKind
	Expected string
	Actual   string
	Cause    error // set when the stored payload no longer serializes
}

func (v *IntegrityViolation) Error() string {
	if v.Cause != nil {
		return fmt.Sprintf("block %d: %s violation: %v", v.Index, v.Kind, v.Cause)
	}
	return fmt.Sprintf("block %d: %s violation: expected %s, got %s", v.Index, v.Kind, v.Expected, v.Actual)
}

func (v *IntegrityViolation) Unwrap() error {
	return v.Cause
}
