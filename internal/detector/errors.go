package detector

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates a detector number outside the focal plane.
	ErrOutOfRange = errors.New("detector out of range")

	// ErrUnknownRaft indicates a raft code not present in the raft table.
	ErrUnknownRaft = errors.New("unknown raft")

	// ErrInvalidSensor indicates a sensor code that is not of the form Snn.
	ErrInvalidSensor = errors.New("invalid sensor")
)

// OutOfRangeError reports a detector number that cannot be decoded.
type OutOfRangeError struct {
	Detector int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %d", ErrOutOfRange, e.Detector)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// UnknownRaftError reports a raft code missing from the raft table.
type UnknownRaftError struct {
	Raft string
}

func (e *UnknownRaftError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownRaft, e.Raft)
}

func (e *UnknownRaftError) Unwrap() error { return ErrUnknownRaft }
