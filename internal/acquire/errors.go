package acquire

import (
	"errors"
	"fmt"
)

// Kind classifies workflow failures
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindResolution
	KindNoStreams
	KindTransfer
	KindTranscode
)

// Sentinel errors, one per kind. Match them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrResolution   = errors.New("metadata resolution failed")
	ErrNoStreams    = errors.New("no streams available")
	ErrTransfer     = errors.New("transfer failed")
	ErrTranscode    = errors.New("transcode failed")
)

// ErrDestinationBusy is returned when another run is already writing the same
// file. It always comes wrapped in a KindTransfer error, for the intermediate
// and the transcoded target alike, since no bytes have moved yet.
var ErrDestinationBusy = errors.New("destination is being written by another run")

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindResolution:
		return "ResolutionError"
	case KindNoStreams:
		return "NoStreamsAvailable"
	case KindTransfer:
		return "TransferError"
	case KindTranscode:
		return "TranscodeError"
	default:
		return "Unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindResolution:
		return ErrResolution
	case KindNoStreams:
		return ErrNoStreams
	case KindTransfer:
		return ErrTransfer
	case KindTranscode:
		return ErrTranscode
	default:
		return nil
	}
}

// Error is returned by every failing workflow run
type Error struct {
	Kind       Kind
	Identifier string
	Err        error // underlying collaborator error, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.sentinel()
	if msg == nil {
		msg = errors.New("acquisition failed")
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Identifier, msg)
	}
	return fmt.Sprintf("%s: %v: %v", e.Identifier, msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind Kind, identifier string, err error) *Error {
	return &Error{Kind: kind, Identifier: identifier, Err: err}
}

// KindOf returns the kind of a workflow error, KindUnknown for anything else
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

type permanentError struct {
	err error
}

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Collaborators use it for failures
// that another attempt cannot fix, such as a private video.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
