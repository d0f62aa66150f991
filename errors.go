package sessionless

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidSignature is returned when a signature is malformed or
	// does not verify.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMissingField is returned when a required input is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField is returned when an input cannot be carried
	// without changing what is signed.
	ErrInvalidField = errors.New("invalid field")
)

// KeyError reports an invalid or unusable key.
type KeyError struct {
	Op  string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key error: %s: %v", e.Op, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// ClockError reports a clock reading that cannot be used as a request
// timestamp.
type ClockError struct {
	Time time.Time
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("clock error: unusable time %s", e.Time.Format(time.RFC3339Nano))
}

// TransportError reports a network failure (StatusCode is 0 and Err is
// set) or a non-2xx response.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("transport error: %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a 2xx response body that does not match the
// expected shape.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ApplicationError reports a 2xx response whose body signals failure,
// either through an "error" member or "success": false.
type ApplicationError struct {
	Message string
	Body    []byte
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application error: %s", e.Message)
}

// MissingField returns an error wrapping ErrMissingField for name.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// InvalidField returns an error wrapping ErrInvalidField for name.
func InvalidField(name, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidField, name, reason)
}

// Required checks name/value pairs and reports the first empty value as
// a MissingField error.
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return MissingField(pairs[i])
		}
	}
	return nil
}
