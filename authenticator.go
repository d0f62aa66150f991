package sessionless

import (
	"errors"
	"fmt"

	"github.com/allyabase/sessionless-go/component"
	"github.com/allyabase/sessionless-go/sigbase"
)

// Authenticator produces signed envelopes for outgoing requests. It holds
// no per-request state and is safe for concurrent use.
type Authenticator struct {
	key   *KeyPair
	clock Clock
}

// NewAuthenticator creates an Authenticator that signs with key.
func NewAuthenticator(key *KeyPair, options ...AuthenticatorOption) (*Authenticator, error) {
	if key == nil {
		return nil, &KeyError{Op: "new authenticator", Err: errors.New("key pair is required")}
	}

	a := &Authenticator{
		key:   key,
		clock: SystemClock{},
	}
	for _, opt := range options {
		switch opt.Ident() {
		case identClock{}:
			if c, ok := opt.Value().(Clock); ok && c != nil {
				a.clock = c
			}
		}
	}
	return a, nil
}

// KeyPair returns the key the Authenticator signs with.
func (a *Authenticator) KeyPair() *KeyPair {
	return a.key
}

// Authenticate reads the clock, fills the timestamp (and pubKey, when the
// shape covers it), builds the canonical message for shape and signs it.
// fields holds every value the request carries. Values for timestamp and
// signature in fields are replaced.
func (a *Authenticator) Authenticate(shape *sigbase.Shape, fields map[string]any) (*Envelope, error) {
	ts, err := Timestamp(a.clock)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		values[k] = v
	}
	values[component.Timestamp().Name()] = ts
	delete(values, FieldSignature)
	if shape != nil && shape.Covers(component.PubKey().Name()) {
		values[component.PubKey().Name()] = a.key.PublicKeyHex()
	}

	message, err := sigbase.Message(shape).Values(values).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build canonical message: %w", err)
	}

	sig, err := a.key.Sign([]byte(message))
	if err != nil {
		return nil, fmt.Errorf("failed to sign canonical message: %w", err)
	}

	return &Envelope{
		timestamp: ts,
		signature: sig,
		message:   message,
		fields:    values,
	}, nil
}
