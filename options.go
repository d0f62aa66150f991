package sessionless

import (
	"github.com/lestrrat-go/option"
)

type Option = option.Interface

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption interface {
	Option
	authenticatorOption()
}

type authenticatorOption struct {
	Option
}

func (authenticatorOption) authenticatorOption() {}

// WithClock returns an AuthenticatorOption that sets the clock used for
// request timestamps.
func WithClock(clock Clock) AuthenticatorOption {
	return authenticatorOption{option.New(identClock{}, clock)}
}

type identClock struct{}

func (identClock) String() string { return "WithClock" }
