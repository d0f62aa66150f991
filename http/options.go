package http

import (
	"net/http"
	"time"

	"github.com/allyabase/sessionless-go"
	"github.com/lestrrat-go/option"
	"github.com/rs/zerolog"
)

type Option = option.Interface

// Identifier types for options
type identVerifier struct{}

func (identVerifier) String() string { return "WithVerifier" }

type identHTTPClient struct{}

func (identHTTPClient) String() string { return "WithHTTPClient" }

type identKeyPair struct{}

func (identKeyPair) String() string { return "WithKeyPair" }

type identLogger struct{}

func (identLogger) String() string { return "WithLogger" }

type identClock struct{}

func (identClock) String() string { return "WithClock" }

type identMaxAge struct{}

func (identMaxAge) String() string { return "WithMaxAge" }

type identErrorHandler struct{}

func (identErrorHandler) String() string { return "WithErrorHandler" }

// MiddlewareOption configures a Middleware.
type MiddlewareOption interface {
	Option
	middlewareOption()
}

type middlewareOption struct {
	Option
}

func (middlewareOption) middlewareOption() {}

// WithVerifier specifies the verifier used to authenticate requests.
func WithVerifier(verifier *Verifier) MiddlewareOption {
	return middlewareOption{option.New(identVerifier{}, verifier)}
}

// ClientOption configures a Client.
type ClientOption interface {
	Option
	clientOption()
}

type clientOption struct {
	Option
}

func (clientOption) clientOption() {}

// WithHTTPClient sets the transport collaborator. The default is
// http.DefaultClient.
func WithHTTPClient(doer Doer) ClientOption {
	return clientOption{option.New(identHTTPClient{}, doer)}
}

// WithKeyPair sets the key the client signs with. When omitted a fresh
// key is generated.
func WithKeyPair(key *sessionless.KeyPair) ClientOption {
	return clientOption{option.New(identKeyPair{}, key)}
}

// WithLogger sets the logger used for request tracing. The default
// discards everything.
func WithLogger(logger zerolog.Logger) ClientOption {
	return clientOption{option.New(identLogger{}, logger)}
}

// VerifierOption configures a Verifier.
type VerifierOption interface {
	Option
	verifierOption()
}

type verifierOption struct {
	Option
}

func (verifierOption) verifierOption() {}

// WithMaxAge sets how far a request timestamp may be from the current
// time. Zero disables the check.
func WithMaxAge(d time.Duration) VerifierOption {
	return verifierOption{option.New(identMaxAge{}, d)}
}

// WithErrorHandler configures the handler invoked when verification
// fails. The error is available through VerificationErrorFromContext.
func WithErrorHandler(handler http.Handler) VerifierOption {
	return verifierOption{option.New(identErrorHandler{}, handler)}
}

// ClientVerifierOption can be used with both Client and Verifier.
type ClientVerifierOption interface {
	ClientOption
	VerifierOption
}

type clientVerifierOption struct {
	Option
}

func (clientVerifierOption) clientOption()   {}
func (clientVerifierOption) verifierOption() {}

// WithClock sets the clock used for request timestamps (Client) or for
// the freshness check (Verifier).
func WithClock(clock sessionless.Clock) ClientVerifierOption {
	return clientVerifierOption{option.New(identClock{}, clock)}
}
