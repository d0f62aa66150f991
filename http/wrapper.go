package http

import (
	"net/http"
)

// Middleware wraps an http.Handler to add request verification.
type Middleware struct {
	handler  http.Handler
	verifier *Verifier
}

// Wrap wraps an HTTP handler with request verification. Verified
// requests reach h with a VerifiedRequest in their context.
func Wrap(h http.Handler, options ...MiddlewareOption) http.Handler {
	w := &Middleware{
		handler: h,
	}

	for _, opt := range options {
		switch opt.Ident() {
		case identVerifier{}:
			w.verifier = opt.Value().(*Verifier)
		}
	}

	return w
}

// ServeHTTP implements http.Handler.
func (wrp *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if verifier := wrp.verifier; verifier != nil {
		vr, err := verifier.VerifyRequest(r)
		if err != nil {
			r = r.WithContext(WithVerificationError(r.Context(), err))
			verifier.errorHandler.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(WithVerifiedRequest(r.Context(), vr))
	}

	wrp.handler.ServeHTTP(w, r)
}
