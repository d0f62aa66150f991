package http

import (
	"context"
)

// Context key types for storing values in request context
type verificationErrorKey struct{}
type verifiedRequestKey struct{}

// WithVerificationError adds a verification error to the context.
func WithVerificationError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, verificationErrorKey{}, err)
}

// VerificationErrorFromContext retrieves a verification error from the context.
func VerificationErrorFromContext(ctx context.Context) error {
	if err, ok := ctx.Value(verificationErrorKey{}).(error); ok {
		return err
	}
	return nil
}

// WithVerifiedRequest adds the result of a successful verification to the context.
func WithVerifiedRequest(ctx context.Context, vr *VerifiedRequest) context.Context {
	return context.WithValue(ctx, verifiedRequestKey{}, vr)
}

// VerifiedRequestFromContext retrieves the result of a successful verification.
func VerifiedRequestFromContext(ctx context.Context) (*VerifiedRequest, bool) {
	vr, ok := ctx.Value(verifiedRequestKey{}).(*VerifiedRequest)
	return vr, ok
}
