package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/allyabase/sessionless-go"
	"github.com/allyabase/sessionless-go/component"
	"github.com/allyabase/sessionless-go/sigbase"
)

// DefaultMaxAge is the freshness window used by NewVerifier.
const DefaultMaxAge = 5 * time.Minute

// StaleMessage is the error message sent for requests outside the
// freshness window.
const StaleMessage = "no time like the present"

var (
	// ErrStaleTimestamp is reported when a request timestamp falls
	// outside the freshness window.
	ErrStaleTimestamp = errors.New("stale timestamp")

	// ErrUnknownKey is reported when no public key is known for a uuid.
	ErrUnknownKey = errors.New("unknown key")
)

// KeyResolver resolves the public key (hex) registered for a uuid.
type KeyResolver interface {
	ResolveKey(uuid string) (string, error)
}

// KeyResolverFunc is a function adapter for KeyResolver.
type KeyResolverFunc func(uuid string) (string, error)

func (f KeyResolverFunc) ResolveKey(uuid string) (string, error) {
	return f(uuid)
}

// StaticKeyResolver provides a single static key for all verifications.
type StaticKeyResolver struct {
	Key string
}

func (s *StaticKeyResolver) ResolveKey(string) (string, error) {
	return s.Key, nil
}

// MapKeyResolver provides key lookup from a map. It is safe for
// concurrent use.
type MapKeyResolver struct {
	mu   sync.RWMutex
	keys map[string]string
}

func NewMapKeyResolver() *MapKeyResolver {
	return &MapKeyResolver{keys: make(map[string]string)}
}

func (m *MapKeyResolver) Set(uuid, pubKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[uuid] = pubKey
}

func (m *MapKeyResolver) Delete(uuid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, uuid)
}

func (m *MapKeyResolver) ResolveKey(uuid string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if key, exists := m.keys[uuid]; exists {
		return key, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, uuid)
}

// VerifiedRequest holds what a successful verification established.
type VerifiedRequest struct {
	UUID      string
	PubKey    string
	Timestamp time.Time
	// Body is the decoded JSON body, or nil for non-JSON requests.
	Body map[string]any
}

// Verifier rebuilds the canonical message of an incoming request for a
// fixed Shape and checks its signature and freshness.
type Verifier struct {
	shape        *sigbase.Shape
	resolver     KeyResolver
	maxAge       time.Duration
	clock        sessionless.Clock
	errorHandler http.Handler
}

// NewVerifier creates a Verifier for requests of the given shape. For
// shapes that cover pubKey the key is taken from the request itself,
// otherwise it is resolved from the request's uuid.
func NewVerifier(shape *sigbase.Shape, resolver KeyResolver, options ...VerifierOption) *Verifier {
	v := &Verifier{
		shape:        shape,
		resolver:     resolver,
		maxAge:       DefaultMaxAge,
		clock:        sessionless.SystemClock{},
		errorHandler: DefaultErrorHandler(),
	}

	for _, opt := range options {
		switch opt.Ident() {
		case identMaxAge{}:
			v.maxAge = opt.Value().(time.Duration)
		case identClock{}:
			if c, ok := opt.Value().(sessionless.Clock); ok && c != nil {
				v.clock = c
			}
		case identErrorHandler{}:
			if h, ok := opt.Value().(http.Handler); ok && h != nil {
				v.errorHandler = h
			}
		}
	}
	return v
}

// ServeHTTP implements http.Handler for signature verification. On
// success it writes nothing, allowing the request to continue.
func (v *Verifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := v.VerifyRequest(r); err != nil {
		r = r.WithContext(WithVerificationError(r.Context(), err))
		v.errorHandler.ServeHTTP(w, r)
	}
}

// VerifyRequest verifies r. A JSON body is read and replaced so later
// handlers can read it again.
func (v *Verifier) VerifyRequest(r *http.Request) (*VerifiedRequest, error) {
	body, err := readJSONBody(r)
	if err != nil {
		return nil, err
	}
	ctx := component.WithRequestInfoFromHTTP(r.Context(), r, body)

	var ts, sig string
	if err := resolveString(ctx, component.Timestamp(), &ts); err != nil {
		return nil, err
	}
	if err := resolveString(ctx, component.New(sessionless.FieldSignature), &sig); err != nil {
		return nil, err
	}

	t, err := sessionless.ParseTimestamp(ts)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	if v.maxAge > 0 {
		skew := v.clock.Now().Sub(t)
		if skew < 0 {
			skew = -skew
		}
		if skew > v.maxAge {
			return nil, fmt.Errorf("%w: off by %s", ErrStaleTimestamp, skew)
		}
	}

	verified := &VerifiedRequest{Timestamp: t, Body: body}
	if v.shape.Covers(component.UUID().Name()) {
		if err := resolveString(ctx, component.UUID(), &verified.UUID); err != nil {
			return nil, err
		}
	}

	if v.shape.Covers(component.PubKey().Name()) {
		if err := resolveString(ctx, component.PubKey(), &verified.PubKey); err != nil {
			return nil, err
		}
	} else {
		if v.resolver == nil {
			return nil, fmt.Errorf("%w: no key resolver configured", ErrUnknownKey)
		}
		key, err := v.resolver.ResolveKey(verified.UUID)
		if err != nil {
			return nil, err
		}
		verified.PubKey = key
	}

	msg, err := sigbase.Message(v.shape).Resolve(ctx).Build()
	if err != nil {
		return nil, err
	}
	if err := sessionless.Verify(verified.PubKey, []byte(msg), sig); err != nil {
		return nil, err
	}
	return verified, nil
}

func resolveString(ctx context.Context, comp component.Identifier, dst *string) error {
	v, err := component.Resolve(ctx, comp)
	if err != nil {
		return err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return fmt.Errorf("component %q must be a non-empty string", comp.Name())
	}
	*dst = s
	return nil
}

// DefaultErrorHandler returns a handler that reports failures as a JSON
// {"error": ...} body. Stale requests get a 200 response, every other
// failure a 403.
func DefaultErrorHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := VerificationErrorFromContext(r.Context())

		status := http.StatusForbidden
		msg := "auth error"
		if errors.Is(err, ErrStaleTimestamp) {
			status = http.StatusOK
			msg = StaleMessage
		}
		WriteJSON(w, status, map[string]string{"error": msg})
	})
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSONBody(r *http.Request) (map[string]any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" {
		return nil, nil
	}

	buf, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf))

	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, nil
	}
	var body map[string]any
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}
	return body, nil
}
