package sessionless

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/allyabase/sessionless-go/component"
	"github.com/lestrrat-go/blackmagic"
)

// Names of the fields every envelope carries.
const (
	FieldTimestamp = "timestamp"
	FieldSignature = "signature"
	FieldPubKey    = "pubKey"
)

// Header names used when the envelope travels in headers.
const (
	HeaderTimestamp = component.HeaderPrefix + FieldTimestamp
	HeaderSignature = component.HeaderPrefix + FieldSignature
)

// Envelope is the set of authentication fields for a single request. It
// is built fresh for every call and never reused.
type Envelope struct {
	timestamp string
	signature Signature
	message   string
	fields    map[string]any
}

func (e *Envelope) Timestamp() string {
	return e.timestamp
}

func (e *Envelope) Signature() Signature {
	return e.signature
}

// Message returns the canonical message that was signed.
func (e *Envelope) Message() string {
	return e.message
}

// PubKey returns the pubKey field, or "" when the request carries none.
func (e *Envelope) PubKey() string {
	s, _ := e.fields[FieldPubKey].(string)
	return s
}

// Keys returns the sorted names of all fields, including timestamp and
// signature.
func (e *Envelope) Keys() []string {
	keys := make([]string, 0, len(e.fields)+1)
	for k := range e.fields {
		keys = append(keys, k)
	}
	keys = append(keys, FieldSignature)
	sort.Strings(keys)
	return keys
}

// Get assigns the named field to dst, which must be a pointer to a
// compatible type.
func (e *Envelope) Get(name string, dst any) error {
	var v any
	switch name {
	case FieldSignature:
		v = string(e.signature)
	default:
		fv, ok := e.fields[name]
		if !ok {
			return fmt.Errorf("field %q not found in envelope", name)
		}
		v = fv
	}
	if err := blackmagic.AssignIfCompatible(dst, v); err != nil {
		return fmt.Errorf("failed to assign field %q: %w", name, err)
	}
	return nil
}

// Fields returns a copy of all fields, including timestamp and signature,
// suitable for a JSON body.
func (e *Envelope) Fields() map[string]any {
	m := make(map[string]any, len(e.fields)+1)
	for k, v := range e.fields {
		m[k] = v
	}
	m[FieldSignature] = string(e.signature)
	return m
}

// Query returns the fields as query parameters. Fields named in omit, and
// fields whose values have no query form, are left out.
func (e *Envelope) Query(omit ...string) url.Values {
	skip := make(map[string]struct{}, len(omit))
	for _, name := range omit {
		skip[name] = struct{}{}
	}

	q := make(url.Values)
	for k, v := range e.fields {
		if _, ok := skip[k]; ok {
			continue
		}
		s, err := component.RenderQuery(v)
		if err != nil {
			continue
		}
		q.Set(k, s)
	}
	q.Set(FieldSignature, string(e.signature))
	return q
}

// Headers returns the timestamp and signature as x-pn-* headers.
func (e *Envelope) Headers() http.Header {
	h := make(http.Header)
	h.Set(HeaderTimestamp, e.timestamp)
	h.Set(HeaderSignature, string(e.signature))
	return h
}
