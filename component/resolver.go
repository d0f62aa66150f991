package component

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// HeaderPrefix is prepended to a component name to form the header that
// carries it on multipart uploads.
const HeaderPrefix = "x-pn-"

type requestInfoKey struct{}

// RequestInfo contains the places a request can carry component values.
type RequestInfo struct {
	// PathValue returns a named path wildcard, or "" when there is none.
	PathValue func(name string) string
	Query     url.Values
	Headers   http.Header
	// Body is the decoded JSON object body, if any.
	Body map[string]any
}

// WithRequestInfo adds request information to the context
func WithRequestInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFromContext(ctx context.Context) (*RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(*RequestInfo)
	return info, ok
}

// RequestInfoFromHTTP creates RequestInfo from an http.Request and its
// already decoded body.
func RequestInfoFromHTTP(req *http.Request, body map[string]any) *RequestInfo {
	if req == nil || req.URL == nil {
		return nil
	}

	return &RequestInfo{
		PathValue: req.PathValue,
		Query:     req.URL.Query(),
		Headers:   req.Header,
		Body:      body,
	}
}

// WithRequestInfoFromHTTP is a convenience function that extracts request
// info from an http.Request and adds it to the context.
func WithRequestInfoFromHTTP(ctx context.Context, req *http.Request, body map[string]any) context.Context {
	info := RequestInfoFromHTTP(req, body)
	if info == nil {
		return ctx
	}
	return WithRequestInfo(ctx, info)
}

// Resolve finds the value of comp in the request information stored in
// ctx. Path wildcards take precedence, then x-pn-* headers, then the
// JSON body, then the query string.
func Resolve(ctx context.Context, comp Identifier) (any, error) {
	info, ok := RequestInfoFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no request information available in context")
	}

	if info.PathValue != nil {
		if v := info.PathValue(comp.name); v != "" {
			return v, nil
		}
	}

	if info.Headers != nil {
		if v := info.Headers.Get(HeaderPrefix + comp.name); v != "" {
			return splitList(comp, v), nil
		}
	}

	if v, ok := info.Body[comp.name]; ok && v != nil {
		return v, nil
	}

	if info.Query.Has(comp.name) {
		return splitList(comp, info.Query.Get(comp.name)), nil
	}

	return nil, fmt.Errorf("component %q not found in request", comp.name)
}

func splitList(comp Identifier, v string) any {
	if !comp.IsList() {
		return v
	}
	return strings.Fields(v)
}
