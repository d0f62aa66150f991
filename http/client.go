package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allyabase/sessionless-go"
	"github.com/allyabase/sessionless-go/component"
	"github.com/allyabase/sessionless-go/sigbase"
	"github.com/rs/zerolog"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Placement selects where the authentication envelope travels.
type Placement int

const (
	// InQuery places every field in the query string.
	InQuery Placement = iota
	// InBody places every field in a JSON object body.
	InBody
	// InHeader places the timestamp and signature in x-pn-* headers and
	// sends the remaining fields as multipart form fields.
	InHeader
)

func (p Placement) String() string {
	switch p {
	case InQuery:
		return "query"
	case InBody:
		return "body"
	case InHeader:
		return "header"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// Upload is a file part sent with an InHeader request.
type Upload struct {
	Field    string
	Filename string
	Body     io.Reader
}

// Request describes one call to a service.
type Request struct {
	Method string
	// Path is relative to the client's base URL. Segments of the form
	// {name} are replaced with the path-escaped value of Fields[name].
	Path string
	// Shape selects the canonical message. A nil Shape sends an
	// unauthenticated request.
	Shape     *sigbase.Shape
	Fields    map[string]any
	Placement Placement
	Upload    *Upload
}

// Client sends authenticated requests to a single service.
type Client struct {
	baseURL string
	auth    *sessionless.Authenticator
	doer    Doer
	logger  zerolog.Logger
}

// NewClient creates a Client for the service rooted at baseURL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	var key *sessionless.KeyPair
	var clock sessionless.Clock = sessionless.SystemClock{}
	c := &Client{
		baseURL: baseURL,
		doer:    http.DefaultClient,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		switch opt.Ident() {
		case identHTTPClient{}:
			if d, ok := opt.Value().(Doer); ok && d != nil {
				c.doer = d
			}
		case identKeyPair{}:
			key = opt.Value().(*sessionless.KeyPair)
		case identLogger{}:
			c.logger = opt.Value().(zerolog.Logger)
		case identClock{}:
			if v, ok := opt.Value().(sessionless.Clock); ok && v != nil {
				clock = v
			}
		}
	}

	if key == nil {
		key, err = sessionless.GenerateKey()
		if err != nil {
			return nil, err
		}
	}

	c.auth, err = sessionless.NewAuthenticator(key, sessionless.WithClock(clock))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// KeyPair returns the key the client signs with.
func (c *Client) KeyPair() *sessionless.KeyPair {
	return c.auth.KeyPair()
}

// BaseURL returns the service root, always ending in '/'.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do signs (when r.Shape is set) and sends r, then decodes the response
// into dst. See Decode for the error classification.
func (c *Client) Do(ctx context.Context, r *Request, dst any) error {
	path, pathFields, err := expandPath(r.Path, r.Fields)
	if err != nil {
		return err
	}

	var env *sessionless.Envelope
	if r.Shape != nil {
		env, err = c.auth.Authenticate(r.Shape, r.Fields)
		if err != nil {
			return err
		}
	}

	req, err := c.newRequest(ctx, r, path, pathFields, env)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("request failed")
		return &sessionless.TransportError{Method: req.Method, URL: redact(req.URL), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &sessionless.TransportError{Method: req.Method, URL: redact(req.URL), StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("shape", shapeLabel(r.Shape)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if err := Decode(resp.StatusCode, body, dst); err != nil {
		var terr *sessionless.TransportError
		if errors.As(err, &terr) {
			terr.Method = req.Method
			terr.URL = redact(req.URL)
		}
		return err
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r *Request, path string, pathFields []string, env *sessionless.Envelope) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}

	fields := r.Fields
	if env != nil {
		fields = env.Fields()
	}

	var body io.Reader
	var contentType string
	header := make(http.Header)

	switch r.Placement {
	case InQuery:
		if env != nil {
			u.RawQuery = env.Query(pathFields...).Encode()
		} else {
			u.RawQuery = plainQuery(fields, pathFields).Encode()
		}
	case InBody:
		buf, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	case InHeader:
		if env != nil {
			for k, v := range env.Headers() {
				header[k] = v
			}
		}
		if r.Upload != nil {
			buf, ct, err := multipartBody(r.Upload, fields, pathFields)
			if err != nil {
				return nil, err
			}
			body = buf
			contentType = ct
		}
	default:
		return nil, fmt.Errorf("unknown placement %s", r.Placement)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// expandPath replaces {name} segments of tmpl with escaped field values.
func expandPath(tmpl string, fields map[string]any) (string, []string, error) {
	var sb strings.Builder
	var names []string
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", nil, fmt.Errorf("unterminated path parameter in %q", tmpl)
		}
		name := rest[open+1 : open+end]
		v, ok := fields[name]
		if !ok {
			return "", nil, sessionless.MissingField(name)
		}
		s, err := component.Render(v)
		if err != nil {
			return "", nil, fmt.Errorf("failed to render path parameter %q: %w", name, err)
		}
		if s == "" {
			return "", nil, sessionless.MissingField(name)
		}
		sb.WriteString(rest[:open])
		sb.WriteString(url.PathEscape(s))
		names = append(names, name)
		rest = rest[open+end+1:]
	}
	return sb.String(), names, nil
}

func plainQuery(fields map[string]any, omit []string) url.Values {
	q := make(url.Values)
	for k, v := range fields {
		if contains(omit, k) {
			continue
		}
		s, err := component.RenderQuery(v)
		if err != nil {
			continue
		}
		q.Set(k, s)
	}
	return q
}

func multipartBody(up *Upload, fields map[string]any, omit []string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if contains(omit, k) || k == sessionless.FieldTimestamp || k == sessionless.FieldSignature {
			continue
		}
		s, err := component.RenderQuery(v)
		if err != nil {
			continue
		}
		if err := mw.WriteField(k, s); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", k, err)
		}
	}

	part, err := mw.CreateFormFile(up.Field, up.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return nil, "", fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// redact drops the query string, which carries the signature.
func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	return c.String()
}

func shapeLabel(s *sigbase.Shape) string {
	if s == nil {
		return "none"
	}
	return s.Label()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
