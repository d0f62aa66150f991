package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/allyabase/sessionless-go"
)

// Validator is implemented by response types that check their own shape
// after decoding.
type Validator interface {
	Validate() error
}

// Success is the {"success": bool} response returned by deletes and
// other acknowledgement-only operations.
type Success struct {
	Success bool `json:"success"`

	present bool
}

func (s *Success) UnmarshalJSON(data []byte) error {
	var raw struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.present = raw.Success != nil
	if raw.Success != nil {
		s.Success = *raw.Success
	}
	return nil
}

func (s *Success) Validate() error {
	if !s.present {
		return errors.New(`missing "success" member`)
	}
	return nil
}

// errorEnvelope picks out the members that signal an application level
// failure on a 2xx response.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Success *bool           `json:"success"`
}

// Decode classifies a response and, on success, decodes body into dst.
//
//   - a non-2xx status yields a *sessionless.TransportError
//   - a 2xx body with an "error" member, or "success": false, yields a
//     *sessionless.ApplicationError
//   - a body that does not decode into dst, or fails dst's Validate
//     method, yields a *sessionless.DecodeError
//
// dst may be nil, in which case only the classification is performed.
// A *json.RawMessage dst receives the body verbatim.
func Decode(status int, body []byte, dst any) error {
	if status < 200 || status > 299 {
		return &sessionless.TransportError{StatusCode: status, Body: body}
	}

	if err := checkEnvelope(body); err != nil {
		return err
	}

	if dst == nil {
		return nil
	}

	if raw, ok := dst.(*json.RawMessage); ok {
		if !json.Valid(body) {
			return &sessionless.DecodeError{Body: body, Err: errors.New("response is not valid JSON")}
		}
		*raw = append((*raw)[:0], body...)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return &sessionless.DecodeError{Body: body, Err: fmt.Errorf("failed to decode %T: %w", dst, err)}
	}

	if v, ok := dst.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &sessionless.DecodeError{Body: body, Err: fmt.Errorf("invalid %T: %w", dst, err)}
		}
	}
	return nil
}

func checkEnvelope(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var p errorEnvelope
	if err := json.Unmarshal(trimmed, &p); err != nil {
		// Left for the typed decode to report.
		return nil
	}

	if len(p.Error) > 0 && !bytes.Equal(p.Error, []byte("null")) {
		var msg string
		if err := json.Unmarshal(p.Error, &msg); err != nil {
			msg = string(p.Error)
		}
		return &sessionless.ApplicationError{Message: msg, Body: body}
	}

	if p.Success != nil && !*p.Success {
		return &sessionless.ApplicationError{Message: "operation reported failure", Body: body}
	}
	return nil
}
