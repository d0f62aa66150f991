package http_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/allyabase/sessionless-go"
	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/stretchr/testify/require"
)

type strictUser struct {
	UUID string `json:"uuid"`
}

func (u *strictUser) Validate() error {
	if len(u.UUID) != 36 {
		return errors.New("uuid must be 36 characters")
	}
	return nil
}

func TestDecode(t *testing.T) {
	testcases := []struct {
		Name   string
		Status int
		Body   string
		Dst    func() any
		Check  func(*testing.T, error)
	}{
		{
			Name:   "Typed success",
			Status: 200,
			Body:   `{"uuid":"` + testUUID + `","extra":1}`,
			Dst:    func() any { return &strictUser{} },
			Check:  func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			Name:   "Error member",
			Status: 200,
			Body:   `{"error":"no time like the present"}`,
			Dst:    func() any { return &strictUser{} },
			Check: func(t *testing.T, err error) {
				var appErr *sessionless.ApplicationError
				require.True(t, errors.As(err, &appErr))
				require.Equal(t, "no time like the present", appErr.Message)
			},
		},
		{
			Name:   "Structured error member",
			Status: 200,
			Body:   `{"error":{"code":7}}`,
			Dst:    func() any { return nil },
			Check: func(t *testing.T, err error) {
				var appErr *sessionless.ApplicationError
				require.True(t, errors.As(err, &appErr))
				require.Equal(t, `{"code":7}`, appErr.Message)
			},
		},
		{
			Name:   "Null error member is not a failure",
			Status: 200,
			Body:   `{"error":null,"uuid":"` + testUUID + `"}`,
			Dst:    func() any { return &strictUser{} },
			Check:  func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			Name:   "Success false",
			Status: 200,
			Body:   `{"success":false}`,
			Dst:    func() any { return &sessionlesshttp.Success{} },
			Check: func(t *testing.T, err error) {
				var appErr *sessionless.ApplicationError
				require.True(t, errors.As(err, &appErr))
			},
		},
		{
			Name:   "Success without the member",
			Status: 200,
			Body:   `{}`,
			Dst:    func() any { return &sessionlesshttp.Success{} },
			Check: func(t *testing.T, err error) {
				var decErr *sessionless.DecodeError
				require.True(t, errors.As(err, &decErr))
			},
		},
		{
			Name:   "Wrong type",
			Status: 200,
			Body:   `{"uuid":5}`,
			Dst:    func() any { return &strictUser{} },
			Check: func(t *testing.T, err error) {
				var decErr *sessionless.DecodeError
				require.True(t, errors.As(err, &decErr))
				require.Equal(t, `{"uuid":5}`, string(decErr.Body))
			},
		},
		{
			Name:   "Invalid JSON",
			Status: 200,
			Body:   `<html>`,
			Dst:    func() any { return &strictUser{} },
			Check: func(t *testing.T, err error) {
				var decErr *sessionless.DecodeError
				require.True(t, errors.As(err, &decErr))
			},
		},
		{
			Name:   "Validation failure",
			Status: 200,
			Body:   `{"uuid":"short"}`,
			Dst:    func() any { return &strictUser{} },
			Check: func(t *testing.T, err error) {
				var decErr *sessionless.DecodeError
				require.True(t, errors.As(err, &decErr))
			},
		},
		{
			Name:   "Non-2xx",
			Status: 403,
			Body:   `{"error":"auth error"}`,
			Dst:    func() any { return &strictUser{} },
			Check: func(t *testing.T, err error) {
				var terr *sessionless.TransportError
				require.True(t, errors.As(err, &terr))
				require.Equal(t, 403, terr.StatusCode)
			},
		},
		{
			Name:   "Raw message",
			Status: 200,
			Body:   `["a","b"]`,
			Dst:    func() any { return &json.RawMessage{} },
			Check:  func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			Name:   "Raw message with invalid JSON",
			Status: 200,
			Body:   `not json`,
			Dst:    func() any { return &json.RawMessage{} },
			Check: func(t *testing.T, err error) {
				var decErr *sessionless.DecodeError
				require.True(t, errors.As(err, &decErr))
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			tc.Check(t, sessionlesshttp.Decode(tc.Status, []byte(tc.Body), tc.Dst()))
		})
	}
}
