package testserver_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/allyabase/sessionless-go"
	"github.com/allyabase/sessionless-go/bdo"
	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/internal/testserver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	t.Run("Unsigned requests are rejected", func(t *testing.T) {
		srv := httptest.NewServer(testserver.New().Handler())
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/bdo/user/8f9a1c3e-2b4d-4f6a-9c8e-1a2b3c4d5e6f/bdo?hash=x")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"error":"auth error"}`, string(body))
	})
	t.Run("Deleting an unknown user", func(t *testing.T) {
		srv := httptest.NewServer(testserver.New().Handler())
		defer srv.Close()

		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/dolores/user/8f9a1c3e-2b4d-4f6a-9c8e-1a2b3c4d5e6f/delete", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"success":false}`, string(body))
	})
	t.Run("Clock and max age", func(t *testing.T) {
		now := time.UnixMilli(1716000000000)
		srv := httptest.NewServer(testserver.New(
			testserver.WithClock(sessionless.FixedClock(now)),
			testserver.WithMaxAge(time.Second),
		).Handler())
		defer srv.Close()

		fresh, err := bdo.New(srv.URL+"/bdo/", sessionlesshttp.WithClock(sessionless.FixedClock(now)))
		require.NoError(t, err)
		_, err = fresh.CreateUser(context.Background(), "h", map[string]any{}, false)
		require.NoError(t, err)

		late, err := bdo.New(srv.URL+"/bdo/", sessionlesshttp.WithClock(sessionless.FixedClock(now.Add(-2*time.Second))))
		require.NoError(t, err)
		_, err = late.CreateUser(context.Background(), "h", map[string]any{}, false)
		var appErr *sessionless.ApplicationError
		require.ErrorAs(t, err, &appErr)
	})
	t.Run("Logs every request", func(t *testing.T) {
		var buf bytes.Buffer
		srv := httptest.NewServer(testserver.New(testserver.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))).Handler())
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/sanora/products/8f9a1c3e-2b4d-4f6a-9c8e-1a2b3c4d5e6f")
		require.NoError(t, err)
		resp.Body.Close()

		require.Contains(t, buf.String(), `"path":"/sanora/products/8f9a1c3e-2b4d-4f6a-9c8e-1a2b3c4d5e6f"`)
		require.Contains(t, buf.String(), `"status":200`)
	})
}
