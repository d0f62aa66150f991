package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/allyabase/sessionless-go/internal/testserver"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestCLI(t *testing.T) {
	t.Setenv("ALLYABASE_BASE_URL", "")
	t.Setenv("USE_DIRECT_PORTS", "")
	keys := filepath.Join(t.TempDir(), "keys")

	t.Run("Usage", func(t *testing.T) {
		res := runCLI(t)
		require.Equal(t, 2, res.code)
		require.Contains(t, res.stderr, "usage: sessionless")

		res = runCLI(t, "frobnicate")
		require.Equal(t, 2, res.code)
	})

	var pubKey string
	t.Run("Keys", func(t *testing.T) {
		res := runCLI(t, "-keystore", keys, "keygen")
		require.Equal(t, 0, res.code, res.stderr)
		pubKey = strings.TrimSpace(res.stdout)
		require.Len(t, pubKey, 66)

		res = runCLI(t, "-keystore", keys, "keygen")
		require.Equal(t, 1, res.code, "keygen should not replace a key without -force")

		res = runCLI(t, "-keystore", keys, "pubkey")
		require.Equal(t, 0, res.code, res.stderr)
		require.Equal(t, pubKey, strings.TrimSpace(res.stdout))

		res = runCLI(t, "-keystore", keys, "-key", "backup", "keygen")
		require.Equal(t, 0, res.code, res.stderr)

		res = runCLI(t, "-keystore", keys, "keys")
		require.Equal(t, 0, res.code, res.stderr)
		require.Equal(t, "backup\ndefault\n", res.stdout)
	})
	t.Run("Sign and verify", func(t *testing.T) {
		res := runCLI(t, "-keystore", keys, "sign", "hello", "world")
		require.Equal(t, 0, res.code, res.stderr)
		sig := strings.TrimSpace(res.stdout)
		require.Len(t, sig, 128)

		res = runCLI(t, "-keystore", keys, "verify", "-pubkey", pubKey, "-signature", sig, "hello world")
		require.Equal(t, 0, res.code, res.stderr)
		require.Equal(t, "ok\n", res.stdout)

		res = runCLI(t, "-keystore", keys, "verify", "-pubkey", pubKey, "-signature", sig, "goodbye")
		require.Equal(t, 1, res.code)
	})
	t.Run("Services", func(t *testing.T) {
		srv := httptest.NewServer(testserver.New().Handler())
		defer srv.Close()

		res := runCLI(t, "-keystore", keys, "-base-url", srv.URL, "bdo", "create", "-hash", "h", `{"foo":"bar"}`)
		require.Equal(t, 0, res.code, res.stderr)
		require.Contains(t, res.stdout, `"uuid"`)

		res = runCLI(t, "-keystore", keys, "-base-url", srv.URL, "dolores", "create")
		require.Equal(t, 0, res.code, res.stderr)

		res = runCLI(t, "-keystore", keys, "-base-url", srv.URL, "sanora", "get")
		require.Equal(t, 1, res.code, "missing uuid should fail")

		res = runCLI(t, "-keystore", keys, "-base-url", srv.URL, "bdo", "frobnicate")
		require.Equal(t, 1, res.code)
	})
	t.Run("Smoke", func(t *testing.T) {
		for _, args := range [][]string{{"smoke", "-local"}, {"smoke", "-local", "-parallel"}} {
			res := runCLI(t, append([]string{"-keystore", keys, "-metrics"}, args...)...)
			require.Equal(t, 0, res.code, res.stderr)
			require.Equal(t, "ok\n", res.stdout)
			require.Contains(t, res.stderr, "sessionless_client_requests_total")
		}
	})
	t.Run("Log file", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "cli.log")
		res := runCLI(t, "-keystore", keys, "-log-file", logFile, "-log-level", "debug", "smoke", "-local")
		require.Equal(t, 0, res.code, res.stderr)
		require.FileExists(t, logFile)
	})
}
