package metrics_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/allyabase/sessionless-go/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestInstrumentTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	rt, err := metrics.InstrumentTransport(nil, reg)
	require.NoError(t, err, "InstrumentTransport should succeed")
	client := &http.Client{Transport: rt}

	for _, path := range []string{"/", "/", "/missing"} {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != "sessionless_client_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "code" {
					counts[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, map[string]float64{"200": 2, "404": 1}, counts)

	t.Run("Registering twice fails", func(t *testing.T) {
		_, err := metrics.InstrumentTransport(nil, reg)
		require.Error(t, err)
	})
	t.Run("Dump", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, metrics.Dump(&buf, reg))
		require.Contains(t, buf.String(), "# TYPE sessionless_client_requests_total counter")
		require.Contains(t, buf.String(), "sessionless_client_request_duration_seconds_bucket")
	})
}
