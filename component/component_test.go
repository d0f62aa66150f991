package component_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/allyabase/sessionless-go/component"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	t.Run("Simple component", func(t *testing.T) {
		comp := component.New("uuid")
		require.Equal(t, "uuid", comp.Name())
		require.Empty(t, comp.Parameters())
		require.False(t, comp.IsList())
	})

	t.Run("Component with parameter", func(t *testing.T) {
		comp := component.New("colors").WithParameter(component.ParamList, true)
		require.True(t, comp.HasParameter(component.ParamList))

		var list bool
		require.NoError(t, comp.GetParameter(component.ParamList, &list))
		require.True(t, list)
		require.True(t, comp.IsList())
	})

	t.Run("WithParameter does not mutate the receiver", func(t *testing.T) {
		base := component.UUID()
		_ = base.WithParameter("extra", "value")
		require.False(t, component.UUID().HasParameter("extra"))
	})

	t.Run("Missing parameter", func(t *testing.T) {
		var s string
		require.Error(t, component.Hash().GetParameter("nope", &s))
	})

	t.Run("Predefined identifiers", func(t *testing.T) {
		require.Equal(t, "timestamp", component.Timestamp().Name())
		require.Equal(t, "pubKey", component.PubKey().Name())
		require.Equal(t, "uuid", component.UUID().Name())
		require.Equal(t, "hash", component.Hash().Name())
		require.Equal(t, "tags", component.Tags().Name())
		require.True(t, component.Tags().IsList())
	})
}

func TestRender(t *testing.T) {
	testcases := []struct {
		Name     string
		Value    any
		Expected string
		Error    bool
	}{
		{Name: "string", Value: "hereisanexampleofahash", Expected: "hereisanexampleofahash"},
		{Name: "empty string", Value: "", Expected: ""},
		{Name: "string list", Value: []string{"foo", "bar"}, Expected: "foobar"},
		{Name: "empty list", Value: []string{}, Expected: ""},
		{Name: "decoded list", Value: []any{"foo", "bar"}, Expected: "foobar"},
		{Name: "decoded list with number", Value: []any{"foo", 1.0}, Error: true},
		{Name: "int", Value: 1000, Expected: "1000"},
		{Name: "int64", Value: int64(1716000000000), Expected: "1716000000000"},
		{Name: "json number", Value: json.Number("1299"), Expected: "1299"},
		{Name: "integral float", Value: 1299.0, Expected: "1299"},
		{Name: "fractional float", Value: 12.5, Error: true},
		{Name: "float above int64 range", Value: 1e19, Error: true},
		{Name: "float at int64 upper bound", Value: 9223372036854775808.0, Error: true},
		{Name: "float below int64 range", Value: -1e19, Error: true},
		{Name: "float at int64 lower bound", Value: -9223372036854775808.0, Expected: "-9223372036854775808"},
		{Name: "NaN", Value: math.NaN(), Error: true},
		{Name: "map", Value: map[string]any{}, Error: true},
	}

	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := component.Render(tc.Value)
			if tc.Error {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.Expected, got)
		})
	}

	t.Run("Query form joins lists with spaces", func(t *testing.T) {
		got, err := component.RenderQuery([]string{"foo", "bar"})
		require.NoError(t, err)
		require.Equal(t, "foo bar", got)

		got, err = component.RenderQuery(true)
		require.NoError(t, err)
		require.Equal(t, "true", got)
	})
}

func TestResolve(t *testing.T) {
	mux := http.NewServeMux()
	var resolved map[string]any
	mux.HandleFunc("GET /user/{uuid}/feed", func(w http.ResponseWriter, r *http.Request) {
		ctx := component.WithRequestInfoFromHTTP(r.Context(), r, map[string]any{"hash": "bodyhash"})
		resolved = make(map[string]any)
		for _, comp := range []component.Identifier{component.UUID(), component.Timestamp(), component.Tags(), component.Hash()} {
			v, err := component.Resolve(ctx, comp)
			require.NoError(t, err)
			resolved[comp.Name()] = v
		}
		_, err := component.Resolve(ctx, component.PubKey())
		require.Error(t, err)
	})

	req := httptest.NewRequest(http.MethodGet, "/user/abc/feed?timestamp=1&tags=foo+bar&uuid=ignored", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "abc", resolved["uuid"], "path wildcard wins over query")
	require.Equal(t, "1", resolved["timestamp"])
	require.Equal(t, []string{"foo", "bar"}, resolved["tags"])
	require.Equal(t, "bodyhash", resolved["hash"])

	t.Run("Headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		req.Header.Set("x-pn-timestamp", "42")
		ctx := component.WithRequestInfoFromHTTP(context.Background(), req, nil)
		v, err := component.Resolve(ctx, component.Timestamp())
		require.NoError(t, err)
		require.Equal(t, "42", v)
	})

	t.Run("No request info", func(t *testing.T) {
		_, err := component.Resolve(context.Background(), component.UUID())
		require.Error(t, err)
	})
}
