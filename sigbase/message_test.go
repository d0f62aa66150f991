package sigbase_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/allyabase/sessionless-go/component"
	"github.com/allyabase/sessionless-go/sigbase"
	"github.com/stretchr/testify/require"
)

const (
	testTimestamp = "1716000000000"
	testPubKey    = "02a34b99f22c790c4e36b2b3c2c35a36db06226e41c692fc82b8b56ac1c540c5bd"
	testUUID      = "8f9a1c3e-2b4d-4f6a-9c8e-1a2b3c4d5e6f"
	testHash      = "hereisanexampleofahash"
)

func TestMessageBuilder(t *testing.T) {
	testcases := []struct {
		Name     string
		Shape    *sigbase.Shape
		Values   map[string]any
		Expected string
	}{
		{
			Name:     "Create",
			Shape:    sigbase.Create,
			Values:   map[string]any{"pubKey": testPubKey, "hash": testHash},
			Expected: testTimestamp + testPubKey + testHash,
		},
		{
			Name:     "Register",
			Shape:    sigbase.Register,
			Values:   map[string]any{"pubKey": testPubKey},
			Expected: testTimestamp + testPubKey,
		},
		{
			Name:     "Update",
			Shape:    sigbase.Update,
			Values:   map[string]any{"uuid": testUUID, "hash": testHash},
			Expected: testTimestamp + testUUID + testHash,
		},
		{
			Name:     "Read",
			Shape:    sigbase.Read,
			Values:   map[string]any{"uuid": testUUID, "hash": testHash},
			Expected: testTimestamp + testUUID + testHash,
		},
		{
			Name:     "ReadAs ignores the unsigned pubKey",
			Shape:    sigbase.ReadAs,
			Values:   map[string]any{"uuid": testUUID, "hash": testHash, "pubKey": testPubKey},
			Expected: testTimestamp + testUUID + testHash,
		},
		{
			Name:     "Delete",
			Shape:    sigbase.Delete,
			Values:   map[string]any{"uuid": testUUID, "hash": testHash},
			Expected: testTimestamp + testUUID,
		},
		{
			Name:     "List",
			Shape:    sigbase.List,
			Values:   map[string]any{"uuid": testUUID, "tags": []string{"foo", "bar"}},
			Expected: testTimestamp + testUUID + "foobar",
		},
		{
			Name:     "Tag",
			Shape:    sigbase.Tag,
			Values:   map[string]any{"uuid": testUUID, "videoUUID": "v1", "tags": []string{"a", "b"}},
			Expected: testTimestamp + testUUID + "v1" + "ab",
		},
		{
			Name:     "Product",
			Shape:    sigbase.Product,
			Values:   map[string]any{"uuid": testUUID, "title": "My Book", "description": "A book", "price": 1299},
			Expected: testTimestamp + testUUID + "My Book" + "A book" + "1299",
		},
		{
			Name:     "Artifact",
			Shape:    sigbase.Artifact,
			Values:   map[string]any{"uuid": testUUID, "title": "My Book"},
			Expected: testTimestamp + testUUID + "My Book",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			msg, err := sigbase.Message(tc.Shape).
				Timestamp(testTimestamp).
				Values(tc.Values).
				Build()
			require.NoError(t, err)
			require.Equal(t, tc.Expected, msg)
		})
	}

	t.Run("Changing one field changes the message", func(t *testing.T) {
		base, err := sigbase.Message(sigbase.Update).Timestamp(testTimestamp).Set("uuid", testUUID).Set("hash", testHash).Build()
		require.NoError(t, err)
		changed, err := sigbase.Message(sigbase.Update).Timestamp(testTimestamp).Set("uuid", testUUID).Set("hash", testHash+"x").Build()
		require.NoError(t, err)
		require.NotEqual(t, base, changed)
	})

	t.Run("Error cases", func(t *testing.T) {
		_, err := sigbase.Message(nil).Build()
		require.Error(t, err)
		require.Contains(t, err.Error(), "shape is required")

		_, err = sigbase.Message(sigbase.Read).Timestamp(testTimestamp).Set("uuid", testUUID).Build()
		require.Error(t, err)
		require.Contains(t, err.Error(), `"hash"`)

		_, err = sigbase.Message(sigbase.NewShape("empty")).Build()
		require.Error(t, err)

		dup := sigbase.NewShape("dup", component.Timestamp(), component.Timestamp())
		_, err = sigbase.Message(dup).Timestamp(testTimestamp).Build()
		require.Error(t, err)
		require.Contains(t, err.Error(), "duplicate")

		_, err = sigbase.Message(sigbase.Read).Timestamp(testTimestamp).Set("uuid", testUUID).Set("hash", map[string]any{}).Build()
		require.Error(t, err)
	})
}

func TestShape(t *testing.T) {
	require.True(t, sigbase.Create.Covers("pubKey"))
	require.False(t, sigbase.ReadAs.Covers("pubKey"))
	require.Equal(t, "read-as", sigbase.ReadAs.Label())

	comps := sigbase.Delete.Components()
	require.Len(t, comps, 2)
	comps[0] = component.New("mutated")
	require.Equal(t, "timestamp", sigbase.Delete.Components()[0].Name())
}

func TestResolveFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/user/"+testUUID+"/bdo?timestamp="+testTimestamp+"&hash="+testHash+"&uuid="+testUUID, nil)
	ctx := component.WithRequestInfoFromHTTP(context.Background(), req, nil)

	msg, err := sigbase.Message(sigbase.Read).Resolve(ctx).Build()
	require.NoError(t, err)
	require.Equal(t, testTimestamp+testUUID+testHash, msg)

	_, err = sigbase.Message(sigbase.Create).Resolve(ctx).Build()
	require.Error(t, err, "pubKey is absent from the request")
}
