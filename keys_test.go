package sessionless_test

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/allyabase/sessionless-go"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

const (
	// private key 1 maps to the curve generator
	onePrivateKey = "0000000000000000000000000000000000000000000000000000000000000001"
	onePubKey     = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	curveOrder    = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"
)

func TestKeccak256(t *testing.T) {
	require.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(sessionless.Keccak256(nil)),
	)
}

func TestGenerateKey(t *testing.T) {
	key, err := sessionless.GenerateKey()
	require.NoError(t, err)

	pub := key.PublicKeyHex()
	require.Len(t, pub, 66)
	require.True(t, strings.HasPrefix(pub, "02") || strings.HasPrefix(pub, "03"))
	require.Equal(t, pub, key.PublicKeyHex(), "public key encoding is stable")

	parsed, err := sessionless.ParsePrivateKey(key.PrivateKeyHex())
	require.NoError(t, err)
	require.Equal(t, pub, parsed.PublicKeyHex())

	require.NotContains(t, key.String(), key.PrivateKeyHex())
}

func TestParsePrivateKey(t *testing.T) {
	t.Run("Known key", func(t *testing.T) {
		key, err := sessionless.ParsePrivateKey(onePrivateKey)
		require.NoError(t, err)
		require.Equal(t, onePubKey, key.PublicKeyHex())
		require.Equal(t, onePrivateKey, key.PrivateKeyHex())
	})

	testcases := []struct {
		Name  string
		Input string
	}{
		{Name: "Empty", Input: ""},
		{Name: "Not hex", Input: strings.Repeat("zz", 32)},
		{Name: "Too short", Input: strings.Repeat("01", 31)},
		{Name: "Too long", Input: strings.Repeat("01", 33)},
		{Name: "Zero", Input: strings.Repeat("00", 32)},
		{Name: "Curve order", Input: curveOrder},
		{Name: "Above curve order", Input: strings.Repeat("ff", 32)},
	}
	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := sessionless.ParsePrivateKey(tc.Input)
			require.Error(t, err)
			var keyErr *sessionless.KeyError
			require.True(t, errors.As(err, &keyErr), "expected KeyError, got %T", err)
		})
	}
}

func TestSignVerify(t *testing.T) {
	key, err := sessionless.GenerateKey()
	require.NoError(t, err)

	message := []byte("1716000000000" + key.PublicKeyHex() + "hereisanexampleofahash")
	sig, err := key.Sign(message)
	require.NoError(t, err)
	require.Len(t, sig.String(), sessionless.SignatureLen)
	require.Equal(t, strings.ToLower(sig.String()), sig.String())

	require.NoError(t, sessionless.Verify(key.PublicKeyHex(), message, sig.String()))

	t.Run("Deterministic", func(t *testing.T) {
		again, err := key.Sign(message)
		require.NoError(t, err)
		require.Equal(t, sig, again)
	})

	t.Run("Tampered message", func(t *testing.T) {
		tampered := append([]byte(nil), message...)
		tampered[len(tampered)-1] ^= 0x01
		err := sessionless.Verify(key.PublicKeyHex(), tampered, sig.String())
		require.ErrorIs(t, err, sessionless.ErrInvalidSignature)
	})

	t.Run("Wrong key", func(t *testing.T) {
		other, err := sessionless.GenerateKey()
		require.NoError(t, err)
		err = sessionless.Verify(other.PublicKeyHex(), message, sig.String())
		require.ErrorIs(t, err, sessionless.ErrInvalidSignature)
	})

	t.Run("Malformed signatures", func(t *testing.T) {
		for _, bad := range []string{
			"",
			sig.String()[:126],
			sig.String() + "00",
			strings.Repeat("zz", 64),
			strings.Repeat("00", 64),
		} {
			err := sessionless.Verify(key.PublicKeyHex(), message, bad)
			require.ErrorIs(t, err, sessionless.ErrInvalidSignature, "signature %q", bad)
		}
	})

	t.Run("High-S signature", func(t *testing.T) {
		b, err := hex.DecodeString(sig.String())
		require.NoError(t, err)

		var s secp256k1.ModNScalar
		s.SetByteSlice(b[32:])
		s.Negate()
		sb := s.Bytes()
		copy(b[32:], sb[:])

		err = sessionless.Verify(key.PublicKeyHex(), message, hex.EncodeToString(b))
		require.ErrorIs(t, err, sessionless.ErrInvalidSignature)
	})

	t.Run("Malformed public key", func(t *testing.T) {
		err := sessionless.Verify("not-a-key", message, sig.String())
		var keyErr *sessionless.KeyError
		require.True(t, errors.As(err, &keyErr))

		err = sessionless.Verify(strings.Repeat("05", 33), message, sig.String())
		require.True(t, errors.As(err, &keyErr))
	})
}

func TestParsePublicKey(t *testing.T) {
	key, err := sessionless.ParsePublicKey(onePubKey)
	require.NoError(t, err)
	require.Equal(t, onePubKey, key.Hex())

	uncompressed := "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
		"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"
	key, err = sessionless.ParsePublicKey(uncompressed)
	require.NoError(t, err)
	require.Equal(t, onePubKey, key.Hex())
}
