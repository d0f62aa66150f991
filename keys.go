package sessionless

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// SignatureLen is the length of an encoded signature in hex characters.
const SignatureLen = 128

// Signature is the hex encoded compact form (r || s) of a secp256k1
// ECDSA signature.
type Signature string

func (s Signature) String() string {
	return string(s)
}

// KeyPair holds a secp256k1 private key and its public key. A KeyPair is
// immutable and safe for concurrent use.
type KeyPair struct {
	priv   *secp256k1.PrivateKey
	pubHex string
}

// GenerateKey creates a new KeyPair using crypto/rand.
func GenerateKey() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, &KeyError{Op: "generate", Err: err}
	}
	return newKeyPair(priv), nil
}

// ParsePrivateKey creates a KeyPair from a 32 byte hex encoded private key.
func ParsePrivateKey(s string) (*KeyPair, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &KeyError{Op: "parse private key", Err: err}
	}
	if len(b) != secp256k1.PrivKeyBytesLen {
		return nil, &KeyError{Op: "parse private key", Err: fmt.Errorf("expected %d bytes, got %d", secp256k1.PrivKeyBytesLen, len(b))}
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow {
		return nil, &KeyError{Op: "parse private key", Err: errors.New("scalar is not below the curve order")}
	}
	if scalar.IsZero() {
		return nil, &KeyError{Op: "parse private key", Err: errors.New("scalar is zero")}
	}
	return newKeyPair(secp256k1.NewPrivateKey(&scalar)), nil
}

func newKeyPair(priv *secp256k1.PrivateKey) *KeyPair {
	return &KeyPair{
		priv:   priv,
		pubHex: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
	}
}

// PublicKeyHex returns the compressed public key as lowercase hex.
func (k *KeyPair) PublicKeyHex() string {
	return k.pubHex
}

// PrivateKeyHex returns the private key as lowercase hex. Only key
// persistence should need this.
func (k *KeyPair) PrivateKeyHex() string {
	b := k.priv.Key.Bytes()
	return hex.EncodeToString(b[:])
}

// Sign signs keccak256(message) and returns the low-S compact signature.
func (k *KeyPair) Sign(message []byte) (Signature, error) {
	if k == nil || k.priv == nil {
		return "", &KeyError{Op: "sign", Err: errors.New("key pair is not initialized")}
	}

	sig := ecdsa.Sign(k.priv, Keccak256(message))
	r, s := sig.R(), sig.S()
	rb, sb := r.Bytes(), s.Bytes()

	buf := make([]byte, 0, 64)
	buf = append(buf, rb[:]...)
	buf = append(buf, sb[:]...)
	return Signature(hex.EncodeToString(buf)), nil
}

// GoString keeps the private key out of %#v output.
func (k *KeyPair) GoString() string {
	return fmt.Sprintf("sessionless.KeyPair{pubKey: %q}", k.pubHex)
}

func (k *KeyPair) String() string {
	return k.pubHex
}

// PublicKey is a parsed secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// ParsePublicKey parses a hex encoded SEC1 public key. Both compressed
// and uncompressed encodings are accepted.
func ParsePublicKey(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &KeyError{Op: "parse public key", Err: err}
	}
	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, &KeyError{Op: "parse public key", Err: err}
	}
	return &PublicKey{key: key}, nil
}

// Hex returns the compressed public key as lowercase hex.
func (p *PublicKey) Hex() string {
	return hex.EncodeToString(p.key.SerializeCompressed())
}

// Verify checks a signature produced by KeyPair.Sign. High-S signatures
// are rejected.
func (p *PublicKey) Verify(message []byte, sig string) error {
	if len(sig) != SignatureLen {
		return fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidSignature, SignatureLen, len(sig))
	}
	b, err := hex.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(b[:32]); overflow || r.IsZero() {
		return fmt.Errorf("%w: r is out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(b[32:]); overflow || s.IsZero() {
		return fmt.Errorf("%w: s is out of range", ErrInvalidSignature)
	}
	if s.IsOverHalfOrder() {
		return fmt.Errorf("%w: s is not normalized", ErrInvalidSignature)
	}

	if !ecdsa.NewSignature(&r, &s).Verify(Keccak256(message), p.key) {
		return ErrInvalidSignature
	}
	return nil
}

// Verify checks sig over message against a hex encoded public key.
func Verify(pubKey string, message []byte, sig string) error {
	key, err := ParsePublicKey(pubKey)
	if err != nil {
		return err
	}
	return key.Verify(message, sig)
}

// Keccak256 returns the legacy Keccak-256 digest of data.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
