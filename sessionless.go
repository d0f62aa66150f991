// Package sessionless implements stateless public-key request
// authentication. Every request carries a millisecond timestamp and a
// secp256k1 signature over a canonical message built from the timestamp
// and the operation's fields. A server holding the caller's public key
// can rebuild the message and verify it without any session state.
//
// Keys are secp256k1. Public keys travel as hex encoded compressed SEC1
// points. Signatures are computed over keccak256 of the UTF-8 message
// and travel as 128 hex characters (r || s, low-S).
//
//	key, err := sessionless.GenerateKey()
//	auth, err := sessionless.NewAuthenticator(key)
//	env, err := auth.Authenticate(sigbase.Read, map[string]any{
//	  "uuid": uuid,
//	  "hash": hash,
//	})
//	q := env.Query("uuid")
//
// The typed clients in the bdo, dolores and sanora packages wrap this
// package together with the http package.
package sessionless
