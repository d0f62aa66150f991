// Package http carries sessionless authentication over HTTP.
//
// Client Components:
//   - Client: signs requests for a Shape and sends them through a Doer
//   - Decode: classifies responses into typed results and errors
//
// Server Components:
//   - Verifier: rebuilds the canonical message of an incoming request and
//     checks its signature and freshness
//   - Wrap: runs a Verifier in front of an existing handler
//
// # Basic Client Usage
//
//	client, err := http.NewClient("https://example.com/bdo/",
//		http.WithKeyPair(key),
//	)
//
//	var user struct{ UUID string `json:"uuid"` }
//	err = client.Do(ctx, &http.Request{
//		Method:    "GET",
//		Path:      "user/{uuid}/bdo",
//		Shape:     sigbase.Read,
//		Fields:    map[string]any{"uuid": uuid, "hash": hash},
//		Placement: http.InQuery,
//	}, &user)
//
// # Basic Server Usage
//
//	verifier := http.NewVerifier(sigbase.Read, resolver)
//	mux.Handle("GET /user/{uuid}/bdo", http.Wrap(getBDO, http.WithVerifier(verifier)))
//
// Handlers behind Wrap find the verified uuid, public key and decoded
// body through VerifiedRequestFromContext.
package http
