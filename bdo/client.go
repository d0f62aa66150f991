// Package bdo is a client for the BDO service, which stores opaque JSON
// objects ("big dumb objects") per user and content hash.
package bdo

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/allyabase/sessionless-go"
	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/sigbase"
)

// Client calls the BDO service. It is safe for concurrent use.
type Client struct {
	client *sessionlesshttp.Client
}

// New creates a Client for the service rooted at baseURL.
func New(baseURL string, options ...sessionlesshttp.ClientOption) (*Client, error) {
	c, err := sessionlesshttp.NewClient(baseURL, options...)
	if err != nil {
		return nil, err
	}
	return &Client{client: c}, nil
}

// KeyPair returns the key the client signs with.
func (c *Client) KeyPair() *sessionless.KeyPair {
	return c.client.KeyPair()
}

// CreateUser registers the client's key under hash and stores content.
func (c *Client) CreateUser(ctx context.Context, hash string, content any, public bool) (*User, error) {
	if err := sessionless.Required("hash", hash); err != nil {
		return nil, err
	}

	var user User
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method: http.MethodPut,
		Path:   "user/create",
		Shape:  sigbase.Create,
		Fields: map[string]any{
			"hash":   hash,
			"bdo":    content,
			"public": public,
		},
		Placement: sessionlesshttp.InBody,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateBDO replaces the object stored for uuid and hash.
func (c *Client) UpdateBDO(ctx context.Context, uuid, hash string, content any, public bool) (*User, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash); err != nil {
		return nil, err
	}

	var user User
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method: http.MethodPut,
		Path:   "user/{uuid}/bdo",
		Shape:  sigbase.Update,
		Fields: map[string]any{
			"uuid":   uuid,
			"hash":   hash,
			"bdo":    content,
			"pub":    public,
			"pubKey": c.KeyPair().PublicKeyHex(),
		},
		Placement: sessionlesshttp.InBody,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBDO reads the caller's own object for hash.
func (c *Client) GetBDO(ctx context.Context, uuid, hash string) (*User, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash); err != nil {
		return nil, err
	}

	var user User
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}/bdo",
		Shape:     sigbase.Read,
		Fields:    map[string]any{"uuid": uuid, "hash": hash},
		Placement: sessionlesshttp.InQuery,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPublicBDO reads the public object another user stored for hash.
// uuid is the caller's own uuid, pubKey identifies the owner.
func (c *Client) GetPublicBDO(ctx context.Context, uuid, hash, pubKey string) (*User, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash, "pubKey", pubKey); err != nil {
		return nil, err
	}

	var user User
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}/bdo",
		Shape:     sigbase.ReadAs,
		Fields:    map[string]any{"uuid": uuid, "hash": hash, "pubKey": pubKey},
		Placement: sessionlesshttp.InQuery,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBases reads the caller's saved bases.
func (c *Client) GetBases(ctx context.Context, uuid, hash string) (*Bases, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash); err != nil {
		return nil, err
	}

	var bases Bases
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}/bases",
		Shape:     sigbase.Read,
		Fields:    map[string]any{"uuid": uuid, "hash": hash},
		Placement: sessionlesshttp.InQuery,
	}, &bases)
	if err != nil {
		return nil, err
	}
	return &bases, nil
}

// SaveBases replaces the caller's saved bases.
func (c *Client) SaveBases(ctx context.Context, uuid, hash string, bases any) (*Bases, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash); err != nil {
		return nil, err
	}

	var out Bases
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodPut,
		Path:      "user/{uuid}/bases",
		Shape:     sigbase.Update,
		Fields:    map[string]any{"uuid": uuid, "hash": hash, "bases": bases},
		Placement: sessionlesshttp.InBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSpellbooks reads the caller's spellbooks.
func (c *Client) GetSpellbooks(ctx context.Context, uuid, hash string) (*Spellbooks, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash); err != nil {
		return nil, err
	}

	var out Spellbooks
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}/spellbooks",
		Shape:     sigbase.Read,
		Fields:    map[string]any{"uuid": uuid, "hash": hash},
		Placement: sessionlesshttp.InQuery,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PutSpellbook adds or replaces the spellbook with the same
// spellbookName.
func (c *Client) PutSpellbook(ctx context.Context, uuid, hash string, spellbook Spellbook) (*Spellbooks, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash, "spellbookName", spellbook.Name()); err != nil {
		return nil, err
	}

	var out Spellbooks
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodPut,
		Path:      "user/{uuid}/spellbooks",
		Shape:     sigbase.Update,
		Fields:    map[string]any{"uuid": uuid, "hash": hash, "spellbook": spellbook},
		Placement: sessionlesshttp.InBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Teleport asks the service to fetch target and return the teleportable
// content it finds there.
func (c *Client) Teleport(ctx context.Context, uuid, hash, target string) (json.RawMessage, error) {
	if err := sessionless.Required("uuid", uuid, "hash", hash, "url", target); err != nil {
		return nil, err
	}

	var out json.RawMessage
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}/teleport",
		Shape:     sigbase.Read,
		Fields:    map[string]any{"uuid": uuid, "hash": hash, "url": target},
		Placement: sessionlesshttp.InQuery,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUser removes the user and everything stored for it.
func (c *Client) DeleteUser(ctx context.Context, uuid, hash string) (*sessionlesshttp.Success, error) {
	if err := sessionless.Required("uuid", uuid); err != nil {
		return nil, err
	}

	var out sessionlesshttp.Success
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodDelete,
		Path:      "user/{uuid}/delete",
		Shape:     sigbase.Delete,
		Fields:    map[string]any{"uuid": uuid, "hash": hash},
		Placement: sessionlesshttp.InBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
