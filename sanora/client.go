// Package sanora is a client for the Sanora product and order service.
package sanora

import (
	"context"
	"io"
	"net/http"

	"github.com/allyabase/sessionless-go"
	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/sigbase"
)

// Client calls the Sanora service. It is safe for concurrent use.
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

// CreateUser registers the client's key.
func (c *Client) CreateUser(ctx context.Context) (*User, error) {
	var user User
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodPut,
		Path:      "user/create",
		Shape:     sigbase.Register,
		Fields:    map[string]any{},
		Placement: sessionlesshttp.InBody,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser reads the account for uuid.
func (c *Client) GetUser(ctx context.Context, uuid string) (*User, error) {
	if err := sessionless.Required("uuid", uuid); err != nil {
		return nil, err
	}

	var user User
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}",
		Shape:     sigbase.Identity,
		Fields:    map[string]any{"uuid": uuid},
		Placement: sessionlesshttp.InQuery,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddProduct creates or replaces the caller's product called title.
// price is in the smallest currency unit.
func (c *Client) AddProduct(ctx context.Context, uuid, title, description string, price int64) (*Product, error) {
	if err := sessionless.Required("uuid", uuid, "title", title); err != nil {
		return nil, err
	}

	var product Product
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method: http.MethodPut,
		Path:   "user/{uuid}/product/{title}",
		Shape:  sigbase.Product,
		Fields: map[string]any{
			"uuid":        uuid,
			"title":       title,
			"description": description,
			"price":       price,
		},
		Placement: sessionlesshttp.InBody,
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// PutArtifact uploads the downloadable artifact for a product.
func (c *Client) PutArtifact(ctx context.Context, uuid, title, filename string, r io.Reader) (*sessionlesshttp.Success, error) {
	return c.upload(ctx, "artifact", uuid, title, filename, r)
}

// PutImage uploads the display image for a product.
func (c *Client) PutImage(ctx context.Context, uuid, title, filename string, r io.Reader) (*sessionlesshttp.Success, error) {
	return c.upload(ctx, "image", uuid, title, filename, r)
}

func (c *Client) upload(ctx context.Context, kind, uuid, title, filename string, r io.Reader) (*sessionlesshttp.Success, error) {
	if err := sessionless.Required("uuid", uuid, "title", title, "filename", filename); err != nil {
		return nil, err
	}

	var out sessionlesshttp.Success
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodPut,
		Path:      "user/{uuid}/product/{title}/" + kind,
		Shape:     sigbase.Artifact,
		Fields:    map[string]any{"uuid": uuid, "title": title},
		Placement: sessionlesshttp.InHeader,
		Upload:    &sessionlesshttp.Upload{Field: kind, Filename: filename, Body: r},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProduct reads a single product. The request is not authenticated.
func (c *Client) GetProduct(ctx context.Context, uuid, title string) (*Product, error) {
	if err := sessionless.Required("uuid", uuid, "title", title); err != nil {
		return nil, err
	}

	var product Product
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method: http.MethodGet,
		Path:   "products/{uuid}/{title}",
		Fields: map[string]any{"uuid": uuid, "title": title},
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts reads every product of a user. The request is not
// authenticated.
func (c *Client) GetProducts(ctx context.Context, uuid string) (Products, error) {
	if err := sessionless.Required("uuid", uuid); err != nil {
		return nil, err
	}

	var products Products
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method: http.MethodGet,
		Path:   "products/{uuid}",
		Fields: map[string]any{"uuid": uuid},
	}, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// AddOrder records an order against the caller's account.
func (c *Client) AddOrder(ctx context.Context, uuid string, order Order) (*User, error) {
	if err := sessionless.Required("uuid", uuid, "productId", order.ProductID); err != nil {
		return nil, err
	}

	var user User
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodPut,
		Path:      "user/{uuid}/orders",
		Shape:     sigbase.Identity,
		Fields:    map[string]any{"uuid": uuid, "order": order},
		Placement: sessionlesshttp.InBody,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrders reads the orders recorded for productID.
func (c *Client) GetOrders(ctx context.Context, uuid, productID string) (*Orders, error) {
	if err := sessionless.Required("uuid", uuid, "productId", productID); err != nil {
		return nil, err
	}

	var orders Orders
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}/orders/{productId}",
		Shape:     sigbase.Identity,
		Fields:    map[string]any{"uuid": uuid, "productId": productID},
		Placement: sessionlesshttp.InQuery,
	}, &orders)
	if err != nil {
		return nil, err
	}
	return &orders, nil
}

// DeleteUser removes the account.
func (c *Client) DeleteUser(ctx context.Context, uuid string) (*sessionlesshttp.Success, error) {
	if err := sessionless.Required("uuid", uuid); err != nil {
		return nil, err
	}

	var out sessionlesshttp.Success
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodDelete,
		Path:      "user/{uuid}/delete",
		Shape:     sigbase.Delete,
		Fields:    map[string]any{"uuid": uuid},
		Placement: sessionlesshttp.InBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
