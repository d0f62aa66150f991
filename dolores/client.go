// Package dolores is a client for the Dolores short-form video service.
package dolores

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/allyabase/sessionless-go"
	sessionlesshttp "github.com/allyabase/sessionless-go/http"
	"github.com/allyabase/sessionless-go/sigbase"
)

// Client calls the Dolores service. It is safe for concurrent use.
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

// PutVideo uploads a short-form video read from r.
func (c *Client) PutVideo(ctx context.Context, uuid, title, filename string, r io.Reader) (*sessionlesshttp.Success, error) {
	if err := sessionless.Required("uuid", uuid, "title", title, "filename", filename); err != nil {
		return nil, err
	}

	var out sessionlesshttp.Success
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodPut,
		Path:      "user/{uuid}/short-form/video",
		Shape:     sigbase.Identity,
		Fields:    map[string]any{"uuid": uuid, "title": title},
		Placement: sessionlesshttp.InHeader,
		Upload:    &sessionlesshttp.Upload{Field: "video", Filename: filename, Body: r},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFeed returns the videos carrying any of tags.
func (c *Client) GetFeed(ctx context.Context, uuid string, tags []string) (*Feed, error) {
	if err := sessionless.Required("uuid", uuid); err != nil {
		return nil, err
	}
	if err := checkFeedTags(tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}

	var feed Feed
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodGet,
		Path:      "user/{uuid}/feed",
		Shape:     sigbase.List,
		Fields:    map[string]any{"uuid": uuid, "tags": tags},
		Placement: sessionlesshttp.InQuery,
	}, &feed)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// checkFeedTags rejects tags that would not survive the space-joined
// query, since the server splits the parameter on whitespace before
// rebuilding the signed message.
func checkFeedTags(tags []string) error {
	for _, tag := range tags {
		if tag == "" {
			return sessionless.InvalidField("tags", "empty tag")
		}
		if strings.ContainsFunc(tag, unicode.IsSpace) {
			return sessionless.InvalidField("tags", "tag "+strconv.Quote(tag)+" contains whitespace")
		}
	}
	return nil
}

// TagVideo replaces the tags of one of the caller's videos.
func (c *Client) TagVideo(ctx context.Context, uuid, videoUUID string, tags []string) (*sessionlesshttp.Success, error) {
	if err := sessionless.Required("uuid", uuid, "videoUUID", videoUUID); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}

	var out sessionlesshttp.Success
	err := c.client.Do(ctx, &sessionlesshttp.Request{
		Method:    http.MethodPut,
		Path:      "user/{uuid}/video/{videoUUID}/tags",
		Shape:     sigbase.Tag,
		Fields:    map[string]any{"uuid": uuid, "videoUUID": videoUUID, "tags": tags},
		Placement: sessionlesshttp.InBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes the account and its videos.
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
