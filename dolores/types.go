package dolores

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// User is a Dolores account.
type User struct {
	UUID string `json:"uuid"`
}

func (u *User) Validate() error {
	if len(u.UUID) != 36 {
		return fmt.Errorf("uuid %q is not 36 characters", u.UUID)
	}
	if _, err := uuid.Parse(u.UUID); err != nil {
		return fmt.Errorf("invalid uuid %q: %w", u.UUID, err)
	}
	return nil
}

// Video describes a short-form video in a feed.
type Video struct {
	UUID  string   `json:"uuid"`
	Title string   `json:"title"`
	Owner string   `json:"owner,omitempty"`
	Tags  []string `json:"tags"`
}

// Feed is the list of videos matching a tag query.
type Feed struct {
	Videos []Video `json:"videos"`
}

func (f *Feed) Validate() error {
	if f.Videos == nil {
		return errors.New(`missing "videos" member`)
	}
	return nil
}
