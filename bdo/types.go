package bdo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// User is returned by create, update and read operations.
type User struct {
	UUID string          `json:"uuid"`
	BDO  json.RawMessage `json:"bdo,omitempty"`
}

func (u *User) Validate() error {
	return validateUUID(u.UUID)
}

// Decode unmarshals the stored object into dst.
func (u *User) Decode(dst any) error {
	if len(u.BDO) == 0 {
		return errors.New("no bdo in response")
	}
	return json.Unmarshal(u.BDO, dst)
}

// Bases is the caller's saved set of bases.
type Bases struct {
	Bases json.RawMessage `json:"bases"`
}

func (b *Bases) Validate() error {
	if len(b.Bases) == 0 {
		return errors.New(`missing "bases" member`)
	}
	return nil
}

// Spellbook is an opaque spellbook object. Every spellbook carries a
// spellbookName member.
type Spellbook map[string]any

// Name returns the spellbookName member.
func (s Spellbook) Name() string {
	name, _ := s["spellbookName"].(string)
	return name
}

// Spellbooks is the caller's saved spellbooks.
type Spellbooks struct {
	Spellbooks []Spellbook `json:"spellbooks"`
}

func (s *Spellbooks) Validate() error {
	if s.Spellbooks == nil {
		return errors.New(`missing "spellbooks" member`)
	}
	for i, sb := range s.Spellbooks {
		if sb.Name() == "" {
			return fmt.Errorf("spellbook %d has no spellbookName", i)
		}
	}
	return nil
}

func validateUUID(s string) error {
	if len(s) != 36 {
		return fmt.Errorf("uuid %q is not 36 characters", s)
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return nil
}
