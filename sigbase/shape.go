package sigbase

import (
	"github.com/allyabase/sessionless-go/component"
)

// Shape names an operation family and the ordered fields its canonical
// message covers.
type Shape struct {
	label      string
	components []component.Identifier
}

// NewShape creates a Shape. The first component should be
// component.Timestamp().
func NewShape(label string, components ...component.Identifier) *Shape {
	return &Shape{
		label:      label,
		components: append([]component.Identifier(nil), components...),
	}
}

func (s *Shape) Label() string {
	return s.label
}

// Components returns a copy of the covered components in message order.
func (s *Shape) Components() []component.Identifier {
	return append([]component.Identifier(nil), s.components...)
}

// Covers reports whether the shape includes a component named name.
func (s *Shape) Covers(name string) bool {
	for _, comp := range s.components {
		if comp.Name() == name {
			return true
		}
	}
	return false
}

func (s *Shape) String() string {
	return s.label
}

var (
	// Create covers timestamp + pubKey + hash.
	Create = NewShape("create", component.Timestamp(), component.PubKey(), component.Hash())

	// Register covers timestamp + pubKey.
	Register = NewShape("register", component.Timestamp(), component.PubKey())

	// Update covers timestamp + uuid + hash.
	Update = NewShape("update", component.Timestamp(), component.UUID(), component.Hash())

	// Read covers timestamp + uuid + hash.
	Read = NewShape("read", component.Timestamp(), component.UUID(), component.Hash())

	// ReadAs covers timestamp + uuid + hash. The owner's pubKey travels
	// with the request unsigned.
	ReadAs = NewShape("read-as", component.Timestamp(), component.UUID(), component.Hash())

	// Delete covers timestamp + uuid.
	Delete = NewShape("delete", component.Timestamp(), component.UUID())

	// Identity covers timestamp + uuid.
	Identity = NewShape("identity", component.Timestamp(), component.UUID())

	// List covers timestamp + uuid + tags.
	List = NewShape("list", component.Timestamp(), component.UUID(), component.Tags())

	// Tag covers timestamp + uuid + videoUUID + tags.
	Tag = NewShape("tag", component.Timestamp(), component.UUID(), component.New("videoUUID"), component.Tags())

	// Product covers timestamp + uuid + title + description + price.
	Product = NewShape("product", component.Timestamp(), component.UUID(), component.New("title"), component.New("description"), component.New("price"))

	// Artifact covers timestamp + uuid + title.
	Artifact = NewShape("artifact", component.Timestamp(), component.UUID(), component.New("title"))
)
