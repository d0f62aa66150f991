package component

import (
	"github.com/lestrrat-go/blackmagic"
)

// Parameter names understood by this package.
const (
	// ParamList marks a component whose value is a list of strings. When
	// such a value arrives as a single string (a query parameter) it is
	// split on whitespace before rendering.
	ParamList = "list"
)

var (
	fieldTimestamp = New("timestamp")
	fieldPubKey    = New("pubKey")
	fieldUUID      = New("uuid")
	fieldHash      = New("hash")
	fieldTags      = New("tags").WithParameter(ParamList, true)
)

func Timestamp() Identifier {
	return fieldTimestamp
}

func PubKey() Identifier {
	return fieldPubKey
}

func UUID() Identifier {
	return fieldUUID
}

func Hash() Identifier {
	return fieldHash
}

func Tags() Identifier {
	return fieldTags
}

// Identifier names one field of a canonical message, with optional
// parameters that control how its value is resolved.
type Identifier struct {
	name       string
	parameters map[string]any
}

// New creates a new Identifier with the given name
func New(name string) Identifier {
	return Identifier{
		name:       name,
		parameters: make(map[string]any),
	}
}

func (c Identifier) Name() string {
	return c.name
}

func (c Identifier) Parameters() []string {
	keys := make([]string, 0, len(c.parameters))
	for k := range c.parameters {
		keys = append(keys, k)
	}
	return keys
}

// WithParameter returns a copy of the component with the parameter added.
func (c Identifier) WithParameter(key string, value any) Identifier {
	params := make(map[string]any, len(c.parameters)+1)
	for k, v := range c.parameters {
		params[k] = v
	}
	params[key] = value
	c.parameters = params
	return c
}

// HasParameter checks if the component has a specific parameter
func (c Identifier) HasParameter(key string) bool {
	_, exists := c.parameters[key]
	return exists
}

// GetParameter gets a parameter value
func (c Identifier) GetParameter(key string, dst any) error {
	return blackmagic.AssignIfCompatible(dst, c.parameters[key])
}

// IsList reports whether the component carries a list value.
func (c Identifier) IsList() bool {
	var list bool
	if err := c.GetParameter(ParamList, &list); err != nil {
		return false
	}
	return list
}

func (c Identifier) String() string {
	return c.name
}
