package sigbase

import (
	"context"
	"fmt"
	"strings"

	"github.com/allyabase/sessionless-go/component"
)

// MessageBuilder constructs the canonical message for a Shape.
//
//	msg, err := sigbase.Message(sigbase.Read).
//	  Timestamp(ts).
//	  Set("uuid", uuid).
//	  Set("hash", hash).
//	  Build()
type MessageBuilder struct {
	shape  *Shape
	values map[string]any

	err error
}

func Message(shape *Shape) *MessageBuilder {
	if shape == nil {
		return &MessageBuilder{err: fmt.Errorf("shape is required")}
	}
	return &MessageBuilder{
		shape:  shape,
		values: make(map[string]any),
	}
}

// Timestamp sets the timestamp component
func (mb *MessageBuilder) Timestamp(ts string) *MessageBuilder {
	return mb.Set(component.Timestamp().Name(), ts)
}

// Set sets the value of a single component
func (mb *MessageBuilder) Set(name string, value any) *MessageBuilder {
	if mb.err != nil {
		return mb
	}
	mb.values[name] = value
	return mb
}

// Values sets multiple component values. Names the shape does not cover
// are ignored by Build.
func (mb *MessageBuilder) Values(values map[string]any) *MessageBuilder {
	if mb.err != nil {
		return mb
	}
	for k, v := range values {
		mb.values[k] = v
	}
	return mb
}

// Resolve fills every covered component from the request information
// stored in ctx. See component.Resolve.
func (mb *MessageBuilder) Resolve(ctx context.Context) *MessageBuilder {
	if mb.err != nil {
		return mb
	}
	for _, comp := range mb.shape.components {
		v, err := component.Resolve(ctx, comp)
		if err != nil {
			mb.err = fmt.Errorf("failed to resolve component %q: %w", comp.Name(), err)
			return mb
		}
		mb.values[comp.Name()] = v
	}
	return mb
}

// Build concatenates the covered component values, in shape order, with
// no separators.
func (mb *MessageBuilder) Build() (string, error) {
	if mb.err != nil {
		return "", mb.err
	}

	if len(mb.shape.components) == 0 {
		return "", fmt.Errorf("at least one component is required")
	}

	var output strings.Builder
	seenComponents := make(map[string]struct{})
	for _, comp := range mb.shape.components {
		if _, ok := seenComponents[comp.Name()]; ok {
			return "", fmt.Errorf("duplicate component identifier: %s", comp.Name())
		}
		seenComponents[comp.Name()] = struct{}{}

		value, ok := mb.values[comp.Name()]
		if !ok {
			return "", fmt.Errorf("missing value for component %q", comp.Name())
		}
		rendered, err := component.Render(value)
		if err != nil {
			return "", fmt.Errorf("failed to render component %q: %w", comp.Name(), err)
		}
		output.WriteString(rendered)
	}
	return output.String(), nil
}
