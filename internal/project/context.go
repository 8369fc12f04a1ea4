package project

import (
	"context"
	"strings"

	"storyreel/internal/fieldstore"
)

// Context is the active project pointer, stored in the project field store.
type Context struct {
	field fieldstore.Field[string]
}

// NewContext wraps the field that holds the active directory name.
func NewContext(field fieldstore.Field[string]) *Context {
	return &Context{field: field}
}

// Active returns the active project name, blank when none is set.
func (c *Context) Active(ctx context.Context) (string, error) {
	name, err := c.field.Get(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// Activate makes name the active project.
func (c *Context) Activate(ctx context.Context, name string) error {
	return c.field.Set(ctx, strings.TrimSpace(name))
}

// Clear unsets the active project.
func (c *Context) Clear(ctx context.Context) error {
	return c.field.Set(ctx, "")
}
