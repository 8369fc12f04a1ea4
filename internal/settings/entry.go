package settings

import (
	"context"
	"fmt"
)

// Entry is a field addressed by name and read or written as text.
type Entry interface {
	Name() string
	GetText(ctx context.Context) (string, error)
	SetText(ctx context.Context, text string) error
	Reset(ctx context.Context) error
}

type scalar[T any] interface {
	Name() string
	Get(ctx context.Context) (T, error)
	Set(ctx context.Context, value T) error
	Encode(value T) string
	Parse(raw string) (T, error)
	Reset(ctx context.Context) error
}

type textEntry[T any] struct {
	field scalar[T]
}

func (e textEntry[T]) Name() string { return e.field.Name() }

func (e textEntry[T]) GetText(ctx context.Context) (string, error) {
	value, err := e.field.Get(ctx)
	if err != nil {
		return "", err
	}
	return e.field.Encode(value), nil
}

func (e textEntry[T]) SetText(ctx context.Context, text string) error {
	value, err := e.field.Parse(text)
	if err != nil {
		return fmt.Errorf("parse %s: %w", e.field.Name(), err)
	}
	return e.field.Set(ctx, value)
}

func (e textEntry[T]) Reset(ctx context.Context) error { return e.field.Reset(ctx) }
