package fieldstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrClosed is returned by backends after Close.
var ErrClosed = errors.New("field backend closed")

// Field is a get/set accessor for one logical field or field group.
type Field[T any] interface {
	Get(ctx context.Context) (T, error)
	Set(ctx context.Context, value T) error
}

// Backend stores string values under (store, key) pairs.
type Backend interface {
	Get(ctx context.Context, store, key string) (string, bool, error)
	Set(ctx context.Context, store, key, value string) error
	// SetMany commits every value atomically.
	SetMany(ctx context.Context, store string, values map[string]string) error
	Delete(ctx context.Context, store, key string) error
	Keys(ctx context.Context, store string) ([]string, error)
}

type codec[T any] struct {
	encode func(T) string
	decode func(string) (T, error)
}

// Scalar is a Field backed by a single backend key.
type Scalar[T any] struct {
	backend Backend
	store   string
	key     string
	def     T
	codec   codec[T]
}

func newScalar[T any](b Backend, store, key string, def T, c codec[T]) *Scalar[T] {
	return &Scalar[T]{backend: b, store: store, key: key, def: def, codec: c}
}

// Get returns the stored value, or the default when the key was never set.
func (s *Scalar[T]) Get(ctx context.Context) (T, error) {
	raw, ok, err := s.backend.Get(ctx, s.store, s.key)
	if err != nil {
		return s.def, fmt.Errorf("get %s: %w", s.Name(), err)
	}
	if !ok {
		return s.def, nil
	}
	value, err := s.codec.decode(raw)
	if err != nil {
		return s.def, fmt.Errorf("decode %s: %w", s.Name(), err)
	}
	return value, nil
}

// Set commits value.
func (s *Scalar[T]) Set(ctx context.Context, value T) error {
	if err := s.backend.Set(ctx, s.store, s.key, s.codec.encode(value)); err != nil {
		return fmt.Errorf("set %s: %w", s.Name(), err)
	}
	return nil
}

// Reset removes the stored value so Get returns the default again.
func (s *Scalar[T]) Reset(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.store, s.key); err != nil {
		return fmt.Errorf("reset %s: %w", s.Name(), err)
	}
	return nil
}

// Key returns the backend key within the store.
func (s *Scalar[T]) Key() string { return s.key }

// Name returns "store.key".
func (s *Scalar[T]) Name() string { return s.store + "." + s.key }

// Default returns the value Get reports for an unset key.
func (s *Scalar[T]) Default() T { return s.def }

// Encode renders value in backend form, for use with Group writes.
func (s *Scalar[T]) Encode(value T) string { return s.codec.encode(value) }

// Parse converts backend text to T.
func (s *Scalar[T]) Parse(raw string) (T, error) { return s.codec.decode(raw) }

// NewString binds a string field.
func NewString(b Backend, store, key, def string) *Scalar[string] {
	return newScalar(b, store, key, def, codec[string]{
		encode: func(v string) string { return v },
		decode: func(raw string) (string, error) { return raw, nil },
	})
}

// NewInt binds an int field.
func NewInt(b Backend, store, key string, def int) *Scalar[int] {
	return newScalar(b, store, key, def, codec[int]{
		encode: strconv.Itoa,
		decode: strconv.Atoi,
	})
}

// NewInt64 binds an int64 field.
func NewInt64(b Backend, store, key string, def int64) *Scalar[int64] {
	return newScalar(b, store, key, def, codec[int64]{
		encode: func(v int64) string { return strconv.FormatInt(v, 10) },
		decode: func(raw string) (int64, error) { return strconv.ParseInt(raw, 10, 64) },
	})
}

// NewFloat binds a float64 field.
func NewFloat(b Backend, store, key string, def float64) *Scalar[float64] {
	return newScalar(b, store, key, def, codec[float64]{
		encode: func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
		decode: func(raw string) (float64, error) { return strconv.ParseFloat(raw, 64) },
	})
}

// NewBool binds a bool field.
func NewBool(b Backend, store, key string, def bool) *Scalar[bool] {
	return newScalar(b, store, key, def, codec[bool]{
		encode: strconv.FormatBool,
		decode: strconv.ParseBool,
	})
}

// Group is a Field whose value spans several keys of one store. Set writes
// every key in one SetMany call.
type Group[T any] struct {
	backend Backend
	store   string
	read    func(ctx context.Context) (T, error)
	write   func(value T) map[string]string
}

// NewGroup binds a grouped field. read assembles the value (usually from the
// member scalars); write maps a value to backend keys.
func NewGroup[T any](b Backend, store string, read func(ctx context.Context) (T, error), write func(T) map[string]string) *Group[T] {
	return &Group[T]{backend: b, store: store, read: read, write: write}
}

// Get assembles the current group value.
func (g *Group[T]) Get(ctx context.Context) (T, error) {
	return g.read(ctx)
}

// Set commits every member key atomically.
func (g *Group[T]) Set(ctx context.Context, value T) error {
	if err := g.backend.SetMany(ctx, g.store, g.write(value)); err != nil {
		return fmt.Errorf("set group %s: %w", g.store, err)
	}
	return nil
}
