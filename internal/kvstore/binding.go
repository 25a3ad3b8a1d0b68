package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var nullLiteral = []byte("null")

type Option func(*bindingOptions)

type bindingOptions struct {
	removeOnNull bool
}

// RemoveOnNull makes Save delete the key instead of storing a JSON null.
func RemoveOnNull() Option {
	return func(o *bindingOptions) {
		o.removeOnNull = true
	}
}

// Binding ties one key to a typed value with a fallback.
type Binding[T any] struct {
	backend      Backend
	key          string
	fallback     T
	fallbackJSON []byte
	removeOnNull bool
}

func NewBinding[T any](backend Backend, key string, fallback T, opts ...Option) *Binding[T] {
	o := bindingOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Binding[T]{
		backend:      backend,
		key:          key,
		fallback:     fallback,
		removeOnNull: o.removeOnNull,
	}

	// Callers get a fresh copy of the fallback on every miss so that mutating
	// a loaded value never leaks into the next Load.
	if data, err := json.Marshal(fallback); err == nil {
		b.fallbackJSON = data
	}

	return b
}

func (b *Binding[T]) Key() string {
	return b.key
}

// Load reads the value stored under the binding's key in scope. A missing
// key or an unparsable document yields the fallback. A backend failure
// yields the fallback together with the error.
func (b *Binding[T]) Load(ctx context.Context, scope string) (T, error) {
	data, err := b.backend.Get(ctx, scope, b.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return b.fresh(), nil
		}
		return b.fresh(), fmt.Errorf("kvstore: failed to load %s: %w", b.key, err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		log.Warn().Err(err).Str("scope", scope).Str("key", b.key).Msg("kvstore: stored value is not valid JSON, using fallback")
		return b.fresh(), nil
	}

	return value, nil
}

func (b *Binding[T]) Save(ctx context.Context, scope string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore: failed to encode %s: %w", b.key, err)
	}

	if b.removeOnNull && bytes.Equal(data, nullLiteral) {
		return b.Clear(ctx, scope)
	}

	if err := b.backend.Put(ctx, scope, b.key, data); err != nil {
		return fmt.Errorf("kvstore: failed to save %s: %w", b.key, err)
	}

	return nil
}

func (b *Binding[T]) Clear(ctx context.Context, scope string) error {
	if err := b.backend.Delete(ctx, scope, b.key); err != nil {
		return fmt.Errorf("kvstore: failed to delete %s: %w", b.key, err)
	}

	return nil
}

func (b *Binding[T]) fresh() T {
	if b.fallbackJSON == nil {
		return b.fallback
	}

	var value T
	if err := json.Unmarshal(b.fallbackJSON, &value); err != nil {
		return b.fallback
	}

	return value
}
