package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type Service interface {
	Get(ctx context.Context, owner session.Owner) (*Cart, error)
	Add(ctx context.Context, owner session.Owner, product catalog.Product) (*Cart, error)
	Remove(ctx context.Context, owner session.Owner, index int) (*Cart, error)
	UpdateQuantity(ctx context.Context, owner session.Owner, index, delta int) (*Cart, error)
	Clear(ctx context.Context, owner session.Owner) error
}

// service keeps anonymous carts in the session scope and customer carts in
// the remote store, keyed by customer id.
type service struct {
	mu     sync.Mutex
	local  *kvstore.Binding[[]LineItem]
	remote RemoteStore
}

func NewService(backend kvstore.Backend, remote RemoteStore) Service {
	return &service{
		local:  kvstore.NewBinding(backend, kvstore.KeyCart, []LineItem{}),
		remote: remote,
	}
}

func (s *service) Get(ctx context.Context, owner session.Owner) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, owner)
}

func (s *service) Add(ctx context.Context, owner session.Owner, product catalog.Product) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) bool {
		c.Add(product)
		return true
	})
}

func (s *service) Remove(ctx context.Context, owner session.Owner, index int) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) bool {
		return c.Remove(index)
	})
}

func (s *service) UpdateQuantity(ctx context.Context, owner session.Owner, index, delta int) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) bool {
		return c.UpdateQuantity(index, delta)
	})
}

func (s *service) Clear(ctx context.Context, owner session.Owner) error {
	_, err := s.mutate(ctx, owner, func(c *Cart) bool {
		c.Clear()
		return true
	})
	return err
}

func (s *service) mutate(ctx context.Context, owner session.Owner, apply func(*Cart) bool) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	if !apply(c) {
		return c, nil
	}

	if err := s.store(ctx, owner, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *service) load(ctx context.Context, owner session.Owner) (*Cart, error) {
	if owner.Authenticated() {
		items, err := s.remote.Get(ctx, owner.CustomerID)
		if err != nil {
			log.Error().Err(err).Str("customer_id", owner.CustomerID).Msg("service: failed to load remote cart")
			return nil, fmt.Errorf("service: failed to load cart: %w", err)
		}
		return &Cart{Items: items}, nil
	}

	items, err := s.local.Load(ctx, owner.Scope)
	if err != nil {
		log.Error().Err(err).Str("scope", owner.Scope).Msg("service: failed to load session cart")
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}

	return &Cart{Items: items}, nil
}

func (s *service) store(ctx context.Context, owner session.Owner, c *Cart) error {
	if c.Items == nil {
		c.Items = []LineItem{}
	}

	if owner.Authenticated() {
		if err := s.remote.Save(ctx, owner.CustomerID, c.Items); err != nil {
			log.Error().Err(err).Str("customer_id", owner.CustomerID).Msg("service: failed to save remote cart")
			return fmt.Errorf("service: failed to save cart: %w", err)
		}
		return nil
	}

	if err := s.local.Save(ctx, owner.Scope, c.Items); err != nil {
		log.Error().Err(err).Str("scope", owner.Scope).Msg("service: failed to save session cart")
		return fmt.Errorf("service: failed to save cart: %w", err)
	}

	return nil
}
