package favorites

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/reconcile"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type Service interface {
	List(ctx context.Context, owner session.Owner) ([]catalog.ProductID, error)
	Toggle(ctx context.Context, owner session.Owner, id catalog.ProductID) (bool, error)
	Merge(ctx context.Context, owner session.Owner) ([]catalog.ProductID, error)
	Forget(customerID string)
}

// service keeps anonymous favorites in the session scope. For signed-in
// customers the in-memory set is the read model; the remote store is only
// written to after the first load.
type service struct {
	mu        sync.RWMutex
	local     *kvstore.Binding[[]catalog.ProductID]
	remote    RemoteStore
	customers map[string][]catalog.ProductID
}

func NewService(backend kvstore.Backend, remote RemoteStore) Service {
	return &service{
		local:     kvstore.NewBinding(backend, kvstore.KeyFavorites, []catalog.ProductID{}),
		remote:    remote,
		customers: make(map[string][]catalog.ProductID),
	}
}

func (s *service) List(ctx context.Context, owner session.Owner) ([]catalog.ProductID, error) {
	if !owner.Authenticated() {
		ids, err := s.local.Load(ctx, owner.Scope)
		if err != nil {
			return nil, fmt.Errorf("service: failed to load favorites: %w", err)
		}
		return ids, nil
	}

	s.mu.RLock()
	ids, ok := s.customers[owner.CustomerID]
	s.mu.RUnlock()
	if ok {
		return slices.Clone(ids), nil
	}

	return s.Merge(ctx, owner)
}

// Merge folds the session's anonymous favorites into the customer's remote
// set. Local-only ids are written remote and the local key is cleared once
// they are stored; the union becomes the customer's read model. While the
// remote store cannot be read the union of what is known is served but not
// cached, so the next read tries again. Running it again is harmless.
func (s *service) Merge(ctx context.Context, owner session.Owner) ([]catalog.ProductID, error) {
	if !owner.Authenticated() {
		return s.List(ctx, owner)
	}

	ids, _ := s.merge(ctx, owner)
	return ids, nil
}

// merge reports whether the returned set is the cached read model.
func (s *service) merge(ctx context.Context, owner session.Owner) ([]catalog.ProductID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local, err := s.local.Load(ctx, owner.Scope)
	localLoaded := err == nil
	if err != nil {
		log.Warn().Err(err).Str("scope", owner.Scope).Msg("service: failed to read local favorites for merge")
		local = nil
	}

	known, cached := s.customers[owner.CustomerID]

	remote, err := s.remote.List(ctx, owner.CustomerID)
	if err != nil {
		log.Warn().Err(err).Str("customer_id", owner.CustomerID).Msg("service: failed to fetch remote favorites, serving local set")
		served, _ := reconcile.Union(local, known)
		return served, cached
	}

	remote, _ = reconcile.Union(remote, known)
	merged, localOnly := reconcile.Union(local, remote)
	s.customers[owner.CustomerID] = merged

	if len(localOnly) > 0 {
		if err := s.remote.Add(ctx, owner.CustomerID, localOnly...); err != nil {
			log.Warn().Err(err).Str("customer_id", owner.CustomerID).Int("count", len(localOnly)).Msg("service: failed to upload local favorites, keeping them local")
			return slices.Clone(merged), true
		}
	}

	if localLoaded && len(local) > 0 {
		if err := s.local.Clear(ctx, owner.Scope); err != nil {
			log.Warn().Err(err).Str("scope", owner.Scope).Msg("service: failed to clear local favorites")
		}
	}

	log.Info().Str("customer_id", owner.CustomerID).Int("uploaded", len(localOnly)).Int("total", len(merged)).Msg("service: favorites merged")

	return slices.Clone(merged), true
}

// Toggle flips membership of id and reports whether it is now a favorite.
func (s *service) Toggle(ctx context.Context, owner session.Owner, id catalog.ProductID) (bool, error) {
	if !owner.Authenticated() {
		return s.toggleLocal(ctx, owner, id)
	}

	s.mu.RLock()
	_, loaded := s.customers[owner.CustomerID]
	s.mu.RUnlock()
	if !loaded {
		served, ok := s.merge(ctx, owner)
		if !ok {
			return s.toggleRemote(ctx, owner, served, id)
		}
	}

	s.mu.Lock()
	ids := s.customers[owner.CustomerID]
	idx := slices.Index(ids, id)
	added := idx < 0
	if added {
		ids = append(ids, id)
	} else {
		ids = slices.Delete(slices.Clone(ids), idx, idx+1)
	}
	s.customers[owner.CustomerID] = ids
	s.mu.Unlock()

	var err error
	if added {
		err = s.remote.Add(ctx, owner.CustomerID, id)
	} else {
		err = s.remote.Remove(ctx, owner.CustomerID, id)
	}
	if err != nil {
		log.Warn().Err(err).Str("customer_id", owner.CustomerID).Stringer("product_id", id).Bool("added", added).Msg("service: failed to mirror favorite toggle")
	}

	return added, nil
}

// toggleRemote writes straight to the remote store while no read model is
// cached. The write must succeed since nothing else would remember it.
func (s *service) toggleRemote(ctx context.Context, owner session.Owner, served []catalog.ProductID, id catalog.ProductID) (bool, error) {
	added := !slices.Contains(served, id)

	var err error
	if added {
		err = s.remote.Add(ctx, owner.CustomerID, id)
	} else {
		err = s.remote.Remove(ctx, owner.CustomerID, id)
	}
	if err != nil {
		return false, fmt.Errorf("service: failed to update remote favorites: %w", err)
	}

	return added, nil
}

// Forget drops the cached read model of a customer, e.g. on sign-out.
func (s *service) Forget(customerID string) {
	s.mu.Lock()
	delete(s.customers, customerID)
	s.mu.Unlock()
}

func (s *service) toggleLocal(ctx context.Context, owner session.Owner, id catalog.ProductID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.local.Load(ctx, owner.Scope)
	if err != nil {
		return false, fmt.Errorf("service: failed to load favorites: %w", err)
	}

	idx := slices.Index(ids, id)
	added := idx < 0
	if added {
		ids = append(ids, id)
	} else {
		ids = slices.Delete(ids, idx, idx+1)
	}

	if err := s.local.Save(ctx, owner.Scope, ids); err != nil {
		return false, fmt.Errorf("service: failed to save favorites: %w", err)
	}

	return added, nil
}
