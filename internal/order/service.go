package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/technova/internal/kvstore"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusPaid: true,
	},
	StatusPaid: {
		StatusShipped: true,
	},
	StatusShipped: {
		StatusCompleted: true,
	},
	StatusCompleted: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

type Sales struct {
	Orders   int             `json:"orders"`
	Units    int             `json:"units"`
	Revenue  decimal.Decimal `json:"revenue"`
	ByStatus map[Status]int  `json:"byStatus"`
}

type Service interface {
	Place(ctx context.Context, order *Order) error
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, newStatus Status) (*Order, error)
	Sales(ctx context.Context) (*Sales, error)
}

// service keeps the shop's order ledger in the shared kv scope, newest first.
type service struct {
	mu     sync.Mutex
	orders *kvstore.Binding[[]Order]
	newID  func() string
}

func NewService(backend kvstore.Backend) Service {
	return newService(backend, NewID)
}

func newService(backend kvstore.Backend, newID func() string) *service {
	return &service{
		orders: kvstore.NewBinding(backend, kvstore.KeyShopOrders, []Order{}),
		newID:  newID,
	}
}

const maxIDAttempts = 1000

func (s *service) Place(ctx context.Context, order *Order) error {
	if len(order.Items) == 0 {
		log.Warn().Str("order_id", order.ID).Msg("service: attempt to place order with no items")
		return ErrEmptyOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.orders.Load(ctx, kvstore.SharedScope)
	if err != nil {
		return fmt.Errorf("service: failed to load orders: %w", err)
	}

	if err := s.assignID(order, orders); err != nil {
		return err
	}

	orders = append([]Order{*order}, orders...)
	if err := s.orders.Save(ctx, kvstore.SharedScope, orders); err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("service: failed to save orders")
		return fmt.Errorf("service: failed to place order: %w", err)
	}

	log.Info().Str("order_id", order.ID).Float64("total", order.Total).Stringer("status", order.Status).Msg("service: order placed")

	return nil
}

// assignID replaces the order's id while it is taken in the ledger.
func (s *service) assignID(order *Order, orders []Order) error {
	taken := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		taken[o.ID] = struct{}{}
	}

	for range maxIDAttempts {
		if _, ok := taken[order.ID]; !ok && order.ID != "" {
			return nil
		}
		order.ID = s.newID()
	}

	log.Error().Int("orders", len(orders)).Msg("service: no free order id")
	return ErrNoFreeID
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.Load(ctx, kvstore.SharedScope)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}

	log.Warn().Str("order_id", id).Msg("service: order not found by id")
	return nil, ErrNotFound
}

func (s *service) UpdateStatus(ctx context.Context, id string, newStatus Status) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.orders.Load(ctx, kvstore.SharedScope)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load orders: %w", err)
	}

	idx := -1
	for i := range orders {
		if orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		log.Warn().Str("order_id", id).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
		return nil, ErrNotFound
	}

	current := orders[idx].Status
	if current == newStatus {
		return &orders[idx], nil
	}

	if !CanTransition(current, newStatus) {
		log.Warn().
			Str("order_id", id).
			Stringer("current_status", current).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current, newStatus)
	}

	orders[idx].Status = newStatus
	if err := s.orders.Save(ctx, kvstore.SharedScope, orders); err != nil {
		log.Error().Err(err).Str("order_id", id).Msg("service: failed to save order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Str("order_id", id).Stringer("old_status", current).Stringer("new_status", newStatus).Msg("service: order status updated successfully")

	return &orders[idx], nil
}

func (s *service) Sales(ctx context.Context) (*Sales, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	sales := &Sales{Revenue: decimal.Zero, ByStatus: make(map[Status]int)}
	for _, o := range orders {
		sales.Orders++
		sales.Units += len(o.Items)
		sales.Revenue = sales.Revenue.Add(decimal.NewFromFloat(o.Total))
		sales.ByStatus[o.Status]++
	}
	sales.Revenue = sales.Revenue.Round(2)

	return sales, nil
}
