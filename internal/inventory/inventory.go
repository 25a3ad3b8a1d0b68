package inventory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/kvstore"
)

var (
	ErrNotFound          = errors.New("inventory item not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransfer   = errors.New("invalid transfer")
	ErrDuplicateSKU      = errors.New("sku already exists")
	ErrInvalidItem       = errors.New("invalid inventory item")
)

type Item struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	SKU   string         `json:"sku"`
	Stock map[string]int `json:"stock"`
}

// Total is the quantity on hand across every store.
func (i Item) Total() int {
	total := 0
	for _, q := range i.Stock {
		total += q
	}
	return total
}

type Transfer struct {
	ItemID   string `json:"itemId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity int    `json:"quantity"`
}

var seedItems = []Item{
	{ID: "inv-1", Name: "iPhone 13 Screen Assembly", SKU: "SCR-IP13", Stock: map[string]int{"downtown": 8, "mall": 3, "warehouse": 20}},
	{ID: "inv-2", Name: "iPhone 14 Battery", SKU: "BAT-IP14", Stock: map[string]int{"downtown": 5, "mall": 6, "warehouse": 15}},
	{ID: "inv-3", Name: "Galaxy S23 USB-C Port", SKU: "PRT-S23", Stock: map[string]int{"downtown": 2, "mall": 0, "warehouse": 10}},
	{ID: "inv-4", Name: "Pixel 7 Rear Camera", SKU: "CAM-PX7", Stock: map[string]int{"downtown": 1, "mall": 1, "warehouse": 4}},
}

type Service interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, item Item) (*Item, error)
	Adjust(ctx context.Context, itemID, store string, delta int) (*Item, error)
	Transfer(ctx context.Context, t Transfer) (*Item, error)
}

type service struct {
	mu    sync.Mutex
	items *kvstore.Binding[[]Item]
}

func NewService(backend kvstore.Backend) Service {
	return &service{
		items: kvstore.NewBinding(backend, kvstore.KeyInventory, seedItems),
	}
}

func (s *service) List(ctx context.Context) ([]Item, error) {
	items, err := s.items.Load(ctx, kvstore.SharedScope)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load inventory")
		return nil, fmt.Errorf("service: failed to load inventory: %w", err)
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, item Item) (*Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.SKU = strings.TrimSpace(item.SKU)
	if item.Name == "" || item.SKU == "" {
		return nil, fmt.Errorf("%w: name and sku are required", ErrInvalidItem)
	}
	for store, q := range item.Stock {
		if q < 0 {
			return nil, fmt.Errorf("%w: negative stock for %s", ErrInvalidQuantity, store)
		}
	}
	if item.Stock == nil {
		item.Stock = map[string]int{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(items, func(i Item) bool { return strings.EqualFold(i.SKU, item.SKU) }) {
		return nil, ErrDuplicateSKU
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate item id: %w", err)
	}
	item.ID = id.String()

	if err := s.save(ctx, append(items, item)); err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *service) Adjust(ctx context.Context, itemID, store string, delta int) (*Item, error) {
	if strings.TrimSpace(store) == "" {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidTransfer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(items, func(i Item) bool { return i.ID == itemID })
	if idx < 0 {
		return nil, ErrNotFound
	}

	next := items[idx].Stock[store] + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: %s has %d of %s", ErrInsufficientStock, store, items[idx].Stock[store], items[idx].SKU)
	}

	stock := maps.Clone(items[idx].Stock)
	if stock == nil {
		stock = map[string]int{}
	}
	stock[store] = next
	items[idx].Stock = stock

	if err := s.save(ctx, items); err != nil {
		return nil, err
	}

	log.Info().Str("item_id", itemID).Str("store", store).Int("delta", delta).Int("stock", next).Msg("service: stock adjusted")

	return &items[idx], nil
}

// Transfer moves stock between two stores. The request is checked in full
// before anything changes, and both stores are written in a single save, so
// a failure leaves the inventory as it was.
func (s *service) Transfer(ctx context.Context, t Transfer) (*Item, error) {
	if t.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	t.From = strings.TrimSpace(t.From)
	t.To = strings.TrimSpace(t.To)
	if t.From == "" || t.To == "" {
		return nil, fmt.Errorf("%w: both stores are required", ErrInvalidTransfer)
	}
	if t.From == t.To {
		return nil, fmt.Errorf("%w: source and destination are the same store", ErrInvalidTransfer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(items, func(i Item) bool { return i.ID == t.ItemID })
	if idx < 0 {
		log.Warn().Str("item_id", t.ItemID).Msg("service: transfer for unknown item")
		return nil, ErrNotFound
	}

	available := items[idx].Stock[t.From]
	if available < t.Quantity {
		log.Warn().Str("item_id", t.ItemID).Str("from", t.From).Int("available", available).Int("requested", t.Quantity).Msg("service: transfer rejected")
		return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, t.From, available, t.Quantity)
	}

	stock := maps.Clone(items[idx].Stock)
	stock[t.From] -= t.Quantity
	stock[t.To] += t.Quantity
	items[idx].Stock = stock

	if err := s.save(ctx, items); err != nil {
		return nil, err
	}

	log.Info().
		Str("item_id", t.ItemID).
		Str("from", t.From).
		Str("to", t.To).
		Int("quantity", t.Quantity).
		Msg("service: transfer confirmed")

	return &items[idx], nil
}

func (s *service) save(ctx context.Context, items []Item) error {
	if err := s.items.Save(ctx, kvstore.SharedScope, items); err != nil {
		log.Error().Err(err).Msg("service: failed to save inventory")
		return fmt.Errorf("service: failed to save inventory: %w", err)
	}
	return nil
}
