package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

type Loader interface {
	Load(ctx context.Context) []Product
	List(ctx context.Context, filter Filter) []Product
	Get(ctx context.Context, id ProductID) (*Product, error)
	Resolve(ctx context.Context, ids []ProductID) []Product
}

type loader struct {
	repo Repository
}

func NewLoader(repo Repository) Loader {
	return &loader{repo: repo}
}

// Load returns the stored catalog newest first, or the static catalog when
// the store fails or holds nothing.
func (l *loader) Load(ctx context.Context) []Product {
	products, err := l.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load products, serving fallback catalog")
		return Fallback()
	}
	if len(products) == 0 {
		log.Warn().Msg("service: product collection is empty, serving fallback catalog")
		return Fallback()
	}

	return products
}

func (l *loader) List(ctx context.Context, filter Filter) []Product {
	products := l.Load(ctx)

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.matches(p) {
			filtered = append(filtered, p)
		}
	}

	return filtered
}

func (l *loader) Get(ctx context.Context, id ProductID) (*Product, error) {
	product, err := l.repo.GetByID(ctx, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product, checking fallback catalog")
	}

	for _, p := range fallbackProducts {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}

	return nil, ErrNotFound
}

// Resolve maps ids to products in the given order, skipping unknown ids.
func (l *loader) Resolve(ctx context.Context, ids []ProductID) []Product {
	if len(ids) == 0 {
		return []Product{}
	}

	byID := make(map[ProductID]Product)
	for _, p := range l.Load(ctx) {
		byID[p.ID] = p
	}
	for _, p := range fallbackProducts {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	resolved := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			resolved = append(resolved, p)
		}
	}

	return resolved
}

func (f Filter) matches(p Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Model != "" && !slices.ContainsFunc(p.CompatibleModels, func(m string) bool {
		return strings.EqualFold(m, f.Model)
	}) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}

	return true
}
