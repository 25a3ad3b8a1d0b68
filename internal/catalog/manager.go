package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/filestore"
)

// Manager is the admin side of the catalog.
type Manager interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	Update(ctx context.Context, product *Product) (*Product, error)
	Delete(ctx context.Context, id ProductID) error
	UploadImage(ctx context.Context, name, contentType string, r io.Reader) (*filestore.File, error)
}

type manager struct {
	repo  Repository
	files filestore.Store
	now   func() time.Time
}

func NewManager(repo Repository, files filestore.Store) Manager {
	return &manager{repo: repo, files: files, now: time.Now}
}

func (m *manager) Create(ctx context.Context, product *Product) (*Product, error) {
	if err := checkProduct(product); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate product id: %w", err)
	}

	now := m.now().UTC()
	product.ID = ProductID(id.String())
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := m.repo.Create(ctx, product); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", product.ID).Str("name", product.Name).Msg("service: product created")

	return product, nil
}

func (m *manager) Update(ctx context.Context, product *Product) (*Product, error) {
	if err := checkProduct(product); err != nil {
		return nil, err
	}

	current, err := m.repo.GetByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("product_id", product.ID).Msg("service: product not found for update")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to get product for update: %w", err)
	}

	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = m.now().UTC()

	if err := m.repo.Update(ctx, product); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", product.ID).Msg("service: failed to update product in repository")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	if current.Image != product.Image {
		m.removeImage(ctx, current.Image)
	}

	return product, nil
}

func (m *manager) Delete(ctx context.Context, id ProductID) error {
	current, err := m.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to get product for delete: %w", err)
	}

	if err := m.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product in repository")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	m.removeImage(ctx, current.Image)
	log.Info().Stringer("product_id", id).Msg("service: product deleted")

	return nil
}

func (m *manager) UploadImage(ctx context.Context, name, contentType string, r io.Reader) (*filestore.File, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: only image uploads are accepted, got %q", ErrInvalid, contentType)
	}

	file, err := m.files.Upload(ctx, name, contentType, r)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("service: failed to upload product image")
		return nil, fmt.Errorf("service: failed to upload image: %w", err)
	}

	return file, nil
}

// removeImage deletes an uploaded image. Failures are logged and ignored.
func (m *manager) removeImage(ctx context.Context, url string) {
	id, ok := filestore.IDFromURL(url)
	if !ok {
		return
	}

	if err := m.files.Delete(ctx, id); err != nil {
		log.Warn().Err(err).Str("file_id", id).Msg("service: failed to delete previous product image")
	}
}

func checkProduct(p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalid)
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < p.Price {
		return fmt.Errorf("%w: original price must not be lower than price", ErrInvalid)
	}

	return nil
}
