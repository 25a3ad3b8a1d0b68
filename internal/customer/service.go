package customer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/favorites"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/session"
)

// Service is the account page: profile, address book, order history and
// favorited products of one signed-in customer.
type Service interface {
	Ensure(ctx context.Context, id, email string) (*Customer, error)
	Profile(ctx context.Context, id string) (*Customer, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*Customer, error)

	Addresses(ctx context.Context, customerID string) ([]Address, error)
	AddAddress(ctx context.Context, customerID string, a Address) (*Address, error)
	UpdateAddress(ctx context.Context, customerID string, a Address) (*Address, error)
	SetDefaultAddress(ctx context.Context, customerID, id string) error
	DeleteAddress(ctx context.Context, customerID, id string) error

	Orders(ctx context.Context, customerID string) ([]order.Order, error)
	Favorites(ctx context.Context, owner session.Owner) ([]catalog.Product, error)
}

type service struct {
	profiles  ProfileRepository
	addresses AddressRepository
	orders    order.RemoteStore
	favorites favorites.Service
	catalog   catalog.Loader
	validate  *validator.Validate
	now       func() time.Time

	// address book writes per customer are serialized so the single-default
	// rule holds under concurrent requests.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(
	profiles ProfileRepository,
	addresses AddressRepository,
	orders order.RemoteStore,
	favs favorites.Service,
	loader catalog.Loader,
) Service {
	return &service{
		profiles:  profiles,
		addresses: addresses,
		orders:    orders,
		favorites: favs,
		catalog:   loader,
		validate:  validator.New(),
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Ensure returns the profile, creating it on first sign-in.
func (s *service) Ensure(ctx context.Context, id, email string) (*Customer, error) {
	c, err := s.profiles.Get(ctx, id)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Str("customer_id", id).Msg("service: failed to load customer")
		return nil, fmt.Errorf("service: failed to load customer: %w", err)
	}

	now := s.now().UTC()
	c = &Customer{
		ID:          id,
		Email:       email,
		DisplayName: displayNameFromEmail(email),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.profiles.Create(ctx, c); err != nil {
		log.Error().Err(err).Str("customer_id", id).Msg("service: failed to create customer")
		return nil, fmt.Errorf("service: failed to create customer: %w", err)
	}

	log.Info().Str("customer_id", id).Msg("service: customer profile created")

	return c, nil
}

func (s *service) Profile(ctx context.Context, id string) (*Customer, error) {
	c, err := s.profiles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to load customer: %w", err)
	}
	return c, nil
}

func (s *service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*Customer, error) {
	update.DisplayName = strings.TrimSpace(update.DisplayName)
	update.Phone = strings.TrimSpace(update.Phone)
	if err := s.validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	c, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != "" {
		c.DisplayName = update.DisplayName
	}
	c.Phone = update.Phone
	c.UpdatedAt = s.now().UTC()

	if err := s.profiles.Update(ctx, c); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("customer_id", id).Msg("service: failed to update customer")
		return nil, fmt.Errorf("service: failed to update customer: %w", err)
	}

	return c, nil
}

func (s *service) Addresses(ctx context.Context, customerID string) ([]Address, error) {
	addresses, err := s.addresses.List(ctx, customerID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("service: failed to list addresses")
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}
	return addresses, nil
}

// AddAddress stores a new address. The first address of a customer is always
// the default; asking for default on a later one moves the flag.
func (s *service) AddAddress(ctx context.Context, customerID string, a Address) (*Address, error) {
	if err := s.validateAddress(&a); err != nil {
		return nil, err
	}

	unlock := s.lock(customerID)
	defer unlock()

	existing, err := s.Addresses(ctx, customerID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate address id: %w", err)
	}
	a.ID = id.String()
	a.CustomerID = customerID
	a.CreatedAt = s.now().UTC()

	makeDefault := a.IsDefault || len(existing) == 0
	a.IsDefault = len(existing) == 0

	if err := s.addresses.Create(ctx, &a); err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("service: failed to create address")
		return nil, fmt.Errorf("service: failed to create address: %w", err)
	}

	if makeDefault && len(existing) > 0 {
		if err := s.addresses.SetDefault(ctx, customerID, a.ID); err != nil {
			return nil, fmt.Errorf("service: failed to set default address: %w", err)
		}
		a.IsDefault = true
	}

	return &a, nil
}

// UpdateAddress edits an address. Unsetting the flag on the current default
// is ignored since some address must stay default.
func (s *service) UpdateAddress(ctx context.Context, customerID string, a Address) (*Address, error) {
	if err := s.validateAddress(&a); err != nil {
		return nil, err
	}

	unlock := s.lock(customerID)
	defer unlock()

	existing, err := s.Addresses(ctx, customerID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(existing, func(e Address) bool { return e.ID == a.ID })
	if idx < 0 {
		return nil, ErrAddressNotFound
	}

	current := existing[idx]
	wantDefault := a.IsDefault
	a.CustomerID = customerID
	a.CreatedAt = current.CreatedAt
	a.IsDefault = current.IsDefault

	if err := s.addresses.Update(ctx, &a); err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to update address: %w", err)
	}

	if wantDefault && !current.IsDefault {
		if err := s.addresses.SetDefault(ctx, customerID, a.ID); err != nil {
			return nil, fmt.Errorf("service: failed to set default address: %w", err)
		}
		a.IsDefault = true
	}

	return &a, nil
}

func (s *service) SetDefaultAddress(ctx context.Context, customerID, id string) error {
	unlock := s.lock(customerID)
	defer unlock()

	if err := s.addresses.SetDefault(ctx, customerID, id); err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to set default address: %w", err)
	}
	return nil
}

// DeleteAddress removes an address. Removing the default promotes the oldest
// remaining address.
func (s *service) DeleteAddress(ctx context.Context, customerID, id string) error {
	unlock := s.lock(customerID)
	defer unlock()

	existing, err := s.Addresses(ctx, customerID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(existing, func(e Address) bool { return e.ID == id })
	if idx < 0 {
		return ErrAddressNotFound
	}
	wasDefault := existing[idx].IsDefault

	if err := s.addresses.Delete(ctx, customerID, id); err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to delete address: %w", err)
	}

	remaining := slices.Delete(existing, idx, idx+1)
	if !wasDefault || len(remaining) == 0 {
		return nil
	}

	oldest := slices.MinFunc(remaining, func(a, b Address) int { return a.CreatedAt.Compare(b.CreatedAt) })
	if err := s.addresses.SetDefault(ctx, customerID, oldest.ID); err != nil {
		return fmt.Errorf("service: failed to promote default address: %w", err)
	}

	log.Info().Str("customer_id", customerID).Str("address_id", oldest.ID).Msg("service: default address promoted")

	return nil
}

// Orders lists the customer's remote orders, newest first.
func (s *service) Orders(ctx context.Context, customerID string) ([]order.Order, error) {
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("service: failed to list customer orders")
		return nil, fmt.Errorf("service: failed to list customer orders: %w", err)
	}
	return orders, nil
}

func (s *service) Favorites(ctx context.Context, owner session.Owner) ([]catalog.Product, error) {
	ids, err := s.favorites.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.catalog.Resolve(ctx, ids), nil
}

func (s *service) validateAddress(a *Address) error {
	a.Label = strings.TrimSpace(a.Label)
	a.FullName = strings.TrimSpace(a.FullName)
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	a.Phone = strings.TrimSpace(a.Phone)

	if err := s.validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (s *service) lock(customerID string) func() {
	s.mu.Lock()
	l, ok := s.locks[customerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[customerID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func displayNameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
