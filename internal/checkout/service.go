package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/cart"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type Service interface {
	Get(ctx context.Context, owner session.Owner) (*Session, error)
	Continue(ctx context.Context, owner session.Owner) (*Session, error)
	SubmitShipping(ctx context.Context, owner session.Owner, form ShippingForm) (*Session, error)
	Pay(ctx context.Context, owner session.Owner, method order.PaymentMethod) (*Session, error)
	Close(ctx context.Context, owner session.Owner) (*Session, error)
}

type service struct {
	mu       sync.Mutex
	sessions *kvstore.Binding[Session]
	carts    cart.Service
	orders   order.Service
	remote   order.RemoteStore
	validate *validator.Validate
	now      func() time.Time
}

func NewService(backend kvstore.Backend, carts cart.Service, orders order.Service, remote order.RemoteStore) Service {
	return &service{
		sessions: kvstore.NewBinding(backend, kvstore.KeyCheckout, newSession()),
		carts:    carts,
		orders:   orders,
		remote:   remote,
		validate: newValidator(),
		now:      time.Now,
	}
}

func (s *service) Get(ctx context.Context, owner session.Owner) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, owner)
}

func (s *service) Continue(ctx context.Context, owner session.Owner) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.transition(sess, StepShipping); err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart for checkout: %w", err)
	}
	if c.IsEmpty() {
		log.Warn().Str("scope", owner.Scope).Msg("service: checkout started with an empty cart")
		return nil, ErrEmptyCart
	}

	sess.Step = StepShipping
	sess.Errors = map[string]string{}

	return sess, s.save(ctx, owner, sess)
}

// SubmitShipping validates the form and moves to the payment step. On
// failure the session keeps the submitted input and its error map, and the
// step does not change.
func (s *service) SubmitShipping(ctx context.Context, owner session.Owner, form ShippingForm) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.transition(sess, StepPayment); err != nil {
		return nil, err
	}

	form = form.trimmed()
	sess.Form = form
	sess.Errors = validateShipping(s.validate, form)

	if len(sess.Errors) > 0 {
		log.Warn().Str("scope", owner.Scope).Int("errors", len(sess.Errors)).Msg("service: shipping details rejected")
		if err := s.save(ctx, owner, sess); err != nil {
			return nil, err
		}
		return sess, ErrValidation
	}

	sess.Step = StepPayment

	return sess, s.save(ctx, owner, sess)
}

func (s *service) Pay(ctx context.Context, owner session.Owner, method order.PaymentMethod) (*Session, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayment, method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.transition(sess, StepSuccess); err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart for payment: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	placed, err := order.New(sess.Form.contact(), c.Items, method, owner.CustomerID, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.orders.Place(ctx, placed); err != nil {
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}

	if owner.Authenticated() {
		if err := s.remote.Create(ctx, placed); err != nil {
			log.Warn().Err(err).Str("order_id", placed.ID).Str("customer_id", owner.CustomerID).Msg("service: failed to mirror order to customer history")
		}
	}

	if err := s.carts.Clear(ctx, owner); err != nil {
		log.Warn().Err(err).Str("order_id", placed.ID).Msg("service: failed to clear cart after order")
	}

	sess.Step = StepSuccess
	sess.Form = ShippingForm{}
	sess.Errors = map[string]string{}
	sess.LastOrder = placed

	log.Info().Str("order_id", placed.ID).Str("payment_method", string(method)).Msg("service: checkout completed")

	return sess, s.save(ctx, owner, sess)
}

// Close returns the drawer to the cart step. Contact details survive unless
// the checkout already succeeded.
func (s *service) Close(ctx context.Context, owner session.Owner) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	if sess.Step == StepSuccess {
		fresh := newSession()
		sess = &fresh
	}
	sess.Step = StepCart
	sess.Errors = map[string]string{}

	return sess, s.save(ctx, owner, sess)
}

func (s *service) transition(sess *Session, to Step) error {
	if CanTransition(sess.Step, to) {
		return nil
	}

	log.Warn().Stringer("current_step", sess.Step).Stringer("next_step", to).Msg("service: invalid checkout transition attempt")
	return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, sess.Step, to)
}

func (s *service) load(ctx context.Context, owner session.Owner) (*Session, error) {
	sess, err := s.sessions.Load(ctx, owner.Scope)
	if err != nil {
		log.Error().Err(err).Str("scope", owner.Scope).Msg("service: failed to load checkout session")
		return nil, fmt.Errorf("service: failed to load checkout: %w", err)
	}
	if sess.Step == "" {
		sess.Step = StepCart
	}
	if sess.Errors == nil {
		sess.Errors = map[string]string{}
	}

	return &sess, nil
}

func (s *service) save(ctx context.Context, owner session.Owner, sess *Session) error {
	if err := s.sessions.Save(ctx, owner.Scope, *sess); err != nil {
		log.Error().Err(err).Str("scope", owner.Scope).Msg("service: failed to save checkout session")
		return fmt.Errorf("service: failed to save checkout: %w", err)
	}
	return nil
}
