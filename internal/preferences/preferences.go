package preferences

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vasiliy-maslov/technova/internal/kvstore"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

const DefaultLanguage = "en"

var SupportedLanguages = []string{"en", "es"}

// CookieConsent is the banner decision. A nil consent means the banner has
// not been answered yet.
type CookieConsent struct {
	Necessary bool      `json:"necessary"`
	Analytics bool      `json:"analytics"`
	Marketing bool      `json:"marketing"`
	DecidedAt time.Time `json:"decidedAt"`
}

type Service interface {
	Consent(ctx context.Context, scope string) (*CookieConsent, error)
	SetConsent(ctx context.Context, scope string, analytics, marketing bool) (*CookieConsent, error)
	WithdrawConsent(ctx context.Context, scope string) error
	Language(ctx context.Context, scope string) (string, error)
	SetLanguage(ctx context.Context, scope, lang string) (string, error)
}

type service struct {
	consent  *kvstore.Binding[*CookieConsent]
	language *kvstore.Binding[string]
	now      func() time.Time
}

func NewService(backend kvstore.Backend) Service {
	return &service{
		consent:  kvstore.NewBinding[*CookieConsent](backend, kvstore.KeyCookies, nil, kvstore.RemoveOnNull()),
		language: kvstore.NewBinding(backend, kvstore.KeyLanguage, DefaultLanguage),
		now:      time.Now,
	}
}

func (s *service) Consent(ctx context.Context, scope string) (*CookieConsent, error) {
	c, err := s.consent.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cookie consent: %w", err)
	}
	return c, nil
}

func (s *service) SetConsent(ctx context.Context, scope string, analytics, marketing bool) (*CookieConsent, error) {
	c := &CookieConsent{
		Necessary: true,
		Analytics: analytics,
		Marketing: marketing,
		DecidedAt: s.now().UTC(),
	}
	if err := s.consent.Save(ctx, scope, c); err != nil {
		return nil, fmt.Errorf("service: failed to save cookie consent: %w", err)
	}
	return c, nil
}

func (s *service) WithdrawConsent(ctx context.Context, scope string) error {
	if err := s.consent.Save(ctx, scope, nil); err != nil {
		return fmt.Errorf("service: failed to clear cookie consent: %w", err)
	}
	return nil
}

func (s *service) Language(ctx context.Context, scope string) (string, error) {
	lang, err := s.language.Load(ctx, scope)
	if err != nil {
		return DefaultLanguage, fmt.Errorf("service: failed to load language: %w", err)
	}
	if !slices.Contains(SupportedLanguages, lang) {
		return DefaultLanguage, nil
	}
	return lang, nil
}

// SetLanguage accepts region tags such as "es-MX" and stores the base language.
func (s *service) SetLanguage(ctx context.Context, scope, lang string) (string, error) {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(lang)), "-")
	if !slices.Contains(SupportedLanguages, base) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if err := s.language.Save(ctx, scope, base); err != nil {
		return "", fmt.Errorf("service: failed to save language: %w", err)
	}
	return base, nil
}
