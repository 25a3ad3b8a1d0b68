// Package kvstore is the server-side replacement for browser local storage.
// Entries are JSON documents addressed by (scope, key); a scope is one
// browser session or the shared shop scope.
package kvstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("kv entry not found")

// SharedScope holds staff-domain state seen by every terminal.
const SharedScope = "shop"

const (
	KeyCurrentUser = "current_user"
	KeyShopOrders  = "shop_orders"
	KeyInventory   = "inventory"
	KeyRepairs     = "repairs"
	KeyCookies     = "cookie_consent"
	KeyFavorites   = "technova_favorites"
	KeyCart        = "technova_cart"
	KeyCheckout    = "technova_checkout"
	KeyLanguage    = "i18nextLng"
)

type Backend interface {
	Get(ctx context.Context, scope, key string) ([]byte, error)
	Put(ctx context.Context, scope, key string, value []byte) error
	Delete(ctx context.Context, scope, key string) error
	// PurgeIdle removes every scope whose most recent write is older than
	// before, except the scopes listed in keep. It returns the number of
	// entries removed.
	PurgeIdle(ctx context.Context, before time.Time, keep ...string) (int64, error)
}
