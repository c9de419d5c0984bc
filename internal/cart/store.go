package cart

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// Default storage keys for the two storefront variants.
const (
	DefaultProductKey = "megamart-cart"
	DefaultFoodKey    = "food_cart"
)

// Lookup resolves a key to a quantity-zero snapshot of the catalog entry.
// Implementations return an error wrapping types.ErrItemNotFound for
// unknown keys. The returned line's Key() may differ from the requested key,
// for example when a bare menu item ID resolves to restaurantID|itemID.
type Lookup interface {
	LookupItem(key string) (types.CartLine, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(key string) (types.CartLine, error)

// LookupItem calls f.
func (f LookupFunc) LookupItem(key string) (types.CartLine, error) { return f(key) }

// Store owns the cart lines for one storage key.
type Store struct {
	mu      sync.Mutex
	storage types.Storage
	key     string
	layout  Layout
	logger  *zap.Logger

	lines   map[string]types.CartLine
	saveErr error
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. Defaults to DefaultProductKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLayout sets the serialization layout used on save. Loading accepts
// either layout. Defaults to LayoutArray.
func WithLayout(l Layout) Option {
	return func(s *Store) {
		if l != "" {
			s.layout = l
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a store over storage and loads the persisted cart.
func New(storage types.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultProductKey,
		layout:  LayoutArray,
		logger:  zap.NewNop(),
		lines:   make(map[string]types.CartLine),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("cart_key", s.key))
	s.Load()
	return s
}

// Key returns the storage key this store persists under.
func (s *Store) Key() string { return s.key }

// Load replaces the in-memory cart with the persisted one. Missing, corrupt
// or unreadable data yields an empty cart; the failure is logged and never
// returned.
func (s *Store) Load() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = s.read()
	return newCart(s.lines)
}

func (s *Store) read() map[string]types.CartLine {
	empty := make(map[string]types.CartLine)

	raw, err := s.storage.GetItem(s.key)
	if errors.Is(err, types.ErrNotFound) {
		return empty
	}
	if err != nil {
		s.logger.Warn("reading cart failed; starting empty", zap.Error(err))
		return empty
	}

	lines, dropped, err := decode([]byte(raw))
	if err != nil {
		s.logger.Warn("cart data is corrupt; starting empty", zap.Error(err))
		return empty
	}
	for _, d := range dropped {
		s.logger.Warn("dropped cart line on load",
			zap.String("line_key", d.key),
			zap.String("reason", d.reason))
	}
	return lines
}

// save persists the full cart. The caller must hold s.mu.
func (s *Store) save() {
	data, err := encode(s.layout, newCart(s.lines))
	if err == nil {
		err = s.storage.SetItem(s.key, string(data))
	}
	if err != nil {
		s.saveErr = fmt.Errorf("save cart %q: %w", s.key, err)
		s.logger.Warn("saving cart failed; change kept in memory only", zap.Error(err))
		return
	}
	s.saveErr = nil
}

// SaveErr returns the error from the most recent save, or nil if it
// succeeded.
func (s *Store) SaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// Snapshot returns the current cart without touching storage.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newCart(s.lines)
}

// Add increments the line for key, or inserts a new line with quantity 1
// copied from the catalog entry. Returns an error wrapping
// types.ErrItemNotFound, with the cart unchanged, when lookup does not know
// the key.
func (s *Store) Add(key string, lookup Lookup) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.lines[key]; ok {
		l.Quantity++
		s.lines[key] = l
		s.save()
		return newCart(s.lines), nil
	}

	snap, err := lookup.LookupItem(key)
	if err != nil {
		s.logger.Debug("add rejected", zap.String("line_key", key), zap.Error(err))
		return newCart(s.lines), fmt.Errorf("add %q: %w", key, err)
	}

	resolved := snap.Key()
	if l, ok := s.lines[resolved]; ok {
		l.Quantity++
		s.lines[resolved] = l
	} else {
		snap.Quantity = 1
		s.lines[resolved] = snap
	}
	s.save()
	return newCart(s.lines), nil
}

// SetQuantity sets the quantity of an existing line. Quantities below 1 are
// clamped to 1; this never removes the line. Returns an error wrapping
// types.ErrLineNotFound when key is not in the cart.
func (s *Store) SetQuantity(key string, qty int) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[key]
	if !ok {
		return newCart(s.lines), fmt.Errorf("set quantity %q: %w", key, types.ErrLineNotFound)
	}
	if qty < 1 {
		qty = 1
	}
	l.Quantity = qty
	s.lines[key] = l
	s.save()
	return newCart(s.lines), nil
}

// Decrement lowers the quantity by one and removes the line when it reaches
// zero. Absent keys are a no-op.
func (s *Store) Decrement(key string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[key]
	if !ok {
		return newCart(s.lines)
	}
	l.Quantity--
	if l.Quantity < 1 {
		delete(s.lines, key)
	} else {
		s.lines[key] = l
	}
	s.save()
	return newCart(s.lines)
}

// Remove deletes the line. Idempotent: removing an absent key is not an
// error and does not rewrite storage.
func (s *Store) Remove(key string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[key]; !ok {
		return newCart(s.lines)
	}
	delete(s.lines, key)
	s.save()
	return newCart(s.lines)
}

// Clear empties the cart.
func (s *Store) Clear() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[string]types.CartLine)
	s.save()
	return newCart(s.lines)
}

// Count returns the sum of quantities.
func (s *Store) Count() int { return s.Snapshot().Count() }

// Subtotal returns the sum of price * quantity.
func (s *Store) Subtotal() float64 { return s.Snapshot().Subtotal() }

// Total returns Subtotal plus deliveryFee.
func (s *Store) Total(deliveryFee float64) float64 { return s.Snapshot().Total(deliveryFee) }
