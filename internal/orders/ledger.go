// Package orders records mock checkouts. Checkout turns the current cart into
// an Order, appends it to a Ledger and clears the cart.
package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/basket/internal/cart"
	"github.com/mesh-intelligence/basket/pkg/types"
)

// Storage keys of the order logs.
const (
	DefaultKey = "orders"
	FoodKey    = "food_orders"
)

// Ledger is an append-only order log stored as a JSON array under one key.
type Ledger struct {
	mu      sync.Mutex
	storage types.Storage
	key     string
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithKey sets the storage key. Defaults to DefaultKey.
func WithKey(key string) Option {
	return func(l *Ledger) {
		if key != "" {
			l.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLedger creates a ledger over storage.
func NewLedger(storage types.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		storage: storage,
		key:     DefaultKey,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List returns every recorded order, oldest first. Missing, corrupt or
// unreadable data yields an empty list.
func (l *Ledger) List() []types.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	orders, err := l.read()
	if err != nil {
		l.logger.Warn("reading orders failed", zap.Error(err))
		return []types.Order{}
	}
	return orders
}

// read decodes the stored log. A missing or corrupt log reads as empty; any
// other storage failure is returned so callers never overwrite history they
// could not see.
func (l *Ledger) read() ([]types.Order, error) {
	raw, err := l.storage.GetItem(l.key)
	if errors.Is(err, types.ErrNotFound) {
		return []types.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	var orders []types.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		l.logger.Warn("order log is corrupt; treating as empty", zap.Error(err))
		return []types.Order{}, nil
	}
	if orders == nil {
		orders = []types.Order{}
	}
	return orders, nil
}

// Append adds order to the end of the log. Nothing is written when the
// existing log cannot be read.
func (l *Ledger) Append(order types.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.read()
	if err != nil {
		return err
	}
	orders = append(orders, order)
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	if err := l.storage.SetItem(l.key, string(data)); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

// Checkout records the current cart as an order and clears the cart. It
// returns types.ErrEmptyCart when there is nothing to order. When the order
// cannot be recorded the cart is left intact.
func Checkout(store *cart.Store, ledger *Ledger, deliveryFee float64) (types.Order, error) {
	c := store.Snapshot()
	if c.Empty() {
		return types.Order{}, types.ErrEmptyCart
	}

	order := types.Order{
		OrderID:     newOrderID(),
		Lines:       c.Lines,
		Subtotal:    c.Subtotal(),
		DeliveryFee: deliveryFee,
		Total:       c.Total(deliveryFee),
		Timestamp:   ledger.now().UTC(),
	}
	if err := ledger.Append(order); err != nil {
		return types.Order{}, fmt.Errorf("checkout: %w", err)
	}

	store.Clear()
	ledger.logger.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.Int("items", order.ItemCount()),
		zap.Float64("total", order.Total))
	return order, nil
}

func newOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "ORD-" + id.String()
}
