// Package cart owns a session's cart: its single-vendor line items, their
// persistence and rehydration from storage.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/metrics"
	"github.com/vikram583135/platepal2.o-sub000/internal/reconcile"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
)

var (
	ErrInvalidItem   = errors.New("menu item must have an id and a non-negative price")
	ErrItemNotInCart = errors.New("item is not in the cart")
)

// Store is the only writer of one cart. Every mutation is persisted under
// the store's key. Reads used for pricing reconcile the current items first.
type Store struct {
	mu         sync.RWMutex
	cart       domain.Cart
	mutations  uint64
	key        string
	repo       repo.CartRepository
	reconciler *reconcile.Reconciler
	logger     *zap.SugaredLogger

	hydrated     atomic.Bool
	hydratedOnce sync.Once
	hydratedCh   chan struct{}
}

func NewStore(key string, repo repo.CartRepository, reconciler *reconcile.Reconciler, logger *zap.SugaredLogger) *Store {
	if reconciler == nil {
		reconciler = reconcile.New(logger)
	}
	return &Store{
		cart:       domain.Cart{Items: []domain.CartLineItem{}},
		key:        key,
		repo:       repo,
		reconciler: reconciler,
		logger:     logger,
		hydratedCh: make(chan struct{}),
	}
}

// Start rehydrates the cart in the background. Callers must not assume the
// cart is populated when Start returns; see Hydrated and HydrationDone.
func (s *Store) Start(ctx context.Context) {
	go func() {
		if err := s.Rehydrate(ctx); err != nil {
			s.logger.Warnw("cart rehydration failed, starting with an empty cart", "key", s.key, "error", err)
		}
	}()
}

// Hydrated reports whether rehydration has finished.
func (s *Store) Hydrated() bool {
	return s.hydrated.Load()
}

// HydrationDone is closed once rehydration has finished.
func (s *Store) HydrationDone() <-chan struct{} {
	return s.hydratedCh
}

func (s *Store) markHydrated() {
	s.hydratedOnce.Do(func() {
		s.hydrated.Store(true)
		close(s.hydratedCh)
	})
}

// Rehydrate loads the stored record, reconciles it and makes it the current
// cart. Once the store has been mutated, the in-memory cart wins over
// whatever is stored.
func (s *Store) Rehydrate(ctx context.Context) error {
	defer s.markHydrated()

	var data []byte
	loaded, err := retry.Do(ctx, retry.LoadPolicy, func(attempt int) (bool, error) {
		b, err := s.repo.Load(ctx, s.key)
		if errors.Is(err, domain.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			s.logger.Debugw("cart load attempt failed", "key", s.key, "attempt", attempt, "error", err)
			return false, err
		}
		data = b
		return true, nil
	})
	if !loaded {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if data == nil {
		return nil
	}

	decoded := Decode(data, s.reconciler)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mutations > 0 {
		s.logger.Infow("cart changed during rehydration, keeping in-memory cart", "key", s.key)
		return nil
	}

	s.cart = decoded.Cart
	s.logger.Debugw("cart rehydrated", "key", s.key, "items", len(s.cart.Items), "version", decoded.Version)

	if decoded.Changed {
		s.logger.Infow("rewriting reconciled cart", "key", s.key, "stored_version", decoded.Version)
		return s.persistLocked(ctx)
	}
	return nil
}

// AddItem adds one unit of item. A cart bound to another vendor is
// replaced by the new item. Adding an item already in the cart increments
// its quantity and keeps the modifiers chosen when it was first added.
func (s *Store) AddItem(ctx context.Context, item domain.MenuItemRef, modifiers []domain.Modifier, vendorID string) error {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" || item.Price.IsNegative() {
		return ErrInvalidItem
	}
	vendorID = strings.TrimSpace(vendorID)
	mods := domain.NormalizeModifiers(modifiers)

	return s.mutate(ctx, "add", func(c *domain.Cart) {
		if c.VendorID != "" && vendorID != "" && c.VendorID != vendorID {
			if !c.IsEmpty() {
				s.logger.Infow("item from another vendor, replacing cart",
					"key", s.key, "old_vendor_id", c.VendorID, "vendor_id", vendorID, "dropped_items", len(c.Items))
			}
			*c = domain.Cart{}
		}
		// a cart without a vendor is bound by the first add that names one
		if c.VendorID == "" {
			c.VendorID = vendorID
		}

		if i := c.IndexOf(item.ID); i >= 0 {
			c.Items[i].Quantity++
			if !sameModifiers(c.Items[i].SelectedModifiers, mods) {
				s.logger.Debugw("keeping first modifier selection on increment", "key", s.key, "menu_item_id", item.ID)
			}
			return
		}

		c.Items = append(c.Items, domain.CartLineItem{
			MenuItem:          item,
			Quantity:          1,
			SelectedModifiers: mods,
		})
	})
}

// RemoveItem removes the line for itemID. Removing a missing item is a no-op.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.RLock()
	present := s.cart.IndexOf(itemID) >= 0
	s.mu.RUnlock()
	if !present {
		return nil
	}

	return s.mutate(ctx, "remove", func(c *domain.Cart) {
		if i := c.IndexOf(itemID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	})
}

// UpdateQuantity sets the quantity of a line; qty <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(ctx, itemID)
	}

	s.mu.RLock()
	present := s.cart.IndexOf(itemID) >= 0
	s.mu.RUnlock()
	if !present {
		return ErrItemNotInCart
	}

	return s.mutate(ctx, "update_quantity", func(c *domain.Cart) {
		if i := c.IndexOf(itemID); i >= 0 {
			c.Items[i].Quantity = qty
		}
	})
}

// ClearCart empties the cart and its vendor binding.
func (s *Store) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, "clear", func(c *domain.Cart) {
		*c = domain.Cart{}
	})
}

// Total is the sum over reconciled lines of (price + modifiers) * quantity.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range s.ValidItems() {
		total = total.Add(li.LineTotal())
	}
	return total
}

// ItemCount is the sum of reconciled quantities.
func (s *Store) ItemCount() int {
	n := 0
	for _, li := range s.ValidItems() {
		n += li.Quantity
	}
	return n
}

// ValidItems returns the current lines after reconciliation.
func (s *Store) ValidItems() []domain.CartLineItem {
	s.mu.RLock()
	items := domain.Cart{Items: s.cart.Items}.Clone().Items
	s.mu.RUnlock()

	return s.reconciler.ReconcileItems(items)
}

// RawItemCount is the number of stored lines before reconciliation.
func (s *Store) RawItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cart.Items)
}

func (s *Store) VendorID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.VendorID
}

// Snapshot returns a copy of the cart as stored.
func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) mutate(ctx context.Context, op string, fn func(c *domain.Cart)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.cart)
	if s.cart.Items == nil {
		s.cart.Items = []domain.CartLineItem{}
	}
	if len(s.cart.Items) == 0 {
		s.cart.VendorID = ""
	}
	s.mutations++
	metrics.RecordCartMutation(op)

	return s.persistLocked(ctx)
}

// persistLocked saves the current cart. The in-memory cart stays as is
// when saving fails.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := Encode(s.cart)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, s.key, data); err != nil {
		s.logger.Errorw("failed to persist cart", "key", s.key, "error", err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func sameModifiers(a, b []domain.Modifier) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]struct{}, len(a))
	for _, m := range a {
		ids[m.ID] = struct{}{}
	}
	for _, m := range b {
		if _, ok := ids[m.ID]; !ok {
			return false
		}
	}
	return true
}
