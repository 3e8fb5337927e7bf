package compare

import (
	"context"
	"slices"

	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/domain"
)

// Capacity is the maximum number of products compared side by side.
const Capacity = 4

// Store persists compare set snapshots.
type Store interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, products []domain.Product) error
}

// Observer is notified of every mutation attempt and whether it changed the set.
type Observer func(op string, changed bool)

// Set is an ordered, deduplicated collection of at most Capacity products.
// The in-memory state is authoritative; every mutation is written through to
// the store, and a failed write is logged and otherwise ignored. A set whose
// load failed never writes, so the stored snapshot survives the outage.
type Set struct {
	store    Store
	products []domain.Product
	observe  Observer
	restored bool
}

type Option func(*Set)

func WithObserver(o Observer) Option {
	return func(s *Set) {
		s.observe = o
	}
}

// Restore creates a set from the store's snapshot. Incomplete or duplicated
// entries are dropped and anything past Capacity is cut off; a failed load
// starts the set empty and unrestored.
func Restore(ctx context.Context, store Store, opts ...Option) *Set {
	s := &Set{
		store:    store,
		products: make([]domain.Product, 0, Capacity),
	}
	for _, opt := range opts {
		opt(s)
	}

	stored, err := store.Load(ctx)
	if err != nil {
		log.Warnf("⚠️ Failed to restore compare set, starting empty: %v", err)
		return s
	}
	s.products = Sanitize(stored)
	s.restored = true
	return s
}

// Restored reports whether the set was loaded from its store.
func (s *Set) Restored() bool {
	return s.restored
}

// Sanitize keeps the first Capacity complete, distinct products.
func Sanitize(stored []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, Capacity)
	for _, p := range stored {
		if len(out) == Capacity {
			log.Debugf("Dropping compare entries past capacity %d", Capacity)
			break
		}
		if !p.Complete() {
			log.Debugf("Dropping incomplete compare entry %q", p.ID)
			continue
		}
		if containsID(out, p.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Add appends p unless it is already present or the set is full. A full set
// never evicts an existing entry.
func (s *Set) Add(ctx context.Context, p domain.Product) {
	changed := s.add(p)
	s.commit(ctx, "add", changed)
}

// Remove drops the product with the given id, if present.
func (s *Set) Remove(ctx context.Context, productID string) {
	changed := s.remove(productID)
	s.commit(ctx, "remove", changed)
}

// Toggle removes p when present and adds it otherwise.
func (s *Set) Toggle(ctx context.Context, p domain.Product) {
	var changed bool
	if s.Contains(p.ID) {
		changed = s.remove(p.ID)
	} else {
		changed = s.add(p)
	}
	s.commit(ctx, "toggle", changed)
}

// Clear empties the set.
func (s *Set) Clear(ctx context.Context) {
	changed := len(s.products) > 0
	s.products = s.products[:0]
	s.commit(ctx, "clear", changed)
}

// Contains reports whether a product with the given id is in the set.
func (s *Set) Contains(productID string) bool {
	return containsID(s.products, productID)
}

// Products returns a copy of the members in insertion order.
func (s *Set) Products() []domain.Product {
	return slices.Clone(s.products)
}

func (s *Set) Len() int {
	return len(s.products)
}

func (s *Set) Full() bool {
	return len(s.products) >= Capacity
}

func (s *Set) add(p domain.Product) bool {
	if s.Full() || s.Contains(p.ID) {
		return false
	}
	s.products = append(s.products, p)
	return true
}

func (s *Set) remove(productID string) bool {
	before := len(s.products)
	s.products = slices.DeleteFunc(s.products, func(p domain.Product) bool {
		return p.ID == productID
	})
	return len(s.products) != before
}

func (s *Set) commit(ctx context.Context, op string, changed bool) {
	if s.observe != nil {
		s.observe(op, changed)
	}
	if !s.restored {
		log.Warnf("⚠️ Compare set was never restored, not persisting %s", op)
		return
	}
	if err := s.store.Save(ctx, s.Products()); err != nil {
		log.Warnf("⚠️ Failed to persist compare set after %s: %v", op, err)
	}
}

func containsID(products []domain.Product, id string) bool {
	return slices.ContainsFunc(products, func(p domain.Product) bool {
		return p.ID == id
	})
}
