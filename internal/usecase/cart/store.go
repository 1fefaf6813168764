package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	domcart "example.com/shop-demo/internal/domain/cart"
	domproduct "example.com/shop-demo/internal/domain/product"
)

const (
	OpAdd            = "add"
	OpRemove         = "remove"
	OpUpdateQuantity = "update_quantity"
)

// Recorder receives cart activity for metrics.
type Recorder interface {
	Mutation(op string)
	PersistFailure(op string)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string)       {}
func (nopRecorder) PersistFailure(string) {}

// Store owns the cart. Every mutation is applied in memory and then the full
// state is written through the persister before the lock is released. Write
// failures are logged and dropped; memory stays authoritative.
type Store struct {
	mu        sync.Mutex
	state     domcart.State
	persister domcart.Persister
	log       logrus.FieldLogger
	rec       Recorder

	subs   map[int]chan domcart.State
	nextID int
}

// Open seeds the store from the persister. A missing or unreadable snapshot
// yields an empty cart.
func Open(ctx context.Context, persister domcart.Persister, log logrus.FieldLogger, rec Recorder) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if rec == nil {
		rec = nopRecorder{}
	}

	state, err := persister.Load(ctx)
	switch {
	case errors.Is(err, domcart.ErrCorruptSnapshot):
		log.WithError(err).Warn("cart snapshot unreadable, starting with an empty cart")
		state = domcart.Empty()
	case err != nil:
		log.WithError(err).Error("could not load cart")
		state = domcart.Empty()
	}
	if n := len(state.Items); n > 0 {
		state = state.Normalize()
		if dropped := n - len(state.Items); dropped > 0 {
			log.WithField("lines", dropped).Warn("merged duplicate or empty cart lines")
		}
	}
	if state.Items == nil {
		state = domcart.Empty()
	}

	return &Store{
		state:     state,
		persister: persister,
		log:       log.WithField("component", "cart"),
		rec:       rec,
		subs:      make(map[int]chan domcart.State),
	}
}

// Add puts one more of p in the cart, appending a new line at quantity 1 when
// p is not there yet.
func (s *Store) Add(ctx context.Context, p domproduct.Product) domcart.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.state.IndexOf(p.ID); i >= 0 {
		s.state.Items[i].Quantity++
	} else {
		item := domcart.LineItem{Product: p, Quantity: 1}
		item.Images = append(make([]string, 0, len(p.Images)), p.Images...)
		s.state.Items = append(s.state.Items, item)
	}
	return s.commit(ctx, OpAdd)
}

// Remove drops the line for productID. Absent IDs are not an error.
func (s *Store) Remove(ctx context.Context, productID int64) domcart.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
	return s.commit(ctx, OpRemove)
}

// UpdateQuantity sets the quantity of productID to exactly quantity. Zero
// removes the line. Callers must not pass a negative quantity; one that does
// is logged and ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int64) domcart.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 0 {
		s.log.WithFields(logrus.Fields{
			"product_id": productID,
			"quantity":   quantity,
		}).Warn("negative quantity ignored")
		return s.state.Clone()
	}

	if quantity == 0 {
		s.removeLocked(productID)
	} else if i := s.state.IndexOf(productID); i >= 0 {
		s.state.Items[i].Quantity = quantity
	}
	return s.commit(ctx, OpUpdateQuantity)
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() domcart.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe delivers a snapshot after every mutation. The channel holds only
// the latest snapshot, so a slow reader skips intermediate ones. Call cancel
// to stop; it closes the channel.
func (s *Store) Subscribe() (<-chan domcart.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan domcart.State, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) removeLocked(productID int64) {
	kept := s.state.Items[:0]
	for _, item := range s.state.Items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	s.state.Items = kept
}

// commit persists and publishes the current state. Must hold s.mu.
func (s *Store) commit(ctx context.Context, op string) domcart.State {
	s.rec.Mutation(op)

	snapshot := s.state.Clone()
	if err := s.persister.Save(context.WithoutCancel(ctx), snapshot); err != nil {
		s.rec.PersistFailure(op)
		s.log.WithError(err).WithField("op", op).Error("could not save cart")
	}

	for _, ch := range s.subs {
		publish(ch, snapshot.Clone())
	}
	return snapshot
}

func publish(ch chan domcart.State, state domcart.State) {
	select {
	case ch <- state:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- state:
	default:
	}
}
