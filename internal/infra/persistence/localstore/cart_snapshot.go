package localstore

import (
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/pkg/errors"

	domcart "example.com/shop-demo/internal/domain/cart"
	"example.com/shop-demo/internal/infra/persistence"
)

// CartSnapshot stores the whole cart under the "cart" slot.
type CartSnapshot struct {
	slots persistence.Store
}

func NewCartSnapshot(slots persistence.Store) *CartSnapshot {
	return &CartSnapshot{slots: slots}
}

// Load returns an empty cart when the slot is absent. When the slot holds
// something that is not a cart it still returns an empty cart, together with
// ErrCorruptSnapshot, after copying the raw value to the "cart.corrupt" slot.
func (c *CartSnapshot) Load(ctx context.Context) (domcart.State, error) {
	raw, err := c.slots.Get(ctx, CartKey)
	if errors.Is(err, persistence.ErrSlotNotFound) {
		return domcart.Empty(), nil
	}
	if err != nil {
		return domcart.Empty(), pkgerrors.Wrap(err, "read cart slot")
	}

	state, decodeErr := decodeCart(raw)
	if decodeErr == nil {
		return state, nil
	}

	if err := c.slots.Set(ctx, CorruptCartKey, raw); err != nil {
		return domcart.Empty(), pkgerrors.Wrapf(domcart.ErrCorruptSnapshot, "%v (backup failed: %v)", decodeErr, err)
	}
	return domcart.Empty(), pkgerrors.Wrapf(domcart.ErrCorruptSnapshot, "%v", decodeErr)
}

func (c *CartSnapshot) Save(ctx context.Context, state domcart.State) error {
	if state.Items == nil {
		state.Items = []domcart.LineItem{}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(err, "encode cart")
	}
	return c.slots.Set(ctx, CartKey, raw)
}

func decodeCart(raw []byte) (domcart.State, error) {
	var doc struct {
		Items *[]domcart.LineItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domcart.State{}, err
	}
	if doc.Items == nil {
		return domcart.State{}, errors.New(`missing "items"`)
	}
	return domcart.State{Items: *doc.Items}.Normalize(), nil
}
