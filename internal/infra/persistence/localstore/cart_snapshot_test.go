package localstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domcart "example.com/shop-demo/internal/domain/cart"
	domproduct "example.com/shop-demo/internal/domain/product"
	"example.com/shop-demo/internal/infra/persistence"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func lineItem(id int64, price string, qty int64) domcart.LineItem {
	return domcart.LineItem{
		Product: domproduct.Product{
			ID:                 id,
			Title:              fmt.Sprintf("Product %d", id),
			Brand:              "Acme",
			Category:           "beauty",
			Price:              decimal.RequireFromString(price),
			DiscountPercentage: decimal.RequireFromString("12.5"),
			Thumbnail:          fmt.Sprintf("https://cdn.example.com/%d/thumb.png", id),
			Rating:             4.2,
			AvailabilityStatus: "In Stock",
			Images:             []string{fmt.Sprintf("https://cdn.example.com/%d/1.png", id)},
		},
		Quantity: qty,
	}
}

func TestCartSnapshot_LoadMissingSlotIsEmpty(t *testing.T) {
	snap := NewCartSnapshot(persistence.NewMemoryStore())

	state, err := snap.Load(context.Background())

	require.NoError(t, err)
	require.NotNil(t, state.Items)
	require.Len(t, state.Items, 0)
}

func TestCartSnapshot_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state domcart.State
	}{
		{name: "empty", state: domcart.Empty()},
		{name: "one item", state: domcart.State{Items: []domcart.LineItem{lineItem(1, "10", 1)}}},
		{name: "several items", state: domcart.State{Items: []domcart.LineItem{
			lineItem(7, "9.99", 3),
			lineItem(2, "1499.5", 1),
			lineItem(11, "0.01", 42),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			snap := NewCartSnapshot(persistence.NewMemoryStore())

			require.NoError(t, snap.Save(ctx, tt.state))
			got, err := snap.Load(ctx)

			require.NoError(t, err)
			if diff := cmp.Diff(tt.state, got, decimalEqual); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCartSnapshot_Layout(t *testing.T) {
	ctx := context.Background()
	slots := persistence.NewMemoryStore()
	snap := NewCartSnapshot(slots)

	require.NoError(t, snap.Save(ctx, domcart.State{Items: []domcart.LineItem{lineItem(1, "10", 2)}}))

	raw, err := slots.Get(ctx, CartKey)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"items":[{"id":1,`)
	require.Contains(t, string(raw), `"quantity":2`)
	require.Contains(t, string(raw), `"discountPercentage":"12.5"`)
}

func TestCartSnapshot_SaveNilItemsWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	slots := persistence.NewMemoryStore()

	require.NoError(t, NewCartSnapshot(slots).Save(ctx, domcart.State{}))

	raw, err := slots.Get(ctx, CartKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[]}`, string(raw))
}

func TestCartSnapshot_LoadAcceptsNumericPrices(t *testing.T) {
	ctx := context.Background()
	slots := persistence.NewMemoryStore()
	require.NoError(t, slots.Set(ctx, CartKey, []byte(
		`{"items":[{"id":5,"title":"Mascara","price":9.99,"discountPercentage":7.17,"quantity":2,"images":[]}]}`,
	)))

	state, err := NewCartSnapshot(slots).Load(ctx)

	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	require.Equal(t, int64(5), state.Items[0].ID)
	require.Equal(t, int64(2), state.Items[0].Quantity)
	require.True(t, state.Items[0].Price.Equal(decimal.RequireFromString("9.99")))
}

func TestCartSnapshot_LoadMergesDuplicateLines(t *testing.T) {
	ctx := context.Background()
	slots := persistence.NewMemoryStore()
	require.NoError(t, slots.Set(ctx, CartKey, []byte(
		`{"items":[{"id":2,"price":"5","quantity":1},{"id":7,"price":"1","quantity":1},{"id":2,"price":"5","quantity":3}]}`,
	)))

	state, err := NewCartSnapshot(slots).Load(ctx)

	require.NoError(t, err)
	require.Len(t, state.Items, 2)
	require.Equal(t, int64(2), state.Items[0].ID)
	require.Equal(t, int64(4), state.Items[0].Quantity)
	require.Equal(t, int64(7), state.Items[1].ID)
	require.NotNil(t, state.Items[0].Images)
}

func TestCartSnapshot_LoadDropsNonPositiveQuantities(t *testing.T) {
	ctx := context.Background()
	slots := persistence.NewMemoryStore()
	require.NoError(t, slots.Set(ctx, CartKey, []byte(
		`{"items":[{"id":1,"price":"5","quantity":0},{"id":3,"price":"5","quantity":-2},{"id":2,"price":"5","quantity":1}]}`,
	)))

	state, err := NewCartSnapshot(slots).Load(ctx)

	require.NoError(t, err)
	require.Len(t, state.Items, 1)
	require.Equal(t, int64(2), state.Items[0].ID)
	require.Equal(t, int64(1), state.Items[0].Quantity)
}

func TestCartSnapshot_LoadCorruptKeepsBackup(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{"items": [`},
		{name: "wrong shape", raw: `[1,2,3]`},
		{name: "missing items", raw: `{"products":[]}`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			slots := persistence.NewMemoryStore()
			require.NoError(t, slots.Set(ctx, CartKey, []byte(tt.raw)))

			state, err := NewCartSnapshot(slots).Load(ctx)

			require.ErrorIs(t, err, domcart.ErrCorruptSnapshot)
			require.Len(t, state.Items, 0)

			backup, err := slots.Get(ctx, CorruptCartKey)
			require.NoError(t, err)
			require.Equal(t, tt.raw, string(backup))
		})
	}
}

type failingStore struct {
	persistence.Store
	setErr error
	getErr error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func TestCartSnapshot_SaveReturnsStoreError(t *testing.T) {
	quota := errors.New("quota exceeded")
	snap := NewCartSnapshot(&failingStore{Store: persistence.NewMemoryStore(), setErr: quota})

	err := snap.Save(context.Background(), domcart.State{Items: []domcart.LineItem{lineItem(1, "1", 1)}})

	require.ErrorIs(t, err, quota)
}

func TestCartSnapshot_LoadReadErrorIsNotCorruption(t *testing.T) {
	down := errors.New("connection refused")
	snap := NewCartSnapshot(&failingStore{Store: persistence.NewMemoryStore(), getErr: down})

	state, err := snap.Load(context.Background())

	require.ErrorIs(t, err, down)
	require.NotErrorIs(t, err, domcart.ErrCorruptSnapshot)
	require.Len(t, state.Items, 0)
}
