package cart

import (
	"context"
	"errors"

	domcart "example.com/shop-demo/internal/domain/cart"
	domproduct "example.com/shop-demo/internal/domain/product"
)

var ErrNegativeQuantity = errors.New("quantity must not be negative")

type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*domproduct.Product, error)
}

// View is what the cart page renders.
type View struct {
	State  domcart.State
	Totals domcart.Totals
}

type Service struct {
	store    *Store
	products ProductReader
}

func NewService(store *Store, products ProductReader) *Service {
	return &Service{
		store:    store,
		products: products,
	}
}

func NewView(state domcart.State) *View {
	return &View{State: state, Totals: state.Totals()}
}

func (s *Service) GetCart(ctx context.Context) *View {
	return NewView(s.store.Snapshot())
}

// AddToCart looks the product up in the catalog and adds one of it.
func (s *Service) AddToCart(ctx context.Context, productID int64) (*View, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewView(s.store.Add(ctx, *p)), nil
}

func (s *Service) RemoveFromCart(ctx context.Context, productID int64) *View {
	return NewView(s.store.Remove(ctx, productID))
}

// UpdateQuantity is the guarded entry point: negative quantities are
// rejected here and never reach the store.
func (s *Service) UpdateQuantity(ctx context.Context, productID, quantity int64) (*View, error) {
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	return NewView(s.store.UpdateQuantity(ctx, productID, quantity)), nil
}

func (s *Service) Subscribe() (<-chan domcart.State, func()) {
	return s.store.Subscribe()
}
