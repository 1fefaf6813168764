package product

import (
	"context"

	"example.com/shop-demo/internal/domain/category"
)

// Catalog is the read-only remote product API.
type Catalog interface {
	List(ctx context.Context, skip, limit int64) (*Page, error)
	Search(ctx context.Context, query string, skip, limit int64) (*Page, error)
	ListByCategory(ctx context.Context, category string, skip, limit int64) (*Page, error)
	Categories(ctx context.Context) ([]category.Category, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
}
