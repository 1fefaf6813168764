package product

import (
	"context"
	"strings"

	domcategory "example.com/shop-demo/internal/domain/category"
	dom "example.com/shop-demo/internal/domain/product"
)

const (
	DefaultLimit = 8
	MaxLimit     = 100
)

type Service struct {
	catalog dom.Catalog
}

func NewService(catalog dom.Catalog) *Service {
	return &Service{catalog: catalog}
}

type ListResult struct {
	dom.Page
	PageNumber int64
	TotalPages int64
}

// List picks the catalog endpoint the way the product list page does: a
// search term wins over a category, a category over the plain listing.
func (s *Service) List(ctx context.Context, q dom.Query) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	skip := (q.Page - 1) * q.Limit

	var (
		page *dom.Page
		err  error
	)
	switch search, category := strings.TrimSpace(q.Search), strings.TrimSpace(q.Category); {
	case search != "":
		page, err = s.catalog.Search(ctx, search, skip, q.Limit)
	case category != "":
		page, err = s.catalog.ListByCategory(ctx, category, skip, q.Limit)
	default:
		page, err = s.catalog.List(ctx, skip, q.Limit)
	}
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Page:       *page,
		PageNumber: q.Page,
		TotalPages: (page.Total + q.Limit - 1) / q.Limit,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]domcategory.Category, error) {
	return s.catalog.Categories(ctx)
}
