package product

import "github.com/shopspring/decimal"

type Product struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Brand              string          `json:"brand,omitempty"`
	Category           string          `json:"category"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Thumbnail          string          `json:"thumbnail"`
	Rating             float64         `json:"rating"`
	Stock              int64           `json:"stock"`
	AvailabilityStatus string          `json:"availabilityStatus,omitempty"`
	Images             []string        `json:"images"`
}

// Page is one window of a product listing as returned by the catalog API.
type Page struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Skip     int64     `json:"skip"`
	Limit    int64     `json:"limit"`
}

type Query struct {
	Search   string
	Category string
	Page     int64
	Limit    int64
}
