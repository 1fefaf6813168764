package cart

import (
	"github.com/shopspring/decimal"

	domproduct "example.com/shop-demo/internal/domain/product"
)

// LineItem is a product in the cart together with how many of it were added.
// The product ID is the identity of the line.
type LineItem struct {
	domproduct.Product
	Quantity int64 `json:"quantity"`
}

// State is the ordered set of line items, first added first.
type State struct {
	Items []LineItem `json:"items"`
}

// Empty returns a cart with no lines and a non-nil item slice.
func Empty() State {
	return State{Items: []LineItem{}}
}

// Clone returns a deep copy that shares no slices with s.
func (s State) Clone() State {
	out := State{Items: make([]LineItem, len(s.Items))}
	for i, item := range s.Items {
		out.Items[i] = item
		if item.Images != nil {
			out.Items[i].Images = append(make([]string, 0, len(item.Images)), item.Images...)
		}
	}
	return out
}

// IndexOf returns the position of the line for productID, or -1.
func (s State) IndexOf(productID int64) int {
	for i := range s.Items {
		if s.Items[i].ID == productID {
			return i
		}
	}
	return -1
}

// Find returns the line for productID and whether it exists.
func (s State) Find(productID int64) (LineItem, bool) {
	if i := s.IndexOf(productID); i >= 0 {
		return s.Items[i], true
	}
	return LineItem{}, false
}

// Len is the number of distinct lines, not the unit count.
func (s State) Len() int {
	return len(s.Items)
}

// Normalize returns a copy in which every product ID appears once and every
// quantity is positive. Lines with quantity <= 0 are dropped, repeated IDs
// are merged into the first occurrence with their quantities summed, and nil
// image lists become empty.
func (s State) Normalize() State {
	out := State{Items: make([]LineItem, 0, len(s.Items))}
	pos := make(map[int64]int, len(s.Items))
	for _, item := range s.Items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := pos[item.ID]; ok {
			out.Items[i].Quantity += item.Quantity
			continue
		}
		if item.Images == nil {
			item.Images = []string{}
		} else {
			item.Images = append(make([]string, 0, len(item.Images)), item.Images...)
		}
		pos[item.ID] = len(out.Items)
		out.Items = append(out.Items, item)
	}
	return out
}

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// LinePrices are the amounts shown for one line, rounded to cents.
type LinePrices struct {
	Original   decimal.Decimal `json:"original"`
	Discounted decimal.Decimal `json:"discounted"`
	Savings    decimal.Decimal `json:"savings"`
}

func (li LineItem) Prices() LinePrices {
	qty := decimal.NewFromInt(li.Quantity)
	multiplier := one
	if !li.DiscountPercentage.IsZero() {
		multiplier = one.Sub(li.DiscountPercentage.Div(hundred))
	}
	unit := li.Price.Mul(multiplier)
	return LinePrices{
		Original:   li.Price.Mul(qty).Round(2),
		Discounted: unit.Mul(qty).Round(2),
		Savings:    li.Price.Sub(unit).Mul(qty).Round(2),
	}
}

type Totals struct {
	Count      int64           `json:"count"`
	Original   decimal.Decimal `json:"original"`
	Discounted decimal.Decimal `json:"discounted"`
	Savings    decimal.Decimal `json:"savings"`
}

// Totals sums the rounded per-line amounts.
func (s State) Totals() Totals {
	t := Totals{
		Original:   decimal.Zero,
		Discounted: decimal.Zero,
	}
	for _, item := range s.Items {
		p := item.Prices()
		t.Count += item.Quantity
		t.Original = t.Original.Add(p.Original)
		t.Discounted = t.Discounted.Add(p.Discounted)
	}
	t.Savings = t.Original.Sub(t.Discounted)
	return t
}
