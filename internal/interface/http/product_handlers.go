package http

import (
	"net/http"
	"strconv"

	domproduct "example.com/shop-demo/internal/domain/product"
)

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domproduct.Query{
		Search:   q.Get("q"),
		Category: q.Get("category"),
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			query.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			query.Limit = n
		}
	}

	result, err := a.productSvc.List(r.Context(), query)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	products := result.Products
	if products == nil {
		products = []domproduct.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":        products,
		"total":       result.Total,
		"page":        result.PageNumber,
		"limit":       result.Limit,
		"total_pages": result.TotalPages,
	})
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.productSvc.Categories(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": categories})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
