package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	cartuc "example.com/shop-demo/internal/usecase/cart"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity *int64 `json:"quantity" validate:"required,gte=0"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.GetCart(r.Context())))
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	view, err := a.cartSvc.AddToCart(r.Context(), req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCart(view))
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, err)
		return
	}

	view, err := a.cartSvc.UpdateQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(view))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.RemoveFromCart(r.Context(), id)))
}

// handleCartEvents streams the cart as server-sent events: the current state
// first, then one event per change until the client goes away.
func (a *API) handleCartEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	updates, cancel := a.cartSvc.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeCartEvent(w, a.cartSvc.GetCart(r.Context())); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := writeCartEvent(w, cartuc.NewView(state)); err != nil {
				a.logger(r.Context()).WithError(err).Debug("cart stream closed")
				return
			}
			flusher.Flush()
		}
	}
}

func writeCartEvent(w http.ResponseWriter, v *cartuc.View) error {
	payload, err := json.Marshal(mapCart(v))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: cart\ndata: %s\n\n", payload)
	return err
}
