package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	domcart "example.com/shop-demo/internal/domain/cart"
	domproduct "example.com/shop-demo/internal/domain/product"
	domuser "example.com/shop-demo/internal/domain/user"
	"example.com/shop-demo/internal/infra/metrics"
	"example.com/shop-demo/internal/infra/persistence"
	authuc "example.com/shop-demo/internal/usecase/auth"
	cartuc "example.com/shop-demo/internal/usecase/cart"
	productuc "example.com/shop-demo/internal/usecase/product"
	useruc "example.com/shop-demo/internal/usecase/user"
)

type API struct {
	authSvc    *authuc.Service
	userSvc    *useruc.Service
	productSvc *productuc.Service
	cartSvc    *cartuc.Service
	validator  *validator.Validate
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
	storage    persistence.Pinger
}

type Dependencies struct {
	AuthService    *authuc.Service
	UserService    *useruc.Service
	ProductService *productuc.Service
	CartService    *cartuc.Service
	Logger         logrus.FieldLogger
	// Metrics is optional; without it /metrics is not mounted.
	Metrics *metrics.Metrics
	// Storage is pinged by /health when the slot backend holds a connection.
	Storage persistence.Pinger
}

func NewAPI(deps Dependencies) *API {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &API{
		authSvc:    deps.AuthService,
		userSvc:    deps.UserService,
		productSvc: deps.ProductService,
		cartSvc:    deps.CartService,
		validator:  newValidator(),
		log:        log,
		metrics:    deps.Metrics,
		storage:    deps.Storage,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.logMiddleware)
	r.Use(chimw.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
	}
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", a.handleHealth)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", a.handleSignup)
		r.Post("/auth/login", a.handleLogin)
		r.Get("/auth/session", a.handleSession)
		r.Get("/products", a.handleListProducts)
		r.Get("/products/categories", a.handleListCategories)
		r.Get("/products/{id}", a.handleGetProduct)

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Post("/auth/logout", a.handleLogout)

			pr.Get("/me", a.handleGetProfile)
			pr.Put("/me", a.handleUpdateProfile)
			pr.Put("/me/password", a.handleChangePassword)

			pr.Get("/me/cart", a.handleGetCart)
			pr.Post("/me/cart/items", a.handleAddCartItem)
			pr.Patch("/me/cart/items/{id}", a.handleUpdateCartItem)
			pr.Delete("/me/cart/items/{id}", a.handleRemoveCartItem)
			pr.Get("/me/cart/events", a.handleCartEvents)
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.storage.Ping(ctx); err != nil {
			a.logger(r.Context()).WithError(err).Warn("storage ping failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "storage unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// respondBadRequest lists the failing field and rule for validation errors.
func respondBadRequest(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: details})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapUser(u *domuser.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"mobile":    u.Mobile,
	}
}

func mapCart(v *cartuc.View) map[string]any {
	items := make([]map[string]any, 0, len(v.State.Items))
	for _, item := range v.State.Items {
		items = append(items, mapLineItem(item))
	}
	return map[string]any{
		"items":  items,
		"totals": v.Totals,
	}
}

func mapLineItem(item domcart.LineItem) map[string]any {
	return map[string]any{
		"id":                 item.ID,
		"title":              item.Title,
		"brand":              item.Brand,
		"category":           item.Category,
		"thumbnail":          item.Thumbnail,
		"price":              item.Price,
		"discountPercentage": item.DiscountPercentage,
		"quantity":           item.Quantity,
		"prices":             item.Prices(),
	}
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domuser.ErrEmailAlreadyUsed):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrUserNotFound),
		errors.Is(err, domproduct.ErrProductNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domuser.ErrUnauthorized),
		errors.Is(err, domuser.ErrEmailNotFound),
		errors.Is(err, domuser.ErrInvalidPassword),
		errors.Is(err, domuser.ErrInvalidCredential):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domuser.ErrCurrentPasswordIncorrect),
		errors.Is(err, domuser.ErrSamePassword),
		errors.Is(err, domuser.ErrPasswordMismatch),
		errors.Is(err, cartuc.ErrNegativeQuantity):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domproduct.ErrCatalogUnavailable):
		respondError(w, http.StatusServiceUnavailable, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
