package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domcategory "example.com/shop-demo/internal/domain/category"
	domproduct "example.com/shop-demo/internal/domain/product"
	"example.com/shop-demo/internal/infra/metrics"
	"example.com/shop-demo/internal/infra/persistence"
	"example.com/shop-demo/internal/infra/persistence/localstore"
	"example.com/shop-demo/internal/infra/security"
	authuc "example.com/shop-demo/internal/usecase/auth"
	cartuc "example.com/shop-demo/internal/usecase/cart"
	productuc "example.com/shop-demo/internal/usecase/product"
	useruc "example.com/shop-demo/internal/usecase/user"
)

type fakeCatalog struct {
	products   map[int64]domproduct.Product
	categories []domcategory.Category
	err        error
	lastCall   string
	lastArg    string
	lastSkip   int64
	lastLimit  int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int64]domproduct.Product{
			1: {
				ID:                 1,
				Title:              "Essence Mascara Lash Princess",
				Category:           "beauty",
				Price:              decimal.RequireFromString("9.99"),
				DiscountPercentage: decimal.RequireFromString("10"),
				Stock:              5,
				Images:             []string{"https://cdn.example/1.png"},
			},
			2: {
				ID:       2,
				Title:    "Eyeshadow Palette with Mirror",
				Category: "beauty",
				Price:    decimal.RequireFromString("19.99"),
				Stock:    44,
			},
		},
		categories: []domcategory.Category{
			{Slug: "beauty", Name: "Beauty"},
			{Slug: "fragrances", Name: "Fragrances"},
		},
	}
}

func (f *fakeCatalog) page(call, arg string, skip, limit int64) (*domproduct.Page, error) {
	f.lastCall, f.lastArg, f.lastSkip, f.lastLimit = call, arg, skip, limit
	if f.err != nil {
		return nil, f.err
	}
	page := &domproduct.Page{Total: int64(len(f.products)), Skip: skip, Limit: limit}
	for id := int64(1); id <= int64(len(f.products)); id++ {
		page.Products = append(page.Products, f.products[id])
	}
	return page, nil
}

func (f *fakeCatalog) List(ctx context.Context, skip, limit int64) (*domproduct.Page, error) {
	return f.page("list", "", skip, limit)
}

func (f *fakeCatalog) Search(ctx context.Context, query string, skip, limit int64) (*domproduct.Page, error) {
	return f.page("search", query, skip, limit)
}

func (f *fakeCatalog) ListByCategory(ctx context.Context, category string, skip, limit int64) (*domproduct.Page, error) {
	return f.page("category", category, skip, limit)
}

func (f *fakeCatalog) Categories(ctx context.Context) ([]domcategory.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeCatalog) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	return &p, nil
}

type testEnv struct {
	router  chi.Router
	slots   *persistence.MemoryStore
	catalog *fakeCatalog
	store   *cartuc.Store
	tokens  *security.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log, _ := test.NewNullLogger()

	slots := persistence.NewMemoryStore()
	users := localstore.NewUserRepository(slots)
	sessions := localstore.NewSessionRepository(slots)
	hasher := security.NewBcryptService(bcrypt.MinCost)
	tokens := security.NewJWTService("test-secret", time.Hour)

	authSvc := authuc.NewService(users, sessions, hasher, tokens, nil, log)
	require.NoError(t, authSvc.SeedDemoUsers(ctx))

	catalog := newFakeCatalog()
	productSvc := productuc.NewService(catalog)
	store := cartuc.Open(ctx, localstore.NewCartSnapshot(slots), log, nil)

	api := NewAPI(Dependencies{
		AuthService:    authSvc,
		UserService:    useruc.NewService(users, sessions, hasher),
		ProductService: productSvc,
		CartService:    cartuc.NewService(store, productSvc),
		Logger:         log,
		Metrics:        metrics.New(),
	})

	return &testEnv{
		router:  api.Router(),
		slots:   slots,
		catalog: catalog,
		store:   store,
		tokens:  tokens,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	token, ok := response["token"].(string)
	require.True(t, ok, "token should be a string")
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestMetricsEndpointCountsCartMutations(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "demo@gmail.com", "MyPass@789")

	rec := env.do(t, http.MethodPost, "/api/v1/me/cart/items", map[string]any{"product_id": 1}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `shopdemo_http_requests_total{route="/api/v1/me/cart/items",status="201"} 1`), rec.Body.String())
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestHealth_ReportsStorageFailure(t *testing.T) {
	log, _ := test.NewNullLogger()
	api := NewAPI(Dependencies{Logger: log, Storage: fakePinger{err: errors.New("dial tcp: refused")}})

	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
