// Package catalog talks to the remote product REST API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	domcategory "example.com/shop-demo/internal/domain/category"
	domproduct "example.com/shop-demo/internal/domain/product"
)

const maxBodyBytes = 4 << 20

type Options struct {
	BaseURL string
	Timeout time.Duration
	// Breaker trips after this many requests in a window when at least half failed.
	BreakerMinRequests uint32
	BreakerOpenFor     time.Duration
}

type Client struct {
	base   *url.URL
	http   *http.Client
	cb     *gobreaker.CircuitBreaker
	sf     singleflight.Group
	tracer trace.Tracer
	log    logrus.FieldLogger
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func NewClient(opts Options, log logrus.FieldLogger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid product API base URL %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerMinRequests == 0 {
		opts.BreakerMinRequests = 5
	}
	if opts.BreakerOpenFor <= 0 {
		opts.BreakerOpenFor = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "catalog")

	st := gobreaker.Settings{
		Name:        "ProductAPI",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     opts.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= opts.BreakerMinRequests && failureRatio >= 0.5
		},
		// a 4xx answer means the API is up; a cancelled request says nothing about it
		IsSuccessful: func(err error) bool {
			var se *statusError
			if pkgerrors.As(err, &se) {
				return se.code < 500
			}
			return err == nil || pkgerrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("circuit breaker %s changed from %s to %s", name, from, to)
		},
	}

	return &Client{
		base:   base,
		http:   &http.Client{Timeout: opts.Timeout},
		cb:     gobreaker.NewCircuitBreaker(st),
		tracer: otel.Tracer("shop-demo/catalog"),
		log:    log,
	}, nil
}

type pageResponse struct {
	Products []domproduct.Product `json:"products"`
	Total    int64                `json:"total"`
	Skip     int64                `json:"skip"`
	Limit    int64                `json:"limit"`
}

func (c *Client) List(ctx context.Context, skip, limit int64) (*domproduct.Page, error) {
	return c.page(ctx, "/products", pageQuery(skip, limit))
}

func (c *Client) Search(ctx context.Context, query string, skip, limit int64) (*domproduct.Page, error) {
	q := pageQuery(skip, limit)
	q.Set("q", query)
	return c.page(ctx, "/products/search", q)
}

func (c *Client) ListByCategory(ctx context.Context, category string, skip, limit int64) (*domproduct.Page, error) {
	return c.page(ctx, "/products/category/"+url.PathEscape(category), pageQuery(skip, limit))
}

func (c *Client) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	var p domproduct.Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories accepts both the object form ({slug,name,url}) and the older
// plain string form of the categories endpoint.
func (c *Client) Categories(ctx context.Context) ([]domcategory.Category, error) {
	var raw []json.RawMessage
	if err := c.get(ctx, "/products/categories", nil, &raw); err != nil {
		return nil, err
	}

	out := make([]domcategory.Category, 0, len(raw))
	for _, r := range raw {
		var slug string
		if err := json.Unmarshal(r, &slug); err == nil {
			out = append(out, domcategory.Category{Slug: slug, Name: slug})
			continue
		}
		var cat domcategory.Category
		if err := json.Unmarshal(r, &cat); err != nil {
			return nil, pkgerrors.Wrap(err, "decode category")
		}
		out = append(out, cat)
	}
	return out, nil
}

func pageQuery(skip, limit int64) url.Values {
	q := url.Values{}
	q.Set("skip", strconv.FormatInt(skip, 10))
	q.Set("limit", strconv.FormatInt(limit, 10))
	return q
}

func (c *Client) page(ctx context.Context, path string, q url.Values) (*domproduct.Page, error) {
	var resp pageResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	if resp.Products == nil {
		resp.Products = []domproduct.Product{}
	}
	return &domproduct.Page{
		Products: resp.Products,
		Total:    resp.Total,
		Skip:     resp.Skip,
		Limit:    resp.Limit,
	}, nil
}

// get fetches path and decodes the body into dst. Identical concurrent
// requests share one round trip. The round trip does not inherit the
// caller's cancellation, only the client timeout, so one caller giving up
// neither fails the others nor counts against the breaker.
func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	target := u.String()

	ctx, span := c.tracer.Start(ctx, "catalog GET "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.url", target))

	detached := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(target, func() (any, error) {
		return c.cb.Execute(func() (any, error) {
			return c.fetch(detached, target)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return ctx.Err()
	case res = <-ch:
	}
	span.SetAttributes(attribute.Bool("singleflight.shared", res.Shared))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		return c.classify(target, res.Err)
	}

	if err := json.Unmarshal(res.Val.([]byte), dst); err != nil {
		span.RecordError(err)
		return pkgerrors.Wrapf(err, "decode %s", target)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	return body, nil
}

func (c *Client) classify(target string, err error) error {
	var se *statusError
	switch {
	case pkgerrors.As(err, &se) && se.code == http.StatusNotFound:
		return domproduct.ErrProductNotFound
	case pkgerrors.Is(err, gobreaker.ErrOpenState), pkgerrors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.Wrap(domproduct.ErrCatalogUnavailable, "circuit open")
	default:
		c.log.WithError(err).WithField("url", target).Warn("product API request failed")
		return pkgerrors.Wrapf(domproduct.ErrCatalogUnavailable, "GET %s: %v", target, err)
	}
}
