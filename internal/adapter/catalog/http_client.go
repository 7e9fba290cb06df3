package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/rocketshoes-cart/internal/core/domain"
)

const requestIDHeader = "X-Request-ID"

var (
	ErrNotFound          = errors.New("catalog resource not found")
	ErrMalformedResponse = errors.New("malformed catalog response")
)

// StatusError is returned for any non-2xx catalog response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// CacheSize bounds the product detail cache; zero disables it.
	CacheSize int
}

// HTTPClient reads stock and product details from the storefront REST API.
// Product details are cached, stock never is.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	products *lru.Cache[int, domain.Product]
	logger   logrus.FieldLogger
}

func NewHTTPClient(opts Options, logger logrus.FieldLogger) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("catalog: base url is required")
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[int, domain.Product](opts.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "catalog: create product cache")
		}
		c.products = cache
	}

	return c, nil
}

func (c *HTTPClient) GetStock(ctx context.Context, productID int) (domain.Stock, error) {
	var stock domain.Stock
	if err := c.get(ctx, fmt.Sprintf("/stock/%d", productID), &stock); err != nil {
		return domain.Stock{}, err
	}

	if stock.ID != productID || stock.Amount < 0 {
		return domain.Stock{}, errors.Wrapf(ErrMalformedResponse, "stock for product %d: %+v", productID, stock)
	}
	return stock, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	if c.products != nil {
		if p, ok := c.products.Get(productID); ok {
			return p, nil
		}
	}

	var product domain.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &product); err != nil {
		return domain.Product{}, err
	}

	if product.ID != productID {
		return domain.Product{}, errors.Wrapf(ErrMalformedResponse, "product %d: got id %d", productID, product.ID)
	}
	product.Amount = 0

	if c.products != nil {
		c.products.Add(productID, product)
	}
	return product, nil
}

// ListProducts returns the full catalog.
func (c *HTTPClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "catalog: build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "catalog: GET %s", url)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"url":        url,
		"status":     resp.StatusCode,
		"request_id": requestID,
		"duration":   time.Since(start),
	}).Debug("catalog request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "GET %s: %v", url, err)
	}
	return nil
}
