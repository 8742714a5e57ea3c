package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://dummyjson.com/products"
	DefaultTimeout = 2000 * time.Millisecond
)

// ErrFetchFailed wraps every network, status or decode failure. Callers get
// no partial result alongside it.
var ErrFetchFailed = errors.New("catalog fetch failed")

// Client talks to the remote products API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient returns a client rooted at baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the default listing endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// PageURL builds the paginated listing endpoint.
func (c *Client) PageURL(limit, skip int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	return c.baseURL + "?" + q.Encode()
}

// SearchURL builds the search endpoint. An empty query is forwarded as-is.
func (c *Client) SearchURL(query string) string {
	q := url.Values{}
	q.Set("q", query)
	return c.baseURL + "/search?" + q.Encode()
}

// ProductURL builds the product detail endpoint.
func (c *Client) ProductURL(id int) string {
	return c.baseURL + "/" + strconv.Itoa(id)
}

// FetchProducts loads a product listing from endpoint (the default listing when empty).
func (c *Client) FetchProducts(ctx context.Context, endpoint string) ([]Product, error) {
	if endpoint == "" {
		endpoint = c.baseURL
	}
	var resp listResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		log.Printf("[catalog] something went wrong while fetching products from %s: %v", endpoint, err)
		return nil, err
	}
	if resp.Products == nil {
		resp.Products = []Product{}
	}
	return resp.Products, nil
}

// List loads the default listing.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	return c.FetchProducts(ctx, c.baseURL)
}

// Page loads one page of the listing.
func (c *Client) Page(ctx context.Context, limit, skip int) ([]Product, error) {
	return c.FetchProducts(ctx, c.PageURL(limit, skip))
}

// Search runs a full-text search.
func (c *Client) Search(ctx context.Context, query string) ([]Product, error) {
	return c.FetchProducts(ctx, c.SearchURL(query))
}

// ProductByID loads the full detail of one product.
func (c *Client) ProductByID(ctx context.Context, id int) (*Product, error) {
	var p Product
	if err := c.getJSON(ctx, c.ProductURL(id), &p); err != nil {
		log.Printf("[catalog] error fetching product %d: %v", id, err)
		return nil, err
	}
	return &p, nil
}

// getJSON issues a GET bounded by the client timeout. The deadline is released
// as soon as the body has been decoded, so a completed request is never aborted.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrFetchFailed, err)
	}
	return nil
}
