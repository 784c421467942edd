package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"storefront/catalogsync/internal/config"
	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/query"
	"storefront/catalogsync/internal/session"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// CatalogClient is the remote storefront API as seen by the sync core.
type CatalogClient interface {
	ListProducts(ctx context.Context, filters domain.FilterState) (*domain.ProductList, error)
	CheckFavorite(ctx context.Context, productID string) (bool, error)
	ToggleFavorite(ctx context.Context, productID string) (bool, error)
	AddCartItem(ctx context.Context, item domain.LineItem) error
	Close() error
}

type catalogClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	session    session.Session
}

func NewCatalogClient(cfg config.CatalogConfig, sess session.Session) CatalogClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0). // retries belong to the degraded retry policy
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "catalogsync/1.0")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &catalogClient{
		rl:         rl,
		httpClient: client,
		session:    sess,
	}
}

func (c *catalogClient) ListProducts(ctx context.Context, filters domain.FilterState) (*domain.ProductList, error) {
	req := c.request(ctx).SetQueryParams(query.Encode(filters))

	var list domain.ProductList
	if err := c.do(ctx, req, http.MethodGet, "/products", &list); err != nil {
		return nil, err
	}

	log.Debugf("Fetched page %d (limit %d): %d of %d items",
		filters.Page, filters.PageSize, len(list.Data), list.Total)
	return &list, nil
}

func (c *catalogClient) CheckFavorite(ctx context.Context, productID string) (bool, error) {
	req := c.request(ctx).SetPathParam("id", productID)

	var status domain.FavoriteStatus
	if err := c.do(ctx, req, http.MethodGet, "/favorites/{id}", &status); err != nil {
		return false, err
	}
	return status.IsFavorite, nil
}

func (c *catalogClient) ToggleFavorite(ctx context.Context, productID string) (bool, error) {
	req := c.request(ctx).SetPathParam("id", productID)

	var status domain.FavoriteStatus
	if err := c.do(ctx, req, http.MethodPost, "/favorites/{id}/toggle", &status); err != nil {
		return false, err
	}

	log.Debugf("Favorite for %s is now %t", productID, status.IsFavorite)
	return status.IsFavorite, nil
}

func (c *catalogClient) AddCartItem(ctx context.Context, item domain.LineItem) error {
	req := c.request(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(item)

	if err := c.do(ctx, req, http.MethodPost, "/cart/items", nil); err != nil {
		return err
	}

	log.Debugf("Added %s to cart", item.Key)
	return nil
}

func (c *catalogClient) Close() error {
	return c.httpClient.Close()
}

func (c *catalogClient) request(ctx context.Context) *resty.Request {
	req := c.httpClient.R().SetContext(ctx)
	if c.session != nil {
		if token, ok := c.session.Token(); ok {
			req.SetAuthToken(token)
		}
	}
	return req
}

// do executes req and decodes a successful JSON body into out, which may be
// nil. Failures are returned as classified *domain.Error values.
func (c *catalogClient) do(ctx context.Context, req *resty.Request, method, path string, out interface{}) error {
	c.rl.Take()

	resp, err := req.Execute(method, path)
	if err != nil {
		return classifyTransportError(ctx, method, path, err)
	}

	if resp.IsError() {
		return classifyStatus(resp.StatusCode(), resp.Header().Get("Content-Type"), resp.String())
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal([]byte(resp.String()), out); err != nil {
		return &domain.Error{
			Code:    domain.CodeFailure,
			Message: "The catalog returned an unexpected response.",
			Status:  resp.StatusCode(),
			Err:     fmt.Errorf("failed to decode %s %s response: %w", method, path, err),
		}
	}
	return nil
}

func classifyTransportError(ctx context.Context, method, path string, err error) error {
	// A cancelled parent context is the caller's decision, not a remote failure
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request cancelled: %w", ctx.Err())
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.Error{
			Code:    domain.CodeTransientUnavailable,
			Message: "The catalog took too long to respond.",
			Err:     fmt.Errorf("%s %s timeout: %w", method, path, err),
		}
	}

	return &domain.Error{
		Code: domain.CodeFailure,
		Err:  fmt.Errorf("failed to call %s %s: %w", method, path, err),
	}
}

func classifyStatus(status int, contentType, body string) error {
	message := extractMessage(contentType, body)

	code := domain.CodeFailure
	switch status {
	case http.StatusUnauthorized:
		code = domain.CodeAuthenticationRequired
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		code = domain.CodeTransientUnavailable
	}

	return &domain.Error{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     fmt.Errorf("HTTP error: %d %s", status, http.StatusText(status)),
	}
}
