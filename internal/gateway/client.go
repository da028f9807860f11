// Package gateway is the HTTP boundary: one request/response cycle per
// domain operation, no retries, no idempotency keys. Consistency after
// writes is the controllers' concern (pull-after-write).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"khidma/internal/domain"
	"khidma/internal/metrics"
	"khidma/internal/models"
)

// Client talks to the marketplace backend under its /api/ base path.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	cache    domain.CacheStore
	cacheTTL time.Duration
	// live cache keys, so mutations can invalidate by prefix without
	// knowing every scoped id in play
	cacheKeys map[string]struct{}
	cacheMu   sync.Mutex

	limiter *rate.Limiter
}

func New(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "gateway").Logger(),
		cacheKeys:  make(map[string]struct{}),
	}
}

// UseCache enables read-through caching of GET list endpoints.
func (c *Client) UseCache(store domain.CacheStore, ttl time.Duration) {
	c.cache = store
	c.cacheTTL = ttl
}

// UseRateLimit throttles outgoing requests client-side.
func (c *Client) UseRateLimit(rps float64, burst int) {
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// ---- auth ----

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "auth/login", "login",
		models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		if statusErr, ok := err.(*StatusError); ok {
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, statusErr)
		}
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "auth/register", "register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.doJSON(ctx, http.MethodPost, "auth/reset-password", "reset_password",
		models.ResetPasswordRequest{Email: email}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdatePassword(ctx context.Context, userID, newPassword string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.doJSON(ctx, http.MethodPut, "auth/update-password/"+url.PathEscape(userID), "update_password",
		models.UpdatePasswordRequest{Password: newPassword}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---- catalog ----

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.getCached(ctx, "admin/categories", "list_categories", "categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := c.getCached(ctx, "admin/services", "list_services", "services:all", &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	var service models.Service
	err := c.doJSON(ctx, http.MethodGet, "provider/service/"+url.PathEscape(serviceID), "get_service", nil, &service)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (c *Client) ListProviderServices(ctx context.Context, providerID string) ([]models.Service, error) {
	var services []models.Service
	path := "provider/services/provider/" + url.PathEscape(providerID)
	if err := c.getCached(ctx, path, "list_provider_services", "services:provider:"+providerID, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) CreateService(ctx context.Context, upload models.ServiceUpload) (*models.Service, error) {
	var service models.Service
	err := c.doMultipart(ctx, http.MethodPost, "provider/service", "create_service", upload, true, &service)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "services:")
	return &service, nil
}

func (c *Client) UpdateService(ctx context.Context, serviceID string, upload models.ServiceUpload) (*models.Service, error) {
	var service models.Service
	path := "provider/service/" + url.PathEscape(serviceID)
	err := c.doMultipart(ctx, http.MethodPut, path, "update_service", upload, false, &service)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "services:")
	return &service, nil
}

func (c *Client) DeleteService(ctx context.Context, serviceID string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	path := "provider/service/" + url.PathEscape(serviceID)
	if err := c.doJSON(ctx, http.MethodDelete, path, "delete_service", nil, &resp); err != nil {
		return nil, err
	}
	c.invalidate(ctx, "services:")
	return &resp, nil
}

// ---- bookings ----

func (c *Client) CreateBooking(ctx context.Context, req models.BookServiceRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.doJSON(ctx, http.MethodPost, "customer/book", "create_booking", req, &booking); err != nil {
		return nil, err
	}
	c.invalidate(ctx, "bookings:")
	return &booking, nil
}

func (c *Client) ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	var bookings []models.Booking
	path := "customer/bookings/" + url.PathEscape(customerID)
	if err := c.getCached(ctx, path, "list_customer_bookings", "bookings:customer:"+customerID, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) ListProviderBookings(ctx context.Context, providerID string) ([]models.Booking, error) {
	var bookings []models.Booking
	path := "provider/bookings/provider/" + url.PathEscape(providerID)
	if err := c.getCached(ctx, path, "list_provider_bookings", "bookings:provider:"+providerID, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error) {
	return c.bookingTransition(ctx, http.MethodDelete, "customer/cancel/"+url.PathEscape(bookingID), "cancel_booking")
}

func (c *Client) AcceptBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error) {
	return c.bookingTransition(ctx, http.MethodPut, "provider/booking/accept/"+url.PathEscape(bookingID), "accept_booking")
}

func (c *Client) RejectBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error) {
	return c.bookingTransition(ctx, http.MethodPut, "provider/booking/reject/"+url.PathEscape(bookingID), "reject_booking")
}

func (c *Client) CompleteBooking(ctx context.Context, bookingID string) (*models.MessageResponse, error) {
	return c.bookingTransition(ctx, http.MethodPut, "customer/complete/"+url.PathEscape(bookingID), "complete_booking")
}

func (c *Client) bookingTransition(ctx context.Context, method, path, endpoint string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.doJSON(ctx, method, path, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	c.invalidate(ctx, "bookings:")
	return &resp, nil
}

// ---- reviews ----

func (c *Client) CreateReview(ctx context.Context, req models.ReviewRequest) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "customer/review", "create_review", req, &resp); err != nil {
		return nil, err
	}
	c.invalidate(ctx, "reviews:")
	return &resp, nil
}

func (c *Client) ListProviderReviews(ctx context.Context, providerID string) ([]models.Review, error) {
	var reviews []models.Review
	path := "provider/reviews/" + url.PathEscape(providerID)
	if err := c.getCached(ctx, path, "list_provider_reviews", "reviews:provider:"+providerID, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ---- plumbing ----

func (c *Client) getCached(ctx context.Context, path, endpoint, cacheKey string, out any) error {
	if c.readCache(ctx, cacheKey, out) {
		return nil
	}
	if err := c.doJSON(ctx, http.MethodGet, path, endpoint, nil, out); err != nil {
		return err
	}
	c.writeCache(ctx, cacheKey, out)
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.cache == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
		return
	}
	c.cacheMu.Lock()
	c.cacheKeys[key] = struct{}{}
	c.cacheMu.Unlock()
}

// invalidate drops every live cache key with the prefix, so the next
// read after a write always reaches the backend.
func (c *Client) invalidate(ctx context.Context, prefix string) {
	if c.cache == nil {
		return
	}
	c.cacheMu.Lock()
	var stale []string
	for key := range c.cacheKeys {
		if strings.HasPrefix(key, prefix) {
			stale = append(stale, key)
			delete(c.cacheKeys, key)
		}
	}
	c.cacheMu.Unlock()

	if len(stale) == 0 {
		return
	}
	if err := c.cache.Delete(ctx, stale...); err != nil {
		c.logger.Debug().Err(err).Strs("keys", stale).Msg("cache invalidation failed")
	}
}

func (c *Client) doJSON(ctx context.Context, method, path, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, endpoint, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path, endpoint string, upload models.ServiceUpload, includeProvider bool, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       upload.Title,
		"description": upload.Description,
		"price":       upload.Price,
		"categoryId":  upload.CategoryID,
	}
	if includeProvider {
		fields["providerId"] = upload.ProviderID
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("%s: write field %s: %w", endpoint, name, err)
		}
	}

	if len(upload.Photo) > 0 {
		name := upload.PhotoName
		if name == "" {
			name = "photo.jpg"
		}
		part, err := writer.CreateFormFile("photo", name)
		if err != nil {
			return fmt.Errorf("%s: create photo part: %w", endpoint, err)
		}
		if _, err := part.Write(upload.Photo); err != nil {
			return fmt.Errorf("%s: write photo part: %w", endpoint, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: close multipart: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, &buf)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return &NetworkError{Endpoint: endpoint, Err: err}
		}
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveGateway(endpoint, "network_error", time.Since(start))
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Str("request_id", requestID).Msg("request failed")
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		metrics.ObserveGateway(endpoint, "http_error", time.Since(start))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Msg("request rejected")
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	metrics.ObserveGateway(endpoint, "ok", time.Since(start))
	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}
