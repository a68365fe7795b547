// Package api is the HTTP client for the hotel booking REST API. It owns
// transport concerns only: bearer auth headers, the {data: T} response
// envelope, the error taxonomy and client-side rate limiting. All domain
// decisions (availability, pricing, booking state) are the server's.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"innkeeper/internal/metrics"
)

const maxResponseBytes = 4 << 20

// Identity carries the current session values a request should be sent
// with. It travels in the context so that one client instance can serve
// many chats, each with its own login.
type Identity struct {
	Token    string
	UserID   int64
	Username string
	Email    string
	RoleName string
}

type ctxKey int

const identityKey ctxKey = iota

// WithIdentity scopes requests made with ctx to the given session.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity scoped to ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Client is a thin HTTP client for the hotel API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	validate   *validator.Validate

	onUnauthorized func(ctx context.Context)

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(20), 30),
		validate:   validator.New(),
	}
}

// UseRedisCache configures optional Redis caching for the hotel
// directory. Availability responses are never cached: they are valid only
// for the exact range they were asked for.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseUnauthorizedHandler registers the session-teardown hook. It fires on
// a 401 from any endpoint except login and registration, where a 401 just
// means bad credentials.
func (c *Client) UseUnauthorizedHandler(fn func(ctx context.Context)) {
	c.onUnauthorized = fn
}

// metricEndpoint collapses path IDs so each logical endpoint is one
// metric series: /bookings/5/cancel becomes /bookings/:id/cancel.
func metricEndpoint(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values, out any) error {
	return c.send(ctx, http.MethodGet, path, query, nil, out, false)
}

func (c *Client) doPost(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, nil, body, out, false)
}

func (c *Client) doPut(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPut, path, nil, body, out, false)
}

func (c *Client) doPatch(ctx context.Context, path string, query url.Values, out any) error {
	return c.send(ctx, http.MethodPatch, path, query, nil, out, false)
}

func (c *Client) doDelete(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodDelete, path, nil, nil, nil, false)
}

// send issues one request. credentialExempt marks login/registration
// calls, whose 401s must not tear the session down.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, credentialExempt bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	metricPath := metricEndpoint(path)
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncAPIRequest(method, metricPath, "unreachable")
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.IncAPIRequest(method, metricPath, "unreachable")
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode >= 300 {
		metrics.IncAPIRequest(method, metricPath, strconv.Itoa(resp.StatusCode))
		apiErr := parseError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && !credentialExempt && c.onUnauthorized != nil {
			metrics.IncSessionTeardown()
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	metrics.IncAPIRequest(method, metricPath, "ok")
	if out == nil || len(data) == 0 {
		return nil
	}
	return unwrap(data, out)
}

// addHeaders attaches the bearer token plus the informational X-User-*
// headers the API accepts for convenience (never for security).
func (c *Client) addHeaders(ctx context.Context, req *http.Request) {
	id, ok := IdentityFrom(ctx)
	if !ok || id.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+id.Token)
	if id.UserID != 0 {
		req.Header.Set("X-User-Id", strconv.FormatInt(id.UserID, 10))
	}
	if id.RoleName != "" {
		req.Header.Set("X-User-Role", id.RoleName)
	}
	if id.Email != "" {
		req.Header.Set("X-User-Email", id.Email)
	}
	if id.Username != "" {
		req.Header.Set("X-User-Username", id.Username)
	}
}

// unwrap decodes a response that is either enveloped as {"data": T} or a
// bare T. Both shapes exist in the wild across API versions.
func unwrap(data []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil &&
		len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return json.Unmarshal(envelope.Data, out)
	}
	return json.Unmarshal(data, out)
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

// HealthCheck verifies the API is responding at all.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}
