package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// errMalformed marks a response body that is not the expected envelope
var errMalformed = errors.New("backend: malformed response")

type tokenKey struct{}

// WithAccessToken attaches the staff bearer token forwarded to the backend
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken returns the forwarded bearer token, if any
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// envelope is the backend's response wrapper
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// Client talks to the storefront REST backend
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new backend client
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// OrderGateway implements order.Gateway over the backend
type OrderGateway struct{ *Client }

// ShippingGateway implements shipping.Gateway over the backend
type ShippingGateway struct{ *Client }

var (
	_ order.Gateway    = (*OrderGateway)(nil)
	_ shipping.Gateway = (*ShippingGateway)(nil)
)

// Orders returns the order endpoints
func (c *Client) Orders() *OrderGateway { return &OrderGateway{c} }

// ShippingLogs returns the shipping log endpoints
func (c *Client) ShippingLogs() *ShippingGateway { return &ShippingGateway{c} }

// Ping checks that the backend answers at all
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.config.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("backend: failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: unreachable: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("backend: HTTP %d", resp.StatusCode)
	}
	return nil
}

// doRequest sends one request and returns the decoded envelope. Non-2xx
// statuses and transport failures come back as *shared.DomainError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeUpstreamUnavailable, "The storefront backend is unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeUpstreamUnavailable, "Failed to read the storefront backend response", err)
	}

	var env envelope
	parseErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, env.message())
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &envelope{}, nil
	}
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, parseErr)
	}
	if env.Success != nil && !*env.Success {
		msg := env.message()
		if msg == "" {
			msg = "The request was refused"
		}
		return nil, shared.NewDomainError(shared.CodeValidation, msg)
	}
	return &env, nil
}

func (c *Client) token(ctx context.Context) string {
	if token := AccessToken(ctx); token != "" {
		return token
	}
	return c.config.ServiceToken
}

// statusError maps an HTTP status to the error taxonomy
func statusError(status int, message string) error {
	fallback := func(s string) string {
		if message != "" {
			return message
		}
		return s
	}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return shared.NewDomainError(shared.CodeValidation, fallback("The request was rejected as invalid"))
	case status == http.StatusUnauthorized:
		return shared.NewDomainError(shared.CodeSessionExpired, "Your session has expired, please sign in again")
	case status == http.StatusForbidden:
		return shared.NewDomainError(shared.CodePermissionDenied, "You do not have permission to perform this action")
	case status == http.StatusNotFound:
		return shared.NewDomainError(shared.CodeNotFound, fallback("Resource not found"))
	case status == http.StatusConflict:
		return shared.NewDomainError(shared.CodeConflict, fallback("The resource changed, reload and try again"))
	case status >= http.StatusInternalServerError:
		return shared.NewDomainError(shared.CodeUpstreamUnavailable, "The storefront backend is unavailable")
	default:
		return shared.NewDomainError(shared.CodeValidation, fallback(fmt.Sprintf("Unexpected response (HTTP %d)", status)))
	}
}

// decodeList reads data as a list of objects. A bare object becomes a
// one-element list; null becomes empty.
func decodeList(data json.RawMessage) ([]shared.Raw, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []shared.Raw{}, nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	switch t := v.(type) {
	case []any:
		out := make([]shared.Raw, 0, len(t))
		for _, item := range t {
			if obj, ok := shared.AsRaw(item); ok {
				out = append(out, obj)
			}
		}
		return out, nil
	case map[string]any:
		return []shared.Raw{t}, nil
	}
	return nil, fmt.Errorf("%w: data is neither an object nor an array", errMalformed)
}

// decodeOne reads data as a single object, unwrapping {key: {...}} when the
// entity is nested under key
func decodeOne(data json.RawMessage, key string) (shared.Raw, error) {
	var v any
	if err := json.Unmarshal(bytes.TrimSpace(data), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	switch t := v.(type) {
	case map[string]any:
		if shared.FirstString(t, "_id", "id") == "" {
			if nested, ok := shared.Object(t, key); ok {
				return nested, nil
			}
		}
		return t, nil
	case []any:
		if len(t) > 0 {
			if obj, ok := shared.AsRaw(t[0]); ok {
				return obj, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: data is not an object", errMalformed)
}

// unavailable reports a malformed single-entity read as upstream-unavailable
func unavailable(what string, err error) error {
	if errors.Is(err, errMalformed) {
		return shared.WrapDomainError(shared.CodeUpstreamUnavailable, "Unreadable "+what+" from the storefront backend", err)
	}
	return err
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
