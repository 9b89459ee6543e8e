package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shared"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/api/", ServiceToken: "service-token"}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

const pendingOrderJSON = `{"success":true,"data":{"_id":"o1","status":"pending","totalAmount":"150000",
"items":[{"productId":{"_id":"p1","productName":"Serum"},"quantity":2,"price":50000},
{"productId":"p2","productName":"Sunscreen","quantity":1,"price":50000}],
"contactName":"Lan","contactPhone":"0900000000","contactAddress":"1 Le Loi"}}`

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "valid config", config: Config{BaseURL: "https://shop.example.com/api/"}},
		{name: "missing base url", config: Config{BaseURL: "  "}, wantErr: ErrConfigMissingBaseURL},
		{name: "relative base url", config: Config{BaseURL: "/api"}, wantErr: ErrConfigInvalidBaseURL},
		{name: "unsupported scheme", config: Config{BaseURL: "ftp://shop.example.com"}, wantErr: ErrConfigInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://shop.example.com/api", tt.config.BaseURL)
			assert.Equal(t, 15*time.Second, tt.config.Timeout)
			assert.Equal(t, int64(maxResponseSize), tt.config.MaxResponseSize)
		})
	}
}

// ---------------------------------------------------------------------------
// Transport Tests
// ---------------------------------------------------------------------------

func TestStatusError(t *testing.T) {
	tests := []struct {
		status  int
		message string
		code    string
		text    string
	}{
		{http.StatusBadRequest, "Rejection reason is required", shared.CodeValidation, "Rejection reason is required"},
		{http.StatusUnprocessableEntity, "", shared.CodeValidation, "The request was rejected as invalid"},
		{http.StatusUnauthorized, "jwt expired", shared.CodeSessionExpired, "Your session has expired, please sign in again"},
		{http.StatusForbidden, "", shared.CodePermissionDenied, "You do not have permission to perform this action"},
		{http.StatusNotFound, "Order not found", shared.CodeNotFound, "Order not found"},
		{http.StatusConflict, "", shared.CodeConflict, "The resource changed, reload and try again"},
		{http.StatusBadGateway, "boom", shared.CodeUpstreamUnavailable, "The storefront backend is unavailable"},
		{http.StatusTeapot, "", shared.CodeValidation, "Unexpected response (HTTP 418)"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := statusError(tt.status, tt.message)
			assert.Equal(t, tt.code, shared.CodeOf(err))
			assert.Equal(t, tt.text, err.(*shared.DomainError).Message)
		})
	}
}

func TestDoRequest_TokenForwarding(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	_, err := client.doRequest(context.Background(), http.MethodGet, "/ping", nil, nil)
	require.NoError(t, err)
	_, err = client.doRequest(WithAccessToken(context.Background(), "staff-token"), http.MethodGet, "/ping", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer service-token", "Bearer staff-token"}, seen)
}

func TestDoRequest_SuccessFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Order already approved"})
	})

	_, err := client.doRequest(context.Background(), http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, err.Error(), "Order already approved")
}

func TestDoRequest_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	env, err := client.doRequest(context.Background(), http.MethodDelete, "/x", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, env.Data)
}

func TestDoRequest_ResponseSizeLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"`+strings.Repeat("a", 4096)+`"}}`)
	})
	client.config.MaxResponseSize = 64

	_, err := client.doRequest(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, errMalformed)
}

func TestDoRequest_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client, err := NewClient(Config{BaseURL: server.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.doRequest(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
}

func TestDecodeList(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		out, err := decodeList(json.RawMessage(`[{"_id":"a"},"junk",{"_id":"b"}]`))
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
	t.Run("bare object", func(t *testing.T) {
		out, err := decodeList(json.RawMessage(`{"_id":"a"}`))
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})
	t.Run("null", func(t *testing.T) {
		out, err := decodeList(json.RawMessage(`null`))
		require.NoError(t, err)
		assert.Empty(t, out)
	})
	t.Run("scalar", func(t *testing.T) {
		_, err := decodeList(json.RawMessage(`42`))
		assert.ErrorIs(t, err, errMalformed)
	})
}

func TestDecodeOne_NestedKey(t *testing.T) {
	out, err := decodeOne(json.RawMessage(`{"order":{"_id":"o1"}}`), "order")
	require.NoError(t, err)
	assert.Equal(t, "o1", out["_id"])

	out, err = decodeOne(json.RawMessage(`[{"_id":"o2"}]`), "order")
	require.NoError(t, err)
	assert.Equal(t, "o2", out["_id"])
}

// ---------------------------------------------------------------------------
// Order Gateway Tests
// ---------------------------------------------------------------------------

func TestOrderGateway_GetOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/o1", r.URL.Path)
		_, _ = io.WriteString(w, pendingOrderJSON)
	})

	o, err := client.Orders().GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "150000", o.TotalAmount.String())
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Serum", o.Items[0].ProductName)
	assert.Equal(t, "p2", o.Items[1].ProductID)
}

func TestOrderGateway_GetOrder_Malformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>gateway</html>`)
	})

	_, err := client.Orders().GetOrder(context.Background(), "o1")
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
}

func TestOrderGateway_GetOrder_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Order not found"})
	})

	_, err := client.Orders().GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderGateway_Writes(t *testing.T) {
	type captured struct {
		method, path string
		body         map[string]any
	}
	var got captured
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = captured{method: r.Method, path: r.URL.Path}
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "o1", "status": "rejected", "rejectionReason": "Out of stock"}})
	})
	orders := client.Orders()

	o, err := orders.Reject(context.Background(), "o1", "Out of stock", "")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/api/orders/o1/reject", got.path)
	assert.Equal(t, "Out of stock", got.body["rejectionReason"])
	assert.Equal(t, order.StatusRejected, o.Status)

	_, err = orders.UpdateStatus(context.Background(), "o1", order.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/o1/status", got.path)
	assert.Equal(t, "approved", got.body["status"])

	_, err = orders.Refund(context.Background(), "o1", "Customer request", "call first")
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/o1/refund", got.path)
	assert.Equal(t, "Customer request", got.body["refundReason"])
	assert.Equal(t, "call first", got.body["note"])
}

func TestOrderGateway_WriteWithoutEntity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "updated"})
	})

	o, err := client.Orders().UpdateStatus(context.Background(), "o1", order.StatusApproved)
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestOrderGateway_WriteWithPartialEntity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"status":"approved"}}`)
	})

	o, err := client.Orders().UpdateStatus(context.Background(), "o1", order.StatusApproved)
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestOrderGateway_RefundConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Order is not rejected"})
	})

	_, err := client.Orders().Refund(context.Background(), "o1", "", "")
	assert.ErrorIs(t, err, shared.ErrConflict)
}

// ---------------------------------------------------------------------------
// Shipping Gateway Tests
// ---------------------------------------------------------------------------

func TestShippingGateway_ListLogs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shipping-logs", r.URL.Path)
		assert.Equal(t, "o1", r.URL.Query().Get("orderId"))
		assert.Equal(t, "In Transit", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"success":true,"data":[
			{"_id":"s1","orderId":{"_id":"o1"},"status":"in transit"},
			{"status":"Shipped"},
			{"_id":"s2","orderId":"o1","status":"Shipped"}]}`)
	})

	logs, err := client.ShippingLogs().ListLogs(context.Background(), shipping.ListFilter{
		OrderID: "o1", Status: shipping.StatusInTransit, Page: 2, PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "s1", logs[0].ID)
	assert.Equal(t, "o1", logs[0].OrderID())
	assert.Equal(t, shipping.StatusInTransit, logs[0].Status)
}

func TestShippingGateway_ListLogs_Malformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	logs, err := client.ShippingLogs().ListLogs(context.Background(), shipping.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestShippingGateway_LogsByOrder_FallsBackToOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/shipping-logs/order/o1":
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Cannot GET"})
		case "/api/orders/o1":
			_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"o1","status":"approved",
				"shippingLogs":[{"_id":"s1","status":"Pending","createdAt":"2024-05-01T08:00:00Z"},
				{"_id":"s2","status":"Shipped","createdAt":"2024-05-02T08:00:00Z"}]}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	history, err := client.ShippingLogs().LogsByOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "s2", history.Current().ID)
	assert.Equal(t, "o1", history.Current().OrderID())
}

func TestShippingGateway_LogsByOrder_FallsBackOnServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/shipping-logs/order/o1":
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
		case "/api/orders/o1":
			_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"o1","status":"approved",
				"shipping":{"_id":"s1","status":"Shipped","createdAt":"2024-05-01T08:00:00Z"}}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	history, err := client.ShippingLogs().LogsByOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, shipping.StatusShipped, history.Current().Status)
}

func TestShippingGateway_LogsByOrder_AuthErrorsPropagate(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"session expired", http.StatusUnauthorized, shared.ErrSessionExpired},
		{"permission denied", http.StatusForbidden, shared.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/shipping-logs/order/o1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				writeJSON(w, tt.status, map[string]any{"message": "denied"})
			})

			_, err := client.ShippingLogs().LogsByOrder(context.Background(), "o1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestShippingGateway_CreateLog(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{
			"_id": "s9", "orderId": "o1", "status": "Pending", "recipientName": "Lan",
		}})
	})

	log := &shipping.ShippingLog{
		Order:     shipping.OrderRefID("o1"),
		Status:    shipping.StatusPending,
		Carrier:   "GHN",
		Recipient: shipping.Recipient{Name: "Lan", Phone: "0900000000", Address: "1 Le Loi"},
		ProductSummary: shipping.StructuredSummary{Count: 2, TotalQuantity: 3, Items: []shipping.SummaryItem{
			{Name: "Serum", Quantity: 2}, {Name: "Sunscreen", Quantity: 1},
		}},
	}
	created, err := client.ShippingLogs().CreateLog(context.Background(), log)
	require.NoError(t, err)
	assert.Equal(t, "s9", created.ID)
	assert.Equal(t, "o1", body["orderId"])
	assert.Equal(t, "Pending", body["status"])
	assert.Equal(t, "1 Le Loi", body["shippingAddress"])
	assert.EqualValues(t, 3, body["totalQuantity"])
}

func TestShippingGateway_UpdateStatus(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shipping-logs/s1/status", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	updated, err := client.ShippingLogs().UpdateStatus(context.Background(), "s1", shipping.StatusUpdate{
		Status: shipping.StatusShipped, CurrentLocation: "Hub 3",
	})
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, "Shipped", body["status"])
	assert.Equal(t, "Hub 3", body["currentLocation"])
	assert.NotContains(t, body, "actualDelivery")
}

func TestShippingGateway_DeleteLog(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.ShippingLogs().DeleteLog(context.Background(), "s1"))
}
