package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCardGatewayCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/session", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "3008-4417", body["orderId"])

		json.NewEncoder(w).Encode(map[string]string{"redirect_url": "https://pay.example/s/1"})
	}))
	defer srv.Close()

	g := NewHTTPCardGateway(srv.URL, "key-1", 5*time.Second)
	session, err := g.CreateSession(context.Background(), CardSessionRequest{
		Amount:  d("12.00"),
		OrderID: "3008-4417",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s/1", session.RedirectURL)
}

func TestHTTPCardGatewayMissingRedirectURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "amount exceeds limit"})
	}))
	defer srv.Close()

	g := NewHTTPCardGateway(srv.URL, "", 5*time.Second)
	_, err := g.CreateSession(context.Background(), CardSessionRequest{Amount: d("999.00")})

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "missing_redirect_url", gatewayErr.Code)
	assert.Equal(t, "amount exceeds limit", gatewayErr.Error())
}

func TestHTTPCardGatewayNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
	}))
	defer srv.Close()

	g := NewHTTPCardGateway(srv.URL, "", 5*time.Second)
	_, err := g.CheckStatus(context.Background(), "sess_1")

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "http_502", gatewayErr.Code)
	assert.Equal(t, "upstream down", gatewayErr.Message)
}

func TestHTTPCliqGatewayErrorCodeAuthoritativeOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with a provider error object is still a failure.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ErrorObj": map[string]string{"ErrorCode": "1", "ErrorMessage": "invalid otp"},
		})
	}))
	defer srv.Close()

	g := NewHTTPCliqGateway(srv.URL, "", 5*time.Second)
	_, err := g.Confirm(context.Background(), d("12.00"), "+962791234567", "4829")

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, "1", gatewayErr.Code)
	assert.Equal(t, "invalid otp", gatewayErr.Error())
}

func TestHTTPCliqGatewaySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/debit/initiate":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ErrorObj": map[string]string{"ErrorCode": "0"},
			})
		case "/debit/confirm":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ErrorObj":      map[string]string{"ErrorCode": "0"},
				"TransactionId": "tx_7001",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := NewHTTPCliqGateway(srv.URL, "", 5*time.Second)

	require.NoError(t, g.Initiate(context.Background(), d("12.00"), "+962791234567"))

	ref, err := g.Confirm(context.Background(), d("12.00"), "+962791234567", "4829")
	require.NoError(t, err)
	assert.Equal(t, "tx_7001", ref)
}
