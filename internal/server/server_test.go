package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parcelgrid/rateshop/internal/server"
	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/parcelgrid/rateshop/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, providers ...carrier.Provider) *server.Server {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	registry := carrier.NewRegistry()
	for _, p := range providers {
		require.NoError(t, registry.Register(p))
	}
	return server.New(server.Config{Port: 0}, registry, logger)
}

const validQuoteBody = `{
	"origin": {
		"name": "Acme Warehouse",
		"line1": "100 Industrial Way",
		"city": "Timonium",
		"stateCode": "MD",
		"postalCode": "21093",
		"countryCode": "US"
	},
	"destination": {
		"name": "Jane Receiver",
		"line1": "42 Elm St",
		"city": "Alpharetta",
		"stateCode": "GA",
		"postalCode": "30005",
		"countryCode": "US"
	},
	"packages": [{
		"length": 12, "width": 8, "height": 6,
		"dimensionUnit": "in",
		"weight": 4.25,
		"weightUnit": "lb"
	}]
}`

func postQuotes(t *testing.T, srv *server.Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleQuotes_Success(t *testing.T) {
	srv := newTestServer(t, mock.New("ups"))

	rec := postQuotes(t, srv, validQuoteBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Quotes []struct {
			Carrier      string `json:"carrier"`
			ServiceCode  string `json:"serviceCode"`
			TotalCharges struct {
				Amount   float64 `json:"amount"`
				Currency string  `json:"currency"`
			} `json:"totalCharges"`
		} `json:"quotes"`
		Carriers []string `json:"carriers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Quotes, 2)
	assert.Equal(t, "ups", resp.Quotes[0].Carrier)
	assert.Equal(t, 15.82, resp.Quotes[0].TotalCharges.Amount, "cheapest first")
	assert.Equal(t, 29.95, resp.Quotes[1].TotalCharges.Amount)
	assert.Equal(t, []string{"ups"}, resp.Carriers)
}

func TestHandleQuotes_PartialFailureSurfaced(t *testing.T) {
	healthy := mock.New("alpha")
	broken := mock.New("beta")
	broken.OnGetRates = func(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error) {
		return nil, carrier.NewError(carrier.KindTimeout, "beta", "request timed out after 30s")
	}
	srv := newTestServer(t, healthy, broken)

	rec := postQuotes(t, srv, validQuoteBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quotes        []json.RawMessage `json:"quotes"`
		PartialErrors []struct {
			Kind    string `json:"kind"`
			Carrier string `json:"carrier"`
		} `json:"partialErrors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Quotes, 2)
	require.Len(t, resp.PartialErrors, 1)
	assert.Equal(t, "timeout", resp.PartialErrors[0].Kind)
	assert.Equal(t, "beta", resp.PartialErrors[0].Carrier)
}

func TestHandleQuotes_ValidationError(t *testing.T) {
	m := mock.New("ups")
	srv := newTestServer(t, m)

	rec := postQuotes(t, srv, `{"origin":{},"destination":{},"packages":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Kind      string `json:"kind"`
			Message   string `json:"message"`
			Retryable bool   `json:"retryable"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp.Error.Kind)
	assert.False(t, resp.Error.Retryable)
	assert.Equal(t, 0, m.Calls(), "invalid requests never reach a carrier")
}

func TestHandleQuotes_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, mock.New("ups"))

	rec := postQuotes(t, srv, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestHandleQuotes_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, mock.New("ups"))

	req := httptest.NewRequest(http.MethodGet, "/v1/quotes", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleQuotes_AllCarriersFailing(t *testing.T) {
	broken := mock.New("ups")
	broken.OnGetRates = func(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error) {
		return nil, carrier.NewError(carrier.KindAuth, "ups", "credential exchange rejected")
	}
	srv := newTestServer(t, broken)

	rec := postQuotes(t, srv, validQuoteBody)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Error struct {
			Kind    string `json:"kind"`
			Carrier string `json:"carrier"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "auth", resp.Error.Kind)
	assert.Equal(t, "ups", resp.Error.Carrier)
}

func TestHandleQuotes_NoCarriers(t *testing.T) {
	srv := newTestServer(t)

	rec := postQuotes(t, srv, validQuoteBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "carrier_unavailable")
}

func TestHandleCarriers(t *testing.T) {
	srv := newTestServer(t, mock.New("ups"), mock.New("fedex"))

	req := httptest.NewRequest(http.MethodGet, "/v1/carriers", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Carriers []string `json:"carriers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ups", "fedex"}, resp.Carriers)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandleMetrics(t *testing.T) {
	srv := newTestServer(t, mock.New("ups"))

	// Generate one request so counters exist.
	postQuotes(t, srv, validQuoteBody)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rateshop_requests_total")
}
