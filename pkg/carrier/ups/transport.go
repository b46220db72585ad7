package ups

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	headerTransactionSrc = "transactionSrc"
	headerTransactionID  = "transId"

	// transactionSrc is the fixed source tag UPS requires on every call.
	transactionSrc = "rateshop"
)

// transport performs authenticated calls against the UPS API: it injects
// the bearer credential, tags each call with a fresh correlation id, and
// retries exactly once after an authentication rejection.
type transport struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenManager
	logger     *otelzap.Logger
}

func newTransport(cfg Config, httpClient *http.Client, tokens *tokenManager, logger *otelzap.Logger) *transport {
	return &transport{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
	}
}

// Post sends one authenticated JSON call. On an HTTP 401 from the API it
// invalidates the cached token and repeats once; a second 401 (or any
// other failure) is classified and returned without further retries.
func (t *transport) Post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, carrier.NewError(carrier.KindUnknown, carrierName,
			"marshaling request payload").WithCause(err)
	}

	raw, authRejected, err := t.attempt(ctx, path, body)
	if err == nil {
		return raw, nil
	}
	if !authRejected {
		return nil, err
	}

	t.logger.Warn("UPS rejected token, re-authenticating",
		zap.String("path", path),
	)
	t.tokens.Invalidate()

	raw, _, err = t.attempt(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// attempt performs a single authenticated call. authRejected is true only
// when the API call itself was refused with 401; acquisition failures
// never trigger the retry.
func (t *transport) attempt(ctx context.Context, path string, body []byte) (json.RawMessage, bool, error) {
	tok, err := t.tokens.GetToken(ctx)
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, false, carrier.NewError(carrier.KindConfiguration, carrierName,
			"building API request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set(headerTransactionSrc, transactionSrc)
	req.Header.Set(headerTransactionID, uuid.NewString())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, false, classifyTransportError(err, t.httpClient.Timeout)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, carrier.NewError(carrier.KindNetwork, carrierName,
			"reading response body").WithCause(err)
	}

	if resp.StatusCode == http.StatusOK {
		if !json.Valid(raw) {
			return nil, false, carrier.NewError(carrier.KindMalformedResponse, carrierName,
				"response body is not valid JSON")
		}
		return raw, false, nil
	}

	cerr := classifyStatus(resp, raw)
	return nil, resp.StatusCode == http.StatusUnauthorized, cerr
}

// classifyStatus maps a non-200 API response onto the error taxonomy, in
// priority order: 429, 401, 403, then generic 4xx/5xx.
func classifyStatus(resp *http.Response, raw []byte) *carrier.Error {
	code, message := extractUpstreamError(raw)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return carrier.NewError(carrier.KindRateLimited, carrierName,
			"API rate limit exceeded").
			WithStatus(resp.StatusCode).
			WithUpstream(code, message).
			WithRetryAfter(parseRetryAfter(resp.Header.Get("Retry-After")))
	case resp.StatusCode == http.StatusUnauthorized:
		return carrier.NewError(carrier.KindAuth, carrierName,
			"API call unauthorized").
			WithStatus(resp.StatusCode).
			WithUpstream(code, message)
	case resp.StatusCode == http.StatusForbidden:
		return carrier.NewError(carrier.KindAuth, carrierName,
			"API call forbidden").
			WithStatus(resp.StatusCode).
			WithUpstream(code, message)
	case resp.StatusCode >= 400:
		return carrier.NewError(carrier.KindCarrierAPI, carrierName,
			fmt.Sprintf("API error: %s", message)).
			WithStatus(resp.StatusCode).
			WithUpstream(code, message)
	default:
		return carrier.NewError(carrier.KindMalformedResponse, carrierName,
			fmt.Sprintf("unexpected status %d", resp.StatusCode)).
			WithStatus(resp.StatusCode)
	}
}

// classifyTransportError maps request execution failures: timeouts are
// Timeout, everything else with no response at all is a network error.
func classifyTransportError(err error, timeout time.Duration) *carrier.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return carrier.NewError(carrier.KindTimeout, carrierName,
			fmt.Sprintf("request timed out after %s", timeout)).
			WithCause(err)
	}
	return carrier.NewError(carrier.KindNetwork, carrierName,
		"no response from carrier").WithCause(err)
}

// extractUpstreamError pulls the first entry out of the conventional UPS
// error envelope. Absent or unparseable bodies fall back to UNKNOWN.
func extractUpstreamError(raw []byte) (code, message string) {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Response.Errors) > 0 {
		first := body.Response.Errors[0]
		if first.Code != "" || first.Message != "" {
			return first.Code, first.Message
		}
	}
	return "UNKNOWN", "Unknown API error"
}

// parseRetryAfter converts a Retry-After header in seconds to a duration.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
