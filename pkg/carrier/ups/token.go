package ups

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	tokenPath = "/security/v1/oauth/token"

	// tokenExpiryBuffer forces a refresh this long before the token
	// actually expires.
	tokenExpiryBuffer = 60 * time.Second
)

// token is an immutable OAuth credential. It is replaced wholesale on
// refresh; exactly one token is live per manager.
type token struct {
	accessToken string
	tokenType   string
	expiresAt   time.Time
}

func (t *token) valid(now time.Time) bool {
	return t != nil && t.expiresAt.Sub(now) > tokenExpiryBuffer
}

// tokenManager acquires, caches, and refreshes the bearer credential for
// one UPS account. Concurrent acquisition is deduplicated: no matter how
// many callers arrive while no valid token is cached, at most one
// credential-exchange call is in flight.
type tokenManager struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *otelzap.Logger

	mu      sync.Mutex
	current *token
	group   singleflight.Group
}

func newTokenManager(cfg Config, httpClient *http.Client, logger *otelzap.Logger) *tokenManager {
	return &tokenManager{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// GetToken returns a valid access token, acquiring or refreshing one if
// needed. A failed acquisition is propagated to every waiter of that
// single flight and is never cached.
func (m *tokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.current.valid(time.Now()) {
		tok := m.current.accessToken
		m.mu.Unlock()
		return tok, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do("token", func() (interface{}, error) {
		tok, err := m.fetchToken(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.current = tok
		m.mu.Unlock()
		m.logger.Debug("Acquired UPS access token",
			zap.Time("expires_at", tok.expiresAt),
		)
		return tok.accessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next GetToken re-acquires.
// Idempotent, no I/O.
func (m *tokenManager) Invalidate() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// HasValidToken reports whether a non-expired token is cached.
func (m *tokenManager) HasValidToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.valid(time.Now())
}

// fetchToken exchanges client credentials for an access token.
func (m *tokenManager) fetchToken(ctx context.Context) (*token, error) {
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+tokenPath, body)
	if err != nil {
		return nil, carrier.NewError(carrier.KindConfiguration, carrierName,
			"building token request").WithCause(err)
	}
	req.SetBasicAuth(m.clientID, m.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	acquiredAt := time.Now()
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, m.httpClient.Timeout)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, m.classifyTokenFailure(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, carrier.NewError(carrier.KindAuth, carrierName,
			"decoding token response").WithCause(err)
	}
	if tr.AccessToken == "" || tr.ExpiresIn == 0 {
		return nil, carrier.NewError(carrier.KindAuth, carrierName,
			"token response missing access_token or expires_in")
	}

	return &token{
		accessToken: tr.AccessToken,
		tokenType:   tr.TokenType,
		expiresAt:   acquiredAt.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// classifyTokenFailure maps a non-200 token exchange response onto the
// error taxonomy: 401/403 are auth failures, 429 is rate-limited, and
// anything else is an auth failure carrying the status.
func (m *tokenManager) classifyTokenFailure(resp *http.Response) *carrier.Error {
	raw, _ := io.ReadAll(resp.Body)
	code, message := extractUpstreamError(raw)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return carrier.NewError(carrier.KindAuth, carrierName,
			"credential exchange rejected").
			WithStatus(resp.StatusCode).
			WithUpstream(code, message)
	case http.StatusTooManyRequests:
		return carrier.NewError(carrier.KindRateLimited, carrierName,
			"credential exchange rate limited").
			WithStatus(resp.StatusCode).
			WithUpstream(code, message).
			WithRetryAfter(parseRetryAfter(resp.Header.Get("Retry-After")))
	default:
		return carrier.NewError(carrier.KindAuth, carrierName,
			fmt.Sprintf("credential exchange failed with status %d", resp.StatusCode)).
			WithStatus(resp.StatusCode).
			WithUpstream(code, message)
	}
}
