// Package ups provides integration with the UPS Rating API.
package ups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "ups"

// Config holds UPS client configuration. Credentials and account number
// are required; the rest defaults.
type Config struct {
	ClientID      string
	ClientSecret  string
	AccountNumber string
	BaseURL       string
	APIVersion    string
	Timeout       time.Duration
}

func (cfg *Config) applyDefaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://onlinetools.ups.com"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
}

// Client is the UPS carrier provider. It implements carrier.Provider,
// delegating authentication to the token manager and wire calls to the
// authenticated transport.
type Client struct {
	config    Config
	tokens    *tokenManager
	transport *transport
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a UPS client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	cfg.applyDefaults()

	httpClient := &http.Client{Timeout: cfg.Timeout}
	tokens := newTokenManager(cfg, httpClient, logger)

	return &Client{
		config:    cfg,
		tokens:    tokens,
		transport: newTransport(cfg, httpClient, tokens, logger),
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier id.
func (c *Client) Name() string {
	return carrierName
}

// Supports reports rating support; label and tracking operations are not
// implemented.
func (c *Client) Supports(op carrier.Operation) bool {
	return op == carrier.OperationRate
}

// GetRates fetches quotes from UPS. The Rate endpoint is used when a
// single service level is requested, Shop otherwise; either way the
// response is normalized into a price-sorted quote list.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "ups.GetRates",
			trace.WithAttributes(attribute.Int("package_count", len(req.Packages))))
		defer span.End()
	}

	endpoint := fmt.Sprintf("/api/rating/%s/Shop", c.config.APIVersion)
	if req.ServiceLevel != "" {
		endpoint = fmt.Sprintf("/api/rating/%s/Rate", c.config.APIVersion)
	}

	wireReq, err := toWireRequest(req, c.config.AccountNumber)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetching UPS rates",
		zap.String("endpoint", endpoint),
		zap.Int("package_count", len(req.Packages)),
	)

	raw, err := c.transport.Post(ctx, endpoint, wireReq)
	if err != nil {
		c.logger.Error("UPS rate call failed", zap.Error(err))
		return nil, err
	}

	return c.parseRates(raw)
}

// parseRates decodes the response wrapper and maps every rated shipment
// to a domain quote, stable-sorted by total charges ascending.
func (c *Client) parseRates(raw json.RawMessage) ([]carrier.RateQuote, error) {
	var wrapper rateResponseWrapper
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, carrier.NewError(carrier.KindMalformedResponse, carrierName,
			"decoding rate response").WithCause(err)
	}
	if wrapper.RateResponse == nil {
		return nil, carrier.NewError(carrier.KindMalformedResponse, carrierName,
			"response missing RateResponse")
	}
	if len(wrapper.RateResponse.RatedShipment) == 0 {
		return nil, carrier.NewError(carrier.KindMalformedResponse, carrierName,
			"response missing RatedShipment")
	}

	quotes := make([]carrier.RateQuote, 0, len(wrapper.RateResponse.RatedShipment))
	for _, rs := range wrapper.RateResponse.RatedShipment {
		quote, err := fromRatedShipment(rs)
		if err != nil {
			if cerr, ok := carrier.AsError(err); ok {
				return nil, cerr
			}
			return nil, carrier.NewError(carrier.KindMalformedResponse, carrierName,
				fmt.Sprintf("mapping rated shipment: %v", err)).WithCause(err)
		}
		quotes = append(quotes, quote)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].TotalCharges.Amount < quotes[j].TotalCharges.Amount
	})
	return quotes, nil
}

// HasValidToken exposes the token cache state for observability.
func (c *Client) HasValidToken() bool {
	return c.tokens.HasValidToken()
}
