// Package mock provides a mock carrier provider for testing and local
// development.
package mock

import (
	"context"
	"sync/atomic"

	"github.com/parcelgrid/rateshop/pkg/carrier"
)

// Client is a mock carrier. Its behavior can be overridden per test via
// OnGetRates; by default it returns two canned quotes.
type Client struct {
	name  string
	calls atomic.Int64

	// OnGetRates overrides the default canned response when set.
	OnGetRates func(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error)
}

// New creates a mock carrier with the given id.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier id.
func (c *Client) Name() string {
	return c.name
}

// Supports reports rating support only.
func (c *Client) Supports(op carrier.Operation) bool {
	return op == carrier.OperationRate
}

// Calls returns how many times GetRates was invoked.
func (c *Client) Calls() int {
	return int(c.calls.Load())
}

// GetRates returns mock quotes.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error) {
	c.calls.Add(1)

	if c.OnGetRates != nil {
		return c.OnGetRates(ctx, req)
	}

	return []carrier.RateQuote{
		{
			Carrier:      c.name,
			ServiceCode:  "03",
			ServiceName:  c.name + " Ground",
			ServiceLevel: carrier.ServiceGround,
			TotalCharges: carrier.Money{Amount: 15.82, Currency: "USD"},
			BaseCharges:  carrier.Money{Amount: 14.32, Currency: "USD"},
			Surcharges: []carrier.Surcharge{
				{Code: "375", Description: "Fuel Surcharge", Amount: carrier.Money{Amount: 1.50, Currency: "USD"}},
			},
			TransitDays: 5,
		},
		{
			Carrier:            c.name,
			ServiceCode:        "02",
			ServiceName:        c.name + " 2nd Day Air",
			ServiceLevel:       carrier.ServiceTwoDay,
			TotalCharges:       carrier.Money{Amount: 29.95, Currency: "USD"},
			BaseCharges:        carrier.Money{Amount: 29.95, Currency: "USD"},
			TransitDays:        2,
			GuaranteedDelivery: true,
		},
	}, nil
}
