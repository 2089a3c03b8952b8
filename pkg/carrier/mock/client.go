// Package mock provides a mock carrier implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/parcelbridge/rating/pkg/carrier"
)

// Client is a mock carrier for testing.
type Client struct {
	name string

	// OnGetRates overrides the default canned response when set.
	OnGetRates func(ctx context.Context, req *carrier.RateRequest) (*carrier.RateResponse, error)
}

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// GetRates returns canned rate quotes.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) (*carrier.RateResponse, error) {
	if c.OnGetRates != nil {
		return c.OnGetRates(ctx, req)
	}

	groundDays := 5
	groundDate := time.Now().AddDate(0, 0, groundDays)
	expressDays := 2
	expressDate := time.Now().AddDate(0, 0, expressDays)

	return &carrier.RateResponse{
		RequestID: fmt.Sprintf("%s-req-%d", c.name, time.Now().UnixNano()),
		Quotes: []carrier.RateQuote{
			{
				Carrier:               c.name,
				ServiceCode:           "03",
				ServiceName:           fmt.Sprintf("%s Ground", c.name),
				TotalCost:             carrier.Money{Amount: 15.82, Currency: "USD"},
				EstimatedDeliveryDays: &groundDays,
				EstimatedDeliveryDate: &groundDate,
				TransitTime:           "5 business days",
			},
			{
				Carrier:               c.name,
				ServiceCode:           "02",
				ServiceName:           fmt.Sprintf("%s Express", c.name),
				TotalCost:             carrier.Money{Amount: 29.95, Currency: "USD"},
				EstimatedDeliveryDays: &expressDays,
				EstimatedDeliveryDate: &expressDate,
				TransitTime:           "2 business days",
			},
		},
	}, nil
}
