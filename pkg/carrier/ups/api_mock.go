package ups

import (
	"context"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnRate func(ctx context.Context, token, transID string, req *RateWireRequest) (*RateWireResponse, error)

	// Calls records every invocation's token and transaction id.
	Calls []MockCall
}

// MockCall records one Rate invocation.
type MockCall struct {
	Token   string
	TransID string
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Rate returns mock rated shipments.
func (m *MockAPIClient) Rate(ctx context.Context, token, transID string, req *RateWireRequest) (*RateWireResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	m.Calls = append(m.Calls, MockCall{Token: token, TransID: transID})

	if m.SimulateErrors {
		return nil, &StatusError{StatusCode: 500, Body: []byte(`{"response":{"errors":[{"code":"10001","message":"Simulated API error"}]}}`)}
	}

	if m.OnRate != nil {
		return m.OnRate(ctx, token, transID, req)
	}

	return DefaultMockResponse(), nil
}

// DefaultMockResponse builds a successful two-service rating response in
// the carrier's wire shape.
func DefaultMockResponse() *RateWireResponse {
	resp := &RateWireResponse{
		RateResponse: &RateResponseBody{
			Response: &ResponseSection{
				ResponseStatus:       &ResponseStatus{Code: "1", Description: "Success"},
				TransactionReference: &TransactionReference{CustomerContext: customerContext},
			},
		},
	}

	ground := RatedShipment{
		Service:      &CodeDescription{Code: "03", Description: "UPS Ground"},
		TotalCharges: &Charges{CurrencyCode: "USD", MonetaryValue: "15.82"},
		GuaranteedDelivery: &GuaranteedDelivery{
			BusinessDaysInTransit: "5",
		},
	}
	secondDay := RatedShipment{
		Service:               &CodeDescription{Code: "02", Description: "UPS 2nd Day Air"},
		TotalChargesWithTaxes: &Charges{CurrencyCode: "USD", MonetaryValue: "34.10"},
		TotalCharges:          &Charges{CurrencyCode: "USD", MonetaryValue: "29.95"},
		GuaranteedDelivery: &GuaranteedDelivery{
			BusinessDaysInTransit: "2",
			DeliveryByTime:        "11:00 PM",
		},
	}

	resp.RateResponse.RatedShipment = []RatedShipment{ground, secondDay}
	return resp
}

var _ APIClient = (*MockAPIClient)(nil)
