package ups

import (
	"context"
	"encoding/json"
	"fmt"
)

// APIClient defines the interface for the UPS rating API call. The access
// token and transaction id are supplied per call so the orchestrating
// client controls token refresh and traceability.
type APIClient interface {
	// Rate POSTs a rate request to the versioned rating endpoint.
	Rate(ctx context.Context, token, transID string, req *RateWireRequest) (*RateWireResponse, error)
}

// StatusError is returned by the HTTP API client for non-2xx responses so
// the orchestrating client can classify the failure (401 retry, 429, 4xx,
// 5xx) with the raw body at hand.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ups: unexpected status %d: %s", e.StatusCode, e.Body)
}

// ============================================================================
// Wire types (match the UPS Rating API JSON schema)
// ============================================================================

// WireAddress is a UPS address.
type WireAddress struct {
	AddressLine       []string `json:"AddressLine,omitempty"`
	City              string   `json:"City"`
	StateProvinceCode string   `json:"StateProvinceCode"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`
}

// CodeDescription is the UPS code/description pair used for units,
// services and packaging types.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// WireDimensions are package dimensions in carrier form. Values are
// rendered as decimal strings.
type WireDimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// WirePackageWeight is a package weight in carrier form.
type WirePackageWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// WirePackage is one package in carrier form.
type WirePackage struct {
	PackagingType *CodeDescription  `json:"PackagingType,omitempty"`
	Dimensions    *WireDimensions   `json:"Dimensions,omitempty"`
	PackageWeight WirePackageWeight `json:"PackageWeight"`
}

// PackageList carries the rate request's packages. The carrier's schema
// overloads the field type: exactly one package is encoded as a single
// object, multiple packages as an array.
type PackageList []WirePackage

// MarshalJSON implements the object-or-array encoding.
func (p PackageList) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]WirePackage(p))
}

// UnmarshalJSON accepts both the single-object and the array form.
func (p *PackageList) UnmarshalJSON(data []byte) error {
	var many []WirePackage
	if err := json.Unmarshal(data, &many); err == nil {
		*p = many
		return nil
	}
	var one WirePackage
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*p = PackageList{one}
	return nil
}

// TransactionReference carries the caller's transaction context through
// the carrier round trip.
type TransactionReference struct {
	CustomerContext string `json:"CustomerContext,omitempty"`
}

// ShipmentCharge is one entry of the payment-details block the carrier's
// schema requires even when not semantically meaningful to the caller.
type ShipmentCharge struct {
	Type        string `json:"Type"`
	BillShipper struct {
		AccountNumber string `json:"AccountNumber"`
	} `json:"BillShipper"`
}

// WireParty is a shipper/ship-to/ship-from block.
type WireParty struct {
	Name    string      `json:"Name,omitempty"`
	Address WireAddress `json:"Address"`
}

// WireShipment is the shipment section of the rating request.
type WireShipment struct {
	Shipper        WireParty  `json:"Shipper"`
	ShipTo         WireParty  `json:"ShipTo"`
	ShipFrom       *WireParty `json:"ShipFrom,omitempty"`
	PaymentDetails struct {
		ShipmentCharge []ShipmentCharge `json:"ShipmentCharge"`
	} `json:"PaymentDetails"`
	Service     *CodeDescription `json:"Service,omitempty"`
	NumOfPieces string           `json:"NumOfPieces,omitempty"`
	Package     PackageList      `json:"Package"`
}

// RateRequestBody is the inner rating request.
type RateRequestBody struct {
	Request struct {
		TransactionReference TransactionReference `json:"TransactionReference"`
	} `json:"Request"`
	Shipment WireShipment `json:"Shipment"`
}

// RateWireRequest is the full rating request envelope.
type RateWireRequest struct {
	RateRequest RateRequestBody `json:"RateRequest"`
}

// Charges is a currency/amount pair. Monetary values arrive as strings.
type Charges struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// Alert is a carrier warning or error annotation.
type Alert struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

// EstimatedArrival is the time-in-transit arrival estimate.
type EstimatedArrival struct {
	Arrival struct {
		Date string `json:"Date"`
		Time string `json:"Time"`
	} `json:"Arrival"`
	BusinessDaysInTransit string `json:"BusinessDaysInTransit"`
	TotalTransitDays      string `json:"TotalTransitDays"`
}

// TimeInTransit is the optional transit-time block of a rated shipment.
type TimeInTransit struct {
	ServiceSummary struct {
		Service struct {
			Description string `json:"Description"`
		} `json:"Service"`
		EstimatedArrival EstimatedArrival `json:"EstimatedArrival"`
	} `json:"ServiceSummary"`
}

// GuaranteedDelivery is the optional delivery guarantee of a rated
// shipment.
type GuaranteedDelivery struct {
	BusinessDaysInTransit string `json:"BusinessDaysInTransit"`
	DeliveryByTime        string `json:"DeliveryByTime"`
	ScheduledDeliveryDate string `json:"ScheduledDeliveryDate"`
}

// RatedShipment is one priced service option in the carrier response.
type RatedShipment struct {
	Service               *CodeDescription    `json:"Service"`
	TransportationCharges *Charges            `json:"TransportationCharges"`
	TotalCharges          *Charges            `json:"TotalCharges"`
	TotalChargesWithTaxes *Charges            `json:"TotalChargesWithTaxes"`
	TimeInTransit         *TimeInTransit      `json:"TimeInTransit"`
	GuaranteedDelivery    *GuaranteedDelivery `json:"GuaranteedDelivery"`
	RatedShipmentAlert    []Alert             `json:"RatedShipmentAlert"`
	BillingWeight         json.RawMessage     `json:"BillingWeight,omitempty"`
	NegotiatedRateCharges json.RawMessage     `json:"NegotiatedRateCharges,omitempty"`
	ItemizedCharges       json.RawMessage     `json:"ItemizedCharges,omitempty"`
	ServiceOptionsCharges *Charges            `json:"ServiceOptionsCharges,omitempty"`
}

// ResponseStatus is the carrier's top-level status code/description.
type ResponseStatus struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

// ResponseSection is the status/alert section of the rating response.
type ResponseSection struct {
	ResponseStatus       *ResponseStatus       `json:"ResponseStatus"`
	Alert                []Alert               `json:"Alert"`
	AlertDetail          []Alert               `json:"AlertDetail"`
	TransactionReference *TransactionReference `json:"TransactionReference"`
}

// RateResponseBody is the inner rating response.
type RateResponseBody struct {
	Response      *ResponseSection `json:"Response"`
	RatedShipment []RatedShipment  `json:"RatedShipment"`
}

// WireError is one entry of the carrier's request-level error envelope.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope is the top-level error envelope the carrier uses for
// request-level failures.
type ErrorEnvelope struct {
	Errors []WireError `json:"errors"`
}

// RateWireResponse is the full rating response envelope, including the
// error envelope shape.
type RateWireResponse struct {
	RateResponse  *RateResponseBody `json:"RateResponse"`
	ErrorEnvelope *ErrorEnvelope    `json:"response"`
}
