package ups

import (
	"strconv"
	"strings"
	"time"

	"github.com/parcelbridge/rating/pkg/carrier"
)

// parseRateResponse translates the carrier wire response into the
// normalized quote list. This is the sole place where carrier response
// shape is validated; all shape failures are classified here.
func parseRateResponse(wire *RateWireResponse, requestID string, now func() time.Time) (*carrier.RateResponse, error) {
	if env := wire.ErrorEnvelope; env != nil && len(env.Errors) > 0 {
		messages := make([]string, len(env.Errors))
		for i, e := range env.Errors {
			switch {
			case e.Message != "":
				messages[i] = e.Message
			case e.Code != "":
				messages[i] = e.Code
			default:
				messages[i] = "Unknown error"
			}
		}
		return nil, carrier.NewCarrierError(carrier.CodeAPIError,
			"UPS API error: "+strings.Join(messages, ", ")).
			WithDetail("errors", env.Errors)
	}

	if wire.RateResponse == nil {
		return nil, carrier.NewCarrierError(carrier.CodeMalformedResponse,
			"invalid UPS response: missing RateResponse")
	}
	rateResp := wire.RateResponse

	if resp := rateResp.Response; resp != nil && resp.ResponseStatus != nil {
		code := resp.ResponseStatus.Code
		// "1" and "s" are the carrier's success codes.
		if code != "" && code != "1" && code != "s" {
			description := resp.ResponseStatus.Description
			if description == "" {
				description = "Unknown error"
			}
			message := "UPS API error: " + description
			if alerts := joinAlerts(resp.Alert, resp.AlertDetail); alerts != "" {
				message += " - " + alerts
			}
			return nil, carrier.NewCarrierError(carrier.CodeAPIError, message).
				WithDetail("statusCode", code).
				WithDetail("alerts", resp.Alert).
				WithDetail("alertDetails", resp.AlertDetail)
		}
	}

	if len(rateResp.RatedShipment) == 0 {
		return nil, carrier.NewCarrierError(carrier.CodeAPIError,
			"UPS response contains no rated shipments")
	}

	quotes := make([]carrier.RateQuote, 0, len(rateResp.RatedShipment))
	for _, shipment := range rateResp.RatedShipment {
		quote, err := parseRatedShipment(&shipment, now)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *quote)
	}

	if requestID == "" {
		if resp := rateResp.Response; resp != nil && resp.TransactionReference != nil {
			requestID = resp.TransactionReference.CustomerContext
		}
	}

	return &carrier.RateResponse{
		Quotes:    quotes,
		RequestID: requestID,
	}, nil
}

func parseRatedShipment(shipment *RatedShipment, now func() time.Time) (*carrier.RateQuote, error) {
	serviceCode := "UNKNOWN"
	serviceName := "Unknown Service"
	if shipment.Service != nil {
		if shipment.Service.Code != "" {
			serviceCode = shipment.Service.Code
		}
		if shipment.Service.Description != "" {
			serviceName = shipment.Service.Description
		}
	}

	// Charge preference: taxes-inclusive total, then plain total, then
	// transportation charges.
	totalCharges := shipment.TotalChargesWithTaxes
	if totalCharges == nil {
		totalCharges = shipment.TotalCharges
	}
	if totalCharges == nil {
		totalCharges = shipment.TransportationCharges
	}
	if totalCharges == nil {
		return nil, carrier.NewCarrierError(carrier.CodeMalformedResponse,
			"UPS response missing total charges")
	}

	amount, err := strconv.ParseFloat(totalCharges.MonetaryValue, 64)
	if err != nil {
		return nil, carrier.NewCarrierError(carrier.CodeMalformedResponse,
			"invalid monetary value: "+totalCharges.MonetaryValue).
			WithDetail("monetaryValue", totalCharges.MonetaryValue)
	}

	currency := totalCharges.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	var estimatedArrival *EstimatedArrival
	if shipment.TimeInTransit != nil {
		estimatedArrival = &shipment.TimeInTransit.ServiceSummary.EstimatedArrival
	}

	var deliveryDays *int
	if estimatedArrival != nil && estimatedArrival.BusinessDaysInTransit != "" {
		if days, err := strconv.Atoi(estimatedArrival.BusinessDaysInTransit); err == nil {
			deliveryDays = &days
		}
	}
	if deliveryDays == nil && shipment.GuaranteedDelivery != nil &&
		shipment.GuaranteedDelivery.BusinessDaysInTransit != "" {
		if days, err := strconv.Atoi(shipment.GuaranteedDelivery.BusinessDaysInTransit); err == nil {
			deliveryDays = &days
		}
	}

	transitTime := ""
	if estimatedArrival != nil && estimatedArrival.TotalTransitDays != "" {
		transitTime = estimatedArrival.TotalTransitDays + " transit days"
	} else if deliveryDays != nil {
		transitTime = strconv.Itoa(*deliveryDays) + " business days"
	}

	var deliveryDate *time.Time
	if estimatedArrival != nil {
		deliveryDate = parseWireDate(estimatedArrival.Arrival.Date)
	}
	if deliveryDate == nil && shipment.GuaranteedDelivery != nil {
		deliveryDate = parseWireDate(shipment.GuaranteedDelivery.ScheduledDeliveryDate)
	}
	if deliveryDate == nil && deliveryDays != nil {
		// Calendar-day approximation, not business-day aware. Kept as the
		// carrier integration has always behaved; flagged for product
		// clarification.
		derived := now().AddDate(0, 0, *deliveryDays)
		deliveryDate = &derived
	}

	return &carrier.RateQuote{
		Carrier:               carrierName,
		ServiceCode:           serviceCode,
		ServiceName:           serviceName,
		TotalCost:             carrier.Money{Amount: amount, Currency: currency},
		EstimatedDeliveryDays: deliveryDays,
		EstimatedDeliveryDate: deliveryDate,
		TransitTime:           transitTime,
	}, nil
}

// joinAlerts joins alert and alert-detail descriptions with ", ", alerts
// first, skipping empty descriptions.
func joinAlerts(alerts, alertDetails []Alert) string {
	parts := make([]string, 0, len(alerts)+len(alertDetails))
	for _, a := range alerts {
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	for _, a := range alertDetails {
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, ", ")
}

// parseWireDate accepts the carrier's two date renderings. Unparseable
// dates are treated as absent so the next fallback applies.
func parseWireDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
