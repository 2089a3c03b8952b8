package carrier

import (
	"errors"
	"time"
)

// WeightUnit represents a weight measurement unit.
type WeightUnit string

const (
	WeightLbs WeightUnit = "lbs"
	WeightKg  WeightUnit = "kg"
)

// DimensionUnit represents a dimension measurement unit.
type DimensionUnit string

const (
	DimensionIn DimensionUnit = "in"
	DimensionCm DimensionUnit = "cm"
)

// Address represents a shipping origin or destination.
type Address struct {
	Street     []string // 1-3 street lines
	City       string
	State      string // 2-letter state/province code
	PostalCode string
	Country    string // ISO 3166-1 alpha-2, e.g., "US", "CA"
}

// Weight represents a package weight.
type Weight struct {
	Value float64
	Unit  WeightUnit
}

// Dimensions represents package dimensions.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
	Unit   DimensionUnit
}

// Package represents a package to be rated.
type Package struct {
	Weight     Weight
	Dimensions *Dimensions
}

// Money represents a monetary amount.
type Money struct {
	Amount   float64
	Currency string
}

// RateRequest is the carrier-agnostic request for rate quotes.
type RateRequest struct {
	Origin       Address
	Destination  Address
	Packages     []Package
	ServiceLevel string // optional carrier-agnostic identifier, e.g. "UPS_GROUND"
}

// RateQuote represents one priced, timed shipping-service offer.
type RateQuote struct {
	Carrier               string
	ServiceCode           string
	ServiceName           string
	TotalCost             Money
	EstimatedDeliveryDays *int
	EstimatedDeliveryDate *time.Time
	TransitTime           string
}

// RateResponse is the normalized rating response. Quote order matches the
// carrier's response order.
type RateResponse struct {
	Quotes    []RateQuote
	RequestID string
}

const maxPackages = 200

// Validate checks the request before any network call is made.
func (r *RateRequest) Validate() error {
	if err := r.Origin.validate("origin"); err != nil {
		return err
	}
	if err := r.Destination.validate("destination"); err != nil {
		return err
	}
	if len(r.Packages) == 0 {
		return NewCarrierError(CodeValidationError, "at least one package is required")
	}
	if len(r.Packages) > maxPackages {
		return NewCarrierError(CodeValidationError, "too many packages").
			WithDetail("max", maxPackages).
			WithDetail("count", len(r.Packages))
	}
	for i, pkg := range r.Packages {
		if err := pkg.validate(); err != nil {
			var cerr *CarrierError
			if errors.As(err, &cerr) {
				return cerr.WithDetail("package", i)
			}
			return err
		}
	}
	return nil
}

func (a *Address) validate(field string) error {
	if len(a.Street) < 1 || len(a.Street) > 3 {
		return NewCarrierError(CodeValidationError, field+" must have 1-3 street lines")
	}
	for _, line := range a.Street {
		if line == "" {
			return NewCarrierError(CodeValidationError, field+" street lines must not be empty")
		}
	}
	if a.City == "" {
		return NewCarrierError(CodeValidationError, field+" city is required")
	}
	if len(a.State) != 2 {
		return NewCarrierError(CodeValidationError, field+" state must be a 2-letter code")
	}
	if len(a.PostalCode) < 5 || len(a.PostalCode) > 10 {
		return NewCarrierError(CodeValidationError, field+" postal code must be 5-10 characters")
	}
	if len(a.Country) != 2 {
		return NewCarrierError(CodeValidationError, field+" country must be a 2-letter code")
	}
	return nil
}

func (p *Package) validate() error {
	if p.Weight.Value <= 0 {
		return NewCarrierError(CodeValidationError, "package weight must be positive")
	}
	if p.Weight.Unit != WeightLbs && p.Weight.Unit != WeightKg {
		return NewCarrierError(CodeValidationError, "package weight unit must be lbs or kg")
	}
	if d := p.Dimensions; d != nil {
		if d.Length <= 0 || d.Width <= 0 || d.Height <= 0 {
			return NewCarrierError(CodeValidationError, "package dimensions must be positive")
		}
		if d.Unit != DimensionIn && d.Unit != DimensionCm {
			return NewCarrierError(CodeValidationError, "package dimension unit must be in or cm")
		}
	}
	return nil
}
