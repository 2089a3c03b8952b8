package ups

import (
	"strconv"

	"github.com/parcelbridge/rating/pkg/carrier"
)

// customerContext is echoed back by the carrier in the response's
// transaction reference.
const customerContext = "parcelbridge rate request"

// serviceLevelCodes maps carrier-agnostic service-level identifiers to UPS
// numeric service codes. Unrecognized identifiers pass through unchanged
// as the code; the carrier rejects codes it does not know.
var serviceLevelCodes = map[string]string{
	"UPS_GROUND":                "03",
	"UPS_STANDARD":              "11",
	"UPS_3_DAY_SELECT":          "12",
	"UPS_2ND_DAY_AIR":           "02",
	"UPS_2ND_DAY_AIR_AM":        "59",
	"UPS_NEXT_DAY_AIR":          "01",
	"UPS_NEXT_DAY_AIR_SAVER":    "13",
	"UPS_NEXT_DAY_AIR_EARLY_AM": "14",
}

var serviceDescriptions = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"11": "UPS Standard",
	"12": "UPS 3 Day Select",
	"13": "UPS Next Day Air Saver",
	"14": "UPS Next Day Air Early AM",
	"59": "UPS 2nd Day Air AM",
}

// toWireAddress translates a domain address; street lines and the other
// fields pass through verbatim.
func toWireAddress(addr carrier.Address) WireAddress {
	return WireAddress{
		AddressLine:       addr.Street,
		City:              addr.City,
		StateProvinceCode: addr.State,
		PostalCode:        addr.PostalCode,
		CountryCode:       addr.Country,
	}
}

// toWirePackage translates a domain package, normalizing units to carrier
// codes. Numeric values are rendered as their exact decimal strings.
func toWirePackage(pkg carrier.Package) WirePackage {
	weightUnit := "KGS"
	weightDesc := "Kilograms"
	if pkg.Weight.Unit == carrier.WeightLbs {
		weightUnit = "LBS"
		weightDesc = "Pounds"
	}

	wire := WirePackage{
		PackagingType: &CodeDescription{
			Code:        "02",
			Description: "Packaging",
		},
		PackageWeight: WirePackageWeight{
			UnitOfMeasurement: CodeDescription{
				Code:        weightUnit,
				Description: weightDesc,
			},
			Weight: formatDecimal(pkg.Weight.Value),
		},
	}

	if d := pkg.Dimensions; d != nil {
		dimUnit := "CM"
		dimDesc := "Centimeters"
		if d.Unit == carrier.DimensionIn {
			dimUnit = "IN"
			dimDesc = "Inches"
		}
		wire.Dimensions = &WireDimensions{
			UnitOfMeasurement: CodeDescription{
				Code:        dimUnit,
				Description: dimDesc,
			},
			Length: formatDecimal(d.Length),
			Width:  formatDecimal(d.Width),
			Height: formatDecimal(d.Height),
		}
	}

	return wire
}

// toWireRateRequest builds the full carrier rate request envelope from a
// validated domain request. Pure and deterministic: the same input always
// produces structurally identical output.
func toWireRateRequest(req *carrier.RateRequest) *RateWireRequest {
	wire := &RateWireRequest{}
	wire.RateRequest.Request.TransactionReference = TransactionReference{
		CustomerContext: customerContext,
	}

	shipment := &wire.RateRequest.Shipment
	shipment.Shipper = WireParty{Address: toWireAddress(req.Origin)}
	shipment.ShipTo = WireParty{Address: toWireAddress(req.Destination)}
	shipment.ShipFrom = &WireParty{Address: toWireAddress(req.Origin)}

	charge := ShipmentCharge{Type: "01"}
	charge.BillShipper.AccountNumber = ""
	shipment.PaymentDetails.ShipmentCharge = []ShipmentCharge{charge}

	if req.ServiceLevel != "" {
		code := mapServiceLevel(req.ServiceLevel)
		shipment.Service = &CodeDescription{
			Code:        code,
			Description: serviceDescription(code),
		}
	}

	shipment.NumOfPieces = strconv.Itoa(len(req.Packages))

	packages := make(PackageList, len(req.Packages))
	for i, pkg := range req.Packages {
		packages[i] = toWirePackage(pkg)
	}
	shipment.Package = packages

	return wire
}

func mapServiceLevel(serviceLevel string) string {
	if code, ok := serviceLevelCodes[serviceLevel]; ok {
		return code
	}
	return serviceLevel
}

func serviceDescription(code string) string {
	if desc, ok := serviceDescriptions[code]; ok {
		return desc
	}
	return "UPS Service"
}

// formatDecimal renders a value as its exact decimal string, no rounding.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
