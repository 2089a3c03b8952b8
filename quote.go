package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/spf13/cobra"
)

// quoteRequest is the JSON shape accepted by the quote command.
type quoteRequest struct {
	Origin struct {
		Street     []string `json:"street"`
		City       string   `json:"city"`
		State      string   `json:"state"`
		PostalCode string   `json:"postalCode"`
		Country    string   `json:"country"`
	} `json:"origin"`
	Destination struct {
		Street     []string `json:"street"`
		City       string   `json:"city"`
		State      string   `json:"state"`
		PostalCode string   `json:"postalCode"`
		Country    string   `json:"country"`
	} `json:"destination"`
	Packages []struct {
		Weight struct {
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		} `json:"weight"`
		Dimensions *struct {
			Length float64 `json:"length"`
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
			Unit   string  `json:"unit"`
		} `json:"dimensions"`
	} `json:"packages"`
	ServiceLevel string `json:"serviceLevel"`
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	registry := initCarrierRegistry(cfg, logger, nil)

	carrierName, _ := cmd.Flags().GetString("carrier")
	c, err := registry.Get(carrierName)
	if err != nil {
		return err
	}

	req, err := readQuoteRequest(cmd)
	if err != nil {
		return err
	}

	resp, err := c.GetRates(ctx, req)
	if err != nil {
		var cerr *carrier.CarrierError
		if errors.As(err, &cerr) {
			fmt.Fprintf(os.Stderr, "carrier error %s: %s\n", cerr.Code, cerr.Message)
		}
		return err
	}

	fmt.Printf("Found %d rate quote(s):\n\n", len(resp.Quotes))
	for i, quote := range resp.Quotes {
		fmt.Printf("Quote %d:\n", i+1)
		fmt.Printf("  Carrier: %s\n", quote.Carrier)
		fmt.Printf("  Service: %s (%s)\n", quote.ServiceName, quote.ServiceCode)
		fmt.Printf("  Cost: %s %.2f\n", quote.TotalCost.Currency, quote.TotalCost.Amount)
		if quote.EstimatedDeliveryDays != nil {
			fmt.Printf("  Estimated Delivery: %d business days\n", *quote.EstimatedDeliveryDays)
		}
		if quote.EstimatedDeliveryDate != nil {
			fmt.Printf("  Delivery Date: %s\n", quote.EstimatedDeliveryDate.Format("2006-01-02"))
		}
		if quote.TransitTime != "" {
			fmt.Printf("  Transit Time: %s\n", quote.TransitTime)
		}
		fmt.Println()
	}
	if resp.RequestID != "" {
		fmt.Printf("Request ID: %s\n", resp.RequestID)
	}
	return nil
}

func readQuoteRequest(cmd *cobra.Command) (*carrier.RateRequest, error) {
	file, _ := cmd.Flags().GetString("file")

	var reader io.Reader = os.Stdin
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = f
	}

	var dto quoteRequest
	if err := json.NewDecoder(reader).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decoding rate request: %w", err)
	}

	req := &carrier.RateRequest{
		Origin: carrier.Address{
			Street:     dto.Origin.Street,
			City:       dto.Origin.City,
			State:      dto.Origin.State,
			PostalCode: dto.Origin.PostalCode,
			Country:    dto.Origin.Country,
		},
		Destination: carrier.Address{
			Street:     dto.Destination.Street,
			City:       dto.Destination.City,
			State:      dto.Destination.State,
			PostalCode: dto.Destination.PostalCode,
			Country:    dto.Destination.Country,
		},
		ServiceLevel: dto.ServiceLevel,
	}
	for _, p := range dto.Packages {
		pkg := carrier.Package{
			Weight: carrier.Weight{
				Value: p.Weight.Value,
				Unit:  carrier.WeightUnit(p.Weight.Unit),
			},
		}
		if d := p.Dimensions; d != nil {
			pkg.Dimensions = &carrier.Dimensions{
				Length: d.Length,
				Width:  d.Width,
				Height: d.Height,
				Unit:   carrier.DimensionUnit(d.Unit),
			}
		}
		req.Packages = append(req.Packages, pkg)
	}
	return req, nil
}
