package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/parcelbridge/rating/internal/telemetry"
	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the rating service.
type Server struct {
	port     int
	registry *carrier.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *carrier.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/rates", s.handleRates)
	mux.HandleFunc("/api/carriers", s.handleCarriers)
	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ============================================================================
// Transport DTOs
// ============================================================================

type addressDTO struct {
	Street     []string `json:"street"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postalCode"`
	Country    string   `json:"country"`
}

type weightDTO struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type dimensionsDTO struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

type packageDTO struct {
	Weight     weightDTO      `json:"weight"`
	Dimensions *dimensionsDTO `json:"dimensions,omitempty"`
}

type ratesRequestDTO struct {
	Carrier      string       `json:"carrier"`
	Origin       addressDTO   `json:"origin"`
	Destination  addressDTO   `json:"destination"`
	Packages     []packageDTO `json:"packages"`
	ServiceLevel string       `json:"serviceLevel,omitempty"`
}

type moneyDTO struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type quoteDTO struct {
	Carrier               string   `json:"carrier"`
	ServiceLevel          string   `json:"serviceLevel"`
	ServiceName           string   `json:"serviceName"`
	TotalCost             moneyDTO `json:"totalCost"`
	EstimatedDeliveryDays *int     `json:"estimatedDeliveryDays,omitempty"`
	EstimatedDeliveryDate *string  `json:"estimatedDeliveryDate,omitempty"`
	TransitTime           string   `json:"transitTime,omitempty"`
}

type ratesResponseDTO struct {
	Quotes    []quoteDTO `json:"quotes"`
	RequestID string     `json:"requestId,omitempty"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{
			Error:   string(carrier.CodeValidationError),
			Message: "method not allowed, use POST",
		})
		return
	}

	var dto ratesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Error:   string(carrier.CodeValidationError),
			Message: "invalid JSON: " + err.Error(),
		})
		return
	}

	if dto.Carrier == "" {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Error: string(carrier.CodeValidationError),
			Message: "carrier is required; available carriers: " +
				strings.Join(s.registry.Names(), ", "),
		})
		return
	}

	c, err := s.registry.Get(dto.Carrier)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Error: string(carrier.CodeValidationError),
			Message: fmt.Sprintf("carrier %s is not available; available carriers: %s",
				dto.Carrier, strings.Join(s.registry.Names(), ", ")),
		})
		return
	}

	req := requestFromDTO(&dto)

	start := time.Now()
	resp, err := c.GetRates(r.Context(), req)
	duration := time.Since(start).Seconds()

	if err != nil {
		cerr := carrier.AsCarrierError(err)
		s.metrics.RecordRequest(c.Name(), "error", duration)
		s.metrics.RecordError(c.Name(), string(cerr.Code))
		s.logger.Error("Rate request failed",
			zap.String("carrier", c.Name()),
			zap.String("code", string(cerr.Code)),
			zap.Error(err),
		)
		writeJSON(w, carrier.HTTPStatus(cerr.Code), errorEnvelope{
			Error:   string(cerr.Code),
			Message: cerr.Message,
			Details: cerr.Details,
		})
		return
	}

	s.metrics.RecordRequest(c.Name(), "success", duration)
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: responseToDTO(resp)})
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{
			Error:   string(carrier.CodeValidationError),
			Message: "method not allowed, use GET",
		})
		return
	}

	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: s.registry.Names()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func requestFromDTO(dto *ratesRequestDTO) *carrier.RateRequest {
	packages := make([]carrier.Package, len(dto.Packages))
	for i, p := range dto.Packages {
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
		packages[i] = pkg
	}

	return &carrier.RateRequest{
		Origin:       addressFromDTO(dto.Origin),
		Destination:  addressFromDTO(dto.Destination),
		Packages:     packages,
		ServiceLevel: dto.ServiceLevel,
	}
}

func addressFromDTO(dto addressDTO) carrier.Address {
	return carrier.Address{
		Street:     dto.Street,
		City:       dto.City,
		State:      dto.State,
		PostalCode: dto.PostalCode,
		Country:    dto.Country,
	}
}

func responseToDTO(resp *carrier.RateResponse) ratesResponseDTO {
	quotes := make([]quoteDTO, len(resp.Quotes))
	for i, q := range resp.Quotes {
		dto := quoteDTO{
			Carrier:      q.Carrier,
			ServiceLevel: q.ServiceCode,
			ServiceName:  q.ServiceName,
			TotalCost: moneyDTO{
				Amount:   q.TotalCost.Amount,
				Currency: q.TotalCost.Currency,
			},
			EstimatedDeliveryDays: q.EstimatedDeliveryDays,
			TransitTime:           q.TransitTime,
		}
		if q.EstimatedDeliveryDate != nil {
			date := q.EstimatedDeliveryDate.Format("2006-01-02")
			dto.EstimatedDeliveryDate = &date
		}
		quotes[i] = dto
	}
	return ratesResponseDTO{
		Quotes:    quotes,
		RequestID: resp.RequestID,
	}
}
