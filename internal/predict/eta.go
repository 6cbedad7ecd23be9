// Package predict runs the two model forms of the transport dashboard:
// ETA prediction and carrier recommendation.
package predict

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// Validation errors, returned before any request is sent.
var (
	ErrMissingShipmentID = eris.New("predict: shipment id is required")
	ErrInvalidSchedule   = eris.New("predict: ship_dow must be 0-6 and ship_hour 0-23")
	ErrMissingLane       = eris.New("predict: origin, destination_zone and service_level are required")
)

// IsValidation reports whether err is one of the form validation errors.
func IsValidation(err error) bool {
	return eris.Is(err, ErrMissingShipmentID) ||
		eris.Is(err, ErrInvalidSchedule) ||
		eris.Is(err, ErrMissingLane)
}

// ETA form fallbacks when the model publishes no distinct values.
const (
	DefaultOrigin          = "PARIS"
	DefaultDestinationZone = "EU-WEST"
	DefaultCarrier         = "DHL"
	DefaultServiceLevel    = "EXPRESS"
)

// DefaultETAForm is the what-if form before distinct values are known.
func DefaultETAForm() logiops.ETAFeatures {
	return logiops.ETAFeatures{
		Origin:          DefaultOrigin,
		DestinationZone: DefaultDestinationZone,
		Carrier:         DefaultCarrier,
		ServiceLevel:    DefaultServiceLevel,
		ShipDow:         2,
		ShipHour:        10,
		DistanceKm:      480,
		WeightKg:        120,
		VolumeM3:        1.6,
		TotalUnits:      24,
		NLines:          3,
	}
}

// ETAOptions populates the ETA card.
type ETAOptions struct {
	Distincts   logiops.ETADistincts `json:"distincts"`
	ShipmentIDs []string             `json:"shipment_ids"`
	// Selected is the newest shipment id, preselected in the picker.
	Selected string              `json:"selected"`
	Form     logiops.ETAFeatures `json:"form"`
}

// ETAService wraps the ETA endpoints.
type ETAService struct {
	client        logiops.Client
	shipmentLimit int
}

// ETAOption configures an ETAService.
type ETAOption func(*ETAService)

// WithShipmentLimit sets how many shipment ids populate the picker.
func WithShipmentLimit(n int) ETAOption {
	return func(s *ETAService) {
		if n > 0 {
			s.shipmentLimit = n
		}
	}
}

// NewETAService creates an ETAService.
func NewETAService(client logiops.Client, opts ...ETAOption) *ETAService {
	s := &ETAService{client: client, shipmentLimit: logiops.DefaultShipmentIDLimit}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Options fetches the distinct values and shipment ids in parallel.
func (s *ETAService) Options(ctx context.Context, token string) (*ETAOptions, error) {
	var (
		distincts *logiops.ETADistincts
		ids       *logiops.ShipmentIDsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		distincts, err = s.client.ETADistincts(gctx, token)
		return eris.Wrap(err, "predict: eta distincts")
	})
	g.Go(func() error {
		var err error
		ids, err = s.client.ETAShipmentIDs(gctx, token, s.shipmentLimit)
		return eris.Wrap(err, "predict: eta shipment ids")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ETAOptions{
		Distincts:   *distincts,
		ShipmentIDs: ids.ShipmentIDs,
		Form:        DefaultETAForm(),
	}
	if out.ShipmentIDs == nil {
		out.ShipmentIDs = []string{}
	}
	if len(out.ShipmentIDs) > 0 {
		out.Selected = out.ShipmentIDs[0]
	}
	out.Form.Origin = first(distincts.Origin, DefaultOrigin)
	out.Form.DestinationZone = first(distincts.DestinationZone, DefaultDestinationZone)
	out.Form.Carrier = first(distincts.Carrier, DefaultCarrier)
	out.Form.ServiceLevel = first(distincts.ServiceLevel, DefaultServiceLevel)

	zap.L().Debug("predict: eta options loaded",
		zap.Int("shipment_ids", len(out.ShipmentIDs)),
		zap.Int("origins", len(distincts.Origin)),
	)
	return out, nil
}

// ByID predicts the ETA of a known shipment. The id is trimmed.
func (s *ETAService) ByID(ctx context.Context, token, shipmentID string) (*logiops.ETAByIDResponse, error) {
	id := strings.TrimSpace(shipmentID)
	if id == "" {
		return nil, ErrMissingShipmentID
	}
	res, err := s.client.PredictETAByID(ctx, token, id)
	if err != nil {
		return nil, eris.Wrapf(err, "predict: eta by id %s", id)
	}
	return res, nil
}

// WhatIf predicts the ETA of one feature vector. The result is nil when the
// model returns no value.
func (s *ETAService) WhatIf(ctx context.Context, token string, f logiops.ETAFeatures) (*float64, error) {
	if !validSchedule(f.ShipDow, f.ShipHour) {
		return nil, ErrInvalidSchedule
	}
	res, err := s.client.PredictETA(ctx, token, []logiops.ETAFeatures{f})
	if err != nil {
		return nil, eris.Wrap(err, "predict: eta what-if")
	}
	if len(res.EtaHours) == 0 {
		return nil, nil
	}
	h := res.EtaHours[0]
	return &h, nil
}

func validSchedule(dow, hour int) bool {
	return dow >= 0 && dow <= 6 && hour >= 0 && hour <= 23
}

func first(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}
