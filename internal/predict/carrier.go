package predict

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// DefaultCarrierForm is the recommendation form before the lane is known.
func DefaultCarrierForm() logiops.RecommendRequest {
	return logiops.RecommendRequest{
		DistanceKm: 500,
		WeightKg:   120,
		VolumeM3:   1.2,
		TotalUnits: 10,
		NLines:     3,
		ShipDow:    2,
		ShipHour:   10,
	}
}

// CarrierOptions populates the carrier card.
type CarrierOptions struct {
	Distincts logiops.CarrierDistincts `json:"distincts"`
	Form      logiops.RecommendRequest `json:"form"`
}

// Recommendation is the outcome of a recommendation request.
type Recommendation struct {
	Best    *logiops.CarrierCandidate  `json:"best"`
	TopK    []logiops.CarrierCandidate `json:"top_k,omitempty"`
	Message string                     `json:"message,omitempty"`
	// Summary is the one-line rendering of Best, or "".
	Summary string `json:"summary,omitempty"`
}

// CarrierService wraps the recommendation endpoints.
type CarrierService struct {
	client logiops.Client
}

// NewCarrierService creates a CarrierService.
func NewCarrierService(client logiops.Client) *CarrierService {
	return &CarrierService{client: client}
}

// Options fetches the lane values and preselects the first of each.
func (s *CarrierService) Options(ctx context.Context, token string) (*CarrierOptions, error) {
	d, err := s.client.CarrierDistincts(ctx, token)
	if err != nil {
		return nil, eris.Wrap(err, "predict: carrier distincts")
	}
	form := DefaultCarrierForm()
	form.Origin = first(d.Origin, "")
	form.DestinationZone = first(d.DestinationZone, "")
	form.ServiceLevel = first(d.ServiceLevel, "")
	return &CarrierOptions{Distincts: *d, Form: form}, nil
}

// Recommend scores carriers for a lane. A response without a best
// candidate is not an error; its message is passed through.
func (s *CarrierService) Recommend(ctx context.Context, token string, req logiops.RecommendRequest) (*Recommendation, error) {
	if strings.TrimSpace(req.Origin) == "" ||
		strings.TrimSpace(req.DestinationZone) == "" ||
		strings.TrimSpace(req.ServiceLevel) == "" {
		return nil, ErrMissingLane
	}
	if !validSchedule(req.ShipDow, req.ShipHour) {
		return nil, ErrInvalidSchedule
	}

	res, err := s.client.RecommendCarrier(ctx, token, req)
	if err != nil {
		return nil, eris.Wrap(err, "predict: recommend carrier")
	}
	out := &Recommendation{Best: res.Best, TopK: res.TopK, Message: res.Message}
	if res.Best != nil {
		out.Summary = Describe(*res.Best)
	}
	return out, nil
}

// Describe renders a candidate's metrics the way the carrier card shows them.
func Describe(c logiops.CarrierCandidate) string {
	reliability := "—"
	if r, ok := c.Reliability(); ok {
		reliability = fmt.Sprintf("%.0f%%", r*100)
	}
	return fmt.Sprintf("ETA ≈ %s h • Coût ≈ %s • Fiabilité ≈ %s • Score %s",
		fixed(c.EtaPredH, 1), fixed(c.CostPred, 0), reliability, fixed(c.Score, 3))
}

func fixed(v numconv.Value, prec int) string {
	f, ok := v.Float()
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.*f", prec, f)
}
