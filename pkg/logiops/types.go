package logiops

import (
	"encoding/json"
	"strings"

	"github.com/logiops360/logiops-cli/internal/numconv"
)

// Risk is the server-assigned delay band of a shipment.
type Risk string

const (
	RiskOnTime     Risk = "en_temps"
	RiskBorderline Risk = "limite"
	RiskLate       Risk = "retard"
	RiskCritical   Risk = "retard_critique"
	RiskUnknown    Risk = "unknown"
)

// Risks lists every band in display order.
var Risks = []Risk{RiskOnTime, RiskBorderline, RiskLate, RiskCritical, RiskUnknown}

var riskLabels = map[Risk]string{
	RiskOnTime:     "En temps",
	RiskBorderline: "À la limite",
	RiskLate:       "Retard",
	RiskCritical:   "Retard critique",
	RiskUnknown:    "Inconnu",
}

// Label returns the dashboard label for the band.
func (r Risk) Label() string {
	if l, ok := riskLabels[r]; ok {
		return l
	}
	return riskLabels[RiskUnknown]
}

// IsLate reports whether the band counts towards the late KPI.
func (r Risk) IsLate() bool {
	return r == RiskLate || r == RiskCritical
}

// Valid reports whether r is one of the known bands.
func (r Risk) Valid() bool {
	_, ok := riskLabels[r]
	return ok
}

// Normalized returns r, or RiskUnknown when r is not a known band.
func (r Risk) Normalized() Risk {
	if !r.Valid() {
		return RiskUnknown
	}
	return r
}

// UnmarshalJSON maps null and unrecognized labels to RiskUnknown.
func (r *Risk) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || !Risk(*s).Valid() {
		*r = RiskUnknown
		return nil
	}
	*r = Risk(*s)
	return nil
}

// Severity is the server-assigned P90 deviation band of an anomalous event.
type Severity string

const (
	SeverityHigh    Severity = "haute"
	SeverityMedium  Severity = "moyenne"
	SeverityLow     Severity = "basse"
	SeverityUnknown Severity = "inconnu"
)

// Severities lists the filterable bands.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// Valid reports whether s is a known band.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow, SeverityUnknown:
		return true
	}
	return false
}

// Normalized returns s, or SeverityUnknown when s is not a known band.
func (s Severity) Normalized() Severity {
	if !s.Valid() {
		return SeverityUnknown
	}
	return s
}

// Label returns the dashboard label for the band.
func (s Severity) Label() string {
	switch s {
	case SeverityHigh:
		return "Haute"
	case SeverityMedium:
		return "Moyenne"
	case SeverityLow:
		return "Basse"
	}
	return "Inconnue"
}

// UnmarshalJSON maps null and unrecognized labels to SeverityUnknown.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil || !Severity(*v).Valid() {
		*s = SeverityUnknown
		return nil
	}
	*s = Severity(*v)
	return nil
}

// DelayRecord is one row of GET /api/ml/delay/list.
type DelayRecord struct {
	ShipmentID      string        `json:"shipment_id"`
	Origin          string        `json:"origin"`
	DestinationZone string        `json:"destination_zone"`
	Carrier         string        `json:"carrier"`
	ServiceLevel    string        `json:"service_level"`
	DistanceKm      numconv.Value `json:"distance_km"`
	WeightKg        numconv.Value `json:"weight_kg"`
	EtaPredH        numconv.Value `json:"eta_pred_h"`
	SLAHours        numconv.Value `json:"sla_hours"`
	DeltaH          numconv.Value `json:"delta_h"`
	Risk            Risk          `json:"risk"`
	ShipDT          *string       `json:"ship_dt,omitempty"`
}

// ShipTime returns the shipment timestamp as "YYYY-MM-DD HH:MM", or "".
func (r DelayRecord) ShipTime() string {
	if r.ShipDT == nil {
		return ""
	}
	s := strings.Replace(*r.ShipDT, "T", " ", 1)
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}

// DelayListResponse is the body of GET /api/ml/delay/list.
type DelayListResponse struct {
	Items []DelayRecord `json:"items"`
}

// DelayDetail is the free-form body of GET /api/ml/delay/detail. The server
// returns a whole feature row, so only a few fields are typed.
type DelayDetail map[string]any

// ShipmentID returns the detail's shipment identifier.
func (d DelayDetail) ShipmentID() string { return d.str("shipment_id") }

// Carrier returns the detail's carrier.
func (d DelayDetail) Carrier() string { return d.str("carrier") }

// Origin returns the detail's origin.
func (d DelayDetail) Origin() string { return d.str("origin") }

// DestinationZone returns the detail's destination zone.
func (d DelayDetail) DestinationZone() string { return d.str("destination_zone") }

// Risk returns the server band.
func (d DelayDetail) Risk() Risk {
	return Risk(d.str("risk")).Normalized()
}

// EtaPredH returns the predicted ETA in hours.
func (d DelayDetail) EtaPredH() numconv.Value { return numconv.Of(d["eta_pred_h"]) }

// DeltaH returns the ETA minus SLA delta in hours.
func (d DelayDetail) DeltaH() numconv.Value { return numconv.Of(d["delta_h"]) }

// SLAHours returns the SLA threshold, accepting the older sla_h and sla keys.
func (d DelayDetail) SLAHours() numconv.Value {
	for _, k := range []string{"sla_hours", "sla_h", "sla"} {
		if v, ok := d[k]; ok && v != nil {
			return numconv.Of(v)
		}
	}
	return numconv.Value{}
}

func (d DelayDetail) str(key string) string {
	s, _ := d[key].(string)
	return s
}

// AnomalyEvent is one anomalous phase event from GET /api/ml/anom/list.
type AnomalyEvent struct {
	ShipmentID      string        `json:"shipment_id"`
	EventID         int64         `json:"event_id"`
	Phase           string        `json:"phase"`
	Carrier         string        `json:"carrier"`
	Origin          string        `json:"origin"`
	DestinationZone string        `json:"destination_zone"`
	DistanceKm      numconv.Value `json:"distance_km"`
	WeightKg        numconv.Value `json:"weight_kg"`
	DurationH       numconv.Value `json:"duration_h"`
	AvgDurationH    numconv.Value `json:"avg_duration_h"`
	P50DurationH    numconv.Value `json:"p50_duration_h"`
	P90DurationH    numconv.Value `json:"p90_duration_h"`
	RatioP90        numconv.Value `json:"ratio_p90"`
	Severity        Severity      `json:"severity"`
}

// AnomalyListResponse is the body of GET /api/ml/anom/list.
type AnomalyListResponse struct {
	Items []AnomalyEvent `json:"items"`
}

// PhaseRecord is one phase of a shipment in the anomaly detail.
type PhaseRecord struct {
	EventID      int64         `json:"event_id"`
	Phase        string        `json:"phase"`
	DurationH    numconv.Value `json:"duration_h"`
	AvgDurationH numconv.Value `json:"avg_duration_h"`
	P50DurationH numconv.Value `json:"p50_duration_h"`
	P90DurationH numconv.Value `json:"p90_duration_h"`
	// ServerFlag is the server's is_anom_p90 column; consumers recompute it.
	ServerFlag numconv.Value `json:"is_anom_p90"`
}

// AnomalyDetail is the body of GET /api/ml/anom/detail.
type AnomalyDetail struct {
	ShipmentID      string        `json:"shipment_id"`
	EventID         int64         `json:"event_id"`
	Phase           string        `json:"phase"`
	Carrier         string        `json:"carrier"`
	Origin          string        `json:"origin"`
	DestinationZone string        `json:"destination_zone"`
	DistanceKm      numconv.Value `json:"distance_km"`
	WeightKg        numconv.Value `json:"weight_kg"`
	DurationH       numconv.Value `json:"duration_h"`
	AvgDurationH    numconv.Value `json:"avg_duration_h"`
	P50DurationH    numconv.Value `json:"p50_duration_h"`
	P90DurationH    numconv.Value `json:"p90_duration_h"`
	RatioP90        numconv.Value `json:"ratio_p90"`
	Severity        Severity      `json:"severity"`
	Phases          []PhaseRecord `json:"phases"`
}

// ETAFeatures is one feature vector for the ETA model.
type ETAFeatures struct {
	Origin          string  `json:"origin"`
	DestinationZone string  `json:"destination_zone"`
	Carrier         string  `json:"carrier"`
	ServiceLevel    string  `json:"service_level"`
	ShipDow         int     `json:"ship_dow"`
	ShipHour        int     `json:"ship_hour"`
	DistanceKm      float64 `json:"distance_km"`
	WeightKg        float64 `json:"weight_kg"`
	VolumeM3        float64 `json:"volume_m3"`
	TotalUnits      int     `json:"total_units"`
	NLines          int     `json:"n_lines"`
}

// ETAPredictRequest is the body of POST /api/ml/eta/predict.
type ETAPredictRequest struct {
	Items []ETAFeatures `json:"items"`
}

// ETAPredictResponse is the body of POST /api/ml/eta/predict.
type ETAPredictResponse struct {
	EtaHours     []float64 `json:"eta_hours"`
	N            int       `json:"n,omitempty"`
	ModelVersion string    `json:"model_version,omitempty"`
}

// ETAByIDResponse is the body of GET /api/ml/eta/predict-by-id.
type ETAByIDResponse struct {
	ShipmentID   string   `json:"shipment_id"`
	EtaHours     *float64 `json:"eta_hours"`
	ModelVersion string   `json:"model_version,omitempty"`
}

// ETADistincts lists the categorical values known to the ETA model.
type ETADistincts struct {
	Origin          []string `json:"origin"`
	DestinationZone []string `json:"destination_zone"`
	Carrier         []string `json:"carrier"`
	ServiceLevel    []string `json:"service_level"`
}

// ShipmentIDsResponse is the body of GET /api/ml/eta/shipments.
type ShipmentIDsResponse struct {
	ShipmentIDs []string `json:"shipment_ids"`
}

// CarrierDistincts lists the lane values known to the recommender.
type CarrierDistincts struct {
	Origin          []string `json:"origin"`
	DestinationZone []string `json:"destination_zone"`
	ServiceLevel    []string `json:"service_level"`
}

// RecommendRequest is the body of POST /api/ml/reco-simple/recommend.
type RecommendRequest struct {
	Origin          string  `json:"origin"`
	DestinationZone string  `json:"destination_zone"`
	ServiceLevel    string  `json:"service_level"`
	DistanceKm      float64 `json:"distance_km"`
	WeightKg        float64 `json:"weight_kg"`
	VolumeM3        float64 `json:"volume_m3"`
	TotalUnits      int     `json:"total_units"`
	NLines          int     `json:"n_lines"`
	ShipDow         int     `json:"ship_dow"`
	ShipHour        int     `json:"ship_hour"`
	TopK            int     `json:"topk,omitempty"`
}

// CarrierCandidate is one scored carrier.
type CarrierCandidate struct {
	Carrier      string        `json:"carrier"`
	ServiceLevel string        `json:"service_level"`
	EtaPredH     numconv.Value `json:"eta_pred_h"`
	CostPred     numconv.Value `json:"cost_pred"`
	Risk         numconv.Value `json:"risk"`
	Score        numconv.Value `json:"score"`
}

// Reliability returns 1 - risk, or false when risk is missing.
func (c CarrierCandidate) Reliability() (float64, bool) {
	r, ok := c.Risk.Float()
	if !ok {
		return 0, false
	}
	return 1 - r, true
}

// RecommendResponse is the body of POST /api/ml/reco-simple/recommend.
type RecommendResponse struct {
	Best        *CarrierCandidate  `json:"best"`
	TopK        []CarrierCandidate `json:"topK,omitempty"`
	Message     string             `json:"message,omitempty"`
	Weights     map[string]float64 `json:"weights,omitempty"`
	Diagnostics map[string]any     `json:"diagnostics,omitempty"`
}

// KPICounters is the body of GET /api/kpi/counters.
type KPICounters struct {
	InProgress numconv.Value `json:"in_progress"`
}

// Credentials is the body of POST /api/auth/login.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TypeProfil string `json:"type_profil"`
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Nom        string `json:"nom"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	TypeProfil string `json:"type_profil"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token      string `json:"token"`
	ID         string `json:"id"`
	Nom        string `json:"nom"`
	Email      string `json:"email"`
	TypeProfil string `json:"type_profil"`
}
