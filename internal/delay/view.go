package delay

import (
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// Detail statuses.
const (
	StatusLate    = "late"
	StatusOnTime  = "on_time"
	StatusUnknown = "unknown"
)

// Tile is one shipment card of the delay list.
type Tile struct {
	ShipmentID      string       `json:"shipment_id"`
	Origin          string       `json:"origin"`
	DestinationZone string       `json:"destination_zone"`
	Carrier         string       `json:"carrier"`
	ServiceLevel    string       `json:"service_level"`
	Risk            logiops.Risk `json:"risk"`
	RiskLabel       string       `json:"risk_label"`
	EtaPredH        *float64     `json:"eta_pred_h"`
	SLAHours        *float64     `json:"sla_hours"`
	DelayH          *float64     `json:"delay_h"`
	DelayText       string       `json:"delay_text"`
	ShipTime        string       `json:"ship_time,omitempty"`
}

// NewTile projects a record for display.
func NewTile(r logiops.DelayRecord) Tile {
	t := Tile{
		ShipmentID:      r.ShipmentID,
		Origin:          r.Origin,
		DestinationZone: r.DestinationZone,
		Carrier:         r.Carrier,
		ServiceLevel:    r.ServiceLevel,
		Risk:            r.Risk.Normalized(),
		RiskLabel:       r.Risk.Label(),
		EtaPredH:        ptr(r.EtaPredH),
		SLAHours:        ptr(r.SLAHours),
		ShipTime:        r.ShipTime(),
	}
	h, ok := DisplayDelay(r)
	if ok {
		d := DisplayHours(h)
		t.DelayH = &d
	}
	t.DelayText = FormatDelay(h, ok)
	return t
}

// View is a snapshot of the delay card.
type View struct {
	State    model.ViewState      `json:"state"`
	Error    string               `json:"error,omitempty"`
	PageSize int                  `json:"page_size"`
	Filter   Filter               `json:"filter"`
	Counts   map[logiops.Risk]int `json:"counts"`
	Loaded   int                  `json:"loaded"`
	Summary  model.DelaySummary   `json:"summary"`
	Tiles    []Tile               `json:"tiles"`
}

// View returns a consistent snapshot of the card.
func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	visible := FilterByRisk(a.items, a.filter)
	tiles := make([]Tile, 0, len(visible))
	for _, r := range visible {
		tiles = append(tiles, NewTile(r))
	}
	return View{
		State:    a.state,
		Error:    a.err,
		PageSize: a.pageSize,
		Filter:   a.filter,
		Counts:   CountByRisk(a.items),
		Loaded:   len(a.items),
		Summary:  Summarize(visible),
		Tiles:    tiles,
	}
}

// DetailView is the projection of a shipment detail.
type DetailView struct {
	ShipmentID      string              `json:"shipment_id"`
	Origin          string              `json:"origin"`
	DestinationZone string              `json:"destination_zone"`
	Carrier         string              `json:"carrier"`
	Risk            logiops.Risk        `json:"risk"`
	RiskLabel       string              `json:"risk_label"`
	EtaPredH        *float64            `json:"eta_pred_h"`
	SLAHours        *float64            `json:"sla_hours"`
	DelayH          *float64            `json:"delay_h"`
	DelayText       string              `json:"delay_text"`
	Status          string              `json:"status"`
	Raw             logiops.DelayDetail `json:"raw"`
}

// NewDetailView projects a detail payload. Status is late when the
// unfloored delay is positive.
func NewDetailView(d logiops.DelayDetail) DetailView {
	v := DetailView{
		ShipmentID:      d.ShipmentID(),
		Origin:          d.Origin(),
		DestinationZone: d.DestinationZone(),
		Carrier:         d.Carrier(),
		Risk:            d.Risk(),
		RiskLabel:       d.Risk().Label(),
		EtaPredH:        ptr(d.EtaPredH()),
		SLAHours:        ptr(d.SLAHours()),
		Status:          StatusUnknown,
		Raw:             d,
	}
	h, ok := DetailDelay(d)
	if ok {
		shown := DisplayHours(h)
		v.DelayH = &shown
		v.Status = StatusOnTime
		if h > 0 {
			v.Status = StatusLate
		}
	}
	v.DelayText = FormatDelay(h, ok)
	return v
}

func ptr(v numconv.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}
