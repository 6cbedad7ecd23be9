package anomaly

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// Phase is one phase row of the detail table.
type Phase struct {
	EventID      int64    `json:"event_id"`
	Phase        string   `json:"phase"`
	DurationH    *float64 `json:"duration_h"`
	P50DurationH *float64 `json:"p50_duration_h"`
	P90DurationH *float64 `json:"p90_duration_h"`
	// Anomalous is duration > p90 with both present; the server flag is ignored.
	Anomalous bool `json:"anomalous"`
	Selected  bool `json:"selected"`
}

// Detail is the phase-level view of one shipment.
type Detail struct {
	ShipmentID      string  `json:"shipment_id"`
	Carrier         string  `json:"carrier"`
	Origin          string  `json:"origin"`
	DestinationZone string  `json:"destination_zone"`
	SelectedEventID int64   `json:"selected_event_id"`
	Phases          []Phase `json:"phases"`
	AnomalousCount  int     `json:"anomalous_count"`
	Email           Email   `json:"email"`

	raw *logiops.AnomalyDetail
}

// IsAnomalous reports whether a phase exceeds its P90 duration.
func IsAnomalous(p logiops.PhaseRecord) bool {
	d, okD := p.DurationH.Float()
	p90, okP := p.P90DurationH.Float()
	return okD && okP && d > p90
}

// NewDetail projects a detail payload, recomputing each phase's flag.
func NewDetail(d *logiops.AnomalyDetail, selectedEventID int64) *Detail {
	out := &Detail{
		ShipmentID:      d.ShipmentID,
		Carrier:         d.Carrier,
		Origin:          d.Origin,
		DestinationZone: d.DestinationZone,
		SelectedEventID: selectedEventID,
		Phases:          make([]Phase, 0, len(d.Phases)),
		raw:             d,
	}
	for _, p := range d.Phases {
		ph := Phase{
			EventID:      p.EventID,
			Phase:        p.Phase,
			DurationH:    ptr(p.DurationH),
			P50DurationH: ptr(p.P50DurationH),
			P90DurationH: ptr(p.P90DurationH),
			Anomalous:    IsAnomalous(p),
			Selected:     p.EventID == selectedEventID,
		}
		if ph.Anomalous {
			out.AnomalousCount++
		}
		out.Phases = append(out.Phases, ph)
	}
	out.Email = CarrierEmail(d)
	return out
}

// Raw returns the payload the detail was built from.
func (d *Detail) Raw() *logiops.AnomalyDetail {
	return d.raw
}

// Email is the draft sent to a carrier about P90 overruns.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CarrierEmail drafts the "contact the carrier" message for a detail.
func CarrierEmail(d *logiops.AnomalyDetail) Email {
	carrier := d.Carrier
	if carrier == "" {
		carrier = "Transporteur"
	}
	lines := []string{
		fmt.Sprintf("Bonjour %s,", carrier),
		"",
		fmt.Sprintf("Nous constatons une ou plusieurs phases au-delà du P90 pour le shipment %s.", d.ShipmentID),
		fmt.Sprintf("Origine: %s  =>  Destination: %s", d.Origin, d.DestinationZone),
		"",
		"Détails (event_id | phase | durée h | P90 h):",
	}
	for _, p := range d.Phases {
		lines = append(lines, fmt.Sprintf("- #%d | %s | %.2f | %.2f",
			p.EventID, p.Phase, p.DurationH.OrZero(), p.P90DurationH.OrZero()))
	}
	lines = append(lines,
		"",
		"Merci de votre retour et des actions correctives proposées.",
		"",
		"Cordialement,",
		"LogiOps360",
	)
	return Email{
		Subject: fmt.Sprintf("Anomalie phases - Shipment %s - %s", d.ShipmentID, d.Carrier),
		Body:    strings.Join(lines, "\n"),
	}
}

// MailtoURL returns the draft as a mailto link with no recipient.
func (e Email) MailtoURL() string {
	return "mailto:?subject=" + escape(e.Subject) + "&body=" + escape(e.Body)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func ptr(v numconv.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}
