// Package anomaly groups P90 anomaly events by shipment and maintains the
// severity and count-bucket filters of the anomaly card.
package anomaly

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// SeverityFilter selects a severity band, or SeverityAll.
type SeverityFilter string

// SeverityAll disables severity filtering.
const SeverityAll SeverityFilter = "all"

// ParseSeverity validates a severity filter.
func ParseSeverity(s string) (SeverityFilter, error) {
	if s == "" || SeverityFilter(s) == SeverityAll {
		return SeverityAll, nil
	}
	if !slices.Contains(logiops.Severities, logiops.Severity(s)) {
		return "", eris.Errorf("anomaly: unknown severity filter %q", s)
	}
	return SeverityFilter(s), nil
}

// ParseBucket validates a count-bucket filter.
func ParseBucket(s string) (string, error) {
	if s == "" || s == model.BucketsAll {
		return model.BucketsAll, nil
	}
	if !slices.Contains(model.Buckets, s) {
		return "", eris.Errorf("anomaly: unknown count bucket %q", s)
	}
	return s, nil
}

// Group is every anomalous event of one shipment.
type Group struct {
	ShipmentID   string `json:"shipment_id"`
	Count        int    `json:"anomaly_count"`
	FirstEventID int64  `json:"first_event_id"`
	// MaxRetardH is the largest duration overrun above P90, floored at zero.
	MaxRetardH float64              `json:"max_retard_h"`
	Sample     logiops.AnomalyEvent `json:"sample"`
}

// Title is the tile heading.
func (g Group) Title() string {
	if g.Count > 1 {
		return fmt.Sprintf("Anomalies sur %d phases", g.Count)
	}
	return fmt.Sprintf("Anomalies sur %d phase", g.Count)
}

// Bucket returns the histogram bucket of the group.
func (g Group) Bucket() string {
	if g.Count >= 5 {
		return model.Bucket5Up
	}
	return fmt.Sprintf("%d", g.Count)
}

// Retard returns max(0, duration - p90), treating missing inputs as zero.
func Retard(e logiops.AnomalyEvent) float64 {
	return math.Max(0, e.DurationH.OrZero()-e.P90DurationH.OrZero())
}

// FilterSeverity keeps the events of the selected band, in order.
func FilterSeverity(events []logiops.AnomalyEvent, sev SeverityFilter) []logiops.AnomalyEvent {
	if sev == SeverityAll || sev == "" {
		out := make([]logiops.AnomalyEvent, len(events))
		copy(out, events)
		return out
	}
	out := make([]logiops.AnomalyEvent, 0, len(events))
	for _, e := range events {
		if e.Severity == logiops.Severity(sev) {
			out = append(out, e)
		}
	}
	return out
}

// GroupByShipment folds events into one group per shipment, in arrival
// order, then sorts by count and max retard, both descending.
func GroupByShipment(events []logiops.AnomalyEvent) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, e := range events {
		r := Retard(e)
		if i, ok := index[e.ShipmentID]; ok {
			groups[i].Count++
			groups[i].MaxRetardH = math.Max(groups[i].MaxRetardH, r)
			continue
		}
		index[e.ShipmentID] = len(groups)
		groups = append(groups, Group{
			ShipmentID:   e.ShipmentID,
			Count:        1,
			FirstEventID: e.EventID,
			MaxRetardH:   r,
			Sample:       e,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].MaxRetardH > groups[j].MaxRetardH
	})
	return groups
}

// FilterCount keeps the groups in bucket. "5+" matches five or more.
func FilterCount(groups []Group, bucket string) []Group {
	if bucket == model.BucketsAll || bucket == "" {
		out := make([]Group, len(groups))
		copy(out, groups)
		return out
	}
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Bucket() == bucket {
			out = append(out, g)
		}
	}
	return out
}

// Histogram counts groups per bucket. Every bucket is present.
func Histogram(groups []Group) map[string]int {
	h := make(map[string]int, len(model.Buckets))
	for _, b := range model.Buckets {
		h[b] = 0
	}
	for _, g := range groups {
		h[g.Bucket()]++
	}
	return h
}

// SeverityCounts counts events per filterable band over the unfiltered list.
func SeverityCounts(events []logiops.AnomalyEvent) map[logiops.Severity]int {
	c := make(map[logiops.Severity]int, len(logiops.Severities))
	for _, s := range logiops.Severities {
		c[s] = 0
	}
	for _, e := range events {
		if _, ok := c[e.Severity]; ok {
			c[e.Severity]++
		}
	}
	return c
}

// Summarize builds the broadcast payload from the severity-filtered events
// and their groups, before any count-bucket filter.
func Summarize(filtered []logiops.AnomalyEvent, groups []Group) model.AnomalySummary {
	return model.AnomalySummary{
		Shipments: &model.ShipmentStats{
			Total:   len(groups),
			ByCount: Histogram(groups),
		},
		Events: &model.EventStats{Total: len(filtered)},
	}
}
