// Package delay aggregates the delay-risk list: per-band counts, the
// band filter, display delays, and the summary broadcast to the KPI tiles.
package delay

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// Filter selects which band is visible. FilterAll shows every record.
type Filter string

// FilterAll disables band filtering.
const FilterAll Filter = "all"

// ParseFilter validates a filter value.
func ParseFilter(s string) (Filter, error) {
	if s == "" || Filter(s) == FilterAll {
		return FilterAll, nil
	}
	if !logiops.Risk(s).Valid() {
		return "", eris.Errorf("delay: unknown risk filter %q", s)
	}
	return Filter(s), nil
}

// Label returns the filter button label.
func (f Filter) Label() string {
	if f == FilterAll {
		return "Tous"
	}
	return logiops.Risk(f).Label()
}

// CountByRisk counts records per band. Every band is present in the result.
func CountByRisk(items []logiops.DelayRecord) map[logiops.Risk]int {
	counts := make(map[logiops.Risk]int, len(logiops.Risks))
	for _, r := range logiops.Risks {
		counts[r] = 0
	}
	for _, it := range items {
		counts[it.Risk.Normalized()]++
	}
	return counts
}

// FilterByRisk returns the records matching f, in order.
func FilterByRisk(items []logiops.DelayRecord, f Filter) []logiops.DelayRecord {
	if f == FilterAll || f == "" {
		out := make([]logiops.DelayRecord, len(items))
		copy(out, items)
		return out
	}
	out := make([]logiops.DelayRecord, 0, len(items))
	for _, it := range items {
		if it.Risk.Normalized() == logiops.Risk(f) {
			out = append(out, it)
		}
	}
	return out
}

// Summarize builds the broadcast payload for a visible list.
func Summarize(visible []logiops.DelayRecord) model.DelaySummary {
	s := model.DelaySummary{Total: len(visible)}
	for _, it := range visible {
		if it.Risk.Normalized().IsLate() {
			s.Late++
		}
	}
	return s
}

// EstimateDelay returns delta when present, else eta - sla when both are
// present. The result is not floored.
func EstimateDelay(eta, sla, delta numconv.Value) (float64, bool) {
	if d, ok := delta.Float(); ok {
		return d, true
	}
	e, okE := eta.Float()
	s, okS := sla.Float()
	if okE && okS {
		return e - s, true
	}
	return 0, false
}

// DisplayDelay estimates the delay of a list record.
func DisplayDelay(r logiops.DelayRecord) (float64, bool) {
	return EstimateDelay(r.EtaPredH, r.SLAHours, r.DeltaH)
}

// DetailDelay estimates the delay of a detail payload.
func DetailDelay(d logiops.DelayDetail) (float64, bool) {
	return EstimateDelay(d.EtaPredH(), d.SLAHours(), d.DeltaH())
}

// DisplayHours floors a delay at zero for display.
func DisplayHours(h float64) float64 {
	return math.Max(0, h)
}

// FormatDelay renders a delay estimate the way the tiles show it.
func FormatDelay(h float64, ok bool) string {
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.2f h", DisplayHours(h))
}
