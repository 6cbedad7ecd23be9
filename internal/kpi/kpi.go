// Package kpi aggregates the header tiles shared by every dashboard: the
// server's in-progress counter plus the latest delay and anomaly summaries.
package kpi

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/logiops360/logiops-cli/internal/bus"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// DefaultActiveCarriers is the fixed "active carriers" tile value.
const DefaultActiveCarriers = 5

// Tile titles.
const (
	TitleInProgress     = "Livraisons en cours"
	TitleDelays         = "Retards (affichés)"
	TitleActiveCarriers = "Transporteurs actifs"
	TitleAnomalies      = "Anomalies détectées"
)

// Tile is one header card.
type Tile struct {
	Title string `json:"title"`
	Value string `json:"value"`
	// Alert marks a tile the dashboard highlights as bad news.
	Alert bool `json:"alert"`
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithActiveCarriers overrides the active carriers tile.
func WithActiveCarriers(n int) Option {
	return func(a *Aggregator) {
		if n >= 0 {
			a.activeCarriers = n
		}
	}
}

// Aggregator holds the latest KPI values. It owns no shipment data.
type Aggregator struct {
	client         logiops.Client
	sub            bus.Subscriber
	activeCarriers int

	mu         sync.Mutex
	token      string
	inProgress float64
	delayPct   float64
	anomalies  float64
	unsub      []func()
}

// New creates an aggregator. Nothing is fetched or subscribed until Start.
func New(client logiops.Client, sub bus.Subscriber, opts ...Option) *Aggregator {
	a := &Aggregator{
		client:         client,
		sub:            sub,
		activeCarriers: DefaultActiveCarriers,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Subscribe registers the listeners on both summary channels. Repeated
// calls are no-ops until Close.
func (a *Aggregator) Subscribe() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsub == nil && a.sub != nil {
		a.unsub = []func(){
			a.sub.Subscribe(model.ChannelDelayList, a.onDelay),
			a.sub.Subscribe(model.ChannelAnomalyList, a.onAnomaly),
		}
	}
}

// Start subscribes and fetches the counters.
func (a *Aggregator) Start(ctx context.Context, token string) {
	a.Subscribe()
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()

	a.Refresh(ctx)
}

// SetToken re-fetches the counters when the credential changed. Summaries
// are left as they are.
func (a *Aggregator) SetToken(ctx context.Context, token string) {
	a.mu.Lock()
	if a.token == token {
		a.mu.Unlock()
		return
	}
	a.token = token
	a.mu.Unlock()

	a.Refresh(ctx)
}

// Refresh fetches the in-progress counter. Failures keep the previous value.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()
	if token == "" {
		return
	}

	c, err := a.client.KPICounters(ctx, token)
	if err != nil {
		zap.L().Debug("kpi: counters fetch failed", zap.Error(err))
		return
	}

	a.mu.Lock()
	a.inProgress = c.InProgress.OrZero()
	a.mu.Unlock()
}

// Close removes both listeners. In-flight fetches are not aborted.
func (a *Aggregator) Close() {
	a.mu.Lock()
	unsub := a.unsub
	a.unsub = nil
	a.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
}

func (a *Aggregator) onDelay(payload any) {
	pct := delayPercentFromPayload(payload)
	a.mu.Lock()
	a.delayPct = pct
	a.mu.Unlock()
}

func (a *Aggregator) onAnomaly(payload any) {
	n := anomalyCountFromPayload(payload)
	a.mu.Lock()
	a.anomalies = n
	a.mu.Unlock()
}

// DelayPercent is late/total as a percentage, 0 when total is 0.
func DelayPercent(s model.DelaySummary) float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Late) / float64(s.Total) * 100
}

// AnomalyCount returns the shipment total, else the event total, else the
// legacy flat total, else 0.
func AnomalyCount(s model.AnomalySummary) int {
	switch {
	case s.Shipments != nil:
		return s.Shipments.Total
	case s.Events != nil:
		return s.Events.Total
	case s.Total != nil:
		return *s.Total
	}
	return 0
}

// AnomalyCountMap applies the AnomalyCount fallback chain to a decoded JSON
// payload, skipping any level that is not a finite number.
func AnomalyCountMap(m map[string]any) float64 {
	if v, ok := numconv.Coerce(nested(m, "shipments", "total")); ok {
		return v
	}
	if v, ok := numconv.Coerce(nested(m, "events", "total")); ok {
		return v
	}
	if v, ok := numconv.Coerce(m["total"]); ok {
		return v
	}
	return 0
}

func nested(m map[string]any, outer, key string) any {
	inner, ok := m[outer].(map[string]any)
	if !ok {
		return nil
	}
	return inner[key]
}

func delayPercentFromPayload(payload any) float64 {
	switch p := payload.(type) {
	case model.DelaySummary:
		return DelayPercent(p)
	case *model.DelaySummary:
		if p != nil {
			return DelayPercent(*p)
		}
	case map[string]any:
		total := numconv.OrZero(p["total"])
		if total > 0 {
			return numconv.OrZero(p["late"]) / total * 100
		}
	}
	return 0
}

func anomalyCountFromPayload(payload any) float64 {
	switch p := payload.(type) {
	case model.AnomalySummary:
		return float64(AnomalyCount(p))
	case *model.AnomalySummary:
		if p != nil {
			return float64(AnomalyCount(*p))
		}
	case map[string]any:
		return AnomalyCountMap(p)
	}
	return 0
}

// Snapshot is the current KPI state.
type Snapshot struct {
	InProgress     float64 `json:"in_progress"`
	DelayPercent   float64 `json:"delay_percent"`
	ActiveCarriers int     `json:"active_carriers"`
	Anomalies      float64 `json:"anomalies"`
	Tiles          []Tile  `json:"tiles"`
}

// Snapshot returns the current values and their tiles.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Snapshot{
		InProgress:     a.inProgress,
		DelayPercent:   a.delayPct,
		ActiveCarriers: a.activeCarriers,
		Anomalies:      a.anomalies,
	}
	s.Tiles = []Tile{
		{Title: TitleInProgress, Value: formatCount(s.InProgress)},
		{Title: TitleDelays, Value: FormatPercent(s.DelayPercent), Alert: s.DelayPercent > 0},
		{Title: TitleActiveCarriers, Value: strconv.Itoa(s.ActiveCarriers)},
		{Title: TitleAnomalies, Value: formatCount(s.Anomalies), Alert: s.Anomalies > 0},
	}
	return s
}

// Tiles returns the four header tiles in display order.
func (a *Aggregator) Tiles() []Tile {
	return a.Snapshot().Tiles
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
