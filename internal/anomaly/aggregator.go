package anomaly

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/logiops360/logiops-cli/internal/bus"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

const (
	// DefaultPageSize is the initial number of events fetched.
	DefaultPageSize = logiops.DefaultAnomalyLimit
	// PageIncrement is how much Expand grows the page size.
	PageIncrement = 20
)

// ErrUnknownShipment is returned when a detail is requested for a shipment
// that is not in the held list.
var ErrUnknownShipment = eris.New("anomaly: shipment not in current list")

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

// WithIncrement sets how much Expand grows the page size.
func WithIncrement(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.increment = n
		}
	}
}

// WithToken sets the initial bearer token without fetching.
func WithToken(token string) Option {
	return func(a *Aggregator) {
		a.token = token
	}
}

// Aggregator owns the fetched anomaly events and the derived groups. It
// broadcasts a summary whenever the severity-filtered groups change; the
// count-bucket filter only affects the visible tiles. Listeners must not
// call back into mutating methods.
type Aggregator struct {
	client logiops.Client
	pub    bus.Publisher

	pubMu sync.Mutex

	mu        sync.Mutex
	token     string
	pageSize  int
	increment int
	events    []logiops.AnomalyEvent
	severity  SeverityFilter
	bucket    string
	state     model.ViewState
	err       string
	gen       uint64
	detail    *Detail
	detailErr string
}

// New creates an idle aggregator. pub may be nil.
func New(client logiops.Client, pub bus.Publisher, opts ...Option) *Aggregator {
	a := &Aggregator{
		client:    client,
		pub:       pub,
		pageSize:  DefaultPageSize,
		increment: PageIncrement,
		severity:  SeverityAll,
		bucket:    model.BucketsAll,
		state:     model.StateIdle,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Load fetches up to the current page size and replaces the held events.
func (a *Aggregator) Load(ctx context.Context) error {
	a.mu.Lock()
	if a.token == "" {
		a.mu.Unlock()
		return nil
	}
	a.gen++
	gen := a.gen
	token, limit := a.token, a.pageSize
	a.state = model.StateLoading
	a.err = ""
	a.mu.Unlock()

	committed := false
	defer func() {
		if committed {
			return
		}
		a.mu.Lock()
		if a.gen == gen && a.state == model.StateLoading {
			a.state = model.StateIdle
		}
		a.mu.Unlock()
	}()

	resp, err := a.client.AnomalyList(ctx, token, limit)

	a.pubMu.Lock()
	defer a.pubMu.Unlock()

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		zap.L().Debug("anomaly: discarding superseded load", zap.Uint64("generation", gen))
		return eris.Wrap(err, "anomaly: load")
	}
	committed = true
	if err != nil {
		a.state = model.StateFailed
		a.err = logiops.UserMessage(err)
		a.mu.Unlock()
		zap.L().Warn("anomaly: load failed", zap.Int("limit", limit), zap.Error(err))
		return eris.Wrap(err, "anomaly: load")
	}
	a.events = resp.Items
	if a.events == nil {
		a.events = []logiops.AnomalyEvent{}
	}
	a.state = model.StateLoaded
	summary := a.summaryLocked()
	a.mu.Unlock()

	zap.L().Debug("anomaly: loaded",
		zap.Int("limit", limit),
		zap.Int("events", len(resp.Items)),
		zap.Int("shipments", summary.Shipments.Total),
	)
	a.publish(summary)

	a.mu.Lock()
	if a.gen == gen && a.state == model.StateLoaded {
		a.state = model.StateIdle
	}
	a.mu.Unlock()
	return nil
}

// Refresh reloads with the current page size.
func (a *Aggregator) Refresh(ctx context.Context) error {
	return a.Load(ctx)
}

// Expand grows the page size by the increment and reloads.
func (a *Aggregator) Expand(ctx context.Context) error {
	a.mu.Lock()
	a.pageSize += a.increment
	a.mu.Unlock()
	return a.Load(ctx)
}

// SetToken replaces the credential and reloads when it changed.
func (a *Aggregator) SetToken(ctx context.Context, token string) error {
	a.mu.Lock()
	if a.token == token {
		a.mu.Unlock()
		return nil
	}
	a.token = token
	a.mu.Unlock()
	return a.Load(ctx)
}

// SetSeverity changes the severity filter and rebroadcasts when it changed.
func (a *Aggregator) SetSeverity(sev SeverityFilter) error {
	sev, err := ParseSeverity(string(sev))
	if err != nil {
		return err
	}

	a.pubMu.Lock()
	defer a.pubMu.Unlock()

	a.mu.Lock()
	if a.severity == sev {
		a.mu.Unlock()
		return nil
	}
	a.severity = sev
	summary := a.summaryLocked()
	a.mu.Unlock()

	a.publish(summary)
	return nil
}

// SetCountBucket changes the count-bucket filter. It does not broadcast.
func (a *Aggregator) SetCountBucket(bucket string) error {
	bucket, err := ParseBucket(bucket)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.bucket = bucket
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) summaryLocked() model.AnomalySummary {
	filtered := FilterSeverity(a.events, a.severity)
	return Summarize(filtered, GroupByShipment(filtered))
}

func (a *Aggregator) publish(s model.AnomalySummary) {
	if a.pub != nil {
		a.pub.Publish(model.ChannelAnomalyList, s)
	}
}

// Detail fetches the phases of g's shipment, targeting its first event.
// A failure is recorded separately and leaves the list untouched.
func (a *Aggregator) Detail(ctx context.Context, g Group) (*Detail, error) {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()

	raw, err := a.client.AnomalyDetail(ctx, token, g.ShipmentID, g.FirstEventID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.detailErr = logiops.UserMessage(err)
		return nil, eris.Wrapf(err, "anomaly: detail %s", g.ShipmentID)
	}
	d := NewDetail(raw, g.FirstEventID)
	a.detail = d
	a.detailErr = ""
	return d, nil
}

// DetailFor looks up the shipment's group in the held list and fetches its
// detail.
func (a *Aggregator) DetailFor(ctx context.Context, shipmentID string) (*Detail, error) {
	for _, g := range a.Groups() {
		if g.ShipmentID == shipmentID {
			return a.Detail(ctx, g)
		}
	}
	return nil, eris.Wrapf(ErrUnknownShipment, "anomaly: detail %s", shipmentID)
}

// State returns the fetch lifecycle state.
func (a *Aggregator) State() model.ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the last load error message, or "".
func (a *Aggregator) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// DetailErr returns the last detail error message, or "".
func (a *Aggregator) DetailErr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detailErr
}

// PageSize returns the current page size.
func (a *Aggregator) PageSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pageSize
}

// Events returns a copy of the held events.
func (a *Aggregator) Events() []logiops.AnomalyEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return FilterSeverity(a.events, SeverityAll)
}

// Groups returns the severity-filtered groups before the bucket filter.
func (a *Aggregator) Groups() []Group {
	a.mu.Lock()
	defer a.mu.Unlock()
	return GroupByShipment(FilterSeverity(a.events, a.severity))
}

// Visible returns the groups after both filters.
func (a *Aggregator) Visible() []Group {
	a.mu.Lock()
	defer a.mu.Unlock()
	return FilterCount(GroupByShipment(FilterSeverity(a.events, a.severity)), a.bucket)
}

// Summary returns what the last broadcast carried for the current filters.
func (a *Aggregator) Summary() model.AnomalySummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summaryLocked()
}

// View is a snapshot of the anomaly card.
type View struct {
	State          model.ViewState          `json:"state"`
	Error          string                   `json:"error,omitempty"`
	PageSize       int                      `json:"page_size"`
	Severity       SeverityFilter           `json:"severity"`
	Bucket         string                   `json:"bucket"`
	Loaded         int                      `json:"loaded"`
	SeverityCounts map[logiops.Severity]int `json:"severity_counts"`
	Summary        model.AnomalySummary     `json:"summary"`
	Groups         []Group                  `json:"groups"`
}

// View returns a consistent snapshot of the card.
func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	filtered := FilterSeverity(a.events, a.severity)
	groups := GroupByShipment(filtered)
	return View{
		State:          a.state,
		Error:          a.err,
		PageSize:       a.pageSize,
		Severity:       a.severity,
		Bucket:         a.bucket,
		Loaded:         len(a.events),
		SeverityCounts: SeverityCounts(a.events),
		Summary:        Summarize(filtered, groups),
		Groups:         FilterCount(groups, a.bucket),
	}
}

// LastDetail returns the most recently fetched detail, or nil.
func (a *Aggregator) LastDetail() *Detail {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detail
}
