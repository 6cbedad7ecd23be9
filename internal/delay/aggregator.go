package delay

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
	// DefaultPageSize is the initial number of records fetched.
	DefaultPageSize = logiops.DefaultDelayLimit
	// PageIncrement is how much Expand grows the page size.
	PageIncrement = 20
)

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

// Aggregator owns the fetched delay list and its filtered view. It is safe
// for concurrent use; only the most recent fetch commits its result.
// Listeners run while the broadcast lock is held and must not call Load,
// Expand, SetToken or SetFilter on the same Aggregator.
type Aggregator struct {
	client logiops.Client
	pub    bus.Publisher

	// pubMu orders broadcasts so listeners see summaries in commit order.
	pubMu sync.Mutex

	mu        sync.Mutex
	token     string
	pageSize  int
	increment int
	items     []logiops.DelayRecord
	filter    Filter
	state     model.ViewState
	err       string
	gen       uint64
	detail    logiops.DelayDetail
	detailErr string
}

// New creates an idle aggregator. pub may be nil.
func New(client logiops.Client, pub bus.Publisher, opts ...Option) *Aggregator {
	a := &Aggregator{
		client:    client,
		pub:       pub,
		pageSize:  DefaultPageSize,
		increment: PageIncrement,
		filter:    FilterAll,
		state:     model.StateIdle,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Load fetches up to the current page size and replaces the held list. On
// failure the previous list is kept and the error message recorded. A load
// superseded by a newer one is discarded.
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

	resp, err := a.client.DelayList(ctx, token, limit)

	a.pubMu.Lock()
	defer a.pubMu.Unlock()

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		zap.L().Debug("delay: discarding superseded load", zap.Uint64("generation", gen))
		return eris.Wrap(err, "delay: load")
	}
	committed = true
	if err != nil {
		a.state = model.StateFailed
		a.err = logiops.UserMessage(err)
		a.mu.Unlock()
		zap.L().Warn("delay: load failed", zap.Int("limit", limit), zap.Error(err))
		return eris.Wrap(err, "delay: load")
	}
	a.items = resp.Items
	if a.items == nil {
		a.items = []logiops.DelayRecord{}
	}
	a.state = model.StateLoaded
	summary := Summarize(FilterByRisk(a.items, a.filter))
	a.mu.Unlock()

	zap.L().Debug("delay: loaded",
		zap.Int("limit", limit),
		zap.Int("items", len(resp.Items)),
		zap.Int("visible", summary.Total),
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

// SetFilter changes the visible band without refetching. The summary is
// broadcast when the filter actually changes.
func (a *Aggregator) SetFilter(f Filter) error {
	if _, err := ParseFilter(string(f)); err != nil {
		return err
	}
	if f == "" {
		f = FilterAll
	}

	a.pubMu.Lock()
	defer a.pubMu.Unlock()

	a.mu.Lock()
	if a.filter == f {
		a.mu.Unlock()
		return nil
	}
	a.filter = f
	summary := Summarize(FilterByRisk(a.items, f))
	a.mu.Unlock()

	a.publish(summary)
	return nil
}

func (a *Aggregator) publish(s model.DelaySummary) {
	if a.pub != nil {
		a.pub.Publish(model.ChannelDelayList, s)
	}
}

// Detail fetches one shipment's detail. A failure is recorded separately
// and leaves the list untouched.
func (a *Aggregator) Detail(ctx context.Context, shipmentID string) (logiops.DelayDetail, error) {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()

	d, err := a.client.DelayDetail(ctx, token, shipmentID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.detailErr = logiops.UserMessage(err)
		return nil, eris.Wrapf(err, "delay: detail %s", shipmentID)
	}
	a.detail = d
	a.detailErr = ""
	return d, nil
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

// Filter returns the current filter.
func (a *Aggregator) Filter() Filter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter
}

// Items returns a copy of the held list.
func (a *Aggregator) Items() []logiops.DelayRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return FilterByRisk(a.items, FilterAll)
}

// Filtered returns the visible records.
func (a *Aggregator) Filtered() []logiops.DelayRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return FilterByRisk(a.items, a.filter)
}

// Counts returns per-band counts over the unfiltered list.
func (a *Aggregator) Counts() map[logiops.Risk]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return CountByRisk(a.items)
}

// Summary returns the summary of the visible list.
func (a *Aggregator) Summary() model.DelaySummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Summarize(FilterByRisk(a.items, a.filter))
}
