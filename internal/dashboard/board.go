// Package dashboard composes the aggregators into the per-profile views.
package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/logiops360/logiops-cli/internal/anomaly"
	"github.com/logiops360/logiops-cli/internal/bus"
	"github.com/logiops360/logiops-cli/internal/delay"
	"github.com/logiops360/logiops-cli/internal/kpi"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/predict"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// Card identifies one dashboard card.
type Card string

const (
	CardKPI     Card = "kpi"
	CardDelay   Card = "delay"
	CardCarrier Card = "carrier"
	CardETA     Card = "eta"
	CardAnomaly Card = "anomaly"
)

var layouts = map[model.Profile][]Card{
	model.ProfileTransport:  {CardKPI, CardDelay, CardCarrier, CardETA, CardAnomaly},
	model.ProfileSupervisor: {CardKPI, CardDelay, CardAnomaly},
	model.ProfileOrders:     {CardKPI},
	model.ProfileStorage:    {CardKPI},
}

// Cards returns the cards a profile's view hosts, in display order.
func Cards(p model.Profile) []Card {
	return append([]Card(nil), layouts[p]...)
}

// Settings sizes the cards. Zero values keep each card's default.
type Settings struct {
	DelayPageSize    int
	AnomalyPageSize  int
	PageIncrement    int
	ActiveCarriers   int
	ETAShipmentLimit int
}

// Board holds one instance of every card, wired to a shared bus.
type Board struct {
	Delay   *delay.Aggregator
	Anomaly *anomaly.Aggregator
	KPI     *kpi.Aggregator
	ETA     *predict.ETAService
	Carrier *predict.CarrierService

	mu    sync.Mutex
	token string
}

// New wires the cards. b carries the summaries from the list cards to the
// KPI tiles.
func New(client logiops.Client, b *bus.Bus, token string, s Settings) *Board {
	kpiOpts := []kpi.Option{}
	if s.ActiveCarriers > 0 {
		kpiOpts = append(kpiOpts, kpi.WithActiveCarriers(s.ActiveCarriers))
	}
	board := &Board{
		Delay: delay.New(client, b,
			delay.WithToken(token),
			delay.WithPageSize(s.DelayPageSize),
			delay.WithIncrement(s.PageIncrement),
		),
		Anomaly: anomaly.New(client, b,
			anomaly.WithToken(token),
			anomaly.WithPageSize(s.AnomalyPageSize),
			anomaly.WithIncrement(s.PageIncrement),
		),
		KPI:     kpi.New(client, b, kpiOpts...),
		ETA:     predict.NewETAService(client, predict.WithShipmentLimit(s.ETAShipmentLimit)),
		Carrier: predict.NewCarrierService(client),
		token:   token,
	}
	board.KPI.Subscribe()
	return board
}

// Token returns the credential the board fetches with.
func (b *Board) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// SetToken hands a new credential to every card. Cards that hold data
// reload; errors are logged, not returned.
func (b *Board) SetToken(ctx context.Context, token string) {
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		b.KPI.SetToken(ctx, token)
		return nil
	})
	g.Go(func() error {
		if err := b.Delay.SetToken(ctx, token); err != nil {
			zap.L().Warn("dashboard: delay reload failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := b.Anomaly.SetToken(ctx, token); err != nil {
			zap.L().Warn("dashboard: anomaly reload failed", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()
}

// Close detaches the KPI listeners.
func (b *Board) Close() {
	b.KPI.Close()
}

// View is one profile's dashboard.
type View struct {
	Profile model.Profile           `json:"profile"`
	Label   string                  `json:"label"`
	Cards   []Card                  `json:"cards"`
	KPI     *kpi.Snapshot           `json:"kpi,omitempty"`
	Delay   *delay.View             `json:"delay,omitempty"`
	Anomaly *anomaly.View           `json:"anomaly,omitempty"`
	ETA     *predict.ETAOptions     `json:"eta,omitempty"`
	Carrier *predict.CarrierOptions `json:"carrier,omitempty"`
	// Errors holds the user message of each card that failed to load.
	Errors map[Card]string `json:"errors,omitempty"`
}

// Load fetches every card of the profile concurrently and returns the
// view. A failing card is reported in View.Errors without stopping the
// others.
func (b *Board) Load(ctx context.Context, profile string) (*View, error) {
	p, err := model.ParseProfile(profile)
	if err != nil {
		return nil, err
	}
	token := b.Token()
	cards := Cards(p)

	var (
		mu      sync.Mutex
		errs    = map[Card]string{}
		eta     *predict.ETAOptions
		carrier *predict.CarrierOptions
	)
	fail := func(c Card, err error) {
		zap.L().Warn("dashboard: card load failed", zap.String("card", string(c)), zap.Error(err))
		mu.Lock()
		errs[c] = logiops.UserMessage(err)
		mu.Unlock()
	}

	var g errgroup.Group
	for _, c := range cards {
		switch c {
		case CardKPI:
			g.Go(func() error {
				b.KPI.Start(ctx, token)
				return nil
			})
		case CardDelay:
			g.Go(func() error {
				if err := b.Delay.Load(ctx); err != nil {
					fail(c, err)
				}
				return nil
			})
		case CardAnomaly:
			g.Go(func() error {
				if err := b.Anomaly.Load(ctx); err != nil {
					fail(c, err)
				}
				return nil
			})
		case CardETA:
			g.Go(func() error {
				opts, err := b.ETA.Options(ctx, token)
				if err != nil {
					fail(c, err)
					return nil
				}
				mu.Lock()
				eta = opts
				mu.Unlock()
				return nil
			})
		case CardCarrier:
			g.Go(func() error {
				opts, err := b.Carrier.Options(ctx, token)
				if err != nil {
					fail(c, err)
					return nil
				}
				mu.Lock()
				carrier = opts
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	v := b.snapshot(p, cards)
	v.ETA = eta
	v.Carrier = carrier
	if len(errs) > 0 {
		v.Errors = errs
	}
	return v, nil
}

// Snapshot returns the profile's view from the held state without fetching.
// Form options are omitted.
func (b *Board) Snapshot(profile string) (*View, error) {
	p, err := model.ParseProfile(profile)
	if err != nil {
		return nil, err
	}
	return b.snapshot(p, Cards(p)), nil
}

func (b *Board) snapshot(p model.Profile, cards []Card) *View {
	v := &View{Profile: p, Label: p.Label(), Cards: cards}
	for _, c := range cards {
		switch c {
		case CardKPI:
			s := b.KPI.Snapshot()
			v.KPI = &s
		case CardDelay:
			d := b.Delay.View()
			v.Delay = &d
		case CardAnomaly:
			a := b.Anomaly.View()
			v.Anomaly = &a
		}
	}
	return v
}
