package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/logiops360/logiops-cli/internal/bus"
	"github.com/logiops360/logiops-cli/internal/config"
	"github.com/logiops360/logiops-cli/internal/dashboard"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/session"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// appEnv holds the store, client, and dashboard needed by every command.
type appEnv struct {
	Store    session.Store
	Client   logiops.Client
	Sessions *session.Manager
	Bus      *bus.Bus
	Board    *dashboard.Board

	forwarder *bus.KafkaForwarder
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Board != nil {
		e.Board.Close()
	}
	if e.forwarder != nil {
		if err := e.forwarder.Close(); err != nil {
			zap.L().Warn("close kafka forwarder", zap.Error(err))
		}
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the config for mode, opens the session store, and wires
// the dashboard with the persisted token. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := session.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open session store")
	}

	env := &appEnv{
		Store:  st,
		Client: newClient(cfg.API),
		Bus:    bus.New(),
	}
	env.Sessions = session.NewManager(st, env.Client)

	if k := cfg.Broadcast.Kafka; len(k.Brokers) > 0 {
		env.forwarder = bus.NewKafkaForwarder(bus.NewKafkaWriter(k.Brokers, k.Topic))
		env.forwarder.Attach(env.Bus, model.ChannelDelayList, model.ChannelAnomalyList)
		zap.L().Info("kafka forwarding enabled",
			zap.Strings("brokers", k.Brokers),
			zap.String("topic", k.Topic),
		)
	}

	d := cfg.Dashboard
	env.Board = dashboard.New(env.Client, env.Bus, env.Sessions.Token(ctx), dashboard.Settings{
		DelayPageSize:    d.DelayPageSize,
		AnomalyPageSize:  d.AnomalyPageSize,
		PageIncrement:    d.PageIncrement,
		ActiveCarriers:   d.ActiveCarriers,
		ETAShipmentLimit: d.ETAShipmentLimit,
	})
	return env, nil
}

func newClient(c config.APIConfig) logiops.Client {
	opts := []logiops.Option{
		logiops.WithBaseURL(c.BaseURL),
		logiops.WithHTTPClient(&http.Client{Timeout: time.Duration(c.TimeoutSecs) * time.Second}),
	}
	if c.RatePerSec > 0 {
		burst := c.Burst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, logiops.WithRateLimit(rate.Limit(c.RatePerSec), burst))
	}
	return logiops.NewClient(opts...)
}

// requireSession fails when no token is persisted.
func requireSession(env *appEnv) error {
	if env.Board.Token() == "" {
		return eris.Wrap(session.ErrNoSession, "run `logiops login` first")
	}
	return nil
}
