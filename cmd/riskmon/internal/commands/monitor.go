package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/epilepsywatch/riskmon/internal/monitor"
	"github.com/epilepsywatch/riskmon/internal/sensor"
)

type MonitorCmd struct {
	ConnectionFlags
	SampleFlags

	Interval time.Duration `help:"Sampling period" default:"5s"`
	Simulate bool          `help:"Jitter readings around the baseline like a wearable sensor" default:"true" negatable:""`
}

func (m *MonitorCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source monitor.SampleSource = &sensor.Static{Sample: m.Sample()}
	if m.Simulate {
		source = sensor.NewSimulator(m.Sample())
	}

	// Closed by the state callback when the session dies under us.
	expired := make(chan struct{})
	var expireOnce sync.Once

	ctrl, err := newController(globals, m.ConnectionFlags, source, monitor.Config{
		TickInterval: m.Interval,
		OnStateChange: func(state monitor.State) {
			renderState(state)
			if !state.IsLoggedIn {
				expireOnce.Do(func() { close(expired) })
			}
		},
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if !ctrl.State().IsLoggedIn {
		return errors.New("not logged in, run `riskmon login` first")
	}

	if err := ctrl.SetAutoSend(true); err != nil {
		return err
	}

	log.Info().Dur("interval", m.Interval).Msg("monitoring, press Ctrl-C to stop")

	select {
	case <-ctx.Done():
		ctrl.StopMonitoring()
		return nil
	case <-expired:
		return errors.New(monitor.StatusSessionExpired)
	}
}

func renderState(state monitor.State) {
	event := log.Info().
		Bool("connected", state.Connection.Connected).
		Str("status", state.Connection.StatusMessage)

	if p := state.LastPrediction; p != nil {
		event = event.
			Str("risk_level", p.RiskLevel).
			Float64("risk_score", p.RiskScore).
			Str("message", p.Message)
	}

	event.Msg("state")
}
