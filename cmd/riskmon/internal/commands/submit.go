package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/epilepsywatch/riskmon/internal/monitor"
	"github.com/epilepsywatch/riskmon/internal/sensor"
)

type SubmitCmd struct {
	ConnectionFlags
	SampleFlags
}

func (s *SubmitCmd) Run(ctx context.Context, globals *Globals) error {
	ctrl, err := newController(globals, s.ConnectionFlags, &sensor.Static{Sample: s.Sample()}, monitor.Config{})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if !ctrl.State().IsLoggedIn {
		return errors.New("not logged in, run `riskmon login` first")
	}

	if err := ctrl.SubmitSample(ctx, s.Sample()); err != nil {
		state := ctrl.State()
		if !state.IsLoggedIn {
			return errors.New(state.Connection.StatusMessage)
		}
		return err
	}

	printPrediction(ctrl.State())

	return nil
}

func printPrediction(state monitor.State) {
	p := state.LastPrediction
	if p == nil {
		return
	}
	fmt.Printf("Risk:    %s (%.0f%%)\n", p.RiskLevel, p.RiskScore*100)
	fmt.Printf("Message: %s\n", p.Message)
	fmt.Printf("Updated: %s\n", p.Timestamp.Local().Format("15:04:05"))
}
