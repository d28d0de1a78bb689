// Package commands implements the monitoring CLI. Each command is a thin
// view shell: it builds the session controller, forwards the user's
// intent, and renders the resulting state.
package commands

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/epilepsywatch/riskmon/internal/api"
	"github.com/epilepsywatch/riskmon/internal/client"
	"github.com/epilepsywatch/riskmon/internal/credentials"
	"github.com/epilepsywatch/riskmon/internal/logger"
	"github.com/epilepsywatch/riskmon/internal/monitor"
)

type Globals struct {
	Debug   bool
	Version string
}

// ConnectionFlags are shared by every command that talks to the service.
type ConnectionFlags struct {
	Server  string `help:"Prediction service URL" env:"RISKMON_SERVER" default:"http://localhost:8000"`
	DataDir string `help:"Session storage directory (defaults to ~/.riskmon)" env:"RISKMON_DATA_DIR"`
}

// SampleFlags carry the form values for a sample, defaulting to the
// reference dashboard's initial form.
type SampleFlags struct {
	HRV             float64 `help:"Heart rate variability (ms)" default:"50.5"`
	HeartRate       int     `help:"Heart rate (bpm)" default:"75"`
	Movement        float64 `help:"Movement/activity level" default:"120.0"`
	SleepHours      float64 `help:"Hours of sleep in the last 24h" default:"7.5"`
	MedicationTaken bool    `help:"Medication taken as prescribed" default:"true" negatable:""`
}

func (f *SampleFlags) Sample() api.Sample {
	return api.Sample{
		HRV:             f.HRV,
		HeartRate:       f.HeartRate,
		Movement:        f.Movement,
		SleepHours:      f.SleepHours,
		MedicationTaken: f.MedicationTaken,
	}
}

// newController wires the store, prediction client, and controller for a
// command invocation.
func newController(globals *Globals, conn ConnectionFlags, source monitor.SampleSource, config monitor.Config) (*monitor.Controller, error) {
	logger.Setup(globals.Debug)

	store, err := credentials.NewStore(conn.DataDir)
	if err != nil {
		return nil, err
	}

	predictionClient := client.New(client.Config{
		BaseURL: conn.Server,
		Timeout: 30 * time.Second,
	})

	return monitor.New(predictionClient, store, source, config), nil
}

// promptPassword reads a password without echo. Interactive entry is
// required; credentials are never baked into the binary or flags.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
