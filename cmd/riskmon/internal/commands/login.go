package commands

import (
	"context"
	"fmt"

	"github.com/epilepsywatch/riskmon/internal/monitor"
	"github.com/epilepsywatch/riskmon/internal/sensor"
)

type LoginCmd struct {
	ConnectionFlags

	Username string `arg:"" help:"Username to log in as"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	ctrl, err := newController(globals, l.ConnectionFlags, &sensor.Static{}, monitor.Config{})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.Login(ctx, l.Username, password); err != nil {
		return err
	}

	state := ctrl.State()
	fmt.Printf("Logged in as %s\n", state.Username)

	return nil
}

type LogoutCmd struct {
	ConnectionFlags
}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	ctrl, err := newController(globals, l.ConnectionFlags, &sensor.Static{}, monitor.Config{})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctrl.Logout()
	fmt.Println("Logged out")

	return nil
}
