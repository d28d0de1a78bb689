package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/epilepsywatch/riskmon/cmd/riskmon/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login        commands.LoginCmd        `cmd:"" help:"Log in to the prediction service"`
		Logout       commands.LogoutCmd       `cmd:"" help:"Log out and clear the stored session"`
		Status       commands.StatusCmd       `cmd:"" help:"Show session and service status"`
		Submit       commands.SubmitCmd       `cmd:"" help:"Submit one sample for prediction"`
		Monitor      commands.MonitorCmd      `cmd:"" help:"Run continuous monitoring"`
		HashPassword commands.HashPasswordCmd `cmd:"" name:"hash-password" help:"Generate a bcrypt hash for server provisioning"`
		Debug        bool                     `help:"Enable debug mode."`
		Version      kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
