package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/epilepsywatch/riskmon/internal/api"
	"github.com/epilepsywatch/riskmon/internal/client"
	"github.com/epilepsywatch/riskmon/internal/credentials"
	"github.com/epilepsywatch/riskmon/internal/logger"
)

type StatusCmd struct {
	ConnectionFlags

	Wait    bool          `help:"Keep probing until the service is reachable"`
	Timeout time.Duration `help:"Give up waiting after this long" default:"30s"`
}

func (s *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	store, err := credentials.NewStore(s.DataDir)
	if err != nil {
		return err
	}

	session, err := store.Load()
	switch {
	case err == nil:
		fmt.Printf("Session:  logged in as %s\n", session.Username)
	case errors.Is(err, credentials.ErrNotLoggedIn):
		fmt.Println("Session:  not logged in")
	default:
		return err
	}

	predictionClient := client.New(client.Config{
		BaseURL: s.Server,
		Timeout: 10 * time.Second,
	})

	health, err := s.probe(ctx, predictionClient)
	if err != nil {
		fmt.Printf("Service:  unreachable (%s)\n", s.Server)
		return err
	}

	fmt.Printf("Service:  %s (version %s) at %s\n", health.Status, health.Version, s.Server)

	return nil
}

func (s *StatusCmd) probe(ctx context.Context, predictionClient *client.Client) (*api.HealthStatus, error) {
	if !s.Wait {
		return predictionClient.Health(ctx)
	}

	return backoff.Retry(ctx, func() (*api.HealthStatus, error) {
		health, err := predictionClient.Health(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("service not reachable yet")
			return nil, err
		}
		return health, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.Timeout),
	)
}
