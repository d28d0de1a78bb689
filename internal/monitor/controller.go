// Package monitor implements the monitoring session controller: it owns
// the session lifecycle, the sampling/prediction polling loop,
// connection-state tracking, and the failure policy. View shells read its
// State snapshots and invoke its commands; they hold no state of their
// own.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/epilepsywatch/riskmon/internal/api"
	"github.com/epilepsywatch/riskmon/internal/client"
	"github.com/epilepsywatch/riskmon/internal/credentials"
)

// ErrNotLoggedIn is returned by commands that require an authenticated
// session.
var ErrNotLoggedIn = errors.New("not logged in")

// PredictionClient is the stateless request layer the controller drives.
type PredictionClient interface {
	Login(ctx context.Context, username, password string) (*api.Session, error)
	Predict(ctx context.Context, token string, sample api.Sample) (*api.Prediction, error)
}

// SessionStore persists the session across process restarts.
type SessionStore interface {
	Save(session api.Session) error
	Load() (*api.Session, error)
	Clear() error
}

// SampleSource provides the latest known sensor or form values. Each tick
// builds a fresh sample from it.
type SampleSource interface {
	Latest() api.Sample
}

// Config holds controller configuration.
type Config struct {
	// TickInterval is the monitoring sampling period. Defaults to 5s.
	TickInterval time.Duration

	// RecoveryDelay is how long after a network failure the status
	// message flips to a retrying indicator. Defaults to 3s.
	RecoveryDelay time.Duration

	// Clock overrides the timer source, used by tests.
	Clock Clock

	// OnStateChange is invoked with a snapshot after every state
	// mutation. Called outside the controller lock; must not block.
	OnStateChange func(State)
}

// Controller is the monitoring session controller. It is safe for
// concurrent use by command callers and its own scheduled tasks.
type Controller struct {
	client   PredictionClient
	store    SessionStore
	source   SampleSource
	clock    Clock
	onChange func(State)

	tickInterval  time.Duration
	recoveryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	session  *api.Session
	gen      uint64
	inFlight bool
	stopTick chan struct{}
	recovery Timer
}

// New creates a controller. If a session was persisted by a previous run
// it is restored, so the caller starts logged in without re-entering
// credentials.
func New(predictionClient PredictionClient, store SessionStore, source SampleSource, config Config) *Controller {
	if config.TickInterval <= 0 {
		config.TickInterval = 5 * time.Second
	}
	if config.RecoveryDelay <= 0 {
		config.RecoveryDelay = 3 * time.Second
	}
	if config.Clock == nil {
		config.Clock = RealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		client:        predictionClient,
		store:         store,
		source:        source,
		clock:         config.Clock,
		onChange:      config.OnStateChange,
		tickInterval:  config.TickInterval,
		recoveryDelay: config.RecoveryDelay,
		ctx:           ctx,
		cancel:        cancel,
	}

	if session, err := store.Load(); err == nil {
		c.session = session
		c.state.IsLoggedIn = true
		c.state.Username = session.Username
		c.state.Connection = Connection{Connected: true, StatusMessage: StatusConnected}
		log.Debug().Str("username", session.Username).Msg("restored persisted session")
	} else if !errors.Is(err, credentials.ErrNotLoggedIn) {
		log.Warn().Err(err).Msg("failed to load persisted session")
	}

	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login authenticates and persists the session. On an authentication
// failure the controller stays logged out and the server's message is
// returned untouched; connection state is only marked down for transport
// failures.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	session, err := c.client.Login(ctx, username, password)
	if err != nil {
		var authErr *client.AuthError
		if errors.As(err, &authErr) {
			log.Debug().Str("username", username).Msg("login rejected")
			return err
		}

		c.mu.Lock()
		c.state.Connection = Connection{Connected: false, StatusMessage: StatusConnectionError}
		snapshot := c.state
		c.mu.Unlock()
		c.notify(snapshot)
		return err
	}

	if err := c.store.Save(*session); err != nil {
		log.Warn().Err(err).Msg("failed to persist session")
	}

	c.mu.Lock()
	c.session = session
	c.state.IsLoggedIn = true
	c.state.Username = session.Username
	c.state.Connection = Connection{Connected: true, StatusMessage: StatusConnected}
	snapshot := c.state
	c.mu.Unlock()
	c.notify(snapshot)

	log.Info().Str("username", session.Username).Msg("logged in")

	return nil
}

// Logout cancels scheduled work, clears the stored session, and resets
// state to logged-out defaults.
func (c *Controller) Logout() {
	c.mu.Lock()
	c.logoutLocked("")
	snapshot := c.state
	c.mu.Unlock()
	c.notify(snapshot)

	log.Info().Msg("logged out")
}

// StartMonitoring schedules the recurring sampling tick. The first tick
// fires immediately so the user sees feedback without waiting a full
// period.
func (c *Controller) StartMonitoring() error {
	c.mu.Lock()
	err := c.startMonitoringLocked()
	snapshot := c.state
	c.mu.Unlock()
	if err == nil {
		c.notify(snapshot)
	}
	return err
}

// StopMonitoring cancels the recurring tick. The last known prediction
// stays visible.
func (c *Controller) StopMonitoring() {
	c.mu.Lock()
	c.stopMonitoringLocked()
	snapshot := c.state
	c.mu.Unlock()
	c.notify(snapshot)
}

// SetAutoSend toggles automatic submission. Enabling it is equivalent to
// starting monitoring; disabling it stops the ticks.
func (c *Controller) SetAutoSend(enabled bool) error {
	c.mu.Lock()

	if enabled && !c.state.IsLoggedIn {
		c.mu.Unlock()
		return ErrNotLoggedIn
	}

	c.state.AutoSendEnabled = enabled

	var err error
	if enabled {
		err = c.startMonitoringLocked()
	} else {
		c.stopMonitoringLocked()
	}
	snapshot := c.state
	c.mu.Unlock()
	if err == nil {
		c.notify(snapshot)
	}
	return err
}

// SubmitSample performs one manual submission. While monitoring, the same
// single-flight gate applies as for ticks.
func (c *Controller) SubmitSample(ctx context.Context, sample api.Sample) error {
	return c.submit(ctx, sample)
}

// Close cancels all scheduled activity. The persisted session is kept so
// a later instance can restore it.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopMonitoringLocked()
	c.mu.Unlock()
	c.cancel()
}

// startMonitoringLocked starts the tick loop. Caller holds c.mu and is
// responsible for notifying; the loop goroutine issues its own
// notifications per submission.
func (c *Controller) startMonitoringLocked() error {
	if !c.state.IsLoggedIn {
		return ErrNotLoggedIn
	}
	if c.stopTick != nil {
		return nil // already monitoring
	}

	stop := make(chan struct{})
	c.stopTick = stop
	c.state.IsMonitoring = true

	log.Info().Dur("interval", c.tickInterval).Msg("monitoring started")

	go c.runLoop(stop)

	return nil
}

func (c *Controller) stopMonitoringLocked() {
	if c.stopTick != nil {
		close(c.stopTick)
		c.stopTick = nil
		log.Info().Msg("monitoring stopped")
	}
	c.state.IsMonitoring = false
	c.cancelRecoveryLocked()
}

func (c *Controller) cancelRecoveryLocked() {
	if c.recovery != nil {
		c.recovery.Stop()
		c.recovery = nil
	}
}

// logoutLocked is the shared logged-out transition. statusMessage is set
// on the connection when non-empty, used for the implicit session-expired
// path.
func (c *Controller) logoutLocked(statusMessage string) {
	c.stopMonitoringLocked()

	c.session = nil
	c.gen++ // discard any in-flight completion

	if err := c.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear stored session")
	}

	c.state = State{
		Connection: Connection{Connected: false, StatusMessage: statusMessage},
	}
}

// runLoop drives ticks until stop is closed. Stopping only prevents
// future ticks; a dispatched request completes and its result is applied
// unless superseded.
func (c *Controller) runLoop(stop chan struct{}) {
	c.tick()

	ticker := c.clock.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			// A tick may already be pending when stop closes; never
			// submit after cancellation.
			select {
			case <-stop:
				return
			default:
			}
			c.tick()
		case <-stop:
			return
		}
	}
}

func (c *Controller) tick() {
	if err := c.submit(c.ctx, c.source.Latest()); err != nil {
		// Failures update connection state; the schedule continues.
		log.Debug().Err(err).Msg("tick submission failed")
	}
}

// submit issues one predict call. At most one call is in flight at a
// time; a submission arriving while one is outstanding is dropped rather
// than queued, so an older response can never overwrite a newer one.
func (c *Controller) submit(ctx context.Context, sample api.Sample) error {
	c.mu.Lock()
	if !c.state.IsLoggedIn {
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	if c.inFlight {
		c.mu.Unlock()
		log.Debug().Msg("submission dropped, request already in flight")
		return nil
	}
	c.inFlight = true
	c.gen++
	gen := c.gen
	token := c.session.Token
	c.state.Connection.StatusMessage = StatusSending
	snapshot := c.state
	c.mu.Unlock()
	c.notify(snapshot)

	prediction, err := c.client.Predict(ctx, token, sample)

	c.mu.Lock()
	c.inFlight = false

	// A logout or a newer request superseded this one; drop the result.
	if gen != c.gen || !c.state.IsLoggedIn {
		c.mu.Unlock()
		log.Debug().Msg("stale prediction result discarded")
		return nil
	}

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		log.Warn().Msg("session expired, logging out")
		c.logoutLocked(StatusSessionExpired)
		snapshot = c.state
		c.mu.Unlock()
		c.notify(snapshot)
		return err

	case err != nil:
		c.state.Connection = Connection{Connected: false, StatusMessage: StatusConnectionError}
		c.scheduleRecoveryLocked()
		snapshot = c.state
		c.mu.Unlock()
		c.notify(snapshot)
		log.Warn().Err(err).Msg("prediction request failed")
		return err

	default:
		c.state.LastPrediction = prediction
		c.state.Connection = Connection{Connected: true, StatusMessage: StatusConnected}
		snapshot = c.state
		c.mu.Unlock()
		c.notify(snapshot)
		log.Debug().
			Float64("risk_score", prediction.RiskScore).
			Str("risk_level", prediction.RiskLevel).
			Msg("prediction received")
		return nil
	}
}

// scheduleRecoveryLocked arms the one-shot status-recovery check. It only
// restores the status message; the next tick or explicit user action
// performs the next attempt.
func (c *Controller) scheduleRecoveryLocked() {
	c.cancelRecoveryLocked()
	c.recovery = c.clock.AfterFunc(c.recoveryDelay, func() {
		c.mu.Lock()
		if !c.state.IsLoggedIn || c.state.Connection.StatusMessage != StatusConnectionError {
			c.mu.Unlock()
			return
		}
		c.state.Connection.StatusMessage = StatusRetrying
		snapshot := c.state
		c.mu.Unlock()
		c.notify(snapshot)
	})
}

func (c *Controller) notify(snapshot State) {
	if c.onChange != nil {
		c.onChange(snapshot)
	}
}
