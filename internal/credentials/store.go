// Package credentials persists the authenticated session on the local
// filesystem so a relaunched client can resume without re-entering
// credentials.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/epilepsywatch/riskmon/internal/api"
)

// ErrNotLoggedIn is returned by Load when no session is stored. Absence is
// the expected logged-out state, not a failure.
var ErrNotLoggedIn = errors.New("no stored session")

// storedSession is the on-disk session format.
type storedSession struct {
	Version   int       `json:"version"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store manages session storage on the local filesystem.
type Store struct {
	baseDir string
}

// NewStore creates a session store rooted at baseDir.
// If baseDir is empty, uses ~/.riskmon/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".riskmon")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return &Store{baseDir: baseDir}, nil
}

// Save persists the session, replacing any previous one.
func (s *Store) Save(session api.Session) error {
	data, err := json.MarshalIndent(storedSession{
		Version:   1,
		Token:     session.Token,
		Username:  session.Username,
		UpdatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write to temp file first, then rename so a crash never leaves a
	// truncated session file.
	sessionPath := s.sessionPath()
	tempPath := sessionPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err := os.Rename(tempPath, sessionPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session: %w", err)
	}

	log.Debug().Str("username", session.Username).Msg("session saved")

	return nil
}

// Load retrieves the stored session. Returns ErrNotLoggedIn when no
// session exists.
func (s *Store) Load() (*api.Session, error) {
	data, err := os.ReadFile(s.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	if stored.Token == "" {
		return nil, ErrNotLoggedIn
	}

	return &api.Session{Token: stored.Token, Username: stored.Username}, nil
}

// Clear removes the stored session. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	log.Debug().Msg("session cleared")

	return nil
}

func (s *Store) sessionPath() string {
	return filepath.Join(s.baseDir, "session.json")
}
