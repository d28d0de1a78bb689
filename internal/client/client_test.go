package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epilepsywatch/riskmon/internal/api"
)

func TestLogin(t *testing.T) {
	t.Run("returns the session on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/login", r.URL.Path)

			var req api.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "admin", req.Username)
			assert.Equal(t, "correct-horse", req.Password)

			json.NewEncoder(w).Encode(api.TokenResponse{
				AccessToken: "token-abc",
				TokenType:   "bearer",
				ExpiresIn:   86400,
				Username:    "admin",
			})
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL})
		session, err := c.Login(context.Background(), "admin", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "token-abc", session.Token)
		assert.Equal(t, "admin", session.Username)
	})

	t.Run("maps a rejection to AuthError with the server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(api.ErrorResponse{Message: "Invalid credentials"})
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL})
		_, err := c.Login(context.Background(), "admin", "wrong")

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		assert.Equal(t, "Invalid credentials", authErr.Message)
	})

	t.Run("uses a generic message when the server gives none", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL})
		_, err := c.Login(context.Background(), "admin", "pw")

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Login failed", authErr.Message)
	})

	t.Run("maps a transport failure to NetworkError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		c := New(Config{BaseURL: srv.URL, Timeout: time.Second})
		_, err := c.Login(context.Background(), "admin", "pw")

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})
}

func TestPredict(t *testing.T) {
	sample := api.Sample{HRV: 55.0, HeartRate: 72, Movement: 3.2, SleepHours: 7.0, MedicationTaken: true}

	t.Run("submits the bearer token and decodes the prediction", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/predict", r.URL.Path)
			require.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

			var got api.Sample
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, sample, got)

			json.NewEncoder(w).Encode(api.Prediction{
				RiskScore: 0.82,
				RiskLevel: api.RiskLevelHigh,
				Message:   "Elevated risk",
				Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			})
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL})
		prediction, err := c.Predict(context.Background(), "token-abc", sample)
		require.NoError(t, err)
		assert.InDelta(t, 0.82, prediction.RiskScore, 0.0001)
		assert.Equal(t, api.RiskLevelHigh, prediction.RiskLevel)
		assert.Equal(t, "Elevated risk", prediction.Message)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), prediction.Timestamp)
	})

	t.Run("maps 401 to ErrUnauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(api.ErrorResponse{Message: "Invalid or expired token"})
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL})
		_, err := c.Predict(context.Background(), "stale", sample)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("maps other non-2xx statuses to NetworkError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL})
		_, err := c.Predict(context.Background(), "token", sample)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("maps a malformed body to NetworkError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL})
		_, err := c.Predict(context.Background(), "token", sample)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer srv.Close()
		defer close(block)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		c := New(Config{BaseURL: srv.URL})
		_, err := c.Predict(ctx, "token", sample)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(api.HealthStatus{Status: "healthy", Version: "test"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
}
