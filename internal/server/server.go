// Package server implements the seizure risk prediction HTTP service:
// JWT-protected prediction endpoint, login endpoint, and health check.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/epilepsywatch/riskmon/internal/api"
	"github.com/epilepsywatch/riskmon/internal/config"
	"github.com/epilepsywatch/riskmon/internal/predictor"
)

type contextKey string

const userContextKey contextKey = "user"

// Server holds the service dependencies.
type Server struct {
	cfg       *config.Config
	version   string
	tokens    *tokenIssuer
	predictor *predictor.Predictor
}

// New creates a server from config.
func New(cfg *config.Config, version string) *Server {
	return &Server{
		cfg:     cfg,
		version: version,
		tokens:  newTokenIssuer(cfg.SecretKey, cfg.AccessTokenExpiry),
		predictor: predictor.New(
			predictor.Weights{
				HRV:        cfg.WeightHRV,
				HeartRate:  cfg.WeightHeartRate,
				Movement:   cfg.WeightMovement,
				Sleep:      cfg.WeightSleep,
				Medication: cfg.WeightMedication,
			},
			predictor.Thresholds{Low: cfg.LowRiskThreshold, High: cfg.HighRiskThreshold},
		),
	}
}

// Handler builds the routed handler with logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/api/predict", s.requireAuth(http.HandlerFunc(s.handlePredict))).Methods(http.MethodPost)
	r.Handle("/api/me", s.requireAuth(http.HandlerFunc(s.handleMe))).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(requestLogger(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthStatus{
		Status:    "healthy",
		Version:   s.version,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	log.Info().Str("username", req.Username).Msg("login attempt")

	if req.Username != s.cfg.AdminUsername || !checkPassword(s.cfg.AdminPasswordHash, req.Password) {
		log.Warn().Str("username", req.Username).Msg("login failed")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue token")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	log.Info().Str("username", req.Username).Msg("login succeeded")

	writeJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		Username:    req.Username,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var sample api.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	if message, ok := validateSample(sample); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	user := userFrom(r.Context())
	log.Info().
		Str("user", user).
		Float64("hrv", sample.HRV).
		Int("heart_rate", sample.HeartRate).
		Msg("prediction requested")

	prediction := s.predictor.Predict(sample)

	log.Info().
		Str("user", user).
		Str("risk_level", prediction.RiskLevel).
		Float64("risk_score", prediction.RiskScore).
		Msg("prediction computed")

	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"username":      userFrom(r.Context()),
		"authenticated": true,
		"timestamp":     time.Now().UTC(),
	})
}

// requireAuth validates the bearer token and stores the subject in the
// request context. A missing or invalid token yields 401, which clients
// treat as session expiry.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		user, err := s.tokens.Verify(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey).(string)
	return user
}

func validateSample(sample api.Sample) (string, bool) {
	switch {
	case sample.HRV < 0 || sample.HRV > 200:
		return "hrv must be between 0 and 200", false
	case sample.HeartRate < 30 || sample.HeartRate > 220:
		return "heart_rate must be between 30 and 220", false
	case sample.Movement < 0:
		return "movement must be non-negative", false
	case sample.SleepHours < 0 || sample.SleepHours > 24:
		return "sleep_hours must be between 0 and 24", false
	}
	return "", true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Message: message})
}

// requestLogger tags each request with an ID and logs method, path,
// status, and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		requestID := uuid.NewString()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(started)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
