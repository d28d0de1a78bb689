// Package api defines the wire types shared by the monitoring client and
// the prediction service.
package api

import "time"

// Risk levels returned by the prediction service. The client treats the
// level as opaque; the service is the sole source of truth for risk
// semantics.
const (
	RiskLevelLow     = "low"
	RiskLevelMedium  = "medium"
	RiskLevelHigh    = "high"
	RiskLevelUnknown = "unknown"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the success body of POST /auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Username    string `json:"username"`
}

// ErrorResponse is the body returned on any non-2xx status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Session is an authenticated session: a bearer token plus the username it
// was issued to.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Sample is one set of physiological readings submitted for risk
// evaluation. Samples are ephemeral; they are built fresh from the latest
// sensor or form values for every prediction request.
type Sample struct {
	HRV             float64 `json:"hrv"`
	HeartRate       int     `json:"heart_rate"`
	Movement        float64 `json:"movement"`
	SleepHours      float64 `json:"sleep_hours"`
	MedicationTaken bool    `json:"medication_taken"`
}

// Prediction is the risk assessment returned by POST /api/predict.
type Prediction struct {
	RiskScore float64   `json:"risk_score"`
	RiskLevel string    `json:"risk_level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
