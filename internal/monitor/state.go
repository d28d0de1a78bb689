package monitor

import "github.com/epilepsywatch/riskmon/internal/api"

// Connection status messages surfaced to views.
const (
	StatusConnected       = "Connected"
	StatusSending         = "Sending data..."
	StatusConnectionError = "Connection error"
	StatusRetrying        = "Retrying..."
	StatusSessionExpired  = "Session expired. Please log in again."
)

// Connection describes the link to the prediction service as the
// controller last observed it.
type Connection struct {
	Connected     bool
	StatusMessage string
}

// State is the controller's observable snapshot. Views receive copies and
// must treat LastPrediction as immutable.
type State struct {
	IsLoggedIn      bool
	Username        string
	IsMonitoring    bool
	AutoSendEnabled bool
	LastPrediction  *api.Prediction
	Connection      Connection
}
