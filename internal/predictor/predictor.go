// Package predictor scores seizure risk from physiological samples.
//
// Factors: low HRV signals stress, anomalous heart rate is an alert
// signal, extreme movement (hyper or hypo) is a possible prodrome,
// insufficient sleep is a critical factor, and a missed medication dose
// carries maximum risk.
package predictor

import (
	"math"
	"time"

	"github.com/epilepsywatch/riskmon/internal/api"
)

// Weights are the per-factor contributions to the total risk score.
type Weights struct {
	HRV        float64
	HeartRate  float64
	Movement   float64
	Sleep      float64
	Medication float64
}

// Thresholds split the [0,1] score range into low/medium/high levels.
type Thresholds struct {
	Low  float64
	High float64
}

// DefaultWeights returns the reference factor weights.
func DefaultWeights() Weights {
	return Weights{
		HRV:        0.25,
		HeartRate:  0.20,
		Movement:   0.15,
		Sleep:      0.25,
		Medication: 0.15,
	}
}

// DefaultThresholds returns the reference level boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.33, High: 0.67}
}

// Predictor computes risk predictions. It is stateless and safe for
// concurrent use.
type Predictor struct {
	weights    Weights
	thresholds Thresholds
}

// New creates a predictor with the given weights and thresholds.
func New(weights Weights, thresholds Thresholds) *Predictor {
	return &Predictor{weights: weights, thresholds: thresholds}
}

// Predict scores a sample and classifies the result.
func (p *Predictor) Predict(sample api.Sample) api.Prediction {
	medicationRisk := 1.0
	if sample.MedicationTaken {
		medicationRisk = 0.0
	}

	total := hrvRisk(sample.HRV)*p.weights.HRV +
		heartRateRisk(sample.HeartRate)*p.weights.HeartRate +
		movementRisk(sample.Movement)*p.weights.Movement +
		sleepRisk(sample.SleepHours)*p.weights.Sleep +
		medicationRisk*p.weights.Medication

	score := math.Max(0.0, math.Min(1.0, total))
	level, message := p.categorize(score)

	return api.Prediction{
		RiskScore: math.Round(score*1000) / 1000,
		RiskLevel: level,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Low HRV means elevated stress.
func hrvRisk(hrv float64) float64 {
	switch {
	case hrv >= 60:
		return 0.0
	case hrv >= 40:
		return 0.3
	case hrv >= 25:
		return 0.6
	default:
		return 0.9
	}
}

func heartRateRisk(hr int) float64 {
	switch {
	case hr >= 60 && hr <= 85:
		return 0.1
	case (hr >= 50 && hr < 60) || (hr > 85 && hr <= 100):
		return 0.4
	case (hr >= 40 && hr < 50) || (hr > 100 && hr <= 120):
		return 0.7
	default:
		return 1.0
	}
}

func movementRisk(movement float64) float64 {
	switch {
	case movement >= 80 && movement <= 180:
		return 0.1
	case (movement >= 50 && movement < 80) || (movement > 180 && movement <= 250):
		return 0.4
	case (movement >= 20 && movement < 50) || (movement > 250 && movement <= 350):
		return 0.7
	default:
		return 0.9
	}
}

func sleepRisk(hours float64) float64 {
	switch {
	case hours >= 7.0 && hours <= 9.0:
		return 0.0
	case (hours >= 6.0 && hours < 7.0) || (hours > 9.0 && hours <= 10.0):
		return 0.3
	case (hours >= 5.0 && hours < 6.0) || (hours > 10.0 && hours <= 11.0):
		return 0.6
	case hours >= 4.0 && hours < 5.0:
		return 0.8
	default:
		return 1.0
	}
}

func (p *Predictor) categorize(score float64) (string, string) {
	switch {
	case score < p.thresholds.Low:
		return api.RiskLevelLow, "Low risk: all stable."
	case score < p.thresholds.High:
		return api.RiskLevelMedium, "Moderate risk: keep monitoring."
	default:
		return api.RiskLevelHigh, "High risk: follow the safety plan."
	}
}
