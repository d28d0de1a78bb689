package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epilepsywatch/riskmon/internal/api"
)

func defaultPredictor() *Predictor {
	return New(DefaultWeights(), DefaultThresholds())
}

func TestPredict(t *testing.T) {
	t.Run("healthy sample scores low", func(t *testing.T) {
		p := defaultPredictor()

		prediction := p.Predict(api.Sample{
			HRV:             65.0,
			HeartRate:       72,
			Movement:        120.0,
			SleepHours:      8.0,
			MedicationTaken: true,
		})

		assert.Equal(t, api.RiskLevelLow, prediction.RiskLevel)
		assert.Less(t, prediction.RiskScore, 0.33)
		assert.NotEmpty(t, prediction.Message)
		assert.False(t, prediction.Timestamp.IsZero())
	})

	t.Run("missed medication and poor sleep score high", func(t *testing.T) {
		p := defaultPredictor()

		prediction := p.Predict(api.Sample{
			HRV:             20.0,
			HeartRate:       130,
			Movement:        400.0,
			SleepHours:      3.0,
			MedicationTaken: false,
		})

		assert.Equal(t, api.RiskLevelHigh, prediction.RiskLevel)
		assert.GreaterOrEqual(t, prediction.RiskScore, 0.67)
	})

	t.Run("moderate sample scores medium", func(t *testing.T) {
		p := defaultPredictor()

		prediction := p.Predict(api.Sample{
			HRV:             35.0,
			HeartRate:       95,
			Movement:        60.0,
			SleepHours:      5.5,
			MedicationTaken: true,
		})

		assert.Equal(t, api.RiskLevelMedium, prediction.RiskLevel)
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		p := defaultPredictor()

		worst := p.Predict(api.Sample{
			HRV:             0,
			HeartRate:       220,
			Movement:        1000,
			SleepHours:      0,
			MedicationTaken: false,
		})
		require.LessOrEqual(t, worst.RiskScore, 1.0)
		require.GreaterOrEqual(t, worst.RiskScore, 0.0)

		best := p.Predict(api.Sample{
			HRV:             80,
			HeartRate:       70,
			Movement:        120,
			SleepHours:      8,
			MedicationTaken: true,
		})
		require.GreaterOrEqual(t, best.RiskScore, 0.0)
	})

	t.Run("thresholds are configurable", func(t *testing.T) {
		p := New(DefaultWeights(), Thresholds{Low: 0.01, High: 0.02})

		prediction := p.Predict(api.Sample{
			HRV:             65.0,
			HeartRate:       72,
			Movement:        120.0,
			SleepHours:      8.0,
			MedicationTaken: true,
		})

		assert.Equal(t, api.RiskLevelHigh, prediction.RiskLevel)
	})
}
