// Package sensor provides sample sources for the monitoring controller.
// Real sensor acquisition is out of scope; the simulator stands in for a
// wearable, the static source for a manually filled form.
package sensor

import (
	"math/rand/v2"
	"sync"

	"github.com/epilepsywatch/riskmon/internal/api"
)

// Static returns the same sample on every read, like a form the user
// filled in once.
type Static struct {
	Sample api.Sample
}

func (s *Static) Latest() api.Sample {
	return s.Sample
}

// Simulator produces jittered physiological readings around a baseline.
// Heart rate and HRV vary per read; sleep hours and medication status
// come from the baseline unchanged.
type Simulator struct {
	mu       sync.Mutex
	baseline api.Sample
	rng      *rand.Rand
}

// NewSimulator creates a simulator around the given baseline.
func NewSimulator(baseline api.Sample) *Simulator {
	return &Simulator{
		baseline: baseline,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Latest returns a fresh simulated reading.
func (s *Simulator) Latest() api.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Heart rate 60..90 bpm, HRV 40..70 ms.
	sample := s.baseline
	sample.HeartRate = 60 + s.rng.IntN(31)
	sample.HRV = 40 + s.rng.Float64()*30
	sample.Movement += (s.rng.Float64() - 0.5) * 20
	if sample.Movement < 0 {
		sample.Movement = 0
	}

	return sample
}
