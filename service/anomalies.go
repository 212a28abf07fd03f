package service

import (
	"sort"
	"time"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

// band is base + uniform(0, width). A negative width spans downwards.
type band struct {
	base, width float64
}

type anomalyTier struct {
	count       int
	temperature band
	vibration   band
	load        band
	rpm         band
	current     band
	energyKW    band
	score       band
	health      float64
}

var (
	criticalTier = anomalyTier{3, band{78, 8}, band{1.2, 0.8}, band{90, 5}, band{1900, -200}, band{42, 8}, band{16.5, 3}, band{0.8, 0.2}, 45}
	warningTier  = anomalyTier{2, band{72, 6}, band{0.6, 0.4}, band{85, 5}, band{2050, -150}, band{38, 5}, band{13.8, 2}, band{0.6, 0.2}, 71}
	healthyTier  = anomalyTier{1, band{65, 5}, band{0.3, 0.3}, band{75, 5}, band{2200, -100}, band{32, 3}, band{10.2, 1.5}, band{0.4, 0.2}, 85}
)

func tierFor(machineID int) anomalyTier {
	switch machineID {
	case 5:
		return criticalTier
	case 3:
		return warningTier
	default:
		return healthyTier
	}
}

// GenerateAnomalies returns the anomalies of the last 24 hours, most recent first.
func (s *Service) GenerateAnomalies(machineID int) []model.Anomaly {
	tier := tierFor(machineID)
	now := s.now()
	out := make([]model.Anomaly, 0, tier.count)

	for i := 0; i < tier.count; i++ {
		hoursAgo := s.intn(24)
		out = append(out, model.Anomaly{
			MachineID:    machineID,
			Timestamp:    now.Add(-time.Duration(hoursAgo) * time.Hour),
			Temperature:  s.span(tier.temperature.base, tier.temperature.width),
			Vibration:    s.span(tier.vibration.base, tier.vibration.width),
			Load:         s.span(tier.load.base, tier.load.width),
			RPM:          s.span(tier.rpm.base, tier.rpm.width),
			Current:      s.span(tier.current.base, tier.current.width),
			EnergyKW:     s.span(tier.energyKW.base, tier.energyKW.width),
			AnomalyScore: s.span(tier.score.base, tier.score.width),
			HealthScore:  tier.health,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

var rulBase = map[int]struct{ days, health float64 }{
	1: {180, 92},
	2: {165, 85},
	3: {95, 71},
	4: {200, 88},
	5: {25, 45},
}

// GenerateRULPrediction returns the remaining useful life estimate of a machine.
// Unknown machines get a zero prediction.
func (s *Service) GenerateRULPrediction(machineID int) model.RULPrediction {
	base, ok := rulBase[machineID]
	if !ok {
		return model.RULPrediction{MachineID: machineID, LastUpdated: s.now()}
	}
	return model.RULPrediction{
		MachineID:   machineID,
		RULDays:     s.jitter(base.days, 5),
		HealthScore: s.jitter(base.health, 1.5),
		LastUpdated: s.now(),
	}
}
