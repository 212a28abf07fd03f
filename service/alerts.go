package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const anomalyAlertProbability = 0.3

// GenerateAlerts builds the alert list against a freshly drawn energy bundle.
func (s *Service) GenerateAlerts() []model.Alert {
	return s.AlertsFor(s.GenerateEnergyBundle())
}

// AlertsFor builds the alert list for a batch, oldest first.
func (s *Service) AlertsFor(energy model.EnergyBundle) []model.Alert {
	var (
		now    = s.now()
		alerts []model.Alert
	)

	alerts = append(alerts,
		newAlert(model.AlertCritical, 5, model.PriorityHigh, s.ago(now, time.Hour),
			fmt.Sprintf("Machine 5 health is critical (%.1f%%)", s.jitter(45, 1.5))),
		newAlert(model.AlertMaintenance, 5, model.PriorityHigh, s.ago(now, 2*time.Hour),
			fmt.Sprintf("Machine 5 needs maintenance soon (RUL: %.0f days)", s.jitter(25, 1.5))),
		newAlert(model.AlertWarning, 3, model.PriorityMedium, s.ago(now, 3*time.Hour),
			fmt.Sprintf("Machine 3 health needs attention (%.1f%%)", s.jitter(71, 1.5))),
	)

	idle, ok := highestIdle(energy.IdleTimeWaste)
	if ok {
		alerts = append(alerts, newAlert(model.AlertEnergy, idle.MachineID, model.PriorityMedium, s.ago(now, 90*time.Minute),
			fmt.Sprintf("High idle time on Machine %d (%.1f%%). Wasting %.1f kWh/week.", idle.MachineID, idle.IdleTimePct, idle.EnergyWasteKWh)))
	}

	// at most one energy alert per machine
	abnormal := s.intn(MachineCount) + 1
	if !ok || abnormal != idle.MachineID {
		alerts = append(alerts, newAlert(model.AlertEnergy, abnormal, model.PriorityMedium, s.ago(now, 150*time.Minute),
			fmt.Sprintf("Abnormal energy consumption on Machine %d. 15%% above baseline.", abnormal)))
	}

	if s.rnd.Float64() < anomalyAlertProbability {
		id := s.intn(MachineCount) + 1
		alerts = append(alerts, newAlert(model.AlertAnomaly, id, anomalyPriority(id), s.ago(now, 4*time.Hour),
			fmt.Sprintf("Anomaly detected on Machine %d (score: %.2f)", id, s.span(0.7, 0.2))))
	}

	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Timestamp.Before(alerts[j].Timestamp) })
	return alerts
}

func newAlert(t model.AlertType, machineID int, p model.Priority, ts time.Time, msg string) model.Alert {
	return model.Alert{
		ID:        uuid.NewString(),
		Type:      t,
		MachineID: machineID,
		Message:   msg,
		Timestamp: ts,
		Priority:  p,
	}
}

func anomalyPriority(machineID int) model.Priority {
	switch machineID {
	case 5:
		return model.PriorityHigh
	case 3:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// highestIdle returns the first machine with the largest idle share.
func highestIdle(waste []model.IdleWaste) (model.IdleWaste, bool) {
	if len(waste) == 0 {
		return model.IdleWaste{}, false
	}
	best := waste[0]
	for _, w := range waste[1:] {
		if w.IdleTimePct > best.IdleTimePct {
			best = w
		}
	}
	return best, true
}
