package service

import (
	"math"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

// GenerateDashboardSummary draws a fresh machine set and summarizes it.
func (s *Service) GenerateDashboardSummary() model.DashboardSummary {
	machines := s.GenerateMachineSnapshots()
	return s.SummaryFor(machines, s.EnergyBundleFor(machines))
}

// SummaryFor counts and averages the machine set. The production figures get
// their own jitter.
func (s *Service) SummaryFor(machines []model.MachineSnapshot, energy model.EnergyBundle) model.DashboardSummary {
	var (
		sum       model.DashboardSummary
		health    float64
		wasteKWh  float64
		perDaySav float64
	)

	sum.TotalMachines = len(machines)
	for _, m := range machines {
		switch m.Status {
		case model.StatusHealthy:
			sum.HealthyMachines++
		case model.StatusWarning:
			sum.WarningMachines++
		case model.StatusCritical:
			sum.CriticalMachines++
		}
		health += m.HealthScore
	}
	if len(machines) > 0 {
		sum.AvgHealthScore = health / float64(len(machines))
	}

	sum.RecentAnomalies = 2
	if s.rnd.Float64() < 0.3 {
		sum.RecentAnomalies++
	}
	sum.TotalBatches = s.jitter(45, 2)
	sum.AvgEfficiency = s.jitter(85.2, 1)
	sum.TotalDefects = s.jitter(12, 1.5)
	sum.TotalEnergyConsumption = s.jitter(4250, 100)

	for _, w := range energy.IdleTimeWaste {
		wasteKWh += w.EnergyWasteKWh
	}
	sum.PotentialEnergySavings = math.Round(wasteKWh)

	if perDaySav = energy.ROI.TotalSavingsPerYear / 365; perDaySav > 0 {
		sum.EstimatedROIDays = int(math.Round(InitialInvestment / perDaySav))
	}
	sum.LastUpdated = s.now()
	return sum
}
