package service

import (
	"time"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const (
	InitialInvestment         = 50000.0
	MaintenanceSavingsPerYear = 15000.0
	// idle consumption as a share of the rated draw
	idleDrawRatio = 0.3
	pricePerKWh   = 0.12
	weeksPerYear  = 52
	hoursPerWeek  = 24 * 7
	energyDays    = 7
)

// GenerateEnergyBundle draws a fresh machine set and derives the energy figures from it.
func (s *Service) GenerateEnergyBundle() model.EnergyBundle {
	return s.EnergyBundleFor(s.GenerateMachineSnapshots())
}

// EnergyBundleFor derives daily energy, idle waste, efficiency and ROI from machines.
func (s *Service) EnergyBundleFor(machines []model.MachineSnapshot) model.EnergyBundle {
	var (
		bundle model.EnergyBundle
		now    = s.now()
	)

	bundle.DailyEnergyByMachine = make([]model.MachineEnergy, 0, len(machines))
	bundle.IdleTimeWaste = make([]model.IdleWaste, 0, len(machines))
	bundle.EnergyEfficiency = make([]model.EnergyEfficiency, 0, len(machines))

	for _, m := range machines {
		bundle.DailyEnergyByMachine = append(bundle.DailyEnergyByMachine, model.MachineEnergy{
			MachineID:   m.MachineID,
			DailyEnergy: s.dailyEnergy(m, now),
		})
		bundle.IdleTimeWaste = append(bundle.IdleTimeWaste, IdleWasteFor(m))
		bundle.EnergyEfficiency = append(bundle.EnergyEfficiency, EfficiencyFor(m))
	}

	bundle.ROI = ROIFor(bundle.IdleTimeWaste, now)
	return bundle
}

func (s *Service) dailyEnergy(m model.MachineSnapshot, now time.Time) []model.DailyEnergy {
	out := make([]model.DailyEnergy, 0, energyDays)
	for i := energyDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		weekend := 1.0
		if isWeekend(day) {
			weekend = 0.7
		}
		out = append(out, model.DailyEnergy{
			Date:      day.Format(time.DateOnly),
			EnergyKWh: m.EnergyKW * 24 * weekend * s.span(0.9, 0.2),
			MachineID: m.MachineID,
		})
	}
	return out
}

// IdleWasteFor computes the weekly energy burnt while a machine idles.
func IdleWasteFor(m model.MachineSnapshot) model.IdleWaste {
	rate := m.EnergyKW * idleDrawRatio
	hours := hoursPerWeek * (m.IdleTimePct / 100)
	waste := rate * hours
	return model.IdleWaste{
		MachineID:           m.MachineID,
		HourlyIdleRate:      rate,
		IdleHours:           round(hours, 1),
		IdleTimePct:         m.IdleTimePct,
		EnergyWasteKWh:      round(waste, 1),
		PotentialSavingsUSD: round(waste*pricePerKWh, 2),
	}
}

// EfficiencyFor scores energy per production unit. The score is not clamped.
func EfficiencyFor(m model.MachineSnapshot) model.EnergyEfficiency {
	perUnit := (m.EnergyKW / (m.Load / 100)) * (1 + m.IdleTimePct/100)
	return model.EnergyEfficiency{
		MachineID:       m.MachineID,
		EnergyPerUnit:   round(perUnit, 2),
		EfficiencyScore: round(100-perUnit*10, 1),
	}
}

// ROIFor computes the payback of the fixed investment against yearly savings.
// The payback date uses 30 day months.
func ROIFor(waste []model.IdleWaste, now time.Time) model.ROI {
	var weekly float64
	for _, w := range waste {
		weekly += w.PotentialSavingsUSD
	}
	energy := weekly * weeksPerYear
	total := energy + MaintenanceSavingsPerYear
	years := InitialInvestment / total
	months := years * 12

	return model.ROI{
		InitialInvestment:         InitialInvestment,
		EnergySavingsPerYear:      round(energy, 2),
		MaintenanceSavingsPerYear: MaintenanceSavingsPerYear,
		TotalSavingsPerYear:       round(total, 2),
		ROIYears:                  round(years, 2),
		ROIMonths:                 round(months, 1),
		ROIPercent:                round(total/InitialInvestment*100, 1),
		PaybackDate:               now.Add(time.Duration(months * 30 * 24 * float64(time.Hour))),
	}
}
