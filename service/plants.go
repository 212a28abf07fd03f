package service

import (
	"github.com/Go-routine-4595/faultzero-sim/model"
)

type plantLayout struct {
	id       int
	name     string
	location string
	machines []int
}

var plantLayouts = []plantLayout{
	{1, "Plant 1", "East Wing", []int{1, 2, 3}},
	{2, "Plant 2", "West Wing", []int{4, 5}},
}

// GeneratePlantRollup draws a fresh batch and rolls it up per plant.
func (s *Service) GeneratePlantRollup() model.PlantRollup {
	machines := s.GenerateMachineSnapshots()
	energy := s.EnergyBundleFor(machines)
	return s.PlantsFor(machines, energy, s.InsightsFor(energy))
}

// PlantsFor aggregates health, daily energy and efficiency of each plant's machines.
func (s *Service) PlantsFor(machines []model.MachineSnapshot, energy model.EnergyBundle, insights model.ProductionInsights) model.PlantRollup {
	var (
		byMachine  = make(map[int]model.MachineSnapshot, len(machines))
		dailyKWh   = make(map[int]float64, len(energy.DailyEnergyByMachine))
		efficiency = make(map[int]float64, len(insights.EfficiencyByMachine))
		rollup     = model.PlantRollup{MachineToPlant: make(map[int]int)}
	)

	for _, m := range machines {
		byMachine[m.MachineID] = m
	}
	for _, e := range energy.DailyEnergyByMachine {
		var total float64
		for _, d := range e.DailyEnergy {
			total += d.EnergyKWh
		}
		if len(e.DailyEnergy) > 0 {
			dailyKWh[e.MachineID] = total / float64(len(e.DailyEnergy))
		}
	}
	for _, e := range insights.EfficiencyByMachine {
		efficiency[e.MachineID] = e.AvgEfficiency
	}

	for _, layout := range plantLayouts {
		p := model.Plant{
			PlantID:    layout.id,
			PlantName:  layout.name,
			Location:   layout.location,
			MachineIDs: append([]int(nil), layout.machines...),
		}
		var health, eff float64
		for _, id := range layout.machines {
			rollup.MachineToPlant[id] = layout.id
			m, ok := byMachine[id]
			if !ok {
				continue
			}
			p.TotalMachines++
			switch m.Status {
			case model.StatusHealthy:
				p.HealthyMachines++
			case model.StatusWarning:
				p.WarningMachines++
			case model.StatusCritical:
				p.CriticalMachines++
			}
			health += m.HealthScore
			eff += efficiency[id]
			p.AvgEnergyConsumption += dailyKWh[id]
		}
		if p.TotalMachines > 0 {
			p.AvgHealthScore = health / float64(p.TotalMachines)
			p.AvgEfficiency = eff / float64(p.TotalMachines)
			p.AvgEnergyConsumption /= float64(p.TotalMachines)
		}
		rollup.Plants = append(rollup.Plants, p)
	}
	return rollup
}
