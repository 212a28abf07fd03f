package service

import (
	"fmt"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

var (
	machineEfficiency = []field{{92, 2}, {85, 2}, {78, 2}, {88, 2}, {65, 2}}
	machineDefects    = []field{{0.8, 0.2}, {1.2, 0.2}, {2.1, 0.3}, {1.0, 0.2}, {3.5, 0.4}}
	products          = []string{"Product A", "Product B", "Product C", "Product D", "Product E"}
	productEfficiency = []field{{90, 2}, {85, 2}, {78, 2}, {82, 2}, {75, 2}}
	productEnergy     = []field{{120, 5}, {135, 5}, {110, 5}, {125, 5}, {150, 5}}
)

// GenerateProductionInsights draws a fresh energy bundle and derives the insights from it.
func (s *Service) GenerateProductionInsights() model.ProductionInsights {
	return s.InsightsFor(s.GenerateEnergyBundle())
}

// InsightsFor builds efficiency, energy and defect tables and the recommendations.
func (s *Service) InsightsFor(energy model.EnergyBundle) model.ProductionInsights {
	var in model.ProductionInsights

	for i, f := range machineEfficiency {
		in.EfficiencyByMachine = append(in.EfficiencyByMachine, model.MachineEfficiency{MachineID: i + 1, AvgEfficiency: s.jitter(f.base, f.half)})
	}
	for i, f := range productEfficiency {
		in.EfficiencyByProduct = append(in.EfficiencyByProduct, model.ProductEfficiency{ProductType: products[i], AvgEfficiency: s.jitter(f.base, f.half)})
	}
	for i, f := range productEnergy {
		in.EnergyByProduct = append(in.EnergyByProduct, model.ProductEnergy{ProductType: products[i], AvgEnergyConsumption: s.jitter(f.base, f.half)})
	}
	for i, f := range machineDefects {
		in.DefectsByMachine = append(in.DefectsByMachine, model.MachineDefects{MachineID: i + 1, AvgDefectRate: s.jitter(f.base, f.half)})
	}

	in.Recommendations = Recommendations(in, energy)
	return in
}

// Recommendations returns the six recommendations, each built from the extreme
// of one table.
func Recommendations(in model.ProductionInsights, energy model.EnergyBundle) []string {
	worst := extreme(in.EfficiencyByMachine, func(a, b model.MachineEfficiency) bool { return a.AvgEfficiency < b.AvgEfficiency })
	best := extreme(in.EfficiencyByMachine, func(a, b model.MachineEfficiency) bool { return a.AvgEfficiency > b.AvgEfficiency })
	product := extreme(in.EfficiencyByProduct, func(a, b model.ProductEfficiency) bool { return a.AvgEfficiency > b.AvgEfficiency })
	hungry := extreme(in.EnergyByProduct, func(a, b model.ProductEnergy) bool { return a.AvgEnergyConsumption > b.AvgEnergyConsumption })
	defects := extreme(in.DefectsByMachine, func(a, b model.MachineDefects) bool { return a.AvgDefectRate > b.AvgDefectRate })
	idle := extreme(energy.IdleTimeWaste, func(a, b model.IdleWaste) bool { return a.IdleTimePct > b.IdleTimePct })

	return []string{
		fmt.Sprintf("Machine %d is a bottleneck with %.1f%% efficiency. Consider maintenance or load redistribution.", worst.MachineID, worst.AvgEfficiency),
		fmt.Sprintf("Produce %s on Machine %d for best efficiency (%.1f%%).", product.ProductType, best.MachineID, best.AvgEfficiency),
		fmt.Sprintf("%s consumes the most energy (%.1f kWh). Consider scheduling during off-peak hours.", hungry.ProductType, hungry.AvgEnergyConsumption),
		fmt.Sprintf("Machine %d has the highest defect rate (%.1f%%). Quality inspection recommended.", defects.MachineID, defects.AvgDefectRate),
		fmt.Sprintf("Machine %d has %.1f%% idle time, wasting %.1f kWh. Potential savings: $%.2f/week.", idle.MachineID, idle.IdleTimePct, idle.EnergyWasteKWh, idle.PotentialSavingsUSD),
		fmt.Sprintf("Reducing idle time across all machines could save approximately $%.2f per year.", energy.ROI.EnergySavingsPerYear),
	}
}

// extreme returns the first element no other element beats. Zero value on empty input.
func extreme[T any](items []T, better func(a, b T) bool) T {
	var out T
	for i, it := range items {
		if i == 0 || better(it, out) {
			out = it
		}
	}
	return out
}
