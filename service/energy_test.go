package service

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

func TestIdleWasteScenarioMachine5(t *testing.T) {
	w := IdleWasteFor(model.MachineSnapshot{MachineID: 5, EnergyKW: 16.5, IdleTimePct: 25, Load: 90})
	if !almost(w.IdleHours, 42.0, 1e-9) {
		t.Fatalf("idle hours: got %.3f want 42.0", w.IdleHours)
	}
	if !almost(w.HourlyIdleRate, 4.95, 1e-9) {
		t.Fatalf("hourly idle rate: got %.4f want 4.95", w.HourlyIdleRate)
	}
	if !almost(w.EnergyWasteKWh, 207.9, 1e-9) {
		t.Fatalf("waste: got %.3f want 207.9", w.EnergyWasteKWh)
	}
	if !almost(w.PotentialSavingsUSD, 24.95, 1e-9) {
		t.Fatalf("savings: got %.3f want 24.95", w.PotentialSavingsUSD)
	}
}

func TestEfficiencyScoreNotClamped(t *testing.T) {
	e := EfficiencyFor(model.MachineSnapshot{MachineID: 9, EnergyKW: 30, Load: 40, IdleTimePct: 50})
	if e.EfficiencyScore >= 0 {
		t.Fatalf("expected a negative score to be kept, got %.1f", e.EfficiencyScore)
	}
	if !almost(e.EnergyPerUnit, 112.5, 1e-9) {
		t.Fatalf("energy per unit: got %.2f want 112.5", e.EnergyPerUnit)
	}
}

func TestROIRecomputes(t *testing.T) {
	s := newFixed(0.5)
	a := s.GenerateEnergyBundle()
	b := s.GenerateEnergyBundle()
	if !reflect.DeepEqual(a.ROI, b.ROI) {
		t.Fatalf("ROI not deterministic under fixed draws: %+v vs %+v", a.ROI, b.ROI)
	}

	var weekly float64
	for _, w := range a.IdleTimeWaste {
		weekly += w.PotentialSavingsUSD
	}
	total := weekly*52 + MaintenanceSavingsPerYear
	if !almost(a.ROI.ROIYears, round(InitialInvestment/total, 2), 1e-9) {
		t.Fatalf("roi years: got %.2f want %.2f", a.ROI.ROIYears, round(InitialInvestment/total, 2))
	}
	if !almost(a.ROI.TotalSavingsPerYear, round(total, 2), 1e-6) {
		t.Fatalf("total savings: got %.2f want %.2f", a.ROI.TotalSavingsPerYear, total)
	}

	months := InitialInvestment / total * 12
	wantPayback := testNow.Add(time.Duration(months * 30 * 24 * float64(time.Hour)))
	if !a.ROI.PaybackDate.Equal(wantPayback) {
		t.Fatalf("payback: got %s want %s", a.ROI.PaybackDate, wantPayback)
	}
}

func TestDailyEnergyWeekendFactor(t *testing.T) {
	s := newFixed(0.5)
	bundle := s.EnergyBundleFor([]model.MachineSnapshot{{MachineID: 1, EnergyKW: 10, Load: 80, IdleTimePct: 10}})
	days := bundle.DailyEnergyByMachine[0].DailyEnergy
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[6].Date != "2024-03-13" {
		t.Fatalf("expected last day to be today, got %s", days[6].Date)
	}
	for _, d := range days {
		day, _ := time.Parse(time.DateOnly, d.Date)
		want := 240.0
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			want = 168.0
		}
		if !almost(d.EnergyKWh, want, 1e-9) {
			t.Fatalf("%s: got %.2f want %.2f", d.Date, d.EnergyKWh, want)
		}
	}
}

func TestAlertsFixedSetAndOrder(t *testing.T) {
	s := newFixed(0.5)
	alerts := s.GenerateAlerts()

	// midpoint draws: abnormal energy lands on machine 3, no random anomaly alert
	want := []struct {
		typ model.AlertType
		id  int
	}{
		{model.AlertWarning, 3},
		{model.AlertEnergy, 3},
		{model.AlertMaintenance, 5},
		{model.AlertEnergy, 5},
		{model.AlertCritical, 5},
	}
	if len(alerts) != len(want) {
		t.Fatalf("expected %d alerts, got %d: %+v", len(want), len(alerts), alerts)
	}
	for i, w := range want {
		if alerts[i].Type != w.typ || alerts[i].MachineID != w.id {
			t.Fatalf("alert %d: got %s/%d want %s/%d", i, alerts[i].Type, alerts[i].MachineID, w.typ, w.id)
		}
		if alerts[i].ID == "" {
			t.Fatalf("alert %d has no id", i)
		}
	}
	if !strings.Contains(alerts[3].Message, "High idle time on Machine 5") {
		t.Fatalf("unexpected idle alert message %q", alerts[3].Message)
	}
}

func TestAlertsInvariants(t *testing.T) {
	s := NewService(WithSeed(2024), WithClock(fixedClock))
	for run := 0; run < 2000; run++ {
		alerts := s.GenerateAlerts()
		fixed := map[model.AlertType]int{}
		energy := map[int]int{}
		for i, a := range alerts {
			if i > 0 && a.Timestamp.Before(alerts[i-1].Timestamp) {
				t.Fatalf("run %d: alerts not sorted ascending", run)
			}
			switch a.Type {
			case model.AlertCritical, model.AlertMaintenance, model.AlertWarning:
				fixed[a.Type]++
			case model.AlertEnergy:
				energy[a.MachineID]++
				if energy[a.MachineID] > 1 {
					t.Fatalf("run %d: two energy alerts for machine %d", run, a.MachineID)
				}
			case model.AlertAnomaly:
				want := anomalyPriority(a.MachineID)
				if a.Priority != want {
					t.Fatalf("run %d: anomaly priority %s want %s", run, a.Priority, want)
				}
			}
		}
		if fixed[model.AlertCritical] != 1 || fixed[model.AlertMaintenance] != 1 || fixed[model.AlertWarning] != 1 {
			t.Fatalf("run %d: missing fixed alerts: %v", run, fixed)
		}
	}
}

func TestRecommendationsUseExtremes(t *testing.T) {
	in := model.ProductionInsights{
		EfficiencyByMachine: []model.MachineEfficiency{{MachineID: 1, AvgEfficiency: 80}, {MachineID: 2, AvgEfficiency: 95}, {MachineID: 3, AvgEfficiency: 60}},
		EfficiencyByProduct: []model.ProductEfficiency{{ProductType: "Product A", AvgEfficiency: 70}, {ProductType: "Product C", AvgEfficiency: 91}},
		EnergyByProduct:     []model.ProductEnergy{{ProductType: "Product B", AvgEnergyConsumption: 140}, {ProductType: "Product E", AvgEnergyConsumption: 120}},
		DefectsByMachine:    []model.MachineDefects{{MachineID: 1, AvgDefectRate: 0.5}, {MachineID: 4, AvgDefectRate: 4.2}},
	}
	energy := model.EnergyBundle{
		IdleTimeWaste: []model.IdleWaste{{MachineID: 2, IdleTimePct: 30, EnergyWasteKWh: 100, PotentialSavingsUSD: 12}},
		ROI:           model.ROI{EnergySavingsPerYear: 1234.5},
	}
	recs := Recommendations(in, energy)
	if len(recs) != 6 {
		t.Fatalf("expected 6 recommendations, got %d", len(recs))
	}
	checks := []string{
		"Machine 3 is a bottleneck with 60.0% efficiency",
		"Produce Product C on Machine 2 for best efficiency (95.0%)",
		"Product B consumes the most energy (140.0 kWh)",
		"Machine 4 has the highest defect rate (4.2%)",
		"Machine 2 has 30.0% idle time, wasting 100.0 kWh. Potential savings: $12.00/week.",
		"save approximately $1234.50 per year",
	}
	for i, c := range checks {
		if !strings.Contains(recs[i], c) {
			t.Fatalf("recommendation %d: %q does not contain %q", i, recs[i], c)
		}
	}
}

func TestSummaryFromSnapshots(t *testing.T) {
	s := newFixed(0.5)
	machines := s.GenerateMachineSnapshots()
	energy := s.EnergyBundleFor(machines)
	sum := s.SummaryFor(machines, energy)

	if sum.TotalMachines != 5 || sum.HealthyMachines != 3 || sum.WarningMachines != 1 || sum.CriticalMachines != 1 {
		t.Fatalf("unexpected counts %+v", sum)
	}
	if !almost(sum.AvgHealthScore, 75.8, 1e-9) {
		t.Fatalf("avg health: got %.3f want 75.8", sum.AvgHealthScore)
	}
	if sum.RecentAnomalies != 2 {
		t.Fatalf("recent anomalies: got %d want 2", sum.RecentAnomalies)
	}
	if sum.TotalEnergyConsumption != 4250 {
		t.Fatalf("energy consumption: got %.1f want 4250", sum.TotalEnergyConsumption)
	}
	wantDays := int(round(InitialInvestment/(energy.ROI.TotalSavingsPerYear/365), 0))
	if sum.EstimatedROIDays != wantDays {
		t.Fatalf("roi days: got %d want %d", sum.EstimatedROIDays, wantDays)
	}
}

func TestPlantRollup(t *testing.T) {
	s := newFixed(0.5)
	rollup := s.GeneratePlantRollup()
	if len(rollup.Plants) != 2 {
		t.Fatalf("expected 2 plants, got %d", len(rollup.Plants))
	}
	p1, p2 := rollup.Plants[0], rollup.Plants[1]
	if p1.TotalMachines != 3 || p1.HealthyMachines != 2 || p1.WarningMachines != 1 || p1.CriticalMachines != 0 {
		t.Fatalf("plant 1 counts: %+v", p1)
	}
	if p2.TotalMachines != 2 || p2.HealthyMachines != 1 || p2.CriticalMachines != 1 {
		t.Fatalf("plant 2 counts: %+v", p2)
	}
	if !almost(p2.AvgHealthScore, (88+45)/2.0, 1e-9) {
		t.Fatalf("plant 2 health: got %.2f", p2.AvgHealthScore)
	}
	if !almost(p2.AvgEfficiency, (88+65)/2.0, 1e-9) {
		t.Fatalf("plant 2 efficiency: got %.2f", p2.AvgEfficiency)
	}

	var perDay [6]float64
	for _, e := range s.EnergyBundleFor(s.GenerateMachineSnapshots()).DailyEnergyByMachine {
		var total float64
		for _, d := range e.DailyEnergy {
			total += d.EnergyKWh
		}
		perDay[e.MachineID] = total / float64(len(e.DailyEnergy))
	}
	if want := (perDay[4] + perDay[5]) / 2; !almost(p2.AvgEnergyConsumption, want, 1e-9) {
		t.Fatalf("plant 2 energy: got %.2f want mean %.2f", p2.AvgEnergyConsumption, want)
	}
	if want := (perDay[1] + perDay[2] + perDay[3]) / 3; !almost(p1.AvgEnergyConsumption, want, 1e-9) {
		t.Fatalf("plant 1 energy: got %.2f want mean %.2f", p1.AvgEnergyConsumption, want)
	}
	if rollup.MachineToPlant[3] != 1 || rollup.MachineToPlant[5] != 2 {
		t.Fatalf("unexpected membership %v", rollup.MachineToPlant)
	}
}

func TestGenerateBatchIsConsistent(t *testing.T) {
	s := newFixed(0.5)
	focus := model.Focus{MachineID: 3, Metric: model.MetricVibration}
	batch := s.Generate(focus, 2)

	if batch.BatchID == "" || !batch.GeneratedAt.Equal(testNow) {
		t.Fatalf("batch header not set: %q %s", batch.BatchID, batch.GeneratedAt)
	}
	if batch.Focus != focus || len(batch.SensorHistory) != 48 || len(batch.Anomalies) != 2 || batch.RUL.MachineID != 3 {
		t.Fatalf("focus view not applied: %+v", batch.Focus)
	}
	if len(batch.Energy.IdleTimeWaste) != len(batch.Machines) {
		t.Fatalf("energy not derived from the batch machines")
	}
	for i, m := range batch.Machines {
		if batch.Energy.IdleTimeWaste[i].IdleTimePct != m.IdleTimePct {
			t.Fatalf("machine %d idle pct differs between snapshot and energy bundle", m.MachineID)
		}
	}
}

func TestFilterAndSortMachines(t *testing.T) {
	s := newFixed(0.5)
	machines := s.GenerateMachineSnapshots()

	healthy := FilterMachines(machines, model.StatusHealthy)
	if len(healthy) != 3 {
		t.Fatalf("expected 3 healthy machines, got %d", len(healthy))
	}
	byHealth := SortMachines(machines, "health")
	if byHealth[0].MachineID != 1 || byHealth[4].MachineID != 5 {
		t.Fatalf("unexpected health order: %d..%d", byHealth[0].MachineID, byHealth[4].MachineID)
	}
	byEnergy := SortMachines(machines, "energy")
	if byEnergy[0].MachineID != 4 {
		t.Fatalf("expected machine 4 to draw the least, got %d", byEnergy[0].MachineID)
	}
	if machines[0].MachineID != 1 {
		t.Fatalf("sort must not modify its input")
	}
	if RULTier(25) != model.StatusCritical || RULTier(165) != model.StatusHealthy || IdleTier(18) != model.StatusWarning {
		t.Fatalf("tier classification mismatch")
	}
}
