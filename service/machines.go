package service

import (
	"math"
	"sort"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

// field is a base value and the half width of its uniform jitter.
type field struct {
	base, half float64
}

type machineProfile struct {
	id          int
	status      model.Status
	health      field
	temperature field
	vibration   field
	load        field
	rpm         field
	current     field
	energyKW    field
	idlePct     field
	rulDays     field
}

var machineProfiles = []machineProfile{
	{1, model.StatusHealthy, field{90, 2.5}, field{65, 1.5}, field{0.3, 0.05}, field{75, 3}, field{2200, 50}, field{32, 1}, field{10.2, 0.5}, field{12, 1.5}, field{180, 5}},
	{2, model.StatusHealthy, field{85, 2.5}, field{68, 1.5}, field{0.4, 0.05}, field{80, 3}, field{2150, 50}, field{35, 1}, field{11.5, 0.5}, field{15, 1.5}, field{165, 5}},
	{3, model.StatusWarning, field{71, 2.5}, field{72, 1.5}, field{0.6, 0.075}, field{85, 3}, field{2050, 50}, field{38, 1}, field{13.8, 0.75}, field{18, 2}, field{95, 5}},
	{4, model.StatusHealthy, field{88, 2.5}, field{63, 1.5}, field{0.35, 0.05}, field{70, 3}, field{2300, 50}, field{30, 1}, field{9.8, 0.5}, field{14, 1.5}, field{200, 5}},
	{5, model.StatusCritical, field{45, 2.5}, field{78, 2}, field{1.2, 0.1}, field{90, 3}, field{1900, 50}, field{42, 1.5}, field{16.5, 1}, field{25, 2.5}, field{25, 2.5}},
}

// KnownMachine reports whether id names one of the simulated machines.
func KnownMachine(id int) bool {
	return id >= 1 && id <= MachineCount
}

func (s *Service) sample(f field, m model.Metric) float64 {
	b := metricBounds[m]
	return clamp(s.jitter(f.base, f.half), b.min, b.max)
}

// GenerateMachineSnapshots returns the five machines with jittered readings.
func (s *Service) GenerateMachineSnapshots() []model.MachineSnapshot {
	out := make([]model.MachineSnapshot, 0, len(machineProfiles))
	for _, p := range machineProfiles {
		out = append(out, model.MachineSnapshot{
			MachineID:   p.id,
			HealthScore: clamp(s.jitter(p.health.base, p.health.half), 0, 100),
			Status:      p.status,
			Temperature: s.sample(p.temperature, model.MetricTemperature),
			Vibration:   s.sample(p.vibration, model.MetricVibration),
			Load:        s.sample(p.load, model.MetricLoad),
			RPM:         s.sample(p.rpm, model.MetricRPM),
			Current:     s.sample(p.current, model.MetricCurrent),
			EnergyKW:    s.sample(p.energyKW, model.MetricEnergy),
			IdleTimePct: clamp(s.jitter(p.idlePct.base, p.idlePct.half), 0, 100),
			RULDays:     math.Max(0, s.jitter(p.rulDays.base, p.rulDays.half)),
		})
	}
	return out
}

// RULTier classifies remaining useful life the way the overview colors it.
func RULTier(days float64) model.Status {
	switch {
	case days >= 150:
		return model.StatusHealthy
	case days >= 90:
		return model.StatusWarning
	default:
		return model.StatusCritical
	}
}

// IdleTier classifies idle time percentages.
func IdleTier(pct float64) model.Status {
	switch {
	case pct <= 15:
		return model.StatusHealthy
	case pct <= 20:
		return model.StatusWarning
	default:
		return model.StatusCritical
	}
}

// FilterMachines keeps the machines in the given status. An empty status keeps all.
func FilterMachines(machines []model.MachineSnapshot, status model.Status) []model.MachineSnapshot {
	out := make([]model.MachineSnapshot, 0, len(machines))
	for _, m := range machines {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

// SortMachines returns a sorted copy. Unknown keys sort by id.
// health and rul sort best first, temperature and energy lowest first.
func SortMachines(machines []model.MachineSnapshot, key string) []model.MachineSnapshot {
	out := append([]model.MachineSnapshot(nil), machines...)
	var less func(a, b model.MachineSnapshot) bool
	switch key {
	case "health":
		less = func(a, b model.MachineSnapshot) bool { return a.HealthScore > b.HealthScore }
	case "rul":
		less = func(a, b model.MachineSnapshot) bool { return a.RULDays > b.RULDays }
	case "temperature":
		less = func(a, b model.MachineSnapshot) bool { return a.Temperature < b.Temperature }
	case "energy":
		less = func(a, b model.MachineSnapshot) bool { return a.EnergyKW < b.EnergyKW }
	case "status":
		less = func(a, b model.MachineSnapshot) bool { return a.Status < b.Status }
	default:
		less = func(a, b model.MachineSnapshot) bool { return a.MachineID < b.MachineID }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
