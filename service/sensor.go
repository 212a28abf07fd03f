package service

import (
	"math"
	"time"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

type metricShape struct {
	base, amplitude, noise, trend float64
}

type bounds struct {
	min, max float64
}

var metricShapes = map[model.Metric]metricShape{
	model.MetricTemperature: {65, 5, 2, 0.05},
	model.MetricVibration:   {0.5, 0.2, 0.1, 0.01},
	model.MetricLoad:        {75, 10, 5, 0.1},
	model.MetricRPM:         {2200, 200, 50, 0.5},
	model.MetricCurrent:     {35, 5, 2, 0.02},
	model.MetricEnergy:      {12, 4, 1, 0.03},
}

var metricBounds = map[model.Metric]bounds{
	model.MetricTemperature: {50, 100},
	model.MetricVibration:   {0.1, 3.0},
	model.MetricLoad:        {40, 95},
	model.MetricRPM:         {1000, 3500},
	model.MetricCurrent:     {20, 60},
	model.MetricEnergy:      {5, 25},
}

// healthFactor scales base and trend for degraded machines.
var healthFactor = map[int]float64{1: 1.0, 2: 1.0, 3: 1.2, 4: 1.0, 5: 1.5}

const spikeProbability = 0.005

// MetricBounds returns the clamp range of a metric.
func MetricBounds(m model.Metric) (min, max float64) {
	b, ok := metricBounds[m]
	if !ok {
		b = metricBounds[model.MetricTemperature]
	}
	return b.min, b.max
}

// GenerateSensorSeries returns days*24 hourly points ending at the current hour.
func (s *Service) GenerateSensorSeries(machineID int, metric model.Metric, days int) []model.SensorPoint {
	var (
		shape  metricShape
		bnd    bounds
		factor float64
		total  int
		now    time.Time
		ok     bool
	)

	if days <= 0 {
		days = DefaultSeriesDays
	}
	if shape, ok = metricShapes[metric]; !ok {
		metric = model.MetricTemperature
		shape = metricShapes[metric]
	}
	bnd = metricBounds[metric]
	if factor, ok = healthFactor[machineID]; !ok {
		factor = 1.0
	}

	total = days * 24
	now = s.now()
	points := make([]model.SensorPoint, 0, total)

	for i := 0; i < total; i++ {
		ts := now.Add(-time.Duration(total-i) * time.Hour)
		hour := ts.Hour()

		workingHours := 0.7
		if hour >= 8 && hour <= 18 {
			workingHours = 1.0
		}
		weekend := 1.0
		if isWeekend(ts) {
			weekend = 0.8
		}
		dailyCycle := math.Sin(2 * math.Pi * float64(hour) / 24)
		trend := float64(i) / float64(total) * shape.trend * factor
		noise := (s.rnd.Float64() - 0.5) * shape.noise
		spike := 0.0
		if s.rnd.Float64() < spikeProbability {
			spike = s.rnd.Float64() * shape.amplitude
		}

		value := shape.base*factor +
			dailyCycle*shape.amplitude*workingHours*weekend +
			trend + noise + spike

		points = append(points, model.SensorPoint{
			Timestamp: ts,
			Value:     clamp(value, bnd.min, bnd.max),
		})
	}

	return points
}
