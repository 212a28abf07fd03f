package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const (
	// DefaultSeriesDays is the sensor history window when none is given.
	DefaultSeriesDays = 7
	// MachineCount is the size of the simulated fleet.
	MachineCount = 5
)

// Rand is the random source the synthesizer draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// lockedRand makes a *rand.Rand safe for concurrent callers.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Service synthesizes the mock fleet. Apart from its random source and clock it
// holds no state, every call builds fresh values.
type Service struct {
	rnd Rand
	now func() time.Time
}

type Option func(*Service)

func WithRand(r Rand) Option {
	return func(s *Service) { s.rnd = r }
}

func WithSeed(seed int64) Option {
	return func(s *Service) { s.rnd = &lockedRand{r: rand.New(rand.NewSource(seed))} }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(opts ...Option) *Service {
	s := &Service{
		rnd: &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate builds one self-consistent batch: energy, alerts, insights, summary
// and plants all derive from the same machine snapshot set.
func (s *Service) Generate(focus model.Focus, days int) model.Telemetry {
	var (
		machines []model.MachineSnapshot
		energy   model.EnergyBundle
		insights model.ProductionInsights
		t        model.Telemetry
	)

	machines = s.GenerateMachineSnapshots()
	energy = s.EnergyBundleFor(machines)
	insights = s.InsightsFor(energy)

	t = model.Telemetry{
		BatchID:     uuid.NewString(),
		GeneratedAt: s.now(),
		Summary:     s.SummaryFor(machines, energy),
		Machines:    machines,
		Alerts:      s.AlertsFor(energy),
		Insights:    insights,
		Energy:      energy,
		Plants:      s.PlantsFor(machines, energy, insights),
	}
	return t.WithFocus(s.GenerateFocus(focus, days))
}

// GenerateFocus rebuilds only the focus dependent part of a batch.
func (s *Service) GenerateFocus(focus model.Focus, days int) model.FocusView {
	return model.FocusView{
		Focus:         focus,
		SensorHistory: s.GenerateSensorSeries(focus.MachineID, focus.Metric, days),
		Anomalies:     s.GenerateAnomalies(focus.MachineID),
		RUL:           s.GenerateRULPrediction(focus.MachineID),
	}
}

// jitter returns base moved by a uniform offset in [-half, +half].
func (s *Service) jitter(base, half float64) float64 {
	return base + s.rnd.Float64()*2*half - half
}

// span returns base + uniform(0, width).
func (s *Service) span(base, width float64) float64 {
	return base + s.rnd.Float64()*width
}

// intn returns an int in [0, n).
func (s *Service) intn(n int) int {
	i := int(math.Floor(s.rnd.Float64() * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// ago returns a time uniformly placed within the last window.
func (s *Service) ago(now time.Time, window time.Duration) time.Time {
	return now.Add(-time.Duration(s.rnd.Float64() * float64(window)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
