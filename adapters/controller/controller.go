package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Go-routine-4595/faultzero-sim/model"
	"github.com/Go-routine-4595/faultzero-sim/service"
)

var ErrUnknownMachine = errors.New("unknown machine")

type ControllerConfig struct {
	// RefreshInterval in seconds
	RefreshInterval int `yaml:"RefreshInterval"`
	// RefreshingHold in milliseconds
	RefreshingHold int    `yaml:"RefreshingHold"`
	SeriesDays     int    `yaml:"SeriesDays"`
	MachineID      int    `yaml:"MachineID"`
	Metric         string `yaml:"Metric"`
}

// Synthesizer is what the controller needs from the telemetry generator.
type Synthesizer interface {
	Generate(focus model.Focus, days int) model.Telemetry
	GenerateFocus(focus model.Focus, days int) model.FocusView
}

// Observer is notified after every refresh, trigger is "startup", "timer" or "manual".
type Observer interface {
	ObserveRefresh(trigger string, took time.Duration, t model.Telemetry)
}

type Listener func(t model.Telemetry)

// Controller owns the current telemetry batch and the periodic refresh task.
type Controller struct {
	interval   time.Duration
	hold       time.Duration
	days       int
	synth      Synthesizer
	gateways   []model.IGateway
	observer   Observer
	logger     zerolog.Logger
	mu         sync.RWMutex
	state      model.Telemetry
	seq        uint64
	focus      model.Focus
	refreshing bool
	holdTimer  *time.Timer
	holdGen    uint64
	listeners  map[int]Listener
	nextID     int

	// notifyMu serializes delivery; delivered is the seq of the last batch handed to listeners.
	notifyMu  sync.Mutex
	delivered uint64
}

func NewController(conf ControllerConfig, synth Synthesizer, logger zerolog.Logger, gateways ...model.IGateway) *Controller {
	conf = withDefaults(conf)
	metric, err := model.ParseMetric(conf.Metric)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid focus metric in config, using temperature")
		metric = model.MetricTemperature
	}

	return &Controller{
		interval:  time.Duration(conf.RefreshInterval) * time.Second,
		hold:      time.Duration(conf.RefreshingHold) * time.Millisecond,
		days:      conf.SeriesDays,
		synth:     synth,
		gateways:  gateways,
		logger:    logger,
		focus:     model.Focus{MachineID: conf.MachineID, Metric: metric},
		listeners: make(map[int]Listener),
	}
}

func withDefaults(conf ControllerConfig) ControllerConfig {
	if conf.RefreshInterval <= 0 {
		conf.RefreshInterval = 60
	}
	if conf.RefreshingHold <= 0 {
		conf.RefreshingHold = 500
	}
	if conf.SeriesDays <= 0 {
		conf.SeriesDays = 7
	}
	if !service.KnownMachine(conf.MachineID) {
		conf.MachineID = 1
	}
	if conf.Metric == "" {
		conf.Metric = string(model.MetricTemperature)
	}
	return conf
}

// SetObserver installs the refresh observer. Call it before Start.
func (c *Controller) SetObserver(o Observer) {
	c.observer = o
}

// State returns the current batch.
func (c *Controller) State() model.Telemetry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Focus() model.Focus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.focus
}

// Refreshing is the cosmetic flag raised by ManualRefresh.
func (c *Controller) Refreshing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshing
}

// Subscribe registers fn for every new state. The returned func removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Watch subscribes fn and hands it the current state first. No newer batch can
// reach fn before the current one.
func (c *Controller) Watch(fn Listener) func() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	unsubscribe := c.Subscribe(fn)
	fn(c.State())
	return unsubscribe
}

// Refresh regenerates the whole batch for the current focus and replaces the state.
func (c *Controller) Refresh() model.Telemetry {
	return c.refresh("timer")
}

// ManualRefresh is the user triggered refresh. The refreshing flag is held for
// a short while whatever the refresh does; a new manual refresh restarts the hold.
func (c *Controller) ManualRefresh() model.Telemetry {
	c.mu.Lock()
	c.refreshing = true
	c.holdGen++
	gen := c.holdGen
	if c.holdTimer != nil {
		c.holdTimer.Stop()
	}
	c.holdTimer = time.AfterFunc(c.hold, func() {
		c.mu.Lock()
		if c.holdGen == gen {
			c.refreshing = false
		}
		c.mu.Unlock()
	})
	c.mu.Unlock()

	return c.refresh("manual")
}

func (c *Controller) refresh(trigger string) model.Telemetry {
	start := time.Now()

	c.mu.Lock()
	t := c.synth.Generate(c.focus, c.days)
	c.state = t
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	took := time.Since(start)
	c.logger.Debug().
		Str("batch", t.BatchID).
		Str("trigger", trigger).
		Int("alerts", len(t.Alerts)).
		Dur("took", took).
		Msg("telemetry refreshed")

	if c.observer != nil {
		c.observer.ObserveRefresh(trigger, took, t)
	}
	c.notify(seq, t)
	c.publish(t)
	return t
}

// UpdateFocus re-derives only the sensor history, anomalies and RUL.
func (c *Controller) UpdateFocus(machineID int, metric model.Metric) error {
	if !service.KnownMachine(machineID) {
		return errors.Join(ErrUnknownMachine, fmt.Errorf("machine %d", machineID))
	}
	if _, err := model.ParseMetric(string(metric)); err != nil {
		return err
	}

	c.mu.Lock()
	c.focus = model.Focus{MachineID: machineID, Metric: metric}
	view := c.synth.GenerateFocus(c.focus, c.days)
	c.state = c.state.WithFocus(view)
	c.seq++
	t, seq := c.state, c.seq
	c.mu.Unlock()

	c.logger.Info().Int("machine", machineID).Str("metric", string(metric)).Msg("focus updated")
	c.notify(seq, t)
	return nil
}

func (c *Controller) publish(t model.Telemetry) {
	if len(c.gateways) == 0 {
		return
	}
	batch := model.AlertBatch{BatchID: t.BatchID, GeneratedAt: t.GeneratedAt, Alerts: t.Alerts}
	for _, g := range c.gateways {
		if err := g.SendAlerts(batch); err != nil {
			c.logger.Error().Err(err).Str("batch", t.BatchID).Msg("failed to publish alerts")
		}
	}
}

// notify hands t to the listeners unless a newer state was already delivered.
func (c *Controller) notify(seq uint64, t model.Telemetry) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.delivered {
		c.logger.Debug().Str("batch", t.BatchID).Msg("superseded batch not delivered")
		return
	}
	c.delivered = seq

	c.mu.RLock()
	fns := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(t)
	}
}

// Start refreshes once and then on every tick until ctx is cancelled.
func (c *Controller) Start(ctx context.Context, wg *sync.WaitGroup) {
	c.refresh("startup")

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info().Msg("Controller: context received signal, shutting down...")
				return
			case <-ticker.C:
				c.refresh("timer")
			}
		}
	}()
}
