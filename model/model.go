package model

import (
	"errors"
	"fmt"
	"time"
)

// Status is the condition tier of a machine.
type Status string

const (
	StatusHealthy  Status = "Healthy"
	StatusWarning  Status = "Warning"
	StatusCritical Status = "Critical"
)

// StatusForHealth maps a health score to its tier.
func StatusForHealth(score float64) Status {
	switch {
	case score >= 80:
		return StatusHealthy
	case score >= 60:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Metric names a sensor channel.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricVibration   Metric = "vibration"
	MetricLoad        Metric = "load"
	MetricRPM         Metric = "rpm"
	MetricCurrent     Metric = "current"
	MetricEnergy      Metric = "energy"
)

var ErrUnknownMetric = errors.New("unknown metric")

// ParseMetric validates a metric name coming from the outside world.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricTemperature, MetricVibration, MetricLoad, MetricRPM, MetricCurrent, MetricEnergy:
		return m, nil
	}
	return "", errors.Join(ErrUnknownMetric, fmt.Errorf("metric %q", s))
}

type AlertType string

const (
	AlertCritical    AlertType = "critical"
	AlertMaintenance AlertType = "maintenance"
	AlertWarning     AlertType = "warning"
	AlertEnergy      AlertType = "energy"
	AlertAnomaly     AlertType = "anomaly"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type MachineSnapshot struct {
	MachineID   int     `json:"machine_id"`
	HealthScore float64 `json:"health_score"`
	Status      Status  `json:"status"`
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
	Load        float64 `json:"load"`
	RPM         float64 `json:"rpm"`
	Current     float64 `json:"current"`
	EnergyKW    float64 `json:"energy_kw"`
	IdleTimePct float64 `json:"idle_time_pct"`
	RULDays     float64 `json:"rul_days"`
}

type SensorPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type Anomaly struct {
	MachineID    int       `json:"machine_id"`
	Timestamp    time.Time `json:"timestamp"`
	Temperature  float64   `json:"temperature"`
	Vibration    float64   `json:"vibration"`
	Load         float64   `json:"load"`
	RPM          float64   `json:"rpm"`
	Current      float64   `json:"current"`
	EnergyKW     float64   `json:"energy_kw"`
	AnomalyScore float64   `json:"anomaly_score"`
	HealthScore  float64   `json:"health_score"`
}

type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	MachineID int       `json:"machine_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Priority  Priority  `json:"priority"`
}

type DashboardSummary struct {
	TotalMachines          int       `json:"total_machines"`
	HealthyMachines        int       `json:"healthy_machines"`
	WarningMachines        int       `json:"warning_machines"`
	CriticalMachines       int       `json:"critical_machines"`
	AvgHealthScore         float64   `json:"avg_health_score"`
	RecentAnomalies        int       `json:"recent_anomalies"`
	TotalBatches           float64   `json:"total_batches"`
	AvgEfficiency          float64   `json:"avg_efficiency"`
	TotalDefects           float64   `json:"total_defects"`
	TotalEnergyConsumption float64   `json:"total_energy_consumption"`
	PotentialEnergySavings float64   `json:"potential_energy_savings"`
	EstimatedROIDays       int       `json:"estimated_roi_days"`
	LastUpdated            time.Time `json:"last_updated"`
}

type DailyEnergy struct {
	Date      string  `json:"date"`
	EnergyKWh float64 `json:"energy_kwh"`
	MachineID int     `json:"machine_id"`
}

type MachineEnergy struct {
	MachineID   int           `json:"machine_id"`
	DailyEnergy []DailyEnergy `json:"daily_energy"`
}

type IdleWaste struct {
	MachineID           int     `json:"machine_id"`
	HourlyIdleRate      float64 `json:"hourly_idle_rate"`
	IdleHours           float64 `json:"idle_hours"`
	IdleTimePct         float64 `json:"idle_time_pct"`
	EnergyWasteKWh      float64 `json:"energy_waste_kwh"`
	PotentialSavingsUSD float64 `json:"potential_savings_usd"`
}

// EnergyEfficiency scores are deliberately left unclamped and may fall
// outside [0,100].
type EnergyEfficiency struct {
	MachineID       int     `json:"machine_id"`
	EnergyPerUnit   float64 `json:"energy_per_unit"`
	EfficiencyScore float64 `json:"efficiency_score"`
}

type ROI struct {
	InitialInvestment         float64   `json:"initial_investment"`
	EnergySavingsPerYear      float64   `json:"energy_savings_per_year"`
	MaintenanceSavingsPerYear float64   `json:"maintenance_savings_per_year"`
	TotalSavingsPerYear       float64   `json:"total_savings_per_year"`
	ROIYears                  float64   `json:"roi_years"`
	ROIMonths                 float64   `json:"roi_months"`
	ROIPercent                float64   `json:"roi_percent"`
	PaybackDate               time.Time `json:"payback_date"`
}

type EnergyBundle struct {
	DailyEnergyByMachine []MachineEnergy    `json:"daily_energy_by_machine"`
	IdleTimeWaste        []IdleWaste        `json:"idle_time_waste"`
	EnergyEfficiency     []EnergyEfficiency `json:"energy_efficiency"`
	ROI                  ROI                `json:"roi_data"`
}

type MachineEfficiency struct {
	MachineID     int     `json:"machine_id"`
	AvgEfficiency float64 `json:"avg_efficiency"`
}

type ProductEfficiency struct {
	ProductType   string  `json:"product_type"`
	AvgEfficiency float64 `json:"avg_efficiency"`
}

type ProductEnergy struct {
	ProductType          string  `json:"product_type"`
	AvgEnergyConsumption float64 `json:"avg_energy_consumption"`
}

type MachineDefects struct {
	MachineID     int     `json:"machine_id"`
	AvgDefectRate float64 `json:"avg_defect_rate"`
}

type ProductionInsights struct {
	EfficiencyByMachine []MachineEfficiency `json:"efficiency_by_machine"`
	EfficiencyByProduct []ProductEfficiency `json:"efficiency_by_product"`
	EnergyByProduct     []ProductEnergy     `json:"energy_by_product"`
	DefectsByMachine    []MachineDefects    `json:"defects_by_machine"`
	Recommendations     []string            `json:"recommendations"`
}

type RULPrediction struct {
	MachineID   int       `json:"machine_id"`
	RULDays     float64   `json:"rul_days"`
	HealthScore float64   `json:"health_score"`
	LastUpdated time.Time `json:"last_updated"`
}

type Plant struct {
	PlantID              int     `json:"plant_id"`
	PlantName            string  `json:"plant_name"`
	Location             string  `json:"location"`
	MachineIDs           []int   `json:"machine_ids"`
	TotalMachines        int     `json:"total_machines"`
	HealthyMachines      int     `json:"healthy_machines"`
	WarningMachines      int     `json:"warning_machines"`
	CriticalMachines     int     `json:"critical_machines"`
	AvgHealthScore       float64 `json:"avg_health_score"`
	AvgEnergyConsumption float64 `json:"avg_energy_consumption"`
	AvgEfficiency        float64 `json:"avg_efficiency"`
}

type PlantRollup struct {
	Plants         []Plant     `json:"plants"`
	MachineToPlant map[int]int `json:"machine_to_plant"`
}

// Focus is the (machine, metric) pair the monitoring view is looking at.
type Focus struct {
	MachineID int    `json:"machine_id"`
	Metric    Metric `json:"metric"`
}

// FocusView holds the part of a batch that depends on the focus pair.
type FocusView struct {
	Focus         Focus         `json:"focus"`
	SensorHistory []SensorPoint `json:"sensor_history"`
	Anomalies     []Anomaly     `json:"anomalies"`
	RUL           RULPrediction `json:"rul_prediction"`
}

// Telemetry is one refresh batch. It is always replaced as a whole.
type Telemetry struct {
	BatchID       string             `json:"batch_id"`
	GeneratedAt   time.Time          `json:"generated_at"`
	Focus         Focus              `json:"focus"`
	Summary       DashboardSummary   `json:"dashboard_summary"`
	Machines      []MachineSnapshot  `json:"machines"`
	Alerts        []Alert            `json:"alerts"`
	SensorHistory []SensorPoint      `json:"sensor_history"`
	Anomalies     []Anomaly          `json:"anomalies"`
	Insights      ProductionInsights `json:"production_insights"`
	RUL           RULPrediction      `json:"rul_prediction"`
	Energy        EnergyBundle       `json:"energy_data"`
	Plants        PlantRollup        `json:"plant_data"`
}

// WithFocus returns a copy of t where the focus dependent fields are taken from v.
func (t Telemetry) WithFocus(v FocusView) Telemetry {
	t.Focus = v.Focus
	t.SensorHistory = v.SensorHistory
	t.Anomalies = v.Anomalies
	t.RUL = v.RUL
	return t
}

// AlertBatch is what notification gateways publish.
type AlertBatch struct {
	BatchID     string    `json:"batch_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Alerts      []Alert   `json:"alerts"`
}

type IGateway interface {
	SendAlerts(batch AlertBatch) error
}
