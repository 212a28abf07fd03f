package report

import (
	"errors"
	"fmt"

	"github.com/Go-routine-4595/faultzero-sim/service"
)

var (
	ErrNoMachinesSelected = errors.New("please select at least one machine to include in the report")
	ErrInvalidConfig      = errors.New("invalid report configuration")
	ErrGenerationFailed   = errors.New("failed to generate report, please try again")
)

const DefaultTitle = "Machine Status & Performance Report"

// ReportConfig is the service level configuration, read from the config file.
type ReportConfig struct {
	OutputDir string `yaml:"OutputDir"`
	PageSize  string `yaml:"PageSize"`
}

type Type string

const (
	TypeComprehensive Type = "comprehensive"
	TypeExecutive     Type = "executive"
	TypeMaintenance   Type = "maintenance"
	TypeEnergy        Type = "energy"
)

type DateRange string

const (
	Range7Days  DateRange = "7days"
	Range30Days DateRange = "30days"
	Range90Days DateRange = "90days"
	RangeCustom DateRange = "custom"
)

func (r DateRange) Label() string {
	switch r {
	case Range7Days:
		return "Last 7 Days"
	case Range30Days:
		return "Last 30 Days"
	case Range90Days:
		return "Last 90 Days"
	case RangeCustom:
		return "Custom Range"
	}
	return "Last 30 Days"
}

// Config describes one report request.
type Config struct {
	ReportType             Type      `json:"report_type" yaml:"ReportType"`
	DateRange              DateRange `json:"date_range" yaml:"DateRange"`
	IncludeCharts          bool      `json:"include_charts" yaml:"IncludeCharts"`
	IncludeMachineDetails  bool      `json:"include_machine_details" yaml:"IncludeMachineDetails"`
	IncludeAlerts          bool      `json:"include_alerts" yaml:"IncludeAlerts"`
	IncludeEnergyAnalysis  bool      `json:"include_energy_analysis" yaml:"IncludeEnergyAnalysis"`
	IncludeRecommendations bool      `json:"include_recommendations" yaml:"IncludeRecommendations"`
	CustomerName           string    `json:"customer_name" yaml:"CustomerName"`
	ReportTitle            string    `json:"report_title" yaml:"ReportTitle"`
	ReportDescription      string    `json:"report_description" yaml:"ReportDescription"`
	// SelectedMachines nil means every machine.
	SelectedMachines []int `json:"selected_machines" yaml:"SelectedMachines"`
	// PageSize empty means the generator's page size.
	PageSize PageSize `json:"page_size" yaml:"PageSize"`
}

// DefaultConfig is a comprehensive report over all machines. Decode requests
// on top of it so omitted fields keep their defaults.
func DefaultConfig() Config {
	return Config{
		ReportType:             TypeComprehensive,
		DateRange:              Range30Days,
		IncludeCharts:          true,
		IncludeMachineDetails:  true,
		IncludeAlerts:          true,
		IncludeEnergyAnalysis:  true,
		IncludeRecommendations: true,
		ReportTitle:            DefaultTitle,
	}
}

func (c Config) Validate() error {
	switch c.ReportType {
	case TypeComprehensive, TypeExecutive, TypeMaintenance, TypeEnergy:
	default:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("report type %q", c.ReportType))
	}
	switch c.DateRange {
	case Range7Days, Range30Days, Range90Days, RangeCustom:
	default:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("date range %q", c.DateRange))
	}
	switch c.PageSize {
	case PageA4, PageLetter:
	default:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("page size %q", c.PageSize))
	}
	if c.SelectedMachines != nil && len(c.SelectedMachines) == 0 {
		return ErrNoMachinesSelected
	}
	for _, id := range c.SelectedMachines {
		if !service.KnownMachine(id) {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("machine %d", id))
		}
	}
	return nil
}

func (c Config) selected(id int) bool {
	if c.SelectedMachines == nil {
		return true
	}
	for _, m := range c.SelectedMachines {
		if m == id {
			return true
		}
	}
	return false
}
