package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	conf, err := loadConfig(filepath.Join(t.TempDir(), "config.yaml"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.RefreshInterval != 60 || conf.Addr != ":8080" || conf.OutputDir != "reports" {
		t.Fatalf("expected built in defaults, got %+v", conf)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Fatalf("expected an error for a missing explicit config")
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
ControllerConfig:
  RefreshInterval: 15
  MachineID: 5
  Metric: vibration
ServerConfig:
  Addr: ":9090"
KafkaConfig:
  Brokers: ["kafka:9092"]
  Topic: faultzero.alerts
Gateways: [display, kafka]
LogLevel: -1
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	conf, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.RefreshInterval != 15 || conf.ControllerConfig.MachineID != 5 || conf.ControllerConfig.Metric != "vibration" {
		t.Fatalf("controller config not decoded: %+v", conf.ControllerConfig)
	}
	if conf.SeriesDays != 7 || conf.RefreshingHold != 500 {
		t.Fatalf("defaults lost for omitted keys: %+v", conf.ControllerConfig)
	}
	if conf.Addr != ":9090" || conf.KafkaConfig.Topic != "faultzero.alerts" || len(conf.Brokers) != 1 {
		t.Fatalf("adapter configs not decoded: %+v %+v", conf.ServerConfig, conf.KafkaConfig)
	}
	if len(conf.Gateways) != 2 || conf.LogLevel != -1 {
		t.Fatalf("unexpected gateways %v log level %d", conf.Gateways, conf.LogLevel)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ControllerConfig: [1, 2"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path, true); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestFocusFrom(t *testing.T) {
	conf := defaultConfig()
	tests := []struct {
		name    string
		machine int
		metric  string
		days    int
		want    model.Focus
		wantErr bool
	}{
		{"defaults", 0, "", 0, model.Focus{MachineID: 1, Metric: model.MetricTemperature}, false},
		{"flags", 4, "rpm", 2, model.Focus{MachineID: 4, Metric: model.MetricRPM}, false},
		{"unknown machine", 6, "", 0, model.Focus{}, true},
		{"unknown metric", 2, "pressure", 0, model.Focus{}, true},
		{"negative days", 2, "", -3, model.Focus{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := focusFrom(conf, tt.machine, tt.metric, tt.days)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSnapshotCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"snapshot", "--config", "", "--machine", "3", "--metric", "load", "--days", "2", "--seed", "9"})
	defer rootCmd.SetArgs(nil)

	// an empty explicit path must fail rather than silently use defaults
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected an error for an empty explicit config path")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("LogLevel: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out.Reset()
	rootCmd.SetArgs([]string{"snapshot", "--config", path, "--machine", "3", "--metric", "load", "--days", "2", "--seed", "9"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got model.Telemetry
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not telemetry json: %v", err)
	}
	if got.Focus.MachineID != 3 || got.Focus.Metric != model.MetricLoad || len(got.SensorHistory) != 48 {
		t.Fatalf("unexpected focus %+v with %d points", got.Focus, len(got.SensorHistory))
	}
	if len(got.Machines) != 5 || len(got.Anomalies) != 2 {
		t.Fatalf("unexpected batch: %d machines, %d anomalies", len(got.Machines), len(got.Anomalies))
	}
}
