package cmd

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Go-routine-4595/faultzero-sim/adapters/api"
	"github.com/Go-routine-4595/faultzero-sim/adapters/controller"
	event_hub "github.com/Go-routine-4595/faultzero-sim/adapters/gateway/event-hub"
	"github.com/Go-routine-4595/faultzero-sim/adapters/gateway/kafka"
	"github.com/Go-routine-4595/faultzero-sim/adapters/gateway/mqtt"
	"github.com/Go-routine-4595/faultzero-sim/adapters/gateway/rabbitmq"
	"github.com/Go-routine-4595/faultzero-sim/adapters/report"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	controller.ControllerConfig `yaml:"ControllerConfig"`
	api.ServerConfig            `yaml:"ServerConfig"`
	report.ReportConfig         `yaml:"ReportConfig"`
	mqtt.MqttConf               `yaml:"MqttConf"`
	rabbitmq.RabbitMQConfig     `yaml:"RabbitConfig"`
	event_hub.EventHubConfig    `yaml:"EventHubConfig"`
	kafka.KafkaConfig           `yaml:"KafkaConfig"`
	// Gateways lists the alert sinks to start: display, mqtt, rabbitmq, eventhub, kafka.
	Gateways []string `yaml:"Gateways"`
	LogLevel int      `yaml:"LogLevel"`
}

func defaultConfig() Config {
	return Config{
		ControllerConfig: controller.ControllerConfig{
			RefreshInterval: 60,
			RefreshingHold:  500,
			SeriesDays:      7,
			MachineID:       1,
			Metric:          "temperature",
		},
		ServerConfig: api.ServerConfig{Addr: ":8080"},
		ReportConfig: report.ReportConfig{OutputDir: "reports", PageSize: string(report.PageA4)},
	}
}

// loadConfig reads path on top of the defaults. A missing file is only an
// error when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	conf := defaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return conf, nil
		}
		return conf, errors.Join(err, errors.New("open config file "+path))
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&conf)
	if err != nil {
		return conf, errors.Join(err, errors.New("decode config file "+path))
	}
	return conf, nil
}

func newLogger(logLevel int) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(zerolog.InfoLevel+zerolog.Level(logLevel)).
		With().Timestamp().Int("pid", os.Getpid()).Logger()
}
