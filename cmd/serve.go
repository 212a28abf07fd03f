package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Go-routine-4595/faultzero-sim/adapters/api"
	"github.com/Go-routine-4595/faultzero-sim/adapters/controller"
	"github.com/Go-routine-4595/faultzero-sim/adapters/gateway/display"
	event_hub "github.com/Go-routine-4595/faultzero-sim/adapters/gateway/event-hub"
	"github.com/Go-routine-4595/faultzero-sim/adapters/gateway/kafka"
	"github.com/Go-routine-4595/faultzero-sim/adapters/gateway/mqtt"
	"github.com/Go-routine-4595/faultzero-sim/adapters/gateway/rabbitmq"
	"github.com/Go-routine-4595/faultzero-sim/adapters/metrics"
	"github.com/Go-routine-4595/faultzero-sim/adapters/report"
	"github.com/Go-routine-4595/faultzero-sim/model"
	"github.com/Go-routine-4595/faultzero-sim/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresh task and the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	var (
		conf     Config
		err      error
		logger   zerolog.Logger
		gateways []model.IGateway
		ctrl     *controller.Controller
		m        *metrics.Metrics
		ctx      context.Context
		cancel   context.CancelFunc
		sig      chan os.Signal
		wg       *sync.WaitGroup
	)

	conf, err = setup(cmd)
	if err != nil {
		return err
	}
	logger = newLogger(conf.LogLevel)

	wg = &sync.WaitGroup{}
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	gateways = startGateways(ctx, wg, conf, logger)

	m = metrics.NewMetrics(nil)
	ctrl = controller.NewController(conf.ControllerConfig, service.NewService(), logger.With().Str("component", "controller").Logger(), gateways...)
	ctrl.SetObserver(m)

	gen := report.NewGenerator(conf.ReportConfig, report.NewPDFDocument, logger.With().Str("component", "report").Logger())
	srv := api.NewServer(conf.ServerConfig, ctrl, gen, m, logger.With().Str("component", "api").Logger())

	ctrl.Start(ctx, wg)
	srv.Start(ctx, wg)

	sig = make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	wg.Wait()
	return nil
}

// startGateways builds the configured alert sinks. A sink that cannot start is
// logged and skipped; with none left alerts go to the display.
func startGateways(ctx context.Context, wg *sync.WaitGroup, conf Config, logger zerolog.Logger) []model.IGateway {
	var gateways []model.IGateway

	for _, name := range conf.Gateways {
		switch name {
		case "display":
			gateways = append(gateways, display.NewDisplay())
		case "mqtt":
			mq, err := mqtt.NewMqtt(ctx, wg, conf.MqttConf, logger)
			if err != nil {
				logger.Error().Err(err).Msg("mqtt gateway disabled")
				continue
			}
			gateways = append(gateways, mq)
		case "rabbitmq":
			rabbit := rabbitmq.NewRabbitMQ(conf.RabbitMQConfig, logger)
			if err := rabbit.Start(ctx, wg); err != nil {
				logger.Error().Err(err).Msg("rabbitmq gateway disabled")
				continue
			}
			gateways = append(gateways, rabbit)
		case "eventhub":
			eh, err := event_hub.NewEventHub(ctx, wg, conf.EventHubConfig, logger)
			if err != nil {
				logger.Error().Err(err).Msg("event hub gateway disabled")
				continue
			}
			gateways = append(gateways, eh)
		case "kafka":
			k, err := kafka.NewKafka(ctx, wg, conf.KafkaConfig, logger)
			if err != nil {
				logger.Error().Err(err).Msg("kafka gateway disabled")
				continue
			}
			gateways = append(gateways, k)
		default:
			logger.Warn().Str("gateway", name).Msg("unknown gateway ignored")
		}
	}

	if len(conf.Gateways) > 0 && len(gateways) == 0 {
		logger.Warn().Msg("no alert gateway started, falling back to display")
		gateways = append(gateways, display.NewDisplay())
	}
	return gateways
}
