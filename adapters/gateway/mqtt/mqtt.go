package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	pmqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const publishTimeout = 200 * time.Millisecond

// MqttConf holds the configuration for the MQTT client.
type MqttConf struct {
	Connection string `yaml:"Connection"`
	Topic      string `yaml:"Topic"`
	// PerMachine also publishes each alert on <Topic>/<machine_id>.
	PerMachine bool `yaml:"PerMachine"`
}

// Mqtt publishes alert batches to an MQTT broker.
type Mqtt struct {
	Topic      string
	MgtUrl     string
	perMachine bool
	logger     zerolog.Logger
	opt        *pmqtt.ClientOptions
	ClientID   uuid.UUID
	client     pmqtt.Client
}

func NewMqtt(ctx context.Context, wg *sync.WaitGroup, conf MqttConf, logger zerolog.Logger) (*Mqtt, error) {
	var (
		err        error
		cid        uuid.UUID
		mqttClient *Mqtt
		l          zerolog.Logger
	)

	cid = uuid.NewV4()
	l = logger.With().Str("component", "mqtt").Logger()
	mqttClient = &Mqtt{
		Topic:      conf.Topic,
		MgtUrl:     conf.Connection,
		perMachine: conf.PerMachine,
		logger:     l,
		ClientID:   cid,
		opt: pmqtt.NewClientOptions().
			AddBroker(conf.Connection).
			SetClientID("faultzero-alerts-" + cid.String()).
			SetCleanSession(true).
			SetAutoReconnect(true).
			SetTLSConfig(&tls.Config{
				InsecureSkipVerify: true,
			}).
			SetConnectionLostHandler(ConnectLostHandler(l)).
			SetOnConnectHandler(ConnectHandler(l)),
	}

	err = mqttClient.Connect()
	if err != nil {
		return nil, err
	}
	mqttClient.setupContextListener(ctx, wg)

	return mqttClient, nil
}

// setupContextListener ensures proper disconnection when the context is canceled.
func (m *Mqtt) setupContextListener(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		m.client.Disconnect(250)
		m.logger.Warn().Msg("Mqtt disconnected")
	}()
}

// SendAlerts publishes the batch on the topic, and each alert on its machine
// topic when configured. Publish timeouts are logged, not returned.
func (m *Mqtt) SendAlerts(batch model.AlertBatch) error {
	var (
		err error
		b   []byte
	)

	b, err = json.Marshal(batch)
	if err != nil {
		m.logger.Error().Err(err).Str("batch", batch.BatchID).Msg("failed to marshal alert batch")
		return errors.Join(err, errors.New("failed to marshal alert batch"))
	}
	m.publish(m.Topic, b, batch.BatchID)

	if !m.perMachine {
		return nil
	}
	for _, a := range batch.Alerts {
		if b, err = json.Marshal(a); err != nil {
			return errors.Join(err, errors.New("failed to marshal alert"))
		}
		m.publish(MachineTopic(m.Topic, a.MachineID), b, batch.BatchID)
	}
	return nil
}

func (m *Mqtt) publish(topic string, b []byte, batchID string) {
	token := m.client.Publish(topic, 1, false, b)
	if !token.WaitTimeout(publishTimeout) {
		m.logger.Warn().Str("batch", batchID).Str("topic", topic).Msg("Timeout exceeded during publishing")
		return
	}
	if token.Error() != nil {
		m.logger.Error().Err(token.Error()).Str("batch", batchID).Str("topic", topic).Msg("failed to publish")
	}
}

func MachineTopic(topic string, machineID int) string {
	return topic + "/" + strconv.Itoa(machineID)
}

func (m *Mqtt) Connect() error {
	m.client = pmqtt.NewClient(m.opt)
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		m.logger.Error().Err(token.Error()).Msg("Error connecting to mqtt broker")
		return errors.Join(token.Error(), errors.New("Error connecting to mqtt broker"))
	}
	return nil
}

func ConnectHandler(logger zerolog.Logger) func(client pmqtt.Client) {
	return func(client pmqtt.Client) {
		logger.Info().Msg("Connected to mqtt broker")
	}
}

func ConnectLostHandler(logger zerolog.Logger) func(client pmqtt.Client, err error) {
	return func(client pmqtt.Client, err error) {
		logger.Warn().Err(err).Msg("Connection Lost")
	}
}
