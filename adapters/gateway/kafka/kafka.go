package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const writeTimeout = 5 * time.Second

type KafkaConfig struct {
	Brokers []string `yaml:"Brokers"`
	Topic   string   `yaml:"Topic"`
}

// Kafka writes one message per alert, keyed by machine so a machine's alerts
// stay ordered on one partition.
type Kafka struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewKafka(ctx context.Context, wg *sync.WaitGroup, conf KafkaConfig, logger zerolog.Logger) (*Kafka, error) {
	if len(conf.Brokers) == 0 || conf.Topic == "" {
		return nil, errors.New("kafka brokers and topic are required")
	}

	k := &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(conf.Brokers...),
			Topic:        conf.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger.With().Str("component", "kafka").Logger(),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := k.writer.Close(); err != nil {
			k.logger.Error().Err(err).Msg("failed to close kafka writer")
		}
		k.logger.Info().Msg("Kafka writer closed")
	}()

	return k, nil
}

func (k *Kafka) SendAlerts(batch model.AlertBatch) error {
	msgs, err := MessagesForBatch(batch)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err = k.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Join(err, errors.New("failed to write alerts to kafka"))
	}
	k.logger.Debug().Str("batch", batch.BatchID).Int("messages", len(msgs)).Msg("alerts written")
	return nil
}

func MessagesForBatch(batch model.AlertBatch) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(batch.Alerts))
	for _, a := range batch.Alerts {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Join(err, errors.New("failed to marshal alert"))
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.Itoa(a.MachineID)),
			Value: b,
			Time:  a.Timestamp,
			Headers: []kafka.Header{
				{Key: "batch_id", Value: []byte(batch.BatchID)},
				{Key: "type", Value: []byte(a.Type)},
			},
		})
	}
	return msgs, nil
}
