package event_hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"
	"github.com/rs/zerolog"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const sendTimeout = 10 * time.Second

// connection string can have the event hub name like this
// Endpoint=sb://<namespace>.servicebus.windows.net/;SharedAccessKeyName=<KeyName>;SharedAccessKey=<KeyValue>;EntityPath=<hub>
// see https://learn.microsoft.com/en-us/azure/event-hubs/event-hubs-get-connection-string

type EventHubConfig struct {
	Connection   string `yaml:"connection"`
	EventHubName string `yaml:"EventHubName"`
}

// EventHub sends one event per alert, packed in as few batches as possible.
type EventHub struct {
	producerClient *azeventhubs.ProducerClient
	logger         zerolog.Logger
}

func NewEventHub(ctx context.Context, wg *sync.WaitGroup, conf EventHubConfig, logger zerolog.Logger) (*EventHub, error) {
	var (
		err            error
		producerClient *azeventhubs.ProducerClient
	)
	producerClient, err = azeventhubs.NewProducerClientFromConnectionString(conf.Connection, conf.EventHubName, nil)
	if err != nil {
		return nil, errors.Join(err, errors.New("failed to create producer client"))
	}

	e := &EventHub{
		producerClient: producerClient,
		logger:         logger.With().Str("component", "event-hub").Logger(),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		closeCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := producerClient.Close(closeCtx); err != nil {
			e.logger.Error().Err(err).Msg("failed to close producer client")
		}
	}()

	return e, nil
}

func (e *EventHub) SendAlerts(batch model.AlertBatch) error {
	var (
		err    error
		events []*azeventhubs.EventData
	)

	events, err = EventsForBatch(batch)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	// Creates an EventDataBatch, which you can use to pack multiple events together, allowing for efficient transfer.
	edb, err := e.producerClient.NewEventDataBatch(ctx, nil)
	if err != nil {
		return errors.Join(err, errors.New("failed to create event data batch"))
	}

	for i := 0; i < len(events); i++ {
		err = edb.AddEventData(events[i], nil)

		if errors.Is(err, azeventhubs.ErrEventDataTooLarge) {
			if edb.NumEvents() == 0 {
				// This one event is too large for this batch, even on its own.
				return errors.Join(err, errors.New("failed to send alert, event is too large"))
			}

			// This batch is full - send it and continue with a new one.
			if err = e.producerClient.SendEventDataBatch(ctx, edb, nil); err != nil {
				return errors.Join(err, errors.New("failed to send alert batch"))
			}
			if edb, err = e.producerClient.NewEventDataBatch(ctx, nil); err != nil {
				return errors.Join(err, errors.New("failed to create a new event data batch"))
			}

			// retry the same event on the new batch
			i--
			continue
		} else if err != nil {
			return errors.Join(err, errors.New("failed to add alert to batch"))
		}
	}

	// if we have any events in the last batch, send it
	if edb.NumEvents() > 0 {
		if err = e.producerClient.SendEventDataBatch(ctx, edb, nil); err != nil {
			return errors.Join(err, errors.New("failed to send alert batch"))
		}
	}
	e.logger.Debug().Str("batch", batch.BatchID).Int("events", len(events)).Msg("alerts sent")

	return nil
}

// EventsForBatch turns every alert into an event carrying its routing properties.
func EventsForBatch(batch model.AlertBatch) ([]*azeventhubs.EventData, error) {
	events := make([]*azeventhubs.EventData, 0, len(batch.Alerts))
	for _, a := range batch.Alerts {
		buf, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Join(err, errors.New("failed to marshal alert"))
		}
		id := a.ID
		events = append(events, &azeventhubs.EventData{
			Body:        buf,
			ContentType: &contentType,
			MessageID:   &id,
			Properties: map[string]any{
				"batch_id":   batch.BatchID,
				"machine_id": a.MachineID,
				"type":       string(a.Type),
				"priority":   string(a.Priority),
			},
		})
	}
	return events, nil
}

var contentType = "application/json"
