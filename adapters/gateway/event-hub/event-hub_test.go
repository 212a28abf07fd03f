package event_hub

import (
	"testing"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

func TestEventsForBatch(t *testing.T) {
	batch := model.AlertBatch{
		BatchID: "b-3",
		Alerts: []model.Alert{
			{ID: "a-1", Type: model.AlertCritical, MachineID: 5, Priority: model.PriorityHigh},
			{ID: "a-2", Type: model.AlertAnomaly, MachineID: 2, Priority: model.PriorityLow},
		},
	}

	events, err := EventsForBatch(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	e := events[1]
	if *e.MessageID != "a-2" || *e.ContentType != "application/json" {
		t.Fatalf("unexpected event ids %v %v", *e.MessageID, *e.ContentType)
	}
	if e.Properties["machine_id"] != 2 || e.Properties["type"] != "anomaly" || e.Properties["batch_id"] != "b-3" {
		t.Fatalf("unexpected properties %v", e.Properties)
	}
	if *events[0].MessageID == *events[1].MessageID {
		t.Fatalf("events share a message id")
	}
}
