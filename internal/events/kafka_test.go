package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

func TestToRecord(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := toRecord("registration.events", model.OutboxEntry{
		ID: id, AggregateType: AggregateOrder, AggregateID: "77",
		EventType: EventOrderCreated, Payload: []byte(`{"order_id":77}`), CreatedAt: created,
	})

	assert.Equal(t, "registration.events", rec.Topic)
	assert.Equal(t, "order:77", string(rec.Key))
	assert.JSONEq(t, `{"order_id":77}`, string(rec.Value))
	assert.Equal(t, created, rec.Timestamp)
	if assert.Len(t, rec.Headers, 2) {
		assert.Equal(t, HeaderEventType, rec.Headers[0].Key)
		assert.Equal(t, EventOrderCreated, string(rec.Headers[0].Value))
		assert.Equal(t, id.String(), string(rec.Headers[1].Value))
	}
}
