package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	data := CommentAddedData{
		PhoneKey:       "1112223333",
		CommentID:      4,
		AuthorIdentity: "driverA@email.com",
		SubmittedAt:    time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC),
	}

	event, err := NewEvent("fraud-registry", "comment.added", data)
	require.NoError(t, err)

	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, "comment.added", event.Type)
	assert.Equal(t, "fraud-registry", event.Source)
	assert.False(t, event.Timestamp.IsZero())

	var decoded CommentAddedData
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, data, decoded)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("fraud-registry", "bad", make(chan int))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), SubjectReportRecorded, "report.recorded", nil))
}
