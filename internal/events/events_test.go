package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timemory/doxsite/internal/config"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.Publish(Event{Type: TypeBuildStarted}))
	p.Close()
}

func TestNewNATSPublisher_Disabled(t *testing.T) {
	_, err := NewNATSPublisher(config.NATSConfig{Enabled: false})
	require.Error(t, err)
}

func TestEventJSON(t *testing.T) {
	evt := Event{
		Type:      TypeBuildFinished,
		BuildID:   "b-1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Outcome:   "success",
		Trigger:   "watch",
	}

	payload, err := json.Marshal(evt)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "build.finished", got["type"])
	assert.Equal(t, "b-1", got["build_id"])
	assert.NotContains(t, got, "error", "empty fields must be omitted")
}
