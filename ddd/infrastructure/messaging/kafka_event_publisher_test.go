package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/domain/vo"
)

func TestEncodeStatusEvent(t *testing.T) {
	occurred := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	value, err := encodeStatusEvent(vo.PipelineStatusEvent{
		AssetUUID:   "a1",
		Status:      vo.AssetStatusFailed,
		FailedStage: "Variant transcoding failed",
		Retry:       true,
		WorkerID:    "pipeline-worker",
		OccurredAt:  occurred,
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, "a1", decoded["asset_uuid"])
	assert.Equal(t, "failed", decoded["status"])
	assert.Equal(t, "Variant transcoding failed", decoded["failed_stage"])
	assert.Equal(t, true, decoded["retry"])
	assert.Equal(t, "pipeline-worker", decoded["worker_id"])
}

func TestEncodeStatusEventOmitsEmptyStage(t *testing.T) {
	value, err := encodeStatusEvent(vo.PipelineStatusEvent{
		AssetUUID: "a1",
		Status:    vo.AssetStatusCompleted,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(value), "failed_stage")
}
