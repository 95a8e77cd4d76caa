package vo

import "time"

// PipelineStatusEvent describes the outcome of one pipeline run. Events are
// published after the status write so downstream consumers can follow asset
// state without polling.
type PipelineStatusEvent struct {
	AssetUUID   string      `json:"asset_uuid"`
	Status      AssetStatus `json:"status"`
	FailedStage string      `json:"failed_stage,omitempty"`
	Retry       bool        `json:"retry"`
	WorkerID    string      `json:"worker_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
