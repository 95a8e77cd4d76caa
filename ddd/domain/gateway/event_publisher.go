package gateway

import (
	"context"

	"video-pipeline-service/ddd/domain/vo"
)

// PipelineEventPublisher announces pipeline outcomes to interested systems.
// Publishing is best-effort; a failed publish never fails the run itself.
type PipelineEventPublisher interface {
	PublishStatusEvent(ctx context.Context, event vo.PipelineStatusEvent) error
}
