package repo

import (
	"context"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/vo"
)

// VideoAssetRepository persists asset metadata. Artifact files live on disk;
// only their locations and the processing state go through here.
type VideoAssetRepository interface {
	CreateAsset(ctx context.Context, asset *entity.VideoAssetEntity) error
	GetAsset(ctx context.Context, assetUUID string) (*entity.VideoAssetEntity, error)

	// UpdateProcessingStatus persists a status change together with the
	// artifact columns that accompany it. processed_at is set only when the
	// new status is completed.
	UpdateProcessingStatus(ctx context.Context, asset *entity.VideoAssetEntity) error

	ListByStatus(ctx context.Context, status vo.AssetStatus, limit, offset int) ([]*entity.VideoAssetEntity, error)
	ListByUser(ctx context.Context, userUUID string, limit, offset int) ([]*entity.VideoAssetEntity, error)
	DeleteAsset(ctx context.Context, assetUUID string) error
}
