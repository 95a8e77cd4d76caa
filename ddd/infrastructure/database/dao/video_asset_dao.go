package dao

import (
	"context"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/infrastructure/database/po"
	"video-pipeline-service/internal/resource"
)

type VideoAssetDAO struct{ db *gorm.DB }

func NewVideoAssetDAO() *VideoAssetDAO {
	return &VideoAssetDAO{db: resource.DefaultMySQLResource().DB()}
}

func (d *VideoAssetDAO) Create(ctx context.Context, asset *po.VideoAsset) error {
	return d.db.WithContext(ctx).Model(&po.VideoAsset{}).Create(asset).Error
}

func (d *VideoAssetDAO) FindByAssetUUID(ctx context.Context, assetUUID string) (*po.VideoAsset, error) {
	var asset po.VideoAsset
	if err := d.db.WithContext(ctx).Where("asset_uuid = ?", assetUUID).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdateProcessingStatus writes the status plus its companion columns in one
// statement. processed_at is stamped only when the asset completes and is
// never cleared afterwards.
func (d *VideoAssetDAO) UpdateProcessingStatus(ctx context.Context, asset *po.VideoAsset) error {
	updates := map[string]interface{}{
		"status":         asset.Status,
		"hls_path":       asset.HLSPath,
		"thumbnail_path": asset.ThumbnailPath,
		"duration":       asset.Duration,
		"error_message":  asset.ErrorMessage,
		"processed_at": gorm.Expr(
			"CASE WHEN ? = 'completed' THEN CURRENT_TIMESTAMP ELSE processed_at END",
			asset.Status,
		),
	}
	return d.db.WithContext(ctx).
		Model(&po.VideoAsset{}).
		Where("asset_uuid = ?", asset.AssetUUID).
		Updates(updates).Error
}

func (d *VideoAssetDAO) QueryByStatus(ctx context.Context, status string, limit, offset int) ([]*po.VideoAsset, error) {
	var assets []*po.VideoAsset
	q := d.db.WithContext(ctx).Where("status = ?", status).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (d *VideoAssetDAO) QueryByUser(ctx context.Context, userUUID string, limit, offset int) ([]*po.VideoAsset, error) {
	var assets []*po.VideoAsset
	q := d.db.WithContext(ctx).Where("user_uuid = ?", userUUID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (d *VideoAssetDAO) DeleteByAssetUUID(ctx context.Context, assetUUID string) error {
	return d.db.WithContext(ctx).Where("asset_uuid = ?", assetUUID).Delete(&po.VideoAsset{}).Error
}
