package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/repo"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/ddd/infrastructure/database/convertor"
	"video-pipeline-service/ddd/infrastructure/database/dao"
	"video-pipeline-service/ddd/infrastructure/database/po"
	"video-pipeline-service/pkg/errno"
)

type videoAssetRepositoryImpl struct {
	dao *dao.VideoAssetDAO
	cvt *convertor.VideoAssetConvertor
}

func NewVideoAssetRepository() repo.VideoAssetRepository {
	return &videoAssetRepositoryImpl{dao: dao.NewVideoAssetDAO(), cvt: convertor.NewVideoAssetConvertor()}
}

func (r *videoAssetRepositoryImpl) CreateAsset(ctx context.Context, asset *entity.VideoAssetEntity) error {
	if err := r.dao.Create(ctx, r.cvt.ToPO(asset)); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errno.NewBizError(errno.ErrAssetExists, err)
		}
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	return nil
}

func (r *videoAssetRepositoryImpl) GetAsset(ctx context.Context, assetUUID string) (*entity.VideoAssetEntity, error) {
	p, err := r.dao.FindByAssetUUID(ctx, assetUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.NewBizError(errno.ErrAssetNotFound, err)
		}
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return r.cvt.ToEntity(p), nil
}

func (r *videoAssetRepositoryImpl) UpdateProcessingStatus(ctx context.Context, asset *entity.VideoAssetEntity) error {
	if err := r.dao.UpdateProcessingStatus(ctx, r.cvt.ToPO(asset)); err != nil {
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	return nil
}

func (r *videoAssetRepositoryImpl) ListByStatus(ctx context.Context, status vo.AssetStatus, limit, offset int) ([]*entity.VideoAssetEntity, error) {
	pos, err := r.dao.QueryByStatus(ctx, status.String(), limit, offset)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return r.toEntities(pos), nil
}

func (r *videoAssetRepositoryImpl) ListByUser(ctx context.Context, userUUID string, limit, offset int) ([]*entity.VideoAssetEntity, error) {
	pos, err := r.dao.QueryByUser(ctx, userUUID, limit, offset)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return r.toEntities(pos), nil
}

func (r *videoAssetRepositoryImpl) DeleteAsset(ctx context.Context, assetUUID string) error {
	if err := r.dao.DeleteByAssetUUID(ctx, assetUUID); err != nil {
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	return nil
}

func (r *videoAssetRepositoryImpl) toEntities(pos []*po.VideoAsset) []*entity.VideoAssetEntity {
	entities := make([]*entity.VideoAssetEntity, 0, len(pos))
	for _, p := range pos {
		entities = append(entities, r.cvt.ToEntity(p))
	}
	return entities
}
