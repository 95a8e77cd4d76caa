package convertor

import (
	"video-pipeline-service/ddd/domain/entity"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/ddd/infrastructure/database/po"
)

type VideoAssetConvertor struct{}

func NewVideoAssetConvertor() *VideoAssetConvertor { return &VideoAssetConvertor{} }

func (c *VideoAssetConvertor) ToEntity(p *po.VideoAsset) *entity.VideoAssetEntity {
	if p == nil {
		return nil
	}
	description := ""
	if p.Description != nil {
		description = *p.Description
	}
	errorMessage := ""
	if p.ErrorMessage != nil {
		errorMessage = *p.ErrorMessage
	}
	return entity.Rehydrate(
		p.Id,
		p.AssetUUID, p.UserUUID, p.Title, description, p.Filename, p.OriginalPath,
		p.HLSPath, p.ThumbnailPath,
		p.Duration,
		vo.AssetStatus(p.Status),
		errorMessage,
		p.SizeBytes,
		p.ProcessedAt,
		p.CreatedAt, p.UpdatedAt,
	)
}

func (c *VideoAssetConvertor) ToPO(e *entity.VideoAssetEntity) *po.VideoAsset {
	if e == nil {
		return nil
	}
	p := &po.VideoAsset{
		BaseModel:     po.BaseModel{Id: e.ID(), CreatedAt: e.CreatedAt(), UpdatedAt: e.UpdatedAt()},
		AssetUUID:     e.AssetUUID(),
		UserUUID:      e.UserUUID(),
		Title:         e.Title(),
		Filename:      e.Filename(),
		OriginalPath:  e.OriginalPath(),
		HLSPath:       e.HLSPath(),
		ThumbnailPath: e.ThumbnailPath(),
		Duration:      e.Duration(),
		Status:        e.Status().String(),
		SizeBytes:     e.SizeBytes(),
		ProcessedAt:   e.ProcessedAt(),
	}
	if d := e.Description(); d != "" {
		p.Description = &d
	}
	if m := e.ErrorMessage(); m != "" {
		p.ErrorMessage = &m
	}
	return p
}
