package dto

import (
	"time"

	"video-pipeline-service/ddd/domain/entity"
)

// VideoAssetDTO is the outward shape of an asset.
type VideoAssetDTO struct {
	AssetUUID     string     `json:"asset_uuid"`
	UserUUID      string     `json:"user_uuid,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Filename      string     `json:"filename"`
	Status        string     `json:"status"`
	HLSPath       string     `json:"hls_path,omitempty"`
	ThumbnailPath string     `json:"thumbnail_path,omitempty"`
	Duration      *float64   `json:"duration,omitempty"`
	SizeBytes     int64      `json:"size_bytes"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewVideoAssetDto(e *entity.VideoAssetEntity) *VideoAssetDTO {
	if e == nil {
		return nil
	}
	d := &VideoAssetDTO{
		AssetUUID:    e.AssetUUID(),
		UserUUID:     e.UserUUID(),
		Title:        e.Title(),
		Description:  e.Description(),
		Filename:     e.Filename(),
		Status:       e.Status().String(),
		Duration:     e.Duration(),
		SizeBytes:    e.SizeBytes(),
		ErrorMessage: e.ErrorMessage(),
		ProcessedAt:  e.ProcessedAt(),
		CreatedAt:    e.CreatedAt(),
		UpdatedAt:    e.UpdatedAt(),
	}
	if p := e.HLSPath(); p != nil {
		d.HLSPath = *p
	}
	if p := e.ThumbnailPath(); p != nil {
		d.ThumbnailPath = *p
	}
	return d
}

func NewVideoAssetDtos(entities []*entity.VideoAssetEntity) []*VideoAssetDTO {
	out := make([]*VideoAssetDTO, 0, len(entities))
	for _, e := range entities {
		out = append(out, NewVideoAssetDto(e))
	}
	return out
}
