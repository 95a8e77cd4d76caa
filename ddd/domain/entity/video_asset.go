package entity

import (
	"time"

	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/pkg/errno"
)

// VideoAssetEntity is the aggregate root for one uploaded video and its
// derived artifacts.
type VideoAssetEntity struct {
	id            uint64
	assetUUID     string
	userUUID      string
	title         string
	description   string
	filename      string
	originalPath  string
	hlsPath       *string
	thumbnailPath *string
	duration      *float64
	status        vo.AssetStatus
	errorMessage  string
	sizeBytes     int64
	processedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewVideoAssetEntity(assetUUID, userUUID, title, filename, originalPath string, sizeBytes int64) *VideoAssetEntity {
	now := time.Now()
	return &VideoAssetEntity{
		assetUUID:    assetUUID,
		userUUID:     userUUID,
		title:        title,
		filename:     filename,
		originalPath: originalPath,
		sizeBytes:    sizeBytes,
		status:       vo.AssetStatusPending,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (e *VideoAssetEntity) ID() uint64             { return e.id }
func (e *VideoAssetEntity) AssetUUID() string      { return e.assetUUID }
func (e *VideoAssetEntity) UserUUID() string       { return e.userUUID }
func (e *VideoAssetEntity) Title() string          { return e.title }
func (e *VideoAssetEntity) Description() string    { return e.description }
func (e *VideoAssetEntity) Filename() string       { return e.filename }
func (e *VideoAssetEntity) OriginalPath() string   { return e.originalPath }
func (e *VideoAssetEntity) HLSPath() *string       { return e.hlsPath }
func (e *VideoAssetEntity) ThumbnailPath() *string { return e.thumbnailPath }
func (e *VideoAssetEntity) Duration() *float64     { return e.duration }
func (e *VideoAssetEntity) Status() vo.AssetStatus { return e.status }
func (e *VideoAssetEntity) ErrorMessage() string   { return e.errorMessage }
func (e *VideoAssetEntity) SizeBytes() int64       { return e.sizeBytes }
func (e *VideoAssetEntity) ProcessedAt() *time.Time { return e.processedAt }
func (e *VideoAssetEntity) CreatedAt() time.Time   { return e.createdAt }
func (e *VideoAssetEntity) UpdatedAt() time.Time   { return e.updatedAt }

func (e *VideoAssetEntity) SetDescription(d string) { e.description = d; e.updatedAt = time.Now() }
func (e *VideoAssetEntity) SetDuration(seconds float64) {
	e.duration = &seconds
	e.updatedAt = time.Now()
}
func (e *VideoAssetEntity) SetOriginalPath(path string) {
	e.originalPath = path
	e.updatedAt = time.Now()
}

// MarkProcessing moves the asset into the running state.
func (e *VideoAssetEntity) MarkProcessing() error {
	return e.transition(vo.AssetStatusProcessing, func() {
		e.errorMessage = ""
	})
}

// MarkCompleted finalizes the asset with its artifact locations. processed_at
// is only ever set here.
func (e *VideoAssetEntity) MarkCompleted(hlsPath, thumbnailPath string) error {
	return e.transition(vo.AssetStatusCompleted, func() {
		e.hlsPath = &hlsPath
		if thumbnailPath != "" {
			e.thumbnailPath = &thumbnailPath
		}
		e.errorMessage = ""
		now := time.Now()
		e.processedAt = &now
	})
}

// MarkFailed records the fatal error. processed_at stays untouched.
func (e *VideoAssetEntity) MarkFailed(message string) error {
	return e.transition(vo.AssetStatusFailed, func() {
		e.errorMessage = message
	})
}

func (e *VideoAssetEntity) transition(target vo.AssetStatus, apply func()) error {
	if !e.status.CanTransitionTo(target) {
		return errno.NewBizError(errno.ErrBadTransition, nil)
	}
	e.status = target
	apply()
	e.updatedAt = time.Now()
	return nil
}

// Rehydrate rebuilds an entity from persisted state. For infrastructure use.
func Rehydrate(
	id uint64,
	assetUUID, userUUID, title, description, filename, originalPath string,
	hlsPath, thumbnailPath *string,
	duration *float64,
	status vo.AssetStatus,
	errorMessage string,
	sizeBytes int64,
	processedAt *time.Time,
	createdAt, updatedAt time.Time,
) *VideoAssetEntity {
	return &VideoAssetEntity{
		id:            id,
		assetUUID:     assetUUID,
		userUUID:      userUUID,
		title:         title,
		description:   description,
		filename:      filename,
		originalPath:  originalPath,
		hlsPath:       hlsPath,
		thumbnailPath: thumbnailPath,
		duration:      duration,
		status:        status,
		errorMessage:  errorMessage,
		sizeBytes:     sizeBytes,
		processedAt:   processedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}
