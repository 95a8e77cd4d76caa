package po

import "time"

// VideoAsset persistence object for the videos table.
type VideoAsset struct {
	BaseModel
	AssetUUID     string     `gorm:"column:asset_uuid;type:varchar(36);uniqueIndex" json:"asset_uuid"`
	UserUUID      string     `gorm:"column:user_uuid;type:varchar(36);index" json:"user_uuid"`
	Title         string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Description   *string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Filename      string     `gorm:"column:filename;type:varchar(255)" json:"filename"`
	OriginalPath  string     `gorm:"column:original_path;type:varchar(512)" json:"original_path"`
	HLSPath       *string    `gorm:"column:hls_path;type:varchar(512)" json:"hls_path,omitempty"`
	ThumbnailPath *string    `gorm:"column:thumbnail_path;type:varchar(512)" json:"thumbnail_path,omitempty"`
	Duration      *float64   `gorm:"column:duration;type:double" json:"duration,omitempty"`
	Status        string     `gorm:"column:status;type:varchar(20);index;default:'pending'" json:"status"`
	ErrorMessage  *string    `gorm:"column:error_message;type:varchar(500)" json:"error_message,omitempty"`
	SizeBytes     int64      `gorm:"column:size_bytes;type:bigint;default:0" json:"size_bytes"`
	ProcessedAt   *time.Time `gorm:"column:processed_at;type:timestamp" json:"processed_at,omitempty"`
}

func (VideoAsset) TableName() string {
	return "videos"
}
