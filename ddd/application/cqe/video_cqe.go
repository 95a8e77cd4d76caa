package cqe

import "video-pipeline-service/pkg/errno"

// UploadVideoCqe carries the multipart form fields of an upload request. The
// file itself streams through the controller.
type UploadVideoCqe struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	UserUUID    string `form:"user_uuid"`
	Filename    string `form:"-"`
	SizeBytes   int64  `form:"-"`
}

func (req *UploadVideoCqe) Validate() error {
	if req.Title == "" {
		return errno.ErrTitleRequired
	}
	if req.Filename == "" {
		return errno.ErrMissingParam
	}
	return nil
}

// GetVideoQry fetches one asset by UUID.
type GetVideoQry struct {
	AssetUUID string `uri:"asset_uuid" binding:"required"`
}

func (req *GetVideoQry) Validate() error {
	if req.AssetUUID == "" {
		return errno.ErrAssetUUIDRequired
	}
	return nil
}

// ListVideosQry pages through assets, optionally scoped to a user or status.
type ListVideosQry struct {
	UserUUID string `form:"user_uuid"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

func (req *ListVideosQry) Validate() error {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}
	return nil
}

// RetryVideoCqe re-runs the pipeline for a finished asset.
type RetryVideoCqe struct {
	AssetUUID string `uri:"asset_uuid" binding:"required"`
}

func (req *RetryVideoCqe) Validate() error {
	if req.AssetUUID == "" {
		return errno.ErrAssetUUIDRequired
	}
	return nil
}

// DeleteVideoCqe removes an asset and its artifacts.
type DeleteVideoCqe struct {
	AssetUUID string `uri:"asset_uuid" binding:"required"`
}

func (req *DeleteVideoCqe) Validate() error {
	if req.AssetUUID == "" {
		return errno.ErrAssetUUIDRequired
	}
	return nil
}
