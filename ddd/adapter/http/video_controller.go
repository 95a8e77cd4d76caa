package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/application/app"
	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/pkg/assert"
	"video-pipeline-service/pkg/errno"
	"video-pipeline-service/pkg/manager"
	"video-pipeline-service/pkg/restapi"
)

func init() {
	manager.RegisterControllerPlugin(&VideoControllerPlugin{})
}

var (
	videoControllerOnce      sync.Once
	singletonVideoController VideoController
)

type VideoControllerPlugin struct{}

func (p *VideoControllerPlugin) Name() string {
	return "videoControllerPlugin"
}

func (p *VideoControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	videoControllerOnce.Do(func() {
		singletonVideoController = &videoControllerImpl{videoApp: app.DefaultVideoPipelineApp()}
	})
	assert.NotNil(singletonVideoController)
	return singletonVideoController
}

type VideoController interface {
	manager.Controller
}

type videoControllerImpl struct {
	videoApp app.VideoPipelineApp
}

func (v *videoControllerImpl) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/v1/videos")
	group.POST("", v.UploadVideo)
	group.GET("", v.ListVideos)
	group.GET("/:asset_uuid", v.GetVideo)
	group.POST("/:asset_uuid/retry", v.RetryVideo)
	group.DELETE("/:asset_uuid", v.DeleteVideo)
}

// UploadVideo accepts a multipart upload with form fields title, description
// and user_uuid plus the file part named "file".
func (v *videoControllerImpl) UploadVideo(ctx *gin.Context) {
	var req cqe.UploadVideoCqe
	if err := ctx.ShouldBind(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	if req.UserUUID == "" {
		req.UserUUID = ctx.GetString("user_uuid")
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrMissingParam, err))
		return
	}
	defer file.Close()
	req.Filename = header.Filename
	req.SizeBytes = header.Size

	result, err := v.videoApp.UploadVideo(ctx.Request.Context(), &req, file)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}

func (v *videoControllerImpl) GetVideo(ctx *gin.Context) {
	qry := cqe.GetVideoQry{AssetUUID: ctx.Param("asset_uuid")}
	result, err := v.videoApp.GetVideo(ctx.Request.Context(), &qry)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}

func (v *videoControllerImpl) ListVideos(ctx *gin.Context) {
	var qry cqe.ListVideosQry
	if err := ctx.ShouldBindQuery(&qry); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	result, err := v.videoApp.ListVideos(ctx.Request.Context(), &qry)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}

func (v *videoControllerImpl) RetryVideo(ctx *gin.Context) {
	req := cqe.RetryVideoCqe{AssetUUID: ctx.Param("asset_uuid")}
	result, err := v.videoApp.RetryVideo(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}

func (v *videoControllerImpl) DeleteVideo(ctx *gin.Context) {
	req := cqe.DeleteVideoCqe{AssetUUID: ctx.Param("asset_uuid")}
	if err := v.videoApp.DeleteVideo(ctx.Request.Context(), &req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, nil)
}
