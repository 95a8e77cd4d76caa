package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/application/dto"
	"video-pipeline-service/pkg/errno"
	"video-pipeline-service/pkg/restapi"
)

// fakeVideoApp records calls and replays canned responses.
type fakeVideoApp struct {
	uploadErr error
	getErr    error
	retryErr  error
	deleteErr error

	lastUpload *cqe.UploadVideoCqe
	deletedIDs []string
}

func (f *fakeVideoApp) UploadVideo(_ context.Context, req *cqe.UploadVideoCqe, src io.Reader) (*dto.VideoAssetDTO, error) {
	f.lastUpload = req
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	_, _ = io.Copy(io.Discard, src)
	return &dto.VideoAssetDTO{AssetUUID: "a1", Title: req.Title, Status: "pending"}, nil
}

func (f *fakeVideoApp) GetVideo(_ context.Context, qry *cqe.GetVideoQry) (*dto.VideoAssetDTO, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dto.VideoAssetDTO{AssetUUID: qry.AssetUUID, Status: "completed"}, nil
}

func (f *fakeVideoApp) ListVideos(_ context.Context, _ *cqe.ListVideosQry) ([]*dto.VideoAssetDTO, error) {
	return []*dto.VideoAssetDTO{{AssetUUID: "a1"}, {AssetUUID: "a2"}}, nil
}

func (f *fakeVideoApp) RetryVideo(_ context.Context, req *cqe.RetryVideoCqe) (*dto.VideoAssetDTO, error) {
	if f.retryErr != nil {
		return nil, f.retryErr
	}
	return &dto.VideoAssetDTO{AssetUUID: req.AssetUUID, Status: "failed"}, nil
}

func (f *fakeVideoApp) DeleteVideo(_ context.Context, req *cqe.DeleteVideoCqe) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, req.AssetUUID)
	return nil
}

func newTestRouter(app *fakeVideoApp) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ctrl := &videoControllerImpl{videoApp: app}
	ctrl.RegisterRoutes(router)
	return router
}

func decodeResponse(t *testing.T, body *bytes.Buffer) restapi.Response {
	t.Helper()
	var resp restapi.Response
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadVideoEndpoint(t *testing.T) {
	app := &fakeVideoApp{}
	router := newTestRouter(app)

	body, contentType := multipartUpload(t,
		map[string]string{"title": "My Clip", "user_uuid": "user-1"},
		"clip.mp4", "video bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.OK.Code, resp.Code)

	require.NotNil(t, app.lastUpload)
	assert.Equal(t, "My Clip", app.lastUpload.Title)
	assert.Equal(t, "clip.mp4", app.lastUpload.Filename)
	assert.Equal(t, int64(len("video bytes")), app.lastUpload.SizeBytes)
}

func TestUploadVideoEndpointMissingFile(t *testing.T) {
	router := newTestRouter(&fakeVideoApp{})

	body, contentType := multipartUpload(t, map[string]string{"title": "My Clip"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.ErrMissingParam.Code, resp.Code)
}

func TestUploadVideoEndpointBusinessError(t *testing.T) {
	app := &fakeVideoApp{uploadErr: errno.NewBizError(errno.ErrFileTooLarge, nil)}
	router := newTestRouter(app)

	body, contentType := multipartUpload(t, map[string]string{"title": "My Clip"}, "clip.mp4", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Business codes ride on HTTP 200.
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.ErrFileTooLarge.Code, resp.Code)
}

func TestGetVideoEndpoint(t *testing.T) {
	router := newTestRouter(&fakeVideoApp{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/a1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.OK.Code, resp.Code)
	require.NotNil(t, resp.Data)
}

func TestGetVideoEndpointNotFound(t *testing.T) {
	app := &fakeVideoApp{getErr: errno.NewBizError(errno.ErrAssetNotFound, nil)}
	router := newTestRouter(app)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.ErrAssetNotFound.Code, resp.Code)
}

func TestListVideosEndpoint(t *testing.T) {
	router := newTestRouter(&fakeVideoApp{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?status=completed&page=1&page_size=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.OK.Code, resp.Code)
	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestRetryVideoEndpoint(t *testing.T) {
	router := newTestRouter(&fakeVideoApp{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/a1/retry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.OK.Code, resp.Code)
}

func TestRetryVideoEndpointBusy(t *testing.T) {
	app := &fakeVideoApp{retryErr: errno.NewBizError(errno.ErrAssetBusy, nil)}
	router := newTestRouter(app)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/a1/retry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, errno.ErrAssetBusy.Code, resp.Code)
}

func TestDeleteVideoEndpoint(t *testing.T) {
	app := &fakeVideoApp{}
	router := newTestRouter(app)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/a1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a1"}, app.deletedIDs)
}

func TestTransportErrorKeepsHTTPStatus(t *testing.T) {
	app := &fakeVideoApp{getErr: errno.ErrNotFound}
	router := newTestRouter(app)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/a1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// 4xx transport codes surface as the real HTTP status.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
