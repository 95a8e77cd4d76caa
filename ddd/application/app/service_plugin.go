package app

import (
	"video-pipeline-service/ddd/domain/service"
	"video-pipeline-service/ddd/infrastructure/database/persistence"
	"video-pipeline-service/ddd/infrastructure/executor"
	"video-pipeline-service/ddd/infrastructure/lock"
	"video-pipeline-service/internal/resource"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/manager"
)

func init() {
	manager.RegisterServicePlugin(&PipelineServicePlugin{})
}

// PipelineServicePlugin wires the pipeline service with its production
// collaborators once resources are open.
type PipelineServicePlugin struct{}

func (p *PipelineServicePlugin) Name() string {
	return "pipelineService"
}

func (p *PipelineServicePlugin) MustCreateService(deps *manager.Dependencies) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	service.MustInitDefaultPipelineService(service.NewPipelineService(
		persistence.NewVideoAssetRepository(),
		lock.NewRedisAssetLocker(resource.DefaultRedisResource().Client()),
		executor.NewFFmpegRunner(cfg),
		service.NewManifestService(cfg),
		cfg,
	))
}
