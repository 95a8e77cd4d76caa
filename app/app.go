package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	application "video-pipeline-service/ddd/application/app"
	"video-pipeline-service/ddd/domain/vo"
	"video-pipeline-service/ddd/infrastructure/database/po"
	"video-pipeline-service/internal/resource"
	"video-pipeline-service/pkg/config"
	"video-pipeline-service/pkg/logger"
	"video-pipeline-service/pkg/manager"
	"video-pipeline-service/pkg/middleware"
	"video-pipeline-service/pkg/task"

	_ "video-pipeline-service/ddd/adapter/component"
	_ "video-pipeline-service/ddd/adapter/http"
	_ "video-pipeline-service/ddd/infrastructure/worker"
)

func Run() {
	fmt.Println("[STARTUP] Starting video pipeline service...")

	fmt.Println("[STARTUP] Loading config file...")
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	fmt.Println("[STARTUP] Initializing logger...")
	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	fmt.Println("[STARTUP] Logger initialized")

	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})

	logger.Infof("Video pipeline service starting version=%s", "1.0.0")

	// Both media tools are hard requirements; fail at startup, not mid-job.
	requireBinary(cfg.Pipeline.FFmpegBinary, "ffmpeg", "pipeline.ffmpeg_binary")
	requireBinary(cfg.Pipeline.FFprobeBinary, "ffprobe", "pipeline.ffprobe_binary")

	layout := vo.NewArtifactLayout(cfg.Pipeline.UploadDir)
	if err := layout.EnsureBaseDirectories(); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to create upload directories root=%s error=%v", cfg.Pipeline.UploadDir, err))
	}

	logger.Infof("Initializing resource manager...")
	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resource manager initialized")

	db := resource.DefaultMySQLResource().DB()
	if err := db.AutoMigrate(&po.VideoAsset{}); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to migrate database schema error=%v", err))
	}
	logger.Infof("Database schema ready")

	deps := &manager.Dependencies{
		DB:     db,
		Config: cfg,
	}

	logger.Infof("Initializing services...")
	manager.MustInitServices(deps)
	logger.Infof("All services initialized")

	pipelineApp := application.DefaultVideoPipelineApp()
	deps.PipelineApp = pipelineApp

	logger.Infof("Initializing components...")
	manager.MustInitComponents(deps)
	logger.Infof("All components initialized")

	logger.Infof("Starting background tasks...")
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}

	if strings.EqualFold(cfg.Server.Mode, "release") {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("Creating HTTP routes...")
	router := gin.Default()
	router.Use(middleware.RequestContextMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "video-pipeline-service",
			"timestamp": time.Now().Unix(),
		})
	})

	logger.Infof("Registering routes...")
	manager.RegisterAllRoutes(router)
	logger.Infof("Routes registered")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started address=%s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	logger.Infof("Stopping background tasks...")
	task.StopAll()

	logger.Infof("Shutting down components...")
	manager.Shutdown()
	logger.Infof("Components closed")

	grace := cfg.Worker.ShutdownGracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to close error=%v", err))
	}

	logger.Infof("Server exited safely")

	logger.Infof("Closing logger...")
	if logService != nil {
		logService.Close()
	}

	fmt.Println("[SHUTDOWN] Video pipeline service exited safely")
}

func requireBinary(configured, fallback, key string) {
	bin := strings.TrimSpace(configured)
	if bin == "" {
		bin = fallback
	}
	if _, err := exec.LookPath(bin); err != nil {
		logger.Fatal(fmt.Sprintf("%s binary not found, please install or set %s binary=%s error=%s", fallback, key, bin, err.Error()))
	}
}

// resolveConfigPath picks the config file, honoring CONFIG_PATH and
// CONFIG_ENV overrides.
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
