package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full service configuration tree.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Minio    MinioConfig    `mapstructure:"minio"`
	Log      LogConfig      `mapstructure:"log"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig MySQL settings for the asset metadata store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig settings for the per-asset pipeline lock backend.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

// KafkaConfig settings for the asynchronous job intake.
type KafkaConfig struct {
	Enabled             bool              `mapstructure:"enabled"`
	BootstrapServers    []string          `mapstructure:"bootstrap_servers"`
	ClientID            string            `mapstructure:"client_id"`
	GroupID             string            `mapstructure:"group_id"`
	Topics              KafkaTopicsConfig `mapstructure:"topics"`
	CommitOnDecodeError bool              `mapstructure:"commit_on_decode_error"`
}

type KafkaTopicsConfig struct {
	PipelineJobs string `mapstructure:"pipeline_jobs"`
	StatusEvents string `mapstructure:"status_events"`
}

// MinioConfig object storage settings for the Kafka intake path.
type MinioConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// LogConfig logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// VariantConfig one adaptive-stream output rendition.
type VariantConfig struct {
	Name         string `mapstructure:"name"`
	Height       int    `mapstructure:"height"`
	VideoBitrate string `mapstructure:"video_bitrate"`
	AudioBitrate string `mapstructure:"audio_bitrate"`
}

// PipelineConfig controls the ingestion-and-transcoding pipeline.
type PipelineConfig struct {
	UploadDir         string          `mapstructure:"upload_dir"`
	AllowedExtensions []string        `mapstructure:"allowed_extensions"`
	MaxFileSize       int64           `mapstructure:"max_file_size"`
	Variants          []VariantConfig `mapstructure:"variants"`
	SegmentDuration   int             `mapstructure:"segment_duration"`
	ThumbnailOffset   float64         `mapstructure:"thumbnail_offset"`
	ThumbnailWidth    int             `mapstructure:"thumbnail_width"`
	FFmpegBinary      string          `mapstructure:"ffmpeg_binary"`
	FFprobeBinary     string          `mapstructure:"ffprobe_binary"`
	ProbeTimeout      time.Duration   `mapstructure:"probe_timeout"`
	ThumbnailTimeout  time.Duration   `mapstructure:"thumbnail_timeout"`
	TranscodeTimeout  time.Duration   `mapstructure:"transcode_timeout"`
}

// WorkerConfig background pipeline worker settings.
type WorkerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	WorkerID            string        `mapstructure:"worker_id"`
	MaxConcurrentJobs   int           `mapstructure:"max_concurrent_jobs"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// SetGlobalConfig installs the process-wide configuration.
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the process-wide configuration, nil before Load.
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// Load reads the YAML config file, applies env overrides and defaults.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("worker.enabled", true)
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.client_id", "video-pipeline-service")
	viper.SetDefault("kafka.group_id", "video-pipeline-service-group")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:29092"})
	viper.SetDefault("kafka.topics.pipeline_jobs", "video.pipeline.jobs")
	viper.SetDefault("kafka.topics.status_events", "video.pipeline.status")
	viper.SetDefault("kafka.commit_on_decode_error", true)

	viper.SetEnvPrefix("GO_VIDEO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize fills defaults for everything the config file left unset.
func (c *Config) normalize() {
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	c.Pipeline.Normalize()

	if c.Worker.MaxConcurrentJobs <= 0 {
		c.Worker.MaxConcurrentJobs = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.MaxConcurrentJobs * 10
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}
	if c.Worker.WorkerID == "" {
		c.Worker.WorkerID = "pipeline-worker"
	}

	if c.Redis.LockTTL <= 0 {
		c.Redis.LockTTL = 30 * time.Minute
	}
}

// Normalize fills pipeline defaults; exported so tests can build configs piecemeal.
func (p *PipelineConfig) Normalize() {
	if p.UploadDir == "" {
		p.UploadDir = "uploads"
	}
	if len(p.AllowedExtensions) == 0 {
		p.AllowedExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v"}
	}
	if p.MaxFileSize <= 0 {
		p.MaxFileSize = 2 << 30 // 2 GiB
	}
	if len(p.Variants) == 0 {
		p.Variants = []VariantConfig{
			{Name: "720p", Height: 720, VideoBitrate: "2500k", AudioBitrate: "128k"},
		}
	}
	if p.SegmentDuration <= 0 {
		p.SegmentDuration = 6
	}
	if p.ThumbnailOffset <= 0 {
		p.ThumbnailOffset = 5.0
	}
	if p.ThumbnailWidth <= 0 {
		p.ThumbnailWidth = 640
	}
	if p.FFmpegBinary == "" {
		p.FFmpegBinary = "ffmpeg"
	}
	if p.FFprobeBinary == "" {
		p.FFprobeBinary = "ffprobe"
	}
	if p.ProbeTimeout <= 0 {
		p.ProbeTimeout = 30 * time.Second
	}
	if p.ThumbnailTimeout <= 0 {
		p.ThumbnailTimeout = 30 * time.Second
	}
	if p.TranscodeTimeout <= 0 {
		p.TranscodeTimeout = 10 * time.Minute
	}
}

// GetDSN builds the MySQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// GetRedisAddr builds the Redis address.
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
