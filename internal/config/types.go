package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server    ServerConfig          `json:"server"`
	Upload    UploadConfig          `json:"upload"`
	Media     MediaConfig           `json:"media"`
	Database  Database              `json:"database"`
	Redis     RedisConfig           `json:"redis"`
	Transcode TranscodeWorkerConfig `json:"transcode_worker"`
	Archive   ArchiveConfig         `json:"archive"`
	Sentry    SentryConfig          `json:"sentry"`
}

type ServerConfig struct {
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type UploadConfig struct {
	MaxRequestBodyMB     int64 `json:"max_request_body"`
	MaxMultipartMemoryMB int64 `json:"max_multipart_memory"`
}

// MediaConfig covers where artifacts live on disk and how their public
// URLs are built.
type MediaConfig struct {
	UploadDir string `json:"upload_dir"` // local artifact root, e.g. ./uploads
	Domain    string `json:"domain"`     // public base URL for manifest links
	CacheTTL  int    `json:"cache_ttl"`  // playback record cache TTL, seconds
}

type Database struct {
	DSN string `json:"dsn"`
}

type RedisConfig struct {
	Password            string        `json:"password"`
	DatabaseID          int           `json:"database_id"`
	HealthCheckInterval time.Duration `json:"health_check_interval"`
	DialTimeout         time.Duration `json:"dial_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout"`
	PoolSize            int           `json:"pool_size"`
	Nodes               []RedisNode   `json:"nodes"`
}

type RedisNode struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (n RedisNode) Addr() string { return fmt.Sprintf("%s:%d", n.Host, n.Port) }

type TranscodeWorkerConfig struct {
	Stream       string        `json:"stream"`        // redis stream name
	Group        string        `json:"group"`         // consumer group name
	Workers      int           `json:"workers"`       // number of concurrent encodes
	MaxAttempts  int           `json:"max_attempts"`  // max retries before the job is failed
	MaxLen       int64         `json:"max_len"`       // stream max length before trim
	BackoffBase  time.Duration `json:"backoff_base"`  // base retry delay
	BlockTimeout time.Duration `json:"block_timeout"` // XREADGROUP block timeout
	Consumer     string        `json:"consumer"`
	FFmpegBin    string        `json:"ffmpeg_bin"`  // defaults to "ffmpeg"
	FFprobeBin   string        `json:"ffprobe_bin"` // defaults to "ffprobe"
}

// ArchiveConfig mirrors finished HLS artifacts into an S3-compatible
// bucket (Cloudflare R2). Disabled unless Enabled is set; local disk
// stays the canonical store either way.
type ArchiveConfig struct {
	Enabled     bool   `json:"enabled"`
	AccountID   string `json:"account_id"`
	BucketName  string `json:"bucket_name"`
	AccessKeyID string `json:"access_key_id"`
	SecretKey   string `json:"secret_key"`
	Endpoint    string `json:"endpoint"`
}

type SentryConfig struct {
	SentryDSN   string `json:"sentry_dsn"`
	Environment string `json:"environment"`
}
