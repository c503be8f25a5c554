package config

import (
	"encoding/json"
	"os"
	"time"
)

// Create new config instance
func NewConfig() *Config {
	return &Config{}
}

// Load configuration file in json format
func (c *Config) Read(file string) error {
	data, err := os.ReadFile(file)
	if err == nil {
		_ = json.Unmarshal(data, c)
	}
	c.applyEnv()
	c.applyDefaults()
	return err
}

// Environment overrides for secrets and deploy-specific endpoints.
func (c *Config) applyEnv() {
	if v := os.Getenv("VHIST_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("VHIST_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("VHIST_DOMAIN"); v != "" {
		c.Media.Domain = v
	}
	if v := os.Getenv("VHIST_UPLOAD_DIR"); v != "" {
		c.Media.UploadDir = v
	}
	if v := os.Getenv("VHIST_SENTRY_DSN"); v != "" {
		c.Sentry.SentryDSN = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3005
	}
	if c.Upload.MaxRequestBodyMB == 0 {
		c.Upload.MaxRequestBodyMB = 2048
	}
	if c.Upload.MaxMultipartMemoryMB == 0 {
		c.Upload.MaxMultipartMemoryMB = 32
	}
	if c.Redis.HealthCheckInterval == 0 {
		c.Redis.HealthCheckInterval = 30
	}
	if c.Media.UploadDir == "" {
		c.Media.UploadDir = "./uploads"
	}
	if c.Media.CacheTTL == 0 {
		c.Media.CacheTTL = 60
	}
	if c.Transcode.Stream == "" {
		c.Transcode.Stream = "vhist:transcode"
	}
	if c.Transcode.Group == "" {
		c.Transcode.Group = "transcoders"
	}
	if c.Transcode.Workers == 0 {
		c.Transcode.Workers = 2
	}
	if c.Transcode.MaxAttempts == 0 {
		c.Transcode.MaxAttempts = 2
	}
	if c.Transcode.BackoffBase == 0 {
		c.Transcode.BackoffBase = 5 * time.Second
	}
	if c.Transcode.Consumer == "" {
		// The consumer name is what the stream's pending-entries list
		// attributes deliveries to; an empty one would make reclaiming
		// after a crash meaningless.
		if host, err := os.Hostname(); err == nil && host != "" {
			c.Transcode.Consumer = host
		} else {
			c.Transcode.Consumer = "transcoder-1"
		}
	}
}
