package config

import "time"

// UploadConfig selects and parameterizes the image upload backend.
type UploadConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend"`     // "local" or "s3"
	Dir      string `mapstructure:"dir" yaml:"dir"`             // local backend only
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`   // prefix of returned URLs
	S3Bucket string `mapstructure:"s3_bucket" yaml:"s3_bucket"` // s3 backend only
	MaxBytes int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"db_path" yaml:"db_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	Upload            UploadConfig  `mapstructure:"upload" yaml:"upload"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "roomcast.db",
		LogLevel:          "info",
		Upload: UploadConfig{
			Backend:  "local",
			Dir:      "uploads",
			BaseURL:  "http://localhost:8080",
			MaxBytes: 8 << 20,
		},
	}
}
