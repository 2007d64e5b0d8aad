// Package config loads service settings from the environment and flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/thumbnailer/internal/imaging"
	"github.com/ironsheep/thumbnailer/internal/logging"
)

// Keys, each bound to the upper-case environment variable of the same name.
const (
	KeyCacheBucket       = "cache_bucket"
	KeyMinEdge           = "min_edge"
	KeyMaxEdge           = "max_edge"
	KeyJPEGQuality       = "jpeg_quality"
	KeyContentAge        = "content_age_in_seconds"
	KeyDebug             = "debug"
	KeyLogLevel          = "log_level"
	KeyLogFile           = "log_file"
	KeyBackground        = "background"
	KeyAllowLocalSources = "allow_local_sources"
	KeyLookupMemoSize    = "lookup_memo_size"
	KeyAWSRegion         = "aws_region"
	KeyS3Endpoint        = "s3_endpoint"
	KeyListenAddr        = "listen_addr"
)

// A cache container this short (or unset) disables caching.
const minCacheBucketLen = 5

var envKeys = map[string]string{
	KeyCacheBucket:       "CACHE_BUCKET",
	KeyMinEdge:           "MIN_EDGE",
	KeyMaxEdge:           "MAX_EDGE",
	KeyJPEGQuality:       "JPEG_QUALITY",
	KeyContentAge:        "CONTENT_AGE_IN_SECONDS",
	KeyDebug:             "DEBUG",
	KeyLogLevel:          "LOG_LEVEL",
	KeyLogFile:           "LOG_FILE",
	KeyBackground:        "BACKGROUND",
	KeyAllowLocalSources: "ALLOW_LOCAL_SOURCES",
	KeyLookupMemoSize:    "LOOKUP_MEMO_SIZE",
	KeyAWSRegion:         "AWS_REGION",
	KeyS3Endpoint:        "S3_ENDPOINT",
	KeyListenAddr:        "LISTEN_ADDR",
}

// Config holds the resolved settings.
type Config struct {
	CacheBucket       string
	MinEdge           int
	MaxEdge           int
	JPEGQuality       int
	ContentAge        time.Duration
	Debug             bool
	LogLevel          string
	LogFile           string
	Background        string
	AllowLocalSources bool
	LookupMemoSize    int
	AWSRegion         string
	S3Endpoint        string
	ListenAddr        string
}

// NewViper returns a viper instance with defaults and environment bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for key, env := range envKeys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCacheBucket, "")
	v.SetDefault(KeyMinEdge, imaging.DefaultMinEdge)
	v.SetDefault(KeyMaxEdge, imaging.DefaultMaxEdge)
	v.SetDefault(KeyJPEGQuality, imaging.DefaultQuality)
	v.SetDefault(KeyContentAge, 600)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogLevel, "ERROR")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyBackground, "#ffffff")
	v.SetDefault(KeyAllowLocalSources, false)
	v.SetDefault(KeyLookupMemoSize, 1024)
	v.SetDefault(KeyAWSRegion, "")
	v.SetDefault(KeyS3Endpoint, "")
	v.SetDefault(KeyListenAddr, ":8000")
}

// Load reads every key from v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		CacheBucket:       v.GetString(KeyCacheBucket),
		MinEdge:           v.GetInt(KeyMinEdge),
		MaxEdge:           v.GetInt(KeyMaxEdge),
		JPEGQuality:       v.GetInt(KeyJPEGQuality),
		ContentAge:        time.Duration(v.GetInt(KeyContentAge)) * time.Second,
		Debug:             v.GetBool(KeyDebug),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
		Background:        v.GetString(KeyBackground),
		AllowLocalSources: v.GetBool(KeyAllowLocalSources),
		LookupMemoSize:    v.GetInt(KeyLookupMemoSize),
		AWSRegion:         v.GetString(KeyAWSRegion),
		S3Endpoint:        v.GetString(KeyS3Endpoint),
		ListenAddr:        v.GetString(KeyListenAddr),
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.MinEdge < 1 {
		errs = append(errs, fmt.Errorf("MIN_EDGE must be >= 1, got %d", c.MinEdge))
	}
	if c.MinEdge > c.MaxEdge {
		errs = append(errs, fmt.Errorf("MIN_EDGE (%d) must not exceed MAX_EDGE (%d)", c.MinEdge, c.MaxEdge))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("JPEG_QUALITY must be 1-100, got %d", c.JPEGQuality))
	}
	if c.ContentAge < 0 {
		errs = append(errs, fmt.Errorf("CONTENT_AGE_IN_SECONDS must be >= 0, got %d", int(c.ContentAge.Seconds())))
	}
	if c.LookupMemoSize < 0 {
		errs = append(errs, fmt.Errorf("LOOKUP_MEMO_SIZE must be >= 0, got %d", c.LookupMemoSize))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if _, err := imaging.ParseBackground(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("BACKGROUND: %w", err))
	}
	return errors.Join(errs...)
}

// CachingEnabled reports whether CacheBucket is long enough to be used.
func (c *Config) CachingEnabled() bool {
	return len(c.CacheBucket) >= minCacheBucketLen
}

// Bounds returns the configured dimension range.
func (c *Config) Bounds() imaging.Bounds {
	return imaging.Bounds{Min: c.MinEdge, Max: c.MaxEdge}
}
