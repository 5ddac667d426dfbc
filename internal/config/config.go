// Package config centralizes how HostelDesk reads its settings: built-in
// defaults, then an optional YAML file, then environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config represents runtime configuration for the API, the worker and the
// admin CLI.
type Config struct {
	Address string `yaml:"address"`
	Store   string `yaml:"store"`

	DatabaseURL string `yaml:"database_url"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	S3Endpoint     string `yaml:"s3_endpoint"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`
	S3Region       string `yaml:"s3_region"`
	S3UseSSL       bool   `yaml:"s3_use_ssl"`
	PhotoBucket    string `yaml:"photo_bucket"`
	DocumentBucket string `yaml:"document_bucket"`

	RenderURL     string        `yaml:"render_url"`
	RenderTimeout time.Duration `yaml:"render_timeout"`

	MaxPhotoBytes int64  `yaml:"max_photo_bytes"`
	GatePolicy    string `yaml:"gate_policy"`

	ProgressTick time.Duration `yaml:"progress_tick"`
	ProgressStep int           `yaml:"progress_step"`
	ProgressCap  int           `yaml:"progress_cap"`

	JWTSecret  string        `yaml:"jwt_secret"`
	JWTIssuer  string        `yaml:"jwt_issuer"`
	SessionTTL time.Duration `yaml:"session_ttl"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"-"`

	SigningSecret []byte        `yaml:"-"`
	SignedURLTTL  time.Duration `yaml:"signed_url_ttl"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	WorkerConcurrency int `yaml:"worker_concurrency"`
}

const (
	defaultAddress        = ":8080"
	defaultMaxPhotoBytes  = 100 << 10 // 100 KiB
	defaultRenderURL      = "https://latextopdfhosteldb.azurewebsites.net/convert"
	defaultRenderTimeout  = 60 * time.Second
	defaultProgressTick   = 300 * time.Millisecond
	defaultProgressStep   = 10
	defaultProgressCap    = 100
	defaultSessionTTL     = 12 * time.Hour
	defaultSignedTTL      = 5 * time.Minute
	defaultWorkerCount    = 2
	defaultPhotoBucket    = "student-photos"
	defaultDocumentBucket = "student-documents"
)

// Load builds the configuration. path may be empty; a missing file is not an
// error so deployments can rely on the environment alone.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.readEnvironment()
	if cfg.SigningSecret == nil {
		cfg.SigningSecret = randomSecret()
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Address:           defaultAddress,
		Store:             StorePostgres,
		RedisAddr:         "127.0.0.1:6379",
		S3Region:          "us-east-1",
		PhotoBucket:       defaultPhotoBucket,
		DocumentBucket:    defaultDocumentBucket,
		RenderURL:         defaultRenderURL,
		RenderTimeout:     defaultRenderTimeout,
		MaxPhotoBytes:     defaultMaxPhotoBytes,
		GatePolicy:        "strict",
		ProgressTick:      defaultProgressTick,
		ProgressStep:      defaultProgressStep,
		ProgressCap:       defaultProgressCap,
		JWTIssuer:         "hosteldesk",
		SessionTTL:        defaultSessionTTL,
		SignedURLTTL:      defaultSignedTTL,
		LogLevel:          "info",
		LogFormat:         "json",
		WorkerConcurrency: defaultWorkerCount,
	}
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) readEnvironment() {
	c.Address = readEnv("HOSTELDESK_ADDRESS", c.Address)
	c.Store = strings.ToLower(readEnv("HOSTELDESK_STORE", c.Store))
	c.DatabaseURL = readEnv("DATABASE_URL", c.DatabaseURL)

	c.RedisAddr = readEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = readEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = parseInt("REDIS_DB", c.RedisDB)

	c.S3Endpoint = readEnv("S3_ENDPOINT", c.S3Endpoint)
	c.S3AccessKey = readEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = readEnv("S3_SECRET_KEY", c.S3SecretKey)
	c.S3Region = readEnv("S3_REGION", c.S3Region)
	c.S3UseSSL = parseBool("S3_USE_SSL", c.S3UseSSL)
	c.PhotoBucket = readEnv("HOSTELDESK_PHOTO_BUCKET", c.PhotoBucket)
	c.DocumentBucket = readEnv("HOSTELDESK_DOCUMENT_BUCKET", c.DocumentBucket)

	c.RenderURL = readEnv("HOSTELDESK_RENDER_URL", c.RenderURL)
	c.RenderTimeout = parseDuration("HOSTELDESK_RENDER_TIMEOUT", c.RenderTimeout)

	c.MaxPhotoBytes = parseInt64("HOSTELDESK_MAX_PHOTO_BYTES", c.MaxPhotoBytes)
	c.GatePolicy = strings.ToLower(readEnv("HOSTELDESK_GATE_POLICY", c.GatePolicy))

	c.ProgressTick = parseDuration("HOSTELDESK_PROGRESS_TICK", c.ProgressTick)
	c.ProgressStep = parseInt("HOSTELDESK_PROGRESS_STEP", c.ProgressStep)
	c.ProgressCap = parseInt("HOSTELDESK_PROGRESS_CAP", c.ProgressCap)

	c.JWTSecret = readEnv("HOSTELDESK_JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = readEnv("HOSTELDESK_JWT_ISSUER", c.JWTIssuer)
	c.SessionTTL = parseDuration("HOSTELDESK_SESSION_TTL", c.SessionTTL)

	c.AdminEmail = readEnv("HOSTELDESK_ADMIN_EMAIL", c.AdminEmail)
	c.AdminPassword = readEnv("HOSTELDESK_ADMIN_PASSWORD", c.AdminPassword)

	if secret := parseSecret("HOSTELDESK_SIGNING_SECRET"); secret != nil {
		c.SigningSecret = secret
	}
	c.SignedURLTTL = parseDuration("HOSTELDESK_SIGNED_TTL", c.SignedURLTTL)

	c.LogLevel = strings.ToLower(readEnv("HOSTELDESK_LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(readEnv("HOSTELDESK_LOG_FORMAT", c.LogFormat))

	c.WorkerConcurrency = parseInt("HOSTELDESK_WORKERS", c.WorkerConcurrency)
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("HOSTELDESK_JWT_SECRET is required")
	}
	if c.GatePolicy != "strict" && c.GatePolicy != "lenient" {
		return fmt.Errorf("unknown gate policy %q", c.GatePolicy)
	}
	if c.MaxPhotoBytes <= 0 {
		c.MaxPhotoBytes = defaultMaxPhotoBytes
	}
	if c.ProgressTick <= 0 {
		c.ProgressTick = defaultProgressTick
	}
	if c.ProgressStep <= 0 {
		c.ProgressStep = defaultProgressStep
	}
	if c.ProgressCap <= 0 || c.ProgressCap > 100 {
		c.ProgressCap = defaultProgressCap
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = defaultSessionTTL
	}
	if c.SignedURLTTL <= 0 {
		c.SignedURLTTL = defaultSignedTTL
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = defaultWorkerCount
	}
	return nil
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseSecret(key string) []byte {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return []byte(v)
	}
	return nil
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return []byte(hex.EncodeToString([]byte("fallbacksecret")))
	}
	return buf
}
