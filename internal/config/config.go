package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"

	EstimatorStub   = "stub"
	EstimatorVision = "vision"
)

var (
	ErrSecretKeyMissing  = errors.New("SECRET_KEY is required")
	ErrSecretKeyInsecure = errors.New("SECRET_KEY must be at least 32 characters and not a placeholder")
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"changeme":                                   {},
	"secret":                                     {},
}

// Config captures the runtime configuration for the service.
type Config struct {
	Port         string
	DBPath       string
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	LogLevel     string
	LogFormat    string

	MaxPhotoBytes   int
	HistoryPageSize int

	Blob      BlobConfig
	Estimator EstimatorConfig
}

type BlobConfig struct {
	Backend    string
	Dir        string
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

type EstimatorConfig struct {
	Kind    string
	Delay   time.Duration
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	secretKey, err := ResolveSecretKey()
	if err != nil {
		return Config{}, err
	}
	port, err := ResolvePort()
	if err != nil {
		return Config{}, err
	}

	location, err := time.LoadLocation(getEnv("TZ", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TZ: %w", err)
	}

	cfg := Config{
		Port:            port,
		DBPath:          ResolveDBPath(),
		SecretKey:       secretKey,
		Location:        location,
		CookieSecure:    parseBoolWithDefault(os.Getenv("COOKIE_SECURE"), false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		MaxPhotoBytes:   parseIntWithDefault(os.Getenv("MAX_PHOTO_BYTES"), 10<<20),
		HistoryPageSize: parseIntWithDefault(os.Getenv("HISTORY_PAGE_SIZE"), 10),
		Blob: BlobConfig{
			Backend:    strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendLocal)),
			Dir:        getEnv("BLOB_DIR", filepath.Join("data", "photos")),
			Bucket:     os.Getenv("S3_BUCKET"),
			Region:     firstNonEmpty(os.Getenv("S3_REGION"), os.Getenv("AWS_REGION"), "us-east-1"),
			Endpoint:   os.Getenv("S3_ENDPOINT"),
			AccessKey:  os.Getenv("S3_ACCESS_KEY"),
			SecretKey:  os.Getenv("S3_SECRET_KEY"),
			PresignTTL: parseDurationWithDefault(os.Getenv("S3_PRESIGN_TTL"), 15*time.Minute),
		},
		Estimator: EstimatorConfig{
			Kind:    strings.ToLower(getEnv("ESTIMATOR", EstimatorStub)),
			Delay:   parseDurationWithDefault(os.Getenv("ESTIMATOR_DELAY"), 1200*time.Millisecond),
			APIKey:  firstNonEmpty(os.Getenv("VISION_API_KEY"), os.Getenv("OPENAI_API_KEY")),
			BaseURL: os.Getenv("VISION_BASE_URL"),
			Model:   os.Getenv("VISION_MODEL"),
			Timeout: parseDurationWithDefault(os.Getenv("VISION_TIMEOUT"), 60*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.Blob.Backend {
	case BlobBackendLocal:
	case BlobBackendS3:
		if strings.TrimSpace(cfg.Blob.Bucket) == "" {
			return errors.New("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", cfg.Blob.Backend)
	}

	switch cfg.Estimator.Kind {
	case EstimatorStub:
	case EstimatorVision:
		if strings.TrimSpace(cfg.Estimator.APIKey) == "" {
			return errors.New("VISION_API_KEY is required when ESTIMATOR=vision")
		}
	default:
		return fmt.Errorf("unknown ESTIMATOR %q", cfg.Estimator.Kind)
	}

	if cfg.MaxPhotoBytes <= 0 {
		return errors.New("MAX_PHOTO_BYTES must be positive")
	}
	if cfg.HistoryPageSize <= 0 {
		return errors.New("HISTORY_PAGE_SIZE must be positive")
	}
	return nil
}

func ResolveSecretKey() (string, error) {
	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secretKey == "" {
		return "", ErrSecretKeyMissing
	}
	if _, placeholder := insecureSecretKeys[strings.ToLower(secretKey)]; placeholder || len(secretKey) < 32 {
		return "", ErrSecretKeyInsecure
	}
	return secretKey, nil
}

// ResolveDBPath is split out so the maintenance commands can run without
// the rest of the server configuration.
func ResolveDBPath() string {
	return getEnv("DB_PATH", filepath.Join("data", "mealsnap.db"))
}

func ResolvePort() (string, error) {
	raw := getEnv("PORT", "8080")
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return strconv.Itoa(port), nil
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
