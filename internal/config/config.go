package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	FaceService FaceServiceConfig `yaml:"face_service"`
	Matching    MatchingConfig    `yaml:"matching"`
	Storage     StorageConfig     `yaml:"storage"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS whitelist, localhost is always allowed
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type FaceServiceConfig struct {
	URL          string `yaml:"url"`            // base URL of the face embedding service
	TimeoutSec   int    `yaml:"timeout_sec"`    // per-request timeout
	MaxImageSize int    `yaml:"max_image_size"` // images are downscaled to this many pixels on the long side
	CacheTTLSec  int    `yaml:"cache_ttl_sec"`  // how long a detection result is reused for the same image
}

// Timeout returns the per-request timeout for the face service.
func (c *FaceServiceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheTTL returns how long detection results are cached.
func (c *FaceServiceConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

type MatchingConfig struct {
	Metric    string  `yaml:"metric"`    // "euclidean" or "cosine"
	Threshold float64 `yaml:"threshold"` // maximum distance accepted as a match
}

type StorageConfig struct {
	RegisteredUsersCSV string `yaml:"registered_users_csv"`
	AttendanceCSV      string `yaml:"attendance_csv"`
	KnownFacesDir      string `yaml:"known_faces_dir"`
	UploadsDir         string `yaml:"uploads_dir"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated environment variable, dropping empty items.
func envList(key string, defaultVal []string) []string {
	env := os.Getenv(key)
	if env == "" {
		return defaultVal
	}
	var out []string
	for item := range strings.SplitSeq(env, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

func (c *Config) applyEnv() {
	c.Server.Host = envString("WEB_HOST", c.Server.Host)
	c.Server.Port = envInt("WEB_PORT", c.Server.Port)
	c.Server.AllowedOrigins = envList("WEB_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.FaceService.URL = envString("FACE_SERVICE_URL", c.FaceService.URL)
	c.FaceService.TimeoutSec = envInt("FACE_SERVICE_TIMEOUT", c.FaceService.TimeoutSec)
	c.FaceService.MaxImageSize = envInt("MAX_IMAGE_SIZE", c.FaceService.MaxImageSize)
	c.FaceService.CacheTTLSec = envInt("FACE_SERVICE_CACHE_TTL", c.FaceService.CacheTTLSec)

	c.Matching.Metric = strings.ToLower(envString("MATCH_METRIC", c.Matching.Metric))
	c.Matching.Threshold = envFloat("MATCH_THRESHOLD", c.Matching.Threshold)

	c.Storage.RegisteredUsersCSV = envString("REGISTERED_USERS_CSV", c.Storage.RegisteredUsersCSV)
	c.Storage.AttendanceCSV = envString("ATTENDANCE_CSV", c.Storage.AttendanceCSV)
	c.Storage.KnownFacesDir = envString("KNOWN_FACES_DIR", c.Storage.KnownFacesDir)
	c.Storage.UploadsDir = envString("UPLOADS_DIR", c.Storage.UploadsDir)
}

// Load returns the embedded defaults overridden by environment variables.
func Load() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile layers a YAML file between the embedded defaults and the environment,
// then validates the result. An empty path validates what Load returns.
func LoadFile(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Load()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		cfg = defaults()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.applyEnv()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port out of range: %d", c.Server.Port))
	}
	if c.FaceService.URL == "" {
		errs = append(errs, errors.New("face service url is required"))
	}
	switch c.Matching.Metric {
	case "euclidean", "cosine":
	default:
		errs = append(errs, fmt.Errorf("unknown match metric %q", c.Matching.Metric))
	}
	if c.Matching.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("match threshold must be positive, got %v", c.Matching.Threshold))
	}
	if c.Storage.RegisteredUsersCSV == "" || c.Storage.AttendanceCSV == "" {
		errs = append(errs, errors.New("csv paths are required"))
	}
	if c.Storage.KnownFacesDir == "" || c.Storage.UploadsDir == "" {
		errs = append(errs, errors.New("image directories are required"))
	}
	return errors.Join(errs...)
}
