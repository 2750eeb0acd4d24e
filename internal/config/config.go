// Package config loads pose-tools-mcp settings.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// POSE_* environment variables (a .env file in the working directory is
// read into the environment first). The merged result is validated before
// it is returned.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/pose-tools-mcp/internal/detection"
	"github.com/ironsheep/pose-tools-mcp/internal/imaging"
	"github.com/ironsheep/pose-tools-mcp/internal/log"
)

// EnvConfigPath names the variable that points at a YAML config file.
const EnvConfigPath = "POSE_CONFIG"

// Config is the complete application configuration.
type Config struct {
	Detector DetectorConfig `yaml:"detector"`
	Marker   MarkerConfig   `yaml:"marker"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

// DetectorConfig selects and tunes the landmark detector.
type DetectorConfig struct {
	Backend          string  `yaml:"backend" validate:"required,oneof=openpose fixture"`
	ModelPath        string  `yaml:"model_path" validate:"required_if=Backend openpose"`
	ConfigPath       string  `yaml:"config_path" validate:"required_if=Backend openpose"`
	FixturePath      string  `yaml:"fixture_path" validate:"required_if=Backend fixture"`
	ConfidenceThresh float64 `yaml:"confidence_threshold" validate:"gt=0,lte=1"`
	InputWidth       int     `yaml:"input_width" validate:"gt=0"`
	InputHeight      int     `yaml:"input_height" validate:"gt=0"`
	MinKeypoints     int     `yaml:"min_keypoints" validate:"gte=1"`
}

// MarkerConfig controls how landmarks are drawn.
type MarkerConfig struct {
	Radius int    `yaml:"radius" validate:"gte=1,lte=100"`
	Color  string `yaml:"color" validate:"required,hexcolor"`
}

// HTTPConfig configures the web front end.
type HTTPConfig struct {
	Addr        string `yaml:"addr" validate:"required,hostname_port"`
	BodyLimitMB int    `yaml:"body_limit_mb" validate:"gte=1"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := detection.DefaultConfig()
	return &Config{
		Detector: DetectorConfig{
			Backend:          d.Backend,
			ModelPath:        d.ModelPath,
			ConfigPath:       d.ConfigPath,
			ConfidenceThresh: d.ConfidenceThresh,
			InputWidth:       d.InputWidth,
			InputHeight:      d.InputHeight,
			MinKeypoints:     d.MinKeypoints,
		},
		Marker: MarkerConfig{
			Radius: imaging.DefaultMarkerRadius,
			Color:  imaging.DefaultMarkerColor,
		},
		HTTP: HTTPConfig{
			Addr:        "127.0.0.1:7860",
			BodyLimitMB: 16,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Loader builds a Config from its sources.
type Loader struct {
	useDotEnv bool
	path      string
	getenv    func(string) string
}

// NewLoader creates a loader that reads .env and the process environment.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		getenv:    os.Getenv,
	}
}

// WithDotEnv toggles loading variables from a .env file.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath sets the YAML file, overriding POSE_CONFIG.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithEnv replaces the environment lookup (useful for tests).
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	if getenv != nil {
		l.getenv = getenv
	}
	return l
}

// Load merges all sources and validates the result.
func (l *Loader) Load() (*Config, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to read .env", "error", err)
		}
	}

	cfg := Default()

	path := l.path
	if path == "" {
		path = l.getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(l.getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is shorthand for NewLoader().WithPath(path).Load().
func Load(path string) (*Config, error) {
	return NewLoader().WithPath(path).Load()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("POSE_DETECTOR", &c.Detector.Backend)
	str("POSE_MODEL_PATH", &c.Detector.ModelPath)
	str("POSE_MODEL_CONFIG", &c.Detector.ConfigPath)
	str("POSE_FIXTURE", &c.Detector.FixturePath)
	if v := getenv("POSE_CONFIDENCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid POSE_CONFIDENCE %q: %w", v, err)
		}
		c.Detector.ConfidenceThresh = f
	}
	if err := num("POSE_MARKER_RADIUS", &c.Marker.Radius); err != nil {
		return err
	}
	str("POSE_MARKER_COLOR", &c.Marker.Color)
	str("POSE_HTTP_ADDR", &c.HTTP.Addr)
	if err := num("POSE_BODY_LIMIT_MB", &c.HTTP.BodyLimitMB); err != nil {
		return err
	}
	str("POSE_LOG_LEVEL", &c.Log.Level)
	str("POSE_LOG_FORMAT", &c.Log.Format)
	str("POSE_LOG_FILE", &c.Log.File)

	c.Detector.Backend = strings.ToLower(c.Detector.Backend)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	return nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DetectionConfig converts the detector section for detection.New.
func (c *Config) DetectionConfig() detection.Config {
	return detection.Config{
		Backend:          c.Detector.Backend,
		ModelPath:        c.Detector.ModelPath,
		ConfigPath:       c.Detector.ConfigPath,
		ConfidenceThresh: c.Detector.ConfidenceThresh,
		InputWidth:       c.Detector.InputWidth,
		InputHeight:      c.Detector.InputHeight,
		MinKeypoints:     c.Detector.MinKeypoints,
		FixturePath:      c.Detector.FixturePath,
	}
}

// Annotator builds the marker annotator. Decoded uploads are always RGB, so
// the channel order is not configurable.
func (c *Config) Annotator() (*imaging.Annotator, error) {
	return imaging.NewAnnotator(c.Marker.Radius, c.Marker.Color, imaging.RGB)
}

// LogOptions converts the log section for log.Init.
func (c *Config) LogOptions() log.Options {
	return log.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		File:   c.Log.File,
	}
}
