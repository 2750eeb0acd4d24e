package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pose-tools-mcp/internal/detection"
	"github.com/ironsheep/pose-tools-mcp/internal/imaging"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pose.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, detection.BackendOpenPose, cfg.Detector.Backend)
	assert.Equal(t, imaging.DefaultMarkerRadius, cfg.Marker.Radius)
	assert.Equal(t, imaging.DefaultMarkerColor, cfg.Marker.Color)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader().WithDotEnv(false).WithEnv(envMap(nil)).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeYAML(t, `
detector:
  backend: fixture
  fixture_path: testdata/arms.json
marker:
  radius: 8
  color: "#FF0000"
  channel_order: bgr
http:
  addr: ":9000"
log:
  level: debug
  format: json
`)

	cfg, err := NewLoader().WithDotEnv(false).WithEnv(envMap(nil)).WithPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, detection.BackendFixture, cfg.Detector.Backend)
	assert.Equal(t, "testdata/arms.json", cfg.Detector.FixturePath)
	assert.Equal(t, 8, cfg.Marker.Radius)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	// Uploads decode to RGB; a leftover channel_order key must not swap R and B.
	a, err := cfg.Annotator()
	require.NoError(t, err)
	assert.Equal(t, imaging.RGB, a.Order)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.1, cfg.Detector.ConfidenceThresh)
	assert.Equal(t, 16, cfg.HTTP.BodyLimitMB)
}

func TestLoad_PathFromEnv(t *testing.T) {
	path := writeYAML(t, "marker:\n  radius: 3\n")

	cfg, err := NewLoader().WithDotEnv(false).WithEnv(envMap(map[string]string{
		EnvConfigPath: path,
	})).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Marker.Radius)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, "marker:\n  radius: 3\n  color: \"#FF0000\"\n")

	cfg, err := NewLoader().WithDotEnv(false).WithPath(path).WithEnv(envMap(map[string]string{
		"POSE_MARKER_RADIUS": "12",
		"POSE_CONFIDENCE":    "0.25",
		"POSE_LOG_LEVEL":     "WARN",
	})).Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Marker.Radius)
	assert.Equal(t, "#FF0000", cfg.Marker.Color)
	assert.Equal(t, 0.25, cfg.Detector.ConfidenceThresh)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"bad yaml", "marker: [", nil},
		{"unknown backend", "", map[string]string{"POSE_DETECTOR": "mediapipe"}},
		{"fixture without path", "", map[string]string{"POSE_DETECTOR": "fixture"}},
		{"radius not a number", "", map[string]string{"POSE_MARKER_RADIUS": "big"}},
		{"radius zero", "marker:\n  radius: 0\n", nil},
		{"bad color", "", map[string]string{"POSE_MARKER_COLOR": "green"}},
		{"confidence above one", "", map[string]string{"POSE_CONFIDENCE": "1.5"}},
		{"confidence not a number", "", map[string]string{"POSE_CONFIDENCE": "high"}},
		{"bad log format", "", map[string]string{"POSE_LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader().WithDotEnv(false).WithEnv(envMap(tt.env))
			if tt.yaml != "" {
				l.WithPath(writeYAML(t, tt.yaml))
			}
			_, err := l.Load()
			assert.Error(t, err)
		})
	}
}

func TestAnnotator_IgnoresChannelOrderEnv(t *testing.T) {
	cfg, err := NewLoader().WithDotEnv(false).WithEnv(envMap(map[string]string{
		"POSE_CHANNEL_ORDER": "bgr",
	})).Load()
	require.NoError(t, err)

	a, err := cfg.Annotator()
	require.NoError(t, err)
	assert.Equal(t, imaging.RGB, a.Order)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().WithDotEnv(false).WithEnv(envMap(nil)).WithPath("/nonexistent/pose.yaml").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Detector.Backend = detection.BackendFixture
	cfg.Detector.FixturePath = "arms.json"
	cfg.Log.File = "/tmp/pose.log"

	dc := cfg.DetectionConfig()
	assert.Equal(t, detection.BackendFixture, dc.Backend)
	assert.Equal(t, "arms.json", dc.FixturePath)
	assert.Equal(t, cfg.Detector.InputWidth, dc.InputWidth)

	a, err := cfg.Annotator()
	require.NoError(t, err)
	assert.Equal(t, imaging.RGB, a.Order)
	assert.Equal(t, 5, a.Radius)

	opts := cfg.LogOptions()
	assert.Equal(t, "/tmp/pose.log", opts.File)
}
