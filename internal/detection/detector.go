package detection

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// Backend names accepted by New.
const (
	BackendOpenPose = "openpose"
	BackendFixture  = "fixture"
)

// ErrBackendUnavailable is returned when a backend was not compiled in.
var ErrBackendUnavailable = errors.New("detector backend unavailable")

// Detector finds body landmarks in a single image.
type Detector interface {
	// Detect returns the landmarks of the most prominent person, or a nil
	// set when no pose is found. Coordinates are normalized to [0,1].
	Detect(ctx context.Context, img image.Image) (*pose.LandmarkSet, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	Backend          string  // "openpose" or "fixture"
	ModelPath        string  // Network weights (Caffe .caffemodel or ONNX)
	ConfigPath       string  // Network description (.prototxt); empty for ONNX
	ConfidenceThresh float64 // Minimum heatmap peak to accept a keypoint
	InputWidth       int     // Network input width
	InputHeight      int     // Network input height
	MinKeypoints     int     // Fewer accepted keypoints than this means no pose
	FixturePath      string  // Landmark JSON replayed by the fixture backend
}

// DefaultConfig returns production defaults for the OpenPose COCO model
func DefaultConfig() Config {
	return Config{
		Backend:          BackendOpenPose,
		ModelPath:        "models/pose_iter_440000.caffemodel",
		ConfigPath:       "models/openpose_pose_coco.prototxt",
		ConfidenceThresh: 0.1,
		InputWidth:       368,
		InputHeight:      368,
		MinKeypoints:     1,
	}
}

// New constructs the backend named in cfg. The caller owns the returned
// detector and must Close it.
func New(cfg Config) (Detector, error) {
	switch cfg.Backend {
	case BackendOpenPose, "":
		d, err := NewOpenPose(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendFixture:
		f, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.Backend)
	}
}
