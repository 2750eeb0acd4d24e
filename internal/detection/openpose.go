//go:build !gocv

package detection

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// OpenPoseDetector is unavailable in builds without the gocv tag.
// Build with `-tags gocv` and OpenCV 4 installed to enable it.
type OpenPoseDetector struct{}

// NewOpenPose reports that the OpenCV backend was not compiled in, and how to
// get a working detector instead.
func NewOpenPose(cfg Config) (*OpenPoseDetector, error) {
	return nil, fmt.Errorf("%w: %q is not compiled into this binary; "+
		"rebuild with `go build -tags gocv` against OpenCV 4, "+
		"or set POSE_DETECTOR=%s with POSE_FIXTURE=<landmarks.json> to replay recorded landmarks",
		ErrBackendUnavailable, BackendOpenPose, BackendFixture)
}

// Detect always fails
func (d *OpenPoseDetector) Detect(ctx context.Context, img image.Image) (*pose.LandmarkSet, error) {
	return nil, ErrBackendUnavailable
}

// Close is a no-op
func (d *OpenPoseDetector) Close() error {
	return nil
}
