//go:build gocv

package detection

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ironsheep/pose-tools-mcp/internal/log"
	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// OpenPoseDetector runs the OpenPose COCO body model through OpenCV's DNN
// module. Each call is a single-frame inference with no tracking state.
type OpenPoseDetector struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // Protects inference
}

// NewOpenPose loads the network described by cfg.
func NewOpenPose(cfg Config) (*OpenPoseDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("model config not found: %s", cfg.ConfigPath)
		}
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load pose model: %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	log.Info("pose model loaded", "model", cfg.ModelPath, "input", fmt.Sprintf("%dx%d", cfg.InputWidth, cfg.InputHeight))

	return &OpenPoseDetector{
		net:    net,
		config: cfg,
	}, nil
}

// Detect finds body keypoints in img
func (d *OpenPoseDetector) Detect(ctx context.Context, img image.Image) (*pose.LandmarkSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// OpenCV works in BGR; ImageToMatRGB writes the Mat in that order.
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Pt(d.config.InputWidth, d.config.InputHeight),
		gocv.NewScalar(0, 0, 0, 0),
		false, // model was trained on BGR
		false,
	)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	// Output layout: [1, channels, mapH, mapW]
	size := gocv.GetBlobSize(out)
	channels := int(size.Val2)
	mapH := int(size.Val3)
	mapW := int(size.Val4)

	n := len(cocoKeypoints)
	if channels < n {
		return nil, fmt.Errorf("unexpected pose output: %d channels, want at least %d", channels, n)
	}

	peaks := make([]heatmapPeak, n)
	for k := 0; k < n; k++ {
		heat := gocv.GetBlobChannel(out, 0, k)
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(heat)
		heat.Close()
		peaks[k] = heatmapPeak{X: maxLoc.X, Y: maxLoc.Y, Confidence: float64(maxVal)}
	}

	set := collectKeypoints(peaks, mapW, mapH, d.config.ConfidenceThresh, d.config.MinKeypoints)
	log.Debug("openpose inference", "keypoints", set.Len(), "map", fmt.Sprintf("%dx%d", mapW, mapH))
	return set, nil
}

// Close releases the network
func (d *OpenPoseDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
