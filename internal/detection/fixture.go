package detection

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"sync/atomic"

	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// Fixture replays a fixed detection result for every image. It backs the
// "fixture" backend, used for demos without a model, and stands in for the
// network in tests.
type Fixture struct {
	set   *pose.LandmarkSet
	err   error
	calls atomic.Int64
}

// NewFixture returns a detector that always reports set. A nil set means
// every image has no pose.
func NewFixture(set *pose.LandmarkSet) *Fixture {
	return &Fixture{set: set}
}

// NewFailingFixture returns a detector whose every call fails with err.
func NewFailingFixture(err error) *Fixture {
	return &Fixture{err: err}
}

// LoadFixture reads a landmark list in the API JSON shape:
//
//	[{"name": "left_elbow", "x": 0.41, "y": 0.52}, ...]
//
// An empty list or null means no pose.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return nil, fmt.Errorf("fixture backend needs a landmark file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NewFixture(nil), nil
	}

	set := pose.NewLandmarkSet()
	if err := set.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if set.Len() == 0 {
		return NewFixture(nil), nil
	}
	return NewFixture(set), nil
}

// Detect returns the configured result.
func (f *Fixture) Detect(ctx context.Context, img image.Image) (*pose.LandmarkSet, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("detect: nil image")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

// Calls returns how many times Detect has been invoked.
func (f *Fixture) Calls() int64 {
	return f.calls.Load()
}

// Close is a no-op
func (f *Fixture) Close() error {
	return nil
}
