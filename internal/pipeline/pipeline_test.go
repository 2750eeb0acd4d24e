package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pose-tools-mcp/internal/detection"
	"github.com/ironsheep/pose-tools-mcp/internal/imaging"
	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	return img
}

// arms places both shoulders above their elbows and rotates each wrist so the
// elbows measure leftDeg and rightDeg.
func arms(leftDeg, rightDeg float64) *pose.LandmarkSet {
	s := pose.NewLandmarkSet()
	place := func(shoulder, elbow, wrist pose.LandmarkID, x, deg float64) {
		rad := deg * math.Pi / 180
		s.Set(shoulder, pose.Point2D{X: x, Y: 0.3}, 1)
		s.Set(elbow, pose.Point2D{X: x, Y: 0.5}, 1)
		s.Set(wrist, pose.Point2D{X: x + 0.2*math.Sin(rad), Y: 0.5 - 0.2*math.Cos(rad)}, 1)
	}
	place(pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, 0.3, leftDeg)
	place(pose.RightShoulder, pose.RightElbow, pose.RightWrist, 0.7, rightDeg)
	return s
}

// stepClock advances by step on every call.
func stepClock(step time.Duration) Clock {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(step)
		return now
	}
}

func TestNew_RequiresDetector(t *testing.T) {
	p, err := New(nil)
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestProcess_NoPose(t *testing.T) {
	det := detection.NewFixture(nil)
	p, err := New(det, WithClock(stepClock(time.Second)))
	require.NoError(t, err)

	img := grayImage(40, 30)
	res, err := p.Process(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, NoPoseFeedback, res.Feedback)
	assert.False(t, res.Detected)
	assert.Nil(t, res.Landmarks)
	assert.Empty(t, res.Judgments)
	assert.True(t, res.Image == image.Image(img), "image should be returned unchanged")
	assert.Equal(t, grayImage(40, 30).Pix, img.Pix)
	assert.EqualValues(t, 1, det.Calls())
}

func TestProcess_EmptySetIsNoPose(t *testing.T) {
	p, err := New(detection.NewFixture(pose.NewLandmarkSet()))
	require.NoError(t, err)

	res, err := p.Process(context.Background(), grayImage(10, 10))
	require.NoError(t, err)
	assert.Equal(t, NoPoseFeedback, res.Feedback)
}

func TestProcess_Feedback(t *testing.T) {
	det := detection.NewFixture(arms(90, 150))
	p, err := New(det, WithClock(stepClock(1500*time.Millisecond)))
	require.NoError(t, err)

	img := grayImage(100, 80)
	res, err := p.Process(context.Background(), img)
	require.NoError(t, err)

	want := "Left elbow pose is correct.\n" +
		"Right elbow angle 150.00 is incorrect. Expected: 70-110 degrees.\n" +
		"Execution Time: 1.50 seconds"
	assert.Equal(t, want, res.Feedback)
	assert.True(t, res.Detected)
	assert.Equal(t, 1500*time.Millisecond, res.Elapsed)
	require.Len(t, res.Judgments, 2)
	assert.True(t, res.Judgments[0].Correct)
	assert.False(t, res.Judgments[1].Correct)
	assert.EqualValues(t, 1, det.Calls())
}

func TestProcess_Annotates(t *testing.T) {
	set := pose.NewLandmarkSet()
	set.Set(pose.LeftShoulder, pose.Point2D{X: 0.5, Y: 0.5}, 1)
	set.Set(pose.LeftElbow, pose.Point2D{X: 0.5, Y: 0.7}, 1)
	set.Set(pose.LeftWrist, pose.Point2D{X: 0.7, Y: 0.7}, 1)
	set.Set(pose.RightShoulder, pose.Point2D{X: 0.2, Y: 0.2}, 1)
	set.Set(pose.RightElbow, pose.Point2D{X: 0.2, Y: 0.4}, 1)
	set.Set(pose.RightWrist, pose.Point2D{X: 0.4, Y: 0.4}, 1)

	p, err := New(detection.NewFixture(set))
	require.NoError(t, err)

	img := grayImage(100, 60)
	res, err := p.Process(context.Background(), img)
	require.NoError(t, err)

	out, ok := res.Image.(*image.RGBA)
	require.True(t, ok, "annotated image should be RGBA, got %T", res.Image)
	assert.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, out.RGBAAt(50, 30))
	// Input stays untouched.
	assert.Equal(t, color.RGBA{R: 90, G: 90, B: 90, A: 255}, img.RGBAAt(50, 30))
}

func TestProcess_CustomAnnotator(t *testing.T) {
	a, err := imaging.NewAnnotator(2, "#FF0000", imaging.RGB)
	require.NoError(t, err)

	p, err := New(detection.NewFixture(arms(90, 90)), WithAnnotator(a))
	require.NoError(t, err)

	res, err := p.Process(context.Background(), grayImage(100, 100))
	require.NoError(t, err)

	out := res.Image.(*image.RGBA)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(30, 50))
}

func TestProcess_ValidationErrors(t *testing.T) {
	missing := arms(90, 90)
	partial := pose.NewLandmarkSet()
	for _, l := range missing.Landmarks() {
		if l.ID != pose.RightWrist {
			partial.Set(l.ID, l.Point(), l.Visibility)
		}
	}

	degenerate := arms(90, 90)
	elbow, _ := degenerate.Get(pose.LeftElbow)
	degenerate.Set(pose.LeftShoulder, elbow, 1)

	tests := []struct {
		name   string
		set    *pose.LandmarkSet
		target error
	}{
		{"missing right wrist", partial, pose.ErrMissingLandmark},
		{"degenerate left elbow", degenerate, pose.ErrDegenerateGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(detection.NewFixture(tt.set))
			require.NoError(t, err)

			res, err := p.Process(context.Background(), grayImage(20, 20))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestProcess_DetectorError(t *testing.T) {
	boom := errors.New("inference failed")
	p, err := New(detection.NewFailingFixture(boom))
	require.NoError(t, err)

	_, err = p.Process(context.Background(), grayImage(10, 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsValidationError(err))

	var de *DetectError
	assert.ErrorAs(t, err, &de)
}

func TestProcess_Canceled(t *testing.T) {
	det := detection.NewFixture(arms(90, 90))
	p, err := New(det)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Process(ctx, grayImage(10, 10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, det.Calls())
}

func TestProcess_NilImage(t *testing.T) {
	p, err := New(detection.NewFixture(nil))
	require.NoError(t, err)

	_, err = p.Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestTimed(t *testing.T) {
	calls := 0
	inner := func(ctx context.Context, img image.Image) (*Result, error) {
		calls++
		return &Result{Feedback: "ok", Detected: calls == 1}, nil
	}
	fn := Timed(inner, stepClock(250*time.Millisecond))

	res, err := fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok\nExecution Time: 0.25 seconds", res.Feedback)

	res, err = fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Feedback, "no timing line without a pose")
	assert.Equal(t, 250*time.Millisecond, res.Elapsed)

	failing := Timed(func(context.Context, image.Image) (*Result, error) {
		return nil, errors.New("nope")
	}, nil)
	_, err = failing(context.Background(), nil)
	assert.EqualError(t, err, "nope")
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "Execution Time: 0.00 seconds", FormatElapsed(0))
	assert.Equal(t, "Execution Time: 2.35 seconds", FormatElapsed(2345*time.Millisecond))
}

// exclusiveDetector fails if two Detect calls overlap.
type exclusiveDetector struct {
	inFlight atomic.Int32
	overlap  atomic.Bool
	set      *pose.LandmarkSet
}

func (d *exclusiveDetector) Detect(ctx context.Context, img image.Image) (*pose.LandmarkSet, error) {
	if d.inFlight.Add(1) > 1 {
		d.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	d.inFlight.Add(-1)
	return d.set, nil
}

func (d *exclusiveDetector) Close() error { return nil }

func TestProcess_SerializesDetector(t *testing.T) {
	det := &exclusiveDetector{set: arms(90, 90)}
	p, err := New(det)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Process(context.Background(), grayImage(20, 20))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, det.overlap.Load(), "detector calls overlapped")
}
