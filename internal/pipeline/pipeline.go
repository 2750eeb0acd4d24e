// Package pipeline runs a single image through detection, validation and
// annotation and assembles the user-facing feedback.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ironsheep/pose-tools-mcp/internal/detection"
	"github.com/ironsheep/pose-tools-mcp/internal/imaging"
	"github.com/ironsheep/pose-tools-mcp/internal/log"
	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// NoPoseFeedback is returned when the detector finds no person.
const NoPoseFeedback = "No Pose Detected"

// Result is the outcome of one Process call.
type Result struct {
	Feedback  string
	Image     image.Image
	Detected  bool
	Landmarks *pose.LandmarkSet
	Judgments []pose.Judgment
	Elapsed   time.Duration
}

// ProcessFunc analyzes one image.
type ProcessFunc func(ctx context.Context, img image.Image) (*Result, error)

// Clock returns the current time.
type Clock func() time.Time

// Timed wraps fn so that the wall time from entry to exit is recorded in
// Result.Elapsed and, when a pose was found, appended to the feedback.
func Timed(fn ProcessFunc, clock Clock) ProcessFunc {
	if clock == nil {
		clock = time.Now
	}
	return func(ctx context.Context, img image.Image) (*Result, error) {
		start := clock()
		res, err := fn(ctx, img)
		if err != nil || res == nil {
			return res, err
		}
		res.Elapsed = clock().Sub(start)
		if res.Detected {
			res.Feedback += "\n" + FormatElapsed(res.Elapsed)
		}
		return res, nil
	}
}

// FormatElapsed renders a duration as the timing line.
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("Execution Time: %.2f seconds", d.Seconds())
}

// Pipeline owns nothing but borrows a detector; the caller closes it.
type Pipeline struct {
	detector  detection.Detector
	validator *pose.Validator
	annotator *imaging.Annotator
	clock     Clock

	mu      sync.Mutex // serializes detector access
	process ProcessFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithValidator replaces the default elbow validator.
func WithValidator(v *pose.Validator) Option {
	return func(p *Pipeline) {
		if v != nil {
			p.validator = v
		}
	}
}

// WithAnnotator replaces the default green-marker annotator.
func WithAnnotator(a *imaging.Annotator) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.annotator = a
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(c Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// New creates a pipeline around d.
func New(d detection.Detector, opts ...Option) (*Pipeline, error) {
	if d == nil {
		return nil, errors.New("pipeline: detector is required")
	}
	p := &Pipeline{
		detector:  d,
		validator: pose.NewValidator(),
		annotator: imaging.DefaultAnnotator(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.process = Timed(p.analyze, p.clock)
	return p, nil
}

// Validator returns the validator used for judgments.
func (p *Pipeline) Validator() *pose.Validator {
	return p.validator
}

// Process detects, validates and annotates img.
func (p *Pipeline) Process(ctx context.Context, img image.Image) (*Result, error) {
	return p.process(ctx, img)
}

func (p *Pipeline) analyze(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil {
		return nil, errors.New("no image provided")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := p.detect(ctx, img)
	if err != nil {
		return nil, err
	}
	if set == nil || set.Len() == 0 {
		log.Debug("no pose detected", "bounds", img.Bounds().String())
		return &Result{
			Feedback: NoPoseFeedback,
			Image:    img,
		}, nil
	}

	judgments, err := p.validator.Validate(set)
	if err != nil {
		return nil, err
	}

	annotated, err := p.annotator.Annotate(img, set)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	log.Debug("pose analyzed", "landmarks", set.Len(), "judgments", len(judgments))
	return &Result{
		Feedback:  pose.Report(judgments),
		Image:     annotated,
		Detected:  true,
		Landmarks: set,
		Judgments: judgments,
	}, nil
}

func (p *Pipeline) detect(ctx context.Context, img image.Image) (*pose.LandmarkSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, err := p.detector.Detect(ctx, img)
	if err != nil {
		return nil, &DetectError{Err: err}
	}
	return set, nil
}

// DetectError reports a detector failure, as opposed to a problem with the
// landmarks it returned.
type DetectError struct {
	Err error
}

func (e *DetectError) Error() string {
	return "detect: " + e.Err.Error()
}

func (e *DetectError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err came from measuring the landmarks.
func IsValidationError(err error) bool {
	return errors.Is(err, pose.ErrMissingLandmark) || errors.Is(err, pose.ErrDegenerateGeometry)
}
