package pose

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingLandmark is matched by every MissingLandmarkError.
	ErrMissingLandmark = errors.New("missing landmark")

	// ErrDegenerateGeometry is returned when an angle is requested for a
	// vertex that coincides with one of its outer points.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// MissingLandmarkError names the landmark absent from a detection.
type MissingLandmarkError struct {
	ID LandmarkID
}

func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("missing landmark: %s", e.ID)
}

func (e *MissingLandmarkError) Is(target error) bool {
	return target == ErrMissingLandmark
}
