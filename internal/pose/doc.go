// Package pose holds the landmark model and the elbow pose check.
//
// Landmarks are stored in a LandmarkSet indexed by LandmarkID, which follows
// the MediaPipe pose numbering. Coordinates produced by detectors are
// normalized: (0,0) is the top-left corner of the image and (1,1) the
// bottom-right.
//
// # Angles
//
// Angle measures the interior angle at a vertex from three points. The
// result is always within [0, 180]. A vertex that coincides with either outer
// point yields ErrDegenerateGeometry instead of a number.
//
// # Validation
//
// Validator measures the left and right elbow (shoulder, elbow, wrist) and
// marks each correct when the angle lies in the closed range [70, 110].
// Report renders one line per joint, left first:
//
//	Left elbow pose is correct.
//	Right elbow angle 150.00 is incorrect. Expected: 70-110 degrees.
//
// A landmark absent from the set is reported as a MissingLandmarkError;
// the validator never substitutes a value.
package pose
