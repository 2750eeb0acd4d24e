package pose

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Point2D is a 2D coordinate. Detector output is normalized to [0,1] of the
// image width and height; pixel coordinates use the same type.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dot returns the dot product of p and q.
func (p Point2D) Dot(q Point2D) float64 {
	return p.X*q.X + p.Y*q.Y
}

// LandmarkID indexes a body landmark. Values follow the MediaPipe pose
// landmark numbering so detector backends can map into a shared layout.
type LandmarkID int

// Pose landmark indices.
const (
	Nose LandmarkID = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
	NumLandmarks
)

var landmarkNames = [NumLandmarks]string{
	"nose",
	"left_eye_inner",
	"left_eye",
	"left_eye_outer",
	"right_eye_inner",
	"right_eye",
	"right_eye_outer",
	"left_ear",
	"right_ear",
	"mouth_left",
	"mouth_right",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_pinky",
	"right_pinky",
	"left_index",
	"right_index",
	"left_thumb",
	"right_thumb",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
	"left_heel",
	"right_heel",
	"left_foot_index",
	"right_foot_index",
}

// Valid reports whether id is a known landmark index.
func (id LandmarkID) Valid() bool {
	return id >= 0 && id < NumLandmarks
}

func (id LandmarkID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("landmark(%d)", int(id))
	}
	return landmarkNames[id]
}

// ParseLandmarkID resolves a landmark name such as "left_elbow".
func ParseLandmarkID(name string) (LandmarkID, error) {
	for i, n := range landmarkNames {
		if n == name {
			return LandmarkID(i), nil
		}
	}
	return -1, fmt.Errorf("unknown landmark %q", name)
}

// Landmark is one detected point.
type Landmark struct {
	ID         LandmarkID `json:"-"`
	Name       string     `json:"name"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Visibility float64    `json:"visibility,omitempty"`
}

// Point returns the landmark position.
func (l Landmark) Point() Point2D {
	return Point2D{X: l.X, Y: l.Y}
}

// LandmarkSet holds at most one point per LandmarkID. A detector fills it
// once per image; consumers only read it.
type LandmarkSet struct {
	points     [NumLandmarks]Point2D
	visibility [NumLandmarks]float64
	present    [NumLandmarks]bool
}

// NewLandmarkSet returns an empty set.
func NewLandmarkSet() *LandmarkSet {
	return &LandmarkSet{}
}

// Set stores a point for id. Unknown ids are ignored.
func (s *LandmarkSet) Set(id LandmarkID, p Point2D, visibility float64) {
	if !id.Valid() {
		return
	}
	s.points[id] = p
	s.visibility[id] = visibility
	s.present[id] = true
}

// Get returns the point for id and whether it was detected.
func (s *LandmarkSet) Get(id LandmarkID) (Point2D, bool) {
	if s == nil || !id.Valid() || !s.present[id] {
		return Point2D{}, false
	}
	return s.points[id], true
}

// Lookup is Get with a MissingLandmarkError for absent points.
func (s *LandmarkSet) Lookup(id LandmarkID) (Point2D, error) {
	p, ok := s.Get(id)
	if !ok {
		return Point2D{}, &MissingLandmarkError{ID: id}
	}
	return p, nil
}

// Len returns the number of detected landmarks.
func (s *LandmarkSet) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, ok := range s.present {
		if ok {
			n++
		}
	}
	return n
}

// Landmarks returns the detected landmarks in ascending id order.
func (s *LandmarkSet) Landmarks() []Landmark {
	if s == nil {
		return nil
	}
	out := make([]Landmark, 0, NumLandmarks)
	for i := LandmarkID(0); i < NumLandmarks; i++ {
		if !s.present[i] {
			continue
		}
		out = append(out, Landmark{
			ID:         i,
			Name:       i.String(),
			X:          s.points[i].X,
			Y:          s.points[i].Y,
			Visibility: s.visibility[i],
		})
	}
	return out
}

// MarshalJSON encodes the set as a list of named landmarks.
func (s *LandmarkSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Landmarks())
}

// UnmarshalJSON decodes a list of named landmarks. Unknown names are an error.
func (s *LandmarkSet) UnmarshalJSON(data []byte) error {
	var list []Landmark
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	decoded, err := FromLandmarks(list)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// FromLandmarks builds a set from named landmarks.
func FromLandmarks(list []Landmark) (*LandmarkSet, error) {
	s := NewLandmarkSet()
	for _, l := range list {
		id, err := ParseLandmarkID(l.Name)
		if err != nil {
			return nil, err
		}
		s.Set(id, l.Point(), l.Visibility)
	}
	return s, nil
}
