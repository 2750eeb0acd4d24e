package pose

import (
	"fmt"
	"strings"
)

// Range is a closed interval of degrees.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether Min <= deg <= Max.
func (r Range) Contains(deg float64) bool {
	return r.Min <= deg && deg <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("%g-%g", r.Min, r.Max)
}

// ElbowRange is the acceptable elbow angle.
var ElbowRange = Range{Min: 70, Max: 110}

// Joint is an angle measured at Vertex between First and Last.
type Joint struct {
	Name   string
	Label  string
	First  LandmarkID
	Vertex LandmarkID
	Last   LandmarkID
	Range  Range
}

// Tracked joints, in report order.
var (
	LeftElbowJoint = Joint{
		Name:   "left_elbow",
		Label:  "Left elbow",
		First:  LeftShoulder,
		Vertex: LeftElbow,
		Last:   LeftWrist,
		Range:  ElbowRange,
	}
	RightElbowJoint = Joint{
		Name:   "right_elbow",
		Label:  "Right elbow",
		First:  RightShoulder,
		Vertex: RightElbow,
		Last:   RightWrist,
		Range:  ElbowRange,
	}
)

// Judgment is the verdict for one joint.
type Judgment struct {
	Joint   Joint
	Angle   float64
	Correct bool
}

// Message is the feedback line shown to the user.
func (j Judgment) Message() string {
	if j.Correct {
		return fmt.Sprintf("%s pose is correct.", j.Joint.Label)
	}
	return fmt.Sprintf("%s angle %.2f is incorrect. Expected: %s degrees.", j.Joint.Label, j.Angle, j.Joint.Range)
}

// MarshalJSON flattens the judgment for API responses.
func (j Judgment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Joint   string  `json:"joint"`
		Angle   float64 `json:"angle"`
		Correct bool    `json:"correct"`
		Range   Range   `json:"expected"`
		Message string  `json:"message"`
	}{j.Joint.Name, j.Angle, j.Correct, j.Joint.Range, j.Message()})
}

// Validator judges a fixed list of joints.
type Validator struct {
	joints []Joint
}

// NewValidator returns a validator for the given joints. With no arguments it
// checks the left then the right elbow.
func NewValidator(joints ...Joint) *Validator {
	if len(joints) == 0 {
		joints = []Joint{LeftElbowJoint, RightElbowJoint}
	}
	return &Validator{joints: joints}
}

// Joints returns the joints in report order.
func (v *Validator) Joints() []Joint {
	return v.joints
}

// Validate measures every joint. A missing landmark or a degenerate angle
// fails the whole validation; no partial result is returned.
func (v *Validator) Validate(set *LandmarkSet) ([]Judgment, error) {
	out := make([]Judgment, 0, len(v.joints))
	for _, j := range v.joints {
		deg, err := Measure(set, j)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", j.Name, err)
		}
		out = append(out, Judgment{
			Joint:   j,
			Angle:   deg,
			Correct: j.Range.Contains(deg),
		})
	}
	return out, nil
}

// Measure computes the angle of j from set.
func Measure(set *LandmarkSet, j Joint) (float64, error) {
	a, err := set.Lookup(j.First)
	if err != nil {
		return 0, err
	}
	b, err := set.Lookup(j.Vertex)
	if err != nil {
		return 0, err
	}
	c, err := set.Lookup(j.Last)
	if err != nil {
		return 0, err
	}
	return Angle(a, b, c)
}

// Report joins the judgment messages with newlines, in order.
func Report(judgments []Judgment) string {
	lines := make([]string, len(judgments))
	for i, j := range judgments {
		lines[i] = j.Message()
	}
	return strings.Join(lines, "\n")
}
