package pose

import (
	"errors"
	"testing"
)

func TestLandmarkID_String(t *testing.T) {
	tests := []struct {
		id   LandmarkID
		want string
	}{
		{Nose, "nose"},
		{LeftShoulder, "left_shoulder"},
		{RightElbow, "right_elbow"},
		{LeftWrist, "left_wrist"},
		{RightFootIndex, "right_foot_index"},
		{NumLandmarks, "landmark(33)"},
	}

	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String(%d): got %q, want %q", int(tt.id), got, tt.want)
		}
	}
}

func TestParseLandmarkID(t *testing.T) {
	for id := LandmarkID(0); id < NumLandmarks; id++ {
		got, err := ParseLandmarkID(id.String())
		if err != nil {
			t.Fatalf("ParseLandmarkID(%q) failed: %v", id.String(), err)
		}
		if got != id {
			t.Errorf("ParseLandmarkID(%q): got %d, want %d", id.String(), got, id)
		}
	}

	if _, err := ParseLandmarkID("left_tail"); err == nil {
		t.Error("ParseLandmarkID should fail for unknown names")
	}
}

func TestLandmarkSet_GetAndLookup(t *testing.T) {
	s := NewLandmarkSet()
	s.Set(LeftElbow, Point2D{X: 0.4, Y: 0.6}, 0.9)
	s.Set(NumLandmarks, Point2D{X: 1, Y: 1}, 1) // ignored

	if s.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", s.Len())
	}

	p, ok := s.Get(LeftElbow)
	if !ok || p.X != 0.4 || p.Y != 0.6 {
		t.Errorf("Get(left_elbow): got %v, %v", p, ok)
	}

	if _, ok := s.Get(RightElbow); ok {
		t.Error("Get(right_elbow) should report absent")
	}

	_, err := s.Lookup(RightElbow)
	if !errors.Is(err, ErrMissingLandmark) {
		t.Errorf("Lookup: expected ErrMissingLandmark, got %v", err)
	}
}

func TestLandmarkSet_NilIsEmpty(t *testing.T) {
	var s *LandmarkSet
	if s.Len() != 0 {
		t.Error("nil set should have zero length")
	}
	if _, ok := s.Get(Nose); ok {
		t.Error("nil set should not contain landmarks")
	}
	if s.Landmarks() != nil {
		t.Error("nil set should list no landmarks")
	}
}

func TestLandmarkSet_JSON(t *testing.T) {
	s := NewLandmarkSet()
	s.Set(RightWrist, Point2D{X: 0.75, Y: 0.25}, 0.5)
	s.Set(Nose, Point2D{X: 0.5, Y: 0.1}, 1)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `[{"name":"nose","x":0.5,"y":0.1,"visibility":1},{"name":"right_wrist","x":0.75,"y":0.25,"visibility":0.5}]`
	if string(data) != want {
		t.Errorf("Marshal:\ngot  %s\nwant %s", data, want)
	}

	var decoded LandmarkSet
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	p, ok := decoded.Get(RightWrist)
	if !ok || p != (Point2D{X: 0.75, Y: 0.25}) {
		t.Errorf("decoded right_wrist: got %v, %v", p, ok)
	}
}

func TestLandmarkSet_UnmarshalUnknownName(t *testing.T) {
	var s LandmarkSet
	err := json.Unmarshal([]byte(`[{"name":"tail","x":0,"y":0}]`), &s)
	if err == nil {
		t.Error("expected error for unknown landmark name")
	}
}
