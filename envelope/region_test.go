package envelope

import (
	"math"
	"testing"
)

const sampleTime = 1.0 / 44100

func ramp(t *testing.T) *Envelope {
	t.Helper()
	e := New(false, 0, 1, 0.5)
	e.SetTrackLen(10)
	e.InsertOrReplace(0, 0.2)
	e.InsertOrReplace(10, 0.8)
	return e
}

func TestCollapseRegion(t *testing.T) {
	e := New(false, 0, 1, 0.5)
	e.SetTrackLen(10)
	e.InsertOrReplace(0, 0)
	e.InsertOrReplace(2, 0.4)
	e.InsertOrReplace(4, 1)
	e.InsertOrReplace(8, 0.9)
	e.InsertOrReplace(10, 0.2)

	e.CollapseRegion(3, 6, sampleTime)

	if want, got := 7.0, e.TrackLen(); math.Abs(want-got) > 1e-12 {
		t.Fatalf("span: want %v, got %v", want, got)
	}
	// Left of the cut is untouched, later points moved left by 3.
	if want, got := 0.4, e.Value(2); math.Abs(want-got) > 1e-9 {
		t.Errorf("value at 2: want %v, got %v", want, got)
	}
	if want, got := 0.9, e.Value(5); math.Abs(want-got) > 1e-9 {
		t.Errorf("value at 5 (was 8): want %v, got %v", want, got)
	}
	if want, got := 0.2, e.Value(7); math.Abs(want-got) > 1e-9 {
		t.Errorf("value at 7 (was 10): want %v, got %v", want, got)
	}
	// The interior point at 4 is gone.
	for i := 0; i < e.Len(); i++ {
		if e.PointAt(i).Value == 1 {
			t.Errorf("interior point survived the collapse: %+v", e.PointAt(i))
		}
	}
}

func TestCollapseThenInsertSpaceRestoresBoundaries(t *testing.T) {
	e := New(false, 0, 1, 0.5)
	e.SetTrackLen(10)
	e.InsertOrReplace(0, 0)
	e.InsertOrReplace(2, 0.4)
	e.InsertOrReplace(8, 0.9)
	e.InsertOrReplace(10, 0.2)
	original := map[float64]float64{0: 0, 2: 0.4, 8: 0.9, 10: 0.2}

	e.CollapseRegion(3, 6, sampleTime)
	e.InsertSpace(3, 3)

	if want, got := 10.0, e.TrackLen(); math.Abs(want-got) > 1e-12 {
		t.Fatalf("span: want %v, got %v", want, got)
	}
	for when, want := range original {
		if got := e.Value(when); math.Abs(want-got) > 1e-9 {
			t.Errorf("value at %v: want %v, got %v", when, want, got)
		}
	}
}

func TestInsertSpaceIsFlat(t *testing.T) {
	e := ramp(t)
	e.InsertSpace(5, 4)

	if want, got := 14.0, e.TrackLen(); want != got {
		t.Fatalf("span: want %v, got %v", want, got)
	}
	want := e.Value(5)
	for _, tt := range []float64{5, 6, 8.5, 9} {
		if got := e.Value(tt); math.Abs(want-got) > 1e-9 {
			t.Errorf("gap not flat at %v: want %v, got %v", tt, want, got)
		}
	}
	if want, got := 0.8, e.Value(14); math.Abs(want-got) > 1e-9 {
		t.Errorf("value at new end: want %v, got %v", want, got)
	}
}

func TestPasteEmptyIntoEmpty(t *testing.T) {
	e := New(false, 0, 1, 0.5)
	e.SetTrackLen(10)
	other := New(false, 0, 1, 0.5)
	other.SetTrackLen(4)

	e.Paste(5, other)

	// Same default value on both sides: no points, just a longer span.
	if want, got := 0, e.Len(); want != got {
		t.Errorf("point count: want %v, got %v", want, got)
	}
	if want, got := 14.0, e.TrackLen(); want != got {
		t.Errorf("span: want %v, got %v", want, got)
	}
}

func TestPasteInterior(t *testing.T) {
	e := ramp(t)

	other := New(false, 0, 1, 0.5)
	other.SetTrackLen(4)
	other.InsertOrReplace(0, 1)
	other.InsertOrReplace(4, 1)

	e.Paste(5, other)

	if want, got := 14.0, e.TrackLen(); want != got {
		t.Fatalf("span: want %v, got %v", want, got)
	}
	// The pasted span holds its own curve.
	for _, tt := range []float64{5, 7, 9} {
		if want, got := 1.0, e.Value(tt); math.Abs(want-got) > 1e-9 {
			t.Errorf("pasted value at %v: want %v, got %v", tt, want, got)
		}
	}
	// Guard points preserve the old curve right up to the splice.
	if want, got := 0.5, e.Value(5 - 2*trackEpsilon); math.Abs(want-got) > 1e-6 {
		t.Errorf("left of splice: want %v, got %v", want, got)
	}
	if want, got := 0.8, e.Value(14); math.Abs(want-got) > 1e-9 {
		t.Errorf("shifted end: want %v, got %v", want, got)
	}
}

func TestPasteAtStartOnPoint(t *testing.T) {
	e := ramp(t)

	other := New(false, 0, 1, 0.5)
	other.SetTrackLen(4)
	other.InsertOrReplace(0, 1)
	other.InsertOrReplace(4, 1)

	e.Paste(0, other)

	if want, got := 14.0, e.TrackLen(); want != got {
		t.Fatalf("span: want %v, got %v", want, got)
	}
	for _, tt := range []float64{0, 2, 4 - 2*trackEpsilon} {
		if want, got := 1.0, e.Value(tt); math.Abs(want-got) > 1e-6 {
			t.Errorf("pasted value at %v: want %v, got %v", tt, want, got)
		}
	}
	// The old first point was nudged just right of the pasted span.
	if want, got := 0.2, e.Value(4 + 2*trackEpsilon); math.Abs(want-got) > 1e-3 {
		t.Errorf("old start: want %v, got %v", want, got)
	}
	if want, got := 0.8, e.Value(14); math.Abs(want-got) > 1e-9 {
		t.Errorf("shifted end: want %v, got %v", want, got)
	}
}

func TestRemoveUnneededPoints(t *testing.T) {
	e := New(false, 0, 1, 0.5)
	e.SetTrackLen(10)
	e.InsertOrReplace(0, 0)
	e.InsertOrReplace(5, 0.5) // colinear with its neighbors
	e.InsertOrReplace(10, 1)

	before := map[float64]float64{0: 0, 5: 0.5, 10: 1}
	e.RemoveUnneededPoints(-1, 1e-9)

	if want, got := 2, e.Len(); want != got {
		t.Errorf("point count: want %v, got %v", want, got)
	}
	for when, want := range before {
		if got := e.Value(when); math.Abs(want-got) > 1e-9 {
			t.Errorf("value at %v drifted: want %v, got %v", when, want, got)
		}
	}
}

func TestRemoveUnneededPointsKeepsCorners(t *testing.T) {
	e := triangle(t)
	e.RemoveUnneededPoints(-1, 0.01)

	if want, got := 3, e.Len(); want != got {
		t.Errorf("corner points must survive: want %v, got %v", want, got)
	}
}

func TestSetTrackLenShrinkPreservesBoundary(t *testing.T) {
	e := triangle(t)
	e.SetTrackLen(7.5)

	if want, got := 7.5, e.TrackLen(); want != got {
		t.Fatalf("span: want %v, got %v", want, got)
	}
	if want, got := 3, e.Len(); want != got {
		t.Fatalf("point count: want %v, got %v", want, got)
	}
	if want, got := (Point{Time: 7.5, Value: 0.5}), e.PointAt(2); want != got {
		t.Errorf("boundary point: want %+v, got %+v", want, got)
	}
}

func TestRescaleTimes(t *testing.T) {
	e := triangle(t)
	e.RescaleTimes(20)

	want := []float64{0, 10, 20}
	for i, w := range want {
		if got := e.PointAt(i).Time; got != w {
			t.Errorf("point %d time: want %v, got %v", i, w, got)
		}
	}
	if want, got := 20.0, e.TrackLen(); want != got {
		t.Errorf("span: want %v, got %v", want, got)
	}
}

func TestRescaleTimesZeroLength(t *testing.T) {
	e := triangle(t)
	e.RescaleTimes(0)
	e.RescaleTimes(5)

	for i := 0; i < e.Len(); i++ {
		if got := e.PointAt(i).Time; got != 0 {
			t.Errorf("point %d: want time 0, got %v", i, got)
		}
	}
}

func TestSlice(t *testing.T) {
	e := triangle(t)
	s := e.Slice(2.5, 7.5)

	if want, got := 2.5, s.Offset(); want != got {
		t.Fatalf("offset: want %v, got %v", want, got)
	}
	if want, got := 5.0, s.TrackLen(); want != got {
		t.Fatalf("span: want %v, got %v", want, got)
	}
	want := []Point{{0, 0.5}, {2.5, 1}, {5, 0.5}}
	got := s.Points()
	if len(want) != len(got) {
		t.Fatalf("points:\nwant: %v\ngot:  %v", want, got)
	}
	for i := range want {
		if math.Abs(want[i].Time-got[i].Time) > 1e-12 ||
			math.Abs(want[i].Value-got[i].Value) > 1e-12 {
			t.Errorf("point %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestClone(t *testing.T) {
	e := triangle(t)
	c := e.Clone()

	for tt := 0.0; tt <= 10; tt += 0.5 {
		if want, got := e.Value(tt), c.Value(tt); math.Abs(want-got) > 1e-12 {
			t.Errorf("clone value at %v: want %v, got %v", tt, want, got)
		}
	}

	// Mutating the clone must leave the original untouched.
	c.InsertOrReplace(2.5, 1)
	if want, got := 3, e.Len(); want != got {
		t.Errorf("mutating the clone changed the original: want %v points, got %v", want, got)
	}
	if want, got := 0.5, e.Value(2.5); want != got {
		t.Errorf("original value at 2.5: want %v, got %v", want, got)
	}
	if want, got := 1.0, c.Value(2.5); want != got {
		t.Errorf("clone value at 2.5 after insert: want %v, got %v", want, got)
	}
}
