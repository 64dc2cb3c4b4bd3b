// Package envelope implements a piecewise linear or logarithmic curve
// that maps time to a scalar value, editable as a sparse set of control
// points. It is typically used to vary amplification over a clip, but
// nothing in here knows about audio: it only answers value and integral
// queries that a caller applies.
package envelope

import (
	"math"
	"sort"
)

// Point is a single control point. Time is relative to the envelope's
// local axis, not the absolute timeline.
type Point struct {
	Time  float64
	Value float64
}

// trackEpsilon is less than the duration of one sample at the highest
// supported rate. Used to nudge points apart when a splice would
// otherwise produce two points at the same time.
const trackEpsilon = 1.0 / 200000.0

// unboundedLen is the span length of a new envelope, effectively
// unbounded until the owner sizes it with SetTrackLen.
const unboundedLen = 1000000000.0

// Envelope holds control points sorted by strictly ascending time. No
// two points ever share a time coordinate; inserting at an occupied
// time replaces the value instead.
//
// An Envelope is not safe for concurrent use: even read-only queries
// update the internal search guess.
type Envelope struct {
	points []Point

	logarithmic  bool
	minValue     float64
	maxValue     float64
	defaultValue float64

	offset   float64 // maps local time 0 onto the absolute timeline
	trackLen float64 // length of the local time axis

	// searchGuess caches the last bracket found by binarySearchForTime
	// so that sample-by-sample scans resolve without searching. It is
	// purely an optimization and is discarded on any mutation.
	searchGuess int

	dragPoint      int
	dragPointValid bool
}

// New returns an empty envelope. When logarithmic is true, values are
// interpolated and integrated in log space and must stay strictly
// positive; keep minValue above zero in that case.
func New(logarithmic bool, minValue, maxValue, defaultValue float64) *Envelope {
	e := &Envelope{
		logarithmic: logarithmic,
		minValue:    minValue,
		maxValue:    maxValue,
		trackLen:    unboundedLen,
		searchGuess: -1,
		dragPoint:   -1,
	}
	e.defaultValue = e.ClampValue(defaultValue)
	return e
}

// Clone returns a deep copy.
func (e *Envelope) Clone() *Envelope {
	c := New(e.logarithmic, e.minValue, e.maxValue, e.defaultValue)
	c.offset = e.offset
	c.trackLen = e.trackLen
	c.copyRange(e, 0, len(e.points))
	return c
}

// Slice returns a copy of the envelope restricted to the absolute time
// range [t0, t1]. Boundary points are synthesized from interpolated
// values when the range does not begin or end exactly on a point.
func (e *Envelope) Slice(t0, t1 float64) *Envelope {
	c := New(e.logarithmic, e.minValue, e.maxValue, e.defaultValue)
	c.offset = math.Max(t0, e.offset)
	c.trackLen = math.Min(t1, e.offset+e.trackLen) - c.offset

	first, _ := e.equalRange(t0-e.offset, 0)
	_, after := e.equalRange(t1-e.offset, 0)
	c.copyRange(e, first, after)
	return c
}

// copyRange appends points [begin, end) of orig, translated onto this
// envelope's local origin, framing the result with interpolated
// boundary points where the range does not reach the span edges.
func (e *Envelope) copyRange(orig *Envelope, begin, end int) {
	i := begin
	if i > 0 {
		e.addPointAtEnd(0, orig.Value(e.offset))
	}
	for ; i < end; i++ {
		p := orig.points[i]
		e.addPointAtEnd(p.Time+(orig.offset-e.offset), p.Value)
	}
	if e.trackLen > 0 && i < len(orig.points) {
		e.addPointAtEnd(e.trackLen, orig.Value(e.offset+e.trackLen))
	}
}

// addPointAtEnd appends a point, assuming nondecreasing times. Of three
// or more points at the same time, the middle one is squeezed out; the
// boundary framing in copyRange and SetPoints can produce such
// duplicates at the edges of a copied range.
func (e *Envelope) addPointAtEnd(t, val float64) {
	e.points = append(e.points, Point{Time: t, Value: val})
	for n := len(e.points) - 1; n >= 2 && e.points[n-2].Time == t; n-- {
		e.points[n-1] = e.points[n]
		e.points = e.points[:n]
	}
	e.searchGuess = -1
}

// ClampValue limits v to the envelope's value range.
func (e *Envelope) ClampValue(v float64) float64 {
	if v < e.minValue {
		return e.minValue
	}
	if v > e.maxValue {
		return e.maxValue
	}
	return v
}

func (e *Envelope) setValue(i int, v float64) {
	e.points[i].Value = e.ClampValue(v)
}

// Flatten removes all points, leaving a horizontal envelope at value.
func (e *Envelope) Flatten(value float64) {
	e.points = e.points[:0]
	e.defaultValue = e.ClampValue(value)
	e.searchGuess = -1
}

// SetLogarithmic switches the interpolation mode. Logarithmic
// interpolation takes log10 of stored values without guarding against
// non-positive input, so the value range must exclude zero.
func (e *Envelope) SetLogarithmic(logarithmic bool) {
	e.logarithmic = logarithmic
}

func (e *Envelope) Logarithmic() bool { return e.logarithmic }

// SetRange clamps the default value and every stored point to the new
// value range.
func (e *Envelope) SetRange(minValue, maxValue float64) {
	e.minValue = minValue
	e.maxValue = maxValue
	e.defaultValue = e.ClampValue(e.defaultValue)
	for i := range e.points {
		e.setValue(i, e.points[i].Value)
	}
}

func (e *Envelope) Range() (minValue, maxValue float64) {
	return e.minValue, e.maxValue
}

func (e *Envelope) DefaultValue() float64 { return e.defaultValue }

// RescaleValues remaps every stored value and the default value from
// the old range onto [minValue, maxValue] by proportion, unlike
// SetRange which clamps.
func (e *Envelope) RescaleValues(minValue, maxValue float64) {
	oldMin, oldMax := e.minValue, e.maxValue
	e.minValue = minValue
	e.maxValue = maxValue

	factor := (e.defaultValue - oldMin) / (oldMax - oldMin)
	e.defaultValue = e.ClampValue(minValue + (maxValue-minValue)*factor)

	for i := range e.points {
		factor = (e.points[i].Value - oldMin) / (oldMax - oldMin)
		e.setValue(i, minValue+(maxValue-minValue)*factor)
	}
}

func (e *Envelope) SetOffset(offset float64) { e.offset = offset }
func (e *Envelope) Offset() float64          { return e.offset }
func (e *Envelope) TrackLen() float64        { return e.trackLen }

// Len reports the number of control points.
func (e *Envelope) Len() int { return len(e.points) }

// PointAt returns point i. The index is valid only until the next
// mutation.
func (e *Envelope) PointAt(i int) Point { return e.points[i] }

// Points returns a copy of the control points in order, with times
// relative to the local axis. Together with SetPoints it is the
// round-trip hook for persistence adapters; the core does no I/O.
func (e *Envelope) Points() []Point {
	pts := make([]Point, len(e.points))
	copy(pts, e.points)
	return pts
}

// SetPoints rebuilds the point sequence from pts, which must be in
// nondecreasing time order. Values are clamped to the value range.
func (e *Envelope) SetPoints(pts []Point) {
	e.points = e.points[:0]
	for _, p := range pts {
		e.addPointAtEnd(p.Time, e.ClampValue(p.Value))
	}
	e.searchGuess = -1
}

// InsertOrReplace adds a control point at relative time when, keeping
// the points sorted, and returns its index. If a point already exists
// exactly at when, its value is overwritten instead. The value is
// clamped to the value range; out-of-span times are pinned to the
// nearest existing extreme.
func (e *Envelope) InsertOrReplace(when, value float64) int {
	n := len(e.points)

	if n > 0 && when < 0 {
		return 0
	}
	if n > 1 && when > e.trackLen {
		return n - 1
	}
	if when < 0 {
		when = 0
	}
	if n > 1 && when > e.trackLen {
		when = e.trackLen
	}

	i := 0
	for i < n && when > e.points[i].Time {
		i++
	}

	if i < n && when == e.points[i].Time {
		e.setValue(i, value)
		return i
	}

	p := Point{Time: when, Value: e.ClampValue(value)}
	e.points = append(e.points, Point{})
	copy(e.points[i+1:], e.points[i:])
	e.points[i] = p
	e.searchGuess = -1
	return i
}

// Delete removes point i. Bounds are the caller's responsibility.
func (e *Envelope) Delete(i int) {
	e.points = append(e.points[:i], e.points[i+1:]...)
	e.searchGuess = -1
}

// Reassign overwrites the value of the point whose time exactly equals
// the absolute time when. It reports false if no such point exists.
func (e *Envelope) Reassign(when, value float64) bool {
	when -= e.offset

	i := 0
	for i < len(e.points) && when > e.points[i].Time {
		i++
	}
	if i >= len(e.points) || when < e.points[i].Time {
		return false
	}
	e.setValue(i, value)
	return true
}

// Value returns the envelope value at absolute time t.
func (e *Envelope) Value(t float64) float64 {
	return e.ValueRelative(t - e.offset)
}

// ValueRelative returns the envelope value at relative time t.
func (e *Envelope) ValueRelative(t float64) float64 {
	var tmp [1]float64
	e.ValuesRelative(tmp[:], t, 1)
	return tmp[0]
}

// Values fills buf with samples of the envelope starting at absolute
// time t0 and stepping by tstep.
func (e *Envelope) Values(buf []float64, t0, tstep float64) {
	e.ValuesRelative(buf, t0-e.offset, tstep)
}

// ValuesRelative fills buf with samples starting at relative time t0.
// Within a bracket the value is stepped incrementally: a constant
// per-sample delta in linear mode, a constant ratio in logarithmic
// mode, so transcendentals are evaluated once per bracket rather than
// once per sample.
func (e *Envelope) ValuesRelative(buf []float64, t0, tstep float64) {
	n := len(e.points)

	t := t0
	var tprev, vprev, vnext float64
	tnext, vstep := 0.0, 0.0

	for b := range buf {
		if n <= 0 {
			buf[b] = e.defaultValue
			t += tstep
			continue
		}
		if t <= e.points[0].Time {
			buf[b] = e.points[0].Value
			t += tstep
			continue
		}
		if t >= e.points[n-1].Time {
			buf[b] = e.points[n-1].Value
			t += tstep
			continue
		}

		if b == 0 || t > tnext {
			// Beyond the current bracket; resolve a new one. Don't just
			// step lo and hi because the stride may skip many points.
			lo, hi := e.binarySearchForTime(t)
			// The eliminations above guarantee 0 <= lo and hi <= n-1.
			tprev = e.points[lo].Time
			tnext = e.points[hi].Time
			vprev = e.interpValueAt(lo)
			vnext = e.interpValueAt(hi)

			dt := tnext - tprev
			to := t - tprev
			var v float64
			if dt > 0 {
				v = (vprev*(dt-to) + vnext*to) / dt
				vstep = (vnext - vprev) * tstep / dt
			} else {
				v = vnext
				vstep = 0
			}

			if e.logarithmic {
				v = math.Pow(10, v)
				vstep = math.Pow(10, vstep)
			}
			buf[b] = v
		} else {
			if e.logarithmic {
				buf[b] = buf[b-1] * vstep
			} else {
				buf[b] = buf[b-1] + vstep
			}
		}

		t += tstep
	}
}

// interpValueAt returns the value of point i in the space interpolation
// happens in: the raw value, or its log10 in logarithmic mode.
func (e *Envelope) interpValueAt(i int) float64 {
	v := e.points[i].Value
	if !e.logarithmic {
		return v
	}
	return math.Log10(v)
}

// binarySearchForTime returns adjacent indices bracketing relative time
// t: points[lo].Time <= t < points[hi].Time, with lo == -1 before the
// first point and hi == Len() after the last. Repeated calls with
// slowly increasing t resolve in constant time via the search guess.
func (e *Envelope) binarySearchForTime(t float64) (lo, hi int) {
	if e.guessBrackets(e.searchGuess, t) {
		return e.searchGuess, e.searchGuess + 1
	}
	if g := e.searchGuess + 1; e.guessBrackets(g, t) {
		e.searchGuess = g
		return g, g + 1
	}

	lo = sort.Search(len(e.points), func(i int) bool {
		return t < e.points[i].Time
	}) - 1
	e.searchGuess = lo
	return lo, lo + 1
}

func (e *Envelope) guessBrackets(i int, t float64) bool {
	return i >= 0 && i < len(e.points) &&
		t >= e.points[i].Time &&
		(i+1 == len(e.points) || t < e.points[i+1].Time)
}

// equalRange returns the half-open index range of points whose times
// lie within sampleTime/2 of relative time when. When empty, first ==
// after still indicates where such a point would be inserted.
func (e *Envelope) equalRange(when, sampleTime float64) (first, after int) {
	tolerance := sampleTime / 2
	first = sort.Search(len(e.points), func(i int) bool {
		return e.points[i].Time >= when-tolerance
	})
	after = first
	for after < len(e.points) && e.points[after].Time <= when+tolerance {
		after++
	}
	return first, after
}

// NumberOfPointsAfter counts points strictly after relative time t.
func (e *Envelope) NumberOfPointsAfter(t float64) int {
	_, hi := e.binarySearchForTime(t)
	return len(e.points) - hi
}

// NextPointAfter returns the time of the first point strictly after
// relative time t, or t itself if there is none.
func (e *Envelope) NextPointAfter(t float64) float64 {
	_, hi := e.binarySearchForTime(t)
	if hi >= len(e.points) {
		return t
	}
	return e.points[hi].Time
}
