package envelope

import "math"

// Region operations keep the curve continuous across structural edits
// of the owning timeline: cutting, pasting and resizing content.

// pointTolerance decides whether a paste lands "on" an existing point.
const pointTolerance = 1.0 / 500000.0

// CollapseRegion removes the slice of curve between absolute times t0
// and t1, called when the corresponding content is deleted. The
// left-side limit at t0 and the right-side limit at t1 are preserved
// with boundary points where needed; points strictly inside the
// interval are dropped and later points shift left. The span shrinks
// by t1 - t0. sampleTime supplies the tolerance for treating a nearby
// point as exactly on the boundary.
func (e *Envelope) CollapseRegion(t0, t1, sampleTime float64) {
	epsilon := sampleTime / 2
	t0 = math.Max(0, math.Min(e.trackLen, t0-e.offset))
	t1 = math.Max(0, math.Min(e.trackLen, t1-e.offset))

	// begin: first index to remove.
	first0, after0 := e.equalRange(t0, 0)
	begin := first0
	if first0 == after0 {
		if t0 > epsilon {
			// No point exactly at t0; freeze the value there.
			e.InsertOrReplace(t0, e.ValueRelative(t0))
			begin++
		}
	} else {
		// Keep the point that was at t0.
		begin++
	}

	// end: one past the last index to remove.
	first1, after1 := e.equalRange(t1, 0)
	end := after1
	if first1 == end {
		if e.trackLen-t1 > epsilon {
			// No point exactly at t1; freeze the value there. end is now
			// the index of this new point, which is what we want.
			e.InsertOrReplace(t1, e.ValueRelative(t1))
		}
	} else {
		// Keep the point that was at t1.
		end--
	}

	e.points = append(e.points[:begin], e.points[end:]...)

	for i := begin; i < len(e.points); i++ {
		e.points[i].Time -= t1 - t0
	}
	e.trackLen -= t1 - t0
	e.searchGuess = -1
}

// InsertSpace opens a flat gap of length tlen at absolute time t0: the
// value there is frozen with a boundary point if needed, later points
// shift right, and a matching point at t0 + tlen holds the same value
// so the inserted span is horizontal. The span grows by tlen.
func (e *Envelope) InsertSpace(t0, tlen float64) {
	t0 -= e.offset

	// Preserve the left-side limit at the split.
	val := e.ValueRelative(t0)
	first, after := e.equalRange(t0, 0)

	var index int
	if first < after {
		// There is already a control point.
		index = 1 + first
	} else {
		index = 1 + e.InsertOrReplace(t0, val)
	}

	for ; index < len(e.points); index++ {
		e.points[index].Time += tlen
	}

	// Grow the span before the insert below, which range-checks times.
	e.trackLen += tlen

	// Preserve the right-side limit unless a shifted control point
	// already sits there.
	if 1+first >= after {
		e.InsertOrReplace(t0+tlen, val)
	}
	e.searchGuess = -1
}

// Paste splices other into this envelope at absolute time t0, shifting
// subsequent points right by other's span length. Boundary points are
// forced at both edges of the inserted span, using values interpolated
// from each side, so the splice introduces no discontinuity.
func (e *Envelope) Paste(t0 float64, other *Envelope) {
	wasEmpty := len(e.points) == 0

	if len(other.points) == 0 && wasEmpty && other.defaultValue == e.defaultValue {
		// Both flat at the same height: nothing to insert, but the
		// envelope does get longer.
		e.trackLen += other.trackLen
		return
	}

	t0 = math.Min(t0-e.offset, e.trackLen)
	deltat := other.trackLen

	// The value both sides of the splice must come back to.
	splitval := e.Value(t0 + e.offset)

	if len(e.points) == 0 {
		if e.trackLen == 0 {
			// Pasting into a brand new envelope adopts the source span.
			e.trackLen = other.trackLen
			e.offset = other.offset
		} else {
			e.trackLen += other.trackLen
		}
	} else {
		var (
			someToShift bool
			onPoint     bool
			pos         int
		)
		for i := range e.points {
			if e.points[i].Time > t0 {
				someToShift = true
			} else {
				pos = i // last point not moved
				if math.Abs(e.points[i].Time-t0) < pointTolerance {
					onPoint = true
				}
			}
		}
		atStart := t0 < trackEpsilon
		atEnd := e.trackLen-t0 < trackEpsilon
		beforeStart := t0 < 0
		afterEnd := e.trackLen < t0

		switch {
		case atStart && onPoint:
			// The first point sits on the splice; nudge it right so the
			// pasted points cannot collide with it.
			e.points[0].Time += trackEpsilon
			someToShift = true
		case atStart:
			e.InsertOrReplace(t0+trackEpsilon, splitval)
			someToShift = true
		case atEnd && onPoint:
			// The last point sits on the splice; nudge it left.
			e.points[len(e.points)-1].Time -= trackEpsilon
		case atEnd:
			e.InsertOrReplace(t0-trackEpsilon, splitval)
		case onPoint:
			// Interior splice landing on a point: move it left and add a
			// guard to the right.
			e.points[pos].Time -= trackEpsilon
			e.InsertOrReplace(t0+trackEpsilon, splitval)
			someToShift = true
		case !beforeStart && !afterEnd:
			// Plain interior splice: guard points on both sides.
			e.InsertOrReplace(t0-trackEpsilon, splitval)
			e.InsertOrReplace(t0+trackEpsilon, splitval)
			someToShift = true
		default:
			// Pasting outside the valid span; nothing to guard.
		}

		if someToShift {
			for i := range e.points {
				if e.points[i].Time > t0 {
					e.points[i].Time += deltat
				}
			}
		}
		e.trackLen += deltat
	}

	if !wasEmpty {
		// Pin the edges of the pasted span in case other has no points
		// there. If it does, the repeated inserts below just replace.
		leftval := other.Value(other.offset)
		rightval := other.Value(other.offset + other.trackLen)
		e.InsertOrReplace(t0, leftval)
		e.InsertOrReplace(t0+other.trackLen, rightval)
	}

	for _, p := range other.points {
		e.InsertOrReplace(t0+p.Time, p.Value)
	}
	e.searchGuess = -1
}

// RemoveUnneededPoints deletes points, scanning from the left, whose
// absence changes the curve at their time by no more than tolerance.
// If time is non-negative, only points within a small window around
// that absolute time are considered.
func (e *Envelope) RemoveUnneededPoints(time, tolerance float64) {
	n := len(e.points)
	for i := 0; i < n; i++ {
		when := e.points[i].Time
		if time >= 0 {
			// 2 samples at 8kHz, 11 at 44.1kHz
			if math.Abs(when+e.offset-time) > 0.00025 {
				continue
			}
		}
		val := e.points[i].Value
		e.Delete(i) // trial removal
		excludePoint := true
		if math.Abs(val-e.Value(when+e.offset)) > tolerance {
			// It mattered; put it back. The insert may have merged with
			// an existing point at the same time, in which case the
			// sequence still shrank and the scan must step back.
			e.InsertOrReplace(when, val)
			excludePoint = len(e.points) < n
		}
		if excludePoint {
			n--
			i--
		}
	}
}

// SetTrackLen resizes the local time axis. When shrinking, the curve's
// value at the new end is preserved with a boundary point before the
// points beyond it are discarded.
func (e *Envelope) SetTrackLen(trackLen float64) {
	// An empty envelope is the default value everywhere; no boundary
	// point is needed to preserve that.
	needPoint := trackLen < e.trackLen && len(e.points) > 0
	var value float64
	if needPoint {
		value = e.ValueRelative(trackLen)
	}

	e.trackLen = trackLen
	_, after := e.equalRange(trackLen, 0)
	e.points = e.points[:after]

	if needPoint {
		e.addPointAtEnd(trackLen, value)
	}
	e.searchGuess = -1
}

// RescaleTimes stretches or squeezes all point times linearly so the
// envelope spans newLength. A zero-length envelope collapses every
// point to time zero.
func (e *Envelope) RescaleTimes(newLength float64) {
	if e.trackLen == 0 {
		for i := range e.points {
			e.points[i].Time = 0
		}
	} else {
		ratio := newLength / e.trackLen
		for i := range e.points {
			e.points[i].Time *= ratio
		}
	}
	e.trackLen = newLength
	e.searchGuess = -1
}
