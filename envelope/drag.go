package envelope

import "math"

// The drag lifecycle backs interactive editing: a caller translates
// pointer gestures into SetDragPoint / MoveDragPoint /
// SetDragPointValid(false) / ClearDragPoint. While a drag is in
// progress the dragged point may sit at an off-axis sentinel time as a
// deletion preview; ClearDragPoint resolves it before the gesture ends.

// offAxis marks a point dragged out of the editable region.
const offAxis = math.MaxFloat64

// SetDragPoint engages point i for dragging. Out-of-range values are
// clamped into [-1, Len()-1], with -1 meaning no drag point.
func (e *Envelope) SetDragPoint(i int) {
	e.dragPoint = max(-1, min(len(e.points)-1, i))
	e.dragPointValid = e.dragPoint >= 0
}

// DragPoint returns the index of the point currently engaged for
// dragging, or -1.
func (e *Envelope) DragPoint() int { return e.dragPoint }

// DragPointValid reports whether the engaged point will be kept when
// the drag ends rather than deleted.
func (e *Envelope) DragPointValid() bool { return e.dragPointValid }

// SetDragPointValid marks whether the dragged point survives the
// gesture. Invalidating previews the deletion: the curve is moved to
// the shape it will have once the point is gone, without deleting
// anything yet.
func (e *Envelope) SetDragPointValid(valid bool) {
	e.dragPointValid = valid && e.dragPoint >= 0
	if e.dragPoint < 0 || valid {
		return
	}

	switch n := len(e.points); {
	case n <= 1:
		// Only one point: park it off axis at the default height.
		// Temporary state, resolved by ClearDragPoint.
		e.points[e.dragPoint].Time = offAxis
		e.setValue(e.dragPoint, e.defaultValue)
	case e.dragPoint+1 == n:
		// Last point: keep the ending height but move off axis.
		e.points[e.dragPoint].Time = offAxis
		e.setValue(e.dragPoint, e.points[n-1].Value)
	default:
		// Park it exactly on its right neighbour so the curve draws as
		// if the point were already deleted.
		neighbor := e.points[e.dragPoint+1]
		e.points[e.dragPoint].Time = neighbor.Time
		e.setValue(e.dragPoint, neighbor.Value)
	}
	e.searchGuess = -1
}

// MoveDragPoint moves the engaged point to relative time newWhen and
// the given value. The time is clamped between the neighboring points'
// times (or the span edges) so ordering cannot break.
func (e *Envelope) MoveDragPoint(newWhen, value float64) {
	e.SetDragPointValid(true)
	if !e.dragPointValid {
		return
	}

	limitLo, limitHi := 0.0, e.trackLen
	if e.dragPoint > 0 {
		limitLo = math.Max(limitLo, e.points[e.dragPoint-1].Time)
	}
	if e.dragPoint+1 < len(e.points) {
		limitHi = math.Min(limitHi, e.points[e.dragPoint+1].Time)
	}

	e.points[e.dragPoint].Time = math.Max(limitLo, math.Min(limitHi, newWhen))
	e.setValue(e.dragPoint, value)
	e.searchGuess = -1
}

// ClearDragPoint ends the gesture, deleting the point if it was left
// invalid. A kept point dragged onto a neighbor's exact time absorbs
// that neighbor, restoring strictly ascending times.
func (e *Envelope) ClearDragPoint() {
	if e.dragPoint >= 0 {
		if !e.dragPointValid {
			e.Delete(e.dragPoint)
		} else {
			i, when := e.dragPoint, e.points[e.dragPoint].Time
			if i+1 < len(e.points) && e.points[i+1].Time == when {
				e.Delete(i + 1)
			}
			if i > 0 && e.points[i-1].Time == when {
				e.Delete(i - 1)
			}
		}
	}
	e.dragPoint = -1
	e.dragPointValid = false
}
