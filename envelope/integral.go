package envelope

import "math"

// Closed-form segment integrals. Each helper treats one segment with
// endpoint values y1, y2 over a duration, interpolated linearly or
// logarithmically. Near-equal endpoints fall back to the linear
// (trapezoid or harmonic mean) formula: below |ln(y1/y2)| = 1e-5 the
// rounding error of the exact form exceeds the difference between the
// two interpolations.

func interpolatePoints(y1, y2, factor float64, logarithmic bool) float64 {
	if logarithmic {
		// The base used for interpolation does not change the result.
		return math.Exp(math.Log(y1)*(1-factor) + math.Log(y2)*factor)
	}
	return y1*(1-factor) + y2*factor
}

// integrateInterpolated computes integral(interpolate(y1, y2, x), x = 0 .. time).
func integrateInterpolated(y1, y2, time float64, logarithmic bool) float64 {
	if logarithmic {
		l := math.Log(y1 / y2)
		if math.Abs(l) < 1e-5 {
			return (y1 + y2) * 0.5 * time
		}
		return (y1 - y2) / l * time
	}
	return (y1 + y2) * 0.5 * time
}

// integrateInverseInterpolated computes integral(1 / interpolate(y1, y2, x), x = 0 .. time).
func integrateInverseInterpolated(y1, y2, time float64, logarithmic bool) float64 {
	l := math.Log(y1 / y2)
	if math.Abs(l) < 1e-5 {
		return 2.0 / (y1 + y2) * time
	}
	if logarithmic {
		return (y1 - y2) / (l * y1 * y2) * time
	}
	return l / (y1 - y2) * time
}

// solveIntegrateInverseInterpolated solves
// integral(1 / interpolate(y1, y2, x), x = 0 .. res) = area for res,
// clamping the solution into the segment. log1p and expm1 keep the
// closed forms stable when the accumulated area is tiny.
func solveIntegrateInverseInterpolated(y1, y2, time, area float64, logarithmic bool) float64 {
	a := area / time
	var res float64
	if logarithmic {
		l := math.Log(y1 / y2)
		switch {
		case math.Abs(l) < 1e-5:
			res = a * (y1 + y2) * 0.5
		case 1+a*y1*l <= 0:
			res = 1
		default:
			res = math.Log1p(a*y1*l) / l
		}
	} else {
		if math.Abs(y2-y1) < 1e-5 {
			res = a * (y1 + y2) * 0.5
		} else {
			res = y1 * math.Expm1(a*(y2-y1)) / (y2 - y1)
		}
	}
	return math.Max(0, math.Min(1, res)) * time
}

// Integral returns the exact definite integral of the curve between
// absolute times t0 and t1. It is antisymmetric in its arguments; for
// an empty envelope it degenerates to (t1-t0) times the default value.
func (e *Envelope) Integral(t0, t1 float64) float64 {
	if t0 == t1 {
		return 0
	}
	if t0 > t1 {
		// Flips at most once; the flipped call has ordered arguments.
		return -e.Integral(t1, t0)
	}

	count := len(e.points)
	if count == 0 {
		return (t1 - t0) * e.defaultValue
	}

	t0 -= e.offset
	t1 -= e.offset

	var total, lastT, lastVal float64
	var i int // the next point to check
	if t0 < e.points[0].Time {
		if t1 <= e.points[0].Time {
			return (t1 - t0) * e.points[0].Value
		}
		i = 1
		lastT = e.points[0].Time
		lastVal = e.points[0].Value
		total += (lastT - t0) * lastVal
	} else if t0 >= e.points[count-1].Time {
		return (t1 - t0) * e.points[count-1].Value
	} else {
		lo, hi := e.binarySearchForTime(t0)
		lastVal = interpolatePoints(e.points[lo].Value, e.points[hi].Value,
			(t0-e.points[lo].Time)/(e.points[hi].Time-e.points[lo].Time), e.logarithmic)
		lastT = t0
		i = hi
	}

	for {
		switch {
		case i >= count:
			// The range extends beyond the last point.
			return total + (t1-lastT)*lastVal
		case e.points[i].Time >= t1:
			thisVal := interpolatePoints(e.points[i-1].Value, e.points[i].Value,
				(t1-e.points[i-1].Time)/(e.points[i].Time-e.points[i-1].Time), e.logarithmic)
			return total + integrateInterpolated(lastVal, thisVal, t1-lastT, e.logarithmic)
		default:
			total += integrateInterpolated(lastVal, e.points[i].Value, e.points[i].Time-lastT, e.logarithmic)
			lastT = e.points[i].Time
			lastVal = e.points[i].Value
			i++
		}
	}
}

// IntegralOfInverse returns the definite integral of 1/curve between
// absolute times t0 and t1, with the same conventions as Integral.
func (e *Envelope) IntegralOfInverse(t0, t1 float64) float64 {
	if t0 == t1 {
		return 0
	}
	if t0 > t1 {
		return -e.IntegralOfInverse(t1, t0)
	}

	count := len(e.points)
	if count == 0 {
		return (t1 - t0) / e.defaultValue
	}

	t0 -= e.offset
	t1 -= e.offset

	var total, lastT, lastVal float64
	var i int
	if t0 < e.points[0].Time {
		if t1 <= e.points[0].Time {
			return (t1 - t0) / e.points[0].Value
		}
		i = 1
		lastT = e.points[0].Time
		lastVal = e.points[0].Value
		total += (lastT - t0) / lastVal
	} else if t0 >= e.points[count-1].Time {
		return (t1 - t0) / e.points[count-1].Value
	} else {
		lo, hi := e.binarySearchForTime(t0)
		lastVal = interpolatePoints(e.points[lo].Value, e.points[hi].Value,
			(t0-e.points[lo].Time)/(e.points[hi].Time-e.points[lo].Time), e.logarithmic)
		lastT = t0
		i = hi
	}

	for {
		switch {
		case i >= count:
			return total + (t1-lastT)/lastVal
		case e.points[i].Time >= t1:
			thisVal := interpolatePoints(e.points[i-1].Value, e.points[i].Value,
				(t1-e.points[i-1].Time)/(e.points[i].Time-e.points[i-1].Time), e.logarithmic)
			return total + integrateInverseInterpolated(lastVal, thisVal, t1-lastT, e.logarithmic)
		default:
			total += integrateInverseInterpolated(lastVal, e.points[i].Value, e.points[i].Time-lastT, e.logarithmic)
			lastT = e.points[i].Time
			lastVal = e.points[i].Value
			i++
		}
	}
}

// SolveIntegralOfInverse finds the absolute time t1 at which
// IntegralOfInverse(t0, t1) reaches area, walking forward for positive
// area and backward for negative. It is how a caller steps through a
// non-uniform rate curve by a fixed amount of accumulated work.
func (e *Envelope) SolveIntegralOfInverse(t0, area float64) float64 {
	if area == 0 {
		return t0
	}

	if len(e.points) == 0 {
		return t0 + area*e.defaultValue
	}

	return e.offset + e.solveInverseRelative(t0-e.offset, area)
}

func (e *Envelope) solveInverseRelative(t0, area float64) float64 {
	count := len(e.points)

	var lastT, lastVal float64
	var i int // the next point to check
	if t0 < e.points[0].Time {
		if area < 0 {
			return t0 + area*e.points[0].Value
		}
		i = 1
		lastT = e.points[0].Time
		lastVal = e.points[0].Value
		added := (lastT - t0) / lastVal
		if added >= area {
			return t0 + area*e.points[0].Value
		}
		area -= added
	} else if t0 >= e.points[count-1].Time {
		if area >= 0 {
			return t0 + area*e.points[count-1].Value
		}
		i = count - 2
		lastT = e.points[count-1].Time
		lastVal = e.points[count-1].Value
		added := (lastT - t0) / lastVal // negative
		if added <= area {
			return t0 + area*e.points[count-1].Value
		}
		area -= added
	} else {
		lo, hi := e.binarySearchForTime(t0)
		lastVal = interpolatePoints(e.points[lo].Value, e.points[hi].Value,
			(t0-e.points[lo].Time)/(e.points[hi].Time-e.points[lo].Time), e.logarithmic)
		lastT = t0
		if area < 0 {
			i = lo
		} else {
			i = hi
		}
	}

	if area < 0 {
		// Walk backward through the points to the left of t0.
		for {
			if i < 0 {
				return lastT + area*lastVal
			}
			added := -integrateInverseInterpolated(e.points[i].Value, lastVal, lastT-e.points[i].Time, e.logarithmic)
			if added <= area {
				return lastT - solveIntegrateInverseInterpolated(
					lastVal, e.points[i].Value, lastT-e.points[i].Time, -area, e.logarithmic)
			}
			area -= added
			lastT = e.points[i].Time
			lastVal = e.points[i].Value
			i--
		}
	}

	for {
		if i >= count {
			return lastT + area*lastVal
		}
		added := integrateInverseInterpolated(lastVal, e.points[i].Value, e.points[i].Time-lastT, e.logarithmic)
		if added >= area {
			return lastT + solveIntegrateInverseInterpolated(
				lastVal, e.points[i].Value, e.points[i].Time-lastT, area, e.logarithmic)
		}
		area -= added
		lastT = e.points[i].Time
		lastVal = e.points[i].Value
		i++
	}
}

// Average returns the mean value of the curve between absolute times
// t0 and t1, degenerating to a point query when they coincide.
func (e *Envelope) Average(t0, t1 float64) float64 {
	if t0 == t1 {
		return e.Value(t0)
	}
	return e.Integral(t0, t1) / (t1 - t0)
}

// AverageOfInverse is Average for 1/curve.
func (e *Envelope) AverageOfInverse(t0, t1 float64) float64 {
	if t0 == t1 {
		return 1.0 / e.Value(t0)
	}
	return e.IntegralOfInverse(t0, t1) / (t1 - t0)
}
