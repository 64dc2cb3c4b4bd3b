package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/adrobotics/audacity/envelope"
)

// renderEnvelope draws the curve as a character grid, control points
// marked on top of it.
func renderEnvelope(e *envelope.Envelope, w io.Writer) {
	const (
		width  = 64
		height = 12
	)

	span := e.TrackLen()
	if span > 1e6 || span <= 0 {
		// Nothing has bounded the span yet; clip the view to the points.
		span = 10
		if n := e.Len(); n > 0 && e.PointAt(n-1).Time > 0 {
			span = e.PointAt(n-1).Time
		}
	}
	lo, hi := e.Range()

	mode := "linear"
	if e.Logarithmic() {
		mode = "log"
	}
	fmt.Fprintf(w, "mode %s  range %v..%v  span %vs  offset %vs  points %d\n",
		mode, lo, hi, span, e.Offset(), e.Len())

	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
	}
	row := func(v float64) int {
		r := int(math.Round((hi - v) / (hi - lo) * float64(height-1)))
		return max(0, min(height-1, r))
	}

	values := make([]float64, width)
	e.Values(values, e.Offset(), span/width)
	for col, v := range values {
		grid[row(v)][col] = '*'
	}
	for i := 0; i < e.Len(); i++ {
		p := e.PointAt(i)
		if p.Time < 0 || p.Time > span {
			continue
		}
		col := min(width-1, int(p.Time/span*float64(width-1)))
		grid[row(p.Value)][col] = 'o'
	}

	for i, line := range grid {
		switch i {
		case 0:
			fmt.Fprintf(w, "%7.3f |", hi)
		case height - 1:
			fmt.Fprintf(w, "%7.3f |", lo)
		default:
			fmt.Fprint(w, "        |")
		}
		for _, c := range line {
			switch c {
			case 'o':
				fmt.Fprint(w, colorize("o", colorGreen))
			case '*':
				fmt.Fprint(w, colorize("*", colorBlue))
			default:
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprintln(w)
	}

	label := strconv.FormatFloat(span, 'g', -1, 64)
	fmt.Fprintf(w, "         0%s%s\n", strings.Repeat(" ", width-1-len(label)), label)
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
