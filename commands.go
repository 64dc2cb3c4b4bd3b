package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/adrobotics/audacity/envelope"
	"github.com/adrobotics/audacity/lang"
)

type command struct {
	name  string
	run   func(*session, []lang.Node) (lang.Node, error)
	arity int // -n means len(args) must be >= n
	help  string
}

var commands = []command{
	{"point", pointCommand, 2, "point <time> <value>: add or replace a control point"},
	{"points", pointsCommand, 1, "points [t v, t v, ...]: replace all control points"},
	{"del", deleteCommand, 1, "del <index>: delete the control point at index"},
	{"reassign", reassignCommand, 2, "reassign <time> <value>: change the value of the point at time"},
	{"thin", thinCommand, 1, "thin <tolerance>: drop points that change the curve less than tolerance"},
	{"flatten", flattenCommand, 1, "flatten <value>: clear all points and set the default value"},
	{"mode", modeCommand, 1, "mode linear|log: set the interpolation mode"},
	{"range", rangeCommand, 2, "range <min> <max>: set the value range"},
	{"rescale", rescaleCommand, 2, "rescale <min> <max>: map the values onto a new range"},
	{"length", lengthCommand, 1, "length <seconds>: resize the time span, preserving the boundary"},
	{"stretch", stretchCommand, 1, "stretch <seconds>: scale all point times to a new span"},
	{"offset", offsetCommand, 1, "offset <seconds>: place the envelope on the absolute timeline"},
	{"value", valueCommand, 1, "value <time>: evaluate the curve"},
	{"avg", averageCommand, 2, "avg <t0> <t1>: mean value over an interval"},
	{"avginv", averageInverseCommand, 2, "avginv <t0> <t1>: mean of 1/value over an interval"},
	{"integral", integralCommand, 2, "integral <t0> <t1>: area under the curve"},
	{"inverse", inverseCommand, 2, "inverse <t0> <t1>: area under 1/value"},
	{"solve", solveCommand, 2, "solve <t0> <area>: time at which the inverse integral reaches area"},
	{"cut", cutCommand, 2, "cut <t0> <t1>: remove a region, shifting later points left"},
	{"space", spaceCommand, 2, "space <t0> <len>: open a flat gap at t0"},
	{"paste", pasteCommand, 2, "paste <t0> <file>: splice a saved envelope in at t0"},
	{"drag", dragCommand, 1, "drag <index>: engage a point for dragging"},
	{"dragto", dragToCommand, 2, "dragto <time> <value>: move the engaged point"},
	{"dragoff", dragOffCommand, 0, "dragoff: mark the engaged point for deletion"},
	{"dragend", dragEndCommand, 0, "dragend: finish the drag"},
	{"show", showCommand, 0, "show: draw the curve"},
	{"save", saveCommand, 1, "save <file>: write the envelope to a preset file"},
	{"load", loadCommand, 1, "load <file>: replace the envelope with a preset file"},
	{"sound", soundCommand, 1, "sound <file.wav>: load a sound to run through the envelope"},
	{"play", playCommand, 0, "play: start playback"},
	{"stop", stopCommand, 0, "stop: stop playback"},
	{"bounce", bounceCommand, 1, "bounce <file.wav>: render the enveloped sound to a file"},
	{"help", helpCommand, 0, "help: list commands"},
}

func eval(s *session, input string) (lang.Node, error) {
	command, err := lang.Parse(input)
	if err != nil {
		return nil, err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(command.Args) < arity {
				return nil, fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(command.Args))
			}
		} else if len(command.Args) != cmd.arity {
			return nil, fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(command.Args))
		}
		result, err := cmd.run(s, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

func pointCommand(s *session, args []lang.Node) (lang.Node, error) {
	var when, value float64
	if err := readArgs(args, &when, &value); err != nil {
		return nil, err
	}
	s.update(func(e *envelope.Envelope) { e.InsertOrReplace(when, value) })
	return nil, nil
}

func pointsCommand(s *session, args []lang.Node) (lang.Node, error) {
	var arr lang.Array
	if err := readArgs(args, &arr); err != nil {
		return nil, err
	}
	if len(arr)%2 != 0 {
		return nil, errors.New("expected time value pairs")
	}
	points := make([]envelope.Point, 0, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		t, err := number(arr[i])
		if err != nil {
			return nil, err
		}
		v, err := number(arr[i+1])
		if err != nil {
			return nil, err
		}
		points = append(points, envelope.Point{Time: t, Value: v})
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time <= points[i-1].Time {
			return nil, fmt.Errorf("times must be ascending: %v after %v",
				points[i].Time, points[i-1].Time)
		}
	}
	s.update(func(e *envelope.Envelope) { e.SetPoints(points) })
	return nil, nil
}

func deleteCommand(s *session, args []lang.Node) (lang.Node, error) {
	var index int
	if err := readArgs(args, &index); err != nil {
		return nil, err
	}
	var err error
	s.update(func(e *envelope.Envelope) {
		if index < 0 || index >= e.Len() {
			err = fmt.Errorf("no point at index %d", index)
			return
		}
		e.Delete(index)
	})
	return nil, err
}

func reassignCommand(s *session, args []lang.Node) (lang.Node, error) {
	var when, value float64
	if err := readArgs(args, &when, &value); err != nil {
		return nil, err
	}
	var found bool
	s.update(func(e *envelope.Envelope) { found = e.Reassign(when, value) })
	if !found {
		return nil, fmt.Errorf("no point at time %v", when)
	}
	return nil, nil
}

func thinCommand(s *session, args []lang.Node) (lang.Node, error) {
	var tolerance float64
	if err := readArgs(args, &tolerance); err != nil {
		return nil, err
	}
	var removed int
	s.update(func(e *envelope.Envelope) {
		before := e.Len()
		e.RemoveUnneededPoints(-1, tolerance)
		removed = before - e.Len()
	})
	return lang.Int(removed), nil
}

func flattenCommand(s *session, args []lang.Node) (lang.Node, error) {
	var value float64
	if err := readArgs(args, &value); err != nil {
		return nil, err
	}
	s.update(func(e *envelope.Envelope) { e.Flatten(value) })
	return nil, nil
}

func modeCommand(s *session, args []lang.Node) (lang.Node, error) {
	var mode string
	if err := readArgs(args, &mode); err != nil {
		return nil, err
	}
	switch mode {
	case "linear":
		s.update(func(e *envelope.Envelope) { e.SetLogarithmic(false) })
	case "log":
		s.update(func(e *envelope.Envelope) { e.SetLogarithmic(true) })
	default:
		return nil, fmt.Errorf("unknown mode %q, want linear or log", mode)
	}
	return nil, nil
}

func rangeCommand(s *session, args []lang.Node) (lang.Node, error) {
	var lo, hi float64
	if err := readArgs(args, &lo, &hi); err != nil {
		return nil, err
	}
	if lo >= hi {
		return nil, fmt.Errorf("empty range %v..%v", lo, hi)
	}
	s.update(func(e *envelope.Envelope) { e.SetRange(lo, hi) })
	return nil, nil
}

func rescaleCommand(s *session, args []lang.Node) (lang.Node, error) {
	var lo, hi float64
	if err := readArgs(args, &lo, &hi); err != nil {
		return nil, err
	}
	if lo >= hi {
		return nil, fmt.Errorf("empty range %v..%v", lo, hi)
	}
	s.update(func(e *envelope.Envelope) { e.RescaleValues(lo, hi) })
	return nil, nil
}

func lengthCommand(s *session, args []lang.Node) (lang.Node, error) {
	var seconds float64
	if err := readArgs(args, &seconds); err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, fmt.Errorf("negative length: %v", seconds)
	}
	s.update(func(e *envelope.Envelope) { e.SetTrackLen(seconds) })
	return nil, nil
}

func stretchCommand(s *session, args []lang.Node) (lang.Node, error) {
	var seconds float64
	if err := readArgs(args, &seconds); err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, fmt.Errorf("negative length: %v", seconds)
	}
	s.update(func(e *envelope.Envelope) { e.RescaleTimes(seconds) })
	return nil, nil
}

func offsetCommand(s *session, args []lang.Node) (lang.Node, error) {
	var seconds float64
	if err := readArgs(args, &seconds); err != nil {
		return nil, err
	}
	s.update(func(e *envelope.Envelope) { e.SetOffset(seconds) })
	return nil, nil
}

func valueCommand(s *session, args []lang.Node) (lang.Node, error) {
	var when float64
	if err := readArgs(args, &when); err != nil {
		return nil, err
	}
	var v float64
	s.update(func(e *envelope.Envelope) { v = e.Value(when) })
	return lang.Float(v), nil
}

func averageCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0, t1 float64
	if err := readArgs(args, &t0, &t1); err != nil {
		return nil, err
	}
	var v float64
	s.update(func(e *envelope.Envelope) { v = e.Average(t0, t1) })
	return lang.Float(v), nil
}

func averageInverseCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0, t1 float64
	if err := readArgs(args, &t0, &t1); err != nil {
		return nil, err
	}
	var v float64
	s.update(func(e *envelope.Envelope) { v = e.AverageOfInverse(t0, t1) })
	return lang.Float(v), nil
}

func integralCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0, t1 float64
	if err := readArgs(args, &t0, &t1); err != nil {
		return nil, err
	}
	var v float64
	s.update(func(e *envelope.Envelope) { v = e.Integral(t0, t1) })
	return lang.Float(v), nil
}

func inverseCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0, t1 float64
	if err := readArgs(args, &t0, &t1); err != nil {
		return nil, err
	}
	var v float64
	s.update(func(e *envelope.Envelope) { v = e.IntegralOfInverse(t0, t1) })
	return lang.Float(v), nil
}

func solveCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0, area float64
	if err := readArgs(args, &t0, &area); err != nil {
		return nil, err
	}
	var v float64
	s.update(func(e *envelope.Envelope) { v = e.SolveIntegralOfInverse(t0, area) })
	return lang.Float(v), nil
}

func cutCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0, t1 float64
	if err := readArgs(args, &t0, &t1); err != nil {
		return nil, err
	}
	if t1 < t0 {
		return nil, fmt.Errorf("inverted region %v..%v", t0, t1)
	}
	s.update(func(e *envelope.Envelope) { e.CollapseRegion(t0, t1, 1.0/sampleRate) })
	return nil, nil
}

func spaceCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0, tlen float64
	if err := readArgs(args, &t0, &tlen); err != nil {
		return nil, err
	}
	if tlen < 0 {
		return nil, fmt.Errorf("negative length: %v", tlen)
	}
	s.update(func(e *envelope.Envelope) { e.InsertSpace(t0, tlen) })
	return nil, nil
}

func pasteCommand(s *session, args []lang.Node) (lang.Node, error) {
	var t0 float64
	var file string
	if err := readArgs(args, &t0, &file); err != nil {
		return nil, err
	}
	other, err := loadPreset(file)
	if err != nil {
		return nil, err
	}
	s.update(func(e *envelope.Envelope) { e.Paste(t0, other) })
	return nil, nil
}

func dragCommand(s *session, args []lang.Node) (lang.Node, error) {
	var index int
	if err := readArgs(args, &index); err != nil {
		return nil, err
	}
	var engaged int
	s.update(func(e *envelope.Envelope) {
		e.SetDragPoint(index)
		engaged = e.DragPoint()
	})
	if engaged < 0 {
		return nil, fmt.Errorf("no point at index %d", index)
	}
	return lang.Int(engaged), nil
}

func dragToCommand(s *session, args []lang.Node) (lang.Node, error) {
	var when, value float64
	if err := readArgs(args, &when, &value); err != nil {
		return nil, err
	}
	var err error
	s.update(func(e *envelope.Envelope) {
		if e.DragPoint() < 0 {
			err = errors.New("no point engaged, use drag first")
			return
		}
		e.MoveDragPoint(when, value)
	})
	return nil, err
}

func dragOffCommand(s *session, args []lang.Node) (lang.Node, error) {
	var err error
	s.update(func(e *envelope.Envelope) {
		if e.DragPoint() < 0 {
			err = errors.New("no point engaged, use drag first")
			return
		}
		e.SetDragPointValid(false)
	})
	return nil, err
}

func dragEndCommand(s *session, args []lang.Node) (lang.Node, error) {
	s.update(func(e *envelope.Envelope) { e.ClearDragPoint() })
	return nil, nil
}

func showCommand(s *session, args []lang.Node) (lang.Node, error) {
	s.update(func(e *envelope.Envelope) { renderEnvelope(e, os.Stdout) })
	return nil, nil
}

func saveCommand(s *session, args []lang.Node) (lang.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	var err error
	s.update(func(e *envelope.Envelope) { err = savePreset(file, e) })
	return nil, err
}

func loadCommand(s *session, args []lang.Node) (lang.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	loaded, err := loadPreset(file)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.env = loaded
	s.mu.Unlock()
	return nil, nil
}

func soundCommand(s *session, args []lang.Node) (lang.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	snd, err := loadSound(file)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.snd = snd
	s.pos = 0
	s.mu.Unlock()
	return nil, nil
}

func playCommand(s *session, args []lang.Node) (lang.Node, error) {
	s.mu.Lock()
	s.playing = true
	s.pos = 0
	s.mu.Unlock()
	return nil, nil
}

func stopCommand(s *session, args []lang.Node) (lang.Node, error) {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
	return nil, nil
}

func bounceCommand(s *session, args []lang.Node) (lang.Node, error) {
	var file string
	if err := readArgs(args, &file); err != nil {
		return nil, err
	}
	return nil, s.bounce(file)
}

func helpCommand(s *session, args []lang.Node) (lang.Node, error) {
	for _, cmd := range commands {
		fmt.Println(cmd.help)
	}
	return nil, nil
}

func number(arg lang.Node) (float64, error) {
	switch n := arg.(type) {
	case lang.Int:
		return float64(n), nil
	case lang.Float:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument error: expected a number, got %v", arg)
	}
}

func readArgs(args []lang.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case lang.String:
				*p = string(s)
			case lang.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			f, err := number(arg)
			if err != nil {
				return err
			}
			*p = f
		case *int:
			i, ok := arg.(lang.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(i)
		case *lang.Array:
			arr, ok := arg.(lang.Array)
			if !ok {
				return fmt.Errorf("argument error: expected an array")
			}
			*p = arr
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
