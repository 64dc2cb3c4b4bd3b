package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adrobotics/audacity/envelope"
)

// preset is the on-disk form of an envelope.
type preset struct {
	Logarithmic bool          `yaml:"logarithmic"`
	Min         float64       `yaml:"min"`
	Max         float64       `yaml:"max"`
	Default     float64       `yaml:"default"`
	Length      float64       `yaml:"length"`
	Offset      float64       `yaml:"offset,omitempty"`
	Points      []presetPoint `yaml:"points"`
}

type presetPoint struct {
	T float64 `yaml:"t"`
	V float64 `yaml:"v"`
}

func savePreset(path string, e *envelope.Envelope) error {
	lo, hi := e.Range()
	p := preset{
		Logarithmic: e.Logarithmic(),
		Min:         lo,
		Max:         hi,
		Default:     e.DefaultValue(),
		Length:      e.TrackLen(),
		Offset:      e.Offset(),
	}
	for _, point := range e.Points() {
		p.Points = append(p.Points, presetPoint{T: point.Time, V: point.Value})
	}

	data, err := yaml.Marshal(&p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func loadPreset(path string) (*envelope.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if p.Min >= p.Max {
		return nil, fmt.Errorf("%s: empty range %v..%v", path, p.Min, p.Max)
	}
	if p.Length < 0 {
		return nil, fmt.Errorf("%s: negative length %v", path, p.Length)
	}
	for i := 1; i < len(p.Points); i++ {
		if p.Points[i].T <= p.Points[i-1].T {
			return nil, fmt.Errorf("%s: point times must be ascending", path)
		}
	}

	e := envelope.New(p.Logarithmic, p.Min, p.Max, p.Default)
	e.SetTrackLen(p.Length)
	e.SetOffset(p.Offset)
	points := make([]envelope.Point, len(p.Points))
	for i, point := range p.Points {
		points[i] = envelope.Point{Time: point.T, Value: point.V}
	}
	e.SetPoints(points)
	return e, nil
}
