package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	wav "github.com/youpy/go-wav"
)

const (
	sampleRate = 44100
	nChannels  = 2
	bufferSize = 512
)

type sound struct {
	file string
	buf  []float64 // mono samples
}

func loadSound(path string) (*sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := wav.NewReader(f)
	snd := sound{file: path}
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, sample := range samples {
			snd.buf = append(snd.buf, r.FloatValue(sample, 0))
		}
	}
	if len(snd.buf) == 0 {
		return nil, fmt.Errorf("no samples in %s", path)
	}
	return &snd, nil
}

// process is the audio callback: it shapes the source signal with the
// envelope, evaluated one gain value per frame.
func (s *session) process(out []float32) {
	for i := range out {
		out[i] = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}

	frames := len(out) / nChannels
	if len(s.gains) < frames {
		s.gains = make([]float64, frames)
	}
	gains := s.gains[:frames]
	s.env.Values(gains, s.env.Offset()+float64(s.pos)/sampleRate, 1.0/sampleRate)

	end := int(s.env.TrackLen() * sampleRate)
	for i := 0; i < frames; i++ {
		if s.pos >= end {
			s.playing = false
			break
		}
		v := s.source(s.pos) * gains[i]
		out[nChannels*i] = float32(v)
		out[nChannels*i+1] = float32(v)
		s.pos++
	}
}

// source produces the dry signal at frame pos: the loaded sound looped,
// or a test tone when none is loaded.
func (s *session) source(pos int) float64 {
	if s.snd != nil {
		return s.snd.buf[pos%len(s.snd.buf)]
	}
	return 0.2 * math.Sin(2*math.Pi*220*float64(pos)/sampleRate)
}

// bounce renders the enveloped signal over the whole span to a 16 bit
// stereo wav file.
func (s *session) bounce(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := int(s.env.TrackLen() * sampleRate)
	if frames == 0 {
		return errors.New("the span is empty")
	}
	const maxFrames = 10 * 60 * sampleRate
	if frames > maxFrames {
		return fmt.Errorf("span too long to bounce: %v seconds", s.env.TrackLen())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gains := make([]float64, frames)
	s.env.Values(gains, s.env.Offset(), 1.0/sampleRate)

	const scale = 1<<15 - 1
	w := wav.NewWriter(f, uint32(frames), nChannels, sampleRate, 16)
	samples := make([]wav.Sample, 0, 4096)
	for pos := 0; pos < frames; pos++ {
		v := s.source(pos) * gains[pos]
		v = math.Max(-1, math.Min(1, v))
		n := int(v * scale)
		samples = append(samples, wav.Sample{Values: [2]int{n, n}})
		if len(samples) == cap(samples) {
			if err := w.WriteSamples(samples); err != nil {
				return err
			}
			samples = samples[:0]
		}
	}
	if len(samples) > 0 {
		return w.WriteSamples(samples)
	}
	return nil
}
