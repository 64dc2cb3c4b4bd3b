package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/adrobotics/audacity/envelope"
)

func main() {
	var (
		soundFile = flag.String("sound", "", "wav file to run through the envelope")
		preset    = flag.String("preset", "", "envelope preset to load at startup")
		run       = flag.String("run", "", "script of commands to run before the prompt")
	)
	flag.Parse()

	env := envelope.New(false, 0, 1, 1)
	if *preset != "" {
		loaded, err := loadPreset(*preset)
		if err != nil {
			log.Fatal(err)
		}
		env = loaded
	}

	session := &session{env: env}

	if *soundFile != "" {
		snd, err := loadSound(*soundFile)
		if err != nil {
			log.Fatal(err)
		}
		session.snd = snd
	}

	var lines []string
	if *run != "" {
		f, err := os.Open(*run)
		if err != nil {
			log.Fatal(err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, strings.TrimSpace(scanner.Text()))
		}
		if err := scanner.Err(); err != nil {
			log.Fatal(err)
		}
		f.Close()
	}

	if err := portaudio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer portaudio.Terminate()

	stream, err := portaudio.OpenDefaultStream(0, nChannels, sampleRate, bufferSize, session.process)
	if err != nil {
		log.Fatal(err)
	}
	session.stream = stream

	if err := stream.Start(); err != nil {
		log.Fatal(err)
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, err := eval(session, line); err != nil {
			log.Fatal(err)
		}
	}

	if err := repl(session); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type session struct {
	stream *portaudio.Stream

	mu      sync.Mutex
	env     *envelope.Envelope
	snd     *sound
	playing bool
	pos     int

	gains []float64
}

func (s *session) update(f func(*envelope.Envelope)) {
	s.mu.Lock()
	f(s.env)
	s.mu.Unlock()
}
