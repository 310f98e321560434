// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package serial

import (
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Simulator is a stand-in device producing one JSON reading per interval.
// Temperature and humidity follow a bounded random walk.
type Simulator struct {
	pr *io.PipeReader
	pw *io.PipeWriter

	interval time.Duration
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup

	temperature float64
	humidity    float64
}

type simulatedLine struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// NewSimulator starts emitting readings every interval.
func NewSimulator(interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	pr, pw := io.Pipe()
	s := &Simulator{
		pr:          pr,
		pw:          pw,
		interval:    interval,
		done:        make(chan struct{}),
		temperature: 21.0,
		humidity:    45.0,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Read implements io.Reader.
func (s *Simulator) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// Close stops the generator and unblocks pending reads with io.ErrClosedPipe.
func (s *Simulator) Close() error {
	s.once.Do(func() {
		close(s.done)
		_ = s.pr.Close()
	})
	s.wg.Wait()
	return nil
}

func (s *Simulator) run() {
	defer s.wg.Done()
	defer s.pw.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			line, err := json.Marshal(s.step())
			if err != nil {
				continue
			}
			if _, err := s.pw.Write(append(line, '\n')); err != nil {
				return
			}
		}
	}
}

func (s *Simulator) step() simulatedLine {
	s.temperature = clamp(s.temperature+rand.NormFloat64()*0.2, 15, 30)
	s.humidity = clamp(s.humidity+rand.NormFloat64()*0.5, 25, 70)
	return simulatedLine{
		Temperature: math.Round(s.temperature*10) / 10,
		Humidity:    math.Round(s.humidity*10) / 10,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
