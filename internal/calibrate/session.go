package calibrate

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/ironsheep/circle-calibrate-mcp/internal/config"
)

// Session holds the last loaded image so it can be recalibrated with new
// settings without reloading.
//
// Runs on a Session are serialised: a Load or Run issued while another run
// is in progress waits for it to finish.
type Session struct {
	pipeline *Pipeline

	mu     sync.Mutex
	image  image.Image
	source string

	busy atomic.Bool
}

// NewSession creates an empty session that runs p.
func NewSession(p *Pipeline) *Session {
	return &Session{pipeline: p}
}

// Load replaces the session image. source is a free-form label, usually the
// file path, reported back by Current.
func (s *Session) Load(img image.Image, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = img
	s.source = source
}

// Current returns the loaded image and its source label.
func (s *Session) Current() (image.Image, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image, s.source, s.image != nil
}

// Run calibrates the loaded image with cfg.
func (s *Session) Run(cfg *config.Config) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.image == nil {
		return nil, fmt.Errorf("%w: no image loaded", ErrInvalidInput)
	}
	return s.run(s.image, cfg)
}

// Process loads img into the session and calibrates it. A nil img leaves
// the previous image in place.
func (s *Session) Process(img image.Image, source string, cfg *config.Config) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidInput)
	}
	s.image = img
	s.source = source
	return s.run(img, cfg)
}

// Busy reports whether a run is in progress.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

func (s *Session) run(img image.Image, cfg *config.Config) (*Result, error) {
	s.busy.Store(true)
	defer s.busy.Store(false)
	return s.pipeline.Run(img, cfg)
}
