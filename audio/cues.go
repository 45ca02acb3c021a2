package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

// Cues plays short tones for client events.
// A disabled or uninitialized Cues accepts Play calls and stays silent.
type Cues struct {
	mu          sync.Mutex
	cfg         *Config
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer
	cache       [cueCount]floatBuffer
	initialized bool
}

// NewCues creates cues with cfg; nil uses DefaultConfig
func NewCues(cfg *Config) *Cues {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Cues{
		cfg:        cfg,
		sampleRate: beep.SampleRate(cfg.SampleRate),
		mixer:      &beep.Mixer{},
	}
	for i := Cue(0); i < cueCount; i++ {
		c.cache[i] = generateCue(i, c.sampleRate)
	}
	return c
}

// Init opens the speaker when cues are enabled
func (c *Cues) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized || !c.cfg.Enabled {
		return nil
	}

	if err := speaker.Init(c.sampleRate, c.sampleRate.N(50*time.Millisecond)); err != nil {
		return errors.Wrap(err, "init speaker")
	}

	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close silences pending cues and releases the speaker
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}

	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	c.initialized = false
}

// Play queues a cue on the mixer
func (c *Cues) Play(cue Cue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	s := c.streamer(cue)
	if s == nil {
		return
	}

	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// streamer returns a fresh playback of cue at master volume
func (c *Cues) streamer(cue Cue) beep.Streamer {
	if cue < 0 || cue >= cueCount || c.cfg.MasterVolume <= 0 {
		return nil
	}
	return newBufferStreamer(c.cache[cue], c.cfg.MasterVolume)
}
