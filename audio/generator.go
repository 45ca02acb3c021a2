package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Waveform types
const (
	waveSine = iota
	waveSquare
)

// floatBuffer is mono float64 samples at unity gain
type floatBuffer []float64

// oscillator generates raw waveform samples
func oscillator(waveType int, freq float64, samples int, sr beep.SampleRate) floatBuffer {
	buf := make(floatBuffer, samples)
	phase := 0.0
	phaseInc := freq / float64(sr)

	for i := 0; i < samples; i++ {
		switch waveType {
		case waveSine:
			buf[i] = math.Sin(2 * math.Pi * phase)
		case waveSquare:
			if phase < 0.5 {
				buf[i] = 1.0
			} else {
				buf[i] = -1.0
			}
		}

		phase += phaseInc
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	return buf
}

// applyEnvelope applies attack/release envelope in place
func applyEnvelope(buf floatBuffer, attack, release time.Duration, sr beep.SampleRate) {
	total := len(buf)
	attackSamples := sr.N(attack)
	releaseSamples := sr.N(release)

	releaseStart := total - releaseSamples
	if releaseStart < attackSamples {
		releaseStart = attackSamples
	}

	for i := 0; i < total; i++ {
		vol := 1.0
		if i < attackSamples && attackSamples > 0 {
			vol = float64(i) / float64(attackSamples)
		} else if i >= releaseStart && releaseSamples > 0 {
			vol = float64(total-i) / float64(releaseSamples)
		}
		buf[i] *= vol
	}
}

// concatFloatBuffers appends b to a
func concatFloatBuffers(a, b floatBuffer) floatBuffer {
	result := make(floatBuffer, len(a)+len(b))
	copy(result, a)
	copy(result[len(a):], b)
	return result
}

func tone(waveType int, freq float64, d time.Duration, sr beep.SampleRate) floatBuffer {
	buf := oscillator(waveType, freq, sr.N(d), sr)
	applyEnvelope(buf, 5*time.Millisecond, d/2, sr)
	return buf
}

// generateCue renders a cue at unity gain
func generateCue(c Cue, sr beep.SampleRate) floatBuffer {
	switch c {
	case CueSent:
		// Short E5 tick
		return tone(waveSine, 659.25, 40*time.Millisecond, sr)
	case CueReply:
		// A5
		return tone(waveSine, 880.0, 70*time.Millisecond, sr)
	case CueClosed:
		// Falling A4 -> E4
		return concatFloatBuffers(
			tone(waveSine, 440.0, 90*time.Millisecond, sr),
			tone(waveSine, 329.63, 140*time.Millisecond, sr),
		)
	case CueError:
		// Low buzz
		return tone(waveSquare, 120.0, 150*time.Millisecond, sr)
	default:
		return nil
	}
}

// bufferStreamer plays a mono buffer once on both channels at the given gain
type bufferStreamer struct {
	buf  floatBuffer
	gain float64
	pos  int
}

func newBufferStreamer(buf floatBuffer, gain float64) *bufferStreamer {
	return &bufferStreamer{buf: buf, gain: gain}
}

// Stream implements beep.Streamer
func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	for n < len(samples) && s.pos < len(s.buf) {
		v := s.buf[s.pos] * s.gain
		samples[n][0] = v
		samples[n][1] = v
		n++
		s.pos++
	}
	return n, true
}

// Err implements beep.Streamer
func (s *bufferStreamer) Err() error {
	return nil
}
