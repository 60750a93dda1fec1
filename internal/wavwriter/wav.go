// Package wavwriter records the sound output of the interpreter to a WAV
// file. Audio data is buffered in memory in its entirety and written to
// disk when the writer is closed.
package wavwriter

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	amplitude = 8000
	pcmFormat = 1
)

// WavWriter converts the per cycle sound signal into a square wave tone.
type WavWriter struct {
	filename   string
	sampleRate int
	toneFreq   int

	samplesPerCycle int
	phase           int
	buffer          []int
}

// New returns a writer for the given file. Every cycle covers
// sampleRate/hz samples of audio.
func New(filename string, sampleRate, toneFreq, hz int) (*WavWriter, error) {
	if sampleRate <= 0 || toneFreq <= 0 || hz <= 0 {
		return nil, fmt.Errorf("wavwriter: invalid parameters: sample rate %d, tone %d, hz %d",
			sampleRate, toneFreq, hz)
	}

	return &WavWriter{
		filename:        filename,
		sampleRate:      sampleRate,
		toneFreq:        toneFreq,
		samplesPerCycle: sampleRate / hz,
		buffer:          make([]int, 0),
	}, nil
}

// AddCycle appends the audio of one cycle, a tone if the sound was active
// and silence otherwise.
func (aw *WavWriter) AddCycle(soundActive bool) {
	halfPeriod := aw.sampleRate / (2 * aw.toneFreq)
	if halfPeriod == 0 {
		halfPeriod = 1
	}

	for range aw.samplesPerCycle {
		if !soundActive {
			aw.buffer = append(aw.buffer, 0)
			aw.phase = 0
			continue
		}

		sample := amplitude
		if (aw.phase/halfPeriod)%2 == 1 {
			sample = -amplitude
		}
		aw.buffer = append(aw.buffer, sample)
		aw.phase++
	}
}

// Samples returns the number of buffered samples.
func (aw *WavWriter) Samples() int {
	return len(aw.buffer)
}

// Close encodes the buffered audio and writes it to disk.
func (aw *WavWriter) Close() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, aw.sampleRate, bitDepth, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  aw.sampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: writing samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: closing encoder: %w", err)
	}
	return nil
}
