// Package audio provides a minimal PCM WAV codec and mixing primitives.
// Everything operates on in-memory sample buffers so the assembly stage
// stays a pure transformation with no external processes or network calls.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidWAV indicates the byte stream is not a PCM WAV file we can read
	ErrInvalidWAV = errors.New("invalid WAV data")
	// ErrSampleRateMismatch indicates two clips cannot be combined directly
	ErrSampleRateMismatch = errors.New("sample rate mismatch")
)

// Clip holds decoded 16-bit mono PCM audio
type Clip struct {
	SampleRate int
	Samples    []int16
}

// Duration returns the clip length as a time.Duration
func (c *Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// DurationMs returns the clip length in whole milliseconds
func (c *Clip) DurationMs() int64 {
	return c.Duration().Milliseconds()
}

// Silence creates a clip of silent samples for the given duration
func Silence(sampleRate int, d time.Duration) *Clip {
	n := int(int64(sampleRate) * d.Nanoseconds() / int64(time.Second))
	if n < 0 {
		n = 0
	}
	return &Clip{
		SampleRate: sampleRate,
		Samples:    make([]int16, n),
	}
}

// DecodeWAV parses a PCM WAV byte stream into a mono clip.
// 16-bit PCM is required; stereo input is averaged down to mono.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidWAV, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var (
		sampleRate int
		channels   int
		bitDepth   int
		pcm        []byte
		haveFmt    bool
	)

	// Walk the chunk list; fmt and data may be preceded by LIST/fact chunks
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			chunkLen = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("%w: unsupported format code %d (PCM required)", ErrInvalidWAV, format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+chunkLen]
		}

		// Chunks are word-aligned
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}

	if !haveFmt || pcm == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrInvalidWAV)
	}
	if bitDepth != 16 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, bitDepth)
	}
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidWAV, channels)
	}

	frameBytes := 2 * channels
	frames := len(pcm) / frameBytes
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		base := i * frameBytes
		if channels == 1 {
			samples[i] = int16(binary.LittleEndian.Uint16(pcm[base : base+2]))
		} else {
			left := int32(int16(binary.LittleEndian.Uint16(pcm[base : base+2])))
			right := int32(int16(binary.LittleEndian.Uint16(pcm[base+2 : base+4])))
			samples[i] = int16((left + right) / 2)
		}
	}

	return &Clip{SampleRate: sampleRate, Samples: samples}, nil
}

// EncodeWAV serializes a clip as a 16-bit mono PCM WAV byte stream
func EncodeWAV(c *Clip) []byte {
	dataLen := len(c.Samples) * 2
	buf := make([]byte, 44+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(c.SampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                      // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                     // bit depth

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(s))
	}

	return buf
}

// Concat joins clips back to back. All clips must share a sample rate.
func Concat(clips ...*Clip) (*Clip, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips to concatenate")
	}

	total := 0
	rate := clips[0].SampleRate
	for _, c := range clips {
		if c.SampleRate != rate {
			return nil, fmt.Errorf("%w: %d vs %d", ErrSampleRateMismatch, rate, c.SampleRate)
		}
		total += len(c.Samples)
	}

	out := make([]int16, 0, total)
	for _, c := range clips {
		out = append(out, c.Samples...)
	}
	return &Clip{SampleRate: rate, Samples: out}, nil
}
