package audio

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	placeholderSampleRate = 22050
	placeholderAmplitude  = 0.2
)

// PlaceholderTone renders a mono 16-bit PCM WAV file containing a quiet sine
// tone. It stands in for provider audio when synthesis fails entirely, sized
// to the estimated speech duration so the mux keeps roughly the right length.
func PlaceholderTone(durationSeconds float64, toneHz int) []byte {
	if durationSeconds <= 0 {
		durationSeconds = 1
	}
	if toneHz <= 0 {
		toneHz = 440
	}

	sampleCount := int(durationSeconds * placeholderSampleRate)
	dataSize := sampleCount * 2

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	// RIFF header, PCM fmt chunk, data chunk.
	buf.WriteString("RIFF")
	writeLE(&buf, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeLE(&buf, uint32(16))
	writeLE(&buf, uint16(1)) // PCM
	writeLE(&buf, uint16(1)) // mono
	writeLE(&buf, uint32(placeholderSampleRate))
	writeLE(&buf, uint32(placeholderSampleRate*2)) // byte rate
	writeLE(&buf, uint16(2))                       // block align
	writeLE(&buf, uint16(16))                      // bits per sample
	buf.WriteString("data")
	writeLE(&buf, uint32(dataSize))

	step := 2 * math.Pi * float64(toneHz) / placeholderSampleRate
	for i := 0; i < sampleCount; i++ {
		sample := int16(placeholderAmplitude * math.MaxInt16 * math.Sin(step*float64(i)))
		writeLE(&buf, uint16(sample))
	}
	return buf.Bytes()
}

// EstimateSpeechSeconds approximates how long synthesized speech for the text
// would run, at secondsPerCharacter (0.1 by default).
func EstimateSpeechSeconds(text string, secondsPerCharacter float64) float64 {
	if secondsPerCharacter <= 0 {
		secondsPerCharacter = 0.1
	}
	seconds := float64(len(text)) * secondsPerCharacter
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func writeLE(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}
