package audio

import (
	"encoding/binary"
	"testing"
)

func TestPlaceholderToneIsValidWAV(t *testing.T) {
	data := PlaceholderTone(2, 440)

	if len(data) < 44 {
		t.Fatalf("wav too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		t.Error("missing fmt/data chunks")
	}

	riffSize := binary.LittleEndian.Uint32(data[4:8])
	if int(riffSize) != len(data)-8 {
		t.Errorf("riff size = %d, want %d", riffSize, len(data)-8)
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(data)-44 {
		t.Errorf("data size = %d, want %d", dataSize, len(data)-44)
	}

	wantSamples := 2 * placeholderSampleRate
	if int(dataSize) != wantSamples*2 {
		t.Errorf("data holds %d bytes, want %d for 2 seconds", dataSize, wantSamples*2)
	}
}

func TestPlaceholderToneClampsInputs(t *testing.T) {
	data := PlaceholderTone(0, 0)
	if len(data) != 44+placeholderSampleRate*2 {
		t.Errorf("zero duration should clamp to 1 second, got %d bytes", len(data))
	}
}

func TestEstimateSpeechSeconds(t *testing.T) {
	tests := []struct {
		text   string
		perChr float64
		want   float64
	}{
		{"1234567890", 0.1, 1},
		{"12345678901234567890", 0.1, 2},
		{"ab", 0.1, 1}, // floor of one second
		{"1234567890", 0, 1},
	}
	for _, tt := range tests {
		if got := EstimateSpeechSeconds(tt.text, tt.perChr); got != tt.want {
			t.Errorf("EstimateSpeechSeconds(%q, %v) = %v, want %v", tt.text, tt.perChr, got, tt.want)
		}
	}
}
