package audio

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"coursecast/internal/chunker"
	"coursecast/internal/config"
	"coursecast/internal/services"
)

type stubVoice struct {
	failPieces map[string]bool
	failAll    bool
	calls      []string
}

func (s *stubVoice) Synthesize(_ context.Context, text string, _ SynthesisOptions) ([]byte, error) {
	s.calls = append(s.calls, text)
	if s.failAll || s.failPieces[text] {
		return nil, errors.New("voice synthesis unavailable")
	}
	return []byte(text), nil
}

func testAudioConfig() config.Audio {
	return config.Audio{
		Language:            "en-US",
		Speed:               1,
		ProviderCharLimit:   200,
		SecondsPerCharacter: 0.1,
		PlaceholderToneHz:   440,
	}
}

func TestGenerateShortTextSingleRequest(t *testing.T) {
	voice := &stubVoice{}
	stage := NewStage(voice, testAudioConfig(), nil)
	chunk := &chunker.Chunk{ID: 1, Text: "A short narration."}

	if err := stage.Generate(context.Background(), chunk, t.TempDir()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(voice.calls) != 1 {
		t.Errorf("got %d provider calls, want 1", len(voice.calls))
	}
	if !chunk.HasAudio() || chunk.AudioIsPlaceholder {
		t.Error("chunk should hold real audio")
	}
	data, err := os.ReadFile(chunk.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "A short narration." {
		t.Errorf("artifact = %q", data)
	}
}

func TestGenerateLongTextSplitsAndConcatenates(t *testing.T) {
	voice := &stubVoice{}
	stage := NewStage(voice, testAudioConfig(), nil)

	sentence := strings.Repeat("word ", 19) + "end." // 99 chars
	text := strings.Join([]string{sentence, sentence, sentence, sentence, sentence}, " ")
	chunk := &chunker.Chunk{ID: 2, Text: text}

	if err := stage.Generate(context.Background(), chunk, t.TempDir()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(voice.calls) < 3 {
		t.Errorf("got %d provider calls, want at least 3 for 500 chars at limit 200", len(voice.calls))
	}

	data, err := os.ReadFile(chunk.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	var want int
	for _, call := range voice.calls {
		want += len(call)
	}
	if len(data) != want {
		t.Errorf("combined artifact = %d bytes, want byte-appended %d", len(data), want)
	}
}

func TestGenerateToleratesPartialFailures(t *testing.T) {
	voice := &stubVoice{failPieces: map[string]bool{}}
	stage := NewStage(voice, testAudioConfig(), nil)

	sentence := strings.Repeat("word ", 19) + "end."
	text := strings.Join([]string{sentence, sentence, sentence, sentence, sentence}, " ")
	pieces := SplitForSynthesis(text, 200)
	if len(pieces) < 3 {
		t.Fatalf("fixture should split into at least 3 pieces, got %d", len(pieces))
	}
	voice.failPieces[pieces[1]] = true

	chunk := &chunker.Chunk{ID: 3, Text: text}
	if err := stage.Generate(context.Background(), chunk, t.TempDir()); err != nil {
		t.Fatalf("partial failure must not error: %v", err)
	}

	data, err := os.ReadFile(chunk.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	want := 0
	for i, piece := range pieces {
		if i == 1 {
			continue
		}
		want += len(piece)
	}
	if len(data) != want {
		t.Errorf("artifact = %d bytes, want %d (sum of surviving pieces)", len(data), want)
	}
}

func TestGenerateTotalFailureSurfacesRecoverableError(t *testing.T) {
	voice := &stubVoice{failAll: true}
	stage := NewStage(voice, testAudioConfig(), nil)
	chunk := &chunker.Chunk{ID: 4, Text: "Some narration."}

	err := stage.Generate(context.Background(), chunk, t.TempDir())
	if err == nil {
		t.Fatal("total synthesis failure should error")
	}
	perr := services.Classify(err)
	if perr.Code != services.CodeAudioGenerationFailed {
		t.Errorf("code = %s, want %s", perr.Code, services.CodeAudioGenerationFailed)
	}
	if !perr.Recoverable {
		t.Error("audio failures must be recoverable")
	}
	if chunk.HasAudio() {
		t.Error("failed generation must not attach an artifact")
	}
}

func TestApplyPlaceholderWritesTone(t *testing.T) {
	stage := NewStage(&stubVoice{}, testAudioConfig(), nil)
	chunk := &chunker.Chunk{ID: 5, Text: strings.Repeat("a", 30)}

	if err := stage.ApplyPlaceholder(chunk, t.TempDir()); err != nil {
		t.Fatalf("ApplyPlaceholder: %v", err)
	}
	if !chunk.AudioIsPlaceholder {
		t.Error("placeholder flag should be set")
	}
	data, err := os.ReadFile(chunk.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[0:4]) != "RIFF" {
		t.Error("placeholder should be a WAV file")
	}
	// 30 chars at 0.1 s/char is 3 seconds of samples.
	wantLen := 44 + 3*placeholderSampleRate*2
	if len(data) != wantLen {
		t.Errorf("placeholder = %d bytes, want %d", len(data), wantLen)
	}
}
