package chunker

import (
	"strings"
	"testing"
)

func TestSplitDistributesSentencesEvenly(t *testing.T) {
	c := New(5, nil)
	narration := "One. Two. Three. Four. Five. Six."
	chunks := c.Split(narration, 15)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	wantTexts := []string{"One. Two.", "Three. Four.", "Five. Six."}
	for i, chunk := range chunks {
		if chunk.ID != i+1 {
			t.Errorf("chunk %d has id %d", i, chunk.ID)
		}
		if chunk.Text != wantTexts[i] {
			t.Errorf("chunk %d text = %q, want %q", i, chunk.Text, wantTexts[i])
		}
		if chunk.Duration != 5 {
			t.Errorf("chunk %d duration = %v, want 5", i, chunk.Duration)
		}
		if chunk.StartTime != float64(i)*5 {
			t.Errorf("chunk %d start = %v, want %v", i, chunk.StartTime, float64(i)*5)
		}
	}
}

func TestSplitFinalChunkAbsorbsRemainder(t *testing.T) {
	c := New(5, nil)
	narration := "One. Two. Three. Four. Five. Six. Seven."
	chunks := c.Split(narration, 15)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	last := chunks[len(chunks)-1]
	if len(last.Sentences) != 3 {
		t.Errorf("final chunk holds %d sentences, want 3", len(last.Sentences))
	}

	var total int
	for _, chunk := range chunks {
		total += len(chunk.Sentences)
	}
	if total != 7 {
		t.Errorf("sentences across chunks = %d, want 7 (none dropped)", total)
	}
}

func TestSplitPartitionsWithoutLossOrDuplication(t *testing.T) {
	c := New(5, nil)
	narration := "Alpha one. Beta two. Gamma three. Delta four. Epsilon five."
	chunks := c.Split(narration, 20)

	var rejoined []string
	for _, chunk := range chunks {
		rejoined = append(rejoined, chunk.Sentences...)
	}
	if got, want := strings.Join(rejoined, " "), narration; got != want {
		t.Errorf("rejoined sentences = %q, want %q", got, want)
	}
}

func TestSplitScenarioThreeSentencesFifteenSeconds(t *testing.T) {
	c := New(5, nil)
	chunks := c.Split("First point. Second point. Third point.", 15)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	var sum float64
	for i, chunk := range chunks {
		if chunk.ID != i+1 {
			t.Errorf("chunk ids must be contiguous from 1, got %d at index %d", chunk.ID, i)
		}
		if chunk.Text == "" {
			t.Errorf("chunk %d has empty text", chunk.ID)
		}
		sum += chunk.Duration
	}
	if sum != 15 {
		t.Errorf("durations sum to %v, want 15", sum)
	}
}

func TestSplitFewerSentencesThanSlots(t *testing.T) {
	c := New(5, nil)
	// 30 seconds requests 6 slots but only 2 sentences exist. Empty slots
	// are omitted and ids stay contiguous.
	chunks := c.Split("Only one. And two.", 30)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].ID != 1 {
		t.Errorf("chunk id = %d, want 1", chunks[0].ID)
	}
	if len(chunks[0].Sentences) != 2 {
		t.Errorf("chunk holds %d sentences, want 2", len(chunks[0].Sentences))
	}
}

func TestSplitNoTerminalPunctuation(t *testing.T) {
	c := New(5, nil)
	chunks := c.Split("a narration without any terminal punctuation", 10)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "a narration without any terminal punctuation" {
		t.Errorf("text = %q", chunks[0].Text)
	}
}

func TestSplitEmptyNarration(t *testing.T) {
	c := New(5, nil)
	if chunks := c.Split("   ", 10); len(chunks) != 0 {
		t.Errorf("expected no chunks for blank narration, got %d", len(chunks))
	}
}

func TestSplitShortTotalDurationStillOneChunk(t *testing.T) {
	c := New(5, nil)
	chunks := c.Split("Quick note.", 2)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestChunkArtifactPredicates(t *testing.T) {
	chunk := &Chunk{}
	if chunk.HasVideo() || chunk.HasAudio() {
		t.Error("fresh chunk should have no artifacts")
	}
	chunk.VideoPath = "/tmp/c1.mp4"
	chunk.AudioPath = "/tmp/c1.wav"
	if !chunk.HasVideo() || !chunk.HasAudio() {
		t.Error("artifact predicates should see assigned paths")
	}
	chunk.VideoPath = "  "
	if chunk.HasVideo() {
		t.Error("whitespace path should not count as an artifact")
	}
}
