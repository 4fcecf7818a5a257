package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coursecast/internal/audio"
	"coursecast/internal/jobs"
	"coursecast/internal/logging"
	"coursecast/internal/script"
	"coursecast/internal/services"
	"coursecast/internal/storage"
	"coursecast/internal/testsupport"
	"coursecast/internal/visual"
)

const demoProgram = `class DemoScene(Scene):
    def construct(self):
        title = Text("Photosynthesis")
        self.play(FadeIn(title))
        self.wait(4)
`

type stubVisualProvider struct {
	err   error
	calls int
}

func (p *stubVisualProvider) GenerateProgram(ctx context.Context, req visual.Request) (*visual.ProviderResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &visual.ProviderResult{
		EntryPoint: "DemoScene",
		Program:    demoProgram,
		Raw:        demoProgram,
	}, nil
}

type stubVoiceProvider struct {
	err   error
	calls int
}

func (p *stubVoiceProvider) Synthesize(ctx context.Context, text string, opts audio.SynthesisOptions) ([]byte, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []byte("audio-bytes"), nil
}

func testScript() *script.VideoScript {
	return &script.VideoScript{
		Title:                "Photosynthesis Basics",
		TotalDurationSeconds: 15,
		Scenes: []script.Scene{
			{Number: 1, DurationSeconds: 8, Narration: "Plants capture sunlight. Chlorophyll absorbs light energy. Water enters through the roots."},
			{Number: 2, DurationSeconds: 7, Narration: "Carbon dioxide enters the leaves. Glucose is assembled inside the chloroplast. Oxygen is released as a byproduct."},
		},
	}
}

func workDirEntries(t *testing.T, workDir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read work dir: %v", err)
	}
	return entries
}

func TestGenerateSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifactBinaries("ffmpeg"))
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	var events []ProgressEvent
	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{},
		Sink:           storage.NewLocalSink(filepath.Join(testsupport.BaseDir(cfg), "published")),
	}, logging.NewNop())

	result := orch.Generate(context.Background(), Request{
		JobID:   1,
		OwnerID: 42,
		Script:  testScript(),
		OnProgress: func(ev ProgressEvent) {
			events = append(events, ev)
		},
	})

	if !result.Success {
		t.Fatalf("generate failed: %s (%s)", result.ErrorMessage, result.ErrorCode)
	}
	if result.Metadata.ChunkCount != 3 {
		t.Errorf("chunk count = %d, want 3", result.Metadata.ChunkCount)
	}
	if result.Metadata.ChunksIncluded != 3 {
		t.Errorf("chunks included = %d, want 3", result.Metadata.ChunksIncluded)
	}
	if info, err := os.Stat(result.VideoPath); err != nil || info.Size() == 0 {
		t.Errorf("output artifact missing or empty: %v", err)
	}
	if result.VideoURL == "" {
		t.Error("expected a published URL from the sink")
	}
	if result.PreviewPath == "" {
		t.Error("expected a preview still next to the output")
	}
	for _, chunk := range result.Chunks {
		if chunk.ProgramIsFallback {
			t.Errorf("chunk %d unexpectedly carries a fallback program", chunk.ID)
		}
		if !chunk.HasAudio() || chunk.AudioIsPlaceholder {
			t.Errorf("chunk %d audio = %q placeholder=%v", chunk.ID, chunk.AudioPath, chunk.AudioIsPlaceholder)
		}
	}

	if len(workDirEntries(t, cfg.Paths.WorkDir)) != 0 {
		t.Error("work directory should be cleaned up after success")
	}

	if len(events) == 0 {
		t.Fatal("no progress events emitted")
	}
	last := events[len(events)-1]
	if last.Stage != StageCompleted || last.Fraction != 1.0 {
		t.Errorf("final event = %+v, want completed at 1.0", last)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Fraction < events[i-1].Fraction {
			t.Errorf("progress decreased at %d: %f -> %f", i, events[i-1].Fraction, events[i].Fraction)
		}
	}
}

func TestGenerateVisualFailureDegradesToFallback(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifactBinaries("ffmpeg"))
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	cfg.Workflow.MaxRetries = -1
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{err: errors.New("connection refused")},
		VoiceProvider:  &stubVoiceProvider{},
	}, logging.NewNop())

	result := orch.Generate(context.Background(), Request{JobID: 2, Script: testScript()})
	if !result.Success {
		t.Fatalf("generate failed: %s", result.ErrorMessage)
	}
	for _, chunk := range result.Chunks {
		if !chunk.ProgramIsFallback {
			t.Errorf("chunk %d should carry the fallback program", chunk.ID)
		}
	}
}

func TestGenerateAudioFailureDegradesToPlaceholder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifactBinaries("ffmpeg"))
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	cfg.Workflow.MaxRetries = -1
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{err: errors.New("tts endpoint unreachable")},
	}, logging.NewNop())

	result := orch.Generate(context.Background(), Request{JobID: 3, Script: testScript()})
	if !result.Success {
		t.Fatalf("generate failed: %s", result.ErrorMessage)
	}
	for _, chunk := range result.Chunks {
		if !chunk.AudioIsPlaceholder {
			t.Errorf("chunk %d should carry placeholder audio", chunk.ID)
		}
		if !strings.HasSuffix(chunk.AudioPath, ".wav") {
			t.Errorf("placeholder audio should be a wav file, got %q", chunk.AudioPath)
		}
	}
}

func TestGenerateNonRecoverableAbortsJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	provider := &stubVisualProvider{err: errors.New("no space left on device")}
	orch := New(cfg, Options{
		VisualProvider: provider,
		VoiceProvider:  &stubVoiceProvider{},
	}, logging.NewNop())

	result := orch.Generate(context.Background(), Request{JobID: 4, Script: testScript()})
	if result.Success {
		t.Fatal("job should fail on a non-recoverable error")
	}
	if result.Recoverable {
		t.Error("resource exhaustion must classify non-recoverable")
	}
	if provider.calls != 1 {
		t.Errorf("non-recoverable errors must not be retried, got %d calls", provider.calls)
	}
	if len(workDirEntries(t, cfg.Paths.WorkDir)) != 0 {
		t.Error("work directory should still be cleaned up on failure")
	}
}

func TestGenerateCancellationPreservesArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{},
	}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := orch.Generate(ctx, Request{JobID: 5, Script: testScript()})
	if result.Success {
		t.Fatal("cancelled job must not succeed")
	}
	if !result.Cancelled {
		t.Fatal("result should be marked cancelled")
	}
	entries := workDirEntries(t, cfg.Paths.WorkDir)
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "job_5_") {
		t.Errorf("cancelled job should preserve its work directory, entries=%v", entries)
	}
}

func TestGenerateEmptyScriptFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{},
	}, logging.NewNop())

	result := orch.Generate(context.Background(), Request{JobID: 6, Script: &script.VideoScript{Title: "Empty"}})
	if result.Success {
		t.Fatal("empty script must fail")
	}
	if result.ErrorCode != services.CodeScriptGenerationFailed {
		t.Errorf("error code = %s, want %s", result.ErrorCode, services.CodeScriptGenerationFailed)
	}
}

func TestWholeJobFallbackChunk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFmpegBinary = "coursecast-test-no-ffmpeg"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{},
	}, logging.NewNop())

	vs := testScript()
	workDir := t.TempDir()
	chunk, err := orch.wholeJobFallback(context.Background(), vs, workDir)
	if err != nil {
		t.Fatalf("whole-job fallback: %v", err)
	}
	if chunk.ID != 1 {
		t.Errorf("fallback chunk id = %d, want 1", chunk.ID)
	}
	if !strings.HasPrefix(chunk.Text, vs.Title) {
		t.Errorf("fallback text should start with the title: %q", chunk.Text)
	}
	if !strings.Contains(chunk.Text, "Plants capture sunlight.") {
		t.Errorf("fallback text should carry the narration: %q", chunk.Text)
	}
	if chunk.Duration != vs.TotalDurationSeconds {
		t.Errorf("fallback duration = %f, want %f", chunk.Duration, vs.TotalDurationSeconds)
	}
	if !chunk.ProgramIsFallback {
		t.Error("fallback chunk must carry the template program")
	}
	if !chunk.HasVideo() {
		t.Error("fallback chunk should render through the placeholder tier")
	}
}

func TestWholeJobFallbackRerunsProduceDistinctArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFmpegBinary = "coursecast-test-no-ffmpeg"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{},
	}, logging.NewNop())

	vs := testScript()
	workDir := t.TempDir()
	first, err := orch.wholeJobFallback(context.Background(), vs, workDir)
	if err != nil {
		t.Fatalf("first fallback run: %v", err)
	}
	second, err := orch.wholeJobFallback(context.Background(), vs, workDir)
	if err != nil {
		t.Fatalf("second fallback run: %v", err)
	}

	if first.VideoPath == second.VideoPath {
		t.Errorf("runs share a video artifact: %q", first.VideoPath)
	}
	if first.AudioPath == second.AudioPath {
		t.Errorf("runs share an audio artifact: %q", first.AudioPath)
	}
	for _, path := range []string{first.VideoPath, first.AudioPath, second.VideoPath, second.AudioPath} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("artifact %q missing or empty: %v", path, err)
		}
	}
	if first.Text != second.Text || first.Duration != second.Duration {
		t.Errorf("runs disagree on chunk content: %+v vs %+v", first, second)
	}
}

func TestHeartbeatKeepsJobRowFresh(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	jobID, err := store.Create(ctx, &jobs.Job{Topic: "erosion"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	before, _ := store.Get(ctx, jobID)

	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{},
		Store:          store,
	}, logging.NewNop())

	stop := orch.startHeartbeat(ctx, jobID, 10*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	stop()
	stop() // stopping twice must be safe

	after, _ := store.Get(ctx, jobID)
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("heartbeat did not advance updated_at: %s -> %s", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestGeneratePersistsJobState(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifactBinaries("ffmpeg"))
	cfg.Render.ManimBinary = "coursecast-test-no-manim"
	cfg.Render.FFprobeBinary = "coursecast-test-no-ffprobe"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	jobID, err := store.Create(ctx, &jobs.Job{OwnerID: 42, Topic: "photosynthesis"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	orch := New(cfg, Options{
		VisualProvider: &stubVisualProvider{},
		VoiceProvider:  &stubVoiceProvider{},
		Store:          store,
	}, logging.NewNop())

	result := orch.Generate(ctx, Request{JobID: jobID, OwnerID: 42, Script: testScript()})
	if !result.Success {
		t.Fatalf("generate failed: %s", result.ErrorMessage)
	}

	job, err := store.Get(ctx, jobID)
	if err != nil || job == nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
	if job.Progress != 1.0 {
		t.Errorf("progress = %f, want 1.0", job.Progress)
	}
	if job.OutputPath != result.VideoPath {
		t.Errorf("output path = %q, want %q", job.OutputPath, result.VideoPath)
	}
}
