package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"coursecast/internal/audio"
	"coursecast/internal/chunker"
	"coursecast/internal/combine"
	"coursecast/internal/config"
	"coursecast/internal/fileutil"
	"coursecast/internal/jobs"
	"coursecast/internal/logging"
	"coursecast/internal/media/ffprobe"
	"coursecast/internal/notifications"
	"coursecast/internal/render"
	"coursecast/internal/script"
	"coursecast/internal/services"
	"coursecast/internal/storage"
	"coursecast/internal/textutil"
	"coursecast/internal/visual"
)

// Orchestrator drives a generation job through every stage. It owns the job
// workspace, the retry policy, and the degradation decisions; the stages it
// composes stay single-purpose.
type Orchestrator struct {
	cfg      *config.Config
	chunker  *chunker.Chunker
	visual   *visual.Stage
	audio    *audio.Stage
	render   *render.Stage
	combiner *combine.Combiner
	sink     storage.Sink
	notifier notifications.Service
	store    *jobs.Store
	logger   *slog.Logger

	maxRetries int
	retryBase  time.Duration
}

// Options carries the collaborators an orchestrator composes. Sink, Notifier,
// and Store are optional; a nil value disables that concern.
type Options struct {
	VisualProvider visual.Provider
	VoiceProvider  audio.VoiceProvider
	Sink           storage.Sink
	Notifier       notifications.Service
	Store          *jobs.Store
}

// New assembles an orchestrator from configuration.
func New(cfg *config.Config, opts Options, logger *slog.Logger) *Orchestrator {
	retryBase := time.Duration(cfg.Workflow.RetryBaseSeconds) * time.Second
	if retryBase <= 0 {
		retryBase = time.Second
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	renderOpts := render.OptionsFromConfig(cfg.Render)
	renderTimeout := time.Duration(cfg.Render.TimeoutSeconds) * time.Second
	regen := render.NewFFmpegTier(cfg.Render.FFmpegBinary, renderOpts, cfg.Render.OverlayMaxRune, renderTimeout)

	return &Orchestrator{
		cfg:        cfg,
		chunker:    chunker.New(float64(cfg.Chunking.ChunkDurationSeconds), logger),
		visual:     visual.NewStage(opts.VisualProvider, cfg.Visual, logger),
		audio:      audio.NewStage(opts.VoiceProvider, cfg.Audio, logger),
		render:     render.NewStage(cfg.Render, logger),
		combiner:   combine.New(cfg.Render.FFmpegBinary, regen, logger),
		sink:       opts.Sink,
		notifier:   notifier,
		store:      opts.Store,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		maxRetries: cfg.Workflow.MaxRetries,
		retryBase:  retryBase,
	}
}

// Request describes one generation job.
type Request struct {
	JobID      int64
	OwnerID    int64
	Script     *script.VideoScript
	OnProgress ProgressFunc
}

// Generate runs the whole job and always settles into a GenerationResult.
// Recoverable stage failures degrade per chunk; only non-recoverable errors,
// total chunk loss after the whole-job fallback, or cancellation fail the job.
func (o *Orchestrator) Generate(ctx context.Context, req Request) *GenerationResult {
	started := time.Now()
	ctx = services.WithJobID(ctx, req.JobID)
	em := newProgressEmitter(req.OnProgress)
	logger := o.logger.With(logging.Int64(logging.FieldJobID, req.JobID))

	if req.Script == nil || strings.TrimSpace(req.Script.FullNarration()) == "" {
		perr := services.NewPipelineError(services.CodeScriptGenerationFailed,
			"script has no narration text", nil)
		return o.fail(ctx, req, perr, nil, time.Since(started))
	}

	o.report(ctx, req.JobID, em, StageInitializing, "preparing workspace", fracInitializing, 0)

	workDir := filepath.Join(o.cfg.Paths.WorkDir, fmt.Sprintf("job_%d_%s", req.JobID, uuid.NewString()))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		perr := services.Classify(services.Wrap(services.ErrConfiguration, "pipeline", "workspace", "create job work directory", err))
		return o.fail(ctx, req, perr, nil, time.Since(started))
	}

	stopHeartbeat := o.startHeartbeat(ctx, req.JobID,
		time.Duration(o.cfg.Workflow.HeartbeatInterval)*time.Second)
	defer stopHeartbeat()

	// Temp artifacts are removed whenever the job settles, success or failure.
	// Cancellation is the one exception: artifacts stay on disk for inspection.
	cancelled := false
	defer func() {
		if cancelled {
			logger.Info("job cancelled, preserving work directory",
				logging.String("work_dir", workDir))
			return
		}
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("work directory cleanup failed",
				logging.String("work_dir", workDir), logging.Error(err))
		}
	}()

	o.report(ctx, req.JobID, em, StageChunking, "splitting narration into chunks", fracChunking, 0)
	chunks := o.chunker.Split(req.Script.FullNarration(), req.Script.TotalDurationSeconds)
	if len(chunks) == 0 {
		perr := services.NewPipelineError(services.CodeScriptGenerationFailed,
			"narration produced no chunks", nil)
		return o.fail(ctx, req, perr, nil, time.Since(started))
	}
	logger.Info("chunk plan ready", logging.Int("chunks", len(chunks)))

	if err := o.notifier.NotifyJobStarted(ctx, req.Script.Title, len(chunks)); err != nil {
		logger.Warn("start notification failed", logging.Error(err))
	}

	completed := 0
	for _, chunk := range chunks {
		if ctx.Err() != nil {
			cancelled = true
			return o.cancel(req, chunks, time.Since(started))
		}

		chunkCtx := services.WithChunkID(ctx, chunk.ID)
		ok, fatal := o.processChunk(chunkCtx, chunk, req.Script, workDir)
		if fatal != nil {
			if ctx.Err() != nil {
				cancelled = true
				return o.cancel(req, chunks, time.Since(started))
			}
			return o.fail(ctx, req, services.Classify(fatal), chunks, time.Since(started))
		}
		completed++
		message := fmt.Sprintf("chunk %d/%d processed", completed, len(chunks))
		if !ok {
			message = fmt.Sprintf("chunk %d/%d failed, continuing", completed, len(chunks))
		}
		o.report(ctx, req.JobID, em, StageProcessing, message, processingFraction(completed, len(chunks)), completed)
	}

	if ctx.Err() != nil {
		cancelled = true
		return o.cancel(req, chunks, time.Since(started))
	}

	// When every chunk lost its video the job gets one last chance: a single
	// chunk spanning the whole script, rendered from the deterministic template.
	if countWithVideo(chunks) == 0 {
		logger.Warn("no chunk produced video, attempting whole-job fallback")
		fallback, err := o.wholeJobFallback(ctx, req.Script, workDir)
		if err != nil {
			return o.fail(ctx, req, services.Classify(err), chunks, time.Since(started))
		}
		chunks = []*chunker.Chunk{fallback}
	}

	o.report(ctx, req.JobID, em, StageCombining, "combining chunk artifacts", fracCombining, completed)
	outputPath := o.outputPath(req)
	includedIDs, err := o.combiner.Combine(ctx, chunks, workDir, outputPath)
	if err != nil {
		return o.fail(ctx, req, services.Classify(err), chunks, time.Since(started))
	}

	o.report(ctx, req.JobID, em, StageFinalizing, "publishing final artifact", fracFinalizing, completed)
	previewPath := o.generatePreview(ctx, outputPath, logger)
	videoURL := o.publish(ctx, req, outputPath, logger)

	elapsed := time.Since(started)
	result := &GenerationResult{
		Success:     true,
		VideoPath:   outputPath,
		VideoURL:    videoURL,
		PreviewPath: previewPath,
		Chunks:      chunks,
		Metadata: Metadata{
			TotalDurationSeconds: req.Script.TotalDurationSeconds,
			ChunkCount:           len(chunks),
			ChunksIncluded:       len(includedIDs),
			Elapsed:              elapsed,
			OutputSizeBytes:      fileutil.FileSize(outputPath),
		},
	}
	if info, err := ffprobe.Inspect(ctx, o.cfg.Render.FFprobeBinary, outputPath); err == nil {
		result.Metadata.OutputDurationSeconds = info.DurationSeconds
	}

	// The completed event goes out before the store transition so the stored
	// completed status is never overwritten by a late progress write.
	o.report(ctx, req.JobID, em, StageCompleted, "video ready", fracCompleted, completed)
	if o.store != nil && req.JobID > 0 {
		if err := o.store.MarkCompleted(ctx, req.JobID, outputPath, videoURL); err != nil {
			logger.Warn("mark job completed failed", logging.Error(err))
		}
	}
	if err := o.notifier.NotifyJobCompleted(ctx, req.Script.Title, outputPath, elapsed); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
	logger.Info("job completed",
		logging.String("output", outputPath),
		logging.Int("chunks_included", len(includedIDs)),
		logging.Duration("elapsed", elapsed))
	return result
}

// processChunk runs the visual, audio, and render stages for one chunk.
// Recoverable exhaustion degrades in place (fallback program, placeholder
// tone) or drops the chunk's video; non-recoverable errors abort the job.
func (o *Orchestrator) processChunk(ctx context.Context, chunk *chunker.Chunk, vs *script.VideoScript, workDir string) (ok bool, fatal error) {
	scene := vs.SceneForOffset(chunk.StartTime)

	visualCtx := services.WithStage(ctx, "visual")
	err := services.Retry(visualCtx, o.logger, o.retryOpts("visual"), func(ctx context.Context) error {
		return o.visual.Generate(ctx, chunk, scene)
	})
	if err != nil {
		if !services.IsRecoverable(err) {
			return false, err
		}
		o.visual.ApplyFallback(chunk)
	}

	audioCtx := services.WithStage(ctx, "audio")
	err = services.Retry(audioCtx, o.logger, o.retryOpts("audio"), func(ctx context.Context) error {
		return o.audio.Generate(ctx, chunk, workDir)
	})
	if err != nil {
		if !services.IsRecoverable(err) {
			return false, err
		}
		if perr := o.audio.ApplyPlaceholder(chunk, workDir); perr != nil {
			// Even the local tone failed to write; the chunk continues
			// without audio rather than failing the job.
			o.logger.Warn("placeholder audio failed, chunk continues silent",
				logging.Int(logging.FieldChunkID, chunk.ID), logging.Error(perr))
		}
	}

	renderCtx := services.WithStage(ctx, "render")
	err = services.Retry(renderCtx, o.logger, o.retryOpts("render"), func(ctx context.Context) error {
		return o.render.Render(ctx, chunk, workDir)
	})
	if err != nil {
		if !services.IsRecoverable(err) {
			return false, err
		}
		// The chunk survives without video and the combiner excludes it.
		o.logger.Warn("render retries exhausted, chunk excluded from combination",
			logging.Int(logging.FieldChunkID, chunk.ID), logging.Error(err))
		return false, nil
	}

	return true, nil
}

// wholeJobFallback builds a single chunk covering the full script with the
// deterministic template and renders it through the normal chain. The
// returned chunk is the job's only combinable artifact.
func (o *Orchestrator) wholeJobFallback(ctx context.Context, vs *script.VideoScript, workDir string) (*chunker.Chunk, error) {
	text := strings.TrimSpace(vs.Title)
	if text != "" && !strings.HasSuffix(text, ".") {
		text += "."
	}
	if narration := vs.FullNarration(); narration != "" {
		if text != "" {
			text += " "
		}
		text += narration
	}

	chunk := &chunker.Chunk{
		ID:       1,
		Text:     text,
		Duration: vs.TotalDurationSeconds,
	}
	ctx = services.WithChunkID(ctx, chunk.ID)

	program := visual.FallbackProgram(chunk.Text, chunk.Duration)
	chunk.ProgramEntryPoint = program.EntryPoint
	chunk.ProgramSource = program.Source
	chunk.ProgramIsFallback = true

	if err := o.audio.Generate(ctx, chunk, workDir); err != nil {
		if perr := o.audio.ApplyPlaceholder(chunk, workDir); perr != nil {
			o.logger.Warn("fallback chunk continues without audio", logging.Error(perr))
		}
	}

	if err := o.render.Render(ctx, chunk, workDir); err != nil {
		return nil, services.NewPipelineError(services.CodeVideoRenderingFailed,
			"whole-job fallback chunk could not be rendered", err)
	}
	return chunk, nil
}

// startHeartbeat periodically bumps the job row while the job runs so a
// watcher can tell a long render from a stalled generation. The returned stop
// func is safe to call more than once.
func (o *Orchestrator) startHeartbeat(ctx context.Context, jobID int64, interval time.Duration) func() {
	if o.store == nil || jobID <= 0 || interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := o.store.Touch(ctx, jobID); err != nil {
					o.logger.Warn("job heartbeat failed", logging.Error(err))
				}
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// generatePreview extracts the first frame of the artifact as a still image.
// Previews are non-essential: any failure degrades to no preview.
func (o *Orchestrator) generatePreview(ctx context.Context, outputPath string, logger *slog.Logger) string {
	binary := strings.TrimSpace(o.cfg.Render.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return ""
	}

	previewPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_preview.jpg"
	cmd := exec.CommandContext(ctx, binary, "-y", "-i", outputPath, "-ss", "0", "-frames:v", "1", previewPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		logger.Warn("preview extraction failed, continuing without preview",
			logging.Error(err),
			logging.String("detail", strings.TrimSpace(string(output))))
		return ""
	}
	if fileutil.FileSize(previewPath) == 0 {
		return ""
	}
	return previewPath
}

// publish hands the artifact to the configured sink. Upload problems degrade
// to the local path; publication never fails a finished job.
func (o *Orchestrator) publish(ctx context.Context, req Request, outputPath string, logger *slog.Logger) string {
	if o.sink == nil {
		return ""
	}
	url, err := o.sink.Upload(ctx, outputPath, filepath.Base(outputPath), req.OwnerID, "videos")
	if err != nil {
		logger.Warn("artifact upload failed, serving local path", logging.Error(err))
		return outputPath
	}
	return url
}

func (o *Orchestrator) cancel(req Request, chunks []*chunker.Chunk, elapsed time.Duration) *GenerationResult {
	// The job context is done; store updates use a fresh short-lived context.
	if o.store != nil && req.JobID > 0 {
		storeCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		if err := o.store.MarkCancelled(storeCtx, req.JobID); err != nil {
			o.logger.Warn("mark job cancelled failed", logging.Error(err))
		}
	}
	result := &GenerationResult{
		Success:      false,
		Chunks:       chunks,
		Metadata:     Metadata{Elapsed: elapsed, ChunkCount: len(chunks)},
		ErrorMessage: "generation cancelled",
		Cancelled:    true,
	}
	return result
}

func (o *Orchestrator) fail(ctx context.Context, req Request, perr *services.PipelineError, chunks []*chunker.Chunk, elapsed time.Duration) *GenerationResult {
	o.logger.Error("job failed",
		logging.Int64(logging.FieldJobID, req.JobID),
		logging.String("code", string(perr.Code)),
		logging.Bool("recoverable", perr.Recoverable),
		logging.Error(perr))

	if o.store != nil && req.JobID > 0 {
		if err := o.store.MarkFailed(ctx, req.JobID, string(perr.Code), perr.Message, perr.Recoverable); err != nil {
			o.logger.Warn("mark job failed errored", logging.Error(err))
		}
	}
	title := ""
	if req.Script != nil {
		title = req.Script.Title
	}
	if err := o.notifier.NotifyJobFailed(ctx, title, perr); err != nil {
		o.logger.Warn("failure notification errored", logging.Error(err))
	}
	return failureResult(perr, chunks, elapsed)
}

// report emits a progress event and mirrors it into the job store when one is
// attached. Store write failures only log; progress is advisory.
func (o *Orchestrator) report(ctx context.Context, jobID int64, em *progressEmitter, stage Stage, message string, fraction float64, chunksCompleted int) {
	event := em.emit(stage, message, fraction)
	if o.store == nil || jobID <= 0 {
		return
	}
	if err := o.store.UpdateProgress(ctx, jobID, string(event.Stage), event.Fraction, event.Message, chunksCompleted); err != nil {
		o.logger.Warn("progress persistence failed", logging.Error(err))
	}
}

func (o *Orchestrator) retryOpts(operation string) services.RetryOptions {
	return services.RetryOptions{
		MaxRetries: o.maxRetries,
		BaseDelay:  o.retryBase,
		Operation:  operation,
	}
}

// outputPath derives a collision-free final artifact path under OutputDir.
func (o *Orchestrator) outputPath(req Request) string {
	base := "video"
	if req.Script != nil {
		if name := textutil.SanitizeFileName(req.Script.Title); name != "" {
			base = name
		}
	}
	name := fmt.Sprintf("%s_%s.mp4", base, uuid.NewString()[:8])
	return filepath.Join(o.cfg.Paths.OutputDir, name)
}

func countWithVideo(chunks []*chunker.Chunk) int {
	n := 0
	for _, chunk := range chunks {
		if chunk.HasVideo() {
			n++
		}
	}
	return n
}
