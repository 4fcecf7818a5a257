package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"coursecast/internal/audio"
	"coursecast/internal/config"
	"coursecast/internal/jobs"
	"coursecast/internal/pipeline"
	"coursecast/internal/script"
	"coursecast/internal/storage"
	"coursecast/internal/visual"
)

const progressBarSteps = 1000

func newGenerateCommand(cctx *commandContext) *cobra.Command {
	var durationSeconds float64
	var audience string
	var ownerID int64
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate an educational video for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(args[0])
			if topic == "" {
				return fmt.Errorf("topic is required")
			}
			if durationSeconds <= 0 {
				return fmt.Errorf("duration must be positive, got %g", durationSeconds)
			}

			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			interactive := !noProgress && isatty.IsTerminal(os.Stdout.Fd())
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}
			if interactive {
				// Keep stdout free for the progress bar.
				if logger, err = cctx.fileLogger(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			scriptProvider, err := script.NewGeminiProvider(ctx, cfg.LLM, logger)
			if err != nil {
				return fmt.Errorf("script provider: %w", err)
			}
			visualProvider, err := visual.NewGeminiProvider(ctx, cfg.LLM)
			if err != nil {
				return fmt.Errorf("visual provider: %w", err)
			}
			voiceProvider, err := audio.NewHTTPProvider(cfg.Audio)
			if err != nil {
				return fmt.Errorf("voice provider: %w", err)
			}
			sink, err := buildSink(cmd, cfg, logger)
			if err != nil {
				return err
			}

			store, err := jobs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			jobID, err := store.Create(ctx, &jobs.Job{OwnerID: ownerID, Topic: topic})
			if err != nil {
				return fmt.Errorf("record job: %w", err)
			}

			fmt.Fprintf(out, "Generating script for %q (%.0fs)...\n", topic, durationSeconds)
			vs, err := scriptProvider.GenerateScript(ctx, script.Request{
				Topic:           topic,
				Audience:        audience,
				DurationSeconds: durationSeconds,
			})
			if err != nil {
				_ = store.MarkFailed(ctx, jobID, "SCRIPT_GENERATION_FAILED", err.Error(), true)
				return fmt.Errorf("generate script: %w", err)
			}
			scriptJSON, err := json.Marshal(vs)
			if err != nil {
				return fmt.Errorf("encode script: %w", err)
			}
			chunkCount := estimateChunkCount(vs.TotalDurationSeconds, cfg.Chunking.ChunkDurationSeconds)
			if err := store.SetScript(ctx, jobID, vs.Title, string(scriptJSON), chunkCount); err != nil {
				return fmt.Errorf("record script: %w", err)
			}

			var onProgress pipeline.ProgressFunc
			if interactive {
				bar := progressbar.NewOptions(progressBarSteps,
					progressbar.OptionSetDescription("generating"),
					progressbar.OptionSetWriter(out),
					progressbar.OptionClearOnFinish(),
					progressbar.OptionShowElapsedTimeOnFinish(),
				)
				onProgress = func(ev pipeline.ProgressEvent) {
					bar.Describe(string(ev.Stage))
					_ = bar.Set(int(ev.Fraction * progressBarSteps))
				}
			} else {
				onProgress = func(ev pipeline.ProgressEvent) {
					fmt.Fprintf(out, "[%3.0f%%] %s: %s\n", ev.Fraction*100, ev.Stage, ev.Message)
				}
			}

			orch := pipeline.New(cfg, pipeline.Options{
				VisualProvider: visualProvider,
				VoiceProvider:  voiceProvider,
				Sink:           sink,
				Store:          store,
			}, logger)

			result := orch.Generate(ctx, pipeline.Request{
				JobID:      jobID,
				OwnerID:    ownerID,
				Script:     vs,
				OnProgress: onProgress,
			})
			if interactive {
				fmt.Fprintln(out)
			}
			return printResult(cmd, jobID, result)
		},
	}

	cmd.Flags().Float64VarP(&durationSeconds, "duration", "d", 60, "Target video duration in seconds")
	cmd.Flags().StringVarP(&audience, "audience", "a", "", "Target audience for the narration")
	cmd.Flags().Int64Var(&ownerID, "owner", 0, "Owner id recorded on the job")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress bar")
	return cmd
}

// buildSink resolves the configured storage backend. Remote backends are
// wrapped so upload failures degrade to the local path instead of failing a
// finished job.
func buildSink(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (storage.Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "local":
		return storage.NewLocalSink(cfg.Paths.OutputDir), nil
	case "s3":
		inner, err := storage.NewS3Sink(cmd.Context(), cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return storage.NewDegradingSink(inner, logger), nil
	default:
		return nil, fmt.Errorf("storage backend: unsupported value %q", cfg.Storage.Backend)
	}
}

func estimateChunkCount(totalSeconds float64, chunkSeconds int) int {
	if chunkSeconds < 1 {
		chunkSeconds = 1
	}
	count := int(totalSeconds / float64(chunkSeconds))
	if count < 1 {
		count = 1
	}
	return count
}

func printResult(cmd *cobra.Command, jobID int64, result *pipeline.GenerationResult) error {
	out := cmd.OutOrStdout()
	if result.Success {
		fmt.Fprintf(out, "Job %d completed in %s\n", jobID, result.Metadata.Elapsed.Round(time.Second))
		fmt.Fprintf(out, "  Output: %s (%d bytes)\n", result.VideoPath, result.Metadata.OutputSizeBytes)
		if result.VideoURL != "" && result.VideoURL != result.VideoPath {
			fmt.Fprintf(out, "  Published: %s\n", result.VideoURL)
		}
		if result.PreviewPath != "" {
			fmt.Fprintf(out, "  Preview: %s\n", result.PreviewPath)
		}
		fmt.Fprintf(out, "  Chunks: %d included of %d\n", result.Metadata.ChunksIncluded, result.Metadata.ChunkCount)
		return nil
	}
	if result.Cancelled {
		return fmt.Errorf("job %d cancelled; temporary artifacts were preserved", jobID)
	}
	return fmt.Errorf("job %d failed [%s]: %s (recoverable: %s)",
		jobID, result.ErrorCode, result.ErrorMessage, yesNo(result.Recoverable))
}
