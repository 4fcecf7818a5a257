package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies a pipeline failure category. The set is closed; anything
// that does not match a known category classifies as CodeUnknown.
type Code string

const (
	CodeScriptGenerationFailed Code = "SCRIPT_GENERATION_FAILED"
	CodeVisualGenerationFailed Code = "VISUAL_GENERATION_FAILED"
	CodeAudioGenerationFailed  Code = "AUDIO_GENERATION_FAILED"
	CodeVideoRenderingFailed   Code = "VIDEO_RENDERING_FAILED"
	CodeStorageUploadFailed    Code = "STORAGE_UPLOAD_FAILED"
	CodeDocumentContextFailed  Code = "DOCUMENT_CONTEXT_FAILED"
	CodeAPIRateLimit           Code = "API_RATE_LIMIT"
	CodeInsufficientResources  Code = "INSUFFICIENT_RESOURCES"
	CodeUnknown                Code = "UNKNOWN_ERROR"
)

// Recoverable reports whether failures with this code may be retried or
// degraded. Only resource exhaustion and unclassifiable failures abort a job.
func (c Code) Recoverable() bool {
	switch c {
	case CodeInsufficientResources, CodeUnknown:
		return false
	default:
		return true
	}
}

// PipelineError is the typed failure that crosses stage boundaries. It is
// constructed at the failure site and consumed by the orchestrator and the
// logger; no untyped error leaves the pipeline.
type PipelineError struct {
	Code        Code
	Message     string
	Details     map[string]string
	Recoverable bool
	cause       error
}

// NewPipelineError builds a typed pipeline failure for the given code. A
// non-recoverable cause keeps the wrapper non-recoverable, so resource
// exhaustion aborts the job no matter which stage reports it.
func NewPipelineError(code Code, message string, cause error) *PipelineError {
	recoverable := code.Recoverable()
	if recoverable && cause != nil && causeAborts(cause) {
		recoverable = false
	}
	return &PipelineError{
		Code:        code,
		Message:     strings.TrimSpace(message),
		Recoverable: recoverable,
		cause:       cause,
	}
}

// causeAborts reports whether the cause chain carries a failure that must not
// be retried or degraded.
func causeAborts(err error) bool {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return !perr.Recoverable
	}
	message := strings.ToLower(err.Error())
	for _, keyword := range insufficientResourceKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

// WithDetail attaches a contextual key/value pair and returns the error for
// chaining at the construction site.
func (e *PipelineError) WithDetail(key, value string) *PipelineError {
	if e.Details == nil {
		e.Details = make(map[string]string, 2)
	}
	e.Details[key] = value
	return e
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "pipeline failure"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, msg)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, e.Details[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(pairs, ", "))
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *PipelineError) Unwrap() error { return e.cause }

// classificationRule maps message keywords to a failure code. Rules are
// evaluated in order; the first match wins, so the cross-cutting categories
// (rate limiting, resource exhaustion) come before the stage-specific ones.
type classificationRule struct {
	code     Code
	keywords []string
}

var insufficientResourceKeywords = []string{
	"out of memory", "no space left", "disk full", "cannot allocate", "enospc", "insufficient resources",
}

var classificationRules = []classificationRule{
	{CodeAPIRateLimit, []string{"rate limit", "too many requests", "429", "quota exceeded", "resource_exhausted"}},
	{CodeInsufficientResources, insufficientResourceKeywords},
	{CodeStorageUploadFailed, []string{"upload", "storage", "s3", "bucket"}},
	{CodeDocumentContextFailed, []string{"document context", "document retrieval", "embedding"}},
	{CodeScriptGenerationFailed, []string{"script generation", "script provider", "narration script"}},
	{CodeVisualGenerationFailed, []string{"visual", "animation program", "manim program", "scene program", "entry point"}},
	{CodeAudioGenerationFailed, []string{"audio", "speech", "voice", "tts", "synthesize"}},
	{CodeVideoRenderingFailed, []string{"render", "video", "ffmpeg", "manim", "mux", "concat"}},
}

// Classify resolves an error to its pipeline failure code. A *PipelineError
// passes through unchanged; anything else is matched by message content.
func Classify(err error) *PipelineError {
	if err == nil {
		return nil
	}
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr
	}

	message := strings.ToLower(err.Error())
	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(message, keyword) {
				return NewPipelineError(rule.code, err.Error(), err)
			}
		}
	}
	return NewPipelineError(CodeUnknown, err.Error(), err)
}

// IsRecoverable reports whether the error classifies as retryable.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Recoverable
}
