package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"coursecast/internal/config"
	"coursecast/internal/logging"
	"coursecast/internal/services"
)

// GeminiProvider generates narration scripts through the Gemini API.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiProvider builds a provider from LLM configuration. The API key
// must already be resolved (config normalization falls back to the
// GEMINI_API_KEY environment variable).
func NewGeminiProvider(ctx context.Context, cfg config.LLM, logger *slog.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "script", "init", "llm api key is not configured", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "script", "init", "create genai client", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  logging.NewComponentLogger(logger, "script"),
	}, nil
}

// GenerateScript asks the model for a structured script and decodes the JSON
// response. Markdown code fences around the payload are stripped before
// decoding since the model does not reliably honor the JSON mime type.
func (p *GeminiProvider) GenerateScript(ctx context.Context, req Request) (*VideoScript, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	prompt := buildScriptPrompt(req)
	genCfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), genCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "script", "generate",
			"script generation request failed", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "script", "generate",
			"script generation returned no text", err)
	}

	cleaned := cleanJSONBlock(text)
	var vs VideoScript
	if err := json.Unmarshal([]byte(cleaned), &vs); err != nil {
		return nil, services.Wrap(services.ErrValidation, "script", "decode",
			"script generation response is not valid JSON", err)
	}
	normalizeScript(&vs, req)

	p.logger.Info("script generated",
		logging.String("topic", req.Topic),
		logging.Int("scenes", len(vs.Scenes)),
		logging.Float64("duration_seconds", vs.TotalDurationSeconds))
	return &vs, nil
}

func buildScriptPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an educational video narration script about %q for %s.\n", req.Topic, audienceOrDefault(req.Audience))
	fmt.Fprintf(&b, "Target total duration: %.0f seconds.\n", req.DurationSeconds)
	if req.DocumentContext != "" {
		b.WriteString("Base the script on the following source material:\n")
		b.WriteString(req.DocumentContext)
		b.WriteString("\n")
	}
	b.WriteString(`Respond with a single JSON object:
{
  "title": string,
  "total_duration_seconds": number,
  "target_audience": string,
  "learning_objectives": [string],
  "scenes": [{
    "scene_number": number,
    "duration_seconds": number,
    "title": string,
    "narration": string,
    "visual_description": string,
    "key_concepts": [string],
    "animation_type": string
  }]
}
Scene durations must sum to the total duration. Narration must be complete sentences.`)
	return b.String()
}

func audienceOrDefault(audience string) string {
	if audience == "" {
		return "a general audience"
	}
	return audience
}

// normalizeScript repairs the structural fields the model routinely gets
// wrong: scene numbering and missing durations.
func normalizeScript(vs *VideoScript, req Request) {
	if vs.TotalDurationSeconds <= 0 {
		vs.TotalDurationSeconds = req.DurationSeconds
	}
	if vs.TargetAudience == "" {
		vs.TargetAudience = req.Audience
	}
	if len(vs.Scenes) == 0 {
		return
	}
	perScene := vs.TotalDurationSeconds / float64(len(vs.Scenes))
	for i := range vs.Scenes {
		vs.Scenes[i].Number = i + 1
		if vs.Scenes[i].DurationSeconds <= 0 {
			vs.Scenes[i].DurationSeconds = perScene
		}
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("candidate carried no text parts")
	}
	return sb.String(), nil
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
