package visual

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"coursecast/internal/config"
	"coursecast/internal/services"
)

// GeminiProvider requests animation programs from the Gemini API.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiProvider builds an animation provider from LLM configuration.
func NewGeminiProvider(ctx context.Context, cfg config.LLM) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "visual", "init", "llm api key is not configured", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "visual", "init", "create genai client", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// GenerateProgram asks the model for a Manim scene. The response is decoded
// opportunistically: a clean JSON payload fills EntryPoint and Program, and
// the raw text is always preserved for the repair ladder.
func (p *GeminiProvider) GenerateProgram(ctx context.Context, req Request) (*ProviderResult, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	prompt := buildProgramPrompt(req)
	genCfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), genCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "visual", "generate",
			"animation program request failed", err)
	}

	text, err := geminiResponseText(resp)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "visual", "generate",
			"animation program response carried no text", err)
	}

	result := &ProviderResult{Raw: text}
	var decoded Program
	if err := json.Unmarshal([]byte(stripFences(text)), &decoded); err == nil {
		result.EntryPoint = decoded.EntryPoint
		result.Program = decoded.Source
	}
	return result, nil
}

func buildProgramPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Write a Manim Community Edition scene that visualizes the following narration segment.\n")
	fmt.Fprintf(&b, "Narration: %s\n", req.SceneText)
	if req.VisualDescription != "" {
		fmt.Fprintf(&b, "Visual direction: %s\n", req.VisualDescription)
	}
	if req.AnimationType != "" {
		fmt.Fprintf(&b, "Animation type: %s\n", req.AnimationType)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Style: %s\n", req.Style)
	}
	fmt.Fprintf(&b, "The animation must run for about %.0f seconds.\n", req.DurationSeconds)
	b.WriteString(`Respond with a single JSON object:
{"entry_point": "<scene class name>", "program": "<complete python source>"}
The program must import manim and define exactly one Scene subclass named by entry_point.`)
	return b.String()
}

func geminiResponseText(resp *genai.GenerateContentResponse) (string, error) {
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

func stripFences(text string) string {
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
