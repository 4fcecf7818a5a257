package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"coursecast/internal/config"
	"coursecast/internal/services"
)

// HTTPProvider speaks to a simple text-to-speech HTTP endpoint. The request
// carries the text and voice parameters as query values, which is why callers
// must keep individual requests under the provider's length limit.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

// NewHTTPProvider validates the endpoint and voice language and returns a
// provider. Language tags must parse as BCP 47.
func NewHTTPProvider(cfg config.Audio) (*HTTPProvider, error) {
	if cfg.Endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "audio", "init", "tts endpoint is not configured", nil)
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "audio", "init", "tts endpoint is not a valid url", err)
	}
	if cfg.Language != "" {
		if _, err := language.Parse(cfg.Language); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "audio", "init",
				fmt.Sprintf("voice language %q is not a valid BCP 47 tag", cfg.Language), err)
		}
	}
	timeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Synthesize requests speech for the text and returns the raw response body.
func (p *HTTPProvider) Synthesize(ctx context.Context, text string, opts SynthesisOptions) ([]byte, error) {
	query := url.Values{}
	query.Set("text", text)
	if opts.Language != "" {
		query.Set("lang", opts.Language)
	}
	if opts.Speed > 0 {
		query.Set("speed", strconv.FormatFloat(opts.Speed, 'f', 2, 64))
	}
	if opts.Pitch != 0 {
		query.Set("pitch", strconv.FormatFloat(opts.Pitch, 'f', 2, 64))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "audio", "synthesize", "build tts request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "audio", "synthesize", "tts request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, services.Wrap(services.ErrTransient, "audio", "synthesize",
			fmt.Sprintf("tts rate limit (status %d)", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalTool, "audio", "synthesize",
			fmt.Sprintf("tts returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "audio", "synthesize", "read tts response", err)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "audio", "synthesize", "tts returned an empty body", nil)
	}
	return body, nil
}
