// Package notifications pushes job lifecycle events to ntfy when a topic is
// configured, and does nothing otherwise.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coursecast/internal/config"
)

const userAgent = "Coursecast/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyJobStarted(ctx context.Context, topic string, chunkCount int) error
	NotifyJobCompleted(ctx context.Context, title, outputPath string, elapsed time.Duration) error
	NotifyJobFailed(ctx context.Context, title string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyJobStarted(ctx context.Context, topic string, chunkCount int) error {
	topic = strings.TrimSpace(topic)
	data := payload{
		title:   "Coursecast - Generation Started",
		message: fmt.Sprintf("Generating video for %q (%d chunks)", topic, chunkCount),
		tags:    []string{"coursecast", "job", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, title, outputPath string, elapsed time.Duration) error {
	title = strings.TrimSpace(title)
	elapsed = elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	message := fmt.Sprintf("Video ready: %s (%s)", title, elapsed)
	if outputPath = strings.TrimSpace(outputPath); outputPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, outputPath)
	}
	data := payload{
		title:    "Coursecast - Complete",
		message:  message,
		tags:     []string{"coursecast", "job", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, title string, err error) error {
	var builder strings.Builder
	builder.WriteString("Generation failed")
	if title = strings.TrimSpace(title); title != "" {
		builder.WriteString(" for ")
		builder.WriteString(title)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Coursecast - Error",
		message:  builder.String(),
		tags:     []string{"coursecast", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Coursecast - Test",
		message:  "Notification system test",
		tags:     []string{"coursecast", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyJobCompleted(context.Context, string, string, time.Duration) error {
	return nil
}
func (noopService) NotifyJobFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
