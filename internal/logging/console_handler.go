package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// consoleHandler renders compact human-oriented lines:
//
//	15:04:05 INFO  [orchestrator] chunk rendered chunk_id=3 duration=1.2s
//
// The component field is promoted to a bracketed prefix and the remaining
// attributes trail the message as key=value pairs.
type consoleHandler struct {
	mu    sync.Mutex
	out   io.Writer
	level slog.Leveler
	color bool
	attrs []slog.Attr
}

func newConsoleHandler(w io.Writer, level slog.Leveler) slog.Handler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleHandler{out: w, level: level, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make([]slog.Attr, 0, record.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)
		return true
	})

	component := ""
	kept := attrs[:0]
	for _, attr := range attrs {
		if attr.Key == FieldComponent {
			component = attr.Value.String()
			continue
		}
		kept = append(kept, attr)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return fieldRank(kept[i].Key) < fieldRank(kept[j].Key)
	})

	var b strings.Builder
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(h.paint(record.Level, fmt.Sprintf("%-5s", strings.ToUpper(levelName(record.Level)))))
	b.WriteByte(' ')
	if component != "" {
		b.WriteString("[" + component + "] ")
	}
	b.WriteString(record.Message)
	for _, attr := range kept {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(attr.Value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &consoleHandler{out: h.out, level: h.level, color: h.color}
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return next
}

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }

// fieldRank keeps job/stage/chunk identifiers at the front of the trailer so
// related lines align visually.
func fieldRank(key string) int {
	switch key {
	case FieldJobID:
		return 0
	case FieldStage:
		return 1
	case FieldChunkID:
		return 2
	case FieldEventType:
		return 3
	default:
		return 10
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		s := v.String()
		if strings.ContainsAny(s, " \t") {
			return fmt.Sprintf("%q", s)
		}
		return s
	}
}

func (h *consoleHandler) paint(level slog.Level, text string) string {
	if !h.color {
		return text
	}
	switch {
	case level >= slog.LevelError:
		return "\x1b[31m" + text + "\x1b[0m"
	case level >= slog.LevelWarn:
		return "\x1b[33m" + text + "\x1b[0m"
	case level >= slog.LevelInfo:
		return "\x1b[36m" + text + "\x1b[0m"
	default:
		return "\x1b[90m" + text + "\x1b[0m"
	}
}
