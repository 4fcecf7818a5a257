package render

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"coursecast/internal/services"
)

// PlaceholderTier writes a syntactically minimal MP4 container plus a sidecar
// text file carrying the chunk content. It needs no external tooling, so it
// is the tier of last resort that keeps the pipeline supplied with a file.
type PlaceholderTier struct{}

// NewPlaceholderTier builds the last-resort tier.
func NewPlaceholderTier() *PlaceholderTier { return &PlaceholderTier{} }

func (t *PlaceholderTier) Name() string { return "placeholder" }

func (t *PlaceholderTier) Available() bool { return true }

func (t *PlaceholderTier) Render(_ context.Context, job Job) (string, error) {
	stamp := time.Now().UnixNano()
	outPath := filepath.Join(job.WorkDir, fmt.Sprintf("chunk_%d_placeholder_%d.mp4", job.ChunkID, stamp))

	if err := os.WriteFile(outPath, minimalMP4(), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "placeholder", "write placeholder container", err)
	}

	sidecar := outPath + ".txt"
	note := fmt.Sprintf("chunk %d placeholder\nduration: %.2fs\n\n%s\n", job.ChunkID, job.DurationSeconds, job.Text)
	if err := os.WriteFile(sidecar, []byte(note), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "placeholder", "write sidecar text", err)
	}
	return outPath, nil
}

// minimalMP4 emits an ftyp box followed by an empty mdat box. Players treat
// the file as an empty but well-formed container.
func minimalMP4() []byte {
	var out []byte
	out = appendBox(out, "ftyp", append([]byte("isom"), append(u32(0x200), []byte("isomiso2mp41")...)...))
	out = appendBox(out, "mdat", nil)
	return out
}

func appendBox(dst []byte, kind string, payload []byte) []byte {
	dst = append(dst, u32(uint32(8+len(payload)))...)
	dst = append(dst, kind...)
	return append(dst, payload...)
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}
