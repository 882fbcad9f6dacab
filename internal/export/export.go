package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lukman83/phonescope/internal/session"
)

// Artifact is an exported search, ready to be downloaded or written out.
type Artifact struct {
	Filename string
	Data     []byte
}

// Filename returns phone_search_<unix-ms>.json for t.
func Filename(t time.Time) string {
	return fmt.Sprintf("phone_search_%d.json", t.UnixMilli())
}

// Build serializes the last completed search as two-space indented JSON. Key
// order follows the payload as received. With no completed search it returns
// (nil, false, nil).
func Build(last *session.Snapshot, now time.Time) (*Artifact, bool, error) {
	raw := last.Raw()
	if len(raw) == 0 {
		return nil, false, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, false, fmt.Errorf("indent export: %w", err)
	}
	buf.WriteByte('\n')

	return &Artifact{Filename: Filename(now), Data: buf.Bytes()}, true, nil
}

// WriteFile writes a to dir and returns the file path.
func WriteFile(dir string, a *Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
