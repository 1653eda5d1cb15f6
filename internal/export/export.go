package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-stream/internal/chat"
)

type Exporter struct {
	overrideDir string
	cwd         string
}

func New(overrideDir string) (*Exporter, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve cwd: %w", err)
	}
	return &Exporter{overrideDir: strings.TrimSpace(overrideDir), cwd: cwd}, nil
}

func (e *Exporter) WriteTranscript(history []chat.Message, now time.Time) (string, error) {
	return e.WriteMarkdown(BuildTranscriptMarkdown(history, now), now)
}

// WriteMarkdown writes an already-built transcript, so callers can prepare
// the markdown on one goroutine and do the file IO on another.
func (e *Exporter) WriteMarkdown(md string, now time.Time) (string, error) {
	path := e.transcriptPath(now)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

func BuildTranscriptMarkdown(history []chat.Message, now time.Time) string {
	var b strings.Builder
	b.WriteString("# AI Stream transcript\n\n")
	b.WriteString("Exported: " + now.Format(time.RFC3339) + "\n\n")
	for _, m := range history {
		if m.Role() == chat.RoleUser {
			b.WriteString("## You\n\n")
		} else {
			b.WriteString("## Assistant\n\n")
		}
		b.WriteString(messageBody(m) + "\n\n")
	}
	return strings.TrimSpace(b.String()) + "\n"
}

// messageBody flattens input widgets to a single label/value line so the
// exported file reads as a plain conversation.
func messageBody(m chat.Message) string {
	if w, ok := m.(*chat.InputWidgetMessage); ok {
		if w.Submitted {
			return w.Spec.Label + " " + w.Value
		}
		return w.Spec.Label + " (no response)"
	}
	return strings.TrimSpace(m.Markdown())
}

func (e *Exporter) transcriptPath(now time.Time) string {
	dir := e.overrideDir
	if dir == "" {
		dir = filepath.Join(e.cwd, "exports")
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(e.cwd, dir)
	}
	return filepath.Join(dir, "transcript-"+now.Format("20060102-150405")+".md")
}
