package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-stream/internal/chat"
)

func TestBuildTranscriptMarkdown(t *testing.T) {
	answered := chat.NewInputWidget(chat.InputText, "widget_1", chat.InputSpec{
		Label: "Assistant asks: Please provide your name:",
	})
	answered.Value = "Ada"
	answered.Submitted = true

	history := []chat.Message{
		chat.NewUserMessage("hello"),
		chat.NewAssistantMessage("You said: hello. Let's explore that."),
		answered,
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := BuildTranscriptMarkdown(history, now)

	assert.Contains(t, out, "# AI Stream transcript")
	assert.Contains(t, out, "Exported: 2024-05-01T12:00:00Z")
	assert.Contains(t, out, "## You\n\nhello")
	assert.Contains(t, out, "## Assistant\n\nYou said: hello. Let's explore that.")
	assert.Contains(t, out, "Assistant asks: Please provide your name: Ada")
	assert.True(t, len(out) > 0 && out[len(out)-1] == '\n')
}

func TestBuildTranscriptMarkdownUnansweredWidget(t *testing.T) {
	pending := chat.NewInputWidget(chat.InputSelect, "widget_1", chat.InputSpec{
		Label:   "Choose your favorite color:",
		Options: []string{"Red", "Green"},
	})

	out := BuildTranscriptMarkdown([]chat.Message{pending}, time.Now())
	assert.Contains(t, out, "Choose your favorite color: (no response)")
	assert.NotContains(t, out, "_awaiting input_")
}

func TestBuildTranscriptMarkdownOutputWidget(t *testing.T) {
	img := &chat.OutputWidgetMessage{
		Kind: chat.OutputImage,
		Data: chat.OutputData{URL: "https://via.placeholder.com/150", Caption: "A placeholder image"},
	}

	out := BuildTranscriptMarkdown([]chat.Message{img}, time.Now())
	assert.Contains(t, out, "Here's an image:")
	assert.Contains(t, out, "https://via.placeholder.com/150")
}

func TestWriteTranscript(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	path, err := e.WriteTranscript([]chat.Message{chat.NewUserMessage("hi")}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "transcript-20240501-123045.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## You\n\nhi")
}

func TestTranscriptPathResolution(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	abs := &Exporter{overrideDir: "/data/out", cwd: "/home/me"}
	assert.Equal(t, "/data/out/transcript-20240501-120000.md", abs.transcriptPath(now))

	rel := &Exporter{overrideDir: "out", cwd: "/home/me"}
	assert.Equal(t, "/home/me/out/transcript-20240501-120000.md", rel.transcriptPath(now))

	def := &Exporter{cwd: "/home/me"}
	assert.Equal(t, "/home/me/exports/transcript-20240501-120000.md", def.transcriptPath(now))
}
