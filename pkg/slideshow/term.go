package slideshow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/haivivi/slideshow/pkg/cli"
	"github.com/haivivi/slideshow/pkg/slides"
)

// DefaultWidth is the wrap width used when TermOptions.Width is zero.
const DefaultWidth = 80

// TermOptions configures a TermRenderer.
type TermOptions struct {
	// Width is the wrap width in cells.
	Width int

	// Style is a glamour standard style name ("dark", "light", "notty").
	// Empty picks one from the terminal background.
	Style string
}

// TermRenderer prints each slide as a labelled rule, the caption rendered as
// markdown, and a one-line summary of the image.
type TermRenderer struct {
	w      io.Writer
	width  int
	styles cli.Styles
	md     *glamour.TermRenderer

	mu sync.Mutex
}

// NewTermRenderer creates a renderer writing to w.
func NewTermRenderer(w io.Writer, opts TermOptions) (*TermRenderer, error) {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	style := glamour.WithAutoStyle()
	if opts.Style != "" {
		style = glamour.WithStandardStyle(opts.Style)
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("slideshow: markdown renderer: %w", err)
	}
	return &TermRenderer{
		w:      w,
		width:  width,
		styles: cli.NewStyles(cli.DefaultTheme),
		md:     md,
	}, nil
}

func (t *TermRenderer) Render(_ context.Context, s *slides.Slide) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(t.styles.Rule(fmt.Sprintf(" %d ", s.Index), t.width))
	buf.WriteByte('\n')

	caption, err := t.md.Render(s.Caption)
	if err != nil {
		// Plain text is still readable.
		caption = s.Caption + "\n"
	}
	buf.WriteString(caption)
	if !strings.HasSuffix(caption, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(t.styles.Help.Render(cli.Truncate(imageSummary(s), t.width)))
	buf.WriteString("\n\n")

	_, err = t.w.Write(buf.Bytes())
	return err
}

// imageSummary describes the slide image: name, pixel size, type and size.
func imageSummary(s *slides.Slide) string {
	parts := []string{s.ImageName}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(s.Image)); err == nil {
		parts = append(parts, fmt.Sprintf("%d×%d", cfg.Width, cfg.Height))
	}
	if s.MIMEType != "" {
		parts = append(parts, s.MIMEType)
	}
	parts = append(parts, cli.FormatBytes(int64(len(s.Image))))
	return strings.Join(parts, " · ")
}
