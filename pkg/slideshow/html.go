package slideshow

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/haivivi/slideshow/pkg/slides"
)

// SlideView is the browser representation of a slide.
type SlideView struct {
	Index       int           `json:"index"`
	Name        string        `json:"name"`
	Caption     string        `json:"caption"`
	CaptionHTML template.HTML `json:"caption_html"`
	ImageURL    template.URL  `json:"image_url"`
}

// HTMLRenderer converts slides to SlideView values and passes them to a
// send function, typically a websocket writer.
type HTMLRenderer struct {
	md   goldmark.Markdown
	send func(context.Context, *SlideView) error
}

// NewHTMLRenderer creates a renderer that delivers views through send.
// Raw HTML in captions is not passed through.
func NewHTMLRenderer(send func(context.Context, *SlideView) error) *HTMLRenderer {
	return &HTMLRenderer{
		md:   goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
		send: send,
	}
}

func (h *HTMLRenderer) Render(ctx context.Context, s *slides.Slide) error {
	v, err := h.View(s)
	if err != nil {
		return err
	}
	return h.send(ctx, v)
}

// View builds the SlideView for s.
func (h *HTMLRenderer) View(s *slides.Slide) (*SlideView, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(s.Caption), &buf); err != nil {
		return nil, fmt.Errorf("slideshow: caption markdown: %w", err)
	}
	mime := s.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &SlideView{
		Index:       s.Index,
		Name:        s.ImageName,
		Caption:     s.Caption,
		CaptionHTML: template.HTML(buf.String()),
		ImageURL:    template.URL(s.Image.DataURL(mime)),
	}, nil
}

// Views converts a recorded list, e.g. to render a page on reload.
func (h *HTMLRenderer) Views(list []*slides.Slide) ([]*SlideView, error) {
	views := make([]*SlideView, 0, len(list))
	for _, s := range list {
		v, err := h.View(s)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
