package slideshow

import (
	"context"

	"github.com/haivivi/slideshow/pkg/slides"
)

// Renderer displays one completed slide. Render is called once per slide,
// in order, from the goroutine running Session.Generate.
type Renderer interface {
	Render(ctx context.Context, s *slides.Slide) error
}

// Resetter is implemented by renderers that show earlier output. Reset is
// called by Session.Generate after any superseded run has returned and
// before the first slide of the new run.
type Resetter interface {
	Reset(ctx context.Context) error
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, s *slides.Slide) error

func (f RenderFunc) Render(ctx context.Context, s *slides.Slide) error {
	return f(ctx, s)
}

// Discard is a Renderer that only records.
var Discard Renderer = RenderFunc(func(context.Context, *slides.Slide) error { return nil })
