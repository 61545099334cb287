package slideshow

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/haivivi/slideshow/pkg/genx"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pngPart(t *testing.T) genx.Part {
	return &genx.Blob{MIMEType: "image/png", Data: pngBytes(t, 4, 3)}
}

// script drives one fake generation. It must finish the builder.
type script func(ctx context.Context, sb *genx.StreamBuilder)

// emit adds parts in order and ends the stream normally.
func emit(parts ...genx.Part) script {
	return func(_ context.Context, sb *genx.StreamBuilder) {
		for _, p := range parts {
			if err := sb.Add(&genx.MessageChunk{Role: genx.RoleModel, Part: p}); err != nil {
				return
			}
		}
		sb.Done(genx.Usage{})
	}
}

// fakeGenerator runs queued scripts, one per GenerateStream call, and
// records the user text it was asked for.
type fakeGenerator struct {
	mu       sync.Mutex
	scripts  []script
	err      error
	requests []string
	models   []string
}

func (g *fakeGenerator) push(s script) {
	g.mu.Lock()
	g.scripts = append(g.scripts, s)
	g.mu.Unlock()
}

func (g *fakeGenerator) GenerateStream(ctx context.Context, model string, mctx genx.ModelContext) (genx.Stream, error) {
	var text strings.Builder
	for msg := range mctx.Messages() {
		for _, p := range msg.Contents {
			if t, ok := p.(genx.Text); ok {
				text.WriteString(string(t))
			}
		}
	}

	g.mu.Lock()
	g.requests = append(g.requests, text.String())
	g.models = append(g.models, model)
	if g.err != nil {
		g.mu.Unlock()
		return nil, g.err
	}
	if len(g.scripts) == 0 {
		g.mu.Unlock()
		panic("fakeGenerator: no script queued")
	}
	s := g.scripts[0]
	g.scripts = g.scripts[1:]
	g.mu.Unlock()

	sb := genx.NewStreamBuilder(8)
	go s(ctx, sb)
	return sb.Stream(), nil
}
