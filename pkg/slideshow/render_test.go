package slideshow

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/haivivi/slideshow/pkg/encoding"
	"github.com/haivivi/slideshow/pkg/slides"
)

func testSlide(t *testing.T, caption string) *slides.Slide {
	return &slides.Slide{
		Index:     3,
		Caption:   caption,
		Image:     encoding.StdBase64Data(pngBytes(t, 6, 4)),
		ImageName: slides.ImageName(3),
		MIMEType:  "image/png",
	}
}

func TestTermRenderer(t *testing.T) {
	var out bytes.Buffer
	r, err := NewTermRenderer(&out, TermOptions{Width: 60, Style: "notty"})
	if err != nil {
		t.Fatalf("NewTermRenderer: %v", err)
	}
	if err := r.Render(context.Background(), testSlide(t, "The **tiny cats** pull the ocean.")); err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := out.String()
	for _, want := range []string{" 3 ", "tiny cats", "slide_03.png", "6×4", "image/png"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestTermRendererWriteError(t *testing.T) {
	r, err := NewTermRenderer(failWriter{}, TermOptions{Style: "notty"})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Render(context.Background(), testSlide(t, "x")); err == nil {
		t.Fatal("expected write error")
	}
}

func TestImageSummaryUndecodable(t *testing.T) {
	s := &slides.Slide{ImageName: "slide_01.png", Image: []byte("nope")}
	got := imageSummary(s)
	if got != "slide_01.png · 4 B" {
		t.Fatalf("imageSummary = %q", got)
	}
}

func TestHTMLRenderer(t *testing.T) {
	var sent []*SlideView
	r := NewHTMLRenderer(func(_ context.Context, v *SlideView) error {
		sent = append(sent, v)
		return nil
	})

	s := testSlide(t, "Cats *pull* the <script>alert(1)</script> water.")
	if err := r.Render(context.Background(), s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d views, want 1", len(sent))
	}
	v := sent[0]
	if v.Index != 3 || v.Name != "slide_03.png" || v.Caption != s.Caption {
		t.Fatalf("view = %+v", v)
	}
	if !strings.Contains(string(v.CaptionHTML), "<em>pull</em>") {
		t.Errorf("CaptionHTML = %q", v.CaptionHTML)
	}
	if strings.Contains(string(v.CaptionHTML), "<script>") {
		t.Errorf("raw HTML passed through: %q", v.CaptionHTML)
	}
	if !strings.HasPrefix(string(v.ImageURL), "data:image/png;base64,") {
		t.Errorf("ImageURL = %.40q", v.ImageURL)
	}
}

func TestHTMLRendererViews(t *testing.T) {
	r := NewHTMLRenderer(nil)
	a := testSlide(t, "a")
	b := testSlide(t, "b")
	b.Index, b.ImageName, b.MIMEType = 4, slides.ImageName(4), ""

	views, err := r.Views([]*slides.Slide{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 || views[1].Name != "slide_04.png" {
		t.Fatalf("views = %+v", views)
	}
	if !strings.HasPrefix(string(views[1].ImageURL), "data:image/png;base64,") {
		t.Errorf("missing MIME type should default to png: %.40q", views[1].ImageURL)
	}
}

func TestHTMLRendererSendError(t *testing.T) {
	boom := errors.New("ws closed")
	r := NewHTMLRenderer(func(context.Context, *SlideView) error { return boom })
	if err := r.Render(context.Background(), testSlide(t, "x")); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ws closed", err)
	}
}
