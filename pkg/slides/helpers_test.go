package slides

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/haivivi/slideshow/pkg/genx"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 0x80, A: 0xff})
		}
	}
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(4, 3)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(4, 3), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pngBlob(t *testing.T) *genx.Blob {
	return &genx.Blob{MIMEType: "image/png", Data: pngBytes(t)}
}

// chunkStream replays chunks and ends with end.
type chunkStream struct {
	chunks []*genx.MessageChunk
	end    error
	closed bool
}

func (s *chunkStream) Next() (*genx.MessageChunk, error) {
	if len(s.chunks) == 0 {
		return nil, s.end
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *chunkStream) Close() error {
	s.closed = true
	return nil
}

func (s *chunkStream) CloseWithError(error) error {
	s.closed = true
	return nil
}

func newChunkStream(end error, parts ...genx.Part) *chunkStream {
	s := &chunkStream{end: end}
	for _, p := range parts {
		s.chunks = append(s.chunks, &genx.MessageChunk{Role: genx.RoleModel, Part: p})
	}
	return s
}
