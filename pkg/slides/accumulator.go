package slides

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"iter"
	"log/slog"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/haivivi/slideshow/pkg/encoding"
	"github.com/haivivi/slideshow/pkg/genx"
)

// Accumulator pairs a run of text with the next image. It is not safe for
// concurrent use.
type Accumulator struct {
	text  strings.Builder
	image *genx.Blob
	count int
}

// Add feeds one part. It returns the completed slide when the part closes a
// text/image pair. Malformed images are logged and dropped.
func (a *Accumulator) Add(p genx.Part) (*Slide, bool) {
	switch v := p.(type) {
	case genx.Text:
		a.text.WriteString(string(v))
	case *genx.Blob:
		blob, err := checkImage(v)
		if err != nil {
			slog.Warn("slides/accumulator: skip malformed image part", "mime", v.MIMEType, "size", len(v.Data), "error", err)
			return nil, false
		}
		a.image = blob
	default:
		slog.Debug("slides/accumulator: skip unsupported part", "type", fmt.Sprintf("%T", p))
		return nil, false
	}
	return a.emit()
}

// Flush is called at end of stream. A pending caption without an image is
// discarded.
func (a *Accumulator) Flush() (*Slide, bool) {
	s, ok := a.emit()
	if !ok && a.text.Len() > 0 {
		slog.Debug("slides/accumulator: discard trailing text without image", "len", a.text.Len())
	}
	a.text.Reset()
	a.image = nil
	return s, ok
}

// Reset clears the pending pair and restarts numbering.
func (a *Accumulator) Reset() {
	a.text.Reset()
	a.image = nil
	a.count = 0
}

// Count returns the number of slides emitted since the last Reset.
func (a *Accumulator) Count() int {
	return a.count
}

func (a *Accumulator) emit() (*Slide, bool) {
	caption := strings.TrimSpace(a.text.String())
	if caption == "" || a.image == nil {
		return nil, false
	}
	a.count++
	s := &Slide{
		Index:     a.count,
		Caption:   caption,
		Image:     encoding.StdBase64Data(a.image.Data),
		ImageName: ImageName(a.count),
		MIMEType:  a.image.MIMEType,
	}
	a.text.Reset()
	a.image = nil
	return s, true
}

// checkImage decodes the image header and sets the MIME type from it.
func checkImage(b *genx.Blob) (*genx.Blob, error) {
	if len(b.Data) == 0 {
		return nil, errors.New("empty image data")
	}
	if b.MIMEType != "" && !strings.HasPrefix(b.MIMEType, "image/") {
		return nil, fmt.Errorf("not an image: %s", b.MIMEType)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(b.Data))
	if err != nil {
		return nil, err
	}
	// The decoded format wins over a mislabelled part.
	mime := "image/" + format
	if b.MIMEType != "" && b.MIMEType != mime {
		slog.Debug("slides/accumulator: image type differs from label", "label", b.MIMEType, "format", format)
	}
	return &genx.Blob{MIMEType: mime, Data: b.Data}, nil
}

// Collect reads s to its end and yields slides as pairs complete. A failed
// stream yields one *RequestError and stops. A truncated generation ends
// normally with the slides produced so far.
func Collect(s genx.Stream) iter.Seq2[*Slide, error] {
	return func(yield func(*Slide, error) bool) {
		var acc Accumulator
		for {
			chunk, err := s.Next()
			if err != nil {
				var st *genx.State
				if !errors.As(err, &st) || !st.Normal() {
					yield(nil, NewRequestError(err))
					return
				}
				if st.Status() == genx.StatusTruncated {
					slog.Warn("slides/collect: generation truncated", "slides", acc.Count())
				}
				slog.Debug("slides/collect: generation ended", "status", st.Status(),
					"prompt_tokens", st.Usage().PromptTokenCount, "generated_tokens", st.Usage().GeneratedTokenCount)
				break
			}
			if chunk == nil || chunk.Part == nil {
				continue
			}
			if slide, ok := acc.Add(chunk.Part); ok {
				if !yield(slide, nil) {
					s.Close()
					return
				}
			}
		}
		if slide, ok := acc.Flush(); ok {
			yield(slide, nil)
		}
	}
}
