package slides

import (
	"fmt"

	"github.com/haivivi/slideshow/pkg/encoding"
)

const (
	// ArchiveName is the file name of the exported archive.
	ArchiveName = "slideshow.zip"

	// ManifestName is the archive entry listing captions in order.
	ManifestName = "captions.md"
)

// Slide is one caption paired with one image. Slides are immutable once
// emitted.
type Slide struct {
	Index     int                    `json:"index" msgpack:"index"`
	Caption   string                 `json:"caption" msgpack:"caption"`
	Image     encoding.StdBase64Data `json:"image" msgpack:"image"`
	ImageName string                 `json:"image_name" msgpack:"image_name"`
	MIMEType  string                 `json:"mime_type" msgpack:"mime_type"`
}

// ImageName returns the archive entry name of the i-th slide (1-based).
func ImageName(i int) string {
	return fmt.Sprintf("slide_%02d.png", i)
}
