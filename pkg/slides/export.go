package slides

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Export writes list as a zip archive to w: one PNG entry per slide, in
// order, followed by the captions manifest. An empty list fails before
// anything is written.
func Export(w io.Writer, list []*Slide) error {
	if len(list) == 0 {
		return &ExportError{Err: ErrNothingToExport}
	}

	zw := zip.NewWriter(w)
	var manifest strings.Builder
	for i, s := range list {
		name := s.ImageName
		if name == "" {
			name = ImageName(i + 1)
		}
		data, err := pngData(s)
		if err != nil {
			return &ExportError{Err: fmt.Errorf("%s: %w", name, err)}
		}
		// PNG is already compressed.
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			return &ExportError{Err: err}
		}
		if _, err := fw.Write(data); err != nil {
			return &ExportError{Err: err}
		}
		fmt.Fprintf(&manifest, "## %s\n\n%s\n\n", name, s.Caption)
	}

	fw, err := zw.Create(ManifestName)
	if err != nil {
		return &ExportError{Err: err}
	}
	if _, err := io.WriteString(fw, manifest.String()); err != nil {
		return &ExportError{Err: err}
	}
	if err := zw.Close(); err != nil {
		return &ExportError{Err: err}
	}
	return nil
}

// pngData returns the slide image as PNG, re-encoding other formats.
func pngData(s *Slide) ([]byte, error) {
	if s.MIMEType == "image/png" || s.MIMEType == "" {
		return s.Image, nil
	}
	img, _, err := image.Decode(bytes.NewReader(s.Image))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.MIMEType, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
