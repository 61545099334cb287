// Package encoding provides byte types that travel as text.
package encoding

import "encoding/base64"

// StdBase64Data is image data that renders as standard base64 text.
type StdBase64Data []byte

// String returns the base64-encoded string representation.
func (b StdBase64Data) String() string {
	return base64.StdEncoding.EncodeToString(b)
}

// DataURL returns b as an RFC 2397 data URL with the given media type.
func (b StdBase64Data) DataURL(mimeType string) string {
	return "data:" + mimeType + ";base64," + b.String()
}
