// Package slideshow turns a single question into an illustrated slideshow.
//
// A Session sends the user's text plus a fixed storytelling instruction to a
// genx.Generator, pairs the interleaved caption and image parts of the
// response into slides.Slide values, hands each one to a Renderer as it
// completes, and records it in a kv.Store so the whole run can be exported
// later as a zip archive.
//
// Two renderers are provided: TermRenderer prints captions as styled
// markdown on a terminal, and HTMLRenderer converts them to HTML views for
// the browser surface.
package slideshow
