// Package slides pairs streamed text with streamed images and packages the
// resulting slides as a zip archive.
//
// An Accumulator keeps one pending caption and one pending image. Text parts
// append to the caption, image parts replace the pending image, and as soon
// as both are present a Slide is emitted and the pair is cleared. Collect
// drives an Accumulator from a genx.Stream:
//
//	for slide, err := range slides.Collect(stream) {
//	    if err != nil {
//	        return err // *slides.RequestError
//	    }
//	    list = append(list, slide)
//	}
//	err := slides.Export(w, list) // *slides.ExportError on failure
//
// The archive holds slide_01.png, slide_02.png, ... and a captions.md
// manifest with one "## slide_NN.png" heading per slide followed by its
// caption.
package slides
