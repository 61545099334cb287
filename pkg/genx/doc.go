// Package genx is the streaming layer between the slideshow and a
// multimodal generation API.
//
// # Core Types
//
// MessageChunk is the unit of data in a Stream:
//   - Role: the producer of the chunk (user or model)
//   - Name: the producer name, if any
//   - Part: the payload, either Text or *Blob (inline bytes with a MIME type)
//
// Stream is the pull-style data flow abstraction:
//
//	type Stream interface {
//	    Next() (*MessageChunk, error)
//	    Close() error
//	    CloseWithError(error) error
//	}
//
// Next returns a *State error once the generation ends. A normal end
// matches ErrDone:
//
//	for {
//	    chunk, err := s.Next()
//	    if errors.Is(err, genx.ErrDone) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
//
// Generators (GeminiGenerator) turn a ModelContext into a Stream. Every
// response part becomes its own chunk, in the order the model produced
// them, so consumers can pair text with the images that follow it.
package genx
