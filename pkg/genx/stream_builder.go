package genx

import (
	"github.com/haivivi/slideshow/pkg/buffer"
)

// StreamEvent is one queued item: a chunk, or the terminal status.
type StreamEvent struct {
	Chunk   *MessageChunk
	Status  Status
	Usage   Usage
	Refusal string
	Error   error
}

// StreamBuilder is the producer side of a Stream. A generator goroutine adds
// chunks and finishes with exactly one of Done, Truncated, Blocked,
// Unexpected or Abort.
type StreamBuilder struct {
	q *buffer.Queue[*StreamEvent]
}

func NewStreamBuilder(size int) *StreamBuilder {
	return &StreamBuilder{
		q: buffer.NewQueue[*StreamEvent](size),
	}
}

func (sb *StreamBuilder) Done(stats Usage) error {
	return sb.finish(&StreamEvent{Status: StatusDone, Usage: stats})
}

func (sb *StreamBuilder) Truncated(stats Usage) error {
	return sb.finish(&StreamEvent{Status: StatusTruncated, Usage: stats})
}

func (sb *StreamBuilder) Blocked(stats Usage, refusal string) error {
	return sb.finish(&StreamEvent{Status: StatusBlocked, Usage: stats, Refusal: refusal})
}

func (sb *StreamBuilder) Unexpected(stats Usage, err error) error {
	return sb.finish(&StreamEvent{Status: StatusError, Usage: stats, Error: err})
}

func (sb *StreamBuilder) finish(evt *StreamEvent) error {
	if err := sb.q.Add(evt); err != nil {
		return err
	}
	return sb.q.CloseWrite()
}

func (sb *StreamBuilder) Add(chunks ...*MessageChunk) error {
	for _, c := range chunks {
		if err := sb.q.Add(&StreamEvent{Chunk: c}); err != nil {
			return err
		}
	}
	return nil
}

// Abort ends the stream with a transport-level error. Next returns err as is.
func (sb *StreamBuilder) Abort(err error) error {
	return sb.q.CloseWithError(err)
}

func (sb *StreamBuilder) Stream() Stream {
	return (*streamImpl)(sb)
}

type streamImpl StreamBuilder

func (s *streamImpl) Next() (*MessageChunk, error) {
	evt, err := s.q.Next()
	if err != nil {
		// Surface the producer's error rather than the queue's wrapper.
		if cause := s.q.Error(); cause != nil {
			return nil, cause
		}
		return nil, err
	}
	if evt.Status == StatusOK {
		return evt.Chunk, nil
	}
	err = stateOf(evt)
	s.q.CloseWithError(err)
	return nil, err
}

func (s *streamImpl) Close() error {
	return s.q.Close()
}

func (s *streamImpl) CloseWithError(err error) error {
	return s.q.CloseWithError(err)
}
