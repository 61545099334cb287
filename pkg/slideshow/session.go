package slideshow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/slideshow/pkg/genx"
	"github.com/haivivi/slideshow/pkg/kv"
	"github.com/haivivi/slideshow/pkg/slides"
)

var (
	// ErrEmptyInput is returned by Generate for blank requests. The recorded
	// slides are left untouched.
	ErrEmptyInput = errors.New("slideshow: empty input")

	// ErrSuperseded is returned by a Generate call whose run was replaced by
	// a newer one on the same session.
	ErrSuperseded = errors.New("slideshow: superseded by a newer request")
)

// Options configures a Session.
type Options struct {
	// ID identifies the session in the store. A random UUID is used when
	// empty; reuse an ID to pick up slides recorded by an earlier process.
	ID string

	// Model overrides the generator's default model.
	Model string

	// Store records the export list. Defaults to an in-memory store.
	Store kv.Store
}

// Session is one user's generation state: the slides recorded by the latest
// run and the bookkeeping to cancel a run when a newer one starts.
//
// Generate, Slides and Export are safe for concurrent use.
type Session struct {
	id     string
	gen    genx.Generator
	model  string
	store  kv.Store
	prefix kv.Key

	mu     sync.Mutex
	run    uint64
	cancel context.CancelFunc

	// serializes runs so a superseded run has unwound before the next one
	// resets the export list.
	runMu sync.Mutex
}

// NewSession creates a session that generates through gen.
func NewSession(gen genx.Generator, opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	store := opts.Store
	if store == nil {
		store = kv.NewMemory(nil)
	}
	return &Session{
		id:     id,
		gen:    gen,
		model:  opts.Model,
		store:  store,
		prefix: kv.Key{"slideshow", id, "slide"},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Generate runs one request. It clears the recorded slides, resets r if it
// is a Resetter, streams the response and calls r.Render for every
// completed slide, in order, after recording it. Remote failures are returned as *slides.RequestError.
//
// Starting a new Generate cancels any run still in flight on this session;
// the older call returns ErrSuperseded and records nothing further.
func (s *Session) Generate(ctx context.Context, input string, r Renderer) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}

	ctx, run := s.begin(ctx)
	defer s.end(run)

	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.superseded(run) {
		return ErrSuperseded
	}

	if err := s.store.DeletePrefix(ctx, s.prefix); err != nil {
		return fmt.Errorf("slideshow: reset: %w", err)
	}
	if rs, ok := r.(Resetter); ok {
		if err := rs.Reset(ctx); err != nil {
			return fmt.Errorf("slideshow: reset renderer: %w", err)
		}
	}

	var mcb genx.ModelContextBuilder
	mcb.UserText("", input+Suffix)

	start := time.Now()
	stream, err := s.gen.GenerateStream(ctx, s.model, mcb.Build())
	if err != nil {
		if s.superseded(run) {
			return ErrSuperseded
		}
		return slides.NewRequestError(err)
	}
	defer stream.Close()

	n := 0
	for slide, err := range slides.Collect(stream) {
		if s.superseded(run) {
			return ErrSuperseded
		}
		if err != nil {
			return err
		}
		if err := s.record(ctx, slide); err != nil {
			return err
		}
		if err := r.Render(ctx, slide); err != nil {
			return fmt.Errorf("slideshow: render %s: %w", slide.ImageName, err)
		}
		n++
	}
	if s.superseded(run) {
		return ErrSuperseded
	}
	slog.Info("slideshow: generation finished", "session", s.id, "slides", n, "elapsed", time.Since(start))
	return nil
}

// Cancel stops the in-flight run, if any, which then returns ErrSuperseded.
// Slides recorded so far are kept.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.run++
		s.cancel()
		s.cancel = nil
	}
}

// Slides returns the recorded export list in order. Records that fail to
// decode are skipped.
func (s *Session) Slides(ctx context.Context) ([]*slides.Slide, error) {
	var list []*slides.Slide
	for entry, err := range s.store.List(ctx, s.prefix) {
		if err != nil {
			return nil, fmt.Errorf("slideshow: list slides: %w", err)
		}
		var slide slides.Slide
		if err := msgpack.Unmarshal(entry.Value, &slide); err != nil {
			slog.Warn("slideshow: skip malformed slide record", "key", entry.Key.String(), "error", err)
			continue
		}
		list = append(list, &slide)
	}
	return list, nil
}

// Export writes the recorded slides to w as a zip archive. All failures,
// including an empty list, are *slides.ExportError.
func (s *Session) Export(ctx context.Context, w io.Writer) error {
	list, err := s.Slides(ctx)
	if err != nil {
		return &slides.ExportError{Err: err}
	}
	return slides.Export(w, list)
}

// Clear drops the recorded slides.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.DeletePrefix(ctx, s.prefix)
}

func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.run++
	s.cancel = cancel
	return ctx, s.run
}

func (s *Session) end(run uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == run && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// running reports whether a Generate call is in flight.
func (s *Session) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Session) superseded(run uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != run
}

func (s *Session) record(ctx context.Context, slide *slides.Slide) error {
	data, err := msgpack.Marshal(slide)
	if err != nil {
		return fmt.Errorf("slideshow: encode slide: %w", err)
	}
	key := s.prefix.Append(fmt.Sprintf("%04d", slide.Index))
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("slideshow: record slide: %w", err)
	}
	return nil
}
