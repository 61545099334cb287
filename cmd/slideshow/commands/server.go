package commands

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/haivivi/slideshow/pkg/slides"
	"github.com/haivivi/slideshow/pkg/slideshow"
)

//go:embed templates/*
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const (
	sessionCookie   = "slideshow_session"
	writeTimeout    = 10 * time.Second
	nothingToExport = "Nothing to export yet. Generate a slideshow first."
)

// Websocket message types.
const (
	msgGenerate = "generate"
	msgCancel   = "cancel"
	msgReset    = "reset"
	msgSlide    = "slide"
	msgDone     = "done"
	msgError    = "error"
)

// wsMessage is the single envelope used in both directions.
type wsMessage struct {
	Type    string               `json:"type"`
	Text    string               `json:"text,omitempty"`
	Slide   *slideshow.SlideView `json:"slide,omitempty"`
	Message string               `json:"message,omitempty"`
	Count   int                  `json:"count,omitempty"`
}

type indexData struct {
	Examples []string
	Slides   []*slideshow.SlideView
}

// server is the browser surface: an index page, a websocket that drives
// generation, and an archive download.
type server struct {
	registry *slideshow.Registry
	html     *slideshow.HTMLRenderer
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

func newServer(registry *slideshow.Registry) *server {
	s := &server{
		registry: registry,
		html:     slideshow.NewHTMLRenderer(nil),
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/ws", s.handleWS)
	s.mux.HandleFunc("GET /api/export", s.handleExport)
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// session returns the caller's session, or nil when the request carries no
// valid session cookie.
func (s *server) session(r *http.Request) *slideshow.Session {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return nil
	}
	return s.registry.Get(c.Value)
}

// sessionOrNew returns the caller's session, creating one and adding its
// cookie to h when needed.
func (s *server) sessionOrNew(r *http.Request, h http.Header) *slideshow.Session {
	if sess := s.session(r); sess != nil {
		return sess
	}
	sess := s.registry.New()
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	h.Add("Set-Cookie", c.String())
	return sess
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionOrNew(r, w.Header())
	data := indexData{Examples: slideshow.Examples}

	list, err := sess.Slides(r.Context())
	if err != nil {
		slog.Warn("slideshow/web: load slides", "session", sess.ID(), "error", err)
	}
	if data.Slides, err = s.html.Views(list); err != nil {
		slog.Warn("slideshow/web: render slides", "session", sess.ID(), "error", err)
		data.Slides = nil
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if sess == nil {
		http.Error(w, nothingToExport, http.StatusConflict)
		return
	}

	var buf bytes.Buffer
	if err := sess.Export(r.Context(), &buf); err != nil {
		if errors.Is(err, slides.ErrNothingToExport) {
			http.Error(w, nothingToExport, http.StatusConflict)
			return
		}
		slog.Error("slideshow/web: export failed", "session", sess.ID(), "error", err)
		msg := "Export failed, please try again."
		var ee *slides.ExportError
		if errors.As(err, &ee) {
			msg = ee.Display()
		}
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+slides.ArchiveName+`"`)
	w.Write(buf.Bytes())
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	h := http.Header{}
	sess := s.registry.Acquire(s.sessionOrNew(r, h).ID())
	defer s.registry.Release(sess)
	conn, err := s.upgrader.Upgrade(w, r, h)
	if err != nil {
		slog.Warn("slideshow/web: websocket upgrade", "error", err)
		return
	}
	c := &wsConn{conn: conn}
	defer conn.Close()

	slog.Debug("slideshow/web: client connected", "session", sess.ID(), "remote", r.RemoteAddr)

	// Runs outlive the upgrade request; they end with the connection.
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("slideshow/web: read", "session", sess.ID(), "error", err)
			}
			sess.Cancel()
			return
		}

		switch msg.Type {
		case msgGenerate:
			wg.Add(1)
			go func(text string) {
				defer wg.Done()
				s.generate(ctx, sess, c, text)
			}(msg.Text)
		case msgCancel:
			sess.Cancel()
		default:
			c.send(wsMessage{Type: msgError, Message: "unknown message type " + msg.Type})
		}
	}
}

// generate runs one request and reports its outcome on c. A run replaced
// by a newer one reports nothing; the newer run owns the page.
func (s *server) generate(ctx context.Context, sess *slideshow.Session, c *wsConn, text string) {
	r := &wsRenderer{conn: c}
	r.HTMLRenderer = slideshow.NewHTMLRenderer(r.send)

	err := sess.Generate(ctx, text, r)
	var re *slides.RequestError
	switch {
	case err == nil:
		c.send(wsMessage{Type: msgDone, Count: r.count})
	case errors.Is(err, slideshow.ErrSuperseded):
	case errors.Is(err, slideshow.ErrEmptyInput):
		c.send(wsMessage{Type: msgError, Message: "Please enter something to explain."})
	case errors.As(err, &re):
		slog.Warn("slideshow/web: request failed", "session", sess.ID(), "error", err)
		c.send(wsMessage{Type: msgError, Message: re.Display()})
	default:
		slog.Error("slideshow/web: generate", "session", sess.ID(), "error", err)
		c.send(wsMessage{Type: msgError, Message: "Something went wrong: " + err.Error()})
	}
}

// wsRenderer sends slides to the page and clears it when a run starts.
type wsRenderer struct {
	*slideshow.HTMLRenderer
	conn  *wsConn
	count int
}

func (r *wsRenderer) send(_ context.Context, v *slideshow.SlideView) error {
	r.count++
	return r.conn.send(wsMessage{Type: msgSlide, Slide: v})
}

func (r *wsRenderer) Reset(context.Context) error {
	r.count = 0
	return r.conn.send(wsMessage{Type: msgReset})
}

// wsConn serializes writes; gorilla connections allow one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg wsMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}
