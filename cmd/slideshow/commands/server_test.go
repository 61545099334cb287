package commands

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"iter"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zip"

	"github.com/haivivi/slideshow/pkg/genx"
	"github.com/haivivi/slideshow/pkg/kv"
	"github.com/haivivi/slideshow/pkg/slideshow"
)

// stubGenerator streams the same parts for every request, or fails to open
// with err.
type stubGenerator struct {
	parts []genx.Part
	err   error
}

func (g *stubGenerator) GenerateStream(ctx context.Context, model string, mctx genx.ModelContext) (genx.Stream, error) {
	if g.err != nil {
		return nil, g.err
	}
	sb := genx.NewStreamBuilder(len(g.parts) + 1)
	for _, p := range g.parts {
		sb.Add(&genx.MessageChunk{Role: genx.RoleModel, Part: p})
	}
	sb.Done(genx.Usage{})
	return sb.Stream(), nil
}

func testPNG(t *testing.T) genx.Part {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return &genx.Blob{MIMEType: "image/png", Data: buf.Bytes()}
}

func newTestServer(t *testing.T, gen genx.Generator) (*httptest.Server, *http.Client) {
	t.Helper()
	reg := slideshow.NewRegistry(gen, "test-model", kv.NewMemory(nil))
	ts := httptest.NewServer(newServer(reg))
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return ts, &http.Client{Jar: jar}
}

// dial opens the websocket with the client's cookies and stores any cookie
// set during the upgrade.
func dial(t *testing.T, ts *httptest.Server, client *http.Client) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(ts.URL)
	d := websocket.Dialer{Jar: client.Jar, HandshakeTimeout: 5 * time.Second}
	conn, _, err := d.Dial("ws://"+u.Host+"/api/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestServerIndex(t *testing.T) {
	ts, client := newTestServer(t, &stubGenerator{})

	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Lots of Tiny Cats") {
		t.Fatalf("index page missing title")
	}
	// The first example is rendered as a clickable prompt.
	if !strings.Contains(string(body), "data-example=") {
		t.Fatalf("index page missing examples")
	}
	// A fresh session has nothing to download, and the input locks while a run streams.
	if !strings.Contains(string(body), `<button id="export" type="button" class="hidden">`) {
		t.Fatalf("export button not hidden on a fresh page")
	}
	for _, want := range []string{"input.disabled = busy", "btn.disabled = busy", "fetch('/api/export')"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("index page missing %q", want)
		}
	}
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no session cookie set")
	}

	resp2, err := client.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", resp2.StatusCode)
	}
}

func TestServerGenerateAndExport(t *testing.T) {
	gen := &stubGenerator{parts: []genx.Part{
		genx.Text("A *cat*."), testPNG(t),
		genx.Text("Another cat."), testPNG(t),
	}}
	ts, client := newTestServer(t, gen)

	// Nothing generated yet.
	resp, err := client.Get(ts.URL + "/api/export")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("empty export status = %d, want 409", resp.StatusCode)
	}

	conn := dial(t, ts, client)
	if err := conn.WriteJSON(wsMessage{Type: msgGenerate, Text: "Explain rainbows."}); err != nil {
		t.Fatal(err)
	}

	if msg := readMsg(t, conn); msg.Type != msgReset {
		t.Fatalf("first message = %+v, want reset", msg)
	}
	first := readMsg(t, conn)
	if first.Type != msgSlide || first.Slide == nil {
		t.Fatalf("second message = %+v, want slide", first)
	}
	if first.Slide.Name != "slide_01.png" || !strings.Contains(string(first.Slide.CaptionHTML), "<em>cat</em>") {
		t.Fatalf("slide = %+v", first.Slide)
	}
	if !strings.HasPrefix(string(first.Slide.ImageURL), "data:image/png;base64,") {
		t.Fatalf("image url = %.40s", first.Slide.ImageURL)
	}
	if msg := readMsg(t, conn); msg.Type != msgSlide || msg.Slide.Index != 2 {
		t.Fatalf("third message = %+v", msg)
	}
	if msg := readMsg(t, conn); msg.Type != msgDone || msg.Count != 2 {
		t.Fatalf("last message = %+v, want done with 2", msg)
	}

	resp, err = client.Get(ts.URL + "/api/export")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "slideshow.zip") {
		t.Fatalf("content disposition = %q", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "slide_01.png,slide_02.png,captions.md" {
		t.Fatalf("entries = %s", got)
	}

	// A reload shows the recorded slides.
	page, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer page.Body.Close()
	body, _ := io.ReadAll(page.Body)
	if !strings.Contains(string(body), "Another cat.") {
		t.Fatalf("reloaded page missing slides")
	}
}

func TestServerGenerateErrors(t *testing.T) {
	gen := &stubGenerator{err: errors.New(`got status 429: {"error":{"code":429,"message":"Quota exceeded"}}`)}
	ts, client := newTestServer(t, gen)
	conn := dial(t, ts, client)

	if err := conn.WriteJSON(wsMessage{Type: msgGenerate, Text: "   "}); err != nil {
		t.Fatal(err)
	}
	if msg := readMsg(t, conn); msg.Type != msgError || msg.Message == "" {
		t.Fatalf("empty input message = %+v", msg)
	}

	if err := conn.WriteJSON(wsMessage{Type: msgGenerate, Text: "Explain gravity."}); err != nil {
		t.Fatal(err)
	}
	if msg := readMsg(t, conn); msg.Type != msgReset {
		t.Fatalf("message = %+v, want reset", msg)
	}
	msg := readMsg(t, conn)
	if msg.Type != msgError || msg.Message != "Something went wrong: Quota exceeded" {
		t.Fatalf("message = %+v", msg)
	}

	if err := conn.WriteJSON(wsMessage{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMsg(t, conn); msg.Type != msgError {
		t.Fatalf("unknown type reply = %+v", msg)
	}
}

func TestServerExportWithoutSession(t *testing.T) {
	ts, _ := newTestServer(t, &stubGenerator{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/export", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-uuid"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

// brokenListStore fails every List, so recorded slides cannot be read back.
type brokenListStore struct {
	kv.Store
}

func (brokenListStore) List(context.Context, kv.Key) iter.Seq2[kv.Entry, error] {
	return func(yield func(kv.Entry, error) bool) {
		yield(kv.Entry{}, errors.New("disk on fire"))
	}
}

func TestServerExportFailure(t *testing.T) {
	reg := slideshow.NewRegistry(&stubGenerator{}, "test-model", brokenListStore{kv.NewMemory(nil)})
	ts := httptest.NewServer(newServer(reg))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/export", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: uuid.NewString()})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(body)); got != "Export failed, please try again." {
		t.Fatalf("body = %q", got)
	}
	if strings.Contains(string(body), "disk on fire") {
		t.Fatal("export failure cause leaked to the client")
	}
}

func TestServerWebsocketHoldsSession(t *testing.T) {
	reg := slideshow.NewRegistry(&stubGenerator{}, "test-model", nil)
	ts := httptest.NewServer(newServer(reg))
	defer ts.Close()
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	conn := dial(t, ts, client)
	// An unknown message round-trips, so the handler is up.
	if err := conn.WriteJSON(wsMessage{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	readMsg(t, conn)

	if n := reg.Evict(context.Background(), 0, true); n != 0 {
		t.Fatalf("evicted %d sessions with an open websocket", n)
	}

	conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for reg.Evict(context.Background(), 0, true) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session not released after the websocket closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
