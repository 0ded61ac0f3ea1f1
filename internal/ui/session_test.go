package ui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/timemachine/internal/prefs"
	"github.com/ziadkadry99/timemachine/internal/trips"
)

func dialSession(t *testing.T, u *UI, query string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(setupRouter(u))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/session"
	if query != "" {
		wsURL += "?" + query
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) serverMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestSessionInitialPublish(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "site=apple.com&year=1990")

	state := readUntil(t, conn, "state")
	if state.Site != "apple.com" || state.Year != 1999 {
		t.Errorf("expected apple.com/1999, got %s/%d", state.Site, state.Year)
	}
	if !state.Loading || state.Seq != 1 || state.Cause != "initial" {
		t.Errorf("unexpected initial state: %+v", state)
	}

	msg := readUntil(t, conn, "loading_message")
	if msg.Message == "" {
		t.Error("expected a loading message")
	}

	query := readUntil(t, conn, "query")
	if query.Query != "site=apple.com&year=1999" {
		t.Errorf("expected corrected query, got %q", query.Query)
	}

	published := readUntil(t, conn, "archive_url")
	if published.ArchiveURL != "https://web.archive.org/web/19990101000000/http://apple.com" {
		t.Errorf("unexpected archive url %q", published.ArchiveURL)
	}
	if !published.Loading {
		t.Error("publishing must not clear loading")
	}
}

func TestSessionLoadedClearsLoading(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "")

	published := readUntil(t, conn, "archive_url")

	// A stale sequence is ignored; the next loaded event must be for ours.
	conn.WriteJSON(clientMessage{Type: "loaded", Seq: published.Seq + 5})
	conn.WriteJSON(clientMessage{Type: "loaded", Seq: published.Seq})

	loaded := readUntil(t, conn, "loaded")
	if loaded.Loading || loaded.Seq != published.Seq {
		t.Errorf("unexpected loaded event: %+v", loaded)
	}
}

func TestSessionSelectSiteByID(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "site=google.com&year=1999")
	readUntil(t, conn, "archive_url")

	conn.WriteJSON(clientMessage{Type: "select_site", ID: "youtube"})
	state := readUntil(t, conn, "state")
	if state.Site != "youtube.com" || state.Year != 2005 {
		t.Errorf("expected floor to raise year: got %s/%d", state.Site, state.Year)
	}
	if state.Cause != "site" {
		t.Errorf("expected cause site, got %q", state.Cause)
	}

	query := readUntil(t, conn, "query")
	if query.Query != "site=youtube.com&year=2005" {
		t.Errorf("unexpected query %q", query.Query)
	}
}

func TestSessionYearAndSearch(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "site=google.com&year=1999")
	readUntil(t, conn, "archive_url")

	// Blank search is a no-op, so the year change is the next state.
	conn.WriteJSON(clientMessage{Type: "search", URL: "   "})
	conn.WriteJSON(clientMessage{Type: "select_year", Year: 3000})

	state := readUntil(t, conn, "state")
	if state.Year != 2026 || state.Seq != 2 {
		t.Errorf("expected clamped year at seq 2, got %d at seq %d", state.Year, state.Seq)
	}

	conn.WriteJSON(clientMessage{Type: "search", URL: "  HTTPS://www.Example.org "})
	state = readUntil(t, conn, "state")
	if state.Site != "example.org" || state.Year != 2026 {
		t.Errorf("expected example.org/2026, got %s/%d", state.Site, state.Year)
	}
	if state.Cause != "search" {
		t.Errorf("expected cause search, got %q", state.Cause)
	}
}

func TestSessionRandomRespectsFloor(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "site=example.org")
	readUntil(t, conn, "archive_url")

	for i := 0; i < 10; i++ {
		// Leave the catalog first so the random pick is always a change.
		if i > 0 {
			conn.WriteJSON(clientMessage{Type: "search", URL: "example.org"})
			readUntil(t, conn, "state")
		}
		conn.WriteJSON(clientMessage{Type: "random"})
		state := readUntil(t, conn, "state")
		if state.Cause != "random" {
			t.Fatalf("expected cause random, got %q", state.Cause)
		}
		site, ok := findSite(u, state.Site)
		if !ok {
			t.Fatalf("random picked unknown site %q", state.Site)
		}
		if state.Year < site || state.Year > 2026 {
			t.Errorf("year %d outside [%d, 2026] for %s", state.Year, site, state.Site)
		}
	}
}

func findSite(u *UI, host string) (int, bool) {
	for _, s := range u.opts.Catalog.All() {
		if s.Host == host {
			return s.StartYear, true
		}
	}
	return 0, false
}

func TestSessionLoadTimeout(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: 50 * time.Millisecond})
	conn := dialSession(t, u, "")

	failed := readUntil(t, conn, "failed")
	if !failed.Failed || failed.Loading {
		t.Errorf("unexpected failed event: %+v", failed)
	}

	// The frame finishing late still clears the failure.
	conn.WriteJSON(clientMessage{Type: "loaded", Seq: failed.Seq})
	loaded := readUntil(t, conn, "loaded")
	if loaded.Failed || loaded.Loading || loaded.Seq != failed.Seq {
		t.Errorf("unexpected loaded event: %+v", loaded)
	}
}

func TestSessionToggleTheme(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "")

	conn.WriteJSON(clientMessage{Type: "toggle_theme"})
	msg := readUntil(t, conn, "theme")
	if msg.Theme != prefs.ThemeLight {
		t.Errorf("expected light, got %s", msg.Theme)
	}
}

func TestSessionErrors(t *testing.T) {
	u, _, _ := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "")

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	msg := readUntil(t, conn, "error")
	if msg.Error != "invalid message format" {
		t.Errorf("unexpected error %q", msg.Error)
	}

	conn.WriteJSON(clientMessage{Type: "warp"})
	msg = readUntil(t, conn, "error")
	if msg.Error != "unknown message type: warp" {
		t.Errorf("unexpected error %q", msg.Error)
	}

	conn.WriteJSON(clientMessage{Type: "select_site", ID: "altavista"})
	msg = readUntil(t, conn, "error")
	if msg.Error != "unknown site: altavista" {
		t.Errorf("unexpected error %q", msg.Error)
	}
}

func TestSessionRecordsTrips(t *testing.T) {
	u, _, tripStore := setupTest(t, Options{LoadTimeout: -1})
	conn := dialSession(t, u, "site=www.nytimes.com&year=2001")
	readUntil(t, conn, "archive_url")

	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := tripStore.Query(t.Context(), trips.Filter{Host: "nytimes.com"})
		if err != nil {
			t.Fatalf("querying trips: %v", err)
		}
		if len(entries) == 1 {
			e := entries[0]
			if e.Year != 2001 || e.Cause != trips.CauseInitial || e.RootDomain != "nytimes.com" {
				t.Errorf("unexpected trip: %+v", e)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected one trip, got %d", len(entries))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// connPair returns both ends of a websocket connection.
func connPair(t *testing.T) (client, server *websocket.Conn) {
	t.Helper()

	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- c
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never accepted")
	}
	t.Cleanup(func() { server.Close() })
	return client, server
}

func TestSendDropsClientThatStopsReading(t *testing.T) {
	client, server := connPair(t)

	// No writer is draining out, as with a client that never reads.
	s := &session{
		conn:   server,
		logger: log.New(io.Discard),
		out:    make(chan serverMessage, 1),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			s.send(serverMessage{Type: "state", Seq: uint64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("send blocked on a full buffer")
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := client.ReadMessage(); err == nil {
		t.Error("expected the overflowing session to be disconnected")
	}
}

func TestWriteLoopDeliversInOrder(t *testing.T) {
	client, server := connPair(t)

	s := &session{
		conn:       server,
		logger:     log.New(io.Discard),
		out:        make(chan serverMessage, sendBuffer),
		writerDone: make(chan struct{}),
	}
	go s.writeLoop()

	for i := 1; i <= 3; i++ {
		s.send(serverMessage{Type: "state", Seq: uint64(i)})
	}
	close(s.out)
	<-s.writerDone

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 1; i <= 3; i++ {
		var msg serverMessage
		if err := client.ReadJSON(&msg); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if msg.Seq != uint64(i) {
			t.Errorf("expected seq %d, got %d", i, msg.Seq)
		}
	}
}
