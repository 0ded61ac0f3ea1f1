package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/timemachine/internal/loading"
	"github.com/ziadkadry99/timemachine/internal/navigator"
	"github.com/ziadkadry99/timemachine/internal/prefs"
	"github.com/ziadkadry99/timemachine/internal/trips"
)

const (
	writeWait  = 10 * time.Second
	storeWait  = 5 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is an intent sent by the page.
type clientMessage struct {
	Type  string `json:"type"` // select_site, select_year, search, random, loaded, toggle_theme
	ID    string `json:"id,omitempty"`
	Site  string `json:"site,omitempty"`
	Year  int    `json:"year,omitempty"`
	Floor int    `json:"floor,omitempty"`
	URL   string `json:"url,omitempty"`
	Seq   uint64 `json:"seq,omitempty"`
}

// serverMessage is pushed to the page on every state transition.
type serverMessage struct {
	Type       string      `json:"type"`
	Cause      string      `json:"cause,omitempty"`
	Site       string      `json:"site,omitempty"`
	Year       int         `json:"year,omitempty"`
	ArchiveURL string      `json:"archive_url,omitempty"`
	Loading    bool        `json:"loading"`
	Failed     bool        `json:"failed"`
	Seq        uint64      `json:"seq,omitempty"`
	Query      string      `json:"query,omitempty"`
	Message    string      `json:"message,omitempty"`
	Theme      prefs.Theme `json:"theme,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// session binds one websocket to one navigation controller.
type session struct {
	ui       *UI
	conn     *websocket.Conn
	visitor  string
	logger   *log.Logger
	ctrl     *navigator.Controller
	carousel *loading.Carousel

	// out is drained by writeLoop, the only goroutine writing to conn.
	out        chan serverMessage
	writerDone chan struct{}
	pending    sync.WaitGroup
}

func (u *UI) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	header := http.Header{}
	visitor := visitorID(header, r)

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		u.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	s := &session{
		ui:         u,
		conn:       conn,
		visitor:    visitor,
		logger:     u.logger.With("visitor", visitor),
		out:        make(chan serverMessage, sendBuffer),
		writerDone: make(chan struct{}),
	}
	go s.writeLoop()
	s.carousel = loading.NewCarousel(u.opts.MessageInterval, func(msg string) {
		s.send(serverMessage{Type: "loading_message", Message: msg})
	})
	s.ctrl = navigator.New(r.URL.Query(), navigator.Options{
		Catalog:     u.opts.Catalog,
		Defaults:    u.opts.Defaults,
		SettleDelay: u.opts.SettleDelay,
		LoadTimeout: u.opts.LoadTimeout,
		OnChange:    s.onChange,
	})
	defer s.close()

	s.logger.Debug("session opened", "site", s.ctrl.Selection().Host, "year", s.ctrl.Selection().Year)
	s.ctrl.Start()
	s.readLoop()
}

// close stops every producer before closing out, so send is never called
// on a closed channel.
func (s *session) close() {
	s.ctrl.Close()
	s.carousel.Stop()
	s.pending.Wait()
	close(s.out)
	<-s.writerDone
	s.logger.Debug("session closed")
}

func (s *session) readLoop() {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "err", err)
			}
			return
		}

		var req clientMessage
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendError("invalid message format")
			continue
		}
		s.handle(req)
	}
}

func (s *session) handle(req clientMessage) {
	switch req.Type {
	case "select_site":
		if req.ID != "" {
			site, ok := s.ui.opts.Catalog.Lookup(req.ID)
			if !ok {
				s.sendError("unknown site: " + req.ID)
				return
			}
			s.ctrl.SelectSite(site.Host, site.StartYear)
			return
		}
		s.ctrl.SelectSite(req.Site, req.Floor)
	case "select_year":
		s.ctrl.SelectYear(req.Year)
	case "search":
		// Blank input is a no-op, not an error.
		s.ctrl.SearchCustomURL(req.URL)
	case "random":
		s.ctrl.SelectRandomSite()
	case "loaded":
		s.ctrl.Loaded(req.Seq)
	case "toggle_theme":
		s.toggleTheme()
	default:
		s.sendError("unknown message type: " + req.Type)
	}
}

func (s *session) toggleTheme() {
	ctx, cancel := context.WithTimeout(context.Background(), storeWait)
	defer cancel()

	theme, err := s.ui.opts.Prefs.ToggleTheme(ctx, s.visitor)
	if err != nil {
		s.logger.Error("toggling theme", "err", err)
		s.sendError("failed to save theme")
		return
	}
	s.send(serverMessage{Type: "theme", Theme: theme})
}

// onChange runs with the controller lock held.
func (s *session) onChange(ev navigator.Event) {
	msg := serverMessage{
		Type:       string(ev.Type),
		Cause:      string(ev.Cause),
		Site:       ev.Selection.Host,
		Year:       ev.Selection.Year,
		ArchiveURL: ev.View.ArchiveURL,
		Loading:    ev.View.Loading,
		Failed:     ev.View.Failed,
		Seq:        ev.View.Seq,
	}
	if ev.Type == navigator.EventQuery {
		msg.Query = ev.Query.Encode()
	}
	s.send(msg)

	switch ev.Type {
	case navigator.EventState:
		s.carousel.Start()
	case navigator.EventArchiveURL:
		s.recordTrip(ev)
	case navigator.EventLoaded, navigator.EventFailed:
		s.carousel.Stop()
	}
}

// recordTrip stores the published URL in the background. A failure is
// logged and never reaches the visitor.
func (s *session) recordTrip(ev navigator.Event) {
	store := s.ui.opts.Trips
	if store == nil {
		return
	}
	entry := trips.NewEntry(s.visitor, ev.Selection.Host, ev.Selection.Year, trips.Cause(ev.Cause))

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), storeWait)
		defer cancel()
		if _, err := store.Log(ctx, entry); err != nil {
			s.logger.Error("recording trip", "host", entry.Host, "year", entry.Year, "err", err)
		}
	}()
}

// send queues msg without blocking. It is called with the controller lock
// held, so a client that stops reading is disconnected instead of waited on.
func (s *session) send(msg serverMessage) {
	select {
	case s.out <- msg:
	default:
		s.logger.Warn("send buffer full, closing session", "type", msg.Type)
		s.conn.Close()
	}
}

func (s *session) writeLoop() {
	defer close(s.writerDone)
	for msg := range s.out {
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(msg); err != nil {
			s.logger.Debug("websocket write", "type", msg.Type, "err", err)
			// Keep draining; the read loop sees the closed conn and ends the session.
			s.conn.Close()
		}
	}
}

func (s *session) sendError(message string) {
	s.send(serverMessage{Type: "error", Error: message})
}
