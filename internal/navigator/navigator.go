// Package navigator owns a visitor's selection and derives what the embedded
// archive frame should show.
//
// Every change sets the view to loading, mirrors the selection into the
// shareable query string, and publishes the archive URL once a settling delay
// has passed without a newer change. Each change carries a sequence number;
// a settle or completion signal for an older sequence is ignored.
package navigator

import (
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/timemachine/internal/catalog"
	"github.com/ziadkadry99/timemachine/internal/wayback"
)

const (
	DefaultSettleDelay = 300 * time.Millisecond
	DefaultLoadTimeout = 30 * time.Second
)

// Cause records which intent produced a change.
type Cause string

const (
	CauseInitial Cause = "initial"
	CauseSite    Cause = "site"
	CauseYear    Cause = "year"
	CauseSearch  Cause = "search"
	CauseRandom  Cause = "random"
)

// EventType identifies a state transition.
type EventType string

const (
	EventState      EventType = "state"       // selection changed, loading started
	EventQuery      EventType = "query"       // shareable query replaced
	EventArchiveURL EventType = "archive_url" // settled, frame should navigate
	EventLoaded     EventType = "loaded"      // frame reported completion
	EventFailed     EventType = "failed"      // frame never reported completion
)

// ViewState is derived from the selection.
type ViewState struct {
	ArchiveURL string `json:"archive_url"`
	Loading    bool   `json:"loading"`
	Failed     bool   `json:"failed"`
	Seq        uint64 `json:"seq"`
}

// Event is delivered to Options.OnChange after every transition.
type Event struct {
	Type      EventType
	Cause     Cause
	Selection Selection
	View      ViewState
	Query     url.Values
}

// Options configures a Controller.
type Options struct {
	Catalog  *catalog.Catalog
	Defaults Defaults

	// SettleDelay defaults to DefaultSettleDelay.
	SettleDelay time.Duration
	// LoadTimeout defaults to DefaultLoadTimeout; negative disables it.
	LoadTimeout time.Duration

	// Rand drives random trips. A time-seeded source is used when nil.
	Rand *rand.Rand

	// OnChange is called with the controller lock held; it must not call
	// back into the Controller.
	OnChange func(Event)
}

// Controller is the single owner of a Selection. Safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	opts    Options
	sel     Selection
	view    ViewState
	cause   Cause
	query   url.Values
	started bool
	closed  bool
	settle  *time.Timer
	timeout *time.Timer
}

// New creates a controller seeded from the current address query. Nothing
// is published until Start.
func New(address url.Values, opts Options) *Controller {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.LoadTimeout == 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>17|1))
	}

	return &Controller{
		opts:  opts,
		sel:   ParseSelection(address, opts.Defaults),
		query: cloneValues(address),
	}
}

// Start publishes the initial selection.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	c.apply(c.sel, CauseInitial)
}

// Close stops pending timers. Later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimers()
}

// Selection returns the current selection.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// View returns the current derived view state.
func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Query returns a copy of the shareable query string.
func (c *Controller) Query() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneValues(c.query)
}

// SelectSite switches to host. The year is raised to earliestYear when it
// is below it and kept otherwise. Input that normalizes to nothing is ignored.
func (c *Controller) SelectSite(host string, earliestYear int) Selection {
	return c.selectSite(host, earliestYear, CauseSite)
}

func (c *Controller) selectSite(host string, floor int, cause Cause) Selection {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := wayback.Normalize(host)
	if h == "" {
		return c.sel
	}
	c.apply(Selection{Host: h, Year: withFloor(c.sel.Year, floor)}, cause)
	return c.sel
}

// SelectYear moves to year, clamped into the supported range.
func (c *Controller) SelectYear(year int) Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(Selection{Host: c.sel.Host, Year: wayback.ClampYear(year)}, CauseYear)
	return c.sel
}

// SearchCustomURL travels to whatever the visitor typed, keeping the year.
// Blank input is rejected and reported as not applied.
func (c *Controller) SearchCustomURL(raw string) (Selection, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || wayback.Normalize(raw) == "" {
		return c.Selection(), false
	}
	return c.selectSite(raw, wayback.MinYear, CauseSearch), true
}

// SelectRandomSite picks a site and a year uniformly at random, then raises
// the year to the site's first archivable year when needed.
func (c *Controller) SelectRandomSite() (catalog.Site, Selection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	site := c.opts.Catalog.Random(c.opts.Rand)
	year := wayback.MinYear + c.opts.Rand.IntN(wayback.MaxYear-wayback.MinYear+1)
	c.apply(Selection{Host: site.Host, Year: withFloor(year, site.StartYear)}, CauseRandom)
	return site, c.sel
}

// Loaded is the embedded frame's completion signal for seq. It reports
// whether the signal cleared the loading or failed state; signals for
// superseded sequences, or arriving before the URL was published, are
// dropped. A completion that arrives after the load timeout still counts.
func (c *Controller) Loaded(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.view.Seq || c.view.ArchiveURL == "" {
		return false
	}
	if !c.view.Loading && !c.view.Failed {
		return false
	}
	if c.timeout != nil {
		c.timeout.Stop()
		c.timeout = nil
	}
	c.view.Loading = false
	c.view.Failed = false
	c.emit(EventLoaded)
	return true
}

// apply must be called with c.mu held.
func (c *Controller) apply(sel Selection, cause Cause) {
	if c.closed {
		return
	}
	// Re-selecting what is already on screen does nothing unless the last
	// attempt failed, in which case it is a retry.
	if c.view.Seq > 0 && sel == c.sel && !c.view.Failed {
		return
	}

	c.stopTimers()
	c.sel = sel
	c.cause = cause
	c.view = ViewState{Loading: true, Seq: c.view.Seq + 1}
	c.emit(EventState)

	if c.query.Get(ParamSite) != sel.Host || c.query.Get(ParamYear) != sel.Query().Get(ParamYear) {
		if c.query == nil {
			c.query = url.Values{}
		}
		for k, v := range sel.Query() {
			c.query[k] = v
		}
		c.emit(EventQuery)
	}

	seq := c.view.Seq
	c.settle = time.AfterFunc(c.opts.SettleDelay, func() { c.publish(seq) })
}

func (c *Controller) publish(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.view.Seq {
		return
	}
	c.settle = nil
	c.view.ArchiveURL = c.sel.ArchiveURL()
	c.emit(EventArchiveURL)

	if c.opts.LoadTimeout > 0 {
		c.timeout = time.AfterFunc(c.opts.LoadTimeout, func() { c.expire(seq) })
	}
}

func (c *Controller) expire(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.view.Seq || !c.view.Loading {
		return
	}
	c.timeout = nil
	c.view.Loading = false
	c.view.Failed = true
	c.emit(EventFailed)
}

func (c *Controller) stopTimers() {
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	if c.timeout != nil {
		c.timeout.Stop()
		c.timeout = nil
	}
}

func (c *Controller) emit(t EventType) {
	if c.opts.OnChange == nil {
		return
	}
	c.opts.OnChange(Event{
		Type:      t,
		Cause:     c.cause,
		Selection: c.sel,
		View:      c.view,
		Query:     cloneValues(c.query),
	})
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
