package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/debounce"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/logging"
)

const (
	DefaultPageSize       = 50
	DefaultSearchDebounce = 300 * time.Millisecond
)

type Lister interface {
	ListEcos(ctx context.Context, params client.ListParams) ([]models.EcoSummary, error)
}

type ViewState int

const (
	// ViewIdle means no query has been issued yet.
	ViewIdle ViewState = iota
	ViewLoading
	ViewResults
	ViewEmpty
	ViewError
)

func (s ViewState) String() string {
	switch s {
	case ViewIdle:
		return "idle"
	case ViewLoading:
		return "loading"
	case ViewResults:
		return "results"
	case ViewEmpty:
		return "empty"
	case ViewError:
		return "error"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// Query is the list filter. An empty Status means all statuses.
type Query struct {
	Search    string
	Status    models.Status
	PageSize  int
	PageIndex int
}

func (q Query) Params() client.ListParams {
	return client.ListParams{
		Search: q.Search,
		Status: q.Status,
		Limit:  q.PageSize,
		Offset: q.PageIndex * q.PageSize,
	}
}

type ListView struct {
	Query   Query
	State   ViewState
	Items   []models.EcoSummary
	Err     error
	HasNext bool
	HasPrev bool
}

type ListController struct {
	api      Lister
	logger   logging.Logger
	debounce *debounce.Debouncer

	mu       sync.Mutex
	query    Query
	state    ViewState
	items    []models.EcoSummary
	err      error
	seq      uint64
	applied  uint64
	onChange func(ListView)

	inflight sync.WaitGroup
}

type ListOption func(*ListController)

func WithPageSize(n int) ListOption {
	return func(c *ListController) {
		if n > 0 {
			c.query.PageSize = n
		}
	}
}

func WithDebouncer(d *debounce.Debouncer) ListOption {
	return func(c *ListController) { c.debounce = d }
}

func WithListLogger(l logging.Logger) ListOption {
	return func(c *ListController) { c.logger = l }
}

func NewListController(api Lister, opts ...ListOption) *ListController {
	c := &ListController{
		api:    api,
		logger: logging.Discard(),
		query:  Query{PageSize: DefaultPageSize},
	}
	for _, o := range opts {
		o(c)
	}
	if c.debounce == nil {
		c.debounce = debounce.New(DefaultSearchDebounce)
	}
	return c
}

// OnChange registers the view observer. It runs outside the controller lock
// on every state change, possibly from a timer goroutine.
func (c *ListController) OnChange(fn func(ListView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetSearch records the search text and schedules a query after the
// debounce window. Every call restarts the window.
func (c *ListController) SetSearch(ctx context.Context, text string) {
	c.mu.Lock()
	c.query.Search = text
	c.query.PageIndex = 0
	c.mu.Unlock()

	c.debounce.Trigger(func() { c.fetch(ctx) })
}

// SetStatus changes the filter and queries immediately. Empty means all.
func (c *ListController) SetStatus(ctx context.Context, status models.Status) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownStatus, status)
	}

	c.debounce.Cancel()
	c.mu.Lock()
	c.query.Status = status
	c.query.PageIndex = 0
	c.mu.Unlock()

	c.fetchAsync(ctx)
	return nil
}

func (c *ListController) SetPageSize(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}

	c.debounce.Cancel()
	c.mu.Lock()
	c.query.PageSize = n
	c.query.PageIndex = 0
	c.mu.Unlock()

	c.fetchAsync(ctx)
	return nil
}

// ChangePage moves by delta pages keeping the filters and queries at once.
// The index is clamped at 0. Moving forward is refused, without a query,
// only when the last settled result was a short or empty page; while a load
// is pending or after an error the move goes through.
func (c *ListController) ChangePage(ctx context.Context, delta int) bool {
	c.mu.Lock()
	if delta > 0 && c.lastPageLocked() {
		c.mu.Unlock()
		return false
	}
	next := c.query.PageIndex + delta
	if next < 0 {
		next = 0
	}
	c.query.PageIndex = next
	c.mu.Unlock()

	c.debounce.Cancel()
	c.fetchAsync(ctx)
	return true
}

// Refresh re-runs the current query now, superseding a pending search.
func (c *ListController) Refresh(ctx context.Context) {
	c.debounce.Cancel()
	c.fetchAsync(ctx)
}

// Wait blocks until the pending search and all started queries resolved.
func (c *ListController) Wait() {
	c.debounce.Wait()
	c.inflight.Wait()
}

func (c *ListController) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *ListController) Snapshot() ListView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *ListController) fetchAsync(ctx context.Context) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.fetch(ctx)
	}()
}

func (c *ListController) fetch(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	q := c.query
	c.state = ViewLoading
	c.err = nil
	view, notify := c.viewLocked(), c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify(view)
	}

	items, err := c.api.ListEcos(ctx, q.Params())

	c.mu.Lock()
	if q != c.query || seq < c.applied {
		c.mu.Unlock()
		c.logger.Debug(ctx, "stale list result dropped", "search", q.Search, "status", string(q.Status), "page", q.PageIndex)
		return
	}
	c.applied = seq

	switch {
	case err != nil:
		c.state = ViewError
		c.err = err
	case len(items) == 0:
		c.state = ViewEmpty
		c.items = nil
	default:
		c.state = ViewResults
		c.items = items
	}
	view, notify = c.viewLocked(), c.onChange
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn(ctx, "list query failed", "error", err)
	}
	if notify != nil {
		notify(view)
	}
}

// lastPageLocked reports a settled page that was not full.
func (c *ListController) lastPageLocked() bool {
	switch c.state {
	case ViewEmpty:
		return true
	case ViewResults:
		return len(c.items) < c.query.PageSize
	}
	return false
}

func (c *ListController) hasNextLocked() bool {
	return c.state == ViewResults && len(c.items) == c.query.PageSize
}

func (c *ListController) viewLocked() ListView {
	items := make([]models.EcoSummary, len(c.items))
	copy(items, c.items)
	return ListView{
		Query:   c.query,
		State:   c.state,
		Items:   items,
		Err:     c.err,
		HasNext: c.hasNextLocked(),
		HasPrev: c.query.PageIndex > 0,
	}
}
