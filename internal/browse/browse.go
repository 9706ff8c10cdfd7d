// Package browse owns the interactive list-view state: the current filter,
// ordering and page selection, a debounce on search input, and the fetch
// lifecycle that keeps results consistent with the latest selection.
package browse

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/rs/zerolog"

	"github.com/adna-tk/book-explorer/internal/catalog"
)

const searchDebounce = 300 * time.Millisecond

// Lister is the slice of the catalog the controller needs.
type Lister interface {
	Books(ctx context.Context, p catalog.ListParams) (catalog.Page[catalog.Book], error)
}

// Snapshot is one render-ready view of the list state. While a fetch is in
// flight the snapshot carries the previous page, so the view never blanks
// out between selections.
type Snapshot struct {
	Params  catalog.ListParams
	Page    catalog.Page[catalog.Book]
	HasPage bool
	Loading bool
	Err     error
}

// Controller drives the books list. All methods are safe for concurrent
// use; results are delivered to the sink, never returned.
type Controller struct {
	lister Lister
	sink   func(Snapshot)
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	params   catalog.ListParams
	gen      uint64
	last     catalog.Page[catalog.Book]
	hasLast  bool
	debounce func(func())
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithDebounceInterval overrides the search debounce interval. Tests shrink
// it to keep runs fast.
func WithDebounceInterval(d time.Duration) Option {
	return func(c *Controller) { c.debounce = debounce.New(d) }
}

// New creates a controller delivering snapshots to sink. The sink is called
// from controller goroutines and must not block for long.
func New(lister Lister, sink func(Snapshot), opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		lister:   lister,
		sink:     sink,
		log:      zerolog.Nop(),
		ctx:      ctx,
		cancel:   cancel,
		debounce: debounce.New(searchDebounce),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close stops in-flight fetches. Pending debounced searches still fire but
// their fetches abort immediately.
func (c *Controller) Close() {
	c.cancel()
}

// Params returns the current selection. Filter changes are visible here
// immediately, before any debounced fetch runs.
func (c *Controller) Params() catalog.ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetSearch updates the search text. The page resets to 1 at once; the
// fetch waits out the debounce interval so a typing burst costs one request.
func (c *Controller) SetSearch(search string) {
	c.mu.Lock()
	if c.params.Search == search {
		c.mu.Unlock()
		return
	}
	c.params.Search = search
	c.params.Page = 1
	c.gen++
	c.mu.Unlock()

	c.debounce(func() { c.fetch() })
}

// SetGenre updates the genre filter and refetches.
func (c *Controller) SetGenre(genre string) {
	c.setFilter(func(p *catalog.ListParams) { p.Genre = genre })
}

// SetBookType updates the book-type filter and refetches.
func (c *Controller) SetBookType(bookType string) {
	c.setFilter(func(p *catalog.ListParams) { p.BookType = bookType })
}

// SetOrdering updates the sort order and refetches.
func (c *Controller) SetOrdering(ordering string) {
	c.setFilter(func(p *catalog.ListParams) { p.Ordering = ordering })
}

// setFilter applies a non-search filter change: page back to 1, new
// generation, immediate fetch. A no-op change is ignored, same as SetSearch.
func (c *Controller) setFilter(apply func(*catalog.ListParams)) {
	c.mu.Lock()
	next := c.params
	apply(&next)
	if next == c.params {
		c.mu.Unlock()
		return
	}
	next.Page = 1
	c.params = next
	c.gen++
	c.mu.Unlock()

	go c.fetch()
}

// SetPage moves to the given page without touching filters.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	c.params.Page = page
	c.gen++
	c.mu.Unlock()

	go c.fetch()
}

// Refresh refetches the current selection.
func (c *Controller) Refresh() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()

	go c.fetch()
}

// fetch loads the page for the selection current at call time. A result is
// dropped when the selection moved on while the request was in flight.
func (c *Controller) fetch() {
	c.mu.Lock()
	gen := c.gen
	params := c.params
	loading := Snapshot{Params: params, Page: c.last, HasPage: c.hasLast, Loading: true}
	c.mu.Unlock()
	c.emit(loading)

	page, err := c.lister.Books(c.ctx, params)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug().Str("search", params.Search).Int("page", params.Page).Msg("dropping superseded result")
		return
	}
	var out Snapshot
	if err != nil {
		out = Snapshot{Params: params, Page: c.last, HasPage: c.hasLast, Err: err}
	} else {
		c.last = page
		c.hasLast = true
		out = Snapshot{Params: params, Page: page, HasPage: true}
	}
	c.mu.Unlock()
	c.emit(out)
}

func (c *Controller) emit(s Snapshot) {
	if c.sink != nil {
		c.sink(s)
	}
}
