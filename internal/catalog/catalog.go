// Package catalog provides the typed query accessors for books, filter
// choices and notes. Each accessor declares its cache key, staleness and
// gating; fetching goes through the shared API client and caching through
// the server-state cache.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/adna-tk/book-explorer/internal/api"
	"github.com/adna-tk/book-explorer/internal/querycache"
)

const (
	// booksStaleTime keeps a visited page/filter combination servable
	// without a network call for a short window, e.g. when the user pages
	// forward and immediately back.
	booksStaleTime = 30 * time.Second

	// choicesStaleTime: the filter enumerations are static server-side, so
	// one fetch per hour is plenty.
	choicesStaleTime = time.Hour
)

func bookKey(id int) querycache.Key {
	return querycache.NewKey("books", "detail", strconv.Itoa(id))
}

func notesKey(bookID int) querycache.Key {
	return querycache.NewKey("notes", strconv.Itoa(bookID))
}

var choicesKey = querycache.NewKey("books", "choices")

// Catalog is the typed data-access layer for the book collection.
type Catalog struct {
	client *api.Client
	cache  *querycache.Cache
	authed func() bool
	log    zerolog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

// WithAuthGate sets the predicate gating authenticated queries (notes).
// Without it those queries are always enabled.
func WithAuthGate(authed func() bool) Option {
	return func(c *Catalog) { c.authed = authed }
}

// New creates a catalog over the given client and cache.
func New(client *api.Client, cache *querycache.Cache, opts ...Option) *Catalog {
	c := &Catalog{
		client: client,
		cache:  cache,
		authed: func() bool { return true },
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Books fetches one page of the catalog for the given filters.
func (c *Catalog) Books(ctx context.Context, p ListParams) (Page[Book], error) {
	return querycache.ReadAs(ctx, c.cache, p.cacheKey(), querycache.Options{
		StaleTime: booksStaleTime,
	}, func(ctx context.Context) (Page[Book], error) {
		var page Page[Book]
		if err := c.client.Do(ctx, http.MethodGet, "/books/", p.query(), nil, &page); err != nil {
			return Page[Book]{}, err
		}
		return page, nil
	})
}

// Book fetches a single book with its full description.
func (c *Catalog) Book(ctx context.Context, id int) (Book, error) {
	return querycache.ReadAs(ctx, c.cache, bookKey(id), querycache.Options{
		StaleTime: booksStaleTime,
	}, func(ctx context.Context) (Book, error) {
		var book Book
		path := fmt.Sprintf("/books/%d/", id)
		if err := c.client.Do(ctx, http.MethodGet, path, nil, nil, &book); err != nil {
			return Book{}, err
		}
		return book, nil
	})
}

// Choices fetches the genre and book-type enumerations.
func (c *Catalog) Choices(ctx context.Context) (Choices, error) {
	return querycache.ReadAs(ctx, c.cache, choicesKey, querycache.Options{
		StaleTime: choicesStaleTime,
	}, func(ctx context.Context) (Choices, error) {
		var choices Choices
		if err := c.client.Do(ctx, http.MethodGet, "/books/choices/", nil, nil, &choices); err != nil {
			return Choices{}, err
		}
		return choices, nil
	})
}
