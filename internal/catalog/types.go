package catalog

import (
	"net/url"
	"strconv"
	"time"

	"github.com/adna-tk/book-explorer/internal/querycache"
)

// Book is an immutable snapshot from the server. The client never mutates
// books, it only refetches them.
type Book struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	BookType      string `json:"book_type"`
	PublishedYear int    `json:"published_year"`
	CoverImage    string `json:"cover_image,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Note is a personal note attached to a book, owned by the server.
type Note struct {
	ID        int       `json:"id"`
	Book      int       `json:"book"`
	Text      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Choice is one selectable value for a filter dropdown.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Choices holds the server-defined filter enumerations.
type Choices struct {
	Genres    []Choice `json:"genres"`
	BookTypes []Choice `json:"book_types"`
}

// Page is the server's pagination envelope.
type Page[T any] struct {
	Count       int     `json:"count"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	PageSize    int     `json:"page_size"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	Results     []T     `json:"results"`
}

// ListParams are the books list filters. The zero value lists the first
// page of everything in default (title) order.
type ListParams struct {
	Search   string
	Genre    string
	BookType string
	Ordering string
	Page     int
	PageSize int
}

// normalized clamps the page number so that page 0 and page 1 address the
// same cache entry.
func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

func (p ListParams) query() url.Values {
	p = p.normalized()
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Genre != "" {
		q.Set("genre", p.Genre)
	}
	if p.BookType != "" {
		q.Set("book_type", p.BookType)
	}
	if p.Ordering != "" {
		q.Set("ordering", p.Ordering)
	}
	q.Set("page", strconv.Itoa(p.Page))
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return q
}

// cacheKey includes every filter, sort and page parameter so each distinct
// combination is its own cache entry.
func (p ListParams) cacheKey() querycache.Key {
	p = p.normalized()
	params := map[string]string{
		"search":    p.Search,
		"genre":     p.Genre,
		"book_type": p.BookType,
		"ordering":  p.Ordering,
		"page":      strconv.Itoa(p.Page),
	}
	if p.PageSize > 0 {
		params["page_size"] = strconv.Itoa(p.PageSize)
	}
	return querycache.NewKey("books", "list").WithParams(params)
}
