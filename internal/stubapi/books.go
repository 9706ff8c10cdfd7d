package stubapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type bookRecord struct {
	ID            int
	Title         string
	Author        string
	Genre         string
	BookType      string
	PublishedYear int
	Description   string
	CreatedAt     time.Time
}

// listJSON renders a book for the list view. Like the real backend, the
// description is deferred to the detail view.
func (b bookRecord) listJSON() map[string]any {
	return map[string]any{
		"id":             b.ID,
		"title":          b.Title,
		"author":         b.Author,
		"genre":          nullable(b.Genre),
		"book_type":      nullable(b.BookType),
		"published_year": b.PublishedYear,
	}
}

func (b bookRecord) detailJSON() map[string]any {
	out := b.listJSON()
	out["description"] = b.Description
	return out
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// handleListBooks implements GET /books/ with search, filters, ordering and
// pagination.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	s.hit("books")

	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	genre := q.Get("genre")
	bookType := q.Get("book_type")
	ordering := q.Get("ordering")

	s.mu.Lock()
	matched := make([]bookRecord, 0, len(s.books))
	for _, b := range s.books {
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author), search) {
			continue
		}
		if genre != "" && b.Genre != genre {
			continue
		}
		if bookType != "" && b.BookType != bookType {
			continue
		}
		matched = append(matched, b)
	}
	s.mu.Unlock()

	sortBooks(matched, ordering)

	pageSize := defaultPageSize
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 {
		pageSize = min(v, maxPageSize)
	}
	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page = v
	}

	totalPages := (len(matched) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 || page > totalPages {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(matched))
	results := make([]map[string]any, 0, end-start)
	for _, b := range matched[start:end] {
		results = append(results, b.listJSON())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(matched),
		"next":         nil,
		"previous":     nil,
		"page_size":    pageSize,
		"current_page": page,
		"total_pages":  totalPages,
		"results":      results,
	})
}

// sortBooks orders in place by the requested field, default title. A "-"
// prefix reverses the order, matching the backend's ordering parameter.
func sortBooks(books []bookRecord, ordering string) {
	field := ordering
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")

	less := func(a, b bookRecord) bool { return a.Title < b.Title }
	switch field {
	case "author":
		less = func(a, b bookRecord) bool { return a.Author < b.Author }
	case "published_year":
		less = func(a, b bookRecord) bool { return a.PublishedYear < b.PublishedYear }
	case "created_at":
		less = func(a, b bookRecord) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}

	sort.SliceStable(books, func(i, j int) bool {
		if desc {
			return less(books[j], books[i])
		}
		return less(books[i], books[j])
	})
}

// handleGetBook implements GET /books/{id}/.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	s.hit("book_detail")

	id, err := strconv.Atoi(chi.URLParam(r, "bookID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	book, ok := s.bookByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, book.detailJSON())
}

func (s *Server) bookByID(id int) (bookRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return bookRecord{}, false
}

// handleChoices implements GET /books/choices/.
func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	s.hit("choices")

	writeJSON(w, http.StatusOK, map[string]any{
		"genres": []map[string]string{
			{"value": "fiction", "label": "Fiction"},
			{"value": "fantasy", "label": "Fantasy"},
			{"value": "sci_fi", "label": "Science Fiction"},
			{"value": "biography", "label": "Biography"},
			{"value": "self_help", "label": "Self Help"},
		},
		"book_types": []map[string]string{
			{"value": "novel", "label": "Novel"},
			{"value": "short_stories", "label": "Short Stories"},
			{"value": "poetry", "label": "Poetry"},
			{"value": "non_fiction", "label": "Non-fiction"},
		},
	})
}
