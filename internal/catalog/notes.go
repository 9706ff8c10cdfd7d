package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/adna-tk/book-explorer/internal/querycache"
)

// ErrLoginRequired is returned by note accessors when no session is active.
var ErrLoginRequired = errors.New("login required for notes")

// Notes lists the current user's notes for a book. The query is skipped
// entirely when not authenticated.
func (c *Catalog) Notes(ctx context.Context, bookID int) ([]Note, error) {
	notes, err := querycache.ReadAs(ctx, c.cache, notesKey(bookID), querycache.Options{
		Disabled: !c.authed(),
	}, func(ctx context.Context) ([]Note, error) {
		var notes []Note
		path := fmt.Sprintf("/books/%d/notes/", bookID)
		if err := c.client.Do(ctx, http.MethodGet, path, nil, nil, &notes); err != nil {
			return nil, err
		}
		return notes, nil
	})
	if errors.Is(err, querycache.ErrDisabled) {
		return nil, ErrLoginRequired
	}
	return notes, err
}

// AddNote creates a note on a book and invalidates that book's cached notes
// so the next read observes server truth.
func (c *Catalog) AddNote(ctx context.Context, bookID int, text string) (Note, error) {
	return querycache.MutateAs(ctx, c.cache, func(ctx context.Context) (Note, error) {
		var note Note
		path := fmt.Sprintf("/books/%d/notes/", bookID)
		if err := c.client.Do(ctx, http.MethodPost, path, nil, map[string]string{"note": text}, &note); err != nil {
			return Note{}, err
		}
		return note, nil
	}, notesKey(bookID))
}

// UpdateNote rewrites a note's text. The owning book comes back in the
// response, which drives the invalidation.
func (c *Catalog) UpdateNote(ctx context.Context, noteID int, text string) (Note, error) {
	var note Note
	path := fmt.Sprintf("/books/notes/%d/", noteID)
	if err := c.client.Do(ctx, http.MethodPut, path, nil, map[string]string{"note": text}, &note); err != nil {
		return Note{}, err
	}

	c.cache.Invalidate(notesKey(note.Book))
	c.log.Debug().Int("note", noteID).Int("book", note.Book).Msg("note updated")
	return note, nil
}

// DeleteNote removes a note and invalidates the book's cached notes.
func (c *Catalog) DeleteNote(ctx context.Context, noteID, bookID int) error {
	_, err := c.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		path := fmt.Sprintf("/books/notes/%d/", noteID)
		return nil, c.client.Do(ctx, http.MethodDelete, path, nil, nil, nil)
	}, notesKey(bookID))
	return err
}
