package stubapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func noteJSON(n noteRecord) map[string]any {
	return map[string]any{
		"id":         n.ID,
		"book":       n.BookID,
		"note":       n.Text,
		"created_at": n.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type notePayload struct {
	Text string `json:"note"`
}

// handleListNotes implements GET /books/{id}/notes/, returning the calling
// user's notes for that book, newest first.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	s.hit("notes")

	user := requestUser(r)
	bookID, err := strconv.Atoi(chi.URLParam(r, "bookID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Book not found.")
		return
	}
	if _, found := s.bookByID(bookID); !found {
		writeError(w, http.StatusNotFound, "Book not found.")
		return
	}

	s.mu.Lock()
	notes := make([]noteRecord, 0)
	for _, n := range s.notes {
		if n.BookID == bookID && n.UserID == user.ID {
			notes = append(notes, n)
		}
	}
	s.mu.Unlock()

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})

	out := make([]map[string]any, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteJSON(n))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateNote implements POST /books/{id}/notes/.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	s.hit("note_create")

	user := requestUser(r)
	bookID, err := strconv.Atoi(chi.URLParam(r, "bookID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Book not found.")
		return
	}
	if _, found := s.bookByID(bookID); !found {
		writeError(w, http.StatusNotFound, "Book not found.")
		return
	}

	var payload notePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Text == "" {
		writeError(w, http.StatusBadRequest, "This field is required.")
		return
	}

	now := time.Now()
	s.mu.Lock()
	n := noteRecord{
		ID:        s.nextNote,
		BookID:    bookID,
		UserID:    user.ID,
		Text:      payload.Text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextNote++
	s.notes[n.ID] = n
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, noteJSON(n))
}

// handleUpdateNote implements PUT /books/notes/{id}/. Notes belong to their
// author; other users get a 404, not a 403, so note IDs are not probeable.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	s.hit("note_update")

	user := requestUser(r)
	noteID, err := strconv.Atoi(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found.")
		return
	}

	var payload notePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Text == "" {
		writeError(w, http.StatusBadRequest, "This field is required.")
		return
	}

	s.mu.Lock()
	n, found := s.notes[noteID]
	if !found || n.UserID != user.ID {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Note not found.")
		return
	}
	n.Text = payload.Text
	n.UpdatedAt = time.Now()
	s.notes[noteID] = n
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, noteJSON(n))
}

// handleDeleteNote implements DELETE /books/notes/{id}/.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	s.hit("note_delete")

	user := requestUser(r)
	noteID, err := strconv.Atoi(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found.")
		return
	}

	s.mu.Lock()
	n, found := s.notes[noteID]
	if !found || n.UserID != user.ID {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Note not found.")
		return
	}
	delete(s.notes, n.ID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
