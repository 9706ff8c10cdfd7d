package catalog

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/adna-tk/book-explorer/internal/api"
	"github.com/adna-tk/book-explorer/internal/auth"
	"github.com/adna-tk/book-explorer/internal/querycache"
	"github.com/adna-tk/book-explorer/internal/stubapi"
	"github.com/adna-tk/book-explorer/internal/tokenstore"
)

type fixture struct {
	stub    *stubapi.Server
	auth    *auth.Manager
	catalog *Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stub := stubapi.New(stubapi.Config{})
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	tokens := tokenstore.NewMemory()
	cache := querycache.New()
	client := api.New(srv.URL, tokens)
	mgr := auth.New(client, tokens, cache)

	cat := New(client, cache, WithAuthGate(mgr.IsAuthenticated))
	return &fixture{stub: stub, auth: mgr, catalog: cat}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	if _, err := f.auth.Login(context.Background(), "john.doe@mail.com", "JohnDoe123"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestBooksPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.catalog.Books(ctx, ListParams{})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if page.Count != 14 {
		t.Errorf("count = %d, want 14", page.Count)
	}
	if len(page.Results) != 12 {
		t.Errorf("results = %d, want 12", len(page.Results))
	}
	if page.TotalPages != 2 {
		t.Errorf("total_pages = %d, want 2", page.TotalPages)
	}
	if page.CurrentPage != 1 {
		t.Errorf("current_page = %d, want 1", page.CurrentPage)
	}

	// Default order is title: "A Wizard of Earthsea" sorts first.
	if got := page.Results[0].Title; got != "A Wizard of Earthsea" {
		t.Errorf("first title = %q", got)
	}

	page2, err := f.catalog.Books(ctx, ListParams{Page: 2})
	if err != nil {
		t.Fatalf("Books page 2: %v", err)
	}
	if len(page2.Results) != 2 {
		t.Errorf("page 2 results = %d, want 2", len(page2.Results))
	}
}

func TestBooksCachedPerFilterCombination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fetch := func(p ListParams) {
		t.Helper()
		if _, err := f.catalog.Books(ctx, p); err != nil {
			t.Fatalf("Books(%+v): %v", p, err)
		}
	}

	fetch(ListParams{})
	fetch(ListParams{}) // same combination, within the staleness window
	if got := f.stub.Hits("books"); got != 1 {
		t.Errorf("hits after repeat = %d, want 1", got)
	}

	fetch(ListParams{Genre: "sci_fi"})
	fetch(ListParams{Genre: "sci_fi", Page: 2})
	fetch(ListParams{Genre: "sci_fi"}) // back to a combination already seen
	if got := f.stub.Hits("books"); got != 3 {
		t.Errorf("hits after filter changes = %d, want 3", got)
	}

	// Page 0 and page 1 are the same entry.
	fetch(ListParams{Page: 0})
	if got := f.stub.Hits("books"); got != 3 {
		t.Errorf("hits after page 0 = %d, want 3", got)
	}
}

func TestBooksFiltersAndOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	scifi, err := f.catalog.Books(ctx, ListParams{Genre: "sci_fi"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if scifi.Count != 4 {
		t.Errorf("sci_fi count = %d, want 4", scifi.Count)
	}
	for _, b := range scifi.Results {
		if b.Genre != "sci_fi" {
			t.Errorf("book %q genre = %q", b.Title, b.Genre)
		}
	}

	leguin, err := f.catalog.Books(ctx, ListParams{Search: "le guin"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if leguin.Count != 3 {
		t.Errorf("search count = %d, want 3", leguin.Count)
	}

	newest, err := f.catalog.Books(ctx, ListParams{Ordering: "-published_year"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if got := newest.Results[0].Title; got != "Atomic Habits" {
		t.Errorf("newest first = %q, want Atomic Habits", got)
	}

	combined, err := f.catalog.Books(ctx, ListParams{Genre: "fiction", BookType: "short_stories"})
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if combined.Count != 1 || combined.Results[0].Title != "Interpreter of Maladies" {
		t.Errorf("combined filter = %+v", combined.Results)
	}
}

func TestBooksInvalidPage(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Books(context.Background(), ListParams{Page: 9})
	var nf *api.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestBookDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	book, err := f.catalog.Book(ctx, 3)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if book.Title != "Dune" {
		t.Errorf("title = %q", book.Title)
	}
	if book.Description == "" {
		t.Error("detail view should carry the description")
	}

	if _, err := f.catalog.Book(ctx, 3); err != nil {
		t.Fatalf("Book cached: %v", err)
	}
	if got := f.stub.Hits("book_detail"); got != 1 {
		t.Errorf("detail hits = %d, want 1", got)
	}

	_, err = f.catalog.Book(ctx, 999)
	var nf *api.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("missing book err = %v, want NotFoundError", err)
	}
}

func TestChoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	choices, err := f.catalog.Choices(ctx)
	if err != nil {
		t.Fatalf("Choices: %v", err)
	}
	if len(choices.Genres) != 5 || len(choices.BookTypes) != 4 {
		t.Errorf("choices = %d genres, %d types", len(choices.Genres), len(choices.BookTypes))
	}
	if choices.Genres[0].Value != "fiction" || choices.Genres[0].Label != "Fiction" {
		t.Errorf("first genre = %+v", choices.Genres[0])
	}

	if _, err := f.catalog.Choices(ctx); err != nil {
		t.Fatalf("Choices cached: %v", err)
	}
	if got := f.stub.Hits("choices"); got != 1 {
		t.Errorf("choices hits = %d, want 1", got)
	}
}

func TestNotesRequireLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.Notes(context.Background(), 1)
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("err = %v, want ErrLoginRequired", err)
	}
	if got := f.stub.Hits("notes"); got != 0 {
		t.Errorf("gated query reached the network, hits = %d", got)
	}
}

func TestNotesRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	notes, err := f.catalog.Notes(ctx, 1)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("fresh book has %d notes", len(notes))
	}

	created, err := f.catalog.AddNote(ctx, 1, "start with chapter two")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if created.Book != 1 || created.Text != "start with chapter two" {
		t.Errorf("created = %+v", created)
	}

	// The mutation invalidated the cached list, so this read refetches.
	notes, err = f.catalog.Notes(ctx, 1)
	if err != nil {
		t.Fatalf("Notes after add: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != created.ID {
		t.Fatalf("notes after add = %+v", notes)
	}
	if got := f.stub.Hits("notes"); got != 2 {
		t.Errorf("notes hits = %d, want 2", got)
	}

	updated, err := f.catalog.UpdateNote(ctx, created.ID, "actually chapter three")
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Text != "actually chapter three" {
		t.Errorf("updated text = %q", updated.Text)
	}
	notes, err = f.catalog.Notes(ctx, 1)
	if err != nil {
		t.Fatalf("Notes after update: %v", err)
	}
	if len(notes) != 1 || notes[0].Text != "actually chapter three" {
		t.Errorf("notes after update = %+v", notes)
	}

	if err := f.catalog.DeleteNote(ctx, created.ID, 1); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	notes, err = f.catalog.Notes(ctx, 1)
	if err != nil {
		t.Fatalf("Notes after delete: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("notes after delete = %+v", notes)
	}
}

func TestNotesMissingBook(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.catalog.AddNote(context.Background(), 999, "ghost note")
	var nf *api.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestNotesOwnership(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	created, err := f.catalog.AddNote(ctx, 2, "john's private note")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	if _, err := f.auth.Login(ctx, "jane.smith@mail.com", "JaneSmith123"); err != nil {
		t.Fatalf("login jane: %v", err)
	}

	notes, err := f.catalog.Notes(ctx, 2)
	if err != nil {
		t.Fatalf("Notes as jane: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("jane can see john's notes: %+v", notes)
	}

	_, err = f.catalog.UpdateNote(ctx, created.ID, "hijacked")
	var nf *api.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("cross-user update err = %v, want NotFoundError", err)
	}
}
