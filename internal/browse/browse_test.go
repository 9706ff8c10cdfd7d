package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adna-tk/book-explorer/internal/catalog"
)

// fakeLister records calls and answers them via fn, which tests swap out
// to inject pages, errors and delays.
type fakeLister struct {
	mu    sync.Mutex
	calls []catalog.ListParams
	fn    func(ctx context.Context, p catalog.ListParams) (catalog.Page[catalog.Book], error)
}

func (f *fakeLister) Books(ctx context.Context, p catalog.ListParams) (catalog.Page[catalog.Book], error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return pageOf(p, "default"), nil
	}
	return fn(ctx, p)
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLister) lastCall(t *testing.T) catalog.ListParams {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no calls recorded")
	}
	return f.calls[len(f.calls)-1]
}

func pageOf(p catalog.ListParams, title string) catalog.Page[catalog.Book] {
	return catalog.Page[catalog.Book]{
		Count:       1,
		CurrentPage: p.Page,
		TotalPages:  1,
		Results:     []catalog.Book{{ID: 1, Title: title}},
	}
}

// sinkChan buffers enough that the controller never blocks on emit.
func sinkChan() (chan Snapshot, func(Snapshot)) {
	ch := make(chan Snapshot, 64)
	return ch, func(s Snapshot) { ch <- s }
}

// waitFor pulls snapshots until pred matches or the deadline hits.
func waitFor(t *testing.T, ch chan Snapshot, pred func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if pred(s) {
				return s
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func settled(s Snapshot) bool { return !s.Loading }

func TestSearchDebounceCollapsesBursts(t *testing.T) {
	lister := &fakeLister{}
	ch, sink := sinkChan()
	c := New(lister, sink, WithDebounceInterval(30*time.Millisecond))
	defer c.Close()

	c.SetSearch("d")
	c.SetSearch("du")
	c.SetSearch("dun")
	c.SetSearch("dune")

	waitFor(t, ch, settled)
	if got := lister.callCount(); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	if got := lister.lastCall(t); got.Search != "dune" || got.Page != 1 {
		t.Errorf("fetched params = %+v", got)
	}
}

func TestFilterChangeResetsPageSynchronously(t *testing.T) {
	lister := &fakeLister{}
	_, sink := sinkChan()
	c := New(lister, sink, WithDebounceInterval(time.Hour))
	defer c.Close()

	c.SetPage(3)
	if got := c.Params().Page; got != 3 {
		t.Fatalf("page = %d, want 3", got)
	}

	c.SetGenre("fantasy")
	if got := c.Params(); got.Page != 1 || got.Genre != "fantasy" {
		t.Errorf("params after genre change = %+v", got)
	}

	c.SetPage(2)
	c.SetSearch("wizard")
	if got := c.Params().Page; got != 1 {
		t.Errorf("page after search change = %d, want 1", got)
	}

	c.SetPage(2)
	c.SetOrdering("-published_year")
	if got := c.Params().Page; got != 1 {
		t.Errorf("page after ordering change = %d, want 1", got)
	}
}

func TestNoOpFilterChangeIsIgnored(t *testing.T) {
	lister := &fakeLister{}
	ch, sink := sinkChan()
	c := New(lister, sink, WithDebounceInterval(time.Hour))
	defer c.Close()

	c.SetGenre("fantasy")
	waitFor(t, ch, settled)
	c.SetPage(2)
	waitFor(t, ch, settled)
	fetches := lister.callCount()

	// Re-selecting the current value must not reset the page or refetch.
	c.SetGenre("fantasy")
	c.SetBookType("")
	c.SetOrdering("")
	c.SetSearch("")

	time.Sleep(50 * time.Millisecond)
	if got := c.Params().Page; got != 2 {
		t.Errorf("page = %d after no-op changes, want 2", got)
	}
	if got := lister.callCount(); got != fetches {
		t.Errorf("fetches = %d after no-op changes, want %d", got, fetches)
	}
}

func TestSupersededResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	lister := &fakeLister{}
	lister.fn = func(ctx context.Context, p catalog.ListParams) (catalog.Page[catalog.Book], error) {
		if p.Genre == "fiction" {
			<-release
			return pageOf(p, "slow fiction"), nil
		}
		return pageOf(p, "fast fantasy"), nil
	}

	ch, sink := sinkChan()
	c := New(lister, sink)
	defer c.Close()

	c.SetGenre("fiction")
	// Let the slow fetch start before superseding it.
	waitFor(t, ch, func(s Snapshot) bool { return s.Loading && s.Params.Genre == "fiction" })

	c.SetGenre("fantasy")
	got := waitFor(t, ch, settled)
	if got.Params.Genre != "fantasy" || got.Page.Results[0].Title != "fast fantasy" {
		t.Fatalf("settled snapshot = %+v", got)
	}

	close(release)
	// The fiction result must never surface.
	select {
	case s := <-ch:
		if !s.Loading && s.Params.Genre == "fiction" {
			t.Errorf("superseded result emitted: %+v", s)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestErrorKeepsPreviousPage(t *testing.T) {
	lister := &fakeLister{}
	ch, sink := sinkChan()
	c := New(lister, sink)
	defer c.Close()

	c.SetGenre("sci_fi")
	first := waitFor(t, ch, settled)
	if !first.HasPage || first.Err != nil {
		t.Fatalf("first snapshot = %+v", first)
	}

	wantErr := errors.New("backend down")
	lister.mu.Lock()
	lister.fn = func(ctx context.Context, p catalog.ListParams) (catalog.Page[catalog.Book], error) {
		return catalog.Page[catalog.Book]{}, wantErr
	}
	lister.mu.Unlock()

	c.SetPage(2)
	failed := waitFor(t, ch, settled)
	if !errors.Is(failed.Err, wantErr) {
		t.Fatalf("err = %v, want %v", failed.Err, wantErr)
	}
	if !failed.HasPage || len(failed.Page.Results) == 0 {
		t.Error("error snapshot dropped the previous page")
	}
}

func TestLoadingSnapshotCarriesPreviousPage(t *testing.T) {
	lister := &fakeLister{}
	ch, sink := sinkChan()
	c := New(lister, sink)
	defer c.Close()

	c.SetGenre("fantasy")
	waitFor(t, ch, settled)

	c.SetPage(2)
	loading := waitFor(t, ch, func(s Snapshot) bool { return s.Loading && s.Params.Page == 2 })
	if !loading.HasPage {
		t.Error("loading snapshot should keep the previous page visible")
	}
}
