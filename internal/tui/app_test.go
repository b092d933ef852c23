package tui

import (
	"context"
	"os"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/thoth-catalogue/internal/route"
	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

func TestMain(m *testing.M) {
	log.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

type fakeWorks struct {
	mu    sync.Mutex
	err   error
	calls []uuid.UUID
}

func (f *fakeWorks) FetchWork(_ context.Context, id uuid.UUID) (catalogue.WorkPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.err != nil {
		return catalogue.WorkPayload{}, f.err
	}
	return catalogue.WorkPayload{Work: &catalogue.Work{
		WorkID:       id,
		Title:        "Open Access",
		Subtitle:     "A Reader",
		WorkStatus:   catalogue.WorkStatusForthcoming,
		LongAbstract: "A short **history** of open access publishing.",
	}}, nil
}

func (f *fakeWorks) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeWorks) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// updateApp drives the shell and follows navigation like the tea runtime.
func updateApp(a *App, msg tea.Msg) (*App, tea.Cmd) {
	m, cmd := a.Update(msg)
	return m.(*App), cmd
}

func drive(a *App, cmd tea.Cmd) *App {
	for {
		var nav []tea.Msg
		a, nav = pump(a, cmd, updateApp)
		if len(nav) == 0 {
			return a
		}
		var cmds []tea.Cmd
		for _, msg := range nav {
			var c tea.Cmd
			a, c = updateApp(a, msg)
			cmds = append(cmds, c)
		}
		cmd = tea.Batch(cmds...)
	}
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func newTestApp(t *testing.T, start string) (*App, *fakeBooks, *fakeWorks) {
	t.Helper()
	books := &fakeBooks{total: 45}
	works := &fakeWorks{}
	a := NewApp(context.Background(), AppConfig{
		Listing:    listing.Config{PageSize: 20},
		Books:      books,
		Works:      works,
		ExportBase: "https://export.thoth.pub",
		Styles:     PlainStyles(),
		Start:      start,
	})
	a, _ = updateApp(a, tea.WindowSizeMsg{Width: 160, Height: 50})
	a = drive(a, a.Init())
	return a, books, works
}

func TestApp_HomeRedirectsToBooks(t *testing.T) {
	a, books, _ := newTestApp(t, "/")

	assert.Equal(t, route.ToBooks(), a.Route())
	assert.Equal(t, 1, books.count())
	assert.Equal(t, fetch.Fetched, a.Books().State().Fetch.Status())

	view := a.View()
	assert.Contains(t, view, "Thoth")
	assert.Contains(t, view, "Displaying books 1–20 of 45")
}

func TestApp_OpenBookAndReturn(t *testing.T) {
	a, books, works := newTestApp(t, "/books")

	a = drive(a, send(keyMsg("n")))
	require.Equal(t, 20, a.Books().State().Window.Offset)

	a = drive(a, send(keyMsg("enter")))
	require.Equal(t, route.BookDetail, a.Route().Kind)
	assert.Equal(t, workID(20), a.Route().ID)
	require.Equal(t, 1, works.callCount())

	d, ok := a.Detail()
	require.True(t, ok)
	assert.Equal(t, fetch.Fetched, d.Status())
	assert.Equal(t, "Open Access: A Reader", d.Title())
	assert.Contains(t, d.Content(), "Open Access: A Reader")
	assert.Contains(t, d.Content(), "history")
	assert.Contains(t, d.Content(), "specifications/csv::thoth/work/"+workID(20).String())

	view := a.View()
	assert.Contains(t, view, "Books › Open Access: A Reader")
	assert.Contains(t, view, "Forthcoming")

	fetches := books.count()
	a = drive(a, send(keyMsg("esc")))
	assert.Equal(t, route.ToBooks(), a.Route())
	assert.Equal(t, fetches, books.count(), "the listing keeps its page")
	assert.Equal(t, 20, a.Books().State().Window.Offset)
	_, ok = a.Detail()
	assert.False(t, ok)
}

func TestApp_StartOnDetail(t *testing.T) {
	id := uuid.MustParse("e0f748b2-984f-45cc-8b9e-13989c31dda4")
	a, books, works := newTestApp(t, "/books/"+id.String())

	assert.Equal(t, route.ToBook(id), a.Route())
	assert.Equal(t, 0, books.count())
	assert.Equal(t, []uuid.UUID{id}, works.calls)
}

func TestApp_DetailFailureAndReload(t *testing.T) {
	id := uuid.MustParse("e0f748b2-984f-45cc-8b9e-13989c31dda4")
	books := &fakeBooks{total: 1}
	works := &fakeWorks{err: catalogue.ErrWorkNotFound}
	a := NewApp(context.Background(), AppConfig{
		Books:  books,
		Works:  works,
		Styles: PlainStyles(),
		Start:  "/books/" + id.String(),
	})
	a = drive(a, a.Init())

	d, ok := a.Detail()
	require.True(t, ok)
	assert.Equal(t, fetch.Failed, d.Status())
	assert.Contains(t, a.View(), "No record was found for the given ID.")

	works.setErr(nil)
	a = drive(a, send(keyMsg("r")))
	d, _ = a.Detail()
	assert.Equal(t, fetch.Fetched, d.Status())
	assert.Equal(t, 2, works.callCount())
}

func TestApp_UnknownRoute(t *testing.T) {
	a, books, _ := newTestApp(t, "/authors")

	assert.Equal(t, route.Error, a.Route().Kind)
	assert.Contains(t, a.View(), "Page not found")
	assert.Equal(t, 0, books.count())

	a = drive(a, send(keyMsg("x")))
	assert.Equal(t, route.ToBooks(), a.Route())
	assert.Equal(t, 1, books.count())
}

func TestApp_NotImplemented(t *testing.T) {
	a, _, _ := newTestApp(t, "/not-implemented")

	assert.Equal(t, route.NotImplemented, a.Route().Kind)
	assert.Contains(t, a.View(), "not implemented")
}

func TestApp_Quit(t *testing.T) {
	a, _, _ := newTestApp(t, "/books")

	_, cmd := a.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_QWhileSearchingIsText(t *testing.T) {
	a, _, _ := newTestApp(t, "/books")

	a, _ = updateApp(a, keyMsg("/"))
	a, cmd := updateApp(a, keyMsg("q"))

	assert.Equal(t, "q", a.Books().State().Search)
	if cmd != nil {
		for _, msg := range exec(cmd) {
			assert.NotEqual(t, tea.QuitMsg{}, msg)
		}
	}
}

func TestApp_StaleDetailResponseIgnored(t *testing.T) {
	a, _, _ := newTestApp(t, "/books")

	// A response for a page that is no longer shown is dropped.
	a, _ = updateApp(a, workLoadedMsg{seq: 1})
	_, ok := a.Detail()
	assert.False(t, ok)
	assert.Equal(t, route.ToBooks(), a.Route())
}

func TestApp_ResponseFromEarlierVisitIgnored(t *testing.T) {
	a, _, works := newTestApp(t, "/books")
	id := workID(3)

	// First visit: the request fails, but its response is still in flight
	// when the user goes back.
	works.setErr(catalogue.ErrWorkNotFound)
	a, cmd := updateApp(a, NavigateMsg{Route: route.ToBook(id)})
	var earlier tea.Msg
	for _, msg := range exec(cmd) {
		if _, ok := msg.(workLoadedMsg); ok {
			earlier = msg
		}
	}
	require.NotNil(t, earlier)
	a = drive(a, send(keyMsg("esc")))
	require.Equal(t, route.ToBooks(), a.Route())

	// Second visit of the same work loads normally.
	works.setErr(nil)
	a = drive(a, send(NavigateMsg{Route: route.ToBook(id)}))
	d, ok := a.Detail()
	require.True(t, ok)
	require.Equal(t, fetch.Fetched, d.Status())

	a, _ = updateApp(a, earlier)
	d, ok = a.Detail()
	require.True(t, ok)
	assert.Equal(t, fetch.Fetched, d.Status())
	assert.Equal(t, "Open Access: A Reader", d.Title())
	assert.Equal(t, 2, works.callCount())
}
