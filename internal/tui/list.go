package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/thoth-catalogue/internal/route"
	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

// Column is a table column. Sortable columns send SortClicked with Field.
type Column[F comparable] struct {
	Title    string
	Width    int
	Field    F
	Sortable bool
}

// RowRenderer projects items into table rows.
type RowRenderer[T any, F comparable] interface {
	Columns() []Column[F]
	Row(item T) table.Row
	// Route is the navigation target of a selected item.
	Route(item T) route.Route
}

// ListText holds the user-facing strings of a listing.
type ListText struct {
	Reload      string
	Next        string
	Previous    string
	Loading     string
	Placeholder string
	Empty       string

	// Count formats the "Displaying X–Y of Z" summary.
	Count func(r listing.Range) string
}

func (t ListText) withDefaults() ListText {
	if t.Reload == "" {
		t.Reload = "Reload"
	}
	if t.Next == "" {
		t.Next = "Next"
	}
	if t.Previous == "" {
		t.Previous = "Previous"
	}
	if t.Loading == "" {
		t.Loading = "Loading…"
	}
	if t.Empty == "" {
		t.Empty = "Nothing found."
	}
	if t.Count == nil {
		t.Count = func(r listing.Range) string {
			return fmt.Sprintf("Displaying %d–%d of %d", r.First, r.Last, r.Total)
		}
	}
	return t
}

// NavigateMsg asks the shell to show another route.
type NavigateMsg struct {
	Route route.Route
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(r route.Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}

type listInitMsg struct{}

type listFetchedMsg[T any] struct {
	seq  uint64
	page listing.Page[T]
	err  error
}

type listCommitMsg struct {
	token uint64
}

// ListModel renders a paginated listing and drives its controller state.
// Effects of the reducer become commands: fetches run as tea.Cmd and search
// commits as tea.Tick.
type ListModel[T any, F comparable] struct {
	ctx      context.Context
	cfg      listing.Config
	state    listing.State[T, F]
	source   listing.Source[T, F]
	renderer RowRenderer[T, F]
	text     ListText

	table     table.Model
	search    textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      listKeyMap
	styles    Styles
	searching bool
	width     int
	height    int

	logger zerolog.Logger
}

// NewListModel creates a listing sorted by order. Its Init loads the first page.
func NewListModel[T any, F comparable](
	ctx context.Context,
	cfg listing.Config,
	order listing.Order[F],
	source listing.Source[T, F],
	renderer RowRenderer[T, F],
	text ListText,
	styles Styles,
) ListModel[T, F] {
	text = text.withDefaults()
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = listing.DefaultPageSize
	}

	ti := textinput.New()
	ti.Placeholder = text.Placeholder
	ti.Prompt = "🔍 "
	ti.CharLimit = 200
	ti.Width = 60
	ti.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner))

	m := ListModel[T, F]{
		ctx:      ctx,
		cfg:      cfg,
		state:    listing.NewState[T](order),
		source:   source,
		renderer: renderer,
		text:     text,
		search:   ti,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultListKeys(),
		styles:   styles,
		logger:   log.With().Str("component", "tui-list").Logger(),
	}
	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(pageSize+1),
		table.WithStyles(styles.Table),
	)
	return m
}

// Init implements tea.Model.
func (m ListModel[T, F]) Init() tea.Cmd {
	return func() tea.Msg { return listInitMsg{} }
}

// State returns the controller state.
func (m ListModel[T, F]) State() listing.State[T, F] {
	return m.state
}

// Searching reports whether the search box has focus.
func (m ListModel[T, F]) Searching() bool {
	return m.searching
}

// SetSize updates the layout.
func (m *ListModel[T, F]) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.search.Width = max(w-10, 20)
	m.table.SetWidth(w - 4)
	// Search box, pagination and help take about ten lines.
	m.table.SetHeight(max(h-10, 5))
	m.help.Width = w
}

// Update handles messages.
func (m ListModel[T, F]) Update(msg tea.Msg) (ListModel[T, F], tea.Cmd) {
	switch msg := msg.(type) {
	case listInitMsg:
		if m.state.Initialized {
			return m, nil
		}
		return m.apply(listing.Initialize{})

	case listFetchedMsg[T]:
		return m.apply(listing.Resolved[T]{Seq: msg.seq, Page: msg.page, Err: msg.err})

	case listCommitMsg:
		return m.apply(listing.SearchCommitted{Token: msg.token})

	case spinner.TickMsg:
		if !m.state.Fetch.IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m ListModel[T, F]) updateSearch(msg tea.KeyMsg) (ListModel[T, F], tea.Cmd) {
	if key.Matches(msg, m.keys.Done) {
		m.searching = false
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		var effects tea.Cmd
		m, effects = m.apply(listing.SearchChanged{Text: after})
		return m, tea.Batch(cmd, effects)
	}
	return m, cmd
}

func (m ListModel[T, F]) updateKeys(msg tea.KeyMsg) (ListModel[T, F], tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.table.Blur()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Next):
		return m.apply(listing.NextPage{})

	case key.Matches(msg, m.keys.Previous):
		return m.apply(listing.PreviousPage{})

	case key.Matches(msg, m.keys.Reload):
		return m.apply(listing.Reload{})

	case key.Matches(msg, m.keys.Sort):
		idx := int(msg.Runes[0] - '1')
		cols := m.renderer.Columns()
		if idx < 0 || idx >= len(cols) || !cols[idx].Sortable {
			return m, nil
		}
		return m.apply(listing.SortClicked[F]{Field: cols[idx].Field})

	case key.Matches(msg, m.keys.Open):
		item, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, Navigate(m.renderer.Route(item))

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the item under the cursor.
func (m ListModel[T, F]) Selected() (T, bool) {
	var zero T
	if m.state.Fetch.Status() != fetch.Fetched {
		return zero, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.state.Items) {
		return zero, false
	}
	return m.state.Items[i], true
}

// apply reduces ev and turns the resulting effects into commands.
func (m ListModel[T, F]) apply(ev listing.Event) (ListModel[T, F], tea.Cmd) {
	wasLoading := m.state.Fetch.IsLoading()

	next, effects := listing.Reduce(m.cfg, m.state, ev)
	m.state = next
	m.sync()

	listing.LogEvent[T, F](m.logger.Debug(), ev).
		Int("offset", next.Window.Offset).
		Str("fetch", next.Fetch.Status().String()).
		Int("effects", len(effects)).
		Msg("Listing event applied")

	var cmds []tea.Cmd
	for _, eff := range effects {
		switch e := eff.(type) {
		case listing.FetchEffect[F]:
			cmds = append(cmds, m.fetchCmd(e))
		case listing.ScheduleCommitEffect:
			cmds = append(cmds, commitCmd(e))
		}
	}
	if !wasLoading && m.state.Fetch.IsLoading() {
		cmds = append(cmds, m.spinner.Tick)
	}

	return m, tea.Batch(cmds...)
}

func (m ListModel[T, F]) fetchCmd(e listing.FetchEffect[F]) tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		page, err := source.Fetch(ctx, e.Query)
		return listFetchedMsg[T]{seq: e.Seq, page: page, err: err}
	}
}

func commitCmd(e listing.ScheduleCommitEffect) tea.Cmd {
	return tea.Tick(e.Delay, func(time.Time) tea.Msg {
		return listCommitMsg{token: e.Token}
	})
}

// sync copies the state into the widgets.
func (m *ListModel[T, F]) sync() {
	m.table.SetColumns(m.columns())

	rows := make([]table.Row, 0, len(m.state.Items))
	for _, item := range m.state.Items {
		rows = append(rows, m.renderer.Row(item))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// columns returns the renderer columns with the sort marker and key number.
func (m ListModel[T, F]) columns() []table.Column {
	cols := m.renderer.Columns()
	out := make([]table.Column, len(cols))
	for i, c := range cols {
		title := c.Title
		if c.Sortable {
			title = fmt.Sprintf("%d %s", i+1, title)
			if c.Field == m.state.Order.Field {
				if m.state.Order.Direction == listing.Desc {
					title += " ▼"
				} else {
					title += " ▲"
				}
			}
		}
		out[i] = table.Column{Title: title, Width: c.Width}
	}
	return out
}

// View renders the search box, the body for the fetch state and the
// pagination controls.
func (m ListModel[T, F]) View() string {
	var b strings.Builder

	b.WriteString(m.styles.SearchBox.Render(m.search.View()))
	b.WriteString("\n")
	b.WriteString(m.body())
	b.WriteString("\n")
	b.WriteString(m.pagination())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m ListModel[T, F]) body() string {
	switch m.state.Fetch.Status() {
	case fetch.Fetching:
		return fmt.Sprintf("%s %s", m.spinner.View(), m.text.Loading)
	case fetch.Fetched:
		if len(m.state.Items) == 0 {
			return m.styles.Muted.Render(m.text.Empty)
		}
		return m.table.View()
	case fetch.Failed:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Error.Render(m.state.Fetch.Err().Error()),
			m.reloadButton(),
		)
	default:
		return m.reloadButton()
	}
}

func (m ListModel[T, F]) reloadButton() string {
	return m.styles.Button.Render(m.text.Reload + " (r)")
}

func (m ListModel[T, F]) pagination() string {
	r := m.state.DisplayRange()
	count := m.text.Count(r)

	prev := m.styles.ButtonDisabled.Render(m.text.Previous)
	if m.state.CanPrevious() {
		prev = m.styles.Button.Render(m.text.Previous)
	}
	next := m.styles.ButtonDisabled.Render(m.text.Next)
	if m.state.CanNext() {
		next = m.styles.Button.Render(m.text.Next)
	}

	return m.styles.Pagination.Render(
		lipgloss.JoinHorizontal(lipgloss.Center, count, "  ", prev, " ", next),
	)
}
