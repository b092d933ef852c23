package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/thoth-catalogue/internal/route"
	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/detail"
	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
)

// workLoadedMsg carries the assembler that issued the request. Each visit of
// a detail page has its own assembler, so responses from an earlier visit
// of the same work never match.
type workLoadedMsg struct {
	assembler *detail.Assembler
	seq       uint64
	payload   catalogue.WorkPayload
	err       error
}

// DetailModel shows one work. The page is rendered as markdown through
// glamour into a scrolling viewport.
type DetailModel struct {
	ctx       context.Context
	assembler *detail.Assembler
	viewport  viewport.Model
	spinner   spinner.Model
	help      help.Model
	keys      detailKeyMap
	styles    Styles
	width     int
	height    int

	view    detail.View
	content string

	renderer      *glamour.TermRenderer
	rendererWidth int

	logger zerolog.Logger
}

// NewDetailModel creates the detail page of id. Its Init starts the fetch.
func NewDetailModel(ctx context.Context, source detail.Source, id uuid.UUID, exportBase string, styles Styles) DetailModel {
	return DetailModel{
		ctx:       ctx,
		assembler: detail.NewAssembler(source, id, exportBase),
		viewport:  viewport.New(80, 20),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner)),
		help:      help.New(),
		keys:      defaultDetailKeys(),
		styles:    styles,
		width:     80,
		height:    24,
		logger:    log.With().Str("component", "tui-detail").Str("work_id", id.String()).Logger(),
	}
}

// Init implements tea.Model.
func (m DetailModel) Init() tea.Cmd {
	return m.load()
}

// load starts a request on the shared assembler.
func (m DetailModel) load() tea.Cmd {
	seq := m.assembler.Start()
	a, ctx := m.assembler, m.ctx
	fetchCmd := func() tea.Msg {
		payload, err := a.Fetch(ctx)
		return workLoadedMsg{assembler: a, seq: seq, payload: payload, err: err}
	}
	return tea.Batch(fetchCmd, m.spinner.Tick)
}

// WorkID returns the work shown.
func (m DetailModel) WorkID() uuid.UUID {
	return m.assembler.WorkID()
}

// Status returns the fetch status of the work.
func (m DetailModel) Status() fetch.Status {
	return m.assembler.State().Status()
}

// Title returns the work title once loaded.
func (m DetailModel) Title() string {
	return m.view.Title
}

// SetSize updates the layout.
func (m *DetailModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = max(h-4, 3)
	m.help.Width = w
	if m.Status() == fetch.Fetched {
		m.render()
	}
}

// Update handles messages.
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case workLoadedMsg:
		if msg.assembler != m.assembler {
			m.logger.Debug().Uint64("seq", msg.seq).Msg("Dropping response of another page")
			return m, nil
		}
		m.assembler.Resolve(msg.seq, msg.payload, msg.err)
		if m.Status() == fetch.Fetched {
			v, err := m.assembler.View()
			if err != nil {
				m.logger.Error().Err(err).Msg("Projecting work failed")
				return m, nil
			}
			m.view = v
			m.render()
		}
		return m, nil

	case spinner.TickMsg:
		if m.Status() != fetch.Fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, Navigate(route.ToBooks())
		case key.Matches(msg, m.keys.Reload):
			if m.Status() == fetch.Failed {
				return m, m.load()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// render converts the view to terminal output.
func (m *DetailModel) render() {
	md := m.view.Markdown()

	out := md
	r, err := m.getRenderer()
	if err == nil {
		out, err = r.Render(md)
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("Markdown rendering failed, showing source")
		out = md
	}

	m.content = out
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}

func (m *DetailModel) getRenderer() (*glamour.TermRenderer, error) {
	wrap := min(max(m.width-4, 20), 120)
	if m.renderer != nil && m.rendererWidth == wrap {
		return m.renderer, nil
	}

	style := glamour.WithAutoStyle()
	if m.styles.GlamourStyle != "" {
		style = glamour.WithStandardStyle(m.styles.GlamourStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, err
	}
	m.renderer = r
	m.rendererWidth = wrap
	return r, nil
}

// Content returns the rendered page.
func (m DetailModel) Content() string {
	return m.content
}

// View renders the page for the fetch state.
func (m DetailModel) View() string {
	var b strings.Builder

	switch m.Status() {
	case fetch.Fetched:
		if m.view.Forthcoming {
			b.WriteString(m.styles.Badge.Render("Forthcoming"))
			b.WriteString("\n")
		}
		b.WriteString(m.viewport.View())
	case fetch.Failed:
		b.WriteString(m.styles.Error.Render(m.assembler.State().Err().Error()))
		b.WriteString("\n")
		b.WriteString(m.styles.Button.Render(catalogue.ReloadButton + " (r)"))
	default:
		fmt.Fprintf(&b, "%s Loading work %s…", m.spinner.View(), m.WorkID())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
