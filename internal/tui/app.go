package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/thoth-catalogue/internal/route"
	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/detail"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

// AppConfig wires the application to its data sources.
type AppConfig struct {
	Listing    listing.Config
	Books      listing.Source[catalogue.Work, catalogue.WorkField]
	Works      detail.Source
	ExportBase string
	Styles     Styles

	// Start is the initial path (default "/").
	Start string
}

// App is the router and navbar around the pages.
type App struct {
	ctx    context.Context
	cfg    AppConfig
	route  route.Route
	books  BooksModel
	detail *DetailModel
	keys   appKeyMap
	styles Styles
	width  int
	height int

	logger zerolog.Logger
}

// NewApp creates the application.
func NewApp(ctx context.Context, cfg AppConfig) *App {
	return &App{
		ctx:    ctx,
		cfg:    cfg,
		books:  NewBooksModel(ctx, cfg.Listing, cfg.Books, cfg.Styles),
		keys:   defaultAppKeys(),
		styles: cfg.Styles,
		logger: log.With().Str("component", "tui-app").Logger(),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	start := a.cfg.Start
	if start == "" {
		start = "/"
	}
	return a.navigate(route.Parse(start))
}

// Route returns the current route.
func (a *App) Route() route.Route {
	return a.route
}

// Books returns the listing page.
func (a *App) Books() BooksModel {
	return a.books
}

// Detail returns the detail page, if one is shown.
func (a *App) Detail() (DetailModel, bool) {
	if a.detail == nil {
		return DetailModel{}, false
	}
	return *a.detail, true
}

// navigate switches to r. The listing keeps its state across visits.
func (a *App) navigate(r route.Route) tea.Cmd {
	r = r.Resolve()
	a.logger.Debug().Str("path", r.Path()).Msg("Navigate")
	a.route = r

	switch r.Kind {
	case route.Books:
		a.detail = nil
		return a.books.Init()
	case route.BookDetail:
		if a.detail != nil && a.detail.WorkID() == r.ID {
			return nil
		}
		d := NewDetailModel(a.ctx, a.cfg.Works, r.ID, a.cfg.ExportBase, a.styles)
		if a.width > 0 {
			d.SetSize(a.width, a.pageHeight())
		}
		a.detail = &d
		return d.Init()
	default:
		a.detail = nil
		return nil
	}
}

func (a *App) pageHeight() int {
	return max(a.height-2, 1)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.books.SetSize(msg.Width, a.pageHeight())
		if a.detail != nil {
			a.detail.SetSize(msg.Width, a.pageHeight())
		}
		return a, nil

	case NavigateMsg:
		return a, a.navigate(msg.Route)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if key.Matches(msg, a.keys.Quit) && !(a.route.Kind == route.Books && a.books.Searching()) {
			return a, tea.Quit
		}
		switch a.route.Kind {
		case route.Books:
			var cmd tea.Cmd
			a.books, cmd = a.books.Update(msg)
			return a, cmd
		case route.BookDetail:
			d, cmd := a.detail.Update(msg)
			a.detail = &d
			return a, cmd
		default:
			return a, a.navigate(route.ToBooks())
		}

	case workLoadedMsg:
		if a.detail == nil {
			return a, nil
		}
		d, cmd := a.detail.Update(msg)
		a.detail = &d
		return a, cmd
	}

	// Fetch results, debounce ticks and spinner ticks go to both pages.
	// Each page ignores messages it did not ask for.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.books, cmd = a.books.Update(msg)
	cmds = append(cmds, cmd)
	if a.detail != nil {
		d, cmd := a.detail.Update(msg)
		a.detail = &d
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// View implements tea.Model.
func (a *App) View() string {
	var page string
	switch a.route.Kind {
	case route.Books:
		page = a.books.View()
	case route.BookDetail:
		page = a.detail.View()
	case route.NotImplemented:
		page = a.styles.Muted.Render("This page is not implemented yet. Press any key to return to the books.")
	default:
		page = a.styles.Error.Render("Page not found. Press any key to return to the books.")
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.navbar(), a.styles.Content.Render(page))
}

func (a *App) navbar() string {
	crumbs := []string{"Books"}
	switch a.route.Kind {
	case route.BookDetail:
		title := a.detail.Title()
		if title == "" {
			title = a.route.ID.String()
		}
		crumbs = append(crumbs, title)
	case route.NotImplemented:
		crumbs = []string{"Not implemented"}
	case route.Error:
		crumbs = []string{"Error"}
	}

	bar := a.styles.NavBrand.Render("Thoth") + "  " + a.styles.NavCrumb.Render(strings.Join(crumbs, " › "))
	if a.width > 0 {
		return a.styles.Navbar.Width(a.width).Render(bar)
	}
	return a.styles.Navbar.Render(bar)
}
