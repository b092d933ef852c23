// Package detail loads a single work and projects it into display strings.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/export"
	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
)

// Source fetches one work with its catalogues. *catalogue.WorkSource
// implements it.
type Source interface {
	FetchWork(ctx context.Context, id uuid.UUID) (catalogue.WorkPayload, error)
}

// Assembler owns the fetch state of one detail page.
// It is not safe for concurrent use.
type Assembler struct {
	source     Source
	workID     uuid.UUID
	exportBase string
	state      fetch.State[catalogue.WorkPayload]
	seq        uint64
	logger     zerolog.Logger
}

// NewAssembler creates an assembler for workID. exportBase is the export API
// root used for the export links.
func NewAssembler(source Source, workID uuid.UUID, exportBase string) *Assembler {
	return &Assembler{
		source:     source,
		workID:     workID,
		exportBase: exportBase,
		state:      fetch.Idle[catalogue.WorkPayload](),
		logger:     log.With().Str("component", "detail").Str("work_id", workID.String()).Logger(),
	}
}

// WorkID returns the work this assembler loads.
func (a *Assembler) WorkID() uuid.UUID {
	return a.workID
}

// State returns the current fetch state.
func (a *Assembler) State() fetch.State[catalogue.WorkPayload] {
	return a.state
}

// Start marks a new request in flight and returns its sequence number.
// Hosts that fetch asynchronously pair it with Resolve.
func (a *Assembler) Start() uint64 {
	a.seq++
	a.state = a.state.Apply(fetch.Start[catalogue.WorkPayload](a.seq))
	return a.seq
}

// Resolve applies the outcome of request seq. Outcomes of superseded
// requests are ignored. Errors are stored normalized.
func (a *Assembler) Resolve(seq uint64, payload catalogue.WorkPayload, err error) {
	if seq != a.seq {
		a.logger.Debug().Uint64("seq", seq).Uint64("current", a.seq).Msg("Dropping stale work response")
		return
	}
	if err != nil {
		a.logger.Warn().Err(err).Msg("Work fetch failed")
		a.state = a.state.Apply(fetch.Fail[catalogue.WorkPayload](seq, graphql.Normalize(err)))
		return
	}
	a.state = a.state.Apply(fetch.Succeed(seq, payload))
}

// Fetch performs request seq against the source. It does not touch the
// assembler state and may run on another goroutine.
func (a *Assembler) Fetch(ctx context.Context) (catalogue.WorkPayload, error) {
	return a.source.FetchWork(ctx, a.workID)
}

// Load runs one fetch synchronously and returns the projected view.
func (a *Assembler) Load(ctx context.Context) (View, error) {
	seq := a.Start()
	payload, err := a.Fetch(ctx)
	a.Resolve(seq, payload, err)
	if err := a.state.Err(); err != nil {
		return View{}, err
	}
	return a.View()
}

// View projects the fetched payload. It fails when nothing is loaded.
func (a *Assembler) View() (View, error) {
	payload, ok := a.state.Payload()
	if !ok {
		return View{}, fmt.Errorf("work %s is %s", a.workID, a.state.Status())
	}
	return Project(payload, a.exportBase), nil
}

// Field is one labelled metadata row.
type Field struct {
	Label string
	Value string
}

// FundingLink is a funded project with its registry link.
type FundingLink struct {
	Text string
	URL  string
}

// ContributorCard describes one contributor.
type ContributorCard struct {
	Name         string
	Role         string
	ORCID        string
	ORCIDTitle   string
	Website      string
	WebsiteTitle string
	Biography    string
	Ordinal      int
}

// View is the flat, display-ready form of a work.
type View struct {
	WorkID           uuid.UUID
	Title            string
	Publisher        string
	ContributorsText string
	Forthcoming      bool
	WorkType         string
	WorkStatus       string
	CoverURL         string

	DOI             string
	DOIURL          string
	LandingPage     string
	License         string
	CopyrightHolder string
	Place           string
	PublicationDate string
	PageCount       string
	PageInterval    string
	LCCN            string
	LongAbstract    string
	UpdatedAt       string

	Publications []string
	Dimensions   []string
	Languages    []string
	Series       []string
	Fundings     []FundingLink

	Keywords string
	BISAC    string
	Thema    string
	BIC      string
	LCC      string
	Custom   string

	Contributors []ContributorCard
	Exports      []export.Section

	Imprints     []string
	WorkTypes    []catalogue.WorkType
	WorkStatuses []catalogue.WorkStatus
}

// Project builds the view of payload. A nil work projects to an empty view
// that still carries the catalogues.
func Project(payload catalogue.WorkPayload, exportBase string) View {
	v := View{
		WorkTypes:    payload.WorkTypes.Names(),
		WorkStatuses: payload.WorkStatuses.Names(),
	}
	for _, imprint := range payload.Imprints {
		v.Imprints = append(v.Imprints, imprint.ImprintName)
	}

	w := payload.Work
	if w == nil {
		return v
	}

	v.WorkID = w.WorkID
	v.Title = w.CompileFullTitle()
	v.Publisher = w.Publisher()
	v.Forthcoming = w.WorkStatus == catalogue.WorkStatusForthcoming
	v.WorkType = w.WorkType.String()
	v.WorkStatus = w.WorkStatus.String()
	v.CoverURL = w.CoverURL
	v.LandingPage = w.LandingPage
	v.License = w.License
	v.CopyrightHolder = w.CopyrightHolder
	v.Place = w.Place
	v.PublicationDate = w.PublicationDate
	v.LCCN = w.LCCN
	v.LongAbstract = w.LongAbstract
	v.UpdatedAt = w.UpdatedAt.String()

	if w.DOI != "" {
		v.DOI = w.DOI.String()
		v.DOIURL = w.DOI.URL()
	}
	if w.PageCount > 0 {
		v.PageCount = fmt.Sprintf("%d pages", w.PageCount)
	}
	if interval, ok := w.CompilePageInterval(); ok {
		v.PageInterval = interval
	}

	roles := make([]string, 0, len(w.Contributions))
	for _, c := range w.Contributions {
		roles = append(roles, fmt.Sprintf("%s(%s)", c.FullName, c.ContributionType))
		v.Contributors = append(v.Contributors, contributorCard(c))
	}
	v.ContributorsText = strings.Join(roles, ", ")

	for _, p := range w.Publications {
		v.Publications = append(v.Publications, fmt.Sprintf("%s(%s)", p.ISBN, p.PublicationType))
		if dims := p.Dimensions(); dims != "" {
			v.Dimensions = append(v.Dimensions, fmt.Sprintf("%s(%s)", dims, p.PublicationType))
		}
	}

	for _, l := range w.Languages {
		v.Languages = append(v.Languages, fmt.Sprintf("%s(%s)", l.LanguageCode, l.LanguageRelation))
	}

	for _, issue := range w.Issues {
		v.Series = append(v.Series, fmt.Sprintf("%s (%s) #%d", issue.Series.SeriesName, issue.Series.SeriesType, issue.IssueOrdinal))
	}

	for _, f := range w.Fundings {
		v.Fundings = append(v.Fundings, fundingLink(f))
	}

	buckets := subjectBuckets(w.Subjects)
	v.Keywords = buckets[catalogue.SubjectTypeKeyword]
	v.BISAC = buckets[catalogue.SubjectTypeBISAC]
	v.Thema = buckets[catalogue.SubjectTypeThema]
	v.BIC = buckets[catalogue.SubjectTypeBIC]
	v.LCC = buckets[catalogue.SubjectTypeLCC]
	v.Custom = buckets[catalogue.SubjectTypeCustom]

	if exportBase != "" {
		v.Exports = export.Group(export.Links(exportBase, w.WorkID))
	}

	return v
}

// Metadata returns the non-empty metadata rows in page order.
func (v View) Metadata() []Field {
	rows := []Field{
		{"Title", v.Title},
		{"Contributor", v.ContributorsText},
		{"DOI", v.DOIURL},
		{"Landing page", v.LandingPage},
		{"License", v.License},
		{"Copyright", v.CopyrightHolder},
		{"Publisher", v.Publisher},
		{"Publication place", v.Place},
		{"Published on", v.PublicationDate},
		{"ISBN", strings.Join(v.Publications, ", ")},
		{"Print length", v.PageCount},
		{"Pages", v.PageInterval},
		{"Language", strings.Join(v.Languages, ", ")},
		{"Dimensions", strings.Join(v.Dimensions, ", ")},
		{"Series", strings.Join(v.Series, ", ")},
		{"LCCN", v.LCCN},
		{"THEMA", v.Thema},
		{"BISAC", v.BISAC},
		{"BIC", v.BIC},
		{"LCC", v.LCC},
		{"Keywords", v.Keywords},
		{"Custom", v.Custom},
	}

	out := rows[:0]
	for _, row := range rows {
		if row.Value != "" {
			out = append(out, row)
		}
	}
	return out
}

func contributorCard(c catalogue.Contribution) ContributorCard {
	name := c.Contributor.FullName
	if name == "" {
		name = c.FullName
	}
	card := ContributorCard{
		Name:      c.FullName,
		Role:      c.ContributionType.String(),
		Biography: c.Biography,
		Ordinal:   c.ContributionOrdinal,
	}
	if c.Contributor.ORCID != "" {
		card.ORCID = c.Contributor.ORCID.String()
		card.ORCIDTitle = name + "'s ORCID record"
	}
	if c.Contributor.Website != "" {
		card.Website = c.Contributor.Website
		card.WebsiteTitle = name + "'s website"
	}
	return card
}

// fundingLink prefers the funder's ROR ID; without one it links the grant
// number under the ROR domain.
func fundingLink(f catalogue.FundingWithInstitution) FundingLink {
	text := f.ProjectName
	if text == "" {
		text = f.Institution.InstitutionName
	}
	url := f.Institution.ROR.String()
	if url == "" {
		url = catalogue.RORDomain + f.GrantNumber
	}
	return FundingLink{Text: text, URL: url}
}

// subjectBuckets joins subject codes per scheme with "; ", in subject order.
func subjectBuckets(subjects []catalogue.Subject) map[catalogue.SubjectType]string {
	codes := make(map[catalogue.SubjectType][]string)
	for _, s := range subjects {
		codes[s.SubjectType] = append(codes[s.SubjectType], s.SubjectCode)
	}
	out := make(map[catalogue.SubjectType]string, len(codes))
	for kind, list := range codes {
		out[kind] = strings.Join(list, "; ")
	}
	return out
}
