// Package catalogue holds the work (book) model of the catalogue API, its
// enums and identifiers, the GraphQL query documents and the sources that
// execute them.
package catalogue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URL prefixes of the persistent identifiers.
const (
	DOIDomain   = "https://doi.org/"
	ORCIDDomain = "https://orcid.org/"
	RORDomain   = "https://ror.org/"
)

// timestampLayout is the display form of a Timestamp.
const timestampLayout = "2006-01-02 15:04:05"

// Timestamp is a UTC instant as returned by the API.
type Timestamp struct {
	time.Time
}

// String formats the timestamp as "YYYY-MM-DD HH:MM:SS"; the zero value
// formats as the Unix epoch.
func (t Timestamp) String() string {
	if t.IsZero() {
		return time.Unix(0, 0).UTC().Format(timestampLayout)
	}
	return t.UTC().Format(timestampLayout)
}

// UnmarshalJSON accepts RFC 3339 strings and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// MarshalJSON writes RFC 3339 with nanoseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// DOI is a standardized DOI URL ("https://doi.org/10.xxxx/yyy").
type DOI string

// String returns the DOI without its domain.
func (d DOI) String() string {
	return strings.Replace(string(d), DOIDomain, "", 1)
}

// URL returns the resolvable form.
func (d DOI) URL() string {
	if d == "" {
		return ""
	}
	if strings.HasPrefix(string(d), DOIDomain) {
		return string(d)
	}
	return DOIDomain + string(d)
}

// ORCID is a contributor identifier URL.
type ORCID string

func (o ORCID) String() string { return string(o) }

// ISBN is a hyphenated ISBN-13.
type ISBN string

func (i ISBN) String() string { return string(i) }

// ROR is an institution identifier URL.
type ROR string

func (r ROR) String() string { return string(r) }

// Work is a catalogue entry with its relations.
// Optional scalars decode to their zero value when the API returns null.
type Work struct {
	WorkID           uuid.UUID                `json:"workId"`
	WorkType         WorkType                 `json:"workType"`
	WorkStatus       WorkStatus               `json:"workStatus"`
	FullTitle        string                   `json:"fullTitle"`
	Title            string                   `json:"title"`
	Subtitle         string                   `json:"subtitle,omitempty"`
	Reference        string                   `json:"reference,omitempty"`
	Edition          int                      `json:"edition,omitempty"`
	DOI              DOI                      `json:"doi,omitempty"`
	PublicationDate  string                   `json:"publicationDate,omitempty"`
	WithdrawnDate    string                   `json:"withdrawnDate,omitempty"`
	Place            string                   `json:"place,omitempty"`
	PageCount        int                      `json:"pageCount,omitempty"`
	PageBreakdown    string                   `json:"pageBreakdown,omitempty"`
	ImageCount       int                      `json:"imageCount,omitempty"`
	TableCount       int                      `json:"tableCount,omitempty"`
	AudioCount       int                      `json:"audioCount,omitempty"`
	VideoCount       int                      `json:"videoCount,omitempty"`
	License          string                   `json:"license,omitempty"`
	CopyrightHolder  string                   `json:"copyrightHolder,omitempty"`
	LandingPage      string                   `json:"landingPage,omitempty"`
	LCCN             string                   `json:"lccn,omitempty"`
	OCLC             string                   `json:"oclc,omitempty"`
	ShortAbstract    string                   `json:"shortAbstract,omitempty"`
	LongAbstract     string                   `json:"longAbstract,omitempty"`
	GeneralNote      string                   `json:"generalNote,omitempty"`
	BibliographyNote string                   `json:"bibliographyNote,omitempty"`
	TOC              string                   `json:"toc,omitempty"`
	CoverURL         string                   `json:"coverUrl,omitempty"`
	CoverCaption     string                   `json:"coverCaption,omitempty"`
	UpdatedAt        Timestamp                `json:"updatedAt"`
	FirstPage        string                   `json:"firstPage,omitempty"`
	LastPage         string                   `json:"lastPage,omitempty"`
	PageInterval     string                   `json:"pageInterval,omitempty"`
	Contributions    []Contribution           `json:"contributions,omitempty"`
	Publications     []Publication            `json:"publications,omitempty"`
	Languages        []Language               `json:"languages,omitempty"`
	Fundings         []FundingWithInstitution `json:"fundings,omitempty"`
	Subjects         []Subject                `json:"subjects,omitempty"`
	Issues           []IssueWithSeries        `json:"issues,omitempty"`
	Imprint          ImprintWithPublisher     `json:"imprint"`
}

// CompileFullTitle returns "title: subtitle", or the title alone.
func (w Work) CompileFullTitle() string {
	if w.Subtitle != "" {
		return w.Title + ": " + w.Subtitle
	}
	return w.Title
}

// CompilePageInterval returns "first–last" when both pages are known.
func (w Work) CompilePageInterval() (string, bool) {
	if w.FirstPage == "" || w.LastPage == "" {
		return "", false
	}
	return w.FirstPage + "–" + w.LastPage, true
}

// Publisher returns the publisher short name, falling back to its full name.
func (w Work) Publisher() string {
	p := w.Imprint.Publisher
	if p.PublisherShortname != "" {
		return p.PublisherShortname
	}
	return p.PublisherName
}

// MainContributors returns the full names of contributions marked as main,
// in their listed order.
func (w Work) MainContributors() []string {
	var names []string
	for _, c := range w.Contributions {
		if c.MainContribution {
			names = append(names, c.FullName)
		}
	}
	return names
}

// Contribution links a contributor to a work in a given role.
type Contribution struct {
	ContributionID      uuid.UUID        `json:"contributionId"`
	WorkID              uuid.UUID        `json:"workId"`
	ContributorID       uuid.UUID        `json:"contributorId"`
	ContributionType    ContributionType `json:"contributionType"`
	MainContribution    bool             `json:"mainContribution"`
	Biography           string           `json:"biography,omitempty"`
	CreatedAt           Timestamp        `json:"createdAt"`
	UpdatedAt           Timestamp        `json:"updatedAt"`
	FirstName           string           `json:"firstName,omitempty"`
	LastName            string           `json:"lastName"`
	FullName            string           `json:"fullName"`
	ContributionOrdinal int              `json:"contributionOrdinal"`
	Contributor         Contributor      `json:"contributor"`
}

// Contributor is a person credited on works.
type Contributor struct {
	ContributorID uuid.UUID `json:"contributorId"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName"`
	FullName      string    `json:"fullName"`
	ORCID         ORCID     `json:"orcid,omitempty"`
	Website       string    `json:"website,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// Publication is one manifestation (format) of a work.
type Publication struct {
	PublicationID   uuid.UUID       `json:"publicationId"`
	PublicationType PublicationType `json:"publicationType"`
	WorkID          uuid.UUID       `json:"workId"`
	ISBN            ISBN            `json:"isbn,omitempty"`
	CreatedAt       Timestamp       `json:"createdAt"`
	UpdatedAt       Timestamp       `json:"updatedAt"`
	WidthMM         float64         `json:"widthMm,omitempty"`
	WidthIn         float64         `json:"widthIn,omitempty"`
	HeightMM        float64         `json:"heightMm,omitempty"`
	HeightIn        float64         `json:"heightIn,omitempty"`
	DepthMM         float64         `json:"depthMm,omitempty"`
	DepthIn         float64         `json:"depthIn,omitempty"`
	WeightG         float64         `json:"weightG,omitempty"`
	WeightOz        float64         `json:"weightOz,omitempty"`
}

// Dimensions formats the physical size as "W × H × D mm", or "" when unknown.
func (p Publication) Dimensions() string {
	if p.WidthMM == 0 || p.HeightMM == 0 {
		return ""
	}
	if p.DepthMM == 0 {
		return fmt.Sprintf("%g × %g mm", p.WidthMM, p.HeightMM)
	}
	return fmt.Sprintf("%g × %g × %g mm", p.WidthMM, p.HeightMM, p.DepthMM)
}

// Language is a language of a work. LanguageCode is the upper-case ISO 639-2/B code.
type Language struct {
	LanguageID       uuid.UUID        `json:"languageId"`
	WorkID           uuid.UUID        `json:"workId"`
	LanguageCode     string           `json:"languageCode"`
	LanguageRelation LanguageRelation `json:"languageRelation"`
	MainLanguage     bool             `json:"mainLanguage"`
	CreatedAt        Timestamp        `json:"createdAt"`
	UpdatedAt        Timestamp        `json:"updatedAt"`
}

// Subject is a classification code or keyword of a work.
type Subject struct {
	SubjectID      uuid.UUID   `json:"subjectId"`
	WorkID         uuid.UUID   `json:"workId"`
	SubjectType    SubjectType `json:"subjectType"`
	SubjectCode    string      `json:"subjectCode"`
	SubjectOrdinal int         `json:"subjectOrdinal"`
	CreatedAt      Timestamp   `json:"createdAt"`
	UpdatedAt      Timestamp   `json:"updatedAt"`
}

// FundingWithInstitution is a grant that funded a work.
type FundingWithInstitution struct {
	FundingID        uuid.UUID   `json:"fundingId"`
	WorkID           uuid.UUID   `json:"workId"`
	InstitutionID    uuid.UUID   `json:"institutionId"`
	Program          string      `json:"program,omitempty"`
	ProjectName      string      `json:"projectName,omitempty"`
	ProjectShortname string      `json:"projectShortname,omitempty"`
	GrantNumber      string      `json:"grantNumber,omitempty"`
	Jurisdiction     string      `json:"jurisdiction,omitempty"`
	Institution      Institution `json:"institution"`
}

// Institution is a funder or affiliation.
type Institution struct {
	InstitutionID   uuid.UUID `json:"institutionId"`
	InstitutionName string    `json:"institutionName"`
	InstitutionDOI  DOI       `json:"institutionDoi,omitempty"`
	ROR             ROR       `json:"ror,omitempty"`
	CountryCode     string    `json:"countryCode,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// IssueWithSeries places a work in a series.
type IssueWithSeries struct {
	IssueID      uuid.UUID `json:"issueId"`
	WorkID       uuid.UUID `json:"workId"`
	SeriesID     uuid.UUID `json:"seriesId"`
	IssueOrdinal int       `json:"issueOrdinal"`
	Series       Series    `json:"series"`
}

// Series is a journal or book series.
type Series struct {
	SeriesID    uuid.UUID  `json:"seriesId"`
	SeriesType  SeriesType `json:"seriesType"`
	SeriesName  string     `json:"seriesName"`
	ISSNPrint   string     `json:"issnPrint,omitempty"`
	ISSNDigital string     `json:"issnDigital,omitempty"`
	SeriesURL   string     `json:"seriesUrl,omitempty"`
}

// ImprintWithPublisher is the imprint a work is published under.
type ImprintWithPublisher struct {
	ImprintID    uuid.UUID `json:"imprintId"`
	ImprintName  string    `json:"imprintName"`
	ImprintURL   string    `json:"imprintUrl,omitempty"`
	CrossmarkDOI DOI       `json:"crossmarkDoi,omitempty"`
	UpdatedAt    Timestamp `json:"updatedAt"`
	Publisher    Publisher `json:"publisher"`
}

// Publisher owns imprints.
type Publisher struct {
	PublisherID        uuid.UUID `json:"publisherId"`
	PublisherName      string    `json:"publisherName"`
	PublisherShortname string    `json:"publisherShortname,omitempty"`
	PublisherURL       string    `json:"publisherUrl,omitempty"`
	CreatedAt          Timestamp `json:"createdAt"`
	UpdatedAt          Timestamp `json:"updatedAt"`
}
