package detail

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/thoth-catalogue/pkg/catalogue"
	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
)

var testWorkID = uuid.MustParse("0c1e6a6b-b9a8-4a5b-8f56-8a1a5a0f5e11")

type stubSource struct {
	payload catalogue.WorkPayload
	err     error
	calls   int
}

func (s *stubSource) FetchWork(_ context.Context, id uuid.UUID) (catalogue.WorkPayload, error) {
	s.calls++
	return s.payload, s.err
}

func samplePayload() catalogue.WorkPayload {
	work := &catalogue.Work{
		WorkID:          testWorkID,
		WorkType:        catalogue.WorkTypeMonograph,
		WorkStatus:      catalogue.WorkStatusForthcoming,
		Title:           "Open Access",
		Subtitle:        "A Reader",
		DOI:             "https://doi.org/10.11647/OBP.0001",
		LandingPage:     "https://www.openbookpublishers.com/product/1",
		License:         "http://creativecommons.org/licenses/by/4.0/",
		CopyrightHolder: "Ada Lovelace",
		Place:           "Cambridge, UK",
		PublicationDate: "2024-05-01",
		PageCount:       312,
		Contributions: []catalogue.Contribution{
			{
				FullName:            "Ada Lovelace",
				ContributionType:    catalogue.ContributionTypeAuthor,
				MainContribution:    true,
				ContributionOrdinal: 1,
				Biography:           "Mathematician.",
				Contributor: catalogue.Contributor{
					FullName: "Ada Lovelace",
					ORCID:    "https://orcid.org/0000-0002-1825-0097",
					Website:  "https://example.org/ada",
				},
			},
			{
				FullName:            "Charles Babbage",
				ContributionType:    catalogue.ContributionTypeForewordBy,
				ContributionOrdinal: 2,
				Contributor:         catalogue.Contributor{FullName: "Charles Babbage"},
			},
		},
		Publications: []catalogue.Publication{
			{ISBN: "9783161484100", PublicationType: catalogue.PublicationTypePaperback, WidthMM: 156, HeightMM: 234},
			{ISBN: "9780306406157", PublicationType: catalogue.PublicationTypePDF},
		},
		Languages: []catalogue.Language{
			{LanguageCode: "ENG", LanguageRelation: catalogue.LanguageRelationOriginal},
			{LanguageCode: "FRE", LanguageRelation: catalogue.LanguageRelationTranslatedInto},
		},
		Fundings: []catalogue.FundingWithInstitution{
			{ProjectName: "COPIM", GrantNumber: "0123", Institution: catalogue.Institution{InstitutionName: "Arcadia"}},
			{GrantNumber: "9", Institution: catalogue.Institution{InstitutionName: "UKRI", ROR: "https://ror.org/001aqnf71"}},
		},
		Subjects: []catalogue.Subject{
			{SubjectType: catalogue.SubjectTypeKeyword, SubjectCode: "open access"},
			{SubjectType: catalogue.SubjectTypeBISAC, SubjectCode: "LAN027000"},
			{SubjectType: catalogue.SubjectTypeKeyword, SubjectCode: "publishing"},
			{SubjectType: catalogue.SubjectTypeThema, SubjectCode: "KNTP"},
		},
		Issues: []catalogue.IssueWithSeries{
			{IssueOrdinal: 3, Series: catalogue.Series{SeriesName: "Open Reports", SeriesType: catalogue.SeriesTypeBookSeries}},
		},
		Imprint: catalogue.ImprintWithPublisher{
			ImprintName: "OBP",
			Publisher:   catalogue.Publisher{PublisherName: "Open Book Publishers", PublisherShortname: "OBP"},
		},
	}

	return catalogue.WorkPayload{
		Work:     work,
		Imprints: []catalogue.ImprintWithPublisher{{ImprintName: "OBP"}, {ImprintName: "Punctum"}},
		WorkTypes: catalogue.EnumDefinition[catalogue.WorkType]{
			EnumValues: []catalogue.EnumValue[catalogue.WorkType]{{Name: catalogue.WorkTypeMonograph}, {Name: catalogue.WorkTypeBookChapter}},
		},
		WorkStatuses: catalogue.EnumDefinition[catalogue.WorkStatus]{
			EnumValues: []catalogue.EnumValue[catalogue.WorkStatus]{{Name: catalogue.WorkStatusActive}},
		},
	}
}

func TestProject(t *testing.T) {
	v := Project(samplePayload(), "https://export.thoth.pub")

	assert.Equal(t, "Open Access: A Reader", v.Title)
	assert.Equal(t, "OBP", v.Publisher)
	assert.Equal(t, "Ada Lovelace(Author), Charles Babbage(Foreword By)", v.ContributorsText)
	assert.True(t, v.Forthcoming)
	assert.Equal(t, "10.11647/OBP.0001", v.DOI)
	assert.Equal(t, "https://doi.org/10.11647/OBP.0001", v.DOIURL)
	assert.Equal(t, "312 pages", v.PageCount)
	assert.Equal(t, []string{"9783161484100(Paperback)", "9780306406157(PDF)"}, v.Publications)
	assert.Equal(t, []string{"156 × 234 mm(Paperback)"}, v.Dimensions)
	assert.Equal(t, []string{"ENG(Original)", "FRE(Translated Into)"}, v.Languages)
	assert.Equal(t, []string{"Open Reports (Book Series) #3"}, v.Series)
	assert.Equal(t, "open access; publishing", v.Keywords)
	assert.Equal(t, "LAN027000", v.BISAC)
	assert.Equal(t, "KNTP", v.Thema)
	assert.Empty(t, v.BIC)

	require.Len(t, v.Fundings, 2)
	assert.Equal(t, FundingLink{Text: "COPIM", URL: "https://ror.org/0123"}, v.Fundings[0])
	assert.Equal(t, FundingLink{Text: "UKRI", URL: "https://ror.org/001aqnf71"}, v.Fundings[1])

	require.Len(t, v.Contributors, 2)
	ada := v.Contributors[0]
	assert.Equal(t, "Ada Lovelace's ORCID record", ada.ORCIDTitle)
	assert.Equal(t, "Ada Lovelace's website", ada.WebsiteTitle)
	assert.Equal(t, "Mathematician.", ada.Biography)
	assert.Empty(t, v.Contributors[1].ORCID)

	require.Len(t, v.Exports, 10)
	assert.Equal(t, "ONIX 3.0", v.Exports[0].Heading)
	assert.Equal(t,
		"https://export.thoth.pub/specifications/onix_3.0::thoth/work/0c1e6a6b-b9a8-4a5b-8f56-8a1a5a0f5e11",
		v.Exports[0].Links[0].URL)

	assert.Equal(t, []string{"OBP", "Punctum"}, v.Imprints)
	assert.Equal(t, []catalogue.WorkType{catalogue.WorkTypeMonograph, catalogue.WorkTypeBookChapter}, v.WorkTypes)
	assert.Equal(t, []catalogue.WorkStatus{catalogue.WorkStatusActive}, v.WorkStatuses)
}

func TestProject_EmptyWork(t *testing.T) {
	payload := samplePayload()
	payload.Work = &catalogue.Work{WorkID: testWorkID, Title: "Untitled"}

	v := Project(payload, "")
	assert.False(t, v.Forthcoming)
	assert.Empty(t, v.DOIURL)
	assert.Empty(t, v.PageCount)
	assert.Empty(t, v.ContributorsText)
	assert.Empty(t, v.Exports)

	labels := make([]string, 0)
	for _, f := range v.Metadata() {
		labels = append(labels, f.Label)
	}
	assert.Equal(t, []string{"Title"}, labels)
}

func TestView_MetadataOrder(t *testing.T) {
	v := Project(samplePayload(), "")
	rows := v.Metadata()
	require.NotEmpty(t, rows)
	assert.Equal(t, "Title", rows[0].Label)
	assert.Equal(t, Field{Label: "Contributor", Value: v.ContributorsText}, rows[1])
	assert.Equal(t, Field{Label: "Keywords", Value: "open access; publishing"}, rows[len(rows)-1])
}

func TestAssembler_Load(t *testing.T) {
	source := &stubSource{payload: samplePayload()}
	a := NewAssembler(source, testWorkID, "https://export.thoth.pub")
	assert.Equal(t, fetch.NotFetching, a.State().Status())

	v, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fetch.Fetched, a.State().Status())
	assert.Equal(t, "Open Access: A Reader", v.Title)
	assert.Equal(t, 1, source.calls)
}

func TestAssembler_LoadFailure(t *testing.T) {
	source := &stubSource{err: errors.New("dial tcp: connection refused")}
	a := NewAssembler(source, testWorkID, "")

	_, err := a.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, fetch.Failed, a.State().Status())
	assert.Equal(t, graphql.ConnectMessage, err.Error())

	_, err = a.View()
	assert.Error(t, err)
}

func TestAssembler_StaleResolveIgnored(t *testing.T) {
	a := NewAssembler(&stubSource{}, testWorkID, "")

	first := a.Start()
	second := a.Start()
	a.Resolve(first, catalogue.WorkPayload{}, errors.New("late failure"))
	assert.Equal(t, fetch.Fetching, a.State().Status())

	a.Resolve(second, samplePayload(), nil)
	assert.Equal(t, fetch.Fetched, a.State().Status())
	assert.Equal(t, second, a.State().Seq())
}

func TestView_Markdown(t *testing.T) {
	payload := samplePayload()
	payload.Work.LongAbstract = "An *introduction* to open access.\n"
	v := Project(payload, "https://export.thoth.pub")

	md := v.Markdown()

	assert.True(t, strings.HasPrefix(md, "# Open Access: A Reader\n"))
	assert.Contains(t, md, "*Ada Lovelace(Author), Charles Babbage(Foreword By)*")
	assert.Contains(t, md, "**Forthcoming**")
	assert.Contains(t, md, "## Abstract\n\nAn *introduction* to open access.\n")
	assert.Contains(t, md, "- **DOI:** https://doi.org/10.11647/OBP.0001")
	assert.Contains(t, md, "- **Print length:** 312 pages")
	assert.Contains(t, md, "- [COPIM](https://ror.org/0123)")
	assert.Contains(t, md, "### Ada Lovelace (Author)")
	assert.Contains(t, md, "- [Ada Lovelace's ORCID record](https://orcid.org/0000-0002-1825-0097)")
	assert.Contains(t, md, "- ONIX 3.0\n  - [")
	assert.Contains(t, md, "https://export.thoth.pub/specifications/csv::thoth/work/"+testWorkID.String())
}

func TestView_MarkdownWithoutExports(t *testing.T) {
	v := Project(samplePayload(), "")

	md := v.Markdown()

	assert.NotContains(t, md, "## Export Metadata")
	assert.NotContains(t, md, "## Abstract")
}
