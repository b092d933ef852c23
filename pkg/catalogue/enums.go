package catalogue

import (
	"fmt"
	"strings"
)

// Enum values are the SCREAMING_SNAKE_CASE tokens of the GraphQL schema.
// String returns the display name.

// WorkField is a sortable column of the works listing.
type WorkField string

const (
	WorkFieldWorkID                 WorkField = "WORK_ID"
	WorkFieldWorkType               WorkField = "WORK_TYPE"
	WorkFieldWorkStatus             WorkField = "WORK_STATUS"
	WorkFieldFullTitle              WorkField = "FULL_TITLE"
	WorkFieldTitle                  WorkField = "TITLE"
	WorkFieldSubtitle               WorkField = "SUBTITLE"
	WorkFieldReference              WorkField = "REFERENCE"
	WorkFieldEdition                WorkField = "EDITION"
	WorkFieldDOI                    WorkField = "DOI"
	WorkFieldPublicationDate        WorkField = "PUBLICATION_DATE"
	WorkFieldWithdrawnDate          WorkField = "WITHDRAWN_DATE"
	WorkFieldPlace                  WorkField = "PLACE"
	WorkFieldPageCount              WorkField = "PAGE_COUNT"
	WorkFieldPageBreakdown          WorkField = "PAGE_BREAKDOWN"
	WorkFieldImageCount             WorkField = "IMAGE_COUNT"
	WorkFieldTableCount             WorkField = "TABLE_COUNT"
	WorkFieldAudioCount             WorkField = "AUDIO_COUNT"
	WorkFieldVideoCount             WorkField = "VIDEO_COUNT"
	WorkFieldLicense                WorkField = "LICENSE"
	WorkFieldCopyrightHolder        WorkField = "COPYRIGHT_HOLDER"
	WorkFieldLandingPage            WorkField = "LANDING_PAGE"
	WorkFieldLCCN                   WorkField = "LCCN"
	WorkFieldOCLC                   WorkField = "OCLC"
	WorkFieldShortAbstract          WorkField = "SHORT_ABSTRACT"
	WorkFieldLongAbstract           WorkField = "LONG_ABSTRACT"
	WorkFieldGeneralNote            WorkField = "GENERAL_NOTE"
	WorkFieldBibliographyNote       WorkField = "BIBLIOGRAPHY_NOTE"
	WorkFieldTOC                    WorkField = "TOC"
	WorkFieldCoverURL               WorkField = "COVER_URL"
	WorkFieldCoverCaption           WorkField = "COVER_CAPTION"
	WorkFieldCreatedAt              WorkField = "CREATED_AT"
	WorkFieldUpdatedAt              WorkField = "UPDATED_AT"
	WorkFieldFirstPage              WorkField = "FIRST_PAGE"
	WorkFieldLastPage               WorkField = "LAST_PAGE"
	WorkFieldPageInterval           WorkField = "PAGE_INTERVAL"
	WorkFieldUpdatedAtWithRelations WorkField = "UPDATED_AT_WITH_RELATIONS"
)

// DefaultWorkField is the sort field of a fresh listing.
const DefaultWorkField = WorkFieldFullTitle

var workFields = []WorkField{
	WorkFieldWorkID, WorkFieldWorkType, WorkFieldWorkStatus, WorkFieldFullTitle,
	WorkFieldTitle, WorkFieldSubtitle, WorkFieldReference, WorkFieldEdition,
	WorkFieldDOI, WorkFieldPublicationDate, WorkFieldWithdrawnDate, WorkFieldPlace,
	WorkFieldPageCount, WorkFieldPageBreakdown, WorkFieldImageCount, WorkFieldTableCount,
	WorkFieldAudioCount, WorkFieldVideoCount, WorkFieldLicense, WorkFieldCopyrightHolder,
	WorkFieldLandingPage, WorkFieldLCCN, WorkFieldOCLC, WorkFieldShortAbstract,
	WorkFieldLongAbstract, WorkFieldGeneralNote, WorkFieldBibliographyNote, WorkFieldTOC,
	WorkFieldCoverURL, WorkFieldCoverCaption, WorkFieldCreatedAt, WorkFieldUpdatedAt,
	WorkFieldFirstPage, WorkFieldLastPage, WorkFieldPageInterval, WorkFieldUpdatedAtWithRelations,
}

var workFieldNames = map[WorkField]string{
	WorkFieldWorkID:    "ID",
	WorkFieldWorkType:  "Type",
	WorkFieldFullTitle: "Title",
	WorkFieldTitle:     "ShortTitle",
	WorkFieldDOI:       "DOI",
	WorkFieldLCCN:      "LCCN",
	WorkFieldOCLC:      "OCLC",
	WorkFieldTOC:       "TOC",
	WorkFieldCoverURL:  "CoverURL",
}

// WorkFields returns every sortable field in schema order.
func WorkFields() []WorkField {
	return append([]WorkField(nil), workFields...)
}

// String returns the column header, e.g. "Title" or "PublicationDate".
func (f WorkField) String() string {
	if name, ok := workFieldNames[f]; ok {
		return name
	}
	return pascalCase(string(f))
}

// ParseWorkField accepts a schema token ("PUBLICATION_DATE"), a header
// ("PublicationDate", "Title") or a kebab-case name ("publication-date").
func ParseWorkField(s string) (WorkField, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWorkField, nil
	}
	token := WorkField(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	for _, f := range workFields {
		if f == token || strings.EqualFold(f.String(), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// WorkType classifies works.
type WorkType string

const (
	WorkTypeBookChapter  WorkType = "BOOK_CHAPTER"
	WorkTypeMonograph    WorkType = "MONOGRAPH"
	WorkTypeEditedBook   WorkType = "EDITED_BOOK"
	WorkTypeTextbook     WorkType = "TEXTBOOK"
	WorkTypeJournalIssue WorkType = "JOURNAL_ISSUE"
	WorkTypeBookSet      WorkType = "BOOK_SET"
)

// String returns the title-case name, e.g. "Book Chapter".
func (t WorkType) String() string {
	if t == "" {
		t = WorkTypeMonograph
	}
	return titleCase(string(t))
}

// WorkStatus is the publishing status of a work.
type WorkStatus string

const (
	WorkStatusUnspecified            WorkStatus = "UNSPECIFIED"
	WorkStatusCancelled              WorkStatus = "CANCELLED"
	WorkStatusForthcoming            WorkStatus = "FORTHCOMING"
	WorkStatusPostponedIndefinitely  WorkStatus = "POSTPONED_INDEFINITELY"
	WorkStatusActive                 WorkStatus = "ACTIVE"
	WorkStatusNoLongerOurProduct     WorkStatus = "NO_LONGER_OUR_PRODUCT"
	WorkStatusOutOfStockIndefinitely WorkStatus = "OUT_OF_STOCK_INDEFINITELY"
	WorkStatusOutOfPrint             WorkStatus = "OUT_OF_PRINT"
	WorkStatusInactive               WorkStatus = "INACTIVE"
	WorkStatusUnknown                WorkStatus = "UNKNOWN"
	WorkStatusRemaindered            WorkStatus = "REMAINDERED"
	WorkStatusWithdrawnFromSale      WorkStatus = "WITHDRAWN_FROM_SALE"
	WorkStatusRecalled               WorkStatus = "RECALLED"
)

// String returns the title-case name, e.g. "Out Of Print".
func (s WorkStatus) String() string {
	if s == "" {
		s = WorkStatusInactive
	}
	return titleCase(string(s))
}

// SubjectType is the classification scheme of a subject.
type SubjectType string

const (
	SubjectTypeBIC     SubjectType = "BIC"
	SubjectTypeBISAC   SubjectType = "BISAC"
	SubjectTypeThema   SubjectType = "THEMA"
	SubjectTypeLCC     SubjectType = "LCC"
	SubjectTypeCustom  SubjectType = "CUSTOM"
	SubjectTypeKeyword SubjectType = "KEYWORD"
)

// SubjectTypes returns the schemes in display order.
func SubjectTypes() []SubjectType {
	return []SubjectType{
		SubjectTypeBIC, SubjectTypeBISAC, SubjectTypeThema,
		SubjectTypeLCC, SubjectTypeCustom, SubjectTypeKeyword,
	}
}

func (t SubjectType) String() string {
	switch t {
	case SubjectTypeBIC, SubjectTypeBISAC, SubjectTypeLCC:
		return string(t)
	case "":
		return "Keyword"
	default:
		return pascalCase(string(t))
	}
}

// ContributionType is the role of a contributor.
type ContributionType string

const (
	ContributionTypeAuthor          ContributionType = "AUTHOR"
	ContributionTypeEditor          ContributionType = "EDITOR"
	ContributionTypeTranslator      ContributionType = "TRANSLATOR"
	ContributionTypePhotographer    ContributionType = "PHOTOGRAPHER"
	ContributionTypeIllustrator     ContributionType = "ILLUSTRATOR"
	ContributionTypeMusicEditor     ContributionType = "MUSIC_EDITOR"
	ContributionTypeForewordBy      ContributionType = "FOREWORD_BY"
	ContributionTypeIntroductionBy  ContributionType = "INTRODUCTION_BY"
	ContributionTypeAfterwordBy     ContributionType = "AFTERWORD_BY"
	ContributionTypePrefaceBy       ContributionType = "PREFACE_BY"
	ContributionTypeSoftwareBy      ContributionType = "SOFTWARE_BY"
	ContributionTypeResearchBy      ContributionType = "RESEARCH_BY"
	ContributionTypeContributionsBy ContributionType = "CONTRIBUTIONS_BY"
	ContributionTypeIndexer         ContributionType = "INDEXER"
)

// String returns the title-case name, e.g. "Foreword By".
func (t ContributionType) String() string {
	if t == "" {
		t = ContributionTypeAuthor
	}
	return titleCase(string(t))
}

// PublicationType is the format of a publication.
type PublicationType string

const (
	PublicationTypePaperback   PublicationType = "PAPERBACK"
	PublicationTypeHardback    PublicationType = "HARDBACK"
	PublicationTypePDF         PublicationType = "PDF"
	PublicationTypeHTML        PublicationType = "HTML"
	PublicationTypeXML         PublicationType = "XML"
	PublicationTypeEpub        PublicationType = "EPUB"
	PublicationTypeMobi        PublicationType = "MOBI"
	PublicationTypeAZW3        PublicationType = "AZW3"
	PublicationTypeDOCX        PublicationType = "DOCX"
	PublicationTypeFictionBook PublicationType = "FICTION_BOOK"
)

func (t PublicationType) String() string {
	switch t {
	case PublicationTypePDF, PublicationTypeHTML, PublicationTypeXML, PublicationTypeAZW3, PublicationTypeDOCX:
		return string(t)
	case "":
		return "Paperback"
	default:
		return pascalCase(string(t))
	}
}

// IsPhysical reports whether the format has dimensions.
func (t PublicationType) IsPhysical() bool {
	return t == PublicationTypePaperback || t == PublicationTypeHardback
}

// LanguageRelation describes how a language relates to the work.
type LanguageRelation string

const (
	LanguageRelationOriginal       LanguageRelation = "ORIGINAL"
	LanguageRelationTranslatedFrom LanguageRelation = "TRANSLATED_FROM"
	LanguageRelationTranslatedInto LanguageRelation = "TRANSLATED_INTO"
)

func (r LanguageRelation) String() string {
	if r == "" {
		r = LanguageRelationOriginal
	}
	return titleCase(string(r))
}

// SeriesType distinguishes journals from book series.
type SeriesType string

const (
	SeriesTypeJournal    SeriesType = "JOURNAL"
	SeriesTypeBookSeries SeriesType = "BOOK_SERIES"
)

func (t SeriesType) String() string {
	if t == "" {
		t = SeriesTypeBookSeries
	}
	return titleCase(string(t))
}

// EnumValue is one entry of an enum catalogue returned by schema
// introspection ({"name": "MONOGRAPH"}).
type EnumValue[E ~string] struct {
	Name E `json:"name"`
}

// EnumDefinition is the enumValues list of an introspected type.
type EnumDefinition[E ~string] struct {
	EnumValues []EnumValue[E] `json:"enumValues"`
}

// Names returns the values in schema order.
func (d EnumDefinition[E]) Names() []E {
	names := make([]E, 0, len(d.EnumValues))
	for _, v := range d.EnumValues {
		names = append(names, v.Name)
	}
	return names
}

// titleCase turns "OUT_OF_PRINT" into "Out Of Print".
func titleCase(token string) string {
	words := strings.Split(strings.ToLower(token), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// pascalCase turns "PUBLICATION_DATE" into "PublicationDate".
func pascalCase(token string) string {
	return strings.ReplaceAll(titleCase(token), " ", "")
}
