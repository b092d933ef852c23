// Package export builds links to the metadata export service.
//
// A link has the form
//
//	<export-api>/specifications/<format>::<vendor>/work/<work-id>
package export

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Specification is one export format offered for a work.
type Specification struct {
	Format string
	Vendor string
	Label  string

	// Group collects related specifications under one heading ("ONIX 3.0").
	// Empty for stand-alone entries.
	Group string
}

// ID returns "format::vendor".
func (s Specification) ID() string {
	return s.Format + "::" + s.Vendor
}

// Specifications lists every export format in display order.
var Specifications = []Specification{
	{Format: "onix_3.0", Vendor: "thoth", Label: "Thoth", Group: "ONIX 3.0"},
	{Format: "onix_3.0", Vendor: "project_muse", Label: "Project MUSE", Group: "ONIX 3.0"},
	{Format: "onix_3.0", Vendor: "oapen", Label: "OAPEN", Group: "ONIX 3.0"},
	{Format: "onix_3.0", Vendor: "jstor", Label: "JSTOR", Group: "ONIX 3.0"},
	{Format: "onix_3.0", Vendor: "google_books", Label: "Google Books", Group: "ONIX 3.0"},
	{Format: "onix_3.0", Vendor: "overdrive", Label: "OverDrive", Group: "ONIX 3.0"},
	{Format: "onix_2.1", Vendor: "ebsco_host", Label: "EBSCO Host", Group: "ONIX 2.1"},
	{Format: "onix_2.1", Vendor: "proquest_ebrary", Label: "ProQuest Ebrary", Group: "ONIX 2.1"},
	{Format: "csv", Vendor: "thoth", Label: "CSV"},
	{Format: "json", Vendor: "thoth", Label: "JSON"},
	{Format: "kbart", Vendor: "oclc", Label: "OCLC KBART"},
	{Format: "bibtex", Vendor: "thoth", Label: "BibTeX"},
	{Format: "doideposit", Vendor: "crossref", Label: "CrossRef DOI deposit"},
	{Format: "marc21record", Vendor: "thoth", Label: "MARC 21 Record"},
	{Format: "marc21markup", Vendor: "thoth", Label: "MARC 21 Markup"},
	{Format: "marc21xml", Vendor: "thoth", Label: "MARC 21 XML"},
}

// Lookup finds a specification by its "format::vendor" ID.
func Lookup(id string) (Specification, error) {
	for _, spec := range Specifications {
		if spec.ID() == id {
			return spec, nil
		}
	}
	return Specification{}, fmt.Errorf("%s is not a valid metadata specification", id)
}

// Link returns the export URL of workID in spec. A trailing slash on base is
// ignored.
func Link(base string, spec Specification, workID uuid.UUID) string {
	return fmt.Sprintf("%s/specifications/%s/work/%s", strings.TrimRight(base, "/"), spec.ID(), workID)
}

// ExportLink is a labelled export URL.
type ExportLink struct {
	Specification
	URL string
}

// Links returns the export URLs of workID for every specification.
func Links(base string, workID uuid.UUID) []ExportLink {
	links := make([]ExportLink, 0, len(Specifications))
	for _, spec := range Specifications {
		links = append(links, ExportLink{Specification: spec, URL: Link(base, spec, workID)})
	}
	return links
}

// Section is a heading with its links. Stand-alone entries form a section of
// one link with an empty heading.
type Section struct {
	Heading string
	Links   []ExportLink
}

// Group arranges links into sections, keeping their order.
func Group(links []ExportLink) []Section {
	var sections []Section
	for _, link := range links {
		n := len(sections)
		if link.Group != "" && n > 0 && sections[n-1].Heading == link.Group {
			sections[n-1].Links = append(sections[n-1].Links, link)
			continue
		}
		sections = append(sections, Section{Heading: link.Group, Links: []ExportLink{link}})
	}
	return sections
}
