package catalogue

import (
	"encoding/json"
	"testing"
	"time"
)

const sampleWork = `{
	"workId": "0c1e6a6b-b9a8-4a5b-8f56-8a1a5a0f5e11",
	"workType": "EDITED_BOOK",
	"workStatus": "FORTHCOMING",
	"fullTitle": "Open Access: A Reader",
	"title": "Open Access",
	"subtitle": "A Reader",
	"doi": "https://doi.org/10.11647/OBP.0001",
	"pageCount": null,
	"landingPage": null,
	"updatedAt": "2024-03-01T10:15:30.123456Z",
	"contributions": [
		{"fullName": "Ada Lovelace", "lastName": "Lovelace", "contributionType": "EDITOR", "mainContribution": true, "contributionOrdinal": 1,
		 "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z",
		 "contributor": {"fullName": "Ada Lovelace", "lastName": "Lovelace", "orcid": "https://orcid.org/0000-0002-1825-0097"}},
		{"fullName": "Charles Babbage", "lastName": "Babbage", "contributionType": "FOREWORD_BY", "mainContribution": false, "contributionOrdinal": 2}
	],
	"imprint": {
		"imprintName": "OBP",
		"publisher": {"publisherName": "Open Book Publishers", "publisherShortname": "OBP"}
	}
}`

func TestWork_Decode(t *testing.T) {
	var w Work
	if err := json.Unmarshal([]byte(sampleWork), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if w.WorkID.String() != "0c1e6a6b-b9a8-4a5b-8f56-8a1a5a0f5e11" {
		t.Errorf("WorkID = %s", w.WorkID)
	}
	if w.WorkType != WorkTypeEditedBook || w.WorkStatus != WorkStatusForthcoming {
		t.Errorf("WorkType/WorkStatus = %s/%s", w.WorkType, w.WorkStatus)
	}
	if w.PageCount != 0 || w.LandingPage != "" {
		t.Errorf("null scalars should decode to zero values, got %d %q", w.PageCount, w.LandingPage)
	}
	if w.DOI.String() != "10.11647/OBP.0001" {
		t.Errorf("DOI = %s", w.DOI)
	}
	if got := w.UpdatedAt.String(); got != "2024-03-01 10:15:30" {
		t.Errorf("UpdatedAt = %q", got)
	}
	if len(w.Contributions) != 2 || w.Contributions[0].Contributor.ORCID == "" {
		t.Errorf("Contributions = %+v", w.Contributions)
	}
}

func TestWork_Helpers(t *testing.T) {
	w := Work{Title: "Open Access", Subtitle: "A Reader"}
	if got := w.CompileFullTitle(); got != "Open Access: A Reader" {
		t.Errorf("CompileFullTitle() = %q", got)
	}
	w.Subtitle = ""
	if got := w.CompileFullTitle(); got != "Open Access" {
		t.Errorf("CompileFullTitle() without subtitle = %q", got)
	}

	if _, ok := w.CompilePageInterval(); ok {
		t.Error("CompilePageInterval() should need both pages")
	}
	w.FirstPage, w.LastPage = "15", "32"
	if got, ok := w.CompilePageInterval(); !ok || got != "15–32" {
		t.Errorf("CompilePageInterval() = (%q, %v)", got, ok)
	}

	w.Imprint.Publisher = Publisher{PublisherName: "Open Book Publishers"}
	if got := w.Publisher(); got != "Open Book Publishers" {
		t.Errorf("Publisher() = %q", got)
	}
	w.Imprint.Publisher.PublisherShortname = "OBP"
	if got := w.Publisher(); got != "OBP" {
		t.Errorf("Publisher() with short name = %q", got)
	}

	w.Contributions = []Contribution{
		{FullName: "Ada Lovelace", MainContribution: true},
		{FullName: "Charles Babbage"},
		{FullName: "Mary Somerville", MainContribution: true},
	}
	names := w.MainContributors()
	if len(names) != 2 || names[0] != "Ada Lovelace" || names[1] != "Mary Somerville" {
		t.Errorf("MainContributors() = %v", names)
	}
}

func TestTimestamp(t *testing.T) {
	var ts Timestamp
	if ts.String() != "1970-01-01 00:00:00" {
		t.Errorf("zero String() = %q", ts.String())
	}
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || !ts.IsZero() {
		t.Errorf("null decode = (%v, %v)", ts, err)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected an error for a malformed timestamp")
	}

	in := Timestamp{time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out Timestamp
	if err := json.Unmarshal(data, &out); err != nil || !out.Equal(in.Time) {
		t.Errorf("round trip = (%v, %v), want %v", out, err, in)
	}
}

func TestPublication_Dimensions(t *testing.T) {
	tests := []struct {
		pub  Publication
		want string
	}{
		{Publication{}, ""},
		{Publication{WidthMM: 156, HeightMM: 234}, "156 × 234 mm"},
		{Publication{WidthMM: 156, HeightMM: 234, DepthMM: 12.5}, "156 × 234 × 12.5 mm"},
	}
	for _, tt := range tests {
		if got := tt.pub.Dimensions(); got != tt.want {
			t.Errorf("Dimensions() = %q, want %q", got, tt.want)
		}
	}
}

func TestDisplayCount(t *testing.T) {
	if got := DisplayCount(1, 20, 45); got != "Displaying books 1–20 of 45" {
		t.Errorf("DisplayCount() = %q", got)
	}
	if len(ListHeaders) != 7 || ListHeaders[1] != "Title" || ListHeaders[3] != "Contributors" {
		t.Errorf("ListHeaders = %v", ListHeaders)
	}
}
