package jobs

import (
	"strings"
	"testing"
)

func sampleDirectory() *Postings {
	return &Postings{Items: []*Posting{
		{
			ID:          "job-1",
			Title:       "Python Backend Developer",
			Location:    "Hà Nội",
			Salary:      "",
			Description: "Develop backend services",
			Skills:      []string{"Python", "SQL"},
		},
		{
			ID:          "job-2",
			Title:       "Frontend Engineer",
			Description: "React applications",
			Skills:      []string{"JavaScript", "React"},
		},
		{
			ID:          "job-3",
			Title:       "Data Analyst",
			Description: "Reporting with SQL and Python",
			Skills:      []string{"SQL", "Excel"},
		},
	}}
}

func TestMatchEmptyTermsReturnsAllInOrder(t *testing.T) {
	dir := sampleDirectory()

	got := dir.Match("", "")
	if got.Len() != dir.Len() {
		t.Fatalf("expected %d postings, got %d", dir.Len(), got.Len())
	}

	for i, posting := range got.Items {
		if posting.ID != dir.Items[i].ID {
			t.Fatalf("order not preserved at %d: got %s", i, posting.ID)
		}
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	dir := sampleDirectory()

	lower := dir.Match("python", "")
	upper := dir.Match("PYTHON", "")

	if lower.Len() != upper.Len() {
		t.Fatalf("case sensitivity detected: %d vs %d", lower.Len(), upper.Len())
	}
	for i := range lower.Items {
		if lower.Items[i].ID != upper.Items[i].ID {
			t.Fatalf("results differ at %d", i)
		}
	}
}

func TestMatchOrSemantics(t *testing.T) {
	dir := sampleDirectory()

	// "python" hits job-1 (title/skills) and job-3 (description).
	got := dir.Match("Python Developer", "")
	if got.Len() != 3 {
		// "developer" also hits job-1 only; "python" hits job-1 and job-3.
		// job-2 has neither term.
		t.Logf("matched: %v", got.Titles())
	}
	if got.FindByID("job-2") != nil {
		t.Fatal("job-2 must not match")
	}
	if got.FindByID("job-1") == nil || got.FindByID("job-3") == nil {
		t.Fatalf("expected job-1 and job-3, got %v", got.Titles())
	}
}

func TestMatchSkillsSplitOnCommas(t *testing.T) {
	dir := sampleDirectory()

	got := dir.Match("", "React, Excel")
	if got.Len() != 2 {
		t.Fatalf("expected 2 postings, got %d (%v)", got.Len(), got.Titles())
	}
	if got.Items[0].ID != "job-2" || got.Items[1].ID != "job-3" {
		t.Fatalf("load order not preserved: %v", got.Titles())
	}
}

func TestMatchNoHitsReturnsEmpty(t *testing.T) {
	dir := sampleDirectory()

	got := dir.Match("blockchain", "rust")
	if got.Len() != 0 {
		t.Fatalf("expected no postings, got %v", got.Titles())
	}

	if FormatList(got) != NoMatchMessage {
		t.Fatal("empty result must render the no-match message")
	}
}

func TestJobSearchScenario(t *testing.T) {
	dir := &Postings{Items: []*Posting{{
		ID:          "job-1",
		Title:       "Python Backend Developer",
		Location:    "Hà Nội",
		Description: "Build APIs",
		Skills:      []string{"Python", "SQL"},
	}}}

	// "Tôi muốn tìm việc Python Developer" -> position extracted by the classifier.
	got := dir.Match("Python Developer", "")
	if got.Len() != 1 || got.Items[0].ID != "job-1" {
		t.Fatalf("expected exactly job-1, got %v", got.Titles())
	}

	out := FormatList(got)
	for _, want := range []string{"Python Backend Developer", "Hà Nội", "Thỏa thuận", "Python, SQL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("formatted output missing %q:\n%s", want, out)
		}
	}
}
