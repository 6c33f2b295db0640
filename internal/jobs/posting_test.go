package jobs

import (
	"reflect"
	"testing"
)

func TestParseListField(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"commas", "Python, SQL, AWS", []string{"Python", "SQL", "AWS"}},
		{"newlines", "Python\nSQL", []string{"Python", "SQL"}},
		{"single", "Python", []string{"Python"}},
		{"empty", "", []string{}},
		{"comma wins over newline", "Python,\nSQL", []string{"Python", "SQL"}},
		{"drops empties", "Python,,  ,SQL", []string{"Python", "SQL"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseListField(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseListField(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecodeRows(t *testing.T) {
	rows := []map[string]string{
		{
			"id":           "job-1",
			"title":        "Go Developer",
			"location":     "Đà Nẵng",
			"type":         "Full-time",
			"salary":       "25-40M",
			"description":  "Build services",
			"skills":       "Go, SQL",
			"requirements": "3+ years\nEnglish",
			"benefits":     "Remote",
			"contact":      "hr@example.com",
		},
	}

	postings, err := DecodeRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if postings.Len() != 1 {
		t.Fatalf("expected 1 posting, got %d", postings.Len())
	}

	p := postings.Items[0]
	if p.ID != "job-1" || p.Title != "Go Developer" || p.EmploymentType != "Full-time" {
		t.Fatalf("unexpected posting: %+v", p)
	}
	if !reflect.DeepEqual(p.Skills, []string{"Go", "SQL"}) {
		t.Fatalf("unexpected skills: %v", p.Skills)
	}
	if !reflect.DeepEqual(p.Requirements, []string{"3+ years", "English"}) {
		t.Fatalf("unexpected requirements: %v", p.Requirements)
	}
	if p.Contact != "hr@example.com" {
		t.Fatalf("unexpected contact: %q", p.Contact)
	}
}
