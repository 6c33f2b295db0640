package jobs

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Posting is a single open position. Postings are immutable once loaded; the
// directory replaces the whole set on reload.
type Posting struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"type"`
	Salary         string   `json:"salary"`
	Description    string   `json:"description"`
	Skills         []string `json:"skills"`
	Requirements   []string `json:"requirements"`
	Benefits       []string `json:"benefits"`
	Contact        string   `json:"contact"`
}

type Postings struct {
	Items []*Posting `json:"jobs"`
}

func (p *Postings) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

func (p *Postings) Titles() []string {
	titles := make([]string, 0, p.Len())
	for _, posting := range p.Items {
		titles = append(titles, posting.Title)
	}
	return titles
}

// searchText is the haystack a posting is matched against.
func (p *Posting) searchText() string {
	return strings.ToLower(fmt.Sprintf("%s %s %s", p.Title, p.Description, strings.Join(p.Skills, " ")))
}

// ParseListField splits a single sheet cell into a list. Comma separation wins
// when a comma is present, then newline separation, otherwise the cell is a
// single item. Items are trimmed and empty ones dropped.
func ParseListField(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	var parts []string
	switch {
	case strings.Contains(s, ","):
		parts = strings.Split(s, ",")
	case strings.Contains(s, "\n"):
		parts = strings.Split(s, "\n")
	default:
		parts = []string{s}
	}

	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

var listFields = map[string]bool{
	"skills":       true,
	"requirements": true,
	"benefits":     true,
}

// DecodeRows converts header-keyed sheet rows into postings, preserving row order.
func DecodeRows(rows []map[string]string) (*Postings, error) {
	items := make([]*Posting, 0, len(rows))
	for i, row := range rows {
		record := make(map[string]any, len(row))
		for key, value := range row {
			if listFields[key] {
				record[key] = ParseListField(value)
				continue
			}
			record[key] = value
		}

		var posting Posting
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:  &posting,
			TagName: "json",
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(record); err != nil {
			return nil, fmt.Errorf("decoding job row %d: %w", i+2, err)
		}

		items = append(items, &posting)
	}

	return &Postings{Items: items}, nil
}
