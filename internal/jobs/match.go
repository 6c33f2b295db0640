package jobs

import "strings"

// Match filters the postings against free-text criteria. With both criteria
// empty the whole set is returned in load order. Matching is deliberately
// permissive: any lowercase term appearing as a substring of the posting's
// title, description or skills is a hit. The filter is stable; no re-ranking.
func (p *Postings) Match(position, skills string) *Postings {
	terms := searchTerms(position, skills)
	if len(terms) == 0 {
		return &Postings{Items: p.Items}
	}

	matched := make([]*Posting, 0, p.Len())
	for _, posting := range p.Items {
		haystack := posting.searchText()
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched = append(matched, posting)
				break
			}
		}
	}

	return &Postings{Items: matched}
}

// searchTerms builds the lowercase term set: position split on whitespace,
// skills split on commas, trimmed, empties dropped.
func searchTerms(position, skills string) []string {
	var raw []string
	if position != "" {
		raw = append(raw, strings.Fields(strings.ToLower(position))...)
	}
	if skills != "" {
		raw = append(raw, strings.Split(strings.ToLower(skills), ",")...)
	}

	terms := make([]string, 0, len(raw))
	for _, term := range raw {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
