package websearch

import (
	"context"
	"fmt"
	"strings"
)

// maxResultsCap is the per-call limit of the Custom Search API.
const maxResultsCap = 10

// maxCitations limits how many source links are appended to an answer.
const maxCitations = 3

// NoResultsMessage is shown when the search returned nothing usable.
const NoResultsMessage = "Không tìm thấy kết quả phù hợp. Bạn có thể thử mô tả cụ thể hơn."

// Result is a single search hit.
type Result struct {
	Title   string
	Snippet string
	Link    string
}

// Results is an ordered list of search hits.
type Results struct {
	Items []Result
}

// Searcher issues a recruitment-scoped web query.
type Searcher interface {
	Search(ctx context.Context, query string, max int) (*Results, error)
}

// Citations returns up to three source links in result order.
func (r *Results) Citations() []string {
	links := make([]string, 0, maxCitations)
	for _, item := range r.Items {
		if item.Link == "" {
			continue
		}
		links = append(links, item.Link)
		if len(links) == maxCitations {
			break
		}
	}
	return links
}

// Format renders the results with their source links appended verbatim.
func (r *Results) Format() string {
	if r == nil || len(r.Items) == 0 {
		return NoResultsMessage
	}

	var b strings.Builder
	b.WriteString("🔎 Kết quả tìm kiếm liên quan:\n\n")

	for i, item := range r.Items {
		title := item.Title
		if title == "" {
			title = "(Không tiêu đề)"
		}
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, title)
		if item.Snippet != "" {
			fmt.Fprintf(&b, "   - %s\n", item.Snippet)
		}
		if item.Link != "" {
			fmt.Fprintf(&b, "   - 🔗 %s\n", item.Link)
		}
		b.WriteString("\n")
	}

	if citations := r.Citations(); len(citations) > 0 {
		b.WriteString("Nguồn:\n")
		for _, link := range citations {
			fmt.Fprintf(&b, "- %s\n", link)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// clampMax bounds the requested result count to the API limit.
func clampMax(n int) int {
	if n < 1 {
		return 5
	}
	if n > maxResultsCap {
		return maxResultsCap
	}
	return n
}
