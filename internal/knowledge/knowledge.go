package knowledge

import "context"

// Record is one question/answer entry of the knowledge tab.
type Record struct {
	Question string
	Answer   string
	Category string
}

// Hit is the best match for a query. Confidence is a similarity score in
// [0, 1]; callers compare it against their configured threshold and treat a
// low-confidence hit the same as no hit.
type Hit struct {
	Question   string
	Answer     string
	Category   string
	Confidence float64
}

// Store exposes the single retrieval capability the orchestration consumes:
// the top match only, or nil when nothing matches at all.
type Store interface {
	Retrieve(ctx context.Context, query string) (*Hit, error)
}
