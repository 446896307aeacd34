package websearch

import "context"

// Result is a single open-web search hit.
type Result struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

// Provider is the open-web search capability. Used only as a supplement
// when the knowledge base cannot answer and the router allowed it.
type Provider interface {
	Query(ctx context.Context, text string) ([]Result, error)
}
