package models

// SearchHit is a single match in the output index.
type SearchHit struct {
	ID         string              `json:"id"`
	Path       string              `json:"path"`
	OutputPath string              `json:"output_path"`
	Title      string              `json:"title"`
	Format     string              `json:"format"`
	Score      float64             `json:"score"`
	Fragments  map[string][]string `json:"fragments,omitempty"`
	Rank       int                 `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query     string       `json:"query"`
	Hits      []*SearchHit `json:"hits"`
	Total     uint64       `json:"total"`
	QueryTime int64        `json:"query_time_ms"`
}
