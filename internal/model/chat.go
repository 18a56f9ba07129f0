package model

// Source identifies a chunk that contributed to an answer. Text carries a
// short snippet for display, not the full chunk.
type Source struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// QueryResult is the outcome of one chat turn.
type QueryResult struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Degraded bool     `json:"degraded,omitempty"`
}
