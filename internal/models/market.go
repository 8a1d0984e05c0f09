package models

// Question holds the human-readable side of a market record.
type Question struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// MarketRecord represents one prediction market from the aggregated dataset.
// Unknown dataset fields are ignored on decode; Embedding never leaves the
// API (see Public).
type MarketRecord struct {
	Question    Question  `json:"question"`
	Platform    string    `json:"platform"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	Probability float64   `json:"probability,omitempty"`
	URL         string    `json:"url,omitempty"`
	Embedding   []float64 `json:"embedding,omitempty"`
}

// Public returns a copy of the record with the embedding vector stripped.
func (m MarketRecord) Public() MarketRecord {
	m.Embedding = nil
	return m
}

// SimilarityMatch pairs a market with its similarity score against a headline.
type SimilarityMatch struct {
	Market MarketRecord `json:"market"`
	Score  float64      `json:"score"`
}
