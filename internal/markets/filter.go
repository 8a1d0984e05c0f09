package markets

import "github.com/adjacent-research/news-api/internal/models"

// Filter narrows the listing endpoint by exact field equality. Empty fields
// match everything; multiple fields intersect.
type Filter struct {
	Platform string
	Status   string
	Category string
}

// Apply returns the records matching every non-empty filter field, in input
// order.
func (f Filter) Apply(records []models.MarketRecord) []models.MarketRecord {
	if f.Platform == "" && f.Status == "" && f.Category == "" {
		return records
	}

	out := make([]models.MarketRecord, 0, len(records))
	for _, rec := range records {
		if f.Platform != "" && rec.Platform != f.Platform {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.Category != "" && rec.Category != f.Category {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Window slices up to size records starting at offset. An offset past the
// end yields an empty slice, never an error.
func Window(records []models.MarketRecord, offset, size int) []models.MarketRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []models.MarketRecord{}
	}
	end := offset + size
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}
