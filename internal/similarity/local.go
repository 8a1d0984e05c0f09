package similarity

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/adjacent-research/news-api/internal/models"
)

// Lister supplies the market snapshot the lexical strategy scores against.
type Lister interface {
	Records(ctx context.Context) ([]models.MarketRecord, error)
}

// Local scores headlines against every market title with a character-bigram
// Dice coefficient. Identical strings score 1.0.
type Local struct {
	markets Lister
}

// NewLocal builds the lexical strategy over a market snapshot.
func NewLocal(markets Lister) *Local {
	return &Local{markets: markets}
}

// Match implements Strategy.
func (l *Local) Match(ctx context.Context, headline string, threshold float64, count int) ([]models.SimilarityMatch, error) {
	records, err := l.markets.Records(ctx)
	if err != nil {
		return nil, err
	}

	headline = strings.ToLower(strings.TrimSpace(headline))
	headlineBigrams := bigrams(headline)

	matches := make([]models.SimilarityMatch, 0, count)
	for _, rec := range records {
		title := strings.ToLower(NormalizeTitle(rec.Question.Title))
		score := diceCoefficient(headlineBigrams, bigrams(title))
		if score < threshold {
			continue
		}
		matches = append(matches, models.SimilarityMatch{
			Market: rec.Public(),
			Score:  score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if count > 0 && len(matches) > count {
		matches = matches[:count]
	}

	return matches, nil
}

// NormalizeTitle rewrites slug-style market titles into headline form:
// hyphens become spaces and each word is title-cased.
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "-", " ")
	words := strings.Fields(title)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// bigrams counts the character pairs of s, whitespace excluded.
func bigrams(s string) map[string]int {
	runes := []rune(s)
	out := make(map[string]int, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		if unicode.IsSpace(runes[i]) || unicode.IsSpace(runes[i+1]) {
			continue
		}
		out[string(runes[i:i+2])]++
	}
	return out
}

// diceCoefficient is Sørensen-Dice over bigram multisets: 2*|A∩B|/(|A|+|B|).
func diceCoefficient(a, b map[string]int) float64 {
	totalA := 0
	for _, n := range a {
		totalA += n
	}
	totalB := 0
	for _, n := range b {
		totalB += n
	}
	if totalA+totalB == 0 {
		return 0
	}

	overlap := 0
	for gram, n := range a {
		if m, ok := b[gram]; ok {
			if m < n {
				overlap += m
			} else {
				overlap += n
			}
		}
	}

	return 2 * float64(overlap) / float64(totalA+totalB)
}
