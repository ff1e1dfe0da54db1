package transcript

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultSearchThreshold = 0.75
	defaultMaxResults      = 5
)

// SearchResult is one segment matched by a fuzzy phrase search, ranked by
// similarity score in [0, 1].
type SearchResult struct {
	Segment Segment `json:"segment"`
	Score   float64 `json:"score"`
}

// SearcherOption is a functional option for configuring a [Searcher].
type SearcherOption func(*Searcher)

// WithThreshold sets the minimum similarity score a segment must reach to be
// included in search results. Default: 0.75.
func WithThreshold(threshold float64) SearcherOption {
	return func(s *Searcher) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithMaxResults caps the number of results returned per query. Default: 5.
func WithMaxResults(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// Searcher performs fuzzy phrase search over transcript segments.
//
// Scoring combines two signals per segment: the best sliding-window
// Jaro-Winkler similarity between the query and same-length word windows of
// the segment text, boosted when the query and window overlap phonetically
// (Double Metaphone). This tolerates both misheard words in the transcript
// and loosely phrased queries.
//
// A Searcher is read-only after construction and safe for concurrent use.
type Searcher struct {
	threshold  float64
	maxResults int
}

// NewSearcher returns a Searcher configured with the supplied options.
func NewSearcher(opts ...SearcherOption) *Searcher {
	s := &Searcher{
		threshold:  defaultSearchThreshold,
		maxResults: defaultMaxResults,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search returns the segments of t most similar to query, best first. Results
// below the threshold are dropped; an empty query returns nil.
func (s *Searcher) Search(t *Transcript, query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || t == nil {
		return nil
	}
	qTokens := strings.Fields(q)
	qCodes := codesForTokens(qTokens)

	var results []SearchResult
	for _, seg := range t.Segments {
		score := s.scoreSegment(q, qTokens, qCodes, seg.Text)
		if score >= s.threshold {
			results = append(results, SearchResult{Segment: seg, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	return results
}

// scoreSegment computes the similarity between the query and one segment.
func (s *Searcher) scoreSegment(q string, qTokens []string, qCodes map[string]struct{}, text string) float64 {
	segLower := strings.ToLower(strings.TrimSpace(text))
	if segLower == "" {
		return 0
	}
	segTokens := strings.Fields(segLower)

	// Whole-segment comparison covers short segments.
	best := matchr.JaroWinkler(q, segLower, false)

	// Sliding window of the query's length over the segment words, so a
	// two-word query can score well against one phrase inside a long segment.
	w := len(qTokens)
	if w >= 1 && len(segTokens) > w {
		for i := 0; i+w <= len(segTokens); i++ {
			window := strings.Join(segTokens[i:i+w], " ")
			if sc := matchr.JaroWinkler(q, window, false); sc > best {
				best = sc
			}
		}
	}

	// Phonetic overlap nudges near-threshold matches over the line without
	// letting an unrelated segment in on sound alone.
	if best < 1 && codesOverlap(qCodes, codesForTokens(segTokens)) {
		best += (1 - best) * 0.25
	}
	return best
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, sec := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if sec != "" {
			codes[sec] = struct{}{}
		}
	}
	return codes
}

// codesOverlap reports whether the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
