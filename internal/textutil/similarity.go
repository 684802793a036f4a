package textutil

// Similarity scores two names in [0, 1] after normalization.
func Similarity(a, b string) float64 {
	return NewScorer(a).Score(b)
}

// Scorer compares one query name against many candidates, reusing the
// normalized query and the distance buffers between calls. A Scorer is not
// safe for concurrent use.
type Scorer struct {
	query []rune
	prev  []int
	curr  []int
}

// NewScorer prepares a scorer for the given query name.
func NewScorer(query string) *Scorer {
	q := []rune(Normalize(query))
	return &Scorer{
		query: q,
		prev:  make([]int, len(q)+1),
		curr:  make([]int, len(q)+1),
	}
}

// Score returns the similarity between the scorer's query and candidate.
func (s *Scorer) Score(candidate string) float64 {
	c := []rune(Normalize(candidate))
	longest := max(len(s.query), len(c))
	if longest == 0 {
		return 1
	}
	return 1 - float64(s.distance(c))/float64(longest)
}

// distance is the Levenshtein distance using two rolling rows.
func (s *Scorer) distance(c []rune) int {
	q := s.query
	if len(q) == 0 {
		return len(c)
	}
	if len(c) == 0 {
		return len(q)
	}
	prev, curr := s.prev, s.curr
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(c); j++ {
		curr[0] = j
		for i := 1; i <= len(q); i++ {
			cost := 1
			if q[i-1] == c[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	s.prev, s.curr = prev, curr
	return prev[len(q)]
}
