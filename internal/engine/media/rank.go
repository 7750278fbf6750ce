package media

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// Lexical BM25 ranking over the catalog. Documents are the concatenated
// Name, About and Topics columns; the index is built once per process.

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

type bm25Index struct {
	docs   []map[string]int // term frequencies per outlet
	lens   []int
	avgLen float64
	df     map[string]int // document frequency per term
}

var (
	indexOnce sync.Once
	index     *bm25Index
)

// tokenize splits s into lowercase alphanumeric runs.
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func buildIndex(outlets []Outlet) *bm25Index {
	idx := &bm25Index{df: make(map[string]int)}
	total := 0
	for _, o := range outlets {
		tokens := tokenize(o.Name + " " + o.About + " " + o.Topics)
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			idx.df[t]++
		}
		idx.docs = append(idx.docs, tf)
		idx.lens = append(idx.lens, len(tokens))
		total += len(tokens)
	}
	if len(outlets) > 0 {
		idx.avgLen = float64(total) / float64(len(outlets))
	}
	return idx
}

// score computes the BM25 score of document i for the query terms.
func (idx *bm25Index) score(i int, terms []string) float64 {
	n := float64(len(idx.docs))
	dl := float64(idx.lens[i])
	var s float64
	for _, t := range terms {
		tf := float64(idx.docs[i][t])
		if tf == 0 {
			continue
		}
		df := float64(idx.df[t])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		s += idf * tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*dl/idx.avgLen))
	}
	return s
}

// SearchMedia ranks catalog outlets against query and returns a page of
// results sorted by score, best first. Outlets with zero score are omitted.
func SearchMedia(query string, limit, offset int) ([]Outlet, error) {
	engine.IncrMediaSearch()

	outlets, err := Outlets()
	if err != nil {
		return nil, err
	}
	indexOnce.Do(func() {
		index = buildIndex(outlets)
	})

	terms := tokenize(query)
	type scored struct {
		i     int
		score float64
	}
	var hits []scored
	for i := range outlets {
		if s := index.score(i, terms); s > 0 {
			hits = append(hits, scored{i, s})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if offset >= len(hits) {
		return []Outlet{}, nil
	}
	hits = hits[offset:]
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]Outlet, 0, len(hits))
	for _, h := range hits {
		results = append(results, outlets[h.i])
	}
	return results, nil
}

// resetIndex clears the memoized BM25 index. Test helper.
func resetIndex() {
	indexOnce = sync.Once{}
	index = nil
}
