// Package ranking collects the best vector hits of a linear scan.
package ranking

import (
	"container/heap"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// TopK keeps the k best vector search results seen so far using a
// min-heap, so the weakest kept result can be evicted in O(log k).
// Ties on score are broken by chunk ID so results are deterministic.
type TopK struct {
	k int
	h resultHeap
}

// NewTopK creates a collector for at most k results.
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{k: k, h: make(resultHeap, 0, k)}
}

// Offer considers a result for inclusion.
func (t *TopK) Offer(r domain.VectorSearchResult) {
	if t.k == 0 {
		return
	}
	if t.h.Len() < t.k {
		heap.Push(&t.h, r)
		return
	}
	if worse(t.h[0], r) {
		t.h[0] = r
		heap.Fix(&t.h, 0)
	}
}

// Len returns the number of results currently kept.
func (t *TopK) Len() int {
	return t.h.Len()
}

// Results drains the collector and returns results best first.
func (t *TopK) Results() []domain.VectorSearchResult {
	results := make([]domain.VectorSearchResult, t.h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(&t.h).(domain.VectorSearchResult)
	}
	return results
}

// worse reports whether a ranks below b.
func worse(a, b domain.VectorSearchResult) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ChunkID > b.ChunkID
}

// resultHeap implements heap.Interface with the weakest result on top.
type resultHeap []domain.VectorSearchResult

func (h resultHeap) Len() int           { return len(h) }
func (h resultHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(domain.VectorSearchResult))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
