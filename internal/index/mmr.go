package index

import (
	"math"

	"docs-rag/internal/vectorstore"
)

// maximalMarginalRelevance greedily picks up to k candidate indices. The
// first pick is the most query-similar hit; each further pick maximises
// lambda*sim(query, hit) - (1-lambda)*max(sim(hit, picked)).
func maximalMarginalRelevance(query []float32, hits []vectorstore.Hit, k int, lambda float64) []int {
	if k > len(hits) {
		k = len(hits)
	}
	if k <= 0 {
		return nil
	}

	relevance := make([]float64, len(hits))
	for i, hit := range hits {
		relevance[i] = cosine(query, hit.Embedding)
	}

	picked := make([]int, 0, k)
	used := make([]bool, len(hits))
	for len(picked) < k {
		best := -1
		bestScore := math.Inf(-1)
		for i := range hits {
			if used[i] {
				continue
			}
			score := lambda * relevance[i]
			if len(picked) > 0 {
				redundancy := math.Inf(-1)
				for _, j := range picked {
					if sim := cosine(hits[i].Embedding, hits[j].Embedding); sim > redundancy {
						redundancy = sim
					}
				}
				score -= (1 - lambda) * redundancy
			}
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		used[best] = true
		picked = append(picked, best)
	}
	return picked
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
