package insights

import (
	"sort"
	"strings"

	"github.com/ohmnow/finsight/backend/internal/model"
)

const (
	similarityMergeThreshold = 0.8
	wordOverlapThreshold     = 0.6
)

// AnalyzeMerchantClusters groups merchant name variants that likely refer to
// the same underlying business. Clustering is a greedy single pass: names are
// visited in sorted order, each unprocessed name seeds a cluster and absorbs
// every later unprocessed name that passes either the folded-form similarity
// test or the shared-word test, so each name lands in at most one cluster.
// The result maps each cluster's representative (the member with the highest
// transaction count) to the full set of member names. Clusters of size one
// are dropped.
func AnalyzeMerchantClusters(transactions []model.Transaction) map[string][]string {
	counts := make(map[string]int)
	for _, txn := range transactions {
		name := ExtractMerchantName(txn.Description)
		if name == "" {
			continue
		}
		counts[name]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	folded := make(map[string]string, len(names))
	for _, name := range names {
		folded[name] = NormalizeForComparison(name)
	}

	clusters := make(map[string][]string)
	processed := make(map[string]bool)

	for _, name := range names {
		if processed[name] {
			continue
		}
		processed[name] = true
		cluster := []string{name}

		for _, candidate := range names {
			if processed[candidate] {
				continue
			}
			if sameMerchant(folded[name], folded[candidate]) {
				processed[candidate] = true
				cluster = append(cluster, candidate)
			}
		}

		if len(cluster) < 2 {
			continue
		}
		clusters[representative(cluster, counts)] = cluster
	}

	return clusters
}

// sameMerchant reports whether two folded merchant names denote the same
// business: either their edit-distance similarity clears the merge threshold
// or enough significant words are shared.
func sameMerchant(a, b string) bool {
	if Similarity(a, b) > similarityMergeThreshold {
		return true
	}
	return wordOverlap(a, b) > wordOverlapThreshold
}

// wordOverlap returns the share of the larger name's significant tokens
// (length > 2) that appear in both names.
func wordOverlap(a, b string) float64 {
	aTokens := significantTokens(a)
	bTokens := significantTokens(b)

	larger := len(aTokens)
	if len(bTokens) > larger {
		larger = len(bTokens)
	}
	if larger == 0 {
		return 0
	}

	shared := 0
	for token := range aTokens {
		if bTokens[token] {
			shared++
		}
	}
	return float64(shared) / float64(larger)
}

func significantTokens(name string) map[string]bool {
	tokens := make(map[string]bool)
	for _, token := range strings.Fields(name) {
		if len(token) > 2 {
			tokens[token] = true
		}
	}
	return tokens
}

// representative picks the cluster member with the highest transaction
// count, breaking ties lexicographically for determinism.
func representative(cluster []string, counts map[string]int) string {
	best := cluster[0]
	for _, name := range cluster[1:] {
		if counts[name] > counts[best] || (counts[name] == counts[best] && name < best) {
			best = name
		}
	}
	return best
}
