package insights

// Similarity returns the normalized edit-distance similarity between two
// strings in [0,1]. Two empty strings are identical (1.0).
func Similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(longest)
}

// levenshteinDistance computes the edit distance between two strings using
// the standard dynamic-programming recurrence with unit insertion, deletion
// and substitution costs.
func levenshteinDistance(a, b string) int {
	rows := len(a) + 1
	cols := len(b) + 1

	dist := make([][]int, rows)
	for i := range dist {
		dist[i] = make([]int, cols)
		dist[i][0] = i
	}
	for j := 1; j < cols; j++ {
		dist[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			deletion := dist[i-1][j] + 1
			insertion := dist[i][j-1] + 1
			substitution := dist[i-1][j-1] + cost

			min := deletion
			if insertion < min {
				min = insertion
			}
			if substitution < min {
				min = substitution
			}
			dist[i][j] = min
		}
	}
	return dist[rows-1][cols-1]
}
