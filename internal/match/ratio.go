package match

import "math"

// ratio computes the indel similarity of two rune slices as a percentage:
// 100 * (len(a)+len(b)-distance) / (len(a)+len(b)), where distance counts
// insertions and deletions (a substitution costs two). Equivalent to
// 2*LCS/(len(a)+len(b)) scaled to [0,100].
func ratio(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 && lb == 0 {
		return 100
	}
	if la == 0 || lb == 0 {
		return 0
	}

	dist := indelDistance(a, b)
	total := la + lb
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// indelDistance is the edit distance with insert/delete cost 1 and no
// direct substitution. Two rolling rows keep memory at O(min rune count).
func indelDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				del := prev[j] + 1
				ins := curr[j-1] + 1
				if del < ins {
					curr[j] = del
				} else {
					curr[j] = ins
				}
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
