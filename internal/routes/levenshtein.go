package routes

// Levenshtein returns the minimum number of single-rune insertions, deletions
// or substitutions that turn a into b. It is case sensitive; callers
// lower-case both operands.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	// Two rows of the (len(ra)+1) x (len(rb)+1) table are enough.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
