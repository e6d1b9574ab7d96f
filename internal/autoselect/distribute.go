package autoselect

import "sort"

// splitByShares computes integer per-pool quotas from percentage shares.
// Each pool gets floor(total*percent/100); the rounding remainder is
// handed out one unit at a time to the highest-percentage pools first
// (declaration order breaks ties), so the quotas always sum to total.
func splitByShares(total int, shares []PoolShare) map[string]int {
	quotas := make(map[string]int, len(shares))
	if total <= 0 || len(shares) == 0 {
		return quotas
	}

	assigned := 0
	for _, sh := range shares {
		q := total * sh.Percent / 100
		quotas[sh.Pool] = q
		assigned += q
	}

	// Highest percentage first; stable sort keeps declaration order on ties.
	order := make([]PoolShare, len(shares))
	copy(order, shares)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Percent > order[j].Percent
	})

	for i := 0; assigned < total; i = (i + 1) % len(order) {
		quotas[order[i].Pool]++
		assigned++
	}

	return quotas
}
