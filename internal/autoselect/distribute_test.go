package autoselect

import "testing"

func TestSplitBySharesExact(t *testing.T) {
	shares := []PoolShare{
		{Pool: "a", Percent: 50},
		{Pool: "b", Percent: 50},
	}
	quotas := splitByShares(10, shares)
	if quotas["a"] != 5 || quotas["b"] != 5 {
		t.Errorf("quotas = %v, want a=5 b=5", quotas)
	}
}

func TestSplitBySharesRemainderToHighestFirst(t *testing.T) {
	shares := []PoolShare{
		{Pool: "a", Percent: 33},
		{Pool: "b", Percent: 33},
		{Pool: "c", Percent: 34},
	}
	quotas := splitByShares(10, shares)

	sum := quotas["a"] + quotas["b"] + quotas["c"]
	if sum != 10 {
		t.Fatalf("quotas sum to %d, want exactly 10: %v", sum, quotas)
	}
	// Floors are 3/3/3; c has the highest percentage and takes the extra unit.
	if quotas["c"] != 4 {
		t.Errorf("quotas = %v, want the remainder unit on c", quotas)
	}
}

func TestSplitBySharesTieKeepsDeclarationOrder(t *testing.T) {
	shares := []PoolShare{
		{Pool: "first", Percent: 50},
		{Pool: "second", Percent: 50},
	}
	quotas := splitByShares(5, shares)
	if quotas["first"] != 3 || quotas["second"] != 2 {
		t.Errorf("quotas = %v, want declaration order to break the tie (first=3)", quotas)
	}
}

func TestSplitBySharesDegenerate(t *testing.T) {
	if q := splitByShares(0, []PoolShare{{Pool: "a", Percent: 100}}); len(q) != 0 {
		t.Errorf("zero total: quotas = %v, want empty", q)
	}
	if q := splitByShares(5, nil); len(q) != 0 {
		t.Errorf("no shares: quotas = %v, want empty", q)
	}
}

func TestSplitBySharesUnderhundredPercent(t *testing.T) {
	// Shares summing below 100 still hand out the full total.
	shares := []PoolShare{
		{Pool: "a", Percent: 40},
		{Pool: "b", Percent: 40},
	}
	quotas := splitByShares(10, shares)
	if quotas["a"]+quotas["b"] != 10 {
		t.Errorf("quotas = %v, want sum 10", quotas)
	}
}
