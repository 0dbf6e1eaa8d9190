/*
utilization.go - Per-product usage aggregation

PURPOSE:
  Groups the enriched installation relation by product and counts seats
  under a CountingPolicy. All four figures dedupe on the policy key, so one
  user with three laptops is three seats under ByDevice and one under
  ByUser.

EDGE CASES:
  - Rows with status "unknown" count toward InstallsCount but toward
    neither ActiveInstalls nor InactiveInstalls.
  - A product with zero installations simply has no entry; the ELP merge
    left-joins and fills zero counts rather than dropping the product.
*/
package sam

// Usage is the aggregated utilization for one product.
type Usage struct {
	Software         string
	InstallsCount    int
	ActiveInstalls   int
	InactiveInstalls int
	LastUsedMax      Date
}

// AggregateUsage computes per-product usage from the status-joined
// installation relation.
func AggregateUsage(installs []EnrichedInstall, policy CountingPolicy) map[string]Usage {
	type seatSets struct {
		all      map[string]bool
		active   map[string]bool
		inactive map[string]bool
		lastUsed Date
	}

	groups := make(map[string]*seatSets)
	for _, row := range installs {
		g, ok := groups[row.Software]
		if !ok {
			g = &seatSets{
				all:      make(map[string]bool),
				active:   make(map[string]bool),
				inactive: make(map[string]bool),
			}
			groups[row.Software] = g
		}

		key := policy.Key(row)
		g.all[key] = true
		switch row.Status {
		case StatusActive:
			g.active[key] = true
		case StatusTerminated:
			g.inactive[key] = true
		}
		g.lastUsed = MaxDate(g.lastUsed, row.LastUsedDate)
	}

	out := make(map[string]Usage, len(groups))
	for software, g := range groups {
		out[software] = Usage{
			Software:         software,
			InstallsCount:    len(g.all),
			ActiveInstalls:   len(g.active),
			InactiveInstalls: len(g.inactive),
			LastUsedMax:      g.lastUsed,
		}
	}
	return out
}
