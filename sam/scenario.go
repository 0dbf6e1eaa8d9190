/*
scenario.go - Seat-reduction what-if projection

PURPOSE:
  Given one product, a target reduction N, and an exclude_terminated flag,
  ranks candidate installations by staleness and selects a removal list,
  then projects the resulting seat position. Pure projection: nothing in
  the underlying data changes.

RANKING POLICY:
  Candidates sort ascending by last_used_date - least recently used first.
  Rows with NO usage history sort last, not first: an installation that has
  never reported usage is the least safe to assume unused (new hires,
  seasonal workers), so it is never auto-prioritized for removal. Under
  user counting, candidates collapse to one row per user keeping that
  user's earliest last-used date.
*/
package sam

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ScenarioInput parameterizes one what-if run.
type ScenarioInput struct {
	Software          string
	ReduceSeats       int
	ExcludeTerminated bool
}

// ScenarioResult is the projection plus the ranked removal list.
type ScenarioResult struct {
	Software       string
	LicenseType    string
	IsSubscription bool
	SeatsPurchased int
	UnitCostUSD    decimal.Decimal

	// Current state under the active counting policy.
	ActiveCount     int
	TerminatedCount int
	UnusedSeats     int

	// Projection.
	ReduceSeats          int
	NewSeatCount         int
	RemainingActiveUsers int
	ProjectedSavingsUSD  decimal.Decimal

	// OverageWarning is set when the reduction would leave more active
	// holders than seats; ProjectedOverage is by how many.
	OverageWarning   bool
	ProjectedOverage int

	Recommendations []InstallRecord
}

// ProjectScenario runs the what-if for one product over the status-joined
// installation relation.
//
// Errors: UnknownProductError when no license exists for the product;
// ReductionRangeError when ReduceSeats is outside [0, seats_purchased].
func ProjectScenario(in ScenarioInput, installs []EnrichedInstall, licenses map[string]License, policy CountingPolicy) (*ScenarioResult, error) {
	lic, ok := licenses[in.Software]
	if !ok {
		return nil, &UnknownProductError{Software: in.Software}
	}
	if in.ReduceSeats < 0 || in.ReduceSeats > lic.SeatsPurchased {
		return nil, &ReductionRangeError{
			Software:       in.Software,
			Requested:      in.ReduceSeats,
			SeatsPurchased: lic.SeatsPurchased,
		}
	}

	var product []EnrichedInstall
	for _, row := range installs {
		if row.Software == in.Software {
			product = append(product, row)
		}
	}

	active := countDistinct(product, policy, StatusActive)
	terminated := countDistinct(product, policy, StatusTerminated)

	result := &ScenarioResult{
		Software:        in.Software,
		LicenseType:     lic.LicenseType,
		IsSubscription:  lic.IsSubscription(),
		SeatsPurchased:  lic.SeatsPurchased,
		UnitCostUSD:     lic.UnitCostUSD,
		ActiveCount:     active,
		TerminatedCount: terminated,
		UnusedSeats:     clampNonNegative(lic.SeatsPurchased - active),
		ReduceSeats:     in.ReduceSeats,
		NewSeatCount:    lic.SeatsPurchased - in.ReduceSeats,
	}

	result.RemainingActiveUsers = active - minInt(in.ReduceSeats, active)
	if result.RemainingActiveUsers > result.NewSeatCount {
		result.OverageWarning = true
		result.ProjectedOverage = result.RemainingActiveUsers - result.NewSeatCount
	}

	if result.IsSubscription {
		result.ProjectedSavingsUSD = lic.UnitCostUSD.Mul(decimal.NewFromInt(int64(in.ReduceSeats)))
	} else {
		result.ProjectedSavingsUSD = decimal.Zero
	}

	candidates := RankRemovalCandidates(product, policy, in.ExcludeTerminated)
	n := minInt(in.ReduceSeats, len(candidates))
	result.Recommendations = make([]InstallRecord, 0, n)
	for _, row := range candidates[:n] {
		result.Recommendations = append(result.Recommendations, row.Record())
	}
	return result, nil
}

// RankRemovalCandidates builds the staleness-sorted candidate pool for one
// product's installations. The removal list is always a strict prefix of
// this ordering.
func RankRemovalCandidates(product []EnrichedInstall, policy CountingPolicy, excludeTerminated bool) []EnrichedInstall {
	var pool []EnrichedInstall
	for _, row := range product {
		if excludeTerminated && row.Status != StatusActive {
			continue
		}
		pool = append(pool, row)
	}

	// Least recently used first, no-history rows last. Stable so equal
	// dates keep input order.
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i].LastUsedDate, pool[j].LastUsedDate
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.Before(b)
	})

	if _, byUser := policy.(ByUser); !byUser {
		return pool
	}

	// One row per user; the sort already placed each user's earliest
	// last-used date first.
	seen := make(map[string]bool, len(pool))
	deduped := make([]EnrichedInstall, 0, len(pool))
	for _, row := range pool {
		if seen[row.UserEmail] {
			continue
		}
		seen[row.UserEmail] = true
		deduped = append(deduped, row)
	}
	return deduped
}

func countDistinct(rows []EnrichedInstall, policy CountingPolicy, status Status) int {
	keys := make(map[string]bool)
	for _, row := range rows {
		if row.Status == status {
			keys[policy.Key(row)] = true
		}
	}
	return len(keys)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
