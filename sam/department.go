/*
department.go - Departmental cost allocation

PURPOSE:
  Redistributes subscription portfolio cost across departments by
  active-seat share and computes per-department reclaimable savings.

ALLOCATION MODEL:
  share_of_spend is a proportional proxy, not a traced per-seat cost:

    portfolio = sum(unit_cost_usd * seats_purchased) over subscription licenses
    share     = portfolio * used_seats / total_used_seats

  The proxy assumes cost distributes uniformly with active seat usage
  within a department. That approximation is deliberate - the source data
  carries no per-seat department assignment - and must survive any
  refactor until such data exists.

COUNTING:
  used_seats / terminated_seats / total_installs dedupe on the global
  CountingPolicy key. Reclaimable savings charge every terminated
  subscription installation in device mode; user mode collapses to one
  charge per distinct user, first matching cost wins, so a terminated user
  with two devices is charged once.
*/
package sam

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DepartmentStat is one department's allocation row.
type DepartmentStat struct {
	Department         string
	UsedSeats          int
	TerminatedSeats    int
	TotalInstalls      int
	ReclaimableSavings decimal.Decimal
	ShareOfSpend       decimal.Decimal
	SharePercent       decimal.Decimal
}

// AllocateDepartments computes allocation rows from the cost-joined
// installation relation, sorted descending by share of spend.
//
// A department with zero used seats anywhere gets a zero share, not a
// division error.
func AllocateDepartments(costed []EnrichedInstall, licenses []License, policy CountingPolicy) []DepartmentStat {
	type deptAgg struct {
		all        map[string]bool
		active     map[string]bool
		terminated map[string]bool

		reclaim        decimal.Decimal
		reclaimCharged map[string]bool
	}

	// Device mode charges every terminated subscription row; user mode
	// collapses to one charge per distinct user, first cost wins.
	_, collapseUsers := policy.(ByUser)

	groups := make(map[string]*deptAgg)
	var order []string
	for _, row := range costed {
		g, ok := groups[row.Department]
		if !ok {
			g = &deptAgg{
				all:            make(map[string]bool),
				active:         make(map[string]bool),
				terminated:     make(map[string]bool),
				reclaim:        decimal.Zero,
				reclaimCharged: make(map[string]bool),
			}
			groups[row.Department] = g
			order = append(order, row.Department)
		}

		key := policy.Key(row)
		g.all[key] = true
		switch row.Status {
		case StatusActive:
			g.active[key] = true
		case StatusTerminated:
			g.terminated[key] = true
			if row.IsSubscription && (!collapseUsers || !g.reclaimCharged[row.UserEmail]) {
				g.reclaim = g.reclaim.Add(row.UnitCostUSD)
				g.reclaimCharged[row.UserEmail] = true
			}
		}
	}

	stats := make([]DepartmentStat, 0, len(order))
	totalUsed := 0
	for _, dept := range order {
		g := groups[dept]
		stats = append(stats, DepartmentStat{
			Department:         dept,
			UsedSeats:          len(g.active),
			TerminatedSeats:    len(g.terminated),
			TotalInstalls:      len(g.all),
			ReclaimableSavings: g.reclaim,
			ShareOfSpend:       decimal.Zero,
			SharePercent:       decimal.Zero,
		})
		totalUsed += len(g.active)
	}

	if totalUsed > 0 {
		portfolio := SubscriptionPortfolioCost(licenses)
		totalUsedDec := decimal.NewFromInt(int64(totalUsed))
		hundred := decimal.NewFromInt(100)
		for i := range stats {
			used := decimal.NewFromInt(int64(stats[i].UsedSeats))
			stats[i].ShareOfSpend = portfolio.Mul(used).Div(totalUsedDec)
			stats[i].SharePercent = used.Mul(hundred).Div(totalUsedDec)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].ShareOfSpend.GreaterThan(stats[j].ShareOfSpend)
	})
	return stats
}

// SubscriptionPortfolioCost is the total annual subscription spend proxy:
// sum of unit_cost * seats_purchased over subscription licenses, with
// duplicate products resolved first-wins.
func SubscriptionPortfolioCost(licenses []License) decimal.Decimal {
	seen := make(map[string]bool, len(licenses))
	total := decimal.Zero
	for _, lic := range licenses {
		if seen[lic.Software] {
			continue
		}
		seen[lic.Software] = true
		if lic.IsSubscription() {
			total = total.Add(lic.UnitCostUSD.Mul(decimal.NewFromInt(int64(lic.SeatsPurchased))))
		}
	}
	return total
}

// =============================================================================
// DEPARTMENT DRILLDOWN
// =============================================================================

// SoftwareStatusCount is one cell of the department's software-by-status
// usage breakdown.
type SoftwareStatusCount struct {
	Software string
	Status   Status
	Count    int
}

// DepartmentDetail is the drilldown view for a single department.
type DepartmentDetail struct {
	Department         string
	SoftwareUsage      []SoftwareStatusCount
	Reclaim            []InstallRecord
	ReclaimableSavings decimal.Decimal
}

// BuildDepartmentDetail computes the drilldown for one department over the
// cost-joined relation. Software usage counts dedupe on the policy key per
// software+status cell; cells are emitted sorted by software then status.
// Reclaimable savings follow the same charging rule as AllocateDepartments.
func BuildDepartmentDetail(costed []EnrichedInstall, department string, policy CountingPolicy) DepartmentDetail {
	detail := DepartmentDetail{Department: department, ReclaimableSavings: decimal.Zero}

	type cellKey struct {
		software string
		status   Status
	}
	cells := make(map[cellKey]map[string]bool)
	charged := make(map[string]bool)
	_, collapseUsers := policy.(ByUser)

	for _, row := range costed {
		if row.Department != department {
			continue
		}
		ck := cellKey{software: row.Software, status: row.Status}
		if cells[ck] == nil {
			cells[ck] = make(map[string]bool)
		}
		cells[ck][policy.Key(row)] = true

		if row.Status == StatusTerminated {
			detail.Reclaim = append(detail.Reclaim, row.Record())
			if row.IsSubscription && (!collapseUsers || !charged[row.UserEmail]) {
				detail.ReclaimableSavings = detail.ReclaimableSavings.Add(row.UnitCostUSD)
				charged[row.UserEmail] = true
			}
		}
	}

	for ck, keys := range cells {
		detail.SoftwareUsage = append(detail.SoftwareUsage, SoftwareStatusCount{
			Software: ck.software,
			Status:   ck.status,
			Count:    len(keys),
		})
	}
	sort.Slice(detail.SoftwareUsage, func(i, j int) bool {
		a, b := detail.SoftwareUsage[i], detail.SoftwareUsage[j]
		if a.Software != b.Software {
			return a.Software < b.Software
		}
		return a.Status < b.Status
	})
	return detail
}
