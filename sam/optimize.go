/*
optimize.go - Reclaim, low-usage, and per-product drilldown tables

PURPOSE:
  The "find optimizations" views:

  - Reclaim: installations held by terminated users. These seats can be
    recovered immediately.
  - Low-usage: installations held by ACTIVE users with no activity in the
    staleness window (or no recorded activity at all). Terminated holders
    are excluded here - they already appear in reclaim.
  - Product drilldown: per-product metrics plus the three install tables
    (active, reclaim, low-usage) and their savings figures.

  Savings in the drilldown apply to subscription licenses only and count
  seats under the global CountingPolicy.
*/
package sam

import "github.com/shopspring/decimal"

// ReclaimTable lists installations held by terminated users, in input order.
func ReclaimTable(installs []EnrichedInstall) []InstallRecord {
	var out []InstallRecord
	for _, row := range installs {
		if row.Status == StatusTerminated {
			out = append(out, row.Record())
		}
	}
	return out
}

// LowUsageTable lists active-holder installations with no activity since
// the cutoff. Rows with no last-used date count as stale: they have never
// reported activity.
func LowUsageTable(installs []EnrichedInstall, today Date, th Thresholds) []InstallRecord {
	cutoff := today.AddDays(-th.LowUsageDays)
	var out []InstallRecord
	for _, row := range installs {
		if row.Status != StatusActive {
			continue
		}
		if row.LastUsedDate.IsZero() || row.LastUsedDate.Before(cutoff) {
			out = append(out, row.Record())
		}
	}
	return out
}

// =============================================================================
// PRODUCT DRILLDOWN
// =============================================================================

// ProductDrilldown is the deep-dive view for one product.
type ProductDrilldown struct {
	License License

	SeatsPurchased      int
	ActiveInstalls      int
	UnusedSeats         int
	Overage             int
	PotentialSavingsUSD decimal.Decimal

	Active   []InstallRecord
	Reclaim  []InstallRecord
	LowUsage []InstallRecord

	// ImmediateSavingsUSD is what reclaiming every terminated seat is
	// worth; LowUsageSavingsUSD the same for the stale seats. Both zero
	// for perpetual licenses.
	ImmediateSavingsUSD decimal.Decimal
	LowUsageSavingsUSD  decimal.Decimal
}

// BuildProductDrilldown computes the drilldown for one product. Returns
// UnknownProductError when the product has no license row.
func BuildProductDrilldown(software string, installs []EnrichedInstall, licenses map[string]License, policy CountingPolicy, today Date, th Thresholds) (*ProductDrilldown, error) {
	lic, ok := licenses[software]
	if !ok {
		return nil, &UnknownProductError{Software: software}
	}

	var product []EnrichedInstall
	for _, row := range installs {
		if row.Software == software {
			product = append(product, row)
		}
	}

	d := &ProductDrilldown{
		License:             lic,
		SeatsPurchased:      lic.SeatsPurchased,
		PotentialSavingsUSD: decimal.Zero,
		ImmediateSavingsUSD: decimal.Zero,
		LowUsageSavingsUSD:  decimal.Zero,
	}

	cutoff := today.AddDays(-th.LowUsageDays)
	activeKeys := make(map[string]bool)
	reclaimKeys := make(map[string]bool)
	lowKeys := make(map[string]bool)

	for _, row := range product {
		switch row.Status {
		case StatusActive:
			activeKeys[policy.Key(row)] = true
			d.Active = append(d.Active, row.Record())
			if row.LastUsedDate.IsZero() || row.LastUsedDate.Before(cutoff) {
				lowKeys[policy.Key(row)] = true
				d.LowUsage = append(d.LowUsage, row.Record())
			}
		case StatusTerminated:
			reclaimKeys[policy.Key(row)] = true
			d.Reclaim = append(d.Reclaim, row.Record())
		}
	}

	d.ActiveInstalls = len(activeKeys)
	d.UnusedSeats = clampNonNegative(lic.SeatsPurchased - d.ActiveInstalls)
	d.Overage = clampNonNegative(d.ActiveInstalls - lic.SeatsPurchased)

	if lic.IsSubscription() {
		d.PotentialSavingsUSD = lic.UnitCostUSD.Mul(decimal.NewFromInt(int64(d.UnusedSeats)))
		d.ImmediateSavingsUSD = lic.UnitCostUSD.Mul(decimal.NewFromInt(int64(len(reclaimKeys))))
		d.LowUsageSavingsUSD = lic.UnitCostUSD.Mul(decimal.NewFromInt(int64(len(lowKeys))))
	}
	return d, nil
}
