/*
renewal.go - Contract renewal schedule and notice windows

PURPOSE:
  Joins licenses with the optional vendors table to compute renewal timing
  per contract:

    days_remaining    (contract_end - today).days, NeverExpires when null
    notice_start      contract_end - renewal_notice_days
    in_notice_window  today >= notice_start AND days_remaining > 0
    expiring_30d      days_remaining <= renewal window
    annual_spend_proxy seats_purchased * unit_cost_usd

  A missing contract_end never flags: the contract is treated as never
  expiring, consistent with the ELP calculation. The schedule sorts by
  ascending days remaining so the most urgent contracts surface first.
*/
package sam

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RenewalRow is one contract in the renewal schedule.
type RenewalRow struct {
	Software       string
	Vendor         string
	LicenseType    string
	SeatsPurchased int
	UnitCostUSD    decimal.Decimal

	ContractEnd Date

	// DaysRemaining is the raw signed figure used by filters; expired
	// contracts go negative. DaysRemainingDisplay clamps at zero for
	// presentation.
	DaysRemaining        int
	DaysRemainingDisplay int

	RenewalNoticeDays int
	NoticeStart       Date
	InNoticeWindow    bool
	Expiring30d       bool

	AnnualSpendProxy decimal.Decimal
	IsSubscription   bool
}

// BuildRenewalSchedule computes the renewal table from licenses and vendor
// notice periods, sorted ascending by days remaining. Duplicate license
// rows resolve first-wins, matching the ELP table.
func BuildRenewalSchedule(licenses []License, notice map[string]int, today Date, th Thresholds) []RenewalRow {
	seen := make(map[string]bool, len(licenses))
	out := make([]RenewalRow, 0, len(licenses))

	for _, lic := range licenses {
		if seen[lic.Software] {
			continue
		}
		seen[lic.Software] = true

		row := RenewalRow{
			Software:          lic.Software,
			Vendor:            lic.Vendor,
			LicenseType:       lic.LicenseType,
			SeatsPurchased:    lic.SeatsPurchased,
			UnitCostUSD:       lic.UnitCostUSD,
			ContractEnd:       lic.ContractEnd,
			RenewalNoticeDays: DefaultRenewalNoticeDays,
			IsSubscription:    lic.IsSubscription(),
			AnnualSpendProxy:  lic.UnitCostUSD.Mul(decimal.NewFromInt(int64(lic.SeatsPurchased))),
		}
		if days, ok := notice[lic.Vendor]; ok {
			row.RenewalNoticeDays = days
		}

		if lic.ContractEnd.IsZero() {
			row.DaysRemaining = NeverExpires
			row.DaysRemainingDisplay = NeverExpires
		} else {
			row.DaysRemaining = DaysBetween(today, lic.ContractEnd)
			row.DaysRemainingDisplay = clampNonNegative(row.DaysRemaining)
			row.Expiring30d = row.DaysRemaining <= th.RenewalWindowDays
			row.NoticeStart = lic.ContractEnd.AddDays(-row.RenewalNoticeDays)
			row.InNoticeWindow = !today.Before(row.NoticeStart) && row.DaysRemaining > 0
		}

		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysRemaining < out[j].DaysRemaining })
	return out
}

// =============================================================================
// RENEWAL FILTERS AND KPIs
// =============================================================================

// RenewalFilter narrows the schedule for presentation.
type RenewalFilter struct {
	Vendors           []string
	SubscriptionsOnly bool

	// MaxDaysRemaining keeps only contracts expiring within this many
	// days. Zero or negative means no bound.
	MaxDaysRemaining int
}

// Apply returns the rows passing the filter, preserving schedule order.
func (f RenewalFilter) Apply(rows []RenewalRow) []RenewalRow {
	vendorSet := make(map[string]bool, len(f.Vendors))
	for _, v := range f.Vendors {
		vendorSet[v] = true
	}

	var out []RenewalRow
	for _, r := range rows {
		if len(vendorSet) > 0 && !vendorSet[r.Vendor] {
			continue
		}
		if f.SubscriptionsOnly && !r.IsSubscription {
			continue
		}
		if f.MaxDaysRemaining > 0 && r.DaysRemaining > f.MaxDaysRemaining {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RenewalSummary is the KPI strip over a (possibly filtered) schedule.
type RenewalSummary struct {
	Products       int
	Expiring30d    int
	InNoticeWindow int

	// SubscriptionAnnualSpend sums annual_spend_proxy across subscription
	// rows only; perpetual spend is out of scope.
	SubscriptionAnnualSpend decimal.Decimal
}

func SummarizeRenewals(rows []RenewalRow) RenewalSummary {
	s := RenewalSummary{Products: len(rows), SubscriptionAnnualSpend: decimal.Zero}
	for _, r := range rows {
		if r.Expiring30d {
			s.Expiring30d++
		}
		if r.InNoticeWindow {
			s.InNoticeWindow++
		}
		if r.IsSubscription {
			s.SubscriptionAnnualSpend = s.SubscriptionAnnualSpend.Add(r.AnnualSpendProxy)
		}
	}
	return s
}
