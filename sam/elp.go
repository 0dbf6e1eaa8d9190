/*
elp.go - Effective License Position calculation

PURPOSE:
  Merges license entitlements with aggregated usage and derives the core
  compliance/cost metrics per product:

    seats_used             = active installs
    seats_unused           = max(0, purchased - used)
    overage                = max(0, used - purchased)
    elp                    = purchased - used        (signed; negative = overage)
    contract_days_remaining, renewal_due
    potential_savings_usd  = unused * unit cost, subscriptions only

  The merge is a left join from licenses: a product with no installations
  gets zero counts, and an installation for an unknown product contributes
  to no row. today is injected so the calculation is deterministic under a
  fixed clock.

INVARIANTS:
  - seats_unused >= 0 and overage >= 0, and at most one of them is nonzero
  - perpetual licenses always carry zero potential savings
  - a missing contract_end means "never expiring": days remaining takes the
    NeverExpires sentinel and renewal_due stays false
*/
package sam

import "github.com/shopspring/decimal"

// NeverExpires is the contract_days_remaining sentinel for licenses with no
// contract_end. Large enough to clear any renewal window, small enough to
// survive arithmetic.
const NeverExpires = 999999

// ELPRow is the per-product Effective License Position.
type ELPRow struct {
	Software       string
	Vendor         string
	LicenseType    string
	SeatsPurchased int

	SeatsUsed   int
	SeatsUnused int
	Overage     int
	ELP         int

	InstallsCount    int
	InactiveInstalls int
	LastUsedMax      Date

	UnitCostUSD         decimal.Decimal
	PotentialSavingsUSD decimal.Decimal

	ContractEnd           Date
	ContractDaysRemaining int
	RenewalDue            bool
}

// Risk predicates. Stateless; the classifier and the portfolio filter both
// use them.
func (r ELPRow) OverUsed() bool       { return r.Overage > 0 }
func (r ELPRow) ExpiringSoon() bool   { return r.RenewalDue }
func (r ELPRow) HasInactive() bool    { return r.InactiveInstalls > 0 }
func (r ELPRow) IsSubscription() bool { return IsSubscriptionType(r.LicenseType) }

// CalculateELP merges licenses with usage and derives the position per
// product. License input order is preserved; duplicate license rows for one
// product resolve first-wins.
func CalculateELP(licenses []License, usage map[string]Usage, today Date, th Thresholds) []ELPRow {
	seen := make(map[string]bool, len(licenses))
	out := make([]ELPRow, 0, len(licenses))

	for _, lic := range licenses {
		if seen[lic.Software] {
			continue
		}
		seen[lic.Software] = true

		u := usage[lic.Software] // zero Usage when the product has no installs

		row := ELPRow{
			Software:         lic.Software,
			Vendor:           lic.Vendor,
			LicenseType:      lic.LicenseType,
			SeatsPurchased:   lic.SeatsPurchased,
			SeatsUsed:        u.ActiveInstalls,
			InstallsCount:    u.InstallsCount,
			InactiveInstalls: u.InactiveInstalls,
			LastUsedMax:      u.LastUsedMax,
			UnitCostUSD:      lic.UnitCostUSD,
			ContractEnd:      lic.ContractEnd,
		}

		row.ELP = row.SeatsPurchased - row.SeatsUsed
		row.SeatsUnused = clampNonNegative(row.ELP)
		row.Overage = clampNonNegative(-row.ELP)

		if lic.ContractEnd.IsZero() {
			row.ContractDaysRemaining = NeverExpires
		} else {
			row.ContractDaysRemaining = DaysBetween(today, lic.ContractEnd)
			row.RenewalDue = row.ContractDaysRemaining <= th.RenewalWindowDays
		}

		if lic.IsSubscription() {
			row.PotentialSavingsUSD = lic.UnitCostUSD.Mul(decimal.NewFromInt(int64(row.SeatsUnused)))
		} else {
			row.PotentialSavingsUSD = decimal.Zero
		}

		out = append(out, row)
	}
	return out
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
