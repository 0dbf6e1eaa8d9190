/*
risk.go - Risk flags and the prioritized alert feed

PURPOSE:
  Applies threshold rules to the ELP table and produces an ordered alert
  list for the portfolio overview:

    P1  urgent expiry        contract ends within 10 days
    P2  compliance risk      any over-used product
    P3  reclaim opportunity  terminated holders on subscription licenses
    P4  high-value savings   a single product worth >= $5000/yr in unused
                             seats; only surfaced when fewer than 3
                             higher-priority alerts exist

  The feed is sorted by ascending priority and capped at the top 3. This is
  a pure derivation: no triggering condition means an empty list, never an
  error.
*/
package sam

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RISK CATEGORIES - Portfolio filter vocabulary
// =============================================================================

type RiskCategory string

const (
	RiskAll             RiskCategory = "All"
	RiskOverUsed        RiskCategory = "Over-Used"
	RiskExpiringSoon    RiskCategory = "Expiring < 30d"
	RiskInactivePresent RiskCategory = "Inactive Users Present"
)

// Matches reports whether an ELP row falls in the category.
func (c RiskCategory) Matches(row ELPRow) bool {
	switch c {
	case RiskOverUsed:
		return row.OverUsed()
	case RiskExpiringSoon:
		return row.ExpiringSoon()
	case RiskInactivePresent:
		return row.HasInactive()
	default:
		return true
	}
}

// =============================================================================
// ALERTS
// =============================================================================

type AlertPriority int

const (
	PriorityUrgentExpiry AlertPriority = iota + 1
	PriorityCompliance
	PriorityReclaim
	PriorityHighValue
)

const maxDisplayedAlerts = 3

// Alert is one entry in the prioritized feed.
type Alert struct {
	Priority AlertPriority
	Code     string
	Title    string
	Detail   string

	// Products that triggered the alert, in ELP table order.
	Products []string

	// SavingsUSD carries the dollar figure for reclaim and high-value
	// alerts; zero for the others.
	SavingsUSD decimal.Decimal
}

// ClassifyAlerts derives the alert feed from an ELP table.
func ClassifyAlerts(rows []ELPRow, th Thresholds) []Alert {
	var alerts []Alert

	if urgent := productsWhere(rows, func(r ELPRow) bool {
		return r.ContractDaysRemaining != NeverExpires && r.ContractDaysRemaining <= th.UrgentWindowDays
	}); len(urgent) > 0 {
		alerts = append(alerts, Alert{
			Priority: PriorityUrgentExpiry,
			Code:     "urgent_expiry",
			Title:    fmt.Sprintf("Contracts expiring within %d days", th.UrgentWindowDays),
			Detail:   "Immediate renewal decision required: " + strings.Join(urgent, ", "),
			Products: urgent,
		})
	}

	if over := productsWhere(rows, ELPRow.OverUsed); len(over) > 0 {
		alerts = append(alerts, Alert{
			Priority: PriorityCompliance,
			Code:     "compliance_overage",
			Title:    "Active usage exceeds purchased seats",
			Detail:   "Compliance exposure on: " + strings.Join(over, ", "),
			Products: over,
		})
	}

	reclaimTotal := decimal.Zero
	var reclaimProducts []string
	for _, r := range rows {
		if r.IsSubscription() && r.HasInactive() {
			reclaimTotal = reclaimTotal.Add(r.UnitCostUSD.Mul(decimal.NewFromInt(int64(r.InactiveInstalls))))
			reclaimProducts = append(reclaimProducts, r.Software)
		}
	}
	if len(reclaimProducts) > 0 {
		alerts = append(alerts, Alert{
			Priority:   PriorityReclaim,
			Code:       "reclaim_opportunity",
			Title:      "Terminated users still hold subscription seats",
			Detail:     "Reclaimable now from: " + strings.Join(reclaimProducts, ", "),
			Products:   reclaimProducts,
			SavingsUSD: reclaimTotal,
		})
	}

	// High-value optimization only gets a slot when the feed isn't already
	// full of higher-priority alerts.
	if len(alerts) < maxDisplayedAlerts {
		highTotal := decimal.Zero
		var highProducts []string
		for _, r := range rows {
			if r.PotentialSavingsUSD.GreaterThanOrEqual(th.HighValueSavingsUSD) {
				highTotal = highTotal.Add(r.PotentialSavingsUSD)
				highProducts = append(highProducts, r.Software)
			}
		}
		if len(highProducts) > 0 {
			alerts = append(alerts, Alert{
				Priority:   PriorityHighValue,
				Code:       "high_value_savings",
				Title:      "High-value seat reduction available",
				Detail:     "Large unused-seat spend on: " + strings.Join(highProducts, ", "),
				Products:   highProducts,
				SavingsUSD: highTotal,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Priority < alerts[j].Priority })
	if len(alerts) > maxDisplayedAlerts {
		alerts = alerts[:maxDisplayedAlerts]
	}
	return alerts
}

func productsWhere(rows []ELPRow, pred func(ELPRow) bool) []string {
	var out []string
	for _, r := range rows {
		if pred(r) {
			out = append(out, r.Software)
		}
	}
	return out
}
