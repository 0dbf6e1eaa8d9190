package sam

import "github.com/shopspring/decimal"

// =============================================================================
// PORTFOLIO FILTER - ELP table narrowing for presentation and export
// =============================================================================

// Filter narrows the ELP table. Zero-value fields pass everything.
type Filter struct {
	Vendors           []string
	Risk              RiskCategory
	MinSavingsUSD     decimal.Decimal
	SubscriptionsOnly bool
}

// Apply returns the rows passing every filter clause, preserving order.
func (f Filter) Apply(rows []ELPRow) []ELPRow {
	vendorSet := make(map[string]bool, len(f.Vendors))
	for _, v := range f.Vendors {
		vendorSet[v] = true
	}

	var out []ELPRow
	for _, r := range rows {
		if len(vendorSet) > 0 && !vendorSet[r.Vendor] {
			continue
		}
		if f.SubscriptionsOnly && !r.IsSubscription() {
			continue
		}
		if f.Risk != "" && f.Risk != RiskAll && !f.Risk.Matches(r) {
			continue
		}
		if r.PotentialSavingsUSD.LessThan(f.MinSavingsUSD) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// =============================================================================
// PORTFOLIO KPIs
// =============================================================================

// PortfolioSummary is the KPI strip over a (possibly filtered) ELP table.
type PortfolioSummary struct {
	Vendors             int
	Products            int
	TotalSeats          int
	PotentialSavingsUSD decimal.Decimal
}

func SummarizePortfolio(rows []ELPRow) PortfolioSummary {
	vendors := make(map[string]bool)
	products := make(map[string]bool)
	s := PortfolioSummary{PotentialSavingsUSD: decimal.Zero}
	for _, r := range rows {
		if r.Vendor != "" {
			vendors[r.Vendor] = true
		}
		products[r.Software] = true
		s.TotalSeats += r.SeatsPurchased
		s.PotentialSavingsUSD = s.PotentialSavingsUSD.Add(r.PotentialSavingsUSD)
	}
	s.Vendors = len(vendors)
	s.Products = len(products)
	return s
}
