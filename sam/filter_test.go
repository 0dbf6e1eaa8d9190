package sam_test

import (
	"testing"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// PORTFOLIO FILTER + KPIs
// =============================================================================

// filterTable is a small hand-built ELP table exercising every filter axis.
func filterTable() []sam.ELPRow {
	return []sam.ELPRow{
		{
			Software: "Zoom Pro", Vendor: "Zoom", LicenseType: "subscription",
			SeatsPurchased: 50, SeatsUsed: 30, SeatsUnused: 20,
			UnitCostUSD: usd(12), PotentialSavingsUSD: usd(240),
			ContractDaysRemaining: 213,
		},
		{
			Software: "Visio Plan 2", Vendor: "Microsoft", LicenseType: "subscription",
			SeatsPurchased: 25, SeatsUsed: 31, Overage: 6, ELP: -6,
			UnitCostUSD: usd(15), PotentialSavingsUSD: usd(0),
			ContractDaysRemaining: 20, RenewalDue: true,
		},
		{
			Software: "SAP S/4HANA", Vendor: "SAP", LicenseType: "perpetual",
			SeatsPurchased: 10, SeatsUsed: 8, SeatsUnused: 2,
			InactiveInstalls: 3,
			UnitCostUSD:      usd(2500), PotentialSavingsUSD: usd(0),
			ContractDaysRemaining: sam.NeverExpires,
		},
	}
}

func softwareNames(rows []sam.ELPRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Software
	}
	return out
}

func TestFilter_ZeroValuePassesEverything(t *testing.T) {
	rows := sam.Filter{}.Apply(filterTable())
	if len(rows) != 3 {
		t.Errorf("empty filter must pass all rows, got %v", softwareNames(rows))
	}
}

func TestFilter_Vendors(t *testing.T) {
	// GIVEN: A vendor shortlist
	// THEN:  Only those vendors' rows survive, order preserved

	rows := sam.Filter{Vendors: []string{"Zoom", "SAP"}}.Apply(filterTable())
	if len(rows) != 2 || rows[0].Software != "Zoom Pro" || rows[1].Software != "SAP S/4HANA" {
		t.Errorf("unexpected rows: %v", softwareNames(rows))
	}
}

func TestFilter_RiskCategories(t *testing.T) {
	table := filterTable()

	cases := []struct {
		risk sam.RiskCategory
		want string
	}{
		{sam.RiskOverUsed, "Visio Plan 2"},
		{sam.RiskExpiringSoon, "Visio Plan 2"},
		{sam.RiskInactivePresent, "SAP S/4HANA"},
	}
	for _, tc := range cases {
		rows := sam.Filter{Risk: tc.risk}.Apply(table)
		if len(rows) != 1 || rows[0].Software != tc.want {
			t.Errorf("%s: expected [%s], got %v", tc.risk, tc.want, softwareNames(rows))
		}
	}

	rows := sam.Filter{Risk: sam.RiskAll}.Apply(table)
	if len(rows) != 3 {
		t.Errorf("RiskAll must pass all rows, got %v", softwareNames(rows))
	}
}

func TestFilter_MinSavings(t *testing.T) {
	rows := sam.Filter{MinSavingsUSD: usd(100)}.Apply(filterTable())
	if len(rows) != 1 || rows[0].Software != "Zoom Pro" {
		t.Errorf("expected only the $240 row, got %v", softwareNames(rows))
	}
}

func TestFilter_SubscriptionsOnly(t *testing.T) {
	rows := sam.Filter{SubscriptionsOnly: true}.Apply(filterTable())
	if len(rows) != 2 {
		t.Errorf("expected the two subscription rows, got %v", softwareNames(rows))
	}
	for _, r := range rows {
		if !r.IsSubscription() {
			t.Errorf("%s is not a subscription", r.Software)
		}
	}
}

func TestFilter_ClausesCombine(t *testing.T) {
	// GIVEN: Vendor + subscription + savings floor together
	// THEN:  Clauses AND, not OR

	f := sam.Filter{
		Vendors:           []string{"Zoom", "Microsoft"},
		SubscriptionsOnly: true,
		MinSavingsUSD:     usd(1),
	}
	rows := f.Apply(filterTable())
	if len(rows) != 1 || rows[0].Software != "Zoom Pro" {
		t.Errorf("expected [Zoom Pro], got %v", softwareNames(rows))
	}
}

func TestSummarizePortfolio(t *testing.T) {
	s := sam.SummarizePortfolio(filterTable())
	if s.Vendors != 3 || s.Products != 3 {
		t.Errorf("expected 3 vendors / 3 products, got %d/%d", s.Vendors, s.Products)
	}
	if s.TotalSeats != 85 {
		t.Errorf("expected 85 total seats, got %d", s.TotalSeats)
	}
	if !s.PotentialSavingsUSD.Equal(usd(240)) {
		t.Errorf("expected $240 total savings, got %v", s.PotentialSavingsUSD)
	}
}

func TestSummarizePortfolio_EmptyAndBlankVendor(t *testing.T) {
	var zero []sam.ELPRow
	s := sam.SummarizePortfolio(zero)
	if s.Vendors != 0 || s.Products != 0 || s.TotalSeats != 0 || !s.PotentialSavingsUSD.IsZero() {
		t.Errorf("expected zero summary, got %+v", s)
	}

	// Blank vendors count as no vendor, but the product still counts.
	s = sam.SummarizePortfolio([]sam.ELPRow{{Software: "Orphan", SeatsPurchased: 5, PotentialSavingsUSD: usd(0)}})
	if s.Vendors != 0 || s.Products != 1 || s.TotalSeats != 5 {
		t.Errorf("unexpected summary: %+v", s)
	}
}
