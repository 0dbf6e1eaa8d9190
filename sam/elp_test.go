/*
elp_test.go - Behavioral tests for the ELP calculation

These tests document the core position metrics: seat counting, the
non-negativity clamps, contract timing under a fixed clock, and the
subscriptions-only savings gate.
*/
package sam_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Shared by the other _test.go files in this package.

func usd(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func d(year int, month time.Month, day int) sam.Date {
	return sam.NewDate(year, month, day)
}

// fixedToday is the injected evaluation date for every test.
func fixedToday() sam.Date { return d(2025, time.June, 15) }

func zoomLicense(seats int) sam.License {
	return sam.License{
		Software:       "Zoom Pro",
		Vendor:         "Zoom",
		LicenseType:    "subscription",
		UnitCostUSD:    usd(12),
		SeatsPurchased: seats,
		ContractEnd:    d(2026, time.January, 14),
	}
}

func install(device, email, software string, lastUsed sam.Date) sam.Installation {
	return sam.Installation{
		DeviceID:     device,
		UserEmail:    email,
		Software:     software,
		InstallDate:  d(2025, time.January, 1),
		LastUsedDate: lastUsed,
	}
}

func activeUser(email string) sam.User {
	return sam.User{Email: email, Status: sam.StatusActive, Department: "Engineering"}
}

func terminatedUser(email string) sam.User {
	return sam.User{Email: email, Status: sam.StatusTerminated, Department: "Sales"}
}

// installFleet builds n active and m terminated single-device installs for
// one product, with distinct devices and users.
func installFleet(software string, active, terminated int) ([]sam.Installation, []sam.User) {
	var installs []sam.Installation
	var users []sam.User
	for i := 0; i < active; i++ {
		email := fmtEmail("active", i)
		installs = append(installs, install(fmtDevice("A", i), email, software, d(2025, time.June, 1)))
		users = append(users, activeUser(email))
	}
	for i := 0; i < terminated; i++ {
		email := fmtEmail("gone", i)
		installs = append(installs, install(fmtDevice("T", i), email, software, d(2025, time.March, 1)))
		users = append(users, terminatedUser(email))
	}
	return installs, users
}

func fmtEmail(prefix string, i int) string  { return prefix + "-" + strconv.Itoa(i) + "@acme.com" }
func fmtDevice(prefix string, i int) string { return "LAP-" + prefix + strconv.Itoa(i) }

func newTestEngine(t *testing.T, data *sam.Dataset, policy sam.CountingPolicy) *sam.Engine {
	t.Helper()
	engine, err := sam.NewEngine(data, policy, fixedToday())
	if err != nil {
		t.Fatalf("unexpected engine error: %v", err)
	}
	return engine
}

func elpRow(t *testing.T, engine *sam.Engine, software string) sam.ELPRow {
	t.Helper()
	for _, row := range engine.ELP() {
		if row.Software == software {
			return row
		}
	}
	t.Fatalf("no ELP row for %q", software)
	return sam.ELPRow{}
}

// =============================================================================
// CORE POSITION TESTS
// =============================================================================

func TestELP_UnderUsedSubscription_SavingsFromUnusedSeats(t *testing.T) {
	// GIVEN: Zoom Pro subscription, $12/seat, 50 seats, 30 active devices,
	//        5 terminated
	// WHEN:  Calculating the ELP
	// THEN:  used=30, unused=20, overage=0, savings=$240

	installs, users := installFleet("Zoom Pro", 30, 5)
	data := sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	row := elpRow(t, engine, "Zoom Pro")
	if row.SeatsUsed != 30 {
		t.Errorf("expected 30 seats used, got %d", row.SeatsUsed)
	}
	if row.SeatsUnused != 20 {
		t.Errorf("expected 20 seats unused, got %d", row.SeatsUnused)
	}
	if row.Overage != 0 {
		t.Errorf("expected 0 overage, got %d", row.Overage)
	}
	if row.InactiveInstalls != 5 {
		t.Errorf("expected 5 inactive installs, got %d", row.InactiveInstalls)
	}
	if !row.PotentialSavingsUSD.Equal(usd(240)) {
		t.Errorf("expected $240 savings, got %v", row.PotentialSavingsUSD)
	}
}

func TestELP_OverUsed_NegativePositionAndNoSavings(t *testing.T) {
	// GIVEN: The same product with 55 active devices against 50 seats
	// WHEN:  Calculating the ELP
	// THEN:  overage=5, elp=-5, unused=0, savings=$0

	installs, users := installFleet("Zoom Pro", 55, 0)
	data := sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	row := elpRow(t, engine, "Zoom Pro")
	if row.Overage != 5 {
		t.Errorf("expected overage 5, got %d", row.Overage)
	}
	if row.ELP != -5 {
		t.Errorf("expected elp -5, got %d", row.ELP)
	}
	if row.SeatsUnused != 0 {
		t.Errorf("expected 0 unused, got %d", row.SeatsUnused)
	}
	if !row.PotentialSavingsUSD.IsZero() {
		t.Errorf("expected $0 savings under overage, got %v", row.PotentialSavingsUSD)
	}
}

func TestELP_ExpiringContract_RenewalDue(t *testing.T) {
	// GIVEN: A contract ending 5 days from the evaluation date
	// WHEN:  Calculating the ELP
	// THEN:  contract_days_remaining=5 and renewal_due=true

	lic := zoomLicense(50)
	lic.ContractEnd = fixedToday().AddDays(5)
	installs, users := installFleet("Zoom Pro", 10, 0)
	data := sam.NewDataset([]sam.License{lic}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	row := elpRow(t, engine, "Zoom Pro")
	if row.ContractDaysRemaining != 5 {
		t.Errorf("expected 5 days remaining, got %d", row.ContractDaysRemaining)
	}
	if !row.RenewalDue {
		t.Error("expected renewal_due=true for a 5-day contract")
	}
}

func TestELP_MissingContractEnd_NeverExpires(t *testing.T) {
	// GIVEN: A license with no contract_end
	// WHEN:  Calculating the ELP
	// THEN:  days remaining takes the sentinel and renewal_due stays false

	lic := zoomLicense(50)
	lic.ContractEnd = sam.Date{}
	installs, users := installFleet("Zoom Pro", 10, 0)
	data := sam.NewDataset([]sam.License{lic}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	row := elpRow(t, engine, "Zoom Pro")
	if row.ContractDaysRemaining != sam.NeverExpires {
		t.Errorf("expected sentinel %d, got %d", sam.NeverExpires, row.ContractDaysRemaining)
	}
	if row.RenewalDue {
		t.Error("expected renewal_due=false for a never-expiring contract")
	}
}

func TestELP_PerpetualLicense_SavingsAlwaysZero(t *testing.T) {
	// GIVEN: A perpetual license with plenty of unused seats
	// WHEN:  Calculating the ELP
	// THEN:  savings stay zero regardless of the unused count

	lic := sam.License{
		Software:       "SAP S/4HANA",
		Vendor:         "SAP",
		LicenseType:    "perpetual",
		UnitCostUSD:    usd(2500),
		SeatsPurchased: 10,
	}
	installs, users := installFleet("SAP S/4HANA", 2, 0)
	data := sam.NewDataset([]sam.License{lic}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	row := elpRow(t, engine, "SAP S/4HANA")
	if row.SeatsUnused != 8 {
		t.Errorf("expected 8 unused seats, got %d", row.SeatsUnused)
	}
	if !row.PotentialSavingsUSD.IsZero() {
		t.Errorf("expected $0 savings for perpetual, got %v", row.PotentialSavingsUSD)
	}
}

func TestELP_ProductWithoutInstalls_ZeroFilledNotDropped(t *testing.T) {
	// GIVEN: A licensed product that nobody has installed
	// WHEN:  Calculating the ELP
	// THEN:  The product keeps its row with zero usage

	other, users := installFleet("Zoom Pro", 3, 0)
	licenses := []sam.License{zoomLicense(50), {
		Software:       "Visio Plan 2",
		Vendor:         "Microsoft",
		LicenseType:    "subscription",
		UnitCostUSD:    usd(15),
		SeatsPurchased: 25,
	}}
	data := sam.NewDataset(licenses, other, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	row := elpRow(t, engine, "Visio Plan 2")
	if row.SeatsUsed != 0 || row.InstallsCount != 0 {
		t.Errorf("expected zero usage, got used=%d installs=%d", row.SeatsUsed, row.InstallsCount)
	}
	if row.SeatsUnused != 25 {
		t.Errorf("expected all 25 seats unused, got %d", row.SeatsUnused)
	}
	if !row.PotentialSavingsUSD.Equal(usd(375)) {
		t.Errorf("expected $375 savings, got %v", row.PotentialSavingsUSD)
	}
}

func TestELP_InstallForUnknownProduct_CountedNowhere(t *testing.T) {
	// GIVEN: An installation referencing software with no license row
	// WHEN:  Calculating the ELP
	// THEN:  No row appears for it and no other row absorbs it

	installs, users := installFleet("Zoom Pro", 3, 0)
	installs = append(installs, install("LAP-X1", "active-0@acme.com", "Shadow IT Tool", sam.Date{}))
	data := sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	rows := engine.ELP()
	if len(rows) != 1 {
		t.Fatalf("expected 1 ELP row, got %d", len(rows))
	}
	if rows[0].SeatsUsed != 3 {
		t.Errorf("expected 3 seats used on Zoom Pro, got %d", rows[0].SeatsUsed)
	}
}

func TestELP_DuplicateLicenseRows_FirstWins(t *testing.T) {
	// GIVEN: Two license rows for the same product with different seats
	// WHEN:  Calculating the ELP
	// THEN:  One row comes out, using the first row's entitlement

	first := zoomLicense(50)
	second := zoomLicense(500)
	installs, users := installFleet("Zoom Pro", 10, 0)
	data := sam.NewDataset([]sam.License{first, second}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	rows := engine.ELP()
	if len(rows) != 1 {
		t.Fatalf("expected 1 ELP row, got %d", len(rows))
	}
	if rows[0].SeatsPurchased != 50 {
		t.Errorf("expected first row's 50 seats, got %d", rows[0].SeatsPurchased)
	}
}

// =============================================================================
// PROPERTY TESTS
// =============================================================================

func TestELP_NonNegativity_AtMostOneOfUnusedOverage(t *testing.T) {
	// GIVEN: Portfolios at, below, and above entitlement
	// THEN:  unused >= 0, overage >= 0, and they are never both nonzero

	for _, active := range []int{0, 25, 50, 55, 80} {
		installs, users := installFleet("Zoom Pro", active, 0)
		data := sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil)
		engine := newTestEngine(t, data, sam.ByDevice{})

		row := elpRow(t, engine, "Zoom Pro")
		if row.SeatsUnused < 0 || row.Overage < 0 {
			t.Errorf("active=%d: negative derived count: unused=%d overage=%d", active, row.SeatsUnused, row.Overage)
		}
		if row.SeatsUnused > 0 && row.Overage > 0 {
			t.Errorf("active=%d: unused and overage both nonzero", active)
		}
		if row.SeatsUnused == 0 && row.Overage == 0 && row.SeatsUsed != row.SeatsPurchased {
			t.Errorf("active=%d: both zero but used %d != purchased %d", active, row.SeatsUsed, row.SeatsPurchased)
		}
	}
}

func TestELP_Idempotent_SameInputsSameOutput(t *testing.T) {
	// GIVEN: A fixed dataset and a fixed evaluation date
	// WHEN:  Calculating the ELP twice
	// THEN:  The outputs are identical row for row

	installs, users := installFleet("Zoom Pro", 30, 5)
	data := sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil)
	engine := newTestEngine(t, data, sam.ByDevice{})

	first := engine.ELP()
	second := engine.ELP()
	if len(first) != len(second) {
		t.Fatalf("row count changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Software != b.Software || a.SeatsUsed != b.SeatsUsed ||
			a.SeatsUnused != b.SeatsUnused || a.Overage != b.Overage ||
			!a.PotentialSavingsUSD.Equal(b.PotentialSavingsUSD) ||
			a.ContractDaysRemaining != b.ContractDaysRemaining {
			t.Errorf("row %d differs between identical runs", i)
		}
	}
}

func TestELP_CountingMode_NeverChangesPurchasedSeats(t *testing.T) {
	// GIVEN: One user holding two active devices
	// WHEN:  Toggling the counting mode
	// THEN:  seats_purchased is untouched; seats_used is 2 by device, 1 by user

	installs := []sam.Installation{
		install("LAP-1", "dana@acme.com", "Zoom Pro", d(2025, time.May, 1)),
		install("LAP-2", "dana@acme.com", "Zoom Pro", d(2025, time.May, 2)),
	}
	users := []sam.User{activeUser("dana@acme.com")}
	data := sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil)

	byDevice := elpRow(t, newTestEngine(t, data, sam.ByDevice{}), "Zoom Pro")
	byUser := elpRow(t, newTestEngine(t, data, sam.ByUser{}), "Zoom Pro")

	if byDevice.SeatsPurchased != 50 || byUser.SeatsPurchased != 50 {
		t.Error("counting mode must not change seats_purchased")
	}
	if byDevice.SeatsUsed != 2 {
		t.Errorf("expected 2 seats used by device, got %d", byDevice.SeatsUsed)
	}
	if byUser.SeatsUsed != 1 {
		t.Errorf("expected 1 seat used by user, got %d", byUser.SeatsUsed)
	}
}
