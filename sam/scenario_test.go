package sam_test

import (
	"errors"
	"testing"
	"time"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// SEAT-REDUCTION SCENARIOS
// =============================================================================

// scenarioDataset builds a 50-seat Zoom portfolio with 8 active users whose
// last-used dates are spread across distinct months, 2 active users with no
// usage history, and 1 terminated user.
func scenarioDataset() *sam.Dataset {
	dates := []sam.Date{
		d(2025, time.January, 10), d(2025, time.February, 10),
		d(2025, time.March, 10), d(2025, time.April, 10),
		d(2025, time.May, 10), d(2025, time.May, 20),
		d(2025, time.June, 1), d(2025, time.June, 10),
		{}, {},
	}
	var installs []sam.Installation
	for i, lastUsed := range dates {
		installs = append(installs, install(fmtDevice("U", i), fmtEmail("u", i), "Zoom Pro", lastUsed))
	}
	installs = append(installs, install("LAP-X", "gone@acme.com", "Zoom Pro", d(2024, time.December, 1)))
	var users []sam.User
	for i := 0; i < 10; i++ {
		users = append(users, activeUser(fmtEmail("u", i)))
	}
	users = append(users, terminatedUser("gone@acme.com"))
	return sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil)
}

func scenarioRun(t *testing.T, in sam.ScenarioInput, policy sam.CountingPolicy) *sam.ScenarioResult {
	t.Helper()
	engine := newTestEngine(t, scenarioDataset(), policy)
	result, err := engine.Scenario(in)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	return result
}

func TestScenario_StalenessOrder_UndatedLast(t *testing.T) {
	// GIVEN: 8 dated active users and 2 with no usage history
	// WHEN:  Asking for 9 removal candidates, excluding terminated
	// THEN:  All 8 dated rows come first (stalest first), then one undated

	result := scenarioRun(t, sam.ScenarioInput{
		Software: "Zoom Pro", ReduceSeats: 9, ExcludeTerminated: true,
	}, sam.ByDevice{})

	if len(result.Recommendations) != 9 {
		t.Fatalf("expected 9 recommendations, got %d", len(result.Recommendations))
	}
	for i := 0; i < 8; i++ {
		want := fmtEmail("u", i)
		if result.Recommendations[i].UserEmail != want {
			t.Errorf("rank %d: expected %s, got %s", i, want, result.Recommendations[i].UserEmail)
		}
		if result.Recommendations[i].LastUsedDate.IsZero() {
			t.Errorf("rank %d: dated rows must precede undated ones", i)
		}
	}
	if !result.Recommendations[8].LastUsedDate.IsZero() {
		t.Errorf("rank 8: expected an undated row, got %+v", result.Recommendations[8])
	}
}

func TestScenario_ExcludeTerminated(t *testing.T) {
	// GIVEN: A terminated user who is the stalest holder
	// WHEN:  Running with and without exclude_terminated
	// THEN:  The terminated row leads only when included

	included := scenarioRun(t, sam.ScenarioInput{
		Software: "Zoom Pro", ReduceSeats: 1,
	}, sam.ByDevice{})
	if included.Recommendations[0].UserEmail != "gone@acme.com" {
		t.Errorf("expected the terminated holder first, got %s", included.Recommendations[0].UserEmail)
	}

	excluded := scenarioRun(t, sam.ScenarioInput{
		Software: "Zoom Pro", ReduceSeats: 1, ExcludeTerminated: true,
	}, sam.ByDevice{})
	if excluded.Recommendations[0].UserEmail != fmtEmail("u", 0) {
		t.Errorf("expected the stalest active holder first, got %s", excluded.Recommendations[0].UserEmail)
	}
}

func TestScenario_BoundAndPrefixProperty(t *testing.T) {
	// GIVEN: Any N in [0, seats_purchased]
	// THEN:  The list has min(N, |pool|) rows and each list is a strict
	//        prefix of the next larger one

	var prev []sam.InstallRecord
	for n := 0; n <= 50; n++ {
		result := scenarioRun(t, sam.ScenarioInput{
			Software: "Zoom Pro", ReduceSeats: n, ExcludeTerminated: true,
		}, sam.ByDevice{})

		pool := 10 // active installs, terminated excluded
		want := n
		if want > pool {
			want = pool
		}
		if len(result.Recommendations) != want {
			t.Fatalf("N=%d: expected %d rows, got %d", n, want, len(result.Recommendations))
		}
		for i, r := range prev {
			if result.Recommendations[i] != r {
				t.Fatalf("N=%d: row %d diverged from the shorter list", n, i)
			}
		}
		prev = result.Recommendations
	}
}

func TestScenario_ProjectionAndSavings(t *testing.T) {
	// GIVEN: 50 seats, 10 active holders, $12/seat subscription
	// WHEN:  Reducing by 5
	// THEN:  45 seats remain, savings are $60, no overage

	result := scenarioRun(t, sam.ScenarioInput{
		Software: "Zoom Pro", ReduceSeats: 5, ExcludeTerminated: true,
	}, sam.ByDevice{})

	if result.NewSeatCount != 45 {
		t.Errorf("expected 45 seats, got %d", result.NewSeatCount)
	}
	if result.RemainingActiveUsers != 5 {
		t.Errorf("expected 5 remaining active users, got %d", result.RemainingActiveUsers)
	}
	if !result.ProjectedSavingsUSD.Equal(usd(60)) {
		t.Errorf("expected $60 savings, got %v", result.ProjectedSavingsUSD)
	}
	if result.OverageWarning {
		t.Error("no overage expected")
	}
	if result.ActiveCount != 10 || result.TerminatedCount != 1 {
		t.Errorf("expected 10 active / 1 terminated, got %d/%d",
			result.ActiveCount, result.TerminatedCount)
	}
	if result.UnusedSeats != 40 {
		t.Errorf("expected 40 unused seats (50 - 10 active), got %d", result.UnusedSeats)
	}
}

func TestScenario_PerpetualLicense_NoSavings(t *testing.T) {
	// GIVEN: A perpetual license
	// WHEN:  Reducing seats
	// THEN:  Projected savings stay zero

	lic := sam.License{
		Software: "SAP S/4HANA", Vendor: "SAP", LicenseType: "perpetual",
		UnitCostUSD: usd(2500), SeatsPurchased: 10,
	}
	installs, users := installFleet("SAP S/4HANA", 4, 0)
	engine := newTestEngine(t, sam.NewDataset([]sam.License{lic}, installs, users, nil), sam.ByDevice{})

	result, err := engine.Scenario(sam.ScenarioInput{Software: "SAP S/4HANA", ReduceSeats: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !result.ProjectedSavingsUSD.IsZero() {
		t.Errorf("perpetual reductions save nothing, got %v", result.ProjectedSavingsUSD)
	}
	if result.NewSeatCount != 7 {
		t.Errorf("expected 7 seats, got %d", result.NewSeatCount)
	}
}

func TestScenario_OverageWarning(t *testing.T) {
	// GIVEN: An already over-used product, 5 seats with 8 active holders
	// WHEN:  Cutting 2 more seats
	// THEN:  6 remaining users against 3 seats, a 3-seat overage

	installs, users := installFleet("Zoom Pro", 8, 0)
	lic := zoomLicense(5)
	engine := newTestEngine(t, sam.NewDataset([]sam.License{lic}, installs, users, nil), sam.ByDevice{})

	result, err := engine.Scenario(sam.ScenarioInput{Software: "Zoom Pro", ReduceSeats: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !result.OverageWarning || result.ProjectedOverage != 3 {
		t.Errorf("expected a 3-seat overage warning, got warning=%v overage=%d",
			result.OverageWarning, result.ProjectedOverage)
	}
}

func TestScenario_NoOverage_WhenSeatsCoverRemainingUsers(t *testing.T) {
	// GIVEN: 10 seats with 4 active holders
	// WHEN:  Cutting 3 seats
	// THEN:  1 remaining user against 7 seats, no warning

	installs, users := installFleet("Zoom Pro", 4, 0)
	engine := newTestEngine(t, sam.NewDataset([]sam.License{zoomLicense(10)}, installs, users, nil), sam.ByDevice{})

	result, err := engine.Scenario(sam.ScenarioInput{Software: "Zoom Pro", ReduceSeats: 3})
	if err != nil {
		t.Fatal(err)
	}
	if result.OverageWarning {
		t.Errorf("unexpected overage: %d", result.ProjectedOverage)
	}
}

func TestScenario_ValidationErrors(t *testing.T) {
	engine := newTestEngine(t, scenarioDataset(), sam.ByDevice{})

	// Unknown product.
	_, err := engine.Scenario(sam.ScenarioInput{Software: "Nope", ReduceSeats: 1})
	var unknown *sam.UnknownProductError
	if !errors.As(err, &unknown) || unknown.Software != "Nope" {
		t.Errorf("expected UnknownProductError, got %v", err)
	}
	if !errors.Is(err, sam.ErrNoLicense) {
		t.Error("unknown product must unwrap to ErrNoLicense")
	}

	// Negative reduction.
	_, err = engine.Scenario(sam.ScenarioInput{Software: "Zoom Pro", ReduceSeats: -1})
	if !errors.Is(err, sam.ErrInvalidReduction) {
		t.Errorf("expected ErrInvalidReduction for -1, got %v", err)
	}

	// Beyond seats purchased.
	_, err = engine.Scenario(sam.ScenarioInput{Software: "Zoom Pro", ReduceSeats: 51})
	var rangeErr *sam.ReductionRangeError
	if !errors.As(err, &rangeErr) || rangeErr.SeatsPurchased != 50 {
		t.Errorf("expected ReductionRangeError naming 50 seats, got %v", err)
	}
}

func TestScenario_UserPolicyDedup_KeepsEarliestDate(t *testing.T) {
	// GIVEN: One user holding two devices with different last-used dates
	// WHEN:  Ranking under user counting
	// THEN:  The user appears once, carrying the earlier date

	installs := []sam.Installation{
		install("LAP-1", "multi@acme.com", "Zoom Pro", d(2025, time.May, 1)),
		install("LAP-2", "multi@acme.com", "Zoom Pro", d(2025, time.January, 1)),
		install("LAP-3", "other@acme.com", "Zoom Pro", d(2025, time.March, 1)),
	}
	users := []sam.User{activeUser("multi@acme.com"), activeUser("other@acme.com")}
	engine := newTestEngine(t, sam.NewDataset([]sam.License{zoomLicense(50)}, installs, users, nil), sam.ByUser{})

	result, err := engine.Scenario(sam.ScenarioInput{Software: "Zoom Pro", ReduceSeats: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("expected 2 user rows, got %d", len(result.Recommendations))
	}
	first := result.Recommendations[0]
	if first.UserEmail != "multi@acme.com" || !first.LastUsedDate.Equal(d(2025, time.January, 1)) {
		t.Errorf("expected multi@acme.com with its January date first, got %+v", first)
	}
}
