package sam_test

import (
	"testing"
	"time"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// LEFT JOIN FILL SEMANTICS
// =============================================================================

func TestJoinUsers_UnknownEmail_FilledNotDropped(t *testing.T) {
	// GIVEN: An installation whose user_email has no user row
	// WHEN:  Joining installs with users
	// THEN:  The row survives with status "unknown" and department "Unknown"

	installs := []sam.Installation{
		install("LAP-1", "ghost@acme.com", "Zoom Pro", sam.Date{}),
		install("LAP-2", "dana@acme.com", "Zoom Pro", sam.Date{}),
	}
	users := map[string]sam.User{"dana@acme.com": activeUser("dana@acme.com")}

	joined := sam.JoinUsers(installs, users)
	if len(joined) != 2 {
		t.Fatalf("left join must keep every install row, got %d of 2", len(joined))
	}
	if joined[0].Status != sam.StatusUnknown {
		t.Errorf("expected status %q, got %q", sam.StatusUnknown, joined[0].Status)
	}
	if joined[0].Department != sam.UnknownDepartment {
		t.Errorf("expected department %q, got %q", sam.UnknownDepartment, joined[0].Department)
	}
	if joined[1].Status != sam.StatusActive || joined[1].Department != "Engineering" {
		t.Errorf("matched row lost its user fields: %+v", joined[1])
	}
}

func TestJoinUsers_BlankStatus_CoercedToUnknown(t *testing.T) {
	// GIVEN: A user row present but with an empty status
	// WHEN:  Joining
	// THEN:  Status coerces to "unknown" rather than staying blank

	installs := []sam.Installation{install("LAP-1", "mia@acme.com", "Zoom Pro", sam.Date{})}
	users := map[string]sam.User{"mia@acme.com": {Email: "mia@acme.com", Department: "Data"}}

	joined := sam.JoinUsers(installs, users)
	if joined[0].Status != sam.StatusUnknown {
		t.Errorf("expected blank status to coerce to unknown, got %q", joined[0].Status)
	}
	if joined[0].Department != "Data" {
		t.Errorf("department should survive the coercion, got %q", joined[0].Department)
	}
}

func TestJoinCosts_UnknownProduct_ZeroCost(t *testing.T) {
	// GIVEN: An installation for software with no license row
	// WHEN:  Joining with license cost fields
	// THEN:  Cost fills zero and the row is non-subscription

	rows := sam.JoinUsers([]sam.Installation{
		install("LAP-1", "dana@acme.com", "Shadow IT Tool", sam.Date{}),
		install("LAP-2", "dana@acme.com", "Zoom Pro", sam.Date{}),
	}, map[string]sam.User{"dana@acme.com": activeUser("dana@acme.com")})

	costed := sam.JoinCosts(rows, map[string]sam.License{"Zoom Pro": zoomLicense(50)})
	if !costed[0].UnitCostUSD.IsZero() || costed[0].IsSubscription {
		t.Errorf("unmatched product must fill zero cost, got %+v", costed[0])
	}
	if !costed[1].UnitCostUSD.Equal(usd(12)) || !costed[1].IsSubscription {
		t.Errorf("matched product lost its cost fields: %+v", costed[1])
	}
}

// =============================================================================
// UTILIZATION AGGREGATION
// =============================================================================

func TestAggregateUsage_UnknownStatus_NeitherActiveNorInactive(t *testing.T) {
	// GIVEN: Active, terminated, and unknown-status installs for one product
	// WHEN:  Aggregating usage
	// THEN:  Unknown rows count in installs_count only

	installs := []sam.Installation{
		install("LAP-1", "dana@acme.com", "Zoom Pro", sam.Date{}),
		install("LAP-2", "gone@acme.com", "Zoom Pro", sam.Date{}),
		install("LAP-3", "ghost@acme.com", "Zoom Pro", sam.Date{}),
	}
	users := map[string]sam.User{
		"dana@acme.com": activeUser("dana@acme.com"),
		"gone@acme.com": terminatedUser("gone@acme.com"),
	}

	usage := sam.AggregateUsage(sam.JoinUsers(installs, users), sam.ByDevice{})
	u := usage["Zoom Pro"]
	if u.InstallsCount != 3 {
		t.Errorf("expected 3 installs, got %d", u.InstallsCount)
	}
	if u.ActiveInstalls != 1 || u.InactiveInstalls != 1 {
		t.Errorf("expected 1 active / 1 inactive, got %d / %d", u.ActiveInstalls, u.InactiveInstalls)
	}
}

func TestAggregateUsage_ByUser_CollapsesMultiDeviceUsers(t *testing.T) {
	// GIVEN: One active user with three devices
	// WHEN:  Aggregating by user vs by device
	// THEN:  3 installs by device, 1 by user

	installs := []sam.Installation{
		install("LAP-1", "dana@acme.com", "Zoom Pro", d(2025, time.April, 1)),
		install("LAP-2", "dana@acme.com", "Zoom Pro", d(2025, time.April, 2)),
		install("LAP-3", "dana@acme.com", "Zoom Pro", d(2025, time.April, 3)),
	}
	users := map[string]sam.User{"dana@acme.com": activeUser("dana@acme.com")}
	joined := sam.JoinUsers(installs, users)

	if got := sam.AggregateUsage(joined, sam.ByDevice{})["Zoom Pro"].InstallsCount; got != 3 {
		t.Errorf("expected 3 device seats, got %d", got)
	}
	if got := sam.AggregateUsage(joined, sam.ByUser{})["Zoom Pro"].InstallsCount; got != 1 {
		t.Errorf("expected 1 user seat, got %d", got)
	}
}

func TestAggregateUsage_LastUsedMax_IgnoresNulls(t *testing.T) {
	// GIVEN: Installs with mixed null and dated last-used values
	// WHEN:  Aggregating
	// THEN:  last_used_max is the latest real date

	installs := []sam.Installation{
		install("LAP-1", "dana@acme.com", "Zoom Pro", sam.Date{}),
		install("LAP-2", "dana@acme.com", "Zoom Pro", d(2025, time.May, 20)),
		install("LAP-3", "dana@acme.com", "Zoom Pro", d(2025, time.February, 1)),
	}
	users := map[string]sam.User{"dana@acme.com": activeUser("dana@acme.com")}

	u := sam.AggregateUsage(sam.JoinUsers(installs, users), sam.ByDevice{})["Zoom Pro"]
	if !u.LastUsedMax.Equal(d(2025, time.May, 20)) {
		t.Errorf("expected max 2025-05-20, got %s", u.LastUsedMax)
	}
}

// =============================================================================
// DATASET VALIDATION
// =============================================================================

func TestDataset_EmptyRequiredTable_FatalWithTableNames(t *testing.T) {
	// GIVEN: A dataset with no users and no installations
	// WHEN:  Starting an engine run
	// THEN:  The run halts with an EmptyDatasetError naming both tables

	data := sam.NewDataset([]sam.License{zoomLicense(50)}, nil, nil, nil)
	_, err := sam.NewEngine(data, sam.ByDevice{}, fixedToday())
	if err == nil {
		t.Fatal("expected an error for empty required tables")
	}
	if !sam.IsFatal(err) {
		t.Errorf("empty dataset must be fatal, got %v", err)
	}
}
