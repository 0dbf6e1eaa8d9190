/*
Package fixture generates the seeded Acme Corp demo dataset.

PURPOSE:
  Produces a realistic in-memory estate for demos and tests without any
  CSV files: 50 users across seven departments with an 85/15
  active/terminated split, five canonical products with their real costs
  and contract dates, and per-product install counts between 30% and 90%
  of purchased seats with last-used dates spread over the past 200 days.

DETERMINISM:
  The generator is seeded. The same seed always yields the same dataset,
  so demo walkthroughs and assertions on the fixture are repeatable.

USAGE:
  data := fixture.Acme(fixture.DefaultSeed, sam.Today())
  engine, err := sam.NewEngine(data, sam.ByDevice{}, sam.Today())
*/
package fixture

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// DefaultSeed keeps demos reproducible across runs.
const DefaultSeed int64 = 42

var departments = []string{
	"Engineering", "Sales", "Marketing", "Finance", "Support", "Design", "Data",
}

var firstNames = []string{
	"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi",
	"ivan", "judy", "karl", "laura", "mallory", "nina", "oscar", "peggy",
	"quinn", "rupert", "sybil", "trent", "uma", "victor", "wendy", "xavier",
	"yara", "zane",
}

// catalog returns the five canonical products. Costs, seats, and contract
// dates match the demo estate shipped with the product.
func catalog() []sam.License {
	return []sam.License{
		{
			Software: "Microsoft 365 E3", Vendor: "Microsoft", LicenseType: "subscription",
			UnitCostUSD: decimal.NewFromInt(36), SeatsPurchased: 100,
			ContractStart: sam.NewDate(2025, time.January, 1),
			ContractEnd:   sam.NewDate(2025, time.December, 31),
		},
		{
			Software: "Visio Plan 2", Vendor: "Microsoft", LicenseType: "subscription",
			UnitCostUSD: decimal.NewFromInt(15), SeatsPurchased: 25,
			ContractStart: sam.NewDate(2025, time.March, 1),
			ContractEnd:   sam.NewDate(2026, time.February, 28),
		},
		{
			Software: "SAP S/4HANA", Vendor: "SAP", LicenseType: "perpetual",
			UnitCostUSD: decimal.NewFromInt(2500), SeatsPurchased: 10,
			ContractStart: sam.NewDate(2024, time.July, 1),
			ContractEnd:   sam.NewDate(2029, time.June, 30),
		},
		{
			Software: "Tableau Creator", Vendor: "Salesforce", LicenseType: "subscription",
			UnitCostUSD: decimal.NewFromInt(70), SeatsPurchased: 12,
			ContractStart: sam.NewDate(2025, time.May, 1),
			ContractEnd:   sam.NewDate(2026, time.April, 30),
		},
		{
			Software: "Zoom Pro", Vendor: "Zoom", LicenseType: "subscription",
			UnitCostUSD: decimal.NewFromInt(12), SeatsPurchased: 50,
			ContractStart: sam.NewDate(2025, time.January, 15),
			ContractEnd:   sam.NewDate(2026, time.January, 14),
		},
	}
}

// Acme builds the demo dataset. today anchors the last-used and install
// dates so the analysis stays meaningful regardless of wall-clock date.
func Acme(seed int64, today sam.Date) *sam.Dataset {
	rng := rand.New(rand.NewSource(seed))

	licenses := catalog()
	for i := range licenses {
		licenses[i].LicenseKey = fmt.Sprintf("KEY-%04d", i)
	}

	users := make([]sam.User, 0, 50)
	for i := 0; i < 50; i++ {
		status := sam.StatusActive
		if rng.Float64() < 0.15 {
			status = sam.StatusTerminated
		}
		users = append(users, sam.User{
			Email:      fmt.Sprintf("%s%d@acme.com", firstNames[i%len(firstNames)], i),
			Status:     status,
			Department: departments[rng.Intn(len(departments))],
			Country:    "US",
		})
	}

	// Device IDs come from a running sequence so two installs never share
	// a device and distort device-mode seat counts.
	var installs []sam.Installation
	deviceSeq := 0
	for _, lic := range licenses {
		low := lic.SeatsPurchased * 30 / 100
		high := lic.SeatsPurchased * 90 / 100
		n := low + rng.Intn(high-low+1)
		for j := 0; j < n; j++ {
			holder := users[rng.Intn(len(users))]
			usedAgo := rng.Intn(201)
			installedAgo := usedAgo + 30 + rng.Intn(336)
			deviceSeq++
			installs = append(installs, sam.Installation{
				DeviceID:     fmt.Sprintf("LAP-%04d", 1000+deviceSeq),
				UserEmail:    holder.Email,
				Software:     lic.Software,
				InstallDate:  today.AddDays(-installedAgo),
				LastUsedDate: today.AddDays(-usedAgo),
			})
		}
	}

	vendors := []sam.Vendor{
		{Vendor: "Microsoft", RenewalNoticeDays: 60},
		{Vendor: "SAP", RenewalNoticeDays: 90},
		{Vendor: "Salesforce", RenewalNoticeDays: 30},
		{Vendor: "Zoom", RenewalNoticeDays: 30},
	}

	return sam.NewDataset(licenses, installs, users, vendors)
}
