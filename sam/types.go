/*
Package sam provides the core license-utilization analytics engine.

PURPOSE:
  This package contains the types and algorithms that turn three flat input
  tables (licenses, installations, users) into an Effective License Position
  per product: seats purchased vs. seats actually used, compliance and cost
  risks, renewal timing, departmental cost allocation, and ranked
  seat-removal recommendations.

KEY CONCEPTS IN THIS FILE (types.go):
  - License: one row per product/contract (entitlement side)
  - Installation: one row per device-product pairing (usage side)
  - User: employment status and department for an email address
  - Vendor: per-vendor renewal notice period

DESIGN PRINCIPLES:
  1. Immutability: input rows are read-only snapshots; the engine only
     derives new rows, it never mutates or deletes an input row
  2. Precision: all USD amounts use decimal.Decimal, never float64
  3. Graceful degradation: missing values coerce to safe defaults
     (zero cost, "unknown" status, never-expiring contracts) instead of
     failing the analysis
  4. Left-join semantics: an installation referencing an unknown user or
     product is filled with defaults, never dropped from the install side

USAGE:
  data := sam.NewDataset(licenses, installs, users, vendors)
  engine := sam.NewEngine(data, sam.ByDevice{}, sam.Today())
  rows := engine.ELP()

SEE ALSO:
  - dataset.go: Per-run immutable snapshot and capability schema
  - engine.go:  Engine facade tying the computations together
  - elp.go:     The core ELP derivation
*/
package sam

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - Employment status of an installation's holder
// =============================================================================

type Status string

const (
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"

	// StatusUnknown is assigned when an installation's user_email has no
	// matching user row. Unknown holders count toward install totals but
	// toward neither active nor terminated tallies.
	StatusUnknown Status = "unknown"
)

// UnknownDepartment is the fill value for installations whose holder has no
// department on record.
const UnknownDepartment = "Unknown"

// =============================================================================
// INPUT RECORDS
// =============================================================================

// License is one purchased product/contract. Software is the join key; when
// the input carries duplicate rows for one product, the first row wins.
type License struct {
	Software       string
	Vendor         string
	LicenseType    string
	UnitCostUSD    decimal.Decimal
	SeatsPurchased int
	ContractStart  Date
	ContractEnd    Date
	LicenseKey     string
}

// IsSubscription reports whether the license is classified as a subscription.
// Classification is a case-insensitive substring match on the free-text
// license_type, so "Annual Subscription" and "subscription (per user)" both
// qualify. Everything else is treated as perpetual/other and contributes
// zero to savings figures.
func (l License) IsSubscription() bool {
	return IsSubscriptionType(l.LicenseType)
}

// IsSubscriptionType is the classification rule shared by all components.
func IsSubscriptionType(licenseType string) bool {
	return strings.Contains(strings.ToLower(licenseType), "subscription")
}

// Installation is one device-product pairing observed in the estate.
type Installation struct {
	DeviceID     string
	UserEmail    string
	Software     string
	InstallDate  Date
	LastUsedDate Date
}

// User carries employment status and organizational placement for an email.
type User struct {
	Email      string
	Status     Status
	Department string
	Country    string
}

// Vendor carries the vendor-specific renewal notice period in days.
type Vendor struct {
	Vendor            string
	RenewalNoticeDays int
}

// DefaultRenewalNoticeDays applies when the vendors table is absent or a
// vendor row has no notice period.
const DefaultRenewalNoticeDays = 30

// =============================================================================
// ENRICHED INSTALLATION - Output of the join engine
// =============================================================================

// EnrichedInstall is an installation row joined with its holder's status and
// department and, downstream, the owning license's cost fields. Every
// installation row produces exactly one EnrichedInstall; unmatched joins are
// filled with defaults rather than dropped.
type EnrichedInstall struct {
	DeviceID     string
	UserEmail    string
	Software     string
	InstallDate  Date
	LastUsedDate Date

	// Filled by the user join
	Status     Status
	Department string

	// Filled by the license join
	UnitCostUSD    decimal.Decimal
	LicenseType    string
	IsSubscription bool
}

// InstallRecord is the row shape shared by the reclaim, low-usage, and
// scenario-removal output tables.
type InstallRecord struct {
	UserEmail    string
	DeviceID     string
	Software     string
	LastUsedDate Date
	Status       Status
	Department   string
}

// Record projects an enriched installation onto the export row shape.
func (e EnrichedInstall) Record() InstallRecord {
	return InstallRecord{
		UserEmail:    e.UserEmail,
		DeviceID:     e.DeviceID,
		Software:     e.Software,
		LastUsedDate: e.LastUsedDate,
		Status:       e.Status,
		Department:   e.Department,
	}
}

// =============================================================================
// THRESHOLDS - Business rule constants
// =============================================================================

// Thresholds collects the rule constants used by the risk classifier and the
// optimization tables. The defaults mirror common SAM practice; they are
// plausible candidates for per-deployment configuration, which is why they
// live on a struct instead of being buried as literals.
type Thresholds struct {
	// LowUsageDays is the staleness cutoff for the low-usage table.
	LowUsageDays int

	// RenewalWindowDays drives renewal_due and the "Expiring < 30d" risk.
	RenewalWindowDays int

	// UrgentWindowDays drives the priority-1 expiry alert.
	UrgentWindowDays int

	// HighValueSavingsUSD is the single-product savings level that earns a
	// priority-4 optimization alert.
	HighValueSavingsUSD decimal.Decimal
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LowUsageDays:        60,
		RenewalWindowDays:   30,
		UrgentWindowDays:    10,
		HighValueSavingsUSD: decimal.NewFromInt(5000),
	}
}
