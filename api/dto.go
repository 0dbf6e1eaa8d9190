/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's internal rows from the external API contract:
  - USD amounts cross the wire as decimal strings, never floats
  - Day-granularity dates serialize as "YYYY-MM-DD", null dates as ""
  - The never-expiring days sentinel serializes as null

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Builds these from engine rows
*/
package api

import (
	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// ReportEnvelope wraps every report response with run provenance.
type ReportEnvelope struct {
	RunID       string `json:"run_id"`
	Today       string `json:"today"`
	CountByUser bool   `json:"count_by_user"`
	Data        any    `json:"data"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REPORT ROWS
// =============================================================================

// ELPRowDTO is one product's license position.
type ELPRowDTO struct {
	Software              string `json:"software"`
	Vendor                string `json:"vendor"`
	LicenseType           string `json:"license_type"`
	SeatsPurchased        int    `json:"seats_purchased"`
	SeatsUsed             int    `json:"seats_used"`
	SeatsUnused           int    `json:"seats_unused"`
	Overage               int    `json:"overage"`
	ELP                   int    `json:"elp"`
	InstallsCount         int    `json:"installs_count"`
	InactiveInstalls      int    `json:"inactive_installs"`
	LastUsedMax           string `json:"last_used_max"`
	UnitCostUSD           string `json:"unit_cost_usd"`
	PotentialSavingsUSD   string `json:"potential_savings_usd"`
	ContractEnd           string `json:"contract_end"`
	ContractDaysRemaining *int   `json:"contract_days_remaining"`
	RenewalDue            bool   `json:"renewal_due"`
}

func toELPRowDTO(r sam.ELPRow) ELPRowDTO {
	return ELPRowDTO{
		Software:              r.Software,
		Vendor:                r.Vendor,
		LicenseType:           r.LicenseType,
		SeatsPurchased:        r.SeatsPurchased,
		SeatsUsed:             r.SeatsUsed,
		SeatsUnused:           r.SeatsUnused,
		Overage:               r.Overage,
		ELP:                   r.ELP,
		InstallsCount:         r.InstallsCount,
		InactiveInstalls:      r.InactiveInstalls,
		LastUsedMax:           dateString(r.LastUsedMax),
		UnitCostUSD:           r.UnitCostUSD.String(),
		PotentialSavingsUSD:   r.PotentialSavingsUSD.String(),
		ContractEnd:           dateString(r.ContractEnd),
		ContractDaysRemaining: daysPtr(r.ContractDaysRemaining),
		RenewalDue:            r.RenewalDue,
	}
}

// SummaryDTO is the KPI strip.
type SummaryDTO struct {
	Vendors             int    `json:"vendors"`
	Products            int    `json:"products"`
	TotalSeats          int    `json:"total_seats"`
	PotentialSavingsUSD string `json:"potential_savings_usd"`
}

// AlertDTO is one prioritized portfolio alert.
type AlertDTO struct {
	Priority   int      `json:"priority"`
	Code       string   `json:"code"`
	Title      string   `json:"title"`
	Detail     string   `json:"detail"`
	Products   []string `json:"products"`
	SavingsUSD string   `json:"savings_usd,omitempty"`
}

// RenewalRowDTO is one contract in the renewal schedule.
type RenewalRowDTO struct {
	Software         string `json:"software"`
	Vendor           string `json:"vendor"`
	LicenseType      string `json:"license_type"`
	SeatsPurchased   int    `json:"seats_purchased"`
	UnitCostUSD      string `json:"unit_cost_usd"`
	ContractEnd      string `json:"contract_end"`
	DaysRemaining    *int   `json:"days_remaining"`
	NoticeStart      string `json:"notice_start"`
	InNoticeWindow   bool   `json:"in_notice_window"`
	Expiring30d      bool   `json:"expiring_30d"`
	AnnualSpendProxy string `json:"annual_spend_proxy"`
}

func toRenewalRowDTO(r sam.RenewalRow) RenewalRowDTO {
	return RenewalRowDTO{
		Software:         r.Software,
		Vendor:           r.Vendor,
		LicenseType:      r.LicenseType,
		SeatsPurchased:   r.SeatsPurchased,
		UnitCostUSD:      r.UnitCostUSD.String(),
		ContractEnd:      dateString(r.ContractEnd),
		DaysRemaining:    daysPtr(r.DaysRemainingDisplay),
		NoticeStart:      dateString(r.NoticeStart),
		InNoticeWindow:   r.InNoticeWindow,
		Expiring30d:      r.Expiring30d,
		AnnualSpendProxy: r.AnnualSpendProxy.String(),
	}
}

// RenewalSummaryDTO is the renewal radar KPI strip.
type RenewalSummaryDTO struct {
	Products                int    `json:"products"`
	Expiring30d             int    `json:"expiring_30d"`
	InNoticeWindow          int    `json:"in_notice_window"`
	SubscriptionAnnualSpend string `json:"subscription_annual_spend"`
}

// DepartmentDTO is one department's allocation row.
type DepartmentDTO struct {
	Department         string `json:"department"`
	UsedSeats          int    `json:"used_seats"`
	TerminatedSeats    int    `json:"terminated_seats"`
	TotalInstalls      int    `json:"total_installs"`
	ReclaimableSavings string `json:"reclaimable_savings_usd"`
	ShareOfSpend       string `json:"share_of_spend_usd"`
	SharePercent       string `json:"share_percent"`
}

func toDepartmentDTO(s sam.DepartmentStat) DepartmentDTO {
	return DepartmentDTO{
		Department:         s.Department,
		UsedSeats:          s.UsedSeats,
		TerminatedSeats:    s.TerminatedSeats,
		TotalInstalls:      s.TotalInstalls,
		ReclaimableSavings: s.ReclaimableSavings.String(),
		ShareOfSpend:       s.ShareOfSpend.String(),
		SharePercent:       s.SharePercent.StringFixed(1),
	}
}

// InstallRecordDTO is one install row in reclaim, low-usage, department
// drilldown, and recommendation tables.
type InstallRecordDTO struct {
	UserEmail    string `json:"user_email"`
	DeviceID     string `json:"device_id"`
	Software     string `json:"software"`
	LastUsedDate string `json:"last_used_date"`
	Status       string `json:"status"`
	Department   string `json:"department,omitempty"`
}

func toInstallRecordDTO(r sam.InstallRecord) InstallRecordDTO {
	return InstallRecordDTO{
		UserEmail:    r.UserEmail,
		DeviceID:     r.DeviceID,
		Software:     r.Software,
		LastUsedDate: dateString(r.LastUsedDate),
		Status:       string(r.Status),
		Department:   r.Department,
	}
}

func toInstallRecordDTOs(rows []sam.InstallRecord) []InstallRecordDTO {
	out := make([]InstallRecordDTO, len(rows))
	for i, r := range rows {
		out[i] = toInstallRecordDTO(r)
	}
	return out
}

// SoftwareStatusDTO is one cell of a department's software-by-status pivot.
type SoftwareStatusDTO struct {
	Software string `json:"software"`
	Status   string `json:"status"`
	Count    int    `json:"count"`
}

// DepartmentDetailDTO is the single-department drilldown.
type DepartmentDetailDTO struct {
	Department         string              `json:"department"`
	SoftwareUsage      []SoftwareStatusDTO `json:"software_usage"`
	Reclaim            []InstallRecordDTO  `json:"reclaim"`
	ReclaimableSavings string              `json:"reclaimable_savings_usd"`
}

// ProductDrilldownDTO is the single-product optimization view.
type ProductDrilldownDTO struct {
	Software            string             `json:"software"`
	Vendor              string             `json:"vendor"`
	LicenseType         string             `json:"license_type"`
	SeatsPurchased      int                `json:"seats_purchased"`
	ActiveInstalls      int                `json:"active_installs"`
	UnusedSeats         int                `json:"unused_seats"`
	Overage             int                `json:"overage"`
	PotentialSavingsUSD string             `json:"potential_savings_usd"`
	ImmediateSavingsUSD string             `json:"immediate_savings_usd"`
	LowUsageSavingsUSD  string             `json:"low_usage_savings_usd"`
	Active              []InstallRecordDTO `json:"active"`
	Reclaim             []InstallRecordDTO `json:"reclaim"`
	LowUsage            []InstallRecordDTO `json:"low_usage"`
}

// =============================================================================
// SCENARIO
// =============================================================================

// ScenarioRequest is the what-if request body.
type ScenarioRequest struct {
	Software          string `json:"software"`
	ReduceSeats       int    `json:"reduce_seats"`
	ExcludeTerminated bool   `json:"exclude_terminated"`
}

// ScenarioDTO is the what-if projection.
type ScenarioDTO struct {
	Software             string             `json:"software"`
	LicenseType          string             `json:"license_type"`
	SeatsPurchased       int                `json:"seats_purchased"`
	ActiveCount          int                `json:"active_count"`
	TerminatedCount      int                `json:"terminated_count"`
	UnusedSeats          int                `json:"unused_seats"`
	ReduceSeats          int                `json:"reduce_seats"`
	NewSeatCount         int                `json:"new_seat_count"`
	RemainingActiveUsers int                `json:"remaining_active_users"`
	ProjectedSavingsUSD  string             `json:"projected_savings_usd"`
	OverageWarning       bool               `json:"overage_warning"`
	ProjectedOverage     int                `json:"projected_overage,omitempty"`
	Recommendations      []InstallRecordDTO `json:"recommendations"`
}

func toScenarioDTO(r *sam.ScenarioResult) ScenarioDTO {
	return ScenarioDTO{
		Software:             r.Software,
		LicenseType:          r.LicenseType,
		SeatsPurchased:       r.SeatsPurchased,
		ActiveCount:          r.ActiveCount,
		TerminatedCount:      r.TerminatedCount,
		UnusedSeats:          r.UnusedSeats,
		ReduceSeats:          r.ReduceSeats,
		NewSeatCount:         r.NewSeatCount,
		RemainingActiveUsers: r.RemainingActiveUsers,
		ProjectedSavingsUSD:  r.ProjectedSavingsUSD.String(),
		OverageWarning:       r.OverageWarning,
		ProjectedOverage:     r.ProjectedOverage,
		Recommendations:      toInstallRecordDTOs(r.Recommendations),
	}
}

// =============================================================================
// SETTINGS & ADMIN
// =============================================================================

// SettingsDTO reports and updates session settings.
type SettingsDTO struct {
	CountByUser bool `json:"count_by_user"`
}

// StatusDTO reports the session store contents.
type StatusDTO struct {
	Tables map[string]int `json:"tables"`
}

// LoadResultDTO reports a dataset load.
type LoadResultDTO struct {
	Source   string         `json:"source"`
	Tables   map[string]int `json:"tables"`
	Warnings []string       `json:"warnings,omitempty"`
}

// =============================================================================
// HELPERS
// =============================================================================

func dateString(d sam.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// daysPtr maps the never-expiring sentinel to JSON null.
func daysPtr(days int) *int {
	if days == sam.NeverExpires {
		return nil
	}
	return &days
}
