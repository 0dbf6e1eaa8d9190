/*
Package export renders output tables as CSV and plain text.

PURPOSE:
  Every report the engine produces can leave the process as a CSV download
  or, for renewals, as a ServiceNow-shaped import file and a plain-text
  alert message. Writers take an io.Writer so the API layer can stream
  straight into the HTTP response.

CONVENTIONS:
  - USD cells are formatted with two decimals and thousands separators
    ("2,500.00"); raw decimals never leak into a CSV.
  - Null dates render as empty cells.
  - The never-expiring sentinel renders as an empty days cell rather than
    the raw number.

SEE ALSO:
  - servicenow.go: renewal rows in ServiceNow's software-model shape
  - alert.go:      plain-text renewal alert generator
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// CELL FORMATTING
// =============================================================================

// Money renders a USD amount with two decimals and thousands separators.
func Money(v decimal.Decimal) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

func dateCell(d sam.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func daysCell(days int) string {
	if days == sam.NeverExpires {
		return ""
	}
	return strconv.Itoa(days)
}

func boolCell(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// =============================================================================
// TABLE WRITERS
// =============================================================================

// WriteELP writes the Effective License Position table.
func WriteELP(w io.Writer, rows []sam.ELPRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"software", "vendor", "license_type", "seats_purchased", "seats_used",
		"seats_unused", "overage", "elp", "installs_count", "inactive_installs",
		"unit_cost_usd", "potential_savings_usd", "contract_end",
		"contract_days_remaining", "renewal_due",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Software, r.Vendor, r.LicenseType,
			strconv.Itoa(r.SeatsPurchased), strconv.Itoa(r.SeatsUsed),
			strconv.Itoa(r.SeatsUnused), strconv.Itoa(r.Overage), strconv.Itoa(r.ELP),
			strconv.Itoa(r.InstallsCount), strconv.Itoa(r.InactiveInstalls),
			Money(r.UnitCostUSD), Money(r.PotentialSavingsUSD),
			dateCell(r.ContractEnd), daysCell(r.ContractDaysRemaining),
			boolCell(r.RenewalDue),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRenewals writes the renewal schedule.
func WriteRenewals(w io.Writer, rows []sam.RenewalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"software", "vendor", "license_type", "seats_purchased", "unit_cost_usd",
		"contract_end", "days_remaining", "notice_start", "in_notice_window",
		"expiring_30d", "annual_spend_proxy",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Software, r.Vendor, r.LicenseType,
			strconv.Itoa(r.SeatsPurchased), Money(r.UnitCostUSD),
			dateCell(r.ContractEnd), daysCell(r.DaysRemainingDisplay),
			dateCell(r.NoticeStart), boolCell(r.InNoticeWindow),
			boolCell(r.Expiring30d), Money(r.AnnualSpendProxy),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDepartments writes the cost allocation table.
func WriteDepartments(w io.Writer, rows []sam.DepartmentStat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"department", "total_installs", "used_seats", "terminated_seats",
		"reclaimable_savings_usd", "share_of_spend_usd", "share_percent",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Department, strconv.Itoa(r.TotalInstalls),
			strconv.Itoa(r.UsedSeats), strconv.Itoa(r.TerminatedSeats),
			Money(r.ReclaimableSavings), Money(r.ShareOfSpend),
			r.SharePercent.StringFixed(1),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInstallRecords writes a reclaim, low-usage, or recommendation table.
func WriteInstallRecords(w io.Writer, rows []sam.InstallRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"user_email", "device_id", "software", "last_used_date", "status", "department",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.UserEmail, r.DeviceID, r.Software,
			dateCell(r.LastUsedDate), string(r.Status), r.Department,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScenarioSummary writes the one-row what-if summary plus the removal
// recommendations beneath it. runID ties the download back to the analysis
// run that produced it.
func WriteScenarioSummary(w io.Writer, result *sam.ScenarioResult, runID string, generated sam.Date) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"run_id", "generated", "software", "license_type", "seats_purchased",
		"seats_reduced", "new_seat_count", "active_users_remaining",
		"projected_savings_usd", "overage_warning",
	}); err != nil {
		return err
	}
	if err := cw.Write([]string{
		runID, generated.String(), result.Software, result.LicenseType,
		strconv.Itoa(result.SeatsPurchased), strconv.Itoa(result.ReduceSeats),
		strconv.Itoa(result.NewSeatCount), strconv.Itoa(result.RemainingActiveUsers),
		Money(result.ProjectedSavingsUSD), boolCell(result.OverageWarning),
	}); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if len(result.Recommendations) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return WriteInstallRecords(w, result.Recommendations)
}
