package export

import (
	"fmt"
	"strings"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// RENEWAL ALERT TEXT
// =============================================================================

// RenewalAlert produces the plain-text renewal alert message: every row
// expiring within 30 days or inside its notice window, followed by the
// subscription renewal spend at stake. Returns "" when nothing needs
// attention, so callers can skip sending entirely.
func RenewalAlert(rows []sam.RenewalRow, today sam.Date) string {
	var due []sam.RenewalRow
	for _, r := range rows {
		if r.Expiring30d || r.InNoticeWindow {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "License renewal alert - %s\n\n", today.String())
	fmt.Fprintf(&b, "%d contract(s) need attention:\n\n", len(due))

	spend := sam.SummarizeRenewals(due).SubscriptionAnnualSpend
	for _, r := range due {
		fmt.Fprintf(&b, "  - %s (%s): expires %s, %d day(s) remaining",
			r.Software, r.Vendor, dateCell(r.ContractEnd), r.DaysRemainingDisplay)
		if r.InNoticeWindow {
			b.WriteString(" [inside notice window]")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nSubscription renewal spend at stake: $%s\n", Money(spend))
	return b.String()
}
