package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// SERVICENOW SOFTWARE-MODEL EXPORT
// =============================================================================

// WriteServiceNow writes renewal rows in the column shape ServiceNow's
// software model import expects, with two advisory columns appended.
// requires_action marks rows that are expiring within 30 days or already
// inside their vendor notice window.
func WriteServiceNow(w io.Writer, rows []sam.RenewalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"name", "manufacturer", "license_metric", "cost", "quantity",
		"expiration_date", "days_until_expiration", "requires_action",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Software, r.Vendor, r.LicenseType,
			Money(r.UnitCostUSD), strconv.Itoa(r.SeatsPurchased),
			dateCell(r.ContractEnd), daysCell(r.DaysRemainingDisplay),
			boolCell(r.Expiring30d || r.InNoticeWindow),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
