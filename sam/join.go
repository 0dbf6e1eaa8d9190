/*
join.go - Left joins over the input tables

PURPOSE:
  Produces the enriched installation relation consumed by every aggregation:

    InstallationsWithStatus = Installations LEFT JOIN Users  ON user_email
    InstallationsWithCost   = WithStatus    LEFT JOIN Licenses ON software

  Joins are key-indexed map lookups over typed records, which keeps the
  null-handling and multiplicity explicit: every installation row yields
  exactly one output row, and an unmatched key fills defaults instead of
  dropping or erroring.

FILL RULES:
  unknown user    -> status "unknown", department "Unknown"
  blank status    -> "unknown"
  blank department-> "Unknown"
  unknown product -> unit cost 0, license type "" (non-subscription)
*/
package sam

// JoinUsers left-joins installations with users on user_email.
func JoinUsers(installs []Installation, users map[string]User) []EnrichedInstall {
	out := make([]EnrichedInstall, 0, len(installs))
	for _, in := range installs {
		row := EnrichedInstall{
			DeviceID:     in.DeviceID,
			UserEmail:    in.UserEmail,
			Software:     in.Software,
			InstallDate:  in.InstallDate,
			LastUsedDate: in.LastUsedDate,
			Status:       StatusUnknown,
			Department:   UnknownDepartment,
		}
		if u, ok := users[in.UserEmail]; ok {
			if u.Status != "" {
				row.Status = u.Status
			}
			if u.Department != "" {
				row.Department = u.Department
			}
		}
		out = append(out, row)
	}
	return out
}

// JoinCosts left-joins enriched installations with license cost fields on
// software. The input slice is not modified.
func JoinCosts(installs []EnrichedInstall, licenses map[string]License) []EnrichedInstall {
	out := make([]EnrichedInstall, len(installs))
	for i, row := range installs {
		if l, ok := licenses[row.Software]; ok {
			row.UnitCostUSD = l.UnitCostUSD
			row.LicenseType = l.LicenseType
			row.IsSubscription = l.IsSubscription()
		}
		out[i] = row
	}
	return out
}
