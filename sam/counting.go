package sam

// =============================================================================
// COUNTING POLICY - Device vs. deduplicated-user seat counting
// =============================================================================

// CountingPolicy decides what one "seat" is when counting installations.
//
// Per-seat (device) licenses must count every installed device even when one
// user has multiple machines; per-user licenses must not double-charge a
// user with multiple devices. The policy is a single global toggle applied
// consistently across every downstream aggregation - utilization, department
// allocation, scenario counts - so switching it changes every derived seat
// count in the system at once.
type CountingPolicy interface {
	// Key returns the deduplication key for one installation row. Rows
	// sharing a key consume one seat.
	Key(row EnrichedInstall) string

	// Name identifies the policy in configuration and API payloads.
	Name() string
}

// ByDevice counts seats per distinct device.
type ByDevice struct{}

func (ByDevice) Key(row EnrichedInstall) string { return row.DeviceID }
func (ByDevice) Name() string                   { return "device" }

// ByUser counts seats per distinct user, collapsing multi-device users.
type ByUser struct{}

func (ByUser) Key(row EnrichedInstall) string { return row.UserEmail }
func (ByUser) Name() string                   { return "user" }

// PolicyFromName maps a configuration value to a policy. Anything other
// than "user" selects device counting, the conservative default.
func PolicyFromName(name string) CountingPolicy {
	if name == "user" {
		return ByUser{}
	}
	return ByDevice{}
}
