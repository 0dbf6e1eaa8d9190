/*
engine.go - The analytic run facade

PURPOSE:
  Engine binds one immutable Dataset to a counting policy, an evaluation
  date, and the rule thresholds, and exposes every derived table as a
  method. Constructing an Engine IS starting an analytic run: the joins are
  computed once up front and every report method is a pure read over them.

  Every computation is deterministic given the injected date, so running
  the same Engine method twice yields identical output, and two Engines
  over the same inputs agree byte for byte.

CONCURRENCY:
  An Engine is immutable after construction and safe for concurrent use.
  Switching the counting mode or refreshing data means constructing a new
  Engine, never mutating this one.

SEE ALSO:
  - dataset.go: input snapshot construction and validation
  - api:        maps HTTP requests onto Engine calls
*/
package sam

import "github.com/google/uuid"

// Engine is one analytic run over a frozen dataset.
type Engine struct {
	// RunID identifies this analytic run in API envelopes and exports.
	RunID string

	data       *Dataset
	policy     CountingPolicy
	today      Date
	thresholds Thresholds

	licenseIdx map[string]License
	withStatus []EnrichedInstall
	withCost   []EnrichedInstall
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithThresholds overrides the default rule thresholds.
func WithThresholds(th Thresholds) Option {
	return func(e *Engine) { e.thresholds = th }
}

// NewEngine starts an analytic run. It fails only on structural problems:
// an empty required table halts the run with an EmptyDatasetError before
// anything is computed.
func NewEngine(data *Dataset, policy CountingPolicy, today Date, opts ...Option) (*Engine, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if policy == nil {
		policy = ByDevice{}
	}

	e := &Engine{
		RunID:      uuid.NewString(),
		data:       data,
		policy:     policy,
		today:      today,
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.licenseIdx = data.LicenseIndex()
	e.withStatus = JoinUsers(data.Installations, data.UserIndex())
	e.withCost = JoinCosts(e.withStatus, e.licenseIdx)
	return e, nil
}

// Accessors for the run configuration.
func (e *Engine) Data() *Dataset          { return e.data }
func (e *Engine) Policy() CountingPolicy  { return e.policy }
func (e *Engine) Today() Date             { return e.today }
func (e *Engine) Thresholds() Thresholds  { return e.thresholds }
func (e *Engine) CountsByUser() bool      { _, ok := e.policy.(ByUser); return ok }

// InstallBase returns the status-joined installation relation.
func (e *Engine) InstallBase() []EnrichedInstall { return e.withStatus }

// CostedInstallBase returns the cost-joined installation relation.
func (e *Engine) CostedInstallBase() []EnrichedInstall { return e.withCost }

// Utilization returns per-product usage aggregates.
func (e *Engine) Utilization() map[string]Usage {
	return AggregateUsage(e.withStatus, e.policy)
}

// ELP returns the Effective License Position table in license input order.
func (e *Engine) ELP() []ELPRow {
	return CalculateELP(e.data.Licenses, e.Utilization(), e.today, e.thresholds)
}

// Alerts returns the prioritized alert feed for the full portfolio.
func (e *Engine) Alerts() []Alert {
	return ClassifyAlerts(e.ELP(), e.thresholds)
}

// RenewalSchedule returns the renewal table sorted by urgency.
func (e *Engine) RenewalSchedule() []RenewalRow {
	return BuildRenewalSchedule(e.data.Licenses, e.data.VendorNoticeIndex(), e.today, e.thresholds)
}

// Departments returns the allocation table, or ErrMissingDepartment when
// the users table carries no department information.
func (e *Engine) Departments() ([]DepartmentStat, error) {
	if !e.data.Schema.HasDepartment {
		return nil, ErrMissingDepartment
	}
	return AllocateDepartments(e.withCost, e.data.Licenses, e.policy), nil
}

// Department returns the drilldown for one department.
func (e *Engine) Department(name string) (*DepartmentDetail, error) {
	if !e.data.Schema.HasDepartment {
		return nil, ErrMissingDepartment
	}
	detail := BuildDepartmentDetail(e.withCost, name, e.policy)
	return &detail, nil
}

// Reclaim returns installations held by terminated users, portfolio-wide.
func (e *Engine) Reclaim() []InstallRecord {
	return ReclaimTable(e.withStatus)
}

// LowUsage returns stale active-holder installations, portfolio-wide.
func (e *Engine) LowUsage() []InstallRecord {
	return LowUsageTable(e.withStatus, e.today, e.thresholds)
}

// Drilldown returns the deep-dive view for one product.
func (e *Engine) Drilldown(software string) (*ProductDrilldown, error) {
	return BuildProductDrilldown(software, e.withCost, e.licenseIdx, e.policy, e.today, e.thresholds)
}

// Scenario projects a seat-reduction what-if for one product.
func (e *Engine) Scenario(in ScenarioInput) (*ScenarioResult, error) {
	return ProjectScenario(in, e.withStatus, e.licenseIdx, e.policy)
}
