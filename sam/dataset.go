/*
dataset.go - Immutable per-run input snapshot

PURPOSE:
  Dataset is the frozen view of the four input tables for one analytic run.
  It is constructed once, passed by reference to every component, and never
  mutated. Re-running with fresh data means constructing a new Dataset,
  never patching an old one in place.

CAPABILITY SCHEMA:
  Optional columns (department, vendors table, last_used_date, contract_end)
  are detected once at load time and recorded on Schema. Downstream
  components query the flags instead of re-checking presence row by row;
  a flag that is off disables the dependent feature with a warning rather
  than failing the run.

SEE ALSO:
  - ingest: builds Datasets from CSV and refines Schema from the headers
            it actually saw
  - engine.go: consumes a Dataset for the lifetime of a run
*/
package sam

// Schema records which optional inputs the loaded data actually carries.
type Schema struct {
	// HasDepartment is true when the users table carries a department
	// column. Department allocation requires it.
	HasDepartment bool

	// HasVendors is true when a vendors table was supplied. Without it,
	// every renewal notice period defaults to DefaultRenewalNoticeDays.
	HasVendors bool

	// HasLastUsed is true when installations carry last_used_date.
	// Staleness-based features (low-usage table, scenario ranking) degrade
	// to input order without it.
	HasLastUsed bool

	// HasContractEnd is true when licenses carry contract_end. Without it
	// every contract is treated as never expiring.
	HasContractEnd bool
}

// Dataset is the read-only input snapshot for one analytic run.
type Dataset struct {
	Licenses      []License
	Installations []Installation
	Users         []User
	Vendors       []Vendor
	Schema        Schema
}

// NewDataset builds a snapshot and detects its capability schema from the
// data itself. Loaders that know the source headers (ingest) may widen the
// flags afterwards; detection here only looks at populated values, which is
// the right default for programmatic construction.
func NewDataset(licenses []License, installs []Installation, users []User, vendors []Vendor) *Dataset {
	d := &Dataset{
		Licenses:      licenses,
		Installations: installs,
		Users:         users,
		Vendors:       vendors,
	}
	d.Schema = detectSchema(d)
	return d
}

func detectSchema(d *Dataset) Schema {
	s := Schema{HasVendors: len(d.Vendors) > 0}
	for _, u := range d.Users {
		if u.Department != "" {
			s.HasDepartment = true
			break
		}
	}
	for _, in := range d.Installations {
		if !in.LastUsedDate.IsZero() {
			s.HasLastUsed = true
			break
		}
	}
	for _, l := range d.Licenses {
		if !l.ContractEnd.IsZero() {
			s.HasContractEnd = true
			break
		}
	}
	return s
}

// Validate checks the structural preconditions for a run: the three
// required tables must be non-empty. It returns an EmptyDatasetError
// naming every empty table, or nil.
func (d *Dataset) Validate() error {
	var empty []string
	if len(d.Licenses) == 0 {
		empty = append(empty, "licenses")
	}
	if len(d.Installations) == 0 {
		empty = append(empty, "installations")
	}
	if len(d.Users) == 0 {
		empty = append(empty, "users")
	}
	if len(empty) > 0 {
		return &EmptyDatasetError{Tables: empty}
	}
	return nil
}

// LicenseIndex returns software -> license with first-row-wins resolution
// for duplicate products.
func (d *Dataset) LicenseIndex() map[string]License {
	idx := make(map[string]License, len(d.Licenses))
	for _, l := range d.Licenses {
		if _, seen := idx[l.Software]; !seen {
			idx[l.Software] = l
		}
	}
	return idx
}

// UserIndex returns email -> user. Later duplicates win, matching a
// last-write-wins load; user tables are expected to be unique on email.
func (d *Dataset) UserIndex() map[string]User {
	idx := make(map[string]User, len(d.Users))
	for _, u := range d.Users {
		idx[u.Email] = u
	}
	return idx
}

// VendorNoticeIndex returns vendor -> renewal notice days, with rows
// missing a notice period already defaulted.
func (d *Dataset) VendorNoticeIndex() map[string]int {
	idx := make(map[string]int, len(d.Vendors))
	for _, v := range d.Vendors {
		days := v.RenewalNoticeDays
		if days <= 0 {
			days = DefaultRenewalNoticeDays
		}
		idx[v.Vendor] = days
	}
	return idx
}

// Products returns the distinct product names present in the license table,
// in input order.
func (d *Dataset) Products() []string {
	seen := make(map[string]bool, len(d.Licenses))
	var out []string
	for _, l := range d.Licenses {
		if !seen[l.Software] {
			seen[l.Software] = true
			out = append(out, l.Software)
		}
	}
	return out
}
