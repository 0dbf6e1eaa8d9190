/*
Package ingest reads the four input CSV tables into typed records.

PURPOSE:
  Converts licenses.csv, installations.csv, users.csv, and the optional
  vendors.csv into the typed input rows the analytics engine consumes.
  Columns are resolved by header name, not position, so exports from
  different SAM tools load unchanged as long as the headers match.

ERROR POLICY:
  Three severities, kept strictly apart:
  - Structural problems (unreadable or malformed file) fail the load with
    an error.
  - An empty required table fails the load with ErrEmptyDataset.
  - Data-quality problems coerce to safe defaults and surface as Warning
    values. A warning never aborts a load. This covers bad cells
    (unparseable date, non-numeric seat count) and a required column
    missing from a header: the column reads as empty on every row and the
    features that depend on it degrade through the capability schema.

COLUMN CONTRACT:
  licenses.csv       software, vendor, license_type, seats_purchased,
                     unit_cost_usd  (+ contract_start, contract_end,
                     license_key optional)
  installations.csv  device_id, user_email, software  (+ install_date,
                     last_used_date optional)
  users.csv          user_email, status  (+ department, country optional)
  vendors.csv        vendor  (+ renewal_notice_days optional); the whole
                     file is optional

USAGE:
  data, warnings, err := ingest.LoadDir("./data")
  if err != nil {
      // structural failure or empty required table
  }
  for _, w := range warnings {
      log.Warn(w.String())
  }

SEE ALSO:
  - sam/dataset.go: the snapshot and capability schema the load produces
  - fixture/acme.go: generated demo data when no CSVs exist
*/
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// =============================================================================
// WARNINGS
// =============================================================================

// Warning is a non-fatal data-quality finding. Row is 1-based and counts
// data rows; Row 0 marks a header-level finding such as a missing required
// column.
type Warning struct {
	Table   string
	Row     int
	Column  string
	Message string
}

func (w Warning) String() string {
	if w.Row == 0 {
		return fmt.Sprintf("%s header, column %q: %s", w.Table, w.Column, w.Message)
	}
	return fmt.Sprintf("%s row %d, column %q: %s", w.Table, w.Row, w.Column, w.Message)
}

// headerRow is the warn() row index that renders as Row 0.
const headerRow = -1

// =============================================================================
// DIRECTORY LOAD
// =============================================================================

// File names expected under the data directory.
const (
	LicensesFile      = "licenses.csv"
	InstallationsFile = "installations.csv"
	UsersFile         = "users.csv"
	VendorsFile       = "vendors.csv"
)

// LoadDir reads the input tables from dir and assembles the dataset.
// vendors.csv is optional; the three other files are required to exist and
// to carry at least one data row.
func LoadDir(dir string) (*sam.Dataset, []Warning, error) {
	var warnings []Warning

	licenses, w, err := loadFile(filepath.Join(dir, LicensesFile), ReadLicenses)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, warnings, err
	}

	installs, w, err := loadFile(filepath.Join(dir, InstallationsFile), ReadInstallations)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, warnings, err
	}

	users, w, err := loadFile(filepath.Join(dir, UsersFile), ReadUsers)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, warnings, err
	}

	var vendors []sam.Vendor
	if _, statErr := os.Stat(filepath.Join(dir, VendorsFile)); statErr == nil {
		vendors, w, err = loadFile(filepath.Join(dir, VendorsFile), ReadVendors)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
	}

	data := sam.NewDataset(licenses, installs, users, vendors)
	if err := data.Validate(); err != nil {
		return nil, warnings, err
	}
	return data, warnings, nil
}

func loadFile[T any](path string, read func(io.Reader) ([]T, []Warning, error)) ([]T, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return read(f)
}

// =============================================================================
// TABLE READERS
// =============================================================================

// ReadLicenses parses the licenses table.
func ReadLicenses(r io.Reader) ([]sam.License, []Warning, error) {
	t, err := newTable("licenses", r,
		[]string{"software", "vendor", "license_type", "seats_purchased", "unit_cost_usd"})
	if err != nil {
		return nil, nil, err
	}

	out := make([]sam.License, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, sam.License{
			Software:       t.str(i, "software"),
			Vendor:         t.str(i, "vendor"),
			LicenseType:    t.str(i, "license_type"),
			SeatsPurchased: t.count(i, "seats_purchased"),
			UnitCostUSD:    t.money(i, "unit_cost_usd"),
			ContractStart:  t.date(i, "contract_start"),
			ContractEnd:    t.date(i, "contract_end"),
			LicenseKey:     t.str(i, "license_key"),
		})
	}
	return out, t.warnings, nil
}

// ReadInstallations parses the installations table.
func ReadInstallations(r io.Reader) ([]sam.Installation, []Warning, error) {
	t, err := newTable("installations", r, []string{"device_id", "user_email", "software"})
	if err != nil {
		return nil, nil, err
	}

	out := make([]sam.Installation, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, sam.Installation{
			DeviceID:     t.str(i, "device_id"),
			UserEmail:    t.str(i, "user_email"),
			Software:     t.str(i, "software"),
			InstallDate:  t.date(i, "install_date"),
			LastUsedDate: t.date(i, "last_used_date"),
		})
	}
	return out, t.warnings, nil
}

// ReadUsers parses the users table.
func ReadUsers(r io.Reader) ([]sam.User, []Warning, error) {
	t, err := newTable("users", r, []string{"user_email", "status"})
	if err != nil {
		return nil, nil, err
	}

	out := make([]sam.User, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, sam.User{
			Email:      t.str(i, "user_email"),
			Status:     sam.Status(strings.ToLower(t.str(i, "status"))),
			Department: t.str(i, "department"),
			Country:    t.str(i, "country"),
		})
	}
	return out, t.warnings, nil
}

// ReadVendors parses the optional vendors table.
func ReadVendors(r io.Reader) ([]sam.Vendor, []Warning, error) {
	t, err := newTable("vendors", r, []string{"vendor"})
	if err != nil {
		return nil, nil, err
	}

	out := make([]sam.Vendor, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, sam.Vendor{
			Vendor:            t.str(i, "vendor"),
			RenewalNoticeDays: t.count(i, "renewal_notice_days"),
		})
	}
	return out, t.warnings, nil
}

// =============================================================================
// HEADER-ADDRESSED TABLE
// =============================================================================

// table is a parsed CSV with header-name cell addressing. Accessors coerce
// bad cells to defaults and record a Warning; a missing optional column
// reads as empty without warning.
type table struct {
	name     string
	columns  map[string]int
	rows     [][]string
	warnings []Warning
}

func newTable(name string, r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, &sam.EmptyDatasetError{Tables: []string{name}}
	}

	t := &table{name: name, columns: make(map[string]int)}
	for idx, header := range records[0] {
		t.columns[normalizeHeader(header)] = idx
	}
	t.rows = records[1:]

	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			t.warn(headerRow, col, "required column missing, values read as empty")
		}
	}
	return t, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\uFEFF") // UTF-8 BOM on the first header
	return strings.ReplaceAll(h, " ", "_")
}

func (t *table) warn(row int, column, message string) {
	t.warnings = append(t.warnings, Warning{
		Table: t.name, Row: row + 1, Column: column, Message: message,
	})
}

// str returns the trimmed cell, or "" when the column is absent or the row
// is short.
func (t *table) str(row int, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][idx])
}

// date parses a YYYY-MM-DD cell; blank or unparseable reads as the null date.
func (t *table) date(row int, column string) sam.Date {
	raw := t.str(row, column)
	if raw == "" {
		return sam.Date{}
	}
	d := sam.ParseDate(raw)
	if d.IsZero() {
		t.warn(row, column, fmt.Sprintf("unparseable date %q, treated as missing", raw))
	}
	return d
}

// count parses a non-negative integer cell; bad cells read as 0.
func (t *table) count(row int, column string) int {
	raw := t.str(row, column)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		t.warn(row, column, fmt.Sprintf("invalid count %q, treated as 0", raw))
		return 0
	}
	return n
}

// money parses a decimal USD cell; bad cells read as 0.
func (t *table) money(row int, column string) decimal.Decimal {
	raw := strings.TrimPrefix(t.str(row, column), "$")
	if raw == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		t.warn(row, column, fmt.Sprintf("invalid amount %q, treated as 0", raw))
		return decimal.Zero
	}
	return v
}
