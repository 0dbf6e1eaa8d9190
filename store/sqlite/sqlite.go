/*
Package sqlite holds the session's input tables in SQLite.

PURPOSE:
  Keeps the four input tables (licenses, installations, users, vendors)
  for the lifetime of the process. The analytics engine never reads
  SQLite directly; it consumes the immutable sam.Dataset snapshot this
  store produces. Loading replaces the whole session atomically, so a
  half-finished reload can never leak into an analysis.

PERSISTENCE SCOPE:
  The store defaults to ":memory:": nothing survives the process. A file
  path is accepted for demo convenience, but derived tables (ELP, alerts,
  allocations) are never written back anywhere.

KEY TABLES:
  licenses:       entitlements, one row per product/contract
  installations:  device-product pairings observed in the estate
  users:          employment status and department per email
  vendors:        renewal notice periods

CONCURRENCY:
  Uses sync.RWMutex so a reload cannot interleave with a snapshot. Reads
  take the read lock and share.

NULL DATES:
  Day-granularity dates are stored as "YYYY-MM-DD" TEXT; the null date is
  the empty string. USD amounts are stored as decimal TEXT, never REAL.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil { ... }
  defer store.Close()

  if err := store.Load(ctx, data); err != nil { ... }
  snapshot, err := store.Snapshot(ctx)
  engine, err := sam.NewEngine(snapshot, sam.ByDevice{}, sam.Today())

SEE ALSO:
  - ingest: produces the dataset this store loads
  - sam/dataset.go: the snapshot shape
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

// Store holds the session's input tables.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the session store. Use ":memory:" for a throwaway session.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS licenses (
		software TEXT NOT NULL,
		vendor TEXT NOT NULL DEFAULT '',
		license_type TEXT NOT NULL DEFAULT '',
		unit_cost_usd TEXT NOT NULL DEFAULT '0',
		seats_purchased INTEGER NOT NULL DEFAULT 0,
		contract_start TEXT NOT NULL DEFAULT '',
		contract_end TEXT NOT NULL DEFAULT '',
		license_key TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_licenses_software
		ON licenses(software);

	CREATE TABLE IF NOT EXISTS installations (
		device_id TEXT NOT NULL,
		user_email TEXT NOT NULL,
		software TEXT NOT NULL,
		install_date TEXT NOT NULL DEFAULT '',
		last_used_date TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_installations_software
		ON installations(software);
	CREATE INDEX IF NOT EXISTS idx_installations_user
		ON installations(user_email);

	CREATE TABLE IF NOT EXISTS users (
		user_email TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_users_email
		ON users(user_email);

	CREATE TABLE IF NOT EXISTS vendors (
		vendor TEXT NOT NULL,
		renewal_notice_days INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOADING
// =============================================================================

// Load replaces the whole session with data in one transaction. Either the
// new session lands completely or the previous one stays intact.
func (s *Store) Load(ctx context.Context, data *sam.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"licenses", "installations", "users", "vendors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertLicenses(ctx, tx, data.Licenses); err != nil {
		return err
	}
	if err := insertInstallations(ctx, tx, data.Installations); err != nil {
		return err
	}
	if err := insertUsers(ctx, tx, data.Users); err != nil {
		return err
	}
	if err := insertVendors(ctx, tx, data.Vendors); err != nil {
		return err
	}

	return tx.Commit()
}

func insertLicenses(ctx context.Context, tx *sql.Tx, rows []sam.License) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO licenses (software, vendor, license_type, unit_cost_usd,
			seats_purchased, contract_start, contract_end, license_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx, r.Software, r.Vendor, r.LicenseType,
			r.UnitCostUSD.String(), r.SeatsPurchased,
			dateText(r.ContractStart), dateText(r.ContractEnd), r.LicenseKey)
		if err != nil {
			return fmt.Errorf("failed to insert license %q: %w", r.Software, err)
		}
	}
	return nil
}

func insertInstallations(ctx context.Context, tx *sql.Tx, rows []sam.Installation) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO installations (device_id, user_email, software, install_date, last_used_date)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx, r.DeviceID, r.UserEmail, r.Software,
			dateText(r.InstallDate), dateText(r.LastUsedDate))
		if err != nil {
			return fmt.Errorf("failed to insert installation %q: %w", r.DeviceID, err)
		}
	}
	return nil
}

func insertUsers(ctx context.Context, tx *sql.Tx, rows []sam.User) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO users (user_email, status, department, country)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Email, string(r.Status), r.Department, r.Country); err != nil {
			return fmt.Errorf("failed to insert user %q: %w", r.Email, err)
		}
	}
	return nil
}

func insertVendors(ctx context.Context, tx *sql.Tx, rows []sam.Vendor) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vendors (vendor, renewal_notice_days)
		VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Vendor, r.RenewalNoticeDays); err != nil {
			return fmt.Errorf("failed to insert vendor %q: %w", r.Vendor, err)
		}
	}
	return nil
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot reads the whole session into an immutable dataset for one
// analytic run. Row order is preserved from the load, so ELP output order
// stays stable across snapshots.
func (s *Store) Snapshot(ctx context.Context) (*sam.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	licenses, err := s.readLicenses(ctx)
	if err != nil {
		return nil, err
	}
	installs, err := s.readInstallations(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	vendors, err := s.readVendors(ctx)
	if err != nil {
		return nil, err
	}

	return sam.NewDataset(licenses, installs, users, vendors), nil
}

func (s *Store) readLicenses(ctx context.Context) ([]sam.License, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT software, vendor, license_type, unit_cost_usd, seats_purchased,
			contract_start, contract_end, license_key
		FROM licenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to read licenses: %w", err)
	}
	defer rows.Close()

	var out []sam.License
	for rows.Next() {
		var r sam.License
		var cost, start, end string
		if err := rows.Scan(&r.Software, &r.Vendor, &r.LicenseType, &cost,
			&r.SeatsPurchased, &start, &end, &r.LicenseKey); err != nil {
			return nil, err
		}
		if r.UnitCostUSD, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("corrupt unit_cost_usd for %q: %w", r.Software, err)
		}
		r.ContractStart = sam.ParseDate(start)
		r.ContractEnd = sam.ParseDate(end)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) readInstallations(ctx context.Context) ([]sam.Installation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT device_id, user_email, software, install_date, last_used_date
		FROM installations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to read installations: %w", err)
	}
	defer rows.Close()

	var out []sam.Installation
	for rows.Next() {
		var r sam.Installation
		var installed, lastUsed string
		if err := rows.Scan(&r.DeviceID, &r.UserEmail, &r.Software, &installed, &lastUsed); err != nil {
			return nil, err
		}
		r.InstallDate = sam.ParseDate(installed)
		r.LastUsedDate = sam.ParseDate(lastUsed)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) readUsers(ctx context.Context) ([]sam.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_email, status, department, country FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	defer rows.Close()

	var out []sam.User
	for rows.Next() {
		var r sam.User
		var status string
		if err := rows.Scan(&r.Email, &status, &r.Department, &r.Country); err != nil {
			return nil, err
		}
		r.Status = sam.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) readVendors(ctx context.Context) ([]sam.Vendor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor, renewal_notice_days FROM vendors ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendors: %w", err)
	}
	defer rows.Close()

	var out []sam.Vendor
	for rows.Next() {
		var r sam.Vendor
		if err := rows.Scan(&r.Vendor, &r.RenewalNoticeDays); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// RowCounts reports table sizes for the status endpoint.
func (s *Store) RowCounts(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, 4)
	for _, table := range []string{"licenses", "installations", "users", "vendors"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Reset clears every table.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"licenses", "installations", "users", "vendors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func dateText(d sam.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
