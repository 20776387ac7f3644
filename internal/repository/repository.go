// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opensource-health/heron/internal/domain"
)

// Sentinel errors shared with the domain layer so callers can check
// either package's name.
var (
	ErrNotFound     = domain.ErrNotFound
	ErrInvalidInput = domain.ErrInvalidInput
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.SeedCatalog {
		if err := repo.seedCatalog(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas(r.driver) {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// seedCatalog loads the default price list when the catalog is empty.
func (r *SQLRepository) seedCatalog(ctx context.Context) error {
	count, err := r.CountItems(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, item := range DefaultCatalog() {
		if _, err := r.CreateItem(ctx, &item); err != nil {
			return err
		}
	}
	return nil
}

const itemColumns = "id, category, name, price, currency, description, is_outpatient, created_at"

// ListItems retrieves the full item catalog ordered by category and name.
func (r *SQLRepository) ListItems(ctx context.Context) ([]*domain.MedicalItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM medical_items
		ORDER BY category, name
	`
	return r.queryItems(ctx, query)
}

// ListItemsByType retrieves the outpatient or inpatient price schedule.
func (r *SQLRepository) ListItemsByType(ctx context.Context, isOutpatient bool) ([]*domain.MedicalItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM medical_items
		WHERE is_outpatient = ?
		ORDER BY category, name
	`
	return r.queryItems(ctx, query, boolToInt(isOutpatient))
}

// ListItemsByCategory retrieves items in a category for one schedule.
func (r *SQLRepository) ListItemsByCategory(ctx context.Context, category string, isOutpatient bool) ([]*domain.MedicalItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM medical_items
		WHERE is_outpatient = ? AND category = ?
		ORDER BY name
	`
	return r.queryItems(ctx, query, boolToInt(isOutpatient), category)
}

// SearchItems retrieves items whose name or category contains the query.
func (r *SQLRepository) SearchItems(ctx context.Context, search string, isOutpatient bool) ([]*domain.MedicalItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM medical_items
		WHERE is_outpatient = ? AND (name LIKE ? OR category LIKE ?)
		ORDER BY category, name
	`
	pattern := "%" + search + "%"
	return r.queryItems(ctx, query, boolToInt(isOutpatient), pattern, pattern)
}

func (r *SQLRepository) queryItems(ctx context.Context, query string, args ...any) ([]*domain.MedicalItem, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.MedicalItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanItem(rows *sql.Rows) (*domain.MedicalItem, error) {
	var item domain.MedicalItem
	var description sql.NullString
	var isOutpatient int

	if err := rows.Scan(
		&item.ID, &item.Category, &item.Name, &item.Price,
		&item.Currency, &description, &isOutpatient, &item.CreatedAt,
	); err != nil {
		return nil, err
	}

	item.Description = description.String
	item.IsOutpatient = isOutpatient == 1
	return &item, nil
}

// CreateItem inserts a catalog item and returns it with its ID.
func (r *SQLRepository) CreateItem(ctx context.Context, item *domain.MedicalItem) (*domain.MedicalItem, error) {
	if item.Category == "" || item.Name == "" {
		return nil, fmt.Errorf("%w: category and name are required", ErrInvalidInput)
	}
	if item.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	currency := item.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	created := *item
	created.Currency = currency
	created.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO medical_items (category, name, price, currency, description, is_outpatient, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		created.Category, created.Name, created.Price, currency,
		created.Description, boolToInt(created.IsOutpatient), created.CreatedAt,
	}

	if r.driver == "postgres" {
		err := r.db.QueryRowContext(ctx, r.rebind(query+" RETURNING id"), args...).Scan(&created.ID)
		if err != nil {
			return nil, err
		}
		return &created, nil
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	created.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateItem replaces a catalog item's mutable fields.
func (r *SQLRepository) UpdateItem(ctx context.Context, id int64, item *domain.MedicalItem) (*domain.MedicalItem, error) {
	if item.Category == "" || item.Name == "" {
		return nil, fmt.Errorf("%w: category and name are required", ErrInvalidInput)
	}

	currency := item.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	query := `
		UPDATE medical_items
		SET category = ?, name = ?, price = ?, currency = ?, description = ?, is_outpatient = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query),
		item.Category, item.Name, item.Price, currency,
		item.Description, boolToInt(item.IsOutpatient), id,
	)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	updated := *item
	updated.ID = id
	updated.Currency = currency
	return &updated, nil
}

// DeleteItem removes a catalog item.
func (r *SQLRepository) DeleteItem(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM medical_items WHERE id = ?`), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CountItems returns the catalog size.
func (r *SQLRepository) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM medical_items`).Scan(&count)
	return count, err
}

// SaveBill upserts a bill keyed by (facility, session, type).
func (r *SQLRepository) SaveBill(ctx context.Context, facilityID string, bill *domain.StoredBill) (*domain.StoredBill, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}
	if bill.SessionID == "" {
		return nil, fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}
	if _, err := domain.ParseAdmissionType(string(bill.Type)); err != nil {
		return nil, err
	}

	currency := bill.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO bills (facility_id, type, session_id, bill_data, days_admitted, total, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (facility_id, session_id, type) DO UPDATE SET
			bill_data = excluded.bill_data,
			days_admitted = excluded.days_admitted,
			total = excluded.total,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		facilityID, string(bill.Type), bill.SessionID, bill.BillData,
		bill.DaysAdmitted, bill.Total, currency, now, now,
	)
	if err != nil {
		return nil, err
	}

	return r.GetBillBySession(ctx, facilityID, bill.SessionID, bill.Type)
}

// GetBillBySession retrieves the stored bill for a session and type.
func (r *SQLRepository) GetBillBySession(ctx context.Context, facilityID string, sessionID string, billType domain.AdmissionType) (*domain.StoredBill, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, type, session_id, bill_data, days_admitted, total, currency, created_at, updated_at
		FROM bills
		WHERE facility_id = ? AND session_id = ? AND type = ?
	`

	var bill domain.StoredBill
	var billType2 string

	err := r.db.QueryRowContext(ctx, r.rebind(query), facilityID, sessionID, string(billType)).Scan(
		&bill.ID, &bill.FacilityID, &billType2, &bill.SessionID,
		&bill.BillData, &bill.DaysAdmitted, &bill.Total, &bill.Currency,
		&bill.CreatedAt, &bill.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	bill.Type = domain.AdmissionType(billType2)
	return &bill, nil
}

// ListBillsSince retrieves a facility's bills updated after a cutoff.
func (r *SQLRepository) ListBillsSince(ctx context.Context, facilityID string, since time.Time) ([]*domain.StoredBill, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, type, session_id, bill_data, days_admitted, total, currency, created_at, updated_at
		FROM bills
		WHERE facility_id = ? AND updated_at >= ?
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*domain.StoredBill
	for rows.Next() {
		var bill domain.StoredBill
		var billType string

		if err := rows.Scan(
			&bill.ID, &bill.FacilityID, &billType, &bill.SessionID,
			&bill.BillData, &bill.DaysAdmitted, &bill.Total, &bill.Currency,
			&bill.CreatedAt, &bill.UpdatedAt,
		); err != nil {
			return nil, err
		}

		bill.Type = domain.AdmissionType(billType)
		bills = append(bills, &bill)
	}

	return bills, rows.Err()
}

// SaveAuditRule stores an audit rule with facility isolation.
func (r *SQLRepository) SaveAuditRule(ctx context.Context, facilityID string, rule *domain.AuditRuleConfig) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	bands, _ := json.Marshal(rule.Bands)

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO audit_rules (
			id, facility_id, name, description, version, expression, bands, weight, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, facility_id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			bands = excluded.bands,
			weight = excluded.weight,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, facilityID, rule.Name, rule.Description,
		rule.Version, rule.Expression, string(bands), rule.Weight, enabled,
		now, now,
	)
	return err
}

// GetAuditRule retrieves the latest enabled version of a rule.
func (r *SQLRepository) GetAuditRule(ctx context.Context, facilityID string, ruleID string) (*domain.AuditRuleConfig, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, name, description, version, expression, bands, weight, enabled
		FROM audit_rules
		WHERE facility_id = ? AND id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var cfg domain.AuditRuleConfig
	var bands string
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), facilityID, ruleID).Scan(
		&cfg.ID, &cfg.FacilityID, &cfg.Name, &cfg.Description,
		&cfg.Version, &cfg.Expression, &bands, &cfg.Weight, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Enabled = enabled == 1
	json.Unmarshal([]byte(bands), &cfg.Bands)

	return &cfg, nil
}

// ListAuditRules retrieves all enabled rules for a facility.
func (r *SQLRepository) ListAuditRules(ctx context.Context, facilityID string) ([]*domain.AuditRuleConfig, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, name, description, version, expression, bands, weight, enabled
		FROM audit_rules
		WHERE facility_id = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.AuditRuleConfig
	for rows.Next() {
		var cfg domain.AuditRuleConfig
		var bands string
		var enabled int

		if err := rows.Scan(
			&cfg.ID, &cfg.FacilityID, &cfg.Name, &cfg.Description,
			&cfg.Version, &cfg.Expression, &bands, &cfg.Weight, &enabled,
		); err != nil {
			return nil, err
		}

		cfg.Enabled = enabled == 1
		json.Unmarshal([]byte(bands), &cfg.Bands)
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}

// DeleteAuditRule soft-deletes a rule by setting enabled = 0.
func (r *SQLRepository) DeleteAuditRule(ctx context.Context, facilityID string, ruleID string) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		UPDATE audit_rules
		SET enabled = 0, updated_at = ?
		WHERE facility_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), facilityID, ruleID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SaveReport stores an analysis report with facility isolation.
func (r *SQLRepository) SaveReport(ctx context.Context, facilityID string, report *domain.AnalysisReport) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	anomalies, _ := json.Marshal(report.Anomalies)
	ruleResults, _ := json.Marshal(report.RuleResults)
	metadata, _ := json.Marshal(report.Metadata)

	query := `
		INSERT INTO analysis_reports (
			id, facility_id, bill_ref, status, score, timestamp,
			anomalies, rule_results, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		report.ID, facilityID, report.BillRef, report.Status, report.Score, report.Timestamp,
		string(anomalies), string(ruleResults), string(metadata),
	)
	return err
}

// GetReport retrieves an analysis report by ID with facility isolation.
func (r *SQLRepository) GetReport(ctx context.Context, facilityID string, reportID string) (*domain.AnalysisReport, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, bill_ref, status, score, timestamp,
			   anomalies, rule_results, metadata
		FROM analysis_reports
		WHERE facility_id = ? AND id = ?
	`

	var report domain.AnalysisReport
	var anomalies, ruleResults, metadata string

	err := r.db.QueryRowContext(ctx, r.rebind(query), facilityID, reportID).Scan(
		&report.ID, &report.FacilityID, &report.BillRef, &report.Status, &report.Score, &report.Timestamp,
		&anomalies, &ruleResults, &metadata,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if anomalies != "" && anomalies != "null" {
		json.Unmarshal([]byte(anomalies), &report.Anomalies)
	}
	json.Unmarshal([]byte(ruleResults), &report.RuleResults)
	json.Unmarshal([]byte(metadata), &report.Metadata)

	return &report, nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
