package domain

import (
	"context"
	"time"
)

// Repository is the persistence layer.
// The item catalog is shared across facilities; bills, audit rules,
// and reports are facility-scoped for strict isolation.
type Repository interface {
	// Item catalog operations
	ListItems(ctx context.Context) ([]*MedicalItem, error)
	ListItemsByType(ctx context.Context, isOutpatient bool) ([]*MedicalItem, error)
	ListItemsByCategory(ctx context.Context, category string, isOutpatient bool) ([]*MedicalItem, error)
	SearchItems(ctx context.Context, query string, isOutpatient bool) ([]*MedicalItem, error)
	CreateItem(ctx context.Context, item *MedicalItem) (*MedicalItem, error)
	UpdateItem(ctx context.Context, id int64, item *MedicalItem) (*MedicalItem, error)
	DeleteItem(ctx context.Context, id int64) error
	CountItems(ctx context.Context) (int64, error)

	// Bill operations
	SaveBill(ctx context.Context, facilityID string, bill *StoredBill) (*StoredBill, error)
	GetBillBySession(ctx context.Context, facilityID string, sessionID string, billType AdmissionType) (*StoredBill, error)
	ListBillsSince(ctx context.Context, facilityID string, since time.Time) ([]*StoredBill, error)

	// Audit rule configuration operations
	SaveAuditRule(ctx context.Context, facilityID string, rule *AuditRuleConfig) error
	GetAuditRule(ctx context.Context, facilityID string, ruleID string) (*AuditRuleConfig, error)
	ListAuditRules(ctx context.Context, facilityID string) ([]*AuditRuleConfig, error)
	DeleteAuditRule(ctx context.Context, facilityID string, ruleID string) error

	// Analysis reports
	SaveReport(ctx context.Context, facilityID string, report *AnalysisReport) error
	GetReport(ctx context.Context, facilityID string, reportID string) (*AnalysisReport, error)

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryConfig selects and tunes the database backend.
type RepositoryConfig struct {
	// Driver is "sqlite" (community) or "postgres" (pro).
	Driver string

	// SQLite
	SQLitePath string

	// PostgreSQL
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool overrides; zero values use the driver defaults.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// SeedCatalog loads the default price list when the item catalog
	// is empty.
	SeedCatalog bool
}
