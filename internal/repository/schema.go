package repository

// Schema definitions for the Heron database.
// Compatible with both SQLite and PostgreSQL, except for the
// auto-increment primary keys which differ per driver.

func schemaMedicalItems(idColumn string) string {
	return `
CREATE TABLE IF NOT EXISTS medical_items (
    id ` + idColumn + `,
    category TEXT NOT NULL,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    currency TEXT NOT NULL DEFAULT 'BDT',
    description TEXT,
    is_outpatient INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_medical_items_type ON medical_items(is_outpatient);
CREATE INDEX IF NOT EXISTS idx_medical_items_category ON medical_items(is_outpatient, category);
`
}

func schemaBills(idColumn string) string {
	return `
CREATE TABLE IF NOT EXISTS bills (
    id ` + idColumn + `,
    facility_id TEXT NOT NULL,
    type TEXT NOT NULL,
    session_id TEXT NOT NULL,
    bill_data TEXT NOT NULL,
    days_admitted INTEGER NOT NULL DEFAULT 0,
    total REAL NOT NULL,
    currency TEXT NOT NULL DEFAULT 'BDT',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (facility_id, session_id, type)
);

CREATE INDEX IF NOT EXISTS idx_bills_facility ON bills(facility_id);
CREATE INDEX IF NOT EXISTS idx_bills_session ON bills(facility_id, session_id, type);
CREATE INDEX IF NOT EXISTS idx_bills_updated ON bills(facility_id, updated_at);
`
}

const schemaAuditRules = `
CREATE TABLE IF NOT EXISTS audit_rules (
    id TEXT NOT NULL,
    facility_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    bands TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, facility_id, version)
);

CREATE INDEX IF NOT EXISTS idx_audit_rules_facility ON audit_rules(facility_id);
CREATE INDEX IF NOT EXISTS idx_audit_rules_enabled ON audit_rules(facility_id, enabled);
`

const schemaAnalysisReports = `
CREATE TABLE IF NOT EXISTS analysis_reports (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    bill_ref TEXT NOT NULL,
    status TEXT NOT NULL,
    score REAL NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    anomalies TEXT,
    rule_results TEXT,
    metadata TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_facility ON analysis_reports(facility_id);
CREATE INDEX IF NOT EXISTS idx_reports_bill ON analysis_reports(facility_id, bill_ref);
CREATE INDEX IF NOT EXISTS idx_reports_status ON analysis_reports(facility_id, status);
`

// AllSchemas returns the schema statements for a driver in order.
func AllSchemas(driver string) []string {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	return []string{
		schemaMedicalItems(idColumn),
		schemaBills(idColumn),
		schemaAuditRules,
		schemaAnalysisReports,
	}
}
