package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	website_url TEXT NOT NULL UNIQUE,
	city        TEXT,
	state       TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	enriched_at DATETIME
);

CREATE TABLE IF NOT EXISTS contacts (
	id               TEXT PRIMARY KEY,
	org_id           TEXT NOT NULL REFERENCES organizations(id),
	name             TEXT,
	role_title       TEXT,
	email            TEXT,
	email_status     TEXT,
	email_score      INTEGER NOT NULL DEFAULT 0,
	email_provider   TEXT,
	email_checked_at DATETIME,
	discovery_method TEXT,
	last_enriched_at DATETIME,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS email_attempts (
	id           TEXT PRIMARY KEY,
	contact_id   TEXT NOT NULL,
	email        TEXT NOT NULL,
	origin       TEXT NOT NULL,
	rank         INTEGER NOT NULL,
	status       TEXT NOT NULL,
	score        INTEGER NOT NULL DEFAULT 0,
	risk_score   INTEGER NOT NULL DEFAULT 0,
	attempted_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS quarantine (
	id               TEXT PRIMARY KEY,
	contact_id       TEXT NOT NULL UNIQUE,
	org_id           TEXT NOT NULL,
	contact_name     TEXT,
	role_title       TEXT,
	company_name     TEXT,
	website_url      TEXT,
	attempted_count  INTEGER NOT NULL,
	attempted_emails TEXT NOT NULL,
	attempts         TEXT NOT NULL,
	reason           TEXT NOT NULL,
	moved_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_org_id ON contacts(org_id);
CREATE INDEX IF NOT EXISTS idx_contacts_email_status ON contacts(email_status);
CREATE INDEX IF NOT EXISTS idx_attempts_contact_id ON email_attempts(contact_id);
CREATE INDEX IF NOT EXISTS idx_quarantine_org_id ON quarantine(org_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateOrg(ctx context.Context, org model.Organization) (*model.Organization, error) {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	org.CreatedAt = time.Now().UTC()

	normalized, err := model.NormalizeWebsiteURL(org.WebsiteURL)
	if err != nil {
		return nil, err
	}
	org.WebsiteURL = normalized

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, website_url, city, state, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		org.ID, org.Name, org.WebsiteURL, org.City, org.State, org.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert organization")
	}
	return &org, nil
}

func (s *SQLiteStore) GetOrg(ctx context.Context, id string) (*model.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, website_url, city, state, created_at, enriched_at FROM organizations WHERE id = ?`,
		id,
	)
	return scanOrg(row)
}

func (s *SQLiteStore) GetOrgByDomain(ctx context.Context, domain string) (*model.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, website_url, city, state, created_at, enriched_at FROM organizations
		 WHERE website_url = ? OR website_url = ?`,
		"https://"+domain, "https://www."+domain,
	)
	return scanOrg(row)
}

func (s *SQLiteStore) MarkOrgEnriched(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations SET enriched_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark org enriched %s", id)
	}
	return checkRowsAffected(res, "organization", id)
}

func (s *SQLiteStore) CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	contact.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, org_id, name, role_title, email, email_status, email_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.ID, contact.OrgID, contact.Name, contact.RoleTitle,
		contact.Email, string(contact.EmailStatus), contact.EmailScore, contact.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert contact")
	}
	return &contact, nil
}

func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx, selectContact+` WHERE id = ?`, id)
	return scanContact(row)
}

const selectContact = `SELECT id, org_id, name, role_title, email, email_status, email_score,
	email_provider, email_checked_at, discovery_method, last_enriched_at, created_at FROM contacts`

func (s *SQLiteStore) ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error) {
	query := selectContact + ` WHERE 1=1`
	var args []any

	if filter.OrgID != "" {
		query += ` AND org_id = ?`
		args = append(args, filter.OrgID)
	}
	if filter.PendingOnly {
		query += ` AND (email_status IS NULL OR email_status != ?)`
		args = append(args, string(model.StatusValid))
	}
	query += ` ORDER BY created_at`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list contacts iterate")
}

func (s *SQLiteStore) UpsertEmail(ctx context.Context, contactID, email string, status model.VerifyStatus, score int, method model.DiscoveryMethod) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET email = ?, email_status = ?, email_score = ?, email_provider = ?,
		 email_checked_at = ?, discovery_method = ?, last_enriched_at = ? WHERE id = ?`,
		email, string(status), score, "zerobounce", now, string(method), now, contactID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert email for contact %s", contactID)
	}
	return checkRowsAffected(res, "contact", contactID)
}

func (s *SQLiteStore) RecordAttempts(ctx context.Context, contactID string, attempts []model.EmailAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin attempts tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range attempts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO email_attempts (id, contact_id, email, origin, rank, status, score, risk_score, attempted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), contactID, a.Email, string(a.Origin), a.Rank,
			string(a.Status), a.Score, a.RiskScore, a.Timestamp,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert attempt")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit attempts")
}

// MoveToQuarantine inserts the quarantine record and deletes the active
// contact in one transaction. If the contact is already gone the whole
// operation rolls back.
func (s *SQLiteStore) MoveToQuarantine(ctx context.Context, record model.QuarantineRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.MovedAt.IsZero() {
		record.MovedAt = time.Now().UTC()
	}

	emailsJSON, err := json.Marshal(record.AttemptedEmails)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal attempted emails")
	}
	attemptsJSON, err := json.Marshal(record.Attempts)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal attempts")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin quarantine tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quarantine (id, contact_id, org_id, contact_name, role_title, company_name,
		 website_url, attempted_count, attempted_emails, attempts, reason, moved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ContactID, record.OrgID, record.ContactName, record.RoleTitle,
		record.CompanyName, record.WebsiteURL, record.AttemptedCount,
		string(emailsJSON), string(attemptsJSON), record.Reason, record.MovedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert quarantine record")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, record.ContactID)
	if err != nil {
		return eris.Wrap(err, "sqlite: remove quarantined contact")
	}
	if err := checkRowsAffected(res, "contact", record.ContactID); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit quarantine")
}

func (s *SQLiteStore) ListQuarantined(ctx context.Context, limit, offset int) ([]model.QuarantineRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, contact_id, org_id, contact_name, role_title, company_name, website_url,
		 attempted_count, attempted_emails, attempts, reason, moved_at
		 FROM quarantine ORDER BY moved_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list quarantine")
	}
	defer rows.Close()

	var records []model.QuarantineRecord
	for rows.Next() {
		var rec model.QuarantineRecord
		var emailsJSON, attemptsJSON string
		err := rows.Scan(&rec.ID, &rec.ContactID, &rec.OrgID, &rec.ContactName, &rec.RoleTitle,
			&rec.CompanyName, &rec.WebsiteURL, &rec.AttemptedCount, &emailsJSON, &attemptsJSON,
			&rec.Reason, &rec.MovedAt)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan quarantine record")
		}
		if err := json.Unmarshal([]byte(emailsJSON), &rec.AttemptedEmails); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal attempted emails")
		}
		if err := json.Unmarshal([]byte(attemptsJSON), &rec.Attempts); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal attempts")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list quarantine iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrg(row scannable) (*model.Organization, error) {
	var o model.Organization
	var city, state sql.NullString
	var enrichedAt sql.NullTime

	err := row.Scan(&o.ID, &o.Name, &o.WebsiteURL, &city, &state, &o.CreatedAt, &enrichedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan organization")
	}
	o.City = city.String
	o.State = state.String
	if enrichedAt.Valid {
		t := enrichedAt.Time
		o.EnrichedAt = &t
	}
	return &o, nil
}

func scanContact(row scannable) (*model.Contact, error) {
	var c model.Contact
	var name, roleTitle, email, status, provider, method sql.NullString
	var checkedAt, enrichedAt sql.NullTime

	err := row.Scan(&c.ID, &c.OrgID, &name, &roleTitle, &email, &status, &c.EmailScore,
		&provider, &checkedAt, &method, &enrichedAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan contact")
	}
	c.Name = name.String
	c.RoleTitle = roleTitle.String
	c.Email = email.String
	c.EmailStatus = model.VerifyStatus(status.String)
	c.EmailProvider = provider.String
	c.DiscoveryMethod = model.DiscoveryMethod(method.String)
	if checkedAt.Valid {
		t := checkedAt.Time
		c.EmailCheckedAt = &t
	}
	if enrichedAt.Valid {
		t := enrichedAt.Time
		c.LastEnrichedAt = &t
	}
	return &c, nil
}
