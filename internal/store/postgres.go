package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name        TEXT NOT NULL,
	website_url TEXT NOT NULL UNIQUE,
	city        TEXT,
	state       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	enriched_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS contacts (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	org_id           TEXT NOT NULL REFERENCES organizations(id),
	name             TEXT,
	role_title       TEXT,
	email            TEXT,
	email_status     TEXT,
	email_score      INTEGER NOT NULL DEFAULT 0,
	email_provider   TEXT,
	email_checked_at TIMESTAMPTZ,
	discovery_method TEXT,
	last_enriched_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS email_attempts (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	contact_id   TEXT NOT NULL,
	email        TEXT NOT NULL,
	origin       TEXT NOT NULL,
	rank         INTEGER NOT NULL,
	status       TEXT NOT NULL,
	score        INTEGER NOT NULL DEFAULT 0,
	risk_score   INTEGER NOT NULL DEFAULT 0,
	attempted_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS quarantine (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	contact_id       TEXT NOT NULL UNIQUE,
	org_id           TEXT NOT NULL,
	contact_name     TEXT,
	role_title       TEXT,
	company_name     TEXT,
	website_url      TEXT,
	attempted_count  INTEGER NOT NULL,
	attempted_emails JSONB NOT NULL,
	attempts         JSONB NOT NULL,
	reason           TEXT NOT NULL,
	moved_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_org_id ON contacts(org_id);
CREATE INDEX IF NOT EXISTS idx_contacts_email_status ON contacts(email_status);
CREATE INDEX IF NOT EXISTS idx_attempts_contact_id ON email_attempts(contact_id);
CREATE INDEX IF NOT EXISTS idx_quarantine_org_id ON quarantine(org_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateOrg(ctx context.Context, org model.Organization) (*model.Organization, error) {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	org.CreatedAt = time.Now().UTC()

	normalized, err := model.NormalizeWebsiteURL(org.WebsiteURL)
	if err != nil {
		return nil, err
	}
	org.WebsiteURL = normalized

	_, err = s.pool.Exec(ctx,
		`INSERT INTO organizations (id, name, website_url, city, state, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		org.ID, org.Name, org.WebsiteURL, org.City, org.State, org.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert organization")
	}
	return &org, nil
}

const pgSelectOrg = `SELECT id, name, website_url, city, state, created_at, enriched_at FROM organizations`

func (s *PostgresStore) GetOrg(ctx context.Context, id string) (*model.Organization, error) {
	return scanPgOrg(s.pool.QueryRow(ctx, pgSelectOrg+` WHERE id = $1`, id))
}

func (s *PostgresStore) GetOrgByDomain(ctx context.Context, domain string) (*model.Organization, error) {
	return scanPgOrg(s.pool.QueryRow(ctx,
		pgSelectOrg+` WHERE website_url = $1 OR website_url = $2`,
		"https://"+domain, "https://www."+domain,
	))
}

func (s *PostgresStore) MarkOrgEnriched(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE organizations SET enriched_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark org enriched %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "organization %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	contact.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (id, org_id, name, role_title, email, email_status, email_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		contact.ID, contact.OrgID, contact.Name, contact.RoleTitle,
		contact.Email, string(contact.EmailStatus), contact.EmailScore, contact.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert contact")
	}
	return &contact, nil
}

const pgSelectContact = `SELECT id, org_id, name, role_title, email, email_status, email_score,
	email_provider, email_checked_at, discovery_method, last_enriched_at, created_at FROM contacts`

func (s *PostgresStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	return scanPgContact(s.pool.QueryRow(ctx, pgSelectContact+` WHERE id = $1`, id))
}

func (s *PostgresStore) ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error) {
	query := pgSelectContact + ` WHERE true`
	args := []any{}
	argIdx := 1

	if filter.OrgID != "" {
		query += fmt.Sprintf(` AND org_id = $%d`, argIdx)
		args = append(args, filter.OrgID)
		argIdx++
	}
	if filter.PendingOnly {
		query += fmt.Sprintf(` AND (email_status IS NULL OR email_status != $%d)`, argIdx)
		args = append(args, string(model.StatusValid))
		argIdx++
	}
	query += ` ORDER BY created_at`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanPgContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: list contacts iterate")
}

func (s *PostgresStore) UpsertEmail(ctx context.Context, contactID, email string, status model.VerifyStatus, score int, method model.DiscoveryMethod) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET email = $1, email_status = $2, email_score = $3, email_provider = $4,
		 email_checked_at = $5, discovery_method = $6, last_enriched_at = $7 WHERE id = $8`,
		email, string(status), score, "zerobounce", now, string(method), now, contactID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert email for contact %s", contactID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "contact %s", contactID)
	}
	return nil
}

func (s *PostgresStore) RecordAttempts(ctx context.Context, contactID string, attempts []model.EmailAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin attempts tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, a := range attempts {
		_, err := tx.Exec(ctx,
			`INSERT INTO email_attempts (id, contact_id, email, origin, rank, status, score, risk_score, attempted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New().String(), contactID, a.Email, string(a.Origin), a.Rank,
			string(a.Status), a.Score, a.RiskScore, a.Timestamp,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert attempt")
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit attempts")
}

// MoveToQuarantine inserts the quarantine record and deletes the active
// contact in one transaction.
func (s *PostgresStore) MoveToQuarantine(ctx context.Context, record model.QuarantineRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.MovedAt.IsZero() {
		record.MovedAt = time.Now().UTC()
	}

	emailsJSON, err := json.Marshal(record.AttemptedEmails)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal attempted emails")
	}
	attemptsJSON, err := json.Marshal(record.Attempts)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal attempts")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin quarantine tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO quarantine (id, contact_id, org_id, contact_name, role_title, company_name,
		 website_url, attempted_count, attempted_emails, attempts, reason, moved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.ID, record.ContactID, record.OrgID, record.ContactName, record.RoleTitle,
		record.CompanyName, record.WebsiteURL, record.AttemptedCount,
		emailsJSON, attemptsJSON, record.Reason, record.MovedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert quarantine record")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, record.ContactID)
	if err != nil {
		return eris.Wrap(err, "postgres: remove quarantined contact")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "contact %s", record.ContactID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit quarantine")
}

func (s *PostgresStore) ListQuarantined(ctx context.Context, limit, offset int) ([]model.QuarantineRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, contact_id, org_id, contact_name, role_title, company_name, website_url,
		 attempted_count, attempted_emails, attempts, reason, moved_at
		 FROM quarantine ORDER BY moved_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list quarantine")
	}
	defer rows.Close()

	var records []model.QuarantineRecord
	for rows.Next() {
		var rec model.QuarantineRecord
		var emailsJSON, attemptsJSON []byte
		err := rows.Scan(&rec.ID, &rec.ContactID, &rec.OrgID, &rec.ContactName, &rec.RoleTitle,
			&rec.CompanyName, &rec.WebsiteURL, &rec.AttemptedCount, &emailsJSON, &attemptsJSON,
			&rec.Reason, &rec.MovedAt)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan quarantine record")
		}
		if err := json.Unmarshal(emailsJSON, &rec.AttemptedEmails); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal attempted emails")
		}
		if err := json.Unmarshal(attemptsJSON, &rec.Attempts); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal attempts")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list quarantine iterate")
}

// pg scan helpers

func scanPgOrg(row pgx.Row) (*model.Organization, error) {
	var o model.Organization
	var city, state *string
	var enrichedAt *time.Time

	err := row.Scan(&o.ID, &o.Name, &o.WebsiteURL, &city, &state, &o.CreatedAt, &enrichedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan organization")
	}
	if city != nil {
		o.City = *city
	}
	if state != nil {
		o.State = *state
	}
	o.EnrichedAt = enrichedAt
	return &o, nil
}

func scanPgContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	var name, roleTitle, email, status, provider, method *string

	err := row.Scan(&c.ID, &c.OrgID, &name, &roleTitle, &email, &status, &c.EmailScore,
		&provider, &c.EmailCheckedAt, &method, &c.LastEnrichedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan contact")
	}
	if name != nil {
		c.Name = *name
	}
	if roleTitle != nil {
		c.RoleTitle = *roleTitle
	}
	if email != nil {
		c.Email = *email
	}
	if status != nil {
		c.EmailStatus = model.VerifyStatus(*status)
	}
	if provider != nil {
		c.EmailProvider = *provider
	}
	if method != nil {
		c.DiscoveryMethod = model.DiscoveryMethod(*method)
	}
	return &c, nil
}
