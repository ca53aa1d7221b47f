package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/attendance/internal/config"
	"github.com/your-org/attendance/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS identities (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	avatar_key TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
	id UUID PRIMARY KEY,
	identity_id UUID NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS attendance_records (
	id UUID PRIMARY KEY,
	identity_id UUID NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	check_in_at TIMESTAMPTZ,
	check_in_lat DOUBLE PRECISION,
	check_in_lng DOUBLE PRECISION,
	check_in_address TEXT NOT NULL DEFAULT '',
	check_in_photo_key TEXT NOT NULL DEFAULT '',
	check_out_at TIMESTAMPTZ,
	check_out_lat DOUBLE PRECISION,
	check_out_lng DOUBLE PRECISION,
	check_out_address TEXT NOT NULL DEFAULT '',
	check_out_photo_key TEXT NOT NULL DEFAULT '',
	working_hours DOUBLE PRECISION,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (identity_id, date)
);

CREATE INDEX IF NOT EXISTS idx_attendance_identity_date
	ON attendance_records (identity_id, date);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the schema. Idempotent; run at startup.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// --- Identities ---

func (s *PostgresStore) CreateIdentity(ctx context.Context, id *models.Identity) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO identities (id, email, name, department, position, avatar_key, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		id.ID, id.Email, id.Name, id.Department, id.Position, id.AvatarKey, id.PasswordHash,
	).Scan(&id.CreatedAt, &id.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetIdentity(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return s.getIdentity(ctx,
		`SELECT id, email, name, department, position, avatar_key, password_hash, created_at, updated_at
		 FROM identities WHERE id = $1`, id)
}

func (s *PostgresStore) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return s.getIdentity(ctx,
		`SELECT id, email, name, department, position, avatar_key, password_hash, created_at, updated_at
		 FROM identities WHERE email = $1`, email)
}

func (s *PostgresStore) getIdentity(ctx context.Context, query string, arg interface{}) (*models.Identity, error) {
	ident := &models.Identity{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&ident.ID, &ident.Email, &ident.Name, &ident.Department, &ident.Position,
		&ident.AvatarKey, &ident.PasswordHash, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return ident, nil
}

func (s *PostgresStore) UpdateIdentity(ctx context.Context, id *models.Identity) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE identities
		 SET name = $2, department = $3, position = $4, avatar_key = $5, updated_at = now()
		 WHERE id = $1 RETURNING updated_at`,
		id.ID, id.Name, id.Department, id.Position, id.AvatarKey,
	).Scan(&id.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	return nil
}

// --- Sessions ---

func (s *PostgresStore) CreateSession(ctx context.Context, sess *models.Session) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, identity_id, expires_at) VALUES ($1, $2, $3) RETURNING created_at`,
		sess.ID, sess.IdentityID, sess.ExpiresAt,
	).Scan(&sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sess := &models.Session{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, identity_id, created_at, expires_at, revoked_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.IdentityID, &sess.CreatedAt, &sess.ExpiresAt, &sess.RevokedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) RevokeSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// --- Attendance records ---

const recordColumns = `id, identity_id, date,
	check_in_at, check_in_lat, check_in_lng, check_in_address, check_in_photo_key,
	check_out_at, check_out_lat, check_out_lng, check_out_address, check_out_photo_key,
	working_hours, status, created_at, updated_at`

func (s *PostgresStore) InsertRecord(ctx context.Context, rec *models.AttendanceRecord) error {
	in := eventColumns(rec.CheckIn)
	out := eventColumns(rec.CheckOut)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO attendance_records (id, identity_id, date,
			check_in_at, check_in_lat, check_in_lng, check_in_address, check_in_photo_key,
			check_out_at, check_out_lat, check_out_lng, check_out_address, check_out_photo_key,
			working_hours, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING created_at, updated_at`,
		rec.ID, rec.IdentityID, rec.Date,
		in.at, in.lat, in.lng, in.address, in.photoKey,
		out.at, out.lat, out.lng, out.address, out.photoKey,
		rec.WorkingHours, rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, rec *models.AttendanceRecord) error {
	in := eventColumns(rec.CheckIn)
	out := eventColumns(rec.CheckOut)
	err := s.pool.QueryRow(ctx,
		`UPDATE attendance_records SET
			check_in_at = $2, check_in_lat = $3, check_in_lng = $4,
			check_in_address = $5, check_in_photo_key = $6,
			check_out_at = $7, check_out_lat = $8, check_out_lng = $9,
			check_out_address = $10, check_out_photo_key = $11,
			working_hours = $12, status = $13, updated_at = now()
		 WHERE id = $1 RETURNING updated_at`,
		rec.ID,
		in.at, in.lat, in.lng, in.address, in.photoKey,
		out.at, out.lat, out.lng, out.address, out.photoKey,
		rec.WorkingHours, rec.Status,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordForDate(ctx context.Context, identityID uuid.UUID, date time.Time) (*models.AttendanceRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE identity_id = $1 AND date = $2`,
		identityID, date)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance record by date: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) RecordByID(ctx context.Context, id uuid.UUID) (*models.AttendanceRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	return rec, nil
}

// RecordsInRange returns the identity's records with from <= date <= to,
// oldest first.
func (s *PostgresStore) RecordsInRange(ctx context.Context, identityID uuid.UUID, from, to time.Time) ([]models.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM attendance_records
		 WHERE identity_id = $1 AND date >= $2 AND date <= $3 ORDER BY date`,
		identityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// eventCols holds the nullable column values of one embedded event.
type eventCols struct {
	at       *time.Time
	lat      *float64
	lng      *float64
	address  string
	photoKey string
}

func eventColumns(e *models.AttendanceEvent) eventCols {
	if e == nil {
		return eventCols{}
	}
	at := e.At
	return eventCols{
		at:       &at,
		lat:      e.Latitude,
		lng:      e.Longitude,
		address:  e.Address,
		photoKey: e.PhotoKey,
	}
}

func (c eventCols) event() *models.AttendanceEvent {
	if c.at == nil {
		return nil
	}
	return &models.AttendanceEvent{
		At:        *c.at,
		Latitude:  c.lat,
		Longitude: c.lng,
		Address:   c.address,
		PhotoKey:  c.photoKey,
	}
}

func scanRecord(row pgx.Row) (*models.AttendanceRecord, error) {
	rec := &models.AttendanceRecord{}
	var in, out eventCols
	err := row.Scan(
		&rec.ID, &rec.IdentityID, &rec.Date,
		&in.at, &in.lat, &in.lng, &in.address, &in.photoKey,
		&out.at, &out.lat, &out.lng, &out.address, &out.photoKey,
		&rec.WorkingHours, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.CheckIn = in.event()
	rec.CheckOut = out.event()
	return rec, nil
}
