package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillbridge/internal/domain"
	"skillbridge/internal/repository"
)

const createProfilesTable = `
CREATE TABLE IF NOT EXISTS profiles (
	key TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type ProfileRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db, now: time.Now}
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)

func (r *ProfileRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProfilesTable); err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}
	return r.ensureProfileColumns(ctx)
}

// ensureProfileColumns adds columns introduced after the first release.
// Rows that predate schema_version read back as version 0.
func (r *ProfileRepository) ensureProfileColumns(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `PRAGMA table_info(profiles)`)
	if err != nil {
		return fmt.Errorf("describe profiles table: %w", err)
	}
	defer rows.Close()

	columns := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan pragma table info: %w", err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate pragma table info: %w", err)
	}
	rows.Close()

	if _, exists := columns["schema_version"]; exists {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `ALTER TABLE profiles ADD COLUMN schema_version INTEGER NOT NULL DEFAULT 0`); err != nil {
		return fmt.Errorf("add column schema_version: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Get(ctx context.Context, key string) (*domain.StoredProfile, error) {
	row := r.db.QueryRowContext(ctx, selectProfile, key)
	return scanProfile(row)
}

func (r *ProfileRepository) Save(ctx context.Context, key string, profile domain.UserProfile) error {
	return r.upsert(ctx, r.db, key, profile)
}

func (r *ProfileRepository) Update(ctx context.Context, key string, base domain.UserProfile, fn func(*domain.UserProfile) error) (*domain.UserProfile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin profile update: %w", err)
	}
	defer tx.Rollback()

	current := base
	stored, err := scanProfile(tx.QueryRowContext(ctx, selectProfile, key))
	if err != nil {
		return nil, err
	}
	if stored != nil {
		current = stored.Profile
	}

	if err := fn(&current); err != nil {
		return nil, err
	}
	if err := r.upsert(ctx, tx, key, current); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile update: %w", err)
	}
	return &current, nil
}

func (r *ProfileRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ProfileRepository) upsert(ctx context.Context, db execer, key string, profile domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	now := r.now().UTC()
	_, err = db.ExecContext(ctx, `
INSERT INTO profiles (key, schema_version, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	schema_version = excluded.schema_version,
	data = excluded.data,
	updated_at = excluded.updated_at`,
		key,
		domain.ProfileSchemaVersion,
		string(data),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

const selectProfile = `
SELECT key, schema_version, data, created_at, updated_at
FROM profiles
WHERE key = ?`

func scanProfile(row interface {
	Scan(dest ...any) error
}) (*domain.StoredProfile, error) {
	var (
		stored domain.StoredProfile
		data   string
	)
	if err := row.Scan(
		&stored.Key,
		&stored.SchemaVersion,
		&data,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if stored.SchemaVersion > domain.ProfileSchemaVersion {
		return nil, fmt.Errorf("profile %q has version %d: %w", stored.Key, stored.SchemaVersion, repository.ErrUnsupportedSchema)
	}
	// version 0 rows share the v1 document shape; the next write stamps them.
	if err := json.Unmarshal([]byte(data), &stored.Profile); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w: %v", stored.Key, repository.ErrCorruptProfile, err)
	}
	return &stored, nil
}
