// Package profile keeps the signed-in user's local profile in a small
// sqlite database: the email used to sign in and the storage key of the
// uploaded avatar. The data survives restarts so the profile screen can be
// shown before the first server round trip.
package profile

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/dmitrijs2005/modtoolkit/internal/client/profile/migrations"
	"github.com/dmitrijs2005/modtoolkit/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Profile is the locally cached account data.
type Profile struct {
	Email       string
	DisplayName string
	Bio         string
	AvatarKey   string
}

type Store struct {
	db dbx.DBTX
}

func NewStore(db dbx.DBTX) *Store {
	return &Store{db: db}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the profile database at dsn and applies
// migrations. The caller owns closing the returned *sql.DB.
func Open(ctx context.Context, dsn string) (*Store, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening profile db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating profile db: %w", err)
	}

	return NewStore(db), db, nil
}

// Get returns the stored profile, or (nil, nil) when nothing has been
// saved yet.
func (s *Store) Get(ctx context.Context) (*Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT email, display_name, bio, avatar_key FROM profile WHERE id = 1`).
		Scan(&p.Email, &p.DisplayName, &p.Bio, &p.AvatarKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return &p, nil
}

func (s *Store) SetEmail(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, email) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, updated_at = CURRENT_TIMESTAMP
	`, email)
	if err != nil {
		return fmt.Errorf("failed to save profile email: %w", err)
	}
	return nil
}

// SetDetails saves the user-editable display name and bio.
func (s *Store) SetDetails(ctx context.Context, displayName, bio string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, display_name, bio) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, bio = excluded.bio, updated_at = CURRENT_TIMESTAMP
	`, displayName, bio)
	if err != nil {
		return fmt.Errorf("failed to save profile details: %w", err)
	}
	return nil
}

func (s *Store) SetAvatarKey(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, avatar_key) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET avatar_key = excluded.avatar_key, updated_at = CURRENT_TIMESTAMP
	`, key)
	if err != nil {
		return fmt.Errorf("failed to save avatar key: %w", err)
	}
	return nil
}

// Clear wipes the stored profile. Called on logout.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM profile`)
	if err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}
