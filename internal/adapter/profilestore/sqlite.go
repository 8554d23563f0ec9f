// Package profilestore persists emergency profiles in SQLite. A local
// file database is enough here: profiles are small, written rarely, and
// read once per call placement.
package profilestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/evac-response/internal/domain"
)

// Store implements domain.ProfileStore on SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id           TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	age               TEXT NOT NULL DEFAULT '',
	sex               TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	emergency_contact TEXT NOT NULL DEFAULT '',
	medical_info      TEXT NOT NULL DEFAULT '',
	updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Open opens (creating if needed) the profile database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open profile database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create profiles table: %w", err)
	}
	return &Store{db: db}, nil
}

// Upsert inserts or updates a profile keyed by its ID.
func (s *Store) Upsert(ctx context.Context, p domain.EmergencyProfile) error {
	const q = `
INSERT INTO profiles (user_id, name, age, sex, location, emergency_contact, medical_info, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(user_id) DO UPDATE SET
	name = excluded.name,
	age = excluded.age,
	sex = excluded.sex,
	location = excluded.location,
	emergency_contact = excluded.emergency_contact,
	medical_info = excluded.medical_info,
	updated_at = CURRENT_TIMESTAMP;`

	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Age, p.Sex, p.Location, p.EmergencyContact, p.MedicalInfo)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// Get loads a profile by ID, returning domain.ErrProfileNotFound for
// unknown IDs.
func (s *Store) Get(ctx context.Context, id string) (domain.EmergencyProfile, error) {
	const q = `
SELECT user_id, name, age, sex, location, emergency_contact, medical_info, updated_at
FROM profiles WHERE user_id = ?;`

	var p domain.EmergencyProfile
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Age, &p.Sex, &p.Location, &p.EmergencyContact, &p.MedicalInfo, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EmergencyProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.EmergencyProfile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	return p, nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
