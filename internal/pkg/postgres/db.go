package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchforge/pitchforge/internal/pkg/persistence"
)

// DB provides operations with postgresql
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates DB instance
func NewDB(pool *pgxpool.Pool) (*DB, error) {
	res := &DB{pool: pool}
	return res, nil
}

// InsertPitch inserts pitch record into DB
func (db *DB) InsertPitch(ctx context.Context, rec *persistence.PitchRecord) error {
	rows, err := db.pool.Query(ctx, `INSERT INTO pitches(id, user_id, title, one_liner, structure, transcript, status, created)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8)`, rec.ID, rec.UserID, rec.Title, rec.OneLiner,
		rec.Structure,
		rec.Transcript,
		rec.Status,
		rec.Created,
	)
	if err != nil {
		return fmt.Errorf("can't insert pitch: %w", err)
	}
	defer rows.Close()
	return nil
}

// ListPitches loads all user's pitches ordered by creation time desc
func (db *DB) ListPitches(ctx context.Context, userID string) ([]*persistence.PitchRecord, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, user_id, title, one_liner, structure, transcript, status, created
		FROM pitches WHERE user_id = $1 ORDER BY created DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("can't load pitches: %w", err)
	}
	defer rows.Close()
	var res []*persistence.PitchRecord
	for rows.Next() {
		var rec persistence.PitchRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.OneLiner, &rec.Structure,
			&rec.Transcript, &rec.Status, &rec.Created); err != nil {
			return nil, fmt.Errorf("can't scan pitch: %w", err)
		}
		res = append(res, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't load pitches: %w", err)
	}
	return res, nil
}

// LoadPitch loads one record, owner must match. Returns nil, nil if no row
func (db *DB) LoadPitch(ctx context.Context, id, userID string) (*persistence.PitchRecord, error) {
	var res persistence.PitchRecord
	err := db.pool.QueryRow(ctx, `SELECT id, user_id, title, one_liner, structure, transcript, status, created
		FROM pitches WHERE id = $1 AND user_id = $2`, id, userID).Scan(&res.ID, &res.UserID,
		&res.Title, &res.OneLiner, &res.Structure, &res.Transcript, &res.Status, &res.Created)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load pitch: %w", err)
	}
	return &res, nil
}

// DeletePitch removes one record, both id and owner must match
func (db *DB) DeletePitch(ctx context.Context, id, userID string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM pitches WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("can't delete pitch: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("can't delete pitch, no record found")
	}
	return nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'pitches')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}
