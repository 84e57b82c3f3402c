package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/unklstewy/arrivals-board/pkg/airports"
)

// AirportRepository reads and writes the airport reference table.
// It satisfies airports.Source so the board can load names from PostgreSQL.
type AirportRepository struct {
	db *DB
}

// NewAirportRepository creates a new airport repository.
func NewAirportRepository(db *DB) *AirportRepository {
	return &AirportRepository{db: db}
}

// Load returns every airport ordered by code.
func (r *AirportRepository) Load(ctx context.Context) ([]airports.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT icao, korean_name, english_name FROM airports ORDER BY icao`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	var records []airports.Record
	for rows.Next() {
		var rec airports.Record
		if err := rows.Scan(&rec.ICAO, &rec.KoreanName, &rec.EnglishName); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read airports: %w", err)
	}

	return records, nil
}

// Upsert inserts or updates records in one transaction and returns how
// many were written.
func (r *AirportRepository) Upsert(ctx context.Context, records []airports.Record) (int, error) {
	records = normalizeRecords(records)
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO airports (icao, korean_name, english_name, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (icao) DO UPDATE SET
			korean_name = EXCLUDED.korean_name,
			english_name = EXCLUDED.english_name,
			updated_at = NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ICAO, rec.KoreanName, rec.EnglishName); err != nil {
			return 0, fmt.Errorf("failed to upsert %s: %w", rec.ICAO, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit airports: %w", err)
	}
	return len(records), nil
}

// normalizeRecords uppercases codes, drops blank ones and keeps the last
// record for duplicate codes, preserving first-seen order.
func normalizeRecords(records []airports.Record) []airports.Record {
	index := make(map[string]int, len(records))
	out := make([]airports.Record, 0, len(records))
	for _, rec := range records {
		rec.ICAO = strings.ToUpper(strings.TrimSpace(rec.ICAO))
		if rec.ICAO == "" {
			continue
		}
		if i, ok := index[rec.ICAO]; ok {
			out[i] = rec
			continue
		}
		index[rec.ICAO] = len(out)
		out = append(out, rec)
	}
	return out
}
