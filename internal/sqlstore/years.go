package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-portal/components/portal"
)

// Years stores academic years. It implements portal.AcademicYearSource.
type Years struct {
	db *sql.DB
}

var _ portal.AcademicYearSource = (*Years)(nil)

// SetCurrent stores year and marks it as the only open one.
func (y *Years) SetCurrent(ctx context.Context, year portal.AcademicYear) error {
	tx, err := y.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_current = 0`); err != nil {
		return fmt.Errorf("sqlstore: reset current year: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO academic_years (id, name, is_current) VALUES (?, ?, 1)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, is_current = 1`,
		year.ID, year.Name); err != nil {
		return fmt.Errorf("sqlstore: store year %d: %w", year.ID, err)
	}
	return tx.Commit()
}

// Current implements portal.AcademicYearSource.
func (y *Years) Current(ctx context.Context) (*portal.AcademicYear, error) {
	var year portal.AcademicYear
	err := y.db.QueryRowContext(ctx,
		`SELECT id, name FROM academic_years WHERE is_current = 1 ORDER BY id DESC LIMIT 1`).Scan(&year.ID, &year.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: current year: %w", err)
	}
	return &year, nil
}
