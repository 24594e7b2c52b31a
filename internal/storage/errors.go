package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"salonbook/internal/booking"
)

// Postgres error codes the repositories translate into domain errors.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgForeignKeyAbsent   = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapWriteErr translates low-level write failures into the booking taxonomy.
// An exclusion violation on the appointments no-overlap constraint is the
// database closing a booking race; callers see it as a plain conflict.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	switch pgErrCode(err) {
	case pgExclusionViolation, pgUniqueViolation:
		return booking.ErrConflict
	case pgForeignKeyAbsent:
		return booking.ErrNotFound
	}
	return err
}

func mapReadErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.ErrNotFound
	}
	return err
}
