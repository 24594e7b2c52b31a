package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salonbook/internal/booking"
	"salonbook/internal/model"
	"salonbook/libs/db"
)

type StaffRepository struct {
	pool *db.Pool
}

func NewStaffRepository(pool *db.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

const staffColumns = `
	id::text, first_name, last_name, COALESCE(title, ''), COALESCE(email, ''),
	COALESCE(phone_number, ''), COALESCE(color_hex, ''), is_active, hired_at, terminated_at`

func scanStaff(row pgx.Row) (model.Staff, error) {
	var s model.Staff
	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Title,
		&s.Email,
		&s.PhoneNumber,
		&s.ColorHex,
		&s.IsActive,
		&s.HiredAt,
		&s.TerminatedAt,
	)
	return s, err
}

func (r *StaffRepository) Get(ctx context.Context, id string) (model.Staff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx, `
		SELECT `+staffColumns+` FROM staff WHERE id = $1
	`, id))
	if err != nil {
		return model.Staff{}, mapReadErr(err)
	}
	return s, nil
}

func (r *StaffRepository) List(ctx context.Context) ([]model.Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+staffColumns+` FROM staff ORDER BY first_name, last_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a staff member with a default Mon-Fri 09:00-17:00 schedule
// so new hires are bookable without a separate schedule call.
func (r *StaffRepository) Create(ctx context.Context, s model.Staff) (model.Staff, error) {
	s.ID = uuid.NewString()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Staff{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO staff
			(id, first_name, last_name, title, email, phone_number, color_hex, is_active, hired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.FirstName, s.LastName, s.Title, s.Email, s.PhoneNumber, s.ColorHex, s.IsActive, s.HiredAt)
	if err != nil {
		return model.Staff{}, mapWriteErr(err)
	}

	for wd := 0; wd <= 6; wd++ {
		working := wd >= 1 && wd <= 5
		startMin, endMin := 540, 1020
		if !working {
			startMin, endMin = 0, 0
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO staff_schedules (staff_id, weekday, is_working, start_minute, end_minute)
			VALUES ($1, $2, $3, $4, $5)
		`, s.ID, wd, working, startMin, endMin); err != nil {
			return model.Staff{}, mapWriteErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Staff{}, err
	}
	return s, nil
}

func (r *StaffRepository) Update(ctx context.Context, s model.Staff) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff
		SET first_name = $2,
			last_name = $3,
			title = $4,
			email = $5,
			phone_number = $6,
			color_hex = $7,
			is_active = $8,
			hired_at = $9,
			terminated_at = $10
		WHERE id = $1
	`, s.ID, s.FirstName, s.LastName, s.Title, s.Email, s.PhoneNumber, s.ColorHex,
		s.IsActive, s.HiredAt, s.TerminatedAt)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *StaffRepository) WeeklySchedule(ctx context.Context, staffID string) ([]model.StaffDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, is_working, start_minute, end_minute
		FROM staff_schedules
		WHERE staff_id = $1
		ORDER BY weekday
	`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StaffDay
	for rows.Next() {
		var d model.StaffDay
		if err := rows.Scan(&d.Weekday, &d.IsWorking, &d.StartMinute, &d.EndMinute); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *StaffRepository) ReplaceWeeklySchedule(ctx context.Context, staffID string, days []model.StaffDay) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, d := range days {
		if _, err := tx.Exec(ctx, `
			INSERT INTO staff_schedules (staff_id, weekday, is_working, start_minute, end_minute)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (staff_id, weekday) DO UPDATE
			SET is_working = EXCLUDED.is_working,
				start_minute = EXCLUDED.start_minute,
				end_minute = EXCLUDED.end_minute
		`, staffID, d.Weekday, d.IsWorking, d.StartMinute, d.EndMinute); err != nil {
			return mapWriteErr(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *StaffRepository) Overrides(ctx context.Context, staffID string, from, to time.Time) ([]model.AvailabilityOverride, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, staff_id::text, date, kind, start_minute, end_minute, COALESCE(reason, '')
		FROM staff_overrides
		WHERE staff_id = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date, start_minute
	`, staffID, from, to)
	if err != nil {
		return nil, err
	}
	return collectOverrides(rows)
}

func (r *StaffRepository) ListOverrides(ctx context.Context, staffID string) ([]model.AvailabilityOverride, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, staff_id::text, date, kind, start_minute, end_minute, COALESCE(reason, '')
		FROM staff_overrides
		WHERE staff_id = $1
		ORDER BY date, start_minute
	`, staffID)
	if err != nil {
		return nil, err
	}
	return collectOverrides(rows)
}

func collectOverrides(rows pgx.Rows) ([]model.AvailabilityOverride, error) {
	defer rows.Close()
	var out []model.AvailabilityOverride
	for rows.Next() {
		var ov model.AvailabilityOverride
		var kind int
		if err := rows.Scan(&ov.ID, &ov.StaffID, &ov.Date, &kind, &ov.StartMinute, &ov.EndMinute, &ov.Reason); err != nil {
			return nil, err
		}
		ov.Kind = model.OverrideKind(kind)
		out = append(out, ov)
	}
	return out, rows.Err()
}

func (r *StaffRepository) CreateOverride(ctx context.Context, ov model.AvailabilityOverride) (model.AvailabilityOverride, error) {
	ov.ID = uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff_overrides (id, staff_id, date, kind, start_minute, end_minute, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ov.ID, ov.StaffID, ov.Date, int(ov.Kind), ov.StartMinute, ov.EndMinute, ov.Reason)
	if err != nil {
		return model.AvailabilityOverride{}, mapWriteErr(err)
	}
	return ov, nil
}

func (r *StaffRepository) DeleteOverride(ctx context.Context, staffID, overrideID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM staff_overrides WHERE id = $1 AND staff_id = $2
	`, overrideID, staffID)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}
