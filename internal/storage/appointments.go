package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"salonbook/internal/booking"
	"salonbook/internal/calendar"
	"salonbook/internal/model"
	"salonbook/internal/outbox"
	"salonbook/libs/db"
)

// AppointmentRepository implements booking.AppointmentStore over Postgres.
// Occupancy integrity rests on two layers: a per-staff advisory lock plus an
// overlap re-check inside each writing transaction, and the
// appointments_no_overlap exclusion constraint as the backstop for writers
// that bypass this code path.
type AppointmentRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outbox: outboxRepo}
}

const appointmentColumns = `
	a.id::text, a.customer_id, a.staff_id::text,
	COALESCE(s.first_name || ' ' || s.last_name, ''),
	a.start_time, a.end_time, a.status, a.total_price::float8,
	COALESCE(a.notes, ''), COALESCE(a.cancellation_reason, ''),
	a.cancelled_at, a.created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var status string
	var cancelledAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.CustomerID,
		&appt.StaffID,
		&appt.StaffName,
		&appt.StartTime,
		&appt.EndTime,
		&status,
		&appt.TotalPrice,
		&appt.Notes,
		&appt.CancellationReason,
		&cancelledAt,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.AppointmentStatus(status)
	appt.CancelledAt = cancelledAt
	return appt, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	appt, err := scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		LEFT JOIN staff s ON s.id = a.staff_id
		WHERE a.id = $1
	`, id))
	if err != nil {
		return model.Appointment{}, mapReadErr(err)
	}
	appt.Services, err = r.listServices(ctx, appt.ID)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (r *AppointmentRepository) listServices(ctx context.Context, appointmentID string) ([]model.AppointmentService, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT service_id::text, service_name, price::float8, duration_minutes
		FROM appointment_services
		WHERE appointment_id = $1
		ORDER BY position
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AppointmentService
	for rows.Next() {
		var svc model.AppointmentService
		if err := rows.Scan(&svc.ServiceID, &svc.ServiceName, &svc.Price, &svc.DurationMinutes); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (r *AppointmentRepository) BookedIntervals(ctx context.Context, staffID string, from, to time.Time) ([]calendar.Interval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_time, end_time
		FROM appointments
		WHERE staff_id = $1
			AND status <> 'Cancelled'
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.Interval
	for rows.Next() {
		var iv calendar.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (r *AppointmentRepository) Reserve(ctx context.Context, appt *model.Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	free, err := r.lockAndCheck(ctx, tx, appt.StaffID, appt.StartTime, appt.EndTime, "")
	if err != nil {
		return err
	}
	if !free {
		return booking.ErrConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments
			(id, customer_id, staff_id, start_time, end_time, status, total_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, appt.ID, appt.CustomerID, appt.StaffID, appt.StartTime, appt.EndTime,
		string(appt.Status), appt.TotalPrice, appt.Notes)
	if err != nil {
		return mapWriteErr(err)
	}

	for i, svc := range appt.Services {
		_, err = tx.Exec(ctx, `
			INSERT INTO appointment_services
				(appointment_id, service_id, service_name, price, duration_minutes, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, appt.ID, svc.ServiceID, svc.ServiceName, svc.Price, svc.DurationMinutes, i)
		if err != nil {
			return mapWriteErr(err)
		}
	}

	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentScheduled, appt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *AppointmentRepository) Update(ctx context.Context, appt *model.Appointment, recheckInterval bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if recheckInterval {
		free, err := r.lockAndCheck(ctx, tx, appt.StaffID, appt.StartTime, appt.EndTime, appt.ID)
		if err != nil {
			return err
		}
		if !free {
			return booking.ErrConflict
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET staff_id = $2,
			start_time = $3,
			end_time = $4,
			status = $5,
			notes = $6
		WHERE id = $1
	`, appt.ID, appt.StaffID, appt.StartTime, appt.EndTime, string(appt.Status), appt.Notes)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}

	if recheckInterval {
		if err := r.insertEvent(ctx, tx, outbox.EventAppointmentRescheduled, appt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *AppointmentRepository) Cancel(ctx context.Context, id, reason string) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := scanAppointment(tx.QueryRow(ctx, `
		UPDATE appointments a
		SET status = 'Cancelled',
			cancelled_at = now(),
			cancellation_reason = $2
		FROM staff s
		WHERE a.id = $1 AND s.id = a.staff_id
		RETURNING `+appointmentColumns,
		id, reason))
	if err != nil {
		return model.Appointment{}, mapReadErr(err)
	}

	if err := r.insertEvent(ctx, tx, outbox.EventAppointmentCancelled, &appt); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}

	appt.Services, err = r.listServices(ctx, appt.ID)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// lockAndCheck serializes bookings per staff member for the rest of the
// transaction and reports whether [start, end) is free of other
// non-cancelled appointments. excludeID skips the appointment's own row on
// reschedules.
func (r *AppointmentRepository) lockAndCheck(ctx context.Context, tx pgx.Tx, staffID string, start, end time.Time, excludeID string) (bool, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, staffID); err != nil {
		return false, err
	}

	var busy bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE staff_id = $1
				AND status <> 'Cancelled'
				AND id::text <> $4
				AND start_time < $3
				AND end_time > $2
		)
	`, staffID, start, end, excludeID).Scan(&busy)
	if err != nil {
		return false, err
	}
	return !busy, nil
}

func (r *AppointmentRepository) insertEvent(ctx context.Context, tx pgx.Tx, eventType string, appt *model.Appointment) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"customer_id":    appt.CustomerID,
		"staff_id":       appt.StaffID,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
		"status":         string(appt.Status),
		"total_price":    appt.TotalPrice,
	})
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}

func (r *AppointmentRepository) ListByCustomer(ctx context.Context, customerID string, includePast bool, offset, limit int) ([]model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		LEFT JOIN staff s ON s.id = a.staff_id
		WHERE a.customer_id = $1`
	if !includePast {
		query += ` AND a.end_time > now()`
	}
	query += `
		ORDER BY a.start_time DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, customerID, offset, limit)
	if err != nil {
		return nil, err
	}
	appts, err := collectAppointments(rows)
	if err != nil {
		return nil, err
	}
	return r.attachServices(ctx, appts)
}

func (r *AppointmentRepository) ListRange(ctx context.Context, from, to time.Time, staffIDs []string) ([]model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		LEFT JOIN staff s ON s.id = a.staff_id
		WHERE a.start_time < $2 AND a.end_time > $1`
	args := []any{from, to}
	if len(staffIDs) > 0 {
		query += ` AND a.staff_id::text = ANY($3)`
		args = append(args, staffIDs)
	}
	query += ` ORDER BY a.start_time ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	appts, err := collectAppointments(rows)
	if err != nil {
		return nil, err
	}
	return r.attachServices(ctx, appts)
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var out []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

func (r *AppointmentRepository) attachServices(ctx context.Context, appts []model.Appointment) ([]model.Appointment, error) {
	for i := range appts {
		services, err := r.listServices(ctx, appts[i].ID)
		if err != nil {
			return nil, err
		}
		appts[i].Services = services
	}
	return appts, nil
}
