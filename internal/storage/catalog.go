package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salonbook/internal/booking"
	"salonbook/internal/model"
	"salonbook/libs/db"
)

// CatalogRepository owns service categories, services, and the
// service-to-staff assignment table.
type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const serviceColumns = `
	sv.id::text, COALESCE(sv.category_id::text, ''), COALESCE(c.name, ''),
	sv.name, COALESCE(sv.description, ''), sv.price::float8,
	sv.duration_minutes, sv.buffer_minutes, sv.is_active, COALESCE(sv.color_hex, '')`

func scanService(row pgx.Row) (model.Service, error) {
	var svc model.Service
	err := row.Scan(
		&svc.ID,
		&svc.CategoryID,
		&svc.CategoryName,
		&svc.Name,
		&svc.Description,
		&svc.Price,
		&svc.DurationMinutes,
		&svc.BufferMinutes,
		&svc.IsActive,
		&svc.ColorHex,
	)
	return svc, err
}

func (r *CatalogRepository) ServicesByIDs(ctx context.Context, ids []string) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services sv
		LEFT JOIN service_categories c ON c.id = sv.category_id
		WHERE sv.id::text = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	services, err := collectServices(rows)
	if err != nil {
		return nil, err
	}

	byID := map[string]model.Service{}
	for _, svc := range services {
		staffIDs, err := r.assignedStaff(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		svc.StaffIDs = staffIDs
		byID[svc.ID] = svc
	}

	// Preserve request order and surface missing ids.
	out := make([]model.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			return nil, booking.ErrNotFound
		}
		out = append(out, svc)
	}
	return out, nil
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (model.Service, error) {
	svc, err := scanService(r.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services sv
		LEFT JOIN service_categories c ON c.id = sv.category_id
		WHERE sv.id = $1
	`, id))
	if err != nil {
		return model.Service{}, mapReadErr(err)
	}
	svc.StaffIDs, err = r.assignedStaff(ctx, svc.ID)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services sv
		LEFT JOIN service_categories c ON c.id = sv.category_id
		ORDER BY c.display_order NULLS LAST, sv.name
	`)
	if err != nil {
		return nil, err
	}
	services, err := collectServices(rows)
	if err != nil {
		return nil, err
	}
	for i := range services {
		services[i].StaffIDs, err = r.assignedStaff(ctx, services[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return services, nil
}

func (r *CatalogRepository) Create(ctx context.Context, svc model.Service) (model.Service, error) {
	svc.ID = uuid.NewString()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Service{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO services
			(id, category_id, name, description, price, duration_minutes, buffer_minutes, is_active, color_hex)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, svc.ID, nullIfEmpty(svc.CategoryID), svc.Name, svc.Description, svc.Price,
		svc.DurationMinutes, svc.BufferMinutes, svc.IsActive, svc.ColorHex)
	if err != nil {
		return model.Service{}, mapWriteErr(err)
	}
	if err := replaceAssignments(ctx, tx, svc.ID, svc.StaffIDs); err != nil {
		return model.Service{}, mapWriteErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *CatalogRepository) Update(ctx context.Context, svc model.Service) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE services
		SET category_id = $2,
			name = $3,
			description = $4,
			price = $5,
			duration_minutes = $6,
			buffer_minutes = $7,
			is_active = $8,
			color_hex = $9
		WHERE id = $1
	`, svc.ID, nullIfEmpty(svc.CategoryID), svc.Name, svc.Description, svc.Price,
		svc.DurationMinutes, svc.BufferMinutes, svc.IsActive, svc.ColorHex)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	if err := replaceAssignments(ctx, tx, svc.ID, svc.StaffIDs); err != nil {
		return mapWriteErr(err)
	}
	return tx.Commit(ctx)
}

func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func replaceAssignments(ctx context.Context, tx pgx.Tx, serviceID string, staffIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM service_staff WHERE service_id = $1`, serviceID); err != nil {
		return err
	}
	for _, staffID := range staffIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_staff (service_id, staff_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, serviceID, staffID); err != nil {
			return err
		}
	}
	return nil
}

func (r *CatalogRepository) assignedStaff(ctx context.Context, serviceID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT staff_id::text
		FROM service_staff
		WHERE service_id = $1
		ORDER BY staff_id
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func collectServices(rows pgx.Rows) ([]model.Service, error) {
	defer rows.Close()
	var out []model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]model.ServiceCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, COALESCE(description, ''), display_order, is_active
		FROM service_categories
		ORDER BY display_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ServiceCategory
	for rows.Next() {
		var c model.ServiceCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.DisplayOrder, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c model.ServiceCategory) (model.ServiceCategory, error) {
	c.ID = uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_categories (id, name, description, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Name, c.Description, c.DisplayOrder, c.IsActive)
	if err != nil {
		return model.ServiceCategory{}, mapWriteErr(err)
	}
	return c, nil
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, c model.ServiceCategory) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE service_categories
		SET name = $2, description = $3, display_order = $4, is_active = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Description, c.DisplayOrder, c.IsActive)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// DeleteCategory removes the category; services in it fall back to
// uncategorized through the schema's ON DELETE SET NULL.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM service_categories WHERE id = $1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}
