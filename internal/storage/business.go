package storage

import (
	"context"

	"salonbook/internal/model"
	"salonbook/libs/db"
)

// BusinessRepository owns the single business-settings row and its
// per-weekday operating hours.
type BusinessRepository struct {
	pool *db.Pool
}

func NewBusinessRepository(pool *db.Pool) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

func (r *BusinessRepository) Settings(ctx context.Context) (model.BusinessSettings, error) {
	// Seed a default row on first read so a fresh install is queryable.
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO business_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING
	`); err != nil {
		return model.BusinessSettings{}, err
	}

	var s model.BusinessSettings
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(description, ''), COALESCE(phone_number, ''),
			COALESCE(email, ''), COALESCE(website_url, ''), timezone,
			COALESCE(address_line1, ''), COALESCE(address_line2, ''), COALESCE(city, ''),
			COALESCE(state, ''), COALESCE(postal_code, ''), COALESCE(country, '')
		FROM business_settings
		WHERE id = 1
	`).Scan(
		&s.ID, &s.Name, &s.Description, &s.PhoneNumber, &s.Email, &s.WebsiteURL, &s.Timezone,
		&s.Address.Line1, &s.Address.Line2, &s.Address.City,
		&s.Address.State, &s.Address.PostalCode, &s.Address.Country,
	)
	if err != nil {
		return model.BusinessSettings{}, mapReadErr(err)
	}

	s.OperatingHours, err = r.operatingHours(ctx)
	if err != nil {
		return model.BusinessSettings{}, err
	}
	return s, nil
}

func (r *BusinessRepository) operatingHours(ctx context.Context) ([]model.OperatingHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, is_closed, open_minute, close_minute
		FROM operating_hours
		ORDER BY weekday
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OperatingHours
	for rows.Next() {
		var oh model.OperatingHours
		if err := rows.Scan(&oh.Weekday, &oh.IsClosed, &oh.OpenMinute, &oh.CloseMinute); err != nil {
			return nil, err
		}
		out = append(out, oh)
	}
	return out, rows.Err()
}

func (r *BusinessRepository) Update(ctx context.Context, s model.BusinessSettings) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO business_settings
			(id, name, description, phone_number, email, website_url, timezone,
			 address_line1, address_line2, city, state, postal_code, country)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			description = EXCLUDED.description,
			phone_number = EXCLUDED.phone_number,
			email = EXCLUDED.email,
			website_url = EXCLUDED.website_url,
			timezone = EXCLUDED.timezone,
			address_line1 = EXCLUDED.address_line1,
			address_line2 = EXCLUDED.address_line2,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country,
			updated_at = now()
	`, s.Name, s.Description, s.PhoneNumber, s.Email, s.WebsiteURL, s.Timezone,
		s.Address.Line1, s.Address.Line2, s.Address.City,
		s.Address.State, s.Address.PostalCode, s.Address.Country)
	if err != nil {
		return mapWriteErr(err)
	}

	for _, oh := range s.OperatingHours {
		if _, err := tx.Exec(ctx, `
			INSERT INTO operating_hours (weekday, is_closed, open_minute, close_minute)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (weekday) DO UPDATE
			SET is_closed = EXCLUDED.is_closed,
				open_minute = EXCLUDED.open_minute,
				close_minute = EXCLUDED.close_minute
		`, oh.Weekday, oh.IsClosed, oh.OpenMinute, oh.CloseMinute); err != nil {
			return mapWriteErr(err)
		}
	}
	return tx.Commit(ctx)
}
