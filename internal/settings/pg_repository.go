package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetSettings(ctx context.Context) (*Settings, error) {
	var s Settings

	err := r.pool.QueryRow(ctx, `
		SELECT timezone, slot_minutes
		FROM availability_settings
		WHERE singleton
	`).Scan(&s.Timezone, &s.SlotMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *PgRepository) UpdateSettings(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availability_settings (singleton, timezone, slot_minutes, updated_at)
		VALUES (true, $1, $2, now())
		ON CONFLICT (singleton) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    slot_minutes = EXCLUDED.slot_minutes,
		    updated_at = now()
	`, s.Timezone, s.SlotMinutes)
	if err != nil {
		return fmt.Errorf("update availability settings: %w", err)
	}
	return nil
}

func (r *PgRepository) GetWeeklyHours(ctx context.Context, resource string) (*availability.WeeklySchedule, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, ranges
		FROM weekly_hours
		WHERE resource = $1
	`, resource)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var sched availability.WeeklySchedule
	found := false

	for rows.Next() {
		var weekday int
		var raw []byte
		if err := rows.Scan(&weekday, &raw); err != nil {
			return nil, false, err
		}
		found = true

		var ranges []availability.TimeRange
		if err := json.Unmarshal(raw, &ranges); err != nil {
			return nil, false, fmt.Errorf("%w: weekly hours for %s weekday %d: %v",
				availability.ErrInvalidConfiguration, resource, weekday, err)
		}
		if err := sched.SetRangesFor(availability.Weekday(weekday), ranges); err != nil {
			return nil, false, fmt.Errorf("%w: weekly hours for %s weekday %d: %v",
				availability.ErrInvalidConfiguration, resource, weekday, err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	return &sched, found, nil
}

func (r *PgRepository) UpsertWeekdayHours(ctx context.Context, resource string, weekday availability.Weekday, ranges []availability.TimeRange) error {
	raw, err := json.Marshal(ranges)
	if err != nil {
		return fmt.Errorf("marshal ranges: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO weekly_hours (resource, weekday, ranges, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (resource, weekday) DO UPDATE
		SET ranges = EXCLUDED.ranges,
		    updated_at = now()
	`, resource, int(weekday), raw)
	if err != nil {
		return fmt.Errorf("upsert weekly hours: %w", err)
	}
	return nil
}

func (r *PgRepository) ReplaceWeeklyHours(ctx context.Context, resource string, sched *availability.WeeklySchedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM weekly_hours WHERE resource = $1`, resource); err != nil {
		return fmt.Errorf("clear weekly hours: %w", err)
	}

	for d := availability.Monday; d <= availability.Sunday; d++ {
		ranges := sched.RangesFor(d)
		if ranges == nil {
			ranges = []availability.TimeRange{}
		}
		raw, err := json.Marshal(ranges)
		if err != nil {
			return fmt.Errorf("marshal ranges: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO weekly_hours (resource, weekday, ranges, updated_at)
			VALUES ($1, $2, $3, now())
		`, resource, int(d), raw); err != nil {
			return fmt.Errorf("write weekly hours: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) DeleteWeeklyHours(ctx context.Context, resource string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM weekly_hours WHERE resource = $1`, resource)
	return err
}

func (r *PgRepository) ListExceptions(ctx context.Context, resource string) ([]availability.DateException, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), closed, overrides
		FROM date_exceptions
		WHERE resource = $1
		ORDER BY date
	`, resource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []availability.DateException
	for rows.Next() {
		var exc availability.DateException
		var raw []byte
		if err := rows.Scan(&exc.Date, &exc.Closed, &raw); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &exc.Overrides); err != nil {
				return nil, fmt.Errorf("%w: exception overrides for %s on %s: %v",
					availability.ErrInvalidConfiguration, resource, exc.Date, err)
			}
		}
		result = append(result, exc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpsertException(ctx context.Context, resource string, exc availability.DateException) error {
	var raw []byte
	if len(exc.Overrides) > 0 {
		var err error
		raw, err = json.Marshal(exc.Overrides)
		if err != nil {
			return fmt.Errorf("marshal overrides: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO date_exceptions (resource, date, closed, overrides, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (resource, date) DO UPDATE
		SET closed = EXCLUDED.closed,
		    overrides = EXCLUDED.overrides,
		    updated_at = now()
	`, resource, exc.Date, exc.Closed, raw)
	if err != nil {
		return fmt.Errorf("upsert date exception: %w", err)
	}
	return nil
}

func (r *PgRepository) DeleteException(ctx context.Context, resource string, date string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM date_exceptions WHERE resource = $1 AND date = $2
	`, resource, date)
	return err
}

func (r *PgRepository) DeleteExceptions(ctx context.Context, resource string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM date_exceptions WHERE resource = $1`, resource)
	return err
}

func (r *PgRepository) ListOverrideResources(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT resource
		FROM weekly_hours
		WHERE resource <> $1
	`, availability.ClinicResource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var resource string
		if err := rows.Scan(&resource); err != nil {
			return nil, err
		}
		result = append(result, resource)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) DeleteStaleExceptions(ctx context.Context, before string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM date_exceptions
		WHERE date < $1
		   OR (NOT closed AND (overrides IS NULL OR overrides = '[]'::jsonb))
	`, before)
	if err != nil {
		return 0, fmt.Errorf("delete stale exceptions: %w", err)
	}
	return tag.RowsAffected(), nil
}
