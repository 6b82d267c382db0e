package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := createSchema(context.Background(), pool); err != nil {
		log.Fatalf("create schema: %v", err)
	}
	if err := seedSettings(context.Background(), pool); err != nil {
		log.Fatalf("seed settings: %v", err)
	}
	roomIDs, err := seedRooms(context.Background(), pool, 6)
	if err != nil {
		log.Fatalf("seed rooms: %v", err)
	}
	if err := seedHours(context.Background(), pool, roomIDs); err != nil {
		log.Fatalf("seed hours: %v", err)
	}

	log.Println("seed complete")
}

func createSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS availability_settings (
			singleton    boolean PRIMARY KEY DEFAULT true CHECK (singleton),
			timezone     text NOT NULL,
			slot_minutes integer NOT NULL,
			updated_at   timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS weekly_hours (
			resource   text NOT NULL,
			weekday    smallint NOT NULL CHECK (weekday BETWEEN 0 AND 6),
			ranges     jsonb NOT NULL DEFAULT '[]'::jsonb,
			updated_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (resource, weekday)
		);

		CREATE TABLE IF NOT EXISTS date_exceptions (
			resource   text NOT NULL,
			date       date NOT NULL,
			closed     boolean NOT NULL DEFAULT false,
			overrides  jsonb,
			updated_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (resource, date)
		);

		CREATE TABLE IF NOT EXISTS rooms (
			id         uuid PRIMARY KEY,
			name       text NOT NULL,
			active     boolean NOT NULL DEFAULT true,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		);
	`)
	return err
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO availability_settings (singleton, timezone, slot_minutes)
		VALUES (true, 'Africa/Cairo', 30)
		ON CONFLICT (singleton) DO NOTHING
	`)
	return err
}

func seedRooms(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d rooms", count)

	kinds := []string{"Surgery", "Hygiene", "Ortho", "X-Ray", "Consult"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := kinds[gofakeit.Number(0, len(kinds)-1)] + " " + gofakeit.DigitN(1)

		_, err := tx.Exec(ctx, `
			INSERT INTO rooms (id, name, active, created_at, updated_at)
			VALUES ($1, $2, true, now(), now())
		`, id, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("rooms seeded")
	return ids, nil
}

// seedHours writes a standard clinic week (Mon-Fri 09:00-12:00 and
// 13:00-17:00, Sat 10:00-14:00), gives the first room custom hours, and
// records a demo closure exception a week out.
func seedHours(ctx context.Context, pool *pgxpool.Pool, roomIDs []uuid.UUID) error {
	weekdayHours := map[int][]availability.TimeRange{
		int(availability.Monday):    {{Start: 540, End: 720}, {Start: 780, End: 1020}},
		int(availability.Tuesday):   {{Start: 540, End: 720}, {Start: 780, End: 1020}},
		int(availability.Wednesday): {{Start: 540, End: 720}, {Start: 780, End: 1020}},
		int(availability.Thursday):  {{Start: 540, End: 720}, {Start: 780, End: 1020}},
		int(availability.Friday):    {{Start: 540, End: 720}, {Start: 780, End: 1020}},
		int(availability.Saturday):  {{Start: 600, End: 840}},
	}

	for weekday, ranges := range weekdayHours {
		if err := insertHours(ctx, pool, availability.ClinicResource, weekday, ranges); err != nil {
			return err
		}
	}

	if len(roomIDs) > 0 {
		// One room with afternoon-only custom hours, Mon-Fri.
		room := roomIDs[0].String()
		for weekday := int(availability.Monday); weekday <= int(availability.Friday); weekday++ {
			if err := insertHours(ctx, pool, room, weekday, []availability.TimeRange{{Start: 780, End: 1020}}); err != nil {
				return err
			}
		}
	}

	closure := time.Now().AddDate(0, 0, 7).Format(availability.DateLayout)
	_, err := pool.Exec(ctx, `
		INSERT INTO date_exceptions (resource, date, closed, overrides)
		VALUES ($1, $2, true, NULL)
		ON CONFLICT (resource, date) DO NOTHING
	`, availability.ClinicResource, closure)
	if err != nil {
		return err
	}

	log.Println("hours seeded")
	return nil
}

func insertHours(ctx context.Context, pool *pgxpool.Pool, resource string, weekday int, ranges []availability.TimeRange) error {
	raw, err := json.Marshal(ranges)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO weekly_hours (resource, weekday, ranges)
		VALUES ($1, $2, $3)
		ON CONFLICT (resource, weekday) DO UPDATE
		SET ranges = EXCLUDED.ranges,
		    updated_at = now()
	`, resource, weekday, raw)
	return err
}
