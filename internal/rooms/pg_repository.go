package rooms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanRoom(row pgx.Row) (*Room, error) {
	var r Room

	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return &r, nil
}

func (r *PgRepository) ListRooms(ctx context.Context, activeOnly bool) ([]Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, active, created_at, updated_at
		FROM rooms
		WHERE NOT $1 OR active
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, active, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`, id)
	return scanRoom(row)
}

func (r *PgRepository) CreateRoom(ctx context.Context, name string) (*Room, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, name, active, created_at, updated_at)
		VALUES ($1, $2, true, now(), now())
		RETURNING id, name, active, created_at, updated_at
	`, id, name)

	return scanRoom(row)
}

func (r *PgRepository) SetRoomActive(ctx context.Context, id uuid.UUID, active bool) (*Room, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE rooms
		SET active = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, active, created_at, updated_at
	`, id, active)

	return scanRoom(row)
}
