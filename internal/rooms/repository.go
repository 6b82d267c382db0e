package rooms

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// Repository is the room registry: the set of valid room ids and their
// active flags. The availability engine never consults it; an unknown
// room id simply falls back to clinic hours. The editing surface uses it
// to know which resources can be queried.
type Repository interface {
	ListRooms(ctx context.Context, activeOnly bool) ([]Room, error)
	GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error)
	CreateRoom(ctx context.Context, name string) (*Room, error)
	SetRoomActive(ctx context.Context, id uuid.UUID, active bool) (*Room, error)
}
