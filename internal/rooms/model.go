package rooms

import (
	"time"

	"github.com/google/uuid"
)

// Room is a treatment room, a schedulable resource alongside the clinic
// itself. Its id string keys the per-room schedule bundle in the
// availability configuration.
type Room struct {
	ID        uuid.UUID
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
