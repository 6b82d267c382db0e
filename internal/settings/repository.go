package settings

import (
	"context"
	"errors"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
)

var (
	ErrSettingsNotFound = errors.New("availability settings not seeded")
)

// Settings is the global row of the store: the zone every calendar date
// is interpreted in and the slot granularity.
type Settings struct {
	Timezone    string
	SlotMinutes int
}

// Repository contains all DB interactions needed by the service. Weekly
// hours are persisted per (resource, weekday) and exceptions per
// (resource, date) so every editor action maps to one keyed upsert,
// matching the field-level persistence model of the editing surface.
type Repository interface {
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, s Settings) error

	// Weekly patterns. found is false when the resource has no rows at
	// all, i.e. no override bundle is recorded for it.
	GetWeeklyHours(ctx context.Context, resource string) (sched *availability.WeeklySchedule, found bool, err error)
	UpsertWeekdayHours(ctx context.Context, resource string, weekday availability.Weekday, ranges []availability.TimeRange) error
	ReplaceWeeklyHours(ctx context.Context, resource string, sched *availability.WeeklySchedule) error
	DeleteWeeklyHours(ctx context.Context, resource string) error

	// Date exceptions, keyed by (resource, ISO date).
	ListExceptions(ctx context.Context, resource string) ([]availability.DateException, error)
	UpsertException(ctx context.Context, resource string, exc availability.DateException) error
	DeleteException(ctx context.Context, resource string, date string) error
	DeleteExceptions(ctx context.Context, resource string) error

	// ListOverrideResources returns every room id with a recorded weekly
	// override bundle.
	ListOverrideResources(ctx context.Context) ([]string, error)

	// Prune worker: drops exceptions dated before the given ISO date and
	// no-op placeholder entries, across all resources.
	DeleteStaleExceptions(ctx context.Context, before string) (int64, error)
}
