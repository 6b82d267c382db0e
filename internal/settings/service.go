package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
	redisclient "github.com/iconicemr/dental-os-clinic-sub000/internal/redis"
)

// Service is the settings store facade around the availability engine:
// it loads the configuration snapshot the engine resolves against, and
// applies the editor's field-level mutations. Every mutation validates
// through the engine first, runs under a per-resource edit lock, and
// invalidates the cached snapshot afterwards. The engine itself stays
// pure; all I/O lives here.
type Service struct {
	repo   Repository
	locker redisclient.Locker
	cache  Cache
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, cache Cache, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		cache:  cache,
		log:    log,
	}
}

// Load assembles the full availability configuration: global settings,
// the clinic bundle, and one bundle per room with recorded overrides.
// The result is an immutable snapshot; callers pass it to the engine
// and never write through it.
func (s *Service) Load(ctx context.Context) (*availability.Config, error) {
	if cfg, ok := s.cache.Get(ctx); ok {
		return cfg, nil
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfg := &availability.Config{
		Timezone:    settings.Timezone,
		SlotMinutes: settings.SlotMinutes,
		Rooms:       map[string]availability.ScheduleBundle{},
	}

	clinic, err := s.loadBundle(ctx, availability.ClinicResource)
	if err != nil {
		return nil, err
	}
	cfg.Clinic = *clinic

	overridden, err := s.repo.ListOverrideResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list room overrides: %w", err)
	}
	for _, resource := range overridden {
		bundle, err := s.loadBundle(ctx, resource)
		if err != nil {
			return nil, err
		}
		cfg.Rooms[resource] = *bundle
	}

	s.cache.Set(ctx, cfg)
	return cfg, nil
}

func (s *Service) loadBundle(ctx context.Context, resource string) (*availability.ScheduleBundle, error) {
	sched, _, err := s.repo.GetWeeklyHours(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("load weekly hours for %s: %w", resource, err)
	}
	exceptions, err := s.repo.ListExceptions(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("load exceptions for %s: %w", resource, err)
	}
	return &availability.ScheduleBundle{Weekly: *sched, Exceptions: exceptions}, nil
}

// SetWeekdayHours replaces one weekday's ranges for a resource. The
// range set is validated before the lock is even taken; a bad set never
// reaches the store, and the prior hours stay in place.
func (s *Service) SetWeekdayHours(ctx context.Context, resource string, weekday availability.Weekday, ranges []availability.TimeRange) error {
	if err := availability.ValidateRanges(ranges); err != nil {
		return err
	}

	err := s.locker.WithEditLock(ctx, resource, func(ctx context.Context) error {
		return s.repo.UpsertWeekdayHours(ctx, resource, weekday, ranges)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("resource", resource).Str("weekday", weekday.String()).
		Int("ranges", len(ranges)).Msg("weekday hours updated")
	return nil
}

// PutException records a one-off override for a single date, replacing
// any exception already stored for that (resource, date).
func (s *Service) PutException(ctx context.Context, resource string, exc availability.DateException) error {
	if err := exc.Validate(); err != nil {
		return err
	}

	err := s.locker.WithEditLock(ctx, resource, func(ctx context.Context) error {
		return s.repo.UpsertException(ctx, resource, exc)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("resource", resource).Str("date", exc.Date).
		Bool("closed", exc.Closed).Msg("date exception recorded")
	return nil
}

// RemoveException deletes the exception for a date. An absent date is a
// no-op, not an error.
func (s *Service) RemoveException(ctx context.Context, resource string, date string) error {
	if _, err := time.Parse(availability.DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	err := s.locker.WithEditLock(ctx, resource, func(ctx context.Context) error {
		return s.repo.DeleteException(ctx, resource, date)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	return nil
}

// CopyClinicHours gives a room the clinic's weekly pattern as its own
// override bundle. Only the pattern is copied; the clinic's exceptions
// never travel with it.
func (s *Service) CopyClinicHours(ctx context.Context, roomID string) error {
	err := s.locker.WithEditLock(ctx, roomID, func(ctx context.Context) error {
		clinic, _, err := s.repo.GetWeeklyHours(ctx, availability.ClinicResource)
		if err != nil {
			return fmt.Errorf("load clinic hours: %w", err)
		}
		copied := clinic.Clone()
		return s.repo.ReplaceWeeklyHours(ctx, roomID, &copied)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("room", roomID).Msg("clinic hours copied to room")
	return nil
}

// ClearHours closes a resource completely: every weekday emptied and all
// exceptions dropped. For a room this leaves an all-closed override
// bundle, which is different from having no bundle at all.
func (s *Service) ClearHours(ctx context.Context, resource string) error {
	err := s.locker.WithEditLock(ctx, resource, func(ctx context.Context) error {
		var empty availability.WeeklySchedule
		if err := s.repo.ReplaceWeeklyHours(ctx, resource, &empty); err != nil {
			return err
		}
		return s.repo.DeleteExceptions(ctx, resource)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("resource", resource).Msg("hours cleared")
	return nil
}

// RemoveRoomOverride drops a room's bundle entirely, so the room falls
// back to the clinic's hours and exceptions wholesale.
func (s *Service) RemoveRoomOverride(ctx context.Context, roomID string) error {
	err := s.locker.WithEditLock(ctx, roomID, func(ctx context.Context) error {
		if err := s.repo.DeleteWeeklyHours(ctx, roomID); err != nil {
			return err
		}
		return s.repo.DeleteExceptions(ctx, roomID)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("room", roomID).Msg("room override removed")
	return nil
}

// UpdateSettings changes the timezone and slot granularity.
func (s *Service) UpdateSettings(ctx context.Context, timezone string, slotMinutes int) error {
	probe := availability.Config{Timezone: timezone, SlotMinutes: slotMinutes}
	if err := probe.Validate(); err != nil {
		return err
	}

	err := s.locker.WithEditLock(ctx, "settings", func(ctx context.Context) error {
		return s.repo.UpdateSettings(ctx, Settings{Timezone: timezone, SlotMinutes: slotMinutes})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	s.log.Info().Str("timezone", timezone).Int("slot_minutes", slotMinutes).Msg("settings updated")
	return nil
}

// EffectiveHours resolves the open intervals for one (resource, date)
// pair against the current snapshot.
func (s *Service) EffectiveHours(ctx context.Context, resource, date string) ([]availability.TimeRange, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return availability.EffectiveHours(cfg, resource, date)
}

// SlotStarts resolves effective hours and discretizes them into slot
// start times. limit <= 0 means all slots of the day; a positive limit
// stops the underlying lazy sequence early.
func (s *Service) SlotStarts(ctx context.Context, resource, date string, limit int) ([]availability.MinuteOfDay, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	hours, err := availability.EffectiveHours(cfg, resource, date)
	if err != nil {
		return nil, err
	}

	starts := []availability.MinuteOfDay{}
	for t := range availability.Slots(hours, cfg.SlotMinutes) {
		if limit > 0 && len(starts) == limit {
			break
		}
		starts = append(starts, t)
	}
	return starts, nil
}

// PruneExceptions removes exceptions that can no longer matter: entries
// for dates already past in the configured zone, and no-op placeholders.
// Run periodically by the prune worker.
func (s *Service) PruneExceptions(ctx context.Context) error {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("%w: timezone %q: %v", availability.ErrInvalidConfiguration, settings.Timezone, err)
	}

	today := time.Now().In(loc).Format(availability.DateLayout)
	n, err := s.repo.DeleteStaleExceptions(ctx, today)
	if err != nil {
		return err
	}

	if n > 0 {
		s.cache.Invalidate(ctx)
	}
	s.log.Info().Int64("pruned", n).Str("before", today).Msg("stale exceptions pruned")
	return nil
}
