package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
	redisclient "github.com/iconicemr/dental-os-clinic-sub000/internal/redis"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/rooms"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/settings"
)

// resourceParam reads the {resource} path segment: the literal "clinic"
// or a room UUID. Unknown-but-well-formed room ids are allowed; the
// engine treats them as clinic fallback.
func resourceParam(r *http.Request) (string, bool) {
	res := chi.URLParam(r, "resource")
	if res == availability.ClinicResource {
		return res, true
	}
	if _, err := uuid.Parse(res); err != nil {
		return "", false
	}
	return res, true
}

func dateParam(r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(availability.DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

func getSettingsHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.Load(r.Context())
		if err != nil {
			handleResolveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SettingsResponse{
			Timezone:    cfg.Timezone,
			SlotMinutes: cfg.SlotMinutes,
		})
	}
}

func updateSettingsHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := svc.UpdateSettings(r.Context(), req.Timezone, req.SlotMinutes); err != nil {
			handleMutationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SettingsResponse{
			Timezone:    req.Timezone,
			SlotMinutes: req.SlotMinutes,
		})
	}
}

func getScheduleHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := resourceParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_resource", "resource must be 'clinic' or a room UUID")
			return
		}

		cfg, err := svc.Load(r.Context())
		if err != nil {
			handleResolveError(w, err)
			return
		}

		bundle := cfg.Clinic
		override := false
		if resource != availability.ClinicResource {
			if b, ok := cfg.Rooms[resource]; ok {
				bundle = b
				override = true
			}
		}

		exceptions := bundle.Exceptions
		if exceptions == nil {
			exceptions = []availability.DateException{}
		}

		writeJSON(w, http.StatusOK, ScheduleResponse{
			Resource:   resource,
			Override:   override,
			Weekly:     bundle.Weekly,
			Exceptions: exceptions,
		})
	}
}

func setHoursHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := resourceParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_resource", "resource must be 'clinic' or a room UUID")
			return
		}

		weekday, err := availability.ParseWeekday(chi.URLParam(r, "weekday"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_weekday", err.Error())
			return
		}

		var req SetHoursRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleBodyDecodeError(w, err)
			return
		}

		if err := svc.SetWeekdayHours(r.Context(), resource, weekday, req.Ranges); err != nil {
			handleMutationError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func copyClinicHoursHandler(svc *settings.Service, registry rooms.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, ok := knownRoom(w, r, registry)
		if !ok {
			return
		}

		if err := svc.CopyClinicHours(r.Context(), roomID); err != nil {
			handleMutationError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func clearHoursHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := resourceParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_resource", "resource must be 'clinic' or a room UUID")
			return
		}

		if err := svc.ClearHours(r.Context(), resource); err != nil {
			handleMutationError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func removeOverrideHandler(svc *settings.Service, registry rooms.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, ok := knownRoom(w, r, registry)
		if !ok {
			return
		}

		if err := svc.RemoveRoomOverride(r.Context(), roomID); err != nil {
			handleMutationError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func putExceptionHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := resourceParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_resource", "resource must be 'clinic' or a room UUID")
			return
		}

		var exc availability.DateException
		if err := json.NewDecoder(r.Body).Decode(&exc); err != nil {
			handleBodyDecodeError(w, err)
			return
		}

		if err := svc.PutException(r.Context(), resource, exc); err != nil {
			handleMutationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, exc)
	}
}

func deleteExceptionHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := resourceParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_resource", "resource must be 'clinic' or a room UUID")
			return
		}
		date, ok := dateParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		if err := svc.RemoveException(r.Context(), resource, date); err != nil {
			handleMutationError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getDayHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := resourceParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_resource", "resource must be 'clinic' or a room UUID")
			return
		}
		date, ok := dateParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		hours, err := svc.EffectiveHours(r.Context(), resource, date)
		if err != nil {
			handleResolveError(w, err)
			return
		}
		if hours == nil {
			hours = []availability.TimeRange{}
		}

		writeJSON(w, http.StatusOK, DayResponse{
			Resource: resource,
			Date:     date,
			Open:     len(hours) > 0,
			Hours:    hours,
		})
	}
}

func getSlotsHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource, ok := resourceParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_resource", "resource must be 'clinic' or a room UUID")
			return
		}
		date, ok := dateParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		cfg, err := svc.Load(r.Context())
		if err != nil {
			handleResolveError(w, err)
			return
		}
		starts, err := svc.SlotStarts(r.Context(), resource, date, limit)
		if err != nil {
			handleResolveError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{
			Resource:    resource,
			Date:        date,
			SlotMinutes: cfg.SlotMinutes,
			Slots:       starts,
		})
	}
}

func listRoomsHandler(registry rooms.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("active") == "true"

		list, err := registry.ListRooms(r.Context(), activeOnly)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]RoomResponse, 0, len(list))
		for _, room := range list {
			resp = append(resp, RoomResponse{ID: room.ID, Name: room.Name, Active: room.Active})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createRoomHandler(registry rooms.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "name is required")
			return
		}

		room, err := registry.CreateRoom(r.Context(), req.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, RoomResponse{ID: room.ID, Name: room.Name, Active: room.Active})
	}
}

func setRoomActiveHandler(registry rooms.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "roomID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_room_id", "roomID must be a valid UUID")
			return
		}

		var req SetRoomActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		room, err := registry.SetRoomActive(r.Context(), id, req.Active)
		if err != nil {
			if errors.Is(err, rooms.ErrRoomNotFound) {
				writeError(w, http.StatusNotFound, "room_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, RoomResponse{ID: room.ID, Name: room.Name, Active: room.Active})
	}
}

// knownRoom resolves the {roomID} segment against the registry. Hour
// edits target real rooms only; resolution queries have no such check.
func knownRoom(w http.ResponseWriter, r *http.Request, registry rooms.Repository) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_room_id", "roomID must be a valid UUID")
		return "", false
	}

	if _, err := registry.GetRoomByID(r.Context(), id); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			writeError(w, http.StatusNotFound, "room_not_found", err.Error())
			return "", false
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return "", false
	}

	return id.String(), true
}

func handleBodyDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, availability.ErrInvalidTimeValue) {
		writeError(w, http.StatusBadRequest, "invalid_time_value", err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
}

func handleMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidTimeValue):
		writeError(w, http.StatusBadRequest, "invalid_time_value", err.Error())
	case errors.Is(err, availability.ErrInvalidRanges):
		writeError(w, http.StatusUnprocessableEntity, "invalid_ranges", err.Error())
	case errors.Is(err, availability.ErrInvalidConfiguration):
		writeError(w, http.StatusUnprocessableEntity, "invalid_configuration", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "edit_in_progress", "another edit is in progress for this resource, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrSettingsNotFound):
		writeError(w, http.StatusServiceUnavailable, "settings_not_seeded", err.Error())
	case errors.Is(err, availability.ErrInvalidConfiguration):
		writeError(w, http.StatusInternalServerError, "invalid_configuration", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
