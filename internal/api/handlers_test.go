package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/rooms"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/settings"
)

// fakeSettingsRepo is a map-backed settings.Repository for router tests.
type fakeSettingsRepo struct {
	settings   settings.Settings
	weekly     map[string]*availability.WeeklySchedule
	exceptions map[string][]availability.DateException
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		settings:   settings.Settings{Timezone: "Africa/Cairo", SlotMinutes: 30},
		weekly:     map[string]*availability.WeeklySchedule{},
		exceptions: map[string][]availability.DateException{},
	}
}

func (f *fakeSettingsRepo) GetSettings(ctx context.Context) (*settings.Settings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettingsRepo) UpdateSettings(ctx context.Context, s settings.Settings) error {
	f.settings = s
	return nil
}

func (f *fakeSettingsRepo) GetWeeklyHours(ctx context.Context, resource string) (*availability.WeeklySchedule, bool, error) {
	if sched, ok := f.weekly[resource]; ok {
		c := sched.Clone()
		return &c, true, nil
	}
	return &availability.WeeklySchedule{}, false, nil
}

func (f *fakeSettingsRepo) UpsertWeekdayHours(ctx context.Context, resource string, weekday availability.Weekday, ranges []availability.TimeRange) error {
	sched, ok := f.weekly[resource]
	if !ok {
		sched = &availability.WeeklySchedule{}
		f.weekly[resource] = sched
	}
	return sched.SetRangesFor(weekday, ranges)
}

func (f *fakeSettingsRepo) ReplaceWeeklyHours(ctx context.Context, resource string, sched *availability.WeeklySchedule) error {
	c := sched.Clone()
	f.weekly[resource] = &c
	return nil
}

func (f *fakeSettingsRepo) DeleteWeeklyHours(ctx context.Context, resource string) error {
	delete(f.weekly, resource)
	return nil
}

func (f *fakeSettingsRepo) ListExceptions(ctx context.Context, resource string) ([]availability.DateException, error) {
	return f.exceptions[resource], nil
}

func (f *fakeSettingsRepo) UpsertException(ctx context.Context, resource string, exc availability.DateException) error {
	f.exceptions[resource] = availability.UpsertException(f.exceptions[resource], exc)
	return nil
}

func (f *fakeSettingsRepo) DeleteException(ctx context.Context, resource string, date string) error {
	f.exceptions[resource] = availability.RemoveException(f.exceptions[resource], date)
	return nil
}

func (f *fakeSettingsRepo) DeleteExceptions(ctx context.Context, resource string) error {
	delete(f.exceptions, resource)
	return nil
}

func (f *fakeSettingsRepo) ListOverrideResources(ctx context.Context) ([]string, error) {
	var out []string
	for resource := range f.weekly {
		if resource != availability.ClinicResource {
			out = append(out, resource)
		}
	}
	return out, nil
}

func (f *fakeSettingsRepo) DeleteStaleExceptions(ctx context.Context, before string) (int64, error) {
	return 0, nil
}

// inlineLocker runs edits inline; lock contention is covered in the
// settings package tests.
type inlineLocker struct{}

func (inlineLocker) WithEditLock(ctx context.Context, resource string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopCache struct{}

func (nopCache) Get(ctx context.Context) (*availability.Config, bool) { return nil, false }
func (nopCache) Set(ctx context.Context, cfg *availability.Config)   {}
func (nopCache) Invalidate(ctx context.Context)                      {}

// fakeRoomRegistry holds a fixed set of rooms.
type fakeRoomRegistry struct {
	rooms map[uuid.UUID]rooms.Room
}

func (f *fakeRoomRegistry) ListRooms(ctx context.Context, activeOnly bool) ([]rooms.Room, error) {
	var out []rooms.Room
	for _, room := range f.rooms {
		if !activeOnly || room.Active {
			out = append(out, room)
		}
	}
	return out, nil
}

func (f *fakeRoomRegistry) GetRoomByID(ctx context.Context, id uuid.UUID) (*rooms.Room, error) {
	if room, ok := f.rooms[id]; ok {
		return &room, nil
	}
	return nil, rooms.ErrRoomNotFound
}

func (f *fakeRoomRegistry) CreateRoom(ctx context.Context, name string) (*rooms.Room, error) {
	room := rooms.Room{ID: uuid.New(), Name: name, Active: true}
	f.rooms[room.ID] = room
	return &room, nil
}

func (f *fakeRoomRegistry) SetRoomActive(ctx context.Context, id uuid.UUID, active bool) (*rooms.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, rooms.ErrRoomNotFound
	}
	room.Active = active
	f.rooms[id] = room
	return &room, nil
}

func newTestRouter(t *testing.T) (http.Handler, *fakeSettingsRepo, uuid.UUID) {
	t.Helper()

	repo := newFakeSettingsRepo()
	svc := settings.NewService(repo, inlineLocker{}, nopCache{}, zerolog.Nop())

	roomID := uuid.New()
	registry := &fakeRoomRegistry{rooms: map[uuid.UUID]rooms.Room{
		roomID: {ID: roomID, Name: "Surgery 1", Active: true},
	}}

	router := NewRouter(RouterConfig{
		Settings: svc,
		Rooms:    registry,
		Logger:   zerolog.Nop(),
		Env:      "test",
		Version:  "test",
	})
	return router, repo, roomID
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPutHoursAndResolveDay(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/clinic/hours/mon",
		`{"ranges":[{"start":"09:00","end":"12:00"},{"start":"13:00","end":"17:00"}]}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// 2026-01-05 is a Monday.
	rec = doRequest(t, router, http.MethodGet, "/availability/clinic/days/2026-01-05", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var day DayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	assert.True(t, day.Open)
	require.Len(t, day.Hours, 2)
	assert.Equal(t, "09:00", day.Hours[0].Start.String())
	assert.Equal(t, "17:00", day.Hours[1].End.String())
}

func TestPutHoursRejectsOverlap(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/clinic/hours/mon",
		`{"ranges":[{"start":"09:00","end":"12:00"}]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/availability/clinic/hours/mon",
		`{"ranges":[{"start":"09:00","end":"12:00"},{"start":"11:00","end":"14:00"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "invalid_ranges", errResp.Error)

	// Prior hours survive the rejected edit.
	sched := repo.weekly[availability.ClinicResource]
	assert.Equal(t, []availability.TimeRange{{Start: 540, End: 720}}, sched.RangesFor(availability.Monday))
}

func TestPutHoursRejectsBadTimeValue(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/clinic/hours/mon",
		`{"ranges":[{"start":"24:30","end":"26:00"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "invalid_time_value", errResp.Error)
}

func TestExceptionPrecedenceOverAPI(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/clinic/hours/wed",
		`{"ranges":[{"start":"09:00","end":"17:00"}]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// 2026-01-07 is a Wednesday: replacement hours win over the pattern.
	rec = doRequest(t, router, http.MethodPut, "/availability/clinic/exceptions",
		`{"date":"2026-01-07","closed":false,"overrides":[{"start":"09:00","end":"13:00"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/availability/clinic/days/2026-01-07", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var day DayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	require.Len(t, day.Hours, 1)
	assert.Equal(t, "13:00", day.Hours[0].End.String())

	// And a closure empties the day entirely.
	rec = doRequest(t, router, http.MethodPut, "/availability/clinic/exceptions",
		`{"date":"2026-01-07","closed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/availability/clinic/days/2026-01-07", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	assert.False(t, day.Open)
	assert.Empty(t, day.Hours)

	// Deleting the exception restores the weekly pattern.
	rec = doRequest(t, router, http.MethodDelete, "/availability/clinic/exceptions/2026-01-07", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/availability/clinic/days/2026-01-07", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	assert.True(t, day.Open)
	require.Len(t, day.Hours, 1)
	assert.Equal(t, "17:00", day.Hours[0].End.String())
}

func TestSlotsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/clinic/hours/mon",
		`{"ranges":[{"start":"09:00","end":"12:00"},{"start":"13:00","end":"17:00"}]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/availability/clinic/days/2026-01-05/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 30, resp.SlotMinutes)
	require.Len(t, resp.Slots, 14)
	assert.Equal(t, "09:00", resp.Slots[0].String())
	assert.Equal(t, "16:30", resp.Slots[13].String())

	rec = doRequest(t, router, http.MethodGet, "/availability/clinic/days/2026-01-05/slots?limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "10:00", resp.Slots[2].String())
}

func TestUnknownRoomFallsBackToClinic(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/clinic/hours/mon",
		`{"ranges":[{"start":"09:00","end":"12:00"}]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// A well-formed room id with no override resolves like the clinic.
	unknown := uuid.New().String()
	rec = doRequest(t, router, http.MethodGet, "/availability/"+unknown+"/days/2026-01-05", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var day DayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	assert.True(t, day.Open)
}

func TestInvalidResourceAndDate(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/availability/not-a-room/days/2026-01-05", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/availability/clinic/days/05-01-2026", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCopyClinicHoursRequiresKnownRoom(t *testing.T) {
	router, repo, roomID := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/clinic/hours/mon",
		`{"ranges":[{"start":"09:00","end":"12:00"}]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/availability/rooms/"+uuid.NewString()+"/copy-clinic-hours", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/availability/rooms/"+roomID.String()+"/copy-clinic-hours", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	sched, ok := repo.weekly[roomID.String()]
	require.True(t, ok)
	assert.Equal(t, []availability.TimeRange{{Start: 540, End: 720}}, sched.RangesFor(availability.Monday))
}

func TestRemoveOverrideEndpoint(t *testing.T) {
	router, repo, roomID := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/"+roomID.String()+"/hours/tue",
		`{"ranges":[{"start":"10:00","end":"11:00"}]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, repo.weekly, roomID.String())

	rec = doRequest(t, router, http.MethodDelete, "/availability/rooms/"+roomID.String()+"/override", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, repo.weekly, roomID.String())
}

func TestRoomRegistryEndpoints(t *testing.T) {
	router, _, roomID := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []RoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = doRequest(t, router, http.MethodPost, "/rooms", `{"name":"Surgery 2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPatch, "/rooms/"+roomID.String(), `{"active":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var room RoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.False(t, room.Active)
}

func TestUpdateSettingsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/availability/settings",
		`{"timezone":"Europe/Berlin","slot_minutes":15}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/availability/settings",
		`{"timezone":"Europe/Berlin","slot_minutes":45}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/availability/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 15, resp.SlotMinutes)
}
