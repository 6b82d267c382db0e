package api

import (
	"github.com/google/uuid"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
)

type SettingsResponse struct {
	Timezone    string `json:"timezone"`
	SlotMinutes int    `json:"slot_minutes"`
}

type UpdateSettingsRequest struct {
	Timezone    string `json:"timezone"`
	SlotMinutes int    `json:"slot_minutes"`
}

type SetHoursRequest struct {
	Ranges []availability.TimeRange `json:"ranges"`
}

type ScheduleResponse struct {
	Resource   string                       `json:"resource"`
	Override   bool                         `json:"override"`
	Weekly     availability.WeeklySchedule  `json:"weekly"`
	Exceptions []availability.DateException `json:"exceptions"`
}

type DayResponse struct {
	Resource string                   `json:"resource"`
	Date     string                   `json:"date"`
	Open     bool                     `json:"open"`
	Hours    []availability.TimeRange `json:"hours"`
}

type SlotsResponse struct {
	Resource    string                     `json:"resource"`
	Date        string                     `json:"date"`
	SlotMinutes int                        `json:"slot_minutes"`
	Slots       []availability.MinuteOfDay `json:"slots"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type SetRoomActiveRequest struct {
	Active bool `json:"active"`
}

type RoomResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
