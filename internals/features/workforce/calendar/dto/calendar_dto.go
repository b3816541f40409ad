// internals/features/workforce/calendar/dto/calendar_dto.go
package dto

import (
	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type CalendarQuery struct {
	From string `query:"from" validate:"required,datetime=2006-01-02"`
	To   string `query:"to"   validate:"required,datetime=2006-01-02"`
}

type Assignee struct {
	AssignmentID uuid.UUID `json:"shift_assignment_id"`
	StaffID      uuid.UUID `json:"staff_id"`
	Name         string    `json:"name,omitempty"`
}

// ShiftDayStatus is one shift on one concrete day: the staffing target, the
// committed headcount and who is on it.
type ShiftDayStatus struct {
	ShiftID       uuid.UUID  `json:"shift_id"`
	ScheduleID    uuid.UUID  `json:"schedule_id"`
	ScheduleName  string     `json:"schedule_name"`
	ShiftName     string     `json:"shift_name"`
	StartTime     string     `json:"shift_start_time"`
	EndTime       string     `json:"shift_end_time"`
	Color         *string    `json:"shift_color,omitempty"`
	Status        string     `json:"schedule_status"`
	AssignedCount int        `json:"assigned_count"`
	RequiredCount int        `json:"required_count"`
	Assignees     []Assignee `json:"assignees"`
}

// DailyStaffing maps "2006-01-02" → statuses for that day.
type DailyStaffing map[string][]ShiftDayStatus

type ShiftDaySummaryResponse struct {
	ShiftID       uuid.UUID   `json:"shift_id"`
	Date          string      `json:"date"`
	AssignedCount int         `json:"assigned_count"`
	RequiredCount int         `json:"required_count"`
	StaffIDs      []uuid.UUID `json:"staff_ids"`
}
