// internals/features/workforce/schedules/dto/schedule_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	m "shiftboard_backend/internals/features/workforce/schedules/model"
)

const DateLayout = "2006-01-02"

/* =========================================================
   0) helpers
   ========================================================= */

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

/* =========================================================
   1) REQUEST DTO
   ========================================================= */

type ShiftInput struct {
	Name          string  `json:"shift_name"           validate:"required,max=80"`
	StartTime     string  `json:"shift_start_time"     validate:"required,datetime=15:04"`
	EndTime       string  `json:"shift_end_time"       validate:"required,datetime=15:04"`
	Order         int     `json:"shift_order"          validate:"required,min=1,max=3"`
	RequiredStaff int     `json:"shift_required_staff" validate:"required,min=1"`
	Color         *string `json:"shift_color"          validate:"omitempty,max=16"`
}

type CreateScheduleRequest struct {
	Name      string       `json:"schedule_name"       validate:"required,max=120"`
	StartDate string       `json:"schedule_start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string       `json:"schedule_end_date"   validate:"required,datetime=2006-01-02"`
	Shifts    []ShiftInput `json:"shifts"              validate:"required,min=1,max=3,dive"`
}

func (r *CreateScheduleRequest) ToModel(departmentID, facilityID, workspaceID, createdBy uuid.UUID) (*m.ScheduleModel, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return nil, err
	}
	return &m.ScheduleModel{
		ScheduleName:         strings.TrimSpace(r.Name),
		ScheduleDepartmentID: departmentID,
		ScheduleFacilityID:   facilityID,
		ScheduleWorkspaceID:  workspaceID,
		ScheduleStartDate:    start,
		ScheduleEndDate:      end,
		ScheduleShiftCount:   len(r.Shifts),
		ScheduleStatus:       m.ScheduleDraft,
		ScheduleCreatedBy:    createdBy,
	}, nil
}

func (r *CreateScheduleRequest) ShiftsToModels() []m.ShiftModel {
	out := make([]m.ShiftModel, 0, len(r.Shifts))
	for _, s := range r.Shifts {
		out = append(out, m.ShiftModel{
			ShiftName:          strings.TrimSpace(s.Name),
			ShiftStartTime:     s.StartTime,
			ShiftEndTime:       s.EndTime,
			ShiftOrder:         s.Order,
			ShiftRequiredStaff: s.RequiredStaff,
			ShiftColor:         trimPtr(s.Color),
		})
	}
	return out
}

// UpdateScheduleRequest: PATCH, all fields pointer-based. Shift edits go
// through the dedicated bulk-replace endpoint, not here.
type UpdateScheduleRequest struct {
	Name      *string `json:"schedule_name"       validate:"omitempty,max=120"`
	StartDate *string `json:"schedule_start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"schedule_end_date"   validate:"omitempty,datetime=2006-01-02"`
}

func (r *UpdateScheduleRequest) Apply(existing *m.ScheduleModel) error {
	if v := trimPtr(r.Name); v != nil {
		existing.ScheduleName = *v
	}
	if r.StartDate != nil {
		start, err := ParseDate(*r.StartDate)
		if err != nil {
			return err
		}
		existing.ScheduleStartDate = start
	}
	if r.EndDate != nil {
		end, err := ParseDate(*r.EndDate)
		if err != nil {
			return err
		}
		existing.ScheduleEndDate = end
	}
	return nil
}

type ReplaceShiftsRequest struct {
	Shifts []ShiftInput `json:"shifts" validate:"required,min=1,max=3,dive"`
}

func (r *ReplaceShiftsRequest) ToModels(scheduleID uuid.UUID) []m.ShiftModel {
	out := make([]m.ShiftModel, 0, len(r.Shifts))
	for _, s := range r.Shifts {
		out = append(out, m.ShiftModel{
			ShiftScheduleID:    scheduleID,
			ShiftName:          strings.TrimSpace(s.Name),
			ShiftStartTime:     s.StartTime,
			ShiftEndTime:       s.EndTime,
			ShiftOrder:         s.Order,
			ShiftRequiredStaff: s.RequiredStaff,
			ShiftColor:         trimPtr(s.Color),
		})
	}
	return out
}

type ListScheduleQuery struct {
	Status *string `query:"status" validate:"omitempty,oneof=draft published archived"`
}

/* =========================================================
   2) RESPONSE DTO
   ========================================================= */

type ShiftResponse struct {
	ShiftID       uuid.UUID `json:"shift_id"`
	ScheduleID    uuid.UUID `json:"schedule_id"`
	Name          string    `json:"shift_name"`
	StartTime     string    `json:"shift_start_time"`
	EndTime       string    `json:"shift_end_time"`
	Order         int       `json:"shift_order"`
	RequiredStaff int       `json:"shift_required_staff"`
	Color         *string   `json:"shift_color,omitempty"`
	AssignedTotal int64     `json:"assigned_total"`
}

func ShiftFromModel(s m.ShiftModel, assignedTotal int64) ShiftResponse {
	return ShiftResponse{
		ShiftID:       s.ShiftID,
		ScheduleID:    s.ShiftScheduleID,
		Name:          s.ShiftName,
		StartTime:     s.ShiftStartTime,
		EndTime:       s.ShiftEndTime,
		Order:         s.ShiftOrder,
		RequiredStaff: s.ShiftRequiredStaff,
		Color:         s.ShiftColor,
		AssignedTotal: assignedTotal,
	}
}

type ScheduleResponse struct {
	ScheduleID   uuid.UUID       `json:"schedule_id"`
	Name         string          `json:"schedule_name"`
	DepartmentID uuid.UUID       `json:"schedule_department_id"`
	FacilityID   uuid.UUID       `json:"schedule_facility_id"`
	WorkspaceID  uuid.UUID       `json:"schedule_workspace_id"`
	StartDate    string          `json:"schedule_start_date"`
	EndDate      string          `json:"schedule_end_date"`
	ShiftCount   int             `json:"schedule_shift_count"`
	Status       string          `json:"schedule_status"`
	PublishedAt  *time.Time      `json:"schedule_published_at,omitempty"`
	CreatedBy    uuid.UUID       `json:"schedule_created_by"`
	CreatedAt    time.Time       `json:"schedule_created_at"`
	Shifts       []ShiftResponse `json:"shifts,omitempty"`
}

func FromModel(sc *m.ScheduleModel, shifts []ShiftResponse) ScheduleResponse {
	return ScheduleResponse{
		ScheduleID:   sc.ScheduleID,
		Name:         sc.ScheduleName,
		DepartmentID: sc.ScheduleDepartmentID,
		FacilityID:   sc.ScheduleFacilityID,
		WorkspaceID:  sc.ScheduleWorkspaceID,
		StartDate:    sc.ScheduleStartDate.Format(DateLayout),
		EndDate:      sc.ScheduleEndDate.Format(DateLayout),
		ShiftCount:   sc.ScheduleShiftCount,
		Status:       string(sc.ScheduleStatus),
		PublishedAt:  sc.SchedulePublishedAt,
		CreatedBy:    sc.ScheduleCreatedBy,
		CreatedAt:    sc.ScheduleCreatedAt,
		Shifts:       shifts,
	}
}
