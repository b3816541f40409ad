// internals/features/workforce/schedules/model/schedule_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScheduleStatusEnum mirrors the schedule_status check constraint in Postgres.
type ScheduleStatusEnum string

const (
	ScheduleDraft     ScheduleStatusEnum = "draft"
	SchedulePublished ScheduleStatusEnum = "published"
	ScheduleArchived  ScheduleStatusEnum = "archived"
)

type ScheduleModel struct {
	ScheduleID uuid.UUID `gorm:"column:schedule_id;type:uuid;default:gen_random_uuid();primaryKey" json:"schedule_id"`

	// name is unique per department/facility while alive (case-insensitive,
	// partial index in migration 0001)
	ScheduleName string `gorm:"column:schedule_name;type:varchar(120);not null" json:"schedule_name"`

	// tenant scope
	ScheduleDepartmentID uuid.UUID `gorm:"column:schedule_department_id;type:uuid;not null" json:"schedule_department_id"`
	ScheduleFacilityID   uuid.UUID `gorm:"column:schedule_facility_id;type:uuid;not null"   json:"schedule_facility_id"`
	ScheduleWorkspaceID  uuid.UUID `gorm:"column:schedule_workspace_id;type:uuid;not null"  json:"schedule_workspace_id"`

	// closed date interval the shift template is replicated over
	ScheduleStartDate time.Time `gorm:"column:schedule_start_date;type:date;not null" json:"schedule_start_date"`
	ScheduleEndDate   time.Time `gorm:"column:schedule_end_date;type:date;not null"   json:"schedule_end_date"`

	ScheduleShiftCount int                `gorm:"column:schedule_shift_count;not null" json:"schedule_shift_count"`
	ScheduleStatus     ScheduleStatusEnum `gorm:"column:schedule_status;type:varchar(12);not null;default:'draft'" json:"schedule_status"`

	// template frozen at publish time
	ScheduleShiftSnapshot datatypes.JSON `gorm:"column:schedule_shift_snapshot;type:jsonb" json:"schedule_shift_snapshot,omitempty"`
	SchedulePublishedAt   *time.Time     `gorm:"column:schedule_published_at;type:timestamptz" json:"schedule_published_at,omitempty"`

	// audit
	ScheduleCreatedBy uuid.UUID      `gorm:"column:schedule_created_by;type:uuid;not null" json:"schedule_created_by"`
	ScheduleCreatedAt time.Time      `gorm:"column:schedule_created_at;type:timestamptz;not null;autoCreateTime" json:"schedule_created_at"`
	ScheduleUpdatedAt time.Time      `gorm:"column:schedule_updated_at;type:timestamptz;not null;autoUpdateTime" json:"schedule_updated_at"`
	ScheduleDeletedAt gorm.DeletedAt `gorm:"column:schedule_deleted_at;index" json:"schedule_deleted_at,omitempty"`
}

func (ScheduleModel) TableName() string { return "schedules" }

func (m *ScheduleModel) IsDraft() bool     { return m.ScheduleStatus == ScheduleDraft }
func (m *ScheduleModel) IsPublished() bool { return m.ScheduleStatus == SchedulePublished }
func (m *ScheduleModel) IsArchived() bool  { return m.ScheduleStatus == ScheduleArchived }

// ContainsDate reports whether d falls inside [start_date, end_date].
func (m *ScheduleModel) ContainsDate(d time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	return !day.Before(m.ScheduleStartDate.Truncate(24*time.Hour)) &&
		!day.After(m.ScheduleEndDate.Truncate(24*time.Hour))
}
