// internals/features/workforce/schedules/model/shift_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftModel is an undated time-of-day template; the schedule's date range
// replicates it over calendar days. Only assignments are dated.
type ShiftModel struct {
	ShiftID         uuid.UUID `gorm:"column:shift_id;type:uuid;default:gen_random_uuid();primaryKey" json:"shift_id"`
	ShiftScheduleID uuid.UUID `gorm:"column:shift_schedule_id;type:uuid;not null" json:"shift_schedule_id"`

	ShiftName string `gorm:"column:shift_name;type:varchar(80);not null" json:"shift_name"`

	// "HH:MM"; end <= start means the shift wraps past midnight
	ShiftStartTime string `gorm:"column:shift_start_time;type:varchar(5);not null" json:"shift_start_time"`
	ShiftEndTime   string `gorm:"column:shift_end_time;type:varchar(5);not null"   json:"shift_end_time"`

	// 1..shift_count, contiguous per schedule (unique index in migration 0001)
	ShiftOrder         int `gorm:"column:shift_order;not null" json:"shift_order"`
	ShiftRequiredStaff int `gorm:"column:shift_required_staff;not null" json:"shift_required_staff"`

	// presentation only
	ShiftColor *string `gorm:"column:shift_color;type:varchar(16)" json:"shift_color,omitempty"`

	ShiftCreatedAt time.Time `gorm:"column:shift_created_at;type:timestamptz;not null;autoCreateTime" json:"shift_created_at"`
	ShiftUpdatedAt time.Time `gorm:"column:shift_updated_at;type:timestamptz;not null;autoUpdateTime" json:"shift_updated_at"`
}

func (ShiftModel) TableName() string { return "shifts" }

// IsOvernight reports whether the slot wraps past midnight.
func (m *ShiftModel) IsOvernight() bool {
	return m.ShiftEndTime <= m.ShiftStartTime
}
