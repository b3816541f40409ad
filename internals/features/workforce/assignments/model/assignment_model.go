// internals/features/workforce/assignments/model/assignment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftAssignmentModel binds one staff member to one shift on one concrete
// date. Rows are never updated in place; a reassignment is a delete+create
// pair. Hard deletes only; a soft-deleted row would block the unique
// (shift, staff, date) index on reassignment.
type ShiftAssignmentModel struct {
	ShiftAssignmentID      uuid.UUID `gorm:"column:shift_assignment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"shift_assignment_id"`
	ShiftAssignmentShiftID uuid.UUID `gorm:"column:shift_assignment_shift_id;type:uuid;not null" json:"shift_assignment_shift_id"`
	ShiftAssignmentStaffID uuid.UUID `gorm:"column:shift_assignment_staff_id;type:uuid;not null" json:"shift_assignment_staff_id"`

	ShiftAssignmentDate time.Time `gorm:"column:shift_assignment_date;type:date;not null" json:"shift_assignment_date"`

	// audit
	ShiftAssignmentAssignedBy uuid.UUID `gorm:"column:shift_assignment_assigned_by;type:uuid;not null" json:"shift_assignment_assigned_by"`
	ShiftAssignmentCreatedAt  time.Time `gorm:"column:shift_assignment_created_at;type:timestamptz;not null;autoCreateTime" json:"shift_assignment_created_at"`
}

func (ShiftAssignmentModel) TableName() string { return "shift_assignments" }
