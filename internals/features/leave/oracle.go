// internals/features/leave/oracle.go
//
// Read-only view over the leave-management subsystem. Only leave whose status
// is still blocking (approved, or pending at an escalated tier) counts as a
// conflict; rejected/cancelled leave never blocks an assignment.
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusApproved          = "approved"
	StatusDepartmentPending = "department_pending"
	StatusFacilityPending   = "facility_pending"
	StatusWorkspacePending  = "workspace_pending"
	StatusRejected          = "rejected"
	StatusCancelled         = "cancelled"
)

// BlockingStatuses is the hard-conflict whitelist.
var BlockingStatuses = []string{
	StatusApproved,
	StatusDepartmentPending,
	StatusFacilityPending,
	StatusWorkspacePending,
}

type Conflict struct {
	StaffID   uuid.UUID `gorm:"column:leave_request_staff_id"   json:"staff_id"`
	StartDate time.Time `gorm:"column:leave_request_start_date" json:"start_date"`
	EndDate   time.Time `gorm:"column:leave_request_end_date"   json:"end_date"`
	Status    string    `gorm:"column:leave_request_status"     json:"status"`
}

// Covers reports whether the conflict interval contains the given day.
func (c Conflict) Covers(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(c.StartDate.Truncate(24*time.Hour)) && !d.After(c.EndDate.Truncate(24*time.Hour))
}

// VacationOracle returns blocking leave intervals covering a date.
type VacationOracle interface {
	ConflictsOn(ctx context.Context, date time.Time) ([]Conflict, error)
}

type gormVacationOracle struct {
	db *gorm.DB
}

func NewVacationOracle(db *gorm.DB) VacationOracle {
	return &gormVacationOracle{db: db}
}

func (o *gormVacationOracle) ConflictsOn(ctx context.Context, date time.Time) ([]Conflict, error) {
	var conflicts []Conflict
	err := o.db.WithContext(ctx).
		Table("leave_requests").
		Select("leave_request_staff_id, leave_request_start_date, leave_request_end_date, leave_request_status").
		Where("leave_request_status = ANY(?)", pq.Array(BlockingStatuses)).
		Where("leave_request_start_date <= ? AND leave_request_end_date >= ?", date, date).
		Scan(&conflicts).Error
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}
