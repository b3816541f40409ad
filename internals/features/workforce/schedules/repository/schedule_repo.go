// internals/features/workforce/schedules/repository/schedule_repo.go
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	m "shiftboard_backend/internals/features/workforce/schedules/model"
	helper "shiftboard_backend/internals/helpers"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

// ScheduleRepository is the schedule + shift-template data access contract.
// Cascades (shifts, assignments) run inside one transaction here so the
// service layer never observes a half-deleted schedule.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *m.ScheduleModel, shifts []m.ShiftModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*m.ScheduleModel, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID, status *string, limit, offset int) ([]m.ScheduleModel, int64, error)
	ListActiveIntersecting(ctx context.Context, departmentID uuid.UUID, from, to time.Time) ([]m.ScheduleModel, error)
	NameTaken(ctx context.Context, departmentID, facilityID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, schedule *m.ScheduleModel) error
	ReplaceShifts(ctx context.Context, scheduleID uuid.UUID, shifts []m.ShiftModel) error
	Delete(ctx context.Context, schedule *m.ScheduleModel) error
	HasAssignmentsOutside(ctx context.Context, scheduleID uuid.UUID, from, to time.Time) (bool, error)
}

type ShiftRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*m.ShiftModel, error)
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]m.ShiftModel, error)
	ListByScheduleIDs(ctx context.Context, scheduleIDs []uuid.UUID) ([]m.ShiftModel, error)
}

// mapScheduleConstraint translates the unique-index violation raised by the
// scoped-name index into the domain sentinel. The pre-check in the service is
// a UX fast path; this mapping is the authoritative outcome.
func mapScheduleConstraint(err error) error {
	if err == nil {
		return nil
	}
	if helper.PGSQLState(err) == "23505" && strings.Contains(err.Error(), "uq_schedules_scope_name") {
		return pkgerrors.ErrDuplicateName
	}
	return err
}

/* =========================
   Schedule repository
   ========================= */

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *m.ScheduleModel, shifts []m.ShiftModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(schedule).Error; err != nil {
			return mapScheduleConstraint(err)
		}
		for i := range shifts {
			shifts[i].ShiftScheduleID = schedule.ScheduleID
		}
		if len(shifts) > 0 {
			if err := tx.Create(&shifts).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *scheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*m.ScheduleModel, error) {
	var schedule m.ScheduleModel
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) ListByDepartment(ctx context.Context, departmentID uuid.UUID, status *string, limit, offset int) ([]m.ScheduleModel, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&m.ScheduleModel{}).
		Where("schedule_department_id = ?", departmentID)
	if status != nil && *status != "" {
		q = q.Where("schedule_status = ?", *status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var schedules []m.ScheduleModel
	err := q.Order("schedule_start_date DESC, schedule_created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&schedules).Error
	if err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

func (r *scheduleRepo) ListActiveIntersecting(ctx context.Context, departmentID uuid.UUID, from, to time.Time) ([]m.ScheduleModel, error) {
	var schedules []m.ScheduleModel
	err := r.db.WithContext(ctx).
		Where("schedule_department_id = ?", departmentID).
		Where("schedule_status IN ?", []string{string(m.ScheduleDraft), string(m.SchedulePublished)}).
		Where("schedule_start_date <= ? AND schedule_end_date >= ?", to, from).
		Order("schedule_start_date ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepo) NameTaken(ctx context.Context, departmentID, facilityID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&m.ScheduleModel{}).
		Where("schedule_department_id = ? AND schedule_facility_id = ?", departmentID, facilityID).
		Where("lower(schedule_name) = lower(?)", strings.TrimSpace(name))
	if excludeID != nil {
		q = q.Where("schedule_id <> ?", *excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *m.ScheduleModel) error {
	return mapScheduleConstraint(r.db.WithContext(ctx).Save(schedule).Error)
}

func (r *scheduleRepo) ReplaceShifts(ctx context.Context, scheduleID uuid.UUID, shifts []m.ShiftModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// assignments of the old template go with it
		if err := tx.Exec(
			`DELETE FROM shift_assignments
			  WHERE shift_assignment_shift_id IN (SELECT shift_id FROM shifts WHERE shift_schedule_id = ?)`,
			scheduleID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("shift_schedule_id = ?", scheduleID).Delete(&m.ShiftModel{}).Error; err != nil {
			return err
		}
		if len(shifts) > 0 {
			if err := tx.Create(&shifts).Error; err != nil {
				return err
			}
		}
		return tx.Model(&m.ScheduleModel{}).
			Where("schedule_id = ?", scheduleID).
			Update("schedule_shift_count", len(shifts)).Error
	})
}

func (r *scheduleRepo) Delete(ctx context.Context, schedule *m.ScheduleModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM shift_assignments
			  WHERE shift_assignment_shift_id IN (SELECT shift_id FROM shifts WHERE shift_schedule_id = ?)`,
			schedule.ScheduleID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("shift_schedule_id = ?", schedule.ScheduleID).Delete(&m.ShiftModel{}).Error; err != nil {
			return err
		}
		// soft delete: frees the scoped-name unique index (partial, alive rows only)
		return tx.Delete(schedule).Error
	})
}

func (r *scheduleRepo) HasAssignmentsOutside(ctx context.Context, scheduleID uuid.UUID, from, to time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("shift_assignments").
		Joins("JOIN shifts ON shifts.shift_id = shift_assignments.shift_assignment_shift_id").
		Where("shifts.shift_schedule_id = ?", scheduleID).
		Where("shift_assignment_date < ? OR shift_assignment_date > ?", from, to).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

/* =========================
   Shift repository
   ========================= */

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) GetByID(ctx context.Context, id uuid.UUID) (*m.ShiftModel, error) {
	var shift m.ShiftModel
	if err := r.db.WithContext(ctx).Where("shift_id = ?", id).First(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]m.ShiftModel, error) {
	var shifts []m.ShiftModel
	err := r.db.WithContext(ctx).
		Where("shift_schedule_id = ?", scheduleID).
		Order("shift_order ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *shiftRepo) ListByScheduleIDs(ctx context.Context, scheduleIDs []uuid.UUID) ([]m.ShiftModel, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}
	var shifts []m.ShiftModel
	err := r.db.WithContext(ctx).
		Where("shift_schedule_id IN ?", scheduleIDs).
		Order("shift_schedule_id, shift_order ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}
