// internals/features/workforce/assignments/repository/assignment_repo.go
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	m "shiftboard_backend/internals/features/workforce/assignments/model"
	helper "shiftboard_backend/internals/helpers"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

// AssignmentRepository is the only contended store in the engine: rows for a
// given (shift_id, date) are serialized by InsertGuarded, everything else is
// plain reads and single-row deletes.
type AssignmentRepository interface {
	// InsertGuarded re-counts the live (shift, date) occupancy inside a
	// transaction that holds a pg advisory lock keyed on that pair, then
	// inserts. Returns ErrCapacityExceeded or ErrDuplicateAssignment.
	InsertGuarded(ctx context.Context, a *m.ShiftAssignmentModel, requiredStaff int) error
	// Delete removes the row and returns it so the caller can invalidate the
	// (shift, date) cache entry. gorm.ErrRecordNotFound when already gone.
	Delete(ctx context.Context, id uuid.UUID) (*m.ShiftAssignmentModel, error)
	CountForShiftDate(ctx context.Context, shiftID uuid.UUID, date time.Time) (int64, error)
	ListForShiftDate(ctx context.Context, shiftID uuid.UUID, date time.Time) ([]m.ShiftAssignmentModel, error)
	ListForShiftsInRange(ctx context.Context, shiftIDs []uuid.UUID, from, to time.Time) ([]m.ShiftAssignmentModel, error)
	ListForStaffInRange(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]m.ShiftAssignmentModel, error)
	CountsByShift(ctx context.Context, shiftIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func mapAssignmentConstraint(err error) error {
	if err == nil {
		return nil
	}
	if helper.PGSQLState(err) == "23505" && strings.Contains(err.Error(), "uq_shift_assignments_triple") {
		return pkgerrors.ErrDuplicateAssignment
	}
	return err
}

func (r *assignmentRepo) InsertGuarded(ctx context.Context, a *m.ShiftAssignmentModel, requiredStaff int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize writers on this (shift, date) pair. A conditional insert
		// alone is not enough under READ COMMITTED: two in-flight inserts
		// both count the pre-image and both pass. The xact lock is released
		// at commit/rollback; distinct pairs hash to distinct keys and stay
		// fully concurrent.
		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(hashtextextended(?::text || ':' || ?::text, 0))",
			a.ShiftAssignmentShiftID, a.ShiftAssignmentDate.Format("2006-01-02"),
		).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&m.ShiftAssignmentModel{}).
			Where("shift_assignment_shift_id = ? AND shift_assignment_date = ?",
				a.ShiftAssignmentShiftID, a.ShiftAssignmentDate).
			Count(&n).Error; err != nil {
			return err
		}
		if n >= int64(requiredStaff) {
			return pkgerrors.ErrCapacityExceeded
		}

		return mapAssignmentConstraint(tx.Create(a).Error)
	})
}

func (r *assignmentRepo) Delete(ctx context.Context, id uuid.UUID) (*m.ShiftAssignmentModel, error) {
	var existing m.ShiftAssignmentModel
	err := r.db.WithContext(ctx).
		Where("shift_assignment_id = ?", id).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).
		Where("shift_assignment_id = ?", id).
		Delete(&m.ShiftAssignmentModel{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// raced with a concurrent unassign
		return nil, gorm.ErrRecordNotFound
	}
	return &existing, nil
}

func (r *assignmentRepo) CountForShiftDate(ctx context.Context, shiftID uuid.UUID, date time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&m.ShiftAssignmentModel{}).
		Where("shift_assignment_shift_id = ? AND shift_assignment_date = ?", shiftID, date).
		Count(&n).Error
	return n, err
}

func (r *assignmentRepo) ListForShiftDate(ctx context.Context, shiftID uuid.UUID, date time.Time) ([]m.ShiftAssignmentModel, error) {
	var rows []m.ShiftAssignmentModel
	err := r.db.WithContext(ctx).
		Where("shift_assignment_shift_id = ? AND shift_assignment_date = ?", shiftID, date).
		Order("shift_assignment_created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) ListForShiftsInRange(ctx context.Context, shiftIDs []uuid.UUID, from, to time.Time) ([]m.ShiftAssignmentModel, error) {
	if len(shiftIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(shiftIDs))
	for _, id := range shiftIDs {
		ids = append(ids, id.String())
	}
	var rows []m.ShiftAssignmentModel
	err := r.db.WithContext(ctx).
		Where("shift_assignment_shift_id = ANY(?)", pq.Array(ids)).
		Where("shift_assignment_date BETWEEN ? AND ?", from, to).
		Order("shift_assignment_date ASC, shift_assignment_created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) ListForStaffInRange(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]m.ShiftAssignmentModel, error) {
	var rows []m.ShiftAssignmentModel
	err := r.db.WithContext(ctx).
		Where("shift_assignment_staff_id = ?", staffID).
		Where("shift_assignment_date BETWEEN ? AND ?", from, to).
		Order("shift_assignment_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) CountsByShift(ctx context.Context, shiftIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(shiftIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	ids := make([]string, 0, len(shiftIDs))
	for _, id := range shiftIDs {
		ids = append(ids, id.String())
	}
	type row struct {
		ShiftID uuid.UUID `gorm:"column:shift_assignment_shift_id"`
		Total   int64     `gorm:"column:total"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&m.ShiftAssignmentModel{}).
		Select("shift_assignment_shift_id, COUNT(*) AS total").
		Where("shift_assignment_shift_id = ANY(?)", pq.Array(ids)).
		Group("shift_assignment_shift_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.ShiftID] = r.Total
	}
	return out, nil
}
