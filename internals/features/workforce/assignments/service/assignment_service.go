// internals/features/workforce/assignments/service/assignment_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftboard_backend/internals/cache"
	"shiftboard_backend/internals/features/leave"
	d "shiftboard_backend/internals/features/workforce/assignments/dto"
	m "shiftboard_backend/internals/features/workforce/assignments/model"
	"shiftboard_backend/internals/features/workforce/assignments/repository"
	schedRepo "shiftboard_backend/internals/features/workforce/schedules/repository"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrScheduleArchived   = errors.New("schedule is archived and read-only")
	ErrVacationConflict   = errors.New("staff member is on leave for this date")
	ErrDateOutOfRange     = errors.New("date falls outside the schedule date range")
)

// AssignmentService is the capacity-enforcing core. The pre-checks here are
// the UX layer; the repository's guarded insert (advisory lock + unique
// index) is the invariant's authoritative guard.
type AssignmentService interface {
	Assign(ctx context.Context, req *d.CreateAssignmentRequest, assignedBy uuid.UUID) (*d.AssignmentResponse, error)
	Unassign(ctx context.Context, assignmentID uuid.UUID) error
}

type assignmentService struct {
	shifts      schedRepo.ShiftRepository
	schedules   schedRepo.ScheduleRepository
	assignments repository.AssignmentRepository
	oracle      leave.VacationOracle
	staffing    cache.StaffingCache
	logger      *zap.Logger
}

func NewAssignmentService(
	shifts schedRepo.ShiftRepository,
	schedules schedRepo.ScheduleRepository,
	assignments repository.AssignmentRepository,
	oracle leave.VacationOracle,
	staffing cache.StaffingCache,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		shifts:      shifts,
		schedules:   schedules,
		assignments: assignments,
		oracle:      oracle,
		staffing:    staffing,
		logger:      logger,
	}
}

/* =========================
   Assign
   ========================= */

func (s *assignmentService) Assign(ctx context.Context, req *d.CreateAssignmentRequest, assignedBy uuid.UUID) (*d.AssignmentResponse, error) {
	date, err := time.ParseInLocation(d.DateLayout, req.Date, time.UTC)
	if err != nil {
		return nil, pkgerrors.Validationf("invalid shift_assignment_date: %v", err)
	}

	shift, err := s.shifts.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	schedule, err := s.schedules.GetByID(ctx, shift.ShiftScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// schedule deleted under us; the shift row is stale
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	if schedule.IsArchived() {
		return nil, ErrScheduleArchived
	}
	if !schedule.ContainsDate(date) {
		return nil, ErrDateOutOfRange
	}

	// Fail closed: assigning over an unknown vacation conflict is worse than
	// blocking, so an oracle failure refuses the assignment outright.
	conflicts, err := s.oracle.ConflictsOn(ctx, date)
	if err != nil {
		s.logger.Warn("vacation oracle unavailable, refusing assignment", zap.Error(err))
		return nil, pkgerrors.ErrUpstreamUnavailable
	}
	for _, c := range conflicts {
		if c.StaffID == req.StaffID && c.Covers(date) {
			return nil, ErrVacationConflict
		}
	}

	// live pre-check (fast path only, the guarded insert re-checks)
	count, err := s.assignments.CountForShiftDate(ctx, req.ShiftID, date)
	if err != nil {
		return nil, err
	}
	if count >= int64(shift.ShiftRequiredStaff) {
		return nil, pkgerrors.ErrCapacityExceeded
	}

	a := &m.ShiftAssignmentModel{
		ShiftAssignmentShiftID:    req.ShiftID,
		ShiftAssignmentStaffID:    req.StaffID,
		ShiftAssignmentDate:       date,
		ShiftAssignmentAssignedBy: assignedBy,
	}
	if err := s.assignments.InsertGuarded(ctx, a, shift.ShiftRequiredStaff); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrCapacityExceeded),
			errors.Is(err, pkgerrors.ErrDuplicateAssignment):
			// expected under concurrent supervisors, not worth an error line
			s.logger.Info("assignment rejected by storage guard",
				zap.String("shift_id", req.ShiftID.String()),
				zap.String("date", req.Date),
				zap.Error(err))
			return nil, err
		default:
			s.logger.Error("assignment insert failed", zap.Error(err))
			return nil, err
		}
	}

	s.invalidateStaffing(ctx, req.ShiftID, req.Date)

	resp := d.FromModel(a)
	return &resp, nil
}

/* =========================
   Unassign (idempotent)
   ========================= */

func (s *assignmentService) Unassign(ctx context.Context, assignmentID uuid.UUID) error {
	deleted, err := s.assignments.Delete(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("unassign failed", zap.Error(err))
		return err
	}
	s.invalidateStaffing(ctx, deleted.ShiftAssignmentShiftID, deleted.ShiftAssignmentDate.Format(d.DateLayout))
	return nil
}

// invalidateStaffing drops the cached summary for (shift, date) so dashboards
// reflect the mutation. Best effort: a cache failure never fails the write.
func (s *assignmentService) invalidateStaffing(ctx context.Context, shiftID uuid.UUID, date string) {
	if err := s.staffing.Invalidate(ctx, shiftID, date); err != nil {
		s.logger.Warn("staffing cache invalidation failed",
			zap.String("shift_id", shiftID.String()),
			zap.String("date", date),
			zap.Error(err))
	}
}
