// internals/features/workforce/schedules/service/schedule_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	d "shiftboard_backend/internals/features/workforce/schedules/dto"
	m "shiftboard_backend/internals/features/workforce/schedules/model"
	"shiftboard_backend/internals/features/workforce/schedules/repository"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

/* =========================
   Errors
   ========================= */

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrScheduleNotDraft  = errors.New("schedule is not in draft status")
	ErrSchedulePublished = errors.New("schedule is already published")
	ErrScheduleArchived  = errors.New("schedule is archived")
)

func validationf(format string, args ...any) error {
	return pkgerrors.Validationf(format, args...)
}

/* =========================
   Scope
   ========================= */

// Scope is the acting user's org context, passed explicitly into every call
// instead of being read from ambient session state.
type Scope struct {
	DepartmentID uuid.UUID
	FacilityID   uuid.UUID
	WorkspaceID  uuid.UUID
	UserID       uuid.UUID
}

/* =========================
   Service
   ========================= */

// AssignmentCounter is the slice of the assignment store the schedule list
// needs (per-shift totals). Implemented by the assignments repository.
type AssignmentCounter interface {
	CountsByShift(ctx context.Context, shiftIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type ScheduleService interface {
	Create(ctx context.Context, req *d.CreateScheduleRequest, scope Scope) (*d.ScheduleResponse, error)
	Get(ctx context.Context, id uuid.UUID, scope Scope) (*d.ScheduleResponse, error)
	List(ctx context.Context, scope Scope, status *string, limit, offset int) ([]d.ScheduleResponse, int64, error)
	Patch(ctx context.Context, id uuid.UUID, req *d.UpdateScheduleRequest, scope Scope) (*d.ScheduleResponse, error)
	ReplaceShifts(ctx context.Context, id uuid.UUID, req *d.ReplaceShiftsRequest, scope Scope) (*d.ScheduleResponse, error)
	Publish(ctx context.Context, id uuid.UUID, scope Scope) (*d.ScheduleResponse, error)
	Delete(ctx context.Context, id uuid.UUID, scope Scope) error
}

type scheduleService struct {
	schedules repository.ScheduleRepository
	shifts    repository.ShiftRepository
	counts    AssignmentCounter
	logger    *zap.Logger
}

func NewScheduleService(
	schedules repository.ScheduleRepository,
	shifts repository.ShiftRepository,
	counts AssignmentCounter,
	logger *zap.Logger,
) ScheduleService {
	return &scheduleService{schedules: schedules, shifts: shifts, counts: counts, logger: logger}
}

/* =========================
   Create
   ========================= */

func (s *scheduleService) Create(ctx context.Context, req *d.CreateScheduleRequest, scope Scope) (*d.ScheduleResponse, error) {
	schedule, err := req.ToModel(scope.DepartmentID, scope.FacilityID, scope.WorkspaceID, scope.UserID)
	if err != nil {
		return nil, validationf("invalid date: %v", err)
	}
	if schedule.ScheduleEndDate.Before(schedule.ScheduleStartDate) {
		return nil, validationf("schedule_start_date must not be after schedule_end_date")
	}
	shiftModels := req.ShiftsToModels()
	if err := validateShiftSet(shiftModels); err != nil {
		return nil, err
	}

	// UX fast path; the partial unique index is the authoritative guard.
	taken, err := s.schedules.NameTaken(ctx, scope.DepartmentID, scope.FacilityID, schedule.ScheduleName, nil)
	if err != nil {
		s.logger.Error("schedule name pre-check failed", zap.Error(err))
		return nil, err
	}
	if taken {
		return nil, pkgerrors.ErrDuplicateName
	}

	if err := s.schedules.Create(ctx, schedule, shiftModels); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateName) {
			// lost the check-then-insert race; expected steady-state outcome
			s.logger.Info("duplicate schedule name on insert",
				zap.String("name", schedule.ScheduleName),
				zap.String("department_id", scope.DepartmentID.String()))
			return nil, err
		}
		s.logger.Error("schedule create failed", zap.Error(err))
		return nil, err
	}

	resp := d.FromModel(schedule, shiftResponses(shiftModels, nil))
	return &resp, nil
}

// validateShiftSet enforces the template invariants: 1-3 shifts, contiguous
// shift_order 1..n without duplicates, required_staff >= 1.
func validateShiftSet(shifts []m.ShiftModel) error {
	if len(shifts) < 1 || len(shifts) > 3 {
		return validationf("a schedule carries between 1 and 3 shifts, got %d", len(shifts))
	}
	seen := make(map[int]bool, len(shifts))
	for _, sh := range shifts {
		if sh.ShiftRequiredStaff < 1 {
			return validationf("shift %q: shift_required_staff must be at least 1", sh.ShiftName)
		}
		if sh.ShiftOrder < 1 || sh.ShiftOrder > len(shifts) {
			return validationf("shift %q: shift_order %d outside 1..%d", sh.ShiftName, sh.ShiftOrder, len(shifts))
		}
		if seen[sh.ShiftOrder] {
			return validationf("duplicate shift_order %d", sh.ShiftOrder)
		}
		seen[sh.ShiftOrder] = true
	}
	return nil
}

/* =========================
   Read
   ========================= */

func (s *scheduleService) Get(ctx context.Context, id uuid.UUID, scope Scope) (*d.ScheduleResponse, error) {
	schedule, err := s.getScoped(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	shifts, err := s.shifts.ListBySchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.countsFor(ctx, shifts)
	if err != nil {
		return nil, err
	}
	resp := d.FromModel(schedule, shiftResponses(shifts, counts))
	return &resp, nil
}

func (s *scheduleService) List(ctx context.Context, scope Scope, status *string, limit, offset int) ([]d.ScheduleResponse, int64, error) {
	schedules, total, err := s.schedules.ListByDepartment(ctx, scope.DepartmentID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uuid.UUID, 0, len(schedules))
	for _, sc := range schedules {
		ids = append(ids, sc.ScheduleID)
	}
	shifts, err := s.shifts.ListByScheduleIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	counts, err := s.countsFor(ctx, shifts)
	if err != nil {
		return nil, 0, err
	}

	bySchedule := make(map[uuid.UUID][]m.ShiftModel, len(schedules))
	for _, sh := range shifts {
		bySchedule[sh.ShiftScheduleID] = append(bySchedule[sh.ShiftScheduleID], sh)
	}

	out := make([]d.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		sc := schedules[i]
		out = append(out, d.FromModel(&sc, shiftResponses(bySchedule[sc.ScheduleID], counts)))
	}
	return out, total, nil
}

func (s *scheduleService) countsFor(ctx context.Context, shifts []m.ShiftModel) (map[uuid.UUID]int64, error) {
	if len(shifts) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(shifts))
	for _, sh := range shifts {
		ids = append(ids, sh.ShiftID)
	}
	return s.counts.CountsByShift(ctx, ids)
}

func shiftResponses(shifts []m.ShiftModel, counts map[uuid.UUID]int64) []d.ShiftResponse {
	out := make([]d.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		out = append(out, d.ShiftFromModel(sh, counts[sh.ShiftID]))
	}
	return out
}

/* =========================
   Patch (draft only)
   ========================= */

func (s *scheduleService) Patch(ctx context.Context, id uuid.UUID, req *d.UpdateScheduleRequest, scope Scope) (*d.ScheduleResponse, error) {
	schedule, err := s.getScoped(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if !schedule.IsDraft() {
		return nil, ErrScheduleNotDraft
	}

	oldName := schedule.ScheduleName
	if err := req.Apply(schedule); err != nil {
		return nil, validationf("invalid date: %v", err)
	}
	if schedule.ScheduleEndDate.Before(schedule.ScheduleStartDate) {
		return nil, validationf("schedule_start_date must not be after schedule_end_date")
	}

	if schedule.ScheduleName != oldName {
		taken, err := s.schedules.NameTaken(ctx, schedule.ScheduleDepartmentID, schedule.ScheduleFacilityID, schedule.ScheduleName, &schedule.ScheduleID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, pkgerrors.ErrDuplicateName
		}
	}

	if req.StartDate != nil || req.EndDate != nil {
		// narrowing the range must not orphan committed assignments
		outside, err := s.schedules.HasAssignmentsOutside(ctx, id, schedule.ScheduleStartDate, schedule.ScheduleEndDate)
		if err != nil {
			return nil, err
		}
		if outside {
			return nil, validationf("existing assignments fall outside the new date range")
		}
	}

	if err := s.schedules.Update(ctx, schedule); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateName) {
			return nil, err
		}
		s.logger.Error("schedule patch failed", zap.Error(err))
		return nil, err
	}

	shifts, err := s.shifts.ListBySchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.countsFor(ctx, shifts)
	if err != nil {
		return nil, err
	}
	resp := d.FromModel(schedule, shiftResponses(shifts, counts))
	return &resp, nil
}

/* =========================
   Bulk shift replace (draft only)
   ========================= */

func (s *scheduleService) ReplaceShifts(ctx context.Context, id uuid.UUID, req *d.ReplaceShiftsRequest, scope Scope) (*d.ScheduleResponse, error) {
	schedule, err := s.getScoped(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if !schedule.IsDraft() {
		return nil, ErrScheduleNotDraft
	}

	shiftModels := req.ToModels(id)
	if err := validateShiftSet(shiftModels); err != nil {
		return nil, err
	}

	if err := s.schedules.ReplaceShifts(ctx, id, shiftModels); err != nil {
		s.logger.Error("shift replace failed", zap.Error(err))
		return nil, err
	}
	schedule.ScheduleShiftCount = len(shiftModels)

	resp := d.FromModel(schedule, shiftResponses(shiftModels, nil))
	return &resp, nil
}

/* =========================
   Publish (draft → published, once)
   ========================= */

func (s *scheduleService) Publish(ctx context.Context, id uuid.UUID, scope Scope) (*d.ScheduleResponse, error) {
	schedule, err := s.getScoped(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	switch {
	case schedule.IsPublished():
		return nil, ErrSchedulePublished
	case schedule.IsArchived():
		return nil, ErrScheduleArchived
	}

	shifts, err := s.shifts.ListBySchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, validationf("cannot publish a schedule with no shifts")
	}
	for _, sh := range shifts {
		if sh.ShiftRequiredStaff < 1 {
			return nil, validationf("cannot publish: shift %q has required_staff below 1", sh.ShiftName)
		}
	}

	// freeze the template
	snapshot, err := json.Marshal(shifts)
	if err != nil {
		return nil, err
	}
	now := nowUTC()
	schedule.ScheduleStatus = m.SchedulePublished
	schedule.ScheduleShiftSnapshot = snapshot
	schedule.SchedulePublishedAt = &now

	if err := s.schedules.Update(ctx, schedule); err != nil {
		s.logger.Error("schedule publish failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("schedule published",
		zap.String("schedule_id", id.String()),
		zap.Int("shift_count", len(shifts)))

	counts, err := s.countsFor(ctx, shifts)
	if err != nil {
		return nil, err
	}
	resp := d.FromModel(schedule, shiftResponses(shifts, counts))
	return &resp, nil
}

/* =========================
   Delete (any status, cascades)
   ========================= */

func (s *scheduleService) Delete(ctx context.Context, id uuid.UUID, scope Scope) error {
	schedule, err := s.getScoped(ctx, id, scope)
	if err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, schedule); err != nil {
		s.logger.Error("schedule delete failed", zap.Error(err))
		return err
	}
	s.logger.Info("schedule deleted",
		zap.String("schedule_id", id.String()),
		zap.String("status", string(schedule.ScheduleStatus)))
	return nil
}

/* =========================
   internals
   ========================= */

func nowUTC() time.Time { return time.Now().UTC() }

// getScoped fetches the schedule and hides rows outside the caller's
// department (tenant isolation reads as not-found, never as forbidden).
func (s *scheduleService) getScoped(ctx context.Context, id uuid.UUID, scope Scope) (*m.ScheduleModel, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if schedule.ScheduleDepartmentID != scope.DepartmentID {
		return nil, ErrScheduleNotFound
	}
	return schedule, nil
}
