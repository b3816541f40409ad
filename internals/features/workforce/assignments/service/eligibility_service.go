// internals/features/workforce/assignments/service/eligibility_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftboard_backend/internals/constants"
	"shiftboard_backend/internals/features/leave"
	"shiftboard_backend/internals/features/org"
	d "shiftboard_backend/internals/features/workforce/assignments/dto"
	"shiftboard_backend/internals/features/workforce/assignments/repository"
	schedRepo "shiftboard_backend/internals/features/workforce/schedules/repository"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

var (
	ErrShiftNotFound = errors.New("shift not found")
)

// EligibilityService computes who may be assigned to a shift on a date:
// roster members in an assignable role, minus staff already on that
// shift-date, minus staff on blocking leave. No ranking; the supervisor
// chooses among the set.
type EligibilityService interface {
	EligibleStaff(ctx context.Context, shiftID uuid.UUID, date time.Time, departmentID uuid.UUID) ([]d.EligibleStaffResponse, error)
}

type eligibilityService struct {
	shifts      schedRepo.ShiftRepository
	assignments repository.AssignmentRepository
	roster      org.RosterProvider
	oracle      leave.VacationOracle
	logger      *zap.Logger
}

func NewEligibilityService(
	shifts schedRepo.ShiftRepository,
	assignments repository.AssignmentRepository,
	roster org.RosterProvider,
	oracle leave.VacationOracle,
	logger *zap.Logger,
) EligibilityService {
	return &eligibilityService{
		shifts:      shifts,
		assignments: assignments,
		roster:      roster,
		oracle:      oracle,
		logger:      logger,
	}
}

func (s *eligibilityService) EligibleStaff(ctx context.Context, shiftID uuid.UUID, date time.Time, departmentID uuid.UUID) ([]d.EligibleStaffResponse, error) {
	if _, err := s.shifts.GetByID(ctx, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	// Fail closed: a roster or oracle failure yields an empty set plus the
	// error, never a best-effort list from stale data.
	members, err := s.roster.DepartmentRoster(ctx, departmentID, constants.AssignableRoles)
	if err != nil {
		s.logger.Warn("roster read failed, refusing eligibility answer", zap.Error(err))
		return nil, pkgerrors.ErrUpstreamUnavailable
	}

	assigned, err := s.assignments.ListForShiftDate(ctx, shiftID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[uuid.UUID]bool, len(assigned))
	for _, a := range assigned {
		taken[a.ShiftAssignmentStaffID] = true
	}

	conflicts, err := s.oracle.ConflictsOn(ctx, date)
	if err != nil {
		s.logger.Warn("vacation oracle read failed, refusing eligibility answer", zap.Error(err))
		return nil, pkgerrors.ErrUpstreamUnavailable
	}
	onLeave := make(map[uuid.UUID]bool, len(conflicts))
	for _, c := range conflicts {
		if c.Covers(date) {
			onLeave[c.StaffID] = true
		}
	}

	out := make([]d.EligibleStaffResponse, 0, len(members))
	for _, mem := range members {
		if taken[mem.StaffID] || onLeave[mem.StaffID] {
			continue
		}
		out = append(out, d.EligibleStaffResponse{
			StaffID: mem.StaffID,
			Name:    mem.Name,
			Role:    mem.Role,
		})
	}
	return out, nil
}
