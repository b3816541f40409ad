// internals/features/workforce/calendar/service/calendar_service.go
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftboard_backend/internals/cache"
	"shiftboard_backend/internals/constants"
	"shiftboard_backend/internals/features/org"
	assignModel "shiftboard_backend/internals/features/workforce/assignments/model"
	assignRepo "shiftboard_backend/internals/features/workforce/assignments/repository"
	d "shiftboard_backend/internals/features/workforce/calendar/dto"
	schedModel "shiftboard_backend/internals/features/workforce/schedules/model"
	schedRepo "shiftboard_backend/internals/features/workforce/schedules/repository"
)

var ErrShiftNotFound = errors.New("shift not found")

// CalendarService is a pure projection over schedules, shifts and
// assignments. It never mutates engine state.
type CalendarService interface {
	DailyStaffing(ctx context.Context, departmentID uuid.UUID, from, to time.Time) (d.DailyStaffing, error)
	ShiftDaySummary(ctx context.Context, shiftID uuid.UUID, date time.Time) (*d.ShiftDaySummaryResponse, error)
}

type calendarService struct {
	schedules   schedRepo.ScheduleRepository
	shifts      schedRepo.ShiftRepository
	assignments assignRepo.AssignmentRepository
	roster      org.RosterProvider
	staffing    cache.StaffingCache
	logger      *zap.Logger
}

func NewCalendarService(
	schedules schedRepo.ScheduleRepository,
	shifts schedRepo.ShiftRepository,
	assignments assignRepo.AssignmentRepository,
	roster org.RosterProvider,
	staffing cache.StaffingCache,
	logger *zap.Logger,
) CalendarService {
	return &calendarService{
		schedules:   schedules,
		shifts:      shifts,
		assignments: assignments,
		roster:      roster,
		staffing:    staffing,
		logger:      logger,
	}
}

/* =========================
   DailyStaffing
   ========================= */

func (s *calendarService) DailyStaffing(ctx context.Context, departmentID uuid.UUID, from, to time.Time) (d.DailyStaffing, error) {
	out := d.DailyStaffing{}
	if to.Before(from) {
		return out, nil
	}

	schedules, err := s.schedules.ListActiveIntersecting(ctx, departmentID, from, to)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return out, nil
	}

	scheduleIDs := make([]uuid.UUID, 0, len(schedules))
	byID := make(map[uuid.UUID]*schedModel.ScheduleModel, len(schedules))
	for i := range schedules {
		scheduleIDs = append(scheduleIDs, schedules[i].ScheduleID)
		byID[schedules[i].ScheduleID] = &schedules[i]
	}

	shifts, err := s.shifts.ListByScheduleIDs(ctx, scheduleIDs)
	if err != nil {
		return nil, err
	}
	shiftIDs := make([]uuid.UUID, 0, len(shifts))
	for _, sh := range shifts {
		shiftIDs = append(shiftIDs, sh.ShiftID)
	}

	assignments, err := s.assignments.ListForShiftsInRange(ctx, shiftIDs, from, to)
	if err != nil {
		return nil, err
	}
	// (shift, day) → assignments
	type cellKey struct {
		shiftID uuid.UUID
		day     string
	}
	cells := make(map[cellKey][]assignModel.ShiftAssignmentModel)
	for _, a := range assignments {
		k := cellKey{shiftID: a.ShiftAssignmentShiftID, day: a.ShiftAssignmentDate.Format(d.DateLayout)}
		cells[k] = append(cells[k], a)
	}

	names := s.rosterNames(ctx, departmentID)

	for _, sh := range shifts {
		schedule := byID[sh.ShiftScheduleID]
		if schedule == nil {
			continue
		}
		start := maxDate(schedule.ScheduleStartDate, from)
		end := minDate(schedule.ScheduleEndDate, to)
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			dayKey := day.Format(d.DateLayout)
			assigned := cells[cellKey{shiftID: sh.ShiftID, day: dayKey}]

			// drafts are not commitments yet: only staffed cells show up
			if schedule.IsDraft() && len(assigned) == 0 {
				continue
			}

			assignees := make([]d.Assignee, 0, len(assigned))
			for _, a := range assigned {
				assignees = append(assignees, d.Assignee{
					AssignmentID: a.ShiftAssignmentID,
					StaffID:      a.ShiftAssignmentStaffID,
					Name:         names[a.ShiftAssignmentStaffID],
				})
			}

			out[dayKey] = append(out[dayKey], d.ShiftDayStatus{
				ShiftID:       sh.ShiftID,
				ScheduleID:    schedule.ScheduleID,
				ScheduleName:  schedule.ScheduleName,
				ShiftName:     sh.ShiftName,
				StartTime:     sh.ShiftStartTime,
				EndTime:       sh.ShiftEndTime,
				Color:         sh.ShiftColor,
				Status:        string(schedule.ScheduleStatus),
				AssignedCount: len(assigned),
				RequiredCount: sh.ShiftRequiredStaff,
				Assignees:     assignees,
			})
		}
	}

	// stable presentation order inside a day
	for _, statuses := range out {
		sort.Slice(statuses, func(i, j int) bool {
			if statuses[i].ScheduleName != statuses[j].ScheduleName {
				return statuses[i].ScheduleName < statuses[j].ScheduleName
			}
			return statuses[i].StartTime < statuses[j].StartTime
		})
	}
	return out, nil
}

/* =========================
   ShiftDaySummary (read-through cache)
   ========================= */

func (s *calendarService) ShiftDaySummary(ctx context.Context, shiftID uuid.UUID, date time.Time) (*d.ShiftDaySummaryResponse, error) {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	dayKey := date.Format(d.DateLayout)
	if cached, err := s.staffing.GetSummary(ctx, shiftID, dayKey); err == nil && cached != nil {
		return &d.ShiftDaySummaryResponse{
			ShiftID:       shiftID,
			Date:          dayKey,
			AssignedCount: cached.AssignedCount,
			RequiredCount: shift.ShiftRequiredStaff,
			StaffIDs:      cached.StaffIDs,
		}, nil
	} else if err != nil {
		s.logger.Warn("staffing cache read failed", zap.Error(err))
	}

	rows, err := s.assignments.ListForShiftDate(ctx, shiftID, date)
	if err != nil {
		return nil, err
	}
	staffIDs := make([]uuid.UUID, 0, len(rows))
	for _, a := range rows {
		staffIDs = append(staffIDs, a.ShiftAssignmentStaffID)
	}

	if err := s.staffing.SetSummary(ctx, &cache.StaffingSummary{
		ShiftID:       shiftID,
		Date:          dayKey,
		AssignedCount: len(rows),
		StaffIDs:      staffIDs,
	}); err != nil {
		s.logger.Warn("staffing cache write failed", zap.Error(err))
	}

	return &d.ShiftDaySummaryResponse{
		ShiftID:       shiftID,
		Date:          dayKey,
		AssignedCount: len(rows),
		RequiredCount: shift.ShiftRequiredStaff,
		StaffIDs:      staffIDs,
	}, nil
}

/* =========================
   internals
   ========================= */

// rosterNames resolves display names, best effort. The projection still
// serves IDs when the roster read fails.
func (s *calendarService) rosterNames(ctx context.Context, departmentID uuid.UUID) map[uuid.UUID]string {
	members, err := s.roster.DepartmentRoster(ctx, departmentID, constants.AllRoles)
	if err != nil {
		s.logger.Warn("roster read failed, calendar falls back to bare staff ids", zap.Error(err))
		return nil
	}
	names := make(map[uuid.UUID]string, len(members))
	for _, mem := range members {
		names[mem.StaffID] = mem.Name
	}
	return names
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
