// internals/features/workforce/calendar/service/export_service.go
package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	assignRepo "shiftboard_backend/internals/features/workforce/assignments/repository"
	d "shiftboard_backend/internals/features/workforce/calendar/dto"
	schedModel "shiftboard_backend/internals/features/workforce/schedules/model"
	schedRepo "shiftboard_backend/internals/features/workforce/schedules/repository"
)

// ExportService renders calendar projections into downloadable files.
type ExportService interface {
	ExportXLSX(ctx context.Context, departmentID uuid.UUID, from, to time.Time) (*bytes.Buffer, string, error)
	StaffICS(ctx context.Context, staffID uuid.UUID, from, to time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	calendar    CalendarService
	schedules   schedRepo.ScheduleRepository
	shifts      schedRepo.ShiftRepository
	assignments assignRepo.AssignmentRepository
	logger      *zap.Logger
}

func NewExportService(
	calendar CalendarService,
	schedules schedRepo.ScheduleRepository,
	shifts schedRepo.ShiftRepository,
	assignments assignRepo.AssignmentRepository,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		calendar:    calendar,
		schedules:   schedules,
		shifts:      shifts,
		assignments: assignments,
		logger:      logger,
	}
}

/* =========================
   XLSX export
   ========================= */

var xlsxHeader = []string{"Date", "Schedule", "Shift", "Start", "End", "Status", "Assigned", "Required", "Staff"}

func (s *exportService) ExportXLSX(ctx context.Context, departmentID uuid.UUID, from, to time.Time) (*bytes.Buffer, string, error) {
	staffing, err := s.calendar.DailyStaffing(ctx, departmentID, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close xlsx builder", zap.Error(err))
		}
	}()

	const sheet = "Staffing"
	f.SetSheetName("Sheet1", sheet)
	for col, title := range xlsxHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(xlsxHeader), 1)
		f.SetCellStyle(sheet, "A1", last, headerStyle)
	}

	row := 2
	for _, day := range sortedDays(staffing) {
		for _, status := range staffing[day] {
			names := make([]string, 0, len(status.Assignees))
			for _, a := range status.Assignees {
				if a.Name != "" {
					names = append(names, a.Name)
				} else {
					names = append(names, a.StaffID.String())
				}
			}
			values := []any{
				day,
				status.ScheduleName,
				status.ShiftName,
				status.StartTime,
				status.EndTime,
				status.Status,
				status.AssignedCount,
				status.RequiredCount,
				strings.Join(names, ", "),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "C", 24)
	f.SetColWidth(sheet, "I", "I", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("staffing_%s_%s.xlsx", from.Format(d.DateLayout), to.Format(d.DateLayout))
	return buf, filename, nil
}

/* =========================
   ICS feed
   ========================= */

func (s *exportService) StaffICS(ctx context.Context, staffID uuid.UUID, from, to time.Time) (*bytes.Buffer, string, error) {
	assignments, err := s.assignments.ListForStaffInRange(ctx, staffID, from, to)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shiftboard//workforce//EN")
	cal.SetName("My Shifts")

	shiftCache := map[uuid.UUID]*schedModel.ShiftModel{}
	scheduleCache := map[uuid.UUID]*schedModel.ScheduleModel{}

	for _, a := range assignments {
		shift := shiftCache[a.ShiftAssignmentShiftID]
		if shift == nil {
			shift, err = s.shifts.GetByID(ctx, a.ShiftAssignmentShiftID)
			if err != nil {
				s.logger.Warn("skip assignment with unresolvable shift",
					zap.String("assignment_id", a.ShiftAssignmentID.String()), zap.Error(err))
				continue
			}
			shiftCache[shift.ShiftID] = shift
		}
		schedule := scheduleCache[shift.ShiftScheduleID]
		if schedule == nil {
			schedule, err = s.schedules.GetByID(ctx, shift.ShiftScheduleID)
			if err != nil {
				s.logger.Warn("skip assignment with unresolvable schedule",
					zap.String("assignment_id", a.ShiftAssignmentID.String()), zap.Error(err))
				continue
			}
			scheduleCache[schedule.ScheduleID] = schedule
		}

		start, end, perr := shiftWindow(shift, a.ShiftAssignmentDate)
		if perr != nil {
			s.logger.Warn("skip assignment with malformed shift time",
				zap.String("shift_id", shift.ShiftID.String()), zap.Error(perr))
			continue
		}

		ev := cal.AddEvent(a.ShiftAssignmentID.String() + "@shiftboard")
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(fmt.Sprintf("%s / %s", schedule.ScheduleName, shift.ShiftName))
		ev.SetDescription(fmt.Sprintf("Shift %s (%s-%s)", shift.ShiftName, shift.ShiftStartTime, shift.ShiftEndTime))
		ev.SetDtStampTime(time.Now().UTC())
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("shifts_%s.ics", staffID.String())
	return buf, filename, nil
}

/* =========================
   internals
   ========================= */

// shiftWindow anchors the HH:MM template times on a concrete day. Overnight
// shifts (end at or before start) end on the following day.
func shiftWindow(shift *schedModel.ShiftModel, day time.Time) (time.Time, time.Time, error) {
	start, err := clockOn(day, shift.ShiftStartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := clockOn(day, shift.ShiftEndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if shift.IsOvernight() {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func clockOn(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func sortedDays(staffing d.DailyStaffing) []string {
	days := make([]string, 0, len(staffing))
	for day := range staffing {
		days = append(days, day)
	}
	// keys are ISO dates, lexicographic order is chronological
	sort.Strings(days)
	return days
}
