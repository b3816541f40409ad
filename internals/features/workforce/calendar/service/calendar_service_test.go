package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftboard_backend/internals/cache"
	"shiftboard_backend/internals/features/org"
	am "shiftboard_backend/internals/features/workforce/assignments/model"
	sm "shiftboard_backend/internals/features/workforce/schedules/model"
)

/* =========================
   Mocks
   ========================= */

type stubScheduleRepo struct {
	schedules []sm.ScheduleModel
}

func (r *stubScheduleRepo) Create(_ context.Context, _ *sm.ScheduleModel, _ []sm.ShiftModel) error {
	return errors.New("not implemented")
}
func (r *stubScheduleRepo) GetByID(_ context.Context, id uuid.UUID) (*sm.ScheduleModel, error) {
	for i := range r.schedules {
		if r.schedules[i].ScheduleID == id {
			cp := r.schedules[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *stubScheduleRepo) ListByDepartment(_ context.Context, _ uuid.UUID, _ *string, _, _ int) ([]sm.ScheduleModel, int64, error) {
	return nil, 0, nil
}
func (r *stubScheduleRepo) ListActiveIntersecting(_ context.Context, departmentID uuid.UUID, from, to time.Time) ([]sm.ScheduleModel, error) {
	out := []sm.ScheduleModel{}
	for _, sc := range r.schedules {
		if sc.ScheduleDepartmentID != departmentID || sc.IsArchived() {
			continue
		}
		if sc.ScheduleEndDate.Before(from) || sc.ScheduleStartDate.After(to) {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}
func (r *stubScheduleRepo) NameTaken(_ context.Context, _, _ uuid.UUID, _ string, _ *uuid.UUID) (bool, error) {
	return false, nil
}
func (r *stubScheduleRepo) Update(_ context.Context, _ *sm.ScheduleModel) error { return nil }
func (r *stubScheduleRepo) ReplaceShifts(_ context.Context, _ uuid.UUID, _ []sm.ShiftModel) error {
	return nil
}
func (r *stubScheduleRepo) Delete(_ context.Context, _ *sm.ScheduleModel) error { return nil }
func (r *stubScheduleRepo) HasAssignmentsOutside(_ context.Context, _ uuid.UUID, _, _ time.Time) (bool, error) {
	return false, nil
}

type stubShiftRepo struct {
	shifts   []sm.ShiftModel
	getCalls int
}

func (r *stubShiftRepo) GetByID(_ context.Context, id uuid.UUID) (*sm.ShiftModel, error) {
	r.getCalls++
	for i := range r.shifts {
		if r.shifts[i].ShiftID == id {
			cp := r.shifts[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *stubShiftRepo) ListBySchedule(_ context.Context, scheduleID uuid.UUID) ([]sm.ShiftModel, error) {
	out := []sm.ShiftModel{}
	for _, sh := range r.shifts {
		if sh.ShiftScheduleID == scheduleID {
			out = append(out, sh)
		}
	}
	return out, nil
}
func (r *stubShiftRepo) ListByScheduleIDs(_ context.Context, scheduleIDs []uuid.UUID) ([]sm.ShiftModel, error) {
	out := []sm.ShiftModel{}
	for _, id := range scheduleIDs {
		rows, _ := r.ListBySchedule(context.Background(), id)
		out = append(out, rows...)
	}
	return out, nil
}

type stubAssignmentRepo struct {
	rows      []am.ShiftAssignmentModel
	listCalls int
}

func (r *stubAssignmentRepo) InsertGuarded(_ context.Context, _ *am.ShiftAssignmentModel, _ int) error {
	return errors.New("not implemented")
}
func (r *stubAssignmentRepo) Delete(_ context.Context, _ uuid.UUID) (*am.ShiftAssignmentModel, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubAssignmentRepo) CountForShiftDate(_ context.Context, shiftID uuid.UUID, date time.Time) (int64, error) {
	rows, _ := r.ListForShiftDate(context.Background(), shiftID, date)
	return int64(len(rows)), nil
}
func (r *stubAssignmentRepo) ListForShiftDate(_ context.Context, shiftID uuid.UUID, date time.Time) ([]am.ShiftAssignmentModel, error) {
	r.listCalls++
	out := []am.ShiftAssignmentModel{}
	for _, row := range r.rows {
		if row.ShiftAssignmentShiftID == shiftID && row.ShiftAssignmentDate.Equal(date) {
			out = append(out, row)
		}
	}
	return out, nil
}
func (r *stubAssignmentRepo) ListForShiftsInRange(_ context.Context, shiftIDs []uuid.UUID, from, to time.Time) ([]am.ShiftAssignmentModel, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range shiftIDs {
		want[id] = true
	}
	out := []am.ShiftAssignmentModel{}
	for _, row := range r.rows {
		if want[row.ShiftAssignmentShiftID] && !row.ShiftAssignmentDate.Before(from) && !row.ShiftAssignmentDate.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}
func (r *stubAssignmentRepo) ListForStaffInRange(_ context.Context, staffID uuid.UUID, from, to time.Time) ([]am.ShiftAssignmentModel, error) {
	out := []am.ShiftAssignmentModel{}
	for _, row := range r.rows {
		if row.ShiftAssignmentStaffID == staffID && !row.ShiftAssignmentDate.Before(from) && !row.ShiftAssignmentDate.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}
func (r *stubAssignmentRepo) CountsByShift(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
	return nil, nil
}

type stubRoster struct {
	members []org.RosterMember
	err     error
}

func (r *stubRoster) DepartmentRoster(_ context.Context, _ uuid.UUID, _ []string) ([]org.RosterMember, error) {
	return r.members, r.err
}

type memoryCache struct {
	store map[string]*cache.StaffingSummary
	sets  int
}

var _ cache.StaffingCache = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string]*cache.StaffingSummary{}}
}

func (c *memoryCache) key(shiftID uuid.UUID, date string) string {
	return shiftID.String() + "|" + date
}
func (c *memoryCache) GetSummary(_ context.Context, shiftID uuid.UUID, date string) (*cache.StaffingSummary, error) {
	return c.store[c.key(shiftID, date)], nil
}
func (c *memoryCache) SetSummary(_ context.Context, s *cache.StaffingSummary) error {
	c.sets++
	c.store[c.key(s.ShiftID, s.Date)] = s
	return nil
}
func (c *memoryCache) Invalidate(_ context.Context, shiftID uuid.UUID, date string) error {
	delete(c.store, c.key(shiftID, date))
	return nil
}

/* =========================
   Fixtures
   ========================= */

type calFixture struct {
	svc         CalendarService
	schedules   *stubScheduleRepo
	shifts      *stubShiftRepo
	assignments *stubAssignmentRepo
	roster      *stubRoster
	cache       *memoryCache
	deptID      uuid.UUID
}

func newCalFixture() *calFixture {
	f := &calFixture{
		schedules:   &stubScheduleRepo{},
		shifts:      &stubShiftRepo{},
		assignments: &stubAssignmentRepo{},
		roster:      &stubRoster{},
		cache:       newMemoryCache(),
		deptID:      uuid.New(),
	}
	f.svc = NewCalendarService(f.schedules, f.shifts, f.assignments, f.roster, f.cache, zap.NewNop())
	return f
}

func (f *calFixture) addSchedule(status sm.ScheduleStatusEnum, start, end time.Time) uuid.UUID {
	id := uuid.New()
	f.schedules.schedules = append(f.schedules.schedules, sm.ScheduleModel{
		ScheduleID:           id,
		ScheduleName:         "Coverage",
		ScheduleDepartmentID: f.deptID,
		ScheduleStartDate:    start,
		ScheduleEndDate:      end,
		ScheduleStatus:       status,
	})
	return id
}

func (f *calFixture) addShift(scheduleID uuid.UUID, required int) uuid.UUID {
	id := uuid.New()
	f.shifts.shifts = append(f.shifts.shifts, sm.ShiftModel{
		ShiftID:            id,
		ShiftScheduleID:    scheduleID,
		ShiftName:          "Day",
		ShiftStartTime:     "08:00",
		ShiftEndTime:       "16:00",
		ShiftOrder:         1,
		ShiftRequiredStaff: required,
	})
	return id
}

func (f *calFixture) addAssignment(shiftID, staffID uuid.UUID, date time.Time) {
	f.assignments.rows = append(f.assignments.rows, am.ShiftAssignmentModel{
		ShiftAssignmentID:      uuid.New(),
		ShiftAssignmentShiftID: shiftID,
		ShiftAssignmentStaffID: staffID,
		ShiftAssignmentDate:    date,
	})
}

func day(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

/* =========================
   DailyStaffing
   ========================= */

func TestDailyStaffingPublishedShowsEmptyDays(t *testing.T) {
	f := newCalFixture()
	scheduleID := f.addSchedule(sm.SchedulePublished, day(1), day(3))
	f.addShift(scheduleID, 2)

	out, err := f.svc.DailyStaffing(context.Background(), f.deptID, day(1), day(3))
	if err != nil {
		t.Fatalf("daily staffing: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("days = %d, want 3", len(out))
	}
	cell := out["2026-03-02"][0]
	if cell.AssignedCount != 0 || cell.RequiredCount != 2 {
		t.Errorf("empty day cell = %d/%d, want 0/2", cell.AssignedCount, cell.RequiredCount)
	}
}

func TestDailyStaffingDraftHiddenUntilAssigned(t *testing.T) {
	f := newCalFixture()
	scheduleID := f.addSchedule(sm.ScheduleDraft, day(1), day(3))
	shiftID := f.addShift(scheduleID, 2)
	f.addAssignment(shiftID, uuid.New(), day(2))

	out, err := f.svc.DailyStaffing(context.Background(), f.deptID, day(1), day(3))
	if err != nil {
		t.Fatalf("daily staffing: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("days = %d, want only the staffed one", len(out))
	}
	cell, ok := out["2026-03-02"]
	if !ok || cell[0].AssignedCount != 1 {
		t.Fatalf("staffed draft day missing or miscounted: %+v", out)
	}
	if cell[0].Status != string(sm.ScheduleDraft) {
		t.Errorf("status = %q, want draft", cell[0].Status)
	}
}

func TestDailyStaffingClipsToWindow(t *testing.T) {
	f := newCalFixture()
	scheduleID := f.addSchedule(sm.SchedulePublished, day(1), day(31))
	f.addShift(scheduleID, 1)

	out, err := f.svc.DailyStaffing(context.Background(), f.deptID, day(10), day(12))
	if err != nil {
		t.Fatalf("daily staffing: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("days = %d, want 3", len(out))
	}
	if _, ok := out["2026-03-09"]; ok {
		t.Error("day before window leaked into projection")
	}
}

func TestDailyStaffingEmptyIsNotError(t *testing.T) {
	f := newCalFixture()
	out, err := f.svc.DailyStaffing(context.Background(), f.deptID, day(1), day(7))
	if err != nil {
		t.Fatalf("daily staffing: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("projection not empty: %+v", out)
	}
}

func TestDailyStaffingNamesDegradeOnRosterFailure(t *testing.T) {
	f := newCalFixture()
	f.roster.err = errors.New("directory down")
	scheduleID := f.addSchedule(sm.SchedulePublished, day(1), day(1))
	shiftID := f.addShift(scheduleID, 1)
	staffID := uuid.New()
	f.addAssignment(shiftID, staffID, day(1))

	out, err := f.svc.DailyStaffing(context.Background(), f.deptID, day(1), day(1))
	if err != nil {
		t.Fatalf("projection must survive a roster outage, got %v", err)
	}
	assignee := out["2026-03-01"][0].Assignees[0]
	if assignee.StaffID != staffID || assignee.Name != "" {
		t.Errorf("degraded assignee = %+v, want bare staff id", assignee)
	}
}

/* =========================
   ShiftDaySummary
   ========================= */

func TestShiftDaySummaryReadThrough(t *testing.T) {
	f := newCalFixture()
	scheduleID := f.addSchedule(sm.SchedulePublished, day(1), day(31))
	shiftID := f.addShift(scheduleID, 3)
	f.addAssignment(shiftID, uuid.New(), day(10))
	f.addAssignment(shiftID, uuid.New(), day(10))

	// miss: hits storage and fills the cache
	sum, err := f.svc.ShiftDaySummary(context.Background(), shiftID, day(10))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.AssignedCount != 2 || sum.RequiredCount != 3 {
		t.Errorf("summary = %d/%d, want 2/3", sum.AssignedCount, sum.RequiredCount)
	}
	if f.cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", f.cache.sets)
	}

	// hit: storage stays untouched
	before := f.assignments.listCalls
	if _, err := f.svc.ShiftDaySummary(context.Background(), shiftID, day(10)); err != nil {
		t.Fatalf("cached summary: %v", err)
	}
	if f.assignments.listCalls != before {
		t.Error("cache hit still queried assignment storage")
	}
}

func TestShiftDaySummaryUnknownShift(t *testing.T) {
	f := newCalFixture()
	_, err := f.svc.ShiftDaySummary(context.Background(), uuid.New(), day(10))
	if !errors.Is(err, ErrShiftNotFound) {
		t.Fatalf("err = %v, want ErrShiftNotFound", err)
	}
}
