package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftboard_backend/internals/cache"
	"shiftboard_backend/internals/features/leave"
	d "shiftboard_backend/internals/features/workforce/assignments/dto"
	m "shiftboard_backend/internals/features/workforce/assignments/model"
	sm "shiftboard_backend/internals/features/workforce/schedules/model"
	pkgerrors "shiftboard_backend/internals/pkg/errors"
)

/* =========================
   Mocks
   ========================= */

// mockAssignmentRepo mimics the guarded insert: a mutex plays the advisory
// lock, the re-count under it enforces capacity, and a (shift, staff, date)
// set plays the unique index.
type mockAssignmentRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]m.ShiftAssignmentModel
	trip map[string]bool

	insertErr error
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{
		rows: map[uuid.UUID]m.ShiftAssignmentModel{},
		trip: map[string]bool{},
	}
}

func tripleKey(shiftID, staffID uuid.UUID, date time.Time) string {
	return shiftID.String() + "|" + staffID.String() + "|" + date.Format(d.DateLayout)
}

func (r *mockAssignmentRepo) InsertGuarded(_ context.Context, a *m.ShiftAssignmentModel, requiredStaff int) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, row := range r.rows {
		if row.ShiftAssignmentShiftID == a.ShiftAssignmentShiftID && row.ShiftAssignmentDate.Equal(a.ShiftAssignmentDate) {
			n++
		}
	}
	if n >= requiredStaff {
		return pkgerrors.ErrCapacityExceeded
	}
	k := tripleKey(a.ShiftAssignmentShiftID, a.ShiftAssignmentStaffID, a.ShiftAssignmentDate)
	if r.trip[k] {
		return pkgerrors.ErrDuplicateAssignment
	}
	if a.ShiftAssignmentID == uuid.Nil {
		a.ShiftAssignmentID = uuid.New()
	}
	r.rows[a.ShiftAssignmentID] = *a
	r.trip[k] = true
	return nil
}

func (r *mockAssignmentRepo) Delete(_ context.Context, id uuid.UUID) (*m.ShiftAssignmentModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	delete(r.trip, tripleKey(row.ShiftAssignmentShiftID, row.ShiftAssignmentStaffID, row.ShiftAssignmentDate))
	return &row, nil
}

func (r *mockAssignmentRepo) CountForShiftDate(_ context.Context, shiftID uuid.UUID, date time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.ShiftAssignmentShiftID == shiftID && row.ShiftAssignmentDate.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (r *mockAssignmentRepo) ListForShiftDate(_ context.Context, shiftID uuid.UUID, date time.Time) ([]m.ShiftAssignmentModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []m.ShiftAssignmentModel{}
	for _, row := range r.rows {
		if row.ShiftAssignmentShiftID == shiftID && row.ShiftAssignmentDate.Equal(date) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *mockAssignmentRepo) ListForShiftsInRange(_ context.Context, shiftIDs []uuid.UUID, from, to time.Time) ([]m.ShiftAssignmentModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range shiftIDs {
		want[id] = true
	}
	out := []m.ShiftAssignmentModel{}
	for _, row := range r.rows {
		if want[row.ShiftAssignmentShiftID] && !row.ShiftAssignmentDate.Before(from) && !row.ShiftAssignmentDate.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *mockAssignmentRepo) ListForStaffInRange(_ context.Context, staffID uuid.UUID, from, to time.Time) ([]m.ShiftAssignmentModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []m.ShiftAssignmentModel{}
	for _, row := range r.rows {
		if row.ShiftAssignmentStaffID == staffID && !row.ShiftAssignmentDate.Before(from) && !row.ShiftAssignmentDate.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *mockAssignmentRepo) CountsByShift(_ context.Context, shiftIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uuid.UUID]int64{}
	for _, row := range r.rows {
		out[row.ShiftAssignmentShiftID]++
	}
	return out, nil
}

type mockShiftRepo struct {
	shifts    map[uuid.UUID]*sm.ShiftModel
	schedules map[uuid.UUID]*sm.ScheduleModel
}

func (r *mockShiftRepo) GetByID(_ context.Context, id uuid.UUID) (*sm.ShiftModel, error) {
	sh, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sh
	return &cp, nil
}

func (r *mockShiftRepo) ListBySchedule(_ context.Context, scheduleID uuid.UUID) ([]sm.ShiftModel, error) {
	out := []sm.ShiftModel{}
	for _, sh := range r.shifts {
		if sh.ShiftScheduleID == scheduleID {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (r *mockShiftRepo) ListByScheduleIDs(_ context.Context, scheduleIDs []uuid.UUID) ([]sm.ShiftModel, error) {
	out := []sm.ShiftModel{}
	for _, id := range scheduleIDs {
		rows, _ := r.ListBySchedule(context.Background(), id)
		out = append(out, rows...)
	}
	return out, nil
}

// GetByID for schedules, via the same fixture
type mockScheduleGetter struct {
	*mockShiftRepo
}

func (r *mockScheduleGetter) Create(_ context.Context, _ *sm.ScheduleModel, _ []sm.ShiftModel) error {
	return errors.New("not implemented")
}
func (r *mockScheduleGetter) GetByID(_ context.Context, id uuid.UUID) (*sm.ScheduleModel, error) {
	sc, ok := r.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sc
	return &cp, nil
}
func (r *mockScheduleGetter) ListByDepartment(_ context.Context, _ uuid.UUID, _ *string, _, _ int) ([]sm.ScheduleModel, int64, error) {
	return nil, 0, nil
}
func (r *mockScheduleGetter) ListActiveIntersecting(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]sm.ScheduleModel, error) {
	return nil, nil
}
func (r *mockScheduleGetter) NameTaken(_ context.Context, _, _ uuid.UUID, _ string, _ *uuid.UUID) (bool, error) {
	return false, nil
}
func (r *mockScheduleGetter) Update(_ context.Context, _ *sm.ScheduleModel) error { return nil }
func (r *mockScheduleGetter) ReplaceShifts(_ context.Context, _ uuid.UUID, _ []sm.ShiftModel) error {
	return nil
}
func (r *mockScheduleGetter) Delete(_ context.Context, _ *sm.ScheduleModel) error { return nil }
func (r *mockScheduleGetter) HasAssignmentsOutside(_ context.Context, _ uuid.UUID, _, _ time.Time) (bool, error) {
	return false, nil
}

type mockOracle struct {
	conflicts []leave.Conflict
	err       error
}

func (o *mockOracle) ConflictsOn(_ context.Context, _ time.Time) ([]leave.Conflict, error) {
	return o.conflicts, o.err
}

// recordingCache counts invalidations so tests can assert cache hygiene.
type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

var _ cache.StaffingCache = (*recordingCache)(nil)

func (c *recordingCache) GetSummary(_ context.Context, _ uuid.UUID, _ string) (*cache.StaffingSummary, error) {
	return nil, nil
}
func (c *recordingCache) SetSummary(_ context.Context, _ *cache.StaffingSummary) error { return nil }
func (c *recordingCache) Invalidate(_ context.Context, shiftID uuid.UUID, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, shiftID.String()+"|"+date)
	return nil
}

/* =========================
   Fixtures
   ========================= */

type fixture struct {
	svc     AssignmentService
	repo    *mockAssignmentRepo
	store   *mockShiftRepo
	oracle  *mockOracle
	cache   *recordingCache
	shiftID uuid.UUID
}

func newFixture(t *testing.T, requiredStaff int, status sm.ScheduleStatusEnum) *fixture {
	t.Helper()
	scheduleID := uuid.New()
	shiftID := uuid.New()
	store := &mockShiftRepo{
		shifts: map[uuid.UUID]*sm.ShiftModel{
			shiftID: {
				ShiftID:            shiftID,
				ShiftScheduleID:    scheduleID,
				ShiftName:          "Night",
				ShiftStartTime:     "22:00",
				ShiftEndTime:       "06:00",
				ShiftOrder:         1,
				ShiftRequiredStaff: requiredStaff,
			},
		},
		schedules: map[uuid.UUID]*sm.ScheduleModel{
			scheduleID: {
				ScheduleID:        scheduleID,
				ScheduleName:      "March Coverage",
				ScheduleStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				ScheduleEndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
				ScheduleStatus:    status,
			},
		},
	}
	repo := newMockAssignmentRepo()
	oracle := &mockOracle{}
	rc := &recordingCache{}
	svc := NewAssignmentService(store, &mockScheduleGetter{store}, repo, oracle, rc, zap.NewNop())
	return &fixture{svc: svc, repo: repo, store: store, oracle: oracle, cache: rc, shiftID: shiftID}
}

func assignReq(f *fixture, staffID uuid.UUID, date string) *d.CreateAssignmentRequest {
	return &d.CreateAssignmentRequest{ShiftID: f.shiftID, StaffID: staffID, Date: date}
}

/* =========================
   Assign
   ========================= */

func TestAssignHappyPath(t *testing.T) {
	f := newFixture(t, 2, sm.SchedulePublished)
	supervisor := uuid.New()

	resp, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), supervisor)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if resp.AssignmentID == uuid.Nil {
		t.Error("assignment id not populated")
	}
	if resp.Date != "2026-03-10" {
		t.Errorf("date = %q, want 2026-03-10", resp.Date)
	}
	if len(f.cache.invalidated) != 1 {
		t.Errorf("cache invalidations = %d, want 1", len(f.cache.invalidated))
	}
}

func TestAssignCapacityExceeded(t *testing.T) {
	f := newFixture(t, 1, sm.SchedulePublished)

	if _, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New()); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	_, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New())
	if !errors.Is(err, pkgerrors.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}

	// same shift, next day: capacity is per date
	if _, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-11"), uuid.New()); err != nil {
		t.Fatalf("assign on other date: %v", err)
	}
}

func TestAssignConcurrentNeverOverfills(t *testing.T) {
	const required = 3
	const contenders = 20
	f := newFixture(t, required, sm.SchedulePublished)

	var wg sync.WaitGroup
	errs := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, capacity int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, pkgerrors.ErrCapacityExceeded):
			capacity++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != required {
		t.Errorf("successful assigns = %d, want exactly %d", ok, required)
	}
	if capacity != contenders-required {
		t.Errorf("capacity rejections = %d, want %d", capacity, contenders-required)
	}
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if n, _ := f.repo.CountForShiftDate(context.Background(), f.shiftID, date); n != required {
		t.Errorf("stored rows = %d, want %d", n, required)
	}
}

func TestAssignDuplicateStaff(t *testing.T) {
	f := newFixture(t, 5, sm.SchedulePublished)
	staffID := uuid.New()

	if _, err := f.svc.Assign(context.Background(), assignReq(f, staffID, "2026-03-10"), uuid.New()); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	_, err := f.svc.Assign(context.Background(), assignReq(f, staffID, "2026-03-10"), uuid.New())
	if !errors.Is(err, pkgerrors.ErrDuplicateAssignment) {
		t.Fatalf("err = %v, want ErrDuplicateAssignment", err)
	}
}

func TestAssignDateOutOfRange(t *testing.T) {
	f := newFixture(t, 2, sm.SchedulePublished)

	for _, date := range []string{"2026-02-28", "2026-04-01"} {
		_, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), date), uuid.New())
		if !errors.Is(err, ErrDateOutOfRange) {
			t.Fatalf("date %s err = %v, want ErrDateOutOfRange", date, err)
		}
	}

	// range boundaries are inclusive
	for _, date := range []string{"2026-03-01", "2026-03-31"} {
		if _, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), date), uuid.New()); err != nil {
			t.Fatalf("boundary date %s: %v", date, err)
		}
	}
}

func TestAssignArchivedSchedule(t *testing.T) {
	f := newFixture(t, 2, sm.ScheduleArchived)
	_, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New())
	if !errors.Is(err, ErrScheduleArchived) {
		t.Fatalf("err = %v, want ErrScheduleArchived", err)
	}
}

func TestAssignDraftScheduleAllowed(t *testing.T) {
	f := newFixture(t, 2, sm.ScheduleDraft)
	if _, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New()); err != nil {
		t.Fatalf("draft assign: %v", err)
	}
}

func TestAssignVacationConflict(t *testing.T) {
	f := newFixture(t, 2, sm.SchedulePublished)
	staffID := uuid.New()
	f.oracle.conflicts = []leave.Conflict{{
		StaffID:   staffID,
		StartDate: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Status:    leave.StatusApproved,
	}}

	_, err := f.svc.Assign(context.Background(), assignReq(f, staffID, "2026-03-10"), uuid.New())
	if !errors.Is(err, ErrVacationConflict) {
		t.Fatalf("err = %v, want ErrVacationConflict", err)
	}

	// other staff pass through
	if _, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New()); err != nil {
		t.Fatalf("unconflicted assign: %v", err)
	}
}

func TestAssignFailsClosedWhenOracleDown(t *testing.T) {
	f := newFixture(t, 2, sm.SchedulePublished)
	f.oracle.err = errors.New("oracle timeout")

	_, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New())
	if !errors.Is(err, pkgerrors.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestAssignUnknownShift(t *testing.T) {
	f := newFixture(t, 2, sm.SchedulePublished)
	req := &d.CreateAssignmentRequest{ShiftID: uuid.New(), StaffID: uuid.New(), Date: "2026-03-10"}
	_, err := f.svc.Assign(context.Background(), req, uuid.New())
	if !errors.Is(err, ErrShiftNotFound) {
		t.Fatalf("err = %v, want ErrShiftNotFound", err)
	}
}

/* =========================
   Unassign
   ========================= */

func TestUnassignFreesCapacity(t *testing.T) {
	f := newFixture(t, 1, sm.SchedulePublished)

	resp, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := f.svc.Unassign(context.Background(), resp.AssignmentID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if len(f.cache.invalidated) != 2 {
		t.Errorf("cache invalidations = %d, want 2 (assign + unassign)", len(f.cache.invalidated))
	}

	// the freed slot is assignable again
	if _, err := f.svc.Assign(context.Background(), assignReq(f, uuid.New(), "2026-03-10"), uuid.New()); err != nil {
		t.Fatalf("re-assign after free: %v", err)
	}
}

func TestUnassignMissing(t *testing.T) {
	f := newFixture(t, 1, sm.SchedulePublished)
	err := f.svc.Unassign(context.Background(), uuid.New())
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("err = %v, want ErrAssignmentNotFound", err)
	}
}
