package slot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/repository/repotest"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *repotest.SlotRepo) *slotService {
	return &slotService{slots: repo, now: func() time.Time { return testNow }}
}

func validCreate(date time.Time) CreateRequest {
	return CreateRequest{
		Date:            date,
		StartTime:       "09:00",
		EndTime:         "10:00",
		DurationMinutes: 60,
		Timezone:        "UTC",
		MaxBookings:     1,
	}
}

func TestCreate_Validation(t *testing.T) {
	future := testNow.AddDate(0, 0, 7)

	tests := []struct {
		name    string
		mutate  func(*CreateRequest)
		wantErr error
	}{
		{"bad start format", func(r *CreateRequest) { r.StartTime = "9:00" }, ErrInvalidTime},
		{"bad end format", func(r *CreateRequest) { r.EndTime = "25:00" }, ErrInvalidTime},
		{"end before start", func(r *CreateRequest) { r.StartTime = "10:00"; r.EndTime = "09:00" }, ErrInvalidTimeRange},
		{"end equals start", func(r *CreateRequest) { r.EndTime = "09:00" }, ErrInvalidTimeRange},
		{"duration too short", func(r *CreateRequest) { r.DurationMinutes = 10 }, ErrInvalidDuration},
		{"duration too long", func(r *CreateRequest) { r.DurationMinutes = 500 }, ErrInvalidDuration},
		{"past date", func(r *CreateRequest) { r.Date = testNow.AddDate(0, 0, -1) }, ErrPastDate},
		{"bad meeting type", func(r *CreateRequest) { r.MeetingType = "hologram" }, ErrInvalidMeetingType},
	}

	svc := newTestService(repotest.NewSlotRepo())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate(future)
			tt.mutate(&req)
			_, err := svc.Create(context.Background(), uuid.New(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreate_RejectsOverlapWithConflicts(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()
	date := testNow.AddDate(0, 0, 7)

	first, err := svc.Create(context.Background(), employer, validCreate(date))
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	req := validCreate(date)
	req.StartTime = "09:30"
	req.EndTime = "10:30"
	_, err = svc.Create(context.Background(), employer, req)

	var overlap *OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("Create() error = %v, want OverlapError", err)
	}
	if len(overlap.Conflicts) != 1 || overlap.Conflicts[0].ID != first.ID {
		t.Errorf("OverlapError.Conflicts = %+v, want the first slot", overlap.Conflicts)
	}
}

func TestCreate_TouchingWindowsDoNotOverlap(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()
	date := testNow.AddDate(0, 0, 7)

	if _, err := svc.Create(context.Background(), employer, validCreate(date)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	req := validCreate(date)
	req.StartTime = "10:00"
	req.EndTime = "11:00"
	if _, err := svc.Create(context.Background(), employer, req); err != nil {
		t.Errorf("back-to-back slot rejected: %v", err)
	}

	// Same window, different employer: no conflict either.
	if _, err := svc.Create(context.Background(), uuid.New(), validCreate(date)); err != nil {
		t.Errorf("other employer's slot rejected: %v", err)
	}
}

func TestCreateBatch_PartialFailure(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()
	date := testNow.AddDate(0, 0, 7)

	good := validCreate(date)
	dup := validCreate(date) // overlaps good
	bad := validCreate(date)
	bad.StartTime = "nope!"

	other := validCreate(date)
	other.StartTime = "14:00"
	other.EndTime = "15:00"

	res, err := svc.CreateBatch(context.Background(), employer, []CreateRequest{good, dup, bad, other})
	if err != nil {
		t.Fatalf("CreateBatch() error: %v", err)
	}
	if len(res.Created) != 2 {
		t.Errorf("Created = %d slots, want 2", len(res.Created))
	}
	if len(res.Errors) != 2 {
		t.Fatalf("Errors = %+v, want 2 entries", res.Errors)
	}
	if res.Errors[0].Index != 1 || res.Errors[1].Index != 2 {
		t.Errorf("error indexes = %d,%d, want 1,2", res.Errors[0].Index, res.Errors[1].Index)
	}
	// Failed entries must not have rolled back the created ones.
	if repo.Len() != 2 {
		t.Errorf("repo holds %d slots, want 2", repo.Len())
	}
}

func TestUpdate_ScheduleFrozenOnceBooked(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()

	created, err := svc.Create(context.Background(), employer, validCreate(testNow.AddDate(0, 0, 7)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ok, _ := repo.Claim(context.Background(), created.ID, employer); !ok {
		t.Fatal("claim failed")
	}

	newStart := "11:00"
	if _, err := svc.Update(context.Background(), employer, created.ID, UpdateRequest{StartTime: &newStart}); !errors.Is(err, ErrSlotHasBookings) {
		t.Errorf("start_time update error = %v, want ErrSlotHasBookings", err)
	}

	// Non-schedule fields stay mutable.
	title := "Final round"
	got, err := svc.Update(context.Background(), employer, created.ID, UpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("title update failed: %v", err)
	}
	if got.Title != title {
		t.Errorf("Title = %q, want %q", got.Title, title)
	}
}

func TestUpdate_RaisingCapacityReopensSlot(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()

	created, err := svc.Create(context.Background(), employer, validCreate(testNow.AddDate(0, 0, 7)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ok, _ := repo.Claim(context.Background(), created.ID, employer); !ok {
		t.Fatal("claim failed")
	}

	lower := 0
	if _, err := svc.Update(context.Background(), employer, created.ID, UpdateRequest{MaxBookings: &lower}); !errors.Is(err, ErrMaxBelowCurrent) {
		t.Errorf("lowering below current error = %v, want ErrMaxBelowCurrent", err)
	}

	raise := 3
	got, err := svc.Update(context.Background(), employer, created.ID, UpdateRequest{MaxBookings: &raise})
	if err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if got.Status != model.SlotStatusAvailable {
		t.Errorf("Status = %s, want available after capacity raise", got.Status)
	}
}

func TestDelete_RefusedWithBookings(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()

	created, _ := svc.Create(context.Background(), employer, validCreate(testNow.AddDate(0, 0, 7)))
	repo.Claim(context.Background(), created.ID, employer)

	if err := svc.Delete(context.Background(), employer, created.ID); !errors.Is(err, ErrSlotHasBookings) {
		t.Errorf("Delete() error = %v, want ErrSlotHasBookings", err)
	}

	// An untouched slot deletes fine.
	other := validCreate(testNow.AddDate(0, 0, 8))
	created2, _ := svc.Create(context.Background(), employer, other)
	if err := svc.Delete(context.Background(), employer, created2.ID); err != nil {
		t.Errorf("Delete() of unbooked slot failed: %v", err)
	}
}

func TestGetByID_OwnershipReadsAsNotFound(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)

	created, _ := svc.Create(context.Background(), uuid.New(), validCreate(testNow.AddDate(0, 0, 7)))
	if _, err := svc.GetByID(context.Background(), uuid.New(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign GetByID error = %v, want ErrNotFound", err)
	}
}

func TestExpandRecurring(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()

	// Wednesday Sep 2 2026.
	origin := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	src, err := svc.Create(context.Background(), employer, validCreate(origin))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// A conflicting slot on Wednesday Sep 9: that occurrence must be dropped.
	conflictDay := origin.AddDate(0, 0, 7)
	if _, err := svc.Create(context.Background(), employer, validCreate(conflictDay)); err != nil {
		t.Fatalf("conflict seed failed: %v", err)
	}

	end := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	created, err := svc.ExpandRecurring(context.Background(), employer, src.ID, RecurringRequest{
		Weekdays: []time.Weekday{time.Wednesday, time.Friday},
		EndDate:  end,
	})
	if err != nil {
		t.Fatalf("ExpandRecurring() error: %v", err)
	}

	// Wednesdays Sep 9 (dropped), Sep 16; Fridays Sep 4, 11. Origin skipped.
	want := map[string]bool{"2026-09-04": true, "2026-09-11": true, "2026-09-16": true}
	if len(created) != len(want) {
		t.Fatalf("created %d occurrences, want %d", len(created), len(want))
	}
	for _, sl := range created {
		key := sl.Date.Format("2006-01-02")
		if !want[key] {
			t.Errorf("unexpected occurrence on %s", key)
		}
		if sl.ID == src.ID {
			t.Error("occurrence reused the source slot ID")
		}
		if sl.CurrentBookings != 0 || sl.Status != model.SlotStatusAvailable {
			t.Errorf("occurrence on %s not reset: %+v", key, sl)
		}
	}

	if _, err := svc.ExpandRecurring(context.Background(), employer, src.ID, RecurringRequest{EndDate: end}); !errors.Is(err, ErrInvalidRecurrence) {
		t.Errorf("empty weekday set error = %v, want ErrInvalidRecurrence", err)
	}
}

func TestListAvailableForBooking_GroupsByDate(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()

	day1 := testNow.AddDate(0, 0, 3)
	day2 := testNow.AddDate(0, 0, 5)

	a := validCreate(day1)
	b := validCreate(day1)
	b.StartTime, b.EndTime = "11:00", "12:00"
	c := validCreate(day2)

	for _, req := range []CreateRequest{a, b, c} {
		if _, err := svc.Create(context.Background(), employer, req); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	// A full slot must not show up.
	full := validCreate(day2)
	full.StartTime, full.EndTime = "14:00", "15:00"
	fullSlot, _ := svc.Create(context.Background(), employer, full)
	repo.Claim(context.Background(), fullSlot.ID, employer)

	// Neither must a deactivated one.
	off := validCreate(day2)
	off.StartTime, off.EndTime = "16:00", "17:00"
	offSlot, _ := svc.Create(context.Background(), employer, off)
	if _, err := svc.ToggleActive(context.Background(), employer, offSlot.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	groups, err := svc.ListAvailableForBooking(context.Background(), employer, nil, nil)
	if err != nil {
		t.Fatalf("ListAvailableForBooking() error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d day groups, want 2", len(groups))
	}
	if !groups[0].Date.Equal(model.MidnightUTC(day1)) || len(groups[0].Slots) != 2 {
		t.Errorf("day 1 group = %+v, want 2 slots on %s", groups[0], day1.Format("2006-01-02"))
	}
	if !groups[1].Date.Equal(model.MidnightUTC(day2)) || len(groups[1].Slots) != 1 {
		t.Errorf("day 2 group = %+v, want 1 slot on %s", groups[1], day2.Format("2006-01-02"))
	}
}

func TestListAvailableForBooking_GroupingIgnoresDateLocation(t *testing.T) {
	repo := repotest.NewSlotRepo()
	svc := newTestService(repo)
	employer := uuid.New()

	// Same calendar day, same instant, but one date carries a non-UTC
	// location the way rows scanned back from the database can.
	day := model.MidnightUTC(testNow.AddDate(0, 0, 3))
	shifted := day.In(time.FixedZone("UTC+3", 3*3600))

	seed := func(date time.Time, start, end string) {
		repo.Seed(model.AvailabilitySlot{
			EmployerID:      employer,
			Date:            date,
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: 60,
			Timezone:        "UTC",
			MeetingType:     model.MeetingTypeVideo,
			MaxBookings:     1,
			Status:          model.SlotStatusAvailable,
			IsActive:        true,
		})
	}
	seed(day, "09:00", "10:00")
	seed(shifted, "11:00", "12:00")

	groups, err := svc.ListAvailableForBooking(context.Background(), employer, nil, nil)
	if err != nil {
		t.Fatalf("ListAvailableForBooking() error: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d day groups, want 1: the same day split by location", len(groups))
	}
	if !groups[0].Date.Equal(day) || len(groups[0].Slots) != 2 {
		t.Errorf("group = %+v, want both slots under %s", groups[0], day.Format("2006-01-02"))
	}
}
