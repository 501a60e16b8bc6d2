package tracker

import (
	"bytes"
	"context"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/example/hifzbot/internal/review"
	"github.com/example/hifzbot/pkg/models"
)

const uid int64 = 42

var day1 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*Tracker, *memStore, *bytes.Buffer) {
	t.Helper()
	store := newMemStore()
	var buf bytes.Buffer
	return New(store, store, store, log.New(&buf, "", 0)), store, &buf
}

func progress(pages, last, perDay int, priority ...int) models.UserProgress {
	p := *models.NewUserProgress(uid)
	p.PagesMemorized = pages
	p.LastSectionUsed = last
	p.SectionsPerDay = perDay
	if priority != nil {
		p.PriorityList = priority
	}
	return p
}

// mustPlan builds today's plan and commits it, as the bot does after a successful send
func mustPlan(t *testing.T, tr *Tracker, today time.Time) *PlanOutcome {
	t.Helper()
	out, err := tr.ComputeTodayPlan(context.Background(), uid, today)
	if err != nil {
		t.Fatalf("ComputeTodayPlan() error = %v", err)
	}
	if err := tr.CommitPlan(context.Background(), out); err != nil {
		t.Fatalf("CommitPlan() error = %v", err)
	}
	return out
}

func mustApply(t *testing.T, tr *Tracker, m Mutation) *MutationResult {
	t.Helper()
	res, err := tr.Apply(context.Background(), uid, m, day1)
	if err != nil {
		t.Fatalf("Apply(%s) error = %v", m.Type, err)
	}
	return res
}

func TestComputeTodayPlanNothingToReview(t *testing.T) {
	tr, store, _ := newTestTracker(t)

	out := mustPlan(t, tr, day1)
	if out.Status != PlanNothingToReview {
		t.Fatalf("Status = %v, want PlanNothingToReview", out.Status)
	}
	if got := store.user(uid).CachedPlanDate; got != "2025-03-10" {
		t.Errorf("CachedPlanDate = %q, want 2025-03-10", got)
	}
}

func TestComputeTodayPlanFirstJuz(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(25, 0, 1))

	out := mustPlan(t, tr, day1)
	if out.Status != PlanReady {
		t.Fatalf("Status = %v, want PlanReady", out.Status)
	}
	if out.Plan.TotalPages != 19 {
		t.Errorf("TotalPages = %d, want 19", out.Plan.TotalPages)
	}
	wantSections := []review.SectionRef{{Number: 1}}
	if !reflect.DeepEqual(out.Plan.Sections, wantSections) {
		t.Errorf("Sections = %v, want %v", out.Plan.Sections, wantSections)
	}
	first, last := out.Plan.Slots[0], out.Plan.Slots[len(out.Plan.Slots)-1]
	if first.FromPage != 2 || last.ToPage != 20 {
		t.Errorf("plan spans %d..%d, want 2..20", first.FromPage, last.ToPage)
	}

	saved := store.user(uid)
	if saved.LastSectionUsed != 1 {
		t.Errorf("LastSectionUsed = %d, want 1", saved.LastSectionUsed)
	}
	if out.Overview.BaseJuz != 1 || out.Overview.Current.Juz != 2 || out.Overview.Current.Pages != 5 {
		t.Errorf("Overview = %+v", out.Overview)
	}

	stat, _ := store.GetByDate(context.Background(), uid, "2025-03-10")
	if stat == nil {
		t.Fatal("no snapshot recorded")
	}
	if stat.DailyProgressPages != 25 || stat.PagesRepeated != 20 || stat.BaseSectionCount != 1 {
		t.Errorf("snapshot = %+v", stat)
	}
}

func TestComputeTodayPlanOncePerDay(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(604, 12, 2, 5, 12))

	out := mustPlan(t, tr, day1)
	if out.Status != PlanReady {
		t.Fatalf("Status = %v, want PlanReady", out.Status)
	}
	want := []review.SectionRef{{Number: 1}, {Number: 2}}
	if !reflect.DeepEqual(out.Plan.Sections, want) {
		t.Fatalf("Sections = %v, want %v", out.Plan.Sections, want)
	}
	if out.Plan.TotalPages != 39 {
		t.Errorf("TotalPages = %d, want 39", out.Plan.TotalPages)
	}

	again := mustPlan(t, tr, day1.Add(3*time.Hour))
	if again.Status != PlanAlreadySent {
		t.Errorf("second call Status = %v, want PlanAlreadySent", again.Status)
	}
	if got := store.user(uid).LastSectionUsed; got != 2 {
		t.Errorf("LastSectionUsed = %d after repeated call, want 2", got)
	}

	next := mustPlan(t, tr, day1.AddDate(0, 0, 1))
	want = []review.SectionRef{{Number: 3}, {Number: 4}}
	if next.Status != PlanReady || !reflect.DeepEqual(next.Plan.Sections, want) {
		t.Errorf("next day = %v %v, want PlanReady %v", next.Status, next.Plan.Sections, want)
	}
}

func TestMutationClearsCachedPlan(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(25, 0, 1))

	mustPlan(t, tr, day1)
	res := mustApply(t, tr, AddPage())
	if res.User.CachedPlanDate != "" || store.user(uid).CachedPlanDate != "" {
		t.Fatal("mutation did not clear the cached plan date")
	}
	if res.Previous.PagesMemorized != 25 || res.User.PagesMemorized != 26 {
		t.Errorf("pages %d -> %d, want 25 -> 26", res.Previous.PagesMemorized, res.User.PagesMemorized)
	}

	out := mustPlan(t, tr, day1)
	if out.Status != PlanReady {
		t.Errorf("Status after mutation = %v, want PlanReady", out.Status)
	}
}

func TestStaleSnapshotForcesRecompute(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	p := progress(45, 1, 1)
	p.CachedPlanDate = "2025-03-10"
	store.put(p)
	store.Upsert(context.Background(), &models.DailyStat{UserID: uid, Date: "2025-03-10", PagesMemorized: 40})

	out := mustPlan(t, tr, day1)
	if out.Status != PlanReady {
		t.Errorf("Status = %v, want PlanReady", out.Status)
	}
	if again := mustPlan(t, tr, day1); again.Status != PlanAlreadySent {
		t.Errorf("second call Status = %v, want PlanAlreadySent", again.Status)
	}
}

func TestProgressAfterYesterdayKeepsPlanCached(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(100, 0, 1))
	day2 := day1.AddDate(0, 0, 1)

	mustPlan(t, tr, day1)
	if _, err := tr.Apply(context.Background(), uid, AddPage(), day2); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	out := mustPlan(t, tr, day2)
	want := []review.SectionRef{{Number: 2}}
	if out.Status != PlanReady || !reflect.DeepEqual(out.Plan.Sections, want) {
		t.Fatalf("day2 plan = %v %v, want PlanReady %v", out.Status, out.Plan.Sections, want)
	}
	for i := 0; i < 2; i++ {
		if again := mustPlan(t, tr, day2.Add(time.Hour)); again.Status != PlanAlreadySent {
			t.Errorf("repeat %d Status = %v, want PlanAlreadySent", i, again.Status)
		}
	}
	if got := store.user(uid).LastSectionUsed; got != 2 {
		t.Errorf("LastSectionUsed = %d, want 2", got)
	}
}

func TestUncommittedPlanIsBuiltAgain(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(100, 0, 1))
	ctx := context.Background()

	first, err := tr.ComputeTodayPlan(ctx, uid, day1)
	if err != nil {
		t.Fatalf("ComputeTodayPlan() error = %v", err)
	}
	if saved := store.user(uid); saved.LastSectionUsed != 0 || saved.CachedPlanDate != "" {
		t.Fatalf("plan stored before commit: %+v", saved)
	}

	retry := mustPlan(t, tr, day1)
	if retry.Status != PlanReady || !reflect.DeepEqual(retry.Plan.Sections, first.Plan.Sections) {
		t.Errorf("retry = %v %v, want PlanReady %v", retry.Status, retry.Plan.Sections, first.Plan.Sections)
	}
	if saved := store.user(uid); saved.LastSectionUsed != 1 || saved.CachedPlanDate != "2025-03-10" {
		t.Errorf("after commit: %+v", saved)
	}
}

func TestCommitPlanKeepsConcurrentEdits(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(100, 0, 1))
	ctx := context.Background()

	out, err := tr.ComputeTodayPlan(ctx, uid, day1)
	if err != nil {
		t.Fatalf("ComputeTodayPlan() error = %v", err)
	}
	mustApply(t, tr, SetSectionsPerDay(3))
	if err := tr.CommitPlan(ctx, out); err != nil {
		t.Fatalf("CommitPlan() error = %v", err)
	}
	saved := store.user(uid)
	if saved.SectionsPerDay != 3 || saved.LastSectionUsed != 1 {
		t.Errorf("after commit: %+v", saved)
	}
	if saved.CachedPlanDate != "" {
		t.Errorf("CachedPlanDate = %q, want it left cleared by the edit", saved.CachedPlanDate)
	}
}

func TestCommitPlanStoreFailure(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(100, 0, 1))
	ctx := context.Background()

	out, err := tr.ComputeTodayPlan(ctx, uid, day1)
	if err != nil {
		t.Fatalf("ComputeTodayPlan() error = %v", err)
	}
	store.failSave = true
	if err := tr.CommitPlan(ctx, out); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("CommitPlan() error = %v, want ErrStoreUnavailable", err)
	}
	if got := store.user(uid).LastSectionUsed; got != 0 {
		t.Errorf("LastSectionUsed = %d, want 0", got)
	}
}

func TestApplyUndoRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		start models.UserProgress
		m     Mutation
		check func(models.UserProgress) bool
	}{
		{"add page", progress(10, 0, 1), AddPage(),
			func(p models.UserProgress) bool { return p.PagesMemorized == 10 }},
		{"set pages", progress(10, 0, 1), SetPages(200),
			func(p models.UserProgress) bool { return p.PagesMemorized == 10 }},
		{"sections per day", progress(10, 0, 1), SetSectionsPerDay(3),
			func(p models.UserProgress) bool { return p.SectionsPerDay == 1 }},
		{"add priority", progress(10, 0, 1, 4), AddPriority(9, 2),
			func(p models.UserProgress) bool { return reflect.DeepEqual(p.PriorityList, []int{4}) }},
		{"remove priority", progress(10, 0, 1, 4, 9), RemovePriority(9),
			func(p models.UserProgress) bool { return reflect.DeepEqual(p.PriorityList, []int{4, 9}) }},
		{"clear priority", progress(10, 0, 1, 4, 9), ClearPriority(),
			func(p models.UserProgress) bool { return reflect.DeepEqual(p.PriorityList, []int{4, 9}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, store, _ := newTestTracker(t)
			store.put(tt.start)

			res := mustApply(t, tr, tt.m)
			if !res.Undoable {
				t.Fatal("action not undoable")
			}
			if tt.check(store.user(uid)) {
				t.Fatal("mutation had no effect")
			}

			undo, err := tr.UndoLast(context.Background(), uid, day1)
			if err != nil {
				t.Fatalf("UndoLast() error = %v", err)
			}
			if undo.Action.ActionType != tt.m.Type {
				t.Errorf("undone %s, want %s", undo.Action.ActionType, tt.m.Type)
			}
			if !tt.check(store.user(uid)) {
				t.Errorf("state after undo = %+v", store.user(uid))
			}
			if store.actionCount() != 0 {
				t.Errorf("%d actions left after undo", store.actionCount())
			}
		})
	}
}

func TestUndoWalksBack(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(10, 0, 1))

	mustApply(t, tr, AddPage())
	mustApply(t, tr, AddPage())
	for _, want := range []int{11, 10} {
		if _, err := tr.UndoLast(context.Background(), uid, day1); err != nil {
			t.Fatalf("UndoLast() error = %v", err)
		}
		if got := store.user(uid).PagesMemorized; got != want {
			t.Errorf("PagesMemorized = %d, want %d", got, want)
		}
	}

	_, err := tr.UndoLast(context.Background(), uid, day1)
	if !errors.Is(err, ErrNoActionToUndo) {
		t.Errorf("UndoLast() on empty log error = %v, want ErrNoActionToUndo", err)
	}
}

func TestUndoRecordsSnapshot(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(10, 0, 1))

	mustApply(t, tr, SetPages(50))
	if _, err := tr.UndoLast(context.Background(), uid, day1); err != nil {
		t.Fatalf("UndoLast() error = %v", err)
	}
	stat, _ := store.GetByDate(context.Background(), uid, "2025-03-10")
	if stat == nil || stat.PagesMemorized != 10 {
		t.Errorf("snapshot after undo = %+v, want 10 pages", stat)
	}
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		m    Mutation
	}{
		{"negative pages", SetPages(-1)},
		{"too many pages", SetPages(605)},
		{"zero sections per day", SetSectionsPerDay(0)},
		{"six sections per day", SetSectionsPerDay(6)},
		{"juz zero", AddPriority(0)},
		{"juz 31", RemovePriority(3, 31)},
		{"empty list", AddPriority()},
		{"unknown", Mutation{Type: "NOPE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, store, _ := newTestTracker(t)
			store.put(progress(10, 0, 1, 3))

			_, err := tr.Apply(context.Background(), uid, tt.m, day1)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Apply() error = %v, want ErrInvalidInput", err)
			}
			if store.saveCalls != 0 || store.actionCount() != 0 {
				t.Error("rejected mutation reached the store")
			}
		})
	}
}

func TestApplyAllPagesMemorized(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(604, 0, 1))

	_, err := tr.Apply(context.Background(), uid, AddPage(), day1)
	if !errors.Is(err, ErrAllPagesMemorized) || !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Apply() error = %v, want ErrAllPagesMemorized", err)
	}
}

func TestApplyNoChange(t *testing.T) {
	tests := []struct {
		name string
		m    Mutation
	}{
		{"same pages", SetPages(10)},
		{"same sections per day", SetSectionsPerDay(1)},
		{"already priority", AddPriority(3)},
		{"not in priority", RemovePriority(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, store, _ := newTestTracker(t)
			store.put(progress(10, 0, 1, 3))

			_, err := tr.Apply(context.Background(), uid, tt.m, day1)
			if !errors.Is(err, ErrNoChange) {
				t.Fatalf("Apply() error = %v, want ErrNoChange", err)
			}
			if store.actionCount() != 0 {
				t.Error("no-op mutation was logged")
			}
		})
	}

	t.Run("clear empty", func(t *testing.T) {
		tr, store, _ := newTestTracker(t)
		store.put(progress(10, 0, 1))
		if _, err := tr.Apply(context.Background(), uid, ClearPriority(), day1); !errors.Is(err, ErrNoChange) {
			t.Errorf("Apply() error = %v, want ErrNoChange", err)
		}
	})
}

func TestApplyActionLogFailure(t *testing.T) {
	tr, store, logs := newTestTracker(t)
	store.put(progress(10, 0, 1))
	store.failAppend = true

	res := mustApply(t, tr, AddPage())
	if res.Undoable {
		t.Error("Undoable = true although the action was not logged")
	}
	if got := store.user(uid).PagesMemorized; got != 11 {
		t.Errorf("PagesMemorized = %d, want 11", got)
	}
	if !strings.Contains(logs.String(), "will not be undoable") {
		t.Errorf("log = %q, want a not undoable warning", logs.String())
	}
	if _, err := tr.UndoLast(context.Background(), uid, day1); !errors.Is(err, ErrNoActionToUndo) {
		t.Errorf("UndoLast() error = %v, want ErrNoActionToUndo", err)
	}
}

func TestApplyStoreFailureKeepsState(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	p := progress(10, 0, 1)
	p.CachedPlanDate = "2025-03-10"
	store.put(p)
	store.failSave = true

	_, err := tr.Apply(context.Background(), uid, SetPages(100), day1)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Apply() error = %v, want ErrStoreUnavailable", err)
	}
	if !reflect.DeepEqual(store.user(uid), p) {
		t.Errorf("stored state = %+v, want %+v", store.user(uid), p)
	}
	if store.actionCount() != 0 {
		t.Error("action of a failed mutation left in the log")
	}
}

func TestUndoStoreFailureKeepsAction(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(10, 0, 1))
	mustApply(t, tr, AddPage())
	store.failSave = true

	if _, err := tr.UndoLast(context.Background(), uid, day1); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("UndoLast() error = %v, want ErrStoreUnavailable", err)
	}
	if store.actionCount() != 1 {
		t.Error("action consumed although undo was not saved")
	}
	if got := store.user(uid).PagesMemorized; got != 11 {
		t.Errorf("PagesMemorized = %d, want 11", got)
	}
}

func TestUndoDeleteFailureStillSucceeds(t *testing.T) {
	tr, store, logs := newTestTracker(t)
	store.put(progress(10, 0, 1))
	mustApply(t, tr, AddPage())
	store.failDelete = true

	if _, err := tr.UndoLast(context.Background(), uid, day1); err != nil {
		t.Fatalf("UndoLast() error = %v", err)
	}
	if got := store.user(uid).PagesMemorized; got != 10 {
		t.Errorf("PagesMemorized = %d, want 10", got)
	}
	if !strings.Contains(logs.String(), "record not deleted") {
		t.Errorf("log = %q", logs.String())
	}
}

func TestStatsFailureIsDegraded(t *testing.T) {
	tr, store, logs := newTestTracker(t)
	store.put(progress(25, 0, 1))
	store.failGetStat = true
	store.failUpsert = true

	out := mustPlan(t, tr, day1)
	if out.Status != PlanReady {
		t.Errorf("Status = %v, want PlanReady", out.Status)
	}
	if !errors.Is(out.StatsErr, ErrStoreUnavailable) {
		t.Errorf("StatsErr = %v, want ErrStoreUnavailable", out.StatsErr)
	}
	if !strings.Contains(logs.String(), "failed to record daily stats") {
		t.Errorf("log = %q", logs.String())
	}

	res := mustApply(t, tr, AddPage())
	if res.StatsErr == nil {
		t.Error("Apply() StatsErr = nil, want the snapshot failure")
	}
}

func TestComputeTodayPlanStoreFailure(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.failGetUser = true

	if _, err := tr.ComputeTodayPlan(context.Background(), uid, day1); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
}

func TestResetPlan(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(25, 0, 1))
	mustPlan(t, tr, day1)

	if err := tr.ResetPlan(context.Background(), uid); err != nil {
		t.Fatalf("ResetPlan() error = %v", err)
	}
	if store.actionCount() != 0 {
		t.Error("reset was logged as an action")
	}
	if out := mustPlan(t, tr, day1); out.Status != PlanReady {
		t.Errorf("Status after reset = %v, want PlanReady", out.Status)
	}
}

func TestRecordPlanMessage(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	prev, err := tr.RecordPlanMessage(ctx, uid, 100)
	if err != nil || prev != 0 {
		t.Fatalf("RecordPlanMessage() = %d, %v, want 0, nil", prev, err)
	}
	prev, err = tr.RecordPlanMessage(ctx, uid, 101)
	if err != nil || prev != 100 {
		t.Errorf("RecordPlanMessage() = %d, %v, want 100, nil", prev, err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.put(progress(10, 0, 1))
	mustApply(t, tr, AddPage())
	mustApply(t, tr, SetSectionsPerDay(2))
	mustApply(t, tr, AddPriority(5))

	recs, err := tr.History(context.Background(), uid, 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	got := []models.ActionType{recs[0].ActionType, recs[1].ActionType}
	want := []models.ActionType{models.ActionAddPriority, models.ActionSetSectionsPerDay}
	if len(recs) != 2 || !reflect.DeepEqual(got, want) {
		t.Errorf("History() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(recs[0].NewPriorityList, []int{5}) {
		t.Errorf("NewPriorityList = %v, want [5]", recs[0].NewPriorityList)
	}
}

func TestWeeklySummary(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()
	for _, s := range []models.DailyStat{
		{UserID: uid, Date: "2025-03-03", DailyProgressPages: 50, PagesRepeated: 20},
		{UserID: uid, Date: "2025-03-04", DailyProgressPages: 2, PagesRepeated: 20},
		{UserID: uid, Date: "2025-03-08", DailyProgressPages: 1, PagesRepeated: 40},
		{UserID: uid, Date: "2025-03-10", DailyProgressPages: 3, PagesRepeated: 40},
	} {
		s := s
		store.Upsert(ctx, &s)
	}

	sum, err := tr.WeeklySummary(ctx, uid, day1)
	if err != nil {
		t.Fatalf("WeeklySummary() error = %v", err)
	}
	if sum.From != "2025-03-04" || sum.To != "2025-03-10" {
		t.Errorf("range = %s..%s", sum.From, sum.To)
	}
	if len(sum.Days) != 3 || sum.NewPages != 6 || sum.PagesRepeated != 100 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.AverageRepeated != 33 {
		t.Errorf("AverageRepeated = %d, want 33", sum.AverageRepeated)
	}
}

func TestWeeklySummaryEmpty(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	sum, err := tr.WeeklySummary(context.Background(), uid, day1)
	if err != nil {
		t.Fatalf("WeeklySummary() error = %v", err)
	}
	if sum.AverageRepeated != 0 || len(sum.Days) != 0 {
		t.Errorf("summary = %+v", sum)
	}
}
