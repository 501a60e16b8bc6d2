// Package tracker ties the juz arithmetic and the review rotation to the
// stores: it builds the daily plan once per day, applies user edits and
// undoes them.
package tracker

import (
	"context"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"github.com/example/hifzbot/internal/juz"
	"github.com/example/hifzbot/internal/review"
	"github.com/example/hifzbot/pkg/models"
	"github.com/go-playground/validator/v10"
)

// PlanStatus tells the caller how to present ComputeTodayPlan's result.
type PlanStatus int

const (
	PlanReady PlanStatus = iota
	PlanNothingToReview
	PlanAlreadySent
)

// Overview summarizes a user's progress.
type Overview struct {
	PagesMemorized int
	BaseJuz        int
	PriorityJuz    int
	TotalJuz       int
	Current        juz.Progress
	SectionsPerDay int
}

// OverviewOf computes the overview of user.
func OverviewOf(user models.UserProgress) Overview {
	base := juz.BaseCount(user.PagesMemorized)
	return Overview{
		PagesMemorized: user.PagesMemorized,
		BaseJuz:        base,
		PriorityJuz:    len(user.PriorityList),
		TotalJuz:       base + len(user.PriorityList),
		Current:        juz.CurrentProgress(user.PagesMemorized),
		SectionsPerDay: user.SectionsPerDay,
	}
}

// PlanOutcome is the result of ComputeTodayPlan.
type PlanOutcome struct {
	Status PlanStatus
	Plan   review.Plan // zero unless Status is PlanReady
	// User is the state to store with CommitPlan once the plan is delivered.
	User     models.UserProgress
	Overview Overview
	// StatsErr is set when the daily snapshot could not be written; the plan is still valid.
	StatsErr error
}

// MutationResult is the result of Apply.
type MutationResult struct {
	User     models.UserProgress
	Previous models.UserProgress
	Action   models.ActionRecord
	// Undoable is false when the action could not be logged.
	Undoable bool
	StatsErr error
}

// UndoOutcome is the result of UndoLast.
type UndoOutcome struct {
	Action   models.ActionRecord
	User     models.UserProgress
	StatsErr error
}

// WeeklySummary aggregates the snapshots of the last seven days.
type WeeklySummary struct {
	From, To      string
	Days          []models.DailyStat
	NewPages      int
	PagesRepeated int
	// AverageRepeated is PagesRepeated per recorded day, rounded.
	AverageRepeated int
}

// Tracker is the entry point used by the bot and the scheduler.
type Tracker struct {
	users     UserStore
	statStore StatStore
	stats     *StatsRecorder
	actions   *ActionLog
	validate  *validator.Validate
	logger    *log.Logger
}

// New creates a Tracker over the given stores. A nil logger logs to the standard logger.
func New(users UserStore, stats StatStore, actions ActionStore, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		users:     users,
		statStore: stats,
		stats:     NewStatsRecorder(stats),
		actions:   NewActionLog(actions, logger),
		validate:  validator.New(),
		logger:    logger,
	}
}

// GetUser returns the progress record of userID, creating it on first use.
func (t *Tracker) GetUser(ctx context.Context, userID int64) (*models.UserProgress, error) {
	user, err := t.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return user, nil
}

// ComputeTodayPlan builds today's plan without storing it. The rotation
// advances at most once per calendar day: the caller delivers the plan and
// then calls CommitPlan, after which later calls the same day report
// PlanAlreadySent unless a mutation cleared the cached date in between.
func (t *Tracker) ComputeTodayPlan(ctx context.Context, userID int64, today time.Time) (*PlanOutcome, error) {
	user, err := t.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	date := dateOf(today)
	stale := true
	if user.CachedPlanDate == date {
		planned, err := t.statStore.GetByDate(ctx, userID, date)
		if err != nil {
			t.logger.Printf("failed to get today's snapshot for user %d, keeping cached plan: %v", userID, err)
			stale = false
		} else {
			stale = review.NeedsRecompute(*user, date, planned)
		}
	}
	if !stale {
		return &PlanOutcome{Status: PlanAlreadySent, User: *user, Overview: OverviewOf(*user)}, nil
	}

	out := &PlanOutcome{}
	if _, err := t.stats.RecordSnapshot(ctx, userID, user.PagesMemorized, user.PriorityList, user.SectionsPerDay, today); err != nil {
		t.logger.Printf("failed to record daily stats for user %d: %v", userID, err)
		out.StatsErr = err
	}

	sections := review.TodaySections(user.LastSectionUsed, user.PagesMemorized, user.PriorityList, user.SectionsPerDay)
	plan, ok := review.BuildPlan(sections, user.PagesMemorized, user.SectionsPerDay)

	next := user.Clone()
	next.CachedPlanDate = date
	if len(sections) > 0 {
		next.LastSectionUsed = sections[len(sections)-1].Number
	}

	out.User = next
	out.Overview = OverviewOf(next)
	if ok {
		out.Status = PlanReady
		out.Plan = plan
	} else {
		out.Status = PlanNothingToReview
	}
	return out, nil
}

// CommitPlan marks the plan of out as delivered: it stores the advanced
// rotation cursor and the cached plan date. Edits made while the plan was
// being sent survive, and if they touched the plan inputs the cached date is
// left cleared so the next request rebuilds.
func (t *Tracker) CommitPlan(ctx context.Context, out *PlanOutcome) error {
	if out.Status == PlanAlreadySent {
		return nil
	}
	user, err := t.GetUser(ctx, out.User.UserID)
	if err != nil {
		return err
	}
	next := user.Clone()
	next.LastSectionUsed = out.User.LastSectionUsed
	if samePlanInputs(*user, out.User) {
		next.CachedPlanDate = out.User.CachedPlanDate
	}
	if err := t.users.Save(ctx, &next); err != nil {
		return storeError("save plan state", err)
	}
	return nil
}

func samePlanInputs(a, b models.UserProgress) bool {
	return a.PagesMemorized == b.PagesMemorized &&
		a.SectionsPerDay == b.SectionsPerDay &&
		slices.Equal(a.PriorityList, b.PriorityList)
}

// Apply validates and performs m. The action is logged before the user
// record is written; if the write fails the stored record is unchanged and
// the logged action is withdrawn.
func (t *Tracker) Apply(ctx context.Context, userID int64, m Mutation, today time.Time) (*MutationResult, error) {
	if err := validateMutation(t.validate, m); err != nil {
		return nil, err
	}
	user, err := t.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, rec, err := apply(*user, m)
	if err != nil {
		return nil, err
	}

	undoable := t.actions.Record(ctx, &rec)
	if err := t.users.Save(ctx, &next); err != nil {
		if undoable {
			if derr := t.actions.Consume(ctx, &rec); derr != nil {
				t.logger.Printf("failed to withdraw action %d for user %d: %v", rec.ID, userID, derr)
			}
		}
		return nil, storeError("save user", err)
	}

	res := &MutationResult{User: next, Previous: *user, Action: rec, Undoable: undoable}
	if touchesSnapshot(m.Type) {
		res.StatsErr = t.snapshot(ctx, next, today)
	}
	return res, nil
}

// UndoLast reverts the most recent logged action. Calling it again walks
// further back through the log.
func (t *Tracker) UndoLast(ctx context.Context, userID int64, today time.Time) (*UndoOutcome, error) {
	rec, err := t.actions.Last(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := t.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	restored := user.Clone()
	switch {
	case rec.ActionType == models.ActionAddPage, rec.ActionType == models.ActionSetPageCountManual:
		restored.PagesMemorized = rec.PreviousValue
	case rec.ActionType == models.ActionSetSectionsPerDay:
		restored.SectionsPerDay = rec.PreviousValue
	case rec.ActionType.IsPriorityEdit():
		restored.PriorityList = juz.Normalize(rec.PreviousPriorityList)
	default:
		if err := t.actions.Consume(ctx, rec); err != nil {
			t.logger.Printf("failed to drop unknown action %d: %v", rec.ID, err)
		}
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, rec.ActionType)
	}
	restored.CachedPlanDate = ""

	if err := t.users.Save(ctx, &restored); err != nil {
		return nil, storeError("save user", err)
	}
	if err := t.actions.Consume(ctx, rec); err != nil {
		t.logger.Printf("undo of action %d for user %d applied but record not deleted: %v", rec.ID, userID, err)
	}

	out := &UndoOutcome{Action: *rec, User: restored}
	if touchesSnapshot(rec.ActionType) {
		out.StatsErr = t.snapshot(ctx, restored, today)
	}
	return out, nil
}

func (t *Tracker) snapshot(ctx context.Context, user models.UserProgress, today time.Time) error {
	_, err := t.stats.RecordSnapshot(ctx, user.UserID, user.PagesMemorized, user.PriorityList, user.SectionsPerDay, today)
	if err != nil {
		t.logger.Printf("failed to record daily stats for user %d: %v", user.UserID, err)
	}
	return err
}

// ResetPlan forgets that today's plan was sent so the next request builds it again.
func (t *Tracker) ResetPlan(ctx context.Context, userID int64) error {
	user, err := t.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.CachedPlanDate == "" {
		return nil
	}
	next := user.Clone()
	next.CachedPlanDate = ""
	if err := t.users.Save(ctx, &next); err != nil {
		return storeError("save user", err)
	}
	return nil
}

// RecordPlanMessage stores the id of the message carrying the latest plan and
// returns the id it replaces, 0 when there was none.
func (t *Tracker) RecordPlanMessage(ctx context.Context, userID int64, messageID int) (int, error) {
	user, err := t.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := t.users.SetPlanMessage(ctx, userID, messageID); err != nil {
		return 0, storeError("set plan message", err)
	}
	return user.PlanMessageID, nil
}

// History returns up to limit of the user's latest actions, newest first.
func (t *Tracker) History(ctx context.Context, userID int64, limit int) ([]models.ActionRecord, error) {
	return t.actions.Recent(ctx, userID, limit)
}

// AllStats returns every snapshot of the user, oldest first.
func (t *Tracker) AllStats(ctx context.Context, userID int64) ([]models.DailyStat, error) {
	stats, err := t.statStore.ListAll(ctx, userID)
	if err != nil {
		return nil, storeError("list stats", err)
	}
	return stats, nil
}

// WeeklySummary aggregates the snapshots from six days before today up to today.
func (t *Tracker) WeeklySummary(ctx context.Context, userID int64, today time.Time) (*WeeklySummary, error) {
	from, to := dateOf(today.AddDate(0, 0, -6)), dateOf(today)
	days, err := t.statStore.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, storeError("list weekly stats", err)
	}

	s := &WeeklySummary{From: from, To: to, Days: days}
	for _, d := range days {
		s.NewPages += d.DailyProgressPages
		s.PagesRepeated += d.PagesRepeated
	}
	if len(days) > 0 {
		s.AverageRepeated = int(math.Round(float64(s.PagesRepeated) / float64(len(days))))
	}
	return s, nil
}
