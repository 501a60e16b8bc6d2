package tracker

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/example/hifzbot/pkg/models"
)

var errBoom = errors.New("boom")

// memStore implements every store interface in memory. The fail* switches
// make the matching calls return errBoom.
type memStore struct {
	mu      sync.Mutex
	users   map[int64]models.UserProgress
	stats   map[int64]map[string]models.DailyStat
	actions []models.ActionRecord
	nextID  int64

	failGetUser  bool
	failSave     bool
	failGetStat  bool
	failUpsert   bool
	failAppend   bool
	failDelete   bool
	failLatest   bool
	saveCalls    int
	upsertCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]models.UserProgress),
		stats: make(map[int64]map[string]models.DailyStat),
	}
}

func (s *memStore) put(p models.UserProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.UserID] = p.Clone()
}

func (s *memStore) user(id int64) models.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].Clone()
}

func (s *memStore) GetOrCreate(_ context.Context, userID int64) (*models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGetUser {
		return nil, errBoom
	}
	p, ok := s.users[userID]
	if !ok {
		p = *models.NewUserProgress(userID)
		s.users[userID] = p
	}
	c := p.Clone()
	return &c, nil
}

func (s *memStore) Save(_ context.Context, p *models.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.failSave {
		return errBoom
	}
	s.users[p.UserID] = p.Clone()
	return nil
}

func (s *memStore) SetPlanMessage(_ context.Context, userID int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errBoom
	}
	p := s.users[userID]
	p.PlanMessageID = messageID
	s.users[userID] = p
	return nil
}

func (s *memStore) GetByDate(_ context.Context, userID int64, date string) (*models.DailyStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGetStat {
		return nil, errBoom
	}
	st, ok := s.stats[userID][date]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *memStore) Upsert(_ context.Context, stat *models.DailyStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.failUpsert {
		return errBoom
	}
	if s.stats[stat.UserID] == nil {
		s.stats[stat.UserID] = make(map[string]models.DailyStat)
	}
	s.stats[stat.UserID][stat.Date] = *stat
	return nil
}

func (s *memStore) ListRange(_ context.Context, userID int64, from, to string) ([]models.DailyStat, error) {
	all, _ := s.ListAll(context.Background(), userID)
	var out []models.DailyStat
	for _, st := range all {
		if st.Date >= from && st.Date <= to {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *memStore) ListAll(_ context.Context, userID int64) ([]models.DailyStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DailyStat
	for _, st := range s.stats[userID] {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *memStore) Append(_ context.Context, rec *models.ActionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend {
		return errBoom
	}
	s.nextID++
	rec.ID = s.nextID
	s.actions = append(s.actions, *rec)
	return nil
}

func (s *memStore) Latest(_ context.Context, userID int64) (*models.ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLatest {
		return nil, errBoom
	}
	for i := len(s.actions) - 1; i >= 0; i-- {
		if s.actions[i].UserID == userID {
			rec := s.actions[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *memStore) Recent(_ context.Context, userID int64, limit int) ([]models.ActionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ActionRecord
	for i := len(s.actions) - 1; i >= 0 && len(out) < limit; i-- {
		if s.actions[i].UserID == userID {
			out = append(out, s.actions[i])
		}
	}
	return out, nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errBoom
	}
	for i, rec := range s.actions {
		if rec.ID == id {
			s.actions = append(s.actions[:i], s.actions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) actionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}
