package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
)

// ManagerRepository keeps the roster in process. It follows the SQL store's
// ordering and checkpoint rules so services behave the same on both.
type ManagerRepository struct {
	mu       sync.RWMutex
	managers map[int64]manager.Manager
	progress manager.Progress
	skipped  map[int]manager.SkippedPage
	now      func() time.Time
}

func NewManagerRepository(seed []manager.Manager) *ManagerRepository {
	r := &ManagerRepository{
		managers: make(map[int64]manager.Manager, len(seed)),
		skipped:  make(map[int]manager.SkippedPage),
		now:      time.Now,
	}
	for _, m := range seed {
		r.managers[m.ID] = m
	}
	return r
}

func (r *ManagerRepository) Upsert(_ context.Context, managers []manager.Manager) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	written, _ := r.upsertLocked(managers)
	return written, nil
}

func (r *ManagerRepository) CommitPage(_ context.Context, page int, managers []manager.Manager) (manager.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, inserted := r.upsertLocked(managers)
	r.advanceLocked(page, len(managers), inserted)
	delete(r.skipped, page)
	return r.progress, nil
}

func (r *ManagerRepository) AdvanceProgress(_ context.Context, page, fetchedCount int) (manager.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advanceLocked(page, fetchedCount, 0)
	return r.progress, nil
}

func (r *ManagerRepository) FindByName(_ context.Context, query string, limit int) ([]manager.Manager, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = manager.DefaultSearchLimit
	}

	r.mu.RLock()
	type ranked struct {
		m    manager.Manager
		rank int
	}
	matches := make([]ranked, 0)
	for _, m := range r.managers {
		name := strings.ToLower(m.Name)
		team := strings.ToLower(m.TeamName)
		switch {
		case name == needle || team == needle:
			matches = append(matches, ranked{m: m, rank: 0})
		case strings.HasPrefix(name, needle) || strings.HasPrefix(team, needle):
			matches = append(matches, ranked{m: m, rank: 1})
		case strings.Contains(name, needle) || strings.Contains(team, needle):
			matches = append(matches, ranked{m: m, rank: 2})
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		if matches[i].m.Name != matches[j].m.Name {
			return matches[i].m.Name < matches[j].m.Name
		}
		return matches[i].m.ID < matches[j].m.ID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]manager.Manager, 0, len(matches))
	for _, item := range matches {
		out = append(out, item.m)
	}
	return out, nil
}

func (r *ManagerRepository) FindByID(_ context.Context, id int64) (manager.Manager, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.managers[id]
	return m, ok, nil
}

func (r *ManagerRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.managers), nil
}

func (r *ManagerRepository) GetProgress(_ context.Context) (manager.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.progress, nil
}

func (r *ManagerRepository) MarkBatchStarted(_ context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := at.UTC()
	r.progress.LastBatchStartTime = &started
	r.progress.LastBatchEndTime = nil
	r.progress.UpdatedAt = r.now().UTC()
	return nil
}

func (r *ManagerRepository) MarkBatchFinished(_ context.Context, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := at.UTC()
	r.progress.LastBatchEndTime = &finished
	r.progress.UpdatedAt = r.now().UTC()
	return nil
}

func (r *ManagerRepository) RecordSkippedPage(_ context.Context, page int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := r.skipped[page]
	item.Page = page
	item.Attempts++
	item.Reason = reason
	item.SkippedAt = r.now().UTC()
	r.skipped[page] = item
	return nil
}

func (r *ManagerRepository) ListSkippedPages(_ context.Context) ([]manager.SkippedPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]manager.SkippedPage, 0, len(r.skipped))
	for _, item := range r.skipped {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out, nil
}

// upsertLocked returns the distinct ids written and how many were new.
func (r *ManagerRepository) upsertLocked(managers []manager.Manager) (int, int) {
	now := r.now().UTC()
	seen := make(map[int64]struct{}, len(managers))
	inserted := 0
	for _, m := range managers {
		if _, ok := r.managers[m.ID]; !ok {
			inserted++
		}
		m.Name = strings.TrimSpace(m.Name)
		m.TeamName = strings.TrimSpace(m.TeamName)
		m.UpdatedAt = now
		r.managers[m.ID] = m
		seen[m.ID] = struct{}{}
	}
	return len(seen), inserted
}

func (r *ManagerRepository) advanceLocked(page, fetchedCount, inserted int) {
	if page > r.progress.LastPage {
		r.progress.LastPage = page
	}
	r.progress.LastManagerCount = fetchedCount
	r.progress.TotalManagersFetched += inserted
	r.progress.UpdatedAt = r.now().UTC()
}
