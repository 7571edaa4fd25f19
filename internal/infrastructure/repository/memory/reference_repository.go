package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
)

type ReferenceRepository struct {
	mu    sync.RWMutex
	items map[string]squad.Reference
}

func NewReferenceRepository() *ReferenceRepository {
	return &ReferenceRepository{items: make(map[string]squad.Reference)}
}

func (r *ReferenceRepository) ListReferences(_ context.Context) ([]squad.Reference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]squad.Reference, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamName < out[j].TeamName })
	return out, nil
}

func (r *ReferenceRepository) GetReference(_ context.Context, teamName string) (squad.Reference, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[strings.TrimSpace(teamName)]
	return item, ok, nil
}

func (r *ReferenceRepository) UpsertReference(_ context.Context, ref squad.Reference) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("invalid reference: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[strings.TrimSpace(ref.TeamName)] = ref
	return nil
}
