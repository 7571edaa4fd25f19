package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
)

// MinQueryLength is the shortest name query sent to the store.
const MinQueryLength = 4

type ResolutionStatus string

const (
	ResolutionUnique        ResolutionStatus = "unique"
	ResolutionAmbiguous     ResolutionStatus = "ambiguous"
	ResolutionNotFound      ResolutionStatus = "not_found"
	ResolutionQueryTooShort ResolutionStatus = "query_too_short"
)

// Resolution is the outcome of a lookup. Every status is a normal result;
// NotFound and QueryTooShort send the caller to direct id entry.
type Resolution struct {
	Status     ResolutionStatus  `json:"status"`
	Query      string            `json:"query"`
	ManagerID  int64             `json:"manager_id,omitempty"`
	Manager    *manager.Manager  `json:"manager,omitempty"`
	Direct     bool              `json:"direct,omitempty"`
	Candidates []manager.Manager `json:"candidates,omitempty"`
}

type ResolutionService struct {
	repo   manager.Repository
	limit  int
	logger *logging.Logger
}

func NewResolutionService(repo manager.Repository, logger *logging.Logger) *ResolutionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolutionService{
		repo:   repo,
		limit:  manager.DefaultSearchLimit,
		logger: logger.Named("resolution"),
	}
}

func (s *ResolutionService) Resolve(ctx context.Context, query string) (Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolutionService.Resolve")
	defer span.End()

	query = strings.TrimSpace(query)
	out := Resolution{Query: query}

	if id, ok := parseManagerID(query); ok {
		m, found, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return Resolution{}, fmt.Errorf("find manager %d: %w", id, err)
		}
		out.Status = ResolutionUnique
		out.ManagerID = id
		out.Direct = true
		if found {
			out.Manager = &m
		}
		return out, nil
	}

	if utf8.RuneCountInString(query) < MinQueryLength {
		out.Status = ResolutionQueryTooShort
		return out, nil
	}

	matches, err := s.repo.FindByName(ctx, query, s.limit)
	if err != nil {
		return Resolution{}, fmt.Errorf("find managers by name: %w", err)
	}

	switch len(matches) {
	case 0:
		out.Status = ResolutionNotFound
	case 1:
		out.Status = ResolutionUnique
		out.ManagerID = matches[0].ID
		out.Manager = &matches[0]
	default:
		if exact, ok := singleExactMatch(query, matches); ok {
			out.Status = ResolutionUnique
			out.ManagerID = exact.ID
			out.Manager = &exact
			out.Candidates = matches
			break
		}
		out.Status = ResolutionAmbiguous
		out.Candidates = matches
	}

	s.logger.DebugContext(ctx, "query resolved", "query", query, "status", out.Status, "matches", len(matches))
	return out, nil
}

// parseManagerID accepts a query made only of digits as a manager id.
func parseManagerID(query string) (int64, bool) {
	if query == "" {
		return 0, false
	}
	for _, r := range query {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(query, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func singleExactMatch(query string, matches []manager.Manager) (manager.Manager, bool) {
	var (
		found manager.Manager
		count int
	)
	for _, m := range matches {
		if strings.EqualFold(m.Name, query) || strings.EqualFold(m.TeamName, query) {
			found = m
			count++
		}
	}
	return found, count == 1
}
