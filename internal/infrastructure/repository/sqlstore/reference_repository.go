package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	qb "github.com/riskibarqy/fpl-creator-match/internal/platform/querybuilder"
)

const referencesTable = "reference_squads"

var referenceColumns = []string{"team_name", "manager_id", "gameweek", "picks", "formation", "fetched_at", "refreshed_at"}

type ReferenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) ListReferences(ctx context.Context) ([]squad.Reference, error) {
	query, args, err := qb.Select(referenceColumns...).
		From(referencesTable).
		OrderBy("team_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list references query: %w", err)
	}

	var rows []referenceTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	out := make([]squad.Reference, 0, len(rows))
	for _, row := range rows {
		ref, err := referenceFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func (r *ReferenceRepository) GetReference(ctx context.Context, teamName string) (squad.Reference, bool, error) {
	query, args, err := qb.Select(referenceColumns...).
		From(referencesTable).
		Where(qb.Eq("team_name", strings.TrimSpace(teamName))).
		ToSQL()
	if err != nil {
		return squad.Reference{}, false, fmt.Errorf("build get reference query: %w", err)
	}

	var row referenceTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return squad.Reference{}, false, nil
		}
		return squad.Reference{}, false, fmt.Errorf("get reference %q: %w", teamName, err)
	}

	ref, err := referenceFromRow(row)
	if err != nil {
		return squad.Reference{}, false, err
	}
	return ref, true, nil
}

func (r *ReferenceRepository) UpsertReference(ctx context.Context, ref squad.Reference) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("invalid reference: %w", err)
	}

	picks, err := sonic.MarshalString(ref.Snapshot.Picks)
	if err != nil {
		return fmt.Errorf("encode reference picks: %w", err)
	}

	model := referenceTableModel{
		TeamName:    strings.TrimSpace(ref.TeamName),
		ManagerID:   ref.ManagerID,
		Gameweek:    ref.Snapshot.Gameweek,
		Picks:       picks,
		Formation:   ref.Snapshot.Formation,
		FetchedAt:   ref.Snapshot.FetchedAt.UTC(),
		RefreshedAt: ref.RefreshedAt.UTC(),
	}
	query, args, err := qb.InsertModel(referencesTable, model,
		qb.OnConflictUpdate([]string{"team_name"}, referenceColumns[1:]))
	if err != nil {
		return fmt.Errorf("build upsert reference query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert reference %q: %w", ref.TeamName, err)
	}
	return nil
}

func referenceFromRow(row referenceTableModel) (squad.Reference, error) {
	var picks []squad.Pick
	if err := sonic.UnmarshalString(row.Picks, &picks); err != nil {
		return squad.Reference{}, fmt.Errorf("decode picks of reference %q: %w", row.TeamName, err)
	}

	return squad.Reference{
		TeamName:  row.TeamName,
		ManagerID: row.ManagerID,
		Snapshot: squad.Snapshot{
			ManagerID: row.ManagerID,
			Gameweek:  row.Gameweek,
			Picks:     picks,
			Formation: row.Formation,
			FetchedAt: row.FetchedAt,
		},
		RefreshedAt: row.RefreshedAt,
	}, nil
}
