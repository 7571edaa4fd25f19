package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	qb "github.com/riskibarqy/fpl-creator-match/internal/platform/querybuilder"
)

const (
	managersTable     = "fpl_managers"
	progressTable     = "fetch_progress"
	skippedPagesTable = "fetch_skipped_pages"
	progressRowID     = 1

	// Keeps multi-row upserts well under the bind parameter limits.
	upsertChunkSize = 500
)

var (
	managerColumns  = []string{"manager_id", "manager_name", "team_name", "updated_at"}
	progressColumns = []string{
		"last_page",
		"last_manager_count",
		"total_managers_fetched",
		"last_batch_start_time",
		"last_batch_end_time",
		"updated_at",
	}
)

type ManagerRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewManagerRepository(db *sqlx.DB) *ManagerRepository {
	return &ManagerRepository{db: db, now: time.Now}
}

func (r *ManagerRepository) Upsert(ctx context.Context, managers []manager.Manager) (int, error) {
	if len(managers) == 0 {
		return 0, nil
	}

	var written int
	err := withTx(ctx, r.db, "manager upsert", func(tx *sqlx.Tx) error {
		n, _, err := r.upsert(ctx, tx, managers)
		written = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (r *ManagerRepository) CommitPage(ctx context.Context, page int, managers []manager.Manager) (manager.Progress, error) {
	var progress manager.Progress
	err := withTx(ctx, r.db, "page commit", func(tx *sqlx.Tx) error {
		_, inserted, err := r.upsert(ctx, tx, managers)
		if err != nil {
			return err
		}
		if err := r.advance(ctx, tx, page, len(managers), inserted); err != nil {
			return err
		}
		if err := r.clearSkippedPage(ctx, tx, page); err != nil {
			return err
		}

		progress, err = r.getProgress(ctx, tx)
		return err
	})
	if err != nil {
		return manager.Progress{}, err
	}
	return progress, nil
}

func (r *ManagerRepository) AdvanceProgress(ctx context.Context, page, fetchedCount int) (manager.Progress, error) {
	var progress manager.Progress
	err := withTx(ctx, r.db, "progress advance", func(tx *sqlx.Tx) error {
		if err := r.advance(ctx, tx, page, fetchedCount, 0); err != nil {
			return err
		}

		var err error
		progress, err = r.getProgress(ctx, tx)
		return err
	})
	if err != nil {
		return manager.Progress{}, err
	}
	return progress, nil
}

func (r *ManagerRepository) FindByName(ctx context.Context, query string, limit int) ([]manager.Manager, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = manager.DefaultSearchLimit
	}
	prefix := qb.EscapeLike(needle) + "%"

	sqlQuery, args, err := qb.Select(managerColumns...).
		From(managersTable).
		Where(qb.Or(
			qb.ContainsFold("manager_name", needle),
			qb.ContainsFold("team_name", needle),
		)).
		OrderByExpr(`CASE
    WHEN LOWER(manager_name) = ? OR LOWER(team_name) = ? THEN 0
    WHEN LOWER(manager_name) LIKE ? ESCAPE '\' OR LOWER(team_name) LIKE ? ESCAPE '\' THEN 1
    ELSE 2
END`, needle, needle, prefix, prefix).
		OrderBy("manager_name", "manager_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find managers by name query: %w", err)
	}

	var rows []managerTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(sqlQuery), args...); err != nil {
		return nil, fmt.Errorf("find managers by name: %w", err)
	}

	out := make([]manager.Manager, 0, len(rows))
	for _, row := range rows {
		out = append(out, managerFromRow(row))
	}
	return out, nil
}

func (r *ManagerRepository) FindByID(ctx context.Context, id int64) (manager.Manager, bool, error) {
	query, args, err := qb.Select(managerColumns...).
		From(managersTable).
		Where(qb.Eq("manager_id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return manager.Manager{}, false, fmt.Errorf("build find manager by id query: %w", err)
	}

	var row managerTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return manager.Manager{}, false, nil
		}
		return manager.Manager{}, false, fmt.Errorf("find manager by id: %w", err)
	}
	return managerFromRow(row), true, nil
}

func (r *ManagerRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, r.db)
}

func (r *ManagerRepository) GetProgress(ctx context.Context) (manager.Progress, error) {
	return r.getProgress(ctx, r.db)
}

func (r *ManagerRepository) MarkBatchStarted(ctx context.Context, at time.Time) error {
	query, args, err := qb.Update(progressTable).
		Set("last_batch_start_time", at.UTC()).
		Set("last_batch_end_time", nil).
		Set("updated_at", r.now().UTC()).
		Where(qb.Eq("id", progressRowID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark batch started query: %w", err)
	}
	return r.execProgressUpdate(ctx, query, args, "mark batch started")
}

func (r *ManagerRepository) MarkBatchFinished(ctx context.Context, at time.Time) error {
	query, args, err := qb.Update(progressTable).
		Set("last_batch_end_time", at.UTC()).
		Set("updated_at", r.now().UTC()).
		Where(qb.Eq("id", progressRowID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark batch finished query: %w", err)
	}
	return r.execProgressUpdate(ctx, query, args, "mark batch finished")
}

func (r *ManagerRepository) RecordSkippedPage(ctx context.Context, page int, reason string) error {
	query, args, err := qb.InsertInto(skippedPagesTable).
		Columns("page", "attempts", "reason", "skipped_at").
		Values(page, 1, reason, r.now().UTC()).
		Suffix(`ON CONFLICT (page) DO UPDATE SET
    attempts = fetch_skipped_pages.attempts + 1,
    reason = excluded.reason,
    skipped_at = excluded.skipped_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record skipped page query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("record skipped page %d: %w", page, err)
	}
	return nil
}

func (r *ManagerRepository) ListSkippedPages(ctx context.Context) ([]manager.SkippedPage, error) {
	query, args, err := qb.Select("page", "attempts", "reason", "skipped_at").
		From(skippedPagesTable).
		OrderBy("page").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list skipped pages query: %w", err)
	}

	var rows []skippedPageTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list skipped pages: %w", err)
	}

	out := make([]manager.SkippedPage, 0, len(rows))
	for _, row := range rows {
		out = append(out, manager.SkippedPage{
			Page:      row.Page,
			Attempts:  row.Attempts,
			Reason:    row.Reason,
			SkippedAt: row.SkippedAt,
		})
	}
	return out, nil
}

// upsert writes managers in chunks and reports how many distinct rows were
// written and how many of those did not exist before.
func (r *ManagerRepository) upsert(ctx context.Context, ext sqlx.ExtContext, managers []manager.Manager) (int, int, error) {
	rows := dedupeManagers(managers, r.now().UTC())
	inserted := 0
	for start := 0; start < len(rows); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(rows))
		chunk := rows[start:end]

		existing, err := r.countExisting(ctx, ext, chunk)
		if err != nil {
			return 0, 0, err
		}
		inserted += len(chunk) - existing

		query, args, err := qb.InsertModels(managersTable, chunk,
			qb.OnConflictUpdate([]string{"manager_id"}, []string{"manager_name", "team_name", "updated_at"}))
		if err != nil {
			return 0, 0, fmt.Errorf("build upsert managers query: %w", err)
		}
		if _, err := ext.ExecContext(ctx, ext.Rebind(query), args...); err != nil {
			return 0, 0, fmt.Errorf("upsert managers: %w", err)
		}
	}
	return len(rows), inserted, nil
}

func (r *ManagerRepository) countExisting(ctx context.Context, ext sqlx.ExtContext, rows []managerTableModel) (int, error) {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ManagerID)
	}
	query, args, err := qb.Select("COUNT(*)").
		From(managersTable).
		Where(qb.In("manager_id", ids)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count existing managers query: %w", err)
	}

	var n int
	if err := sqlx.GetContext(ctx, ext, &n, ext.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count existing managers: %w", err)
	}
	return n, nil
}

// advance moves the checkpoint forward and adds inserted to the running
// total. last_page never decreases, so a retried older page cannot rewind it.
func (r *ManagerRepository) advance(ctx context.Context, ext sqlx.ExtContext, page, fetchedCount, inserted int) error {
	seed, seedArgs, err := qb.InsertInto(progressTable).
		Columns("id").
		Values(progressRowID).
		Suffix(qb.OnConflictUpdate([]string{"id"}, nil)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build seed progress query: %w", err)
	}
	if _, err := ext.ExecContext(ctx, ext.Rebind(seed), seedArgs...); err != nil {
		return fmt.Errorf("seed progress row: %w", err)
	}

	query, args, err := qb.Update(progressTable).
		SetExpr("last_page", "CASE WHEN last_page > ? THEN last_page ELSE ? END", page, page).
		Set("last_manager_count", fetchedCount).
		SetExpr("total_managers_fetched", "total_managers_fetched + ?", inserted).
		Set("updated_at", r.now().UTC()).
		Where(qb.Eq("id", progressRowID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build advance progress query: %w", err)
	}
	if _, err := ext.ExecContext(ctx, ext.Rebind(query), args...); err != nil {
		return fmt.Errorf("advance progress to page %d: %w", page, err)
	}
	return nil
}

func (r *ManagerRepository) clearSkippedPage(ctx context.Context, ext sqlx.ExtContext, page int) error {
	query := ext.Rebind("DELETE FROM " + skippedPagesTable + " WHERE page = ?")
	if _, err := ext.ExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("clear skipped page %d: %w", page, err)
	}
	return nil
}

func (r *ManagerRepository) count(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, q, &total, "SELECT COUNT(*) FROM "+managersTable); err != nil {
		return 0, fmt.Errorf("count managers: %w", err)
	}
	return total, nil
}

func (r *ManagerRepository) getProgress(ctx context.Context, ext sqlx.ExtContext) (manager.Progress, error) {
	query, args, err := qb.Select(progressColumns...).
		From(progressTable).
		Where(qb.Eq("id", progressRowID)).
		ToSQL()
	if err != nil {
		return manager.Progress{}, fmt.Errorf("build get progress query: %w", err)
	}

	var row progressTableModel
	if err := sqlx.GetContext(ctx, ext, &row, ext.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return manager.Progress{}, nil
		}
		return manager.Progress{}, fmt.Errorf("get progress: %w", err)
	}

	return manager.Progress{
		LastPage:             row.LastPage,
		LastManagerCount:     row.LastManagerCount,
		TotalManagersFetched: row.TotalManagersFetched,
		LastBatchStartTime:   row.LastBatchStartTime,
		LastBatchEndTime:     row.LastBatchEndTime,
		UpdatedAt:            row.UpdatedAt,
	}, nil
}

func (r *ManagerRepository) execProgressUpdate(ctx context.Context, query string, args []any, name string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: progress row is missing", name)
	}
	return nil
}

// dedupeManagers keeps the last record per id, in first-seen order. A single
// upsert statement must not touch the same row twice.
func dedupeManagers(managers []manager.Manager, now time.Time) []managerTableModel {
	index := make(map[int64]int, len(managers))
	out := make([]managerTableModel, 0, len(managers))
	for _, m := range managers {
		row := managerTableModel{
			ManagerID:   m.ID,
			ManagerName: strings.TrimSpace(m.Name),
			TeamName:    strings.TrimSpace(m.TeamName),
			UpdatedAt:   now,
		}
		if i, ok := index[m.ID]; ok {
			out[i] = row
			continue
		}
		index[m.ID] = len(out)
		out = append(out, row)
	}
	return out
}

func managerFromRow(row managerTableModel) manager.Manager {
	return manager.Manager{
		ID:        row.ManagerID,
		Name:      row.ManagerName,
		TeamName:  row.TeamName,
		UpdatedAt: row.UpdatedAt,
	}
}
