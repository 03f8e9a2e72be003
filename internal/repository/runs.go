package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/common"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

const (
	tableRuns    = "check_run"
	tableResults = "check_result"
)

// Run is one audited batch evaluation.
type Run struct {
	ID          string
	CreatedAt   time.Time
	ReceiptDate string
	Category    constants.RequestCategory
	Petitioner  constants.PetitionerType
	FileCount   int
}

// RunRepository persists checklist runs and their result rows.
type RunRepository interface {
	CreateRun(ctx context.Context, req entity.RequestContext, fileCount int) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	SaveResults(ctx context.Context, runID string, results []entity.ChecklistResult) error
	ListResults(ctx context.Context, runID string) ([]entity.ChecklistResult, error)
}

type runRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{db: db, logger: logger, now: time.Now}
}

// CreateRun inserts a run row. The id comes from the context run id when one
// is set, otherwise a fresh uuid is generated.
func (r *runRepository) CreateRun(ctx context.Context, req entity.RequestContext, fileCount int) (Run, error) {
	id := common.RunIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	run := Run{
		ID:          id,
		CreatedAt:   r.now().UTC().Truncate(time.Second),
		ReceiptDate: req.ReceiptDate.String(),
		Category:    req.Category,
		Petitioner:  req.Petitioner,
		FileCount:   fileCount,
	}

	q, args := r.db.builder().Insert(tableRuns).
		Columns("id", "created_at", "receipt_date", "category", "petitioner", "file_count").
		Values(run.ID, run.CreatedAt.Format(time.RFC3339), run.ReceiptDate, string(run.Category), string(run.Petitioner), run.FileCount).
		Query()
	if _, err := r.db.sql.ExecContext(ctx, q, args...); err != nil {
		r.logger.Error("failed to create run", "run_id", id, "error", err)
		return Run{}, fmt.Errorf("%w: create run: %w", common.ErrDatabase, err)
	}
	r.logger.Info("run created", "run_id", id, "files", fileCount)
	return run, nil
}

func (r *runRepository) GetRun(ctx context.Context, id string) (Run, error) {
	q, args := r.selectRuns().Where(entsql.EQ("id", id)).Query()
	runs, err := r.queryRuns(ctx, q, args)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}
	return runs[0], nil
}

// ListRuns returns the most recent runs first.
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	sel := r.selectRuns().OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()
	return r.queryRuns(ctx, q, args)
}

func (r *runRepository) selectRuns() *entsql.Selector {
	return r.db.builder().
		Select("id", "created_at", "receipt_date", "category", "petitioner", "file_count").
		From(entsql.Table(tableRuns))
}

func (r *runRepository) queryRuns(ctx context.Context, q string, args []any) ([]Run, error) {
	rows, err := r.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query runs: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run                  Run
			created              string
			category, petitioner string
		)
		if err := rows.Scan(&run.ID, &created, &run.ReceiptDate, &category, &petitioner, &run.FileCount); err != nil {
			return nil, fmt.Errorf("%w: scan run: %w", common.ErrDatabase, err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("%w: run %s created_at: %w", common.ErrDatabase, run.ID, err)
		}
		run.Category = constants.RequestCategory(category)
		run.Petitioner = constants.PetitionerType(petitioner)
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate runs: %w", common.ErrDatabase, err)
	}
	return out, nil
}

// SaveResults writes all rows of a run in one transaction, keeping their order.
func (r *runRepository) SaveResults(ctx context.Context, runID string, results []entity.ChecklistResult) (err error) {
	if len(results) == 0 {
		return nil
	}
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("rollback failed", "run_id", runID, "error", rbErr)
			}
		}
	}()

	for i, res := range results {
		evidence, err := json.Marshal(nonNil(res.Evidence))
		if err != nil {
			return err
		}
		observations, err := json.Marshal(nonNil(res.Observations))
		if err != nil {
			return err
		}
		inferred, err := json.Marshal(nonNil(res.InferredItemIDs))
		if err != nil {
			return err
		}
		q, args := r.db.builder().Insert(tableResults).
			Columns("run_id", "seq", "source_file", "item_id", "title", "required", "status", "evidence", "observations", "inferred_item_ids").
			Values(runID, i, res.SourceFile, res.ItemID, res.Title, res.Required, string(res.Status), string(evidence), string(observations), string(inferred)).
			Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("%w: insert result %d: %w", common.ErrDatabase, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	r.logger.Debug("results saved", "run_id", runID, "rows", len(results))
	return nil
}

// ListResults returns the stored rows of a run in insertion order. Category
// and petitioner come from the run row.
func (r *runRepository) ListResults(ctx context.Context, runID string) ([]entity.ChecklistResult, error) {
	run, err := r.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	q, args := r.db.builder().
		Select("source_file", "item_id", "title", "required", "status", "evidence", "observations", "inferred_item_ids").
		From(entsql.Table(tableResults)).
		Where(entsql.EQ("run_id", runID)).
		OrderBy("seq").
		Query()
	rows, err := r.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query results: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.ChecklistResult
	for rows.Next() {
		var (
			res                              entity.ChecklistResult
			status                           string
			evidence, observations, inferred string
		)
		if err := rows.Scan(&res.SourceFile, &res.ItemID, &res.Title, &res.Required, &status, &evidence, &observations, &inferred); err != nil {
			return nil, fmt.Errorf("%w: scan result: %w", common.ErrDatabase, err)
		}
		res.Category = run.Category
		res.Petitioner = run.Petitioner
		res.Status = constants.Status(status)
		if err := decodeList(evidence, &res.Evidence); err != nil {
			return nil, err
		}
		if err := decodeList(observations, &res.Observations); err != nil {
			return nil, err
		}
		if err := decodeList(inferred, &res.InferredItemIDs); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate results: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decodeList(raw string, dst *[]string) error {
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("%w: decode list: %w", common.ErrDatabase, err)
	}
	if len(v) > 0 {
		*dst = v
	}
	return nil
}
