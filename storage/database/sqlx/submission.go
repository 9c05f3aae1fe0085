package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type submissionRepository struct {
	exec core.DBExecutor
}

var _ simulation.SubmissionRepository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(exec core.DBExecutor) *submissionRepository {
	return &submissionRepository{exec: exec}
}

type dbSubmission struct {
	ID           string         `db:"id"`
	LearnerID    string         `db:"learner_id"`
	TaskID       string         `db:"task_id"`
	SimulationID string         `db:"simulation_id"`
	Payload      types.JSONText `db:"payload"`
	Score        null.Int       `db:"score"`
	Status       string         `db:"status"`
	SubmittedAt  time.Time      `db:"submitted_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (row dbSubmission) toDomain() simulation.Submission {
	return simulation.Submission{
		ID:           row.ID,
		LearnerID:    row.LearnerID,
		TaskID:       row.TaskID,
		SimulationID: row.SimulationID,
		Payload:      json.RawMessage(row.Payload),
		Score:        row.Score,
		Status:       row.Status,
		SubmittedAt:  row.SubmittedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// UpsertSubmission keeps at most one row per (learner, task): the unique key
// absorbs concurrent submits, last writer wins.
func (repo submissionRepository) UpsertSubmission(ctx context.Context, sub simulation.Submission, exec ...core.DBExecutor) (simulation.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	var row dbSubmission
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`INSERT INTO submission (id, learner_id, task_id, simulation_id, payload, score, status, submitted_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (learner_id, task_id) DO UPDATE
		 SET payload = EXCLUDED.payload,
		     score = EXCLUDED.score,
		     status = EXCLUDED.status,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, learner_id, task_id, simulation_id, payload, score, status, submitted_at, updated_at`,
		sub.ID, sub.LearnerID, sub.TaskID, sub.SimulationID,
		types.JSONText(sub.Payload), sub.Score, sub.Status,
		sub.SubmittedAt.UTC(), sub.UpdatedAt.UTC())
	if err != nil {
		return simulation.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return row.toDomain(), nil
}

func (repo submissionRepository) QuerySubmissions(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) ([]simulation.Submission, error) {
	var rows []dbSubmission
	err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows,
		`SELECT id, learner_id, task_id, simulation_id, payload, score, status, submitted_at, updated_at
		 FROM submission WHERE learner_id = $1 AND simulation_id = $2`,
		learnerID, simulationID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	subs := make([]simulation.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toDomain())
	}
	return subs, nil
}
