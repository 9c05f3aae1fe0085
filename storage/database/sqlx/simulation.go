package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type simulationRepository struct {
	exec core.DBExecutor
}

var _ simulation.SimulationRepository = (*simulationRepository)(nil) // interface compliance check

func NewSimulationRepository(exec core.DBExecutor) *simulationRepository {
	return &simulationRepository{exec: exec}
}

type dbSimulation struct {
	ID        string         `db:"id"`
	OrgID     string         `db:"org_id"`
	OrgName   string         `db:"org_name"`
	Title     string         `db:"title"`
	Skills    pq.StringArray `db:"skills"`
	Published bool           `db:"published"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row dbSimulation) toDomain() simulation.Simulation {
	return simulation.Simulation{
		ID:        row.ID,
		OrgID:     row.OrgID,
		OrgName:   row.OrgName,
		Title:     row.Title,
		Skills:    row.Skills,
		Published: row.Published,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo simulationRepository) GetSimulation(ctx context.Context, id string, exec ...core.DBExecutor) (simulation.Simulation, error) {
	var row dbSimulation
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`SELECT id, org_id, org_name, title, skills, published, created_at, updated_at
		 FROM simulation WHERE id = $1`, id)
	if err != nil {
		return simulation.Simulation{}, trapNoRowsErr(err, simulation.ErrSimulationNotFound, "finding simulation")
	}
	return row.toDomain(), nil
}

type taskRepository struct {
	exec core.DBExecutor
}

var _ simulation.TaskRepository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(exec core.DBExecutor) *taskRepository {
	return &taskRepository{exec: exec}
}

type dbTask struct {
	ID             string `db:"id"`
	SimulationID   string `db:"simulation_id"`
	Title          string `db:"title"`
	SubmissionType string `db:"submission_type"`
	QuizItems      []byte `db:"quiz_items"`
	Position       int    `db:"position"`
}

func (row dbTask) toDomain() (simulation.Task, error) {
	t := simulation.Task{
		ID:             row.ID,
		SimulationID:   row.SimulationID,
		Title:          row.Title,
		SubmissionType: row.SubmissionType,
		Position:       row.Position,
	}
	if len(row.QuizItems) > 0 {
		if err := json.Unmarshal(row.QuizItems, &t.QuizItems); err != nil {
			return simulation.Task{}, errors.Wrap(err, "unmarshalling quiz items")
		}
	}
	return t, nil
}

func (repo taskRepository) GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (simulation.Task, error) {
	var row dbTask
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`SELECT id, simulation_id, title, submission_type, quiz_items, position
		 FROM task WHERE id = $1`, id)
	if err != nil {
		return simulation.Task{}, trapNoRowsErr(err, simulation.ErrTaskNotFound, "finding task")
	}
	return row.toDomain()
}

func (repo taskRepository) QueryTasksBySimulation(ctx context.Context, simulationID string, exec ...core.DBExecutor) ([]simulation.Task, error) {
	var rows []dbTask
	err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows,
		`SELECT id, simulation_id, title, submission_type, quiz_items, position
		 FROM task WHERE simulation_id = $1 ORDER BY position`, simulationID)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}

	tasks := make([]simulation.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
