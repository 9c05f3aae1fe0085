package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type simulationRepository struct {
	db *simulationTable
}

var _ simulation.SimulationRepository = (*simulationRepository)(nil) // interface compliance check

func NewSimulationRepository(db *DB) simulation.SimulationRepository {
	return &simulationRepository{db: db.simulation}
}

func (repo *simulationRepository) GetSimulation(ctx context.Context, id string, exec ...core.DBExecutor) (simulation.Simulation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sim, ok := repo.db.table[id]; ok {
		return *sim, nil
	}
	return simulation.Simulation{}, simulation.ErrSimulationNotFound
}

type taskRepository struct {
	db *taskTable
}

var _ simulation.TaskRepository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) simulation.TaskRepository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (simulation.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if task, ok := repo.db.table[id]; ok {
		return *task, nil
	}
	return simulation.Task{}, simulation.ErrTaskNotFound
}

func (repo *taskRepository) QueryTasksBySimulation(ctx context.Context, simulationID string, exec ...core.DBExecutor) ([]simulation.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]simulation.Task, 0)
	for _, task := range repo.db.table {
		if task.SimulationID == simulationID {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

type submissionRepository struct {
	db *submissionTable
}

var _ simulation.SubmissionRepository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) simulation.SubmissionRepository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) UpsertSubmission(ctx context.Context, sub simulation.Submission, exec ...core.DBExecutor) (simulation.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(sub.LearnerID, sub.TaskID)
	if prev, ok := repo.db.table[k]; ok {
		sub.ID = prev.ID
		sub.SubmittedAt = prev.SubmittedAt
	} else if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	repo.db.table[k] = &sub
	return sub, nil
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) ([]simulation.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]simulation.Submission, 0)
	for _, sub := range repo.db.table {
		if sub.LearnerID == learnerID && sub.SimulationID == simulationID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}
