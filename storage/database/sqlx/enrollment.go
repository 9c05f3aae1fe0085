package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ simulation.EnrollmentRepository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

type dbEnrollment struct {
	ID                 string    `db:"id"`
	LearnerID          string    `db:"learner_id"`
	SimulationID       string    `db:"simulation_id"`
	Status             string    `db:"status"`
	ProgressPercentage int       `db:"progress_percentage"`
	CompletedAt        null.Time `db:"completed_at"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (row dbEnrollment) toDomain() simulation.Enrollment {
	return simulation.Enrollment{
		ID:                 row.ID,
		LearnerID:          row.LearnerID,
		SimulationID:       row.SimulationID,
		Status:             row.Status,
		ProgressPercentage: row.ProgressPercentage,
		CompletedAt:        row.CompletedAt,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) (simulation.Enrollment, error) {
	var row dbEnrollment
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`SELECT id, learner_id, simulation_id, status, progress_percentage, completed_at, created_at, updated_at
		 FROM enrollment WHERE learner_id = $1 AND simulation_id = $2`,
		learnerID, simulationID)
	if err != nil {
		return simulation.Enrollment{}, trapNoRowsErr(err, simulation.ErrEnrollmentNotFound, "finding enrollment")
	}
	return row.toDomain(), nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr simulation.Enrollment, exec ...core.DBExecutor) (simulation.Enrollment, error) {
	var row dbEnrollment
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`UPDATE enrollment
		 SET status = $2, progress_percentage = $3, completed_at = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING id, learner_id, simulation_id, status, progress_percentage, completed_at, created_at, updated_at`,
		enr.ID, enr.Status, enr.ProgressPercentage, enr.CompletedAt, enr.UpdatedAt.UTC())
	if err != nil {
		return simulation.Enrollment{}, trapNoRowsErr(err, simulation.ErrEnrollmentNotFound, "updating enrollment")
	}
	return row.toDomain(), nil
}
