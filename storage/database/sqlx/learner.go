package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/learner"
)

type learnerRepository struct {
	exec core.DBExecutor
}

var _ learner.Repository = (*learnerRepository)(nil) // interface compliance check

func NewLearnerRepository(exec core.DBExecutor) *learnerRepository {
	return &learnerRepository{exec: exec}
}

type dbLearner struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	OrgID string `db:"org_id"`
}

func (repo learnerRepository) GetLearnerByID(ctx context.Context, id string, exec ...core.DBExecutor) (learner.Learner, error) {
	var row dbLearner
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`SELECT id, name, email, org_id FROM learner WHERE id = $1`, id)
	if err != nil {
		return learner.Learner{}, trapNoRowsErr(err, learner.ErrNotFound, "finding learner")
	}
	return learner.Learner{ID: row.ID, Name: row.Name, Email: row.Email, OrgID: row.OrgID}, nil
}
