package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type certificateRepository struct {
	exec core.DBExecutor
}

var _ simulation.CertificateRepository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(exec core.DBExecutor) *certificateRepository {
	return &certificateRepository{exec: exec}
}

type dbCertificate struct {
	ID              string         `db:"id"`
	CertificateID   string         `db:"certificate_id"`
	LearnerID       string         `db:"learner_id"`
	SimulationID    string         `db:"simulation_id"`
	LearnerName     string         `db:"learner_name"`
	SimulationTitle string         `db:"simulation_title"`
	OrgName         string         `db:"org_name"`
	Skills          pq.StringArray `db:"skills"`
	IssuedAt        time.Time      `db:"issued_at"`
	CompletedAt     time.Time      `db:"completed_at"`
}

func (row dbCertificate) toDomain() simulation.Certificate {
	return simulation.Certificate{
		ID:              row.ID,
		CertificateID:   row.CertificateID,
		LearnerID:       row.LearnerID,
		SimulationID:    row.SimulationID,
		LearnerName:     row.LearnerName,
		SimulationTitle: row.SimulationTitle,
		OrgName:         row.OrgName,
		Skills:          row.Skills,
		IssuedAt:        row.IssuedAt,
		CompletedAt:     row.CompletedAt,
	}
}

func (repo certificateRepository) GetCertificate(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) (simulation.Certificate, error) {
	var row dbCertificate
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`SELECT id, certificate_id, learner_id, simulation_id, learner_name, simulation_title, org_name, skills, issued_at, completed_at
		 FROM certificate WHERE learner_id = $1 AND simulation_id = $2`,
		learnerID, simulationID)
	if err != nil {
		return simulation.Certificate{}, trapNoRowsErr(err, simulation.ErrCertificateNotFound, "finding certificate")
	}
	return row.toDomain(), nil
}

func (repo certificateRepository) CreateCertificate(ctx context.Context, cert simulation.Certificate, exec ...core.DBExecutor) (simulation.Certificate, error) {
	var row dbCertificate
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`INSERT INTO certificate (id, certificate_id, learner_id, simulation_id, learner_name, simulation_title, org_name, skills, issued_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, certificate_id, learner_id, simulation_id, learner_name, simulation_title, org_name, skills, issued_at, completed_at`,
		cert.ID, cert.CertificateID, cert.LearnerID, cert.SimulationID, cert.LearnerName,
		cert.SimulationTitle, cert.OrgName, pq.StringArray(cert.Skills), cert.IssuedAt.UTC(), cert.CompletedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return simulation.Certificate{}, simulation.ErrCertificateExists
		}
		return simulation.Certificate{}, errors.Wrap(err, "creating certificate")
	}
	return row.toDomain(), nil
}
