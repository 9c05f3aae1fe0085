package dummydb

import (
	"context"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/learner"
	"github.com/veza-labs/worksim/core/simulation"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ simulation.EnrollmentRepository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) simulation.EnrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) (simulation.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.table[key(learnerID, simulationID)]; ok {
		return *enr, nil
	}
	return simulation.Enrollment{}, simulation.ErrEnrollmentNotFound
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr simulation.Enrollment, exec ...core.DBExecutor) (simulation.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(enr.LearnerID, enr.SimulationID)
	if _, ok := repo.db.table[k]; !ok {
		return simulation.Enrollment{}, simulation.ErrEnrollmentNotFound
	}
	repo.db.table[k] = &enr
	return enr, nil
}

type certificateRepository struct {
	db *certificateTable
}

var _ simulation.CertificateRepository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *DB) simulation.CertificateRepository {
	return &certificateRepository{db: db.certificate}
}

func (repo *certificateRepository) GetCertificate(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) (simulation.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cert, ok := repo.db.table[key(learnerID, simulationID)]; ok {
		return *cert, nil
	}
	return simulation.Certificate{}, simulation.ErrCertificateNotFound
}

func (repo *certificateRepository) CreateCertificate(ctx context.Context, cert simulation.Certificate, exec ...core.DBExecutor) (simulation.Certificate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(cert.LearnerID, cert.SimulationID)
	if _, ok := repo.db.table[k]; ok {
		return simulation.Certificate{}, simulation.ErrCertificateExists
	}
	repo.db.table[k] = &cert
	return cert, nil
}

type skillRepository struct {
	db *skillTable
}

var _ simulation.SkillRepository = (*skillRepository)(nil) // interface compliance check

func NewSkillRepository(db *DB) simulation.SkillRepository {
	return &skillRepository{db: db.skill}
}

func (repo *skillRepository) UpsertSkillRecord(ctx context.Context, rec simulation.SkillRecord, exec ...core.DBExecutor) (simulation.SkillRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(rec.LearnerID, rec.SkillName)
	if prev, ok := repo.db.table[k]; ok {
		rec.ID = prev.ID
		rec.AwardedAt = prev.AwardedAt
	}
	repo.db.table[k] = &rec
	return rec, nil
}

type learnerRepository struct {
	db *learnerTable
}

var _ learner.Repository = (*learnerRepository)(nil) // interface compliance check

func NewLearnerRepository(db *DB) learner.Repository {
	return &learnerRepository{db: db.learner}
}

func (repo *learnerRepository) GetLearnerByID(ctx context.Context, id string, exec ...core.DBExecutor) (learner.Learner, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lrn, ok := repo.db.table[id]; ok {
		return *lrn, nil
	}
	return learner.Learner{}, learner.ErrNotFound
}
