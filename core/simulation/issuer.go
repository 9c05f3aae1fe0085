package simulation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/learner"
)

var nowFunc = time.Now // mockable

// Issuer produces exactly one certificate per (learner, simulation) and
// awards the simulation's skills, however many times completion is invoked.
// The certificate table's unique key is the authoritative idempotency guard;
// the read-before-insert is only a fast path.
type Issuer struct {
	db          core.DB
	simRepo     SimulationRepository
	enrRepo     EnrollmentRepository
	certRepo    CertificateRepository
	skillRepo   SkillRepository
	learnerRepo learner.Repository
	notifier    core.Notifier
	log         core.Logger

	storeTimeout time.Duration
}

func NewIssuer(
	conf *core.Config,
	db core.DB,
	log core.Logger,
	notifier core.Notifier,
	simRepo SimulationRepository,
	enrRepo EnrollmentRepository,
	certRepo CertificateRepository,
	skillRepo SkillRepository,
	learnerRepo learner.Repository,
) *Issuer {
	return &Issuer{
		db:           db,
		simRepo:      simRepo,
		enrRepo:      enrRepo,
		certRepo:     certRepo,
		skillRepo:    skillRepo,
		learnerRepo:  learnerRepo,
		notifier:     notifier,
		log:          log,
		storeTimeout: conf.Database.Timeout,
	}
}

// CompleteSimulation finalizes an enrollment: it issues the certificate,
// awards the simulation's skills at the default proficiency and marks the
// enrollment completed. Safe to call any number of times, concurrently or
// not: repeat calls return the original certificate unchanged.
func (iss *Issuer) CompleteSimulation(ctx context.Context, learnerID, simulationID string) (Certificate, error) {
	opCtx, cancel := iss.boundCtx(ctx)
	defer cancel()

	sim, err := iss.simRepo.GetSimulation(opCtx, simulationID)
	if err != nil {
		return Certificate{}, trapStoreErr(err, "finding simulation")
	}
	enr, err := iss.enrRepo.GetEnrollment(opCtx, learnerID, simulationID)
	if err != nil {
		return Certificate{}, trapStoreErr(err, "finding enrollment")
	}

	// fast path: already certified
	cert, err := iss.certRepo.GetCertificate(opCtx, learnerID, simulationID)
	if err == nil {
		return cert, nil
	}
	if errors.Cause(err) != ErrCertificateNotFound {
		return Certificate{}, trapStoreErr(err, "finding certificate")
	}

	lrn, err := iss.learnerRepo.GetLearnerByID(opCtx, learnerID)
	if err != nil {
		if errors.Cause(err) == learner.ErrNotFound {
			return Certificate{}, err
		}
		return Certificate{}, trapStoreErr(err, "finding learner")
	}

	now := nowFunc().UTC()
	cert = Certificate{
		ID:              uuid.New().String(),
		CertificateID:   MakeCertificateID(simulationID, learnerID, now),
		LearnerID:       learnerID,
		SimulationID:    simulationID,
		LearnerName:     lrn.Name,
		SimulationTitle: sim.Title,
		OrgName:         sim.OrgName,
		Skills:          append([]string(nil), sim.Skills...),
		IssuedAt:        now,
		CompletedAt:     now,
	}

	issued, err := iss.issue(opCtx, cert, sim, enr, now)
	if err != nil {
		if errors.Cause(err) == ErrCertificateExists {
			// lost the race: a concurrent call inserted first; its row wins
			existing, getErr := iss.certRepo.GetCertificate(opCtx, learnerID, simulationID)
			if getErr != nil {
				return Certificate{}, trapStoreErr(getErr, "finding winning certificate")
			}
			return existing, nil
		}
		// issued-but-incompletely-awarded state is only reachable without a
		// transactional store; log everything needed for reconciliation
		fatal := core.NewFatalError(err, map[string]interface{}{
			"learner_id":     learnerID,
			"simulation_id":  simulationID,
			"certificate_id": cert.CertificateID,
		})
		iss.log.Error("certificate issuance failed", fatal)
		return Certificate{}, fatal
	}

	iss.notify(sim, lrn)
	return issued, nil
}

// GetCertificate returns the issued certificate for one enrollment.
func (iss *Issuer) GetCertificate(ctx context.Context, learnerID, simulationID string) (Certificate, error) {
	opCtx, cancel := iss.boundCtx(ctx)
	defer cancel()

	cert, err := iss.certRepo.GetCertificate(opCtx, learnerID, simulationID)
	if err != nil {
		return Certificate{}, trapStoreErr(err, "finding certificate")
	}
	return cert, nil
}

// issue runs the certificate insert, skill awards and enrollment finalize as
// one transaction when the store supports it.
func (iss *Issuer) issue(ctx context.Context, cert Certificate, sim Simulation, enr Enrollment, now time.Time) (Certificate, error) {
	tx, exec, err := iss.begin(ctx)
	if err != nil {
		return Certificate{}, err
	}

	issued, err := iss.certRepo.CreateCertificate(ctx, cert, exec...)
	if err != nil {
		rollback(tx)
		if errors.Cause(err) == ErrCertificateExists {
			return Certificate{}, err
		}
		return Certificate{}, errors.Wrap(err, "inserting certificate")
	}

	for _, name := range sim.Skills {
		rec := SkillRecord{
			ID:               uuid.New().String(),
			LearnerID:        cert.LearnerID,
			SkillName:        name,
			ProficiencyLevel: DefaultProficiency,
			SourceID:         cert.SimulationID,
			AwardedAt:        now,
			UpdatedAt:        now,
		}
		if _, err = iss.skillRepo.UpsertSkillRecord(ctx, rec, exec...); err != nil {
			rollback(tx)
			return Certificate{}, errors.Wrapf(err, "awarding skill %q", name)
		}
	}

	enr.Status = StatusCompleted
	enr.ProgressPercentage = 100
	enr.CompletedAt = null.TimeFrom(now)
	enr.UpdatedAt = now
	if _, err = iss.enrRepo.UpdateEnrollment(ctx, enr, exec...); err != nil {
		rollback(tx)
		return Certificate{}, errors.Wrap(err, "finalizing enrollment")
	}

	if tx != nil {
		if err = tx.Commit(); err != nil {
			return Certificate{}, errors.Wrap(err, "committing issuance")
		}
	}
	return issued, nil
}

func (iss *Issuer) begin(ctx context.Context) (core.DBTransactor, []core.DBExecutor, error) {
	if iss.db == nil {
		return nil, nil, nil
	}
	tx, err := iss.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "beginning issuance transaction")
	}
	return tx, []core.DBExecutor{tx}, nil
}

func rollback(tx core.DBTransactor) {
	if tx != nil {
		_ = tx.Rollback()
	}
}

// notify is fire-and-forget per the notifier contract.
func (iss *Issuer) notify(sim Simulation, lrn learner.Learner) {
	if iss.notifier == nil {
		return
	}
	iss.notifier.NotifyCompletion(core.CompletionNotice{
		OrgID:           sim.OrgID,
		LearnerName:     lrn.Name,
		LearnerEmail:    lrn.Email,
		SimulationTitle: sim.Title,
	})
}

func (iss *Issuer) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if iss.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, iss.storeTimeout)
}

// MakeCertificateID derives the human-readable certificate identifier:
// a fixed prefix, fragments of the simulation and learner ids and a
// time-derived suffix, upper-cased. Display only — uniqueness comes from the
// (learner_id, simulation_id) key, not from this string.
func MakeCertificateID(simulationID, learnerID string, now time.Time) string {
	return strings.ToUpper(fmt.Sprintf(
		"CERT-%s-%s-%06d",
		idFragment(simulationID, 4),
		idFragment(learnerID, 4),
		now.Unix()%1000000,
	))
}

func idFragment(id string, n int) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > n {
		id = id[:n]
	}
	return id
}
