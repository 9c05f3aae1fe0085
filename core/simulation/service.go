package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/veza-labs/worksim/core"
)

var (
	// errors
	ErrSimulationNotFound  = errors.New("simulation not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrCertificateNotFound = errors.New("certificate not found")

	// ErrCertificateExists is how stores report a unique-key violation on
	// certificate insert. The issuer resolves it to the existing row; it is
	// never surfaced to callers.
	ErrCertificateExists = errors.New("certificate already exists")

	errEmptyPayload = errors.New("a submission payload is required")
)

type (
	SimulationRepository interface {
		GetSimulation(ctx context.Context, id string, exec ...core.DBExecutor) (Simulation, error)
	}

	TaskRepository interface {
		GetTask(ctx context.Context, id string, exec ...core.DBExecutor) (Task, error)
		QueryTasksBySimulation(ctx context.Context, simulationID string, exec ...core.DBExecutor) ([]Task, error)
	}

	SubmissionRepository interface {
		// UpsertSubmission writes the submission keyed by (learner, task):
		// at most one row, last writer wins.
		UpsertSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		QuerySubmissions(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) ([]Submission, error)
	}

	EnrollmentRepository interface {
		GetEnrollment(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) (Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
	}

	CertificateRepository interface {
		GetCertificate(ctx context.Context, learnerID, simulationID string, exec ...core.DBExecutor) (Certificate, error)
		// CreateCertificate inserts exactly one row per (learner, simulation)
		// and returns ErrCertificateExists when that key is already taken.
		CreateCertificate(ctx context.Context, cert Certificate, exec ...core.DBExecutor) (Certificate, error)
	}

	SkillRepository interface {
		UpsertSkillRecord(ctx context.Context, rec SkillRecord, exec ...core.DBExecutor) (SkillRecord, error)
	}

	// Service is the submission orchestrator: it sequences validate → score →
	// persist → recompute progress → update enrollment → certify-on-completion.
	Service struct {
		simRepo  SimulationRepository
		taskRepo TaskRepository
		subRepo  SubmissionRepository
		enrRepo  EnrollmentRepository
		issuer   *Issuer
		audit    core.AuditSink
		log      core.Logger

		storeTimeout time.Duration
	}
)

func NewService(
	conf *core.Config,
	log core.Logger,
	audit core.AuditSink,
	simRepo SimulationRepository,
	taskRepo TaskRepository,
	subRepo SubmissionRepository,
	enrRepo EnrollmentRepository,
	issuer *Issuer,
) *Service {
	return &Service{
		simRepo:      simRepo,
		taskRepo:     taskRepo,
		subRepo:      subRepo,
		enrRepo:      enrRepo,
		issuer:       issuer,
		audit:        audit,
		log:          log,
		storeTimeout: conf.Database.Timeout,
	}
}

// SubmitTask records a learner's answer to one task and rolls the enrollment
// state forward. When this call is the one that brings progress to 100%, it
// also triggers certification and attaches the certificate to the result.
func (svc *Service) SubmitTask(ctx context.Context, learnerID, simulationID, taskID string, payload json.RawMessage) (SubmitResult, error) {
	opCtx, cancel := svc.boundCtx(ctx)
	defer cancel()

	task, err := svc.taskRepo.GetTask(opCtx, taskID)
	if err != nil {
		return SubmitResult{}, trapStoreErr(err, "finding task")
	}
	if task.SimulationID != simulationID {
		return SubmitResult{}, ErrTaskNotFound
	}

	now := nowFunc().UTC()
	sub := Submission{
		LearnerID:    learnerID,
		TaskID:       task.ID,
		SimulationID: simulationID,
		Payload:      payload,
		Status:       StatusSubmitted,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}

	var scoreRes *ScoreResult
	if task.SubmissionType == SubmissionTypeMultipleChoice {
		answers, err := NormalizeAnswers(payload)
		if err != nil {
			return SubmitResult{}, err
		}
		res := Score(task, answers)
		scoreRes = &res
		sub.Score = null.IntFrom(res.Score)
		if sub.Payload, err = json.Marshal(res.Answers); err != nil {
			return SubmitResult{}, errors.Wrap(err, "marshalling answers")
		}
	} else if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return SubmitResult{}, core.NewValidationError(errEmptyPayload, core.FieldError{Field: "payload", Error: "this field is required"})
	}

	saved, err := svc.subRepo.UpsertSubmission(opCtx, sub)
	if err != nil {
		return SubmitResult{}, trapStoreErr(err, "upserting submission")
	}

	prior, err := svc.enrRepo.GetEnrollment(opCtx, learnerID, simulationID)
	if err != nil {
		return SubmitResult{}, trapStoreErr(err, "finding enrollment")
	}

	prog, err := svc.progress(opCtx, learnerID, simulationID)
	if err != nil {
		return SubmitResult{}, err
	}

	enr := prior
	enr.ProgressPercentage = prog.Percentage
	enr.UpdatedAt = now
	switch {
	case prog.Percentage == 100:
		enr.Status = StatusCompleted
	case prog.Percentage > 0:
		enr.Status = StatusInProgress
	}
	if _, err = svc.enrRepo.UpdateEnrollment(opCtx, enr); err != nil {
		return SubmitResult{}, trapStoreErr(err, "updating enrollment")
	}

	svc.recordAudit(ctx, core.AuditEvent{
		ActionCode: "task_submitted",
		Category:   "simulation",
		ActorID:    learnerID,
		TargetID:   task.ID,
		Message:    "task submission recorded",
		Params: map[string]interface{}{
			"simulation_id": simulationID,
			"progress":      prog.Percentage,
		},
	})

	res := SubmitResult{Submission: saved, ScoreResult: scoreRes, Progress: prog}

	// certify only when this call crossed the line; an enrollment already at
	// 100% goes through the explicit completion entry point instead
	if prog.IsComplete && prior.ProgressPercentage < 100 {
		cert, err := svc.issuer.CompleteSimulation(ctx, learnerID, simulationID)
		if err != nil {
			return res, errors.Wrap(err, "completing simulation")
		}
		res.Certificate = &cert
	}
	return res, nil
}

// ComputeProgress reports the aggregate completion state for one enrollment.
func (svc *Service) ComputeProgress(ctx context.Context, learnerID, simulationID string) (Progress, error) {
	opCtx, cancel := svc.boundCtx(ctx)
	defer cancel()

	if _, err := svc.enrRepo.GetEnrollment(opCtx, learnerID, simulationID); err != nil {
		return Progress{}, trapStoreErr(err, "finding enrollment")
	}
	return svc.progress(opCtx, learnerID, simulationID)
}

func (svc *Service) progress(ctx context.Context, learnerID, simulationID string) (Progress, error) {
	tasks, err := svc.taskRepo.QueryTasksBySimulation(ctx, simulationID)
	if err != nil {
		return Progress{}, trapStoreErr(err, "querying tasks")
	}
	subs, err := svc.subRepo.QuerySubmissions(ctx, learnerID, simulationID)
	if err != nil {
		return Progress{}, trapStoreErr(err, "querying submissions")
	}
	return computeProgress(tasks, subs), nil
}

// recordAudit is best-effort: a dead sink never fails the submission.
func (svc *Service) recordAudit(ctx context.Context, evt core.AuditEvent) {
	if svc.audit == nil {
		return
	}
	if err := svc.audit.Record(ctx, evt); err != nil {
		svc.log.Warn("audit sink unavailable", err)
	}
}

func (svc *Service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if svc.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, svc.storeTimeout)
}

// trapStoreErr maps store timeouts to core.UnavailableError so callers can
// tell retryable failures apart from not-found ones.
func trapStoreErr(err error, msg string) error {
	switch errors.Cause(err) {
	case nil:
		return nil
	case context.DeadlineExceeded, context.Canceled:
		return core.NewUnavailableError(err, msg)
	case ErrSimulationNotFound, ErrTaskNotFound, ErrEnrollmentNotFound, ErrCertificateNotFound:
		return err
	}
	return errors.Wrap(err, msg)
}
