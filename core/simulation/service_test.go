package simulation_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"

	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/learner"
	"github.com/veza-labs/worksim/core/simulation"
	auditsvc "github.com/veza-labs/worksim/services/audit"
	logsvc "github.com/veza-labs/worksim/services/logger"
	notifsvc "github.com/veza-labs/worksim/services/notifier"
	dummydb "github.com/veza-labs/worksim/storage/database/dummy"
)

type testEnv struct {
	db     *dummydb.DB
	svc    *simulation.Service
	issuer *simulation.Issuer
}

func setup(t *testing.T, audit core.AuditSink) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	conf := &core.Config{AppName: "Worksim"}
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	notifier := notifsvc.NewConsoleServiceMock(conf)
	if audit == nil {
		audit = auditsvc.NewLogSink(logger)
	}

	simRepo := dummydb.NewSimulationRepository(db)
	taskRepo := dummydb.NewTaskRepository(db)
	subRepo := dummydb.NewSubmissionRepository(db)
	enrRepo := dummydb.NewEnrollmentRepository(db)
	certRepo := dummydb.NewCertificateRepository(db)
	skillRepo := dummydb.NewSkillRepository(db)
	learnerRepo := dummydb.NewLearnerRepository(db)

	issuer := simulation.NewIssuer(conf, nil, logger, notifier, simRepo, enrRepo, certRepo, skillRepo, learnerRepo)
	svc := simulation.NewService(conf, logger, audit, simRepo, taskRepo, subRepo, enrRepo, issuer)
	return &testEnv{db: db, svc: svc, issuer: issuer}
}

const (
	simID  = "sim-1"
	mcqID  = "task-mcq"
	fileID = "task-file"
	lrnID  = "lrn-1"
)

func seedSimulation(env *testEnv) {
	env.db.AddSimulation(simulation.Simulation{
		ID:      simID,
		OrgID:   "org-1",
		OrgName: "Veza Labs",
		Title:   "Data Analytics Job Simulation",
		Skills:  []string{"Data Analysis", "SQL"},
	})
	env.db.AddTask(simulation.Task{
		ID:             mcqID,
		SimulationID:   simID,
		Title:          "SQL Quiz",
		SubmissionType: simulation.SubmissionTypeMultipleChoice,
		QuizItems: []simulation.QuizItem{
			{Question: "q1", CorrectAnswer: "a"},
			{Question: "q2", CorrectAnswer: "b"},
			{Question: "q3", CorrectAnswer: "c"},
			{Question: "q4", CorrectAnswer: "d"},
		},
	})
	env.db.AddTask(simulation.Task{
		ID:             fileID,
		SimulationID:   simID,
		Title:          "Findings",
		SubmissionType: simulation.SubmissionTypeFileUpload,
	})
	env.db.AddLearner(learner.Learner{ID: lrnID, Name: "Awe Mbenza", Email: "awe@test.cd", OrgID: "org-1"})
	env.db.AddEnrollment(simulation.Enrollment{
		ID:           "enr-1",
		LearnerID:    lrnID,
		SimulationID: simID,
		Status:       simulation.StatusNotStarted,
	})
}

func TestService_SubmitTask_fullRun(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)
	ctx := context.Background()
	enrRepo := dummydb.NewEnrollmentRepository(env.db)

	// three of four correct
	res, err := env.svc.SubmitTask(ctx, lrnID, simID, mcqID, json.RawMessage(`["a", "b", "c", "x"]`))
	if err != nil {
		t.Fatalf("SubmitTask() failed: %v", err)
	}
	if res.ScoreResult == nil {
		t.Fatal("SubmitTask() expected a score result for a multiple-choice task")
	}
	if res.ScoreResult.Score != 75 {
		t.Errorf("score = %d, want 75", res.ScoreResult.Score)
	}
	if got := res.Submission.Score; !got.Valid || got.Int != 75 {
		t.Errorf("submission score = %+v, want 75", got)
	}
	if res.Progress.Percentage != 50 {
		t.Errorf("progress = %d, want 50", res.Progress.Percentage)
	}
	if res.Certificate != nil {
		t.Error("no certificate expected at 50%")
	}

	enr, err := enrRepo.GetEnrollment(ctx, lrnID, simID)
	if err != nil {
		t.Fatalf("GetEnrollment() failed: %v", err)
	}
	if enr.Status != simulation.StatusInProgress {
		t.Errorf("enrollment status = %s, want %s", enr.Status, simulation.StatusInProgress)
	}

	// second task completes the simulation
	res, err = env.svc.SubmitTask(ctx, lrnID, simID, fileID, json.RawMessage(`{"file_url": "http://localhost/media/x.pdf"}`))
	if err != nil {
		t.Fatalf("SubmitTask() failed: %v", err)
	}
	if res.ScoreResult != nil {
		t.Error("no score result expected for a file-upload task")
	}
	if !res.Progress.IsComplete || res.Progress.Percentage != 100 {
		t.Errorf("progress = %+v, want complete", res.Progress)
	}
	if res.Certificate == nil {
		t.Fatal("SubmitTask() expected a certificate on completion")
	}
	if res.Certificate.LearnerName != "Awe Mbenza" || res.Certificate.SimulationTitle != "Data Analytics Job Simulation" {
		t.Errorf("certificate snapshot = %+v", res.Certificate)
	}

	enr, err = enrRepo.GetEnrollment(ctx, lrnID, simID)
	if err != nil {
		t.Fatalf("GetEnrollment() failed: %v", err)
	}
	if enr.Status != simulation.StatusCompleted || enr.ProgressPercentage != 100 || !enr.CompletedAt.Valid {
		t.Errorf("enrollment not finalized: %+v", enr)
	}

	recs := env.db.SkillRecords(lrnID)
	if len(recs) != 2 {
		t.Fatalf("skill records = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.ProficiencyLevel != simulation.DefaultProficiency {
			t.Errorf("proficiency = %s, want %s", rec.ProficiencyLevel, simulation.DefaultProficiency)
		}
	}
}

func TestService_SubmitTask_resubmissionOverwrites(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)
	ctx := context.Background()

	res1, err := env.svc.SubmitTask(ctx, lrnID, simID, mcqID, json.RawMessage(`["a", "x", "x", "x"]`))
	if err != nil {
		t.Fatalf("SubmitTask() failed: %v", err)
	}
	res2, err := env.svc.SubmitTask(ctx, lrnID, simID, mcqID, json.RawMessage(`["a", "b", "c", "d"]`))
	if err != nil {
		t.Fatalf("SubmitTask() failed: %v", err)
	}

	if res2.Submission.ID != res1.Submission.ID {
		t.Errorf("resubmission created a new row: %s != %s", res2.Submission.ID, res1.Submission.ID)
	}
	if res2.ScoreResult.Score != 100 {
		t.Errorf("score = %d, want 100", res2.ScoreResult.Score)
	}
	// still one of two tasks done
	if res2.Progress.CompletedTasks != 1 || res2.Progress.Percentage != 50 {
		t.Errorf("progress = %+v, want 1/2", res2.Progress)
	}
}

func TestService_SubmitTask_errors(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)
	ctx := context.Background()

	tests := []struct {
		name    string
		simID   string
		taskID  string
		payload string
		wantErr error
		wantVal bool
	}{
		{name: "unknown task", simID: simID, taskID: "nope", payload: `["a"]`, wantErr: simulation.ErrTaskNotFound},
		{name: "task of another simulation", simID: "other-sim", taskID: mcqID, payload: `["a"]`, wantErr: simulation.ErrTaskNotFound},
		{name: "bad answers payload", simID: simID, taskID: mcqID, payload: `"a"`, wantVal: true},
		{name: "empty free-form payload", simID: simID, taskID: fileID, payload: ``, wantVal: true},
		{name: "null free-form payload", simID: simID, taskID: fileID, payload: `null`, wantVal: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.SubmitTask(ctx, lrnID, tt.simID, tt.taskID, json.RawMessage(tt.payload))
			if tt.wantVal {
				if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
					t.Errorf("SubmitTask() error = %v, want a validation error", err)
				}
				return
			}
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("SubmitTask() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_SubmitTask_unknownEnrollment(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)

	_, err := env.svc.SubmitTask(context.Background(), "stranger", simID, fileID, json.RawMessage(`{"ok": true}`))
	if errors.Cause(err) != simulation.ErrEnrollmentNotFound {
		t.Errorf("SubmitTask() error = %v, wantErr %v", err, simulation.ErrEnrollmentNotFound)
	}
}

func TestService_ComputeProgress(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)
	ctx := context.Background()

	prog, err := env.svc.ComputeProgress(ctx, lrnID, simID)
	if err != nil {
		t.Fatalf("ComputeProgress() failed: %v", err)
	}
	if prog.TotalTasks != 2 || prog.CompletedTasks != 0 || prog.Percentage != 0 {
		t.Errorf("ComputeProgress() = %+v, want 0/2", prog)
	}

	if _, err = env.svc.SubmitTask(ctx, lrnID, simID, fileID, json.RawMessage(`{"ok": true}`)); err != nil {
		t.Fatalf("SubmitTask() failed: %v", err)
	}
	prog, err = env.svc.ComputeProgress(ctx, lrnID, simID)
	if err != nil {
		t.Fatalf("ComputeProgress() failed: %v", err)
	}
	if prog.CompletedTasks != 1 || prog.Percentage != 50 {
		t.Errorf("ComputeProgress() = %+v, want 1/2", prog)
	}

	if _, err = env.svc.ComputeProgress(ctx, "stranger", simID); errors.Cause(err) != simulation.ErrEnrollmentNotFound {
		t.Errorf("ComputeProgress() error = %v, wantErr %v", err, simulation.ErrEnrollmentNotFound)
	}
}

func TestService_zeroTaskSimulationNeverCompletes(t *testing.T) {
	env := setup(t, nil)
	env.db.AddSimulation(simulation.Simulation{ID: "empty-sim", Title: "Empty"})
	env.db.AddLearner(learner.Learner{ID: lrnID, Name: "Awe"})
	env.db.AddEnrollment(simulation.Enrollment{ID: "enr-x", LearnerID: lrnID, SimulationID: "empty-sim"})

	prog, err := env.svc.ComputeProgress(context.Background(), lrnID, "empty-sim")
	if err != nil {
		t.Fatalf("ComputeProgress() failed: %v", err)
	}
	if prog.IsComplete || prog.Percentage != 0 {
		t.Errorf("ComputeProgress() = %+v, want incomplete 0%%", prog)
	}
}

type timingOutTaskRepo struct{}

func (timingOutTaskRepo) GetTask(context.Context, string, ...core.DBExecutor) (simulation.Task, error) {
	return simulation.Task{}, errors.Wrap(context.DeadlineExceeded, "finding task")
}

func (timingOutTaskRepo) QueryTasksBySimulation(context.Context, string, ...core.DBExecutor) ([]simulation.Task, error) {
	return nil, errors.Wrap(context.DeadlineExceeded, "querying tasks")
}

func TestService_SubmitTask_storeTimeoutIsUnavailable(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)

	conf := &core.Config{AppName: "Worksim"}
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	svc := simulation.NewService(
		conf, logger, auditsvc.NewLogSink(logger),
		dummydb.NewSimulationRepository(env.db),
		timingOutTaskRepo{},
		dummydb.NewSubmissionRepository(env.db),
		dummydb.NewEnrollmentRepository(env.db),
		env.issuer,
	)

	_, err := svc.SubmitTask(context.Background(), lrnID, simID, mcqID, json.RawMessage(`["a"]`))
	if !core.IsUnavailable(err) {
		t.Errorf("SubmitTask() error = %v, want an unavailable error", err)
	}
}

type failingSink struct{}

func (failingSink) Record(context.Context, core.AuditEvent) error {
	return errors.New("audit store down")
}

func TestService_SubmitTask_auditFailureIsSwallowed(t *testing.T) {
	env := setup(t, failingSink{})
	seedSimulation(env)

	res, err := env.svc.SubmitTask(context.Background(), lrnID, simID, fileID, json.RawMessage(`{"ok": true}`))
	if err != nil {
		t.Fatalf("SubmitTask() failed: %v", err)
	}
	if res.Progress.CompletedTasks != 1 {
		t.Errorf("progress = %+v, want 1 completed", res.Progress)
	}
}
