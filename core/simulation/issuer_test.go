package simulation_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/learner"
	"github.com/veza-labs/worksim/core/simulation"
	logsvc "github.com/veza-labs/worksim/services/logger"
	notifsvc "github.com/veza-labs/worksim/services/notifier"
	dummydb "github.com/veza-labs/worksim/storage/database/dummy"
)

func TestIssuer_CompleteSimulation_idempotent(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)
	ctx := context.Background()

	first, err := env.issuer.CompleteSimulation(ctx, lrnID, simID)
	if err != nil {
		t.Fatalf("CompleteSimulation() failed: %v", err)
	}
	if first.CertificateID == "" {
		t.Fatal("CompleteSimulation() returned an empty certificate_id")
	}

	// repeat calls return the original row unchanged
	for i := 0; i < 3; i++ {
		again, err := env.issuer.CompleteSimulation(ctx, lrnID, simID)
		if err != nil {
			t.Fatalf("CompleteSimulation() repeat failed: %v", err)
		}
		if again.CertificateID != first.CertificateID || !again.IssuedAt.Equal(first.IssuedAt) {
			t.Errorf("repeat certificate = %+v, want %+v", again, first)
		}
	}

	if certs := env.db.Certificates(); len(certs) != 1 {
		t.Errorf("certificates = %d, want 1", len(certs))
	}
	if recs := env.db.SkillRecords(lrnID); len(recs) != 2 {
		t.Errorf("skill records = %d, want 2", len(recs))
	}
}

func TestIssuer_CompleteSimulation_concurrent(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)
	ctx := context.Background()

	const callers = 8
	certs := make([]simulation.Certificate, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			certs[i], errs[i] = env.issuer.CompleteSimulation(ctx, lrnID, simID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if certs[i].CertificateID != certs[0].CertificateID {
			t.Errorf("caller %d got %s, want %s", i, certs[i].CertificateID, certs[0].CertificateID)
		}
	}

	if got := env.db.Certificates(); len(got) != 1 {
		t.Errorf("certificates = %d, want 1", len(got))
	}
	if recs := env.db.SkillRecords(lrnID); len(recs) != 2 {
		t.Errorf("skill records = %d, want 2", len(recs))
	}
}

func TestIssuer_CompleteSimulation_notFound(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)
	ctx := context.Background()

	tests := []struct {
		name      string
		learnerID string
		simID     string
		wantErr   error
	}{
		{name: "unknown simulation", learnerID: lrnID, simID: "nope", wantErr: simulation.ErrSimulationNotFound},
		{name: "unknown enrollment", learnerID: "stranger", simID: simID, wantErr: simulation.ErrEnrollmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.issuer.CompleteSimulation(ctx, tt.learnerID, tt.simID); errors.Cause(err) != tt.wantErr {
				t.Errorf("CompleteSimulation() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMakeCertificateID(t *testing.T) {
	now := time.Unix(1712345678, 0) // suffix 345678
	tests := []struct {
		name         string
		simulationID string
		learnerID    string
		want         string
	}{
		{
			name:         "uuid inputs",
			simulationID: "3f8a1c2e-5b7d-4e9f-a0c1-2d3e4f5a6b7c",
			learnerID:    "c3d4e5f6-a7b8-4c2d-8e3f-4a5b6c7d8e9f",
			want:         "CERT-3F8A-C3D4-345678",
		},
		{
			name:         "short ids are kept whole",
			simulationID: "ab",
			learnerID:    "x",
			want:         "CERT-AB-X-345678",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := simulation.MakeCertificateID(tt.simulationID, tt.learnerID, now); got != tt.want {
				t.Errorf("MakeCertificateID() = %s, want %s", got, tt.want)
			}
		})
	}
}

type timingOutEnrollmentRepo struct{}

func (timingOutEnrollmentRepo) GetEnrollment(context.Context, string, string, ...core.DBExecutor) (simulation.Enrollment, error) {
	return simulation.Enrollment{}, errors.Wrap(context.DeadlineExceeded, "finding enrollment")
}

func (timingOutEnrollmentRepo) UpdateEnrollment(context.Context, simulation.Enrollment, ...core.DBExecutor) (simulation.Enrollment, error) {
	return simulation.Enrollment{}, errors.Wrap(context.DeadlineExceeded, "updating enrollment")
}

func TestIssuer_CompleteSimulation_storeTimeoutIsUnavailable(t *testing.T) {
	env := setup(t, nil)
	seedSimulation(env)

	conf := &core.Config{AppName: "Worksim"}
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	issuer := simulation.NewIssuer(
		conf, nil, logger, notifsvc.NewConsoleServiceMock(conf),
		dummydb.NewSimulationRepository(env.db),
		timingOutEnrollmentRepo{},
		dummydb.NewCertificateRepository(env.db),
		dummydb.NewSkillRepository(env.db),
		dummydb.NewLearnerRepository(env.db),
	)

	_, err := issuer.CompleteSimulation(context.Background(), lrnID, simID)
	if !core.IsUnavailable(err) {
		t.Errorf("CompleteSimulation() error = %v, want an unavailable error", err)
	}
}

type failingSkillRepo struct{}

func (failingSkillRepo) UpsertSkillRecord(context.Context, simulation.SkillRecord, ...core.DBExecutor) (simulation.SkillRecord, error) {
	return simulation.SkillRecord{}, errors.New("skill store down")
}

func TestIssuer_CompleteSimulation_partialFailureIsFatal(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	conf := &core.Config{AppName: "Worksim"}
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	issuer := simulation.NewIssuer(
		conf, nil, logger, notifsvc.NewConsoleServiceMock(conf),
		dummydb.NewSimulationRepository(db),
		dummydb.NewEnrollmentRepository(db),
		dummydb.NewCertificateRepository(db),
		failingSkillRepo{},
		dummydb.NewLearnerRepository(db),
	)

	db.AddSimulation(simulation.Simulation{ID: simID, Title: "Sim", Skills: []string{"SQL"}})
	db.AddLearner(learner.Learner{ID: lrnID, Name: "Awe", Email: "awe@test.cd"})
	db.AddEnrollment(simulation.Enrollment{ID: "enr-1", LearnerID: lrnID, SimulationID: simID})

	_, err = issuer.CompleteSimulation(context.Background(), lrnID, simID)
	if !core.IsFatal(err) {
		t.Errorf("CompleteSimulation() error = %v, want a fatal error", err)
	}
}
