package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/veza-labs/worksim/apps/api/echo"
	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
	auditsvc "github.com/veza-labs/worksim/services/audit"
	blobsvc "github.com/veza-labs/worksim/services/blobstore"
	logsvc "github.com/veza-labs/worksim/services/logger"
	notifsvc "github.com/veza-labs/worksim/services/notifier"
	"github.com/veza-labs/worksim/storage/database"
	sqlxrepos "github.com/veza-labs/worksim/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	var notifier core.Notifier
	if conf.Debug {
		notifier = notifsvc.NewConsoleService(conf)
	} else {
		notifier = notifsvc.NewSendgridService(conf, logger)
	}
	audit := auditsvc.NewLogSink(logger)
	blobs := blobsvc.NewFileSystemStore(conf)

	simRepo := sqlxrepos.NewSimulationRepository(db)
	taskRepo := sqlxrepos.NewTaskRepository(db)
	subRepo := sqlxrepos.NewSubmissionRepository(db)
	enrRepo := sqlxrepos.NewEnrollmentRepository(db)
	certRepo := sqlxrepos.NewCertificateRepository(db)
	skillRepo := sqlxrepos.NewSkillRepository(db)
	learnerRepo := sqlxrepos.NewLearnerRepository(db)

	issuer := simulation.NewIssuer(conf, db, logger, notifier, simRepo, enrRepo, certRepo, skillRepo, learnerRepo)
	simSvc := simulation.NewService(conf, logger, audit, simRepo, taskRepo, subRepo, enrRepo, issuer)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Conf:          conf,
			Logger:        logger,
			SimulationSvc: simSvc,
			Issuer:        issuer,
			BlobStore:     blobs,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
