package main

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// seed loads a small demo dataset: one published simulation with a
// multiple-choice task and a file-upload task, one learner and their
// enrollment. Re-running is a no-op.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	const (
		orgID  = "0d1f7a3e-9c64-4d0a-8a3b-6a1f6f0d2b10"
		simID  = "3f8a1c2e-5b7d-4e9f-a0c1-2d3e4f5a6b7c"
		mcqID  = "a1b2c3d4-e5f6-4a0b-8c1d-2e3f4a5b6c7d"
		fileID = "b2c3d4e5-f6a7-4b1c-9d2e-3f4a5b6c7d8e"
		lrnID  = "c3d4e5f6-a7b8-4c2d-8e3f-4a5b6c7d8e9f"
		enrID  = "d4e5f6a7-b8c9-4d3e-9f4a-5b6c7d8e9f0a"
	)

	tx, err := cli.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning seed transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO simulation (id, org_id, org_name, title, skills, published)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 ON CONFLICT (id) DO NOTHING`,
		simID, orgID, "Veza Labs", "Data Analytics Job Simulation",
		pq.StringArray{"Data Analysis", "SQL", "Communication"},
	); err != nil {
		return errors.Wrap(err, "seeding simulation")
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO task (id, simulation_id, title, submission_type, quiz_items, position)
		 VALUES ($1, $2, $3, 'multiple_choice', $4, 1)
		 ON CONFLICT (id) DO NOTHING`,
		mcqID, simID, "SQL Fundamentals Quiz",
		`[
			{"question": "Which clause filters rows?", "choices": ["SELECT", "WHERE", "ORDER BY", "GROUP BY"], "correct_answer": "WHERE"},
			{"question": "Which join keeps unmatched left rows?", "choices": ["INNER", "LEFT", "RIGHT", "CROSS"], "correct_answer": "LEFT"},
			{"question": "Which keyword removes duplicates?", "choices": ["UNIQUE", "DISTINCT", "SINGLE", "ONLY"], "correct_answer": "DISTINCT"},
			{"question": "Which function counts rows?", "choices": ["SUM", "TOTAL", "COUNT", "SIZE"], "correct_answer": "COUNT"}
		]`,
	); err != nil {
		return errors.Wrap(err, "seeding quiz task")
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO task (id, simulation_id, title, submission_type, position)
		 VALUES ($1, $2, $3, 'file_upload', 2)
		 ON CONFLICT (id) DO NOTHING`,
		fileID, simID, "Present Your Findings",
	); err != nil {
		return errors.Wrap(err, "seeding upload task")
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO learner (id, name, email, org_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		lrnID, "Demo Learner", "demo.learner@example.com", orgID,
	); err != nil {
		return errors.Wrap(err, "seeding learner")
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO enrollment (id, learner_id, simulation_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (learner_id, simulation_id) DO NOTHING`,
		enrID, lrnID, simID,
	); err != nil {
		return errors.Wrap(err, "seeding enrollment")
	}

	return errors.Wrap(tx.Commit(), "committing seed")
}
