package dummydb

import (
	"sync"

	"github.com/veza-labs/worksim/core/learner"
	"github.com/veza-labs/worksim/core/simulation"
)

type (
	DB struct {
		simulation  *simulationTable
		task        *taskTable
		submission  *submissionTable
		enrollment  *enrollmentTable
		certificate *certificateTable
		skill       *skillTable
		learner     *learnerTable
	}

	simulationTable struct {
		sync.RWMutex
		table map[string]*simulation.Simulation
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*simulation.Task
	}

	// submissions are keyed by "learnerID|taskID"
	submissionTable struct {
		sync.RWMutex
		table map[string]*simulation.Submission
	}

	// enrollments are keyed by "learnerID|simulationID"
	enrollmentTable struct {
		sync.RWMutex
		table map[string]*simulation.Enrollment
	}

	// certificates are keyed by "learnerID|simulationID"
	certificateTable struct {
		sync.RWMutex
		table map[string]*simulation.Certificate
	}

	// skill records are keyed by "learnerID|skillName"
	skillTable struct {
		sync.RWMutex
		table map[string]*simulation.SkillRecord
	}

	learnerTable struct {
		sync.RWMutex
		table map[string]*learner.Learner
	}
)

func Open() (*DB, error) {
	db := &DB{
		simulation:  &simulationTable{table: make(map[string]*simulation.Simulation)},
		task:        &taskTable{table: make(map[string]*simulation.Task)},
		submission:  &submissionTable{table: make(map[string]*simulation.Submission)},
		enrollment:  &enrollmentTable{table: make(map[string]*simulation.Enrollment)},
		certificate: &certificateTable{table: make(map[string]*simulation.Certificate)},
		skill:       &skillTable{table: make(map[string]*simulation.SkillRecord)},
		learner:     &learnerTable{table: make(map[string]*learner.Learner)},
	}
	return db, nil
}

func key(parts ...string) string {
	k := parts[0]
	for _, p := range parts[1:] {
		k += "|" + p
	}
	return k
}

// Seed helpers for tests and demos.

func (db *DB) AddSimulation(sim simulation.Simulation) {
	db.simulation.Lock()
	defer db.simulation.Unlock()
	db.simulation.table[sim.ID] = &sim
}

func (db *DB) AddTask(task simulation.Task) {
	db.task.Lock()
	defer db.task.Unlock()
	db.task.table[task.ID] = &task
}

func (db *DB) AddLearner(lrn learner.Learner) {
	db.learner.Lock()
	defer db.learner.Unlock()
	db.learner.table[lrn.ID] = &lrn
}

func (db *DB) AddEnrollment(enr simulation.Enrollment) {
	db.enrollment.Lock()
	defer db.enrollment.Unlock()
	db.enrollment.table[key(enr.LearnerID, enr.SimulationID)] = &enr
}

// SkillRecords returns a learner's skill rows. Test helper.
func (db *DB) SkillRecords(learnerID string) []simulation.SkillRecord {
	db.skill.RLock()
	defer db.skill.RUnlock()

	recs := make([]simulation.SkillRecord, 0)
	for _, rec := range db.skill.table {
		if rec.LearnerID == learnerID {
			recs = append(recs, *rec)
		}
	}
	return recs
}

// Certificates returns every issued certificate row. Test helper.
func (db *DB) Certificates() []simulation.Certificate {
	db.certificate.RLock()
	defer db.certificate.RUnlock()

	certs := make([]simulation.Certificate, 0)
	for _, cert := range db.certificate.table {
		certs = append(certs, *cert)
	}
	return certs
}
