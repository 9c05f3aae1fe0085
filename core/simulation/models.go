package simulation

import (
	"encoding/json"
	"time"

	"github.com/volatiletech/null/v8"
)

// Task submission types
const (
	SubmissionTypeFreeForm       = "free_form"
	SubmissionTypeFileUpload     = "file_upload"
	SubmissionTypeMultipleChoice = "multiple_choice"
)

// Enrollment statuses
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// StatusSubmitted is the only submission status the engine writes.
const StatusSubmitted = "submitted"

// DefaultProficiency is the level awarded for every simulation skill on
// completion.
const DefaultProficiency = "Intermediate"

type (
	// QuizItem is one question of a multiple-choice task.
	QuizItem struct {
		Question      string   `json:"question"`
		Choices       []string `json:"choices"`
		CorrectAnswer string   `json:"correct_answer"`
	}

	// Task belongs to exactly one Simulation. Tasks are authored elsewhere
	// and immutable here.
	Task struct {
		ID             string     `json:"id"`
		SimulationID   string     `json:"simulation_id"`
		Title          string     `json:"title"`
		SubmissionType string     `json:"submission_type"`
		QuizItems      []QuizItem `json:"quiz_items,omitempty"`
		Position       int        `json:"position"`
	}

	// Simulation is a published multi-task job simulation. Read-only from
	// the engine's perspective.
	Simulation struct {
		ID        string    `json:"id"`
		OrgID     string    `json:"org_id"`
		OrgName   string    `json:"org_name"`
		Title     string    `json:"title"`
		Skills    []string  `json:"skills"`
		Published bool      `json:"published"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// ScoreResult is the outcome of grading a multiple-choice submission.
	ScoreResult struct {
		Score          int      `json:"score"`
		CorrectCount   int      `json:"correct_count"`
		TotalQuestions int      `json:"total_questions"`
		Answers        []string `json:"answers"`
	}

	// Submission is one learner's answer to one task. At most one row per
	// (learner, task); resubmission overwrites in place.
	Submission struct {
		ID           string          `json:"id"`
		LearnerID    string          `json:"learner_id"`
		TaskID       string          `json:"task_id"`
		SimulationID string          `json:"simulation_id"`
		Payload      json.RawMessage `json:"payload"`
		Score        null.Int        `json:"score"`
		Status       string          `json:"status"`
		SubmittedAt  time.Time       `json:"submitted_at"` // UTC
		UpdatedAt    time.Time       `json:"updated_at"`   // UTC
	}

	// Progress is the aggregate completion state of one enrollment.
	Progress struct {
		CompletedTasks int  `json:"completed_tasks"`
		TotalTasks     int  `json:"total_tasks"`
		Percentage     int  `json:"percentage"`
		IsComplete     bool `json:"is_complete"`
	}

	// Enrollment is a learner's relationship to a simulation. Created by the
	// enrollment flow before any submission arrives.
	Enrollment struct {
		ID                 string    `json:"id"`
		LearnerID          string    `json:"learner_id"`
		SimulationID       string    `json:"simulation_id"`
		Status             string    `json:"status"`
		ProgressPercentage int       `json:"progress_percentage"`
		CompletedAt        null.Time `json:"completed_at"`
		CreatedAt          time.Time `json:"created_at"` // UTC
		UpdatedAt          time.Time `json:"updated_at"` // UTC
	}

	// Certificate is the durable proof of completion. One per
	// (learner, simulation); immutable once issued. Learner name, title and
	// skills are snapshots so later taxonomy edits don't rewrite history.
	Certificate struct {
		ID              string    `json:"-"`
		CertificateID   string    `json:"certificate_id"`
		LearnerID       string    `json:"learner_id"`
		SimulationID    string    `json:"simulation_id"`
		LearnerName     string    `json:"learner_name"`
		SimulationTitle string    `json:"simulation_title"`
		OrgName         string    `json:"org_name"`
		Skills          []string  `json:"skills"`
		IssuedAt        time.Time `json:"issued_at"`    // UTC
		CompletedAt     time.Time `json:"completed_at"` // UTC
	}

	// SkillRecord is a learner's claim to proficiency in a named skill.
	// Upserted on repeat award, never duplicated.
	SkillRecord struct {
		ID               string    `json:"-"`
		LearnerID        string    `json:"learner_id"`
		SkillName        string    `json:"skill_name"`
		ProficiencyLevel string    `json:"proficiency_level"`
		SourceID         string    `json:"source_id"`  // simulation that awarded it
		AwardedAt        time.Time `json:"awarded_at"` // UTC
		UpdatedAt        time.Time `json:"updated_at"` // UTC
	}

	// SubmitResult is what a submit call hands back to the outer layer.
	SubmitResult struct {
		Submission  Submission   `json:"submission"`
		ScoreResult *ScoreResult `json:"score_result,omitempty"`
		Progress    Progress     `json:"progress"`
		// Certificate is set when this call completed the simulation.
		Certificate *Certificate `json:"certificate,omitempty"`
	}
)
