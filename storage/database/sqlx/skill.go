package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/simulation"
)

type skillRepository struct {
	exec core.DBExecutor
}

var _ simulation.SkillRepository = (*skillRepository)(nil) // interface compliance check

func NewSkillRepository(exec core.DBExecutor) *skillRepository {
	return &skillRepository{exec: exec}
}

type dbSkillRecord struct {
	ID               string    `db:"id"`
	LearnerID        string    `db:"learner_id"`
	SkillName        string    `db:"skill_name"`
	ProficiencyLevel string    `db:"proficiency_level"`
	SourceID         string    `db:"source_id"`
	AwardedAt        time.Time `db:"awarded_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (row dbSkillRecord) toDomain() simulation.SkillRecord {
	return simulation.SkillRecord{
		ID:               row.ID,
		LearnerID:        row.LearnerID,
		SkillName:        row.SkillName,
		ProficiencyLevel: row.ProficiencyLevel,
		SourceID:         row.SourceID,
		AwardedAt:        row.AwardedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

// UpsertSkillRecord refreshes an existing record for the same learner and skill
// instead of duplicating it; awarded_at keeps the original award time.
func (repo skillRepository) UpsertSkillRecord(ctx context.Context, rec simulation.SkillRecord, exec ...core.DBExecutor) (simulation.SkillRecord, error) {
	var row dbSkillRecord
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row,
		`INSERT INTO skill_record (id, learner_id, skill_name, proficiency_level, source_id, awarded_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (learner_id, skill_name) DO UPDATE
		 SET proficiency_level = EXCLUDED.proficiency_level,
		     source_id = EXCLUDED.source_id,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, learner_id, skill_name, proficiency_level, source_id, awarded_at, updated_at`,
		rec.ID, rec.LearnerID, rec.SkillName, rec.ProficiencyLevel, rec.SourceID,
		rec.AwardedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return simulation.SkillRecord{}, errors.Wrap(err, "upserting skill record")
	}
	return row.toDomain(), nil
}
