package learner

import (
	"context"
	"errors"

	"github.com/veza-labs/worksim/core"
)

// ErrNotFound is returned when a learner profile does not exist.
var ErrNotFound = errors.New("learner not found")

// Learner is the read-only profile of a platform learner. Profiles are
// managed by the account flow; the engine only reads them for certificate
// snapshots and completion notices.
type Learner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	OrgID string `json:"org_id,omitempty"`
}

type Repository interface {
	GetLearnerByID(ctx context.Context, id string, exec ...core.DBExecutor) (Learner, error)
}
