// Package sqlxrepos implements the engine's repositories on Postgres.
package sqlxrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/veza-labs/worksim/core"
)

// pgUniqueViolation is the Postgres error code for unique-key conflicts.
const pgUniqueViolation = "23505"

func getExec(dflt core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return dflt
}

// trapNoRowsErr maps psql "no rows" err to the package sentinel
func trapNoRowsErr(err, sentinel error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == pgUniqueViolation
}
