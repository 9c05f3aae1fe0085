// Package auditsvc records submission and completion events for review.
package auditsvc

import (
	"context"
	"fmt"

	"github.com/veza-labs/worksim/core"
)

type logSink struct {
	logger core.Logger
}

var _ core.AuditSink = (*logSink)(nil)

func NewLogSink(logger core.Logger) *logSink {
	return &logSink{logger: logger}
}

func (s logSink) Record(ctx context.Context, evt core.AuditEvent) error {
	s.logger.Info(
		fmt.Sprintf("audit: %s %s actor=%s target=%s: %s",
			evt.Category, evt.ActionCode, evt.ActorID, evt.TargetID, evt.Message),
		evt.Params,
	)
	return nil
}
