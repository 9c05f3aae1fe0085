// Package notifsvc announces simulation completions to the learner's
// organization over email.
package notifsvc

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/veza-labs/worksim/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

type sendgridService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	logger     core.Logger
}

var _ core.Notifier = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *sendgridService {
	return &sendgridService{
		key:        conf.SendgridAPIKey,
		from:       sgmail.NewEmail(conf.AppName, conf.DefaultFromEmail),
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc sendgridService) NotifyCompletion(notice core.CompletionNotice) {
	go svc.send(notice)
}

func (svc sendgridService) prepare(notice core.CompletionNotice) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + fmt.Sprintf("%s completed %s", notice.LearnerName, notice.SimulationTitle)
	p.AddTos(sgmail.NewEmail(notice.LearnerName, notice.LearnerEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent(
		"text/plain",
		fmt.Sprintf("%s has completed the simulation %q. A certificate has been issued.", notice.LearnerName, notice.SimulationTitle),
	))
	return m
}

func (svc sendgridService) send(notice core.CompletionNotice) {
	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(notice))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending completion notice: %v", err), err)
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending completion notice - status: %d - Body: %s", res.StatusCode, res.Body))
	}
}
