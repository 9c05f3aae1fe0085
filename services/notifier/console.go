package notifsvc

import (
	"log"
	"sync"

	"github.com/veza-labs/worksim/core"
)

var (
	SentNotices = make([]core.CompletionNotice, 0)
	mu          sync.Mutex
)

type consoleService struct {
	subjPrefix    string
	disableOutput bool
}

var _ core.Notifier = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.Notifier {
	return &consoleService{subjPrefix: "[" + conf.AppName + "] "}
}

func (svc consoleService) NotifyCompletion(notice core.CompletionNotice) {
	go svc.send(notice)
}

func (svc consoleService) send(notice core.CompletionNotice) {
	mu.Lock()
	SentNotices = append(SentNotices, notice)
	mu.Unlock()

	if !svc.disableOutput {
		log.Printf("%s%s completed %s (to: %s)\n",
			svc.subjPrefix, notice.LearnerName, notice.SimulationTitle, notice.LearnerEmail)
	}
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock(conf *core.Config) core.Notifier {
	return &consoleServiceMock{
		consoleService: consoleService{
			subjPrefix:    "[" + conf.AppName + "] ",
			disableOutput: true,
		},
	}
}

// runs synchronously so tests can assert on SentNotices
func (svc *consoleServiceMock) NotifyCompletion(notice core.CompletionNotice) {
	svc.send(notice)
}
