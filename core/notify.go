package core

// CompletionNotice carries everything a Notifier needs to announce that a
// learner finished a simulation.
type CompletionNotice struct {
	OrgID           string
	LearnerName     string
	LearnerEmail    string
	SimulationTitle string
}

// Notifier is any service that can announce simulation completions.
// NotifyCompletion is fire-and-forget: it must not block the caller and its
// failures must not surface to the completion path.
type Notifier interface {
	NotifyCompletion(notice CompletionNotice)
}
