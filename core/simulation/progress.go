package simulation

import "math"

// computeProgress derives the aggregate completion state from the full task
// set and the learner's submissions. A task counts as done when a submission
// for it exists, whatever its score. Submissions to tasks no longer in the
// set (shrunken task set) are ignored, so the percentage is always the fresh
// ratio, never an incremented counter.
func computeProgress(tasks []Task, subs []Submission) Progress {
	taskSet := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		taskSet[t.ID] = struct{}{}
	}

	done := make(map[string]struct{}, len(subs))
	for _, s := range subs {
		if _, ok := taskSet[s.TaskID]; ok {
			done[s.TaskID] = struct{}{}
		}
	}

	prog := Progress{
		CompletedTasks: len(done),
		TotalTasks:     len(tasks),
	}
	// a simulation with no tasks can never auto-complete
	if prog.TotalTasks > 0 {
		prog.Percentage = int(math.Round(float64(prog.CompletedTasks) / float64(prog.TotalTasks) * 100))
		prog.IsComplete = prog.Percentage == 100
	}
	return prog
}
