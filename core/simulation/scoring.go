package simulation

import "math"

// Score grades a multiple-choice task against normalized answers.
// Pure and deterministic: the answer at index i is compared against the quiz
// item at index i; missing answers count as wrong. A task with no quiz items
// scores 0.
func Score(task Task, answers []string) ScoreResult {
	total := len(task.QuizItems)

	var correct int
	for i, item := range task.QuizItems {
		if i < len(answers) && answers[i] == item.CorrectAnswer {
			correct++
		}
	}

	var score int
	if total > 0 {
		score = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return ScoreResult{
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Answers:        answers,
	}
}
