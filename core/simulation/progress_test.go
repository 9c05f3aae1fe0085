package simulation

import "testing"

func Test_computeProgress(t *testing.T) {
	tasks := []Task{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	sub := func(taskID string) Submission { return Submission{TaskID: taskID} }

	tests := []struct {
		name  string
		tasks []Task
		subs  []Submission
		want  Progress
	}{
		{
			name:  "no submissions",
			tasks: tasks,
			want:  Progress{CompletedTasks: 0, TotalTasks: 3, Percentage: 0, IsComplete: false},
		},
		{
			name:  "partial",
			tasks: tasks,
			subs:  []Submission{sub("t1")},
			want:  Progress{CompletedTasks: 1, TotalTasks: 3, Percentage: 33, IsComplete: false},
		},
		{
			name:  "two thirds rounds up",
			tasks: tasks,
			subs:  []Submission{sub("t1"), sub("t2")},
			want:  Progress{CompletedTasks: 2, TotalTasks: 3, Percentage: 67, IsComplete: false},
		},
		{
			name:  "complete",
			tasks: tasks,
			subs:  []Submission{sub("t1"), sub("t2"), sub("t3")},
			want:  Progress{CompletedTasks: 3, TotalTasks: 3, Percentage: 100, IsComplete: true},
		},
		{
			name:  "duplicate submissions count once",
			tasks: tasks,
			subs:  []Submission{sub("t1"), sub("t1"), sub("t1")},
			want:  Progress{CompletedTasks: 1, TotalTasks: 3, Percentage: 33, IsComplete: false},
		},
		{
			name:  "orphan submissions ignored",
			tasks: tasks,
			subs:  []Submission{sub("t1"), sub("gone")},
			want:  Progress{CompletedTasks: 1, TotalTasks: 3, Percentage: 33, IsComplete: false},
		},
		{
			name: "zero tasks never complete",
			subs: []Submission{sub("t1")},
			want: Progress{CompletedTasks: 0, TotalTasks: 0, Percentage: 0, IsComplete: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeProgress(tt.tasks, tt.subs); got != tt.want {
				t.Errorf("computeProgress() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
