package model

import "sort"

// SortTasks orders tasks for display: incomplete before completed, then by
// category rank. Ties keep their relative order.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		return a.Category.Rank() < b.Category.Rank()
	})
}

// Upsert replaces the task with t's id, or appends t when the id is unknown.
func Upsert(tasks []Task, t Task) []Task {
	for i := range tasks {
		if tasks[i].ID == t.ID {
			tasks[i] = t
			return tasks
		}
	}
	return append(tasks, t)
}
