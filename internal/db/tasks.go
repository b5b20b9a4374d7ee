package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sundowners/taskhub/internal/model"
)

// Tasks

const taskColumns = "id, title, description, category, assign_to, is_completed"

func scanTask(s interface{ Scan(...any) error }) (model.Task, error) {
	var t model.Task
	var category string
	err := s.Scan(&t.ID, &t.Title, &t.Description, &category, &t.AssignedTo, &t.IsCompleted)
	t.Category = model.Category(category)
	return t, err
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertTask(e execer, t model.Task, createdBy string) (model.Task, error) {
	t.ID = uuid.NewString()
	if !t.Category.Valid() {
		t.Category = model.CategoryMedium
	}
	_, err := e.Exec(
		"INSERT INTO tasks (id, title, description, category, assign_to, is_completed, created_by) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Title, t.Description, string(t.Category), t.AssignedTo, t.IsCompleted, createdBy,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func CreateTask(t model.Task, createdBy string) (model.Task, error) {
	if _, err := GetUser(t.AssignedTo); err != nil {
		return model.Task{}, err
	}
	t, err := insertTask(DB, t, createdBy)
	if err != nil {
		return model.Task{}, err
	}
	return GetTask(t.ID)
}

// ImportTasks inserts every task or none of them.
func ImportTasks(tasks []model.Task, createdBy string) (int, error) {
	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tasks {
		if _, err := insertTask(tx, t, createdBy); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(tasks), nil
}

// TasksFor returns every task for admins, and the user's own tasks otherwise.
func TasksFor(u *model.User) ([]model.Task, error) {
	var rows *sql.Rows
	var err error
	if u.IsAdmin() {
		rows, err = DB.Query("SELECT " + taskColumns + " FROM tasks ORDER BY created_at, rowid")
	} else {
		rows, err = DB.Query("SELECT "+taskColumns+" FROM tasks WHERE assign_to = ? ORDER BY created_at, rowid", u.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns the stored task with the given id.
func GetTask(id string) (model.Task, error) {
	t, err := scanTask(DB.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	return t, err
}
