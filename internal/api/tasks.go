package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/sundowners/taskhub/internal/auth"
	"github.com/sundowners/taskhub/internal/db"
	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/rest"
)

const maxImportSize = 5 << 20

func handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)
	var req rest.NewTask
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	category := req.Category
	if category == "" {
		category = model.CategoryMedium
	}
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return
	}
	// Members can only assign tasks to themselves.
	assignee := req.AssignTo
	if assignee == "" || !user.IsAdmin() {
		assignee = user.ID
	}

	task, err := db.CreateTask(model.Task{
		Title:       title,
		Description: req.Description,
		Category:    category,
		AssignedTo:  assignee,
	}, user.ID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Assigned user not found")
		return
	}
	if err != nil {
		log.Printf("error creating task: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeData(w, http.StatusCreated, "Task created successfully", task)
}

func handleGetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := db.TasksFor(auth.CurrentUser(r))
	if err != nil {
		log.Printf("error getting tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeData(w, http.StatusOK, "Tasks fetched successfully", tasks)
}

func handleImportTasks(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please select a file to import")
		return
	}
	defer file.Close()

	tasks, err := readTasksCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := range tasks {
		tasks[i].AssignedTo = user.ID
	}
	n, err := db.ImportTasks(tasks, user.ID)
	if err != nil {
		log.Printf("error importing tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "Error importing tasks")
		return
	}
	writeData(w, http.StatusCreated, "Tasks imported successfully", map[string]int{"imported": n})
}

func handleExportTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := db.TasksFor(auth.CurrentUser(r))
	if err != nil {
		log.Printf("error exporting tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "Error exporting tasks")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	if err := writeTasksCSV(w, tasks); err != nil {
		log.Printf("error writing export: %v", err)
	}
}
