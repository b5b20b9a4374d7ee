package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sundowners/taskhub/internal/model"
)

var csvHeader = []string{"title", "description", "category", "isCompleted"}

func writeTasksCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		row := []string{t.Title, t.Description, string(t.Category), strconv.FormatBool(t.IsCompleted)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readTasksCSV parses an export. Columns are matched by header name; only
// title is required.
func readTasksCSV(r io.Reader) ([]model.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("File is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("Invalid CSV: %v", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := col["title"]; !ok {
		return nil, errors.New("Missing title column")
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var tasks []model.Task
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Invalid CSV: %v", err)
		}
		t := model.Task{
			Title:       field(rec, "title"),
			Description: field(rec, "description"),
			Category:    model.Category(strings.ToLower(field(rec, "category"))),
		}
		if t.Title == "" {
			return nil, fmt.Errorf("Row %d: title is required", line)
		}
		if !t.Category.Valid() {
			t.Category = model.CategoryMedium
		}
		if v := field(rec, "isCompleted"); v != "" {
			done, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("Row %d: invalid isCompleted %q", line, v)
			}
			t.IsCompleted = done
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return nil, errors.New("File has no tasks")
	}
	return tasks, nil
}
