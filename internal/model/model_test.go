package model

import (
	"encoding/json"
	"testing"
)

func TestSortTasks(t *testing.T) {
	tasks := []Task{
		{ID: "a", IsCompleted: false, Category: CategoryLow},
		{ID: "b", IsCompleted: true, Category: CategoryHigh},
		{ID: "c", IsCompleted: false, Category: CategoryHigh},
	}

	SortTasks(tasks)

	want := []string{"c", "a", "b"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (order %v)", i, id, tasks[i].ID, ids(tasks))
		}
	}
}

func TestSortTasks_CategoryWithinCompletion(t *testing.T) {
	tasks := []Task{
		{ID: "1", Category: CategoryLow, IsCompleted: true},
		{ID: "2", Category: CategoryMedium},
		{ID: "3", Category: CategoryHigh, IsCompleted: true},
		{ID: "4", Category: CategoryLow},
		{ID: "5", Category: CategoryHigh},
		{ID: "6", Category: CategoryMedium, IsCompleted: true},
	}

	SortTasks(tasks)

	want := []string{"5", "2", "4", "3", "6", "1"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("expected order %v, got %v", want, ids(tasks))
		}
	}
}

func TestUpsert(t *testing.T) {
	tasks := []Task{{ID: "1", Title: "old"}, {ID: "2", Title: "two"}}

	tasks = Upsert(tasks, Task{ID: "1", Title: "new"})
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after replace, got %d", len(tasks))
	}
	if tasks[0].Title != "new" {
		t.Errorf("expected replaced title %q, got %q", "new", tasks[0].Title)
	}

	tasks = Upsert(tasks, Task{ID: "3", Title: "three"})
	if len(tasks) != 3 || tasks[2].ID != "3" {
		t.Errorf("expected unknown id to be appended, got %v", ids(tasks))
	}

	tasks = Upsert(tasks, Task{ID: "3", Title: "three again"})
	if len(tasks) != 3 {
		t.Errorf("expected no duplicate on repeated upsert, got %d tasks", len(tasks))
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"high", false},
		{"medium", false},
		{"low", false},
		{"urgent", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestUserHelpers(t *testing.T) {
	u := &User{ID: "u1", Name: "Ana", Role: RoleAdmin, Followers: []string{"u2"}}

	if !u.IsAdmin() {
		t.Error("expected admin")
	}
	if !u.FollowedBy("u2") {
		t.Error("expected u2 to follow")
	}
	if u.FollowedBy("") {
		t.Error("empty id must never follow")
	}
	if u.DisplayName() != "Ana" {
		t.Errorf("expected name fallback, got %q", u.DisplayName())
	}

	var nilUser *User
	if nilUser.IsAdmin() {
		t.Error("nil user is not an admin")
	}
}

func TestCommentCanDelete(t *testing.T) {
	c := Comment{ID: "c1", User: User{ID: "author"}}
	if !c.CanDelete("author") {
		t.Error("author should be able to delete")
	}
	if c.CanDelete("someone-else") || c.CanDelete("") {
		t.Error("only the author may delete")
	}
}

func TestTaskJSONFieldNames(t *testing.T) {
	var task Task
	raw := `{"_id":"t1","title":"Ship","category":"high","assignTo":"u1","isCompleted":true}`
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.ID != "t1" || task.AssignedTo != "u1" || !task.IsCompleted || task.Category != CategoryHigh {
		t.Errorf("unexpected task %+v", task)
	}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
