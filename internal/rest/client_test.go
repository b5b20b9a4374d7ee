package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sundowners/taskhub/internal/model"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func setupServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "ana@example.com" {
			t.Errorf("expected email in body, got %q", creds.Email)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Logged in",
			"data": map[string]any{
				"token": "tok",
				"user":  map[string]any{"_id": "u1", "name": "Ana", "role": "member"},
			},
		})
	})

	c := New(srv.URL, nil)
	res, err := c.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "Secret1!"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.Token != "tok" || res.UserID() != "u1" || res.Message != "Logged in" {
		t.Errorf("unexpected login result %+v", res)
	}
}

func TestErrorKinds(t *testing.T) {
	t.Run("rejected carries server message", func(t *testing.T) {
		srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		})
		_, err := New(srv.URL, nil).Login(context.Background(), Credentials{})
		if KindOf(err) != KindRejected {
			t.Fatalf("expected rejected, got %v", err)
		}
		if Message(err) != "Invalid credentials" {
			t.Errorf("expected server message verbatim, got %q", Message(err))
		}
		var e *Error
		if errors.As(err, &e) && e.Status != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", e.Status)
		}
	})

	t.Run("rejected without payload uses status text", func(t *testing.T) {
		srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := New(srv.URL, staticToken("t")).Tasks(context.Background())
		if Message(err) != http.StatusText(http.StatusInternalServerError) {
			t.Errorf("unexpected message %q", Message(err))
		}
	})

	t.Run("network", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url, staticToken("t")).Tasks(context.Background())
		if KindOf(err) != KindNetwork {
			t.Fatalf("expected network error, got %v", err)
		}
		if MessageOr(err, "fallback") != "fallback" {
			t.Errorf("network errors should use the fallback message")
		}
	})

	t.Run("missing token sends nothing", func(t *testing.T) {
		var calls atomic.Int32
		srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
		_, err := New(srv.URL, staticToken("")).Tasks(context.Background())
		if KindOf(err) != KindValidation {
			t.Errorf("expected validation error, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("expected no requests, got %d", calls.Load())
		}
	})
}

func TestBearerHeader(t *testing.T) {
	srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer header, got %q", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []model.Task{{ID: "t1", Title: "One", Category: model.CategoryLow}},
		})
	})

	tasks, err := New(srv.URL, staticToken("secret")).Tasks(context.Background())
	if err != nil {
		t.Fatalf("Tasks() error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestCreateTask(t *testing.T) {
	srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		var nt NewTask
		json.NewDecoder(r.Body).Decode(&nt)
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Task created",
			"data":    model.Task{ID: "t9", Title: nt.Title, Category: nt.Category, AssignedTo: nt.AssignTo},
		})
	})

	task, err := New(srv.URL, staticToken("x")).CreateTask(context.Background(), NewTask{
		Title: "Write", Category: model.CategoryHigh, AssignTo: "u1",
	})
	if err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}
	if task.ID != "t9" || task.AssignedTo != "u1" || task.Category != model.CategoryHigh {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestImportTasks_Multipart(t *testing.T) {
	srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error: %v", err)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "tasks.csv" || !strings.HasPrefix(string(b), "title,") {
			t.Errorf("unexpected upload %q: %q", hdr.Filename, b)
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Imported 1 tasks"})
	})

	msg, err := New(srv.URL, staticToken("x")).ImportTasks(context.Background(), "tasks.csv",
		strings.NewReader("title,description,category,isCompleted\nA,,low,false\n"))
	if err != nil {
		t.Fatalf("ImportTasks() error: %v", err)
	}
	if msg != "Imported 1 tasks" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestRawEndpointsAndQuery(t *testing.T) {
	srv := setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oUser/getUser/u2":
			writeJSON(w, http.StatusOK, model.User{ID: "u2", Name: "Bo", Followers: []string{"u1"}})
		case "/post/deleteComment":
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			if r.URL.Query().Get("commentId") != "c1" || r.URL.Query().Get("postId") != "p1" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		default:
			http.NotFound(w, r)
		}
	})
	c := New(srv.URL, staticToken("x"))

	u, err := c.OtherUser(context.Background(), "u2")
	if err != nil {
		t.Fatalf("OtherUser() error: %v", err)
	}
	if !u.FollowedBy("u1") {
		t.Errorf("expected follower list to decode, got %+v", u)
	}

	if err := c.DeleteComment(context.Background(), "c1", "p1"); err != nil {
		t.Errorf("DeleteComment() error: %v", err)
	}
}
