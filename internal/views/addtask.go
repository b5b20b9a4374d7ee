package views

import (
	"context"
	"strings"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/session"
)

const (
	MsgTitleRequired    = "Title is required"
	msgTaskCreated      = "Task created successfully"
	msgTaskFailed       = "Failed to create task"
	msgFetchUsersFailed = "Failed to fetch users"
)

// AddTask creates a task. Only admins pick an assignee; everyone else
// assigns to themselves.
type AddTask struct {
	env  *Env
	host Host
	ctx  context.Context

	Title       string
	Description string
	Category    model.Category
	AssignTo    string

	ShowAssignee bool
	Users        []model.User
	Submitting   bool

	stopObserve func()
	usersLoaded bool
}

func NewAddTask(env *Env, host Host) *AddTask {
	return &AddTask{env: env, host: host, Category: model.CategoryMedium}
}

func (a *AddTask) Mount(ctx context.Context) {
	if !requireSession(a.env, a.host) {
		return
	}
	a.ctx = ctx
	a.stopObserve = a.env.Session.Observe(func(st session.State) {
		a.host.Dispatch(func() { a.onSession(st) })
	})
}

func (a *AddTask) Dismount() {
	if a.stopObserve != nil {
		a.stopObserve()
		a.stopObserve = nil
	}
}

func (a *AddTask) onSession(st session.State) {
	a.ShowAssignee = st.User.IsAdmin()
	if a.AssignTo == "" {
		a.AssignTo = st.UserID
	}
	if a.ShowAssignee && !a.usersLoaded {
		a.usersLoaded = true
		a.loadUsers()
	}
}

func (a *AddTask) loadUsers() {
	ctx := a.ctx
	a.host.Async(func() {
		users, err := a.env.API.Users(ctx)
		a.host.Dispatch(func() {
			if err != nil {
				a.usersLoaded = false
				a.env.Notify.Error(rest.MessageOr(err, msgFetchUsersFailed))
				return
			}
			a.Users = users
		})
	})
}

// assignee is the user the new task goes to.
func (a *AddTask) assignee() string {
	st := a.env.Session.State()
	if st.User.IsAdmin() && a.AssignTo != "" {
		return a.AssignTo
	}
	return st.UserID
}

// Submit creates the task and, once the server accepted it, publishes it on
// the real-time feed.
func (a *AddTask) Submit() {
	if a.Submitting {
		return
	}
	title := strings.TrimSpace(a.Title)
	if title == "" {
		a.env.Notify.Error(MsgTitleRequired)
		return
	}
	category := a.Category
	if !category.Valid() {
		category = model.CategoryMedium
	}
	req := rest.NewTask{
		Title:       title,
		Description: a.Description,
		Category:    category,
		AssignTo:    a.assignee(),
	}

	a.Submitting = true
	ctx := a.ctx
	a.host.Async(func() {
		task, err := a.env.API.CreateTask(ctx, req)
		if err == nil {
			if perr := a.env.Feed.Publish(ctx, task); perr != nil {
				a.env.logf("error publishing task %s: %v", task.ID, perr)
			}
		}
		a.host.Dispatch(func() {
			a.Submitting = false
			if err != nil {
				a.env.Notify.Error(rest.MessageOr(err, msgTaskFailed))
				return
			}
			a.env.Notify.Success(msgTaskCreated)
			a.host.Navigate(PathHome)
		})
	})
}
