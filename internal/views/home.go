package views

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/realtime"
	"github.com/sundowners/taskhub/internal/rest"
)

const (
	MsgTaskUpdated      = "Task updated in real-time!"
	msgFetchTasksFailed = "Failed to fetch tasks"
	msgFetchUserFailed  = "Failed to fetch user data"
	msgTestNotification = "Test notification sent"
	msgTestNotifyFailed = "Failed to send test notification"
)

// Home is the dashboard: the signed-in user and their tasks, kept current
// by the real-time feed.
type Home struct {
	env  *Env
	host Host
	ctx  context.Context

	User       *model.User
	Tasks      []model.Task
	TasksReady bool
	UserErr    string
	TasksErr   string

	mounted  bool
	pending  []model.Task
	sub      *realtime.Subscription
	pushStop func()
}

func NewHome(env *Env, host Host) *Home {
	return &Home{env: env, host: host}
}

func (h *Home) Mount(ctx context.Context) {
	if !requireSession(h.env, h.host) {
		return
	}
	h.ctx = ctx
	h.mounted = true

	// Subscribe before fetching so nothing sent during the fetch is missed.
	h.sub = h.env.Feed.Subscribe(func(t model.Task) {
		h.host.Dispatch(func() { h.apply(t) })
	})
	if h.env.Push != nil {
		h.pushStop = h.env.Push.OnMessage(func(title, body string) {
			h.host.Dispatch(func() {
				if !h.mounted {
					return
				}
				h.env.Notify.Info(title + ": " + body)
				h.loadTasks()
			})
		})
	}

	h.loadUser()
	h.loadTasks()
	h.registerPush()
}

// Dismount drops the feed and push registrations.
func (h *Home) Dismount() {
	h.mounted = false
	h.sub.Unsubscribe()
	h.sub = nil
	if h.pushStop != nil {
		h.pushStop()
		h.pushStop = nil
	}
}

func (h *Home) loadUser() {
	ctx := h.ctx
	h.host.Async(func() {
		u, err := h.env.API.CurrentUser(ctx)
		h.host.Dispatch(func() {
			if err != nil {
				h.UserErr = rest.MessageOr(err, msgFetchUserFailed)
				h.env.Notify.Error(h.UserErr)
				return
			}
			h.User = u
			h.UserErr = ""
			h.env.Session.SetUser(u)
		})
	})
}

func (h *Home) loadTasks() {
	ctx := h.ctx
	h.host.Async(func() {
		tasks, err := h.env.API.Tasks(ctx)
		h.host.Dispatch(func() {
			if err != nil {
				h.TasksErr = rest.MessageOr(err, msgFetchTasksFailed)
				h.env.Notify.Error(h.TasksErr)
				return
			}
			for _, t := range h.pending {
				tasks = model.Upsert(tasks, t)
			}
			h.pending = nil
			model.SortTasks(tasks)
			h.Tasks = tasks
			h.TasksErr = ""
			h.TasksReady = true
		})
	})
}

// apply merges a real-time update into the task list. Updates that arrive
// before the first fetch completes are held and merged into its result.
func (h *Home) apply(t model.Task) {
	if !h.mounted {
		return
	}
	if !h.TasksReady {
		h.pending = append(h.pending, t)
		return
	}
	h.Tasks = model.Upsert(h.Tasks, t)
	model.SortTasks(h.Tasks)
	h.env.Notify.Info(MsgTaskUpdated)
}

func (h *Home) registerPush() {
	if h.env.Push == nil {
		return
	}
	ctx := h.ctx
	h.host.Async(func() {
		token, err := h.env.Push.Token(ctx)
		if err != nil {
			h.env.logf("push token unavailable: %v", err)
			return
		}
		if err := h.env.API.UpdateFCMToken(ctx, token); err != nil {
			h.env.logf("error registering push token: %v", err)
		}
	})
}

func (h *Home) SendTestNotification() {
	ctx := h.ctx
	h.host.Async(func() {
		msg, err := h.env.API.SendTestNotification(ctx)
		h.host.Dispatch(func() {
			if err != nil {
				h.env.Notify.Error(rest.MessageOr(err, msgTestNotifyFailed))
				return
			}
			if msg == "" {
				msg = msgTestNotification
			}
			h.env.Notify.Success(msg)
		})
	})
}

var md = goldmark.New()

// DescriptionHTML renders a task description written in markdown. Raw HTML
// in the source is dropped.
func DescriptionHTML(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}
