// Package views holds the page controllers. They own page state and talk
// to the session, the REST API and the real-time feed; rendering is left to
// the UI layer, which drives them through a Host.
package views

import (
	"context"
	"io"
	"log"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/notify"
	"github.com/sundowners/taskhub/internal/realtime"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/session"
)

// Host is the UI loop a controller runs on.
type Host interface {
	Navigate(path string)
	// Dispatch runs fn on the UI loop and re-renders.
	Dispatch(fn func())
	// Async runs fn off the UI loop.
	Async(fn func())
}

// API is the subset of the REST client used by views.
type API interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	Users(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, upd rest.UserUpdate) (*model.User, error)
	UpdateFCMToken(ctx context.Context, token string) error
	SendTestNotification(ctx context.Context) (string, error)
	CreateTask(ctx context.Context, t rest.NewTask) (model.Task, error)
	Tasks(ctx context.Context) ([]model.Task, error)
	ImportTasks(ctx context.Context, filename string, r io.Reader) (string, error)
	ExportTasks(ctx context.Context) ([]byte, error)
	OtherUser(ctx context.Context, id string) (*model.User, error)
	OtherUserPosts(ctx context.Context, id string) ([]model.Post, error)
	Post(ctx context.Context, id string) (*model.Post, error)
	AddComment(ctx context.Context, postID, text string) error
	DeleteComment(ctx context.Context, commentID, postID string) error
	Follow(ctx context.Context, id string) error
	Unfollow(ctx context.Context, id string) error
}

// TaskFeed is the real-time update channel as seen by views.
type TaskFeed interface {
	Publish(ctx context.Context, t model.Task) error
	Subscribe(h realtime.Handler) *realtime.Subscription
}

// Push is the browser push-notification provider. Both methods may be
// unsupported, in which case Token returns an error.
type Push interface {
	Token(ctx context.Context) (string, error)
	OnMessage(fn func(title, body string)) (cancel func())
}

// FileSaver hands a generated file to the user.
type FileSaver interface {
	Save(name string, data []byte) error
}

type Env struct {
	Session *session.Manager
	API     API
	Feed    TaskFeed
	Notify  notify.Notifier
	Push    Push
	Files   FileSaver
	Logf    func(format string, args ...any)
}

func (e *Env) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// requireSession redirects to the sign-in page when no token is persisted.
func requireSession(env *Env, host Host) bool {
	if env.Session.HasSession() {
		return true
	}
	host.Navigate(PathSignin)
	return false
}

const (
	PathHome    = "/"
	PathSignin  = "/signin"
	PathSignup  = "/signup"
	PathAddTask = "/add-task"
	PathProfile = "/profile"
	PathLogout  = "/logout"
	PathUser    = "/user/"
)

func UserPath(id string) string {
	return PathUser + id
}
