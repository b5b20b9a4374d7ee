package ui

import (
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/session"
	"github.com/sundowners/taskhub/internal/views"
)

const toastTTL = 4 * time.Second

// page wraps body in the shared header and toast area.
func page(title string, body ...app.UI) app.UI {
	return app.Div().Class("app").Body(
		&header{},
		&toastList{},
		app.Main().Class("page").Body(
			app.H1().Text(title),
			app.Div().Body(body...),
		),
	)
}

func loading() app.UI {
	return app.P().Class("muted").Text("Loading...")
}

// header shows navigation for the current session state.
type header struct {
	app.Compo

	state  session.State
	logout *views.Logout
	stop   func()
}

func (h *header) OnMount(ctx app.Context) {
	e := env()
	h.logout = views.NewLogout(e, newHost(ctx))
	h.stop = e.Session.Observe(func(st session.State) {
		ctx.Dispatch(func(app.Context) { h.state = st })
	})
}

func (h *header) OnDismount() {
	if h.stop != nil {
		h.stop()
	}
}

func (h *header) Render() app.UI {
	return app.Header().Class("nav").Body(
		app.A().Class("brand").Href(views.PathHome).Text("TaskHub"),
		app.If(h.state.LoggedIn, func() app.UI {
			return app.Nav().Body(
				app.A().Href(views.PathHome).Text("Home"),
				app.A().Href(views.PathAddTask).Text("Add Task"),
				app.A().Href(views.PathProfile).Text(h.profileLabel()),
				app.Button().Class("link").Text("Logout").OnClick(h.onLogout),
			)
		}).Else(func() app.UI {
			return app.Nav().Body(
				app.A().Href(views.PathSignin).Text("Sign in"),
				app.A().Href(views.PathSignup).Text("Sign up"),
			)
		}),
		app.If(h.logout != nil && h.logout.Confirming, func() app.UI {
			return confirmDialog("Are you sure you want to log out?", h.logout.Pending,
				func(ctx app.Context, e app.Event) { h.logout.Confirm(ctx) },
				func(ctx app.Context, e app.Event) { h.logout.Cancel() },
			)
		}),
	)
}

func (h *header) profileLabel() string {
	if h.state.User != nil {
		return h.state.User.DisplayName()
	}
	return "Profile"
}

func (h *header) onLogout(ctx app.Context, e app.Event) {
	h.logout.Ask()
}

func confirmDialog(question string, busy bool, onYes, onNo app.EventHandler) app.UI {
	return app.Div().Class("modal").Body(
		app.Div().Class("modal-body").Body(
			app.P().Text(question),
			app.Button().Class("danger").Text("Yes").Disabled(busy).OnClick(onYes),
			app.Button().Text("Cancel").Disabled(busy).OnClick(onNo),
		),
	)
}

// toastList shows the board's active notifications.
type toastList struct {
	app.Compo

	items []toast
	stop  func()
}

func (t *toastList) OnMount(ctx app.Context) {
	board := toasts()
	t.items = board.Active(time.Now())
	t.stop = board.Watch(func() {
		ctx.Dispatch(func(ctx app.Context) {
			t.items = board.Active(time.Now())
			ctx.After(toastTTL, t.refresh)
		})
	})
	if len(t.items) > 0 {
		ctx.After(toastTTL, t.refresh)
	}
}

func (t *toastList) OnDismount() {
	if t.stop != nil {
		t.stop()
	}
}

func (t *toastList) refresh(ctx app.Context) {
	t.items = toasts().Active(time.Now())
}

func (t *toastList) Render() app.UI {
	return app.Div().Class("toasts").Body(
		app.Range(t.items).Slice(func(i int) app.UI {
			it := t.items[i]
			return app.Div().Class("toast", "toast-"+it.msg.Level.String()).Body(
				app.Span().Text(it.msg.Text),
				app.Button().Class("link").Text("×").OnClick(func(ctx app.Context, e app.Event) {
					toasts().Dismiss(it.id)
				}),
			)
		}),
	)
}
