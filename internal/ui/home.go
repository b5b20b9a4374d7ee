package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/views"
)

type homePage struct {
	app.Compo
	c *views.Home
}

func (p *homePage) OnMount(ctx app.Context) {
	p.c = views.NewHome(env(), newHost(ctx))
	p.c.Mount(ctx)
}

func (p *homePage) OnDismount() {
	if p.c != nil {
		p.c.Dismount()
	}
}

func (p *homePage) Render() app.UI {
	if p.c == nil {
		return page("Dashboard", loading())
	}
	return page("Dashboard",
		p.renderUser(),
		app.Button().Text("Send test notification").OnClick(func(ctx app.Context, e app.Event) {
			p.c.SendTestNotification()
		}),
		app.H2().Text("Tasks"),
		p.renderTasks(),
	)
}

func (p *homePage) renderUser() app.UI {
	switch {
	case p.c.UserErr != "":
		return app.P().Class("error").Text(p.c.UserErr)
	case p.c.User == nil:
		return loading()
	}
	return app.P().Body(
		app.Text("Welcome, "),
		app.Strong().Text(p.c.User.DisplayName()),
		app.Span().Class("badge").Text(string(p.c.User.Role)),
	)
}

func (p *homePage) renderTasks() app.UI {
	switch {
	case p.c.TasksErr != "":
		return app.P().Class("error").Text(p.c.TasksErr)
	case !p.c.TasksReady:
		return loading()
	case len(p.c.Tasks) == 0:
		return app.P().Class("muted").Text("No tasks yet.")
	}
	return app.Ul().Class("tasks").Body(
		app.Range(p.c.Tasks).Slice(func(i int) app.UI {
			return taskItem(p.c.Tasks[i])
		}),
	)
}

func taskItem(t model.Task) app.UI {
	status := "open"
	if t.IsCompleted {
		status = "done"
	}
	return app.Li().Class("task", "task-"+string(t.Category), "task-"+status).Body(
		app.Div().Class("task-head").Body(
			app.Strong().Text(t.Title),
			app.Span().Class("badge").Text(string(t.Category)),
			app.Span().Class("badge").Text(status),
		),
		app.If(t.Description != "", func() app.UI {
			return app.Raw(`<div class="task-body">` + views.DescriptionHTML(t.Description) + `</div>`)
		}),
	)
}
