package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/views"
)

var categories = []model.Category{model.CategoryHigh, model.CategoryMedium, model.CategoryLow}

type addTaskPage struct {
	app.Compo
	c *views.AddTask
}

func (p *addTaskPage) OnMount(ctx app.Context) {
	p.c = views.NewAddTask(env(), newHost(ctx))
	p.c.Mount(ctx)
}

func (p *addTaskPage) OnDismount() {
	if p.c != nil {
		p.c.Dismount()
	}
}

func (p *addTaskPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	p.c.Submit()
}

func (p *addTaskPage) onCategory(ctx app.Context, e app.Event) {
	p.c.Category = model.Category(ctx.JSSrc().Get("value").String())
}

func (p *addTaskPage) Render() app.UI {
	if p.c == nil {
		return page("Add Task", loading())
	}
	return page("Add Task",
		app.Form().OnSubmit(p.onSubmit).Body(
			field("Title", app.Input().Type("text").Value(p.c.Title).OnChange(p.ValueTo(&p.c.Title))),
			field("Description (markdown)", app.Textarea().Text(p.c.Description).OnChange(p.ValueTo(&p.c.Description))),
			field("Category", app.Select().OnChange(p.onCategory).Body(
				app.Range(categories).Slice(func(i int) app.UI {
					c := categories[i]
					return app.Option().Value(string(c)).Selected(c == p.c.Category).Text(string(c))
				}),
			)),
			app.If(p.c.ShowAssignee, func() app.UI {
				return field("Assign to", app.Select().OnChange(p.ValueTo(&p.c.AssignTo)).Body(
					app.Option().Value("").Text("Myself"),
					app.Range(p.c.Users).Slice(func(i int) app.UI {
						u := p.c.Users[i]
						return app.Option().Value(u.ID).Selected(u.ID == p.c.AssignTo).Text(u.DisplayName() + " <" + u.Email + ">")
					}),
				))
			}),
			app.Button().Type("submit").Disabled(p.c.Submitting).Text("Create task"),
		),
	)
}
