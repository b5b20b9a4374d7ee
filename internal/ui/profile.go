package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/views"
)

type profilePage struct {
	app.Compo
	c *views.Profile
}

func (p *profilePage) OnMount(ctx app.Context) {
	p.c = views.NewProfile(env(), newHost(ctx))
	p.c.Mount(ctx)
}

func (p *profilePage) OnDismount() {
	if p.c != nil {
		p.c.Dismount()
	}
}

func (p *profilePage) onSave(ctx app.Context, e app.Event) {
	e.PreventDefault()
	p.c.Save()
}

func (p *profilePage) onSelectFile(ctx app.Context, e app.Event) {
	files := ctx.JSSrc().Get("files")
	if files.Length() == 0 {
		p.c.SelectImport("", nil)
		return
	}
	readFile(ctx, files.Index(0), p.c.SelectImport)
}

func (p *profilePage) Render() app.UI {
	if p.c == nil || p.c.User == nil {
		return page("Profile", loading())
	}
	return page("Profile",
		app.Form().OnSubmit(p.onSave).Body(
			field("Name", app.Input().Type("text").Value(p.c.Name).OnChange(p.ValueTo(&p.c.Name))),
			field("Email", app.Input().Type("email").Value(p.c.Email).OnChange(p.ValueTo(&p.c.Email))),
			field("New password", app.Input().Type("password").Placeholder("Leave blank to keep").
				Value(p.c.Password).OnChange(p.ValueTo(&p.c.Password))),
			app.Button().Type("submit").Disabled(p.c.Busy).Text("Save"),
		),

		app.H2().Text("Tasks"),
		app.Div().Class("row").Body(
			app.Input().Type("file").Accept(".csv,text/csv").OnChange(p.onSelectFile),
			app.Button().Disabled(p.c.Busy).Text("Import").OnClick(func(ctx app.Context, e app.Event) {
				p.c.Import()
			}),
			app.Button().Disabled(p.c.Busy).Text("Export").OnClick(func(ctx app.Context, e app.Event) {
				p.c.Export()
			}),
		),
		app.If(p.c.LastExport != "", func() app.UI {
			return app.P().Class("muted").Text("Last export: " + p.c.LastExport)
		}),

		app.H2().Text("Danger zone"),
		app.Button().Class("danger").Disabled(p.c.Busy).Text("Delete account").OnClick(func(ctx app.Context, e app.Event) {
			p.c.AskDelete()
		}),
		app.If(p.c.ConfirmDelete, func() app.UI {
			return confirmDialog("Delete your account? This cannot be undone.", p.c.Busy,
				func(ctx app.Context, e app.Event) { p.c.Delete() },
				func(ctx app.Context, e app.Event) { p.c.CancelDelete() },
			)
		}),
	)
}
