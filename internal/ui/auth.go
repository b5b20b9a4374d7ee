package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/views"
)

type signinPage struct {
	app.Compo
	c *views.Signin
}

func (p *signinPage) OnMount(ctx app.Context) {
	p.c = views.NewSignin(env(), newHost(ctx))
}

func (p *signinPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	p.c.Submit(ctx)
}

func (p *signinPage) Render() app.UI {
	if p.c == nil {
		return page("Sign in", loading())
	}
	return page("Sign in",
		app.Form().OnSubmit(p.onSubmit).Body(
			field("Email", app.Input().Type("email").Value(p.c.Email).OnChange(p.ValueTo(&p.c.Email))),
			field("Password", app.Input().Type("password").Value(p.c.Password).OnChange(p.ValueTo(&p.c.Password))),
			app.Button().Type("submit").Disabled(p.c.Submitting).Text("Sign in"),
		),
		app.P().Body(
			app.Text("No account? "),
			app.A().Href(views.PathSignup).Text("Sign up"),
		),
	)
}

type signupPage struct {
	app.Compo
	c *views.Signup
}

func (p *signupPage) OnMount(ctx app.Context) {
	p.c = views.NewSignup(env(), newHost(ctx))
}

func (p *signupPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	p.c.Submit(ctx)
}

func (p *signupPage) Render() app.UI {
	if p.c == nil {
		return page("Sign up", loading())
	}
	return page("Sign up",
		app.Form().OnSubmit(p.onSubmit).Body(
			field("Name", app.Input().Type("text").Value(p.c.Name).OnChange(p.ValueTo(&p.c.Name))),
			field("Email", app.Input().Type("email").Value(p.c.Email).OnChange(p.ValueTo(&p.c.Email))),
			field("Password", app.Input().Type("password").Value(p.c.Password).OnChange(p.ValueTo(&p.c.Password))),
			app.Button().Type("submit").Disabled(p.c.Submitting).Text("Create account"),
		),
		app.P().Body(
			app.Text("Already registered? "),
			app.A().Href(views.PathSignin).Text("Sign in"),
		),
	)
}

// logoutPage asks for confirmation straight away.
type logoutPage struct {
	app.Compo
	c *views.Logout
}

func (p *logoutPage) OnMount(ctx app.Context) {
	p.c = views.NewLogout(env(), newHost(ctx))
	p.c.Ask()
}

func (p *logoutPage) Render() app.UI {
	if p.c == nil {
		return page("Logout", loading())
	}
	return page("Logout",
		app.If(p.c.Confirming, func() app.UI {
			return confirmDialog("Are you sure you want to log out?", p.c.Pending,
				func(ctx app.Context, e app.Event) { p.c.Confirm(ctx) },
				func(ctx app.Context, e app.Event) {
					p.c.Cancel()
					ctx.Navigate(views.PathHome)
				},
			)
		}),
	)
}

func field(label string, input app.UI) app.UI {
	return app.Label().Class("field").Body(
		app.Span().Text(label),
		input,
	)
}
