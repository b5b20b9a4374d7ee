package ui

import (
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/views"
)

// userPage is another user's profile at /user/{id}.
type userPage struct {
	app.Compo
	c *views.OtherUserProfile
}

func (p *userPage) OnNav(ctx app.Context) {
	id := strings.TrimPrefix(ctx.Page().URL().Path, views.PathUser)
	p.c = views.NewOtherUserProfile(env(), newHost(ctx))
	p.c.Mount(ctx, id)
}

func (p *userPage) Render() app.UI {
	if p.c == nil || p.c.User == nil {
		return page("Profile", loading())
	}
	u := p.c.User
	return page(u.DisplayName(),
		app.Div().Class("row").Body(
			app.If(u.Image != "", func() app.UI {
				return app.Img().Class("avatar").Src(u.Image).Alt(u.DisplayName())
			}),
			app.Span().Text(p.c.FollowerCount()+" followers"),
			app.Span().Text(p.c.FollowingCount()+" following"),
			app.If(!p.c.IsSelf(), func() app.UI {
				label := "Follow"
				if p.c.Following() {
					label = "Unfollow"
				}
				return app.Button().Disabled(p.c.Busy).Text(label).OnClick(func(ctx app.Context, e app.Event) {
					p.c.ToggleFollow()
				})
			}),
		),
		app.H2().Text("Posts"),
		app.If(len(p.c.Posts) == 0, func() app.UI {
			return app.P().Class("muted").Text("No posts yet.")
		}),
		app.Div().Class("grid").Body(
			app.Range(p.c.Posts).Slice(func(i int) app.UI {
				post := p.c.Posts[i]
				return app.Img().Class("post-thumb").Src(post.Image).OnClick(func(ctx app.Context, e app.Event) {
					p.c.OpenPost(post.ID)
				})
			}),
		),
		app.If(p.c.Selected != nil, p.renderPost),
	)
}

func (p *userPage) renderPost() app.UI {
	post := p.c.Selected
	viewer := p.c.ViewerID()
	return app.Div().Class("modal").Body(
		app.Div().Class("modal-body").Body(
			app.Button().Class("link close").Text("×").OnClick(func(ctx app.Context, e app.Event) {
				p.c.ClosePost()
			}),
			app.Img().Class("post-full").Src(post.Image),
			app.Ul().Class("comments").Body(
				app.Range(post.Comments).Slice(func(i int) app.UI {
					return p.renderComment(post.Comments[i], viewer)
				}),
			),
			app.Form().OnSubmit(func(ctx app.Context, e app.Event) {
				e.PreventDefault()
				p.c.AddComment()
			}).Body(
				app.Input().Type("text").Placeholder("Add a comment").
					Value(p.c.CommentText).OnChange(p.ValueTo(&p.c.CommentText)),
				app.Button().Type("submit").Disabled(p.c.Busy).Text("Post"),
			),
		),
	)
}

func (p *userPage) renderComment(c model.Comment, viewer string) app.UI {
	return app.Li().Body(
		app.A().Href(views.UserPath(c.User.ID)).Text(c.User.DisplayName()),
		app.Text(": "+c.Text),
		app.If(c.CanDelete(viewer), func() app.UI {
			return app.Button().Class("link").Disabled(p.c.Busy).Text("Delete").OnClick(func(ctx app.Context, e app.Event) {
				p.c.DeleteComment(c)
			})
		}),
	)
}
