package ui

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// host runs controllers on a component's context.
type host struct {
	ctx app.Context
}

func newHost(ctx app.Context) host {
	return host{ctx: ctx}
}

func (h host) Navigate(path string) { h.ctx.Navigate(path) }

func (h host) Dispatch(fn func()) {
	h.ctx.Dispatch(func(app.Context) { fn() })
}

func (h host) Async(fn func()) { h.ctx.Async(fn) }
