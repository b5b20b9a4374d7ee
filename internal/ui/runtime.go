// Package ui renders the page controllers with go-app and provides the
// browser side of storage, downloads and push.
package ui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/config"
	"github.com/sundowners/taskhub/internal/notify"
	"github.com/sundowners/taskhub/internal/realtime"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/session"
	"github.com/sundowners/taskhub/internal/views"
)

// sessionMaxAge is how long the cookie mirror of the session lives.
const sessionMaxAge = 30 * 24 * time.Hour

type runtime struct {
	env    *views.Env
	toasts *toastBoard
}

var (
	rtOnce sync.Once
	rt     *runtime
)

// env returns the application environment, building it on first use. It
// must only be called in the browser.
func env() *views.Env {
	return browser().env
}

func toasts() *toastBoard {
	return browser().toasts
}

func browser() *runtime {
	rtOnce.Do(func() {
		rt = newRuntime()
	})
	return rt
}

func newRuntime() *runtime {
	feed := notify.NewFeed()
	store := session.NewStore(
		localStorage{},
		session.NewCookieBackend(documentCookies{}, sessionMaxAge),
	)

	apiBase := absoluteURL(getenv("API_BASE_URL", "/api"))
	client := rest.New(apiBase, store, rest.WithCredentials())

	realtimeURL := getenv("REALTIME_URL", "")
	if realtimeURL == "" {
		realtimeURL = config.RealtimeFromAPI(apiBase)
	}
	channel := realtime.Open(context.Background(), realtimeURL, realtime.WithLogf(app.Logf))

	manager := session.NewManager(store, client, feed)
	manager.Initialize(context.Background())

	return &runtime{
		toasts: newToastBoard(feed, toastTTL),
		env: &views.Env{
			Session: manager,
			API:     client,
			Feed:    channel,
			Notify:  feed,
			Push:    jsPush{},
			Files:   blobSaver{},
			Logf:    app.Logf,
		},
	}
}

func getenv(key, fallback string) string {
	if v := app.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// absoluteURL resolves a path against the page origin.
func absoluteURL(u string) string {
	if !strings.HasPrefix(u, "/") {
		return u
	}
	return app.Window().Get("location").Get("origin").String() + u
}
