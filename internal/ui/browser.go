package ui

import (
	"context"
	"errors"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// localStorage is the primary session backend.
type localStorage struct{}

func (localStorage) storage() app.Value {
	return app.Window().Get("localStorage")
}

func (s localStorage) Get(key string) (string, bool) {
	v := s.storage().Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false
	}
	return v.String(), true
}

func (s localStorage) Set(key, value string) error {
	s.storage().Call("setItem", key, value)
	return nil
}

func (s localStorage) Del(key string) error {
	s.storage().Call("removeItem", key)
	return nil
}

// documentCookies reads and writes document.cookie.
type documentCookies struct{}

func (documentCookies) Read() string {
	return app.Window().Get("document").Get("cookie").String()
}

func (documentCookies) Write(setCookie string) {
	app.Window().Get("document").Set("cookie", setCookie)
}

// blobSaver downloads data through a temporary object URL.
type blobSaver struct{}

func (blobSaver) Save(name string, data []byte) error {
	win := app.Window()
	arr := win.Get("Uint8Array").New(len(data))
	app.CopyBytesToJS(arr, data)

	parts := win.Get("Array").New()
	parts.Call("push", arr)
	blob := win.Get("Blob").New(parts, map[string]any{"type": "text/csv"})
	url := win.Get("URL").Call("createObjectURL", blob)
	defer win.Get("URL").Call("revokeObjectURL", url)

	doc := win.Get("document")
	a := doc.Call("createElement", "a")
	a.Set("href", url)
	a.Set("download", name)
	doc.Get("body").Call("appendChild", a)
	a.Call("click")
	a.Call("remove")
	return nil
}

// readFile loads a File object selected in an <input type=file>.
func readFile(ctx app.Context, file app.Value, fn func(name string, data []byte)) {
	name := file.Get("name").String()
	var done app.Func
	done = app.FuncOf(func(this app.Value, args []app.Value) any {
		defer done.Release()
		arr := app.Window().Get("Uint8Array").New(args[0])
		data := make([]byte, arr.Length())
		app.CopyBytesToGo(data, arr)
		ctx.Dispatch(func(app.Context) { fn(name, data) })
		return nil
	})
	file.Call("arrayBuffer").Call("then", done)
}

var errPushUnsupported = errors.New("push notifications are not available")

// jsPush talks to the push provider the page exposes as window.taskhubPush:
// getToken() returns a promise of the device token and onMessage(cb)
// registers a foreground message callback.
type jsPush struct{}

func (jsPush) provider() (app.Value, bool) {
	p := app.Window().Get("taskhubPush")
	return p, p.Truthy()
}

func (j jsPush) Token(ctx context.Context) (string, error) {
	p, ok := j.provider()
	if !ok {
		return "", errPushUnsupported
	}

	type result struct {
		token string
		err   error
	}
	ch := make(chan result, 1)
	var resolve, reject app.Func
	resolve = app.FuncOf(func(this app.Value, args []app.Value) any {
		token := ""
		if len(args) > 0 && args[0].Truthy() {
			token = args[0].String()
		}
		ch <- result{token: token}
		return nil
	})
	reject = app.FuncOf(func(this app.Value, args []app.Value) any {
		ch <- result{err: errors.New("push token request rejected")}
		return nil
	})
	defer resolve.Release()
	defer reject.Release()

	p.Call("getToken").Call("then", resolve, reject)

	select {
	case r := <-ch:
		if r.err == nil && r.token == "" {
			r.err = errPushUnsupported
		}
		return r.token, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (j jsPush) OnMessage(fn func(title, body string)) func() {
	p, ok := j.provider()
	if !ok {
		return func() {}
	}
	cb := app.FuncOf(func(this app.Value, args []app.Value) any {
		if len(args) == 0 {
			return nil
		}
		msg := args[0]
		fn(msg.Get("title").String(), msg.Get("body").String())
		return nil
	})
	unsubscribe := p.Call("onMessage", cb)
	return func() {
		if unsubscribe.Truthy() {
			unsubscribe.Invoke()
		}
		cb.Release()
	}
}
