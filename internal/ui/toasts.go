package ui

import (
	"sync"
	"time"

	"github.com/sundowners/taskhub/internal/notify"
)

type toast struct {
	id      int
	msg     notify.Message
	expires time.Time
}

// toastBoard keeps recent notifications so they survive a page change.
type toastBoard struct {
	mu       sync.Mutex
	ttl      time.Duration
	next     int
	items    []toast
	watchers map[int]func()
}

func newToastBoard(feed *notify.Feed, ttl time.Duration) *toastBoard {
	b := &toastBoard{ttl: ttl, watchers: make(map[int]func())}
	feed.Subscribe(func(m notify.Message) {
		b.add(m, time.Now())
	})
	return b
}

func (b *toastBoard) add(m notify.Message, now time.Time) {
	b.mu.Lock()
	b.items = append(b.items, toast{id: b.next, msg: m, expires: now.Add(b.ttl)})
	b.next++
	b.notifyLocked()
}

// notifyLocked releases b.mu before calling watchers.
func (b *toastBoard) notifyLocked() {
	watchers := make([]func(), 0, len(b.watchers))
	for _, fn := range b.watchers {
		watchers = append(watchers, fn)
	}
	b.mu.Unlock()
	for _, fn := range watchers {
		fn()
	}
}

// Active drops expired toasts and returns the rest, oldest first.
func (b *toastBoard) Active(now time.Time) []toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.items[:0]
	for _, t := range b.items {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	b.items = kept
	return append([]toast(nil), kept...)
}

func (b *toastBoard) Dismiss(id int) {
	b.mu.Lock()
	for i, t := range b.items {
		if t.id == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	b.notifyLocked()
}

// Watch calls fn after every change and returns a func that stops it.
func (b *toastBoard) Watch(fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.watchers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.watchers, id)
		b.mu.Unlock()
	}
}
