// Package notify carries user-visible notifications (toasts) from
// controllers to whatever renders them.
package notify

import "sync"

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return "info"
}

type Message struct {
	Level Level
	Text  string
}

// Notifier is the user-visible notification channel.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Feed fans notifications out to every subscriber.
type Feed struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Message)
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(Message))}
}

// Subscribe registers fn and returns a func that removes it.
func (f *Feed) Subscribe(fn func(Message)) (cancel func()) {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

func (f *Feed) publish(m Message) {
	f.mu.Lock()
	subs := make([]func(Message), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(m)
	}
}

func (f *Feed) Success(msg string) { f.publish(Message{LevelSuccess, msg}) }
func (f *Feed) Error(msg string)   { f.publish(Message{LevelError, msg}) }
func (f *Feed) Info(msg string)    { f.publish(Message{LevelInfo, msg}) }

// Recorder keeps every notification it receives.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	r.messages = append(r.messages, Message{l, msg})
	r.mu.Unlock()
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent notification, or false when none was sent.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Printer writes notifications through a printf-style func.
type Printer func(format string, args ...any)

func (p Printer) Success(msg string) { p("%s", msg) }
func (p Printer) Error(msg string)   { p("error: %s", msg) }
func (p Printer) Info(msg string)    { p("%s", msg) }
