package views

import (
	"context"

	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/session"
)

const (
	msgLoginSuccess    = "Login successful"
	msgLoginFailed     = "Login failed"
	msgRegisterSuccess = "Registration successful. Please sign in."
	msgRegisterFailed  = "Registration failed"
	msgLogoutSuccess   = "Logged out successfully"
)

type Signin struct {
	env  *Env
	host Host

	Email      string
	Password   string
	Submitting bool
}

func NewSignin(env *Env, host Host) *Signin {
	return &Signin{env: env, host: host}
}

// Submit signs in. Invalid credentials are reported without a request.
func (s *Signin) Submit(ctx context.Context) {
	if s.Submitting {
		return
	}
	s.Submitting = true
	email, password := s.Email, s.Password

	s.host.Async(func() {
		res, err := s.env.Session.Login(ctx, email, password)
		s.host.Dispatch(func() {
			s.Submitting = false
			if err != nil {
				s.env.Notify.Error(rest.MessageOr(err, msgLoginFailed))
				return
			}
			s.Password = ""
			msg := res.Message
			if msg == "" {
				msg = msgLoginSuccess
			}
			s.env.Notify.Success(msg)
			s.host.Navigate(PathHome)
		})
	})
}

type Signup struct {
	env  *Env
	host Host

	Name       string
	Email      string
	Password   string
	Submitting bool
}

func NewSignup(env *Env, host Host) *Signup {
	return &Signup{env: env, host: host}
}

func (s *Signup) Submit(ctx context.Context) {
	if s.Submitting {
		return
	}
	s.Submitting = true
	name, email, password := s.Name, s.Email, s.Password

	s.host.Async(func() {
		msg, err := s.env.Session.Register(ctx, name, email, password)
		s.host.Dispatch(func() {
			s.Submitting = false
			if err != nil {
				s.env.Notify.Error(rest.MessageOr(err, msgRegisterFailed))
				return
			}
			if msg == "" {
				msg = msgRegisterSuccess
			}
			s.env.Notify.Success(msg)
			s.host.Navigate(PathSignin)
		})
	})
}

// Logout asks for confirmation before ending the session.
type Logout struct {
	env  *Env
	host Host

	Confirming bool
	Pending    bool
}

func NewLogout(env *Env, host Host) *Logout {
	return &Logout{env: env, host: host}
}

func (l *Logout) Ask()    { l.Confirming = true }
func (l *Logout) Cancel() { l.Confirming = false }

func (l *Logout) Confirm(ctx context.Context) {
	if l.Pending {
		return
	}
	l.Pending = true
	l.host.Async(func() {
		err := l.env.Session.Logout(ctx)
		l.host.Dispatch(func() {
			l.Pending = false
			l.Confirming = false
			if err != nil {
				l.env.logf("error logging out: %v", err)
				l.env.Notify.Error(session.MsgLogoutFailed)
				return
			}
			l.env.Notify.Success(msgLogoutSuccess)
			l.host.Navigate(PathSignin)
		})
	})
}
