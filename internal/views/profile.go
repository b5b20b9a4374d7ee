package views

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/session"
	"github.com/sundowners/taskhub/internal/validate"
)

const (
	MsgSelectImportFile = "Please select a file to import"
	MsgImportFailed     = "Error importing tasks"
	MsgExportFailed     = "Error exporting tasks"
	ExportFilename      = "tasks.csv"

	msgProfileUpdated = "Profile updated successfully"
	msgUpdateFailed   = "Failed to update profile"
	msgImported       = "Tasks imported successfully"
	msgAccountDeleted = "Account deleted successfully"
)

// Profile edits the signed-in user, imports and exports tasks, and deletes
// the account.
type Profile struct {
	env  *Env
	host Host
	ctx  context.Context

	User     *model.User
	Name     string
	Email    string
	Password string

	ImportName string
	importData []byte
	LastExport string

	Busy          bool
	ConfirmDelete bool

	stopObserve func()
}

func NewProfile(env *Env, host Host) *Profile {
	return &Profile{env: env, host: host}
}

func (p *Profile) Mount(ctx context.Context) {
	if !requireSession(p.env, p.host) {
		return
	}
	p.ctx = ctx
	p.stopObserve = p.env.Session.Observe(func(st session.State) {
		p.host.Dispatch(func() { p.onSession(st) })
	})
}

func (p *Profile) Dismount() {
	if p.stopObserve != nil {
		p.stopObserve()
		p.stopObserve = nil
	}
}

func (p *Profile) onSession(st session.State) {
	if st.User == nil {
		return
	}
	if p.User == nil || p.User.ID != st.User.ID {
		p.Name = st.User.Name
		p.Email = st.User.Email
	}
	p.User = st.User
}

// Save updates name and email, and the password when one was entered.
func (p *Profile) Save() {
	if p.Busy || p.User == nil {
		return
	}
	upd := rest.UserUpdate{Name: p.Name, Email: p.Email}
	if err := validate.Name(upd.Name); err != nil {
		p.env.Notify.Error(rest.Message(err))
		return
	}
	if err := validate.Email(upd.Email); err != nil {
		p.env.Notify.Error(rest.Message(err))
		return
	}
	if p.Password != "" {
		if err := validate.Password(p.Password); err != nil {
			p.env.Notify.Error(rest.Message(err))
			return
		}
		upd.Password = p.Password
	}

	p.Busy = true
	ctx, current := p.ctx, *p.User
	p.host.Async(func() {
		u, err := p.env.API.UpdateUser(ctx, current.ID, upd)
		p.host.Dispatch(func() {
			p.Busy = false
			if err != nil {
				p.env.Notify.Error(rest.MessageOr(err, msgUpdateFailed))
				return
			}
			if u == nil {
				current.Name, current.Email = upd.Name, upd.Email
				u = &current
			}
			p.Password = ""
			p.env.Session.SetUser(u)
			p.env.Notify.Success(msgProfileUpdated)
		})
	})
}

// SelectImport records the file chosen for import.
func (p *Profile) SelectImport(name string, data []byte) {
	p.ImportName = name
	p.importData = data
}

func (p *Profile) Import() {
	if p.Busy {
		return
	}
	if p.importData == nil {
		p.env.Notify.Error(MsgSelectImportFile)
		return
	}

	p.Busy = true
	ctx, name, data := p.ctx, p.ImportName, p.importData
	p.host.Async(func() {
		msg, err := p.env.API.ImportTasks(ctx, name, bytes.NewReader(data))
		p.host.Dispatch(func() {
			p.Busy = false
			if err != nil {
				p.env.Notify.Error(rest.MessageOr(err, MsgImportFailed))
				return
			}
			p.ImportName, p.importData = "", nil
			if msg == "" {
				msg = msgImported
			}
			p.env.Notify.Success(msg)
		})
	})
}

func (p *Profile) Export() {
	if p.Busy {
		return
	}
	p.Busy = true
	ctx := p.ctx
	p.host.Async(func() {
		data, err := p.env.API.ExportTasks(ctx)
		if err == nil {
			err = p.env.Files.Save(ExportFilename, data)
		}
		p.host.Dispatch(func() {
			p.Busy = false
			if err != nil {
				p.env.Notify.Error(rest.MessageOr(err, MsgExportFailed))
				return
			}
			p.LastExport = humanize.Bytes(uint64(len(data)))
			p.env.Notify.Success(fmt.Sprintf("Exported %s (%s)", ExportFilename, p.LastExport))
		})
	})
}

func (p *Profile) AskDelete()    { p.ConfirmDelete = true }
func (p *Profile) CancelDelete() { p.ConfirmDelete = false }

// Delete removes the account; the session is cleared only after the server
// confirmed.
func (p *Profile) Delete() {
	if p.Busy {
		return
	}
	p.Busy = true
	ctx := p.ctx
	p.host.Async(func() {
		msg, err := p.env.Session.DeleteAccount(ctx)
		p.host.Dispatch(func() {
			p.Busy = false
			p.ConfirmDelete = false
			if err != nil {
				p.env.Notify.Error(rest.MessageOr(err, session.MsgDeleteFailed))
				return
			}
			if msg == "" {
				msg = msgAccountDeleted
			}
			p.env.Notify.Success(msg)
			p.host.Navigate(PathSignup)
		})
	})
}
