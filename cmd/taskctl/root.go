package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sundowners/taskhub/internal/config"
	"github.com/sundowners/taskhub/internal/notify"
	"github.com/sundowners/taskhub/internal/realtime"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/session"
)

// cli is the state shared by every command.
type cli struct {
	out      io.Writer
	server   string
	realtime string

	cfg     config.Client
	store   *session.Store
	client  *rest.Client
	session *session.Manager
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// setup runs before every command.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	c.cfg = config.LoadClient(c.server, c.realtime)
	c.store = session.NewStore(
		session.NewFileBackend(filepath.Join(c.cfg.SessionDir, "session.json")),
		session.NewFileBackend(filepath.Join(c.cfg.SessionDir, "session.bak.json")),
	)
	c.client = rest.New(c.cfg.APIBaseURL, c.store, rest.WithTimeout(c.cfg.Timeout))
	c.session = session.NewManager(c.store, c.client, notify.Printer(c.printf))
	return nil
}

// openChannel connects to the relay and waits up to wait for the link.
func (c *cli) openChannel(ctx context.Context, wait time.Duration) *realtime.Channel {
	connected := make(chan struct{}, 1)
	ch := realtime.Open(ctx, c.cfg.RealtimeURL,
		realtime.WithLogf(func(format string, args ...any) {}),
		realtime.WithStateFunc(func(up bool) {
			if up {
				select {
				case connected <- struct{}{}:
				default:
				}
			}
		}),
	)
	select {
	case <-connected:
	case <-time.After(wait):
	case <-ctx.Done():
	}
	return ch
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}
	root := &cobra.Command{
		Use:               "taskctl",
		Short:             "Terminal client for TaskHub",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.server, "server", "", "API base URL (default $TASKHUB_API_BASE_URL)")
	root.PersistentFlags().StringVar(&c.realtime, "realtime", "", "relay URL (default derived from --server)")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.tasksCmd(),
		c.addCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.watchCmd(),
		c.followCmd(true),
		c.followCmd(false),
	)
	return root
}
