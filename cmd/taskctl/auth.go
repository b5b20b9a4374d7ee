package main

import (
	"os"

	"github.com/spf13/cobra"
)

func (c *cli) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.session.Register(cmd.Context(), name, email, passwordOrEnv(password))
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Registered. Sign in with taskctl login."
			}
			c.printf("%s", msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (default $TASKHUB_PASSWORD)")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.session.Login(cmd.Context(), email, passwordOrEnv(password))
			if err != nil {
				return err
			}
			who := email
			if res.User != nil {
				who = res.User.DisplayName()
			}
			c.printf("Signed in as %s", who)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (default $TASKHUB_PASSWORD)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.session.HasSession() {
				c.printf("Not signed in")
				return nil
			}
			if err := c.session.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("%s <%s> (%s)", u.DisplayName(), u.Email, u.Role)
			c.printf("id: %s", u.ID)
			return nil
		},
	}
}

func passwordOrEnv(p string) string {
	if p != "" {
		return p
	}
	return os.Getenv("TASKHUB_PASSWORD")
}
