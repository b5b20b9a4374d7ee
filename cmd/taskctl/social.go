package main

import (
	"github.com/spf13/cobra"
)

// followCmd builds "follow" or "unfollow".
func (c *cli) followCmd(follow bool) *cobra.Command {
	use, short := "follow USER_ID", "Follow a user"
	if !follow {
		use, short = "unfollow USER_ID", "Stop following a user"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if follow {
				if err := c.client.Follow(cmd.Context(), id); err != nil {
					return err
				}
			} else if err := c.client.Unfollow(cmd.Context(), id); err != nil {
				return err
			}

			u, err := c.client.OtherUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.printf("%s has %d followers", u.DisplayName(), len(u.Followers))
			return nil
		},
	}
}
