package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/rest"
)

const publishWait = 3 * time.Second

func (c *cli) tasksCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List your tasks, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := c.client.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			model.SortTasks(tasks)
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}
			if len(tasks) == 0 {
				c.printf("No tasks")
				return nil
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tDONE\tTITLE")
			for _, t := range tasks {
				fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", t.ID, t.Category, t.IsCompleted, t.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var req rest.NewTask
	var category string
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task and announce it to live clients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[0]
			cat, err := model.ParseCategory(category)
			if err != nil {
				return err
			}
			req.Category = cat

			u, err := c.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if !u.IsAdmin() || req.AssignTo == "" {
				req.AssignTo = u.ID
			}

			task, err := c.client.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.printf("Created task %s", task.ID)

			ch := c.openChannel(cmd.Context(), publishWait)
			defer ch.Close()
			if err := ch.Publish(cmd.Context(), task); err != nil {
				c.printf("Live update not sent: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "markdown description")
	cmd.Flags().StringVarP(&category, "category", "c", string(model.CategoryMedium), "high, medium or low")
	cmd.Flags().StringVar(&req.AssignTo, "assign", "", "assignee id (admins only)")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download your tasks as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.client.ExportTasks(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			c.printf("Wrote %s (%s)", output, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "tasks.csv", "output file")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Upload tasks from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			msg, err := c.client.ImportTasks(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Tasks imported"
			}
			c.printf("%s", msg)
			return nil
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print task updates as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			ch := c.openChannel(ctx, 0)
			defer ch.Close()
			sub := ch.Subscribe(func(t model.Task) {
				c.printf("[%s] %s (%s) -> %s", time.Now().Format(time.TimeOnly), t.Title, t.Category, t.AssignedTo)
			})
			defer sub.Unsubscribe()

			c.printf("Watching %s, Ctrl-C to stop", c.cfg.RealtimeURL)
			<-ctx.Done()
			return nil
		},
	}
}
