package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/pc-recommender/internal/session"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}

	return id, nil
}

func (c *cli) savedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved builds",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved builds",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				if _, err := c.session(ctx, "/saved", session.RequireAuth); err != nil {
					return err
				}

				specs, err := c.app.Recommender.ListSaved(ctx)
				if err != nil {
					return userError(err)
				}

				if len(specs) == 0 {
					fmt.Fprintln(c.out, "No saved builds yet.")
					return nil
				}

				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTOTAL\tSAVED")
				for _, sp := range specs {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", sp.ID, sp.DisplayName(),
						formatPrice(sp.BuildDetails.TotalPriceEstimateTHB), sp.SavedAt.Local().Format("2006-01-02 15:04"))
				}

				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a saved build",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if _, err := c.session(ctx, "/saved", session.RequireAuth); err != nil {
					return err
				}

				sp, err := c.app.Recommender.GetSaved(ctx, id)
				if err != nil {
					return userError(err)
				}

				printBuild(c.out, fmt.Sprintf("#%d %s", sp.ID, sp.DisplayName()), sp.BuildDetails)
				if sp.UserNotes != nil && *sp.UserNotes != "" {
					fmt.Fprintf(c.out, "Notes: %s\n", *sp.UserNotes)
				}

				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a saved build",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if _, err := c.session(ctx, "/saved", session.RequireAuth); err != nil {
					return err
				}

				sp, err := c.app.Recommender.Rename(ctx, id, strings.Join(args[1:], " "))
				if err != nil {
					return userError(err)
				}

				fmt.Fprintf(c.out, "Renamed #%d to %q\n", sp.ID, sp.DisplayName())

				return nil
			},
		},
		&cobra.Command{
			Use:   "notes <id> [text]",
			Short: "Replace notes of a saved build (no text clears them)",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if _, err := c.session(ctx, "/saved", session.RequireAuth); err != nil {
					return err
				}

				if _, err := c.app.Recommender.UpdateNotes(ctx, id, strings.Join(args[1:], " ")); err != nil {
					return userError(err)
				}

				fmt.Fprintf(c.out, "Notes of #%d updated\n", id)

				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a saved build",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if _, err := c.session(ctx, "/saved", session.RequireAuth); err != nil {
					return err
				}

				if err := c.app.Recommender.DeleteSaved(ctx, id); err != nil {
					return userError(err)
				}

				fmt.Fprintf(c.out, "Deleted #%d\n", id)

				return nil
			},
		},
	)

	return cmd
}
