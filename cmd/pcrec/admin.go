package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/internal/session"
)

func (c *cli) admin(ctx context.Context, path string) error {
	_, err := c.session(ctx, path, session.RequireAdmin)
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}

	return "no"
}

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration (staff only)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show usage statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				if err := c.admin(ctx, "/admin"); err != nil {
					return err
				}

				st, err := c.app.Recommender.Stats(ctx)
				if err != nil {
					return userError(err)
				}

				fmt.Fprintf(c.out, "Users: %d\nSaved builds: %d\nRecommendations today: %d\n",
					st.TotalUsers, st.TotalSavedSpecs, st.RecommendationsToday)

				return nil
			},
		},
		&cobra.Command{
			Use:   "users",
			Short: "List users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				if err := c.admin(ctx, "/admin/users"); err != nil {
					return err
				}

				users, err := c.app.Recommender.Users(ctx)
				if err != nil {
					return userError(err)
				}

				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tSTAFF\tACTIVE")
				for _, u := range users {
					active := u.IsActive == nil || *u.IsActive
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.UserID(), u.Username, u.Email, yesNo(u.IsStaff), yesNo(active))
				}

				return tw.Flush()
			},
		},
		c.adminToggleCmd("toggle-staff", "Grant or revoke staff rights", func(u models.AdminUser) (bool, bool) {
			return !u.IsStaff, true
		}),
		c.adminToggleCmd("toggle-active", "Block or unblock a user", func(u models.AdminUser) (bool, bool) {
			return !(u.IsActive == nil || *u.IsActive), false
		}),
		&cobra.Command{
			Use:   "delete-user <id>",
			Short: "Delete a user and their saved builds",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if err := c.admin(ctx, "/admin/users"); err != nil {
					return err
				}

				if err := c.app.Recommender.DeleteUser(ctx, id); err != nil {
					return userError(err)
				}

				fmt.Fprintf(c.out, "Deleted user %d\n", id)

				return nil
			},
		},
		&cobra.Command{
			Use:   "specs",
			Short: "List saved builds of all users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				if err := c.admin(ctx, "/admin/specs"); err != nil {
					return err
				}

				specs, err := c.app.Recommender.Specs(ctx)
				if err != nil {
					return userError(err)
				}

				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSER\tNAME\tSAVED")
				for _, sp := range specs {
					fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", sp.ID, sp.User, sp.DisplayName(), sp.SavedAt.Local().Format("2006-01-02 15:04"))
				}

				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "delete-spec <id>",
			Short: "Delete any saved build",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if err := c.admin(ctx, "/admin/specs"); err != nil {
					return err
				}

				if err := c.app.Recommender.DeleteSpec(ctx, id); err != nil {
					return userError(err)
				}

				fmt.Fprintf(c.out, "Deleted build #%d\n", id)

				return nil
			},
		},
	)

	return cmd
}

// adminToggleCmd переключает флаг пользователя; next возвращает новое
// значение и какой флаг менять (true — staff, false — active).
func (c *cli) adminToggleCmd(use, short string, next func(models.AdminUser) (bool, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := c.admin(ctx, "/admin/users"); err != nil {
				return err
			}

			users, err := c.app.Recommender.Users(ctx)
			if err != nil {
				return userError(err)
			}

			var target *models.AdminUser
			for i := range users {
				if users[i].UserID() == id {
					target = &users[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("user %d not found", id)
			}

			value, staff := next(*target)

			var updated *models.AdminUser
			if staff {
				updated, err = c.app.Recommender.SetStaff(ctx, id, value)
			} else {
				updated, err = c.app.Recommender.SetActive(ctx, id, value)
			}
			if err != nil {
				return userError(err)
			}

			active := updated.IsActive == nil || *updated.IsActive
			fmt.Fprintf(c.out, "%s: staff=%s active=%s\n", updated.Username, yesNo(updated.IsStaff), yesNo(active))

			return nil
		},
	}
}
