package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/internal/session"
)

var errPasswordRequired = errors.New("password is required")

func (c *cli) loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username or email>",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// сохранённая сессия не мешает входу под другим пользователем.
			_ = c.app.Session.Bootstrap(ctx)

			if password == "" {
				var err error
				if password, err = c.readLine("Password: "); err != nil {
					return err
				}
			}
			if password == "" {
				return errPasswordRequired
			}

			u, err := c.app.Session.Login(ctx, args[0], password)
			if err != nil {
				return userError(err)
			}

			fmt.Fprintf(c.out, "Logged in as %s\n", u.Username)

			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin if empty)")

	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var req models.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_ = c.app.Session.Bootstrap(ctx)

			if req.Password1 == "" {
				var err error
				if req.Password1, err = c.readLine("Password: "); err != nil {
					return err
				}
				if req.Password2, err = c.readLine("Repeat password: "); err != nil {
					return err
				}
			}
			if req.Password2 == "" {
				req.Password2 = req.Password1
			}

			u, err := c.app.Session.Register(ctx, req)
			if err != nil {
				return userError(err)
			}

			if u == nil {
				fmt.Fprintln(c.out, "Registered. Confirm your e-mail, then run: pcrec login")
				return nil
			}

			fmt.Fprintf(c.out, "Registered and logged in as %s\n", u.Username)

			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.Email, "email", "", "e-mail")
	cmd.Flags().StringVar(&req.Password1, "password", "", "password (read from stdin if empty)")
	cmd.Flags().StringVar(&req.Password2, "password-confirm", "", "password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// ошибка загрузки не мешает выходу: токены очищаются в любом случае.
			_ = c.app.Session.Bootstrap(ctx)

			c.app.Session.Logout(ctx)

			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.session(cmd.Context(), "/profile", session.RequireAuth)
			if err != nil {
				return err
			}

			u := s.User()
			role := "user"
			if u.IsAdmin() {
				role = "admin"
			}

			fmt.Fprintf(c.out, "%s <%s> id=%d role=%s\n", u.Username, u.Email, u.UserID(), role)

			if exp, ok := models.TokenExpiresAt(s.Snapshot().AccessToken); ok {
				fmt.Fprintf(c.out, "access token expires at %s\n", exp.Local().Format("2006-01-02 15:04:05"))
			}

			return nil
		},
	}
}

// userError — ошибка бэкенда в виде, пригодном для терминала.
func userError(err error) error {
	if e, ok := apierrors.As(err); ok {
		msg := e.Message()
		if len(e.Fields) > 1 {
			fields := make([]string, 0, len(e.Fields))
			for field := range e.Fields {
				fields = append(fields, field)
			}
			sort.Strings(fields)

			parts := make([]string, 0, len(fields))
			for _, field := range fields {
				parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
			}
			msg = strings.Join(parts, "; ")
		}

		return errors.New(msg)
	}

	return err
}
