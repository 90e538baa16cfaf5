package commands

import (
	"context"
	"fmt"

	"github.com/goliatone/go-postboard"
	"github.com/spf13/cobra"
)

func meCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := a.session()
			user, ok := session.User()
			if a.json {
				if !ok {
					return a.printJSON(nil)
				}
				return a.printJSON(user)
			}
			if !ok {
				fmt.Fprintln(a.out, "anonymous")
				return nil
			}
			fmt.Fprintf(a.out, "%s <%s> (id %d)\n", user.UserName, user.Email, user.ID)
			return nil
		},
	}
}

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "login <email>",
		Short:       "Sign in",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipAutoLogin: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readSecret("Password", a.password)
			if err != nil {
				return err
			}
			return a.login(cmd.Context(), args[0], password)
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.submit(cmd.Context(), postboard.OpLogout, func(ctx context.Context) error {
				return a.orchestrator().Logout(ctx)
			})
		},
	}
}

func registerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "register <username> <email>",
		Short:       "Create an account",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipAutoLogin: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readSecret("Password", a.password)
			if err != nil {
				return err
			}
			reg := postboard.Registration{UserName: args[0], Email: args[1], Password: password}

			var user *postboard.User
			err = a.submit(cmd.Context(), postboard.OpRegister, func(ctx context.Context) error {
				var err error
				user, err = a.orchestrator().Register(ctx, reg)
				return err
			})
			if err != nil || user == nil {
				return err
			}
			if a.json {
				return a.printJSON(user)
			}
			return nil
		},
	}
}
