package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const skipAutoLogin = "postboard/skip-auto-login"

// Execute runs the CLI against the process streams and environment.
func Execute() error {
	return run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, getenv func(string) string) error {
	a, err := newApp(in, out, errOut, getenv)
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return err
	}

	root := newRootCmd(a)
	root.SetArgs(args)
	return a.execute(ctx, root)
}

func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(a.errOut, "Error:", err)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "postboard",
		Short:         "Terminal client for the post board",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			_, skip := cmd.Annotations[skipAutoLogin]
			return a.setup(cmd.Context(), !skip)
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.BaseURL, "url", a.opts.BaseURL, "server base URL (env "+EnvURL+")")
	flags.DurationVar(&a.opts.Timeout, "timeout", a.opts.Timeout, "per request timeout (env "+EnvTimeout+")")
	flags.BoolVar(&a.opts.LocalValidation, "local-validation", a.opts.LocalValidation, "validate input before sending it (env "+EnvLocalValidation+")")
	flags.BoolVarP(&a.opts.AssumeYes, "yes", "y", a.opts.AssumeYes, "answer yes to confirmations (env "+EnvAssumeYes+")")
	flags.StringVarP(&a.user, "user", "u", a.user, "e-mail to sign in with (env "+EnvUser+")")
	flags.StringVar(&a.password, "password", a.password, "password to sign in with (env "+EnvPassword+")")
	flags.BoolVar(&a.json, "json", a.json, "print results as JSON")
	flags.BoolVar(&a.debug, "debug", a.debug, "enable trace logging")
	flags.BoolVar(&a.activity, "activity", a.activity, "stream activity records as JSON lines on stderr")

	root.AddCommand(
		meCmd(a),
		loginCmd(a),
		logoutCmd(a),
		registerCmd(a),
		postsCmd(a),
		shellCmd(a),
	)
	return root
}
