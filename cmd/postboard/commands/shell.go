package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errUnterminatedQuote = errors.New("unterminated quote or escape")

func shellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively with one session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.inShell {
				return errors.New("already in a shell")
			}
			a.inShell = true
			defer func() { a.inShell = false }()

			ctx := cmd.Context()
			prompt := color.New(color.FgBlue, color.Bold)
			for {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				fmt.Fprint(a.errOut, prompt.Sprint(a.prompt()))
				line, err := a.in.ReadString('\n')
				if err != nil && line == "" {
					if errors.Is(err, io.EOF) {
						fmt.Fprintln(a.errOut)
						return nil
					}
					return err
				}

				words, err := splitArgs(line)
				if err != nil {
					fmt.Fprintln(a.errOut, "Error:", err)
					continue
				}
				if len(words) == 0 {
					continue
				}
				switch words[0] {
				case "exit", "quit":
					return nil
				case "shell":
					fmt.Fprintln(a.errOut, "Error: already in a shell")
					continue
				}

				json, debug := a.json, a.debug
				root := newRootCmd(a)
				root.SetArgs(words)
				_ = a.execute(ctx, root)
				a.json, a.debug = json, debug
			}
		},
	}
}

func (a *app) prompt() string {
	if user, ok := a.session().User(); ok {
		return fmt.Sprintf("postboard (%s) %s> ", user.UserName, a.presenter.Route())
	}
	return fmt.Sprintf("postboard %s> ", a.presenter.Route())
}

// splitArgs splits a shell line into words. Single and double quotes group
// words and a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
