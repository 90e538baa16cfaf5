package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-postboard"
	"github.com/spf13/cobra"
)

func postsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "posts",
		Aliases: []string{"post"},
		Short:   "Read and manage posts",
	}
	cmd.AddCommand(
		postsListCmd(a),
		postsShowCmd(a),
		postsCreateCmd(a),
		postsUpdateCmd(a),
		postsDeleteCmd(a),
	)
	return cmd
}

func postsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List posts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var posts []postboard.PostView
			err := a.submit(cmd.Context(), postboard.OpListPosts, func(ctx context.Context) error {
				var err error
				posts, err = a.orchestrator().ListPosts(ctx)
				return err
			})
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(posts)
			}
			a.printPostTable(posts)
			return nil
		},
	}
}

func postsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var post *postboard.PostView
			err = a.submit(cmd.Context(), postboard.OpShowPost, func(ctx context.Context) error {
				var err error
				post, err = a.orchestrator().ShowPost(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(post)
			}
			a.printPost(*post)
			return nil
		},
	}
}

func postsCreateCmd(a *app) *cobra.Command {
	var input postboard.PostInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var post *postboard.Post
			err := a.submit(cmd.Context(), postboard.OpCreatePost, func(ctx context.Context) error {
				var err error
				post, err = a.orchestrator().CreatePost(ctx, input)
				return err
			})
			if err != nil || post == nil || !a.json {
				return err
			}
			return a.printJSON(post)
		},
	}
	cmd.Flags().StringVarP(&input.Title, "title", "t", "", "post title")
	cmd.Flags().StringVarP(&input.Content, "content", "c", "", "post content")
	return cmd
}

func postsUpdateCmd(a *app) *cobra.Command {
	var input postboard.PostInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var post *postboard.Post
			err = a.submit(cmd.Context(), postboard.OpUpdatePost, func(ctx context.Context) error {
				var err error
				post, err = a.orchestrator().UpdatePost(ctx, id, input)
				return err
			})
			if err != nil || post == nil || !a.json {
				return err
			}
			return a.printJSON(post)
		},
	}
	cmd.Flags().StringVarP(&input.Title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&input.Content, "content", "c", "", "new content")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func postsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete one of your posts",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.submit(cmd.Context(), postboard.OpDeletePost, func(ctx context.Context) error {
				return a.orchestrator().DeletePost(ctx, id, func(id int64) {
					if a.json {
						_ = a.printJSON(map[string]any{"deleted": id})
					}
				})
			})
		},
	}
}

func (a *app) printPostTable(posts []postboard.PostView) {
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "no posts yet")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCREATED\t")
	for _, p := range posts {
		marker := ""
		if p.Editable {
			marker = "*"
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\t%s\t\n", p.ID, marker, p.Title, authorOf(p.Post), p.CreatedAt.Local().Format(time.DateTime))
	}
	_ = w.Flush()
}

func (a *app) printPost(p postboard.PostView) {
	fmt.Fprintf(a.out, "#%d %s\n", p.ID, p.Title)
	fmt.Fprintf(a.out, "by %s on %s\n", authorOf(p.Post), p.CreatedAt.Local().Format(time.DateTime))
	if p.UpdatedAt != nil {
		fmt.Fprintf(a.out, "edited %s\n", p.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(a.out, "\n%s\n", p.Content)
}

func authorOf(p postboard.Post) string {
	if p.Owner != nil && p.Owner.UserName != "" {
		return p.Owner.UserName
	}
	return fmt.Sprintf("user %d", p.OwnerID)
}
