package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/goBlog/api"
	"github.com/MrEthical07/goBlog/permission"
)

func newPostsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List, read, search and write posts",
	}
	cmd.AddCommand(
		newPostsListCommand(a),
		newPostsShowCommand(a),
		newPostsSearchCommand(a),
		newPostsSuggestCommand(a),
		newPostsCreateCommand(a),
		newPostsDeleteCommand(a),
	)
	return cmd
}

func newPostsListCommand(a *app) *cobra.Command {
	var p api.ListPostsParams
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p.Status = api.PostStatus(status)
			page, err := a.client.API().Posts.List(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.printPostPage(page)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&p.Page, "page", 0, "page number")
	flags.IntVar(&p.PageSize, "page-size", 0, "items per page")
	flags.StringVar(&p.Category, "category", "", "category slug")
	flags.StringVar(&p.Tag, "tag", "", "tag slug")
	flags.StringVar(&p.Author, "author", "", "author ID")
	flags.StringVar(&status, "status", "", "draft or published")
	return cmd
}

func newPostsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Print one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := a.client.API().Posts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(post, func(w io.Writer) {
				fmt.Fprintf(w, "%s\nby %s, %d views\n\n%s\n", post.Title, post.Author.Username, post.ViewCount, post.Content)
			})
		},
	}
}

func newPostsSearchCommand(a *app) *cobra.Command {
	var p api.SearchParams
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over published posts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Query = strings.Join(args, " ")
			page, err := a.client.API().Posts.Search(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.printPostPage(page)
		},
	}
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "items per page")
	return cmd
}

func newPostsSuggestCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Title suggestions for a search prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.client.API().Posts.Suggest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(items, func(w io.Writer) {
				for _, s := range items {
					fmt.Fprintf(w, "%s\t%s\n", s.Slug, s.Title)
				}
			})
		},
	}
}

func newPostsCreateCommand(a *app) *cobra.Command {
	var (
		in       api.CreatePostInput
		file     string
		summary  string
		category string
		publish  bool
	)
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Write a post from a markdown file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.resolve(ctx); err != nil {
				return err
			}
			if err := a.client.Require(permission.PostCreate); err != nil {
				return err
			}

			content, err := readContent(a.in, file)
			if err != nil {
				return err
			}
			in.Title = args[0]
			in.Content = content
			if summary != "" {
				in.Summary = &summary
			}
			if category != "" {
				in.CategoryID = &category
			}
			in.Status = api.PostDraft
			if publish {
				in.Status = api.PostPublished
			}

			post, err := a.client.API().Posts.Create(ctx, in)
			if err != nil {
				return err
			}
			return a.emit(post, func(w io.Writer) {
				fmt.Fprintf(w, "created %s (%s)\n", post.Slug, post.Status)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "markdown file (stdin when empty)")
	flags.StringVar(&summary, "summary", "", "post summary")
	flags.StringVar(&category, "category-id", "", "category ID")
	flags.StringSliceVar(&in.TagIDs, "tag-id", nil, "tag IDs")
	flags.BoolVar(&publish, "publish", false, "publish instead of saving a draft")
	return cmd
}

func newPostsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.API().Posts.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}
}

func readContent(stdin io.Reader, path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(raw), nil
}

func (a *app) printPostPage(page *api.Page[api.PostListItem]) error {
	return a.emit(page, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tTITLE\tAUTHOR\tSTATUS")
		for _, p := range page.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Slug, api.Truncate(p.Title, 48), p.Author.Username, p.Status)
		}
		tw.Flush()
		fmt.Fprintf(w, "page %d of %d, %d posts\n", page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
	})
}
