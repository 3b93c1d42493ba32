package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "categories", Short: "Browse categories"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories with post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.API().Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(items, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tNAME\tPOSTS")
				for _, c := range items {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Slug, c.Name, c.PostCount)
				}
				tw.Flush()
			})
		},
	})
	return cmd
}

func newTagsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "tags", Short: "Browse tags"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.API().Tags.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(items, func(w io.Writer) {
				for _, t := range items {
					fmt.Fprintf(w, "%s\t%s\n", t.Slug, t.Name)
				}
			})
		},
	})
	return cmd
}
