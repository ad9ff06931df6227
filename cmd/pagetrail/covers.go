package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagetrail/pagetrail-server/internal/service"
)

func newCoverCmd(a *app) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "cover [id]",
		Short: "Look up a cover image by book id or by title and author",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res *service.CoverResult
				err error
			)
			switch {
			case len(args) == 1:
				res, err = a.covers().ResolveBookCover(cmd.Context(), args[0])
			case title != "":
				res, err = a.covers().Resolve(cmd.Context(), title, author)
			default:
				return errors.New("pass a book id or --title")
			}
			if err != nil {
				return err
			}
			if res.URL == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no cover found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", *res.URL, res.Source)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title to look up")
	cmd.Flags().StringVar(&author, "author", "", "Author to look up")
	return cmd
}
