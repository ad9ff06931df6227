package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/service"
	"github.com/pagetrail/pagetrail-server/internal/view"
)

func addFilterFlags(cmd *cobra.Command, f *view.Filter) {
	cmd.Flags().StringVar(&f.Search, "search", "", "Substring of title or author")
	cmd.Flags().StringVar(&f.Genre, "genre", "", "Genre")
	cmd.Flags().StringVar((*string)(&f.Status), "status", "", "Reading status")
	cmd.Flags().StringVar((*string)(&f.Format), "format", "", "Format")
	cmd.Flags().StringVar(&f.Rating, "rating", "", `Rating 1-5, or "none" for unrated`)
}

func newListCmd(a *app) *cobra.Command {
	var (
		filter view.Filter
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := a.library().Table(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), table.Books)
			}
			if err := writeBookTable(cmd.OutOrStdout(), table.Books); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d books\n", len(table.Books), table.Total)
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newShelvesCmd(a *app) *cobra.Command {
	var (
		filter view.Filter
		sort   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "shelves",
		Short: "Show books grouped into shelves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := view.ParseSortKey(sort)
			if err != nil {
				return err
			}
			shelves, err := a.library().Shelves(cmd.Context(), filter, key)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, shelves)
			}
			for _, section := range shelves.Sections {
				fmt.Fprintf(out, "== %s (%d)\n", section.Bucket, len(section.Books))
				for i := range section.Books {
					fmt.Fprint(out, "  ")
					writeBook(out, &section.Books[i])
				}
			}
			fmt.Fprintf(out, "%d of %d books\n", shelves.Matched, shelves.Counts.Total)
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().StringVar(&sort, "sort", "", "Sort key: title, author, rating, year, dateAdded")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var (
		in                  service.BookInput
		status, format      string
		rating, pages, year int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Status = domain.Status(status)
			in.Format = domain.Format(format)
			if cmd.Flags().Changed("rating") {
				in.Rating = domain.IntPtr(rating)
			}
			if cmd.Flags().Changed("pages") {
				in.PageCount = domain.IntPtr(pages)
			}
			if cmd.Flags().Changed("year") {
				in.YearPublished = domain.IntPtr(year)
			}

			book, err := a.library().Add(cmd.Context(), in)
			if book != nil {
				writeBook(cmd.OutOrStdout(), book)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "Title (required)")
	f.StringVar(&in.Author, "author", "", "Author (required)")
	f.StringVar(&status, "status", string(domain.StatusWishlist), "Reading status")
	f.StringVar(&in.Genre, "genre", "", "Genre")
	f.StringVar(&format, "format", "", "Format: hardcover, paperback, ebook, audiobook")
	f.IntVar(&rating, "rating", 0, "Rating 1-5")
	f.IntVar(&pages, "pages", 0, "Page count")
	f.IntVar(&year, "year", 0, "Year published")
	f.StringSliceVar(&in.Tags, "tag", nil, "Tag (repeatable)")
	f.StringVar(&in.Notes, "notes", "", "Notes")
	f.StringVar(&in.CoverImage, "cover", "", "Cover image URL")
	f.BoolVar(&in.Favorite, "favorite", false, "Mark as favorite")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change a book's reading status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.library().ChangeStatus(cmd.Context(), args[0], domain.Status(args[1]))
			if book != nil {
				writeBook(cmd.OutOrStdout(), book)
			}
			return err
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			library := a.library()
			book, err := library.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete %q by %s? [y/N] ", book.Title, book.Author)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := library.Delete(cmd.Context(), book.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", book.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
