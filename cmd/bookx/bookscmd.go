package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adna-tk/book-explorer/internal/catalog"
)

func booksCmd(a *app) *cobra.Command {
	var params catalog.ListParams

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.Books(cmd.Context(), params)
			if err != nil {
				return err
			}
			printBookPage(cmd.OutOrStdout(), page)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Search, "search", "", "match title or author")
	f.StringVar(&params.Genre, "genre", "", "filter by genre")
	f.StringVar(&params.BookType, "type", "", "filter by book type")
	f.StringVar(&params.Ordering, "ordering", "", "sort field, - prefix for descending")
	f.IntVar(&params.Page, "page", 1, "page number")
	f.IntVar(&params.PageSize, "page-size", 0, "results per page (server default 12)")
	return cmd
}

func printBookPage(w io.Writer, page catalog.Page[catalog.Book]) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tGENRE\tTYPE")
	for _, b := range page.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			b.ID, b.Title, b.Author, b.PublishedYear, b.Genre, b.BookType)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nPage %d of %d (%d books)\n", page.CurrentPage, page.TotalPages, page.Count)
}

func bookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "book <id>",
		Short: "Show one book with its full description and your notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			book, err := a.catalog.Book(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d)\n", book.Title, book.PublishedYear)
			fmt.Fprintf(out, "by %s | %s, %s\n\n", book.Author, book.Genre, book.BookType)
			if book.Description != "" {
				fmt.Fprintln(out, book.Description)
			}

			notes, err := a.catalog.Notes(cmd.Context(), id)
			switch {
			case errors.Is(err, catalog.ErrLoginRequired):
				fmt.Fprintln(out, "\nSign in to see your notes.")
			case err != nil:
				return err
			case len(notes) > 0:
				fmt.Fprintln(out, "\nYour notes:")
				for _, n := range notes {
					fmt.Fprintf(out, "  [%d] %s (%s)\n", n.ID, n.Text, n.UpdatedAt.Format("2006-01-02"))
				}
			}
			return nil
		},
	}
}
