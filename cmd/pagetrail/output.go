package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeBookTable(w io.Writer, books []domain.Book) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tSTATUS\tRATING\tFAV")
	for i := range books {
		b := &books[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, b.Status, rating(b.Rating), favorite(b.Favorite))
	}
	return tw.Flush()
}

func writeBook(w io.Writer, b *domain.Book) {
	fmt.Fprintf(w, "%s  %s by %s [%s]\n", b.ID, b.Title, b.Author, b.Status)
}

func rating(r *int) string {
	if r == nil {
		return "-"
	}
	return strconv.Itoa(*r)
}

func favorite(f bool) string {
	if f {
		return "*"
	}
	return ""
}
