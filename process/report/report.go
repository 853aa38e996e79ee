// Package report prints the tracker standings and per-user progress as
// plain text tables.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"trainercard/pkg/progress"
)

// WriteTracker prints one line per trainer in the order given.
func WriteTracker(w io.Writer, rows []progress.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTRAINER\tUSER\tBADGES\tTIME\tPOKEDEX\tPOSTED")
	for i, s := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%d\t%s\n", i+1, s.TrainerName, s.Username, s.Badges, s.Time, s.Pokedex, s.PostedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

// WriteProgress prints a user's records by badge count.
func WriteProgress(w io.Writer, p progress.Progress) error {
	fmt.Fprintf(w, "Progress for user=%s trainer=%s\n", p.Username, p.TrainerName)
	if len(p.Records) == 0 {
		_, err := fmt.Fprintln(w, "  no records")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  BADGES\tTIME\tPOKEDEX\tPOSTED\tSOURCE")
	for _, r := range p.Records {
		fmt.Fprintf(tw, "  %d\t%s\t%d\t%s\t%s\n", r.Badges, r.Time, r.Pokedex, r.PostedAt.UTC().Format(time.RFC3339), r.Source)
	}
	return tw.Flush()
}
