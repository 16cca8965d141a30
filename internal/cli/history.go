package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/daemon"
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the user's recent activity journal",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	records, err := d.DB.ListActivity(userID, historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No activity yet. Run 'wildtrail event sighting' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tPOINTS\tRESULT")
	for _, r := range records {
		result := "ok"
		if !r.Accepted {
			result = "rejected: " + r.Reason
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			r.At.Local().Format("2006-01-02 15:04"), r.Kind, r.Points, result)
	}
	return w.Flush()
}
