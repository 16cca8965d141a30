package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/daemon"
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the full state as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, points, streak and active work",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withEngine("view", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
		v, err := e.View(ctx)
		if err != nil {
			return err
		}
		if statusJSON {
			return printJSON(v)
		}

		p := v.Profile
		fmt.Printf("User:         %s\n", v.UserID)
		fmt.Printf("Level:        %d  %s  %d XP to next\n", p.Level, renderBar(v.LevelProgress), v.ExperienceToNext)
		fmt.Printf("Points:       %d\n", p.TotalPoints)
		fmt.Printf("Streak:       %d days (longest %d)\n", p.CurrentStreak, p.LongestStreak)
		fmt.Printf("Achievements: %d\n", len(v.Achievements))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		if len(v.Challenges.Active) > 0 {
			fmt.Fprintln(w, "CHALLENGE\tID\tPROGRESS\tREMAINING")
			for _, c := range v.Challenges.Active {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					c.Name, c.ID, renderBar(c.ProgressPct/100), formatRemaining(c.RemainingSeconds))
			}
			fmt.Fprintln(w)
		}
		if len(v.Routes.Active) > 0 {
			fmt.Fprintln(w, "ROUTE\tID\tPROGRESS\tNEXT")
			for _, r := range v.Routes.Active {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					r.Name, r.ID, renderBar(r.NarrativeProgress), r.CurrentWaypointID)
			}
		}
		return w.Flush()
	})
}
