package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/daemon"
	"github.com/wildtrail/wildtrail/internal/domain"
)

func init() {
	f := challengeActivateCmd.Flags()
	f.IntVar(&activateFlags.objective, "objective", 0, "Override the objective")
	f.StringSliceVar(&activateFlags.zones, "zones", nil, "Restrict to these habitat zones")
	f.StringVar(&activateFlags.minQuality, "min-quality", "", "Minimum observation quality")
	f.DurationVar(&activateFlags.duration, "duration", 0, "Override the time limit")

	challengeCmd.AddCommand(challengeListCmd, challengeActivateCmd, challengeAbandonCmd)
	rootCmd.AddCommand(challengeCmd)
}

var activateFlags struct {
	objective  int
	zones      []string
	minQuality string
	duration   time.Duration
}

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "List, activate and abandon challenges",
}

var challengeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List challenge templates and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine("view", func(ctx context.Context, d *daemon.Daemon, e *progression.Engine) error {
			v, err := e.View(ctx)
			if err != nil {
				return err
			}
			active := make(map[string]progression.ChallengeView)
			for _, c := range v.Challenges.Active {
				active[c.TemplateID] = c
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TEMPLATE\tNAME\tOBJECTIVE\tDURATION\tREWARD\tSTATUS")
			for _, t := range d.Catalog.ChallengeTemplates() {
				status := "available"
				if c, ok := active[t.ID]; ok {
					status = fmt.Sprintf("active %d/%d (%s)", c.Progress, c.Config.Objective, c.ID)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
					t.ID, t.Name, t.Config.Objective, t.Config.Duration, t.Reward.Points, status)
			}
			return w.Flush()
		})
	},
}

var challengeActivateCmd = &cobra.Command{
	Use:   "activate TEMPLATE",
	Short: "Activate a challenge from a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := activateOverrides(cmd)
		return withEngine("challenge_activate", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			inst, err := e.ActivateChallenge(ctx, args[0], o)
			if err != nil {
				return err
			}
			if inst == nil {
				return rejected("activation of " + args[0])
			}
			fmt.Printf("Activated %s (%s): %d to go, due %s\n",
				inst.Name, inst.ID, inst.Config.Objective, inst.Deadline.Local().Format("2006-01-02 15:04"))
			return nil
		})
	},
}

var challengeAbandonCmd = &cobra.Command{
	Use:   "abandon INSTANCE",
	Short: "Abandon an active challenge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine("challenge_abandon", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			ok, err := e.AbandonChallenge(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return rejected("abandoning " + args[0])
			}
			fmt.Printf("Abandoned %s\n", args[0])
			return nil
		})
	},
}

// activateOverrides maps the flags the user actually set onto overrides.
func activateOverrides(cmd *cobra.Command) *domain.ChallengeOverrides {
	var o domain.ChallengeOverrides
	set := false
	if cmd.Flags().Changed("objective") {
		o.Objective = &activateFlags.objective
		set = true
	}
	if cmd.Flags().Changed("zones") {
		o.Zones = activateFlags.zones
		set = true
	}
	if cmd.Flags().Changed("min-quality") {
		q := domain.Quality(activateFlags.minQuality)
		o.MinQuality = &q
		set = true
	}
	if cmd.Flags().Changed("duration") {
		o.Duration = &activateFlags.duration
		set = true
	}
	if !set {
		return nil
	}
	return &o
}
