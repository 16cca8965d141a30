package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/daemon"
	"github.com/wildtrail/wildtrail/internal/domain"
)

func init() {
	routeActivityCmd.Flags().StringVar(&routeFlags.subject, "subject", "", "Species or object observed")
	routeActivityCmd.Flags().StringVar(&routeFlags.zone, "zone", "", "Habitat zone")
	routeDiscoverCmd.Flags().StringVar(&routeFlags.name, "name", "", "Display name of the discovery")
	routeDiscoverCmd.Flags().StringVar(&routeFlags.rarity, "rarity", "common", "Rarity (common, uncommon, rare, epic, legendary)")

	routeCmd.AddCommand(routeListCmd, routeStartCmd, routeActivityCmd, routeDiscoverCmd, routeAbandonCmd)
	rootCmd.AddCommand(routeCmd)
}

var routeFlags struct {
	subject string
	zone    string
	name    string
	rarity  string
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Follow narrative routes waypoint by waypoint",
}

var routeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List route templates and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine("view", func(ctx context.Context, d *daemon.Daemon, e *progression.Engine) error {
			v, err := e.View(ctx)
			if err != nil {
				return err
			}
			active := make(map[string]progression.RouteView)
			for _, r := range v.Routes.Active {
				active[r.TemplateID] = r
			}
			done := make(map[string]bool)
			for _, r := range v.Routes.Completed {
				done[r.TemplateID] = true
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TEMPLATE\tNAME\tWAYPOINTS\tREWARD\tSTATUS")
			for _, t := range d.Catalog.RouteTemplates() {
				status := "available"
				switch r, ok := active[t.ID]; {
				case ok:
					status = fmt.Sprintf("active %s next %s (%s)", renderBar(r.NarrativeProgress), r.CurrentWaypointID, r.ID)
				case done[t.ID]:
					status = "completed"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", t.ID, t.Name, len(t.Waypoints), t.Reward.Points, status)
			}
			return w.Flush()
		})
	},
}

var routeStartCmd = &cobra.Command{
	Use:   "start TEMPLATE",
	Short: "Start a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine("route_start", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			inst, err := e.StartRoute(ctx, args[0])
			if err != nil {
				return err
			}
			if inst == nil {
				return rejected("starting " + args[0])
			}
			fmt.Printf("Started %s (%s)\n", inst.Name, inst.ID)
			if wp := inst.CurrentWaypoint(); wp != nil {
				fmt.Printf("  %s: %s\n", wp.Name, wp.Narrative)
			}
			return nil
		})
	},
}

var routeActivityCmd = &cobra.Command{
	Use:   "activity INSTANCE KIND",
	Short: "Record an activity at the route's current waypoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := domain.EventKind(args[1])
		if !kind.Valid() {
			return fmt.Errorf("unknown activity kind %q (want one of %s)", kind, kindList())
		}
		payload := domain.EventContext{Subject: routeFlags.subject, Zone: routeFlags.zone}
		return withEngine("route_activity", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			ok, err := e.RecordWaypointActivity(ctx, args[0], kind, payload)
			if err != nil {
				return err
			}
			if !ok {
				return rejected("activity on " + args[0])
			}
			fmt.Printf("Recorded %s on %s\n", kind, args[0])
			return nil
		})
	},
}

var routeDiscoverCmd = &cobra.Command{
	Use:   "discover INSTANCE DISCOVERY",
	Short: "Attach a side discovery to an active route",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		disc := domain.Discovery{
			ID:     args[1],
			Name:   routeFlags.name,
			Rarity: domain.Rarity(routeFlags.rarity),
		}
		return withEngine("route_discovery", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			ok, err := e.RecordDiscovery(ctx, args[0], disc)
			if err != nil {
				return err
			}
			if !ok {
				return rejected("discovery on " + args[0])
			}
			fmt.Printf("Discovered %s (%s, +%d points)\n", disc.ID, disc.Rarity, progression.DiscoveryBasePoints*disc.Rarity.Multiplier())
			return nil
		})
	},
}

var routeAbandonCmd = &cobra.Command{
	Use:   "abandon INSTANCE",
	Short: "Abandon an active route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine("route_abandon", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			ok, err := e.AbandonRoute(ctx, args[0])
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
