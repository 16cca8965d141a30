package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/daemon"
	"github.com/wildtrail/wildtrail/internal/domain"
)

func init() {
	f := eventCmd.Flags()
	f.StringVar(&eventFlags.subject, "subject", "", "Species or object observed")
	f.StringVar(&eventFlags.zone, "zone", "", "Habitat zone")
	f.StringVar(&eventFlags.quality, "quality", "", "Observation quality (poor, fair, good, excellent)")
	f.BoolVar(&eventFlags.weather, "weather", false, "Observed in special weather")
	f.BoolVar(&eventFlags.firstTime, "first-time", false, "First observation of this subject")
	f.IntVar(&eventFlags.partners, "partners", 0, "Collaborators involved")
	f.Float64Var(&eventFlags.distance, "distance", 0, "Distance covered in meters")
	f.Int64Var(&eventFlags.points, "points", 0, "Override the kind's base points")
	f.StringVar(&eventFlags.at, "at", "", "Event time (RFC 3339, default now)")
	rootCmd.AddCommand(eventCmd)
}

var eventFlags struct {
	subject   string
	zone      string
	quality   string
	weather   bool
	firstTime bool
	partners  int
	distance  float64
	points    int64
	at        string
}

var eventCmd = &cobra.Command{
	Use:   "event KIND",
	Short: "Record an activity event",
	Long: `Record an activity event and print what it earned.

KIND is one of: ` + kindList() + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvent,
}

func runEvent(cmd *cobra.Command, args []string) error {
	ev, err := buildEvent(args[0], time.Now())
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := d.Sessions.HandleEvent(context.Background(), userID, ev)
	if err != nil {
		return err
	}
	printOutcome(out)
	return nil
}

func buildEvent(kind string, now time.Time) (domain.ActivityEvent, error) {
	at := now
	if eventFlags.at != "" {
		t, err := time.Parse(time.RFC3339, eventFlags.at)
		if err != nil {
			return domain.ActivityEvent{}, fmt.Errorf("--at: %w", err)
		}
		at = t
	}
	ev := domain.ActivityEvent{
		Kind:   domain.EventKind(kind),
		At:     at,
		Points: eventFlags.points,
		Context: domain.EventContext{
			Subject:        eventFlags.subject,
			Zone:           eventFlags.zone,
			Quality:        domain.Quality(eventFlags.quality),
			SpecialWeather: eventFlags.weather,
			FirstTime:      eventFlags.firstTime,
			Partners:       eventFlags.partners,
			DistanceMeters: eventFlags.distance,
		},
	}
	if err := progression.ValidateEvent(ev); err != nil {
		return domain.ActivityEvent{}, err
	}
	return ev, nil
}

func printOutcome(out progression.Outcome) {
	if !out.Accepted {
		fmt.Printf("Rejected: %s\n", out.Reason)
		return
	}
	fmt.Printf("+%d points\n", out.Points)
	for _, lc := range out.LevelUps {
		fmt.Printf("Level up! %d -> %d\n", lc.From, lc.To)
	}
	for _, id := range out.Unlocked {
		fmt.Printf("Achievement unlocked: %s\n", id)
	}
	for _, id := range out.ChallengesCompleted {
		fmt.Printf("Challenge completed: %s\n", id)
	}
	for _, id := range out.ChallengesFailed {
		fmt.Printf("Challenge failed: %s\n", id)
	}
	for _, id := range out.WaypointsCompleted {
		fmt.Printf("Waypoint reached: %s\n", id)
	}
	for _, id := range out.RoutesCompleted {
		fmt.Printf("Route completed: %s\n", id)
	}
}

func kindList() string {
	kinds := domain.EventKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
