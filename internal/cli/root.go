// Package cli implements the wildtrail command-line interface using Cobra.
// Each subcommand maps to one progression capability (events, challenges,
// routes, export/import) or to the daemon itself.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wildtrail",
	Short: "wildtrail: progression and rewards for field naturalists",
	Long: `wildtrail turns sightings, photos and identifications into points,
levels, achievements, timed challenges and narrative routes.

Run 'wildtrail serve' for the HTTP API, or use the subcommands to work on
a user's progression directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// userID is the user every subcommand operates on.
var userID string

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", defaultUser(), "User whose progression to use")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultUser() string {
	if u := os.Getenv("WILDTRAIL_USER"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
