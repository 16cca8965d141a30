package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/infra/catalog"
)

func init() {
	catalogCmd.Flags().StringVar(&catalogOverlay, "overlay", "", "Apply this YAML overlay to the built-in catalog")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(catalogCmd)
}

var (
	catalogOverlay string
	catalogJSON    bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show achievements, challenge and route templates, and collections",
	RunE:  runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadFile(catalogOverlay)
	if err != nil {
		return err
	}
	if catalogJSON {
		return printJSON(map[string]interface{}{
			"challenges":   cat.ChallengeTemplates(),
			"routes":       cat.RouteTemplates(),
			"achievements": cat.Achievements(),
			"collections":  cat.Collections(),
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ACHIEVEMENT\tNAME\tCATEGORY\tDESCRIPTION")
	for _, a := range cat.Achievements() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Category, a.Description)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CHALLENGE\tNAME\tKIND\tDESCRIPTION")
	for _, t := range cat.ChallengeTemplates() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Kind, t.Description)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ROUTE\tNAME\tWAYPOINTS\tDESCRIPTION")
	for _, t := range cat.RouteTemplates() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Name, len(t.Waypoints), t.Description)
	}
	fmt.Fprintln(w)

	sizes := cat.Collections()
	types := make([]string, 0, len(sizes))
	for t := range sizes {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Fprintln(w, "COLLECTION\tSIZE")
	for _, t := range types {
		fmt.Fprintf(w, "%s\t%d\n", t, sizes[t])
	}
	return w.Flush()
}
