package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/daemon"
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd, importCmd)
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the user's progression snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine("export", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			data, err := e.Export()
			if err != nil {
				return err
			}
			if exportOut == "" {
				_, err = os.Stdout.Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(exportOut, data, 0600); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %s to %s\n", userID, exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the user's progression with an exported snapshot",
	Long: `Replace the user's progression with an exported snapshot. The snapshot
is validated first; nothing changes if it is malformed or from another
schema version. Use '-' to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		return withEngine("import", func(ctx context.Context, _ *daemon.Daemon, e *progression.Engine) error {
			if err := e.Import(ctx, data); err != nil {
				return err
			}
			fmt.Printf("Imported snapshot into %s\n", userID)
			return nil
		})
	},
}
