package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/daemon"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// withEngine opens the daemon services, runs fn against the selected
// user's engine and closes everything again.
func withEngine(op string, fn func(ctx context.Context, d *daemon.Daemon, e *progression.Engine) error) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	return d.Sessions.Do(ctx, userID, op, func(e *progression.Engine) error {
		return fn(ctx, d, e)
	})
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// rejected reports an operation the engine declined.
func rejected(what string) error {
	return fmt.Errorf("%s was rejected (see log for the reason)", what)
}

// newLogger builds the logger described by cfg.
func newLogger(cfg daemon.Config) (*logger.Logger, error) {
	return logger.New(cfg.Logging.Mode, cfg.Logging.Level)
}
