package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/observation/internal/suspect"
	"github.com/vango-dev/observation/pkg/observation"
)

func demoCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Track two suspects and mutate them",
		Long: `Run a tracking scope that reads the name and suspiciousness of
two suspects, then mutate them one property at a time.

The change callback runs exactly once, on the first mutation.
Later mutations find no registered watch.

Examples:
  observe demo
  observe demo --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				observation.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
					&slog.HandlerOptions{Level: slog.LevelDebug})))
				defer observation.SetLogger(nil)
			}
			fired := runDemo(cmd.OutOrStdout())
			if fired != 1 {
				return fmt.Errorf("callback ran %d times, want 1", fired)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every access, mutation and watch to stderr")

	return cmd
}

// runDemo replays the suspects walkthrough and returns how many times the
// change callback ran.
func runDemo(w io.Writer) int {
	glib := suspect.New("glib", "Glib Butler", 33)
	jimmy := suspect.New("jimmy", "Jimmy The Shrimp", 10)

	fired := 0
	obs := observation.Track(func() {
		fmt.Fprintf(w, "1: I am observing %s %d\n", glib.Name(), glib.Suspiciousness())
		fmt.Fprintf(w, "2: I am observing %s %d\n", jimmy.Name(), jimmy.Suspiciousness())
	}, func() {
		fired++
		fmt.Fprintln(w, "CALLBACK IS BEING CALLED: Name/Suspiciousness changed!")
	})
	info(w, "tracking %d properties on %d suspects", obs.Dependencies(), obs.Registrars())

	fmt.Fprintln(w, "A")
	glib.SetSuspiciousness(12)
	jimmy.SetName("Jim Shrimp")
	fmt.Fprintln(w, "C")
	glib.SetName("Jim Shrimp")
	jimmy.SetSuspiciousness(12)

	success(w, "callback ran %d time(s); %d watches left", fired,
		glib.Registrar().WatchCount()+jimmy.Registrar().WatchCount())
	return fired
}
