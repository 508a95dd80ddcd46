package cmd

import (
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/mj1618/focusguard/internal/model"
	"github.com/mj1618/focusguard/internal/output"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Arbitrate the focus events of a window",
	Long: `Connect to the X display, watch a window and its descendants, and run every
event through focus arbitration. Suppressed events and focus steal-backs are
printed as they happen.

The windowing library is looked up at library.native (library.compat for a
32-bit process on a 64-bit kernel) in the config file, then in the multiarch
directory of the running architecture, e.g. /usr/lib/x86_64-linux-gnu.

Examples:
  focusguard run --window 0x1a00003
  focusguard run --window active --all --format json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("window", windowActive, "Window id to watch, or \"active\"")
	runCmd.Flags().String("marker", "", "Switch marker file (default from config)")
	runCmd.Flags().Bool("all", false, "Print passed events too")
}

func runRun(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetString("window")
	marker, _ := cmd.Flags().GetString("marker")
	all, _ := cmd.Flags().GetBool("all")
	if marker != "" {
		cfg.Marker.Path = marker
	}

	ctx, cancel := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := newFocusLoop(window)
	return loop.run(ctx, func(d model.Decision) error {
		if !all && !noteworthy(d) {
			return nil
		}
		return output.PrintDocument(output.NewDecisionResult(time.Now().UnixMilli(), d))
	})
}

// noteworthy reports whether arbitration changed anything.
func noteworthy(d model.Decision) bool {
	return d.Suppressed() || d.StealBack != model.None
}
